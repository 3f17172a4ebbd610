/*
 * MIT License
 *
 * Copyright (c) 2026 rusty-comms authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package version carries the build metadata stamped into the binary by
// -ldflags, and exposes it both for the --version flag and for the
// metadata.version field of the final result JSON.
package version

import (
	"fmt"
	"runtime"
)

// These are overridden at build time, e.g.:
//
//	go build -ldflags "-X .../internal/version.Release=v1.4.0 -X .../internal/version.Commit=$(git rev-parse HEAD) -X .../internal/version.BuildDate=$(date -u +%FT%TZ)"
var (
	Release   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

const (
	pkg    = "rusty-comms"
	author = "rusty-comms authors"
)

// Info is the resolved, immutable build metadata for this binary.
type Info struct {
	Package   string `json:"package"`
	Release   string `json:"release"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Author    string `json:"author"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build's Info, resolved from the package-level
// vars set by -ldflags.
func Get() Info {
	return Info{
		Package:   pkg,
		Release:   Release,
		Commit:    Commit,
		BuildDate: BuildDate,
		Author:    author,
		GoVersion: runtime.Version(),
	}
}

// String renders a one-line, human-readable form for the --version flag.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", i.Package, i.Release, i.Commit, i.BuildDate, i.GoVersion)
}
