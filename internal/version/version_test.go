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

package version_test

import (
	"runtime"
	"strings"
	"testing"

	"github.com/redhat-performance/rusty-comms/internal/version"
)

func TestGetDefaultsToDev(t *testing.T) {
	info := version.Get()
	if info.Release != "dev" {
		t.Errorf("Release = %q, want %q (unless stamped by -ldflags)", info.Release, "dev")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestInfoStringContainsRelease(t *testing.T) {
	info := version.Get()
	if !strings.Contains(info.String(), info.Release) {
		t.Errorf("String() = %q, want it to contain release %q", info.String(), info.Release)
	}
}

func TestGetSystemInfoMatchesRuntime(t *testing.T) {
	si := version.GetSystemInfo()
	if si.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", si.OS, runtime.GOOS)
	}
	if si.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", si.Arch, runtime.GOARCH)
	}
	if si.NumCPU != runtime.NumCPU() {
		t.Errorf("NumCPU = %d, want %d", si.NumCPU, runtime.NumCPU())
	}
}
