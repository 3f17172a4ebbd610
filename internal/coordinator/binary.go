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

package coordinator

import (
	"os"
	"path/filepath"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// BinaryEnvVar names the environment variable a caller can set to point the
// coordinator at the counterpart binary, when the running executable's own
// name does not match. It is consulted before the conventional build path.
const BinaryEnvVar = "RUSTY_COMMS_BINARY"

// expectedName is the binary name self-resolution checks the current
// executable against.
const expectedName = "rusty-comms"

// conventionalPath is the fallback relative path under a build output
// directory, the last resolution step before giving up.
const conventionalPath = "build/rusty-comms"

// ResolveBinary finds the counterpart binary to spawn, trying, in order:
// the current executable (if its name matches), BinaryEnvVar, and the
// conventional relative path.
func ResolveBinary() (string, error) {
	if exe, err := os.Executable(); err == nil && filepath.Base(exe) == expectedName {
		return exe, nil
	}

	if env := os.Getenv(BinaryEnvVar); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
	}

	if _, err := os.Stat(conventionalPath); err == nil {
		return conventionalPath, nil
	}

	return "", ierrs.BinaryNotFound.Newf("could not resolve counterpart binary: checked current executable, %s, and %s", BinaryEnvVar, conventionalPath)
}
