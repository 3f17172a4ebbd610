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

package main

import (
	"os"
	"path/filepath"
)

// Environment variables honored beyond coordinator.BinaryEnvVar
// (binary-path override, already consulted inside coordinator.ResolveBinary
// with no flag of its own needed here).
const (
	// envTmpDir seeds --ipc-path's default directory for the uds socket
	// file, so a sandboxed or multi-tenant host can redirect it without a
	// flag on every invocation.
	envTmpDir = "RUSTY_COMMS_TMPDIR"
	// envOutputDir is joined in front of a relative --output-file,
	// --streaming-output-json or --streaming-output-csv path.
	envOutputDir = "RUSTY_COMMS_OUTPUT_DIR"
	// envLogLevel seeds the log level when -v/-vv was never passed.
	envLogLevel = "RUSTY_COMMS_LOG_LEVEL"
)

func defaultIPCPath() string {
	dir := os.Getenv(envTmpDir)
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "rusty-comms.sock")
}

// resolveOutputPath joins path onto RUSTY_COMMS_OUTPUT_DIR when path is
// relative and the env var is set; an absolute path, or an empty one, is
// returned unchanged.
func resolveOutputPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	dir := os.Getenv(envOutputDir)
	if dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
