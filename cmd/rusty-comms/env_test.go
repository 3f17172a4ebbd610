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
	"path/filepath"
	"testing"
)

func TestDefaultIPCPathUsesTmpDirEnv(t *testing.T) {
	t.Setenv(envTmpDir, "/var/run/rusty-comms-test")
	got := defaultIPCPath()
	want := filepath.Join("/var/run/rusty-comms-test", "rusty-comms.sock")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveOutputPathLeavesAbsoluteAlone(t *testing.T) {
	t.Setenv(envOutputDir, "/data/out")
	got := resolveOutputPath("/already/absolute.json")
	if got != "/already/absolute.json" {
		t.Errorf("got %q, want unchanged absolute path", got)
	}
}

func TestResolveOutputPathJoinsRelative(t *testing.T) {
	t.Setenv(envOutputDir, "/data/out")
	got := resolveOutputPath("report.json")
	want := filepath.Join("/data/out", "report.json")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveOutputPathNoEnvNoChange(t *testing.T) {
	t.Setenv(envOutputDir, "")
	got := resolveOutputPath("report.json")
	if got != "report.json" {
		t.Errorf("got %q, want unchanged relative path when env unset", got)
	}
}

func TestResolveOutputPathEmpty(t *testing.T) {
	if got := resolveOutputPath(""); got != "" {
		t.Errorf("got %q, want empty string preserved", got)
	}
}
