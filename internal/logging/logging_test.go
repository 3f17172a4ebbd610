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

package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/logging"
)

func TestLevelFromVerbosity(t *testing.T) {
	cases := []struct {
		count int
		want  logging.Level
	}{
		{0, logging.InfoLevel},
		{1, logging.DebugLevel},
		{2, logging.TraceLevel},
		{5, logging.TraceLevel},
	}
	for _, c := range cases {
		if got := logging.LevelFromVerbosity(c.count); got != c.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", c.count, got, c.want)
		}
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, l := range []logging.Level{logging.ErrorLevel, logging.WarnLevel, logging.InfoLevel, logging.DebugLevel, logging.TraceLevel} {
		if got := logging.ParseLevel(l.String()); got != l {
			t.Errorf("ParseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if got := logging.ParseLevel("bogus"); got != logging.InfoLevel {
		t.Errorf("ParseLevel(bogus) = %v, want InfoLevel", got)
	}
}

func TestSinkLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSink(&buf, logging.InfoLevel).WithFields(logging.Fields{"mechanism": "uds"})
	log.Info("listener ready")

	out := buf.String()
	if !strings.Contains(out, "listener ready") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "mechanism=uds") {
		t.Errorf("output %q missing mechanism field", out)
	}
}

func TestSinkLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSink(&buf, logging.WarnLevel)
	log.Info("should be suppressed")
	log.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be suppressed") {
		t.Errorf("output %q contains info line below configured level", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("output %q missing warn line", out)
	}
}

func TestLogErrorAttachesKind(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSink(&buf, logging.InfoLevel)
	log.LogError(ierrs.PeerClosed.New())

	out := buf.String()
	if !strings.Contains(out, "kind=PeerClosed") && !strings.Contains(out, "kind=\"peer closed the connection\"") {
		if !strings.Contains(out, "kind=") {
			t.Errorf("output %q missing kind field", out)
		}
	}
}

func TestNewFileWritesAndCloses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	log, err := logging.NewFile(path, logging.InfoLevel)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	log.Info("hello from file sink")
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "hello from file sink") {
		t.Errorf("file content %q missing message", string(data))
	}
}

func TestNewFileRejectsUnwritablePath(t *testing.T) {
	_, err := logging.NewFile(filepath.Join(t.TempDir(), "missing-dir", "run.log"), logging.InfoLevel)
	if err == nil {
		t.Fatal("NewFile() error = nil, want an error for an unwritable path")
	}
	if !ierrs.Is(err, ierrs.ConfigInvalid) {
		t.Errorf("NewFile() error kind = %v, want ConfigInvalid", ierrs.KindOf(err))
	}
}
