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

package latency

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSinkDropsWhenFull(t *testing.T) {
	s := NewSink(2)
	if !s.Push(Sample{ID: 1}) {
		t.Fatal("expected first push to be accepted")
	}
	if !s.Push(Sample{ID: 2}) {
		t.Fatal("expected second push to be accepted")
	}
	if s.Push(Sample{ID: 3}) {
		t.Fatal("expected third push to be dropped on a full queue of depth 2")
	}
	if got := s.Dropped(); got != 1 {
		t.Fatalf("Dropped() = %d, want 1", got)
	}
}

func TestSinkPushNeverBlocks(t *testing.T) {
	s := NewSink(1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Push(Sample{ID: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked on a full, undrained sink")
	}
}

func TestPumpDrainsOnClose(t *testing.T) {
	s := NewSink(8)
	for i := uint64(0); i < 5; i++ {
		s.Push(Sample{ID: i, SendNs: 100, RecvNs: 150})
	}
	s.Close()

	if err := Pump(context.Background(), s, nil); err != nil {
		t.Fatalf("Pump with nil writer: %v", err)
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w, err := NewJSONWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Write(Sample{ID: uint64(i), WorkerID: 1, SendNs: 1000, RecvNs: 1500}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc jsonDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Data) != 3 {
		t.Fatalf("len(doc.Data) = %d, want 3", len(doc.Data))
	}
	if len(doc.Headings) != 6 {
		t.Fatalf("len(doc.Headings) = %d, want 6", len(doc.Headings))
	}
}

func TestCSVWriterHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(Sample{ID: 1, WorkerID: 0, SendNs: 10, RecvNs: 20}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := splitLines(string(b))
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
