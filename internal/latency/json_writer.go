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
	"encoding/json"
	"os"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// jsonHeadings is the fixed column order of the streaming JSON document.
var jsonHeadings = []string{"id", "worker", "send_ns", "recv_ns", "latency_ns", "kind"}

// jsonDocument is the columnar streaming shape: a headings array plus a
// data array of same-order value rows.
type jsonDocument struct {
	Headings []string `json:"headings"`
	Data     [][]any  `json:"data"`
}

// JSONWriter streams samples to a columnar JSON document. Because a
// partially-written JSON array is not valid JSON, each Flush rewrites the
// whole file from the in-memory row buffer rather than appending bytes;
// the buffer only ever grows by the rows accumulated since the last flush,
// so this stays cheap relative to the flush interval.
type JSONWriter struct {
	path string
	rows [][]any
}

// NewJSONWriter returns a JSONWriter targeting path, truncating any
// existing file at that path up front so a stale file from a previous run
// is never mistaken for this one's output.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.WriteFile(path, []byte(`{"headings":[],"data":[]}`), 0o644); err != nil {
		return nil, ierrs.IoError.New(err)
	}
	return &JSONWriter{path: path}, nil
}

func (w *JSONWriter) Write(s Sample) error {
	w.rows = append(w.rows, []any{s.ID, s.WorkerID, s.SendNs, s.RecvNs, s.LatencyNs(), uint8(s.Kind)})
	return nil
}

func (w *JSONWriter) Flush() error {
	doc := jsonDocument{Headings: jsonHeadings, Data: w.rows}
	b, err := json.Marshal(doc)
	if err != nil {
		return ierrs.IoError.New(err)
	}
	if err := os.WriteFile(w.path, b, 0o644); err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

func (w *JSONWriter) Close() error {
	return w.Flush()
}
