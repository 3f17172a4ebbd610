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
	"encoding/csv"
	"os"
	"strconv"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// CSVWriter streams samples to a CSV file: a header row written once at
// construction, then one row per sample, appended and flushed in place
// (unlike JSONWriter, a partial CSV file is always valid CSV).
type CSVWriter struct {
	f *os.File
	w *csv.Writer
}

// NewCSVWriter returns a CSVWriter targeting path, truncating any existing
// file and writing the header row immediately.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ierrs.IoError.New(err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(jsonHeadings); err != nil {
		_ = f.Close()
		return nil, ierrs.IoError.New(err)
	}
	w.Flush()
	return &CSVWriter{f: f, w: w}, nil
}

func (w *CSVWriter) Write(s Sample) error {
	row := []string{
		strconv.FormatUint(s.ID, 10),
		strconv.FormatUint(uint64(s.WorkerID), 10),
		strconv.FormatInt(s.SendNs, 10),
		strconv.FormatInt(s.RecvNs, 10),
		strconv.FormatInt(s.LatencyNs(), 10),
		strconv.FormatUint(uint64(s.Kind), 10),
	}
	if err := w.w.Write(row); err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

func (w *CSVWriter) Flush() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

func (w *CSVWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.f.Close()
}
