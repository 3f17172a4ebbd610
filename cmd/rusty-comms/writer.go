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
	"github.com/redhat-performance/rusty-comms/internal/latency"
)

// multiWriter fans one stream of samples out to both a JSON and a CSV
// streaming writer, so --streaming-output-json and --streaming-output-csv
// can be given together without the driver knowing there are two.
type multiWriter struct {
	writers []latency.Writer
}

func (m *multiWriter) Write(s latency.Sample) error {
	for _, w := range m.writers {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiWriter) Flush() error {
	for _, w := range m.writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiWriter) Close() error {
	var first error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// buildStreamingWriter opens the streaming writer(s) f's flags request, or
// returns (nil, nil) when neither --streaming-output-json nor
// --streaming-output-csv was given.
func buildStreamingWriter(f *cliFlags) (latency.Writer, error) {
	var writers []latency.Writer

	if f.streamingJSON != "" {
		w, err := latency.NewJSONWriter(resolveOutputPath(f.streamingJSON))
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}
	if f.streamingCSV != "" {
		w, err := latency.NewCSVWriter(resolveOutputPath(f.streamingCSV))
		if err != nil {
			return nil, err
		}
		writers = append(writers, w)
	}

	switch len(writers) {
	case 0:
		return nil, nil
	case 1:
		return writers[0], nil
	default:
		return &multiWriter{writers: writers}, nil
	}
}
