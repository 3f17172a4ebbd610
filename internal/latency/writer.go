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
	"time"
)

// FlushInterval is how often a streaming writer flushes to disk while a
// measurement loop is running.
const FlushInterval = 250 * time.Millisecond

// Writer is a streaming emitter that appends samples to an output file as
// they arrive, without perturbing the hot path that produced them.
type Writer interface {
	// Write appends one sample to the in-memory buffer.
	Write(s Sample) error
	// Flush persists buffered samples to the underlying file.
	Flush() error
	// Close flushes and releases the underlying file handle.
	Close() error
}

// Pump drains sink into w until sink is closed and drained, flushing on
// FlushInterval and once more before returning. It is meant to run in its
// own goroutine, one per (sink, writer) pair, started by the driver for
// the duration of one test's measurement loop.
func Pump(ctx context.Context, sink *Sink, w Writer) error {
	if w == nil {
		// No streaming output configured for this run; drain silently so the
		// worker's Push calls never block on an unread channel.
		for range sink.Chan() {
		}
		return nil
	}

	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	ch := sink.Chan()
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return w.Flush()
			}
			if err := w.Write(s); err != nil {
				return err
			}
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				return err
			}
		case <-ctx.Done():
			// Drain whatever is already buffered before giving up, then
			// flush what was captured.
			for {
				select {
				case s, ok := <-ch:
					if !ok {
						return w.Flush()
					}
					_ = w.Write(s)
				default:
					return w.Flush()
				}
			}
		}
	}
}
