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

// Package latency implements the per-worker sample sink: a bounded
// single-producer/single-consumer queue the measurement worker writes into
// and a streaming task drains, plus the JSON/CSV streaming writers. The
// in-memory histogram is fed directly by the worker (see internal/histogram)
// and never blocks on this package; a full sink only drops the streamed
// representation of a sample, never the sample's contribution to the
// reported statistics.
package latency

import (
	"github.com/redhat-performance/rusty-comms/internal/envelope"
	"github.com/redhat-performance/rusty-comms/internal/iatomic"
)

// Sample is one measured latency observation: for one-way traffic, the
// receiver's (send_ns, recv_ns) pair; for round-trip traffic, the original
// sender's (request send_ns, reply recv_ns) pair.
type Sample struct {
	ID       uint64
	WorkerID uint32
	SendNs   int64
	RecvNs   int64
	Kind     envelope.Kind
}

// LatencyNs is the sample's measured latency in nanoseconds.
func (s Sample) LatencyNs() int64 { return s.RecvNs - s.SendNs }

// DefaultCapacity is the sink's default queue depth, sized generously
// enough that a streaming writer stalled for a few scheduler ticks does not
// start dropping samples under ordinary load.
const DefaultCapacity = 4096

// Sink is a bounded SPSC queue of latency samples. The measurement worker
// is the sole writer; a streaming task (see Pump) is the sole reader. A
// full sink never blocks Push: the sample is dropped from the stream and
// the Dropped count is incremented, but the caller is expected to have already
// recorded the sample into its histogram before calling Push.
type Sink struct {
	ch      chan Sample
	dropped iatomic.Value[uint64]
}

// NewSink returns a Sink with the given queue depth. capacity <= 0 uses
// DefaultCapacity.
func NewSink(capacity int) *Sink {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sink{ch: make(chan Sample, capacity), dropped: iatomic.NewValue[uint64]()}
}

// Push enqueues sample for streaming. It never blocks: if the queue is
// full, the sample is dropped and the dropped counter is incremented.
// Reports whether the sample was accepted.
func (s *Sink) Push(sample Sample) bool {
	select {
	case s.ch <- sample:
		return true
	default:
		for {
			old := s.dropped.Load()
			if s.dropped.CompareAndSwap(old, old+1) {
				return false
			}
		}
	}
}

// Chan exposes the read side for a streaming consumer. Only Pump (or a
// test) should range over this.
func (s *Sink) Chan() <-chan Sample { return s.ch }

// Close signals no further samples will be pushed. The streaming consumer
// drains remaining buffered samples from the closed channel before
// stopping.
func (s *Sink) Close() { close(s.ch) }

// Dropped returns the number of samples dropped because the queue was full
// at Push time, reported at test end.
func (s *Sink) Dropped() uint64 { return s.dropped.Load() }
