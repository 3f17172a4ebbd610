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

// Package histogram wraps HdrHistogram-go with the fixed range and
// precision this harness always uses, clamping instead of rejecting
// out-of-range values so a single stray sample never aborts a run.
package histogram

import (
	hdr "github.com/HdrHistogram/hdrhistogram-go"

	"github.com/redhat-performance/rusty-comms/internal/result"
)

const (
	lowestDiscernibleValue = 1
	highestTrackableValue  = 60_000_000_000 // 60s in nanoseconds
	significantFigures     = 3
)

// DefaultPercentiles is the percentile set reported when a test config
// does not override it.
var DefaultPercentiles = []float64{50, 95, 99, 99.9}

// Histogram accumulates latency samples, in nanoseconds, for one worker
// or for a merged per-test view. It is not safe for concurrent use; each
// measurement worker owns one and merging happens once, after all
// workers have stopped recording.
type Histogram struct {
	h         *hdr.Histogram
	saturated bool
}

// New returns an empty histogram ready to record nanosecond latencies.
func New() *Histogram {
	return &Histogram{h: hdr.New(lowestDiscernibleValue, highestTrackableValue, significantFigures)}
}

// Record adds one latency sample in nanoseconds. Values below the
// discernible floor or above the trackable ceiling are clamped and set
// the Saturated flag rather than being dropped, so a single
// out-of-range outlier never loses a sample from the count.
func (h *Histogram) Record(latencyNs int64) {
	v := latencyNs
	switch {
	case v < lowestDiscernibleValue:
		v = lowestDiscernibleValue
		h.saturated = true
	case v > highestTrackableValue:
		v = highestTrackableValue
		h.saturated = true
	}
	// RecordValue only errors for values outside [min, max], which the
	// clamp above already rules out.
	_ = h.h.RecordValue(v)
}

// Saturated reports whether any recorded sample needed clamping.
func (h *Histogram) Saturated() bool {
	return h.saturated
}

// Count returns the number of samples recorded.
func (h *Histogram) Count() int64 {
	return h.h.TotalCount()
}

// Merge folds other into h, combining their recorded samples. Merging k
// per-worker histograms this way produces the same percentiles as a
// single histogram built from the concatenated raw samples, since
// HdrHistogram merge is exact over its bucket representation.
func (h *Histogram) Merge(other *Histogram) {
	if other == nil {
		return
	}
	h.h.Merge(other.h)
	h.saturated = h.saturated || other.saturated
}

// Stats computes the reportable latency summary: min, max, mean,
// median, the requested percentiles, and standard deviation. An empty
// histogram (no samples recorded) returns a zero-value Latency.
func (h *Histogram) Stats(percentiles []float64) result.Latency {
	if len(percentiles) == 0 {
		percentiles = DefaultPercentiles
	}
	if h.Count() == 0 {
		return result.Latency{Saturated: h.saturated}
	}

	out := result.Latency{
		MinNs:     h.h.Min(),
		MaxNs:     h.h.Max(),
		MeanNs:    h.h.Mean(),
		MedianNs:  h.h.ValueAtQuantile(50),
		StdDevNs:  h.h.StdDev(),
		Saturated: h.saturated,
	}
	out.Percentiles = make([]result.PercentileValue, len(percentiles))
	for i, p := range percentiles {
		out.Percentiles[i] = result.PercentileValue{
			Percentile: p,
			ValueNs:    h.h.ValueAtQuantile(p),
		}
	}
	return out
}
