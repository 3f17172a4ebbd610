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

// Package result assembles per-test records into the final JSON document
// and computes the cross-mechanism summary (fastest_mechanism,
// lowest_latency_mechanism).
package result

import (
	"time"

	"github.com/redhat-performance/rusty-comms/internal/config"
	"github.com/redhat-performance/rusty-comms/internal/version"
)

// Status is the terminal state of a single test.
type Status uint8

const (
	// Completed means the test ran to termination without a fatal error.
	Completed Status = iota
	// Failed means the test aborted; Reason names why.
	Failed
)

func (s Status) String() string {
	if s == Failed {
		return "FAILED"
	}
	return "Completed"
}

// MarshalJSON renders Status as its string form for the final JSON schema.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// PercentileValue is one entry of a latency histogram's percentile table.
type PercentileValue struct {
	Percentile float64 `json:"percentile"`
	ValueNs    int64   `json:"value_ns"`
}

// Latency is the statistical summary of one direction's latency samples.
type Latency struct {
	MinNs       int64             `json:"min_ns"`
	MaxNs       int64             `json:"max_ns"`
	MeanNs      float64           `json:"mean_ns"`
	MedianNs    int64             `json:"median_ns"`
	StdDevNs    float64           `json:"std_dev_ns"`
	Percentiles []PercentileValue `json:"percentiles"`
	Saturated   bool              `json:"saturated"`
}

// Throughput is the per-direction throughput summary.
type Throughput struct {
	MessagesPerSecond float64 `json:"messages_per_second"`
	BytesPerSecond    float64 `json:"bytes_per_second"`
	TotalMessages     uint64  `json:"total_messages"`
	TotalBytes        uint64  `json:"total_bytes"`
}

// DirectionResult is the outcome of one direction (one-way or round-trip)
// of a single test.
type DirectionResult struct {
	Latency    Latency    `json:"latency"`
	Throughput Throughput `json:"throughput"`
}

// Summary is the per-test headline numbers surfaced in the console and JSON.
type Summary struct {
	TotalMessagesSent      uint64  `json:"total_messages_sent"`
	TotalBytesTransferred  uint64  `json:"total_bytes_transferred"`
	AverageThroughputMbps  float64 `json:"average_throughput_mbps"`
	P95LatencyNs           int64   `json:"p95_latency_ns"`
	P99LatencyNs           int64   `json:"p99_latency_ns"`
	DroppedStreamedSamples uint64  `json:"dropped_streamed_samples,omitempty"`
}

// TestResult is the per-mechanism record in the final JSON's results array.
type TestResult struct {
	Mechanism        config.Mechanism  `json:"mechanism"`
	TestConfig       config.TestConfig `json:"test_config"`
	OneWayResults    *DirectionResult  `json:"one_way_results,omitempty"`
	RoundTripResults *DirectionResult  `json:"round_trip_results,omitempty"`
	Summary          Summary           `json:"summary"`
	Status           Status            `json:"status"`
	FailureReason    string            `json:"failure_reason,omitempty"`
	StartTime        time.Time         `json:"start_time"`
	EndTime          time.Time         `json:"end_time"`
}

// IsFailed reports whether this test's status is Failed.
func (r TestResult) IsFailed() bool { return r.Status == Failed }

// CrossMechanismSummary selects the winning mechanism across a run's
// results by two criteria.
type CrossMechanismSummary struct {
	FastestMechanism       string `json:"fastest_mechanism,omitempty"`
	LowestLatencyMechanism string `json:"lowest_latency_mechanism,omitempty"`
}

// Metadata is the run-level metadata block.
type Metadata struct {
	Version    string             `json:"version"`
	Timestamp  time.Time          `json:"timestamp"`
	TotalTests int                `json:"total_tests"`
	SystemInfo version.SystemInfo `json:"system_info"`
}

// Report is the top-level final JSON document.
type Report struct {
	Metadata Metadata              `json:"metadata"`
	Results  []TestResult          `json:"results"`
	Summary  CrossMechanismSummary `json:"summary"`
}

// NewReport assembles a Report from a completed run's per-test results.
func NewReport(results []TestResult) Report {
	return Report{
		Metadata: Metadata{
			Version:    version.Get().Release,
			Timestamp:  reportTime(),
			TotalTests: len(results),
			SystemInfo: version.GetSystemInfo(),
		},
		Results: results,
		Summary: Summarize(results),
	}
}

// reportTime is the single call site for "now" in this package, isolated so
// tests can substitute a fixed clock if ever needed.
var reportTime = time.Now

// Summarize computes the cross-mechanism summary: the
// mechanism with the highest one-way messages/second, and the mechanism
// with the lowest round-trip P50 latency. Failed tests and tests missing
// the relevant direction are excluded from each selection.
func Summarize(results []TestResult) CrossMechanismSummary {
	var (
		out       CrossMechanismSummary
		bestTput  float64
		bestLatNs = int64(-1)
	)

	for _, r := range results {
		if r.IsFailed() {
			continue
		}
		if r.OneWayResults != nil && r.OneWayResults.Throughput.MessagesPerSecond > bestTput {
			bestTput = r.OneWayResults.Throughput.MessagesPerSecond
			out.FastestMechanism = string(r.Mechanism)
		}
		if r.RoundTripResults != nil {
			p50 := medianOf(r.RoundTripResults.Latency)
			if bestLatNs < 0 || p50 < bestLatNs {
				bestLatNs = p50
				out.LowestLatencyMechanism = string(r.Mechanism)
			}
		}
	}

	return out
}

func medianOf(l Latency) int64 {
	return l.MedianNs
}
