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

package result

import (
	"encoding/json"
	"testing"

	"github.com/redhat-performance/rusty-comms/internal/config"
)

func TestStatusString(t *testing.T) {
	if Completed.String() != "Completed" {
		t.Errorf("got %q, want Completed", Completed.String())
	}
	if Failed.String() != "FAILED" {
		t.Errorf("got %q, want FAILED", Failed.String())
	}
}

func TestStatusMarshalJSON(t *testing.T) {
	b, err := Failed.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"FAILED"` {
		t.Errorf("got %s, want \"FAILED\"", b)
	}
}

func TestIsFailed(t *testing.T) {
	if (TestResult{Status: Completed}).IsFailed() {
		t.Error("Completed should not report IsFailed")
	}
	if !(TestResult{Status: Failed}).IsFailed() {
		t.Error("Failed should report IsFailed")
	}
}

func TestSummarizeSkipsFailedTests(t *testing.T) {
	results := []TestResult{
		{
			Mechanism: config.UDS,
			Status:    Failed,
			OneWayResults: &DirectionResult{
				Throughput: Throughput{MessagesPerSecond: 1_000_000},
			},
		},
		{
			Mechanism: config.TCP,
			Status:    Completed,
			OneWayResults: &DirectionResult{
				Throughput: Throughput{MessagesPerSecond: 500},
			},
		},
	}

	summary := Summarize(results)
	if summary.FastestMechanism != string(config.TCP) {
		t.Errorf("got %q, want the completed mechanism despite its lower throughput", summary.FastestMechanism)
	}
}

func TestSummarizePicksHighestThroughputAndLowestLatency(t *testing.T) {
	results := []TestResult{
		{
			Mechanism: config.UDS,
			Status:    Completed,
			OneWayResults: &DirectionResult{
				Throughput: Throughput{MessagesPerSecond: 500},
			},
			RoundTripResults: &DirectionResult{
				Latency: Latency{MedianNs: 5000},
			},
		},
		{
			Mechanism: config.SHM,
			Status:    Completed,
			OneWayResults: &DirectionResult{
				Throughput: Throughput{MessagesPerSecond: 900_000},
			},
			RoundTripResults: &DirectionResult{
				Latency: Latency{MedianNs: 200},
			},
		},
	}

	summary := Summarize(results)
	if summary.FastestMechanism != string(config.SHM) {
		t.Errorf("fastest_mechanism = %q, want %q", summary.FastestMechanism, config.SHM)
	}
	if summary.LowestLatencyMechanism != string(config.SHM) {
		t.Errorf("lowest_latency_mechanism = %q, want %q", summary.LowestLatencyMechanism, config.SHM)
	}
}

func TestSummarizeIgnoresMissingDirections(t *testing.T) {
	results := []TestResult{
		{Mechanism: config.PMQ, Status: Completed},
	}
	summary := Summarize(results)
	if summary.FastestMechanism != "" || summary.LowestLatencyMechanism != "" {
		t.Errorf("got %+v, want an empty summary when no direction ran", summary)
	}
}

func TestNewReportPopulatesMetadataAndSummary(t *testing.T) {
	results := []TestResult{
		{
			Mechanism: config.TCP,
			Status:    Completed,
			OneWayResults: &DirectionResult{
				Throughput: Throughput{MessagesPerSecond: 1234},
			},
		},
	}

	report := NewReport(results)
	if report.Metadata.TotalTests != 1 {
		t.Errorf("TotalTests = %d, want 1", report.Metadata.TotalTests)
	}
	if report.Metadata.Timestamp.IsZero() {
		t.Error("expected a non-zero Timestamp")
	}
	if report.Summary.FastestMechanism != string(config.TCP) {
		t.Errorf("FastestMechanism = %q, want %q", report.Summary.FastestMechanism, config.TCP)
	}
	if len(report.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(report.Results))
	}
}

func TestReportRoundTripsThroughJSON(t *testing.T) {
	report := NewReport([]TestResult{
		{
			Mechanism:     config.UDS,
			Status:        Failed,
			FailureReason: "handshake timed out",
			Summary: Summary{
				TotalMessagesSent: 42,
			},
		},
	})

	b, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	results, ok := decoded["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("decoded results = %v, want one entry", decoded["results"])
	}
	first := results[0].(map[string]any)
	if first["status"] != "FAILED" {
		t.Errorf("status = %v, want FAILED", first["status"])
	}
	if _, present := first["one_way_results"]; present {
		t.Error("one_way_results should be omitted when nil")
	}
}
