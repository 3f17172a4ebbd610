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

package summary_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/redhat-performance/rusty-comms/internal/config"
	"github.com/redhat-performance/rusty-comms/internal/result"
	"github.com/redhat-performance/rusty-comms/internal/summary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSummary(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Console Summary Suite")
}

var _ = Describe("Print", func() {
	It("renders a completed test row with its throughput and latency", func() {
		r := result.Report{
			Results: []result.TestResult{
				{
					Mechanism: config.UDS,
					Status:    result.Completed,
					OneWayResults: &result.DirectionResult{
						Throughput: result.Throughput{TotalMessages: 1000, BytesPerSecond: 2 * 1024 * 1024},
						Latency: result.Latency{
							MedianNs:    500,
							Percentiles: []result.PercentileValue{{Percentile: 95, ValueNs: 900}, {Percentile: 99, ValueNs: 1200}},
						},
					},
				},
			},
			Summary: result.CrossMechanismSummary{FastestMechanism: "uds"},
		}

		var buf bytes.Buffer
		summary.Print(&buf, r)

		out := buf.String()
		Expect(out).To(ContainSubstring("UDS"))
		Expect(out).To(ContainSubstring("1000"))
		Expect(out).To(ContainSubstring("fastest one-way mechanism"))
	})

	It("renders a failed test's reason", func() {
		r := result.Report{
			Results: []result.TestResult{
				{
					Mechanism:     config.PMQ,
					Status:        result.Failed,
					FailureReason: "address already in use",
				},
			},
		}

		var buf bytes.Buffer
		summary.Print(&buf, r)

		out := buf.String()
		Expect(out).To(ContainSubstring("FAILED"))
		Expect(out).To(ContainSubstring("address already in use"))
	})

	It("uses round-trip numbers over one-way when both are present", func() {
		r := result.Report{
			Results: []result.TestResult{
				{
					Mechanism: config.TCP,
					Status:    result.Completed,
					OneWayResults: &result.DirectionResult{
						Throughput: result.Throughput{TotalMessages: 1},
					},
					RoundTripResults: &result.DirectionResult{
						Throughput: result.Throughput{TotalMessages: 42},
					},
				},
			},
		}

		var buf bytes.Buffer
		summary.Print(&buf, r)

		lines := strings.Split(buf.String(), "\n")
		found := false
		for _, l := range lines {
			if strings.Contains(l, "TCP") {
				Expect(l).To(ContainSubstring("42"))
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})
})
