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

// Package summary renders a run's Report as a colorized console table: one
// row per mechanism/direction, Completed in green and FAILED in red, columns
// aligned the way the console table helpers in the pack line up text.
package summary

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/redhat-performance/rusty-comms/internal/result"
)

var (
	colorOK     = color.New(color.FgGreen, color.Bold)
	colorFailed = color.New(color.FgRed, color.Bold)
	colorHeader = color.New(color.FgCyan, color.Bold)
	colorDim    = color.New(color.Faint)
)

// padLeft right-aligns str within width runes, as the pack's console
// padding helpers do.
func padLeft(str string, width int) string {
	n := width - utf8.RuneCountInString(str)
	if n <= 0 {
		return str
	}
	return strings.Repeat(" ", n) + str
}

func padRight(str string, width int) string {
	n := width - utf8.RuneCountInString(str)
	if n <= 0 {
		return str
	}
	return str + strings.Repeat(" ", n)
}

const (
	colMechanism  = 10
	colStatus     = 9
	colMsgs       = 14
	colThroughput = 16
	colP95        = 12
	colP99        = 12
)

// Print writes r's headline table to w, followed by the cross-mechanism
// summary line.
func Print(w io.Writer, r result.Report) {
	_, _ = colorHeader.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
		padRight("MECHANISM", colMechanism),
		padRight("STATUS", colStatus),
		padLeft("MESSAGES", colMsgs),
		padLeft("MB/S", colThroughput),
		padLeft("P95 (us)", colP95),
		padLeft("P99 (us)", colP99),
	)
	_, _ = colorDim.Fprintln(w, strings.Repeat("-", colMechanism+colStatus+colMsgs+colThroughput+colP95+colP99+10))

	for _, t := range r.Results {
		printRow(w, t)
	}

	_, _ = colorDim.Fprintln(w, strings.Repeat("-", colMechanism+colStatus+colMsgs+colThroughput+colP95+colP99+10))

	if r.Summary.FastestMechanism != "" {
		fmt.Fprintf(w, "fastest one-way mechanism:        %s\n", r.Summary.FastestMechanism)
	}
	if r.Summary.LowestLatencyMechanism != "" {
		fmt.Fprintf(w, "lowest round-trip p50 mechanism:   %s\n", r.Summary.LowestLatencyMechanism)
	}
}

func printRow(w io.Writer, t result.TestResult) {
	mech := padRight(strings.ToUpper(string(t.Mechanism)), colMechanism)

	statusText := t.Status.String()
	statusCol := colorOK
	if t.IsFailed() {
		statusCol = colorFailed
	}

	dir := pickDirection(t)

	msgs := "-"
	mbps := "-"
	p95 := "-"
	p99 := "-"
	if dir != nil {
		msgs = fmt.Sprintf("%d", dir.Throughput.TotalMessages)
		mbps = fmt.Sprintf("%.2f", dir.Throughput.BytesPerSecond/(1024*1024))
		p95 = fmt.Sprintf("%.1f", float64(percentileOf(dir.Latency, 95))/1000.0)
		p99 = fmt.Sprintf("%.1f", float64(percentileOf(dir.Latency, 99))/1000.0)
	}

	fmt.Fprintf(w, "%s  ", mech)
	_, _ = statusCol.Fprint(w, padRight(statusText, colStatus))
	fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		padLeft(msgs, colMsgs),
		padLeft(mbps, colThroughput),
		padLeft(p95, colP95),
		padLeft(p99, colP99),
	)

	if t.IsFailed() && t.FailureReason != "" {
		_, _ = colorDim.Fprintf(w, "  %s\n", t.FailureReason)
	}
}

// pickDirection favors round-trip numbers when both directions ran, since
// round-trip latency is the more informative headline figure.
func pickDirection(t result.TestResult) *result.DirectionResult {
	if t.RoundTripResults != nil {
		return t.RoundTripResults
	}
	return t.OneWayResults
}

func percentileOf(l result.Latency, want float64) int64 {
	var best int64
	bestDist := math.MaxFloat64
	for _, pv := range l.Percentiles {
		if pv.Percentile == want {
			return pv.ValueNs
		}
		if d := math.Abs(pv.Percentile - want); d < bestDist {
			bestDist = d
			best = pv.ValueNs
		}
	}
	if bestDist < math.MaxFloat64 {
		return best
	}
	return l.MedianNs
}
