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

// Package idur carries the harness's timing knobs — --duration,
// --send-delay, the handshake and grace windows — as a Duration that
// parses the flag syntax ("2s", "500ms", "100us") and survives the JSON
// config handoff between a Host process and its spawned counterpart.
package idur

import (
	"strings"
	"time"
)

// Duration is a time.Duration that knows how to parse itself from a CLI
// flag or a JSON config field.
type Duration time.Duration

// Parse converts a flag value like "2s" or "500ms" into a Duration. The
// value may arrive quoted (a config blob round-tripped through a shell
// keeps its quotes); surrounding quotes are stripped before parsing.
func Parse(s string) (Duration, error) {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return Duration(v), nil
}

// ParseDuration converts a time.Duration.
func ParseDuration(d time.Duration) Duration {
	return Duration(d)
}

// Seconds returns a Duration of i seconds.
func Seconds(i int64) Duration {
	return Duration(time.Duration(i) * time.Second)
}

// Time returns the plain time.Duration, for handing to the time package
// and to deadline arithmetic.
func (d Duration) Time() time.Duration {
	return time.Duration(d)
}

// String renders d the way time.Duration does, which is also the syntax
// Parse accepts.
func (d Duration) String() string {
	return d.Time().String()
}
