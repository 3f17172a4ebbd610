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

// Package logging is a thin wrapper around logrus, reduced to what the
// driver needs: a Level driven by -v/-vv, structured fields keyed by
// mechanism/worker/role, and an output sink that is either stderr or the
// file named by --log-file.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a uint8 log level, ordered from least to most verbose.
type Level uint8

const (
	// ErrorLevel logs only failures that abort the run.
	ErrorLevel Level = iota
	// WarnLevel additionally logs recoverable anomalies (dropped samples,
	// backpressure waits).
	WarnLevel
	// InfoLevel additionally logs per-phase milestones (warmup done,
	// measurement started, worker joined).
	InfoLevel
	// DebugLevel additionally logs per-message/per-sample detail.
	DebugLevel
	// TraceLevel additionally logs the error package's call-site trace.
	TraceLevel
)

// LevelFromVerbosity maps the CLI's repeated -v flag count to a Level:
// 0 -> Info, 1 (-v) -> Debug, 2+ (-vv) -> Trace. The harness never runs
// quieter than Info by default since a silent benchmark run hides the
// per-mechanism progress a human operator expects to see.
func LevelFromVerbosity(count int) Level {
	switch {
	case count <= 0:
		return InfoLevel
	case count == 1:
		return DebugLevel
	default:
		return TraceLevel
	}
}

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case TraceLevel:
		return "trace"
	}
	return "unknown"
}

// ParseLevel returns the Level named by s, defaulting to InfoLevel for an
// unrecognized name.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return ErrorLevel
	case "warn", "warning":
		return WarnLevel
	case "debug":
		return DebugLevel
	case "trace":
		return TraceLevel
	default:
		return InfoLevel
	}
}

// logrus converts l to the equivalent logrus.Level.
func (l Level) logrus() logrus.Level {
	switch l {
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	case TraceLevel:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}
