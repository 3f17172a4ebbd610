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

// Package config defines the immutable per-mechanism TestConfig record
// decoded from CLI flags, its defaults, and its validation rules.
package config

import (
	"github.com/redhat-performance/rusty-comms/internal/idur"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// Mechanism names one of the four pluggable IPC transports.
type Mechanism string

const (
	UDS Mechanism = "uds"
	TCP Mechanism = "tcp"
	SHM Mechanism = "shm"
	PMQ Mechanism = "pmq"
)

// All expands "all" in --mechanism into its concrete, ordered mechanism
// list.
func All() []Mechanism { return []Mechanism{UDS, TCP, SHM, PMQ} }

func (m Mechanism) Valid() bool {
	switch m {
	case UDS, TCP, SHM, PMQ:
		return true
	}
	return false
}

// Mode is the process role this invocation plays.
type Mode string

const (
	InProcess Mode = "in-process"
	Host      Mode = "host"
	Client    Mode = "client"
)

// Termination selects how the measurement loop decides it is done: either a
// fixed message count or a wall-clock duration, never both.
type Termination struct {
	Count    uint64        `json:"count,omitempty"`
	Duration idur.Duration `json:"duration,omitempty"`
}

func (t Termination) byDuration() bool { return t.Duration > 0 }

// TestConfig is the immutable configuration for one mechanism's test run.
// The driver runs on the clone Normalize returns; nothing in this package
// mutates a TestConfig in place.
type TestConfig struct {
	Mechanism   Mechanism     `json:"mechanism"`
	Mode        Mode          `json:"-"`
	MessageSize int           `json:"message_size"`
	Warmup      uint64        `json:"warmup_iterations"`
	Termination Termination   `json:"termination"`
	Concurrency int           `json:"concurrency"`
	OneWay      bool          `json:"one_way"`
	RoundTrip   bool          `json:"round_trip"`
	SendDelay   idur.Duration `json:"send_delay,omitempty"`
	Percentiles []float64     `json:"percentiles"`
	BufferSize  int           `json:"buffer_size"`

	// Transport-specific addressing.
	IPCPath     string `json:"ipc_path,omitempty"`
	ShmName     string `json:"shm_name,omitempty"`
	Host        string `json:"host,omitempty"`
	Port        int    `json:"port,omitempty"`
	PMQName     string `json:"pmq_name,omitempty"`
	PMQPriority int    `json:"pmq_priority,omitempty"`

	IncludeFirstMessage bool `json:"include_first_message"`
	ContinueOnError     bool `json:"continue_on_error"`

	ServerAffinity int `json:"server_affinity,omitempty"`
	ClientAffinity int `json:"client_affinity,omitempty"`

	// HandshakeTimeout bounds the readiness-byte wait; GraceTimeout
	// bounds worker-join and in-flight round-trip drain on termination.
	HandshakeTimeout idur.Duration `json:"handshake_timeout,omitempty"`
	GraceTimeout     idur.Duration `json:"grace_timeout,omitempty"`
}

// Defaults returns a TestConfig with every CLI default applied, for the
// given mechanism. Callers override fields from parsed flags afterward.
func Defaults(m Mechanism) TestConfig {
	return TestConfig{
		Mechanism:        m,
		Mode:             InProcess,
		MessageSize:      1024,
		Warmup:           1000,
		Termination:      Termination{Count: 10000},
		Concurrency:      1,
		OneWay:           true,
		RoundTrip:        false,
		Percentiles:      []float64{50, 95, 99, 99.9},
		BufferSize:       1 << 20,
		IPCPath:          "/tmp/rusty-comms.sock",
		ShmName:          "rusty-comms",
		Host:             "127.0.0.1",
		Port:             9000,
		PMQName:          "/rusty-comms",
		ServerAffinity:   -1,
		ClientAffinity:   -1,
		HandshakeTimeout: idur.Seconds(5),
		GraceTimeout:     idur.ParseDuration(500_000_000),
	}
}

// Clone returns a deep-enough copy of c: every field is either a value type
// or, for Percentiles, a freshly allocated slice, so mutating the clone
// never reaches back into c.
func (c TestConfig) Clone() TestConfig {
	out := c
	out.Percentiles = append([]float64(nil), c.Percentiles...)
	return out
}

// Validate checks c's cross-field invariants, returning an
// ierrs.ConfigInvalid error describing the first violation found.
func (c TestConfig) Validate() error {
	if !c.Mechanism.Valid() {
		return ierrs.ConfigInvalid.Newf("unknown mechanism %q", c.Mechanism)
	}
	if c.MessageSize <= 0 {
		return ierrs.ConfigInvalid.Newf("message-size must be > 0, got %d", c.MessageSize)
	}
	if c.Termination.Count == 0 && !c.Termination.byDuration() {
		return ierrs.ConfigInvalid.Newf("exactly one of msg-count or duration must be set")
	}
	if c.Termination.Count > 0 && c.Termination.byDuration() {
		return ierrs.ConfigInvalid.Newf("msg-count and duration are mutually exclusive")
	}
	if c.Concurrency <= 0 {
		return ierrs.ConfigInvalid.Newf("concurrency must be > 0, got %d", c.Concurrency)
	}
	if !c.OneWay && !c.RoundTrip {
		return ierrs.ConfigInvalid.Newf("at least one of one-way or round-trip must be enabled")
	}
	if c.BufferSize <= 0 {
		return ierrs.ConfigInvalid.Newf("buffer-size must be > 0, got %d", c.BufferSize)
	}
	for _, p := range c.Percentiles {
		if p <= 0 || p >= 100 {
			return ierrs.ConfigInvalid.Newf("percentile %v out of range (0,100)", p)
		}
	}
	if c.Mechanism == TCP && c.Port <= 0 {
		return ierrs.ConfigInvalid.Newf("tcp mechanism requires a positive port, got %d", c.Port)
	}
	return nil
}

// Normalize applies the forced-concurrency rule for the ring-buffer
// transport and returns whether a warning
// should be surfaced to the operator.
func (c TestConfig) Normalize() (TestConfig, bool) {
	out := c.Clone()
	if out.Mechanism == SHM && out.Concurrency != 1 {
		out.Concurrency = 1
		return out, true
	}
	return out, false
}
