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

// Package ierrs implements the IPC benchmark harness's error taxonomy: a
// small registry of named Kind values, each carrying its own message, with
// parent chaining so a transport failure can wrap the syscall error that
// caused it without losing its own identity.
package ierrs

import "strconv"

// Kind is a distinct error category. Kind zero (Unknown) never matches a
// registered transport or driver failure.
type Kind uint16

const (
	Unknown Kind = iota
	AddressInUse
	BinaryNotFound
	HandshakeTimeout
	PeerClosed
	ProtocolMismatch
	FrameTooLarge
	Truncated
	BackpressureTimeout
	SaturatedHistogram
	TransportUnavailable
	IoError
	ConfigInvalid
	WorkersNotJoined
	ProcessSpawnFailed
	AffinityUnavailable
)

var kindMessage = map[Kind]string{
	Unknown:              "unknown error",
	AddressInUse:         "address already in use",
	BinaryNotFound:       "benchmark binary could not be resolved",
	HandshakeTimeout:     "readiness handshake timed out",
	PeerClosed:           "peer closed the connection",
	ProtocolMismatch:     "protocol violation: unexpected message id or kind",
	FrameTooLarge:        "frame exceeds the maximum allowed size",
	Truncated:            "short read while decoding a frame",
	BackpressureTimeout:  "producer backpressure wait exceeded its deadline",
	SaturatedHistogram:   "histogram value saturated at its ceiling",
	TransportUnavailable: "transport is not supported on this platform",
	IoError:              "i/o error",
	ConfigInvalid:        "invalid test configuration",
	WorkersNotJoined:     "one or more workers did not join within the grace window",
	ProcessSpawnFailed:   "failed to spawn counterpart process",
	AffinityUnavailable:  "could not pin process to the requested cpu core",
}

// String returns the registered message for k, or the bare numeric value if
// k was never registered.
func (k Kind) String() string {
	if m, ok := kindMessage[k]; ok {
		return m
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// New builds an Error of this Kind, optionally wrapping parent errors.
func (k Kind) New(parent ...error) Error {
	return newError(k, k.String(), parent)
}

// Newf builds an Error of this Kind with a formatted message, optionally
// wrapping parent errors.
func (k Kind) Newf(format string, args ...any) Error {
	return newErrorf(k, format, args)
}
