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

// Package transport defines the common capability set every one of the
// four IPC mechanisms implements, so the
// driver never has to know which one it is driving. Concrete mechanisms
// live in the uds, tcp, shm and pmq subpackages.
package transport

import (
	"context"

	"github.com/redhat-performance/rusty-comms/internal/envelope"
)

// Endpoint is one worker's bound connection to a mechanism: the unit the
// driver's measurement loop actually sends and receives envelopes through.
// An Endpoint is owned by exactly one role for its lifetime.
type Endpoint interface {
	// Send transmits one envelope, blocking until it is accepted by the
	// transport or ctx is done.
	Send(ctx context.Context, e envelope.Envelope) error
	// Recv blocks for the next envelope, or returns ctx.Err() (wrapped as
	// ierrs.PeerClosed when the peer, rather than the caller, ended the
	// exchange) once nothing more will arrive.
	Recv(ctx context.Context) (envelope.Envelope, error)
	// Close releases this endpoint's resources. Safe to call more than
	// once; the first call's error is authoritative.
	Close() error
}

// Server owns the mechanism's kernel IPC object (socket file, shared
// segment, message queue) for its lifetime and hands out one Endpoint per
// accepted worker connection.
type Server interface {
	// Accept blocks for the next worker to connect (or, for the
	// single-segment ring buffer, returns the one available Endpoint) and
	// returns its bound Endpoint.
	Accept(ctx context.Context) (Endpoint, error)
	// Close stops accepting new workers and unlinks the server-owned
	// kernel IPC object.
	Close() error
}

// Dialer connects one worker to a running Server and returns its bound
// Endpoint.
type Dialer interface {
	Dial(ctx context.Context) (Endpoint, error)
}
