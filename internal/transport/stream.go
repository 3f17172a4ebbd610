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

package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	"github.com/redhat-performance/rusty-comms/internal/envelope"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// StreamEndpoint is an Endpoint over a length-prefixed net.Conn, shared by
// the uds and tcp mechanisms: once the connection exists, stream
// framing is identical regardless of address family, so only the listener
// and dialer construction differ between the two.
type StreamEndpoint struct {
	Conn net.Conn
}

// NewStreamEndpoint wraps an already-connected net.Conn.
func NewStreamEndpoint(conn net.Conn) *StreamEndpoint {
	return &StreamEndpoint{Conn: conn}
}

func setDeadline(conn net.Conn, ctx context.Context, read bool) {
	dl, ok := ctx.Deadline()
	if !ok {
		dl = time.Time{}
	}
	if read {
		_ = conn.SetReadDeadline(dl)
	} else {
		_ = conn.SetWriteDeadline(dl)
	}
}

// Send writes one length-prefixed frame.
func (e *StreamEndpoint) Send(ctx context.Context, env envelope.Envelope) error {
	setDeadline(e.Conn, ctx, false)
	if err := envelope.WriteFrame(e.Conn, env); err != nil {
		return classifyIOError(err)
	}
	return nil
}

// Recv reads one length-prefixed frame. A clean EOF on the prefix (the peer
// closed the connection between frames) surfaces as ierrs.PeerClosed; any
// other short read surfaces as ierrs.Truncated.
func (e *StreamEndpoint) Recv(ctx context.Context) (envelope.Envelope, error) {
	setDeadline(e.Conn, ctx, true)

	var prefix [4]byte
	n, err := io.ReadFull(e.Conn, prefix[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return envelope.Envelope{}, ierrs.PeerClosed.New(err)
		}
		return envelope.Envelope{}, ierrs.Truncated.New(err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length > envelope.MaxFrameSize {
		return envelope.Envelope{}, ierrs.FrameTooLarge.Newf("frame declares %d bytes, cap is %d", length, envelope.MaxFrameSize)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(e.Conn, body); err != nil {
		return envelope.Envelope{}, ierrs.Truncated.New(err)
	}

	return envelope.Decode(body)
}

// Close closes the underlying connection.
func (e *StreamEndpoint) Close() error {
	return e.Conn.Close()
}

// classifyIOError maps a net.Conn write failure to the taxonomy: a closed
// connection or any *net.OpError (reset, broken pipe and deadline expiry
// alike) is PeerClosed, anything else is IoError.
func classifyIOError(err error) error {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return ierrs.PeerClosed.New(err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ierrs.PeerClosed.New(err)
	}
	return ierrs.IoError.New(err)
}
