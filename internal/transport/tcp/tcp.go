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

// Package tcp implements the stream-socket mechanism over a TCP loopback
// address. Nagle's algorithm is disabled on every accepted and
// dialed connection, since a benchmark harness never wants the kernel
// batching small writes on its behalf.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/transport"
)

// Server listens on host:port, accepting one connection per worker.
type Server struct {
	ln net.Listener
}

// NewServer binds a TCP listener at host:port.
func NewServer(host string, port int) (*Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, ierrs.AddressInUse.New(err)
		}
		return nil, ierrs.IoError.New(err)
	}
	return &Server{ln: ln}, nil
}

// Addr returns the bound address, useful when port 0 was requested.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Accept blocks for the next worker connection and disables Nagle on it.
func (s *Server) Accept(ctx context.Context) (transport.Endpoint, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := s.ln.Accept()
		ch <- result{conn, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, ierrs.PeerClosed.New(r.err)
		}
		disableNagle(r.conn)
		return transport.NewStreamEndpoint(r.conn), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if err := s.ln.Close(); err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

// Dialer connects to a running tcp.Server.
type Dialer struct {
	Host string
	Port int
}

// NewDialer returns a Dialer targeting host:port.
func NewDialer(host string, port int) *Dialer {
	return &Dialer{Host: host, Port: port}
}

// Dial connects to the server and disables Nagle on the new connection.
func (d *Dialer) Dial(ctx context.Context) (transport.Endpoint, error) {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", d.Host, d.Port))
	if err != nil {
		return nil, ierrs.PeerClosed.New(err)
	}
	disableNagle(conn)
	return transport.NewStreamEndpoint(conn), nil
}

// disableNagle turns off Nagle's algorithm on conn if it is a *net.TCPConn.
// The standard library's SetNoDelay already wraps the TCP_NODELAY
// setsockopt call; there is nothing a raw syscall buys here that the
// stdlib does not already expose directly.
func disableNagle(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
}
