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

// Package uds implements the stream-socket mechanism over a filesystem
// path. One net.Conn is accepted per worker; framing is the shared
// transport.StreamEndpoint.
package uds

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/transport"
)

// Server listens on a filesystem path, accepting one connection per
// worker. It owns the socket file and removes it on Close.
type Server struct {
	ln   net.Listener
	path string
}

// NewServer binds a UDS listener at path. A stale socket file left behind
// by a crashed previous run is removed before binding; if the bind still
// collides (a live listener already owns the path), the caller gets
// ierrs.AddressInUse: the caller is expected to be the one retry, this
// constructor only performs the pre-clean.
func NewServer(path string) (*Server, error) {
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, ierrs.AddressInUse.New(err)
		}
		return nil, ierrs.IoError.New(err)
	}
	return &Server{ln: ln, path: path}, nil
}

// Accept blocks for the next worker connection.
func (s *Server) Accept(ctx context.Context) (transport.Endpoint, error) {
	return acceptStream(ctx, s.ln)
}

// Close stops accepting and unlinks the socket file.
func (s *Server) Close() error {
	err := s.ln.Close()
	_ = os.Remove(s.path)
	if err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

// Dialer connects to a running uds.Server.
type Dialer struct {
	Path string
}

// NewDialer returns a Dialer targeting path.
func NewDialer(path string) *Dialer {
	return &Dialer{Path: path}
}

// Dial connects to the server's socket file.
func (d *Dialer) Dial(ctx context.Context) (transport.Endpoint, error) {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "unix", d.Path)
	if err != nil {
		return nil, ierrs.PeerClosed.New(err)
	}
	return transport.NewStreamEndpoint(conn), nil
}

// acceptStream accepts one connection from ln, honoring ctx cancellation by
// racing the blocking Accept call against ctx.Done in a helper goroutine.
// net.Listener has no context-aware Accept of its own.
func acceptStream(ctx context.Context, ln net.Listener) (transport.Endpoint, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		ch <- result{conn, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, ierrs.PeerClosed.New(r.err)
		}
		return transport.NewStreamEndpoint(r.conn), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
