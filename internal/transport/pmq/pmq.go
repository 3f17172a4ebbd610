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

// Package pmq implements the POSIX kernel message queue mechanism: a
// named queue with a fixed depth and a fixed maximum message size, where
// each send and receive moves exactly one whole envelope.
package pmq

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/redhat-performance/rusty-comms/internal/envelope"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/transport"
)

// Config names the queue(s) one worker's test needs. Round-trip mode opens
// two queues, mirroring the shm mechanism's paired segments, since a single
// mqueue is as directional as the driver chooses to use it but the
// coordinator always gives each side a distinct name to claim.
type Config struct {
	Name       string
	Depth      int
	MaxMsgSize int
	Priority   uint
	RoundTrip  bool
}

func replyName(name string) string { return name + ".reply" }

// kernelName strips the leading slash POSIX queue names carry: the raw
// mq_* syscalls take the bare mqueue filename, the way glibc's mq_open
// strips the slash before trapping.
func kernelName(name string) string { return strings.TrimPrefix(name, "/") }

// queue wraps one open mqueue descriptor.
type queue struct {
	name  string
	fd    int
	owner bool
}

func openExisting(name string) (*queue, error) {
	fd, err := unix.Mq_open(kernelName(name), unix.O_RDWR, 0, nil)
	if err != nil {
		return nil, ierrs.TransportUnavailable.New(err)
	}
	return &queue{name: name, fd: fd}, nil
}

func create(name string, depth, maxMsgSize int) (*queue, error) {
	// Pre-clean a queue left by a crashed prior run, matching the UDS
	// socket-path and shm segment pre-clean.
	_ = unix.Mq_unlink(kernelName(name))

	attr := &unix.MqAttr{
		Maxmsg:  int64(depth),
		Msgsize: int64(maxMsgSize),
	}
	fd, err := unix.Mq_open(kernelName(name), unix.O_CREAT|unix.O_EXCL|unix.O_RDWR, 0o600, attr)
	if err != nil {
		return nil, ierrs.IoError.New(err)
	}
	return &queue{name: name, fd: fd, owner: true}, nil
}

func (q *queue) send(ctx context.Context, prio uint, body []byte) error {
	deadline, ok := ctx.Deadline()
	var ts *unix.Timespec
	if ok {
		spec := unix.NsecToTimespec(deadline.UnixNano())
		ts = &spec
	} else {
		spec := unix.NsecToTimespec(time.Now().Add(5 * time.Second).UnixNano())
		ts = &spec
	}

	if err := unix.Mq_timedsend(q.fd, body, uint32(prio), ts); err != nil {
		if err == unix.ETIMEDOUT {
			return ierrs.BackpressureTimeout.New(err)
		}
		return ierrs.IoError.New(err)
	}
	return nil
}

func (q *queue) receive(ctx context.Context, maxMsgSize int) ([]byte, uint, error) {
	deadline, ok := ctx.Deadline()
	var ts *unix.Timespec
	if ok {
		spec := unix.NsecToTimespec(deadline.UnixNano())
		ts = &spec
	} else {
		spec := unix.NsecToTimespec(time.Now().Add(5 * time.Second).UnixNano())
		ts = &spec
	}

	buf := make([]byte, maxMsgSize)
	var prio uint32
	n, err := unix.Mq_timedreceive(q.fd, buf, &prio, ts)
	if err != nil {
		if err == unix.ETIMEDOUT {
			return nil, 0, ierrs.BackpressureTimeout.New(err)
		}
		return nil, 0, ierrs.IoError.New(err)
	}
	return buf[:n], uint(prio), nil
}

func (q *queue) close() error {
	err := unix.Close(q.fd)
	if q.owner {
		_ = unix.Mq_unlink(kernelName(q.name))
	}
	if err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

// Server creates (and, on Close, unlinks) the named queue(s).
type Server struct {
	cfg  Config
	reqQ *queue
	repQ *queue
}

// NewServer creates the request queue, claiming ownership, and — for
// round-trip — the reply queue too.
func NewServer(cfg Config) (*Server, error) {
	req, err := create(cfg.Name, cfg.Depth, cfg.MaxMsgSize)
	if err != nil {
		return nil, err
	}

	var rep *queue
	if cfg.RoundTrip {
		rep, err = create(replyName(cfg.Name), cfg.Depth, cfg.MaxMsgSize)
		if err != nil {
			_ = req.close()
			return nil, err
		}
	}

	return &Server{cfg: cfg, reqQ: req, repQ: rep}, nil
}

// Accept returns the queue pair's bound Endpoint. Since a named queue is
// claimed once per worker by construction (the coordinator hands each
// worker a distinct queue name), there is exactly one Endpoint to accept.
func (s *Server) Accept(ctx context.Context) (transport.Endpoint, error) {
	return &Endpoint{
		cfg:   s.cfg,
		recvQ: s.reqQ,
		sendQ: s.repQ,
		prio:  s.cfg.Priority,
	}, nil
}

// Close unlinks the queue(s) this server created.
func (s *Server) Close() error {
	var err error
	if e := s.reqQ.close(); e != nil {
		err = e
	}
	if s.repQ != nil {
		if e := s.repQ.close(); e != nil {
			err = e
		}
	}
	return err
}

// Dialer opens the queue(s) a Server has already created.
type Dialer struct {
	cfg Config
}

func NewDialer(cfg Config) *Dialer {
	return &Dialer{cfg: cfg}
}

// Dial opens the request queue to send into and, for round-trip, the reply
// queue to receive from.
func (d *Dialer) Dial(ctx context.Context) (transport.Endpoint, error) {
	req, err := openExisting(d.cfg.Name)
	if err != nil {
		return nil, err
	}

	var rep *queue
	if d.cfg.RoundTrip {
		rep, err = openExisting(replyName(d.cfg.Name))
		if err != nil {
			_ = req.close()
			return nil, err
		}
	}

	return &Endpoint{
		cfg:   d.cfg,
		sendQ: req,
		recvQ: rep,
		prio:  d.cfg.Priority,
		own:   true,
	}, nil
}

// Endpoint is one side's bound queue pair.
type Endpoint struct {
	cfg   Config
	sendQ *queue
	recvQ *queue
	prio  uint
	// own marks the dialer side, which opened its own descriptors and must
	// close them; the server side shares the Server's descriptors and lets
	// Server.Close be authoritative.
	own bool
}

// Send serializes e as a datagram and sends it whole.
func (e *Endpoint) Send(ctx context.Context, env envelope.Envelope) error {
	if e.sendQ == nil {
		return ierrs.TransportUnavailable.Newf("pmq endpoint has no send queue for this direction")
	}
	body := envelope.EncodeDatagram(env)
	if len(body) > e.cfg.MaxMsgSize {
		return ierrs.FrameTooLarge.Newf("datagram of %d bytes exceeds queue message size %d", len(body), e.cfg.MaxMsgSize)
	}
	return e.sendQ.send(ctx, e.prio, body)
}

// Recv blocks for the next whole datagram and decodes it.
func (e *Endpoint) Recv(ctx context.Context) (envelope.Envelope, error) {
	if e.recvQ == nil {
		return envelope.Envelope{}, ierrs.TransportUnavailable.Newf("pmq endpoint has no recv queue for this direction")
	}
	body, _, err := e.recvQ.receive(ctx, e.cfg.MaxMsgSize)
	if err != nil {
		return envelope.Envelope{}, err
	}
	return envelope.DecodeDatagram(body)
}

// Close releases this endpoint's own descriptors. The server-shared
// descriptors are left for Server.Close.
func (e *Endpoint) Close() error {
	if !e.own {
		return nil
	}
	var err error
	if e.sendQ != nil {
		if cerr := e.sendQ.close(); cerr != nil {
			err = cerr
		}
	}
	if e.recvQ != nil {
		if cerr := e.recvQ.close(); cerr != nil {
			err = cerr
		}
	}
	return err
}
