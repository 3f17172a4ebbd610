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

package shm

import (
	"context"
	"runtime"
	"sync"

	"github.com/redhat-performance/rusty-comms/internal/envelope"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/transport"
)

// Config names the segment(s) a test run over shm needs. Round-trip mode
// needs two: Name carries requests from the dialer to the server, and
// Name+".reply" carries replies back, since a single ring is SPSC and
// cannot carry both directions.
type Config struct {
	Name       string
	BufferSize int
	RoundTrip  bool
}

// Server is the passive side of a shm test: it creates (and, on Close,
// unlinks) the named segment(s) and consumes requests / produces replies.
type Server struct {
	cfg      Config
	reqSeg   *segment
	replySeg *segment

	mu       sync.Mutex
	accepted bool
}

// NewServer creates the request segment (and, if cfg.RoundTrip, the reply
// segment), claiming this process as their consumer/producer respectively.
func NewServer(cfg Config) (*Server, error) {
	req, err := createSegment(cfg.Name, cfg.BufferSize)
	if err != nil {
		return nil, err
	}
	if err := req.claimConsumer(); err != nil {
		_ = req.close()
		return nil, err
	}

	var reply *segment
	if cfg.RoundTrip {
		reply, err = createSegment(cfg.Name+".reply", cfg.BufferSize)
		if err != nil {
			req.releaseConsumer()
			_ = req.close()
			return nil, err
		}
		if err := reply.claimProducer(); err != nil {
			_ = reply.close()
			req.releaseConsumer()
			_ = req.close()
			return nil, err
		}
	}

	return &Server{cfg: cfg, reqSeg: req, replySeg: reply}, nil
}

// Accept returns the one Endpoint this SPSC server will ever hand out;
// multi-worker runs collapse to a single worker for this mechanism.
func (s *Server) Accept(ctx context.Context) (transport.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accepted {
		return nil, ierrs.TransportUnavailable.Newf("shm server %q already accepted its single spsc worker", s.cfg.Name)
	}
	s.accepted = true

	cons := newConsumer(s.reqSeg)
	var prod *producer
	if s.replySeg != nil {
		prod = newProducer(s.replySeg)
	}

	ep := newEndpoint(prod, cons, s.replySeg, s.reqSeg)
	ep.fullClose = false
	return ep, nil
}

// Close unmaps and, since this side created them, unlinks the segment(s).
// Callers should close any Endpoint handed out by Accept first so the role
// flags this checks are already released.
func (s *Server) Close() error {
	var err error
	if e := s.reqSeg.close(); e != nil {
		err = e
	}
	if s.replySeg != nil {
		if e := s.replySeg.close(); e != nil {
			err = e
		}
	}
	return err
}

// BackpressureWarned reports whether a producer ever raised the once-only
// backpressure flag on the request segment. The driver
// reads this after a run to surface the operator warning exactly once.
func (s *Server) BackpressureWarned() bool {
	return s.reqSeg.hdr.BackpressureWarned()
}

// Dialer is the active side of a shm test: it opens the segment(s) the
// server already created and claims the opposite roles.
type Dialer struct {
	cfg Config
}

// NewDialer returns a Dialer targeting cfg. The segment(s) must already
// exist (the server's readiness byte, written after NewServer returns,
// guarantees this — see internal/coordinator).
func NewDialer(cfg Config) *Dialer {
	return &Dialer{cfg: cfg}
}

// Dial opens the request segment as producer and, for round-trip, the
// reply segment as consumer.
func (d *Dialer) Dial(ctx context.Context) (transport.Endpoint, error) {
	req, err := openSegment(d.cfg.Name)
	if err != nil {
		return nil, err
	}
	if err := req.claimProducer(); err != nil {
		_ = req.close()
		return nil, err
	}

	var reply *segment
	if d.cfg.RoundTrip {
		reply, err = openSegment(d.cfg.Name + ".reply")
		if err != nil {
			req.releaseProducer()
			_ = req.close()
			return nil, err
		}
		if err := reply.claimConsumer(); err != nil {
			_ = reply.close()
			req.releaseProducer()
			_ = req.close()
			return nil, err
		}
	}

	prod := newProducer(req)
	var cons *consumer
	if reply != nil {
		cons = newConsumer(reply)
	}

	ep := newEndpoint(prod, cons, req, reply)
	ep.fullClose = true
	return ep, nil
}

// sendJob/recvJob/recvResult carry one blocking call across the channel
// boundary into the dedicated OS thread that actually spins on the ring.
type sendJob struct {
	ctx  context.Context
	env  envelope.Envelope
	done chan error
}

type recvJob struct {
	ctx  context.Context
	done chan recvResult
}

type recvResult struct {
	env envelope.Envelope
	err error
}

// Endpoint is one side's bound view of a shm test: a producer role, a
// consumer role, or both (round-trip). Each role's spin loop runs on its
// own goroutine pinned to an OS thread via runtime.LockOSThread — the ring
// buffer's bounded busy-wait is CPU-bound and must not starve the
// cooperative scheduler the other mechanisms share — so the caller's own
// goroutine never busy-waits directly.
type Endpoint struct {
	sendSeg *segment
	recvSeg *segment

	sendCh chan sendJob
	recvCh chan recvJob

	// fullClose controls whether Close unmaps the segment(s) (the dialer
	// side, which has no separate owner object to do it) or only releases
	// this endpoint's role flag (the server side, where Server.Close does
	// the unmap/unlink once both roles have let go).
	fullClose bool

	closeOnce sync.Once
}

func newEndpoint(prod *producer, cons *consumer, sendSeg, recvSeg *segment) *Endpoint {
	e := &Endpoint{sendSeg: sendSeg, recvSeg: recvSeg}
	if prod != nil {
		e.sendCh = make(chan sendJob)
		go e.producerLoop(prod)
	}
	if cons != nil {
		e.recvCh = make(chan recvJob)
		go e.consumerLoop(cons)
	}
	return e
}

func (e *Endpoint) producerLoop(p *producer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for job := range e.sendCh {
		job.done <- p.send(job.ctx, job.env)
	}
}

func (e *Endpoint) consumerLoop(c *consumer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for job := range e.recvCh {
		env, err := c.recv(job.ctx)
		job.done <- recvResult{env: env, err: err}
	}
}

// Send hands e to this endpoint's producer thread and waits for the result.
func (e *Endpoint) Send(ctx context.Context, env envelope.Envelope) error {
	if e.sendCh == nil {
		return ierrs.TransportUnavailable.Newf("shm endpoint has no producer role")
	}
	done := make(chan error, 1)
	e.sendCh <- sendJob{ctx: ctx, env: env, done: done}
	return <-done
}

// Recv hands a request to this endpoint's consumer thread and waits for
// the result.
func (e *Endpoint) Recv(ctx context.Context) (envelope.Envelope, error) {
	if e.recvCh == nil {
		return envelope.Envelope{}, ierrs.TransportUnavailable.Newf("shm endpoint has no consumer role")
	}
	done := make(chan recvResult, 1)
	e.recvCh <- recvJob{ctx: ctx, done: done}
	r := <-done
	return r.env, r.err
}

// Close stops this endpoint's role loop(s), releases its role flag(s), and
// — on the dialer side only — unmaps the segment(s) (see fullClose).
func (e *Endpoint) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.sendCh != nil {
			close(e.sendCh)
		}
		if e.recvCh != nil {
			close(e.recvCh)
		}
		if e.sendSeg != nil {
			e.sendSeg.releaseProducer()
			if e.fullClose {
				if cerr := e.sendSeg.close(); cerr != nil {
					err = cerr
				}
			}
		}
		if e.recvSeg != nil {
			e.recvSeg.releaseConsumer()
			if e.fullClose {
				if cerr := e.recvSeg.close(); cerr != nil {
					err = cerr
				}
			}
		}
	})
	return err
}
