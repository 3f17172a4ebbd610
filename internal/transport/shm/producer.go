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
	"encoding/binary"
	"time"

	"github.com/redhat-performance/rusty-comms/internal/envelope"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// minBackoff/maxBackoff bound the spin-wait's exponential backoff: a
// bounded busy-wait with an absolute deadline, never an unbounded spin.
// The ring transport runs its spin loop on a dedicated OS
// thread (see Endpoint), so sleeping here never starves the cooperative
// scheduler the other mechanisms share.
const (
	minBackoff = 1 * time.Microsecond
	maxBackoff = 1 * time.Millisecond

	// warnAfterSpins is the number of failed readiness checks before the
	// producer treats itself as genuinely backpressured and raises the
	// once-only warning, rather than reacting to an ordinary single-spin
	// race with a consumer that is merely between iterations.
	warnAfterSpins = 8
)

// producer is the single allowed writer of a segment's ring.
type producer struct {
	seg       *segment
	headLocal uint64
}

func newProducer(seg *segment) *producer {
	return &producer{seg: seg, headLocal: seg.hdr.LoadHead()}
}

// send writes one datagram-framed envelope into the ring. It blocks (via
// spin-backoff, never a scheduler suspension point) until there is room,
// the consumer disappears, or ctx is done.
func (p *producer) send(ctx context.Context, e envelope.Envelope) error {
	body := envelope.EncodeDatagram(e)
	// Frames advance head by a 4-byte-aligned amount so every offset in the
	// ring stays 4-aligned: the wrap sentinel and the length prefix are both
	// whole 4-byte words, and alignment guarantees at least that much
	// contiguous room at any non-zero offset.
	frame := alignFrame(uint64(4 + len(body)))
	capacity := p.seg.capacity

	if frame > capacity/2 {
		return ierrs.FrameTooLarge.Newf("frame of %d bytes exceeds half the %d-byte ring", frame, capacity)
	}

	backoff := minBackoff
	spins := 0

	var offset, contiguous uint64
	var needWrap bool

	for {
		tail := p.seg.hdr.LoadTail()
		used := p.headLocal - tail
		free := capacity - used
		offset = p.headLocal % capacity
		contiguous = capacity - offset
		needWrap = contiguous < frame

		required := frame
		if needWrap {
			required += contiguous
		}

		if free >= required {
			break
		}

		spins++
		if spins == warnAfterSpins {
			// First transition 0->1 for this segment. The
			// flag lives in the shared header so either side can surface the
			// operator warning; the transport itself carries no logger.
			p.seg.hdr.SetBackpressureWarned()
		}

		if !p.seg.hdr.ConsumerPresent() {
			return ierrs.PeerClosed.Newf("shm consumer is no longer present")
		}

		select {
		case <-ctx.Done():
			return ierrs.BackpressureTimeout.New(ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	if needWrap {
		binary.LittleEndian.PutUint32(p.seg.ring()[offset:offset+4], wrapSentinel)
		p.headLocal += contiguous
		offset = 0
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(body)))
	buf := p.seg.ring()
	copy(buf[offset:], prefix[:])
	copy(buf[offset+4:], body)

	p.headLocal += frame
	p.seg.hdr.StoreHead(p.headLocal)
	return nil
}
