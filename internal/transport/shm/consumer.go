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

// consumer is the single allowed reader of a segment's ring.
type consumer struct {
	seg       *segment
	tailLocal uint64
}

func newConsumer(seg *segment) *consumer {
	return &consumer{seg: seg, tailLocal: seg.hdr.LoadTail()}
}

// recv reads and decodes the next datagram-framed envelope from the ring,
// transparently skipping any wrap record it encounters.
func (c *consumer) recv(ctx context.Context) (envelope.Envelope, error) {
	backoff := minBackoff

	for {
		head := c.seg.hdr.LoadHead()
		if head == c.tailLocal {
			if !c.seg.hdr.ProducerPresent() {
				return envelope.Envelope{}, ierrs.PeerClosed.Newf("shm producer is no longer present")
			}
			select {
			case <-ctx.Done():
				return envelope.Envelope{}, ierrs.PeerClosed.New(ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		offset := c.tailLocal % c.seg.capacity
		buf := c.seg.ring()
		prefix := binary.LittleEndian.Uint32(buf[offset : offset+4])

		if prefix == wrapSentinel {
			contiguous := c.seg.capacity - offset
			c.tailLocal += contiguous
			c.seg.hdr.StoreTail(c.tailLocal)
			backoff = minBackoff
			continue
		}

		body := make([]byte, prefix)
		copy(body, buf[offset+4:offset+4+uint64(prefix)])

		c.tailLocal += alignFrame(4 + uint64(prefix))
		c.seg.hdr.StoreTail(c.tailLocal)

		return envelope.DecodeDatagram(body)
	}
}
