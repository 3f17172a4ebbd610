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

// Package shm implements the SPSC shared-memory ring-buffer mechanism, the
// hardest component in the harness: a lock-free control header
// cache-line-padded to avoid false sharing, framed messages that never
// straddle the ring boundary, and backpressure detection with exponential
// backoff.
package shm

import (
	"sync/atomic"
	"unsafe"
)

// cacheLine is the padding unit between independently-written control
// fields, matching the false-sharing avoidance pattern the pack's
// lock-free code favors (see DESIGN.md).
const cacheLine = 64

// Header field offsets. Each hot, independently-written field (head, tail)
// gets its own cache line; the rarely-written identity/flag fields share
// line 0 and line 3 since they are not on the per-message hot path.
const (
	offMagic              = 0
	offVersion            = 4
	offCapacity           = 8
	offProducerPID        = 16
	offConsumerPID        = 20
	offHead               = 1 * cacheLine
	offTail               = 2 * cacheLine
	offProducerPresent    = 3*cacheLine + 0
	offConsumerPresent    = 3*cacheLine + 4
	offBackpressureWarned = 3*cacheLine + 8

	// HeaderSize is the fixed control-header size; ring bytes start here.
	HeaderSize = 4 * cacheLine
)

const (
	magic   uint32 = 0x52435348 // "RCSH"
	version uint32 = 1

	// wrapSentinel marks a wrap record: the 4 bytes at a frame boundary
	// hold this value instead of a real length prefix when the writer
	// could not fit the next frame before the end of the ring.
	wrapSentinel uint32 = 0xFFFFFFFF
)

// header is a typed view over the first HeaderSize bytes of a mapped
// segment. All access goes through sync/atomic on pointers into the
// mapping, since the memory is shared across process boundaries and a
// plain Go load/store gives no ordering guarantee a second process could
// rely on.
type header struct {
	data []byte
}

func newHeader(data []byte) *header { return &header{data: data} }

func (h *header) u32(off int) *uint32 {
	return (*uint32)(unsafe.Pointer(&h.data[off]))
}

func (h *header) u64(off int) *uint64 {
	return (*uint64)(unsafe.Pointer(&h.data[off]))
}

func (h *header) initIdentity(capacity uint64) {
	atomic.StoreUint32(h.u32(offMagic), magic)
	atomic.StoreUint32(h.u32(offVersion), version)
	atomic.StoreUint64(h.u64(offCapacity), capacity)
}

func (h *header) Magic() uint32    { return atomic.LoadUint32(h.u32(offMagic)) }
func (h *header) Version() uint32  { return atomic.LoadUint32(h.u32(offVersion)) }
func (h *header) Capacity() uint64 { return atomic.LoadUint64(h.u64(offCapacity)) }

// LoadHead reads the writer's published byte offset (acquire).
func (h *header) LoadHead() uint64 { return atomic.LoadUint64(h.u64(offHead)) }

// StoreHead publishes a new head offset (release).
func (h *header) StoreHead(v uint64) { atomic.StoreUint64(h.u64(offHead), v) }

// LoadTail reads the reader's published byte offset (acquire).
func (h *header) LoadTail() uint64 { return atomic.LoadUint64(h.u64(offTail)) }

// StoreTail publishes a new tail offset (release).
func (h *header) StoreTail(v uint64) { atomic.StoreUint64(h.u64(offTail), v) }

func (h *header) ProducerPresent() bool { return atomic.LoadUint32(h.u32(offProducerPresent)) != 0 }
func (h *header) ConsumerPresent() bool { return atomic.LoadUint32(h.u32(offConsumerPresent)) != 0 }

func (h *header) CASProducerPresent(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(h.u32(offProducerPresent), old, new)
}

func (h *header) CASConsumerPresent(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(h.u32(offConsumerPresent), old, new)
}

// SetBackpressureWarned atomically transitions the warned flag 0->1 and
// reports whether this call was the one that made the transition; the flag
// only ever transitions once per segment lifetime.
func (h *header) SetBackpressureWarned() bool {
	return atomic.CompareAndSwapUint32(h.u32(offBackpressureWarned), 0, 1)
}

func (h *header) BackpressureWarned() bool {
	return atomic.LoadUint32(h.u32(offBackpressureWarned)) != 0
}

func (h *header) ProducerPID() uint32 { return atomic.LoadUint32(h.u32(offProducerPID)) }
func (h *header) ConsumerPID() uint32 { return atomic.LoadUint32(h.u32(offConsumerPID)) }

func (h *header) SetProducerPID(pid uint32) { atomic.StoreUint32(h.u32(offProducerPID), pid) }
func (h *header) SetConsumerPID(pid uint32) { atomic.StoreUint32(h.u32(offConsumerPID), pid) }

// nextPowerOfTwo rounds n up to the next power of two, with a floor of
// minRingSize so a tiny configured buffer size still leaves room for a
// maximum-size frame plus slack.
func nextPowerOfTwo(n uint64) uint64 {
	if n < minRingSize {
		n = minRingSize
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// minRingSize is the smallest ring this package will create, large enough
// for several maximum-payload frames plus the wrap record's own overhead.
const minRingSize = 64 * 1024

// alignFrame rounds a frame length up to a 4-byte boundary. Every advance
// of head and tail is aligned this way, so a length prefix or wrap sentinel
// never straddles the end of the ring.
func alignFrame(n uint64) uint64 {
	return (n + 3) &^ 3
}
