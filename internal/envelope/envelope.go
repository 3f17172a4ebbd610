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

// Package envelope implements the message header, its byte-exact wire
// codec, and the two framings (length-prefixed byte-stream, whole-unit
// datagram) every transport builds on.
package envelope

import (
	"encoding/binary"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// Kind tags an envelope's role in the measurement loop.
type Kind uint8

const (
	OneWay Kind = iota
	Request
	Reply
	Terminate
)

// HeaderSize is the fixed, little-endian-encoded header length in bytes:
// id(8) + send_timestamp_ns(8) + echo_timestamp_ns(8) + worker_id(4) +
// kind(1) + payload_len(4).
const HeaderSize = 8 + 8 + 8 + 4 + 1 + 4

// MaxFrameSize is the frame-length cap: a frame whose
// declared length exceeds this is rejected as FrameTooLarge before any
// allocation is attempted.
const MaxFrameSize = 64 << 20

// Envelope is a header plus an opaque payload.
type Envelope struct {
	ID              uint64
	SendTimestampNs uint64
	EchoTimestampNs uint64
	WorkerID        uint32
	Kind            Kind
	Payload         []byte
}

// Encode serializes e into its byte-exact wire form: the fixed header
// followed by the payload, with no framing.
func Encode(e Envelope) []byte {
	buf := make([]byte, HeaderSize+len(e.Payload))
	binary.LittleEndian.PutUint64(buf[0:8], e.ID)
	binary.LittleEndian.PutUint64(buf[8:16], e.SendTimestampNs)
	binary.LittleEndian.PutUint64(buf[16:24], e.EchoTimestampNs)
	binary.LittleEndian.PutUint32(buf[24:28], e.WorkerID)
	buf[28] = byte(e.Kind)
	binary.LittleEndian.PutUint32(buf[29:33], uint32(len(e.Payload)))
	copy(buf[HeaderSize:], e.Payload)
	return buf
}

// Decode parses the byte-exact wire form produced by Encode. It returns
// ierrs.Truncated if b is shorter than its own declared length.
func Decode(b []byte) (Envelope, error) {
	if len(b) < HeaderSize {
		return Envelope{}, ierrs.Truncated.Newf("envelope header needs %d bytes, got %d", HeaderSize, len(b))
	}

	payloadLen := binary.LittleEndian.Uint32(b[29:33])
	if uint32(len(b)-HeaderSize) < payloadLen {
		return Envelope{}, ierrs.Truncated.Newf("envelope declares %d payload bytes, got %d", payloadLen, len(b)-HeaderSize)
	}

	e := Envelope{
		ID:              binary.LittleEndian.Uint64(b[0:8]),
		SendTimestampNs: binary.LittleEndian.Uint64(b[8:16]),
		EchoTimestampNs: binary.LittleEndian.Uint64(b[16:24]),
		WorkerID:        binary.LittleEndian.Uint32(b[24:28]),
		Kind:            Kind(b[28]),
	}
	if payloadLen > 0 {
		e.Payload = append([]byte(nil), b[HeaderSize:HeaderSize+payloadLen]...)
	}
	return e, nil
}

// EncodeDatagram is Encode under the whole-unit datagram framing: shm and
// pmq move exactly one Encode result per send/recv, so there is no length
// prefix to add on top of the header's own payload_len field.
func EncodeDatagram(e Envelope) []byte {
	return Encode(e)
}

// DecodeDatagram is Decode under the whole-unit datagram framing (see
// EncodeDatagram).
func DecodeDatagram(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ierrs.Truncated.Newf("empty datagram")
	}
	return Decode(b)
}

// NewPayload returns a deterministic, zero-filled payload of size n, used
// by the driver to build envelopes of the configured message size. Its
// content is never inspected past its length, so a fixed pattern is
// sufficient and avoids spending CPU on a PRNG per message.
func NewPayload(n int) []byte {
	return make([]byte, n)
}
