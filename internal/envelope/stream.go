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

package envelope

import (
	"encoding/binary"
	"io"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// WriteFrame writes e to w as a 4-byte big-endian length prefix followed by
// its encoded bytes, the framing stream transports use.
func WriteFrame(w io.Writer, e Envelope) error {
	body := Encode(e)
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))

	if _, err := w.Write(prefix[:]); err != nil {
		return ierrs.IoError.New(err)
	}
	if _, err := w.Write(body); err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r and decodes it. A short
// read on the prefix or body surfaces as ierrs.Truncated wrapping the
// underlying io error; a declared length over MaxFrameSize is
// ierrs.FrameTooLarge without attempting to read the body.
func ReadFrame(r io.Reader) (Envelope, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return Envelope{}, ierrs.Truncated.New(err)
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if n > MaxFrameSize {
		return Envelope{}, ierrs.FrameTooLarge.Newf("frame declares %d bytes, cap is %d", n, MaxFrameSize)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Envelope{}, ierrs.Truncated.New(err)
	}

	return Decode(body)
}
