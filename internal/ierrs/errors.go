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

package ierrs

import (
	"fmt"
	"runtime"
	"strings"
)

// Error is the taxonomy-aware error type threaded through every transport
// and driver failure path.
type Error interface {
	error

	// Kind returns the error's category.
	Kind() Kind
	// Is reports whether err shares this error's Kind, or, failing that,
	// its message.
	Is(err error) bool
	// Unwrap exposes the parent chain to errors.Is/errors.As.
	Unwrap() []error
	// Detail renders the error under the given Mode, independent of
	// the package-wide mode set by SetMode.
	Detail(mode Mode) string
}

type ers struct {
	k Kind
	m string
	p []error
	t runtime.Frame
}

func newError(k Kind, msg string, parent []error) Error {
	return &ers{k: k, m: msg, p: compact(parent), t: getFrame()}
}

func newErrorf(k Kind, format string, args []any) Error {
	return &ers{k: k, m: fmt.Sprintf(format, args...), p: nil, t: getFrame()}
}

func compact(parent []error) []error {
	if len(parent) == 0 {
		return nil
	}
	out := make([]error, 0, len(parent))
	for _, p := range parent {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (e *ers) Kind() Kind { return e.k }

func (e *ers) Error() string { return modeError.render(e) }

func (e *ers) Detail(mode Mode) string { return mode.render(e) }

func (e *ers) Unwrap() []error { return e.p }

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}
	if oe, ok := err.(*ers); ok {
		return e.k != Unknown && e.k == oe.k
	}
	return strings.EqualFold(e.m, err.Error())
}

func (e *ers) trace() string {
	if e.t.File != "" {
		return fmt.Sprintf("%s:%d", filterPath(e.t.File), e.t.Line)
	}
	return ""
}

// Is reports whether err carries Kind k anywhere in its parent chain.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*ers); ok && e.k == k {
			return true
		}
		u, ok := err.(interface{ Unwrap() []error })
		if !ok {
			return false
		}
		found := false
		for _, p := range u.Unwrap() {
			if Is(p, k) {
				found = true
				break
			}
		}
		return found
	}
	return false
}

// KindOf returns the Kind carried by err, or Unknown if err was not built by
// this package.
func KindOf(err error) Kind {
	if e, ok := err.(*ers); ok {
		return e.k
	}
	return Unknown
}
