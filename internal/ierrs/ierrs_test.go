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

package ierrs_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

func TestKindString(t *testing.T) {
	cases := map[ierrs.Kind]string{
		ierrs.Unknown:       "unknown error",
		ierrs.AddressInUse:  "address already in use",
		ierrs.FrameTooLarge: "frame exceeds the maximum allowed size",
		ierrs.Kind(9999):    "kind(9999)",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestNewCarriesKind(t *testing.T) {
	e := ierrs.PeerClosed.New()
	if e.Kind() != ierrs.PeerClosed {
		t.Fatalf("Kind() = %v, want PeerClosed", e.Kind())
	}
	if e.Error() != ierrs.PeerClosed.String() {
		t.Fatalf("Error() = %q, want %q", e.Error(), ierrs.PeerClosed.String())
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	e := ierrs.ConfigInvalid.Newf("workers must be >= 1, got %d", 0)
	if !strings.Contains(e.Error(), "workers must be >= 1, got 0") {
		t.Fatalf("Error() = %q, want formatted message", e.Error())
	}
}

func TestIsMatchesKindAcrossParentChain(t *testing.T) {
	root := ierrs.IoError.New(errors.New("connection reset by peer"))
	wrapped := ierrs.PeerClosed.New(root)

	if !ierrs.Is(wrapped, ierrs.PeerClosed) {
		t.Error("Is(wrapped, PeerClosed) = false, want true")
	}
	if !ierrs.Is(wrapped, ierrs.IoError) {
		t.Error("Is(wrapped, IoError) = false, want true (should find parent)")
	}
	if ierrs.Is(wrapped, ierrs.FrameTooLarge) {
		t.Error("Is(wrapped, FrameTooLarge) = true, want false")
	}
}

func TestKindOf(t *testing.T) {
	e := ierrs.HandshakeTimeout.New()
	if got := ierrs.KindOf(e); got != ierrs.HandshakeTimeout {
		t.Errorf("KindOf(e) = %v, want HandshakeTimeout", got)
	}
	if got := ierrs.KindOf(errors.New("plain stdlib error")); got != ierrs.Unknown {
		t.Errorf("KindOf(plain error) = %v, want Unknown", got)
	}
}

func TestModeRendering(t *testing.T) {
	defer ierrs.SetMode(ierrs.GetMode())

	e := ierrs.Truncated.New()

	ierrs.SetMode(ierrs.Message)
	if e.Error() != ierrs.Truncated.String() {
		t.Errorf("Message mode: Error() = %q, want bare message", e.Error())
	}

	ierrs.SetMode(ierrs.MessageKind)
	if !strings.Contains(e.Error(), ierrs.Truncated.String()) {
		t.Errorf("MessageKind mode: Error() = %q, want message present", e.Error())
	}

	detail := e.Detail(ierrs.MessageKindTrace)
	if !strings.Contains(detail, ".go:") {
		t.Errorf("Detail(MessageKindTrace) = %q, want a file:line call site", detail)
	}
}

func TestUnwrapExposesParents(t *testing.T) {
	p1 := errors.New("first cause")
	p2 := errors.New("second cause")
	e := ierrs.IoError.New(p1, p2)

	parents := e.Unwrap()
	if len(parents) != 2 {
		t.Fatalf("Unwrap() returned %d parents, want 2", len(parents))
	}
}
