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

// Package iatomic provides a small, generic, lock-free Value[T] used by the
// latency sink's dropped-sample counter, where a bare sync/atomic.Value
// would force interface{} casts at every call site. The ring-buffer
// transport keeps its own raw sync/atomic accessors instead: its flags live
// in memory mapped across process boundaries, where a Go interface value
// cannot.
package iatomic

// Value is a generic, lock-free container. A freshly constructed Value
// holds the zero value of T, so Load and CompareAndSwap work without a
// prior Store.
type Value[T any] interface {
	// Load returns the current value.
	Load() T
	// Store sets the value.
	Store(val T)
	// CompareAndSwap stores new and reports true if the current value
	// equals old; callers loop on it to build read-modify-write updates
	// like a counter increment.
	CompareAndSwap(old, new T) bool
}

// NewValue returns a Value[T] holding the zero value of T.
func NewValue[T any]() Value[T] {
	return newValue[T]()
}
