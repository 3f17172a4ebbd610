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

package iatomic

import (
	"sync/atomic"
)

// val implements Value[T] over sync/atomic.Value. The constructor stores
// T's zero value eagerly: atomic.Value.CompareAndSwap against an empty
// container never succeeds, so seeding it is what makes a CAS loop on a
// fresh counter work.
type val[T any] struct {
	av atomic.Value
}

func newValue[T any]() *val[T] {
	var zero T
	o := &val[T]{}
	o.av.Store(zero)
	return o
}

func (o *val[T]) Load() T {
	return o.av.Load().(T)
}

func (o *val[T]) Store(v T) {
	o.av.Store(v)
}

func (o *val[T]) CompareAndSwap(old, new T) bool {
	return o.av.CompareAndSwap(old, new)
}
