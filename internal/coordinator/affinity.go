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

package coordinator

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/logging"
)

// PinToCPU locks the calling goroutine to its OS thread and restricts that
// thread to the given CPU. It is meant to be called once,
// early, from the goroutine that will go on to run the hot send/receive
// loop for a worker, since sched_setaffinity applies to the calling thread.
//
// Failure to set affinity is never fatal to a run: the caller logs a
// warning and keeps going unpinned.
func PinToCPU(core int) error {
	runtime.LockOSThread()

	var mask unix.CPUSet
	mask.Set(core)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return ierrs.AffinityUnavailable.Newf("pin to cpu %d: %v", core, err)
	}
	return nil
}

// PinOrWarn calls PinToCPU and logs a warning instead of failing the run
// when pinning isn't available, since affinity is a performance aid, not a
// correctness requirement. A negative core means "don't pin."
func PinOrWarn(log logging.Logger, core int) {
	if core < 0 {
		return
	}
	if err := PinToCPU(core); err != nil {
		if log != nil {
			log.Warnf("cpu affinity: %v", err)
		}
		return
	}
	if log != nil {
		log.Debugf("pinned to cpu %d", core)
	}
}
