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
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/redhat-performance/rusty-comms/internal/ierrs"
)

// shmDir is where named segments live. POSIX shm_open-backed segments are
// ordinary files under a tmpfs mount on Linux; this package opens that file
// directly rather than binding the libc shm_open/shm_unlink symbols, since
// golang.org/x/sys/unix does not wrap those and the file-based view is
// exactly what they resolve to underneath.
var shmDir = "/dev/shm"

func segmentPath(name string) string {
	return filepath.Join(shmDir, "rusty-comms."+name)
}

// segment is one mapped control-header-plus-ring region.
type segment struct {
	name     string
	path     string
	file     *os.File
	data     []byte
	hdr      *header
	capacity uint64
	owner    bool // true if this process created (and will unlink) the segment
}

// createSegment creates a new named segment of the given requested ring
// size (rounded up to a power of two), pre-cleaning any stale file left by
// a crashed prior run.
func createSegment(name string, requestedRingSize int) (*segment, error) {
	path := segmentPath(name)
	ring := nextPowerOfTwo(uint64(requestedRingSize))
	size := int64(HeaderSize) + int64(ring)

	// Best-effort pre-clean: a leftover file from an unclean shutdown is
	// removed unconditionally before (re)creating, matching the UDS
	// socket-path pre-clean in the stream transports.
	_ = os.Remove(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_EXCL, 0o600)
	if err != nil {
		return nil, ierrs.IoError.New(err)
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, ierrs.IoError.New(err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, ierrs.IoError.New(err)
	}

	hdr := newHeader(data)
	hdr.initIdentity(ring)
	hdr.StoreHead(0)
	hdr.StoreTail(0)

	return &segment{name: name, path: path, file: f, data: data, hdr: hdr, capacity: ring, owner: true}, nil
}

// openSegment opens an existing segment by name, created by the server
// side. It retries is the caller's responsibility (the coordinator's
// readiness handshake already guarantees the creator has run by the time a
// dialer calls this).
func openSegment(name string) (*segment, error) {
	path := segmentPath(name)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, ierrs.TransportUnavailable.New(err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ierrs.IoError.New(err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, ierrs.IoError.New(err)
	}

	hdr := newHeader(data)
	if hdr.Magic() != magic {
		_ = unix.Munmap(data)
		_ = f.Close()
		return nil, ierrs.ProtocolMismatch.Newf("segment %q has no valid control header", name)
	}

	return &segment{name: name, path: path, file: f, data: data, hdr: hdr, capacity: hdr.Capacity(), owner: false}, nil
}

// claimProducer marks this process as the segment's producer, first
// clearing a stale flag left by a dead prior producer so a crashed run
// never wedges the segment for its successor.
func (s *segment) claimProducer() error {
	if s.hdr.ProducerPresent() && !processAlive(s.hdr.ProducerPID()) {
		s.hdr.CASProducerPresent(1, 0)
	}
	if !s.hdr.CASProducerPresent(0, 1) {
		return ierrs.TransportUnavailable.Newf("segment %q already has a live producer", s.name)
	}
	s.hdr.SetProducerPID(uint32(os.Getpid()))
	return nil
}

// claimConsumer is claimProducer's mirror for the consumer role.
func (s *segment) claimConsumer() error {
	if s.hdr.ConsumerPresent() && !processAlive(s.hdr.ConsumerPID()) {
		s.hdr.CASConsumerPresent(1, 0)
	}
	if !s.hdr.CASConsumerPresent(0, 1) {
		return ierrs.TransportUnavailable.Newf("segment %q already has a live consumer", s.name)
	}
	s.hdr.SetConsumerPID(uint32(os.Getpid()))
	return nil
}

func (s *segment) releaseProducer() { s.hdr.CASProducerPresent(1, 0) }
func (s *segment) releaseConsumer() { s.hdr.CASConsumerPresent(1, 0) }

// ring returns the byte slice backing the ring itself, excluding the
// control header.
func (s *segment) ring() []byte { return s.data[HeaderSize:] }

// close unmaps and closes the segment's file descriptor. If this process
// owns the segment (created it), the named file is also unlinked — but
// only once both sides have released their role, so a still-attached peer
// never loses the mapping out from under it.
func (s *segment) close() error {
	unlink := s.owner && !s.hdr.ProducerPresent() && !s.hdr.ConsumerPresent()
	err := unix.Munmap(s.data)
	if cerr := s.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if unlink {
		_ = os.Remove(s.path)
	}
	if err != nil {
		return ierrs.IoError.New(err)
	}
	return nil
}

// processAlive reports whether pid names a live process, used to detect a
// crashed peer's stale presence flag. pid 0 (never claimed) is never
// considered alive.
func processAlive(pid uint32) bool {
	if pid == 0 {
		return false
	}
	err := unix.Kill(int(pid), 0)
	if err == nil || err == syscall.EPERM {
		// EPERM still means something with that pid exists, just owned by
		// another user; ESRCH (or any other error) means it does not.
		return true
	}
	return false
}
