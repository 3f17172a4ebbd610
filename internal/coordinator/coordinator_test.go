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

package coordinator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redhat-performance/rusty-comms/internal/coordinator"
	"github.com/redhat-performance/rusty-comms/internal/idur"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/logging"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCoordinator(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Coordinator Suite")
}

var _ = Describe("ResolveBinary", func() {
	It("falls back to the env var when the running binary's name doesn't match", func() {
		dir := GinkgoT().TempDir()
		fake := filepath.Join(dir, "fake-rusty-comms")
		Expect(os.WriteFile(fake, []byte("#!/bin/sh\nexit 0\n"), 0o755)).To(Succeed())

		GinkgoT().Setenv(coordinator.BinaryEnvVar, fake)

		got, err := coordinator.ResolveBinary()
		Expect(err).ToNot(HaveOccurred())
		Expect(got).To(Equal(fake))
	})

	It("fails with BinaryNotFound when nothing resolves", func() {
		GinkgoT().Setenv(coordinator.BinaryEnvVar, "")
		_, err := coordinator.ResolveBinary()
		if err == nil {
			Skip("conventional build path happens to exist in this checkout")
		}
		Expect(ierrs.KindOf(err)).To(Equal(ierrs.BinaryNotFound))
	})
})

var _ = Describe("Coordinator", func() {
	var log logging.Logger
	var c *coordinator.Coordinator
	var ctx context.Context
	var cancel context.CancelFunc

	BeforeEach(func() {
		log = logging.NewSink(GinkgoWriter, logging.InfoLevel)
		c = coordinator.New(log)
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	})

	AfterEach(func() {
		cancel()
	})

	Context("readiness handshake", func() {
		It("succeeds once the child writes the readiness byte", func() {
			peer, err := c.Spawn(ctx, "/bin/sh", []string{"-c", "printf '\\001'; sleep 5"}, os.Environ(), idur.Seconds(2))
			Expect(err).ToNot(HaveOccurred())
			Expect(peer.Pid()).To(BeNumerically(">", 0))

			Expect(c.Terminate(peer, idur.Seconds(1))).To(Succeed())
		})

		It("fails with HandshakeTimeout when the child never writes the byte", func() {
			_, err := c.Spawn(ctx, "/bin/sh", []string{"-c", "sleep 5"}, os.Environ(), idur.ParseDuration(150*time.Millisecond))
			Expect(err).To(HaveOccurred())
			Expect(ierrs.KindOf(err)).To(Equal(ierrs.HandshakeTimeout))
		})

		It("fails with HandshakeTimeout when the child writes the wrong byte", func() {
			_, err := c.Spawn(ctx, "/bin/sh", []string{"-c", "printf '\\002'; sleep 5"}, os.Environ(), idur.Seconds(2))
			Expect(err).To(HaveOccurred())
			Expect(ierrs.KindOf(err)).To(Equal(ierrs.HandshakeTimeout))
		})

		It("fails with ProcessSpawnFailed for a binary that can't be executed", func() {
			_, err := c.Spawn(ctx, "/no/such/binary-xyz", nil, os.Environ(), idur.Seconds(1))
			Expect(err).To(HaveOccurred())
			Expect(ierrs.KindOf(err)).To(Equal(ierrs.ProcessSpawnFailed))
		})
	})

	Context("Terminate", func() {
		It("waits for a child that exits on SIGTERM within the grace window", func() {
			peer, err := c.Spawn(ctx, "/bin/sh", []string{"-c", "printf '\\001'; trap 'exit 0' TERM; sleep 5 & wait"}, os.Environ(), idur.Seconds(2))
			Expect(err).ToNot(HaveOccurred())

			Expect(c.Terminate(peer, idur.Seconds(2))).To(Succeed())
		})

		It("force-kills a child that ignores SIGTERM past the grace window", func() {
			peer, err := c.Spawn(ctx, "/bin/sh", []string{"-c", "printf '\\001'; trap '' TERM; sleep 30"}, os.Environ(), idur.Seconds(2))
			Expect(err).ToNot(HaveOccurred())

			start := time.Now()
			err = c.Terminate(peer, idur.ParseDuration(200*time.Millisecond))
			elapsed := time.Since(start)

			Expect(err).To(HaveOccurred())
			Expect(elapsed).To(BeNumerically("<", 5*time.Second))
		})
	})
})

var _ = Describe("PinToCPU", func() {
	It("pins the calling thread to cpu 0, or reports AffinityUnavailable", func() {
		err := coordinator.PinToCPU(0)
		if err != nil {
			Expect(ierrs.KindOf(err)).To(Equal(ierrs.AffinityUnavailable))
		}
	})

	It("PinOrWarn never panics when given a negative core", func() {
		Expect(func() { coordinator.PinOrWarn(logging.NewSink(GinkgoWriter, logging.InfoLevel), -1) }).ToNot(Panic())
	})
})
