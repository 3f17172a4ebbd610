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

package uds_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redhat-performance/rusty-comms/internal/envelope"
	"github.com/redhat-performance/rusty-comms/internal/ierrs"
	"github.com/redhat-performance/rusty-comms/internal/transport"
	"github.com/redhat-performance/rusty-comms/internal/transport/uds"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUDS(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Unix Domain Socket Transport Suite")
}

func socketPath() string {
	return filepath.Join(GinkgoT().TempDir(), "rusty-comms-test.sock")
}

var _ = Describe("uds stream transport", func() {
	var ctx context.Context
	var cancel context.CancelFunc

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	})

	AfterEach(func() {
		cancel()
	})

	Context("accept and dial", func() {
		It("carries a framed envelope over an accepted connection", func() {
			path := socketPath()
			srv, err := uds.NewServer(path)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = srv.Close() }()

			acceptCh := make(chan transport.Endpoint, 1)
			go func() {
				defer GinkgoRecover()
				ep, err := srv.Accept(ctx)
				Expect(err).ToNot(HaveOccurred())
				acceptCh <- ep
			}()

			clientEP, err := uds.NewDialer(path).Dial(ctx)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = clientEP.Close() }()

			serverEP := <-acceptCh
			defer func() { _ = serverEP.Close() }()

			want := envelope.Envelope{ID: 3, Kind: envelope.Request, Payload: []byte("hello")}
			Expect(clientEP.Send(ctx, want)).To(Succeed())

			got, err := serverEP.Recv(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.ID).To(Equal(want.ID))
			Expect(string(got.Payload)).To(Equal(string(want.Payload)))
		})
	})

	Context("socket file lifecycle", func() {
		It("removes a stale non-socket file left at the path before binding", func() {
			path := socketPath()
			Expect(os.WriteFile(path, []byte("stale"), 0o644)).To(Succeed())

			srv, err := uds.NewServer(path)
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = srv.Close() }()
		})

		It("unlinks the socket file on Close", func() {
			path := socketPath()
			srv, err := uds.NewServer(path)
			Expect(err).ToNot(HaveOccurred())

			Expect(srv.Close()).To(Succeed())

			_, err = os.Stat(path)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Context("failure taxonomy", func() {
		It("fails with PeerClosed when dialing a path with no server", func() {
			path := socketPath()
			_, err := uds.NewDialer(path).Dial(ctx)
			Expect(err).To(HaveOccurred())
			Expect(ierrs.KindOf(err)).To(Equal(ierrs.PeerClosed))
		})
	})
})
