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

package idur_test

import (
	"encoding/json"
	"time"

	"github.com/redhat-performance/rusty-comms/internal/idur"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Duration", func() {
	Context("parsing flag values", func() {
		It("accepts the time.ParseDuration syntax", func() {
			d, err := idur.Parse("2s")
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Time()).To(Equal(2 * time.Second))

			d, err = idur.Parse("500ms")
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Time()).To(Equal(500 * time.Millisecond))

			d, err = idur.Parse("100us")
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Time()).To(Equal(100 * time.Microsecond))
		})

		It("strips surrounding quotes before parsing", func() {
			d, err := idur.Parse(`"1m30s"`)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Time()).To(Equal(90 * time.Second))

			d, err = idur.Parse("'250ms'")
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Time()).To(Equal(250 * time.Millisecond))
		})

		It("rejects values time.ParseDuration rejects", func() {
			_, err := idur.Parse("not-a-duration")
			Expect(err).To(HaveOccurred())

			_, err = idur.Parse("")
			Expect(err).To(HaveOccurred())
		})
	})

	Context("constructors", func() {
		It("builds from seconds and from a time.Duration", func() {
			Expect(idur.Seconds(5).Time()).To(Equal(5 * time.Second))
			Expect(idur.ParseDuration(200 * time.Millisecond).Time()).To(Equal(200 * time.Millisecond))
		})
	})

	Context("rendering", func() {
		It("renders the same syntax Parse accepts", func() {
			d := idur.ParseDuration(90 * time.Second)
			back, err := idur.Parse(d.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(back).To(Equal(d))
		})
	})

	Context("JSON encoding", func() {
		It("round-trips through its string form", func() {
			d := idur.ParseDuration(1500 * time.Millisecond)

			enc, err := json.Marshal(d)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(enc)).To(Equal(`"1.5s"`))

			var dec idur.Duration
			Expect(json.Unmarshal(enc, &dec)).To(Succeed())
			Expect(dec).To(Equal(d))
		})

		It("decodes inside a struct field, as the config handoff does", func() {
			type carrier struct {
				Grace idur.Duration `json:"grace,omitempty"`
			}

			var c carrier
			Expect(json.Unmarshal([]byte(`{"grace":"500ms"}`), &c)).To(Succeed())
			Expect(c.Grace.Time()).To(Equal(500 * time.Millisecond))
		})

		It("rejects malformed duration strings", func() {
			var d idur.Duration
			Expect(json.Unmarshal([]byte(`"bogus"`), &d)).ToNot(Succeed())
		})
	})

	Context("text encoding", func() {
		It("round-trips through MarshalText/UnmarshalText", func() {
			d := idur.Seconds(42)

			txt, err := d.MarshalText()
			Expect(err).ToNot(HaveOccurred())

			var dec idur.Duration
			Expect(dec.UnmarshalText(txt)).To(Succeed())
			Expect(dec).To(Equal(d))
		})
	})
})
