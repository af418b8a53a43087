/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package stream_test

import (
	"bytes"
	"io"

	libstm "github/sabouaram/extendlib/stream"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("InputStream", func() {
	Context("single octet reads", func() {
		It("should return octets in order and EOF at the end", func() {
			in := libstm.NewInput(bytes.NewBuffer([]byte{1, 2, 3}), 2)

			for _, want := range []byte{1, 2, 3} {
				b, err := in.ReadByte()
				Expect(err).ToNot(HaveOccurred())
				Expect(b).To(Equal(want))
			}

			_, err := in.ReadByte()
			Expect(err).To(MatchError(io.EOF))
		})
	})

	Context("buffered reads", func() {
		It("should drain the buffer before touching the stream", func() {
			src := pattern(16)
			in := libstm.NewInput(&chunkReader{buf: bytes.NewBuffer(src), chunk: 16}, 8)

			b, err := in.ReadByte()
			Expect(err).ToNot(HaveOccurred())
			Expect(b).To(Equal(src[0]))

			p := make([]byte, 7)
			n, err := in.Read(p)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(7))
			Expect(p).To(Equal(src[1:8]))
		})

		It("should read straight through for requests at least a buffer large", func() {
			src := pattern(64)
			in := libstm.NewInput(bytes.NewBuffer(src), 8)

			p := make([]byte, 64)
			Expect(in.ReadFully(p)).To(Succeed())
			Expect(p).To(Equal(src))
		})

		It("should satisfy a short request from a single refill", func() {
			src := pattern(32)
			in := libstm.NewInput(&chunkReader{buf: bytes.NewBuffer(src), chunk: 5}, 8)

			p := make([]byte, 4)
			Expect(in.ReadFully(p)).To(Succeed())
			Expect(p).To(Equal(src[:4]))
		})
	})

	Context("ReadFully", func() {
		It("should assemble the full requested length across refills", func() {
			src := pattern(100)
			in := libstm.NewInput(&chunkReader{buf: bytes.NewBuffer(src), chunk: 7}, 16)

			p := make([]byte, 100)
			Expect(in.ReadFully(p)).To(Succeed())
			Expect(p).To(Equal(src))
		})

		It("should fail when the stream ends early", func() {
			in := libstm.NewInput(bytes.NewBuffer(pattern(5)), 16)

			p := make([]byte, 10)
			Expect(in.ReadFully(p)).ToNot(Succeed())
		})
	})

	Context("refill failure", func() {
		It("should leave the stream consistent with an empty buffer", func() {
			in := libstm.NewInput(&failReader{err: errRefill}, 8)

			_, err := in.ReadByte()
			Expect(err).To(MatchError(errRefill))

			av, err := in.Available()
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(0))
		})
	})

	Context("Available", func() {
		It("should count octets still sitting in the buffer", func() {
			in := libstm.NewInput(bytes.NewBuffer(pattern(8)), 8)

			_, err := in.ReadByte()
			Expect(err).ToNot(HaveOccurred())

			av, err := in.Available()
			Expect(err).ToNot(HaveOccurred())
			Expect(av).To(Equal(7))
		})
	})
})
