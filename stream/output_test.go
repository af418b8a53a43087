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
	libstm "github/sabouaram/extendlib/stream"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OutputStream", func() {
	Context("buffering", func() {
		It("should hold back writes that fit in the buffer", func() {
			w := &recordWriter{}
			out := libstm.NewOutput(w, 8)

			_, err := out.Write(pattern(4))
			Expect(err).ToNot(HaveOccurred())
			Expect(w.writes).To(BeEmpty())

			Expect(out.Flush()).To(Succeed())
			Expect(w.writes).To(Equal([]int{4}))
			Expect(w.buf.Bytes()).To(Equal(pattern(4)))
		})

		It("should write straight through when the buffer is empty and the input does not fit", func() {
			w := &recordWriter{}
			out := libstm.NewOutput(w, 8)

			_, err := out.Write(pattern(8))
			Expect(err).ToNot(HaveOccurred())
			Expect(w.writes).To(Equal([]int{8}))
		})

		It("should fill, flush and re-buffer when one write is enough", func() {
			w := &recordWriter{}
			out := libstm.NewOutput(w, 8)

			_, err := out.Write(pattern(5))
			Expect(err).ToNot(HaveOccurred())

			_, err = out.Write(pattern(6))
			Expect(err).ToNot(HaveOccurred())

			// one full buffer went out, the tail stayed buffered
			Expect(w.writes).To(Equal([]int{8}))

			Expect(out.Flush()).To(Succeed())
			Expect(w.writes).To(Equal([]int{8, 3}))
		})

		It("should flush then write straight through for much larger input", func() {
			w := &recordWriter{}
			out := libstm.NewOutput(w, 8)

			_, err := out.Write(pattern(3))
			Expect(err).ToNot(HaveOccurred())

			_, err = out.Write(pattern(20))
			Expect(err).ToNot(HaveOccurred())

			Expect(w.writes).To(Equal([]int{3, 20}))
		})
	})

	Context("Flush", func() {
		It("should force the buffer through and flush the underlying stream", func() {
			w := &recordWriter{}
			out := libstm.NewOutput(w, 8)

			Expect(out.WriteByte(0x2A)).To(Succeed())
			Expect(out.Flush()).To(Succeed())

			Expect(w.writes).To(Equal([]int{1}))
			Expect(w.flush).To(Equal(1))
		})

		It("should be a no-op on an empty buffer except the underlying flush", func() {
			w := &recordWriter{}
			out := libstm.NewOutput(w, 8)

			Expect(out.Flush()).To(Succeed())
			Expect(w.writes).To(BeEmpty())
			Expect(w.flush).To(Equal(1))
		})
	})

	Context("sequential content", func() {
		It("should preserve octet order across mixed write sizes", func() {
			w := &recordWriter{}
			out := libstm.NewOutput(w, 16)

			var all []byte

			for _, n := range []int{1, 15, 16, 17, 2, 40} {
				p := pattern(n)
				all = append(all, p...)

				c, err := out.Write(p)
				Expect(err).ToNot(HaveOccurred())
				Expect(c).To(Equal(n))
			}

			Expect(out.Flush()).To(Succeed())
			Expect(w.buf.Bytes()).To(Equal(all))
		})
	})
})
