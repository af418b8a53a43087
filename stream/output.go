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

package stream

import (
	"io"
)

type out struct {
	w io.Writer
	b []byte // internal buffer
	n int    // buffered length
}

func (o *out) flushBuffer() error {
	if o.n > 0 {
		n := o.n
		o.n = 0

		if _, err := o.w.Write(o.b[:n]); err != nil {
			return err
		}
	}

	return nil
}

func (o *out) WriteByte(b byte) error {
	if o.n == len(o.b) {
		if err := o.flushBuffer(); err != nil {
			return err
		}
	}

	o.b[o.n] = b
	o.n++

	return nil
}

// Write minimizes the number of flush and write calls on the underlying
// stream while maximizing the size of each write.
func (o *out) Write(p []byte) (int, error) {
	var (
		cb     = len(p)
		cbFree = len(o.b) - o.n
	)

	switch {
	case cb < cbFree:
		// input fits in the existing buffer; just buffer the entire contents
		o.n += copy(o.b[o.n:], p)

	case o.n == 0:
		// nothing is buffered and the input does not fit; just write
		return o.w.Write(p)

	case cb < cbFree+len(o.b):
		// one write is possible with buffered data; fill, flush, buffer
		copy(o.b[o.n:], p[:cbFree])
		o.n = len(o.b)

		if err := o.flushBuffer(); err != nil {
			return 0, err
		}

		o.n = copy(o.b, p[cbFree:])

	default:
		// two writes required; just flush then write, filling the buffer
		// first would only add a needless copy
		if err := o.flushBuffer(); err != nil {
			return 0, err
		}

		return o.w.Write(p)
	}

	return cb, nil
}

func (o *out) Flush() error {
	if err := o.flushBuffer(); err != nil {
		return err
	}

	if f, k := o.w.(Flusher); k {
		return f.Flush()
	}

	return nil
}

func (o *out) Close() error {
	err := o.Flush()

	if c, k := o.w.(io.Closer); k {
		if e := c.Close(); err == nil {
			err = e
		}
	}

	return err
}
