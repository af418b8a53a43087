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

type inp struct {
	r io.Reader
	b []byte // internal buffer
	n int    // valid length marker
	i int    // read cursor
}

// fillBuffer refills the internal buffer when it is fully drained and
// returns the number of buffered octets available. On a refill error the
// buffer is left empty so that the cursor and valid length stay consistent.
func (o *inp) fillBuffer() (int, error) {
	if cb := o.n - o.i; cb > 0 {
		return cb, nil
	}

	o.i = 0
	o.n = 0

	n, err := o.r.Read(o.b)
	if n > 0 {
		o.n = n
	}

	if err != nil && n > 0 {
		// keep what was buffered, surface the error on the next call
		return n, nil
	}

	return n, err
}

func (o *inp) ReadByte() (byte, error) {
	if o.i == o.n {
		if n, err := o.fillBuffer(); err != nil {
			return 0, err
		} else if n == 0 {
			return 0, io.EOF
		}
	}

	b := o.b[o.i]
	o.i++

	return b, nil
}

func (o *inp) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var cRead int

	// drain the buffer first
	if cb := o.n - o.i; cb > 0 {
		cRead = copy(p, o.b[o.i:o.n])
		o.i += cRead

		if cRead == len(p) {
			return cRead, nil
		}
	}

	// the remainder is at least a buffer worth: read straight through to
	// the underlying stream and avoid a needless copy
	for len(p)-cRead >= len(o.b) {
		n, err := o.r.Read(p[cRead:])
		cRead += n

		if err != nil {
			if cRead > 0 && err == io.EOF {
				return cRead, nil
			}
			return cRead, err
		} else if n == 0 || cRead == len(p) {
			return cRead, nil
		}
	}

	// finally refill the buffer once and satisfy from it as far as possible
	if n, err := o.fillBuffer(); err != nil {
		if cRead > 0 {
			return cRead, nil
		}
		return cRead, err
	} else if n > 0 {
		c := copy(p[cRead:], o.b[o.i:o.n])
		o.i += c
		cRead += c
	}

	return cRead, nil
}

func (o *inp) ReadFully(p []byte) error {
	for cRead := 0; cRead < len(p); {
		n, err := o.Read(p[cRead:])
		cRead += n

		if err != nil {
			return err
		} else if n == 0 {
			return io.ErrUnexpectedEOF
		}
	}

	return nil
}

func (o *inp) Available() (int, error) {
	cb := o.n - o.i

	if a, k := o.r.(Availabler); k {
		n, err := a.Available()
		if err != nil {
			return cb, err
		}
		return cb + n, nil
	}

	return cb, nil
}

func (o *inp) Close() error {
	o.i = 0
	o.n = 0

	if c, k := o.r.(io.Closer); k {
		return c.Close()
	}

	return nil
}
