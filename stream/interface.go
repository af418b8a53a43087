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

	libsck "github.com/nabbar/golib/socket"
)

// InputStream is a buffered octet input stream layered over a raw stream.
// Reads drain the internal buffer first, bypass it entirely for requests
// at least as large as the buffer, and otherwise refill it once.
type InputStream interface {
	io.Reader
	io.ByteReader
	io.Closer

	// ReadFully reads exactly len(p) octets or fails with the underlying error.
	ReadFully(p []byte) error

	// Available returns the number of octets readable without blocking,
	// the buffered count plus whatever the underlying stream reports.
	Available() (int, error)
}

// OutputStream is a buffered octet output stream layered over a raw stream.
// Flush forces the buffer through and flushes the underlying stream.
type OutputStream interface {
	io.Writer
	io.ByteWriter
	io.Closer

	Flush() error
}

// Availabler is implemented by raw streams able to report readable octets
// without blocking. The buffered input stream adds its own buffered count
// on top of it.
type Availabler interface {
	Available() (int, error)
}

// Flusher is implemented by raw streams with their own buffering.
type Flusher interface {
	Flush() error
}

// NewInput returns a buffered input stream over r with the given buffer
// size. A size lower than one falls back to the default buffer size.
func NewInput(r io.Reader, size int) InputStream {
	if size < 1 {
		size = libsck.DefaultBufferSize
	}

	return &inp{
		r: r,
		b: make([]byte, size),
		n: 0,
		i: 0,
	}
}

// NewOutput returns a buffered output stream over w with the given buffer
// size. A size lower than one falls back to the default buffer size.
func NewOutput(w io.Writer, size int) OutputStream {
	if size < 1 {
		size = libsck.DefaultBufferSize
	}

	return &out{
		w: w,
		b: make([]byte, size),
		n: 0,
	}
}
