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

// Packed signed integer wire layout: the first octet carries a
// continuation flag on bit 7, a sign flag on bit 6 and six data bits;
// each following octet carries a continuation flag on bit 7 and seven
// data bits, least significant group first. Negative values set the sign
// flag and store the bitwise complement of the value (^n, i.e. -n-1).

// WritePackedInt32 emits n in packed form on w.
func WritePackedInt32(w io.ByteWriter, n int32) error {
	var b byte

	if n < 0 {
		b = 0x40
		n = ^n
	}

	u := uint32(n)

	// first octet carries only 6 data bits
	b |= byte(u & 0x3F)
	u >>= 6

	for u != 0 {
		if err := w.WriteByte(b | 0x80); err != nil {
			return err
		}

		b = byte(u & 0x7F)
		u >>= 7
	}

	return w.WriteByte(b)
}

// ReadPackedInt32 decodes a packed signed integer from r.
func ReadPackedInt32(r io.ByteReader) (int32, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	var (
		u    = uint32(b & 0x3F)
		bits = uint(6)
		neg  = b&0x40 != 0
	)

	for b&0x80 != 0 {
		if b, err = r.ReadByte(); err != nil {
			return 0, err
		}

		u |= uint32(b&0x7F) << bits
		bits += 7
	}

	if neg {
		u = ^u
	}

	return int32(u), nil
}

// SizePackedInt32 returns the number of octets WritePackedInt32 emits for n.
func SizePackedInt32(n int32) int {
	if n < 0 {
		n = ^n
	}

	c := 1
	for u := uint32(n) >> 6; u != 0; u >>= 7 {
		c++
	}

	return c
}
