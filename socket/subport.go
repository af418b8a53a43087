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

package socket

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const (
	// NameServiceSubPort is the well known subport of the cluster name
	// service.
	NameServiceSubPort int32 = 3

	// NoSubPort marks a plain TCP port with no subport demultiplexing.
	NoSubPort int32 = -1

	// subPortMagic opens the 8 octet prelude emitted right after connect
	// when a subport is in use.
	subPortMagic uint32 = 0x5AC1E000
)

// CalculateBaseport extracts the base TCP port from a subport encoded
// port value. A plain port value is returned unchanged.
func CalculateBaseport(n int32) int32 {
	if ^n>>16 == -1 {
		return n
	}

	return int32(uint32(^n) >> 16)
}

// CalculateSubport extracts the subport index from a subport encoded
// port value, or NoSubPort when n is a plain port.
func CalculateSubport(n int32) int32 {
	if ^n>>16 == -1 {
		return NoSubPort
	}

	return ^n & 0xFFFF
}

// EncodeSubport packs a base TCP port and a subport index into the wire
// form carried by name service responses and redirect lists. A base of
// 0xFFFF cannot be represented, its encoding would collide with the
// plain port range.
func EncodeSubport(base, sub int32) int32 {
	return int32(^(uint32(base)<<16 | uint32(sub)&0xFFFF))
}

// WriteSubport emits the 8 octet subport handshake prelude on w, the
// magic followed by the big endian subport index.
func WriteSubport(w io.Writer, subport int32) error {
	var p [8]byte

	binary.BigEndian.PutUint32(p[:4], subPortMagic)
	binary.BigEndian.PutUint32(p[4:], uint32(subport))

	if _, err := w.Write(p[:]); err != nil {
		return ErrorSocketIO.Error(err)
	}

	return nil
}

// FormatAddress renders addr the way connect attempts are reported,
// host:port with the subport suffixed after a dot when one is set.
func FormatAddress(addr *net.TCPAddr, subport int32) string {
	if subport != NoSubPort {
		return fmt.Sprintf("%s.%d", addr.String(), subport)
	}

	return addr.String()
}
