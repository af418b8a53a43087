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

// Package initiator establishes and supervises the outbound framed
// connection of a remote service.
//
// OpenConnection walks the remote address provider, creating one fresh
// configured socket per attempt. A per-address failure rejects the
// endpoint and moves on; exhaustion fails with a connection error that
// enumerates every address tried. A peer answering the channel open
// with a redirect list reroutes the walk to the listed endpoints
// without marking the original endpoint bad, decoding each subport
// encoded port on the way. When a subport is configured the 8 octet
// handshake prelude goes out before any framed traffic.
//
// Each open connection owns buffered streams over the socket and one
// dedicated reader goroutine delivering inbound frames to the receiver
// in wire order. Sends serialise on the output stream monitor, the last
// concurrent writer flushing for everyone. The close protocol runs
// once: reader retired, streams and socket released, listeners told
// whether the close was clean or carried a cause.
package initiator
