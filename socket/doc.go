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

// Package socket provides the outbound stream socket used by the
// connection initiator: timed reads and writes with cooperative
// cancellation through the caller's context, socket option control with
// clamp detection, and the subport handshake applied after a plain TCP
// connect.
//
// A blocked operation re-arms its OS deadline at the configured poll
// interval so a context cancellation is observed within one interval
// even when the peer stays silent. Reaching the effective deadline
// surfaces an InterruptedIOError with Timeout set; a cancellation
// surfaces one without. Both carry the octet count moved so far.
//
// The subport codec packs a base TCP port and a 16 bit subport index
// into a single encoded port value, the form carried by name service
// responses and redirect lists.
package socket
