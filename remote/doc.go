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

// Package remote assembles the client side of a clustered remote
// service: the inner service owning the connection initiator, and the
// safe wrapper the application actually holds.
//
// The inner remote service maps its connection lifecycle onto cluster
// member events: an accepted connection reports the member joined, a
// lost one reports leaving then left, and the next call through the
// service transparently reopens. When the configuration points at the
// cluster name service instead of a proxy, a throwaway initiator
// connects to the well known name service subport first, the channel
// layer collaborator performs the lookup, and the real initiator is
// rewired onto the answered endpoint.
//
// The safe wrapper holds the durable identity. Its listeners register
// once and survive every inner restart: the wrapper installs its own
// callback pair on each fresh incarnation, drops late events from dead
// ones and re-dispatches with itself as the event source. A wrapper is
// stopped terminally; a stopped inner service only means the next
// EnsureRunningService builds a new one.
package remote
