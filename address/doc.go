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

// Package address supplies the iterable, accept/reject aware endpoint
// sources the connection initiator walks while opening a connection.
//
// The configurable provider cycles over its host and port holders,
// expanding each hostname into its resolved address list. The holder
// order is shuffled exactly once at construction: load spreads across
// clients while the walk stays deterministic under rejection. At most
// one holder is pending at any time; the cycle coming back to a pending
// holder means every endpoint was tried without an accept and the
// provider answers nil until the next call re-enters the cycle.
//
// NewSingle hands out one endpoint exactly once per cycle (redirects,
// name service answers). NewSubstitution rewrites zero ports with the
// port a name service lookup supplied.
package address
