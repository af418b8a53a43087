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

package event

import (
	"sync"
	"sync/atomic"
)

// Listeners is a copy-on-write listener collection: every mutation
// produces a new snapshot, iteration uses the snapshot and needs no
// locking. Listeners compare by interface identity; adding the same
// listener twice is a no-op.
type Listeners[T comparable] struct {
	m sync.Mutex
	v atomic.Value // of []T
}

// Snapshot returns the current listener list. The returned slice is
// immutable by contract.
func (o *Listeners[T]) Snapshot() []T {
	if l, k := o.v.Load().([]T); k {
		return l
	}

	return nil
}

// Add registers a listener once.
func (o *Listeners[T]) Add(l T) {
	var empty T
	if l == empty {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	cur := o.Snapshot()

	for _, e := range cur {
		if e == l {
			return
		}
	}

	nxt := make([]T, len(cur), len(cur)+1)
	copy(nxt, cur)
	o.v.Store(append(nxt, l))
}

// Remove deregisters a listener.
func (o *Listeners[T]) Remove(l T) {
	o.m.Lock()
	defer o.m.Unlock()

	cur := o.Snapshot()

	for i, e := range cur {
		if e == l {
			nxt := make([]T, 0, len(cur)-1)
			nxt = append(nxt, cur[:i]...)
			nxt = append(nxt, cur[i+1:]...)
			o.v.Store(nxt)
			return
		}
	}
}

// IsEmpty reports whether no listener is registered.
func (o *Listeners[T]) IsEmpty() bool {
	return len(o.Snapshot()) == 0
}

// Dispatch invokes fct on every currently registered listener, in
// registration order.
func (o *Listeners[T]) Dispatch(fct func(l T)) {
	for _, l := range o.Snapshot() {
		fct(l)
	}
}
