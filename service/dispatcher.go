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

package service

import (
	"context"
	"time"

	librun "github.com/nabbar/golib/runner/startStop"
)

// dispatcher owns the event delivery goroutine. Events are queued by
// the service and invoked one at a time so listeners observe lifecycle
// transitions in the order the state machine produced them. Producers
// pause for the clogged delay each time the queue depth exceeds the
// clogged count.
type dispatcher struct {
	q   chan func()
	cnt int
	dly time.Duration
	run librun.StartStop
}

func newDispatcher(opt Options) *dispatcher {
	d := &dispatcher{
		q:   make(chan func(), 2*opt.CloggedCount),
		cnt: opt.CloggedCount,
		dly: opt.CloggedDelay.Time(),
	}

	d.run = librun.New(d.loop, func(ctx context.Context) error {
		return nil
	})

	return d
}

func (o *dispatcher) loop(ctx context.Context) error {
	for {
		select {
		case f := <-o.q:
			o.invoke(f)

		case <-ctx.Done():
			// drain whatever is already queued, then exit
			for {
				select {
				case f := <-o.q:
					o.invoke(f)
				default:
					return nil
				}
			}
		}
	}
}

func (o *dispatcher) invoke(f func()) {
	defer func() {
		// a panicking listener must not take the dispatcher down
		_ = recover()
	}()

	if f != nil {
		f()
	}
}

func (o *dispatcher) Start(ctx context.Context) error {
	return o.run.Start(ctx)
}

func (o *dispatcher) Stop(ctx context.Context) error {
	return o.run.Stop(ctx)
}

func (o *dispatcher) IsRunning() bool {
	return o.run.IsRunning()
}

// Post queues one event delivery. When the dispatcher is not running the
// delivery happens inline on the caller, keeping event order for the
// single producer driving the state machine.
func (o *dispatcher) Post(f func()) {
	if f == nil {
		return
	}

	if !o.IsRunning() {
		o.invoke(f)
		return
	}

	if len(o.q) > o.cnt {
		// clogged, apply backpressure on the producer
		time.Sleep(o.dly)
	}

	o.q <- f
}
