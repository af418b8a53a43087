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
	"fmt"

	libevt "github/sabouaram/extendlib/event"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
)

// Name returns the service name the machine was built with.
func (o *Machine) Name() string {
	return o.nme
}

// State returns the current lifecycle position.
func (o *Machine) State() State {
	return o.sta.Load()
}

// SetSource installs the value handed to listeners as the event source,
// normally the owning service itself.
func (o *Machine) SetSource(src interface{}) {
	o.src.Store(src)
}

// Source returns the event source, the machine itself when none is set.
func (o *Machine) Source() interface{} {
	if s := o.src.Load(); s != nil {
		return s
	}

	return o
}

// Logger exposes the machine's logger func for the owning service.
func (o *Machine) Logger() liblog.FuncLog {
	return o.log
}

// Log writes one entry through the configured logger, if any.
func (o *Machine) Log(lvl loglvl.Level, err error, msg string, args ...interface{}) {
	if o.log == nil {
		return
	}

	l := o.log()
	if l == nil {
		return
	}

	ent := l.Entry(lvl, msg, args...)
	if err != nil {
		ent = ent.ErrorAdd(true, err)
	}

	ent.Log()
}

// SetState moves the lifecycle forward and emits the matching service
// event. Transitions only ever move forward; a backward or repeated
// transition is refused.
func (o *Machine) SetState(s State) error {
	for {
		cur := o.sta.Load()

		if s <= cur {
			return liberr.Newf(ErrorWrongState.Uint16(), "cannot transition from %s to %s", cur.String(), s.String())
		}

		if o.sta.CompareAndSwap(cur, s) {
			break
		}
	}

	o.Log(loglvl.DebugLevel, nil, "service %s is now %s", o.nme, s.String())

	switch s {
	case StateStarting:
		o.EmitServiceEvent(libevt.ServiceStarting)
	case StateStarted:
		o.EmitServiceEvent(libevt.ServiceStarted)
	case StateStopping:
		o.EmitServiceEvent(libevt.ServiceStopping)
	case StateStopped:
		o.EmitServiceEvent(libevt.ServiceStopped)
	}

	return nil
}

// AddServiceListener registers a lifecycle listener.
func (o *Machine) AddServiceListener(l libevt.ServiceListener) {
	o.lst.Add(l)
}

// RemoveServiceListener deregisters a lifecycle listener.
func (o *Machine) RemoveServiceListener(l libevt.ServiceListener) {
	o.lst.Remove(l)
}

// EmitServiceEvent queues one lifecycle event for every registered
// listener, serialised through the dispatcher.
func (o *Machine) EmitServiceEvent(id libevt.ServiceEventID) {
	if o.lst.IsEmpty() {
		return
	}

	evt := libevt.ServiceEvent{
		Source: o.Source(),
		ID:     id,
	}

	o.dsp.Post(func() {
		o.lst.Dispatch(func(l libevt.ServiceListener) {
			l.OnServiceEvent(evt)
		})
	})
}

// Post queues an arbitrary callback behind the pending events.
func (o *Machine) Post(f func()) {
	o.dsp.Post(f)
}

// StartDispatcher spawns the event delivery goroutine.
func (o *Machine) StartDispatcher(ctx context.Context) error {
	return o.dsp.Start(ctx)
}

// StopDispatcher drains and stops the event delivery goroutine.
func (o *Machine) StopDispatcher(ctx context.Context) error {
	return o.dsp.Stop(ctx)
}

// OnException routes an uncaught service goroutine failure: the failure
// is logged and the supplied stop function is invoked, mirroring the
// way a reader failure tears the owning service down.
func (o *Machine) OnException(err error, stop func()) {
	o.Log(loglvl.ErrorLevel, err, "service %s terminated on exception", o.nme)

	if stop != nil {
		stop()
	}
}

// Describe renders the identity and state for log output.
func (o *Machine) Describe() string {
	return fmt.Sprintf("Name=%s, State=%s", o.nme, o.State().String())
}
