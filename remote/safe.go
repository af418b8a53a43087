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

package remote

import (
	"context"
	"sync"

	libevt "github/sabouaram/extendlib/event"
	libocx "github/sabouaram/extendlib/opctx"
	libsvc "github/sabouaram/extendlib/service"
	libcnf "github/sabouaram/extendlib/xmlconf"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
)

// Safe state values. A safe wrapper accepts requests only while
// started; stopped is terminal.
const (
	safeInitial uint8 = iota
	safeStarted
	safeStopped
)

// Safe is the durable application facing service: its identity outlives
// inner service restarts, registered listeners move onto every fresh
// incarnation, and events reach them with the wrapper as source.
type Safe interface {
	libsvc.Service

	AddMemberListener(l libevt.MemberListener)
	RemoveMemberListener(l libevt.MemberListener)

	// EnsureRunningService returns the running inner service, building
	// and starting a fresh one after a failure. It fails once the
	// wrapper is stopped.
	EnsureRunningService(ctx context.Context) (Remote, error)

	// RunningService returns the current inner service without any
	// restart attempt, nil when none runs.
	RunningService() Remote

	ServiceType() Type

	UserContext() interface{}
	SetUserContext(v interface{})
}

type safe struct {
	nme string
	typ Type
	ocx libocx.OperationalContext
	col Collaborators
	log liblog.FuncLog

	mux sync.Mutex
	sst libatm.Value[uint8]
	inn libatm.Value[*innerBox]
	cfg libatm.Value[*libcnf.Element]
	usr libatm.Value[*userBox]

	mbr libevt.Listeners[libevt.MemberListener]
	svc libevt.Listeners[libevt.ServiceListener]
}

// NewSafe builds the safe wrapper for a remote service of the given
// type. Nothing starts until Start or the first EnsureRunningService.
func NewSafe(name string, typ Type, ocx libocx.OperationalContext, col Collaborators, log liblog.FuncLog) Safe {
	if log == nil && ocx != nil {
		log = ocx.Logger()
	}

	return &safe{
		nme: name,
		typ: typ,
		ocx: ocx,
		col: col,
		log: log,
		sst: libatm.NewValue[uint8](),
		inn: libatm.NewValue[*innerBox](),
		cfg: libatm.NewValue[*libcnf.Element](),
		usr: libatm.NewValue[*userBox](),
	}
}

func (o *safe) ServiceName() string {
	return o.nme
}

func (o *safe) ServiceType() Type {
	return o.typ
}

func (o *safe) UserContext() interface{} {
	if b := o.usr.Load(); b != nil {
		return b.v
	}

	return nil
}

func (o *safe) SetUserContext(v interface{}) {
	o.usr.Store(&userBox{v: v})
}

func (o *safe) State() libsvc.State {
	if i := o.RunningService(); i != nil {
		return i.State()
	}

	switch o.sst.Load() {
	case safeStopped:
		return libsvc.StateStopped
	}

	return libsvc.StateInitial
}

func (o *safe) IsRunning() bool {
	if o.sst.Load() != safeStarted {
		return false
	}

	if i := o.RunningService(); i != nil {
		return i.IsRunning()
	}

	return false
}

// innerBox wraps the inner handle so the atomic value always carries
// one concrete pointer type.
type innerBox struct {
	r Remote
}

func (o *safe) RunningService() Remote {
	if b := o.inn.Load(); b != nil {
		return b.r
	}

	return nil
}

func (o *safe) AddMemberListener(l libevt.MemberListener) {
	o.mbr.Add(l)
}

func (o *safe) RemoveMemberListener(l libevt.MemberListener) {
	o.mbr.Remove(l)
}

func (o *safe) AddServiceListener(l libevt.ServiceListener) {
	o.svc.Add(l)
}

func (o *safe) RemoveServiceListener(l libevt.ServiceListener) {
	o.svc.Remove(l)
}

// Configure caches the configuration pushed into every inner
// incarnation. Configure is refused once the wrapper is stopped.
func (o *safe) Configure(cfg *libcnf.Element) error {
	if o.sst.Load() == safeStopped {
		return ErrorStopped.Error(nil)
	}

	if cfg == nil {
		return liberr.Newf(ErrorConfig.Uint16(), "xml configuration must not be nil")
	}

	o.cfg.Store(cfg)

	return nil
}

// Start marks the wrapper started and brings the first inner service
// up.
func (o *safe) Start(ctx context.Context) error {
	if o.sst.Load() == safeStopped {
		return ErrorStopped.Error(nil)
	}

	o.sst.Store(safeStarted)

	_, err := o.EnsureRunningService(ctx)
	return err
}

// Shutdown stops the inner service in an orderly way and makes the
// wrapper terminally stopped.
func (o *safe) Shutdown(ctx context.Context) error {
	return o.teardown(ctx, true)
}

// Stop hard-stops the inner service and makes the wrapper terminally
// stopped.
func (o *safe) Stop(ctx context.Context) error {
	return o.teardown(ctx, false)
}

func (o *safe) teardown(ctx context.Context, graceful bool) error {
	o.mux.Lock()
	defer o.mux.Unlock()

	o.sst.Store(safeStopped)

	var err error

	if b := o.inn.Swap(nil); b != nil && b.r != nil {
		if graceful {
			err = b.r.Shutdown(ctx)
		} else {
			err = b.r.Stop(ctx)
		}
	}

	return err
}

// EnsureRunningService consults the safe state and hands back a running
// inner service, building a fresh incarnation when the previous one
// stopped. Listener registrations ride over to every new inner through
// the wrapper's own callbacks.
func (o *safe) EnsureRunningService(ctx context.Context) (Remote, error) {
	if o.sst.Load() == safeStopped {
		return nil, ErrorStopped.Error(nil)
	}

	if i := o.RunningService(); i != nil && i.State() == libsvc.StateStarted {
		return i, nil
	}

	o.mux.Lock()
	defer o.mux.Unlock()

	// double check under the lock
	if o.sst.Load() == safeStopped {
		return nil, ErrorStopped.Error(nil)
	}

	if i := o.RunningService(); i != nil && i.State() == libsvc.StateStarted {
		return i, nil
	}

	// retire whatever is left of the previous incarnation
	if b := o.inn.Swap(nil); b != nil && b.r != nil {
		_ = b.r.Stop(ctx)
	}

	cfg := o.cfg.Load()
	if cfg == nil {
		return nil, libsvc.ErrorNotConfigured.Error(nil)
	}

	o.logEntry(loglvl.InfoLevel, nil, "restarting %s service %s", o.typ.String(), o.nme)

	inner := NewRemote(o.nme, o.typ, o.ocx, o.col, o.log)
	inner.SetUserContext(o.UserContext())

	if err := inner.Configure(cfg); err != nil {
		return nil, err
	}

	// install the wrapper callbacks so application listeners survive the
	// restart and see the wrapper as the stable event source
	inner.AddMemberListener(&memberCallback{s: o, inner: inner})
	inner.AddServiceListener(&serviceCallback{s: o, inner: inner})

	// publish the handle before start so events emitted while starting
	// pass the current-incarnation filter
	box := &innerBox{r: inner}
	o.inn.Store(box)

	if err := inner.Start(ctx); err != nil {
		o.stopAfterFailedStart(ctx, box)
		return nil, err
	}

	return inner, nil
}

// stopAfterFailedStart best-effort stops a half built inner service and
// clears the handle; the original start failure propagates to the
// caller while the wrapper stays started for the next attempt.
func (o *safe) stopAfterFailedStart(ctx context.Context, box *innerBox) {
	defer func() {
		_ = recover()
	}()

	o.inn.CompareAndSwap(box, nil)
	_ = box.r.Stop(ctx)
}

func (o *safe) logEntry(lvl loglvl.Level, err error, msg string, args ...interface{}) {
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

// memberCallback fans member events of the current inner out to the
// wrapper listeners, dropping late events from previous incarnations
// and rewriting the source so applications observe a stable identity
// across reconnects.
type memberCallback struct {
	s     *safe
	inner Remote
}

func (c *memberCallback) OnMemberEvent(e libevt.MemberEvent) {
	if c.s.RunningService() != c.inner {
		// a late event from a dead incarnation
		return
	}

	e.Source = c.s

	c.s.mbr.Dispatch(func(l libevt.MemberListener) {
		l.OnMemberEvent(e)
	})
}

// serviceCallback mirrors memberCallback for lifecycle events.
type serviceCallback struct {
	s     *safe
	inner Remote
}

func (c *serviceCallback) OnServiceEvent(e libevt.ServiceEvent) {
	if c.s.RunningService() != c.inner {
		return
	}

	e.Source = c.s

	c.s.svc.Dispatch(func(l libevt.ServiceListener) {
		l.OnServiceEvent(e)
	})
}
