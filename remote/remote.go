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

	libadr "github/sabouaram/extendlib/address"
	libevt "github/sabouaram/extendlib/event"
	libini "github/sabouaram/extendlib/initiator"
	libocx "github/sabouaram/extendlib/opctx"
	libsvc "github/sabouaram/extendlib/service"
	libcnf "github/sabouaram/extendlib/xmlconf"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"
)

// storedConfig keeps the parsed configuration alongside its source
// element so a safe wrapper can push the same document into a fresh
// incarnation.
type storedConfig struct {
	xml *libcnf.Element
	ini libini.Config
	prv libadr.Provider
	cls string
	svc string
}

type rsv struct {
	typ Type
	ocx libocx.OperationalContext
	col Collaborators
	mch *libsvc.Machine
	ini libatm.Value[libini.Initiator]
	cfg libatm.Value[*storedConfig]
	usr libatm.Value[*userBox]
	mbr libevt.Listeners[libevt.MemberListener]
}

// userBox wraps the user context so the atomic value always carries one
// concrete pointer type.
type userBox struct {
	v interface{}
}

func (o *rsv) ServiceName() string {
	return o.mch.Name()
}

func (o *rsv) State() libsvc.State {
	return o.mch.State()
}

func (o *rsv) IsRunning() bool {
	if i := o.initiator(); i != nil {
		return i.IsRunning() && o.mch.State() == libsvc.StateStarted
	}

	return false
}

func (o *rsv) initiator() libini.Initiator {
	return o.ini.Load()
}

func (o *rsv) Initiator() libini.Initiator {
	return o.initiator()
}

func (o *rsv) UserContext() interface{} {
	if b := o.usr.Load(); b != nil {
		return b.v
	}

	return nil
}

func (o *rsv) SetUserContext(v interface{}) {
	o.usr.Store(&userBox{v: v})
}

func (o *rsv) RemoteClusterName() string {
	if c := o.cfg.Load(); c != nil {
		return c.cls
	}

	return ""
}

func (o *rsv) RemoteServiceName() string {
	if c := o.cfg.Load(); c != nil {
		return c.svc
	}

	return ""
}

func (o *rsv) AddServiceListener(l libevt.ServiceListener) {
	o.mch.AddServiceListener(l)
}

func (o *rsv) RemoveServiceListener(l libevt.ServiceListener) {
	o.mch.RemoveServiceListener(l)
}

func (o *rsv) AddMemberListener(l libevt.MemberListener) {
	o.mbr.Add(l)
}

func (o *rsv) RemoveMemberListener(l libevt.MemberListener) {
	o.mbr.Remove(l)
}

// Configure parses the remote service element: the initiator settings,
// the remote address provider and the cluster and proxy service names.
// Configure is legal only before Start.
func (o *rsv) Configure(cfg *libcnf.Element) error {
	if o.mch.State() != libsvc.StateInitial {
		return liberr.Newf(libsvc.ErrorWrongState.Uint16(), "cannot configure the service in state %s", o.mch.State().String())
	}

	if cfg == nil {
		return liberr.Newf(ErrorConfig.Uint16(), "xml configuration must not be nil")
	}

	ic, err := libini.ParseConfig(cfg, o.mch.Name()+":TcpInitiator")
	if err != nil {
		return err
	}

	var resolve libini.FactoryResolver
	if o.ocx != nil {
		resolve = o.ocx.AddressProviderFactory
	}

	prv, ns, err := libini.BuildProvider(cfg, resolve, o.mch.Logger())
	if err != nil {
		return err
	}

	ic.NameServiceAddressProvider = ns

	sc := &storedConfig{
		xml: cfg,
		ini: *ic,
		prv: prv,
		cls: cfg.GetSafe("cluster-name").GetString(""),
		svc: cfg.GetSafe("proxy-service-name").GetString(""),
	}

	ini, err := libini.New(sc.ini, prv, o.col.Negotiator, o.col.Receiver, o.mch.Logger())
	if err != nil {
		return err
	}

	ini.AddConnectionListener(o)

	o.cfg.Store(sc)
	o.ini.Store(ini)

	return nil
}

// Start brings the owned initiator up, resolves the proxy endpoint
// through the name service when so configured, then opens the first
// connection. A start failure unwinds with a hard stop.
func (o *rsv) Start(ctx context.Context) error {
	if err := o.doStart(ctx); err != nil {
		_ = o.Stop(ctx)
		return err
	}

	return nil
}

func (o *rsv) doStart(ctx context.Context) error {
	ini := o.initiator()
	if ini == nil {
		return libsvc.ErrorNotConfigured.Error(nil)
	}

	if err := o.mch.SetState(libsvc.StateStarting); err != nil {
		return err
	}

	if err := o.mch.StartDispatcher(ctx); err != nil {
		return libsvc.ErrorStartFailed.Error(err)
	}

	if err := ini.Start(ctx); err != nil {
		return err
	}

	if err := o.lookupProxyServiceAddress(ctx); err != nil {
		return err
	}

	if _, err := ini.EnsureConnection(ctx); err != nil {
		return err
	}

	if err := o.mch.SetState(libsvc.StateStarted); err != nil {
		return err
	}

	o.mch.Log(loglvl.InfoLevel, nil, "started remote service %s (%s)", o.mch.Name(), o.typ.String())

	return nil
}

// Shutdown stops in an orderly way, the peer hears a goodbye first.
func (o *rsv) Shutdown(ctx context.Context) error {
	return o.teardown(ctx, true)
}

// Stop is the hard stop.
func (o *rsv) Stop(ctx context.Context) error {
	return o.teardown(ctx, false)
}

func (o *rsv) teardown(ctx context.Context, notify bool) error {
	switch o.mch.State() {
	case libsvc.StateStopping, libsvc.StateStopped:
		return nil
	case libsvc.StateInitial:
		return o.mch.SetState(libsvc.StateStopped)
	}

	_ = o.mch.SetState(libsvc.StateStopping)

	ini := o.initiator()

	var err error
	if ini != nil {
		if notify {
			err = ini.Shutdown(ctx)
		} else {
			err = ini.Stop(ctx)
		}

		ini.RemoveConnectionListener(o)
	}

	_ = o.mch.SetState(libsvc.StateStopped)
	_ = o.mch.StopDispatcher(ctx)

	return err
}

// EnsureConnection returns the live framed connection, transparently
// reopening after a mid-session disconnect.
func (o *rsv) EnsureConnection(ctx context.Context) (libini.Connection, error) {
	ini := o.initiator()
	if ini == nil {
		return nil, libsvc.ErrorNotConfigured.Error(nil)
	}

	return ini.EnsureConnection(ctx)
}

// dispatchMemberEvent hands one member event to the listeners through
// the dispatcher queue so ordering follows the connection transitions.
func (o *rsv) dispatchMemberEvent(id libevt.MemberEventID) {
	if o.mbr.IsEmpty() {
		return
	}

	var m libevt.Member
	if o.ocx != nil {
		m = o.ocx.LocalMember()
	}

	evt := libevt.MemberEvent{
		Source: o,
		ID:     id,
		Member: m,
	}

	o.mch.Post(func() {
		o.mbr.Dispatch(func(l libevt.MemberListener) {
			l.OnMemberEvent(evt)
		})
	})
}

// ConnectionOpened maps a live connection onto a member joined event.
func (o *rsv) ConnectionOpened(c libini.Connection) {
	o.dispatchMemberEvent(libevt.MemberJoined)
}

// ConnectionClosed maps a clean connection end onto the leaving pair.
func (o *rsv) ConnectionClosed(c libini.Connection) {
	o.dispatchMemberEvent(libevt.MemberLeaving)
	o.dispatchMemberEvent(libevt.MemberLeft)
}

// ConnectionError maps a broken connection onto the leaving pair and
// routes the failure the way any service goroutine exception goes: the
// inner service stops, and the safe wrapper builds a fresh incarnation
// on its next ensure call. The stop runs on its own goroutine because
// this callback fires on the initiator's dispatcher.
func (o *rsv) ConnectionError(c libini.Connection, cause error) {
	o.mch.Log(loglvl.WarnLevel, cause, "connection to the remote service %s terminated", o.mch.Name())

	o.dispatchMemberEvent(libevt.MemberLeaving)
	o.dispatchMemberEvent(libevt.MemberLeft)

	go func() {
		_ = o.Stop(context.Background())
	}()
}
