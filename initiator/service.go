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

package initiator

import (
	"context"

	libadr "github/sabouaram/extendlib/address"
	libevt "github/sabouaram/extendlib/event"
	libsvc "github/sabouaram/extendlib/service"
	libskt "github/sabouaram/extendlib/socket"
	libcnf "github/sabouaram/extendlib/xmlconf"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"
)

func (o *ini) ServiceName() string {
	return o.mch.Name()
}

func (o *ini) State() libsvc.State {
	return o.mch.State()
}

func (o *ini) IsRunning() bool {
	return o.mch.State() == libsvc.StateStarted
}

func (o *ini) AddServiceListener(l libevt.ServiceListener) {
	o.mch.AddServiceListener(l)
}

func (o *ini) RemoveServiceListener(l libevt.ServiceListener) {
	o.mch.RemoveServiceListener(l)
}

func (o *ini) AddConnectionListener(l ConnectionListener) {
	o.lst.Add(l)
}

func (o *ini) RemoveConnectionListener(l ConnectionListener) {
	o.lst.Remove(l)
}

func (o *ini) Provider() libadr.Provider {
	if b := o.prv.Load(); b != nil {
		return b.p
	}

	return nil
}

func (o *ini) SetProvider(p libadr.Provider) {
	o.prv.Store(&provBox{p: p})
}

func (o *ini) Subport() int32 {
	return o.sub.Load()
}

func (o *ini) SetSubport(n int32) {
	o.sub.Store(n)
}

func (o *ini) IsNameServiceAddressProvider() bool {
	return o.cfg.NameServiceAddressProvider
}

func (o *ini) Connection() Connection {
	if c := o.cnn.Load(); c != nil {
		return c
	}

	return nil
}

// Configure applies a tcp-initiator configuration element. Configure is
// legal only before Start.
func (o *ini) Configure(cfg *libcnf.Element) error {
	if o.mch.State() != libsvc.StateInitial {
		return liberr.Newf(libsvc.ErrorWrongState.Uint16(), "cannot configure the service in state %s", o.mch.State().String())
	}

	if cfg == nil {
		return liberr.Newf(ErrorInvalidConfig.Uint16(), "xml configuration must not be nil")
	}

	c, err := ParseConfig(cfg, o.cfg.ServiceName)
	if err != nil {
		return err
	}

	c.Dispatcher = o.cfg.Dispatcher
	o.cfg = *c

	if o.cfg.Subport == 0 {
		o.cfg.Subport = libskt.NoSubPort
	}

	o.sub.Store(o.cfg.Subport)

	return nil
}

// Start spawns the event dispatcher and marks the service started. The
// first connection opens lazily on EnsureConnection.
func (o *ini) Start(ctx context.Context) error {
	if err := o.mch.SetState(libsvc.StateStarting); err != nil {
		return err
	}

	if err := o.mch.StartDispatcher(ctx); err != nil {
		_ = o.mch.SetState(libsvc.StateStopped)
		return libsvc.ErrorStartFailed.Error(err)
	}

	if err := o.mch.SetState(libsvc.StateStarted); err != nil {
		return err
	}

	o.mch.Log(loglvl.InfoLevel, nil, "started %s", o.Describe())

	return nil
}

// Shutdown performs the orderly stop: the live connection says goodbye
// to the peer before the socket goes down.
func (o *ini) Shutdown(ctx context.Context) error {
	return o.teardown(ctx, true)
}

// Stop is the hard stop: the socket closes immediately, readers see EOF
// and pending senders fail.
func (o *ini) Stop(ctx context.Context) error {
	return o.teardown(ctx, false)
}

func (o *ini) teardown(ctx context.Context, notify bool) error {
	switch o.mch.State() {
	case libsvc.StateStopping, libsvc.StateStopped:
		return nil
	case libsvc.StateInitial:
		return o.mch.SetState(libsvc.StateStopped)
	}

	_ = o.mch.SetState(libsvc.StateStopping)

	if c := o.cnn.Swap(nil); c != nil {
		_ = c.Close(ctx, notify, nil)
	}

	err := o.mch.SetState(libsvc.StateStopped)

	_ = o.mch.StopDispatcher(ctx)

	return err
}

// EnsureConnection returns the live connection, opening one when none
// is.
func (o *ini) EnsureConnection(ctx context.Context) (Connection, error) {
	if !o.IsRunning() {
		return nil, liberr.Newf(libsvc.ErrorWrongState.Uint16(), "the initiator is not running")
	}

	if c := o.cnn.Load(); c != nil && c.IsOpen() {
		return c, nil
	}

	return o.OpenConnection(ctx)
}

func (o *ini) Describe() string {
	return o.mch.Describe()
}

// onConnectionOpened announces a freshly accepted connection.
func (o *ini) onConnectionOpened(c *cnn) {
	c.ann.Store(true)
	c.markSettled()

	o.mch.Post(func() {
		o.lst.Dispatch(func(l ConnectionListener) {
			l.ConnectionOpened(c)
		})
	})
}

// onConnectionClosed reports the end of an announced connection: a
// closed event on a clean close, an error event when a cause is
// attached. Connections that never reached the announced state, a
// redirect probe for one, retire silently.
func (o *ini) onConnectionClosed(c *cnn, cause error) {
	o.cnn.CompareAndSwap(c, nil)

	c.waitSettled()

	if !c.ann.Load() {
		return
	}

	o.mch.Post(func() {
		o.lst.Dispatch(func(l ConnectionListener) {
			if cause != nil {
				l.ConnectionError(c, cause)
			} else {
				l.ConnectionClosed(c)
			}
		})
	})
}
