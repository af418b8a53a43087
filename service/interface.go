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

	libevt "github/sabouaram/extendlib/event"
	libcnf "github/sabouaram/extendlib/xmlconf"

	libatm "github.com/nabbar/golib/atomic"
	libdur "github.com/nabbar/golib/duration"
	liblog "github.com/nabbar/golib/logger"
)

// State is the inner service lifecycle position.
type State uint8

const (
	StateInitial State = iota
	StateStarting
	StateStarted
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "SERVICE_INITIAL"
	case StateStarting:
		return "SERVICE_STARTING"
	case StateStarted:
		return "SERVICE_STARTED"
	case StateStopping:
		return "SERVICE_STOPPING"
	case StateStopped:
		return "SERVICE_STOPPED"
	}

	return "<unknown>"
}

// Controllable is the lifecycle contract every service honours.
// Configure is legal only before Start; Shutdown drains in an orderly
// way while Stop is the hard form; both are idempotent and callable
// from any goroutine.
type Controllable interface {
	Configure(cfg *libcnf.Element) error
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// Service extends the lifecycle contract with identity, state
// introspection and lifecycle event registration.
type Service interface {
	Controllable

	ServiceName() string
	State() State

	AddServiceListener(l libevt.ServiceListener)
	RemoveServiceListener(l libevt.ServiceListener)
}

const (
	// DefaultCloggedCount is the dispatcher queue depth beyond which
	// producers start pausing.
	DefaultCloggedCount = 1024

	// DefaultCloggedDelay is the pause a producer takes each time the
	// queue is clogged.
	DefaultCloggedDelay = 32 * time.Millisecond
)

// Options tunes the event dispatcher backpressure.
type Options struct {
	CloggedCount int             `json:"cloggedCount" mapstructure:"cloggedCount" validate:"gte=0"`
	CloggedDelay libdur.Duration `json:"cloggedDelay" mapstructure:"cloggedDelay"`
}

// Machine carries the pieces every concrete service shares: the state
// word, the lifecycle listeners and the event dispatcher goroutine. A
// concrete service embeds one and drives the state transitions.
type Machine struct {
	nme string
	log liblog.FuncLog
	sta libatm.Value[State]
	src libatm.Value[interface{}]
	lst libevt.Listeners[libevt.ServiceListener]
	dsp *dispatcher
}

// NewMachine builds the shared lifecycle machinery for the named
// service. The source value, when set, stands as the event source
// handed to listeners.
func NewMachine(name string, opt Options, log liblog.FuncLog) *Machine {
	if opt.CloggedCount <= 0 {
		opt.CloggedCount = DefaultCloggedCount
	}

	if opt.CloggedDelay <= 0 {
		opt.CloggedDelay = libdur.ParseDuration(DefaultCloggedDelay)
	}

	m := &Machine{
		nme: name,
		log: log,
		sta: libatm.NewValue[State](),
		src: libatm.NewValue[interface{}](),
		dsp: newDispatcher(opt),
	}

	m.sta.Store(StateInitial)

	return m
}
