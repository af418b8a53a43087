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

	libevt "github/sabouaram/extendlib/event"
	libini "github/sabouaram/extendlib/initiator"
	libocx "github/sabouaram/extendlib/opctx"
	libsvc "github/sabouaram/extendlib/service"

	libatm "github.com/nabbar/golib/atomic"
	liblog "github.com/nabbar/golib/logger"
)

// Type tells a remote cache service from a remote invocation service.
// The wire machinery is shared; the type is part of the application
// visible identity.
type Type uint8

const (
	TypeRemoteCache Type = iota + 1
	TypeRemoteInvocation
)

func (t Type) String() string {
	switch t {
	case TypeRemoteCache:
		return "RemoteCache"
	case TypeRemoteInvocation:
		return "RemoteInvocation"
	}

	return "<unknown>"
}

// NameServicer performs the name service lookup over an open framed
// connection, an external collaborator owned by the channel layer. The
// answered port is subport encoded.
type NameServicer interface {
	Lookup(ctx context.Context, c libini.Connection, name string) (host string, port int32, found bool, err error)
}

// Collaborators groups the channel layer hooks a remote service drives
// its connections with. Every field may be nil; a nil NameService makes
// a name-service bootstrap fail at start with a lookup error.
type Collaborators struct {
	// Negotiator runs the channel open handshake on every fresh
	// connection.
	Negotiator libini.Negotiator

	// Receiver consumes inbound frames.
	Receiver libini.Receiver

	// NameService resolves a proxy service name through the cluster
	// name service.
	NameService NameServicer
}

// Remote is the inner remote service: it owns its connection initiator
// and maps connection lifecycle onto cluster member events. A stopped
// Remote stays stopped; the safe wrapper builds a fresh one instead.
type Remote interface {
	libsvc.Service

	AddMemberListener(l libevt.MemberListener)
	RemoveMemberListener(l libevt.MemberListener)

	// EnsureConnection returns the live framed connection, reopening one
	// when the previous died.
	EnsureConnection(ctx context.Context) (libini.Connection, error)

	// Initiator exposes the owned connection initiator.
	Initiator() libini.Initiator

	// RemoteClusterName / RemoteServiceName return the configured
	// cluster and proxy service names.
	RemoteClusterName() string
	RemoteServiceName() string

	UserContext() interface{}
	SetUserContext(v interface{})
}

// NewRemote builds an inner remote service of the given type. The
// operational context supplies identity and factory maps; collaborators
// plug the channel layer in.
func NewRemote(name string, typ Type, ocx libocx.OperationalContext, col Collaborators, log liblog.FuncLog) Remote {
	if log == nil && ocx != nil {
		log = ocx.Logger()
	}

	r := &rsv{
		typ: typ,
		ocx: ocx,
		col: col,
		mch: libsvc.NewMachine(name, libsvc.Options{}, log),
		ini: libatm.NewValue[libini.Initiator](),
		cfg: libatm.NewValue[*storedConfig](),
		usr: libatm.NewValue[*userBox](),
	}

	r.mch.SetSource(r)

	return r
}
