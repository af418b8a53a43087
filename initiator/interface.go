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
	"net"
	"sync"

	libadr "github/sabouaram/extendlib/address"
	libsvc "github/sabouaram/extendlib/service"
	libskt "github/sabouaram/extendlib/socket"

	libatm "github.com/nabbar/golib/atomic"
	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	libsiz "github.com/nabbar/golib/size"
)

// Stats is one point-in-time view of a connection's traffic counters.
type Stats struct {
	BytesSent        uint64
	BytesReceived    uint64
	MessagesSent     uint64
	MessagesReceived uint64
}

// Connection is one live framed connection. Send is safe for concurrent
// callers; the wire carries frames whole and in send order.
type Connection interface {
	// Send emits one length-prefixed frame. On an I/O failure the
	// connection closes and the call fails with ErrorConnection.
	Send(ctx context.Context, msg []byte) error

	// Close runs the close-once protocol: stop the reader, close the
	// buffered streams and the socket, then report either a closed or an
	// error event depending on cause. The notify flag asks the peer
	// negotiator for a protocol goodbye first.
	Close(ctx context.Context, notify bool, cause error) error

	IsOpen() bool

	// IsRedirect reports whether the peer answered the channel open with
	// a redirect list.
	IsRedirect() bool

	// SetRedirect installs the redirect answer; the negotiator calls it
	// before failing its open handshake.
	SetRedirect(list []Redirect)

	// RedirectList returns the redirect answer, nil when none.
	RedirectList() []Redirect

	Stats() Stats

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// Redirect is one entry of a redirect list: a hostname and a subport
// encoded port value.
type Redirect struct {
	Host string
	Port int32
}

// Receiver consumes inbound frames in wire order, the hook the channel
// layer plugs into the reader.
type Receiver interface {
	Receive(msg []byte, c Connection)
}

// FuncReceiver adapts a function to the Receiver interface.
type FuncReceiver func(msg []byte, c Connection)

func (f FuncReceiver) Receive(msg []byte, c Connection) {
	if f != nil {
		f(msg, c)
	}
}

// Negotiator performs the channel open handshake on a freshly connected
// framed connection. Answering a redirect means calling SetRedirect on
// the connection and returning a non-nil error.
type Negotiator interface {
	OpenConnection(ctx context.Context, c Connection) error
}

// CloseNotifier is optionally implemented by negotiators able to send a
// protocol goodbye before the socket goes down.
type CloseNotifier interface {
	NotifyClose(ctx context.Context, c Connection)
}

// ConnectionListener observes connection lifecycle. A clean close
// reports ConnectionClosed, a failure reports ConnectionError.
type ConnectionListener interface {
	ConnectionOpened(c Connection)
	ConnectionClosed(c Connection)
	ConnectionError(c Connection, cause error)
}

// Config carries the connection initiator settings, normally filled
// from the tcp-initiator configuration element.
type Config struct {
	// ServiceName names the initiator for logs and thread naming.
	ServiceName string `json:"serviceName" mapstructure:"serviceName"`

	// LocalHost / LocalPort optionally pin the outbound socket.
	LocalHost string `json:"localHost,omitempty" mapstructure:"localHost"`
	LocalPort int    `json:"localPort,omitempty" mapstructure:"localPort" validate:"gte=0,lte=65535"`

	// ReuseAddress applies SO_REUSEADDR to the local binding.
	ReuseAddress bool `json:"reuseAddress" mapstructure:"reuseAddress"`

	// KeepAlive applies SO_KEEPALIVE.
	KeepAlive bool `json:"keepAlive" mapstructure:"keepAlive"`

	// TcpDelay disables TCP_NODELAY when true, the historical
	// tcp-delay-enabled switch.
	TcpDelay bool `json:"tcpDelay" mapstructure:"tcpDelay"`

	// LingerTimeout configures SO_LINGER, zero leaves the OS default.
	LingerTimeout libdur.Duration `json:"lingerTimeout" mapstructure:"lingerTimeout"`

	// ReceiveBufferSize / SendBufferSize request socket buffer sizes.
	ReceiveBufferSize libsiz.Size `json:"receiveBufferSize" mapstructure:"receiveBufferSize"`
	SendBufferSize    libsiz.Size `json:"sendBufferSize" mapstructure:"sendBufferSize"`

	// ConnectTimeout bounds each connect attempt. Zero means only the
	// caller's context budget applies.
	ConnectTimeout libdur.Duration `json:"connectTimeout" mapstructure:"connectTimeout"`

	// RequestTimeout bounds each frame send.
	RequestTimeout libdur.Duration `json:"requestTimeout" mapstructure:"requestTimeout"`

	// MaxIncomingMessageSize rejects oversized inbound frames before
	// allocation. Zero applies the default limit.
	MaxIncomingMessageSize libsiz.Size `json:"maxIncomingMessageSize" mapstructure:"maxIncomingMessageSize"`

	// ThreadCount sizes the upper layer's incoming message handler pool,
	// carried down from the enclosing remote service element.
	ThreadCount int `json:"threadCount" mapstructure:"threadCount" validate:"gte=0"`

	// TaskHungThreshold / TaskTimeout bound the upper layer's task
	// execution, carried for the channel layer.
	TaskHungThreshold libdur.Duration `json:"taskHungThreshold" mapstructure:"taskHungThreshold"`
	TaskTimeout       libdur.Duration `json:"taskTimeout" mapstructure:"taskTimeout"`

	// Subport is the handshake prelude target, NoSubPort for none.
	Subport int32 `json:"subport" mapstructure:"subport"`

	// NameServiceAddressProvider marks the provider as pointing at the
	// name service rather than at the proxy itself.
	NameServiceAddressProvider bool `json:"nameServiceAddressProvider" mapstructure:"nameServiceAddressProvider"`

	// Dispatcher tunes the lifecycle event dispatcher.
	Dispatcher libsvc.Options `json:"dispatcher" mapstructure:"dispatcher"`
}

// DefaultMaxIncoming bounds inbound frames when no limit is configured.
const DefaultMaxIncoming = 64 << 20

// Initiator establishes and supervises one live framed connection at a
// time on behalf of its owning remote service.
type Initiator interface {
	libsvc.Service

	// OpenConnection walks the address provider until one connection
	// opens, honouring redirect answers and the subport handshake.
	OpenConnection(ctx context.Context) (Connection, error)

	// EnsureConnection returns the current open connection or opens a
	// fresh one.
	EnsureConnection(ctx context.Context) (Connection, error)

	// Connection returns the current connection, nil when none is open.
	Connection() Connection

	// Provider / SetProvider expose the remote address provider; the
	// name service bootstrap swaps it for a single address provider.
	Provider() libadr.Provider
	SetProvider(p libadr.Provider)

	// Subport / SetSubport expose the handshake subport.
	Subport() int32
	SetSubport(n int32)

	// IsNameServiceAddressProvider reports the bootstrap flag.
	IsNameServiceAddressProvider() bool

	AddConnectionListener(l ConnectionListener)
	RemoveConnectionListener(l ConnectionListener)
}

// New builds an initiator over the given provider. The negotiator may
// be nil when the upper layer performs no open handshake; the receiver
// may be nil when inbound frames are discarded.
func New(cfg Config, prv libadr.Provider, ngt Negotiator, rcv Receiver, log liblog.FuncLog) (Initiator, error) {
	if cfg.ConnectTimeout < 0 {
		return nil, liberr.Newf(ErrorInvalidConfig.Uint16(), "connect timeout must not be negative")
	}

	if cfg.Subport == 0 {
		cfg.Subport = libskt.NoSubPort
	}

	if cfg.MaxIncomingMessageSize == 0 {
		cfg.MaxIncomingMessageSize = libsiz.Size(DefaultMaxIncoming)
	}

	name := cfg.ServiceName
	if name == "" {
		name = "TcpInitiator"
	}

	i := &ini{
		cfg: cfg,
		mch: libsvc.NewMachine(name, cfg.Dispatcher, log),
		prv: libatm.NewValue[*provBox](),
		sub: libatm.NewValue[int32](),
		cnn: libatm.NewValue[*cnn](),
		ngt: ngt,
		rcv: rcv,
		mux: sync.Mutex{},
	}

	i.mch.SetSource(i)

	if prv != nil {
		i.prv.Store(&provBox{p: prv})
	}

	i.sub.Store(cfg.Subport)

	return i, nil
}
