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

package socket

import (
	"context"
	"net"
	"time"

	libatm "github.com/nabbar/golib/atomic"
	libdur "github.com/nabbar/golib/duration"
	liblog "github.com/nabbar/golib/logger"
	libsiz "github.com/nabbar/golib/size"
)

const (
	// DefaultPollInterval is the granularity at which a blocked read or
	// write re-checks the caller's context for cancellation.
	DefaultPollInterval = 250 * time.Millisecond
)

// Options carries the stream socket option set applied right after the
// socket is created and before it connects.
type Options struct {
	// KeepAlive enables SO_KEEPALIVE.
	KeepAlive bool `json:"keepAlive" mapstructure:"keepAlive"`

	// NoDelay enables TCP_NODELAY. The XML surface exposes the inverse
	// flag tcp-delay-enabled.
	NoDelay bool `json:"noDelay" mapstructure:"noDelay"`

	// ReuseAddress enables SO_REUSEADDR before binding.
	ReuseAddress bool `json:"reuseAddress" mapstructure:"reuseAddress"`

	// LingerTimeout configures SO_LINGER. Zero leaves the OS default,
	// a negative value disables lingering.
	LingerTimeout libdur.Duration `json:"lingerTimeout" mapstructure:"lingerTimeout"`

	// ReceiveBufferSize requests SO_RCVBUF. Zero leaves the OS default.
	ReceiveBufferSize libsiz.Size `json:"receiveBufferSize" mapstructure:"receiveBufferSize"`

	// SendBufferSize requests SO_SNDBUF. Zero leaves the OS default.
	SendBufferSize libsiz.Size `json:"sendBufferSize" mapstructure:"sendBufferSize"`

	// PollInterval overrides the cancellation poll granularity.
	PollInterval libdur.Duration `json:"pollInterval" mapstructure:"pollInterval"`
}

// Socket is a stream socket with per-operation deadlines and cooperative
// cancellation through the caller's context.
//
// Read and Write fail with an InterruptedIOError with Timeout set once the
// effective deadline is reached and with one without Timeout when the
// context is cancelled; both
// carry the octet count moved so far (see BytesTransferred). A peer
// disconnect surfaces as io.EOF on Read.
type Socket interface {
	// Bind records the local address used when connecting.
	Bind(addr *net.TCPAddr) error

	// Connect establishes the TCP connection within the given timeout. A
	// zero timeout leaves only the context deadline, if any, in charge.
	Connect(ctx context.Context, addr *net.TCPAddr, timeout time.Duration) error

	// Read moves at least one octet into p, bounded by timeout and the
	// context. A zero timeout blocks until the context gives up.
	Read(ctx context.Context, p []byte, timeout time.Duration) (int, error)

	// Write moves all of p to the peer, bounded by timeout and the context.
	Write(ctx context.Context, p []byte, timeout time.Duration) (int, error)

	// Available reports the octet count readable without blocking.
	Available() (int, error)

	// Shutdown half-closes the reading and/or writing side.
	Shutdown(in, out bool) error

	// Close shuts the connection down. Close is idempotent.
	Close() error

	IsBound() bool
	IsConnected() bool
	IsClosed() bool

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// New returns an unconnected socket carrying the given options. The
// logger func may be nil.
func New(opt Options, log liblog.FuncLog) Socket {
	s := &sck{
		o: opt,
		l: log,
		c: libatm.NewValue[*net.TCPConn](),
		b: libatm.NewValue[*net.TCPAddr](),
		s: libatm.NewValue[uint8](),
	}

	if opt.PollInterval <= 0 {
		s.o.PollInterval = libdur.ParseDuration(DefaultPollInterval)
	}

	return s
}
