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
	"errors"
	"io"
	"net"
	"os"
	"time"

	libatm "github.com/nabbar/golib/atomic"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
)

const (
	stateInit uint8 = iota
	stateConnected
	stateClosed
)

type sck struct {
	o Options
	l liblog.FuncLog
	c libatm.Value[*net.TCPConn]
	b libatm.Value[*net.TCPAddr]
	s libatm.Value[uint8]
}

func (o *sck) log(lvl loglvl.Level, err error, msg string, args ...interface{}) {
	if o.l == nil {
		return
	}

	l := o.l()
	if l == nil {
		return
	}

	ent := l.Entry(lvl, msg, args...)
	if err != nil {
		ent = ent.ErrorAdd(true, err)
	}

	ent.Log()
}

func (o *sck) Bind(addr *net.TCPAddr) error {
	if addr == nil {
		return ErrorInvalidAddress.Error(nil)
	} else if o.IsConnected() {
		return ErrorSocketState.Error(nil)
	}

	o.b.Store(addr)
	return nil
}

func (o *sck) IsBound() bool {
	return o.b.Load() != nil
}

func (o *sck) IsConnected() bool {
	return o.s.Load() == stateConnected
}

func (o *sck) IsClosed() bool {
	return o.s.Load() == stateClosed
}

func (o *sck) LocalAddr() net.Addr {
	if c := o.c.Load(); c != nil {
		return c.LocalAddr()
	} else if b := o.b.Load(); b != nil {
		return b
	}

	return nil
}

func (o *sck) RemoteAddr() net.Addr {
	if c := o.c.Load(); c != nil {
		return c.RemoteAddr()
	}

	return nil
}

func (o *sck) Connect(ctx context.Context, addr *net.TCPAddr, timeout time.Duration) error {
	if addr == nil {
		return ErrorInvalidAddress.Error(nil)
	} else if o.IsClosed() || o.IsConnected() {
		return ErrorSocketState.Error(nil)
	}

	d := net.Dialer{
		Timeout: timeout,
		Control: o.dialControl,
	}

	if b := o.b.Load(); b != nil {
		d.LocalAddr = b
	}

	cnn, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		if isTimeout(err) {
			return &InterruptedIOError{Timeout: true, Cause: err}
		} else if ctx.Err() != nil {
			return &InterruptedIOError{Cause: err}
		}
		return err
	}

	tcp, k := cnn.(*net.TCPConn)
	if !k {
		_ = cnn.Close()
		return ErrorInvalidAddress.Error(nil)
	}

	o.applyOptions(tcp)
	o.c.Store(tcp)
	o.s.Store(stateConnected)

	return nil
}

// applyOptions pushes the configured socket options onto the freshly
// connected socket. Option values the OS silently clamps are logged at
// warning level, never raised.
func (o *sck) applyOptions(c *net.TCPConn) {
	if err := c.SetKeepAlive(o.o.KeepAlive); err != nil {
		o.log(loglvl.WarnLevel, err, "cannot configure SO_KEEPALIVE")
	}

	if err := c.SetNoDelay(o.o.NoDelay); err != nil {
		o.log(loglvl.WarnLevel, err, "cannot configure TCP_NODELAY")
	}

	if l := o.o.LingerTimeout; l != 0 {
		sec := -1
		if l > 0 {
			sec = int(l.Time() / time.Second)
		}

		if err := c.SetLinger(sec); err != nil {
			o.log(loglvl.WarnLevel, err, "cannot configure SO_LINGER to %d seconds", sec)
		} else if actual, e := getLinger(c); e == nil && sec > 0 && actual != sec {
			o.log(loglvl.WarnLevel, nil, "failed to set the TCP socket linger time to %d seconds, actual value is %d seconds", sec, actual)
		}
	}

	if cb := o.o.ReceiveBufferSize.Int(); cb > 0 {
		if err := c.SetReadBuffer(cb); err != nil {
			o.log(loglvl.WarnLevel, err, "cannot configure SO_RCVBUF to %d bytes", cb)
		} else {
			o.validateBufferSize(c, true, cb)
		}
	}

	if cb := o.o.SendBufferSize.Int(); cb > 0 {
		if err := c.SetWriteBuffer(cb); err != nil {
			o.log(loglvl.WarnLevel, err, "cannot configure SO_SNDBUF to %d bytes", cb)
		} else {
			o.validateBufferSize(c, false, cb)
		}
	}
}

func (o *sck) validateBufferSize(c *net.TCPConn, receive bool, requested int) {
	actual, err := getBufferSize(c, receive)
	if err != nil || actual == 0 {
		return
	}

	name := "send"
	if receive {
		name = "receive"
	}

	if actual < requested {
		o.log(loglvl.WarnLevel, nil,
			"failed to set a TCP socket %s buffer size to %d bytes, actual size is %d bytes, proceeding may cause sub-optimal performance",
			name, requested, actual)
	}
}

func (o *sck) poll(deadline time.Time) time.Time {
	step := time.Now().Add(o.o.PollInterval.Time())

	if !deadline.IsZero() && deadline.Before(step) {
		return deadline
	}

	return step
}

func (o *sck) deadline(ctx context.Context, timeout time.Duration) time.Time {
	var deadline time.Time

	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	if d, k := ctx.Deadline(); k && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	return deadline
}

func (o *sck) Read(ctx context.Context, p []byte, timeout time.Duration) (int, error) {
	c := o.c.Load()
	if c == nil || !o.IsConnected() {
		return 0, ErrorSocketState.Error(nil)
	}

	deadline := o.deadline(ctx, timeout)

	for {
		step := o.poll(deadline)
		_ = c.SetReadDeadline(step)

		n, err := c.Read(p)
		if n > 0 || err == nil {
			return n, nil
		}

		switch {
		case errors.Is(err, io.EOF):
			return 0, io.EOF

		case errors.Is(err, os.ErrDeadlineExceeded):
			if e := ctx.Err(); e != nil {
				return 0, &InterruptedIOError{Cause: e}
			}
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return 0, &InterruptedIOError{Timeout: true, Cause: err}
			}
			// poll tick only, keep waiting

		default:
			if o.IsClosed() {
				return 0, io.EOF
			}
			return 0, err
		}
	}
}

func (o *sck) Write(ctx context.Context, p []byte, timeout time.Duration) (int, error) {
	c := o.c.Load()
	if c == nil || !o.IsConnected() {
		return 0, ErrorSocketState.Error(nil)
	}

	var (
		total    int
		deadline = o.deadline(ctx, timeout)
	)

	for total < len(p) {
		step := o.poll(deadline)
		_ = c.SetWriteDeadline(step)

		n, err := c.Write(p[total:])
		total += n

		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			if e := ctx.Err(); e != nil {
				return total, &InterruptedIOError{Bytes: total, Cause: e}
			}
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return total, &InterruptedIOError{Bytes: total, Timeout: true, Cause: err}
			}

		default:
			return total, err
		}
	}

	return total, nil
}

func (o *sck) Shutdown(in, out bool) error {
	c := o.c.Load()
	if c == nil {
		return ErrorSocketState.Error(nil)
	}

	var err error

	if in {
		err = c.CloseRead()
	}

	if out {
		if e := c.CloseWrite(); err == nil {
			err = e
		}
	}

	return err
}

// Close performs the logical shutdown. The file descriptor itself is
// released by the runtime when the last reference to the connection is
// dropped, so a reader still blocked on the descriptor cannot race with
// descriptor reuse.
func (o *sck) Close() error {
	if o.s.Swap(stateClosed) == stateClosed {
		return nil
	}

	if c := o.c.Load(); c != nil {
		return c.Close()
	}

	return nil
}

func isTimeout(err error) bool {
	var n net.Error
	if errors.As(err, &n) {
		return n.Timeout()
	}

	return errors.Is(err, os.ErrDeadlineExceeded)
}
