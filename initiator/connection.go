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
	"sync/atomic"
	"time"

	libskt "github/sabouaram/extendlib/socket"
	libstm "github/sabouaram/extendlib/stream"

	liberr "github.com/nabbar/golib/errors"
	libsck "github.com/nabbar/golib/socket"
)

const (
	connCreated uint32 = iota
	connOpening
	connOpen
	connClosing
	connClosed
)

type cnn struct {
	ini *ini
	skt libskt.Socket

	ctx context.Context
	cnl context.CancelFunc

	inp libstm.InputStream
	out libstm.OutputStream

	mux sync.Mutex   // output stream monitor
	wrt atomic.Int64 // concurrent writer count

	sta atomic.Uint32
	rdr *reader

	red  atomic.Bool
	ann  atomic.Bool
	set  chan struct{}
	one  sync.Once
	lst  []Redirect
	lstM sync.Mutex

	bytesSent uint64
	bytesRecv uint64
	msgsSent  uint64
	msgsRecv  uint64
}

// sockReader adapts the socket read side to io.Reader for the buffered
// input stream. Reads block until data, close or cancellation; the
// connection context is the cancellation handle the reader task hangs
// off.
type sockReader struct {
	c *cnn
}

func (r *sockReader) Read(p []byte) (int, error) {
	return r.c.skt.Read(r.c.ctx, p, 0)
}

// sockWriter adapts the socket write side, bounded per write by the
// request timeout.
type sockWriter struct {
	c *cnn
	t time.Duration
}

func (w *sockWriter) Write(p []byte) (int, error) {
	return w.c.skt.Write(w.c.ctx, p, w.t)
}

func newConnection(i *ini, skt libskt.Socket) *cnn {
	x, n := context.WithCancel(context.Background())

	c := &cnn{
		ini: i,
		skt: skt,
		ctx: x,
		cnl: n,
		set: make(chan struct{}),
	}

	c.sta.Store(connCreated)

	return c
}

// open layers the buffered streams over the socket and spawns the
// dedicated reader task.
func (o *cnn) open(ctx context.Context) error {
	if !o.sta.CompareAndSwap(connCreated, connOpening) {
		return ErrorConnectionState.Error(nil)
	}

	o.inp = libstm.NewInput(&sockReader{c: o}, libsck.DefaultBufferSize)
	o.out = libstm.NewOutput(&sockWriter{c: o, t: o.ini.cfg.RequestTimeout.Time()}, libsck.DefaultBufferSize)

	o.sta.Store(connOpen)

	o.rdr = newReader(o)
	if err := o.rdr.Start(ctx); err != nil {
		o.sta.Store(connClosed)
		return ErrorConnection.Error(err)
	}

	return nil
}

// markSettled records that the initiator finished deciding this
// connection's fate, either announced to listeners or abandoned. The
// close path waits on it so a racing reader failure cannot slip an
// event out before the announcement.
func (o *cnn) markSettled() {
	o.one.Do(func() {
		close(o.set)
	})
}

func (o *cnn) waitSettled() {
	select {
	case <-o.set:
	case <-time.After(2 * time.Second):
	}
}

func (o *cnn) IsOpen() bool {
	return o.sta.Load() == connOpen
}

func (o *cnn) IsRedirect() bool {
	return o.red.Load()
}

func (o *cnn) SetRedirect(list []Redirect) {
	o.lstM.Lock()
	defer o.lstM.Unlock()

	o.red.Store(true)
	o.lst = append([]Redirect(nil), list...)
}

func (o *cnn) RedirectList() []Redirect {
	o.lstM.Lock()
	defer o.lstM.Unlock()

	return append([]Redirect(nil), o.lst...)
}

func (o *cnn) LocalAddr() net.Addr {
	return o.skt.LocalAddr()
}

func (o *cnn) RemoteAddr() net.Addr {
	return o.skt.RemoteAddr()
}

func (o *cnn) Stats() Stats {
	return Stats{
		BytesSent:        atomic.LoadUint64(&o.bytesSent),
		BytesReceived:    atomic.LoadUint64(&o.bytesRecv),
		MessagesSent:     atomic.LoadUint64(&o.msgsSent),
		MessagesReceived: atomic.LoadUint64(&o.msgsRecv),
	}
}

// Send emits one frame: the packed length followed by the payload. The
// output stream is guarded by a monitor; only the last of the concurrent
// writers flushes it. On an I/O failure the connection closes without a
// peer goodbye and the caller gets ErrorConnection.
func (o *cnn) Send(ctx context.Context, msg []byte) error {
	if !o.IsOpen() {
		return ErrorConnectionClosed.Error(nil)
	}

	if len(msg) == 0 {
		return liberr.Newf(ErrorProtocol.Uint16(), "refusing to send a message with a length of zero")
	}

	o.wrt.Add(1)
	o.mux.Lock()

	err := libstm.WritePackedInt32(o.out, int32(len(msg)))
	if err == nil {
		_, err = o.out.Write(msg)
	}

	if last := o.wrt.Add(-1) == 0; last && err == nil {
		// only the last of the concurrent writers needs to flush
		err = o.out.Flush()
	} else if last && err != nil {
		_ = o.out.Flush()
	}

	o.mux.Unlock()

	if err != nil {
		_ = o.Close(ctx, false, err)
		return ErrorConnection.Error(err)
	}

	atomic.AddUint64(&o.bytesSent, uint64(len(msg)))
	atomic.AddUint64(&o.msgsSent, 1)

	return nil
}

// Close runs close-once: the reader is cancelled and joined unless the
// caller is the reader itself, the streams and the socket are released,
// then the listeners hear either a closed or an error event.
func (o *cnn) Close(ctx context.Context, notify bool, cause error) error {
	return o.close(ctx, notify, cause, true)
}

func (o *cnn) close(ctx context.Context, notify bool, cause error, wait bool) error {
	for {
		cur := o.sta.Load()

		if cur == connClosing || cur == connClosed {
			return nil
		}

		if o.sta.CompareAndSwap(cur, connClosing) {
			break
		}
	}

	if notify && cause == nil {
		if n, k := o.ini.ngt.(CloseNotifier); k {
			n.NotifyClose(ctx, o)
		}
	}

	// unblock and retire the reader; the reader's own close path skips
	// the join so it never waits on itself
	if o.rdr != nil {
		o.rdr.RequestStop()
	}

	o.cnl()

	if o.inp != nil {
		_ = o.inp.Close()
	}

	if o.out != nil {
		_ = o.out.Close()
	}

	_ = o.skt.Close()

	if o.rdr != nil && wait {
		o.rdr.Join(ctx)
	}

	o.sta.Store(connClosed)

	o.ini.onConnectionClosed(o, cause)

	return nil
}
