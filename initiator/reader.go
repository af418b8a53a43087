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
	"sync/atomic"

	libstm "github/sabouaram/extendlib/stream"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"
)

// reader is the dedicated inbound task of one connection: it decodes the
// packed frame length, validates it, reads the payload whole and hands
// it to the receiver in wire order. The reader holds only a back
// reference to its connection; the connection owns the reader.
type reader struct {
	c    *cnn
	stop atomic.Bool
	done chan struct{}
}

func newReader(c *cnn) *reader {
	return &reader{
		c:    c,
		done: make(chan struct{}),
	}
}

func (o *reader) Start(ctx context.Context) error {
	go o.loop()
	return nil
}

// RequestStop marks the reader exiting so the next unblocked read
// unwinds cleanly instead of re-entering the close path.
func (o *reader) RequestStop() {
	o.stop.Store(true)
}

func (o *reader) IsExiting() bool {
	return o.stop.Load()
}

// Join waits for the reader goroutine to retire, bounded by the caller's
// context.
func (o *reader) Join(ctx context.Context) {
	select {
	case <-o.done:
	case <-ctx.Done():
	}
}

func (o *reader) loop() {
	defer close(o.done)

	c := o.c
	m := int32(c.ini.cfg.MaxIncomingMessageSize.Int64())

	for !o.IsExiting() {
		cb, err := libstm.ReadPackedInt32(c.inp)
		if err != nil {
			o.onException(err)
			return
		}

		if cb < 0 {
			o.onException(liberr.Newf(ErrorProtocol.Uint16(), "received a message with a negative length"))
			return
		} else if cb == 0 {
			o.onException(liberr.Newf(ErrorProtocol.Uint16(), "received a message with a length of zero"))
			return
		} else if m > 0 && cb > m {
			o.onException(liberr.Newf(ErrorProtocol.Uint16(), "received a message with a length of %d that exceeds the maximum of %d", cb, m))
			return
		}

		msg := make([]byte, cb)

		if err = c.inp.ReadFully(msg); err != nil {
			o.onException(err)
			return
		}

		atomic.AddUint64(&c.bytesRecv, uint64(cb))
		atomic.AddUint64(&c.msgsRecv, 1)

		if c.ini.rcv != nil {
			c.ini.rcv.Receive(msg, c)
		}
	}
}

// onException terminates the connection from inside the reader: the
// close skips the reader join so the task never waits on itself, and
// nothing propagates to any caller.
func (o *reader) onException(err error) {
	if o.IsExiting() {
		return
	}

	o.stop.Store(true)

	o.c.ini.mch.Log(loglvl.DebugLevel, err, "connection reader retiring")

	_ = o.c.close(context.Background(), false, err, false)
}
