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
	"strings"
	"sync"

	libadr "github/sabouaram/extendlib/address"
	libevt "github/sabouaram/extendlib/event"
	libsvc "github/sabouaram/extendlib/service"
	libskt "github/sabouaram/extendlib/socket"

	libatm "github.com/nabbar/golib/atomic"
	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"
)

// provBox wraps the provider so the atomic value always carries one
// concrete pointer type, whatever provider implementation is swapped in.
type provBox struct {
	p libadr.Provider
}

type ini struct {
	cfg Config
	mch *libsvc.Machine

	prv libatm.Value[*provBox]
	sub libatm.Value[int32]
	cnn libatm.Value[*cnn]

	ngt Negotiator
	rcv Receiver

	mux sync.Mutex // serialises open / ensure
	lst libevt.Listeners[ConnectionListener]
}

// instantiateSocket creates and configures a fresh socket for one
// connect attempt; sockets are never reused across attempts.
func (o *ini) instantiateSocket() (libskt.Socket, error) {
	s := libskt.New(libskt.Options{
		KeepAlive:         o.cfg.KeepAlive,
		NoDelay:           !o.cfg.TcpDelay,
		ReuseAddress:      o.cfg.ReuseAddress,
		LingerTimeout:     o.cfg.LingerTimeout,
		ReceiveBufferSize: o.cfg.ReceiveBufferSize,
		SendBufferSize:    o.cfg.SendBufferSize,
	}, o.mch.Logger())

	if o.cfg.LocalHost != "" || o.cfg.LocalPort > 0 {
		ip := net.IPv4(127, 0, 0, 1)

		if o.cfg.LocalHost != "" && !strings.EqualFold(o.cfg.LocalHost, "localhost") {
			if p := net.ParseIP(o.cfg.LocalHost); p != nil {
				ip = p
			} else if ips, err := net.LookupIP(o.cfg.LocalHost); err == nil && len(ips) > 0 {
				ip = ips[0]
			} else {
				return nil, liberr.Newf(ErrorInvalidConfig.Uint16(), "cannot resolve the local address %q", o.cfg.LocalHost)
			}
		}

		if err := s.Bind(&net.TCPAddr{IP: ip, Port: o.cfg.LocalPort}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// OpenConnection loops over the address provider, walking any redirect
// list the peer answers with, until one framed connection opens. Every
// attempted address lands in the terminal error message.
func (o *ini) OpenConnection(ctx context.Context) (Connection, error) {
	prv := o.Provider()
	if prv == nil {
		return nil, liberr.Newf(ErrorInvalidConfig.Uint16(), "no remote address provider")
	}

	o.mux.Lock()
	defer o.mux.Unlock()

	var (
		tried    []string
		cause    error
		redirect []Redirect
		redIdx   int
	)

	for {
		// honour the caller's cooperative budget before each address
		if err := ctx.Err(); err != nil {
			return nil, ErrorConnection.Error(&libskt.InterruptedIOError{Timeout: true, Cause: err})
		}

		var (
			ep       *libadr.Endpoint
			subport  int32
			onRed    = redirect != nil
			lastRed  = onRed && redIdx >= len(redirect)-1
			fromProv bool
		)

		if !onRed {
			ep = prv.NextAddress()
			subport = o.Subport()
			fromProv = true
		} else if redIdx < len(redirect) {
			r := redirect[redIdx]
			redIdx++

			ep = o.resolveRedirect(r)
			subport = libskt.CalculateSubport(r.Port)
		} else {
			// redirect list exhausted, fall back to the provider
			redirect = nil
			redIdx = 0
			continue
		}

		if ep == nil {
			if onRed {
				redirect = nil
				redIdx = 0
				continue
			}
			break
		}

		addr := ep.TCPAddr()
		if addr == nil {
			// unresolved endpoint from a non safe provider
			cause = liberr.Newf(libadr.ErrorUnknownHost.Uint16(), "cannot resolve %q", ep.Host)
			tried = append(tried, ep.String())

			if !onRed || lastRed {
				prv.Reject(cause)
			}
			continue
		}

		name := libskt.FormatAddress(addr, subport)
		tried = append(tried, name)

		skt, err := o.instantiateSocket()
		if err != nil {
			return nil, err
		}

		c := newConnection(o, skt)
		if onRed {
			c.red.Store(true)
		}

		if !onRed {
			o.mch.Log(loglvl.InfoLevel, nil, "connecting socket to %s", name)
		} else {
			o.mch.Log(loglvl.InfoLevel, nil, "redirecting socket to %s", name)
		}

		if err = o.connect(ctx, skt, addr, subport); err != nil {
			o.mch.Log(loglvl.InfoLevel, err, "error connecting socket to %s", name)
			_ = skt.Close()
			cause = err

			// reject unless a redirect address other than the last failed
			if fromProv || lastRed {
				prv.Reject(err)
			}
			continue
		}

		if err = o.openConnection(ctx, c); err != nil {
			if !onRed && c.IsRedirect() {
				redirect = c.RedirectList()
				redIdx = 0
			} else {
				cause = err
				o.mch.Log(loglvl.InfoLevel, err, "error establishing a connection with %s", name)

				if fromProv || lastRed {
					prv.Reject(err)
				}
			}
			continue
		}

		prv.Accept()
		o.cnn.Store(c)
		o.onConnectionOpened(c)

		return c, nil
	}

	err := liberr.Newf(ErrorConnection.Uint16(), "could not establish a connection to one of the following addresses: [%s]", strings.Join(tried, ", "))
	if cause != nil {
		err.Add(cause)
	}

	return nil, err
}

// preludeWriter frames the 8 octet subport prelude writes through the
// timed socket write path.
type preludeWriter struct {
	ctx context.Context
	skt libskt.Socket
	tmo libdur.Duration
}

func (w *preludeWriter) Write(p []byte) (int, error) {
	return w.skt.Write(w.ctx, p, w.tmo.Time())
}

// connect establishes the TCP session and emits the subport handshake
// prelude before any framed traffic.
func (o *ini) connect(ctx context.Context, skt libskt.Socket, addr *net.TCPAddr, subport int32) error {
	if err := skt.Connect(ctx, addr, o.cfg.ConnectTimeout.Time()); err != nil {
		return err
	}

	if subport != libskt.NoSubPort {
		w := &preludeWriter{ctx: ctx, skt: skt, tmo: o.cfg.RequestTimeout}

		if err := libskt.WriteSubport(w, subport); err != nil {
			return err
		}
	}

	return nil
}

// openConnection layers the framed connection and runs the channel open
// negotiation. A negotiation failure closes the fresh socket without any
// listener event, the connection was never announced.
func (o *ini) openConnection(ctx context.Context, c *cnn) error {
	if err := c.open(ctx); err != nil {
		c.markSettled()
		_ = c.skt.Close()
		return err
	}

	if o.ngt != nil {
		if err := o.ngt.OpenConnection(ctx, c); err != nil {
			c.markSettled()
			_ = c.close(ctx, false, nil, true)
			return err
		}
	}

	return nil
}

func (o *ini) resolveRedirect(r Redirect) *libadr.Endpoint {
	base := int(libskt.CalculateBaseport(r.Port))

	if ip := net.ParseIP(r.Host); ip != nil {
		return &libadr.Endpoint{Host: r.Host, Port: base, IP: ip}
	}

	if ips, err := net.LookupIP(r.Host); err == nil && len(ips) > 0 {
		return &libadr.Endpoint{Host: r.Host, Port: base, IP: ips[0]}
	}

	return &libadr.Endpoint{Host: r.Host, Port: base}
}
