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

//go:build !windows

package socket

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// dialControl applies the options that must land on the descriptor
// before the connect call, SO_REUSEADDR being the only one here.
func (o *sck) dialControl(network, address string, rc syscall.RawConn) error {
	if !o.o.ReuseAddress {
		return nil
	}

	var err error

	e := rc.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})

	if e != nil {
		return e
	}

	return err
}

// Available reports the octet count readable without blocking, through
// the FIONREAD ioctl on the connected descriptor.
func (o *sck) Available() (int, error) {
	c := o.c.Load()
	if c == nil || !o.IsConnected() {
		return 0, ErrorSocketState.Error(nil)
	}

	rc, err := c.SyscallConn()
	if err != nil {
		return 0, ErrorSocketIO.Error(err)
	}

	var (
		cnt int
		ctl error
	)

	err = rc.Control(func(fd uintptr) {
		cnt, ctl = unix.IoctlGetInt(int(fd), unix.FIONREAD)
	})

	if err != nil {
		return 0, ErrorSocketIO.Error(err)
	} else if ctl != nil {
		return 0, ErrorSocketIO.Error(ctl)
	}

	return cnt, nil
}

// getLinger reads the effective SO_LINGER value back, in seconds, -1
// when lingering is off.
func getLinger(c *net.TCPConn) (int, error) {
	rc, err := c.SyscallConn()
	if err != nil {
		return 0, err
	}

	var (
		lin *unix.Linger
		ctl error
	)

	err = rc.Control(func(fd uintptr) {
		lin, ctl = unix.GetsockoptLinger(int(fd), unix.SOL_SOCKET, unix.SO_LINGER)
	})

	if err != nil {
		return 0, err
	} else if ctl != nil {
		return 0, ctl
	}

	if lin == nil || lin.Onoff == 0 {
		return -1, nil
	}

	return int(lin.Linger), nil
}

// getBufferSize reads the effective SO_RCVBUF / SO_SNDBUF value back so
// a silently clamped request can be reported.
func getBufferSize(c *net.TCPConn, receive bool) (int, error) {
	rc, err := c.SyscallConn()
	if err != nil {
		return 0, err
	}

	opt := unix.SO_SNDBUF
	if receive {
		opt = unix.SO_RCVBUF
	}

	var (
		val int
		ctl error
	)

	err = rc.Control(func(fd uintptr) {
		val, ctl = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, opt)
	})

	if err != nil {
		return 0, err
	}

	return val, ctl
}
