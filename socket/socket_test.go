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

package socket_test

import (
	"net"
	"time"

	libdur "github.com/nabbar/golib/duration"
	libskt "github/sabouaram/extendlib/socket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Socket", func() {
	Context("Connect", func() {
		It("should connect to a listening peer and expose its state", func() {
			srv := newEchoServer()
			defer srv.Close()

			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{NoDelay: true, KeepAlive: true}, nil)
			defer func() {
				_ = s.Close()
			}()

			Expect(s.Connect(ctx, srv.addr, time.Second)).To(Succeed())
			Expect(s.IsConnected()).To(BeTrue())
			Expect(s.IsClosed()).To(BeFalse())
			Expect(s.RemoteAddr()).ToNot(BeNil())
		})

		It("should fail within the timeout on an unreachable address", func() {
			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{}, nil)
			defer func() {
				_ = s.Close()
			}()

			addr := &net.TCPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 1}

			start := time.Now()
			err := s.Connect(ctx, addr, 200*time.Millisecond)

			Expect(err).To(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically("<", 2*time.Second))
			Expect(libskt.IsTimeout(err)).To(BeTrue())
		})

		It("should refuse a nil address", func() {
			ctx, cnl := testCtx(time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{}, nil)
			Expect(s.Connect(ctx, nil, time.Second)).ToNot(Succeed())
		})
	})

	Context("Read / Write", func() {
		It("should echo octets through a connected peer", func() {
			srv := newEchoServer()
			defer srv.Close()

			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{}, nil)
			defer func() {
				_ = s.Close()
			}()

			Expect(s.Connect(ctx, srv.addr, time.Second)).To(Succeed())

			msg := []byte("hello world")
			n, err := s.Write(ctx, msg, time.Second)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(len(msg)))

			got := make([]byte, 0, len(msg))
			p := make([]byte, 64)

			for len(got) < len(msg) {
				c, er := s.Read(ctx, p, time.Second)
				Expect(er).ToNot(HaveOccurred())
				got = append(got, p[:c]...)
			}

			Expect(got).To(Equal(msg))
		})

		It("should time out a read on a silent peer", func() {
			srv := newSilentServer()
			defer srv.Close()

			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{
				PollInterval: libdur.ParseDuration(50 * time.Millisecond),
			}, nil)
			defer func() {
				_ = s.Close()
			}()

			Expect(s.Connect(ctx, srv.addr, time.Second)).To(Succeed())

			p := make([]byte, 8)
			start := time.Now()
			_, err := s.Read(ctx, p, 200*time.Millisecond)

			Expect(err).To(HaveOccurred())
			Expect(libskt.IsTimeout(err)).To(BeTrue())
			Expect(libskt.IsInterrupted(err)).To(BeTrue())
			Expect(time.Since(start)).To(BeNumerically("~", 200*time.Millisecond, 200*time.Millisecond))
		})

		It("should interrupt a read when the context is cancelled", func() {
			srv := newSilentServer()
			defer srv.Close()

			ctx, cnl := testCtx(5 * time.Second)

			s := libskt.New(libskt.Options{
				PollInterval: libdur.ParseDuration(50 * time.Millisecond),
			}, nil)
			defer func() {
				_ = s.Close()
			}()

			Expect(s.Connect(ctx, srv.addr, time.Second)).To(Succeed())

			go func() {
				time.Sleep(100 * time.Millisecond)
				cnl()
			}()

			p := make([]byte, 8)
			_, err := s.Read(ctx, p, 0)

			Expect(err).To(HaveOccurred())
			Expect(libskt.IsInterrupted(err)).To(BeTrue())
			Expect(libskt.IsTimeout(err)).To(BeFalse())
		})

		It("should fail a read after the peer goes away", func() {
			srv := newEchoServer()

			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{
				PollInterval: libdur.ParseDuration(50 * time.Millisecond),
			}, nil)
			defer func() {
				_ = s.Close()
			}()

			Expect(s.Connect(ctx, srv.addr, time.Second)).To(Succeed())

			// drop the whole server, the held connection closes
			srv.Close()

			p := make([]byte, 8)

			Eventually(func() error {
				_, err := s.Read(ctx, p, 100*time.Millisecond)
				if libskt.IsTimeout(err) {
					return nil
				}
				return err
			}, 3*time.Second, 50*time.Millisecond).Should(HaveOccurred())
		})
	})

	Context("Close", func() {
		It("should be idempotent", func() {
			srv := newEchoServer()
			defer srv.Close()

			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{}, nil)
			Expect(s.Connect(ctx, srv.addr, time.Second)).To(Succeed())

			Expect(s.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())
			Expect(s.IsClosed()).To(BeTrue())
		})

		It("should deny further reads and writes", func() {
			srv := newEchoServer()
			defer srv.Close()

			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := libskt.New(libskt.Options{}, nil)
			Expect(s.Connect(ctx, srv.addr, time.Second)).To(Succeed())
			Expect(s.Close()).To(Succeed())

			p := make([]byte, 8)
			_, err := s.Read(ctx, p, 100*time.Millisecond)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("Bind", func() {
		It("should record the local address before connect", func() {
			s := libskt.New(libskt.Options{}, nil)

			Expect(s.IsBound()).To(BeFalse())
			Expect(s.Bind(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})).To(Succeed())
			Expect(s.IsBound()).To(BeTrue())
		})
	})
})
