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

package initiator_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	libadr "github/sabouaram/extendlib/address"
	libini "github/sabouaram/extendlib/initiator"
	libskt "github/sabouaram/extendlib/socket"

	liberr "github.com/nabbar/golib/errors"
	libdur "github.com/nabbar/golib/duration"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Initiator", func() {
	Context("frame echo", func() {
		It("should open, send a frame and receive the echo", func() {
			srv := newFrameServer(false)
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			sink := &frameSink{}
			events := &captureEvents{}

			ini, err := libini.New(libini.Config{
				ServiceName:    "EchoInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
				RequestTimeout: libdur.ParseDuration(2 * time.Second),
			}, loopbackProvider(srv.Port()), nil, sink, nil)
			Expect(err).ToNot(HaveOccurred())

			ini.AddConnectionListener(events)

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			cnn, err := ini.EnsureConnection(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(cnn.IsOpen()).To(BeTrue())

			msg := []byte("hello world")
			Expect(cnn.Send(ctx, msg)).To(Succeed())

			Eventually(func() int {
				return len(sink.Frames())
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(1))

			Expect(sink.Frames()[0]).To(Equal(msg))

			st := cnn.Stats()
			Expect(st.MessagesSent).To(Equal(uint64(1)))
			Expect(st.BytesSent).To(Equal(uint64(len(msg))))
			Expect(st.MessagesReceived).To(Equal(uint64(1)))
			Expect(st.BytesReceived).To(Equal(uint64(len(msg))))

			// an application close reports closed, not error
			Expect(cnn.Close(ctx, true, nil)).To(Succeed())

			Eventually(func() int {
				_, closed, _ := events.Counts()
				return closed
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(1))

			_, _, failed := events.Counts()
			Expect(failed).To(Equal(0))
		})

		It("should preserve frame integrity under concurrent senders", func() {
			srv := newFrameServer(false)
			defer srv.Close()

			ctx, cnl := testCtx(15 * time.Second)
			defer cnl()

			sink := &frameSink{}

			ini, err := libini.New(libini.Config{
				ServiceName:    "ConcurrentInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
				RequestTimeout: libdur.ParseDuration(5 * time.Second),
			}, loopbackProvider(srv.Port()), nil, sink, nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			cnn, err := ini.EnsureConnection(ctx)
			Expect(err).ToNot(HaveOccurred())

			const senders = 10

			var wg sync.WaitGroup
			for i := 0; i < senders; i++ {
				wg.Add(1)

				go func(n int) {
					defer GinkgoRecover()
					defer wg.Done()

					msg := []byte(fmt.Sprintf("frame-%02d-%s", n, string(make([]byte, 100+n))))
					Expect(cnn.Send(ctx, msg)).To(Succeed())
				}(i)
			}

			wg.Wait()

			Eventually(func() int {
				return len(sink.Frames())
			}, 10*time.Second, 10*time.Millisecond).Should(Equal(senders))

			// every frame must round-trip whole, whatever the interleaving
			seen := map[string]bool{}
			for _, f := range sink.Frames() {
				seen[string(f[:8])] = true
			}

			Expect(seen).To(HaveLen(senders))
		})
	})

	Context("connect failure", func() {
		It("should enumerate the attempted addresses with the timeout cause", func() {
			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			prv, err := libadr.New([]libadr.Server{
				{Host: "192.0.2.1", Port: 1},
			}, true, func(host string) ([]net.IP, error) {
				return []net.IP{net.IPv4(192, 0, 2, 1)}, nil
			}, nil)
			Expect(err).ToNot(HaveOccurred())

			ini, err := libini.New(libini.Config{
				ServiceName:    "TimeoutInitiator",
				ConnectTimeout: libdur.ParseDuration(200 * time.Millisecond),
			}, prv, nil, nil, nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			start := time.Now()
			_, err = ini.OpenConnection(ctx)

			Expect(err).To(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically("<", 2*time.Second))
			Expect(liberr.ContainsString(err, "192.0.2.1:1")).To(BeTrue())
			Expect(liberr.ContainsString(err, "timed out")).To(BeTrue())
		})

		It("should fail fast on a refused port", func() {
			// bind then close to get a port nothing listens on
			lis, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).ToNot(HaveOccurred())
			port := lis.Addr().(*net.TCPAddr).Port
			Expect(lis.Close()).To(Succeed())

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			ini, err := libini.New(libini.Config{
				ServiceName:    "RefusedInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
			}, loopbackProvider(port), nil, nil, nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			_, err = ini.OpenConnection(ctx)
			Expect(err).To(HaveOccurred())
			Expect(liberr.ContainsString(err, fmt.Sprintf("127.0.0.1:%d", port))).To(BeTrue())
		})
	})

	Context("subport handshake", func() {
		It("should emit the 8 octet prelude before any frame", func() {
			srv := newFrameServer(true)
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			ini, err := libini.New(libini.Config{
				ServiceName:    "SubportInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
				RequestTimeout: libdur.ParseDuration(2 * time.Second),
				Subport:        libskt.NameServiceSubPort,
			}, loopbackProvider(srv.Port()), nil, nil, nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			_, err = ini.OpenConnection(ctx)
			Expect(err).ToNot(HaveOccurred())

			Eventually(func() int {
				return len(srv.Preludes())
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(1))

			Expect(srv.Preludes()[0]).To(Equal(subportPrelude(3)))
		})
	})

	Context("redirect", func() {
		It("should follow the redirect list with the decoded subport and keep the provider counts at one accept", func() {
			target := newFrameServer(true)
			defer target.Close()

			first := newFrameServer(false)
			defer first.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			enc := libskt.EncodeSubport(int32(target.Port()), 42)

			ngt := &redirectNegotiator{
				redirectFrom: first.Port(),
				list: []libini.Redirect{
					{Host: "127.0.0.1", Port: enc},
				},
			}

			prv := &countingProvider{Provider: loopbackProvider(first.Port())}

			ini, err := libini.New(libini.Config{
				ServiceName:    "RedirectInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
				RequestTimeout: libdur.ParseDuration(2 * time.Second),
			}, prv, ngt, nil, nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			cnn, err := ini.OpenConnection(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(cnn.RemoteAddr().(*net.TCPAddr).Port).To(Equal(target.Port()))

			// the redirected connect carried the decoded subport prelude
			Eventually(func() int {
				return len(target.Preludes())
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(1))

			Expect(target.Preludes()[0]).To(Equal(subportPrelude(42)))

			accepts, rejects := prv.Counts()
			Expect(accepts).To(Equal(1))
			Expect(rejects).To(Equal(0))
		})
	})

	Context("inbound protocol violations", func() {
		It("should drop the connection on a zero length frame", func() {
			srv := newRawServer(func(c net.Conn) {
				// a single zero octet is a packed zero length
				_, _ = c.Write([]byte{0x00})
			})
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			events := &captureEvents{}

			ini, err := libini.New(libini.Config{
				ServiceName:    "ZeroLenInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
			}, loopbackProvider(srv.Port()), nil, nil, nil)
			Expect(err).ToNot(HaveOccurred())

			ini.AddConnectionListener(events)

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			cnn, err := ini.OpenConnection(ctx)
			Expect(err).ToNot(HaveOccurred())

			Eventually(func() bool {
				return cnn.IsOpen()
			}, 5*time.Second, 10*time.Millisecond).Should(BeFalse())

			Eventually(func() int {
				_, _, failed := events.Counts()
				return failed
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(1))
		})

		It("should drop the connection on a negative length frame", func() {
			srv := newRawServer(func(c net.Conn) {
				// sign bit set, no continuation: decodes to -1
				_, _ = c.Write([]byte{0x40})
			})
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			ini, err := libini.New(libini.Config{
				ServiceName:    "NegLenInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
			}, loopbackProvider(srv.Port()), nil, nil, nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			cnn, err := ini.OpenConnection(ctx)
			Expect(err).ToNot(HaveOccurred())

			Eventually(func() bool {
				return cnn.IsOpen()
			}, 5*time.Second, 10*time.Millisecond).Should(BeFalse())
		})
	})

	Context("peer disconnect", func() {
		It("should report a connection error and allow a reopen", func() {
			srv := newFrameServer(false)
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			events := &captureEvents{}

			ini, err := libini.New(libini.Config{
				ServiceName:    "ReopenInitiator",
				ConnectTimeout: libdur.ParseDuration(2 * time.Second),
			}, loopbackProvider(srv.Port()), nil, nil, nil)
			Expect(err).ToNot(HaveOccurred())

			ini.AddConnectionListener(events)

			Expect(ini.Start(ctx)).To(Succeed())
			defer func() {
				_ = ini.Stop(ctx)
			}()

			first, err := ini.EnsureConnection(ctx)
			Expect(err).ToNot(HaveOccurred())

			srv.DropConnections()

			Eventually(func() bool {
				return first.IsOpen()
			}, 5*time.Second, 10*time.Millisecond).Should(BeFalse())

			Eventually(func() int {
				_, _, failed := events.Counts()
				return failed
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(1))

			second, err := ini.EnsureConnection(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(second.IsOpen()).To(BeTrue())
			Expect(second).ToNot(BeIdenticalTo(first))
		})
	})
})

// redirectNegotiator answers the channel open on the first server with a
// redirect list and accepts everything else.
type redirectNegotiator struct {
	redirectFrom int
	list         []libini.Redirect
}

func (n *redirectNegotiator) OpenConnection(ctx context.Context, c libini.Connection) error {
	if a, k := c.RemoteAddr().(*net.TCPAddr); k && a.Port == n.redirectFrom {
		c.SetRedirect(n.list)
		return fmt.Errorf("redirect requested by peer")
	}

	return nil
}
