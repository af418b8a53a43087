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

package remote_test

import (
	"time"

	libevt "github/sabouaram/extendlib/event"
	librmt "github/sabouaram/extendlib/remote"
	libcnf "github/sabouaram/extendlib/xmlconf"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Safe Wrapper", func() {
	Context("lifecycle", func() {
		It("should keep its identity and deny restart after stop", func() {
			srv := newFrameServer(false)
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			xml, err := libcnf.ParseBytes([]byte(remoteXml(srv.Port())))
			Expect(err).ToNot(HaveOccurred())

			s := librmt.NewSafe("SafeCacheService", librmt.TypeRemoteCache, testOpCtx(), librmt.Collaborators{}, nil)
			Expect(s.ServiceName()).To(Equal("SafeCacheService"))
			Expect(s.ServiceType()).To(Equal(librmt.TypeRemoteCache))

			Expect(s.Configure(xml)).To(Succeed())
			Expect(s.Start(ctx)).To(Succeed())
			Expect(s.IsRunning()).To(BeTrue())

			Expect(s.Stop(ctx)).To(Succeed())
			Expect(s.IsRunning()).To(BeFalse())

			// stopped is terminal for the wrapper
			_, err = s.EnsureRunningService(ctx)
			Expect(err).To(HaveOccurred())
			Expect(s.Start(ctx)).ToNot(Succeed())
		})

		It("should require a configuration before the first ensure", func() {
			ctx, cnl := testCtx(5 * time.Second)
			defer cnl()

			s := librmt.NewSafe("SafeCacheService", librmt.TypeRemoteCache, testOpCtx(), librmt.Collaborators{}, nil)

			_, err := s.EnsureRunningService(ctx)
			Expect(err).To(HaveOccurred())
		})

		It("should keep the user context across incarnations", func() {
			srv := newFrameServer(false)
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			xml, err := libcnf.ParseBytes([]byte(remoteXml(srv.Port())))
			Expect(err).ToNot(HaveOccurred())

			s := librmt.NewSafe("SafeCacheService", librmt.TypeRemoteCache, testOpCtx(), librmt.Collaborators{}, nil)
			s.SetUserContext("application-state")

			Expect(s.Configure(xml)).To(Succeed())
			Expect(s.Start(ctx)).To(Succeed())

			defer func() {
				_ = s.Stop(ctx)
			}()

			inner := s.RunningService()
			Expect(inner).ToNot(BeNil())
			Expect(inner.UserContext()).To(Equal("application-state"))
		})
	})

	Context("reconnect", func() {
		It("should build a fresh inner service after a peer reset and replay listener registration", func() {
			srv := newFrameServer(false)
			defer srv.Close()

			ctx, cnl := testCtx(20 * time.Second)
			defer cnl()

			xml, err := libcnf.ParseBytes([]byte(remoteXml(srv.Port())))
			Expect(err).ToNot(HaveOccurred())

			s := librmt.NewSafe("SafeCacheService", librmt.TypeRemoteCache, testOpCtx(), librmt.Collaborators{}, nil)

			rec := &memberRecorder{}
			s.AddMemberListener(rec)

			Expect(s.Configure(xml)).To(Succeed())
			Expect(s.Start(ctx)).To(Succeed())

			first := s.RunningService()
			Expect(first).ToNot(BeNil())

			// the first incarnation joined exactly once
			Eventually(func() int {
				return rec.Count(libevt.MemberJoined)
			}, 5*time.Second, 10*time.Millisecond).Should(Equal(1))

			// simulate a peer reset
			srv.DropConnections()

			// the loss surfaces as one leaving and one left
			Eventually(func() int {
				return rec.Count(libevt.MemberLeft)
			}, 10*time.Second, 10*time.Millisecond).Should(Equal(1))
			Expect(rec.Count(libevt.MemberLeaving)).To(Equal(1))

			// the next ensure hands back a running, different incarnation
			var second librmt.Remote
			Eventually(func() bool {
				inner, e := s.EnsureRunningService(ctx)
				if e != nil || inner == nil {
					return false
				}

				second = inner
				return inner != first && inner.IsRunning()
			}, 10*time.Second, 50*time.Millisecond).Should(BeTrue())

			// the surviving listener heard the new incarnation join
			Eventually(func() int {
				return rec.Count(libevt.MemberJoined)
			}, 10*time.Second, 10*time.Millisecond).Should(Equal(2))

			_ = s.Stop(ctx)
		})

		It("should rewrite the event source to the wrapper", func() {
			srv := newFrameServer(false)
			defer srv.Close()

			ctx, cnl := testCtx(10 * time.Second)
			defer cnl()

			xml, err := libcnf.ParseBytes([]byte(remoteXml(srv.Port())))
			Expect(err).ToNot(HaveOccurred())

			s := librmt.NewSafe("SafeCacheService", librmt.TypeRemoteCache, testOpCtx(), librmt.Collaborators{}, nil)

			var (
				src  interface{}
				done = make(chan struct{})
			)

			s.AddMemberListener(&libevt.FuncMemberListener{Fct: func(e libevt.MemberEvent) {
				if e.ID == libevt.MemberJoined {
					src = e.Source
					select {
					case <-done:
					default:
						close(done)
					}
				}
			}})

			Expect(s.Configure(xml)).To(Succeed())
			Expect(s.Start(ctx)).To(Succeed())

			defer func() {
				_ = s.Stop(ctx)
			}()

			Eventually(done, 5*time.Second).Should(BeClosed())
			Expect(src).To(BeIdenticalTo(s))
		})
	})
})
