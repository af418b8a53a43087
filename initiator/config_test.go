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
	"time"

	libadr "github/sabouaram/extendlib/address"
	libini "github/sabouaram/extendlib/initiator"
	libskt "github/sabouaram/extendlib/socket"
	libcnf "github/sabouaram/extendlib/xmlconf"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const initiatorXml = `
<remote-invocation-scheme>
  <initiator-config>
    <tcp-initiator>
      <local-address>
        <address>127.0.0.1</address>
        <port>0</port>
        <reusable>true</reusable>
      </local-address>
      <remote-addresses>
        <socket-address>
          <address>10.20.0.1</address>
          <port>9099</port>
        </socket-address>
      </remote-addresses>
      <keep-alive-enabled>true</keep-alive-enabled>
      <tcp-delay-enabled>true</tcp-delay-enabled>
      <receive-buffer-size>64K</receive-buffer-size>
      <send-buffer-size>128K</send-buffer-size>
      <linger-timeout>3000</linger-timeout>
      <connect-timeout>4s</connect-timeout>
    </tcp-initiator>
  </initiator-config>
  <incoming-message-handler>
    <thread-count>4</thread-count>
    <task-hung-threshold>30s</task-hung-threshold>
    <task-timeout>10s</task-timeout>
    <request-timeout>5s</request-timeout>
  </incoming-message-handler>
</remote-invocation-scheme>`

var _ = Describe("Configuration", func() {
	Context("ParseConfig", func() {
		It("should read the whole tcp-initiator surface", func() {
			root, err := libcnf.ParseBytes([]byte(initiatorXml))
			Expect(err).ToNot(HaveOccurred())

			cfg, err := libini.ParseConfig(root, "TestService")
			Expect(err).ToNot(HaveOccurred())

			Expect(cfg.ServiceName).To(Equal("TestService"))
			Expect(cfg.LocalHost).To(Equal("127.0.0.1"))
			Expect(cfg.LocalPort).To(Equal(0))
			Expect(cfg.ReuseAddress).To(BeTrue())
			Expect(cfg.KeepAlive).To(BeTrue())
			Expect(cfg.TcpDelay).To(BeTrue())
			Expect(cfg.ReceiveBufferSize.Int()).To(BeNumerically(">", 0))
			Expect(cfg.SendBufferSize.Int()).To(BeNumerically(">", 0))
			Expect(cfg.LingerTimeout.Time()).To(Equal(3 * time.Second))
			Expect(cfg.ConnectTimeout.Time()).To(Equal(4 * time.Second))
			Expect(cfg.RequestTimeout.Time()).To(Equal(5 * time.Second))
			Expect(cfg.ThreadCount).To(Equal(4))
			Expect(cfg.TaskHungThreshold.Time()).To(Equal(30 * time.Second))
			Expect(cfg.TaskTimeout.Time()).To(Equal(10 * time.Second))
			Expect(cfg.Subport).To(Equal(libskt.NoSubPort))
			Expect(cfg.NameServiceAddressProvider).To(BeFalse())
		})

		It("should flip the name service flag and subport on name-service-addresses", func() {
			xml := `
<remote-cache-scheme>
  <initiator-config>
    <tcp-initiator>
      <name-service-addresses>
        <socket-address>
          <address>10.20.0.1</address>
          <port>7574</port>
        </socket-address>
      </name-service-addresses>
    </tcp-initiator>
  </initiator-config>
</remote-cache-scheme>`

			root, err := libcnf.ParseBytes([]byte(xml))
			Expect(err).ToNot(HaveOccurred())

			cfg, err := libini.ParseConfig(root, "TestService")
			Expect(err).ToNot(HaveOccurred())

			Expect(cfg.NameServiceAddressProvider).To(BeTrue())
			Expect(cfg.Subport).To(Equal(libskt.NameServiceSubPort))
		})

		It("should fail without a tcp-initiator element", func() {
			root, err := libcnf.ParseBytes([]byte("<remote-cache-scheme></remote-cache-scheme>"))
			Expect(err).ToNot(HaveOccurred())

			_, err = libini.ParseConfig(root, "TestService")
			Expect(err).To(HaveOccurred())
		})
	})

	Context("BuildProvider", func() {
		It("should build a provider over an inline socket-address list", func() {
			root, err := libcnf.ParseBytes([]byte(initiatorXml))
			Expect(err).ToNot(HaveOccurred())

			prv, ns, err := libini.BuildProvider(root, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(ns).To(BeFalse())
			Expect(prv).ToNot(BeNil())
		})

		It("should resolve a named provider through the factory map", func() {
			xml := `
<remote-cache-scheme>
  <initiator-config>
    <tcp-initiator>
      <remote-addresses>
        <address-provider>my-provider</address-provider>
      </remote-addresses>
    </tcp-initiator>
  </initiator-config>
</remote-cache-scheme>`

			root, err := libcnf.ParseBytes([]byte(xml))
			Expect(err).ToNot(HaveOccurred())

			resolve := func(name string) (libadr.Factory, bool) {
				if name != "my-provider" {
					return nil, false
				}

				return libadr.FuncFactory(func() (libadr.Provider, error) {
					return libadr.NewSingle(libadr.Endpoint{Host: "h", Port: 1}), nil
				}), true
			}

			prv, _, err := libini.BuildProvider(root, resolve, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(prv).ToNot(BeNil())
		})

		It("should fail on an unknown provider name", func() {
			xml := `
<remote-cache-scheme>
  <initiator-config>
    <tcp-initiator>
      <remote-addresses>
        <address-provider>missing</address-provider>
      </remote-addresses>
    </tcp-initiator>
  </initiator-config>
</remote-cache-scheme>`

			root, err := libcnf.ParseBytes([]byte(xml))
			Expect(err).ToNot(HaveOccurred())

			_, _, err = libini.BuildProvider(root, nil, nil)
			Expect(err).To(HaveOccurred())
		})
	})
})
