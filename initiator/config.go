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
	libadr "github/sabouaram/extendlib/address"
	libskt "github/sabouaram/extendlib/socket"
	libcnf "github/sabouaram/extendlib/xmlconf"

	libval "github.com/go-playground/validator/v10"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
)

// ParseConfig reads the tcp-initiator configuration element into a
// Config. The element may sit directly under the given root or inside
// an initiator-config wrapper.
func ParseConfig(root *libcnf.Element, serviceName string) (*Config, error) {
	tcp := FindInitiatorConfig(root)
	if tcp == nil {
		return nil, liberr.Newf(ErrorInvalidConfig.Uint16(), "missing the tcp-initiator configuration element")
	}

	cfg := &Config{
		ServiceName: serviceName,
		Subport:     libskt.NoSubPort,
	}

	// <local-address>
	loc := tcp.GetSafe("local-address")
	cfg.LocalHost = loc.GetSafe("address").GetString("")
	cfg.LocalPort = loc.GetSafe("port").GetInt(0)
	cfg.ReuseAddress = loc.GetSafe("reusable").GetBool(false)

	if cfg.LocalPort < 0 || cfg.LocalPort > 65535 {
		return nil, liberr.Newf(ErrorInvalidConfig.Uint16(), "the %q configuration element contains an invalid port element", tcp.Name)
	}

	// <keep-alive-enabled/>, <tcp-delay-enabled/>
	cfg.KeepAlive = tcp.GetSafe("keep-alive-enabled").GetBool(false)
	cfg.TcpDelay = tcp.GetSafe("tcp-delay-enabled").GetBool(false)

	// <receive-buffer-size/>, <send-buffer-size/>, <linger-timeout/>
	cfg.ReceiveBufferSize = tcp.GetSafe("receive-buffer-size").GetSize(0)
	cfg.SendBufferSize = tcp.GetSafe("send-buffer-size").GetSize(0)
	cfg.LingerTimeout = tcp.GetSafe("linger-timeout").GetDuration(0)

	// <connect-timeout/> and the incoming handler settings flow down
	// from the enclosing remote service element
	cfg.ConnectTimeout = tcp.GetSafe("connect-timeout").GetDuration(cfg.ConnectTimeout)

	hnd := root.GetSafe("incoming-message-handler")
	cfg.RequestTimeout = hnd.GetSafe("request-timeout").GetDuration(cfg.RequestTimeout)
	cfg.MaxIncomingMessageSize = hnd.GetSafe("max-message-size").GetSize(0)
	cfg.ThreadCount = hnd.GetSafe("thread-count").GetInt(0)
	cfg.TaskHungThreshold = hnd.GetSafe("task-hung-threshold").GetDuration(0)
	cfg.TaskTimeout = hnd.GetSafe("task-timeout").GetDuration(0)

	// a name-service address list flips the bootstrap flag and targets
	// the well known name service subport
	if tcp.Get("name-service-addresses") != nil || tcp.Get("remote-addresses") == nil {
		cfg.NameServiceAddressProvider = true
		cfg.Subport = libskt.NameServiceSubPort
	}

	if err := libval.New().Struct(cfg); err != nil {
		return nil, ErrorInvalidConfig.Error(err)
	}

	return cfg, nil
}

// FindInitiatorConfig locates the tcp-initiator element under root,
// looking through an initiator-config wrapper when present.
func FindInitiatorConfig(root *libcnf.Element) *libcnf.Element {
	if root == nil {
		return nil
	}

	if root.Name == "tcp-initiator" {
		return root
	}

	if t := root.Get("tcp-initiator"); t != nil {
		return t
	}

	if w := root.Get("initiator-config"); w != nil {
		return w.Get("tcp-initiator")
	}

	return nil
}

// FactoryResolver resolves a named address provider factory, the
// operational context map lookup.
type FactoryResolver func(name string) (libadr.Factory, bool)

// BuildProvider constructs the remote address provider configured under
// the tcp-initiator element: an inline socket-address list, a named
// address-provider reference resolved through the operational context
// map, or the implicit cluster-discovery provider when neither list is
// present. The second return reports whether the provider addresses the
// name service.
func BuildProvider(root *libcnf.Element, resolve FactoryResolver, log liblog.FuncLog) (libadr.Provider, bool, error) {
	tcp := FindInitiatorConfig(root)
	if tcp == nil {
		return nil, false, liberr.Newf(ErrorInvalidConfig.Uint16(), "missing the tcp-initiator configuration element")
	}

	var (
		ns  bool
		lst *libcnf.Element
	)

	if lst = tcp.Get("name-service-addresses"); lst != nil {
		ns = true
	} else if lst = tcp.Get("remote-addresses"); lst == nil {
		// implicit name service discovery
		ns = true
	}

	var ref *libcnf.Element
	if lst != nil {
		ref = lst.Get("address-provider")
	}

	if lst != nil && (ref == nil || ref.IsEmpty() || len(ref.Children) > 0) {
		src := lst
		if ref != nil && len(ref.Children) > 0 {
			src = ref
		}

		servers, err := parseSocketAddresses(src)
		if err != nil {
			return nil, ns, err
		}

		p, err := libadr.New(servers, true, nil, log)
		if err != nil {
			return nil, ns, err
		}

		return p, ns, nil
	}

	name := "cluster-discovery"
	if ref != nil {
		name = ref.GetString(name)
	}

	if resolve != nil {
		if f, k := resolve(name); k {
			p, err := f.CreateProvider()
			if err != nil {
				return nil, ns, err
			}
			return p, ns, nil
		}
	}

	return nil, ns, liberr.Newf(libadr.ErrorUnknownFactory.Uint16(), "address-provider name %q is undefined", name)
}

func parseSocketAddresses(lst *libcnf.Element) ([]libadr.Server, error) {
	var servers []libadr.Server

	for _, c := range lst.Children {
		switch c.Name {
		case "socket-address":
			adr := c.GetSafe("address").GetString("")
			prt := c.GetSafe("port").GetInt(0)

			if adr == "" {
				continue
			}

			servers = append(servers, libadr.Server{Host: adr, Port: prt})

		case "host-address", "address":
			if c.Value == "" {
				continue
			}

			servers = append(servers, libadr.Server{Host: c.Value, Port: 0})
		}
	}

	if len(servers) == 0 {
		return nil, liberr.Newf(ErrorInvalidConfig.Uint16(), "the address list element %q holds no usable address", lst.Name)
	}

	return servers, nil
}
