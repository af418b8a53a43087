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

package address

import (
	"fmt"
	"net"

	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
)

// Endpoint is one remote cluster endpoint, resolved or not. A zero Port
// asks the name service bootstrap to substitute the real port later.
type Endpoint struct {
	Host string
	Port int
	IP   net.IP
}

// IsResolved reports whether the endpoint carries a usable IP address.
func (e Endpoint) IsResolved() bool {
	return e.IP != nil
}

// TCPAddr returns the endpoint as a dialable TCP address, or nil while
// the endpoint is unresolved.
func (e Endpoint) TCPAddr() *net.TCPAddr {
	if !e.IsResolved() {
		return nil
	}

	return &net.TCPAddr{IP: e.IP, Port: e.Port}
}

func (e Endpoint) String() string {
	if e.IsResolved() {
		return fmt.Sprintf("%s:%d", e.IP.String(), e.Port)
	}

	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Server is one configured host and port pair, the static form a
// provider is built from.
type Server struct {
	Host string `json:"host" mapstructure:"host" validate:"required"`
	Port int    `json:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Provider hands out cluster endpoints one at a time. The connection
// initiator is the single consumer: it either commits the last endpoint
// with Accept or discards it with Reject before asking for the next one.
// A nil NextAddress means one full cycle completed without an accept.
type Provider interface {
	NextAddress() *Endpoint
	Accept()
	Reject(cause error)
}

// Resolver turns a hostname into its address list. The default is the
// system resolver; tests plug their own.
type Resolver func(host string) ([]net.IP, error)

// Factory produces a Provider on demand. Named factories live in the
// operational context map.
type Factory interface {
	CreateProvider() (Provider, error)
}

// FuncFactory adapts a plain function to the Factory interface.
type FuncFactory func() (Provider, error)

func (f FuncFactory) CreateProvider() (Provider, error) {
	return f()
}

// New returns a provider over the given configured servers. The server
// list is shuffled once here, never re-shuffled afterwards, so behaviour
// under rejection stays deterministic while clients still spread their
// load. In safe mode endpoints failing name resolution are skipped and
// reported once per holder; otherwise the unresolved endpoint is handed
// to the caller as is.
func New(servers []Server, safe bool, res Resolver, log liblog.FuncLog) (Provider, error) {
	if len(servers) == 0 {
		return nil, ErrorConfigEmpty.Error(nil)
	}

	if res == nil {
		res = defaultResolver
	}

	h := make([]*holder, 0, len(servers))

	for _, s := range servers {
		if s.Host == "" {
			return nil, liberr.Newf(ErrorConfigInvalid.Uint16(), "host may not be empty")
		} else if s.Port < 0 || s.Port > 65535 {
			return nil, liberr.Newf(ErrorConfigInvalid.Uint16(), "port %d out of range of 0 to 65535", s.Port)
		}

		h = append(h, &holder{host: s.Host, port: s.Port})
	}

	shuffleHolders(h)

	return &prv{
		hld:   h,
		last:  -1,
		safe:  safe,
		res:   res,
		log:   log,
		cur:   nil,
		queue: nil,
	}, nil
}
