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
	"math/rand"
	"net"
	"strconv"
	"strings"

	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
)

// holder is one configured host and port pair. pending marks a holder
// handed out but neither accepted nor rejected yet; reported suppresses
// duplicate warnings about an unresolvable name.
type holder struct {
	host     string
	port     int
	pending  bool
	reported bool
}

type prv struct {
	hld   []*holder
	last  int
	safe  bool
	res   Resolver
	log   liblog.FuncLog
	cur   *holder
	queue []Endpoint
}

func shuffleHolders(h []*holder) {
	rand.Shuffle(len(h), func(i, j int) {
		h[i], h[j] = h[j], h[i]
	})
}

func defaultResolver(host string) ([]net.IP, error) {
	return net.LookupIP(host)
}

// resolve builds the endpoint list for one holder. A hostname may
// resolve to several addresses; the list is shuffled per resolution. On
// resolution failure a single unresolved endpoint stands in, safe mode
// skips it later.
func (o *prv) resolve(h *holder) []Endpoint {
	if strings.EqualFold(h.host, "localhost") {
		return []Endpoint{{Host: h.host, Port: h.port, IP: net.IPv4(127, 0, 0, 1)}}
	}

	ips, err := o.res(h.host)
	if err != nil || len(ips) == 0 {
		return []Endpoint{{Host: h.host, Port: h.port}}
	}

	rand.Shuffle(len(ips), func(i, j int) {
		ips[i], ips[j] = ips[j], ips[i]
	})

	lst := make([]Endpoint, 0, len(ips))
	for _, ip := range ips {
		lst = append(lst, Endpoint{Host: h.host, Port: h.port, IP: ip})
	}

	return lst
}

func (o *prv) NextAddress() *Endpoint {
	cItems := len(o.hld)
	if cItems == 0 {
		return nil
	}

	for {
		for len(o.queue) == 0 {
			// select the next configured holder
			o.last = (o.last + 1) % cItems
			h := o.hld[o.last]

			if h.pending {
				// the cycle came back around without an accept
				o.reset(-1)
				return nil
			}

			h.pending = true
			o.cur = h
			o.queue = o.resolve(h)
		}

		ep := o.queue[0]
		o.queue = o.queue[1:]

		if o.safe && !ep.IsResolved() {
			if o.cur != nil && !o.cur.reported {
				o.cur.reported = true

				if o.log != nil {
					if l := o.log(); l != nil {
						l.Entry(loglvl.WarnLevel, "skipping the unresolvable address %q", ep.String()).Log()
					}
				}
			}
			continue
		}

		return &ep
	}
}

func (o *prv) Accept() {
	o.reset(o.last)
}

func (o *prv) Reject(_ error) {
	// the holder stays pending until the cycle wraps around
}

// reset clears every pending flag and the secondary address queue, and
// re-arms the cursor at the given position.
func (o *prv) reset(last int) {
	for _, h := range o.hld {
		h.pending = false
	}

	o.queue = nil
	o.cur = nil
	o.last = last
}

func (o *prv) String() string {
	var b strings.Builder

	b.WriteByte('[')

	for i, h := range o.hld {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(h.host)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(h.port))
	}

	b.WriteByte(']')

	return b.String()
}
