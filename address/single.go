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
)

type single struct {
	adr   Endpoint
	given bool
}

// NewSingle returns a provider handing out the given endpoint exactly
// once per cycle, the form a redirect or a name service answer installs.
func NewSingle(ep Endpoint) Provider {
	return &single{adr: ep}
}

func (o *single) NextAddress() *Endpoint {
	o.given = !o.given

	if o.given {
		ep := o.adr
		return &ep
	}

	return nil
}

func (o *single) Accept() {
}

func (o *single) Reject(_ error) {
}

func (o *single) String() string {
	return fmt.Sprintf("Address=%s", o.adr.String())
}

type substitution struct {
	prv  Provider
	port int
}

// NewSubstitution decorates a provider so that endpoints carrying a zero
// port get the given fixed port instead, the way a name service answer
// supplies the real proxy port.
func NewSubstitution(p Provider, port int) Provider {
	return &substitution{prv: p, port: port}
}

func (o *substitution) NextAddress() *Endpoint {
	ep := o.prv.NextAddress()

	if ep != nil && o.port != 0 && ep.Port == 0 {
		sub := *ep
		sub.Port = o.port
		return &sub
	}

	return ep
}

func (o *substitution) Accept() {
	o.prv.Accept()
}

func (o *substitution) Reject(cause error) {
	o.prv.Reject(cause)
}

// NewSubstitutionFactory wraps a factory so every provider it creates is
// port substituted.
func NewSubstitutionFactory(f Factory, port int) Factory {
	return FuncFactory(func() (Provider, error) {
		p, err := f.CreateProvider()
		if err != nil {
			return nil, err
		}

		return NewSubstitution(p, port), nil
	})
}
