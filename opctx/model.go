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

package opctx

import (
	"fmt"
	"os"
	"path/filepath"

	libadr "github/sabouaram/extendlib/address"
	libsrz "github/sabouaram/extendlib/serialize"

	libatm "github.com/nabbar/golib/atomic"
	liblog "github.com/nabbar/golib/logger"
)

type mbr struct {
	uid string
	mch string
	prc string
	rol string
}

func (o *mbr) Uid() string {
	return o.uid
}

func (o *mbr) MachineName() string {
	return o.mch
}

func (o *mbr) ProcessName() string {
	return o.prc
}

func (o *mbr) RoleName() string {
	return o.rol
}

func (o *mbr) String() string {
	return fmt.Sprintf("Member(Uid=%s, Machine=%s, Process=%s, Role=%s)", o.uid, o.mch, o.prc, o.rol)
}

func processName() string {
	if len(os.Args) > 0 {
		return filepath.Base(os.Args[0])
	}

	return ""
}

type opx struct {
	mbr Member
	adr libatm.MapTyped[string, libadr.Factory]
	srz libatm.MapTyped[string, libsrz.Factory]
	flt libatm.MapTyped[string, interface{}]
	ttl int
	ast IdentityAsserter
	trf IdentityTransformer
	log liblog.FuncLog
}

func (o *opx) LocalMember() Member {
	return o.mbr
}

func (o *opx) AddressProviderFactory(name string) (libadr.Factory, bool) {
	return o.adr.Load(name)
}

func (o *opx) RegisterAddressProviderFactory(name string, f libadr.Factory) {
	o.adr.Store(name, f)
}

func (o *opx) SerializerFactory(name string) (libsrz.Factory, bool) {
	return o.srz.Load(name)
}

func (o *opx) RegisterSerializerFactory(name string, f libsrz.Factory) {
	o.srz.Store(name, f)
}

func (o *opx) Filter(name string) (interface{}, bool) {
	return o.flt.Load(name)
}

func (o *opx) RegisterFilter(name string, filter interface{}) {
	o.flt.Store(name, filter)
}

func (o *opx) IdentityAsserter() IdentityAsserter {
	if o.ast == nil {
		return func(token []byte) (interface{}, error) {
			return nil, nil
		}
	}

	return o.ast
}

func (o *opx) IdentityTransformer() IdentityTransformer {
	if o.trf == nil {
		return func(subject interface{}) ([]byte, error) {
			return nil, nil
		}
	}

	return o.trf
}

func (o *opx) DiscoveryTimeToLive() int {
	return o.ttl
}

func (o *opx) Logger() liblog.FuncLog {
	return o.log
}
