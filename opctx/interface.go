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

// Package opctx assembles the operational context a remote service runs
// against: the local member identity, the named address provider and
// serializer factory maps, the identity hooks and the discovery
// parameters.
package opctx

import (
	"os"

	libadr "github/sabouaram/extendlib/address"
	libsrz "github/sabouaram/extendlib/serialize"

	uuid "github.com/hashicorp/go-uuid"
	libatm "github.com/nabbar/golib/atomic"
	liblog "github.com/nabbar/golib/logger"
)

// Member is the identity of this client as seen by the cluster.
type Member interface {
	Uid() string
	MachineName() string
	ProcessName() string
	RoleName() string
	String() string
}

// IdentityAsserter validates a serialized identity token. The default
// accepts everything.
type IdentityAsserter func(token []byte) (interface{}, error)

// IdentityTransformer turns a local subject into the token sent on a
// channel open. The default sends nothing.
type IdentityTransformer func(subject interface{}) ([]byte, error)

// OperationalContext supplies the environment every remote service
// consumes: identity, factory maps and discovery parameters.
type OperationalContext interface {
	// LocalMember returns this client's member identity.
	LocalMember() Member

	// AddressProviderFactory resolves a named address provider factory.
	AddressProviderFactory(name string) (libadr.Factory, bool)

	// RegisterAddressProviderFactory installs a named factory.
	RegisterAddressProviderFactory(name string, f libadr.Factory)

	// SerializerFactory resolves a named serializer factory.
	SerializerFactory(name string) (libsrz.Factory, bool)

	// RegisterSerializerFactory installs a named serializer factory.
	RegisterSerializerFactory(name string, f libsrz.Factory)

	// Filter resolves a named connection filter.
	Filter(name string) (interface{}, bool)

	// RegisterFilter installs a named connection filter.
	RegisterFilter(name string, filter interface{})

	// IdentityAsserter returns the configured asserter hook.
	IdentityAsserter() IdentityAsserter

	// IdentityTransformer returns the configured transformer hook.
	IdentityTransformer() IdentityTransformer

	// DiscoveryTimeToLive returns the multicast TTL used by cluster
	// discovery, kept for configuration completeness.
	DiscoveryTimeToLive() int

	// Logger returns the context logger func, possibly nil.
	Logger() liblog.FuncLog
}

// Config carries the operational context construction parameters.
type Config struct {
	RoleName            string `json:"roleName" mapstructure:"roleName"`
	DiscoveryTimeToLive int    `json:"discoveryTTL" mapstructure:"discoveryTTL" validate:"gte=0,lte=255"`

	Asserter    IdentityAsserter    `json:"-"`
	Transformer IdentityTransformer `json:"-"`
}

// New builds an operational context with a generated local member
// identity. The default serializer factory map carries the CBOR codec
// under the name "cbor".
func New(cfg Config, log liblog.FuncLog) (OperationalContext, error) {
	uid, err := uuid.GenerateUUID()
	if err != nil {
		return nil, ErrorMemberIdentity.Error(err)
	}

	host, _ := os.Hostname()

	ctx := &opx{
		mbr: &mbr{
			uid: uid,
			mch: host,
			prc: processName(),
			rol: cfg.RoleName,
		},
		adr: libatm.NewMapTyped[string, libadr.Factory](),
		srz: libatm.NewMapTyped[string, libsrz.Factory](),
		flt: libatm.NewMapTyped[string, interface{}](),
		ttl: cfg.DiscoveryTimeToLive,
		ast: cfg.Asserter,
		trf: cfg.Transformer,
		log: log,
	}

	ctx.RegisterSerializerFactory("cbor", libsrz.FuncFactory(func() (libsrz.Serializer, error) {
		return libsrz.NewCBOR(), nil
	}))

	return ctx, nil
}
