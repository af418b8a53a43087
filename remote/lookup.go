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

package remote

import (
	"context"
	"net"

	libadr "github/sabouaram/extendlib/address"
	libini "github/sabouaram/extendlib/initiator"
	libskt "github/sabouaram/extendlib/socket"

	liberr "github.com/nabbar/golib/errors"
	loglvl "github.com/nabbar/golib/logger/level"
)

// lookupProxyServiceAddress resolves the real proxy endpoint through the
// cluster name service when the initiator was configured with a name
// service address provider. A throwaway initiator connects to the well
// known name service subport, the collaborator performs the lookup, and
// the real initiator is rewired onto the answered endpoint before its
// first connection opens.
func (o *rsv) lookupProxyServiceAddress(ctx context.Context) error {
	ini := o.initiator()
	if ini == nil || !ini.IsNameServiceAddressProvider() {
		return nil
	}

	var (
		sc  = o.cfg.Load()
		cls = o.RemoteClusterName()
		svc = o.RemoteServiceName()
	)

	if o.col.NameService == nil {
		return liberr.Newf(ErrorLookup.Uint16(), "no name service collaborator configured while looking for the ProxyService %q", svc)
	}

	nsCfg := sc.ini
	nsCfg.ServiceName = o.mch.Name() + ":RemoteNameService"
	nsCfg.Subport = libskt.NameServiceSubPort
	nsCfg.NameServiceAddressProvider = true

	nsIni, err := libini.New(nsCfg, sc.prv, o.col.Negotiator, nil, o.mch.Logger())
	if err != nil {
		return err
	}

	if err = nsIni.Start(ctx); err != nil {
		return err
	}

	defer func() {
		_ = nsIni.Stop(ctx)
	}()

	cnn, err := nsIni.OpenConnection(ctx)
	if err != nil {
		e := liberr.Newf(ErrorLookup.Uint16(), "unable to locate cluster %q while looking for its ProxyService %q", cls, svc)
		e.Add(err)
		return e
	}

	host, port, found, err := o.col.NameService.Lookup(ctx, cnn, svc)

	_ = cnn.Close(ctx, true, nil)

	if err != nil {
		e := liberr.Newf(ErrorLookup.Uint16(), "unable to locate cluster %q while looking for its ProxyService %q", cls, svc)
		e.Add(err)
		return e
	}

	if !found {
		// the cluster answered, the service does not exist there
		return liberr.Newf(ErrorLookup.Uint16(), "unable to locate ProxyService %q within cluster %q", svc, cls)
	}

	base := int(libskt.CalculateBaseport(port))
	sub := libskt.CalculateSubport(port)

	ep := libadr.Endpoint{Host: host, Port: base}
	if ip := net.ParseIP(host); ip != nil {
		ep.IP = ip
	} else if ips, e := net.LookupIP(host); e == nil && len(ips) > 0 {
		ep.IP = ips[0]
	}

	o.mch.Log(loglvl.InfoLevel, nil, "name service resolved ProxyService %q to %s:%d.%d", svc, host, base, sub)

	ini.SetProvider(libadr.NewSingle(ep))
	ini.SetSubport(sub)

	return nil
}
