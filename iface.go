package netspec

import (
	"errors"

	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
)

// resolveInterface resolves one interface token, trying in order an
// interface name, an address literal, a network literal, a networks(5)
// name and finally a host name. A multicast address fails with
// ErrWrongAddressClass so the caller may read the token as a group.
//
// An ambiguous name returns the partially resolved spec along with
// ErrAmbiguous.
func (r *Resolver) resolveInterface(token string, family sockaddr.Family) (InterfaceSpec, error) {
	r.log.Debug("resolving interface", "token", token, "family", family)

	table, err := r.table.Interfaces()
	if err != nil {
		return InterfaceSpec{}, wrapError(token, err, "cannot list interfaces")
	}
	m := &matcher{r: r, token: token, table: table}

	if spec, found, err := m.byName(token, family); found {
		return spec, err
	}

	if addr, zone, err := sockaddr.ParseLiteral(token); err == nil {
		if addr.IsMulticast() {
			return InterfaceSpec{}, wrongClass(token, ClassUnicast, "multicast address instead of an interface")
		}
		if family != sockaddr.Unspec && addr.Family() != family {
			return InterfaceSpec{}, newError(
				netspecerrors.ErrNotFound, token,
				"address family=%s does not match family=%s", addr.Family(), family)
		}
		if spec, ok := m.byAddr(addr, zone); ok {
			return spec, nil
		}
		// 10.6.28.0 also names the network of a /24 interface.
	}

	if network, ok := parseNetwork(token); ok {
		if network.Addr.IsMulticast() {
			return InterfaceSpec{}, wrongClass(token, ClassUnicast, "multicast network instead of an interface")
		}
		if family != sockaddr.Unspec && network.Family() != family {
			return InterfaceSpec{}, newError(
				netspecerrors.ErrNotFound, token,
				"network family=%s does not match family=%s", network.Family(), family)
		}
		return m.byNetwork(network)
	}

	if family != sockaddr.IPv6 {
		addr, err := r.names.LookupNetwork(token)
		switch {
		case err == nil:
			if addr.IsMulticast() {
				return InterfaceSpec{}, newError(
					netspecerrors.ErrInvalidInput, token,
					"networks database holds multicast group=%s instead of a network", addr)
			}
			r.log.Debug("found network by name", "token", token, "network", addr)
			return m.byNetwork(sockaddr.Network{Written: addr, Addr: addr})
		case !errors.Is(err, netspecerrors.ErrNotFound):
			return InterfaceSpec{}, wrapError(token, err, "cannot look up network name")
		}
	}

	r.log.Debug("no interface, address or network, resolving host name", "token", token)
	addrs, err := r.names.LookupAddrs(token, family, false)
	if err != nil {
		if errors.Is(err, netspecerrors.ErrNotFound) {
			return InterfaceSpec{}, wrapError(token, err, "no such interface, address or name")
		}
		return InterfaceSpec{}, wrapError(token, err, "cannot resolve host name")
	}
	addr := addrs[0]
	if addr.IsMulticast() {
		return InterfaceSpec{}, wrongClass(token, ClassUnicast, "name resolves to multicast address=%s", addr)
	}
	if spec, ok := m.byAddr(addr, ""); ok {
		return spec, nil
	}
	return InterfaceSpec{}, newError(netspecerrors.ErrNotFound, token, "no interface with address=%s", addr)
}

// parseNetwork reads token as an IPv4 or IPv6 network literal.
func parseNetwork(token string) (sockaddr.Network, bool) {
	if network, err := sockaddr.ParseNetwork4(token); err == nil {
		return network, true
	}
	if network, err := sockaddr.ParseNetwork6(token); err == nil {
		return network, true
	}
	return sockaddr.Network{}, false
}
