package netspec

import (
	"errors"

	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/netspecopts"
	"github.com/talostrading/netspec/sockaddr"
)

// ifaceFamily is the family of the resolved interface, unspecified when no
// interface was given or it is still ambiguous.
func (res *resolution) ifaceFamily() sockaddr.Family {
	if res.ifaceToken == "" || res.deferred {
		return sockaddr.Unspec
	}
	return res.iface.Addr.Family()
}

// inferFamily picks the family of an empty receive field: the pinned one,
// else the interface's, else the node's.
func (res *resolution) inferFamily() (sockaddr.Family, error) {
	if res.family != sockaddr.Unspec {
		return res.family, nil
	}
	if family := res.ifaceFamily(); family != sockaddr.Unspec {
		res.r.log.Debug("using the interface family for the default group", "family", family)
		return family, nil
	}

	res.r.log.Debug("cannot determine the family from group or interface, resolving node name")
	family, err := res.r.nodeFamily()
	if err != nil {
		return sockaddr.Unspec, err
	}
	res.r.log.Debug("using the node family for the default group", "family", family)
	return family, nil
}

// bindInterface returns the interface groups of family bind to. A deferred
// interface, or one of another family, is resolved again with the family
// fixed. Without an interface the wildcard address of family is used.
func (res *resolution) bindInterface(family sockaddr.Family) (InterfaceSpec, error) {
	if res.ifaceToken == "" {
		return InterfaceSpec{Addr: sockaddr.Any(family)}, nil
	}
	if !res.deferred && res.iface.Addr.Family() == family {
		return res.iface, nil
	}

	key := res.ifaceToken
	if res.iface.Name != "" {
		key = res.iface.Name
	}
	res.r.log.Debug("resolving interface again with the group family", "token", key, "family", family)

	spec, err := res.r.resolveInterface(key, family)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && errors.Is(err, netspecerrors.ErrAmbiguous) {
			e.Msg += ", give the interface by address or network instead of name"
		}
		return InterfaceSpec{}, err
	}
	res.iface, res.deferred = spec, false
	return spec, nil
}

// nodeFamily is the family of the node's primary address: the first
// address of the host name carried by a multicast capable interface.
func (r *Resolver) nodeFamily() (sockaddr.Family, error) {
	host, err := r.names.Hostname()
	if err != nil {
		return sockaddr.Unspec, wrapError("", err, "cannot get host name")
	}
	addrs, err := r.names.LookupAddrs(host, sockaddr.Unspec, false)
	if err != nil {
		return sockaddr.Unspec, wrapError(host, err, "cannot resolve node address")
	}
	table, err := r.table.Interfaces()
	if err != nil {
		return sockaddr.Unspec, wrapError(host, err, "cannot list interfaces")
	}

	for _, addr := range addrs {
		for _, iff := range table {
			if iff.Addr.Equal(addr) && iff.MulticastCapable() {
				return addr.Family(), nil
			}
		}
	}
	return sockaddr.Unspec, newError(
		netspecerrors.ErrNotFound, host,
		"no multicast capable interface carries a node address, name a group or pin the family")
}

// NodeAddr returns the node's primary address of family, the first
// address its host name resolves to. Without an IPv6 address for the name
// it falls back to the IPv6 address of the interface that carries the
// node's IPv4 address.
func (r *Resolver) NodeAddr(family sockaddr.Family) (sockaddr.SockAddr, error) {
	if family != sockaddr.IPv4 && family != sockaddr.IPv6 {
		return sockaddr.SockAddr{}, newError(netspecerrors.ErrInvalidInput, family.String(), "family must be ipv4 or ipv6")
	}

	host, err := r.names.Hostname()
	if err != nil {
		return sockaddr.SockAddr{}, wrapError("", err, "cannot get host name")
	}

	addrs, err := r.names.LookupAddrs(host, family, false)
	if err == nil {
		return addrs[0], nil
	}
	if family == sockaddr.IPv4 || !errors.Is(err, netspecerrors.ErrNotFound) {
		return sockaddr.SockAddr{}, wrapError(host, err, "cannot resolve node address")
	}

	r.log.Debug("no IPv6 node address, trying the link of the IPv4 node address", "host", host)
	addrs, err = r.names.LookupAddrs(host, sockaddr.IPv4, false)
	if err != nil {
		return sockaddr.SockAddr{}, wrapError(host, err, "cannot resolve node address")
	}
	table, err := r.table.Interfaces()
	if err != nil {
		return sockaddr.SockAddr{}, wrapError(host, err, "cannot list interfaces")
	}

	name := ""
	for _, iff := range table {
		if iff.Addr.Equal(addrs[0]) {
			name = iff.Name
			break
		}
	}
	if name == "" {
		return sockaddr.SockAddr{}, newError(netspecerrors.ErrNotFound, host, "no interface carries node address=%s", addrs[0])
	}
	for _, iff := range table {
		if iff.Name == name && iff.Addr.Family() == sockaddr.IPv6 {
			return iff.Addr, nil
		}
	}
	return sockaddr.SockAddr{}, newError(netspecerrors.ErrNotFound, host, "interface=%s has no IPv6 address", name)
}

// NodeAddr is Resolver.NodeAddr with a resolver built from opts.
func NodeAddr(family sockaddr.Family, opts ...netspecopts.Option) (sockaddr.SockAddr, error) {
	return NewResolver(opts...).NodeAddr(family)
}
