package netspec

import (
	"errors"

	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
)

// resolveGroup resolves a multicast group token. want, when set, is the
// family the group must have; hint only steers name resolution. Zones are
// dropped: the interface decides the scope.
func (r *Resolver) resolveGroup(token string, want, hint sockaddr.Family) (sockaddr.SockAddr, error) {
	if want != sockaddr.Unspec {
		hint = want
	}
	r.log.Debug("resolving group", "token", token, "family", want, "hint", hint)

	if addr, _, err := sockaddr.ParseLiteral(token); err == nil {
		return checkGroup(token, sockaddr.FromAddrScope(addr.Addr(), 0), want)
	}

	if hint != sockaddr.IPv6 {
		addr, err := r.names.LookupNetwork(token)
		switch {
		case err == nil:
			r.log.Debug("found group by network name", "token", token, "group", addr)
			return checkGroup(token, addr, want)
		case !errors.Is(err, netspecerrors.ErrNotFound):
			return sockaddr.SockAddr{}, wrapError(token, err, "cannot look up network name")
		}
	}

	addrs, err := r.names.LookupAddrs(token, hint, false)
	if err != nil && want == sockaddr.Unspec && hint != sockaddr.Unspec && errors.Is(err, netspecerrors.ErrNotFound) {
		r.log.Debug("no group of the interface family, resolving any family", "token", token, "hint", hint)
		addrs, err = r.names.LookupAddrs(token, sockaddr.Unspec, false)
	}
	if err != nil {
		return sockaddr.SockAddr{}, wrapError(token, err, "cannot resolve group")
	}

	for _, addr := range addrs {
		if addr.IsMulticast() {
			r.log.Debug("found group by host name", "token", token, "group", addr)
			return checkGroup(token, sockaddr.FromAddrScope(addr.Addr(), 0), want)
		}
	}
	return sockaddr.SockAddr{}, wrongClass(token, ClassMulticast, "name resolves to unicast address=%s", addrs[0])
}

func checkGroup(token string, group sockaddr.SockAddr, want sockaddr.Family) (sockaddr.SockAddr, error) {
	if !group.IsMulticast() {
		return sockaddr.SockAddr{}, wrongClass(token, ClassMulticast, "unicast address=%s instead of a group", group)
	}
	if want != sockaddr.Unspec && group.Family() != want {
		return sockaddr.SockAddr{}, newError(
			netspecerrors.ErrInvalidInput, token,
			"group=%s family=%s does not match family=%s", group, group.Family(), want)
	}
	return group, nil
}
