package netspec

import (
	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
)

// matcher selects entries of one snapshot of the interface table.
type matcher struct {
	r     *Resolver
	token string
	table []sockaddr.Interface
}

// usable reports whether a matched entry may carry multicast, warning
// about the ones that cannot.
func (m *matcher) usable(iff sockaddr.Interface) bool {
	switch {
	case iff.Flags&sockaddr.FlagLoopback != 0:
		m.r.log.Warn("skipping loopback interface", "token", m.token, "interface", iff.Name, "addr", iff.Addr)
		return false
	case iff.Flags&sockaddr.FlagMulticast == 0:
		m.r.log.Warn("skipping interface without multicast", "token", m.token, "interface", iff.Name, "addr", iff.Addr)
		return false
	}
	if iff.Index == 0 {
		m.r.log.Warn("interface has no index, relying on the routing table", "token", m.token, "interface", iff.Name)
	}
	return true
}

// byName matches the entries named name. found reports whether the name
// exists at all, whatever the family and flags of its entries. More than
// one usable address on the name is ambiguous: the returned spec then
// has the name and index but no address.
func (m *matcher) byName(name string, family sockaddr.Family) (spec InterfaceSpec, found bool, err error) {
	var matches []sockaddr.Interface
	for _, iff := range m.table {
		if iff.Name != name {
			continue
		}
		found = true
		if family != sockaddr.Unspec && iff.Addr.Family() != family {
			continue
		}
		if !m.usable(iff) {
			continue
		}
		m.r.log.Debug("match on interface name", "interface", iff.Name, "index", iff.Index, "addr", iff.Addr)
		matches = append(matches, iff)
	}

	switch {
	case !found:
		return InterfaceSpec{}, false, nil
	case len(matches) == 0:
		return InterfaceSpec{}, true, newError(
			netspecerrors.ErrNotFound, m.token,
			"interface=%s has no usable address of family=%s", name, family)
	case len(matches) == 1:
		return interfaceSpecOf(matches[0]), true, nil
	}

	spec = interfaceSpecOf(matches[0])
	spec.Addr = sockaddr.SockAddr{}
	return spec, true, newError(
		netspecerrors.ErrAmbiguous, m.token,
		"interface=%s has addresses=%d of family=%s", name, len(matches), family)
}

// byAddr matches the entry carrying addr. zone, when set, restricts the
// match to the interface of that name, a scope id to that index.
func (m *matcher) byAddr(addr sockaddr.SockAddr, zone string) (InterfaceSpec, bool) {
	for _, iff := range m.table {
		if !iff.Addr.Equal(addr) {
			continue
		}
		if zone != "" && iff.Name != zone {
			continue
		}
		if scope := addr.ScopeID(); scope != 0 && iff.Index != int(scope) {
			continue
		}
		if !m.usable(iff) {
			continue
		}
		m.r.log.Debug("match on interface address", "interface", iff.Name, "index", iff.Index, "addr", iff.Addr)
		return interfaceSpecOf(iff), true
	}
	return InterfaceSpec{}, false
}

// byNetwork matches the entries whose address lies in network. Exactly one
// usable entry must match.
func (m *matcher) byNetwork(network sockaddr.Network) (InterfaceSpec, error) {
	var matches []sockaddr.Interface
	for _, iff := range m.table {
		if !network.Contains(iff.Addr, iff.Netmask) {
			continue
		}
		if network.Zone != "" && iff.Name != network.Zone {
			continue
		}
		if !m.usable(iff) {
			continue
		}
		m.r.log.Debug("match on network address", "network", network, "interface", iff.Name, "addr", iff.Addr)
		matches = append(matches, iff)
	}

	switch len(matches) {
	case 0:
		return InterfaceSpec{}, newError(
			netspecerrors.ErrNotFound, m.token,
			"no interface in network=%s", network)
	case 1:
		return interfaceSpecOf(matches[0]), nil
	default:
		return InterfaceSpec{}, newError(
			netspecerrors.ErrAmbiguous, m.token,
			"interfaces=%d in network=%s", len(matches), network)
	}
}
