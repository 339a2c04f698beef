package sockaddr

import (
	"net"
	"net/netip"
	"strconv"
)

// SockAddr is a socket address of a single family. The zero value is the
// unspecified address.
type SockAddr struct {
	family  Family
	ip      netip.Addr // never zoned, the zone lives in scopeID
	port    uint16
	scopeID uint32
}

// From4 returns an IPv4 socket address.
func From4(addr [4]byte, port uint16) SockAddr {
	return SockAddr{family: IPv4, ip: netip.AddrFrom4(addr), port: port}
}

// From16 returns an IPv6 socket address. IPv4-mapped addresses stay IPv6.
func From16(addr [16]byte, port uint16, scopeID uint32) SockAddr {
	return SockAddr{family: IPv6, ip: netip.AddrFrom16(addr), port: port, scopeID: scopeID}
}

// FromAddr converts ip. A numeric zone becomes the scope id; named zones
// are dropped, use FromAddrScope once the zone has been mapped to an index.
func FromAddr(ip netip.Addr) SockAddr {
	var scope uint32
	if zone := ip.Zone(); zone != "" {
		if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
			scope = uint32(n)
		}
	}
	return FromAddrScope(ip, scope)
}

func FromAddrScope(ip netip.Addr, scopeID uint32) SockAddr {
	switch {
	case ip.Is4():
		return From4(ip.As4(), 0)
	case ip.Is6():
		return From16(ip.As16(), 0, scopeID)
	}
	return SockAddr{}
}

// FromIP converts a net.IP as found in net.IPNet and net.UDPAddr. 4-byte
// and IPv4-mapped 16-byte forms are both IPv4, matching the net package.
func FromIP(ip net.IP) SockAddr {
	if ip4 := ip.To4(); ip4 != nil {
		return From4([4]byte(ip4), 0)
	}
	if ip16 := ip.To16(); ip16 != nil {
		return From16([16]byte(ip16), 0, 0)
	}
	return SockAddr{}
}

// Any returns the wildcard address of f, INADDR_ANY or in6addr_any.
func Any(f Family) SockAddr {
	switch f {
	case IPv4:
		return From4([4]byte{}, 0)
	case IPv6:
		return From16([16]byte{}, 0, 0)
	}
	return SockAddr{}
}

// PrefixMask returns the netmask of f with the leading bits set.
func PrefixMask(f Family, bits int) SockAddr {
	switch f {
	case IPv4:
		return FromIP(net.IP(net.CIDRMask(bits, 32)))
	case IPv6:
		var b [16]byte
		copy(b[:], net.CIDRMask(bits, 128))
		return From16(b, 0, 0)
	}
	return SockAddr{}
}

func (a SockAddr) Family() Family {
	return a.family
}

// IsValid reports whether a carries a concrete family.
func (a SockAddr) IsValid() bool {
	return a.family != Unspec
}

// Addr returns the address without port or scope.
func (a SockAddr) Addr() netip.Addr {
	return a.ip
}

func (a SockAddr) Port() uint16 {
	return a.port
}

func (a SockAddr) ScopeID() uint32 {
	return a.scopeID
}

// AddrPort returns the address with port and the scope id as zone.
func (a SockAddr) AddrPort() netip.AddrPort {
	ip := a.ip
	if a.family == IPv6 && a.scopeID != 0 {
		ip = ip.WithZone(strconv.FormatUint(uint64(a.scopeID), 10))
	}
	return netip.AddrPortFrom(ip, a.port)
}

// IP returns the address in net.IP form, nil when unspecified.
func (a SockAddr) IP() net.IP {
	if !a.IsValid() {
		return nil
	}
	return net.IP(a.ip.AsSlice())
}

func (a SockAddr) WithPort(port uint16) SockAddr {
	a.port = port
	return a
}

func (a SockAddr) WithScopeID(scopeID uint32) SockAddr {
	if a.family == IPv6 {
		a.scopeID = scopeID
	}
	return a
}

// IsMulticast reports whether a is 224.0.0.0/4 or ff00::/8.
func (a SockAddr) IsMulticast() bool {
	return a.IsValid() && a.ip.IsMulticast()
}

func (a SockAddr) IsLoopback() bool {
	return a.IsValid() && a.ip.IsLoopback()
}

// IsAny reports whether a is the wildcard address of its family.
func (a SockAddr) IsAny() bool {
	return a.IsValid() && a.ip.IsUnspecified()
}

// Equal compares family and address; port and scope are ignored.
func (a SockAddr) Equal(b SockAddr) bool {
	return a.family == b.family && a.ip == b.ip
}

// Mask returns a with every bit cleared that is clear in mask. The result
// is unspecified when the families differ.
func (a SockAddr) Mask(mask SockAddr) SockAddr {
	if !a.IsValid() || a.family != mask.family {
		return SockAddr{}
	}
	switch a.family {
	case IPv4:
		x, m := a.ip.As4(), mask.ip.As4()
		for i := range x {
			x[i] &= m[i]
		}
		return From4(x, 0)
	default:
		x, m := a.ip.As16(), mask.ip.As16()
		for i := range x {
			x[i] &= m[i]
		}
		return From16(x, 0, 0)
	}
}

func (a SockAddr) String() string {
	if !a.IsValid() {
		return "unspec"
	}
	if a.port != 0 {
		return a.AddrPort().String()
	}
	return a.AddrPort().Addr().String()
}
