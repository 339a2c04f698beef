package sockaddr

import (
	"fmt"
	"net/netip"
)

// Family is the address family of a SockAddr.
type Family uint8

const (
	Unspec Family = iota
	IPv4
	IPv6
)

func (f Family) String() string {
	switch f {
	case Unspec:
		return "unspec"
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	}
	return "(unknown family)"
}

// Bits returns the width of an address of this family.
func (f Family) Bits() int {
	switch f {
	case IPv4:
		return 32
	case IPv6:
		return 128
	}
	return 0
}

// Network returns the Go network name used when resolving names of this
// family, e.g. "ip4" for IPv4.
func (f Family) Network() string {
	switch f {
	case IPv4:
		return "ip4"
	case IPv6:
		return "ip6"
	}
	return "ip"
}

func FamilyOf(ip netip.Addr) Family {
	switch {
	case ip.Is4():
		return IPv4
	case ip.Is6():
		return IPv6
	}
	return Unspec
}

func ParseFamily(s string) (Family, error) {
	switch s {
	case "", "unspec", "any":
		return Unspec, nil
	case "ipv4", "inet", "4":
		return IPv4, nil
	case "ipv6", "inet6", "6":
		return IPv6, nil
	}
	return Unspec, fmt.Errorf("unknown address family=%s", s)
}
