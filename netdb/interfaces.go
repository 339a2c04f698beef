package netdb

import (
	"net"

	"github.com/talostrading/netspec/sockaddr"
)

// SystemInterfaces enumerates the interface table through the net package.
type SystemInterfaces struct{}

var _ InterfaceTable = SystemInterfaces{}

func (SystemInterfaces) Interfaces() ([]sockaddr.Interface, error) {
	iffs, err := net.Interfaces()
	if err != nil {
		return nil, &SystemError{Op: "list interfaces", Err: err}
	}

	var table []sockaddr.Interface
	for _, iff := range iffs {
		addrs, err := iff.Addrs()
		if err != nil {
			return nil, &SystemError{Op: "list interface addresses", Name: iff.Name, Err: err}
		}
		for _, addr := range addrs {
			var ipnet *net.IPNet
			switch a := addr.(type) {
			case *net.IPNet:
				ipnet = a
			case *net.IPAddr:
				ipnet = &net.IPNet{IP: a.IP}
			default:
				continue
			}
			if entry, ok := makeInterface(iff.Name, iff.Index, iff.Flags, ipnet); ok {
				table = append(table, entry)
			}
		}
	}
	return table, nil
}

// makeInterface builds a table entry. Link-local IPv6 addresses carry the
// interface index as scope id. A missing mask is a host mask.
func makeInterface(name string, index int, flags net.Flags, ipnet *net.IPNet) (sockaddr.Interface, bool) {
	addr := sockaddr.FromIP(ipnet.IP)
	if !addr.IsValid() {
		return sockaddr.Interface{}, false
	}
	if addr.Family() == sockaddr.IPv6 && (addr.Addr().IsLinkLocalUnicast() || addr.Addr().IsLinkLocalMulticast()) {
		addr = addr.WithScopeID(uint32(index))
	}

	return sockaddr.Interface{
		Name:    name,
		Index:   index,
		Flags:   sockaddr.FlagsFromNet(flags),
		Addr:    addr,
		Netmask: netmask(addr.Family(), ipnet.Mask),
	}, true
}

func netmask(family sockaddr.Family, mask net.IPMask) sockaddr.SockAddr {
	bits := family.Bits()
	if ones, size := mask.Size(); size != 0 {
		if size == bits || (size == 128 && family == sockaddr.IPv4) {
			return sockaddr.PrefixMask(family, ones-(size-bits))
		}
	}
	switch {
	case family == sockaddr.IPv4 && len(mask) == net.IPv4len:
		return sockaddr.From4([4]byte(mask), 0)
	case family == sockaddr.IPv6 && len(mask) == net.IPv6len:
		return sockaddr.From16([16]byte(mask), 0, 0)
	}
	return sockaddr.PrefixMask(family, bits)
}
