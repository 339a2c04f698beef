// Package netdb holds the name resolution and interface enumeration
// collaborators of the network specification resolver, and the
// implementations shipped with it.
package netdb

import (
	"fmt"

	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
)

// Resolver maps names to addresses.
type Resolver interface {
	// LookupAddrs resolves name to the addresses of the given family, or of
	// any family when family is sockaddr.Unspec. Only families configured on
	// a non-loopback interface are returned and IPv4 answers are never
	// presented as IPv4-mapped IPv6. With numericOnly set, name must be an
	// address literal.
	//
	// A name that does not exist yields an error wrapping
	// netspecerrors.ErrNotFound, any other failure a *SystemError.
	LookupAddrs(name string, family sockaddr.Family, numericOnly bool) ([]sockaddr.SockAddr, error)

	// LookupNetwork resolves a network name, as listed in networks(5), to
	// its network address.
	LookupNetwork(name string) (sockaddr.SockAddr, error)

	// Hostname returns the name of this node.
	Hostname() (string, error)
}

// InterfaceTable enumerates the address entries of the network interfaces.
type InterfaceTable interface {
	Interfaces() ([]sockaddr.Interface, error)
}

// SystemError is an OS or resolver failure, as opposed to a name that does
// not exist. It matches netspecerrors.ErrSystem.
type SystemError struct {
	Op   string
	Name string
	Err  error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s name=%s err=%v", e.Op, e.Name, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

func (e *SystemError) Is(target error) bool {
	return target == netspecerrors.ErrSystem
}

func notFound(op, name string) error {
	return fmt.Errorf("%w: %s name=%s", netspecerrors.ErrNotFound, op, name)
}

// numericHost handles the numeric-host case shared by all resolvers.
func numericHost(name string, family sockaddr.Family) ([]sockaddr.SockAddr, bool, error) {
	addr, _, err := sockaddr.ParseLiteral(name)
	if err != nil {
		return nil, false, nil
	}
	if family != sockaddr.Unspec && addr.Family() != family {
		return nil, true, notFound("numeric host of family "+family.String(), name)
	}
	return []sockaddr.SockAddr{addr}, true, nil
}

// addrConfig drops the addresses of families with no configured
// non-loopback address in table, the AI_ADDRCONFIG behaviour. The result is
// left alone when the table cannot be read or holds no such address at all.
func addrConfig(table InterfaceTable, addrs []sockaddr.SockAddr) []sockaddr.SockAddr {
	if table == nil {
		return addrs
	}
	iffs, err := table.Interfaces()
	if err != nil {
		return addrs
	}

	configured := make(map[sockaddr.Family]bool)
	for _, iff := range iffs {
		if iff.Flags&sockaddr.FlagLoopback != 0 || iff.Addr.IsLoopback() {
			continue
		}
		configured[iff.Addr.Family()] = true
	}
	if len(configured) == 0 {
		return addrs
	}

	filtered := addrs[:0:0]
	for _, addr := range addrs {
		if configured[addr.Family()] {
			filtered = append(filtered, addr)
		}
	}
	return filtered
}

// collect unmaps, filters by family and removes duplicates while keeping
// the resolver's order.
func collect(family sockaddr.Family, addrs []sockaddr.SockAddr) []sockaddr.SockAddr {
	var out []sockaddr.SockAddr
	for _, addr := range addrs {
		if ip := addr.Addr(); ip.Is4In6() {
			addr = sockaddr.FromAddr(ip.Unmap())
		}
		if !addr.IsValid() {
			continue
		}
		if family != sockaddr.Unspec && addr.Family() != family {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen.Equal(addr) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, addr)
		}
	}
	return out
}
