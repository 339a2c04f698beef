package sockaddr

import (
	"fmt"
	"net"
	"strings"
)

// Flags is the subset of interface flags the resolver looks at.
type Flags uint32

const (
	FlagUp Flags = 1 << iota
	FlagBroadcast
	FlagLoopback
	FlagMulticast
)

var flagNames = []string{"up", "broadcast", "loopback", "multicast"}

func FlagsFromNet(f net.Flags) (flags Flags) {
	if f&net.FlagUp != 0 {
		flags |= FlagUp
	}
	if f&net.FlagBroadcast != 0 {
		flags |= FlagBroadcast
	}
	if f&net.FlagLoopback != 0 {
		flags |= FlagLoopback
	}
	if f&net.FlagMulticast != 0 {
		flags |= FlagMulticast
	}
	return flags
}

// ParseFlags parses a comma separated list such as "up,multicast".
func ParseFlags(s string) (flags Flags, err error) {
	if s == "" {
		return 0, nil
	}
	for _, name := range strings.Split(s, ",") {
		found := false
		for i, n := range flagNames {
			if name == n {
				flags |= 1 << uint(i)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown interface flag=%s", name)
		}
	}
	return flags, nil
}

func (f Flags) String() string {
	var names []string
	for i, name := range flagNames {
		if f&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// Interface is one address entry of the system interface table, the
// getifaddrs view: an interface with several addresses appears once per
// address.
type Interface struct {
	Name  string
	Index int // 0 when the name has no reverse index
	Flags Flags

	Addr    SockAddr
	Netmask SockAddr
}

// MulticastCapable reports whether multicast groups may be bound to the
// interface: it must support multicast and must not be a loopback.
func (i Interface) MulticastCapable() bool {
	return i.Flags&FlagMulticast != 0 && i.Flags&FlagLoopback == 0
}

func (i Interface) String() string {
	return fmt.Sprintf(
		"name=%s index=%d family=%s addr=%s netmask=%s flags=%s",
		i.Name, i.Index, i.Addr.Family(), i.Addr, i.Netmask, i.Flags)
}
