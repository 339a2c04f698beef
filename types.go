package netspec

import (
	"fmt"

	"github.com/talostrading/netspec/sockaddr"
)

// Default receive groups, used when the receive clause is empty.
var (
	DefaultGroupIPv4 = sockaddr.From4([4]byte{239, 192, 0, 1}, 0)
	DefaultGroupIPv6 = sockaddr.From16([16]byte{0xff, 0x08, 15: 0x01}, 0, 0)
)

// DefaultGroup returns the default receive group of f.
func DefaultGroup(f sockaddr.Family) sockaddr.SockAddr {
	switch f {
	case sockaddr.IPv4:
		return DefaultGroupIPv4
	case sockaddr.IPv6:
		return DefaultGroupIPv6
	}
	return sockaddr.SockAddr{}
}

// InterfaceSpec is a resolved interface. An ambiguous interface has a name
// and index but an unspecified address.
type InterfaceSpec struct {
	Name  string
	Flags sockaddr.Flags
	Index int
	Addr  sockaddr.SockAddr
}

func interfaceSpecOf(iff sockaddr.Interface) InterfaceSpec {
	return InterfaceSpec{
		Name:  iff.Name,
		Flags: iff.Flags,
		Index: iff.Index,
		Addr:  iff.Addr,
	}
}

func (s InterfaceSpec) String() string {
	return fmt.Sprintf("name=%s index=%d addr=%s flags=%s", s.Name, s.Index, s.Addr, s.Flags)
}

// GroupSourceReq binds one multicast group to a local interface, the unit
// handed to the socket layer. Source equals Group for any-source multicast.
type GroupSourceReq struct {
	InterfaceIndex int
	InterfaceAddr  sockaddr.SockAddr
	Group          sockaddr.SockAddr
	Source         sockaddr.SockAddr
}

func bindGroup(iface InterfaceSpec, group sockaddr.SockAddr) GroupSourceReq {
	return GroupSourceReq{
		InterfaceIndex: iface.Index,
		InterfaceAddr:  iface.Addr,
		Group:          group,
		Source:         group,
	}
}

// IsSourceSpecific reports whether the request filters on a source.
func (r GroupSourceReq) IsSourceSpecific() bool {
	return r.Source.IsValid() && !r.Source.Equal(r.Group)
}

// WithSource returns the request filtered to source, or unfiltered if
// source is unspecified. The source must be of the group's family.
func (r GroupSourceReq) WithSource(source sockaddr.SockAddr) (GroupSourceReq, error) {
	if !source.IsValid() {
		r.Source = r.Group
		return r, nil
	}
	if source.Family() != r.Group.Family() {
		return r, fmt.Errorf("source=%s family=%s does not match group=%s", source, source.Family(), r.Group)
	}
	r.Source = source
	return r, nil
}

func (r GroupSourceReq) String() string {
	return fmt.Sprintf(
		"interface=%d addr=%s group=%s source=%s",
		r.InterfaceIndex, r.InterfaceAddr, r.Group, r.Source)
}

// Result is a resolved network specification.
type Result struct {
	Recv []GroupSourceReq
	Send []GroupSourceReq
}

// Family is the address family shared by every binding.
func (r Result) Family() sockaddr.Family {
	if len(r.Recv) == 0 {
		return sockaddr.Unspec
	}
	return r.Recv[0].Group.Family()
}
