// Package join applies resolved group bindings to sockets: group
// membership for the receive side and the outgoing interface for the send
// side.
package join

import (
	"fmt"
	"net"

	"github.com/talostrading/netspec"
	"github.com/talostrading/netspec/netdb"
	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

type op uint8

const (
	opJoin op = iota
	opLeave
)

func (o op) String() string {
	if o == opJoin {
		return "join group"
	}
	return "leave group"
}

// Join makes c a member of req.Group on the request's interface. A request
// with a source other than the group joins source specific.
func Join(c net.PacketConn, req netspec.GroupSourceReq) error {
	return membership(opJoin, c, req)
}

// Leave drops the membership added by Join.
func Leave(c net.PacketConn, req netspec.GroupSourceReq) error {
	return membership(opLeave, c, req)
}

func membership(o op, c net.PacketConn, req netspec.GroupSourceReq) error {
	if err := check(req); err != nil {
		return err
	}
	ifi, err := interfaceOf(req)
	if err != nil {
		return err
	}

	group := &net.UDPAddr{IP: req.Group.IP()}
	source := &net.UDPAddr{IP: req.Source.IP()}

	switch req.Group.Family() {
	case sockaddr.IPv4:
		p := ipv4.NewPacketConn(c)
		switch {
		case o == opJoin && req.IsSourceSpecific():
			err = p.JoinSourceSpecificGroup(ifi, group, source)
		case o == opJoin:
			err = p.JoinGroup(ifi, group)
		case req.IsSourceSpecific():
			err = p.LeaveSourceSpecificGroup(ifi, group, source)
		default:
			err = p.LeaveGroup(ifi, group)
		}
	case sockaddr.IPv6:
		p := ipv6.NewPacketConn(c)
		switch {
		case o == opJoin && req.IsSourceSpecific():
			err = p.JoinSourceSpecificGroup(ifi, group, source)
		case o == opJoin:
			err = p.JoinGroup(ifi, group)
		case req.IsSourceSpecific():
			err = p.LeaveSourceSpecificGroup(ifi, group, source)
		default:
			err = p.LeaveGroup(ifi, group)
		}
	}
	if err != nil {
		return &netdb.SystemError{Op: o.String(), Name: req.Group.String(), Err: err}
	}
	return nil
}

// SetSendInterface selects the interface c sends req.Group traffic on. A
// request without an interface index leaves the system default in place.
func SetSendInterface(c net.PacketConn, req netspec.GroupSourceReq) error {
	if err := check(req); err != nil {
		return err
	}
	ifi, err := interfaceOf(req)
	if err != nil {
		return err
	}
	if ifi == nil {
		return nil
	}

	switch req.Group.Family() {
	case sockaddr.IPv4:
		err = ipv4.NewPacketConn(c).SetMulticastInterface(ifi)
	case sockaddr.IPv6:
		err = ipv6.NewPacketConn(c).SetMulticastInterface(ifi)
	}
	if err != nil {
		return &netdb.SystemError{Op: "set multicast interface", Name: ifi.Name, Err: err}
	}
	return nil
}

func check(req netspec.GroupSourceReq) error {
	if !req.Group.IsMulticast() {
		return fmt.Errorf("%w: group=%s is not multicast", netspecerrors.ErrWrongAddressClass, req.Group)
	}
	if req.Source.IsValid() && req.Source.Family() != req.Group.Family() {
		return fmt.Errorf(
			"%w: source=%s family does not match group=%s",
			netspecerrors.ErrInvalidInput, req.Source, req.Group)
	}
	return nil
}

// interfaceOf returns the interface of req, nil for index 0.
func interfaceOf(req netspec.GroupSourceReq) (*net.Interface, error) {
	if req.InterfaceIndex == 0 {
		return nil, nil
	}
	ifi, err := net.InterfaceByIndex(req.InterfaceIndex)
	if err != nil {
		return nil, fmt.Errorf("%w: interface index=%d err=%v", netspecerrors.ErrNotFound, req.InterfaceIndex, err)
	}
	return ifi, nil
}
