//go:build linux

package join

import (
	"fmt"
	"unsafe"

	"github.com/talostrading/netspec"
	"github.com/talostrading/netspec/netdb"
	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
	"golang.org/x/sys/unix"
)

const sizeofIPMreqSource = unix.SizeofIPMreq + 4

// ipMreqSource is struct ip_mreq_source.
type ipMreqSource struct {
	Multiaddr  [4]byte
	Interface  [4]byte
	Sourceaddr [4]byte
}

// JoinFd is Join on a raw socket. IPv4 memberships select the interface by
// address, IPv6 ones by index. Source specific IPv6 membership needs Join.
func JoinFd(fd int, req netspec.GroupSourceReq) error {
	return membershipFd(opJoin, fd, req)
}

// LeaveFd drops the membership added by JoinFd.
func LeaveFd(fd int, req netspec.GroupSourceReq) error {
	return membershipFd(opLeave, fd, req)
}

func membershipFd(o op, fd int, req netspec.GroupSourceReq) (err error) {
	if err := check(req); err != nil {
		return err
	}

	switch req.Group.Family() {
	case sockaddr.IPv4:
		if req.IsSourceSpecific() {
			opt := unix.IP_ADD_SOURCE_MEMBERSHIP
			if o == opLeave {
				opt = unix.IP_DROP_SOURCE_MEMBERSHIP
			}
			err = setsockoptIPMreqSource(fd, opt, makeIPMreqSource(req))
		} else {
			opt := unix.IP_ADD_MEMBERSHIP
			if o == opLeave {
				opt = unix.IP_DROP_MEMBERSHIP
			}
			err = unix.SetsockoptIPMreq(fd, unix.IPPROTO_IP, opt, makeIPMreq(req))
		}
	case sockaddr.IPv6:
		if req.IsSourceSpecific() {
			return fmt.Errorf(
				"%w: source specific IPv6 group=%s needs a packet conn",
				netspecerrors.ErrInvalidInput, req.Group)
		}
		opt := unix.IPV6_JOIN_GROUP
		if o == opLeave {
			opt = unix.IPV6_LEAVE_GROUP
		}
		err = unix.SetsockoptIPv6Mreq(fd, unix.IPPROTO_IPV6, opt, makeIPv6Mreq(req))
	}
	if err != nil {
		return &netdb.SystemError{Op: o.String(), Name: req.Group.String(), Err: err}
	}
	return nil
}

// SetSendInterfaceFd is SetSendInterface on a raw socket.
func SetSendInterfaceFd(fd int, req netspec.GroupSourceReq) (err error) {
	if err := check(req); err != nil {
		return err
	}

	switch req.Group.Family() {
	case sockaddr.IPv4:
		err = unix.SetsockoptInet4Addr(fd, unix.IPPROTO_IP, unix.IP_MULTICAST_IF, interface4(req))
	case sockaddr.IPv6:
		err = unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_IF, req.InterfaceIndex)
	}
	if err != nil {
		return &netdb.SystemError{Op: "set multicast interface", Name: req.InterfaceAddr.String(), Err: err}
	}
	return nil
}

// interface4 is the IPv4 interface address of req, INADDR_ANY when the
// request has none.
func interface4(req netspec.GroupSourceReq) (addr [4]byte) {
	if req.InterfaceAddr.Family() == sockaddr.IPv4 {
		addr = req.InterfaceAddr.Addr().As4()
	}
	return addr
}

func makeIPMreq(req netspec.GroupSourceReq) *unix.IPMreq {
	return &unix.IPMreq{
		Multiaddr: req.Group.Addr().As4(),
		Interface: interface4(req),
	}
}

func makeIPMreqSource(req netspec.GroupSourceReq) *ipMreqSource {
	return &ipMreqSource{
		Multiaddr:  req.Group.Addr().As4(),
		Interface:  interface4(req),
		Sourceaddr: req.Source.Addr().As4(),
	}
}

func makeIPv6Mreq(req netspec.GroupSourceReq) *unix.IPv6Mreq {
	return &unix.IPv6Mreq{
		Multiaddr: req.Group.Addr().As16(),
		Interface: uint32(req.InterfaceIndex),
	}
}

func setsockoptIPMreqSource(fd, opt int, mreq *ipMreqSource) error {
	_, _, errno := unix.Syscall6(
		unix.SYS_SETSOCKOPT,
		uintptr(fd),
		uintptr(unix.IPPROTO_IP),
		uintptr(opt),
		uintptr(unsafe.Pointer(mreq)),
		uintptr(sizeofIPMreqSource),
		0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}
