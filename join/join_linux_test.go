//go:build linux

package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talostrading/netspec"
	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
	"golang.org/x/sys/unix"
)

func TestMakeIPMreq(t *testing.T) {
	req := netspec.GroupSourceReq{
		InterfaceIndex: 2,
		InterfaceAddr:  sockaddr.From4([4]byte{10, 6, 28, 33}, 0),
		Group:          group4(239, 192, 0, 7),
		Source:         group4(10, 6, 28, 1),
	}

	mreq := makeIPMreq(req)
	assert.Equal(t, [4]byte{239, 192, 0, 7}, mreq.Multiaddr)
	assert.Equal(t, [4]byte{10, 6, 28, 33}, mreq.Interface)

	src := makeIPMreqSource(req)
	assert.Equal(t, [4]byte{239, 192, 0, 7}, src.Multiaddr)
	assert.Equal(t, [4]byte{10, 6, 28, 33}, src.Interface)
	assert.Equal(t, [4]byte{10, 6, 28, 1}, src.Sourceaddr)
}

func TestMakeIPMreqAnyInterface(t *testing.T) {
	// An IPv6 interface address cannot select an IPv4 membership.
	req := netspec.GroupSourceReq{
		InterfaceAddr: sockaddr.Any(sockaddr.IPv6),
		Group:         group4(239, 192, 0, 1),
	}
	mreq := makeIPMreq(req)
	if mreq.Interface != [4]byte{} {
		t.Fatalf("given=%s expected=INADDR_ANY got=%v", req.InterfaceAddr, mreq.Interface)
	}
}

func TestMakeIPv6Mreq(t *testing.T) {
	group := sockaddr.From16([16]byte{0xff, 0x08, 15: 0x01}, 0, 0)
	mreq := makeIPv6Mreq(netspec.GroupSourceReq{InterfaceIndex: 3, Group: group})
	assert.Equal(t, group.Addr().As16(), mreq.Multiaddr)
	assert.Equal(t, uint32(3), mreq.Interface)
}

func TestJoinFdSourceSpecific6(t *testing.T) {
	req := netspec.GroupSourceReq{
		Group:  sockaddr.From16([16]byte{0xff, 0x3e, 15: 0x01}, 0, 0),
		Source: sockaddr.From16([16]byte{0x20, 0x02, 15: 0x01}, 0, 0),
	}
	assert.ErrorIs(t, JoinFd(-1, req), netspecerrors.ErrInvalidInput)
}

func TestJoinFdBadSocket(t *testing.T) {
	err := JoinFd(-1, netspec.GroupSourceReq{Group: group4(239, 192, 0, 1)})
	assert.ErrorIs(t, err, netspecerrors.ErrSystem)
	assert.ErrorIs(t, err, unix.EBADF)
}

func TestJoinLeaveFd(t *testing.T) {
	req := multicastInterface(t, group4(239, 192, 0, 3))

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	require.NoError(t, err)
	defer unix.Close(fd)

	require.NoError(t, JoinFd(fd, req))
	require.NoError(t, SetSendInterfaceFd(fd, req))

	addr, err := unix.GetsockoptInet4Addr(fd, unix.IPPROTO_IP, unix.IP_MULTICAST_IF)
	require.NoError(t, err)
	if addr != req.InterfaceAddr.Addr().As4() {
		t.Fatalf("given=%s expected multicast interface=%s got=%v", req.Group, req.InterfaceAddr, addr)
	}

	require.NoError(t, LeaveFd(fd, req))
}

func TestJoinLeaveFdSourceSpecific(t *testing.T) {
	req := multicastInterface(t, group4(232, 1, 1, 1))
	req, err := req.WithSource(req.InterfaceAddr)
	require.NoError(t, err)
	require.True(t, req.IsSourceSpecific())

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	require.NoError(t, err)
	defer unix.Close(fd)

	require.NoError(t, JoinFd(fd, req))
	require.NoError(t, LeaveFd(fd, req))
}
