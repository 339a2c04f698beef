//go:build linux

package netdb

import (
	"github.com/talostrading/netspec/sockaddr"
	"github.com/vishvananda/netlink"
)

// Netlink enumerates the interface table over rtnetlink. Unlike
// SystemInterfaces it reads every address of every link in one dump per
// link, without the per-interface ioctls of the net package.
type Netlink struct{}

var _ InterfaceTable = Netlink{}

func (Netlink) Interfaces() ([]sockaddr.Interface, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, &SystemError{Op: "netlink list links", Err: err}
	}

	var table []sockaddr.Interface
	for _, link := range links {
		attrs := link.Attrs()
		addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
		if err != nil {
			return nil, &SystemError{Op: "netlink list addresses", Name: attrs.Name, Err: err}
		}
		for _, addr := range addrs {
			if addr.IPNet == nil {
				continue
			}
			if entry, ok := makeInterface(attrs.Name, attrs.Index, attrs.Flags, addr.IPNet); ok {
				table = append(table, entry)
			}
		}
	}
	return table, nil
}
