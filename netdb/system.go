package netdb

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/talostrading/netspec/sockaddr"
)

const (
	DefaultTimeout      = 5 * time.Second
	DefaultNetworksFile = "/etc/networks"
)

// System resolves through the Go resolver, networks(5) and the hostname of
// the node. The zero value is ready to use.
type System struct {
	// Resolver defaults to net.DefaultResolver.
	Resolver *net.Resolver

	// Timeout bounds a single lookup, DefaultTimeout if zero.
	Timeout time.Duration

	// NetworksFile defaults to DefaultNetworksFile.
	NetworksFile string

	// Table is consulted to drop unconfigured families, SystemInterfaces if
	// nil.
	Table InterfaceTable
}

var _ Resolver = &System{}

func NewSystem() *System {
	return &System{}
}

func (s *System) LookupAddrs(name string, family sockaddr.Family, numericOnly bool) ([]sockaddr.SockAddr, error) {
	if addrs, ok, err := numericHost(name, family); ok {
		return addrs, err
	}
	if numericOnly {
		return nil, notFound("numeric host", name)
	}

	resolver := s.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ips, err := resolver.LookupNetIP(ctx, family.Network(), name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, notFound("lookup host", name)
		}
		return nil, &SystemError{Op: "lookup host", Name: name, Err: err}
	}

	addrs := make([]sockaddr.SockAddr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, sockaddr.FromAddr(ip))
	}

	table := s.Table
	if table == nil {
		table = SystemInterfaces{}
	}
	addrs = addrConfig(table, collect(family, addrs))
	if len(addrs) == 0 {
		return nil, notFound("lookup host of family "+family.String(), name)
	}
	return addrs, nil
}

func (s *System) LookupNetwork(name string) (sockaddr.SockAddr, error) {
	path := s.NetworksFile
	if path == "" {
		path = DefaultNetworksFile
	}
	return lookupNetworksFile(path, name)
}

func (s *System) Hostname() (string, error) {
	name, err := os.Hostname()
	if err != nil {
		return "", &SystemError{Op: "hostname", Err: err}
	}
	return name, nil
}
