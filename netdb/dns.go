package netdb

import (
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/talostrading/netspec/sockaddr"
)

const DefaultResolvConf = "/etc/resolv.conf"

// DNS resolves host names by querying the configured name servers
// directly, bypassing the C library and the hosts file. Network names and
// the hostname come from Fallback.
type DNS struct {
	Config *dns.ClientConfig
	Client *dns.Client

	// Fallback answers LookupNetwork and Hostname, a System if nil.
	Fallback Resolver

	// Table is consulted to drop unconfigured families, SystemInterfaces if
	// nil.
	Table InterfaceTable
}

var _ Resolver = &DNS{}

// NewDNS reads the name servers and search domains from a resolv.conf(5)
// file, DefaultResolvConf if path is empty.
func NewDNS(path string) (*DNS, error) {
	if path == "" {
		path = DefaultResolvConf
	}
	config, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, &SystemError{Op: "read resolver configuration", Name: path, Err: err}
	}
	return &DNS{Config: config}, nil
}

func (d *DNS) client() *dns.Client {
	if d.Client != nil {
		return d.Client
	}
	timeout := DefaultTimeout
	if d.Config != nil && d.Config.Timeout > 0 {
		timeout = time.Duration(d.Config.Timeout) * time.Second
	}
	return &dns.Client{Net: "udp", Timeout: timeout}
}

func (d *DNS) fallback() Resolver {
	if d.Fallback != nil {
		return d.Fallback
	}
	return &System{Table: d.Table}
}

func (d *DNS) LookupAddrs(name string, family sockaddr.Family, numericOnly bool) ([]sockaddr.SockAddr, error) {
	if addrs, ok, err := numericHost(name, family); ok {
		return addrs, err
	}
	if numericOnly {
		return nil, notFound("numeric host", name)
	}
	if d.Config == nil || len(d.Config.Servers) == 0 {
		return nil, &SystemError{Op: "lookup host", Name: name, Err: errors.New("no name servers configured")}
	}

	var qtypes []uint16
	switch family {
	case sockaddr.IPv4:
		qtypes = []uint16{dns.TypeA}
	case sockaddr.IPv6:
		qtypes = []uint16{dns.TypeAAAA}
	default:
		qtypes = []uint16{dns.TypeA, dns.TypeAAAA}
	}

	for _, fqdn := range d.Config.NameList(name) {
		var (
			addrs  []sockaddr.SockAddr
			exists = false
		)
		for _, qtype := range qtypes {
			reply, err := d.exchange(fqdn, qtype)
			if err != nil {
				return nil, &SystemError{Op: "lookup host", Name: fqdn, Err: err}
			}
			switch reply.Rcode {
			case dns.RcodeSuccess:
				exists = true
			case dns.RcodeNameError:
				continue
			default:
				return nil, &SystemError{
					Op:   "lookup host",
					Name: fqdn,
					Err:  errors.New(dns.RcodeToString[reply.Rcode]),
				}
			}
			for _, rr := range reply.Answer {
				switch rr := rr.(type) {
				case *dns.A:
					addrs = append(addrs, sockaddr.FromIP(rr.A))
				case *dns.AAAA:
					addrs = append(addrs, sockaddr.FromIP(rr.AAAA))
				}
			}
		}
		if !exists {
			continue
		}

		table := d.Table
		if table == nil {
			table = SystemInterfaces{}
		}
		addrs = addrConfig(table, collect(family, addrs))
		if len(addrs) > 0 {
			return addrs, nil
		}
	}
	return nil, notFound("lookup host", name)
}

func (d *DNS) exchange(fqdn string, qtype uint16) (*dns.Msg, error) {
	query := new(dns.Msg)
	query.SetQuestion(fqdn, qtype)
	query.RecursionDesired = true

	var lastErr error
	for _, server := range d.Config.Servers {
		reply, _, err := d.client().Exchange(query, net.JoinHostPort(server, d.Config.Port))
		if err != nil {
			lastErr = err
			continue
		}
		return reply, nil
	}
	return nil, lastErr
}

func (d *DNS) LookupNetwork(name string) (sockaddr.SockAddr, error) {
	return d.fallback().LookupNetwork(name)
}

func (d *DNS) Hostname() (string, error) {
	return d.fallback().Hostname()
}
