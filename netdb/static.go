package netdb

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/talostrading/netspec/sockaddr"
	"gopkg.in/yaml.v3"
)

// Static is an in-memory name database and interface table. It answers
// deterministically, which makes it suitable for embedding the resolver in
// hosts without a usable system configuration and for tests.
//
// Static is safe for concurrent use.
type Static struct {
	mu       sync.RWMutex
	hostname string
	hosts    map[string][]sockaddr.SockAddr
	networks []NetworkEntry
	ifaces   []sockaddr.Interface
}

var (
	_ Resolver       = &Static{}
	_ InterfaceTable = &Static{}
)

func NewStatic(hostname string) *Static {
	return &Static{
		hostname: hostname,
		hosts:    make(map[string][]sockaddr.SockAddr),
	}
}

// AddHost appends address literals to the entry of name. Host names are
// case-insensitive.
func (s *Static) AddHost(name string, addrs ...string) error {
	parsed := make([]sockaddr.SockAddr, 0, len(addrs))
	for _, addr := range addrs {
		a, _, err := sockaddr.ParseLiteral(addr)
		if err != nil {
			return fmt.Errorf("host=%s: %w", name, err)
		}
		parsed = append(parsed, a)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(name)
	s.hosts[key] = append(s.hosts[key], parsed...)
	return nil
}

// AddNetwork adds a networks(5) entry, number in inet_network(3) notation.
func (s *Static) AddNetwork(name, number string, aliases ...string) error {
	network, err := sockaddr.ParseNetwork4(number)
	if err != nil {
		return fmt.Errorf("network=%s: %w", name, err)
	}
	if network.Prefix != 0 {
		return fmt.Errorf("network=%s number=%s has a prefix", name, number)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.networks = append(s.networks, NetworkEntry{Name: name, Aliases: aliases, Addr: network.Addr})
	return nil
}

// AddInterface adds one address entry to the interface table. addr is an
// "address/prefix" pair; link-local IPv6 addresses take index as scope id.
func (s *Static) AddInterface(index int, name string, flags sockaddr.Flags, addr string) error {
	text, bits, ok := strings.Cut(addr, "/")
	ip, _, err := sockaddr.ParseLiteral(text)
	if err != nil {
		return fmt.Errorf("interface=%s: %w", name, err)
	}

	prefix := ip.Family().Bits()
	if ok {
		n, err := strconv.Atoi(bits)
		if err != nil || n < 0 || n > prefix {
			return fmt.Errorf("interface=%s invalid prefix=%s", name, bits)
		}
		prefix = n
	}
	if ip.Family() == sockaddr.IPv6 && (ip.Addr().IsLinkLocalUnicast() || ip.Addr().IsLinkLocalMulticast()) {
		ip = ip.WithScopeID(uint32(index))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ifaces = append(s.ifaces, sockaddr.Interface{
		Name:    name,
		Index:   index,
		Flags:   flags,
		Addr:    ip,
		Netmask: sockaddr.PrefixMask(ip.Family(), prefix),
	})
	return nil
}

func (s *Static) Interfaces() ([]sockaddr.Interface, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]sockaddr.Interface(nil), s.ifaces...), nil
}

func (s *Static) LookupAddrs(name string, family sockaddr.Family, numericOnly bool) ([]sockaddr.SockAddr, error) {
	if addrs, ok, err := numericHost(name, family); ok {
		return addrs, err
	}
	if numericOnly {
		return nil, notFound("numeric host", name)
	}

	s.mu.RLock()
	addrs, ok := s.hosts[strings.ToLower(name)]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound("lookup host", name)
	}

	addrs = addrConfig(s, collect(family, addrs))
	if len(addrs) == 0 {
		return nil, notFound("lookup host of family "+family.String(), name)
	}
	return addrs, nil
}

func (s *Static) LookupNetwork(name string) (sockaddr.SockAddr, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.networks {
		if entry.Match(name) {
			return entry.Addr, nil
		}
	}
	return sockaddr.SockAddr{}, notFound("lookup network", name)
}

func (s *Static) Hostname() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hostname == "" {
		return "", &SystemError{Op: "hostname", Err: fmt.Errorf("no hostname configured")}
	}
	return s.hostname, nil
}

type staticFile struct {
	Hostname   string              `yaml:"hostname"`
	Hosts      map[string][]string `yaml:"hosts"`
	Networks   []staticNetwork     `yaml:"networks"`
	Interfaces []staticInterface   `yaml:"interfaces"`
}

type staticNetwork struct {
	Name    string   `yaml:"name"`
	Number  string   `yaml:"number"`
	Aliases []string `yaml:"aliases"`
}

type staticInterface struct {
	Name  string   `yaml:"name"`
	Index int      `yaml:"index"`
	Flags []string `yaml:"flags"`
	Addrs []string `yaml:"addrs"`
}

// LoadStatic reads a Static from YAML:
//
//	hostname: ayaka
//	hosts:
//	  ayaka: [10.6.28.33]
//	networks:
//	  - {name: private, number: "10"}
//	interfaces:
//	  - {name: eth0, index: 2, flags: [up, broadcast, multicast], addrs: [10.6.28.33/24]}
//
// Unknown keys are an error.
func LoadStatic(r io.Reader) (*Static, error) {
	var file staticFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("cannot decode static tables: %w", err)
	}

	s := NewStatic(file.Hostname)
	for name, addrs := range file.Hosts {
		if err := s.AddHost(name, addrs...); err != nil {
			return nil, err
		}
	}
	for _, n := range file.Networks {
		if err := s.AddNetwork(n.Name, n.Number, n.Aliases...); err != nil {
			return nil, err
		}
	}
	for _, iff := range file.Interfaces {
		flags, err := sockaddr.ParseFlags(strings.Join(iff.Flags, ","))
		if err != nil {
			return nil, fmt.Errorf("interface=%s: %w", iff.Name, err)
		}
		for _, addr := range iff.Addrs {
			if err := s.AddInterface(iff.Index, iff.Name, flags, addr); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func LoadStaticFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadStatic(f)
}
