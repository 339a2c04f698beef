package netdb

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/talostrading/netspec/sockaddr"
)

// NetworkEntry is one line of a networks(5) database.
type NetworkEntry struct {
	Name    string
	Aliases []string
	Addr    sockaddr.SockAddr
}

// ParseNetworks reads a networks(5) database: "name number [aliases...]"
// per line, '#' starting a comment. Numbers use inet_network(3) notation,
// so class A, B and C networks may be written short: "10", "172.16",
// "192.168.1". Malformed lines are skipped, as the C library does.
func ParseNetworks(r io.Reader) ([]NetworkEntry, error) {
	var (
		entries []NetworkEntry
		scanner = bufio.NewScanner(r)
	)
	for scanner.Scan() {
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			continue
		}

		network, err := sockaddr.ParseNetwork4(fields[1])
		if err != nil || network.Prefix != 0 {
			continue
		}

		entries = append(entries, NetworkEntry{
			Name:    fields[0],
			Aliases: fields[2:],
			Addr:    network.Addr,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Match reports whether name is the entry's name or one of its aliases.
// Network names are case-insensitive.
func (e NetworkEntry) Match(name string) bool {
	if strings.EqualFold(e.Name, name) {
		return true
	}
	for _, alias := range e.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

func lookupNetworksFile(path, name string) (sockaddr.SockAddr, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sockaddr.SockAddr{}, notFound("lookup network", name)
		}
		return sockaddr.SockAddr{}, &SystemError{Op: "lookup network", Name: name, Err: err}
	}
	defer f.Close()

	entries, err := ParseNetworks(f)
	if err != nil {
		return sockaddr.SockAddr{}, &SystemError{Op: "lookup network", Name: name, Err: err}
	}
	for _, entry := range entries {
		if entry.Match(name) {
			return entry.Addr, nil
		}
	}
	return sockaddr.SockAddr{}, notFound("lookup network", name)
}
