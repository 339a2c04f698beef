package sockaddr

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/talostrading/netspec/netspecerrors"
)

// Network is a parsed network literal such as 10.6.28.0/24, 10.6 or
// fe80::/10.
type Network struct {
	// Written is the address as given, host bits included.
	Written SockAddr

	// Addr is Written with the host bits below Prefix cleared.
	Addr SockAddr

	// Prefix is the written prefix length, 0 if none was given.
	Prefix int

	// Zone is a non-numeric IPv6 zone, numeric zones are in Written's
	// scope id.
	Zone string
}

func (n Network) Family() Family {
	return n.Written.Family()
}

// IsBase reports whether the written address has no host bits set below
// mask, i.e. it names a network and not a host within one.
func (n Network) IsBase(mask SockAddr) bool {
	return n.Written.Mask(mask).Equal(n.Written)
}

// Contains reports whether an interface address with netmask ifmask lies in
// this network. Without a written prefix the interface netmask is used. A
// literal that is not its own network base never matches.
func (n Network) Contains(ifaddr, ifmask SockAddr) bool {
	if ifaddr.Family() != n.Family() {
		return false
	}
	mask := ifmask
	if n.Prefix > 0 {
		mask = PrefixMask(n.Family(), n.Prefix)
	}
	if mask.Family() != n.Family() {
		return false
	}
	if !n.IsBase(mask) {
		return false
	}
	return ifaddr.Mask(mask).Equal(n.Written)
}

func (n Network) String() string {
	if n.Prefix > 0 {
		return fmt.Sprintf("%s/%d", n.Addr, n.Prefix)
	}
	return n.Addr.String()
}

func invalid(s, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s in %q", netspecerrors.ErrInvalidInput, fmt.Sprintf(format, args...), s)
}

// ParseNetwork4 parses an IPv4 network in inet_network(3) notation. Missing
// trailing parts are zero: "127" is 127.0.0.0 and "127.1" is 127.1.0.0. An
// optional /prefix clears the host bits. An 'x' may stand in for a part,
// "10.x.x.x", but not follow a digit.
func ParseNetwork4(s string) (Network, error) {
	if s == "" {
		return Network{}, invalid(s, "empty network")
	}

	var (
		addr   uint32
		val    int
		shift  = 24
		digits = false
	)
	for i := 0; i <= len(s); i++ {
		var c byte
		if i < len(s) {
			c = s[i]
		}

		switch {
		case i < len(s) && c >= '0' && c <= '9':
			val = 10*val + int(c-'0')
			if val > 0xff {
				return Network{}, invalid(s, "part exceeds 255")
			}
			digits = true
		case i == len(s) || c == '.' || c == '/':
			if shift < 0 {
				return Network{}, invalid(s, "more than 4 parts")
			}
			addr |= uint32(val) << uint(shift)
			val = 0
			shift -= 8

			if c == '/' {
				if !digits {
					return Network{}, invalid(s, "no network number")
				}
				prefix, err := parsePrefix(s, s[i+1:], 32)
				if err != nil {
					return Network{}, err
				}
				masked := addr & (^uint32(0) << uint(32-prefix))
				return Network{
					Written: From4(be32(addr), 0),
					Addr:    From4(be32(masked), 0),
					Prefix:  prefix,
				}, nil
			}
		case c == 'x' || c == 'X':
			if val > 0 {
				return Network{}, invalid(s, "wildcard after digits")
			}
		default:
			return Network{}, invalid(s, "unexpected character %q", c)
		}
	}

	if !digits {
		return Network{}, invalid(s, "no network number")
	}

	written := From4(be32(addr), 0)
	return Network{Written: written, Addr: written}, nil
}

// ParseNetwork6 parses an IPv6 address or network: "::1", "[::1]",
// "2001:db8::/32", "fe80::%2/64". A zone is never taken for a prefix.
func ParseNetwork6(s string) (Network, error) {
	text, prefixText, hasPrefix, err := splitBracketed(s)
	if err != nil {
		return Network{}, err
	}

	ip, err := netip.ParseAddr(text)
	if err != nil || !ip.Is6() {
		return Network{}, invalid(s, "not an IPv6 address")
	}

	written, zone := scoped(ip)
	n := Network{Written: written, Addr: written, Zone: zone}
	if !hasPrefix {
		return n, nil
	}

	prefix, err := parsePrefix(s, prefixText, 128)
	if err != nil {
		return Network{}, err
	}
	masked := netip.PrefixFrom(ip.WithZone(""), prefix).Masked().Addr()
	n.Addr = From16(masked.As16(), 0, written.ScopeID())
	n.Prefix = prefix
	return n, nil
}

// ParseLiteral parses an exact host address: a dotted-quad IPv4 address or
// an IPv6 address, optionally bracketed and zoned. It returns the
// non-numeric zone, if any, for the caller to map to an interface index.
func ParseLiteral(s string) (SockAddr, string, error) {
	text := s
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return SockAddr{}, "", invalid(s, "unterminated bracket")
		}
		text = s[1 : len(s)-1]
	}

	ip, err := netip.ParseAddr(text)
	if err != nil {
		return SockAddr{}, "", invalid(s, "not an address literal")
	}
	if ip.Is4() && text != s {
		return SockAddr{}, "", invalid(s, "bracketed IPv4 literal")
	}

	addr, zone := scoped(ip)
	return addr, zone, nil
}

// splitBracketed strips an RFC 3986 "[...]" wrapper and splits off a
// /prefix.
func splitBracketed(s string) (text, prefix string, hasPrefix bool, err error) {
	text = s
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return "", "", false, invalid(s, "unterminated bracket")
		}
		text = s[1:end]
		rest := s[end+1:]
		switch {
		case rest == "":
			return text, "", false, nil
		case rest[0] == '/':
			return text, rest[1:], true, nil
		default:
			return "", "", false, invalid(s, "trailing characters after bracket")
		}
	}
	if i := strings.IndexByte(text, '/'); i >= 0 {
		return text[:i], text[i+1:], true, nil
	}
	return text, "", false, nil
}

func parsePrefix(s, text string, width int) (int, error) {
	if text == "" {
		return 0, invalid(s, "empty prefix")
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, invalid(s, "unexpected prefix character %q", text[i])
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil || n == 0 || n > width {
		return 0, invalid(s, "prefix must be in [1, %d]", width)
	}
	return n, nil
}

func scoped(ip netip.Addr) (SockAddr, string) {
	zone := ip.Zone()
	if zone == "" {
		return FromAddr(ip), ""
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return FromAddrScope(ip, uint32(n)), ""
	}
	return FromAddrScope(ip, 0), zone
}

func be32(v uint32) [4]byte {
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
