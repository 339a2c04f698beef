package sockaddr

import (
	"fmt"
	"math/rand"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talostrading/netspec/netspecerrors"
)

func TestParseNetwork4Partial(t *testing.T) {
	cases := []struct {
		in       string
		expected string
		prefix   int
	}{
		{"127", "127.0.0.0", 0},
		{"127.1", "127.1.0.0", 0},
		{"127.1/8", "127.0.0.0", 8},
		{"10.0/8", "10.0.0.0", 8},
		{"10.6.28", "10.6.28.0", 0},
		{"10.6.28.33", "10.6.28.33", 0},
		{"10.6.28.33/24", "10.6.28.0", 24},
		{"192.168.1.1/32", "192.168.1.1", 32},
		{"10.x.x.x", "10.0.0.0", 0},
		{"x.1", "0.1.0.0", 0},
	}
	for _, c := range cases {
		n, err := ParseNetwork4(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.expected, n.Addr.String(), c.in)
		assert.Equal(t, c.prefix, n.Prefix, c.in)
		assert.Equal(t, IPv4, n.Family(), c.in)
	}
}

func TestParseNetwork4Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"256",
		"1.2.3.256",
		"1.2.3.4.5",
		"1.2.3.4.",
		"10/0",
		"10/33",
		"10/",
		"10/2a",
		"1x",
		"eth0",
		"abcd::",
		"x",
		"x/8",
	} {
		_, err := ParseNetwork4(in)
		if err == nil {
			t.Fatalf("expected an error for %q", in)
		}
		assert.ErrorIs(t, err, netspecerrors.ErrInvalidInput, in)
	}
}

func TestParseNetwork4RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		var b [4]byte
		r.Read(b[:])
		text := netip.AddrFrom4(b).String()

		n, err := ParseNetwork4(text)
		require.NoError(t, err, text)
		if given, expected := n.Addr.Addr().As4(), b; given != expected {
			t.Fatalf("given=%v expected=%v", given, expected)
		}
		assert.True(t, n.Written.Equal(n.Addr))
	}
}

func TestParseNetwork4Mask(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for prefix := 1; prefix <= 32; prefix++ {
		var b [4]byte
		r.Read(b[:])
		text := fmt.Sprintf("%s/%d", netip.AddrFrom4(b), prefix)

		n, err := ParseNetwork4(text)
		require.NoError(t, err, text)

		in := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		out4 := n.Addr.Addr().As4()
		out := uint32(out4[0])<<24 | uint32(out4[1])<<16 | uint32(out4[2])<<8 | uint32(out4[3])

		hostMask := uint32((uint64(1) << uint(32-prefix)) - 1)
		assert.Equal(t, uint32(0), out&hostMask, text)
		assert.Equal(t, in&^hostMask, out, text)

		again, err := ParseNetwork4(fmt.Sprintf("%s/%d", n.Addr, prefix))
		require.NoError(t, err)
		assert.True(t, again.Addr.Equal(n.Addr), text)
		assert.True(t, again.IsBase(PrefixMask(IPv4, prefix)), text)
	}
}

func TestParseNetwork6(t *testing.T) {
	cases := []struct {
		in       string
		expected string
		prefix   int
		scope    uint32
		zone     string
	}{
		{"::1", "::1", 0, 0, ""},
		{"[::1]", "::1", 0, 0, ""},
		{"::1/128", "::1", 128, 0, ""},
		{"::1.2.3.4", "::102:304", 0, 0, ""},
		{"2001:db8:1:2::5/64", "2001:db8:1:2::", 64, 0, ""},
		{"[2001:db8::1]/32", "2001:db8::", 32, 0, ""},
		{"fe80::1%2", "fe80::1%2", 0, 2, ""},
		{"fe80::1%2/10", "fe80::%2", 10, 2, ""},
		{"fe80::1%eth0", "fe80::1", 0, 0, "eth0"},
	}
	for _, c := range cases {
		n, err := ParseNetwork6(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.expected, n.Addr.String(), c.in)
		assert.Equal(t, c.prefix, n.Prefix, c.in)
		assert.Equal(t, c.scope, n.Written.ScopeID(), c.in)
		assert.Equal(t, c.zone, n.Zone, c.in)
	}
}

func TestParseNetwork6Mask(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for prefix := 1; prefix <= 128; prefix++ {
		var b [16]byte
		r.Read(b[:])
		b[0] = 0x20
		text := fmt.Sprintf("%s/%d", netip.AddrFrom16(b), prefix)

		n, err := ParseNetwork6(text)
		require.NoError(t, err, text)

		out := n.Addr.Addr().As16()
		for bit := 0; bit < 128; bit++ {
			set := out[bit/8]&(0x80>>uint(bit%8)) != 0
			orig := b[bit/8]&(0x80>>uint(bit%8)) != 0
			if bit < prefix {
				assert.Equal(t, orig, set, "%s bit=%d", text, bit)
			} else if set {
				t.Fatalf("%s: host bit=%d not cleared", text, bit)
			}
		}
	}
}

func TestParseNetwork6Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"::1/0",
		"::1/129",
		"::1/",
		"::1/6x",
		"[::1",
		"[::1]x",
		"1.2.3.4",
		"1.2.3.4/8",
		"eth0",
		"g::1",
	} {
		_, err := ParseNetwork6(in)
		assert.ErrorIs(t, err, netspecerrors.ErrInvalidInput, in)
	}
}

func TestParseLiteral(t *testing.T) {
	{
		a, zone, err := ParseLiteral("10.6.28.33")
		require.NoError(t, err)
		assert.Equal(t, IPv4, a.Family())
		assert.Equal(t, "10.6.28.33", a.String())
		assert.Empty(t, zone)
	}
	{
		a, zone, err := ParseLiteral("[ff08::1]")
		require.NoError(t, err)
		assert.Equal(t, IPv6, a.Family())
		assert.True(t, a.IsMulticast())
		assert.Empty(t, zone)
	}
	{
		a, zone, err := ParseLiteral("fe80::1%eth1")
		require.NoError(t, err)
		assert.Equal(t, "eth1", zone)
		assert.Equal(t, uint32(0), a.ScopeID())
	}
	{
		a, _, err := ParseLiteral("fe80::1%3")
		require.NoError(t, err)
		assert.Equal(t, uint32(3), a.ScopeID())
	}
	for _, in := range []string{"10.6.28", "[10.6.28.33]", "[::1", "eth0", "10.0.0.0/8"} {
		_, _, err := ParseLiteral(in)
		assert.ErrorIs(t, err, netspecerrors.ErrInvalidInput, in)
	}
}

func TestNetworkContains(t *testing.T) {
	ifaddr := From4([4]byte{10, 6, 28, 33}, 0)
	ifmask := From4([4]byte{255, 255, 255, 0}, 0)

	for in, expected := range map[string]bool{
		"10.6.28.0/24":   true,
		"10.6.28":        true,
		"10.6.28.0":      true,
		"10.6/16":        true,
		"10.6.28.33/24":  false,
		"10.6.28.33":     false,
		"10.6.29.0/24":   false,
		"10.6.28.0/25":   true,
		"10.6.28.128/25": false,
	} {
		n, err := ParseNetwork4(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, n.Contains(ifaddr, ifmask), in)
	}

	n6, err := ParseNetwork6("2001:db8::/32")
	require.NoError(t, err)
	assert.False(t, n6.Contains(ifaddr, ifmask))
}
