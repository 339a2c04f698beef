//go:build linux

package netdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetlinkMatchesSystemInterfaces(t *testing.T) {
	table, err := Netlink{}.Interfaces()
	if err != nil {
		t.Skipf("netlink unavailable err=%v", err)
	}

	// Both views list the same addresses, the order may differ.
	type key struct {
		name string
		addr string
	}
	seen := make(map[key]bool)
	for _, iff := range table {
		seen[key{iff.Name, iff.Addr.String()}] = true
	}
	for _, iff := range systemTable {
		k := key{iff.Name, iff.Addr.String()}
		require.True(t, seen[k], "missing name=%s addr=%s", k.name, k.addr)
	}

	for _, iff := range table {
		assert.NotZero(t, iff.Index, iff.Name)
		assert.Equal(t, iff.Addr.Family(), iff.Netmask.Family(), iff.Name)
	}
}
