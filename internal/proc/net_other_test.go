//go:build !linux

package proc

import (
	"net/netip"
	"testing"

	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnSocket(t *testing.T) {
	t.Parallel()

	tcp4 := socketTables[0]
	s, err := connSocket(tcp4, gnet.ConnectionStat{
		Laddr:  gnet.Addr{IP: "*", Port: 8080},
		Raddr:  gnet.Addr{IP: "", Port: 0},
		Status: "LISTEN",
	})
	require.NoError(t, err)
	assert.Equal(t, netip.IPv4Unspecified(), s.LocalAddr)
	assert.Equal(t, "LISTEN", s.State)

	udp6 := socketTables[3]
	s, err = connSocket(udp6, gnet.ConnectionStat{Laddr: gnet.Addr{IP: "fe80::1%en0", Port: 5353}})
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("fe80::1"), s.LocalAddr)
	assert.Empty(t, s.State)

	_, err = connSocket(tcp4, gnet.ConnectionStat{Laddr: gnet.Addr{IP: "not-an-ip"}})
	require.Error(t, err)
}

func TestAppendPID(t *testing.T) {
	t.Parallel()

	pids := appendPID(nil, 7)
	pids = appendPID(pids, 3)
	pids = appendPID(pids, 7)
	assert.Equal(t, []uint32{7, 3}, pids)
}

func TestConnState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FIN_WAIT_1", connState("FIN_WAIT1"))
	assert.Equal(t, "ESTABLISHED", connState("ESTABLISHED"))
	assert.Equal(t, "UNKNOWN", connState(""))
}
