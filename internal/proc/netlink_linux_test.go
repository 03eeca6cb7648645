//go:build linux

package proc

import (
	"errors"
	"io/fs"
	"net"
	"net/netip"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

func TestDiagSocket(t *testing.T) {
	t.Parallel()

	tcp4 := socketTables[0]
	d := &netlink.Socket{State: 10}
	d.ID.Source = net.IPv4(127, 0, 0, 1)
	d.ID.SourcePort = 8080
	d.ID.Destination = net.IPv4zero
	s, err := diagSocket(tcp4, d)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), s.LocalAddr)
	assert.Equal(t, 4, s.IPVersion())
	assert.Equal(t, "LISTEN", s.State)
	assert.EqualValues(t, 8080, s.LocalPort)

	udp6 := socketTables[3]
	d = &netlink.Socket{State: 7}
	d.ID.Source = net.ParseIP("::ffff:10.0.0.1")
	d.ID.SourcePort = 53
	s, err = diagSocket(udp6, d)
	require.NoError(t, err)
	assert.Equal(t, model.ProtocolUDP, s.Protocol)
	assert.Equal(t, 6, s.IPVersion())
	assert.Empty(t, s.State)
	assert.False(t, s.RemoteAddr.IsValid())

	_, err = diagSocket(tcp4, &netlink.Socket{})
	require.Error(t, err)
}

var errNoSockDiag = errors.New("sock_diag unavailable")

func failingSockDiag(socketTable) ([]procEntry, error) { return nil, errNoSockDiag }

func TestNetlinkSocketsOwners(t *testing.T) {
	t.Parallel()

	fp := newFakeProc(t)
	fp.fd(9, 4, "socket:[77]")
	e := fp.enumerator()
	e.backend = BackendNetlink
	e.sockDiag = func(tb socketTable) ([]procEntry, error) {
		return []procEntry{
			{socket: model.Socket{Protocol: tb.protocol, LocalAddr: netip.MustParseAddr("127.0.0.1"), LocalPort: 22, State: "LISTEN"}, inode: 77},
			{socket: model.Socket{Protocol: tb.protocol, LocalAddr: netip.MustParseAddr("127.0.0.1"), LocalPort: 23, State: "TIME_WAIT"}},
		}, nil
	}

	sockets, err := e.Enumerate(t.Context(), model.FamilyIPv4, model.MaskTCP)
	require.NoError(t, err)
	require.Len(t, sockets, 2)
	assert.Equal(t, []uint32{9}, sockets[0].PIDs)
	assert.Empty(t, sockets[1].PIDs)
}

func TestEnumerateAutoFallsBackToProcfs(t *testing.T) {
	t.Parallel()

	fp := newFakeProc(t)
	fp.table("tcp", tcpLine(hexIPv4(127, 0, 0, 1)+":1F90", hexIPv4(0, 0, 0, 0)+":0000", "0A", 5))
	fp.fd(7, 3, "socket:[5]")
	e := fp.enumerator()
	e.backend = BackendAuto
	e.sockDiag = failingSockDiag

	sockets, err := e.Enumerate(t.Context(), model.FamilyIPv4, model.MaskTCP)
	require.NoError(t, err)
	require.Len(t, sockets, 1)
	assert.EqualValues(t, 8080, sockets[0].LocalPort)
	assert.Equal(t, []uint32{7}, sockets[0].PIDs)
}

func TestEnumerateAutoBothBackendsFail(t *testing.T) {
	t.Parallel()

	// no tcp table in the fixture, so procfs fails too
	fp := newFakeProc(t)
	e := fp.enumerator()
	e.backend = BackendAuto
	e.sockDiag = failingSockDiag

	sockets, err := e.Enumerate(t.Context(), model.FamilyIPv4, model.MaskTCP)
	require.Error(t, err)
	assert.Nil(t, sockets)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.WrappedErrors(), 2)
	assert.ErrorIs(t, merr.WrappedErrors()[0], errNoSockDiag)
	assert.ErrorIs(t, merr.WrappedErrors()[1], fs.ErrNotExist)
}

func TestEnumerateNetlinkBackendDoesNotFallBack(t *testing.T) {
	t.Parallel()

	fp := newFakeProc(t)
	fp.table("tcp", tcpLine(hexIPv4(127, 0, 0, 1)+":1F90", hexIPv4(0, 0, 0, 0)+":0000", "0A", 5))
	e := fp.enumerator()
	e.backend = BackendNetlink
	e.sockDiag = failingSockDiag

	_, err := e.Enumerate(t.Context(), model.FamilyIPv4, model.MaskTCP)
	require.ErrorIs(t, err, errNoSockDiag)
}
