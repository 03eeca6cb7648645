package row_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portlist/nu_plugin_port_list/internal/row"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

func uid(v uint32) *uint32 { return &v }

func dnsd() model.Process {
	return model.Process{
		PID:     42,
		Name:    "dnsd",
		Cmd:     []string{"dnsd", "-f"},
		ExePath: "/usr/sbin/dnsd",
		Status:  "sleep",
		UID:     uid(0),
		GID:     uid(0),
		EUID:    uid(0),
		EGID:    uid(0),
		Environ: []string{"PATH=/usr/bin", "LANG=C"},
	}
}

func TestBuildTCPListener(t *testing.T) {
	t.Parallel()

	r := row.Build(model.Socket{
		Protocol:   model.ProtocolTCP,
		LocalAddr:  netip.MustParseAddr("127.0.0.1"),
		LocalPort:  8080,
		RemoteAddr: netip.IPv4Unspecified(),
		State:      "LISTEN",
	}, false, nil)

	require.Equal(t, row.BaseColumns, r.Columns())
	assertString(t, r, row.ColType, "tcp")
	assertInt(t, r, row.ColIPVersion, 4)
	assertString(t, r, row.ColLocalAddress, "127.0.0.1")
	assertInt(t, r, row.ColLocalPort, 8080)
	assertString(t, r, row.ColRemoteAddress, "0.0.0.0")
	assertInt(t, r, row.ColRemotePort, 0)
	assertString(t, r, row.ColState, "LISTEN")

	pid, ok := r.Get(row.ColPID)
	require.True(t, ok)
	assert.True(t, pid.IsNothing())
}

func TestBuildNoPIDSkipsLookup(t *testing.T) {
	t.Parallel()

	r := row.Build(model.Socket{
		Protocol:  model.ProtocolTCP,
		LocalAddr: netip.MustParseAddr("127.0.0.1"),
		LocalPort: 8080,
		State:     "LISTEN",
	}, true, model.ProcessTable{0: dnsd()})

	assert.Equal(t, row.BaseColumns, r.Columns())
	assertString(t, r, row.ColRemoteAddress, "0.0.0.0")
}

func TestBuildUDPEnriched(t *testing.T) {
	t.Parallel()

	r := row.Build(model.Socket{
		Protocol:  model.ProtocolUDP,
		LocalAddr: netip.IPv6Unspecified(),
		LocalPort: 53,
		PIDs:      []uint32{42},
	}, true, model.ProcessTable{42: dnsd()})

	require.Equal(t, append(append([]string{}, row.BaseColumns...), row.ProcessColumns...), r.Columns())
	assertString(t, r, row.ColType, "udp")
	assertInt(t, r, row.ColIPVersion, 6)
	assertString(t, r, row.ColLocalAddress, "::")
	assertString(t, r, row.ColRemoteAddress, "")
	assertInt(t, r, row.ColRemotePort, -1)
	assertString(t, r, row.ColState, "LISTEN")
	assertInt(t, r, row.ColPID, 42)
	assertString(t, r, row.ColProcessName, "dnsd")
	assertString(t, r, row.ColCmd, "dnsd -f")
	assertString(t, r, row.ColExePath, "/usr/sbin/dnsd")
	assertString(t, r, row.ColProcessStatus, "sleep")
	assertString(t, r, row.ColProcessUser, "0")
	assertString(t, r, row.ColProcessEffectiveGroup, "0")

	env, ok := r.Get(row.ColProcessEnvironments)
	require.True(t, ok)
	require.Equal(t, model.KindList, env.Kind())
	require.Len(t, env.AsList(), 2)
	assert.Equal(t, "PATH=/usr/bin", env.AsList()[0].AsString())
	assert.Equal(t, "LANG=C", env.AsList()[1].AsString())
}

func TestBuildUnavailableAttributes(t *testing.T) {
	t.Parallel()

	r := row.Build(model.Socket{
		Protocol:  model.ProtocolTCP,
		LocalAddr: netip.MustParseAddr("::1"),
		LocalPort: 22,
		State:     "ESTABLISHED",
		PIDs:      []uint32{9},
	}, true, model.ProcessTable{9: {PID: 9, Name: "sshd"}})

	assertString(t, r, row.ColRemoteAddress, "::")
	assertString(t, r, row.ColProcessName, "sshd")
	assertString(t, r, row.ColCmd, "")
	for _, col := range []string{
		row.ColExePath, row.ColProcessStatus,
		row.ColProcessUser, row.ColProcessGroup,
		row.ColProcessEffectiveUser, row.ColProcessEffectiveGroup,
	} {
		assertString(t, r, col, row.Unavailable)
	}
	env, _ := r.Get(row.ColProcessEnvironments)
	assert.Empty(t, env.AsList())
}

func TestBuildOnlyFirstPID(t *testing.T) {
	t.Parallel()

	s := model.Socket{
		Protocol:  model.ProtocolTCP,
		LocalAddr: netip.MustParseAddr("0.0.0.0"),
		LocalPort: 80,
		State:     "LISTEN",
		PIDs:      []uint32{100, 42},
	}

	// The second PID resolves but only the first is consulted.
	r := row.Build(s, true, model.ProcessTable{42: dnsd()})
	assertInt(t, r, row.ColPID, 100)
	assert.Equal(t, row.BaseColumns, r.Columns())

	r = row.Build(s, false, model.ProcessTable{100: dnsd()})
	assert.Equal(t, row.BaseColumns, r.Columns())
}

func assertString(t *testing.T, r *model.Record, col, want string) {
	t.Helper()
	v, ok := r.Get(col)
	require.True(t, ok, "missing column %s", col)
	require.Equal(t, model.KindString, v.Kind(), col)
	assert.Equal(t, want, v.AsString(), col)
}

func assertInt(t *testing.T, r *model.Record, col string, want int64) {
	t.Helper()
	v, ok := r.Get(col)
	require.True(t, ok, "missing column %s", col)
	require.Equal(t, model.KindInt, v.Kind(), col)
	assert.Equal(t, want, v.AsInt(), col)
}
