package output_test

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portlist/nu_plugin_port_list/internal/output"
	"github.com/portlist/nu_plugin_port_list/internal/row"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

func sampleRows() []*model.Record {
	return []*model.Record{
		row.Build(model.Socket{
			Protocol:   model.ProtocolTCP,
			LocalAddr:  netip.MustParseAddr("127.0.0.1"),
			LocalPort:  8080,
			RemoteAddr: netip.IPv4Unspecified(),
			State:      "LISTEN",
		}, false, nil),
		row.Build(model.Socket{
			Protocol:  model.ProtocolUDP,
			LocalAddr: netip.IPv6Unspecified(),
			LocalPort: 53,
			PIDs:      []uint32{42},
		}, true, model.ProcessTable{42: {
			PID:     42,
			Name:    "dnsd",
			Cmd:     []string{"dnsd", "-f", strings.Repeat("x", 80)},
			Environ: []string{"A=1"},
		}}),
	}
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	out, err := output.ToJSON(sampleRows())
	require.NoError(t, err)
	assert.Contains(t, out, `"pid": null`)
	assert.Contains(t, out, `"remote_port": -1`)
	assert.Contains(t, out, `"process_environments": [`)
	assert.Less(t, strings.Index(out, `"type"`), strings.Index(out, `"ip_version"`))
	assert.Less(t, strings.Index(out, `"state"`), strings.Index(out, `"pid"`))

	out, err = output.ToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestColumns(t *testing.T) {
	t.Parallel()

	rows := sampleRows()
	assert.Equal(t, row.BaseColumns, output.Columns(rows[:1]))

	cols := output.Columns(rows)
	assert.Contains(t, cols, row.ColProcessName)
	assert.NotContains(t, cols, row.ColProcessEnvironments)
}

func TestCell(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", output.Cell(model.Nothing()))
	assert.Equal(t, "-1", output.Cell(model.Int(-1)))
	assert.Equal(t, "a,b", output.Cell(model.List(model.String("a"), model.String("b"))))
}

func TestTable(t *testing.T) {
	t.Parallel()

	out := output.Table(sampleRows(), false)
	assert.Contains(t, out, "local_address")
	assert.Contains(t, out, "127.0.0.1")
	assert.Contains(t, out, "dnsd")
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, strings.Repeat("x", 80))
	assert.NotContains(t, out, "\x1b[")
}
