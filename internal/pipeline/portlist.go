package pipeline

import (
	"context"

	"cdr.dev/slog"

	"github.com/portlist/nu_plugin_port_list/internal/row"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// CodeFetch labels errors raised while reading the socket tables.
const CodeFetch = "sockets_info::fetch"

type SocketEnumerator interface {
	Enumerate(ctx context.Context, families model.FamilyMask, protocols model.ProtocolMask) ([]model.Socket, error)
}

type ProcessSnapshotter interface {
	Snapshot(ctx context.Context) model.ProcessTable
}

// PortList runs the port list pipeline: socket snapshot, optional process
// snapshot, one row per socket.
type PortList struct {
	Sockets   SocketEnumerator
	Processes ProcessSnapshotter
	Log       slog.Logger
}

// Run returns the rows in enumeration order. The only error it returns is a
// *model.LabeledError with code CodeFetch.
func (p *PortList) Run(ctx context.Context, flags Flags) ([]*model.Record, error) {
	families, protocols := flags.Masks()
	p.Log.Debug(ctx, "port list invoked",
		slog.F("families", families),
		slog.F("protocols", protocols),
		slog.F("listeners", flags.Listeners),
		slog.F("process_info", flags.ProcessInfo),
	)

	if families == 0 || protocols == 0 {
		return []*model.Record{}, nil
	}

	var processes model.ProcessTable
	if flags.ProcessInfo {
		processes = p.Processes.Snapshot(ctx)
	}

	sockets, err := p.Sockets.Enumerate(ctx, families, protocols)
	if err != nil {
		p.Log.Debug(ctx, "socket enumeration failed", slog.Error(err))
		return nil, &model.LabeledError{Code: CodeFetch, Msg: err.Error()}
	}

	rows := make([]*model.Record, 0, len(sockets))
	for _, s := range sockets {
		if flags.Listeners && s.Protocol == model.ProtocolTCP && s.State != "LISTEN" {
			continue
		}
		rows = append(rows, row.Build(s, flags.ProcessInfo, processes))
	}
	return rows, nil
}
