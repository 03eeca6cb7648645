package proc

import (
	"context"
	"errors"

	"cdr.dev/slog"
	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// Snapshotter captures the process table once per invocation.
type Snapshotter struct {
	log slog.Logger
}

func NewSnapshotter(log slog.Logger) *Snapshotter {
	return &Snapshotter{log: log.Named("processes")}
}

// Snapshot never fails. If the process list cannot be read the table is
// empty; processes that exit while being read are left out.
func (s *Snapshotter) Snapshot(ctx context.Context) model.ProcessTable {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		s.log.Debug(ctx, "process snapshot unavailable", slog.Error(err))
		return model.ProcessTable{}
	}

	table := make(model.ProcessTable, len(procs))
	var unavailable *multierror.Error
	for _, p := range procs {
		rec, err := readProcess(ctx, p, func(err error) {
			unavailable = multierror.Append(unavailable, err)
		})
		if err != nil {
			continue
		}
		table[rec.PID] = rec
	}

	s.log.Debug(ctx, "captured process snapshot",
		slog.F("processes", len(table)),
		slog.F("unavailable_attributes", len(unavailable.WrappedErrors())),
	)
	return table
}

// readProcess fails only when the process is gone. Any attribute the OS
// refuses to reveal, the name included, is reported through miss and left
// unset.
func readProcess(ctx context.Context, p *process.Process, miss func(error)) (model.Process, error) {
	pid := uint32(p.Pid)
	rec := model.Process{PID: pid}
	if name, err := p.NameWithContext(ctx); err == nil {
		rec.Name = name
	} else if vanished(ctx, p.Pid, err) {
		return model.Process{}, xerrors.Errorf("pid %d: %w", pid, err)
	} else {
		miss(xerrors.Errorf("pid %d name: %w", pid, err))
	}

	if cmd, err := p.CmdlineSliceWithContext(ctx); err == nil {
		rec.Cmd = cmd
	} else {
		miss(xerrors.Errorf("pid %d cmdline: %w", pid, err))
	}
	if exe, err := p.ExeWithContext(ctx); err == nil {
		rec.ExePath = exe
	} else {
		miss(xerrors.Errorf("pid %d exe: %w", pid, err))
	}
	if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
		rec.Status = status[0]
	} else if err != nil {
		miss(xerrors.Errorf("pid %d status: %w", pid, err))
	}
	// uids and gids come back as real, effective, saved, filesystem.
	if uids, err := p.UidsWithContext(ctx); err == nil {
		rec.UID, rec.EUID = idAt(uids, 0), idAt(uids, 1)
	} else {
		miss(xerrors.Errorf("pid %d uids: %w", pid, err))
	}
	if gids, err := p.GidsWithContext(ctx); err == nil {
		rec.GID, rec.EGID = idAt(gids, 0), idAt(gids, 1)
	} else {
		miss(xerrors.Errorf("pid %d gids: %w", pid, err))
	}
	if env, err := p.EnvironWithContext(ctx); err == nil {
		rec.Environ = env
	} else {
		miss(xerrors.Errorf("pid %d environ: %w", pid, err))
	}
	return rec, nil
}

// vanished reports whether err came from a process that exited after the
// process list was read.
func vanished(ctx context.Context, pid int32, err error) bool {
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return true
	}
	exists, existsErr := process.PidExistsWithContext(ctx, pid)
	return existsErr == nil && !exists
}

func idAt(ids []uint32, i int) *uint32 {
	if i >= len(ids) {
		return nil
	}
	id := ids[i]
	return &id
}
