package proc

import (
	"context"

	"cdr.dev/slog"
	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// Backend names the mechanism used to read the kernel socket tables.
type Backend string

const (
	// BackendAuto tries sock_diag over netlink first and falls back to procfs.
	BackendAuto    Backend = "auto"
	BackendNetlink Backend = "netlink"
	BackendProcfs  Backend = "procfs"
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendNetlink, BackendProcfs:
		return b, nil
	default:
		return "", xerrors.Errorf("unknown socket backend %q (want auto, netlink or procfs)", s)
	}
}

// Enumerator returns point-in-time snapshots of the open TCP and UDP
// endpoints together with the PIDs holding them.
type Enumerator struct {
	log      slog.Logger
	backend  Backend
	procRoot string
	// sockDiag reads one table over netlink. Nil means the kernel's sock_diag.
	sockDiag func(socketTable) ([]procEntry, error)
}

func NewEnumerator(log slog.Logger, backend Backend) *Enumerator {
	if backend == "" {
		backend = BackendAuto
	}
	return &Enumerator{
		log:      log.Named("sockets"),
		backend:  backend,
		procRoot: "/proc",
	}
}

// Enumerate lists the sockets matching both masks. An empty mask yields an
// empty result without touching the OS. On error no partial result is
// returned.
func (e *Enumerator) Enumerate(ctx context.Context, families model.FamilyMask, protocols model.ProtocolMask) ([]model.Socket, error) {
	if families&model.FamilyAll == 0 || protocols&model.MaskAll == 0 {
		return nil, nil
	}
	sockets, err := e.enumerate(ctx, families, protocols)
	if err != nil {
		return nil, err
	}
	e.log.Debug(ctx, "enumerated sockets",
		slog.F("backend", e.backend),
		slog.F("count", len(sockets)),
	)
	return sockets, nil
}

// socketTable is one of the four kernel tables an enumeration can cover.
type socketTable struct {
	name     string
	protocol model.Protocol
	mask     model.ProtocolMask
	family   model.FamilyMask
}

var socketTables = []socketTable{
	{name: "tcp", protocol: model.ProtocolTCP, mask: model.MaskTCP, family: model.FamilyIPv4},
	{name: "tcp6", protocol: model.ProtocolTCP, mask: model.MaskTCP, family: model.FamilyIPv6},
	{name: "udp", protocol: model.ProtocolUDP, mask: model.MaskUDP, family: model.FamilyIPv4},
	{name: "udp6", protocol: model.ProtocolUDP, mask: model.MaskUDP, family: model.FamilyIPv6},
}

// procEntry is one socket read from a kernel table, with the inode that
// links it to its owners.
type procEntry struct {
	socket model.Socket
	inode  uint64
}

func selectTables(families model.FamilyMask, protocols model.ProtocolMask) []socketTable {
	var tables []socketTable
	for _, t := range socketTables {
		if families.Has(t.family) && protocols.Has(t.mask) {
			tables = append(tables, t)
		}
	}
	return tables
}
