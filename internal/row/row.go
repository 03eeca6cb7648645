// Package row turns socket records into the uniform rows returned by
// port list.
package row

import (
	"strconv"
	"strings"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// Column names in output order.
const (
	ColType          = "type"
	ColIPVersion     = "ip_version"
	ColLocalAddress  = "local_address"
	ColLocalPort     = "local_port"
	ColRemoteAddress = "remote_address"
	ColRemotePort    = "remote_port"
	ColState         = "state"
	ColPID           = "pid"

	ColProcessName           = "process_name"
	ColCmd                   = "cmd"
	ColExePath               = "exe_path"
	ColProcessStatus         = "process_status"
	ColProcessUser           = "process_user"
	ColProcessGroup          = "process_group"
	ColProcessEffectiveUser  = "process_effective_user"
	ColProcessEffectiveGroup = "process_effective_group"
	ColProcessEnvironments   = "process_environments"
)

// BaseColumns are present on every row.
var BaseColumns = []string{
	ColType, ColIPVersion, ColLocalAddress, ColLocalPort,
	ColRemoteAddress, ColRemotePort, ColState, ColPID,
}

// ProcessColumns are appended together, or not at all, when enrichment
// resolves the owning process.
var ProcessColumns = []string{
	ColProcessName, ColCmd, ColExePath, ColProcessStatus,
	ColProcessUser, ColProcessGroup, ColProcessEffectiveUser, ColProcessEffectiveGroup,
	ColProcessEnvironments,
}

const (
	// Unavailable is rendered for process attributes the OS would not reveal.
	Unavailable = "-"

	udpState      = "LISTEN"
	udpRemotePort = -1
)

// Build renders one socket. With enrich set, the process holding the first
// associated PID is looked up in processes; when found its attributes are
// appended, otherwise the row carries the base columns only.
func Build(s model.Socket, enrich bool, processes model.ProcessTable) *model.Record {
	r := model.NewRecord()
	r.Push(ColType, model.String(string(s.Protocol)))
	r.Push(ColIPVersion, model.Int(int64(s.IPVersion())))
	r.Push(ColLocalAddress, model.String(s.LocalAddr.String()))
	r.Push(ColLocalPort, model.Int(int64(s.LocalPort)))

	if s.Protocol == model.ProtocolUDP {
		r.Push(ColRemoteAddress, model.String(""))
		r.Push(ColRemotePort, model.Int(udpRemotePort))
		r.Push(ColState, model.String(udpState))
	} else {
		r.Push(ColRemoteAddress, model.String(addrString(s)))
		r.Push(ColRemotePort, model.Int(int64(s.RemotePort)))
		r.Push(ColState, model.String(s.State))
	}

	if len(s.PIDs) == 0 {
		r.Push(ColPID, model.Nothing())
		return r
	}
	pid := s.PIDs[0]
	r.Push(ColPID, model.Int(int64(pid)))

	if !enrich {
		return r
	}
	if p, ok := processes[pid]; ok {
		appendProcess(r, p)
	}
	return r
}

// addrString renders the remote address of a TCP socket. A socket with no
// peer reports the unspecified address of its own family.
func addrString(s model.Socket) string {
	if s.RemoteAddr.IsValid() {
		return s.RemoteAddr.String()
	}
	if s.IPVersion() == 4 {
		return "0.0.0.0"
	}
	return "::"
}

func appendProcess(r *model.Record, p model.Process) {
	r.Push(ColProcessName, model.String(orUnavailable(p.Name)))
	r.Push(ColCmd, model.String(strings.Join(p.Cmd, " ")))
	r.Push(ColExePath, model.String(orUnavailable(p.ExePath)))
	r.Push(ColProcessStatus, model.String(orUnavailable(p.Status)))
	r.Push(ColProcessUser, model.String(idString(p.UID)))
	r.Push(ColProcessGroup, model.String(idString(p.GID)))
	r.Push(ColProcessEffectiveUser, model.String(idString(p.EUID)))
	r.Push(ColProcessEffectiveGroup, model.String(idString(p.EGID)))

	env := make([]model.Value, 0, len(p.Environ))
	for _, kv := range p.Environ {
		env = append(env, model.String(kv))
	}
	r.Push(ColProcessEnvironments, model.List(env...))
}

func orUnavailable(s string) string {
	if s == "" {
		return Unavailable
	}
	return s
}

func idString(id *uint32) string {
	if id == nil {
		return Unavailable
	}
	return strconv.FormatUint(uint64(*id), 10)
}
