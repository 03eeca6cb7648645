//go:build !linux

package proc

import (
	"context"
	"net/netip"
	"strings"

	"cdr.dev/slog"
	gnet "github.com/shirou/gopsutil/v4/net"
	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// enumerate uses gopsutil's per-OS connection tables. gopsutil reports one
// entry per (socket, process) pair, so entries describing the same endpoint
// are folded into one record carrying every PID.
func (e *Enumerator) enumerate(ctx context.Context, families model.FamilyMask, protocols model.ProtocolMask) ([]model.Socket, error) {
	if e.backend != BackendAuto {
		e.log.Debug(ctx, "socket backend selection is only honoured on linux", slog.F("backend", e.backend))
	}

	var sockets []model.Socket
	for _, t := range selectTables(families, protocols) {
		kind := string(t.protocol) + "4"
		if t.family == model.FamilyIPv6 {
			kind = string(t.protocol) + "6"
		}
		conns, err := gnet.ConnectionsWithContext(ctx, kind)
		if err != nil {
			return nil, xerrors.Errorf("list %s connections: %w", kind, err)
		}

		index := make(map[endpointKey]int)
		for _, c := range conns {
			s, err := connSocket(t, c)
			if err != nil {
				return nil, xerrors.Errorf("list %s connections: %w", kind, err)
			}
			key := keyOf(s)
			i, seen := index[key]
			if !seen {
				i = len(sockets)
				index[key] = i
				sockets = append(sockets, s)
			}
			if c.Pid > 0 {
				sockets[i].PIDs = appendPID(sockets[i].PIDs, uint32(c.Pid))
			}
		}
	}
	return sockets, nil
}

type endpointKey struct {
	protocol model.Protocol
	local    netip.AddrPort
	remote   netip.AddrPort
	state    string
}

func keyOf(s model.Socket) endpointKey {
	return endpointKey{
		protocol: s.Protocol,
		local:    netip.AddrPortFrom(s.LocalAddr, s.LocalPort),
		remote:   netip.AddrPortFrom(s.RemoteAddr, s.RemotePort),
		state:    s.State,
	}
}

func appendPID(pids []uint32, pid uint32) []uint32 {
	for _, p := range pids {
		if p == pid {
			return pids
		}
	}
	return append(pids, pid)
}

func connSocket(t socketTable, c gnet.ConnectionStat) (model.Socket, error) {
	local, err := connAddr(t, c.Laddr.IP)
	if err != nil {
		return model.Socket{}, err
	}
	s := model.Socket{
		Protocol:  t.protocol,
		LocalAddr: local,
		LocalPort: uint16(c.Laddr.Port),
	}
	if t.protocol == model.ProtocolTCP {
		remote, err := connAddr(t, c.Raddr.IP)
		if err != nil {
			return model.Socket{}, err
		}
		s.RemoteAddr = remote
		s.RemotePort = uint16(c.Raddr.Port)
		s.State = connState(c.Status)
	}
	return s, nil
}

// connAddr treats an empty or wildcard address as the unspecified address
// of the table's family.
func connAddr(t socketTable, ip string) (netip.Addr, error) {
	ip = strings.Trim(ip, "[]")
	if ip == "" || ip == "*" {
		if t.family == model.FamilyIPv6 {
			return netip.IPv6Unspecified(), nil
		}
		return netip.IPv4Unspecified(), nil
	}
	if i := strings.IndexByte(ip, '%'); i >= 0 {
		ip = ip[:i]
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return netip.Addr{}, xerrors.Errorf("malformed address %q: %w", ip, err)
	}
	if t.family == model.FamilyIPv4 {
		return addr.Unmap(), nil
	}
	return addr, nil
}

func connState(status string) string {
	switch status {
	case "", "NONE":
		return "UNKNOWN"
	case "SYN_RECV", "SYN_RECEIVED":
		return "SYN_RCVD"
	case "FIN_WAIT1":
		return "FIN_WAIT_1"
	case "FIN_WAIT2":
		return "FIN_WAIT_2"
	case "CLOSE":
		return "CLOSED"
	}
	return status
}
