//go:build linux

package proc

import (
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

// netlinkSockets reads the socket tables with NETLINK_SOCK_DIAG. PIDs come
// from the same /proc fd scan the procfs backend uses.
func (e *Enumerator) netlinkSockets(families model.FamilyMask, protocols model.ProtocolMask) ([]model.Socket, error) {
	owners, err := e.inodeOwners()
	if err != nil {
		return nil, err
	}
	diag := e.sockDiag
	if diag == nil {
		diag = sockDiagTable
	}

	var sockets []model.Socket
	for _, t := range selectTables(families, protocols) {
		entries, err := diag(t)
		if err != nil {
			return nil, xerrors.Errorf("sock_diag %s: %w", t.name, err)
		}
		for _, ent := range entries {
			s := ent.socket
			if ent.inode != 0 {
				s.PIDs = owners[ent.inode]
			}
			sockets = append(sockets, s)
		}
	}
	return sockets, nil
}

func sockDiagTable(t socketTable) ([]procEntry, error) {
	af := uint8(unix.AF_INET)
	if t.family == model.FamilyIPv6 {
		af = unix.AF_INET6
	}

	var (
		diag []*netlink.Socket
		err  error
	)
	if t.protocol == model.ProtocolTCP {
		diag, err = netlink.SocketDiagTCP(af)
	} else {
		diag, err = netlink.SocketDiagUDP(af)
	}
	if err != nil {
		return nil, err
	}

	entries := make([]procEntry, 0, len(diag))
	for _, d := range diag {
		s, err := diagSocket(t, d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, procEntry{socket: s, inode: uint64(d.INode)})
	}
	return entries, nil
}

func diagSocket(t socketTable, d *netlink.Socket) (model.Socket, error) {
	local, err := diagAddr(t, d.ID.Source)
	if err != nil {
		return model.Socket{}, err
	}
	s := model.Socket{
		Protocol:  t.protocol,
		LocalAddr: local,
		LocalPort: d.ID.SourcePort,
	}
	if t.protocol == model.ProtocolTCP {
		remote, err := diagAddr(t, d.ID.Destination)
		if err != nil {
			return model.Socket{}, err
		}
		s.RemoteAddr = remote
		s.RemotePort = d.ID.DestinationPort
		s.State = tcpStateName(int(d.State))
	}
	return s, nil
}

// diagAddr keeps AF_INET6 addresses 16 bytes wide even when they are
// v4-mapped; AF_INET addresses arrive in the 16 byte net.IP form.
func diagAddr(t socketTable, ip net.IP) (netip.Addr, error) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, xerrors.Errorf("malformed address %v", ip)
	}
	if t.family == model.FamilyIPv4 {
		return addr.Unmap(), nil
	}
	if addr.Is4() {
		return netip.AddrFrom16(addr.As16()), nil
	}
	return addr, nil
}
