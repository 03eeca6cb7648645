//go:build linux

package proc

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cdr.dev/slog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

func (e *Enumerator) enumerate(ctx context.Context, families model.FamilyMask, protocols model.ProtocolMask) ([]model.Socket, error) {
	switch e.backend {
	case BackendProcfs:
		return e.procfsSockets(families, protocols)
	case BackendNetlink:
		return e.netlinkSockets(families, protocols)
	}

	sockets, nlErr := e.netlinkSockets(families, protocols)
	if nlErr == nil {
		return sockets, nil
	}
	e.log.Debug(ctx, "netlink enumeration failed, falling back to procfs", slog.Error(nlErr))

	sockets, err := e.procfsSockets(families, protocols)
	if err != nil {
		return nil, multierror.Append(nlErr, err)
	}
	return sockets, nil
}

func (e *Enumerator) procfsSockets(families model.FamilyMask, protocols model.ProtocolMask) ([]model.Socket, error) {
	owners, err := e.inodeOwners()
	if err != nil {
		return nil, err
	}

	var sockets []model.Socket
	for _, t := range selectTables(families, protocols) {
		entries, err := e.readTable(t)
		if err != nil {
			return nil, err
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

func (e *Enumerator) readTable(t socketTable) ([]procEntry, error) {
	path := filepath.Join(e.procRoot, "net", t.name)
	f, err := os.Open(path)
	if err != nil {
		// tcp6/udp6 do not exist when the kernel runs without IPv6.
		if errors.Is(err, fs.ErrNotExist) && t.family == model.FamilyIPv6 {
			return nil, nil
		}
		return nil, xerrors.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	entries, err := parseTable(f, t)
	if err != nil {
		return nil, xerrors.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// parseTable reads the kernel's text socket table. Every line after the
// header must carry at least the ten leading columns up to the inode.
func parseTable(r io.Reader, t socketTable) ([]procEntry, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var entries []procEntry
	line := 1
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 10 {
			return nil, xerrors.Errorf("line %d: expected at least 10 fields, got %d", line, len(fields))
		}

		localAddr, localPort, err := parseAddr(fields[1])
		if err != nil {
			return nil, xerrors.Errorf("line %d: local address: %w", line, err)
		}
		inode, err := strconv.ParseUint(fields[9], 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("line %d: inode %q: %w", line, fields[9], err)
		}

		s := model.Socket{
			Protocol:  t.protocol,
			LocalAddr: localAddr,
			LocalPort: localPort,
		}
		if t.protocol == model.ProtocolTCP {
			remoteAddr, remotePort, err := parseAddr(fields[2])
			if err != nil {
				return nil, xerrors.Errorf("line %d: remote address: %w", line, err)
			}
			state, err := strconv.ParseUint(fields[3], 16, 8)
			if err != nil {
				return nil, xerrors.Errorf("line %d: state %q: %w", line, fields[3], err)
			}
			s.RemoteAddr = remoteAddr
			s.RemotePort = remotePort
			s.State = tcpStateName(int(state))
		}
		entries = append(entries, procEntry{socket: s, inode: inode})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseAddr decodes "0100007F:1F90" or the 32 hex digit IPv6 form. The
// kernel prints each 32-bit word of the address in host byte order.
func parseAddr(raw string) (netip.Addr, uint16, error) {
	ipHex, portHex, ok := strings.Cut(raw, ":")
	if !ok {
		return netip.Addr{}, 0, xerrors.Errorf("malformed address %q", raw)
	}
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return netip.Addr{}, 0, xerrors.Errorf("malformed port %q: %w", portHex, err)
	}

	switch len(ipHex) {
	case 8:
		var b [4]byte
		if err := putWords(b[:], ipHex); err != nil {
			return netip.Addr{}, 0, err
		}
		return netip.AddrFrom4(b), uint16(port), nil
	case 32:
		var b [16]byte
		if err := putWords(b[:], ipHex); err != nil {
			return netip.Addr{}, 0, err
		}
		return netip.AddrFrom16(b), uint16(port), nil
	default:
		return netip.Addr{}, 0, xerrors.Errorf("malformed ip %q", ipHex)
	}
}

func putWords(dst []byte, hex string) error {
	for i := 0; i < len(dst); i += 4 {
		word, err := strconv.ParseUint(hex[i*2:i*2+8], 16, 32)
		if err != nil {
			return xerrors.Errorf("malformed ip %q: %w", hex, err)
		}
		binary.NativeEndian.PutUint32(dst[i:], uint32(word))
	}
	return nil
}

// inodeOwners maps socket inodes to the PIDs holding a descriptor on them,
// PIDs in ascending order. Processes whose fd directory cannot be read are
// skipped.
func (e *Enumerator) inodeOwners() (map[uint64][]uint32, error) {
	dirs, err := os.ReadDir(e.procRoot)
	if err != nil {
		return nil, xerrors.Errorf("read %s: %w", e.procRoot, err)
	}

	var pids []uint32
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		pid, err := strconv.ParseUint(d.Name(), 10, 32)
		if err != nil {
			continue
		}
		pids = append(pids, uint32(pid))
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	owners := make(map[uint64][]uint32)
	for _, pid := range pids {
		fdPath := filepath.Join(e.procRoot, strconv.FormatUint(uint64(pid), 10), "fd")
		fds, err := os.ReadDir(fdPath)
		if err != nil {
			continue
		}
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdPath, fd.Name()))
			if err != nil {
				continue
			}
			inode, ok := socketInode(link)
			if !ok {
				continue
			}
			held := owners[inode]
			if len(held) > 0 && held[len(held)-1] == pid {
				continue
			}
			owners[inode] = append(held, pid)
		}
	}
	return owners, nil
}

func socketInode(link string) (uint64, bool) {
	rest, ok := strings.CutPrefix(link, "socket:[")
	if !ok {
		return 0, false
	}
	inode, err := strconv.ParseUint(strings.TrimSuffix(rest, "]"), 10, 64)
	if err != nil {
		return 0, false
	}
	return inode, true
}
