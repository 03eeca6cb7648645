package model

import "net/netip"

type Protocol string

const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

// FamilyMask selects the address families an enumeration covers.
type FamilyMask uint8

const (
	FamilyIPv4 FamilyMask = 1 << iota
	FamilyIPv6

	FamilyAll = FamilyIPv4 | FamilyIPv6
)

func (m FamilyMask) Has(f FamilyMask) bool { return m&f != 0 }

// ProtocolMask selects the transport protocols an enumeration covers.
type ProtocolMask uint8

const (
	MaskTCP ProtocolMask = 1 << iota
	MaskUDP

	MaskAll = MaskTCP | MaskUDP
)

func (m ProtocolMask) Has(p ProtocolMask) bool { return m&p != 0 }

// Socket is one endpoint reported by the kernel socket tables.
type Socket struct {
	Protocol   Protocol
	LocalAddr  netip.Addr
	LocalPort  uint16
	RemoteAddr netip.Addr // unset for UDP
	RemotePort uint16
	State      string // LISTEN, ESTABLISHED, TIME_WAIT, ... (TCP only)
	PIDs       []uint32
}

// IPVersion returns 4 or 6 depending on the family of the local address.
// IPv4-mapped IPv6 addresses count as 6, they came from an AF_INET6 table.
func (s Socket) IPVersion() int {
	if s.LocalAddr.Is4() {
		return 4
	}
	return 6
}
