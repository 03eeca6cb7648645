package pipeline

import "github.com/portlist/nu_plugin_port_list/pkg/model"

// Switch describes one boolean flag of port list.
type Switch struct {
	Long  string
	Short rune
	Desc  string
}

const (
	FlagDisableIPv4 = "disable-ipv4"
	FlagDisableIPv6 = "disable-ipv6"
	FlagDisableUDP  = "disable-udp"
	FlagDisableTCP  = "disable-tcp"
	FlagListeners   = "listeners"
	FlagProcessInfo = "process-info"
)

// Switches lists the flags in declaration order. The host signature and the
// standalone commands are both built from it.
var Switches = []Switch{
	{Long: FlagDisableIPv4, Short: '6', Desc: "do not fetch ipv4 connections (ipv6 only)"},
	{Long: FlagDisableIPv6, Short: '4', Desc: "do not fetch ipv6 connections (ipv4 only)"},
	{Long: FlagDisableUDP, Short: 't', Desc: "do not fetch UDP connections (TCP only)"},
	{Long: FlagDisableTCP, Short: 'u', Desc: "do not fetch TCP connections (UDP only)"},
	{Long: FlagListeners, Short: 'l', Desc: "only listeners (equivalent to state == \"LISTEN\")"},
	{Long: FlagProcessInfo, Short: 'p', Desc: "loads process info (name, cmd, binary path)"},
}

// Flags is the decoded invocation.
type Flags struct {
	DisableIPv4 bool
	DisableIPv6 bool
	DisableUDP  bool
	DisableTCP  bool
	Listeners   bool
	ProcessInfo bool
}

// FlagsFrom decodes the switches through has. A switch whose lookup fails
// counts as unset.
func FlagsFrom(has func(name string) (bool, error)) Flags {
	on := func(name string) bool {
		v, err := has(name)
		return err == nil && v
	}
	return Flags{
		DisableIPv4: on(FlagDisableIPv4),
		DisableIPv6: on(FlagDisableIPv6),
		DisableUDP:  on(FlagDisableUDP),
		DisableTCP:  on(FlagDisableTCP),
		Listeners:   on(FlagListeners),
		ProcessInfo: on(FlagProcessInfo),
	}
}

// Ref returns a pointer to the field backing the named switch, for binding
// to command line flag sets.
func (f *Flags) Ref(name string) *bool {
	switch name {
	case FlagDisableIPv4:
		return &f.DisableIPv4
	case FlagDisableIPv6:
		return &f.DisableIPv6
	case FlagDisableUDP:
		return &f.DisableUDP
	case FlagDisableTCP:
		return &f.DisableTCP
	case FlagListeners:
		return &f.Listeners
	case FlagProcessInfo:
		return &f.ProcessInfo
	}
	return nil
}

// Masks computes the enumeration masks. Disabling both members of a pair
// leaves that mask empty.
func (f Flags) Masks() (model.FamilyMask, model.ProtocolMask) {
	families := model.FamilyAll
	if f.DisableIPv4 {
		families &^= model.FamilyIPv4
	}
	if f.DisableIPv6 {
		families &^= model.FamilyIPv6
	}
	protocols := model.MaskAll
	if f.DisableUDP {
		protocols &^= model.MaskUDP
	}
	if f.DisableTCP {
		protocols &^= model.MaskTCP
	}
	return families, protocols
}
