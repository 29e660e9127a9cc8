package ebt

import (
	"net"

	"github.com/google/nftables/binaryutil"
)

// Hook identifies the base chain a rule is attached to.
type Hook int

const (
	HookUser Hook = iota - 1
	HookPrerouting
	HookInput
	HookForward
	HookOutput
	HookPostrouting
	HookBrouting
)

// ChainHook maps a chain name to its hook; anything else is a user chain.
func ChainHook(chain string) Hook {
	switch chain {
	case "PREROUTING":
		return HookPrerouting
	case "INPUT":
		return HookInput
	case "FORWARD":
		return HookForward
	case "OUTPUT":
		return HookOutput
	case "POSTROUTING":
		return HookPostrouting
	case "BROUTING":
		return HookBrouting
	}
	return HookUser
}

// inputAllowed reports whether -i/--logical-in make sense on the hook.
func (h Hook) inputAllowed() bool {
	return h != HookOutput && h != HookPostrouting
}

// outputAllowed reports whether -o/--logical-out make sense on the hook.
func (h Hook) outputAllowed() bool {
	return h >= HookForward && h != HookBrouting
}

// Interface is an interface qualifier. A trailing '+' in the input is
// stored as Wildcard with the '+' removed from Name.
type Interface struct {
	Name     string
	Wildcard bool
	Invert   bool
}

// IsSet reports whether the qualifier was given.
func (i Interface) IsSet() bool {
	return i.Name != "" || i.Wildcard
}

// Protocol is the -p qualifier.
type Protocol struct {
	Value  uint16
	Set    bool
	Length bool // 802.3 length field instead of an ethertype
	Invert bool

	wire []byte
}

// normalize stores the network byte order encoding. It runs once, after
// the option loop.
func (p *Protocol) normalize() {
	p.wire = binaryutil.BigEndian.PutUint16(p.Value)
}

// Wire returns the ethertype in network byte order.
func (p Protocol) Wire() []byte {
	if p.wire == nil {
		return binaryutil.BigEndian.PutUint16(p.Value)
	}
	return p.wire
}

// EtherType decodes the normalized value back to host order.
func (p Protocol) EtherType() uint16 {
	return binaryutil.BigEndian.Uint16(p.Wire())
}

// MAC is a source or destination address qualifier. Addr is pre-masked.
type MAC struct {
	Addr   net.HardwareAddr
	Mask   net.HardwareAddr
	Invert bool
}

// RuleRange addresses rules by position. End is RuleEndLast for "until the
// last rule".
type RuleRange struct {
	Start int
	End   int
}

// RuleEndLast marks an open ended rule range.
const RuleEndLast = -1

// Counters carries -c or -C values.
type Counters struct {
	Packets uint64
	Bytes   uint64
}

// Counter change bits as computed for -C: the packet counter contributes
// 1 (increment) or 2 (decrement), the byte counter 3 or 6.
const (
	CounterIncPackets = 1
	CounterDecPackets = 2
	CounterIncBytes   = 3
	CounterDecBytes   = 6
)

// ListFlags are the -L modifiers.
type ListFlags struct {
	Counters bool
	Numbers  bool
	Extended bool
	MAC2     bool
}

// Draft is the command being assembled from one argument vector.
type Draft struct {
	Command Command
	Table   string
	Chain   string
	Hook    Hook
	NewName string
	Policy  string
	Rule    RuleRange
	Zero    bool
	List    ListFlags

	In         Interface
	Out        Interface
	LogicalIn  Interface
	LogicalOut Interface
	Proto      Protocol
	Source     *MAC
	Dest       *MAC

	Counters  Counters
	CounterOp int

	Jump     string
	Target   Extension
	Matches  []Extension
	Watchers []Extension
	attached []Extension

	// Args are the tokens after the program name, echoed back when no
	// translation exists.
	Args []string
}

func newDraft(table string, args []string) *Draft {
	return &Draft{
		Table: table,
		Hook:  HookUser,
		Args:  args,
	}
}

// attach adds a match or watcher once, keeping first-use order.
func (d *Draft) attach(e Extension) {
	for _, a := range d.attached {
		if a == e {
			return
		}
	}
	d.attached = append(d.attached, e)
	switch e.Kind() {
	case KindMatch:
		d.Matches = append(d.Matches, e)
	case KindWatcher:
		d.Watchers = append(d.Watchers, e)
	}
}

// Attached returns matches and watchers in the order they were first used.
func (d *Draft) Attached() []Extension {
	return d.attached
}

// HasMatch reports whether a match with the given name is attached.
func (d *Draft) HasMatch(name string) bool {
	for _, m := range d.Matches {
		if m.Name() == name {
			return true
		}
	}
	return false
}
