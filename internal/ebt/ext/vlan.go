package ext

import (
	"strconv"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optVLANID = iota
	optVLANPrio
	optVLANEncap
)

const (
	flagVLANID flagSet = 1 << iota
	flagVLANPrio
	flagVLANEncap
)

const maxVLANID = 4094

// matchVLAN filters 802.1Q tagged frames. The encapsulated protocol may be
// an ethertypes name.
type matchVLAN struct {
	env    ebt.Env
	flags  flagSet
	invert flagSet

	id    uint16
	prio  uint8
	encap uint16
}

func newVLAN(env ebt.Env) ebt.Extension { return &matchVLAN{env: env} }

func (m *matchVLAN) Name() string   { return "vlan" }
func (m *matchVLAN) Kind() ebt.Kind { return ebt.KindMatch }

func (m *matchVLAN) Options() []getopt.Option {
	return []getopt.Option{
		opt("vlan-id", getopt.RequiredArgument, optVLANID),
		opt("vlan-prio", getopt.RequiredArgument, optVLANPrio),
		opt("vlan-encap", getopt.RequiredArgument, optVLANEncap),
	}
}

func (m *matchVLAN) Parse(id int, arg string, invert bool) (bool, error) {
	var bit flagSet
	switch id {
	case optVLANID:
		bit = flagVLANID
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		v, err := strconv.ParseUint(arg, 10, 16)
		if err != nil || v > maxVLANID {
			return false, ebt.Errorf("Invalid --vlan-id range ('%s')", arg)
		}
		m.id = uint16(v)
	case optVLANPrio:
		bit = flagVLANPrio
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil || v > 7 {
			return false, ebt.Errorf("Invalid --vlan-prio range ('%s')", arg)
		}
		m.prio = uint8(v)
	case optVLANEncap:
		bit = flagVLANEncap
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		v, ok := parseHex(arg, 16)
		if !ok {
			var found bool
			if m.env.Ethertypes != nil {
				v16, hit := m.env.Ethertypes.LookupName(arg)
				v, found = uint64(v16), hit
			}
			if !found {
				return false, ebt.Errorf("Unknown --vlan-encap value ('%s')", arg)
			}
		}
		if v < 0x0600 {
			return false, ebt.Errorf("Invalid --vlan-encap range ('%s')", arg)
		}
		m.encap = uint16(v)
	default:
		return false, nil
	}
	if invert {
		m.invert |= bit
	}
	return true, nil
}

func (m *matchVLAN) Finalize() error { return nil }

func (m *matchVLAN) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	if m.flags.has(flagVLANID) {
		b.Add("vlan id %s%d ", xlate.Invert(m.invert.has(flagVLANID)), m.id)
	}
	if m.flags.has(flagVLANPrio) {
		b.Add("vlan pcp %s%d ", xlate.Invert(m.invert.has(flagVLANPrio)), m.prio)
	}
	if m.flags.has(flagVLANEncap) {
		b.Add("vlan type %s0x%4.4x ", xlate.Invert(m.invert.has(flagVLANEncap)), m.encap)
	}
	return true
}
