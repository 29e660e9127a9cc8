package ext

import (
	"net/netip"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optIP6Source = iota
	optIP6Dest
	optIP6TClass
	optIP6Proto
	optIP6SourcePort
	optIP6DestPort
)

const (
	flagIP6Source flagSet = 1 << iota
	flagIP6Dest
	flagIP6TClass
	flagIP6Proto
	flagIP6SourcePort
	flagIP6DestPort
)

type matchIP6 struct {
	flags  flagSet
	invert flagSet

	src, dst     netip.Prefix
	tclass       uint8
	proto        uint8
	sport, dport portRange
}

func newIP6(ebt.Env) ebt.Extension { return &matchIP6{} }

func (m *matchIP6) Name() string   { return "ip6" }
func (m *matchIP6) Kind() ebt.Kind { return ebt.KindMatch }

func (m *matchIP6) Options() []getopt.Option {
	return []getopt.Option{
		opt("ip6-source", getopt.RequiredArgument, optIP6Source),
		opt("ip6-src", getopt.RequiredArgument, optIP6Source),
		opt("ip6-destination", getopt.RequiredArgument, optIP6Dest),
		opt("ip6-dst", getopt.RequiredArgument, optIP6Dest),
		opt("ip6-tclass", getopt.RequiredArgument, optIP6TClass),
		opt("ip6-protocol", getopt.RequiredArgument, optIP6Proto),
		opt("ip6-proto", getopt.RequiredArgument, optIP6Proto),
		opt("ip6-source-port", getopt.RequiredArgument, optIP6SourcePort),
		opt("ip6-sport", getopt.RequiredArgument, optIP6SourcePort),
		opt("ip6-destination-port", getopt.RequiredArgument, optIP6DestPort),
		opt("ip6-dport", getopt.RequiredArgument, optIP6DestPort),
	}
}

func (m *matchIP6) Parse(id int, arg string, invert bool) (bool, error) {
	var bit flagSet
	switch id {
	case optIP6Source, optIP6Dest:
		bit = flagIP6Source
		if id == optIP6Dest {
			bit = flagIP6Dest
		}
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		p, err := parseIPv6Prefix(arg)
		if err != nil {
			return false, ebt.Errorf("Problem with specified IPv6 address '%s'", arg)
		}
		if id == optIP6Source {
			m.src = p
		} else {
			m.dst = p
		}
	case optIP6TClass:
		bit = flagIP6TClass
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		v, ok := parseHex(arg, 8)
		if !ok {
			return false, ebt.Errorf("Problem with specified IPv6 traffic class '%s'", arg)
		}
		m.tclass = uint8(v)
	case optIP6Proto:
		bit = flagIP6Proto
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		p, ok := parseIPProto(arg)
		if !ok {
			return false, ebt.Errorf("Problem with specified IPv6 Protocol")
		}
		m.proto = p
	case optIP6SourcePort, optIP6DestPort:
		bit = flagIP6SourcePort
		if id == optIP6DestPort {
			bit = flagIP6DestPort
		}
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		r, err := parsePortRange(arg)
		if err != nil {
			return false, ebt.Errorf("Problem with specified IPv6 port range '%s'", arg)
		}
		if id == optIP6SourcePort {
			m.sport = r
		} else {
			m.dport = r
		}
	default:
		return false, nil
	}
	if invert {
		m.invert |= bit
	}
	return true, nil
}

func (m *matchIP6) Finalize() error {
	return checkPortProto(m.flags, m.invert, flagIP6Proto, flagIP6SourcePort|flagIP6DestPort, m.proto, "IPv6")
}

func (m *matchIP6) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	if m.flags.has(flagIP6Source) {
		b.Add("ip6 saddr %s%s ", xlate.Invert(m.invert.has(flagIP6Source)), formatPrefix(m.src))
	}
	if m.flags.has(flagIP6Dest) {
		b.Add("ip6 daddr %s%s ", xlate.Invert(m.invert.has(flagIP6Dest)), formatPrefix(m.dst))
	}
	if m.flags.has(flagIP6TClass) {
		if m.tclass&0x03 != 0 {
			return false
		}
		b.Add("ip6 dscp %s0x%02x ", xlate.Invert(m.invert.has(flagIP6TClass)), m.tclass>>2)
	}
	ports := m.flags.has(flagIP6SourcePort | flagIP6DestPort)
	if m.flags.has(flagIP6Proto) && (!ports || m.invert.has(flagIP6Proto)) {
		b.Add("meta l4proto %s%s ", xlate.Invert(m.invert.has(flagIP6Proto)), ipProtoName(m.proto))
	}
	addPorts(b, m.proto, m.flags, m.invert, flagIP6SourcePort, flagIP6DestPort, m.sport, m.dport)
	return true
}
