package ext

import (
	"net/netip"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optIPSource = iota
	optIPDest
	optIPTOS
	optIPProto
	optIPSourcePort
	optIPDestPort
)

const (
	flagIPSource flagSet = 1 << iota
	flagIPDest
	flagIPTOS
	flagIPProto
	flagIPSourcePort
	flagIPDestPort
)

// matchIP filters on the IPv4 header and the ports above it.
type matchIP struct {
	flags  flagSet
	invert flagSet

	src, dst     netip.Prefix
	tos          uint8
	proto        uint8
	sport, dport portRange
}

func newIP(ebt.Env) ebt.Extension { return &matchIP{} }

func (m *matchIP) Name() string   { return "ip" }
func (m *matchIP) Kind() ebt.Kind { return ebt.KindMatch }

func (m *matchIP) Options() []getopt.Option {
	return []getopt.Option{
		opt("ip-source", getopt.RequiredArgument, optIPSource),
		opt("ip-src", getopt.RequiredArgument, optIPSource),
		opt("ip-destination", getopt.RequiredArgument, optIPDest),
		opt("ip-dst", getopt.RequiredArgument, optIPDest),
		opt("ip-tos", getopt.RequiredArgument, optIPTOS),
		opt("ip-protocol", getopt.RequiredArgument, optIPProto),
		opt("ip-proto", getopt.RequiredArgument, optIPProto),
		opt("ip-source-port", getopt.RequiredArgument, optIPSourcePort),
		opt("ip-sport", getopt.RequiredArgument, optIPSourcePort),
		opt("ip-destination-port", getopt.RequiredArgument, optIPDestPort),
		opt("ip-dport", getopt.RequiredArgument, optIPDestPort),
	}
}

func (m *matchIP) Parse(id int, arg string, invert bool) (bool, error) {
	var bit flagSet
	switch id {
	case optIPSource, optIPDest:
		bit = flagIPSource
		if id == optIPDest {
			bit = flagIPDest
		}
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		p, err := parseIPv4Prefix(arg)
		if err != nil {
			return false, ebt.Errorf("Problem with specified IP address '%s'", arg)
		}
		if id == optIPSource {
			m.src = p
		} else {
			m.dst = p
		}
	case optIPTOS:
		bit = flagIPTOS
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		v, ok := parseHex(arg, 8)
		if !ok {
			return false, ebt.Errorf("Problem with specified IP tos")
		}
		m.tos = uint8(v)
	case optIPProto:
		bit = flagIPProto
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		p, ok := parseIPProto(arg)
		if !ok {
			return false, ebt.Errorf("Problem with specified IP protocol")
		}
		m.proto = p
	case optIPSourcePort, optIPDestPort:
		bit = flagIPSourcePort
		if id == optIPDestPort {
			bit = flagIPDestPort
		}
		if err := m.flags.check(bit); err != nil {
			return false, err
		}
		r, err := parsePortRange(arg)
		if err != nil {
			return false, ebt.Errorf("Problem with specified IP port range '%s'", arg)
		}
		if id == optIPSourcePort {
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

func (m *matchIP) Finalize() error {
	return checkPortProto(m.flags, m.invert, flagIPProto, flagIPSourcePort|flagIPDestPort, m.proto, "IP")
}

// checkPortProto requires a non inverted port carrying protocol whenever
// ports are matched.
func checkPortProto(flags, invert, protoBit, portBits flagSet, proto uint8, family string) error {
	if !flags.has(portBits) {
		return nil
	}
	_, ok := transportName(proto)
	if !flags.has(protoBit) || invert.has(protoBit) || !ok {
		return ebt.Errorf("For port filtering the %s protocol must be either 6 (tcp), 17 (udp), 33 (dccp) or 132 (sctp)", family)
	}
	return nil
}

func (m *matchIP) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	if m.flags.has(flagIPSource) {
		b.Add("ip saddr %s%s ", xlate.Invert(m.invert.has(flagIPSource)), formatPrefix(m.src))
	}
	if m.flags.has(flagIPDest) {
		b.Add("ip daddr %s%s ", xlate.Invert(m.invert.has(flagIPDest)), formatPrefix(m.dst))
	}
	if m.flags.has(flagIPTOS) {
		// only the DSCP bits have an nft selector
		if m.tos&0x03 != 0 {
			return false
		}
		b.Add("ip dscp %s0x%02x ", xlate.Invert(m.invert.has(flagIPTOS)), m.tos>>2)
	}
	ports := m.flags.has(flagIPSourcePort | flagIPDestPort)
	if m.flags.has(flagIPProto) && (!ports || m.invert.has(flagIPProto)) {
		b.Add("ip protocol %s%s ", xlate.Invert(m.invert.has(flagIPProto)), ipProtoName(m.proto))
	}
	addPorts(b, m.proto, m.flags, m.invert, flagIPSourcePort, flagIPDestPort, m.sport, m.dport)
	return true
}

// addPorts renders transport ports; the protocol keyword implies the
// protocol match.
func addPorts(b *xlate.Buffer, proto uint8, flags, invert, sbit, dbit flagSet, sport, dport portRange) {
	name, ok := transportName(proto)
	if !ok {
		return
	}
	if flags.has(sbit) {
		b.Add("%s sport %s%s ", name, xlate.Invert(invert.has(sbit)), sport)
	}
	if flags.has(dbit) {
		b.Add("%s dport %s%s ", name, xlate.Invert(invert.has(dbit)), dport)
	}
}
