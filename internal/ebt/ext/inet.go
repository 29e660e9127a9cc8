package ext

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// ipProtocols maps the names accepted for --ip-proto and --ip6-proto.
var ipProtocols = []struct {
	name string
	num  uint8
}{
	{"icmp", 1},
	{"igmp", 2},
	{"tcp", 6},
	{"udp", 17},
	{"ipv6", 41},
	{"gre", 47},
	{"esp", 50},
	{"ah", 51},
	{"ipv6-icmp", 58},
	{"dccp", 33},
	{"sctp", 132},
	{"udplite", 136},
}

const (
	protoTCP     = 6
	protoUDP     = 17
	protoDCCP    = 33
	protoSCTP    = 132
	protoUDPLite = 136
)

func parseIPProto(s string) (uint8, bool) {
	if v, err := strconv.ParseUint(s, 10, 8); err == nil {
		return uint8(v), true
	}
	for _, p := range ipProtocols {
		if strings.EqualFold(p.name, s) {
			return p.num, true
		}
	}
	return 0, false
}

func ipProtoName(n uint8) string {
	for _, p := range ipProtocols {
		if p.num == n {
			return p.name
		}
	}
	return strconv.Itoa(int(n))
}

// transportName is the nft payload keyword of a port carrying protocol.
func transportName(n uint8) (string, bool) {
	switch n {
	case protoTCP:
		return "tcp", true
	case protoUDP:
		return "udp", true
	case protoDCCP:
		return "dccp", true
	case protoSCTP:
		return "sctp", true
	case protoUDPLite:
		return "udplite", true
	}
	return "", false
}

// parseIPv4Prefix accepts "a.b.c.d", "a.b.c.d/len" and "a.b.c.d/m.m.m.m".
func parseIPv4Prefix(s string) (netip.Prefix, error) {
	addrText, maskText, hasMask := strings.Cut(s, "/")
	addr, err := netip.ParseAddr(addrText)
	if err != nil || !addr.Is4() {
		return netip.Prefix{}, fmt.Errorf("bad address %q", s)
	}
	bits := 32
	if hasMask {
		if n, err := strconv.Atoi(maskText); err == nil {
			bits = n
		} else {
			m, err := netip.ParseAddr(maskText)
			if err != nil || !m.Is4() {
				return netip.Prefix{}, fmt.Errorf("bad mask %q", s)
			}
			b := m.As4()
			ones, size := net.IPMask(b[:]).Size()
			if size == 0 {
				return netip.Prefix{}, fmt.Errorf("non contiguous mask %q", s)
			}
			bits = ones
		}
	}
	p, err := addr.Prefix(bits)
	if err != nil {
		return netip.Prefix{}, err
	}
	return p, nil
}

// parseIPv6Prefix accepts "addr" and "addr/len".
func parseIPv6Prefix(s string) (netip.Prefix, error) {
	addrText, lenText, hasLen := strings.Cut(s, "/")
	addr, err := netip.ParseAddr(addrText)
	if err != nil || !addr.Is6() || addr.Is4In6() {
		return netip.Prefix{}, fmt.Errorf("bad address %q", s)
	}
	bits := 128
	if hasLen {
		n, err := strconv.Atoi(lenText)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("bad prefix length %q", s)
		}
		bits = n
	}
	return addr.Prefix(bits)
}

// formatPrefix drops the length of host prefixes.
func formatPrefix(p netip.Prefix) string {
	if p.IsSingleIP() {
		return p.Addr().String()
	}
	return p.String()
}

type portRange struct {
	lo, hi uint16
}

// parsePortRange accepts "port", "lo:hi", ":hi" and "lo:". Ports may be
// service names.
func parsePortRange(s string) (portRange, error) {
	loText, hiText, isRange := strings.Cut(s, ":")
	if !isRange {
		p, err := parsePort(s)
		return portRange{p, p}, err
	}
	r := portRange{0, 65535}
	var err error
	if loText != "" {
		if r.lo, err = parsePort(loText); err != nil {
			return r, err
		}
	}
	if hiText != "" {
		if r.hi, err = parsePort(hiText); err != nil {
			return r, err
		}
	}
	if r.lo > r.hi {
		return r, fmt.Errorf("inverted port range %q", s)
	}
	return r, nil
}

func parsePort(s string) (uint16, error) {
	if v, err := strconv.ParseUint(s, 10, 16); err == nil {
		return uint16(v), nil
	}
	p, err := net.LookupPort("tcp", s)
	if err != nil {
		return 0, err
	}
	return uint16(p), nil
}

func (r portRange) String() string {
	if r.lo == r.hi {
		return strconv.Itoa(int(r.lo))
	}
	return fmt.Sprintf("%d-%d", r.lo, r.hi)
}
