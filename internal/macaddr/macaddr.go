// Package macaddr parses the MAC-address-and-mask notation accepted by
// ebtables -s and -d.
package macaddr

import (
	"bytes"
	"fmt"
	"net"
	"strings"
)

// Len is the length of an Ethernet address.
const Len = 6

var (
	Exact = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	named = map[string][2]net.HardwareAddr{
		"unicast":   {{0, 0, 0, 0, 0, 0}, {0x01, 0, 0, 0, 0, 0}},
		"multicast": {{0x01, 0, 0, 0, 0, 0}, {0x01, 0, 0, 0, 0, 0}},
		"broadcast": {{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, Exact},
		"bga":       {{0x01, 0x80, 0xc2, 0, 0, 0}, Exact},
	}
)

// ParseWithMask parses "Unicast", "Multicast", "Broadcast", "BGA" or
// "xx:xx:xx:xx:xx:xx[/xx:xx:xx:xx:xx:xx]". The returned address is already
// masked.
func ParseWithMask(s string) (addr, mask net.HardwareAddr, err error) {
	if pair, ok := named[strings.ToLower(s)]; ok {
		return clone(pair[0]), clone(pair[1]), nil
	}

	addrText := s
	mask = clone(Exact)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		addrText = s[:i]
		if mask, err = Parse(s[i+1:]); err != nil {
			return nil, nil, err
		}
	}
	if addr, err = Parse(addrText); err != nil {
		return nil, nil, err
	}
	for i := range addr {
		addr[i] &= mask[i]
	}
	return addr, mask, nil
}

// Parse accepts six colon separated groups of one or two hex digits, the
// same input ether_aton(3) takes.
func Parse(s string) (net.HardwareAddr, error) {
	groups := strings.Split(s, ":")
	if len(groups) != Len {
		return nil, fmt.Errorf("invalid MAC address %q", s)
	}
	for i, g := range groups {
		if len(g) == 1 {
			groups[i] = "0" + g
		}
	}
	hw, err := net.ParseMAC(strings.Join(groups, ":"))
	if err != nil || len(hw) != Len {
		return nil, fmt.Errorf("invalid MAC address %q", s)
	}
	return hw, nil
}

// IsExact reports whether mask selects all address bits.
func IsExact(mask net.HardwareAddr) bool {
	return bytes.Equal(mask, Exact)
}

// Format renders an address as lower-case colon separated octets.
func Format(hw net.HardwareAddr) string {
	return hw.String()
}

func clone(hw net.HardwareAddr) net.HardwareAddr {
	out := make(net.HardwareAddr, len(hw))
	copy(out, hw)
	return out
}
