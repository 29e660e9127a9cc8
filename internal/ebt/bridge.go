package ebt

import (
	"grimm.is/ebtranslate/internal/macaddr"
	"grimm.is/ebtranslate/internal/xlate"
)

// Ethertypes that an attached match already implies.
const (
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86dd
	etherTypeVLAN = 0x8100
)

// BridgeOps renders rules for the nftables bridge family.
type BridgeOps struct{}

func (BridgeOps) Family() string { return "bridge" }

func (BridgeOps) Rule(d *Draft, b *xlate.Buffer) bool {
	addIface(b, "iifname", d.In)
	addIface(b, "meta ibrname", d.LogicalIn)
	addIface(b, "oifname", d.Out)
	addIface(b, "meta obrname", d.LogicalOut)

	if d.Proto.Set {
		if d.Proto.Length {
			return false
		}
		// a match only implies the positive protocol
		if d.Proto.Invert || !impliedByMatch(d) {
			b.Add("ether type %s0x%x ", xlate.Invert(d.Proto.Invert), d.Proto.EtherType())
		}
	}

	addMAC(b, "saddr", d.Source)
	addMAC(b, "daddr", d.Dest)

	for _, e := range d.Attached() {
		if !e.Translate(d, b) {
			return false
		}
	}

	b.Add("counter")
	return addVerdict(d, b)
}

func impliedByMatch(d *Draft) bool {
	switch d.Proto.EtherType() {
	case etherTypeIPv4:
		return d.HasMatch("ip")
	case etherTypeIPv6:
		return d.HasMatch("ip6")
	case etherTypeVLAN:
		return d.HasMatch("vlan")
	}
	return false
}

func addIface(b *xlate.Buffer, key string, i Interface) {
	if !i.IsSet() {
		return
	}
	name := i.Name
	if i.Wildcard {
		name = xlate.Quote(name + "*")
	}
	b.Add("%s %s%s ", key, xlate.Invert(i.Invert), name)
}

func addMAC(b *xlate.Buffer, dir string, m *MAC) {
	if m == nil {
		return
	}
	if macaddr.IsExact(m.Mask) {
		b.Add("ether %s %s%s ", dir, xlate.Invert(m.Invert), macaddr.Format(m.Addr))
		return
	}
	op := "=="
	if m.Invert {
		op = "!="
	}
	b.Add("ether %s and %s %s %s ", dir, macaddr.Format(m.Mask), op, macaddr.Format(m.Addr))
}

func addVerdict(d *Draft, b *xlate.Buffer) bool {
	if d.Jump == "" {
		return true
	}
	if d.Target == nil {
		b.Add(" jump %s", d.Jump)
		return true
	}
	b.Add(" ")
	return d.Target.Translate(d, b)
}
