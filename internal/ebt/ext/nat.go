package ext

import (
	"net"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/macaddr"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optNATTo = iota
	optNATTarget
	optNATARP
)

const (
	flagNATTo flagSet = 1 << iota
	flagNATTarget
	flagNATARP
)

// targetNAT rewrites the source or destination MAC address.
type targetNAT struct {
	name    string
	field   string // "saddr" or "daddr"
	to      string
	options []getopt.Option

	flags   flagSet
	mac     net.HardwareAddr
	verdict string
}

func newDNAT(ebt.Env) ebt.Extension {
	return &targetNAT{
		name:  "dnat",
		field: "daddr",
		to:    "--to-dst",
		options: []getopt.Option{
			opt("to-destination", getopt.RequiredArgument, optNATTo),
			opt("to-dst", getopt.RequiredArgument, optNATTo),
			opt("dnat-target", getopt.RequiredArgument, optNATTarget),
		},
		verdict: verdictAccept,
	}
}

func newSNAT(ebt.Env) ebt.Extension {
	return &targetNAT{
		name:  "snat",
		field: "saddr",
		to:    "--to-src",
		options: []getopt.Option{
			opt("to-source", getopt.RequiredArgument, optNATTo),
			opt("to-src", getopt.RequiredArgument, optNATTo),
			opt("snat-target", getopt.RequiredArgument, optNATTarget),
			opt("snat-arp", getopt.NoArgument, optNATARP),
		},
		verdict: verdictAccept,
	}
}

func (t *targetNAT) Name() string             { return t.name }
func (t *targetNAT) Kind() ebt.Kind           { return ebt.KindTarget }
func (t *targetNAT) Options() []getopt.Option { return t.options }

func (t *targetNAT) Parse(id int, arg string, invert bool) (bool, error) {
	switch id {
	case optNATTo:
		if err := t.flags.check(flagNATTo); err != nil {
			return false, err
		}
		if err := noInvert(invert, t.to); err != nil {
			return false, err
		}
		mac, err := macaddr.Parse(arg)
		if err != nil {
			return false, ebt.Errorf("Problem with specified %s mac", t.to)
		}
		t.mac = mac
	case optNATTarget:
		if err := t.flags.check(flagNATTarget); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--"+t.name+"-target"); err != nil {
			return false, err
		}
		v, err := parseVerdict(arg)
		if err != nil {
			return false, err
		}
		t.verdict = v
	case optNATARP:
		if err := t.flags.check(flagNATARP); err != nil {
			return false, err
		}
	default:
		return false, nil
	}
	return true, nil
}

func (t *targetNAT) Finalize() error {
	if !t.flags.has(flagNATTo) {
		return ebt.Errorf("You must specify proper arguments")
	}
	return nil
}

func (t *targetNAT) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	// rewriting the ARP sender address has no nft statement
	if t.flags.has(flagNATARP) {
		return false
	}
	b.Add("ether %s set %s ", t.field, macaddr.Format(t.mac))
	b.Add("%s", verdictStatement(t.verdict))
	return true
}
