package ext

import (
	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	opt8023SAP = iota
	opt8023Type
)

const (
	flag8023SAP flagSet = 1 << iota
	flag8023Type
)

// match8023 filters on the 802.2 LLC header of length framed packets. nft
// has no LLC payload expression, so it never translates.
type match8023 struct {
	flags      flagSet
	sap        uint8
	typ        uint16
	invertSAP  bool
	invertType bool
}

func new8023(ebt.Env) ebt.Extension { return &match8023{} }

func (m *match8023) Name() string   { return "802_3" }
func (m *match8023) Kind() ebt.Kind { return ebt.KindMatch }

func (m *match8023) Options() []getopt.Option {
	return []getopt.Option{
		opt("802_3-sap", getopt.RequiredArgument, opt8023SAP),
		opt("802_3-type", getopt.RequiredArgument, opt8023Type),
	}
}

func (m *match8023) Parse(id int, arg string, invert bool) (bool, error) {
	switch id {
	case opt8023SAP:
		if err := m.flags.check(flag8023SAP); err != nil {
			return false, err
		}
		v, ok := parseHex(arg, 8)
		if !ok {
			return false, ebt.Errorf("Problem with specified sap hex value, %s", arg)
		}
		m.sap = uint8(v)
		m.invertSAP = invert
	case opt8023Type:
		if err := m.flags.check(flag8023Type); err != nil {
			return false, err
		}
		v, ok := parseHex(arg, 16)
		if !ok {
			return false, ebt.Errorf("Problem with the specified type hex value, %s", arg)
		}
		m.typ = uint16(v)
		m.invertType = invert
	default:
		return false, nil
	}
	return true, nil
}

func (m *match8023) Finalize() error { return nil }

func (m *match8023) Translate(*ebt.Draft, *xlate.Buffer) bool { return false }
