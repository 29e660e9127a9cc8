package ext

import (
	"strings"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const optMarkMatch = 0

// matchMark compares the packet mark. "/mask" alone tests whether any of
// the mask bits is set.
type matchMark struct {
	set    bool
	mark   uint32
	mask   uint32
	anySet bool
	invert bool
}

func newMarkMatch(ebt.Env) ebt.Extension { return &matchMark{} }

func (m *matchMark) Name() string   { return "mark_m" }
func (m *matchMark) Kind() ebt.Kind { return ebt.KindMatch }

func (m *matchMark) Options() []getopt.Option {
	return []getopt.Option{opt("mark", getopt.RequiredArgument, optMarkMatch)}
}

func (m *matchMark) Parse(id int, arg string, invert bool) (bool, error) {
	if id != optMarkMatch {
		return false, nil
	}
	if m.set {
		return false, ebt.Errorf("Multiple use of same option not allowed")
	}
	m.set = true
	m.invert = invert
	m.mask = 0xffffffff

	value, mask, hasMask := strings.Cut(arg, "/")
	if value == "" && hasMask {
		m.anySet = true
	} else {
		v, ok := parseUint(value, 32)
		if !ok {
			return false, ebt.Errorf("Bad mark value '%s'", arg)
		}
		m.mark = uint32(v)
	}
	if hasMask {
		v, ok := parseUint(mask, 32)
		if !ok {
			return false, ebt.Errorf("Bad mark mask '%s'", arg)
		}
		m.mask = uint32(v)
	}
	return true, nil
}

func (m *matchMark) Finalize() error {
	if !m.set {
		return ebt.Errorf("You must specify proper arguments")
	}
	return nil
}

func (m *matchMark) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	b.Add("meta mark ")
	switch {
	case m.anySet:
		// "!= 0" tests for any bit; inversion flips it to "== 0"
		b.Add("and 0x%x %s0 ", m.mask, xlate.Invert(!m.invert))
	case m.mask != 0xffffffff:
		b.Add("and 0x%x %s0x%x ", m.mask, xlate.Invert(m.invert), m.mark)
	default:
		b.Add("%s0x%x ", xlate.Invert(m.invert), m.mark)
	}
	return true
}
