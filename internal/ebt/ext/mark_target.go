package ext

import (
	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optMarkSet = iota
	optMarkOr
	optMarkAnd
	optMarkXor
	optMarkTarget
	optSetMark
)

const (
	flagMarkValue flagSet = 1 << iota
	flagMarkTarget
)

type markOp int

const (
	markSet markOp = iota
	markOr
	markAnd
	markXor
)

// targetMark rewrites the packet mark and falls through to a verdict.
type targetMark struct {
	flags   flagSet
	op      markOp
	mark    uint32
	verdict string
}

func newMarkTarget(ebt.Env) ebt.Extension { return &targetMark{verdict: verdictAccept} }

func (t *targetMark) Name() string   { return "mark" }
func (t *targetMark) Kind() ebt.Kind { return ebt.KindTarget }

func (t *targetMark) Options() []getopt.Option {
	return []getopt.Option{
		opt("mark-target", getopt.RequiredArgument, optMarkTarget),
		opt("set-mark", getopt.RequiredArgument, optSetMark),
		opt("mark-set", getopt.RequiredArgument, optMarkSet),
		opt("mark-or", getopt.RequiredArgument, optMarkOr),
		opt("mark-and", getopt.RequiredArgument, optMarkAnd),
		opt("mark-xor", getopt.RequiredArgument, optMarkXor),
	}
}

func (t *targetMark) Parse(id int, arg string, invert bool) (bool, error) {
	switch id {
	case optMarkTarget:
		if err := t.flags.check(flagMarkTarget); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--mark-target"); err != nil {
			return false, err
		}
		v, err := parseVerdict(arg)
		if err != nil {
			return false, err
		}
		t.verdict = v
		return true, nil
	case optSetMark, optMarkSet:
		t.op = markSet
	case optMarkOr:
		t.op = markOr
	case optMarkAnd:
		t.op = markAnd
	case optMarkXor:
		t.op = markXor
	default:
		return false, nil
	}

	if t.flags.has(flagMarkValue) {
		return false, ebt.Errorf("--mark-set, --mark-or, --mark-and and --mark-xor are mutually exclusive")
	}
	t.flags |= flagMarkValue
	if err := noInvert(invert, "--mark-set"); err != nil {
		return false, err
	}
	v, ok := parseUint(arg, 32)
	if !ok {
		return false, ebt.Errorf("Bad MARK value '%s'", arg)
	}
	t.mark = uint32(v)
	return true, nil
}

func (t *targetMark) Finalize() error {
	if !t.flags.has(flagMarkValue) {
		return ebt.Errorf("You must specify some option")
	}
	return nil
}

func (t *targetMark) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	b.Add("meta mark set ")
	switch t.op {
	case markSet:
		b.Add("0x%x ", t.mark)
	case markOr:
		b.Add("meta mark or 0x%x ", t.mark)
	case markAnd:
		b.Add("meta mark and 0x%x ", t.mark)
	case markXor:
		b.Add("meta mark xor 0x%x ", t.mark)
	}
	b.Add("%s", verdictStatement(t.verdict))
	return true
}
