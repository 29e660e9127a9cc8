package ext

import (
	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const optRedirectTarget = 0

// targetRedirect hands the frame to the local host.
type targetRedirect struct {
	set     bool
	verdict string
}

func newRedirect(ebt.Env) ebt.Extension { return &targetRedirect{verdict: verdictAccept} }

func (t *targetRedirect) Name() string   { return "redirect" }
func (t *targetRedirect) Kind() ebt.Kind { return ebt.KindTarget }

func (t *targetRedirect) Options() []getopt.Option {
	return []getopt.Option{opt("redirect-target", getopt.RequiredArgument, optRedirectTarget)}
}

func (t *targetRedirect) Parse(id int, arg string, invert bool) (bool, error) {
	if id != optRedirectTarget {
		return false, nil
	}
	if t.set {
		return false, ebt.Errorf("Multiple use of same option not allowed")
	}
	t.set = true
	if err := noInvert(invert, "--redirect-target"); err != nil {
		return false, err
	}
	v, err := parseVerdict(arg)
	if err != nil {
		return false, err
	}
	t.verdict = v
	return true, nil
}

func (t *targetRedirect) Finalize() error { return nil }

func (t *targetRedirect) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	b.Add("meta pkttype set host ")
	b.Add("%s", verdictStatement(t.verdict))
	return true
}
