package ext

import (
	"net"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/macaddr"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optARPReplyMAC = iota
	optARPReplyTarget
)

const (
	flagARPReplyMAC flagSet = 1 << iota
	flagARPReplyTarget
)

// targetARPReply answers ARP requests itself. nft cannot build replies,
// so it never translates.
type targetARPReply struct {
	flags   flagSet
	mac     net.HardwareAddr
	verdict string
}

func newARPReply(ebt.Env) ebt.Extension { return &targetARPReply{verdict: verdictDrop} }

func (t *targetARPReply) Name() string   { return "arpreply" }
func (t *targetARPReply) Kind() ebt.Kind { return ebt.KindTarget }

func (t *targetARPReply) Options() []getopt.Option {
	return []getopt.Option{
		opt("arpreply-mac", getopt.RequiredArgument, optARPReplyMAC),
		opt("arpreply-target", getopt.RequiredArgument, optARPReplyTarget),
	}
}

func (t *targetARPReply) Parse(id int, arg string, invert bool) (bool, error) {
	switch id {
	case optARPReplyMAC:
		if err := t.flags.check(flagARPReplyMAC); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--arpreply-mac"); err != nil {
			return false, err
		}
		mac, err := macaddr.Parse(arg)
		if err != nil {
			return false, ebt.Errorf("Problem with specified --arpreply-mac mac")
		}
		t.mac = mac
	case optARPReplyTarget:
		if err := t.flags.check(flagARPReplyTarget); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--arpreply-target"); err != nil {
			return false, err
		}
		v, err := parseVerdict(arg)
		if err != nil {
			return false, err
		}
		t.verdict = v
	default:
		return false, nil
	}
	return true, nil
}

func (t *targetARPReply) Finalize() error {
	if !t.flags.has(flagARPReplyMAC) {
		return ebt.Errorf("No arpreply mac specified")
	}
	return nil
}

func (t *targetARPReply) Translate(*ebt.Draft, *xlate.Buffer) bool { return false }
