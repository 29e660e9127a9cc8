// Package ext contains the builtin ebtables matches, watchers and targets.
package ext

import (
	"strconv"
	"strings"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
)

// Register adds every builtin extension to c. Matches are registered in
// the order their options are offered during dispatch.
func Register(c *ebt.Catalog) {
	c.Register("802_3", ebt.KindMatch, new8023)
	c.Register("ip", ebt.KindMatch, newIP)
	c.Register("ip6", ebt.KindMatch, newIP6)
	c.Register("limit", ebt.KindMatch, newLimit)
	c.Register("mark_m", ebt.KindMatch, newMarkMatch)
	c.Register("pkttype", ebt.KindMatch, newPktType)
	c.Register("vlan", ebt.KindMatch, newVLAN)

	c.Register("log", ebt.KindWatcher, newLog)
	c.Register("nflog", ebt.KindWatcher, newNFLog)

	c.Register(ebt.StandardTarget, ebt.KindTarget, newStandard)
	c.Register("mark", ebt.KindTarget, newMarkTarget)
	c.Register("dnat", ebt.KindTarget, newDNAT)
	c.Register("snat", ebt.KindTarget, newSNAT)
	c.Register("redirect", ebt.KindTarget, newRedirect)
	c.Register("arpreply", ebt.KindTarget, newARPReply)
}

// NewCatalog returns a catalog holding all builtin extensions.
func NewCatalog() *ebt.Catalog {
	c := ebt.NewCatalog()
	Register(c)
	return c
}

// flagSet tracks the options of one extension instance.
type flagSet uint32

func (f *flagSet) check(bit flagSet) error {
	if *f&bit != 0 {
		return ebt.Errorf("Multiple use of same option not allowed")
	}
	*f |= bit
	return nil
}

func (f flagSet) has(bit flagSet) bool {
	return f&bit != 0
}

func opt(name string, arg getopt.ArgMode, val int) getopt.Option {
	return getopt.Option{Name: name, Arg: arg, Val: val}
}

func noInvert(invert bool, option string) error {
	if invert {
		return ebt.Errorf("Unexpected `!' after %s", option)
	}
	return nil
}

// Verdicts a builtin target may fall through to.
const (
	verdictAccept   = "ACCEPT"
	verdictDrop     = "DROP"
	verdictReturn   = "RETURN"
	verdictContinue = "CONTINUE"
)

func parseVerdict(s string) (string, error) {
	if !ebt.IsStandardVerdict(s) {
		return "", ebt.Errorf("Illegal target name '%s'", s)
	}
	return s, nil
}

// verdictStatement renders the fall-through verdict of a target. CONTINUE has
// no statement of its own.
func verdictStatement(v string) string {
	if v == verdictContinue {
		return ""
	}
	return strings.ToLower(v)
}

// parseUint mirrors strtoul with base 0: decimal, 0x hex or 0 octal.
func parseUint(s string, bits int) (uint64, bool) {
	if s == "" || strings.ContainsRune(s, '_') {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 0, bits)
	return v, err == nil
}

// parseHex mirrors strtoul with base 16.
func parseHex(s string, bits int) (uint64, bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || strings.ContainsRune(s, '_') {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, bits)
	return v, err == nil
}
