package ebt

import (
	"fmt"
	"strings"

	"grimm.is/ebtranslate/internal/xlate"
)

// FamilyOps renders the family specific part of a rule.
type FamilyOps interface {
	Family() string
	// Rule renders the rule body after the "add rule" head. It returns
	// false when some part has no nftables equivalent.
	Rule(d *Draft, b *xlate.Buffer) bool
}

// Emitter turns parsed commands into nftables statements.
type Emitter struct {
	ops    FamilyOps
	prefix string
}

// NewEmitter creates an emitter. prefix is prepended to every translated
// statement, e.g. "nft ".
func NewEmitter(ops FamilyOps, prefix string) *Emitter {
	return &Emitter{ops: ops, prefix: prefix}
}

func (e *Emitter) line(format string, args ...any) string {
	return e.prefix + fmt.Sprintf(format, args...)
}

func (e *Emitter) NewChain(table, chain string) string {
	return e.line("add chain %s %s %s", e.ops.Family(), table, chain)
}

func (e *Emitter) DeleteChain(table, chain string) string {
	return e.line("delete chain %s %s %s", e.ops.Family(), table, chain)
}

func (e *Emitter) List(table string) string {
	return e.line("list table %s %s", e.ops.Family(), table)
}

// Flush clears one chain, or the whole table when chain is empty.
func (e *Emitter) Flush(table, chain string) string {
	if chain == "" {
		return e.line("flush table %s %s", e.ops.Family(), table)
	}
	return e.line("flush chain %s %s %s", e.ops.Family(), table, chain)
}

// Rule renders an append or insert command.
func (e *Emitter) Rule(d *Draft) (string, bool) {
	b := xlate.NewBuffer()
	verb := "add"
	if d.Command == CmdInsert {
		verb = "insert"
	}
	b.Add("%s rule %s %s %s ", verb, e.ops.Family(), d.Table, d.Chain)
	if !e.ops.Rule(d, b) {
		return "", false
	}
	return e.prefix + b.String(), true
}

// Untranslated echoes the input back as a comment.
func Untranslated(args []string) string {
	return strings.TrimRight("# "+strings.Join(args, " "), " ")
}

// emit builds the final result once parsing succeeded.
func (p *parser) emit() *Result {
	d := p.d
	res := &Result{Command: d.Command, Draft: d}
	res.Lines = append(res.Lines, p.lines...)

	switch d.Command {
	case CmdAppend, CmdInsert:
		if line, ok := p.emitter.Rule(d); ok {
			res.Lines = append(res.Lines, line)
			res.Translated = true
			return res
		}
		p.logger.Debug("rule has no translation", "chain", d.Chain)
		res.Lines = append(res.Lines, Untranslated(d.Args))
		return res
	}
	res.Translated = len(p.lines) > 0
	return res
}
