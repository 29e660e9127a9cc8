package ebt

import "grimm.is/ebtranslate/internal/getopt"

// Numeric codes of long-only options. Do not renumber: the values are part
// of the legacy option grammar.
const (
	optLogicalIn    = 2
	optLogicalOut   = 3
	optListCounters = 4
	optListNumbers  = 5
	optListExtended = 6
	optAtomicInit   = 7
	optAtomicCommit = 8
	optAtomicFile   = 9
	optAtomicSave   = 10
	optInitTable    = 11
	optListMAC2     = 12
	optConcurrent   = 13
)

const shortOptions = "-A:D:C:I:N:E:X::L::Z::F::P:Vhi:o:j:c:p:s:d:t:M:"

var builtinOptions = []getopt.Option{
	{Name: "append", Arg: getopt.RequiredArgument, Val: 'A'},
	{Name: "insert", Arg: getopt.RequiredArgument, Val: 'I'},
	{Name: "delete", Arg: getopt.RequiredArgument, Val: 'D'},
	{Name: "list", Arg: getopt.OptionalArgument, Val: 'L'},
	{Name: "Lc", Arg: getopt.NoArgument, Val: optListCounters},
	{Name: "Ln", Arg: getopt.NoArgument, Val: optListNumbers},
	{Name: "Lx", Arg: getopt.NoArgument, Val: optListExtended},
	{Name: "Lmac2", Arg: getopt.NoArgument, Val: optListMAC2},
	{Name: "zero", Arg: getopt.OptionalArgument, Val: 'Z'},
	{Name: "flush", Arg: getopt.OptionalArgument, Val: 'F'},
	{Name: "policy", Arg: getopt.RequiredArgument, Val: 'P'},
	{Name: "in-interface", Arg: getopt.RequiredArgument, Val: 'i'},
	{Name: "in-if", Arg: getopt.RequiredArgument, Val: 'i'},
	{Name: "logical-in", Arg: getopt.RequiredArgument, Val: optLogicalIn},
	{Name: "logical-out", Arg: getopt.RequiredArgument, Val: optLogicalOut},
	{Name: "out-interface", Arg: getopt.RequiredArgument, Val: 'o'},
	{Name: "out-if", Arg: getopt.RequiredArgument, Val: 'o'},
	{Name: "version", Arg: getopt.NoArgument, Val: 'V'},
	{Name: "help", Arg: getopt.NoArgument, Val: 'h'},
	{Name: "jump", Arg: getopt.RequiredArgument, Val: 'j'},
	{Name: "set-counters", Arg: getopt.RequiredArgument, Val: 'c'},
	{Name: "change-counters", Arg: getopt.RequiredArgument, Val: 'C'},
	{Name: "proto", Arg: getopt.RequiredArgument, Val: 'p'},
	{Name: "protocol", Arg: getopt.RequiredArgument, Val: 'p'},
	{Name: "db", Arg: getopt.RequiredArgument, Val: 'b'},
	{Name: "source", Arg: getopt.RequiredArgument, Val: 's'},
	{Name: "src", Arg: getopt.RequiredArgument, Val: 's'},
	{Name: "destination", Arg: getopt.RequiredArgument, Val: 'd'},
	{Name: "dst", Arg: getopt.RequiredArgument, Val: 'd'},
	{Name: "table", Arg: getopt.RequiredArgument, Val: 't'},
	{Name: "modprobe", Arg: getopt.RequiredArgument, Val: 'M'},
	{Name: "new-chain", Arg: getopt.RequiredArgument, Val: 'N'},
	{Name: "rename-chain", Arg: getopt.RequiredArgument, Val: 'E'},
	{Name: "delete-chain", Arg: getopt.OptionalArgument, Val: 'X'},
	{Name: "atomic-init", Arg: getopt.NoArgument, Val: optAtomicInit},
	{Name: "atomic-commit", Arg: getopt.NoArgument, Val: optAtomicCommit},
	{Name: "atomic-file", Arg: getopt.RequiredArgument, Val: optAtomicFile},
	{Name: "atomic-save", Arg: getopt.NoArgument, Val: optAtomicSave},
	{Name: "init-table", Arg: getopt.NoArgument, Val: optInitTable},
	{Name: "concurrent", Arg: getopt.NoArgument, Val: optConcurrent},
}

// BuiltinOptions returns a copy of the legacy option table.
func BuiltinOptions() []getopt.Option {
	return append([]getopt.Option(nil), builtinOptions...)
}

// optKind marks an option that may appear only once per invocation.
type optKind int

const (
	optCommand optKind = iota
	optTable
	optIn
	optOut
	optJump
	optProtocol
	optSource
	optDest
	optZero
	optLogicalInUsed
	optLogicalOutUsed
	optCount
	listCounters
	listNumbers
	listExtended
	listMAC2
)

// optionSet tracks which options were already given.
type optionSet map[optKind]bool

// check marks k as used, failing when it already was.
func (s optionSet) check(k optKind) error {
	if s[k] {
		return Errorf("Multiple use of same option not allowed")
	}
	s[k] = true
	return nil
}
