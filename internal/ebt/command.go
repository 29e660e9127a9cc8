package ebt

// Command is the top-level action selected by the argument vector.
type Command int

const (
	CmdNone Command = iota
	CmdAppend
	CmdInsert
	CmdDelete
	CmdChangeCounters
	CmdNewChain
	CmdDeleteChain
	CmdRenameChain
	CmdPolicy
	CmdList
	CmdFlush
	CmdZero
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdNone:           "none",
	CmdAppend:         "append",
	CmdInsert:         "insert",
	CmdDelete:         "delete",
	CmdChangeCounters: "change-counters",
	CmdNewChain:       "new-chain",
	CmdDeleteChain:    "delete-chain",
	CmdRenameChain:    "rename-chain",
	CmdPolicy:         "policy",
	CmdList:           "list",
	CmdFlush:          "flush",
	CmdZero:           "zero",
	CmdVersion:        "version",
	CmdHelp:           "help",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "unknown"
}

// RuleBearing reports whether the command carries a rule body, the only
// case where qualifiers and extensions are accepted.
func (c Command) RuleBearing() bool {
	switch c {
	case CmdAppend, CmdInsert, CmdDelete, CmdChangeCounters:
		return true
	}
	return false
}

var commandLetters = map[int]Command{
	'A': CmdAppend,
	'I': CmdInsert,
	'D': CmdDelete,
	'C': CmdChangeCounters,
	'N': CmdNewChain,
	'X': CmdDeleteChain,
	'E': CmdRenameChain,
	'P': CmdPolicy,
	'L': CmdList,
	'F': CmdFlush,
	'Z': CmdZero,
	'V': CmdVersion,
	'h': CmdHelp,
}
