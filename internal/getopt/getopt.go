// Package getopt implements the subset of GNU getopt_long used by the legacy
// ebtables frontend: return-in-order scanning, short option clusters,
// optional arguments that must be attached, and long options that may be
// abbreviated to any unique prefix.
package getopt

import (
	"fmt"
	"strings"
)

// ArgMode says whether an option takes an argument.
type ArgMode int

const (
	NoArgument ArgMode = iota
	RequiredArgument
	OptionalArgument
)

// NonOption is returned by Next for a token that is not an option.
const NonOption = 1

// End is returned by Next once the argument vector is exhausted.
const End = -1

// Option describes one long option.
type Option struct {
	Name string
	Arg  ArgMode
	Val  int
}

// ErrorKind classifies scan failures.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	MissingArgument
	Ambiguous
	UnexpectedArgument
)

// Error reports a token the scanner could not accept.
type Error struct {
	Kind   ErrorKind
	Option string
}

func (e *Error) Error() string {
	switch e.Kind {
	case MissingArgument:
		return fmt.Sprintf("option '%s' requires an argument", e.Option)
	case Ambiguous:
		return fmt.Sprintf("option '%s' is ambiguous", e.Option)
	case UnexpectedArgument:
		return fmt.Sprintf("option '%s' doesn't allow an argument", e.Option)
	default:
		return fmt.Sprintf("unrecognized option '%s'", e.Option)
	}
}

// Scanner walks an argument vector. Args[0] is the program name, so Index
// starts at 1. Callers may move Index themselves to consume extra words,
// exactly as C code adjusts optind.
type Scanner struct {
	Args  []string
	Index int

	// Optarg holds the argument of the last option, or the token itself
	// for NonOption. HasOptarg is false when an optional argument was absent.
	Optarg    string
	HasOptarg bool

	short    map[byte]ArgMode
	long     []Option
	nextchar string
}

// New creates a scanner. shortopts uses getopt syntax ("a:b::c"); a
// leading '-' (return-in-order) is accepted and implied.
func New(args []string, shortopts string, long []Option) *Scanner {
	s := &Scanner{
		Args:  args,
		Index: 1,
		short: parseShort(shortopts),
		long:  long,
	}
	return s
}

func parseShort(spec string) map[byte]ArgMode {
	spec = strings.TrimPrefix(spec, "-")
	m := make(map[byte]ArgMode, len(spec))
	for i := 0; i < len(spec); i++ {
		c := spec[i]
		mode := NoArgument
		if i+1 < len(spec) && spec[i+1] == ':' {
			mode = RequiredArgument
			i++
			if i+1 < len(spec) && spec[i+1] == ':' {
				mode = OptionalArgument
				i++
			}
		}
		m[c] = mode
	}
	return m
}

// SetLongOptions replaces the long option table. The option registry calls
// this after every merge so options of a freshly loaded target are visible
// to the next scan step.
func (s *Scanner) SetLongOptions(long []Option) {
	s.long = long
}

// Next returns the next option value, NonOption, or End.
func (s *Scanner) Next() (int, error) {
	s.Optarg = ""
	s.HasOptarg = false

	if s.nextchar != "" {
		return s.nextShort()
	}
	if s.Index >= len(s.Args) {
		return End, nil
	}

	arg := s.Args[s.Index]
	switch {
	case arg == "--":
		s.Index++
		return End, nil
	case len(arg) < 2 || arg[0] != '-':
		s.Index++
		s.Optarg = arg
		s.HasOptarg = true
		return NonOption, nil
	case strings.HasPrefix(arg, "--"):
		s.Index++
		return s.nextLong(arg[2:])
	default:
		s.Index++
		s.nextchar = arg[1:]
		return s.nextShort()
	}
}

func (s *Scanner) nextShort() (int, error) {
	c := s.nextchar[0]
	s.nextchar = s.nextchar[1:]

	mode, ok := s.short[c]
	if !ok || c == ':' || c == '-' {
		s.nextchar = ""
		return '?', &Error{Kind: Unknown, Option: "-" + string(c)}
	}

	switch mode {
	case RequiredArgument:
		if s.nextchar != "" {
			s.Optarg = s.nextchar
		} else if s.Index < len(s.Args) {
			s.Optarg = s.Args[s.Index]
			s.Index++
		} else {
			return '?', &Error{Kind: MissingArgument, Option: "-" + string(c)}
		}
		s.HasOptarg = true
		s.nextchar = ""
	case OptionalArgument:
		if s.nextchar != "" {
			s.Optarg = s.nextchar
			s.HasOptarg = true
		}
		s.nextchar = ""
	}
	return int(c), nil
}

func (s *Scanner) nextLong(body string) (int, error) {
	name, value, hasValue := strings.Cut(body, "=")

	opt, err := s.lookupLong(name)
	if err != nil {
		return '?', err
	}

	switch opt.Arg {
	case NoArgument:
		if hasValue {
			return '?', &Error{Kind: UnexpectedArgument, Option: "--" + opt.Name}
		}
	case RequiredArgument:
		if hasValue {
			s.Optarg = value
		} else if s.Index < len(s.Args) {
			s.Optarg = s.Args[s.Index]
			s.Index++
		} else {
			return '?', &Error{Kind: MissingArgument, Option: "--" + opt.Name}
		}
		s.HasOptarg = true
	case OptionalArgument:
		if hasValue {
			s.Optarg = value
			s.HasOptarg = true
		}
	}
	return opt.Val, nil
}

// lookupLong finds an exact match first, then a unique prefix. Distinct
// entries sharing a value (aliases) do not make a prefix ambiguous.
func (s *Scanner) lookupLong(name string) (Option, error) {
	var found *Option
	ambiguous := false
	for i := range s.long {
		o := &s.long[i]
		if o.Name == name {
			return *o, nil
		}
		if !strings.HasPrefix(o.Name, name) {
			continue
		}
		if found == nil {
			found = o
		} else if found.Val != o.Val || found.Arg != o.Arg {
			ambiguous = true
		}
	}
	if ambiguous {
		return Option{}, &Error{Kind: Ambiguous, Option: "--" + name}
	}
	if found == nil || name == "" {
		return Option{}, &Error{Kind: Unknown, Option: "--" + name}
	}
	return *found, nil
}
