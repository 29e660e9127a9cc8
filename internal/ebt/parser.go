package ebt

import (
	"errors"
	"strconv"
	"strings"

	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/logging"
	"grimm.is/ebtranslate/internal/macaddr"
	"grimm.is/ebtranslate/internal/validation"
)

// parser is the command state machine for one invocation.
type parser struct {
	settings Settings
	catalog  *Catalog
	env      Env
	reg      *Registry
	emitter  *Emitter
	logger   *logging.Logger

	scan   *getopt.Scanner
	d      *Draft
	used   optionSet
	invert bool
	lines  []string
}

func newParser(e *Engine, argv []string) *parser {
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	return &parser{
		settings: e.settings,
		catalog:  e.catalog,
		env:      e.env,
		reg:      e.registry,
		emitter:  e.emitter,
		logger:   e.logger,
		scan:     getopt.New(argv, shortOptions, e.registry.Options()),
		d:        newDraft(e.settings.Table, args),
		used:     optionSet{},
	}
}

// run consumes the whole argument vector. A non-nil Result with Help or
// Version set means parsing stopped early by request.
func (p *parser) run() (*Result, error) {
	for {
		c, err := p.scan.Next()
		if err != nil {
			return nil, p.scanError(err)
		}
		if c == getopt.End {
			break
		}

		switch c {
		case 'A', 'D', 'C', 'P', 'I', 'N', 'E', 'X':
			err = p.command(c)
		case 'L', 'F', 'Z':
			err = p.listFlushZero(c)
		case 'V':
			return p.version()
		case 'h':
			if p.commandSet() {
				return nil, Errorf("Multiple commands are not allowed")
			}
			p.d.Command = CmdHelp
			return &Result{Command: CmdHelp, Help: true, Draft: p.d}, nil
		case 't':
			err = p.table()
		case 'i', optLogicalIn, 'o', optLogicalOut, 'j', 'p', 's', 'd', 'c':
			err = p.qualifier(c)
		case optListCounters, optListNumbers, optListExtended, optListMAC2:
			err = p.listModifier(c)
		case getopt.NonOption:
			if p.scan.Optarg != "!" {
				return nil, Errorf("Bad argument : '%s'", p.scan.Optarg)
			}
			arg := p.scan.Optarg
			if _, err := p.checkInverse(&arg); err != nil {
				return nil, err
			}
			// checkInverse stepped over the next word; it belongs to the
			// following option.
			p.scan.Index--
			continue
		default:
			err = p.dispatch(c)
		}
		if err != nil {
			return nil, err
		}
		p.invert = false
	}

	if err := p.finalize(); err != nil {
		return nil, err
	}
	return p.emit(), nil
}

func (p *parser) scanError(err error) error {
	var gerr *getopt.Error
	if !errors.As(err, &gerr) {
		return asParameterProblem(err)
	}
	switch gerr.Kind {
	case getopt.MissingArgument:
		return Errorf("Option '%s' needs an argument", gerr.Option)
	case getopt.Ambiguous:
		return Errorf("Option '%s' is ambiguous", gerr.Option)
	case getopt.UnexpectedArgument:
		return Errorf("Option '%s' doesn't allow an argument", gerr.Option)
	}
	return Errorf("Unknown argument: '%s'", gerr.Option)
}

// commandSet reports whether a command (or -Z) was already given.
func (p *parser) commandSet() bool {
	return p.used[optCommand] || p.used[optZero]
}

// checkInverse implements the "option ! value" form. When *arg is "!" the
// inversion flag is armed and *arg advances to the next word. It returns
// the current inversion state.
func (p *parser) checkInverse(arg *string) (bool, error) {
	if *arg != "!" {
		return p.invert, nil
	}
	if p.invert {
		return false, Errorf("Double use of '!' not allowed")
	}
	if p.scan.Index >= len(p.scan.Args) {
		return false, Errorf("Option needs an argument after '!'")
	}
	*arg = p.scan.Args[p.scan.Index]
	p.scan.Index++
	p.invert = true
	return true, nil
}

// looksLikeOption reports whether a word starts a new option rather than
// being a number such as "-5".
func looksLikeOption(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return false
	}
	return len(s) == 1 || s[1] < '0' || s[1] > '9'
}

// peek returns the next unconsumed word.
func (p *parser) peek(offset int) (string, bool) {
	i := p.scan.Index + offset
	if i >= len(p.scan.Args) {
		return "", false
	}
	return p.scan.Args[i], true
}

func (p *parser) command(c int) error {
	// -N chain -P policy: the policy applies to the new chain
	if p.d.Command == CmdNewChain && c == 'P' {
		p.d.Command = CmdPolicy
		p.scan.Index--
		return p.policy()
	}
	if p.commandSet() {
		return Errorf("Multiple commands are not allowed")
	}

	d := p.d
	d.Command = commandLetters[c]
	d.Chain = p.scan.Optarg
	if c == 'X' && !p.scan.HasOptarg {
		d.Chain = p.optionalChain()
	}
	d.Hook = ChainHook(d.Chain)
	p.used[optCommand] = true

	switch c {
	case 'N':
		p.lines = append(p.lines, p.emitter.NewChain(d.Table, d.Chain))
	case 'X':
		if d.Chain != "" {
			p.lines = append(p.lines, p.emitter.DeleteChain(d.Table, d.Chain))
		}
	case 'E':
		return p.renameChain()
	case 'D':
		return p.deleteRange()
	case 'C':
		op, err := p.changeCounters()
		if err != nil {
			return err
		}
		d.CounterOp = op
	case 'I':
		return p.insertPosition()
	case 'P':
		return p.policy()
	}
	return nil
}

// optionalChain consumes a chain name given as a separate word after an
// option whose argument is optional.
func (p *parser) optionalChain() string {
	next, ok := p.peek(0)
	if !ok || strings.HasPrefix(next, "-") || next == "!" {
		return ""
	}
	p.scan.Index++
	return next
}

func (p *parser) renameChain() error {
	next, ok := p.peek(0)
	if !ok {
		return Errorf("No new chain name specified")
	}
	if err := validation.ValidateChainName(next); err != nil {
		return asParameterProblem(err)
	}
	p.d.NewName = next
	p.scan.Index++
	return nil
}

func (p *parser) deleteRange() error {
	next, ok := p.peek(0)
	if !ok || looksLikeOption(next) {
		return nil
	}
	if p.scan.Index != len(p.scan.Args)-1 {
		return Errorf("No extra options allowed with -D start_nr[:end_nr]")
	}
	r, err := ParseRuleRange(next)
	if err != nil {
		return Errorf("Problem with the specified rule number(s) '%s'", next)
	}
	p.d.Rule = r
	p.scan.Index++
	return nil
}

func (p *parser) insertPosition() error {
	next, ok := p.peek(0)
	if !ok || looksLikeOption(next) {
		p.d.Rule = RuleRange{Start: 1, End: 1}
		return nil
	}
	n, err := ParseRuleNumber(next)
	if err != nil {
		return err
	}
	p.d.Rule = RuleRange{Start: n, End: n}
	p.scan.Index++
	return nil
}

func (p *parser) policy() error {
	next, ok := p.peek(0)
	if !ok {
		return Errorf("No policy specified")
	}
	if err := validation.ValidatePolicy(next, p.d.Hook == HookUser); err != nil {
		return asParameterProblem(err)
	}
	p.d.Policy = next
	p.scan.Index++
	return nil
}

func (p *parser) listFlushZero(c int) error {
	d := p.d
	if c == 'Z' {
		if p.used[optZero] || (p.used[optCommand] && d.Command != CmdList) {
			return Errorf("Command -Z only allowed together with command -L")
		}
		p.used[optZero] = true
		d.Zero = true
		if d.Command == CmdNone {
			d.Command = CmdZero
		}
	} else {
		if p.used[optCommand] {
			return Errorf("Multiple commands are not allowed")
		}
		d.Command = commandLetters[c]
		p.used[optCommand] = true
		if p.used[optZero] && c != 'L' {
			return Errorf("Command -Z only allowed together with command -L")
		}
	}

	chain := p.scan.Optarg
	if !p.scan.HasOptarg {
		chain = p.optionalChain()
	}
	if chain != "" {
		d.Chain = chain
		d.Hook = ChainHook(chain)
	}

	switch c {
	case 'L':
		p.lines = append(p.lines, p.emitter.List(d.Table))
	case 'F':
		p.lines = append(p.lines, p.emitter.Flush(d.Table, d.Chain))
	}
	return nil
}

func (p *parser) version() (*Result, error) {
	if p.commandSet() {
		return nil, Errorf("Multiple commands are not allowed")
	}
	p.d.Command = CmdVersion
	line := p.settings.ProgramName + " " + p.settings.Version
	if p.settings.ExecStyle == ExecDaemon {
		return nil, Errorf("%s", line)
	}
	return &Result{Command: CmdVersion, Version: true, Lines: []string{line}, Translated: true, Draft: p.d}, nil
}

func (p *parser) table() error {
	if p.commandSet() {
		return Errorf("Please put the -t option first")
	}
	if err := p.used.check(optTable); err != nil {
		return err
	}
	if err := validation.ValidateTableName(p.scan.Optarg); err != nil {
		return asParameterProblem(err)
	}
	p.d.Table = p.scan.Optarg
	return nil
}

func (p *parser) listModifier(c int) error {
	d := p.d
	switch c {
	case optListCounters:
		if err := p.used.check(listCounters); err != nil {
			return err
		}
		if d.Command != CmdList {
			return Errorf("Use --Lc with -L")
		}
		d.List.Counters = true
	case optListNumbers:
		if err := p.used.check(listNumbers); err != nil {
			return err
		}
		if d.Command != CmdList {
			return Errorf("Use --Ln with -L")
		}
		if d.List.Extended {
			return Errorf("--Lx is not compatible with --Ln")
		}
		d.List.Numbers = true
	case optListExtended:
		if err := p.used.check(listExtended); err != nil {
			return err
		}
		if d.Command != CmdList {
			return Errorf("Use --Lx with -L")
		}
		if d.List.Numbers {
			return Errorf("--Lx is not compatible with --Ln")
		}
		d.List.Extended = true
	case optListMAC2:
		if err := p.used.check(listMAC2); err != nil {
			return err
		}
		if d.Command != CmdList {
			return Errorf("Use --Lmac2 with -L")
		}
		d.List.MAC2 = true
	}
	return nil
}

// qualifier handles the rule-body options valid for -A, -D, -I and -C.
func (p *parser) qualifier(c int) error {
	if !p.commandSet() {
		return Errorf("No command specified")
	}
	if !p.d.Command.RuleBearing() {
		return Errorf("Command and option do not match")
	}

	arg := p.scan.Optarg
	d := p.d
	switch c {
	case 'i':
		return p.iface(&d.In, optIn, "-i", arg, d.Hook.inputAllowed(),
			"Use -i only in INPUT, FORWARD, PREROUTING and BROUTING chains")
	case optLogicalIn:
		return p.iface(&d.LogicalIn, optLogicalInUsed, "--logical-in", arg, d.Hook.inputAllowed(),
			"Use --logical-in only in INPUT, FORWARD, PREROUTING and BROUTING chains")
	case 'o':
		return p.iface(&d.Out, optOut, "-o", arg, d.Hook.outputAllowed(),
			"Use -o only in OUTPUT, FORWARD and POSTROUTING chains")
	case optLogicalOut:
		return p.iface(&d.LogicalOut, optLogicalOutUsed, "--logical-out", arg, d.Hook.outputAllowed(),
			"Use --logical-out only in OUTPUT, FORWARD and POSTROUTING chains")
	case 'j':
		return p.jump(arg)
	case 's':
		m, err := p.mac(optSource, arg, "Problem with specified source mac '%s'")
		if err != nil {
			return err
		}
		d.Source = m
	case 'd':
		m, err := p.mac(optDest, arg, "Problem with specified destination mac '%s'")
		if err != nil {
			return err
		}
		d.Dest = m
	case 'c':
		return p.setCounters(arg)
	case 'p':
		return p.protocol(arg)
	}
	return nil
}

func (p *parser) iface(dst *Interface, kind optKind, option, arg string, allowed bool, misuse string) error {
	if err := p.used.check(kind); err != nil {
		return err
	}
	if !allowed {
		return Errorf("%s", misuse)
	}
	invert, err := p.checkInverse(&arg)
	if err != nil {
		return err
	}
	if err := validation.ValidateInterfaceLength(arg); err != nil {
		return asParameterProblem(err)
	}
	name, wildcard, err := ParseInterface(arg, option)
	if err != nil {
		return err
	}
	*dst = Interface{Name: name, Wildcard: wildcard, Invert: invert}
	return nil
}

func (p *parser) mac(kind optKind, arg, problem string) (*MAC, error) {
	if err := p.used.check(kind); err != nil {
		return nil, err
	}
	invert, err := p.checkInverse(&arg)
	if err != nil {
		return nil, err
	}
	addr, mask, err := macaddr.ParseWithMask(arg)
	if err != nil {
		return nil, Errorf(problem, arg)
	}
	return &MAC{Addr: addr, Mask: mask, Invert: invert}, nil
}

func (p *parser) jump(arg string) error {
	if err := p.used.check(optJump); err != nil {
		return err
	}
	if err := validation.ValidateTargetName(arg); err != nil {
		return asParameterProblem(err)
	}
	p.d.Jump = arg

	target, ok := p.catalog.Target(arg, p.env)
	if !ok {
		p.logger.Debug("jump to chain", "chain", arg)
		return nil
	}
	start, err := p.reg.Register(target)
	if err != nil {
		return err
	}
	p.scan.SetLongOptions(p.reg.Options())
	p.d.Target = target
	p.logger.Debug("loaded target", "target", target.Name(), "band", start)
	return nil
}

func (p *parser) setCounters(arg string) error {
	if err := p.used.check(optCount); err != nil {
		return err
	}
	invert, err := p.checkInverse(&arg)
	if err != nil {
		return err
	}
	if invert {
		return Errorf("Unexpected '!' after -c")
	}
	next, ok := p.peek(0)
	if !ok || strings.HasPrefix(arg, "-") || strings.HasPrefix(next, "-") {
		return Errorf("Option -c needs 2 arguments")
	}

	pcnt, ok := parseCounter(arg)
	if !ok {
		return Errorf("Packet counter '%s' invalid", arg)
	}
	bcnt, ok := parseCounter(next)
	if !ok {
		return Errorf("Packet counter '%s' invalid", next)
	}
	p.d.Counters = Counters{Packets: pcnt, Bytes: bcnt}
	p.scan.Index++
	return nil
}

func (p *parser) protocol(arg string) error {
	if err := p.used.check(optProtocol); err != nil {
		return err
	}
	invert, err := p.checkInverse(&arg)
	if err != nil {
		return err
	}
	proto := &p.d.Proto
	proto.Set = true
	proto.Invert = invert

	if v, numeric := parseHexLong(arg); numeric {
		if v < 0 || v > 0xFFFF {
			return Errorf("Problem with the specified protocol")
		}
		proto.Value = uint16(v)
		if name, ok := p.env.Ethertypes.LookupType(proto.Value); ok {
			p.logger.Debug("protocol resolved", "value", arg, "name", name)
		}
	} else {
		if strings.EqualFold(arg, "LENGTH") {
			proto.Length = true
			return nil
		}
		v, ok := p.env.Ethertypes.LookupName(arg)
		if !ok {
			return Errorf("Problem with the specified Ethernet protocol '%s', perhaps %s is missing",
				arg, p.settings.EthertypesPath)
		}
		proto.Value = v
	}
	if proto.Value < 0x0600 {
		return Errorf("Sorry, protocols have values above or equal to 0x0600")
	}
	return nil
}

// changeCounters parses "-C chain [start_nr[:end_nr]] pcnt bcnt" and
// returns the bit-coded increment/decrement description.
func (p *parser) changeCounters() (int, error) {
	args := p.scan.Args
	first, ok := p.peek(0)
	if _, second := p.peek(1); !ok || !second || looksLikeOption(first) {
		return 0, Errorf("The command -C needs at least 2 arguments")
	}
	if third, ok := p.peek(2); ok && !looksLikeOption(third) {
		if p.scan.Index+3 != len(args) {
			return 0, Errorf("No extra options allowed with -C start_nr[:end_nr] pcnt bcnt")
		}
		r, err := ParseRuleRange(first)
		if err != nil {
			return 0, Errorf("Something is wrong with the rule number specification '%s'", first)
		}
		p.d.Rule = r
		p.scan.Index++
	}

	daemon := p.settings.ExecStyle == ExecDaemon
	op := 0

	pcnt, _ := p.peek(0)
	if err := validation.ValidateCounterDelta(pcnt, daemon); err != nil {
		return 0, asParameterProblem(err)
	}
	v, delta, ok := parseCounterDelta(pcnt)
	if !ok {
		return 0, Errorf("Packet counter '%s' invalid", pcnt)
	}
	switch delta {
	case '+':
		op += CounterIncPackets
	case '-':
		op += CounterDecPackets
	}
	p.d.Counters.Packets = v
	p.scan.Index++

	bcnt, ok := p.peek(0)
	if !ok {
		return 0, Errorf("The command -C needs at least 2 arguments")
	}
	if err := validation.ValidateCounterDelta(bcnt, daemon); err != nil {
		return 0, asParameterProblem(err)
	}
	v, delta, ok = parseCounterDelta(bcnt)
	if !ok {
		return 0, Errorf("Packet counter '%s' invalid", bcnt)
	}
	switch delta {
	case '+':
		op += CounterIncBytes
	case '-':
		op += CounterDecBytes
	}
	p.d.Counters.Bytes = v
	p.scan.Index++
	return op, nil
}

// ParseRuleRange parses "N", "N:M", ":M", "N:" and ":". A missing start is
// 1, a missing end is RuleEndLast; zero is never a valid position.
func ParseRuleRange(s string) (RuleRange, error) {
	var r RuleRange
	startText, endText, hasColon := strings.Cut(s, ":")

	if hasColon {
		if endText == "" {
			r.End = RuleEndLast
		} else {
			n, err := strconv.Atoi(endText)
			if err != nil || n == 0 {
				return RuleRange{}, Errorf("invalid rule range %q", s)
			}
			r.End = n
		}
	}
	if hasColon && startText == "" {
		r.Start = 1
	} else {
		n, err := strconv.Atoi(startText)
		if err != nil || n == 0 {
			return RuleRange{}, Errorf("invalid rule range %q", s)
		}
		r.Start = n
	}
	if !hasColon {
		r.End = r.Start
	}
	return r, nil
}

// ParseRuleNumber parses the optional position of -I.
func ParseRuleNumber(s string) (int, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil || n < 1 || n > 1<<31-1 {
		return 0, Errorf("Invalid rule number `%s'", s)
	}
	return int(n), nil
}

// ParseInterface handles the '+' wildcard suffix. Any character after a
// '+' is an error.
func ParseInterface(s, option string) (string, bool, error) {
	i := strings.IndexByte(s, '+')
	if i < 0 {
		return s, false, nil
	}
	if i != len(s)-1 {
		return "", false, Errorf("Spurious characters after '+' wildcard for '%s'", option)
	}
	return s[:i], true, nil
}

// parseCounter accepts a plain decimal counter. An empty string counts as
// zero, as strtoull does.
func parseCounter(s string) (uint64, bool) {
	if s == "" {
		return 0, true
	}
	if s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

// parseCounterDelta splits an optional '+' or '-' prefix from a counter.
func parseCounterDelta(s string) (uint64, byte, bool) {
	var delta byte
	if s != "" && (s[0] == '+' || s[0] == '-') {
		delta = s[0]
		s = s[1:]
	}
	v, ok := parseCounter(s)
	return v, delta, ok
}

// parseHexLong mimics strtol(s, &end, 16) followed by a check that the
// whole string was consumed.
func parseHexLong(s string) (int64, bool) {
	body := strings.TrimLeft(s, " \t\n\v\f\r")
	neg := false
	if body != "" && (body[0] == '+' || body[0] == '-') {
		neg = body[0] == '-'
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') && isHexDigit(body[2]) {
		body = body[2:]
	}
	if body == "" {
		// strtol consumed nothing; only the empty string ends up fully
		// consumed in that case
		return 0, s == ""
	}

	var v int64
	for i := 0; i < len(body); i++ {
		if !isHexDigit(body[i]) {
			return 0, false
		}
		if v < 1<<40 {
			d, _ := strconv.ParseInt(body[i:i+1], 16, 8)
			v = v*16 + d
		}
	}
	if neg {
		v = -v
	}
	return v, true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
