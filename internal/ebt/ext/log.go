package ext

import (
	"strconv"
	"strings"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optLog = iota
	optLogLevel
	optLogPrefix
	optLogIP
	optLogARP
	optLogIP6
)

const (
	flagLog flagSet = 1 << iota
	flagLogLevel
	flagLogPrefix
	flagLogIP
	flagLogARP
	flagLogIP6
)

const (
	logPrefixSize   = 30
	logDefaultLevel = 6
)

// syslog priorities by value.
var logLevels = []string{"emerg", "alert", "crit", "error", "warning", "notice", "info", "debug"}

// watcherLog logs matching frames through the kernel log.
type watcherLog struct {
	flags  flagSet
	level  int
	prefix string
}

func newLog(ebt.Env) ebt.Extension { return &watcherLog{level: logDefaultLevel} }

func (w *watcherLog) Name() string   { return "log" }
func (w *watcherLog) Kind() ebt.Kind { return ebt.KindWatcher }

func (w *watcherLog) Options() []getopt.Option {
	return []getopt.Option{
		opt("log-prefix", getopt.RequiredArgument, optLogPrefix),
		opt("log-level", getopt.RequiredArgument, optLogLevel),
		opt("log-arp", getopt.NoArgument, optLogARP),
		opt("log-ip", getopt.NoArgument, optLogIP),
		opt("log", getopt.NoArgument, optLog),
		opt("log-ip6", getopt.NoArgument, optLogIP6),
	}
}

func (w *watcherLog) Parse(id int, arg string, invert bool) (bool, error) {
	switch id {
	case optLogPrefix:
		if err := w.flags.check(flagLogPrefix); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--log-prefix"); err != nil {
			return false, err
		}
		if len(arg) > logPrefixSize-1 {
			return false, ebt.Errorf("Prefix too long")
		}
		if strings.ContainsRune(arg, '"') {
			return false, ebt.Errorf("Use of \\\" is not allowed in the prefix")
		}
		w.prefix = arg
	case optLogLevel:
		if err := w.flags.check(flagLogLevel); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--log-level"); err != nil {
			return false, err
		}
		level, ok := parseLogLevel(arg)
		if !ok {
			return false, ebt.Errorf("Problem with the log-level")
		}
		w.level = level
	case optLogIP, optLogARP, optLogIP6, optLog:
		// flag bits follow the option ids
		if err := w.flags.check(flagSet(1) << id); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--log"); err != nil {
			return false, err
		}
	default:
		return false, nil
	}
	return true, nil
}

func parseLogLevel(s string) (int, bool) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, v >= 0 && v < len(logLevels)
	}
	for i, name := range logLevels {
		if name == s {
			return i, true
		}
	}
	return 0, false
}

func (w *watcherLog) Finalize() error { return nil }

func (w *watcherLog) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	b.Add("log")
	if w.prefix != "" {
		b.Add(" prefix %s", xlate.Quote(w.prefix))
	}
	if w.level != logDefaultLevel {
		b.Add(" level %s", nftLogLevel(w.level))
	}
	b.Add(" flags ether ")
	return true
}

// nftLogLevel spells syslog levels the way nft does.
func nftLogLevel(level int) string {
	switch logLevels[level] {
	case "error":
		return "err"
	case "warning":
		return "warn"
	}
	return logLevels[level]
}
