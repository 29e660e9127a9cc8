package ext

import (
	"strconv"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optNFLog = iota
	optNFLogGroup
	optNFLogPrefix
	optNFLogRange
	optNFLogThreshold
)

const (
	flagNFLog flagSet = 1 << iota
	flagNFLogGroup
	flagNFLogPrefix
	flagNFLogRange
	flagNFLogThreshold
)

const (
	nflogPrefixSize       = 64
	nflogDefaultGroup     = 1
	nflogDefaultThreshold = 1
)

// watcherNFLog hands matching frames to a netlink log group.
type watcherNFLog struct {
	flags     flagSet
	group     uint16
	prefix    string
	snaplen   uint32
	threshold uint16
}

func newNFLog(ebt.Env) ebt.Extension {
	return &watcherNFLog{group: nflogDefaultGroup, threshold: nflogDefaultThreshold}
}

func (w *watcherNFLog) Name() string   { return "nflog" }
func (w *watcherNFLog) Kind() ebt.Kind { return ebt.KindWatcher }

func (w *watcherNFLog) Options() []getopt.Option {
	return []getopt.Option{
		opt("nflog-group", getopt.RequiredArgument, optNFLogGroup),
		opt("nflog-prefix", getopt.RequiredArgument, optNFLogPrefix),
		opt("nflog-range", getopt.RequiredArgument, optNFLogRange),
		opt("nflog-threshold", getopt.RequiredArgument, optNFLogThreshold),
		opt("nflog", getopt.NoArgument, optNFLog),
	}
}

func (w *watcherNFLog) Parse(id int, arg string, invert bool) (bool, error) {
	switch id {
	case optNFLogGroup:
		if err := w.flags.check(flagNFLogGroup); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--nflog-group"); err != nil {
			return false, err
		}
		v, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return false, ebt.Errorf("--nflog-group must be a number!")
		}
		w.group = uint16(v)
	case optNFLogPrefix:
		if err := w.flags.check(flagNFLogPrefix); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--nflog-prefix"); err != nil {
			return false, err
		}
		if len(arg) > nflogPrefixSize-1 {
			return false, ebt.Errorf("Prefix too long")
		}
		w.prefix = arg
	case optNFLogRange:
		if err := w.flags.check(flagNFLogRange); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--nflog-range"); err != nil {
			return false, err
		}
		v, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return false, ebt.Errorf("--nflog-range must be a number!")
		}
		w.snaplen = uint32(v)
	case optNFLogThreshold:
		if err := w.flags.check(flagNFLogThreshold); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--nflog-threshold"); err != nil {
			return false, err
		}
		v, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return false, ebt.Errorf("--nflog-threshold must be a number!")
		}
		w.threshold = uint16(v)
	case optNFLog:
		if err := w.flags.check(flagNFLog); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--nflog"); err != nil {
			return false, err
		}
	default:
		return false, nil
	}
	return true, nil
}

func (w *watcherNFLog) Finalize() error { return nil }

func (w *watcherNFLog) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	b.Add("log ")
	if w.prefix != "" {
		b.Add("prefix %s ", xlate.Quote(w.prefix))
	}
	b.Add("group %d ", w.group)
	if w.flags.has(flagNFLogRange) {
		b.Add("snaplen %d ", w.snaplen)
	}
	if w.threshold != nflogDefaultThreshold {
		b.Add("queue-threshold %d ", w.threshold)
	}
	return true
}
