package ext

import (
	"strconv"
	"strings"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

const (
	optLimit = iota
	optLimitBurst
)

const (
	flagLimit flagSet = 1 << iota
	flagLimitBurst
)

const (
	defaultLimitRate  = 3
	defaultLimitUnit  = "hour"
	defaultLimitBurst = 5
)

var limitUnits = []string{"second", "minute", "hour", "day"}

// matchLimit is a token bucket rate limit.
type matchLimit struct {
	flags flagSet
	rate  uint64
	unit  string
	burst uint64
}

func newLimit(ebt.Env) ebt.Extension {
	return &matchLimit{rate: defaultLimitRate, unit: defaultLimitUnit, burst: defaultLimitBurst}
}

func (m *matchLimit) Name() string   { return "limit" }
func (m *matchLimit) Kind() ebt.Kind { return ebt.KindMatch }

func (m *matchLimit) Options() []getopt.Option {
	return []getopt.Option{
		opt("limit", getopt.RequiredArgument, optLimit),
		opt("limit-burst", getopt.RequiredArgument, optLimitBurst),
	}
}

func (m *matchLimit) Parse(id int, arg string, invert bool) (bool, error) {
	switch id {
	case optLimit:
		if err := m.flags.check(flagLimit); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--limit"); err != nil {
			return false, err
		}
		rate, unit, ok := parseRate(arg)
		if !ok {
			return false, ebt.Errorf("bad rate `%s'", arg)
		}
		m.rate, m.unit = rate, unit
	case optLimitBurst:
		if err := m.flags.check(flagLimitBurst); err != nil {
			return false, err
		}
		if err := noInvert(invert, "--limit-burst"); err != nil {
			return false, err
		}
		v, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || v > 10000 {
			return false, ebt.Errorf("bad --limit-burst `%s'", arg)
		}
		m.burst = v
	default:
		return false, nil
	}
	return true, nil
}

// parseRate accepts "N" or "N/unit" where unit is any prefix of second,
// minute, hour or day.
func parseRate(s string) (uint64, string, bool) {
	num, unit, hasUnit := strings.Cut(s, "/")
	rate, err := strconv.ParseUint(num, 10, 32)
	if err != nil || rate == 0 {
		return 0, "", false
	}
	if !hasUnit {
		return rate, "second", true
	}
	if unit == "" {
		return 0, "", false
	}
	for _, u := range limitUnits {
		if strings.HasPrefix(u, strings.ToLower(unit)) {
			return rate, u, true
		}
	}
	return 0, "", false
}

func (m *matchLimit) Finalize() error { return nil }

func (m *matchLimit) Translate(_ *ebt.Draft, b *xlate.Buffer) bool {
	b.Add("limit rate %d/%s burst %d packets ", m.rate, m.unit, m.burst)
	return true
}
