package ext

import (
	"strings"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

// targetStandard renders the builtin verdicts named by -j.
type targetStandard struct{}

func newStandard(ebt.Env) ebt.Extension { return &targetStandard{} }

func (t *targetStandard) Name() string             { return ebt.StandardTarget }
func (t *targetStandard) Kind() ebt.Kind           { return ebt.KindTarget }
func (t *targetStandard) Options() []getopt.Option { return nil }
func (t *targetStandard) Finalize() error          { return nil }

func (t *targetStandard) Parse(int, string, bool) (bool, error) { return false, nil }

func (t *targetStandard) Translate(d *ebt.Draft, b *xlate.Buffer) bool {
	if !ebt.IsStandardVerdict(d.Jump) {
		return false
	}
	b.Add("%s", strings.ToLower(d.Jump))
	return true
}
