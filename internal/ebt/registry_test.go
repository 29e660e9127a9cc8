package ebt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

type fakeExt struct {
	name string
	kind Kind
	opts []getopt.Option
}

func (f *fakeExt) Name() string                          { return f.name }
func (f *fakeExt) Kind() Kind                            { return f.kind }
func (f *fakeExt) Options() []getopt.Option              { return f.opts }
func (f *fakeExt) Parse(int, string, bool) (bool, error) { return true, nil }
func (f *fakeExt) Finalize() error                       { return nil }
func (f *fakeExt) Translate(*Draft, *xlate.Buffer) bool  { return true }

func newFake(name string, names ...string) *fakeExt {
	f := &fakeExt{name: name, kind: KindMatch}
	for i, n := range names {
		f.opts = append(f.opts, getopt.Option{Name: n, Arg: getopt.RequiredArgument, Val: i})
	}
	return f
}

func TestRegistryBands(t *testing.T) {
	r := NewRegistry(builtinOptions)
	a := newFake("a", "a-one", "a-two")
	b := newFake("b", "b-one")

	startA, err := r.Register(a)
	require.NoError(t, err)
	startB, err := r.Register(b)
	require.NoError(t, err)

	assert.Equal(t, OptionSpan, startA)
	assert.Equal(t, 2*OptionSpan, startB)
	assert.Len(t, r.Options(), len(builtinOptions)+3)

	ext, local, ok := r.Resolve(startA + 1)
	require.True(t, ok)
	assert.Same(t, a, ext)
	assert.Equal(t, 1, local)

	ext, local, ok = r.Resolve(startB)
	require.True(t, ok)
	assert.Same(t, b, ext)
	assert.Equal(t, 0, local)

	_, _, ok = r.Resolve('A')
	assert.False(t, ok, "builtin ids belong to no band")
	_, _, ok = r.Resolve(3 * OptionSpan)
	assert.False(t, ok)
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry(builtinOptions)
	_, err := r.Register(newFake("a", "a-one"))
	require.NoError(t, err)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, builtinOptions, r.Options())

	start, err := r.Register(newFake("b", "b-one"))
	require.NoError(t, err)
	assert.Equal(t, OptionSpan, start, "ids restart after reset")
}

func TestRegistryFailureLeavesTableIntact(t *testing.T) {
	r := NewRegistry(builtinOptions)
	_, err := r.Register(newFake("a", "a-one"))
	require.NoError(t, err)
	before := append([]getopt.Option(nil), r.Options()...)

	bad := &fakeExt{name: "bad", opts: []getopt.Option{{Name: "bad", Val: OptionSpan}}}
	_, err = r.Register(bad)
	require.Error(t, err)
	assert.Equal(t, before, r.Options())
	assert.Equal(t, 1, r.Len())

	r.limit = r.offset + OptionSpan
	_, err = r.Register(newFake("c", "c-one"))
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, OtherProblem, e.Kind)
	assert.Equal(t, "Can't alloc memory", e.Msg)
	assert.Equal(t, before, r.Options())
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	c.Register("one", KindMatch, func(Env) Extension { return newFake("one") })
	c.Register("two", KindMatch, func(Env) Extension { return newFake("two") })
	c.Register(StandardTarget, KindTarget, func(Env) Extension { return &fakeExt{name: StandardTarget, kind: KindTarget} })

	assert.Equal(t, []string{"one", "two"}, c.Names(KindMatch))

	first, ok := c.New("one", KindMatch, Env{})
	require.True(t, ok)
	second, _ := c.New("one", KindMatch, Env{})
	assert.NotSame(t, first, second, "every call yields a fresh instance")

	_, ok = c.New("one", KindTarget, Env{})
	assert.False(t, ok)

	target, ok := c.Target("DROP", Env{})
	require.True(t, ok)
	assert.Equal(t, StandardTarget, target.Name())

	_, ok = c.Target(StandardTarget, Env{})
	assert.False(t, ok, "the standard target is only reachable through verdicts")
	_, ok = c.Target("userchain", Env{})
	assert.False(t, ok)

	assert.Panics(t, func() {
		c.Register("one", KindMatch, func(Env) Extension { return nil })
	})
}

func TestParseRuleRange(t *testing.T) {
	tests := []struct {
		in      string
		want    RuleRange
		wantErr bool
	}{
		{"3", RuleRange{3, 3}, false},
		{"2:5", RuleRange{2, 5}, false},
		{":4", RuleRange{1, 4}, false},
		{"2:", RuleRange{2, RuleEndLast}, false},
		{":", RuleRange{1, RuleEndLast}, false},
		{"-2", RuleRange{-2, -2}, false},
		{"0", RuleRange{}, true},
		{"1:0", RuleRange{}, true},
		{"a", RuleRange{}, true},
		{"1:b", RuleRange{}, true},
		{"", RuleRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRuleRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHexLong(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		numeric bool
	}{
		{"0800", 0x800, true},
		{"0x86dd", 0x86dd, true},
		{"0X86DD", 0x86dd, true},
		{"", 0, true},
		{"DEC", 0xdec, true},
		{"-1", -1, true},
		{"IPv4", 0, false},
		{"0x", 0, false},
		{"12g", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseHexLong(tt.in)
		assert.Equal(t, tt.numeric, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestLooksLikeOption(t *testing.T) {
	assert.True(t, looksLikeOption("-j"))
	assert.True(t, looksLikeOption("-"))
	assert.True(t, looksLikeOption("--log"))
	assert.False(t, looksLikeOption("-5"))
	assert.False(t, looksLikeOption("5"))
	assert.False(t, looksLikeOption(""))
}

func TestParseInterface(t *testing.T) {
	name, wild, err := ParseInterface("eth+", "-i")
	require.NoError(t, err)
	assert.Equal(t, "eth", name)
	assert.True(t, wild)

	name, wild, err = ParseInterface("eth0", "-i")
	require.NoError(t, err)
	assert.Equal(t, "eth0", name)
	assert.False(t, wild)

	_, _, err = ParseInterface("e+th", "-o")
	assert.EqualError(t, err, "Spurious characters after '+' wildcard for '-o'")
}

func TestDraftAttachDedupes(t *testing.T) {
	d := newDraft("filter", nil)
	m := newFake("m")
	w := &fakeExt{name: "w", kind: KindWatcher}

	d.attach(m)
	d.attach(w)
	d.attach(m)

	assert.Equal(t, []Extension{m, w}, d.Attached())
	assert.Equal(t, []Extension{m}, d.Matches)
	assert.Equal(t, []Extension{w}, d.Watchers)
	assert.True(t, d.HasMatch("m"))
	assert.False(t, d.HasMatch("w"))
}

func TestChainHooks(t *testing.T) {
	assert.Equal(t, HookForward, ChainHook("FORWARD"))
	assert.Equal(t, HookBrouting, ChainHook("BROUTING"))
	assert.Equal(t, HookUser, ChainHook("forward"))

	assert.True(t, HookUser.inputAllowed())
	assert.False(t, HookUser.outputAllowed())
	assert.True(t, HookBrouting.inputAllowed())
	assert.False(t, HookBrouting.outputAllowed())
	assert.True(t, HookPostrouting.outputAllowed())
	assert.False(t, HookPostrouting.inputAllowed())
}
