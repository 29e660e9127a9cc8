package ebt_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/ebt/ext"
	"grimm.is/ebtranslate/internal/ethertypes"
	"grimm.is/ebtranslate/internal/logging"
)

func newEngine(t *testing.T, mutate ...func(*ebt.Settings)) *ebt.Engine {
	t.Helper()
	settings := ebt.DefaultSettings()
	for _, m := range mutate {
		m(&settings)
	}
	return ebt.NewEngine(settings, ext.NewCatalog(), ebt.Env{Ethertypes: ethertypes.Builtin()}, logging.Nop())
}

func argv(args ...string) []string {
	return append([]string{"ebtables-translate"}, args...)
}

func translate(t *testing.T, args ...string) *ebt.Result {
	t.Helper()
	res, err := newEngine(t).Translate(argv(args...))
	require.NoError(t, err)
	return res
}

// translateErr runs a command expected to fail and returns the message.
func translateErr(t *testing.T, args ...string) *ebt.Error {
	t.Helper()
	_, err := newEngine(t).Translate(argv(args...))
	require.Error(t, err)
	var e *ebt.Error
	require.True(t, errors.As(err, &e), "unexpected error type %T", err)
	return e
}

func TestTranslateRules(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "ethertype by name",
			args: []string{"-A", "FORWARD", "-p", "IPv4", "-j", "ACCEPT"},
			want: "add rule bridge filter FORWARD ether type 0x800 counter accept",
		},
		{
			name: "ethertype by number",
			args: []string{"-A", "FORWARD", "-p", "0x0806", "-j", "DROP"},
			want: "add rule bridge filter FORWARD ether type 0x806 counter drop",
		},
		{
			name: "inverted ethertype",
			args: []string{"-A", "FORWARD", "-p", "!", "ARP", "-j", "DROP"},
			want: "add rule bridge filter FORWARD ether type != 0x806 counter drop",
		},
		{
			name: "no verdict",
			args: []string{"-A", "INPUT"},
			want: "add rule bridge filter INPUT counter",
		},
		{
			name: "insert",
			args: []string{"-I", "INPUT", "3", "-j", "RETURN"},
			want: "insert rule bridge filter INPUT counter return",
		},
		{
			name: "continue",
			args: []string{"-A", "INPUT", "-j", "CONTINUE"},
			want: "add rule bridge filter INPUT counter continue",
		},
		{
			name: "chain jump",
			args: []string{"-A", "INPUT", "-j", "mychain"},
			want: "add rule bridge filter INPUT counter jump mychain",
		},
		{
			name: "interfaces",
			args: []string{"-A", "FORWARD", "-i", "eth0", "-o", "!", "eth1", "--logical-in", "br0", "--logical-out", "br1"},
			want: "add rule bridge filter FORWARD iifname eth0 meta ibrname br0 oifname != eth1 meta obrname br1 counter",
		},
		{
			name: "wildcard interface",
			args: []string{"-A", "INPUT", "-i", "eth+", "-j", "ACCEPT"},
			want: `add rule bridge filter INPUT iifname "eth*" counter accept`,
		},
		{
			name: "source mac",
			args: []string{"-A", "INPUT", "-s", "0:11:22:33:44:55", "-j", "ACCEPT"},
			want: "add rule bridge filter INPUT ether saddr 00:11:22:33:44:55 counter accept",
		},
		{
			name: "masked destination mac",
			args: []string{"-A", "INPUT", "-d", "!", "Multicast", "-j", "DROP"},
			want: "add rule bridge filter INPUT ether daddr and 01:00:00:00:00:00 != 01:00:00:00:00:00 counter drop",
		},
		{
			name: "implicit ip match",
			args: []string{"-A", "INPUT", "-p", "IPv4", "--ip-src", "10.1.0.0/16", "-j", "ACCEPT"},
			want: "add rule bridge filter INPUT ip saddr 10.1.0.0/16 counter accept",
		},
		{
			name: "implicit vlan match",
			args: []string{"-A", "FORWARD", "-p", "802_1Q", "--vlan-id", "10", "-j", "ACCEPT"},
			want: "add rule bridge filter FORWARD vlan id 10 counter accept",
		},
		{
			name: "inverted ip protocol with ip match",
			args: []string{"-A", "FORWARD", "-p", "!", "IPv4", "--ip-src", "10.0.0.1", "-j", "ACCEPT"},
			want: "add rule bridge filter FORWARD ether type != 0x800 ip saddr 10.0.0.1 counter accept",
		},
		{
			name: "inverted ip6 protocol with ip6 match",
			args: []string{"-A", "FORWARD", "-p", "!", "IPv6", "--ip6-src", "2001:db8::1", "-j", "DROP"},
			want: "add rule bridge filter FORWARD ether type != 0x86dd ip6 saddr 2001:db8::1 counter drop",
		},
		{
			name: "inverted vlan protocol with vlan match",
			args: []string{"-A", "FORWARD", "-p", "!", "802_1Q", "--vlan-id", "5", "-j", "DROP"},
			want: "add rule bridge filter FORWARD ether type != 0x8100 vlan id 5 counter drop",
		},
		{
			name: "alternate table",
			args: []string{"-t", "nat", "-A", "PREROUTING", "-j", "dnat", "--to-dst", "00:11:22:33:44:55"},
			want: "add rule bridge nat PREROUTING counter ether daddr set 00:11:22:33:44:55 accept",
		},
		{
			name: "target options",
			args: []string{"-A", "INPUT", "-j", "mark", "--mark-set", "0x10", "--mark-target", "CONTINUE"},
			want: "add rule bridge filter INPUT counter meta mark set 0x10",
		},
		{
			name: "watcher after match",
			args: []string{"-A", "INPUT", "--mark", "7", "--log-prefix", "seen", "-j", "ACCEPT"},
			want: `add rule bridge filter INPUT meta mark 0x7 log prefix "seen" flags ether counter accept`,
		},
		{
			name: "long option prefix",
			args: []string{"--append", "INPUT", "--in-interface", "eth0", "--jump", "ACCEPT"},
			want: "add rule bridge filter INPUT iifname eth0 counter accept",
		},
		{
			name: "attached short option",
			args: []string{"-AINPUT", "-jDROP"},
			want: "add rule bridge filter INPUT counter drop",
		},
		{
			name: "set counters",
			args: []string{"-A", "INPUT", "-c", "10", "20", "-j", "ACCEPT"},
			want: "add rule bridge filter INPUT counter accept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := translate(t, tt.args...)
			assert.True(t, res.Translated)
			assert.Equal(t, []string{tt.want}, res.Lines)
		})
	}
}

func TestTranslateChainCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"new chain", []string{"-N", "foo"}, []string{"add chain bridge filter foo"}},
		{"new chain in table", []string{"-t", "nat", "-N", "foo"}, []string{"add chain bridge nat foo"}},
		{"new chain with policy", []string{"-N", "foo", "-P", "RETURN"}, []string{"add chain bridge filter foo"}},
		{"delete chain", []string{"-X", "foo"}, []string{"delete chain bridge filter foo"}},
		{"delete chain attached", []string{"-Xfoo"}, []string{"delete chain bridge filter foo"}},
		{"list", []string{"-L"}, []string{"list table bridge filter"}},
		{"list with zero", []string{"-L", "-Z"}, []string{"list table bridge filter"}},
		{"list with modifiers", []string{"-L", "--Lc", "--Ln", "--Lmac2"}, []string{"list table bridge filter"}},
		{"flush table", []string{"-F"}, []string{"flush table bridge filter"}},
		{"flush chain", []string{"-F", "INPUT"}, []string{"flush chain bridge filter INPUT"}},
		{"flush chain attached", []string{"-t", "broute", "-FBROUTING"}, []string{"flush chain bridge broute BROUTING"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := translate(t, tt.args...)
			assert.True(t, res.Translated)
			assert.Equal(t, tt.want, res.Lines)
		})
	}
}

func TestUntranslatable(t *testing.T) {
	tests := []struct {
		name string
		args []string
		echo bool
	}{
		{"802.3 length", []string{"-A", "FORWARD", "-p", "LENGTH", "-j", "ACCEPT"}, true},
		{"llc match", []string{"-A", "FORWARD", "--802_3-sap", "0x42", "-j", "ACCEPT"}, true},
		{"arpreply", []string{"-t", "nat", "-A", "PREROUTING", "-p", "ARP", "-j", "arpreply", "--arpreply-mac", "0:1:2:3:4:5"}, true},
		{"policy", []string{"-P", "FORWARD", "DROP"}, false},
		{"rename", []string{"-E", "foo", "bar"}, false},
		{"delete rule", []string{"-D", "INPUT", "2:5"}, false},
		{"change counters", []string{"-C", "INPUT", "1", "2"}, false},
		{"zero", []string{"-Z"}, false},
		{"delete chain without name", []string{"-X"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := translate(t, tt.args...)
			assert.False(t, res.Translated)
			if tt.echo {
				assert.Equal(t, []string{ebt.Untranslated(tt.args)}, res.Lines)
			} else {
				assert.Empty(t, res.Lines)
			}
		})
	}
}

func TestUntranslatedEcho(t *testing.T) {
	res := translate(t, "-A", "FORWARD", "-p", "LENGTH", "-j", "ACCEPT")
	assert.Equal(t, []string{"# -A FORWARD -p LENGTH -j ACCEPT"}, res.Lines)
}

func TestParameterProblems(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"two commands", []string{"-A", "INPUT", "-D", "INPUT"}, "Multiple commands are not allowed"},
		{"qualifier first", []string{"-i", "eth0", "-A", "INPUT"}, "No command specified"},
		{"qualifier on list", []string{"-L", "-i", "eth0"}, "Command and option do not match"},
		{"table late", []string{"-A", "INPUT", "-t", "nat"}, "Please put the -t option first"},
		{"table twice", []string{"-t", "nat", "-t", "filter"}, "Multiple use of same option not allowed"},
		{"table too long", []string{"-t", "abcdefghijklmnopqrstuvwxyz0123456", "-L"}, "Table name length cannot exceed 31 characters"},
		{"interface twice", []string{"-A", "INPUT", "-i", "a", "-i", "b"}, "Multiple use of same option not allowed"},
		{"interface too long", []string{"-A", "INPUT", "-i", "abcdefghijklmnop"}, "Interface name length cannot exceed 15 characters"},
		{"wildcard not last", []string{"-A", "INPUT", "-i", "eth+0"}, "Spurious characters after '+' wildcard for '-i'"},
		{"logical wildcard not last", []string{"-A", "INPUT", "--logical-in", "br+x"}, "Spurious characters after '+' wildcard for '--logical-in'"},
		{"input on output hook", []string{"-A", "OUTPUT", "-i", "eth0"}, "Use -i only in INPUT, FORWARD, PREROUTING and BROUTING chains"},
		{"output on input hook", []string{"-A", "INPUT", "-o", "eth0"}, "Use -o only in OUTPUT, FORWARD and POSTROUTING chains"},
		{"output on user chain", []string{"-A", "mine", "--logical-out", "br0"}, "Use --logical-out only in OUTPUT, FORWARD and POSTROUTING chains"},
		{"low protocol", []string{"-A", "INPUT", "-p", "0x0500"}, "Sorry, protocols have values above or equal to 0x0600"},
		{"protocol range", []string{"-A", "INPUT", "-p", "10000"}, "Problem with the specified protocol"},
		{"unknown protocol", []string{"-A", "INPUT", "-p", "foo"}, "Problem with the specified Ethernet protocol 'foo', perhaps /etc/ethertypes is missing"},
		{"bad source mac", []string{"-A", "INPUT", "-s", "00:11"}, "Problem with specified source mac '00:11'"},
		{"bad destination mac", []string{"-A", "INPUT", "-d", "zz:11:22:33:44:55"}, "Problem with specified destination mac 'zz:11:22:33:44:55'"},
		{"double bang", []string{"-A", "INPUT", "!", "-i", "!", "eth0"}, "Double use of '!' not allowed"},
		{"bang at end", []string{"-A", "INPUT", "!"}, "Option needs an argument after '!'"},
		{"bad argument", []string{"-A", "INPUT", "foo"}, "Bad argument : 'foo'"},
		{"unknown option", []string{"--bogus"}, "Unknown argument: '--bogus'"},
		{"unknown short option", []string{"-q"}, "Unknown argument: '-q'"},
		{"missing argument", []string{"-A"}, "Option '-A' needs an argument"},
		{"ambiguous option", []string{"-A", "INPUT", "--ip-s", "1"}, "Option '--ip-s' is ambiguous"},
		{"target too long", []string{"-A", "INPUT", "-j", "abcdefghijklmnopqrstuvwxyz012345"}, "Invalid target 'abcdefghijklmnopqrstuvwxyz012345' (32 chars max)"},
		{"target empty", []string{"-A", "INPUT", "-j", ""}, "Invalid target name (too short)"},
		{"target space", []string{"-A", "INPUT", "-j", "a b"}, "Invalid target name `a b'"},
		{"policy missing", []string{"-P", "INPUT"}, "No policy specified"},
		{"policy wrong", []string{"-P", "INPUT", "MAYBE"}, "Wrong policy 'MAYBE'"},
		{"policy return", []string{"-P", "INPUT", "RETURN"}, "Policy RETURN only allowed for user defined chains"},
		{"rename missing", []string{"-E", "foo"}, "No new chain name specified"},
		{"rename too long", []string{"-E", "foo", "abcdefghijklmnopqrstuvwxyz0123456"}, "Chain name length can't exceed 31 characters"},
		{"zero with append", []string{"-A", "INPUT", "-Z"}, "Command -Z only allowed together with command -L"},
		{"zero twice", []string{"-Z", "-Z"}, "Command -Z only allowed together with command -L"},
		{"flush after zero", []string{"-Z", "-F"}, "Command -Z only allowed together with command -L"},
		{"list modifier without list", []string{"-A", "INPUT", "--Lc"}, "Use --Lc with -L"},
		{"numbers and extended", []string{"-L", "--Ln", "--Lx"}, "--Lx is not compatible with --Ln"},
		{"extended and numbers", []string{"-L", "--Lx", "--Ln"}, "--Lx is not compatible with --Ln"},
		{"delete extra", []string{"-D", "INPUT", "1", "-j", "ACCEPT"}, "No extra options allowed with -D start_nr[:end_nr]"},
		{"delete zero", []string{"-D", "INPUT", "0"}, "Problem with the specified rule number(s) '0'"},
		{"insert zero", []string{"-I", "INPUT", "0"}, "Invalid rule number `0'"},
		{"change counters short", []string{"-C", "INPUT", "5"}, "The command -C needs at least 2 arguments"},
		{"change counters extra", []string{"-C", "INPUT", "1", "2", "3", "4"}, "No extra options allowed with -C start_nr[:end_nr] pcnt bcnt"},
		{"change counters range", []string{"-C", "INPUT", "x", "2", "3"}, "Something is wrong with the rule number specification 'x'"},
		{"change counters value", []string{"-C", "INPUT", "x", "5"}, "Packet counter 'x' invalid"},
		{"set counters bang", []string{"-A", "INPUT", "-c", "!", "1", "2"}, "Unexpected '!' after -c"},
		{"set counters single", []string{"-A", "INPUT", "-c", "1"}, "Option -c needs 2 arguments"},
		{"set counters invalid", []string{"-A", "INPUT", "-c", "1x", "2"}, "Packet counter '1x' invalid"},
		{"extension without rule command", []string{"--ip-src", "1.2.3.4"}, "Extensions only for -A, -I, -D and -C"},
		{"extension on list", []string{"-L", "--log"}, "Extensions only for -A, -I, -D and -C"},
		{"extension finalize", []string{"-A", "INPUT", "--ip-dport", "22"}, "For port filtering the IP protocol must be either 6 (tcp), 17 (udp), 33 (dccp) or 132 (sctp)"},
		{"target finalize", []string{"-t", "nat", "-A", "PREROUTING", "-j", "dnat"}, "You must specify proper arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := translateErr(t, tt.args...)
			assert.Equal(t, ebt.ParameterProblem, e.Kind)
			assert.Equal(t, 2, e.ExitCode())
			assert.Equal(t, tt.want, e.Msg)
		})
	}
}

func TestInterfaceLengthBoundary(t *testing.T) {
	res := translate(t, "-A", "INPUT", "-i", "abcdefghijklmno")
	assert.Equal(t, []string{"add rule bridge filter INPUT iifname abcdefghijklmno counter"}, res.Lines)
}

func TestProtocolLengthFlag(t *testing.T) {
	res := translate(t, "-A", "INPUT", "-p", "length")
	assert.True(t, res.Draft.Proto.Set)
	assert.True(t, res.Draft.Proto.Length)
}

func TestProtocolNormalized(t *testing.T) {
	res := translate(t, "-A", "INPUT", "-p", "IPv6")
	assert.Equal(t, []byte{0x86, 0xdd}, res.Draft.Proto.Wire())
	assert.Equal(t, uint16(0x86dd), res.Draft.Proto.EtherType())
}

func TestRuleNumbers(t *testing.T) {
	res := translate(t, "-D", "INPUT", "2:")
	assert.Equal(t, ebt.RuleRange{Start: 2, End: ebt.RuleEndLast}, res.Draft.Rule)

	res = translate(t, "-I", "INPUT", "-j", "ACCEPT")
	assert.Equal(t, ebt.RuleRange{Start: 1, End: 1}, res.Draft.Rule)

	res = translate(t, "-I", "INPUT", "7")
	assert.Equal(t, ebt.RuleRange{Start: 7, End: 7}, res.Draft.Rule)
}

func TestChangeCounters(t *testing.T) {
	res := translate(t, "-C", "INPUT", "1:3", "+5", "-7")
	d := res.Draft
	assert.Equal(t, ebt.RuleRange{Start: 1, End: 3}, d.Rule)
	assert.Equal(t, ebt.Counters{Packets: 5, Bytes: 7}, d.Counters)
	assert.Equal(t, ebt.CounterIncPackets+ebt.CounterDecBytes, d.CounterOp)

	res = translate(t, "-C", "INPUT", "-2", "+9")
	assert.Equal(t, ebt.CounterDecPackets+ebt.CounterIncBytes, res.Draft.CounterOp)
	assert.Equal(t, ebt.Counters{Packets: 2, Bytes: 9}, res.Draft.Counters)
}

func TestDaemonStyle(t *testing.T) {
	eng := newEngine(t, func(s *ebt.Settings) { s.ExecStyle = ebt.ExecDaemon })

	_, err := eng.Translate(argv("-C", "INPUT", "+5", "7"))
	require.Error(t, err)
	assert.Equal(t, "Incrementing rule counters (+5) not allowed in daemon mode", err.Error())

	_, err = eng.Translate(argv("-C", "INPUT", "5", "-7"))
	require.Error(t, err)
	assert.Equal(t, "Decrementing rule counters (-7) not allowed in daemon mode", err.Error())

	_, err = eng.Translate(argv("-V"))
	require.Error(t, err)
	assert.Equal(t, "ebtables-translate 1.8.10", err.Error())
}

func TestVersionAndHelp(t *testing.T) {
	res := translate(t, "-V")
	assert.True(t, res.Version)
	assert.Equal(t, []string{"ebtables-translate 1.8.10"}, res.Lines)

	res = translate(t, "--help")
	assert.True(t, res.Help)
	assert.Equal(t, ebt.CmdHelp, res.Command)

	e := translateErr(t, "-L", "-V")
	assert.Equal(t, "Multiple commands are not allowed", e.Msg)
}

func TestOutputPrefix(t *testing.T) {
	eng := newEngine(t, func(s *ebt.Settings) { s.OutputPrefix = "nft " })
	res, err := eng.Translate(argv("-N", "foo"))
	require.NoError(t, err)
	assert.Equal(t, []string{"nft add chain bridge filter foo"}, res.Lines)

	res, err = eng.Translate(argv("-A", "INPUT", "-p", "LENGTH"))
	require.NoError(t, err)
	assert.Equal(t, []string{"# -A INPUT -p LENGTH"}, res.Lines)
}

func TestDefaultTableSetting(t *testing.T) {
	eng := newEngine(t, func(s *ebt.Settings) { s.Table = "broute" })
	res, err := eng.Translate(argv("-L"))
	require.NoError(t, err)
	assert.Equal(t, []string{"list table bridge broute"}, res.Lines)
}

func TestInvocationsAreIndependent(t *testing.T) {
	eng := newEngine(t)

	res, err := eng.Translate(argv("-A", "INPUT", "--ip-src", "1.2.3.4", "-j", "mark", "--mark-set", "1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"add rule bridge filter INPUT ip saddr 1.2.3.4 counter meta mark set 0x1 accept"}, res.Lines)

	// the same options must be accepted again, with no state carried over
	res, err = eng.Translate(argv("-A", "INPUT", "--ip-src", "5.6.7.8", "-j", "ACCEPT"))
	require.NoError(t, err)
	assert.Equal(t, []string{"add rule bridge filter INPUT ip saddr 5.6.7.8 counter accept"}, res.Lines)

	res, err = eng.Translate(argv("-A", "INPUT", "-j", "ACCEPT"))
	require.NoError(t, err)
	assert.Equal(t, []string{"add rule bridge filter INPUT counter accept"}, res.Lines)
	assert.Empty(t, res.Draft.Attached())

	// target options vanish with the target
	_, err = eng.Translate(argv("-A", "INPUT", "--mark-set", "1"))
	require.Error(t, err)
	assert.Equal(t, "Unknown argument: '--mark-set'", err.Error())
}

func TestAttachOrder(t *testing.T) {
	res := translate(t, "-A", "INPUT", "--log", "--limit", "1/sec", "--log-level", "debug")
	var names []string
	for _, e := range res.Draft.Attached() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"log", "limit"}, names)
	assert.Equal(t, []string{"add rule bridge filter INPUT log level debug flags ether limit rate 1/second burst 5 packets counter"}, res.Lines)
}

func TestInversionResetsPerOption(t *testing.T) {
	res := translate(t, "-A", "FORWARD", "!", "-i", "eth0", "-o", "eth1")
	assert.True(t, res.Draft.In.Invert)
	assert.False(t, res.Draft.Out.Invert)
}

func TestDraftQualifiers(t *testing.T) {
	res := translate(t, "-A", "FORWARD", "-i", "eth+", "-o", "!", "eth1", "--logical-in", "br0", "-p", "!", "ARP")
	d := res.Draft

	type qualifiers struct {
		In, Out, LogicalIn, LogicalOut ebt.Interface
		Proto                          ebt.Protocol
	}
	want := qualifiers{
		In:        ebt.Interface{Name: "eth", Wildcard: true},
		Out:       ebt.Interface{Name: "eth1", Invert: true},
		LogicalIn: ebt.Interface{Name: "br0"},
		Proto:     ebt.Protocol{Value: 0x0806, Set: true, Invert: true},
	}
	got := qualifiers{d.In, d.Out, d.LogicalIn, d.LogicalOut, d.Proto}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(ebt.Protocol{})); diff != "" {
		t.Errorf("draft qualifiers mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []byte{0x08, 0x06}, d.Proto.Wire())
	assert.Equal(t, ebt.HookForward, d.Hook)
}
