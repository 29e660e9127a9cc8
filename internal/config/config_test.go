package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/ebtranslate/internal/testutil"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadHCL(t *testing.T) {
	t.Setenv("EBT_TEST_PREFIX", "nft ")
	path := testutil.WriteFile(t, "ebtranslate.hcl", `
table         = "nat"
exec_style    = "daemon"
output_prefix = env.EBT_TEST_PREFIX
log_level     = "debug"

ethertype "PROFINET" {
  value   = "0x8892"
  aliases = ["pn"]
}

ethertype "LLDP" {
  value = "88cc"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nat", cfg.Table)
	assert.Equal(t, "daemon", cfg.ExecStyle)
	assert.Equal(t, "nft ", cfg.OutputPrefix)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, CurrentSchemaVersion, cfg.SchemaVersion)
	assert.Equal(t, "/etc/ethertypes", cfg.EthertypesFile)
	require.Len(t, cfg.Ethertypes, 2)
	assert.Equal(t, []string{"pn"}, cfg.Ethertypes[0].Aliases)
}

func TestLoadJSON(t *testing.T) {
	path := testutil.WriteFile(t, "ebtranslate.json", `{"table": "broute", "ethertypes": [{"name": "X", "value": "0x9000"}]}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "broute", cfg.Table)
	assert.Equal(t, "program", cfg.ExecStyle)
	require.Len(t, cfg.Ethertypes, 1)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"syntax", "a.hcl", `table = `, "HCL parse error"},
		{"unknown key", "b.hcl", `tables = "x"`, "HCL decode error"},
		{"unknown env", "c.hcl", `table = env.EBT_SURELY_UNSET_VARIABLE`, "HCL decode error"},
		{"json", "d.json", `{`, "JSON parse error"},
		{"exec style", "e.hcl", `exec_style = "service"`, "exec_style"},
		{"log level", "f.hcl", `log_level = "loud"`, "log_level"},
		{"table length", "g.hcl", `table = "abcdefghijklmnopqrstuvwxyz0123456789"`, "Table name length cannot exceed 31 characters"},
		{"schema", "h.hcl", `schema_version = "2.0"`, "unsupported config schema version"},
		{"ethertype value", "i.hcl", "ethertype \"A\" {\n  value = \"zz\"\n}\n", "bad protocol number"},
		{"ethertype length", "j.hcl", "ethertype \"A\" {\n  value = \"05dc\"\n}\n", "frame length"},
		{"ethertype duplicate", "k.hcl", "ethertype \"A\" {\n  value = \"9000\"\n}\nethertype \"a\" {\n  value = \"9001\"\n}\n", "duplicate name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(testutil.WriteFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidationErrorsCollect(t *testing.T) {
	cfg := Defaults()
	cfg.ExecStyle = "x"
	cfg.LogLevel = "y"
	errs := cfg.Validate()
	require.Len(t, errs, 2)
	assert.Equal(t, "exec_style", errs[0].Field)
	assert.Equal(t, "log_level", errs[1].Field)
	assert.Contains(t, errs.Error(), "; ")
}

func TestResolver(t *testing.T) {
	db := testutil.WriteFile(t, "ethertypes", "IPv4 0800 ip\nCUSTOM 9100 cst\n")
	cfg := Defaults()
	cfg.EthertypesFile = db
	cfg.Ethertypes = []Ethertype{
		{Name: "PROFINET", Value: "0x8892", Aliases: []string{"pn"}},
		{Name: "CUSTOM", Value: "0x9200"},
	}

	r, err := cfg.Resolver()
	require.NoError(t, err)

	for name, want := range map[string]uint16{"ip": 0x0800, "pn": 0x8892, "profinet": 0x8892, "custom": 0x9100} {
		got, ok := r.LookupName(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := r.LookupName("IPv6")
	assert.False(t, ok, "a configured file replaces the builtin table")
}

func TestResolverMissingFileFallsBack(t *testing.T) {
	cfg := Defaults()
	cfg.EthertypesFile = filepath.Join(t.TempDir(), "none")
	r, err := cfg.Resolver()
	require.NoError(t, err)
	v, ok := r.LookupName("IPv6")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x86dd), v)
}
