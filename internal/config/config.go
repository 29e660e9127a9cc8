package config

import (
	"grimm.is/ebtranslate/internal/ethertypes"
)

// CurrentSchemaVersion is the latest config schema version
const CurrentSchemaVersion = "1.0"

// Config is the decoded configuration file.
type Config struct {
	SchemaVersion string `hcl:"schema_version,optional" json:"schema_version,omitempty"`

	// Table used when an invocation carries no -t.
	Table string `hcl:"table,optional" json:"table,omitempty"`

	// EthertypesFile is the protocol name database. Its entries are
	// consulted before the ethertype blocks below.
	EthertypesFile string `hcl:"ethertypes_file,optional" json:"ethertypes_file,omitempty"`

	// ExecStyle is "program" or "daemon".
	ExecStyle string `hcl:"exec_style,optional" json:"exec_style,omitempty"`

	// OutputPrefix is prepended to every translated statement, e.g. "nft ".
	OutputPrefix string `hcl:"output_prefix,optional" json:"output_prefix,omitempty"`

	LogLevel string `hcl:"log_level,optional" json:"log_level,omitempty"`

	Ethertypes []Ethertype `hcl:"ethertype,block" json:"ethertypes,omitempty"`
}

// Ethertype adds a protocol name to the resolver.
type Ethertype struct {
	Name    string   `hcl:"name,label" json:"name"`
	Value   string   `hcl:"value" json:"value"`
	Aliases []string `hcl:"aliases,optional" json:"aliases,omitempty"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		SchemaVersion:  CurrentSchemaVersion,
		Table:          "filter",
		EthertypesFile: ethertypes.DefaultPath,
		ExecStyle:      "program",
		LogLevel:       "warn",
	}
}

// applyDefaults fills unset keys.
func (c *Config) applyDefaults() {
	d := Defaults()
	if c.SchemaVersion == "" {
		c.SchemaVersion = d.SchemaVersion
	}
	if c.Table == "" {
		c.Table = d.Table
	}
	if c.EthertypesFile == "" {
		c.EthertypesFile = d.EthertypesFile
	}
	if c.ExecStyle == "" {
		c.ExecStyle = d.ExecStyle
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}
