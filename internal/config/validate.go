package config

import (
	"fmt"
	"strconv"
	"strings"

	"grimm.is/ebtranslate/internal/logging"
	"grimm.is/ebtranslate/internal/validation"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate validates the entire configuration.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if major, _, _ := strings.Cut(c.SchemaVersion, "."); major != "1" {
		add("schema_version", "unsupported config schema version %s (supported: %s)", c.SchemaVersion, CurrentSchemaVersion)
	}
	if err := validation.ValidateTableName(c.Table); err != nil {
		add("table", "%v", err)
	}
	switch c.ExecStyle {
	case "program", "daemon":
	default:
		add("exec_style", "must be \"program\" or \"daemon\", got %q", c.ExecStyle)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("log_level", "%v", err)
	}

	seen := make(map[string]bool)
	for i, e := range c.Ethertypes {
		field := fmt.Sprintf("ethertype[%d]", i)
		switch {
		case e.Name == "" || strings.ContainsAny(e.Name, " \t#"):
			add(field, "invalid name %q", e.Name)
		case seen[strings.ToLower(e.Name)]:
			add(field, "duplicate name %q", e.Name)
		}
		seen[strings.ToLower(e.Name)] = true
		if _, err := e.Type(); err != nil {
			add(field, "%v", err)
		}
	}
	return errs
}

// Type parses the hexadecimal value of the block. Values below 0x0600
// are frame lengths, not protocols.
func (e Ethertype) Type() (uint16, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(e.Value, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad protocol number %q", e.Value)
	}
	if v < 0x0600 {
		return 0, fmt.Errorf("protocol number %q is a frame length", e.Value)
	}
	return uint16(v), nil
}
