package validation

import (
	"strings"
	"testing"
)

func TestValidateInterfaceLength(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "eth0", false},
		{"empty", "", false},
		{"max length", "eth0123456789ab", false}, // 15 chars
		{"one too long", "eth0123456789abc", true},
		{"way too long", "eth01234567890123456", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceLength(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceLength(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}

	if err := ValidateInterfaceLength(strings.Repeat("x", 16)); err == nil ||
		err.Error() != "Interface name length cannot exceed 15 characters" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateTableName(t *testing.T) {
	if err := ValidateTableName("broute"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTableName(strings.Repeat("t", 31)); err != nil {
		t.Errorf("31 chars should be accepted: %v", err)
	}
	err := ValidateTableName(strings.Repeat("t", 32))
	if err == nil || err.Error() != "Table name length cannot exceed 31 characters" {
		t.Errorf("unexpected result: %v", err)
	}
}

func TestValidateTargetName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ACCEPT", ""},
		{strings.Repeat("c", 31), ""},
		{"", "Invalid target name (too short)"},
		{strings.Repeat("c", 32), "Invalid target '" + strings.Repeat("c", 32) + "' (32 chars max)"},
		{"my chain", "Invalid target name `my chain'"},
	}
	for _, tt := range tests {
		err := ValidateTargetName(tt.input)
		got := ""
		if err != nil {
			got = err.Error()
		}
		if got != tt.want {
			t.Errorf("ValidateTargetName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateCounterDelta(t *testing.T) {
	if err := ValidateCounterDelta("+10", false); err != nil {
		t.Errorf("program style should allow increments: %v", err)
	}
	if err := ValidateCounterDelta("10", true); err != nil {
		t.Errorf("absolute values are always allowed: %v", err)
	}
	if err := ValidateCounterDelta("+10", true); err == nil ||
		err.Error() != "Incrementing rule counters (+10) not allowed in daemon mode" {
		t.Errorf("unexpected result: %v", err)
	}
	if err := ValidateCounterDelta("-10", true); err == nil ||
		err.Error() != "Decrementing rule counters (-10) not allowed in daemon mode" {
		t.Errorf("unexpected result: %v", err)
	}
}

func TestValidatePolicy(t *testing.T) {
	tests := []struct {
		policy  string
		user    bool
		wantErr bool
	}{
		{"ACCEPT", false, false},
		{"DROP", true, false},
		{"RETURN", true, false},
		{"RETURN", false, true},
		{"accept", false, true},
		{"QUEUE", true, true},
	}
	for _, tt := range tests {
		err := ValidatePolicy(tt.policy, tt.user)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePolicy(%q, %v) error = %v, wantErr %v", tt.policy, tt.user, err, tt.wantErr)
		}
	}
}

func TestValidateChainName(t *testing.T) {
	if err := ValidateChainName("mychain"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateChainName(strings.Repeat("c", 32)); err == nil {
		t.Error("expected error for 32 char chain name")
	}
}
