package validation

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/sys/unix"
)

// Kernel name limits, including the terminating NUL.
const (
	TableMaxNameLen = 32
	ChainMaxNameLen = 32
	IfNameSize      = unix.IFNAMSIZ
)

// ValidateTableName checks a -t argument.
func ValidateTableName(name string) error {
	if len(name) > TableMaxNameLen-1 {
		return fmt.Errorf("Table name length cannot exceed %d characters", TableMaxNameLen-1)
	}
	return nil
}

// ValidateChainName checks a chain name given to -E.
func ValidateChainName(name string) error {
	if len(name) >= ChainMaxNameLen {
		return fmt.Errorf("Chain name length can't exceed %d characters", ChainMaxNameLen-1)
	}
	return nil
}

// ValidateInterfaceLength checks the argument of -i, -o, --logical-in and
// --logical-out.
func ValidateInterfaceLength(name string) error {
	if len(name) >= IfNameSize {
		return fmt.Errorf("Interface name length cannot exceed %d characters", IfNameSize-1)
	}
	return nil
}

// ValidateTargetName checks a -j argument.
func ValidateTargetName(name string) error {
	if len(name) < 1 {
		return fmt.Errorf("Invalid target name (too short)")
	}
	if len(name)+1 > ChainMaxNameLen {
		return fmt.Errorf("Invalid target '%s' (%d chars max)", name, ChainMaxNameLen)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("Invalid target name `%s'", name)
	}
	return nil
}

// ValidateCounterDelta rejects relative counter updates ("+N", "-N") when
// running as a long-lived session.
func ValidateCounterDelta(token string, daemon bool) error {
	if !daemon || token == "" {
		return nil
	}
	switch token[0] {
	case '+':
		return fmt.Errorf("Incrementing rule counters (%s) not allowed in daemon mode", token)
	case '-':
		return fmt.Errorf("Decrementing rule counters (%s) not allowed in daemon mode", token)
	}
	return nil
}

// ValidatePolicy checks a -P policy for a builtin or user defined chain.
func ValidatePolicy(policy string, userChain bool) error {
	switch policy {
	case "ACCEPT", "DROP":
		return nil
	case "RETURN":
		if !userChain {
			return fmt.Errorf("Policy RETURN only allowed for user defined chains")
		}
		return nil
	}
	return fmt.Errorf("Wrong policy '%s'", policy)
}
