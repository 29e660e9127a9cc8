// Package ethertypes resolves symbolic Ethernet protocol names using the
// /etc/ethertypes database format shipped with ebtables.
package ethertypes

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultPath is where the system database normally lives.
const DefaultPath = "/etc/ethertypes"

//go:embed ethertypes
var builtin string

// Entry is one database line.
type Entry struct {
	Name    string
	Type    uint16
	Aliases []string
}

// DB is an ordered ethertype database. Lookups are case-insensitive and
// the first matching entry wins, like getethertypebyname(3).
type DB struct {
	entries []Entry
}

// Resolver maps a protocol name to its ethertype and back.
type Resolver interface {
	LookupName(name string) (uint16, bool)
	LookupType(t uint16) (string, bool)
}

// Builtin returns the database compiled into the binary.
func Builtin() *DB {
	db, err := Parse(strings.NewReader(builtin))
	if err != nil {
		panic("failed to parse embedded ethertypes: " + err.Error())
	}
	return db
}

// Load reads a database file. A missing file falls back to the built-in
// table; any other error is returned.
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Builtin(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ethertypes: %w", err)
	}
	defer f.Close()

	db, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return db, nil
}

// Parse reads the "<name> <hex> [aliases...] [# comment]" format.
func Parse(r io.Reader) (*DB, error) {
	db := &DB{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: missing protocol number for %q", lineNo, fields[0])
		}
		v, err := strconv.ParseUint(fields[1], 16, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad protocol number %q", lineNo, fields[1])
		}
		db.entries = append(db.entries, Entry{
			Name:    fields[0],
			Type:    uint16(v),
			Aliases: fields[2:],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// Add appends an entry. Earlier entries keep precedence.
func (db *DB) Add(e Entry) {
	db.entries = append(db.entries, e)
}

// LookupName implements Resolver.
func (db *DB) LookupName(name string) (uint16, bool) {
	for _, e := range db.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Type, true
		}
		for _, a := range e.Aliases {
			if strings.EqualFold(a, name) {
				return e.Type, true
			}
		}
	}
	return 0, false
}

// LookupType returns the primary name of an ethertype.
func (db *DB) LookupType(t uint16) (string, bool) {
	for _, e := range db.entries {
		if e.Type == t {
			return e.Name, true
		}
	}
	return "", false
}

// Len is the number of entries.
func (db *DB) Len() int {
	return len(db.entries)
}
