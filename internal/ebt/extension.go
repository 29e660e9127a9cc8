package ebt

import (
	"fmt"

	"grimm.is/ebtranslate/internal/ethertypes"
	"grimm.is/ebtranslate/internal/getopt"
	"grimm.is/ebtranslate/internal/xlate"
)

// Kind distinguishes the three extension roles.
type Kind int

const (
	KindMatch Kind = iota
	KindWatcher
	KindTarget
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "match"
	case KindWatcher:
		return "watcher"
	case KindTarget:
		return "target"
	}
	return "unknown"
}

// Extension is a pluggable match, watcher or target. Instances are created
// per invocation and keep their parsed state privately.
type Extension interface {
	// Name is the extension name, e.g. "ip" or "log".
	Name() string

	Kind() Kind

	// Options lists the long options. Val is provider local and must be
	// below OptionSpan.
	Options() []getopt.Option

	// Parse consumes one option. It returns false when the option is not
	// one of its own.
	Parse(id int, arg string, invert bool) (bool, error)

	// Finalize runs once after all options are consumed.
	Finalize() error

	// Translate renders the extension into b. It returns false when no
	// nftables equivalent exists.
	Translate(d *Draft, b *xlate.Buffer) bool
}

// Env carries the collaborators extensions may need.
type Env struct {
	Ethertypes ethertypes.Resolver
}

// Factory creates a fresh extension instance.
type Factory func(env Env) Extension

type catalogEntry struct {
	name    string
	kind    Kind
	factory Factory
}

// Catalog knows every extension that can be loaded, in registration order.
type Catalog struct {
	entries []catalogEntry
	index   map[string]int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

func catalogKey(kind Kind, name string) string {
	return kind.String() + "/" + name
}

// Register adds a factory. Registering the same name twice for one kind
// is a programming error.
func (c *Catalog) Register(name string, kind Kind, f Factory) {
	key := catalogKey(kind, name)
	if _, ok := c.index[key]; ok {
		panic(fmt.Sprintf("Multiple %ss registered with name %q.", kind, name))
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, catalogEntry{name: name, kind: kind, factory: f})
}

// Names lists registered names of one kind in registration order.
func (c *Catalog) Names(kind Kind) []string {
	var names []string
	for _, e := range c.entries {
		if e.kind == kind {
			names = append(names, e.name)
		}
	}
	return names
}

// New instantiates an extension.
func (c *Catalog) New(name string, kind Kind, env Env) (Extension, bool) {
	i, ok := c.index[catalogKey(kind, name)]
	if !ok {
		return nil, false
	}
	return c.entries[i].factory(env), true
}

// StandardTarget is the catalog name of the verdict target.
const StandardTarget = "standard"

// IsStandardVerdict reports whether a -j name is a builtin verdict.
func IsStandardVerdict(name string) bool {
	switch name {
	case "ACCEPT", "DROP", "RETURN", "CONTINUE":
		return true
	}
	return false
}

// Target resolves a -j argument. Verdicts map to the standard target;
// unknown names are chain jumps and return false.
func (c *Catalog) Target(jump string, env Env) (Extension, bool) {
	if IsStandardVerdict(jump) {
		return c.New(StandardTarget, KindTarget, env)
	}
	if jump == StandardTarget {
		return nil, false
	}
	return c.New(jump, KindTarget, env)
}
