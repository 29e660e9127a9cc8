// Package ebt parses legacy ebtables command lines and translates them into
// nftables bridge family statements.
package ebt

import (
	"grimm.is/ebtranslate/internal/ethertypes"
	"grimm.is/ebtranslate/internal/logging"
)

// ExecStyle selects between a one-shot program and a long-lived session.
type ExecStyle int

const (
	ExecProgram ExecStyle = iota
	ExecDaemon
)

// ParseExecStyle accepts "program" and "daemon".
func ParseExecStyle(s string) (ExecStyle, error) {
	switch s {
	case "", "program":
		return ExecProgram, nil
	case "daemon":
		return ExecDaemon, nil
	}
	return ExecProgram, otherErrorf("unknown exec style %q", s)
}

// Settings are fixed for the lifetime of an Engine.
type Settings struct {
	// Table is the table used when -t is absent.
	Table       string
	ExecStyle   ExecStyle
	ProgramName string
	Version     string
	// EthertypesPath is quoted in unknown protocol errors.
	EthertypesPath string
	// OutputPrefix is prepended to translated statements.
	OutputPrefix string
}

// DefaultSettings matches the stock ebtables-translate binary.
func DefaultSettings() Settings {
	return Settings{
		Table:          "filter",
		ExecStyle:      ExecProgram,
		ProgramName:    "ebtables-translate",
		Version:        "1.8.10",
		EthertypesPath: ethertypes.DefaultPath,
	}
}

// Result is the outcome of one successful invocation.
type Result struct {
	Command Command
	// Lines go to standard output in order.
	Lines []string
	// Translated is false when no nftables equivalent exists; Lines then
	// holds at most the echoed input.
	Translated bool
	Help       bool
	Version    bool
	Draft      *Draft
}

// Engine translates argument vectors one at a time. It is not safe for
// concurrent use; every Translate call starts from a clean registry.
type Engine struct {
	settings Settings
	catalog  *Catalog
	env      Env
	registry *Registry
	emitter  *Emitter
	logger   *logging.Logger
}

// NewEngine creates an engine over a catalog of extensions.
func NewEngine(settings Settings, catalog *Catalog, env Env, logger *logging.Logger) *Engine {
	if settings.Table == "" {
		settings.Table = "filter"
	}
	if settings.EthertypesPath == "" {
		settings.EthertypesPath = ethertypes.DefaultPath
	}
	if env.Ethertypes == nil {
		env.Ethertypes = ethertypes.Builtin()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		settings: settings,
		catalog:  catalog,
		env:      env,
		registry: NewRegistry(builtinOptions),
		emitter:  NewEmitter(BridgeOps{}, settings.OutputPrefix),
		logger:   logger.WithComponent("ebt"),
	}
}

// Settings returns the engine settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Reset drops every extension registered by the previous invocation.
func (e *Engine) Reset() {
	e.registry.Reset()
}

// Translate parses one argument vector, argv[0] being the program name,
// and renders it. Errors are *Error values.
func (e *Engine) Translate(argv []string) (*Result, error) {
	e.Reset()
	for _, kind := range []Kind{KindMatch, KindWatcher} {
		for _, name := range e.catalog.Names(kind) {
			ext, _ := e.catalog.New(name, kind, e.env)
			if _, err := e.registry.Register(ext); err != nil {
				return nil, err
			}
		}
	}

	p := newParser(e, argv)
	res, err := p.run()
	if err != nil {
		e.logger.Debug("invocation failed", "error", err)
		return nil, err
	}
	return res, nil
}
