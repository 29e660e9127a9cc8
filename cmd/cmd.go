// Package cmd implements the ebtables-translate entry points.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"grimm.is/ebtranslate/internal/brand"
	"grimm.is/ebtranslate/internal/config"
	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/ebt/ext"
	"grimm.is/ebtranslate/internal/i18n"
	"grimm.is/ebtranslate/internal/logging"
	"grimm.is/ebtranslate/internal/metrics"
)

// Printer is used for user facing messages that are not legacy output.
var Printer = i18n.NewCLIPrinter()

// Exit statuses.
const (
	ExitOK               = 0
	ExitUntranslated     = 1
	ExitOtherProblem     = 1
	ExitParameterProblem = 2
)

// setup loads the configuration and builds an engine. style overrides the
// configured exec style when non-nil.
func setup(configFile string, stderr io.Writer, style *ebt.ExecStyle) (*ebt.Engine, *logging.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(logging.Config{Level: level, Output: stderr})
	if v := brand.Env("LOG_LEVEL"); v != "" {
		override, err := logging.ParseLevel(v)
		if err != nil {
			return nil, nil, err
		}
		logger.SetLevel(override)
	}
	logging.SetDefault(logger)

	db, err := cfg.Resolver()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ethertypes: %w", err)
	}

	settings := ebt.DefaultSettings()
	settings.Table = cfg.Table
	settings.ProgramName = brand.BinaryName
	settings.Version = brand.CompatVersion
	settings.EthertypesPath = cfg.EthertypesFile
	settings.OutputPrefix = cfg.OutputPrefix
	if settings.ExecStyle, err = ebt.ParseExecStyle(cfg.ExecStyle); err != nil {
		return nil, nil, err
	}
	if style != nil {
		settings.ExecStyle = *style
	}

	logger.Debug("engine ready", "table", settings.Table, "ethertypes", db.Len(),
		"config", configFile, "level", logger.GetLevel())
	engine := ebt.NewEngine(settings, ext.NewCatalog(), ebt.Env{Ethertypes: db}, logger)
	return engine, logger, nil
}

// reportError prints err the way xtables_error does and returns the exit
// status.
func reportError(w io.Writer, err error) int {
	prog := brand.BinaryName
	var e *ebt.Error
	if !errors.As(err, &e) {
		fmt.Fprintf(w, "%s: %v\n", prog, err)
		return ExitOtherProblem
	}
	fmt.Fprintf(w, "%s v%s (%s): %s\n", prog, brand.CompatVersion, brand.BackendName, e.Msg)
	if e.Kind == ebt.ParameterProblem {
		fmt.Fprintf(w, "Try `%s -h' or '%s --help' for more information.\n", prog, prog)
	}
	return e.ExitCode()
}

// outcome classifies one invocation for metrics.
func outcome(res *ebt.Result, err error) string {
	var e *ebt.Error
	switch {
	case errors.As(err, &e) && e.Kind == ebt.ParameterProblem:
		return metrics.OutcomeParameterProblem
	case err != nil:
		return metrics.OutcomeOtherProblem
	case res.Translated || res.Help || res.Version:
		return metrics.OutcomeTranslated
	}
	return metrics.OutcomeUntranslated
}

// observe records res in r.
func observe(r *metrics.Registry, res *ebt.Result, err error, elapsed time.Duration) {
	command, lines := "", 0
	if res != nil {
		command, lines = res.Command.String(), len(res.Lines)
		if d := res.Draft; d != nil {
			for _, e := range d.Attached() {
				r.ObserveExtension(e.Kind().String(), e.Name())
			}
			if d.Target != nil {
				r.ObserveExtension(d.Target.Kind().String(), d.Target.Name())
			}
		}
	}
	r.Observe(command, outcome(res, err), lines, elapsed)
}
