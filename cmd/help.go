package cmd

import (
	"io"

	"grimm.is/ebtranslate/internal/brand"
)

// printHelp writes the legacy help text.
func printHelp(w io.Writer) {
	Printer.Fprintf(w, "%s: Translate ebtables command to nft syntax\n"+
		"no side effects occur, the translated command is written "+
		"to standard output.\n"+
		"A '#' followed by input means no translation "+
		"is available.\n", brand.BinaryName)
}

// PrintUsage describes the sub-commands of the binary.
func PrintUsage(w io.Writer) {
	Printer.Fprintf(w, `%s - %s

Usage:
  %s [ebtables options]
  %s batch [-config file] [-expect golden] [-stats] file|-
  %s version

The configuration file defaults to %s and can be moved with
%s_CONFIG. %s_LOG_LEVEL overrides its log_level.
`, brand.Name, brand.Description, brand.BinaryName, brand.BinaryName, brand.BinaryName,
		brand.GetConfigPath(), brand.ConfigEnvPrefix, brand.ConfigEnvPrefix)
}
