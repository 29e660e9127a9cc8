package cmd

import (
	"fmt"
	"io"

	"grimm.is/ebtranslate/internal/brand"
	"grimm.is/ebtranslate/internal/i18n"
)

// RunTranslate translates one legacy invocation. argv[0] is the program
// name. It returns the process exit status.
func RunTranslate(argv []string, stdout, stderr io.Writer) int {
	engine, _, err := setup(brand.GetConfigPath(), stderr, nil)
	if err != nil {
		return reportError(stderr, err)
	}

	res, err := engine.Translate(argv)
	if err != nil {
		return reportError(stderr, err)
	}
	if res.Help {
		printHelp(stderr)
		return ExitOK
	}

	for _, line := range res.Lines {
		fmt.Fprintln(stdout, line)
	}
	if res.Version {
		return ExitOK
	}
	if !res.Translated {
		fmt.Fprintln(stderr, Printer.Sprintf(i18n.MsgNotImplemented))
		return ExitUntranslated
	}
	return ExitOK
}
