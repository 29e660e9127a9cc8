package main

import (
	"os"

	"grimm.is/ebtranslate/cmd"
	"grimm.is/ebtranslate/internal/brand"
)

func main() {
	if len(os.Args) < 2 {
		cmd.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	// Legacy invocations always start with an option, so the bare words
	// below cannot collide with them.
	switch os.Args[1] {
	case "batch":
		os.Exit(cmd.RunBatchArgs(os.Args[2:], os.Stdin, os.Stdout, os.Stderr))

	case "version":
		cmd.Printer.Printf("%s version %s (commit %s, built %s, compatible with %s)\n",
			brand.Name, brand.Version, brand.GitCommit, brand.BuildTime, brand.CompatVersion)

	case "help", "usage":
		cmd.PrintUsage(os.Stdout)

	default:
		os.Exit(cmd.RunTranslate(os.Args, os.Stdout, os.Stderr))
	}
}
