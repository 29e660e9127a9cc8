package cmd

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/anmitsu/go-shlex"
	"github.com/pmezard/go-difflib/difflib"

	"grimm.is/ebtranslate/internal/brand"
	"grimm.is/ebtranslate/internal/ebt"
	"grimm.is/ebtranslate/internal/i18n"
	"grimm.is/ebtranslate/internal/metrics"
)

// BatchOptions controls RunBatch.
type BatchOptions struct {
	ConfigFile string
	// Expect names a golden file the combined output must match.
	Expect string
	// Stats prints outcome counters to stderr when the run ends.
	Stats bool
}

// batchTally counts outcomes of one run.
type batchTally struct {
	translated, untranslated, failed int
	worst                            int
}

func (t *batchTally) add(status int) {
	switch status {
	case ExitOK:
		t.translated++
	case ExitParameterProblem:
		t.failed++
	default:
		t.untranslated++
	}
	if status > t.worst {
		t.worst = status
	}
}

// RunBatchArgs parses the batch flags and runs the batch.
func RunBatchArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := BatchOptions{}
	fs.StringVar(&opts.ConfigFile, "config", brand.GetConfigPath(), "Configuration file")
	fs.StringVar(&opts.Expect, "expect", "", "Golden file to compare the output against")
	fs.BoolVar(&opts.Stats, "stats", false, "Print outcome counters on exit")
	if err := fs.Parse(args); err != nil {
		return ExitParameterProblem
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "usage: %s batch [-config file] [-expect golden] [-stats] file|-\n", brand.BinaryName)
		return ExitParameterProblem
	}

	in := stdin
	if name := fs.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return reportError(stderr, fmt.Errorf("failed to open batch file: %w", err))
		}
		defer f.Close()
		in = f
	}
	return RunBatch(opts, in, stdout, stderr)
}

// RunBatch translates one legacy command per input line through a single
// engine in daemon exec style.
func RunBatch(opts BatchOptions, in io.Reader, stdout, stderr io.Writer) int {
	daemon := ebt.ExecDaemon
	engine, logger, err := setup(opts.ConfigFile, stderr, &daemon)
	if err != nil {
		return reportError(stderr, err)
	}
	reg := metrics.New()

	var out bytes.Buffer
	var tally batchTally
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words, err := shlex.Split(line, true)
		if err != nil {
			fmt.Fprintf(stderr, "line %d: %v\n", lineNo, err)
			tally.add(ExitParameterProblem)
			continue
		}
		if len(words) > 0 && (words[0] == "ebtables" || words[0] == brand.BinaryName) {
			words = words[1:]
		}
		argv := append([]string{brand.BinaryName}, words...)

		start := time.Now()
		res, err := engine.Translate(argv)
		observe(reg, res, err, time.Since(start))

		if err != nil {
			fmt.Fprintf(stderr, "line %d: ", lineNo)
			tally.add(reportError(stderr, err))
			continue
		}
		for _, l := range res.Lines {
			out.WriteString(l)
			out.WriteByte('\n')
		}
		if res.Translated || res.Help {
			tally.add(ExitOK)
		} else {
			logger.Info("no translation", "line", lineNo)
			tally.add(ExitUntranslated)
		}
	}
	if err := scanner.Err(); err != nil {
		return reportError(stderr, fmt.Errorf("failed to read batch input: %w", err))
	}

	status := tally.worst
	if opts.Expect != "" {
		status = compareGolden(opts.Expect, out.String(), stdout, stderr)
	} else {
		stdout.Write(out.Bytes())
	}

	if opts.Stats {
		Printer.Fprintf(stderr, i18n.MsgBatchSummary, tally.translated, tally.untranslated, tally.failed)
		if err := reg.WriteText(stderr); err != nil {
			return reportError(stderr, err)
		}
	}
	return status
}

// compareGolden prints a unified diff when got differs from the golden file.
func compareGolden(path, got string, stdout, stderr io.Writer) int {
	want, err := os.ReadFile(path)
	if err != nil {
		return reportError(stderr, fmt.Errorf("failed to read golden file: %w", err))
	}
	if string(want) == got {
		return ExitOK
	}

	Printer.Fprintf(stderr, i18n.MsgGoldenMismatch, path)
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(want)),
		B:        difflib.SplitLines(got),
		FromFile: path,
		ToFile:   "output",
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	fmt.Fprint(stdout, text)
	return ExitUntranslated
}
