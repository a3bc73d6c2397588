package asmscan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/varalys/asmscan/internal/audit"
	"github.com/varalys/asmscan/internal/cache"
	"github.com/varalys/asmscan/internal/config"
	"github.com/varalys/asmscan/internal/logging"
	"github.com/varalys/asmscan/internal/report"
	"github.com/varalys/asmscan/internal/scanner"
	"github.com/varalys/asmscan/internal/scanner/factory"
	"github.com/varalys/asmscan/internal/types"
)

// newScanner is swapped out by tests.
var newScanner = factory.New

// scanOptions is the fully resolved input of one scan invocation.
type scanOptions struct {
	AssemblyPath string
	JSON         bool
	SARIF        bool
	FailOn       string
	Verbose      bool
	Color        bool
	Audit        bool
	Cache        bool
	StateDir     string
	Engine       config.EngineConfig
}

func runScan(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: assembly not found: %s\n", args[0])
		return &exitError{code: 1}
	}
	gcfg, lcfg := loadConfigs()

	opts, err := resolveOptions(args[0], lcfg, gcfg)
	if err != nil {
		return err
	}
	opts.Color = opts.Color && isTerminal(os.Stdout)

	if code := execute(opts, cmd.OutOrStdout(), cmd.ErrOrStderr()); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// resolveOptions layers CLI flags over the local and global config files.
func resolveOptions(path string, lcfg, gcfg config.FileConfig) (scanOptions, error) {
	lec, gec := lcfg.GetEngineConfig(), gcfg.GetEngineConfig()

	engineOpts := map[string]string{}
	for k, v := range gec.Options {
		engineOpts[k] = v
	}
	for k, v := range lec.Options {
		engineOpts[k] = v
	}
	for _, kv := range flagOptions {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return scanOptions{}, fmt.Errorf("invalid --option %q: expected key=value", kv)
		}
		engineOpts[k] = v
	}

	binary := pickString(flagEngine, lec.BinaryPath, gec.BinaryPath)
	rules := pickString(flagRules, lec.RulesPath, gec.RulesPath)
	minVersion := pickString("", lec.MinVersion, gec.MinVersion)

	cwd, _ := os.Getwd()
	return scanOptions{
		AssemblyPath: path,
		JSON:         flagJSON,
		SARIF:        flagSARIF,
		FailOn:       pickString(flagFailOn, lcfg.FailOn, gcfg.FailOn),
		Verbose:      pickBool(flagVerbose, lcfg.Verbose, gcfg.Verbose),
		Color:        !pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor),
		Audit:        pickBool(flagAudit, lcfg.Audit, gcfg.Audit),
		Cache:        pickBool(flagCache, lcfg.Cache, gcfg.Cache),
		StateDir:     cwd,
		Engine: config.EngineConfig{
			BinaryPath: optStrPtr(binary),
			RulesPath:  optStrPtr(rules),
			MinVersion: optStrPtr(minVersion),
			Options:    engineOpts,
		},
	}, nil
}

// execute runs one scan and returns the process exit code. All report output
// goes to stdout and all diagnostics to stderr.
func execute(opts scanOptions, stdout, stderr io.Writer) int {
	if _, err := os.Stat(opts.AssemblyPath); err != nil {
		fmt.Fprintf(stderr, "error: assembly not found: %s\n", opts.AssemblyPath)
		return 1
	}

	scnr, err := newScanner(factory.Config{Engine: opts.Engine})
	if err != nil {
		printScanError(stderr, err, opts.Verbose)
		return 1
	}
	if opts.Cache {
		scnr = cache.Wrap(scnr, opts.StateDir)
	}

	start := time.Now()
	all, err := scnr.Scan(opts.AssemblyPath, scanner.Config{
		DeveloperMode: true,
		RulesPath:     opts.Engine.GetRulesPath(),
		Options:       opts.Engine.Options,
	})
	if err != nil {
		printScanError(stderr, err, opts.Verbose)
		return 1
	}
	elapsed := time.Since(start)

	shown := report.FilterForDisplay(all, opts.Verbose)
	name := filepath.Base(opts.AssemblyPath)

	switch {
	case opts.SARIF:
		err = report.WriteSARIF(stdout, name, shown)
	case opts.JSON:
		err = report.WriteJSON(stdout, name, shown)
	default:
		report.PrintText(stdout, name, shown, report.PrintOptions{Verbose: opts.Verbose, NoColor: !opts.Color})
	}
	if err != nil {
		fmt.Fprintln(stderr, "error: failed to write report:", err)
		return 1
	}

	fail, count := report.ShouldFail(all, opts.FailOn)
	if fail && !opts.JSON && !opts.SARIF {
		threshold, _ := types.ParseSeverity(opts.FailOn)
		fmt.Fprintf(stderr, "Failing: %d finding(s) at or above %s severity\n", count, threshold)
	}

	if opts.Audit {
		recordAudit(stderr, opts, scnr, all, len(shown), fail, elapsed)
	}

	if fail {
		return 1
	}
	return 0
}

// printScanError writes the one-line summary and, when verbose, the engine's
// extended diagnostic and any wrapped cause the summary does not already show.
func printScanError(w io.Writer, err error, verbose bool) {
	summary := err.Error()
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = summary[:i]
	}
	fmt.Fprintf(w, "error: scan failed: %s\n", summary)
	if !verbose {
		return
	}
	var se *scanner.ScanError
	if errors.As(err, &se) && se.Detail != "" {
		for _, line := range strings.Split(strings.TrimRight(se.Detail, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		if strings.Contains(summary, cause.Error()) {
			continue
		}
		msg := strings.ReplaceAll(strings.TrimRight(cause.Error(), "\n"), "\n", "\n  ")
		fmt.Fprintf(w, "  caused by: %s\n", msg)
	}
}

func recordAudit(stderr io.Writer, opts scanOptions, scnr scanner.Scanner, all []types.Finding, shown int, failed bool, elapsed time.Duration) {
	abs, err := filepath.Abs(opts.AssemblyPath)
	if err != nil {
		abs = opts.AssemblyPath
	}
	rec := audit.CreateScanRecord(abs, all, shown, opts.FailOn, failed, elapsed)
	if digest, err := audit.DigestFile(opts.AssemblyPath); err == nil {
		rec.AssemblyDigest = digest
	} else {
		logging.Logger.Debugw("could not digest assembly", "path", abs, "error", err)
	}
	if v, err := scnr.Version(); err == nil {
		rec.EngineVersion = v
	}

	if err := audit.NewAuditLog(opts.StateDir).LogScan(rec); err != nil {
		fmt.Fprintf(stderr, "warning: could not write audit log: %v\n", err)
	}
}

// loadConfigs reads the global and project-local config files. Missing files
// are normal; unreadable ones are reported and skipped.
func loadConfigs() (gcfg, lcfg config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	} else if !errors.Is(err, config.ErrNotFound) {
		logging.Logger.Warnw("ignoring global config", "error", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return gcfg, lcfg
	}
	if c, err := config.LoadLocal(cwd); err == nil {
		lcfg = c
	} else if !errors.Is(err, config.ErrNotFound) {
		logging.Logger.Warnw("ignoring local config", "dir", cwd, "error", err)
	}
	return gcfg, lcfg
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
