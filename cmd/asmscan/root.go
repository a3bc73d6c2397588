package asmscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/varalys/asmscan/internal/logging"
)

var (
	flagJSON    bool
	flagSARIF   bool
	flagFailOn  string
	flagVerbose bool
	flagNoColor bool
	flagDebug   bool
	flagEngine  string
	flagRules   string
	flagOptions []string
	flagAudit   bool
	flagCache   bool

	version = "0.1.0"
)

// rootCmd scans the assembly named by its single argument.
var rootCmd = &cobra.Command{
	Use:   "asmscan [flags] <assembly-path>",
	Short: "Scan a compiled assembly for unsafe API usage",
	Long: "asmscan runs the assembly analysis engine against a compiled module and reports " +
		"findings with developer guidance, optionally failing the build at a severity threshold.",
	Version:       version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logging.Init(flagDebug, cmd.ErrOrStderr())
	},
	RunE: runScan,
}

// exitError carries a process exit code out of a command whose diagnostics
// have already been written.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute runs the asmscan CLI. It should be called by the main package.
func Execute() {
	err := rootCmd.Execute()
	logging.Sync()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func init() {
	rootCmd.SetVersionTemplate("asmscan {{.Version}}\n")

	f := rootCmd.Flags()
	f.BoolVarP(&flagJSON, "json", "j", false, "emit the report as JSON")
	f.BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	f.StringVarP(&flagFailOn, "fail-on", "f", "", "exit 1 when findings reach this severity: Low|Medium|High|Critical")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "show findings without guidance and extended error details")
	f.BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	f.StringVar(&flagEngine, "engine", "", "path to the asmscan-engine binary")
	f.StringVar(&flagRules, "rules", "", "rule set file passed to the engine")
	f.StringArrayVar(&flagOptions, "option", nil, "engine option key=value (repeatable)")
	f.BoolVar(&flagAudit, "audit", false, "append a record of this scan to the audit log")
	f.BoolVar(&flagCache, "cache", false, "reuse the previous result when the assembly and engine are unchanged")

	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging on stderr")
}
