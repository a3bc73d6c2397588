package asmscan

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/varalys/asmscan/internal/config"
	"github.com/varalys/asmscan/internal/types"
)

var (
	cfgOutput     string
	cfgFailOn     string
	cfgEngine     string
	cfgRules      string
	cfgMinVersion string
	cfgNoColor    bool
	cfgAudit      bool
	cfgForce      bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .asmscan.yml with the selected options",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".asmscan.yml", "output file path")
	initCmd.Flags().StringVar(&cfgFailOn, "fail-on", "High", "severity threshold: Low|Medium|High|Critical (empty disables)")
	initCmd.Flags().StringVar(&cfgEngine, "engine", "", "path to the asmscan-engine binary")
	initCmd.Flags().StringVar(&cfgRules, "rules", "", "rule set file passed to the engine")
	initCmd.Flags().StringVar(&cfgMinVersion, "min-version", "", "minimum accepted engine version")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgAudit, "audit", false, "record every scan in the audit log")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	fc, err := starterConfig()
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !cfgForce {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(cfgOutput, flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
		}
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func starterConfig() (config.FileConfig, error) {
	fc := config.FileConfig{
		NoColor: boolPtr(cfgNoColor),
		Audit:   boolPtr(cfgAudit),
	}
	if s := strings.TrimSpace(cfgFailOn); s != "" {
		sev, ok := types.ParseSeverity(s)
		if !ok {
			return fc, fmt.Errorf("unknown severity %q", s)
		}
		fc.FailOn = strPtr(sev.String())
	}
	ec := config.EngineConfig{
		BinaryPath: optStrPtr(cfgEngine),
		RulesPath:  optStrPtr(cfgRules),
		MinVersion: optStrPtr(cfgMinVersion),
	}
	if ec.BinaryPath != nil || ec.RulesPath != nil || ec.MinVersion != nil {
		fc.Engine = &ec
	}
	return fc, nil
}
