package asmscan

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/varalys/asmscan/internal/audit"
	"github.com/varalys/asmscan/internal/types"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded scans from the audit log",
		Long:  "history lists scans recorded with --audit (or audit: true in config), newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			return runHistory(audit.NewAuditLog(cwd), flagHistoryLimit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "maximum records to show (0 = all)")
	rootCmd.AddCommand(cmd)
}

func runHistory(log *audit.AuditLog, limit int, w io.Writer) error {
	records, err := log.LoadHistory()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(w, "No scans recorded. Run asmscan with --audit to start a history.")
			return nil
		}
		return err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	table := tablewriter.NewWriter(w)
	table.Header("Time", "Assembly", "Digest", "Findings", "Shown", "Top", "Fail On", "Result")
	for _, r := range records {
		result := "pass"
		if r.Failed {
			result = "FAIL"
		}
		if err := table.Append([]string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			filepath.Base(r.Assembly),
			r.AssemblyDigest,
			strconv.Itoa(r.TotalFindings),
			strconv.Itoa(r.DisplayedFindings),
			topSeverity(r.SeverityCounts),
			r.FailOn,
			result,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// topSeverity names the most severe level present in counts, or "-".
func topSeverity(counts map[string]int) string {
	sevs := types.Severities()
	for i := len(sevs) - 1; i >= 0; i-- {
		if counts[sevs[i].String()] > 0 {
			return sevs[i].String()
		}
	}
	return "-"
}
