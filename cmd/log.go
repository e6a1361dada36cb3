package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/audit"
	"github.com/PolarWolf314/notevault/internal/workflows"
)

var (
	logLimit     int
	logReverse   bool
	logVault     string
	logOperation string
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logVault, "vault", "", "filter by vault name")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of vault operations in the vault directory.

Entries record what was done to which vault and when. They never contain note
titles, messages or passwords.

Examples:
  notevault log                          # View full log
  notevault log -n 10                    # Last 10 entries
  notevault log --reverse                # Most recent first
  notevault log --vault personal         # One vault
  notevault log --operation add,rm       # Filter by operation
  notevault log --since 2026-01-01       # Filter by date
  notevault log --json                   # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")
	env, err := openEnv()
	if err != nil {
		return err
	}

	var ops []string
	if logOperation != "" {
		ops = strings.Split(logOperation, ",")
	}
	result, err := workflows.Log(context.Background(), env, workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Vault:      logVault,
		Operations: ops,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		return failNow(err)
	}

	Logger.Debugf("Parsed %d entries from %s", result.Total, result.Path)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.Total == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	switch {
	case logJSON:
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Println(string(data))
	case logOneline:
		for _, e := range result.Entries {
			fmt.Printf("%s %s %s %s\n", formatTimestamp(e.Timestamp, time.DateOnly), e.Operation, e.Vault, entryDetails(e))
		}
	default:
		for _, e := range result.Entries {
			fmt.Printf("%-19s  %-8s  %-20s  %s\n", formatTimestamp(e.Timestamp, time.DateTime), e.Operation, e.Vault, entryDetails(e))
		}
	}
	return nil
}

// formatTimestamp renders an entry time in local time, or returns it as is
// if it cannot be parsed.
func formatTimestamp(ts, layout string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format(layout)
}

func entryDetails(e audit.Entry) string {
	var parts []string
	switch e.Operation {
	case "rename":
		parts = append(parts, "to "+e.Target)
	case "export":
		if e.Target != "" {
			parts = append(parts, "to "+e.Target)
		}
	default:
		if e.Target != "" {
			parts = append(parts, "note #"+e.Target)
		}
	}
	if e.NotesCount > 0 {
		parts = append(parts, strconv.Itoa(e.NotesCount)+" notes")
	}
	return strings.Join(parts, ", ")
}
