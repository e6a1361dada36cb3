package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/PolarWolf314/notevault/internal/audit"
	kerrors "github.com/PolarWolf314/notevault/internal/errors"
)

const dateFormat = "2006-01-02"

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse puts the most recent entry first.
	Reverse bool

	// Vault keeps only entries for this vault.
	Vault string

	// Operations keeps only entries with one of these operations.
	Operations []string

	// Since and Until bound entries by day, inclusive, as YYYY-MM-DD.
	Since string
	Until string
}

// LogResult contains the filtered audit entries.
type LogResult struct {
	Path    string
	Entries []audit.Entry
	Total   int
}

// Log reads the vault directory's audit log and filters it. A missing log is
// empty, not an error.
//
// Returns ErrInvalidDateFormat if Since or Until is not YYYY-MM-DD.
func Log(ctx context.Context, env *Env, opts LogOptions) (*LogResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	since, err := parseDay(opts.Since, "--since")
	if err != nil {
		return nil, err
	}
	until, err := parseDay(opts.Until, "--until")
	if err != nil {
		return nil, err
	}
	if !until.IsZero() {
		until = until.Add(24*time.Hour - time.Nanosecond)
	}

	path := filepath.Join(env.Store.Dir(), audit.FileName)
	entries, err := audit.ReadEntries(path)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	ops := make(map[string]bool, len(opts.Operations))
	for _, op := range opts.Operations {
		if op = strings.ToLower(strings.TrimSpace(op)); op != "" {
			ops[op] = true
		}
	}

	filtered := make([]audit.Entry, 0, len(entries))
	for _, e := range entries {
		if opts.Vault != "" && !strings.EqualFold(e.Vault, opts.Vault) {
			continue
		}
		if len(ops) > 0 && !ops[strings.ToLower(e.Operation)] {
			continue
		}
		if !since.IsZero() || !until.IsZero() {
			ts, ok := entryTime(e)
			if !ok || (!since.IsZero() && ts.Before(since)) || (!until.IsZero() && ts.After(until)) {
				continue
			}
		}
		filtered = append(filtered, e)
	}

	// Limit keeps the most recent entries in either order.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[len(filtered)-opts.Limit:]
	}
	if opts.Reverse {
		slices.Reverse(filtered)
	}

	return &LogResult{Path: path, Entries: filtered, Total: len(entries)}, nil
}

func parseDay(value, flag string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat, flag, value)
	}
	return t, nil
}

func entryTime(e audit.Entry) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	return t, err == nil
}
