package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	invalidNameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)
	repeatedHyphens  = regexp.MustCompile(`-{2,}`)
)

// SanitizeName turns text such as a file name into a vault name: spaces
// become hyphens, anything but letters, digits, hyphens and underscores is
// dropped. An empty result becomes "notes".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidNameChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "notes"
	}
	return name
}

// UniqueName returns base, or base with the smallest -N suffix (N >= 2) that
// does not collide case-insensitively with existing.
func UniqueName(base string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[strings.ToLower(name)] = true
	}

	name := base
	for suffix := 2; taken[strings.ToLower(name)]; suffix++ {
		name = base + "-" + strconv.Itoa(suffix)
	}
	return name
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
