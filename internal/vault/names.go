package vault

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/notevault/internal/container"
	kerrors "github.com/PolarWolf314/notevault/internal/errors"
)

// CleanName strips a trailing .secnote extension from name and checks that
// the rest is usable as a file name.
func CleanName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), container.Extension)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: name is empty", kerrors.ErrInvalidVaultName)
	case strings.HasPrefix(name, "."):
		return "", fmt.Errorf("%w: %q starts with a dot", kerrors.ErrInvalidVaultName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return "", fmt.Errorf("%w: %q contains a path separator", kerrors.ErrInvalidVaultName, name)
	}
	return name, nil
}
