package workflows

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"

	"github.com/PolarWolf314/notevault/internal/container"
	"github.com/PolarWolf314/notevault/internal/vault"
)

// CreateOptions configures the create workflow.
type CreateOptions struct {
	Vault    string
	Password string
}

// CreateResult contains the outcome of a create operation.
type CreateResult struct {
	Vault string
	Path  string
}

// Create writes a new, empty vault.
//
// Returns ErrInvalidVaultName, ErrEmptyPassword, ErrVaultExists or ErrBusy.
func Create(ctx context.Context, env *Env, opts CreateOptions) (*CreateResult, error) {
	session, err := env.Store.Create(ctx, opts.Vault, opts.Password)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	env.record("create", session.Name, 0, "")
	return &CreateResult{Vault: session.Name, Path: env.Store.Path(session.Name)}, nil
}

// ListVaultsResult contains the vaults in the vault directory.
type ListVaultsResult struct {
	Dir    string
	Vaults []vault.Entry
}

// ListVaults enumerates the vault directory.
func ListVaults(ctx context.Context, env *Env) (*ListVaultsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := env.Store.List()
	if err != nil {
		return nil, err
	}
	return &ListVaultsResult{Dir: env.Store.Dir(), Vaults: entries}, nil
}

// InfoOptions configures the info workflow.
type InfoOptions struct {
	Vault string
}

// InfoResult describes a vault without decrypting it.
type InfoResult struct {
	vault.Info

	// Fingerprint is the hex BLAKE3-256 digest of the file, useful for
	// comparing copies of a vault.
	Fingerprint string

	// Legacy is set for version 0 files.
	Legacy bool

	// WeakKey is set when the file's iteration count is below the configured
	// one; the key is strengthened on the next change.
	WeakKey bool
}

// Info reads a vault's header and fingerprints the file. No password is
// needed.
func Info(ctx context.Context, env *Env, opts InfoOptions) (*InfoResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := env.Store.Inspect(opts.Vault)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(info.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", info.Name, err)
	}
	sum := blake3.Sum256(data)

	return &InfoResult{
		Info:        *info,
		Fingerprint: hex.EncodeToString(sum[:]),
		Legacy:      info.Header.Version == container.LegacyVersion,
		WeakKey:     info.Header.Iterations < env.Store.Codec().Iterations(),
	}, nil
}

// RenameOptions configures the rename workflow.
type RenameOptions struct {
	Vault    string
	NewName  string
	Password string
}

// RenameResult contains the outcome of a rename.
type RenameResult struct {
	OldName string
	NewName string
}

// RenameVault renames a vault after checking the password.
//
// Returns ErrWrongPassword, ErrVaultNotFound, ErrVaultExists or ErrBusy.
func RenameVault(ctx context.Context, env *Env, opts RenameOptions) (*RenameResult, error) {
	from, err := vault.CleanName(opts.Vault)
	if err != nil {
		return nil, err
	}
	to, err := vault.CleanName(opts.NewName)
	if err != nil {
		return nil, err
	}
	if err := env.Store.Rename(ctx, from, to, container.Password(opts.Password)); err != nil {
		return nil, err
	}
	env.record("rename", from, 0, to)
	return &RenameResult{OldName: from, NewName: to}, nil
}

// DeleteOptions configures the delete workflow.
type DeleteOptions struct {
	Vault    string
	Password string
}

// DeleteResult contains the outcome of a delete.
type DeleteResult struct {
	Vault string
	Path  string
}

// DeleteVault removes a vault after checking the password.
//
// Returns ErrWrongPassword, ErrVaultNotFound or ErrBusy.
func DeleteVault(ctx context.Context, env *Env, opts DeleteOptions) (*DeleteResult, error) {
	name, err := vault.CleanName(opts.Vault)
	if err != nil {
		return nil, err
	}
	if err := env.Store.Delete(ctx, name, container.Password(opts.Password)); err != nil {
		return nil, err
	}
	env.record("delete", name, 0, "")
	return &DeleteResult{Vault: name, Path: env.Store.Path(name)}, nil
}

// ChangePasswordOptions configures the password change workflow.
type ChangePasswordOptions struct {
	Vault       string
	OldPassword string
	NewPassword string
}

// ChangePasswordResult contains the outcome of a password change.
type ChangePasswordResult struct {
	Vault      string
	NotesCount int
}

// ChangePassword re-encrypts a vault under a new password with a fresh salt.
func ChangePassword(ctx context.Context, env *Env, opts ChangePasswordOptions) (*ChangePasswordResult, error) {
	var name string
	count, err := env.update(ctx, opts.Vault, opts.OldPassword, func(s *vault.Session) error {
		name = s.Name
		return s.ChangePassword(opts.NewPassword)
	})
	if err != nil {
		return nil, err
	}
	env.record("passwd", name, count, "")
	return &ChangePasswordResult{Vault: name, NotesCount: count}, nil
}

// Watch streams changes to vault files until ctx is cancelled.
func Watch(ctx context.Context, env *Env) (<-chan vault.Event, error) {
	return env.Store.Watch(ctx)
}
