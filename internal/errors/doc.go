// Package errors provides typed error values for NoteVault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Container errors: the failure outcomes of the container codec
//     (ErrInvalidFile, ErrInvalidVersion, ErrIO, ErrWrongPassword)
//   - Vault errors: issues with the vault directory (ErrVaultNotFound, ErrBusy)
//   - Note errors: issues with individual notes and exports (ErrNoteNotFound,
//     ErrIDsExhausted, ErrInvalidExport)
//   - Input errors: bad user input (ErrEmptyPassword, ErrInvalidVaultName)
//
// Container errors are not retriable in the same way: ErrInvalidFile and
// ErrInvalidVersion mean the user must pick another file, ErrWrongPassword
// means re-prompt, and ErrIO may succeed on retry.
//
// # Usage
//
// Handle errors in the CLI layer:
//
//	session, err := store.Open(ctx, name, container.Password(pw))
//	if errors.Is(err, kerrors.ErrWrongPassword) {
//	    // Ask again
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("opening vault %s: %w", name, kerrors.ErrVaultNotFound)
package errors
