package errors

import "errors"

// Container errors mirror the failure outcomes of loading or saving a container.
var (
	// ErrInvalidFile indicates the data is not a NoteVault container.
	ErrInvalidFile = errors.New("not a valid note vault file")

	// ErrInvalidVersion indicates the container was written by a newer format version.
	ErrInvalidVersion = errors.New("unsupported note vault file version")

	// ErrIO indicates the container could not be read or written, or is truncated or corrupt.
	ErrIO = errors.New("note vault i/o error")

	// ErrWrongPassword indicates the key did not decrypt the container, or the
	// cipher could not be initialized with it.
	ErrWrongPassword = errors.New("incorrect password or key")
)

// Vault errors indicate problems with the vault directory or a vault file.
var (
	// ErrVaultNotFound indicates no vault with the given name exists.
	ErrVaultNotFound = errors.New("vault not found")

	// ErrVaultExists indicates a vault with the given name already exists.
	ErrVaultExists = errors.New("vault already exists")

	// ErrInvalidVaultName indicates the vault name cannot be used as a file name.
	ErrInvalidVaultName = errors.New("invalid vault name")

	// ErrBusy indicates another operation on the same vault is still in flight.
	ErrBusy = errors.New("vault is busy with another operation")
)

// Note errors indicate problems with individual notes.
var (
	// ErrNoteNotFound indicates the requested note is not in the vault.
	ErrNoteNotFound = errors.New("note not found")

	// ErrIDsExhausted indicates the vault has no note ids left to allocate.
	ErrIDsExhausted = errors.New("no note ids left in vault")

	// ErrInvalidExport indicates an import document could not be parsed.
	ErrInvalidExport = errors.New("invalid export document")

	// ErrUnsupportedFormat indicates an export format other than yaml or json.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Input errors indicate bad user input.
var (
	// ErrEmptyPassword indicates an empty password was supplied.
	ErrEmptyPassword = errors.New("password must not be empty")

	// ErrPasswordMismatch indicates a password confirmation did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidLength indicates a requested password length is out of range.
	ErrInvalidLength = errors.New("invalid password length")

	// ErrInvalidDateFormat indicates a date filter is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)
