package container

import (
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/notevault/internal/errors"
)

// Result is the outcome of a load or save.
type Result int

const (
	Success Result = iota
	InvalidFile
	InvalidVersion
	IoError
	EncryptionError
)

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case InvalidFile:
		return "InvalidFile"
	case InvalidVersion:
		return "InvalidVersion"
	case IoError:
		return "IoError"
	case EncryptionError:
		return "EncryptionError"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Sentinel returns the internal/errors value matching r, or nil for Success.
func (r Result) Sentinel() error {
	switch r {
	case InvalidFile:
		return kerrors.ErrInvalidFile
	case InvalidVersion:
		return kerrors.ErrInvalidVersion
	case IoError:
		return kerrors.ErrIO
	case EncryptionError:
		return kerrors.ErrWrongPassword
	default:
		return nil
	}
}

// Error is a failed load or save.
type Error struct {
	Result Result
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Result.Sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Result.Sentinel(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Result.
func (e *Error) Is(target error) bool {
	return target == e.Result.Sentinel()
}

// ResultOf returns the Result carried by err: Success for nil, IoError for
// errors not produced by this package.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Result
	}
	return IoError
}

func fail(result Result, format string, args ...any) *Error {
	return &Error{Result: result, Err: fmt.Errorf(format, args...)}
}
