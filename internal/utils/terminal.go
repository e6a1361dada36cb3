package utils

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"

	kerrors "github.com/PolarWolf314/notevault/internal/errors"
	"github.com/PolarWolf314/notevault/internal/secret"
)

// PasswordReader obtains passwords for vault operations.
type PasswordReader struct {
	// File, when set, is read instead of prompting. "-" means stdin.
	File string
}

// Read returns one password. From a file it is the first line; otherwise the
// user is prompted on the terminal.
func (p PasswordReader) Read(prompt string) (*secret.Buffer, error) {
	if p.File != "" {
		buf, err := secret.ReadFromPath(p.File)
		if err != nil {
			return nil, fmt.Errorf("reading password file: %w", err)
		}
		return buf, nil
	}
	return readFromTerminal(prompt)
}

// ReadNew returns a new password. When prompting, the user must type it
// twice; a mismatch returns ErrPasswordMismatch.
func (p PasswordReader) ReadNew(prompt, confirmPrompt string) (*secret.Buffer, error) {
	first, err := p.Read(prompt)
	if err != nil {
		return nil, err
	}
	if p.File != "" {
		return first, nil
	}

	second, err := readFromTerminal(confirmPrompt)
	if err != nil {
		first.Close()
		return nil, err
	}
	defer second.Close()

	if !first.Equal(second) {
		first.Close()
		return nil, kerrors.ErrPasswordMismatch
	}
	return first, nil
}

func readFromTerminal(prompt string) (*secret.Buffer, error) {
	raw, err := ReadPassphrase(prompt)
	if err != nil {
		raw, err = ReadPassphraseFromTTY(prompt)
		if err != nil {
			return nil, err
		}
	}
	if len(raw) == 0 {
		return nil, kerrors.ErrEmptyPassword
	}
	return secret.NewFromBytes(raw)
}

// ReadPassphrase prompts on stderr and reads a line from stdin without
// echoing it. It fails if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read password: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// ReadPassphraseFromTTY is ReadPassphrase against the controlling terminal,
// for when stdin carries other data such as an import document.
func ReadPassphraseFromTTY(prompt string) ([]byte, error) {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for password input: %w", ttyPath(), err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", ttyPath())
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}
