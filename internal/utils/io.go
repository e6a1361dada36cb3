package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxInputSize caps what ReadInput accepts.
const MaxInputSize = 32 << 20

// ErrInputTooLarge is returned when input exceeds MaxInputSize.
var ErrInputTooLarge = errors.New("input is too large")

// ReadInput reads a whole file, or piped stdin when path is "" or "-".
// Stdin attached to a terminal is refused rather than waited on, and empty
// input is an error.
func ReadInput(path string) ([]byte, error) {
	var r io.Reader
	name := path
	if path == "" || path == "-" {
		stat, err := os.Stdin.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat stdin: %w", err)
		}
		if stat.Mode()&os.ModeCharDevice != 0 {
			return nil, fmt.Errorf("no data provided on stdin (hint: pipe the input or pass a file)")
		}
		r, name = os.Stdin, "stdin"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	return readLimited(r, name, MaxInputSize)
}

func readLimited(r io.Reader, name string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInputTooLarge, name, limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}
	return data, nil
}
