// Package passgen generates random passwords from printable ASCII.
package passgen

import (
	"fmt"

	kerrors "github.com/PolarWolf314/notevault/internal/errors"
)

const (
	// First and Last bound the alphabet, inclusive.
	First = '!'
	Last  = '~'

	DefaultLength = 20
	MinLength     = 4
	MaxLength     = 1024
)

const (
	alphabetLen = Last - First + 1
	// Bytes at or above acceptLimit are rejected so every character is
	// equally likely.
	acceptLimit = 256 - 256%alphabetLen
)

// Source supplies random bytes. *crypto.Service implements it.
type Source interface {
	Random(n int) []byte
}

// Generate returns a password of length characters drawn uniformly from
// First..Last.
func Generate(src Source, length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("%w: %d is outside [%d, %d]", kerrors.ErrInvalidLength, length, MinLength, MaxLength)
	}
	out := make([]byte, 0, length)
	for len(out) < length {
		for _, b := range src.Random(length - len(out)) {
			if int(b) >= acceptLimit {
				continue
			}
			out = append(out, byte(First+int(b)%alphabetLen))
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
