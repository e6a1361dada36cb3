package crypto

import (
	"crypto/rand"
	"crypto/sha1"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLen is the derived key length in bytes (AES-256).
	KeyLen = 32

	// BlockLen is the cipher block length in bytes, also the IV length.
	BlockLen = 16

	// SaltLen is the salt length used for new containers.
	SaltLen = 16

	// DefaultIterations is the PBKDF2 iteration count for new saves.
	DefaultIterations = 100000

	// LegacyIterations is the count pinned by version 0 containers, which do
	// not store the iteration count in their header.
	LegacyIterations = 30000

	// MinIterations is the smallest count accepted from configuration.
	MinIterations = 10000

	// MaxIterations is the largest count a container header may carry.
	MaxIterations = 1 << 24
)

// Service generates random bytes and derives keys from passwords.
// A Service is safe for concurrent use if its reader is.
type Service struct {
	reader io.Reader
}

// NewService returns a Service backed by the OS CSPRNG.
func NewService() *Service {
	return &Service{reader: rand.Reader}
}

// NewServiceWithReader returns a Service that draws random bytes from r.
func NewServiceWithReader(r io.Reader) *Service {
	return &Service{reader: r}
}

// Random returns n random bytes. It panics if the entropy source fails.
func (s *Service) Random(n int) []byte {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		panic(fmt.Sprintf("crypto: random source unavailable: %v", err))
	}
	return buf
}

// NewSalt returns SaltLen fresh random bytes.
func (s *Service) NewSalt() []byte {
	return s.Random(SaltLen)
}

// DeriveKey stretches password with salt into a KeyLen-byte key. The result is
// deterministic for identical inputs. A non-positive iteration count or empty
// salt is a programming error and panics.
func (s *Service) DeriveKey(password string, salt []byte, iterations int) []byte {
	if iterations <= 0 {
		panic(fmt.Sprintf("crypto: invalid iteration count %d", iterations))
	}
	if len(salt) == 0 {
		panic("crypto: empty salt")
	}
	return pbkdf2.Key([]byte(password), salt, iterations, KeyLen, sha1.New)
}
