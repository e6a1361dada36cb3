package vault

import (
	"github.com/PolarWolf314/notevault/internal/container"
	kerrors "github.com/PolarWolf314/notevault/internal/errors"
	"github.com/PolarWolf314/notevault/internal/notes"
	"github.com/PolarWolf314/notevault/internal/secret"
)

// Session is an open vault. Salt changes only on a password change, and Key
// only on a password change or a re-derivation at load time.
type Session struct {
	Name  string
	Notes *notes.Collection
	Salt  []byte
	Key   []byte

	// Iterations is the count Key was derived with. Save records it in the
	// header.
	Iterations int

	// Upgraded is set when the key was re-derived with the configured
	// iteration count during load. It clears once the session is saved.
	Upgraded bool

	// Header is the header the vault had when it was opened.
	Header container.Header

	store  *Store
	closed bool
}

// ChangePassword replaces the salt and key. The change reaches disk on the
// next Save.
func (s *Session) ChangePassword(password string) error {
	if password == "" {
		return kerrors.ErrEmptyPassword
	}
	salt := s.store.random.Random(s.store.saltLen)
	key := s.store.codec.DeriveKey(password, salt)
	secret.Zero(s.Key)
	s.Salt = salt
	s.Key = key
	s.Iterations = s.store.codec.Iterations()
	return nil
}

// Close zeroes the key and drops the notes. It is idempotent.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	secret.Zero(s.Key)
	s.Key = nil
	s.Notes = nil
}
