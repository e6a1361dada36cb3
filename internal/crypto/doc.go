// Package crypto provides the random-byte and key-derivation service used by
// the container codec.
//
// # Random Bytes
//
// Service.Random draws from the operating system CSPRNG (crypto/rand). A
// failure to read from the OS generator is treated as fatal and panics: no
// caller can do anything useful without random bytes, and silently falling
// back to a weaker source would be worse.
//
// # Key Derivation
//
// Keys are derived with PBKDF2-HMAC-SHA1 and are always KeyLen bytes
// (AES-256). The iteration count is a parameter so older containers pinned to
// a smaller count can still be opened:
//
//	svc := crypto.NewService()
//	salt := svc.Random(crypto.SaltLen)
//	key := svc.DeriveKey("hunter2", salt, crypto.DefaultIterations)
//
// # Testing
//
// NewServiceWithReader accepts any io.Reader as the entropy source so tests
// can produce deterministic salts and initialization vectors. Production code
// should only ever use NewService.
package crypto
