package container

import (
	"bufio"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/PolarWolf314/notevault/internal/crypto"
	"github.com/PolarWolf314/notevault/internal/notes"
)

// Crypto is the random-byte and key-derivation service a Codec needs.
// *crypto.Service implements it.
type Crypto interface {
	Random(n int) []byte
	DeriveKey(password string, salt []byte, iterations int) []byte
}

// Credential opens a container: either a password, which is run through key
// derivation, or an already derived key.
type Credential struct {
	password string
	key      []byte
	isKey    bool
}

// Password returns a credential that derives the key from password.
func Password(password string) Credential {
	return Credential{password: password}
}

// Key returns a credential that uses key directly, skipping derivation.
func Key(key []byte) Credential {
	return Credential{key: key, isKey: true}
}

// IsKey reports whether the credential is a raw key.
func (c Credential) IsKey() bool {
	return c.isKey
}

// LoadResult is a successfully loaded container.
type LoadResult struct {
	Notes *notes.Collection
	Salt  []byte

	// Key is the key to save with and Iterations the count it was derived
	// with. When the container's count differs from the codec's and the
	// credential was a password, Key is re-derived with the codec's count
	// and Upgraded is true. A raw key keeps the container's count.
	Key        []byte
	Iterations int
	Upgraded   bool

	Header Header
}

// Codec loads and saves containers. It holds no per-operation state; each
// Load or Save is independent.
type Codec struct {
	crypto     Crypto
	iterations int
}

// Option configures a Codec.
type Option func(*Codec)

// WithIterations sets the iteration count for new keys, also the target
// count on load. n is clamped to [crypto.MinIterations, crypto.MaxIterations].
func WithIterations(n int) Option {
	return func(c *Codec) {
		c.iterations = min(max(n, crypto.MinIterations), crypto.MaxIterations)
	}
}

// New returns a Codec using svc for randomness and key derivation.
func New(svc Crypto, opts ...Option) *Codec {
	c := &Codec{crypto: svc, iterations: crypto.DefaultIterations}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Iterations returns the iteration count used for new keys.
func (c *Codec) Iterations() int {
	return c.iterations
}

// DeriveKey derives a key for salt with the codec's iteration count.
func (c *Codec) DeriveKey(password string, salt []byte) []byte {
	return c.crypto.DeriveKey(password, salt, c.iterations)
}

// Inspect reads only the unencrypted header of a container.
func (c *Codec) Inspect(r io.Reader) (Header, error) {
	return readHeader(bufio.NewReader(r))
}

// Load decrypts a container from r.
func (c *Codec) Load(r io.Reader, cred Credential) (*LoadResult, error) {
	br := bufio.NewReader(r)
	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	key := cred.key
	if !cred.isKey {
		key = c.crypto.DeriveKey(cred.password, header.Salt, header.Iterations)
	}

	ciphertext, err := io.ReadAll(br)
	if err != nil {
		return nil, fail(IoError, "reading payload: %w", err)
	}

	block, err := newBlock(key, header.IV)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fail(IoError, "payload length %d is not a multiple of the block size", len(ciphertext))
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, header.IV).CryptBlocks(plaintext, ciphertext)

	canary := header.canary()
	if !bytes.HasPrefix(plaintext, canary) {
		return nil, fail(EncryptionError, "payload canary mismatch")
	}
	plaintext, err = unpad(plaintext)
	if err != nil {
		return nil, err
	}
	if len(plaintext) < len(canary) {
		return nil, fail(IoError, "payload truncated")
	}

	coll, err := decodeNotes(plaintext[len(canary):])
	if err != nil {
		return nil, err
	}

	result := &LoadResult{
		Notes:      coll,
		Salt:       header.Salt,
		Key:        key,
		Iterations: header.Iterations,
		Header:     header,
	}
	if !cred.isKey && header.Iterations != c.iterations {
		result.Key = c.DeriveKey(cred.password, header.Salt)
		result.Iterations = c.iterations
		result.Upgraded = true
	}
	return result, nil
}

// Save encrypts coll with key and writes a current-version container to w.
// A fresh IV is drawn for every call. key must have been derived from salt
// with iterations, which is recorded in the header.
func (c *Codec) Save(w io.Writer, coll *notes.Collection, salt, key []byte, iterations int) error {
	if len(salt) == 0 || len(salt) > maxSaltLen {
		return fail(EncryptionError, "invalid salt length %d", len(salt))
	}
	if iterations < 1 || iterations > crypto.MaxIterations {
		return fail(EncryptionError, "invalid iteration count %d", iterations)
	}

	iv := c.crypto.Random(crypto.BlockLen)
	block, err := newBlock(key, iv)
	if err != nil {
		return err
	}

	header := Header{Version: CurrentVersion, Salt: salt, Iterations: iterations, IV: iv}
	plaintext := header.canary()
	plaintext, err = appendNotes(plaintext, coll)
	if err != nil {
		return err
	}
	plaintext = pad(plaintext, aes.BlockSize)

	out := appendHeader(nil, header)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	out = append(out, ciphertext...)

	if _, err := w.Write(out); err != nil {
		return fail(IoError, "writing container: %w", err)
	}
	return nil
}

func newBlock(key, iv []byte) (cipher.Block, error) {
	if len(key) != crypto.KeyLen {
		return nil, fail(EncryptionError, "key length %d, want %d", len(key), crypto.KeyLen)
	}
	if len(iv) != aes.BlockSize {
		return nil, fail(EncryptionError, "iv length %d, want %d", len(iv), aes.BlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fail(EncryptionError, "initializing cipher: %w", err)
	}
	return block, nil
}

// minRecordLen is the encoded size of a note with empty title and message.
const minRecordLen = 8 + 4 + 4

func decodeNotes(payload []byte) (*notes.Collection, error) {
	r := bytes.NewReader(payload)
	count, err := readInt32(r)
	if err != nil {
		return nil, fail(IoError, "reading note count: %w", err)
	}
	if count < 0 || int64(count)*minRecordLen > int64(r.Len()) {
		return nil, fail(IoError, "invalid note count %d", count)
	}

	coll := notes.NewCollection()
	for i := int32(0); i < count; i++ {
		var idBytes [8]byte
		if _, err := io.ReadFull(r, idBytes[:]); err != nil {
			return nil, fail(IoError, "reading id of note %d: %w", i, err)
		}
		note := notes.NewNote(int64(binary.BigEndian.Uint64(idBytes[:])))

		if note.Title, err = readString(r); err != nil {
			return nil, fail(IoError, "reading title of note %d: %w", i, err)
		}
		if note.Message, err = readString(r); err != nil {
			return nil, fail(IoError, "reading message of note %d: %w", i, err)
		}
		if !coll.InsertExisting(note) {
			return nil, fail(IoError, "duplicate note id %d", note.ID())
		}
	}
	return coll, nil
}

func appendNotes(buf []byte, coll *notes.Collection) ([]byte, error) {
	if coll.Len() > math.MaxInt32 {
		return nil, fail(IoError, "too many notes: %d", coll.Len())
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(coll.Len()))
	for note := range coll.All() {
		if len(note.Title) > math.MaxInt32 || len(note.Message) > math.MaxInt32 {
			return nil, fail(IoError, "note %d is too large", note.ID())
		}
		buf = binary.BigEndian.AppendUint64(buf, uint64(note.ID()))
		buf = appendBlob(buf, []byte(note.Title))
		buf = appendBlob(buf, []byte(note.Message))
	}
	return buf, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > r.Len() {
		return "", fmt.Errorf("invalid string length %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fail(IoError, "empty payload")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fail(IoError, "invalid padding")
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, fail(IoError, "invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
