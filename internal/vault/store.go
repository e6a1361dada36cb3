package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/PolarWolf314/notevault/internal/container"
	"github.com/PolarWolf314/notevault/internal/crypto"
	kerrors "github.com/PolarWolf314/notevault/internal/errors"
	"github.com/PolarWolf314/notevault/internal/notes"
)

// Random supplies salts. *crypto.Service implements it.
type Random interface {
	Random(n int) []byte
}

// Entry describes a vault file on disk.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Info is an Entry together with its unencrypted header.
type Info struct {
	Entry
	Header container.Header
}

// Store manages the vault files in one directory.
type Store struct {
	dir     string
	codec   *container.Codec
	random  Random
	saltLen int

	mu   sync.Mutex
	busy map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithSaltLength sets the salt length for new vaults and password changes.
// Values below crypto.SaltLen are raised to it.
func WithSaltLength(n int) Option {
	return func(s *Store) {
		s.saltLen = max(n, crypto.SaltLen)
	}
}

// NewStore returns a Store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string, codec *container.Codec, random Random, opts ...Option) *Store {
	s := &Store{
		dir:     dir,
		codec:   codec,
		random:  random,
		saltLen: crypto.SaltLen,
		busy:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the vault directory.
func (s *Store) Dir() string {
	return s.dir
}

// Codec returns the codec used for loading and saving.
func (s *Store) Codec() *container.Codec {
	return s.codec
}

// Path returns the file path for the vault called name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+container.Extension)
}

// List returns the vaults in the directory ordered case-insensitively by
// name. A missing directory holds no vaults.
func (s *Store) List() ([]Entry, error) {
	matches, err := doublestar.Glob(os.DirFS(s.dir), "*"+container.Extension)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	entries := make([]Entry, 0, len(matches))
	for _, match := range matches {
		path := filepath.Join(s.dir, match)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{
			Name:    strings.TrimSuffix(match, container.Extension),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

// Exists reports whether a vault called name exists.
func (s *Store) Exists(name string) (bool, error) {
	name, err := CleanName(name)
	if err != nil {
		return false, err
	}
	return s.exists(name)
}

// Create writes a new empty vault protected by password and returns it open.
// It refuses to replace an existing vault.
func (s *Store) Create(ctx context.Context, name, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := CleanName(name)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, kerrors.ErrEmptyPassword
	}
	release, err := s.acquire(name)
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := s.exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrVaultExists, name)
	}

	salt := s.random.Random(s.saltLen)
	session := &Session{
		Name:       name,
		Notes:      notes.NewCollection(),
		Salt:       salt,
		Key:        s.codec.DeriveKey(password, salt),
		Iterations: s.codec.Iterations(),
		store:      s,
	}
	if err := s.write(session); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

// Open loads and decrypts the vault called name.
func (s *Store) Open(ctx context.Context, name string, cred container.Credential) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := CleanName(name)
	if err != nil {
		return nil, err
	}
	release, err := s.acquire(name)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.load(name, cred)
}

// Save encrypts the session's notes and atomically replaces its file.
func (s *Store) Save(ctx context.Context, session *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	release, err := s.acquire(session.Name)
	if err != nil {
		return err
	}
	defer release()

	return s.write(session)
}

// Rename moves the vault called from to to. The credential must open the
// vault, and to must not already exist.
func (s *Store) Rename(ctx context.Context, from, to string, cred container.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, err := CleanName(from)
	if err != nil {
		return err
	}
	to, err = CleanName(to)
	if err != nil {
		return err
	}
	names := []string{from}
	if to != from {
		names = append(names, to)
	}
	release, err := s.acquire(names...)
	if err != nil {
		return err
	}
	defer release()

	if err := s.verify(from, cred); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	exists, err := s.exists(to)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", kerrors.ErrVaultExists, to)
	}
	if err := os.Rename(s.Path(from), s.Path(to)); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", from, to, err)
	}
	return nil
}

// Delete removes the vault called name. The credential must open it.
func (s *Store) Delete(ctx context.Context, name string, cred container.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	release, err := s.acquire(name)
	if err != nil {
		return err
	}
	defer release()

	if err := s.verify(name, cred); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}

// Inspect reads a vault's header without decrypting it.
func (s *Store) Inspect(name string) (*Info, error) {
	name, err := CleanName(name)
	if err != nil {
		return nil, err
	}
	path := s.Path(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, s.openError(name, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	header, err := s.codec.Inspect(f)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", name, err)
	}
	return &Info{
		Entry:  Entry{Name: name, Path: path, Size: stat.Size(), ModTime: stat.ModTime()},
		Header: header,
	}, nil
}

// acquire marks names busy and returns a function that releases them. If any
// name is already busy nothing is marked and ErrBusy is returned.
func (s *Store) acquire(names ...string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if _, ok := s.busy[name]; ok {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrBusy, name)
		}
	}
	for _, name := range names {
		s.busy[name] = struct{}{}
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, name := range names {
			delete(s.busy, name)
		}
	}, nil
}

func (s *Store) exists(name string) (bool, error) {
	_, err := os.Stat(s.Path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", name, err)
}

func (s *Store) load(name string, cred container.Credential) (*Session, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, s.openError(name, err)
	}
	defer f.Close()

	result, err := s.codec.Load(f, cred)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return &Session{
		Name:       name,
		Notes:      result.Notes,
		Salt:       result.Salt,
		Key:        slices.Clone(result.Key),
		Iterations: result.Iterations,
		Upgraded:   result.Upgraded,
		Header:     result.Header,
		store:      s,
	}, nil
}

// verify checks that cred opens the vault, discarding the notes.
func (s *Store) verify(name string, cred container.Credential) error {
	session, err := s.load(name, cred)
	if err != nil {
		return err
	}
	session.Close()
	return nil
}

func (s *Store) write(session *Session) error {
	if session.closed {
		return fmt.Errorf("saving %s: session is closed", session.Name)
	}
	var buf bytes.Buffer
	if err := s.codec.Save(&buf, session.Notes, session.Salt, session.Key, session.Iterations); err != nil {
		return fmt.Errorf("saving %s: %w", session.Name, err)
	}
	if err := writeFileAtomic(s.Path(session.Name), buf.Bytes()); err != nil {
		return fmt.Errorf("saving %s: %w: %w", session.Name, kerrors.ErrIO, err)
	}
	session.Upgraded = false
	return nil
}

func (s *Store) openError(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", kerrors.ErrVaultNotFound, name)
	}
	return fmt.Errorf("opening %s: %w: %w", name, kerrors.ErrIO, err)
}
