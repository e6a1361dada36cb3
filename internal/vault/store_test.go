package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/notevault/internal/container"
	"github.com/PolarWolf314/notevault/internal/crypto"
	kerrors "github.com/PolarWolf314/notevault/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	svc := crypto.NewService()
	codec := container.New(svc, container.WithIterations(crypto.MinIterations))
	return NewStore(filepath.Join(t.TempDir(), "vaults"), codec, svc)
}

func createVault(t *testing.T, s *Store, name, password string, titles ...string) {
	t.Helper()
	session, err := s.Create(context.Background(), name, password)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", name, err)
	}
	defer session.Close()
	for _, title := range titles {
		session.Notes.InsertNew().Title = title
	}
	if len(titles) > 0 {
		if err := s.Save(context.Background(), session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
}

func TestCreateAndOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVault(t, s, "personal", "pw", "Groceries")

	info, err := os.Stat(s.Path("personal"))
	if err != nil {
		t.Fatalf("vault file not created: %v", err)
	}
	if info.Mode().Perm() != fileMode {
		t.Errorf("expected mode %o, got %o", fileMode, info.Mode().Perm())
	}

	session, err := s.Open(ctx, "personal", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()
	if session.Notes.Len() != 1 || session.Notes.At(0).Title != "Groceries" {
		t.Errorf("unexpected notes %v", session.Notes.Notes())
	}
	if session.Upgraded {
		t.Error("did not expect an upgrade")
	}

	_, err = s.Open(ctx, "personal", container.Password("wrong"))
	if !errors.Is(err, kerrors.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if container.ResultOf(err) != container.EncryptionError {
		t.Errorf("expected EncryptionError, got %v", container.ResultOf(err))
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	s := newTestStore(t)
	createVault(t, s, "dup", "pw")

	_, err := s.Create(context.Background(), "dup", "other")
	if !errors.Is(err, kerrors.ErrVaultExists) {
		t.Fatalf("expected ErrVaultExists, got %v", err)
	}

	// The original still opens with its password.
	session, err := s.Open(context.Background(), "dup", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	session.Close()
}

func TestCreateRejectsEmptyPassword(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(context.Background(), "x", ""); !errors.Is(err, kerrors.ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Open(context.Background(), "ghost", container.Password("pw"))
	if !errors.Is(err, kerrors.ErrVaultNotFound) {
		t.Errorf("expected ErrVaultNotFound, got %v", err)
	}
}

func TestOpenWithKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVault(t, s, "k", "pw", "note")

	first, err := s.Open(ctx, "k", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	key := append([]byte(nil), first.Key...)
	first.Close()

	second, err := s.Open(ctx, "k", container.Key(key))
	if err != nil {
		t.Fatalf("Open with key failed: %v", err)
	}
	second.Close()

	// Closing a session must not zero the caller's key.
	if key[0] == 0 && key[1] == 0 && key[2] == 0 && key[3] == 0 {
		t.Error("caller's key appears to have been zeroed")
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"work", "work", false},
		{"work.secnote", "work", false},
		{"  spaced  ", "spaced", false},
		{"", "", true},
		{".secnote", "", true},
		{".hidden", "", true},
		{"a/b", "", true},
		{`a\b`, "", true},
		{"../escape", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := CleanName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, kerrors.ErrInvalidVaultName) {
					t.Errorf("expected ErrInvalidVaultName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestListSortedCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"beta", "Alpha", "gamma"} {
		createVault(t, s, name, "pw")
	}
	// Files that are not vaults are ignored.
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(s.Dir(), "dir"+container.Extension), 0700); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "Alpha,beta,gamma" {
		t.Errorf("expected Alpha,beta,gamma, got %v", names)
	}
}

func TestListMissingDirectory(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestRename(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVault(t, s, "old", "pw", "kept")
	createVault(t, s, "taken", "pw")

	if err := s.Rename(ctx, "old", "new", container.Password("bad")); !errors.Is(err, kerrors.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if err := s.Rename(ctx, "old", "old", container.Password("bad")); !errors.Is(err, kerrors.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword for a same-name rename, got %v", err)
	}
	if err := s.Rename(ctx, "missing", "missing", container.Password("pw")); !errors.Is(err, kerrors.ErrVaultNotFound) {
		t.Errorf("expected ErrVaultNotFound for a same-name rename, got %v", err)
	}
	if err := s.Rename(ctx, "old", "old", container.Password("pw")); err != nil {
		t.Errorf("expected a same-name rename to succeed, got %v", err)
	}
	if err := s.Rename(ctx, "old", "taken", container.Password("pw")); !errors.Is(err, kerrors.ErrVaultExists) {
		t.Errorf("expected ErrVaultExists, got %v", err)
	}
	if err := s.Rename(ctx, "old", "new", container.Password("pw")); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if ok, _ := s.Exists("old"); ok {
		t.Error("expected old name to be gone")
	}
	session, err := s.Open(ctx, "new", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open after rename failed: %v", err)
	}
	defer session.Close()
	if session.Notes.At(0).Title != "kept" {
		t.Errorf("expected note to survive rename")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVault(t, s, "doomed", "pw")

	if err := s.Delete(ctx, "doomed", container.Password("nope")); !errors.Is(err, kerrors.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
	if ok, _ := s.Exists("doomed"); !ok {
		t.Fatal("expected vault to survive a failed delete")
	}
	if err := s.Delete(ctx, "doomed", container.Password("pw")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := s.Exists("doomed"); ok {
		t.Error("expected vault to be deleted")
	}
	if err := s.Delete(ctx, "doomed", container.Password("pw")); !errors.Is(err, kerrors.ErrVaultNotFound) {
		t.Errorf("expected ErrVaultNotFound, got %v", err)
	}
}

func TestBusyGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVault(t, s, "busy", "pw")

	release, err := s.acquire("busy")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if _, err := s.Open(ctx, "busy", container.Password("pw")); !errors.Is(err, kerrors.ErrBusy) {
		t.Errorf("expected ErrBusy from Open, got %v", err)
	}
	if err := s.Delete(ctx, "busy", container.Password("pw")); !errors.Is(err, kerrors.ErrBusy) {
		t.Errorf("expected ErrBusy from Delete, got %v", err)
	}
	if err := s.Rename(ctx, "other", "busy", container.Password("pw")); !errors.Is(err, kerrors.ErrBusy) {
		t.Errorf("expected ErrBusy from Rename target, got %v", err)
	}
	// A failed acquire marks nothing.
	if _, ok := s.busy["other"]; ok {
		t.Error("expected partial acquire to be rolled back")
	}

	release()
	session, err := s.Open(ctx, "busy", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open after release failed: %v", err)
	}
	session.Close()
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Create(ctx, "x", "pw"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVault(t, s, "clean", "pw", "a", "b")

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tempFilePrefix) {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}

	session, err := s.Open(ctx, "clean", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer session.Close()
	if session.Notes.Len() != 2 {
		t.Errorf("expected 2 notes, got %d", session.Notes.Len())
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVault(t, s, "pw", "first", "secret")

	session, err := s.Open(ctx, "pw", container.Password("first"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	oldSalt := append([]byte(nil), session.Salt...)
	if err := session.ChangePassword(""); !errors.Is(err, kerrors.ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
	if err := session.ChangePassword("second"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if string(oldSalt) == string(session.Salt) {
		t.Error("expected a fresh salt")
	}
	if err := s.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	session.Close()

	if _, err := s.Open(ctx, "pw", container.Password("first")); !errors.Is(err, kerrors.ErrWrongPassword) {
		t.Errorf("expected old password to fail, got %v", err)
	}
	reopened, err := s.Open(ctx, "pw", container.Password("second"))
	if err != nil {
		t.Fatalf("Open with new password failed: %v", err)
	}
	defer reopened.Close()
	if reopened.Notes.At(0).Title != "secret" {
		t.Error("expected notes to survive the password change")
	}
}

func TestSessionClose(t *testing.T) {
	s := newTestStore(t)
	session, err := s.Create(context.Background(), "c", "pw")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	key := session.Key
	session.Close()
	session.Close()

	for i, b := range key {
		if b != 0 {
			t.Fatalf("key byte %d not zeroed", i)
		}
	}
	if err := s.Save(context.Background(), session); err == nil {
		t.Error("expected saving a closed session to fail")
	}
}

func TestUpgradeOnOpenClearsAfterSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vaults")
	svc := crypto.NewService()
	weak := NewStore(dir, container.New(svc, container.WithIterations(crypto.MinIterations)), svc)
	strong := NewStore(dir, container.New(svc, container.WithIterations(crypto.MinIterations*2)), svc)
	ctx := context.Background()

	createVault(t, weak, "u", "pw", "note")

	session, err := strong.Open(ctx, "u", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !session.Upgraded {
		t.Fatal("expected key upgrade")
	}
	if err := strong.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if session.Upgraded {
		t.Error("expected Upgraded to clear after save")
	}
	session.Close()

	info, err := strong.Inspect("u")
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Header.Iterations != crypto.MinIterations*2 {
		t.Errorf("expected %d iterations on disk, got %d", crypto.MinIterations*2, info.Header.Iterations)
	}
}

func TestLoweredIterationsStillOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vaults")
	svc := crypto.NewService()
	weak := NewStore(dir, container.New(svc, container.WithIterations(crypto.MinIterations)), svc)
	strong := NewStore(dir, container.New(svc, container.WithIterations(crypto.MinIterations*2)), svc)
	ctx := context.Background()

	createVault(t, strong, "d", "pw", "note")

	session, err := weak.Open(ctx, "d", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !session.Upgraded || session.Iterations != crypto.MinIterations {
		t.Fatalf("expected key re-derived with %d iterations, got %d upgraded=%t",
			crypto.MinIterations, session.Iterations, session.Upgraded)
	}
	session.Notes.InsertNew().Title = "second"
	if err := weak.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	session.Close()

	for name, s := range map[string]*Store{"weak": weak, "strong": strong} {
		reopened, err := s.Open(ctx, "d", container.Password("pw"))
		if err != nil {
			t.Fatalf("%s reopen failed: %v", name, err)
		}
		if reopened.Notes.Len() != 2 {
			t.Errorf("%s: expected 2 notes, got %d", name, reopened.Notes.Len())
		}
		reopened.Close()
	}
}

func TestKeyOpenSavesWithFileIterations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vaults")
	svc := crypto.NewService()
	strong := NewStore(dir, container.New(svc, container.WithIterations(crypto.MinIterations*2)), svc)
	weak := NewStore(dir, container.New(svc, container.WithIterations(crypto.MinIterations)), svc)
	ctx := context.Background()

	createVault(t, strong, "k", "pw")
	first, err := strong.Open(ctx, "k", container.Password("pw"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	key := first.Key
	defer first.Close()

	session, err := weak.Open(ctx, "k", container.Key(key))
	if err != nil {
		t.Fatalf("Open with key failed: %v", err)
	}
	if err := weak.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	session.Close()

	reopened, err := weak.Open(ctx, "k", container.Password("pw"))
	if err != nil {
		t.Fatalf("expected password to open after a key save, got %v", err)
	}
	reopened.Close()
}

func TestInspect(t *testing.T) {
	s := newTestStore(t)
	createVault(t, s, "i", "pw")

	info, err := s.Inspect("i")
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Header.Version != container.CurrentVersion || len(info.Header.Salt) != crypto.SaltLen {
		t.Errorf("unexpected header %+v", info.Header)
	}
	if info.Size == 0 || info.Name != "i" {
		t.Errorf("unexpected entry %+v", info.Entry)
	}

	if err := os.WriteFile(s.Path("junk"), []byte("not a vault"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Inspect("junk"); !errors.Is(err, kerrors.ErrInvalidFile) {
		t.Errorf("expected ErrInvalidFile, got %v", err)
	}
}
