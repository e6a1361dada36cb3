package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestDeriveKeyKnownAnswer(t *testing.T) {
	// RFC 6070 vectors; the first 20 bytes of a longer PBKDF2 output equal the
	// 20-byte output.
	tests := []struct {
		iterations int
		want       string
	}{
		{1, "0c60c80f961f0e71f3a9b524af6012062fe037a6"},
		{2, "ea6c014dc72d6f8ccd1ed92ace1d41f0d8de8957"},
		{4096, "4b007901b765489abead49d926f721d065a429c1"},
	}

	svc := NewService()
	for _, tt := range tests {
		key := svc.DeriveKey("password", []byte("salt"), tt.iterations)
		if len(key) != KeyLen {
			t.Fatalf("expected key length %d, got %d", KeyLen, len(key))
		}
		if got := hex.EncodeToString(key[:20]); got != tt.want {
			t.Errorf("iterations=%d: expected %s, got %s", tt.iterations, tt.want, got)
		}
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	svc := NewService()
	salt := []byte("0123456789abcdef")

	a := svc.DeriveKey("pw", salt, 1000)
	b := svc.DeriveKey("pw", salt, 1000)
	if !bytes.Equal(a, b) {
		t.Error("expected identical keys for identical inputs")
	}

	if bytes.Equal(a, svc.DeriveKey("pw", []byte("fedcba9876543210"), 1000)) {
		t.Error("expected different salts to produce different keys")
	}
	if bytes.Equal(a, svc.DeriveKey("pw", salt, 1001)) {
		t.Error("expected different iteration counts to produce different keys")
	}
	if bytes.Equal(a, svc.DeriveKey("pw2", salt, 1000)) {
		t.Error("expected different passwords to produce different keys")
	}
}

func TestDeriveKeyPanicsOnBadParameters(t *testing.T) {
	svc := NewService()

	assertPanics(t, "zero iterations", func() { svc.DeriveKey("pw", []byte("salt"), 0) })
	assertPanics(t, "empty salt", func() { svc.DeriveKey("pw", nil, 1) })
}

func TestRandomUsesReader(t *testing.T) {
	source := bytes.Repeat([]byte{0xab}, 64)
	svc := NewServiceWithReader(bytes.NewReader(source))

	got := svc.Random(BlockLen)
	if !bytes.Equal(got, source[:BlockLen]) {
		t.Errorf("expected bytes from reader, got %x", got)
	}
	if salt := svc.NewSalt(); len(salt) != SaltLen {
		t.Errorf("expected salt length %d, got %d", SaltLen, len(salt))
	}
}

func TestRandomPanicsWhenSourceExhausted(t *testing.T) {
	svc := NewServiceWithReader(bytes.NewReader([]byte{1, 2, 3}))
	assertPanics(t, "short reader", func() { svc.Random(16) })
}

func TestRandomFromOS(t *testing.T) {
	svc := NewService()
	a := svc.Random(32)
	b := svc.Random(32)
	if bytes.Equal(a, b) {
		t.Error("expected two OS random draws to differ")
	}
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
