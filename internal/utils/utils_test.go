package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple", "personal", "personal"},
		{"KeepsCase", "Work", "Work"},
		{"SpacesToHyphens", "my notes", "my-notes"},
		{"RemoveSpecialChars", "notes@home#1!", "noteshome1"},
		{"RemoveDots", "backup.2024.yaml", "backup2024yaml"},
		{"RemoveConsecutiveHyphens", "a -- b", "a-b"},
		{"TrimHyphens", "-x-", "x"},
		{"KeepsUnicodeLetters", "café notes", "café-notes"},
		{"EmptyToDefault", "", "notes"},
		{"OnlySpecialChars", "@#$%", "notes"},
		{"PathSeparators", "../etc/passwd", "etcpasswd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := SanitizeName(tc.input); result != tc.expected {
				t.Errorf("SanitizeName(%q) = %q, expected %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestUniqueName(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		existing []string
		expected string
	}{
		{"NoConflict", "notes", nil, "notes"},
		{"Conflict", "notes", []string{"notes"}, "notes-2"},
		{"CaseInsensitive", "notes", []string{"Notes"}, "notes-2"},
		{"SkipsTaken", "notes", []string{"notes", "notes-2", "notes-3"}, "notes-4"},
		{"Unrelated", "notes", []string{"other"}, "notes"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := UniqueName(tc.base, tc.existing); result != tc.expected {
				t.Errorf("UniqueName(%q, %v) = %q, expected %q", tc.base, tc.existing, result, tc.expected)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := map[string]string{
		"~":           home,
		"~/vaults":    filepath.Join(home, "vaults"),
		"/abs/path":   "/abs/path",
		"relative":    "relative",
		"~other/path": "~other/path",
	}
	for input, want := range tests {
		got, err := ExpandHome(input)
		if err != nil {
			t.Fatalf("ExpandHome(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestPasswordReaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pw")
	if err := os.WriteFile(path, []byte("s3cret\n"), 0600); err != nil {
		t.Fatal(err)
	}
	reader := PasswordReader{File: path}

	buf, err := reader.Read("Password: ")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	defer buf.Close()
	if buf.String() != "s3cret" {
		t.Errorf("expected s3cret, got %q", buf.String())
	}

	// A file supplies new passwords without confirmation.
	again, err := reader.ReadNew("New password: ", "Confirm: ")
	if err != nil {
		t.Fatalf("ReadNew failed: %v", err)
	}
	defer again.Close()
	if again.String() != "s3cret" {
		t.Errorf("expected s3cret, got %q", again.String())
	}
}

func TestPasswordReaderEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := (PasswordReader{File: path}).Read("Password: "); err == nil {
		t.Error("expected error for empty password file")
	}
}

func TestReadInputFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	data, err := ReadInput(path)
	if err != nil {
		t.Fatalf("ReadInput failed: %v", err)
	}
	if string(data) != "version: 1\n" {
		t.Errorf("unexpected data %q", data)
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadInput(empty); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := ReadInput(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadLimited(t *testing.T) {
	if _, err := readLimited(strings.NewReader("12345"), "input", 4); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge, got %v", err)
	}
	data, err := readLimited(strings.NewReader("1234"), "input", 4)
	if err != nil || string(data) != "1234" {
		t.Errorf("expected input at the limit to be accepted, got %q, %v", data, err)
	}
}
