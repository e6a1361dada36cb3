package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/PolarWolf314/notevault/internal/crypto"
)

// testEnv is an isolated vault directory, config directory and password file.
type testEnv struct {
	VaultDir     string
	ConfigDir    string
	PasswordFile string
}

// setupTestEnvironment points the CLI at temporary directories and writes a
// config with a low iteration count so tests stay fast.
func setupTestEnvironment(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		VaultDir:     filepath.Join(root, "vaults"),
		ConfigDir:    filepath.Join(root, "config"),
		PasswordFile: filepath.Join(root, "password"),
	}
	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("NOTEVAULT_DIR", "")

	writeTestFile(t, filepath.Join(env.ConfigDir, "notevault", "config.toml"),
		"kdf_iterations = "+strconv.Itoa(crypto.MinIterations)+"\n")
	env.setPassword(t, "hunter2")
	return env
}

func (e *testEnv) setPassword(t *testing.T, password string) {
	t.Helper()
	writeTestFile(t, e.PasswordFile, password+"\n")
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// run executes the CLI with args against e and returns everything written to
// stdout and stderr.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)
	full := append([]string{"--dir", e.VaultDir, "--password-file", e.PasswordFile}, args...)
	RootCmd.SetArgs(full)
	return captureOutput(RootCmd.Execute)
}

// mustRun is run with a fatal error on failure.
func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	output, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("notevault %v failed: %v\nOutput: %s", args, err, output)
	}
	return output
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	collect := func(r io.Reader, out chan<- string) {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		out <- buf.String()
	}
	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)
	go collect(stdoutReader, stdoutChan)
	go collect(stderrReader, stderrChan)

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}
