package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileName is the audit log's name inside the vault directory.
const FileName = "audit.jsonl"

const timestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry. It never carries note titles,
// messages, passwords or keys.
type Entry struct {
	Timestamp string `json:"ts"`      // RFC3339 with microseconds, UTC.
	Session   string `json:"session"` // Per-process UUID.
	Operation string `json:"op"`      // Operation name.

	Vault      string `json:"vault,omitempty"`
	NotesCount int    `json:"notes_count,omitempty"` // Notes after the operation.
	Target     string `json:"target,omitempty"`      // Rename target, note id or export path.
}

// Recorder appends entries to one audit log. The zero value records nothing.
type Recorder struct {
	path    string
	session string
	mu      sync.Mutex
}

// New returns a Recorder that writes to dir/audit.jsonl. If enabled is false
// the Recorder discards every entry.
func New(dir string, enabled bool) *Recorder {
	if !enabled {
		return &Recorder{}
	}
	return &Recorder{
		path:    filepath.Join(dir, FileName),
		session: uuid.NewString(),
	}
}

// Path returns the log file, or "" for a disabled Recorder.
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Session returns the UUID stamped on this process's entries.
func (r *Recorder) Session() string {
	if r == nil {
		return ""
	}
	return r.session
}

// Log appends entry to the audit log. Failures are swallowed; an operation
// never fails because it could not be audited.
func (r *Recorder) Log(entry Entry) {
	if r == nil || r.path == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampFormat)
	}
	entry.Session = r.session

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the log at path. A missing log has no
// entries.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into entries. Malformed lines, such as
// a partial write at the end of the file, are skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}
