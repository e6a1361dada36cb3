package workflows

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	kerrors "github.com/PolarWolf314/notevault/internal/errors"
	"github.com/PolarWolf314/notevault/internal/notes"
	"github.com/PolarWolf314/notevault/internal/vault"
)

// ExportVersion is written into every export document.
const ExportVersion = 1

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Document is the decrypted, portable form of a vault.
type Document struct {
	Version    int            `yaml:"version" json:"version"`
	Vault      string         `yaml:"vault" json:"vault"`
	ExportedAt string         `yaml:"exported_at" json:"exported_at"` // RFC3339, UTC.
	Notes      []DocumentNote `yaml:"notes" json:"notes"`
}

// DocumentNote is one note in a Document. Ids are informational; import
// assigns fresh ones.
type DocumentNote struct {
	ID      int64  `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Message string `yaml:"message" json:"message"`
}

// ExportOptions configures the export workflow.
type ExportOptions struct {
	Vault    string
	Password string

	// Format is FormatYAML or FormatJSON. Empty means YAML.
	Format string

	// OutputPath, if set, receives the document with mode 0600. Otherwise
	// the document is only returned.
	OutputPath string
}

// ExportResult contains the encoded document.
type ExportResult struct {
	Vault      string
	Format     string
	Data       []byte
	NotesCount int
	OutputPath string
}

// Export decrypts a vault into a YAML or JSON document. The document holds
// every note in plain text.
//
// Returns ErrUnsupportedFormat for formats other than yaml and json.
func Export(ctx context.Context, env *Env, opts ExportOptions) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = FormatYAML
	}
	if format != FormatYAML && format != FormatJSON {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnsupportedFormat, opts.Format)
	}

	var doc Document
	err := env.view(ctx, opts.Vault, opts.Password, func(s *vault.Session) error {
		doc = Document{
			Version:    ExportVersion,
			Vault:      s.Name,
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			Notes:      make([]DocumentNote, 0, s.Notes.Len()),
		}
		for note := range s.Notes.All() {
			doc.Notes = append(doc.Notes, DocumentNote{ID: note.ID(), Title: note.Title, Message: note.Message})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := encodeDocument(&doc, format)
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	result := &ExportResult{
		Vault:      doc.Vault,
		Format:     format,
		Data:       data,
		NotesCount: len(doc.Notes),
	}
	if opts.OutputPath != "" {
		if dir := filepath.Dir(opts.OutputPath); dir != "" {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(opts.OutputPath, data, 0600); err != nil {
			return nil, fmt.Errorf("writing export: %w", err)
		}
		result.OutputPath = opts.OutputPath
	}

	env.record("export", doc.Vault, len(doc.Notes), opts.OutputPath)
	return result, nil
}

func encodeDocument(doc *Document, format string) ([]byte, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseDocument decodes a YAML or JSON export document.
//
// Returns ErrInvalidExport if data cannot be parsed or has an unknown version.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidExport, err)
	}
	if doc.Version != ExportVersion {
		return nil, fmt.Errorf("%w: version %d", kerrors.ErrInvalidExport, doc.Version)
	}
	return &doc, nil
}

// Import modes.
const (
	ImportAppend  = "append"
	ImportReplace = "replace"
)

// ImportOptions configures the import workflow.
type ImportOptions struct {
	Vault    string
	Password string
	Data     []byte

	// Mode is ImportAppend or ImportReplace. Empty means append.
	Mode string
}

// ImportResult contains the outcome of an import.
type ImportResult struct {
	Vault      string
	Created    bool
	Imported   int
	NotesCount int
}

// Import adds the notes of an export document to a vault, creating the vault
// with Password if it does not exist. In replace mode existing notes are
// dropped first.
func Import(ctx context.Context, env *Env, opts ImportOptions) (*ImportResult, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ImportAppend
	}
	if mode != ImportAppend && mode != ImportReplace {
		return nil, fmt.Errorf("unknown import mode %q", opts.Mode)
	}

	doc, err := ParseDocument(opts.Data)
	if err != nil {
		return nil, err
	}

	exists, err := env.Store.Exists(opts.Vault)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Imported: len(doc.Notes)}
	apply := func(s *vault.Session) error {
		if mode == ImportReplace {
			s.Notes.Clear()
		}
		if !s.Notes.CanInsert(len(doc.Notes)) {
			return fmt.Errorf("importing into %s: %w", s.Name, kerrors.ErrIDsExhausted)
		}
		appendDocument(s.Notes, doc)
		result.Vault = s.Name
		return nil
	}

	if exists {
		result.NotesCount, err = env.update(ctx, opts.Vault, opts.Password, apply)
		if err != nil {
			return nil, err
		}
	} else {
		session, err := env.Store.Create(ctx, opts.Vault, opts.Password)
		if err != nil {
			return nil, err
		}
		defer session.Close()
		if err := apply(session); err != nil {
			return nil, err
		}
		if err := env.Store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("saving vault: %w", err)
		}
		result.Created = true
		result.NotesCount = session.Notes.Len()
	}

	env.record("import", result.Vault, result.NotesCount, "")
	return result, nil
}

func appendDocument(coll *notes.Collection, doc *Document) {
	for _, n := range doc.Notes {
		note := coll.InsertNew()
		note.Title = n.Title
		note.Message = n.Message
	}
}
