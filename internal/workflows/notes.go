package workflows

import (
	"context"
	"fmt"
	"strconv"

	kerrors "github.com/PolarWolf314/notevault/internal/errors"
	"github.com/PolarWolf314/notevault/internal/notes"
	"github.com/PolarWolf314/notevault/internal/vault"
)

// NoteView is a copy of a note taken while the vault was open.
type NoteView struct {
	ID      int64
	Title   string
	Message string
}

func viewOf(n *notes.Note) NoteView {
	return NoteView{ID: n.ID(), Title: n.Title, Message: n.Message}
}

// ListNotesOptions configures the notes workflow.
type ListNotesOptions struct {
	Vault    string
	Password string
}

// ListNotesResult contains a vault's notes in display order.
type ListNotesResult struct {
	Vault    string
	Notes    []NoteView
	Upgraded bool
}

// ListNotes opens a vault and returns its notes.
func ListNotes(ctx context.Context, env *Env, opts ListNotesOptions) (*ListNotesResult, error) {
	result := &ListNotesResult{}
	err := env.view(ctx, opts.Vault, opts.Password, func(s *vault.Session) error {
		result.Vault = s.Name
		result.Upgraded = s.Upgraded
		result.Notes = make([]NoteView, 0, s.Notes.Len())
		for note := range s.Notes.All() {
			result.Notes = append(result.Notes, viewOf(note))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	env.record("open", result.Vault, len(result.Notes), "")
	return result, nil
}

// ShowOptions configures the show workflow.
type ShowOptions struct {
	Vault    string
	Password string
	ID       int64

	// Position selects the note by display index instead of ID.
	Position *int
}

// ShowResult contains one note and where it sits in the vault.
type ShowResult struct {
	Vault      string
	Note       NoteView
	Position   int
	NotesCount int
	Upgraded   bool
}

// Show returns one note by id, or by display position when opts.Position is
// set.
//
// Returns ErrNoteNotFound if the vault has no such note.
func Show(ctx context.Context, env *Env, opts ShowOptions) (*ShowResult, error) {
	result := &ShowResult{}
	err := env.view(ctx, opts.Vault, opts.Password, func(s *vault.Session) error {
		var note *notes.Note
		if opts.Position != nil {
			pos := *opts.Position
			if pos < 0 || pos >= s.Notes.Len() {
				return fmt.Errorf("%w: no note at position %d", kerrors.ErrNoteNotFound, pos)
			}
			note = s.Notes.At(pos)
		} else {
			var ok bool
			if note, ok = s.Notes.Find(opts.ID); !ok {
				return noteNotFound(opts.ID)
			}
		}
		result.Vault = s.Name
		result.Note = viewOf(note)
		result.Position = s.Notes.IndexOf(note.ID())
		result.NotesCount = s.Notes.Len()
		result.Upgraded = s.Upgraded
		return nil
	})
	if err != nil {
		return nil, err
	}
	env.record("show", result.Vault, result.NotesCount, strconv.FormatInt(result.Note.ID, 10))
	return result, nil
}

// AddOptions configures the add workflow.
type AddOptions struct {
	Vault    string
	Password string
	Title    string
	Message  string

	// Position is the display index to insert at. Nil appends.
	Position *int
}

// AddResult contains the outcome of an add.
type AddResult struct {
	Vault      string
	ID         int64
	Position   int
	NotesCount int
}

// Add inserts a new note and saves the vault.
func Add(ctx context.Context, env *Env, opts AddOptions) (*AddResult, error) {
	result := &AddResult{}
	count, err := env.update(ctx, opts.Vault, opts.Password, func(s *vault.Session) error {
		pos := s.Notes.Len()
		if opts.Position != nil {
			pos = *opts.Position
			if pos < 0 || pos > s.Notes.Len() {
				return fmt.Errorf("position %d is outside [0, %d]", pos, s.Notes.Len())
			}
		}
		if !s.Notes.CanInsert(1) {
			return fmt.Errorf("adding to %s: %w", s.Name, kerrors.ErrIDsExhausted)
		}
		note := s.Notes.InsertNewAt(pos)
		note.Title = opts.Title
		note.Message = opts.Message

		result.Vault = s.Name
		result.ID = note.ID()
		result.Position = pos
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.NotesCount = count
	env.record("add", result.Vault, count, strconv.FormatInt(result.ID, 10))
	return result, nil
}

// EditOptions configures the edit workflow. Nil fields are left unchanged.
type EditOptions struct {
	Vault    string
	Password string
	ID       int64
	Title    *string
	Message  *string
}

// EditResult contains the edited note.
type EditResult struct {
	Vault string
	Note  NoteView
}

// Edit changes a note's title and/or message and saves the vault.
//
// Returns ErrNoteNotFound if the vault has no note with that id.
func Edit(ctx context.Context, env *Env, opts EditOptions) (*EditResult, error) {
	result := &EditResult{}
	count, err := env.update(ctx, opts.Vault, opts.Password, func(s *vault.Session) error {
		note, ok := s.Notes.Find(opts.ID)
		if !ok {
			return noteNotFound(opts.ID)
		}
		if opts.Title != nil {
			note.Title = *opts.Title
		}
		if opts.Message != nil {
			note.Message = *opts.Message
		}
		result.Vault = s.Name
		result.Note = viewOf(note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	env.record("edit", result.Vault, count, strconv.FormatInt(opts.ID, 10))
	return result, nil
}

// RemoveOptions configures the remove workflow.
type RemoveOptions struct {
	Vault    string
	Password string
	IDs      []int64
}

// RemoveResult contains the outcome of a removal.
type RemoveResult struct {
	Vault      string
	Removed    []NoteView
	NotesCount int
}

// Remove deletes notes by id and saves the vault. Either every id is removed
// or, if any is missing, none is.
//
// Returns ErrNoteNotFound naming the first missing id.
func Remove(ctx context.Context, env *Env, opts RemoveOptions) (*RemoveResult, error) {
	result := &RemoveResult{}
	count, err := env.update(ctx, opts.Vault, opts.Password, func(s *vault.Session) error {
		targets := make(map[int64]bool, len(opts.IDs))
		for _, id := range opts.IDs {
			if _, ok := s.Notes.Find(id); !ok {
				return noteNotFound(id)
			}
			targets[id] = true
		}

		it := s.Notes.Iterator()
		defer it.Close()
		for it.Next() {
			if targets[it.Note().ID()] {
				result.Removed = append(result.Removed, viewOf(it.Note()))
				it.Remove()
			}
		}
		result.Vault = s.Name
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.NotesCount = count
	env.record("rm", result.Vault, count, "")
	return result, nil
}

// SortOptions configures the sort workflow.
type SortOptions struct {
	Vault    string
	Password string
}

// SortResult contains the notes in their new order.
type SortResult struct {
	Vault string
	Notes []NoteView
}

// Sort orders a vault's notes by title, case-insensitively, and saves it.
func Sort(ctx context.Context, env *Env, opts SortOptions) (*SortResult, error) {
	result := &SortResult{}
	count, err := env.update(ctx, opts.Vault, opts.Password, func(s *vault.Session) error {
		s.Notes.SortBy(notes.ByTitle())
		result.Vault = s.Name
		for _, note := range s.Notes.Notes() {
			result.Notes = append(result.Notes, viewOf(note))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	env.record("sort", result.Vault, count, "")
	return result, nil
}

func noteNotFound(id int64) error {
	return fmt.Errorf("%w: #%d", kerrors.ErrNoteNotFound, id)
}
