package notes

import (
	"math"
	"slices"
	"testing"
)

func titles(c *Collection) []string {
	var out []string
	for note := range c.All() {
		out = append(out, note.Title)
	}
	return out
}

func newTitled(t *testing.T, c *Collection, titles ...string) []*Note {
	t.Helper()
	var out []*Note
	for _, title := range titles {
		note := c.InsertNew()
		note.Title = title
		out = append(out, note)
	}
	return out
}

func checkInvariants(t *testing.T, c *Collection) {
	t.Helper()
	seen := make(map[int64]bool)
	for _, note := range c.Notes() {
		if seen[note.ID()] {
			t.Fatalf("id %d appears twice in order", note.ID())
		}
		seen[note.ID()] = true
		if found, ok := c.Find(note.ID()); !ok || found != note {
			t.Fatalf("id %d in order but not in map", note.ID())
		}
		if !c.ids.InUse(note.ID()) {
			t.Fatalf("id %d not registered with allocator", note.ID())
		}
	}
	if len(seen) != c.Len() {
		t.Fatalf("order has %d ids, map has %d", len(seen), c.Len())
	}
	if c.ids.Len() != c.Len() {
		t.Fatalf("allocator tracks %d ids, collection has %d", c.ids.Len(), c.Len())
	}
}

func TestInsertNewAssignsSequentialIDs(t *testing.T) {
	c := NewCollection()
	a := c.InsertNew()
	b := c.InsertNew()

	if a.ID() != 0 || b.ID() != 1 {
		t.Errorf("expected ids 0 and 1, got %d and %d", a.ID(), b.ID())
	}
	if a.Title != "" || a.Message != "" {
		t.Errorf("expected empty note, got %+v", a)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 notes, got %d", c.Len())
	}
	checkInvariants(t, c)
}

func TestInsertNewAt(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "a", "c")
	mid := c.InsertNewAt(1)
	mid.Title = "b"
	first := c.InsertNewAt(0)
	first.Title = "_"

	want := []string{"_", "a", "b", "c"}
	if got := titles(c); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if c.IndexOf(mid.ID()) != 2 {
		t.Errorf("expected index 2, got %d", c.IndexOf(mid.ID()))
	}
	checkInvariants(t, c)
}

func TestInsertAtOutOfRangePanics(t *testing.T) {
	c := NewCollection()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range position")
		}
	}()
	c.InsertNewAt(1)
}

func TestInsertExistingRejectsDuplicate(t *testing.T) {
	c := NewCollection()
	original := NewNote(7)
	original.Title = "first"
	if !c.InsertExisting(original) {
		t.Fatal("expected first insert to succeed")
	}

	dup := NewNote(7)
	dup.Title = "second"
	if c.InsertExisting(dup) {
		t.Fatal("expected duplicate insert to fail")
	}

	if c.Len() != 1 {
		t.Errorf("expected 1 note, got %d", c.Len())
	}
	if found, _ := c.Find(7); found.Title != "first" {
		t.Errorf("expected original note to remain, got %q", found.Title)
	}
	checkInvariants(t, c)

	// The high-water mark moved past the loaded id.
	if next := c.InsertNew(); next.ID() != 8 {
		t.Errorf("expected new id 8, got %d", next.ID())
	}
}

func TestRemoveAndFind(t *testing.T) {
	c := NewCollection()
	notes := newTitled(t, c, "a", "b", "c")

	if !c.Remove(notes[1].ID()) {
		t.Fatal("expected remove to succeed")
	}
	if c.Remove(notes[1].ID()) {
		t.Error("expected second remove to fail")
	}
	if _, ok := c.Find(notes[1].ID()); ok {
		t.Error("expected removed note to be gone")
	}
	if got := titles(c); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("expected [a c], got %v", got)
	}
	if c.At(1) != notes[2] {
		t.Error("expected At(1) to be the third note")
	}
	if c.IndexOf(notes[1].ID()) != -1 {
		t.Error("expected IndexOf of removed note to be -1")
	}
	checkInvariants(t, c)

	// Released ids are not reissued.
	if next := c.InsertNew(); next.ID() != 3 {
		t.Errorf("expected new id 3, got %d", next.ID())
	}
}

func TestSortByTitleCaseInsensitive(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "b", "A", "c")

	c.SortBy(ByTitle())

	want := []string{"A", "b", "c"}
	if got := titles(c); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	checkInvariants(t, c)
}

func TestByTitleTiesBrokenByID(t *testing.T) {
	c := NewCollection()
	notes := newTitled(t, c, "same", "SAME", "Same")
	c.SortBy(func(a, b *Note) int { return -ByTitle()(a, b) })
	c.SortBy(ByTitle())

	for i, note := range c.Notes() {
		if note != notes[i] {
			t.Fatalf("expected id order after sort, position %d has id %d", i, note.ID())
		}
	}
}

func TestByTitleFoldsUnicode(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "Zeta", "ÉCOLE", "école", "alpha")
	c.SortBy(ByTitle())

	// Folded titles compare bytewise, so "é" sorts after ASCII letters and the
	// two spellings of école end up adjacent in id order.
	want := []string{"alpha", "Zeta", "ÉCOLE", "école"}
	if got := titles(c); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSortAfterRemoval(t *testing.T) {
	c := NewCollection()
	notes := newTitled(t, c, "d", "c", "b", "a")
	c.Remove(notes[0].ID())

	c.SortBy(ByTitle())
	if got := titles(c); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("expected [a b c], got %v", got)
	}
	checkInvariants(t, c)
}

func TestRemoveCurrentDuringRange(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "keep", "drop", "keep", "drop", "drop", "keep")

	visited := 0
	for note := range c.All() {
		visited++
		if note.Title == "drop" {
			c.Remove(note.ID())
		}
	}

	if visited != 6 {
		t.Errorf("expected 6 visits, got %d", visited)
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 notes retained, got %d", c.Len())
	}
	if got := titles(c); !slices.Equal(got, []string{"keep", "keep", "keep"}) {
		t.Errorf("unexpected titles %v", got)
	}
	checkInvariants(t, c)
}

func TestIteratorRemove(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "1", "2", "3", "4")

	seen := map[string]int{}
	it := c.Iterator()
	for it.Next() {
		seen[it.Note().Title]++
		if it.Note().Title == "1" || it.Note().Title == "3" {
			it.Remove()
		}
	}

	for _, title := range []string{"1", "2", "3", "4"} {
		if seen[title] != 1 {
			t.Errorf("expected %s visited once, got %d", title, seen[title])
		}
	}
	if got := titles(c); !slices.Equal(got, []string{"2", "4"}) {
		t.Errorf("expected [2 4], got %v", got)
	}
	if len(c.cursors) != 0 {
		t.Errorf("expected exhausted iterator to unregister, %d remain", len(c.cursors))
	}
	checkInvariants(t, c)
}

func TestIteratorRemoveTwicePanics(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "x")
	it := c.Iterator()
	defer it.Close()
	it.Next()
	it.Remove()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on second Remove")
		}
	}()
	it.Remove()
}

func TestIteratorRemoveAfterClearSparesNewNote(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "old")
	it := c.Iterator()
	defer it.Close()
	it.Next()

	c.Clear()
	fresh := c.InsertNew()
	fresh.Title = "new"
	if fresh.ID() != 0 {
		t.Fatalf("expected reused id 0, got %d", fresh.ID())
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic removing a cleared note")
			}
		}()
		it.Remove()
	}()
	if got := titles(c); !slices.Equal(got, []string{"new"}) {
		t.Errorf("expected [new], got %v", got)
	}
	checkInvariants(t, c)
}

func TestIteratorRemoveAfterIDReused(t *testing.T) {
	c := NewCollection()
	added := newTitled(t, c, "first")
	it := c.Iterator()
	defer it.Close()
	it.Next()

	c.Remove(added[0].ID())
	replacement := NewNote(added[0].ID())
	replacement.Title = "replacement"
	if !c.InsertExisting(replacement) {
		t.Fatal("expected InsertExisting to succeed")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic removing a note that is already gone")
			}
		}()
		it.Remove()
	}()
	if found, ok := c.Find(replacement.ID()); !ok || found != replacement {
		t.Error("expected the replacement note to survive")
	}
	checkInvariants(t, c)
}

func TestRemoveAheadDuringRange(t *testing.T) {
	c := NewCollection()
	notes := newTitled(t, c, "a", "b", "c", "d")

	var got []string
	for note := range c.All() {
		got = append(got, note.Title)
		if note.Title == "a" {
			c.Remove(notes[2].ID())
		}
	}
	if !slices.Equal(got, []string{"a", "b", "d"}) {
		t.Errorf("expected [a b d], got %v", got)
	}
}

func TestInsertBehindCursorDuringRange(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "a", "b", "c")

	var got []string
	for note := range c.All() {
		got = append(got, note.Title)
		if note.Title == "b" {
			front := c.InsertNewAt(0)
			front.Title = "front"
			back := c.InsertNew()
			back.Title = "back"
		}
	}
	if !slices.Equal(got, []string{"a", "b", "c", "back"}) {
		t.Errorf("expected [a b c back], got %v", got)
	}
	checkInvariants(t, c)
}

func TestBreakOutOfRangeReleasesCursor(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "a", "b", "c")
	for note := range c.All() {
		c.Remove(note.ID())
		break
	}
	if len(c.cursors) != 0 {
		t.Errorf("expected cursor released after break")
	}
	if c.dead != 0 {
		t.Errorf("expected tombstones compacted after loop, got %d", c.dead)
	}
	checkInvariants(t, c)
}

func TestSortDuringIterationPanics(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "a")
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	for range c.All() {
		c.SortBy(ByTitle())
	}
}

func TestClear(t *testing.T) {
	c := NewCollection()
	newTitled(t, c, "a", "b")
	c.Clear()

	if c.Len() != 0 || len(c.Notes()) != 0 {
		t.Errorf("expected empty collection")
	}
	if note := c.InsertNew(); note.ID() != 0 {
		t.Errorf("expected allocator reset, got id %d", note.ID())
	}
	checkInvariants(t, c)
}

func TestZeroValueCollection(t *testing.T) {
	var c Collection
	c.InsertNew().Title = "x"
	if got := titles(&c); !slices.Equal(got, []string{"x"}) {
		t.Errorf("expected [x], got %v", got)
	}
}

func TestIdAllocator(t *testing.T) {
	var a IdAllocator

	first := a.AllocateNew()
	if first != 0 {
		t.Fatalf("expected 0, got %d", first)
	}
	if !a.Release(first) {
		t.Fatal("expected release to succeed")
	}
	if a.Release(first) {
		t.Error("expected second release to fail")
	}
	if next := a.AllocateNew(); next == first {
		t.Errorf("released id %d was reissued", first)
	}

	if !a.RegisterExisting(10) {
		t.Fatal("expected register to succeed")
	}
	if a.RegisterExisting(10) {
		t.Error("expected duplicate register to fail")
	}
	if next := a.AllocateNew(); next != 11 {
		t.Errorf("expected 11 after registering 10, got %d", next)
	}

	// Registering below the mark does not lower it.
	if !a.RegisterExisting(5) {
		t.Fatal("expected register of 5 to succeed")
	}
	if next := a.AllocateNew(); next != 12 {
		t.Errorf("expected 12, got %d", next)
	}

	a.Reset()
	if a.Len() != 0 || a.InUse(10) {
		t.Error("expected reset to clear used ids")
	}
	if next := a.AllocateNew(); next != 0 {
		t.Errorf("expected 0 after reset, got %d", next)
	}
}

func TestIdAllocatorMaxID(t *testing.T) {
	var a IdAllocator
	if !a.RegisterExisting(math.MaxInt64) {
		t.Fatal("expected register to succeed")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic once the id space is exhausted")
		}
	}()
	a.AllocateNew()
}

func TestCanAllocate(t *testing.T) {
	var a IdAllocator
	if !a.CanAllocate(0) || !a.CanAllocate(1000) {
		t.Error("expected a fresh allocator to have room")
	}
	a.RegisterExisting(math.MaxInt64 - 1)
	if !a.CanAllocate(1) {
		t.Error("expected room for MaxInt64")
	}
	if a.CanAllocate(2) {
		t.Error("expected no room for two ids")
	}
	a.AllocateNew()
	if a.CanAllocate(1) {
		t.Error("expected exhausted allocator to refuse")
	}
	if !a.CanAllocate(0) {
		t.Error("expected zero ids to always fit")
	}

	c := NewCollection()
	c.InsertExisting(NewNote(math.MaxInt64))
	if c.CanInsert(1) {
		t.Error("expected collection holding MaxInt64 to be full")
	}
	c.Clear()
	if !c.CanInsert(1) {
		t.Error("expected Clear to restore room")
	}
}
