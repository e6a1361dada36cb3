package notes

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

type entry struct {
	note    *Note
	removed bool
}

// cursor is the position of a live iterator: the physical index of the next
// slot it will examine.
type cursor struct {
	next int
}

// Collection is an ordered, id-keyed set of notes. The set of ids in the
// lookup map always equals the set of live ids in the order, and every id in
// use is registered with the collection's IdAllocator.
//
// A Collection is not safe for concurrent use.
type Collection struct {
	byID    map[int64]*entry
	order   []*entry
	dead    int
	ids     IdAllocator
	cursors map[*cursor]struct{}
}

// NewCollection returns an empty collection. The zero value is also usable.
func NewCollection() *Collection {
	return &Collection{byID: make(map[int64]*entry)}
}

// Len returns the number of notes.
func (c *Collection) Len() int {
	return len(c.byID)
}

// InsertNew creates an empty note with a freshly allocated id and appends it.
func (c *Collection) InsertNew() *Note {
	return c.InsertNewAt(c.Len())
}

// InsertNewAt creates an empty note with a freshly allocated id at position
// pos. It panics if pos is not in [0, Len()] or if CanInsert(1) is false.
func (c *Collection) InsertNewAt(pos int) *Note {
	c.checkInsertPos(pos)
	note := NewNote(c.ids.AllocateNew())
	c.insert(pos, note)
	return note
}

// CanInsert reports whether n more notes can be created with InsertNew. It
// is false only once the id space above the highest id seen runs out.
func (c *Collection) CanInsert(n int) bool {
	return c.ids.CanAllocate(n)
}

// InsertExisting appends note, keeping its id. It returns false without
// modifying the collection if the id is already present.
func (c *Collection) InsertExisting(note *Note) bool {
	return c.InsertExistingAt(c.Len(), note)
}

// InsertExistingAt inserts note at position pos, keeping its id. It returns
// false without modifying the collection if the id is already present, and
// panics if pos is not in [0, Len()].
func (c *Collection) InsertExistingAt(pos int, note *Note) bool {
	c.checkInsertPos(pos)
	if !c.ids.RegisterExisting(note.id) {
		return false
	}
	c.insert(pos, note)
	return true
}

// Remove deletes the note with the given id and releases the id. It returns
// false if no such note exists. Remove is safe to call while iterating.
func (c *Collection) Remove(id int64) bool {
	e, ok := c.byID[id]
	if !ok {
		return false
	}
	c.retire(e)
	return true
}

// Find returns the note with the given id.
func (c *Collection) Find(id int64) (*Note, bool) {
	e, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return e.note, true
}

// At returns the note at display position index. It panics if index is out
// of range.
func (c *Collection) At(index int) *Note {
	if index < 0 || index >= c.Len() {
		panic(fmt.Sprintf("notes: index %d out of range [0, %d)", index, c.Len()))
	}
	return c.order[c.physical(index)].note
}

// IndexOf returns the display position of the note with the given id, or -1.
func (c *Collection) IndexOf(id int64) int {
	e, ok := c.byID[id]
	if !ok {
		return -1
	}
	pos := 0
	for _, other := range c.order {
		if other == e {
			return pos
		}
		if !other.removed {
			pos++
		}
	}
	return -1
}

// Notes returns the notes in display order. The slice is a copy; the notes
// are not.
func (c *Collection) Notes() []*Note {
	out := make([]*Note, 0, c.Len())
	for _, e := range c.order {
		if !e.removed {
			out = append(out, e.note)
		}
	}
	return out
}

// SortBy reorders the collection with compare, which must be a consistent
// total order. It panics if called while an iteration is in progress.
func (c *Collection) SortBy(compare func(a, b *Note) int) {
	if len(c.cursors) > 0 {
		panic("notes: SortBy called during iteration")
	}
	c.compact()
	slices.SortFunc(c.order, func(a, b *entry) int {
		return compare(a.note, b.note)
	})
}

// Clear removes every note and resets the id allocator. Active iterations end,
// and an iterator's current note counts as removed.
func (c *Collection) Clear() {
	for _, e := range c.order {
		e.removed = true
	}
	c.byID = make(map[int64]*entry)
	c.order = nil
	c.dead = 0
	c.ids.Reset()
	for cur := range c.cursors {
		cur.next = 0
	}
}

// All returns an iterator over the notes in display order. The loop body may
// remove notes, including the current one.
func (c *Collection) All() iter.Seq[*Note] {
	return func(yield func(*Note) bool) {
		it := c.Iterator()
		defer it.Close()
		for it.Next() {
			if !yield(it.Note()) {
				return
			}
		}
	}
}

// Iterator returns an explicit iterator positioned before the first note.
// Callers that stop before Next returns false must call Close.
func (c *Collection) Iterator() *Iterator {
	cur := &cursor{}
	if c.cursors == nil {
		c.cursors = make(map[*cursor]struct{})
	}
	c.cursors[cur] = struct{}{}
	return &Iterator{coll: c, cur: cur}
}

// ByTitle returns a comparator ordering notes by case-folded title, then by
// id so that the order is total.
func ByTitle() func(a, b *Note) int {
	fold := cases.Fold()
	return func(a, b *Note) int {
		if r := strings.Compare(fold.String(a.Title), fold.String(b.Title)); r != 0 {
			return r
		}
		return cmp.Compare(a.id, b.id)
	}
}

func (c *Collection) insert(pos int, note *Note) {
	if c.byID == nil {
		c.byID = make(map[int64]*entry)
	}
	e := &entry{note: note}
	p := c.physical(pos)
	c.order = slices.Insert(c.order, p, e)
	c.byID[note.id] = e
	for cur := range c.cursors {
		if p < cur.next {
			cur.next++
		}
	}
}

// physical maps a display position to an index into c.order. pos == Len()
// maps to the end of the slice.
func (c *Collection) physical(pos int) int {
	if c.dead == 0 {
		return pos
	}
	live := 0
	for i, e := range c.order {
		if e.removed {
			continue
		}
		if live == pos {
			return i
		}
		live++
	}
	return len(c.order)
}

// retire removes the live entry e, which must be the one byID holds for its id.
func (c *Collection) retire(e *entry) {
	delete(c.byID, e.note.id)
	c.ids.Release(e.note.id)
	e.removed = true
	c.dead++
	c.maybeCompact()
}

func (c *Collection) checkInsertPos(pos int) {
	if pos < 0 || pos > c.Len() {
		panic(fmt.Sprintf("notes: insert position %d out of range [0, %d]", pos, c.Len()))
	}
}

func (c *Collection) maybeCompact() {
	if len(c.cursors) == 0 && c.dead*2 >= len(c.order) {
		c.compact()
	}
}

func (c *Collection) compact() {
	if c.dead == 0 {
		return
	}
	c.order = slices.DeleteFunc(c.order, func(e *entry) bool { return e.removed })
	c.dead = 0
}

// Iterator walks a Collection in display order.
//
//	it := coll.Iterator()
//	for it.Next() {
//	    if shouldDrop(it.Note()) {
//	        it.Remove()
//	    }
//	}
type Iterator struct {
	coll   *Collection
	cur    *cursor
	last   *entry
	closed bool
}

// Next advances to the next live note and reports whether there is one.
// When it returns false the iterator is closed.
func (it *Iterator) Next() bool {
	if it.closed {
		return false
	}
	order := it.coll.order
	for it.cur.next < len(order) {
		e := order[it.cur.next]
		it.cur.next++
		if !e.removed {
			it.last = e
			return true
		}
	}
	it.last = nil
	it.Close()
	return false
}

// Note returns the note the last call to Next moved to.
func (it *Iterator) Note() *Note {
	if it.last == nil {
		return nil
	}
	return it.last.note
}

// Remove deletes the current note from the collection, exactly as
// Collection.Remove would. It panics if there is no current note or it was
// already removed.
func (it *Iterator) Remove() {
	e := it.last
	if e == nil || e.removed || it.coll.byID[e.note.id] != e {
		panic("notes: Iterator.Remove without a current note")
	}
	it.coll.retire(e)
	it.last = nil
}

// Close releases the iterator. It is idempotent.
func (it *Iterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	delete(it.coll.cursors, it.cur)
	if len(it.coll.cursors) == 0 {
		it.coll.compact()
	}
}
