// Package notes implements the in-memory note collection held inside a
// container.
//
// # Identity
//
// Every Note has an int64 id that never changes after creation. Ids are
// handed out by an IdAllocator, which tracks a high-water mark and the set of
// ids currently in use. Ids are never reissued after release, so a stale
// reference to a removed note can never alias a newer one.
//
// # Ordering
//
// A Collection keeps notes in an explicit display order, initially insertion
// order, which can be rearranged with SortBy. ByTitle gives the canonical
// case-insensitive ordering.
//
// # Iteration
//
// All returns an iter.Seq. The body of a range loop may remove any note,
// including the one it was just handed, and the loop still visits every
// remaining note exactly once:
//
//	for note := range coll.All() {
//	    if note.Title == "" {
//	        coll.Remove(note.ID())
//	    }
//	}
//
// Removed notes are tombstoned in place while an iteration is active and
// compacted away once none is.
package notes
