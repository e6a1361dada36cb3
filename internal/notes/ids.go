package notes

import "math"

// IdAllocator issues unique, monotonically increasing note ids and tracks
// which ids are in use. The zero value is ready to use.
type IdAllocator struct {
	next      int64
	exhausted bool
	used      map[int64]struct{}
}

// RegisterExisting marks an externally supplied id, such as one read from
// disk, as used. It returns false and changes nothing if the id is already
// in use. Otherwise the high-water mark becomes max(current, id+1).
func (a *IdAllocator) RegisterExisting(id int64) bool {
	if a.InUse(id) {
		return false
	}
	a.mark(id)
	if id >= a.next {
		if id == math.MaxInt64 {
			a.exhausted = true
		} else {
			a.next = id + 1
		}
	}
	return true
}

// AllocateNew returns the current high-water mark, marks it used and advances
// the mark. It panics once the int64 id space is exhausted; check CanAllocate
// first when ids come from untrusted input.
func (a *IdAllocator) AllocateNew() int64 {
	if a.exhausted {
		panic("notes: id space exhausted")
	}
	id := a.next
	a.mark(id)
	if id == math.MaxInt64 {
		a.exhausted = true
	} else {
		a.next++
	}
	return id
}

// CanAllocate reports whether n more ids can be allocated.
func (a *IdAllocator) CanAllocate(n int) bool {
	if n <= 0 {
		return true
	}
	if a.exhausted {
		return false
	}
	return uint64(n) <= uint64(math.MaxInt64-a.next)+1
}

// Release removes id from the used set. It returns false if id was not in
// use. The high-water mark is never lowered, so released ids are not reissued.
func (a *IdAllocator) Release(id int64) bool {
	if !a.InUse(id) {
		return false
	}
	delete(a.used, id)
	return true
}

// InUse reports whether id is currently allocated or registered.
func (a *IdAllocator) InUse(id int64) bool {
	_, ok := a.used[id]
	return ok
}

// Len returns the number of ids in use.
func (a *IdAllocator) Len() int {
	return len(a.used)
}

// Reset clears the used set and the high-water mark.
func (a *IdAllocator) Reset() {
	a.next = 0
	a.exhausted = false
	a.used = nil
}

func (a *IdAllocator) mark(id int64) {
	if a.used == nil {
		a.used = make(map[int64]struct{})
	}
	a.used[id] = struct{}{}
}
