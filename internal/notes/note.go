package notes

// Note is a single title/message record. Title and Message may be changed
// freely; the id is fixed for the life of the note.
type Note struct {
	id      int64
	Title   string
	Message string
}

// NewNote returns an empty note with the given id. Use it to build notes read
// from a container before handing them to Collection.InsertExisting.
func NewNote(id int64) *Note {
	return &Note{id: id}
}

// ID returns the note's identifier.
func (n *Note) ID() int64 {
	return n.id
}
