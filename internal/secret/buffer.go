package secret

import (
	"bufio"
	"bytes"
	"crypto/subtle"
	"fmt"
	"io"
	"os"
	"sync"
)

// Buffer holds sensitive bytes. It must not be copied after creation, and
// any access after Close panics.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	locked bool
	closed bool
}

// New allocates a zero-filled buffer of size bytes.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	data, locked, err := allocate(size)
	if err != nil {
		return nil, err
	}
	return &Buffer{data: data, length: size, locked: locked}, nil
}

// NewFromBytes copies source into a new buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}
	b, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(b.data, source)
	Zero(source)
	return b, nil
}

// ReadLine reads one line from r, trims surrounding whitespace and returns it
// in a buffer. An empty line is an error.
func ReadLine(r io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading secret: %w", err)
		}
		return nil, fmt.Errorf("secret is empty")
	}
	line := scanner.Bytes()
	defer Zero(line)

	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret is empty")
	}
	return NewFromBytes(trimmed)
}

// ReadFromPath reads the first line of the file at path, or of stdin if path
// is "-".
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return ReadLine(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLine(f)
}

// Bytes returns the secret. The slice aliases the buffer and must not be
// retained past Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.data[:b.length]
}

// String returns a heap copy of the secret for APIs that need a string.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.data[:b.length])
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Locked reports whether the memory is pinned against swapping.
func (b *Buffer) Locked() bool {
	return b.locked
}

// Equal compares the contents of two buffers in constant time.
func (b *Buffer) Equal(other *Buffer) bool {
	return subtle.ConstantTimeCompare(b.Bytes(), other.Bytes()) == 1
}

// Close zeroes and releases the buffer. It is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	Zero(b.data)
	err := release(b.data, b.locked)
	b.data = nil
	return err
}

// Zero overwrites data with zeros.
func Zero(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
