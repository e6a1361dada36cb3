package container

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/PolarWolf314/notevault/internal/crypto"
)

const (
	// Magic opens every container and its encrypted payload.
	Magic = "NoteVault"

	// LegacyVersion is the original format: no terminators, no iteration count.
	LegacyVersion int32 = 0

	// CurrentVersion is the format written by Save.
	CurrentVersion int32 = 1

	// Extension is the file name suffix for containers.
	Extension = ".secnote"

	maxSaltLen = 1024
)

// Header is the unencrypted preamble of a container, normalized across
// format versions.
type Header struct {
	Version    int32
	Salt       []byte
	Iterations int
	IV         []byte
}

// canary returns the plaintext marker expected at the start of the payload.
func (h Header) canary() []byte {
	if h.Version == LegacyVersion {
		return []byte(Magic)
	}
	return append([]byte(Magic), 0)
}

// headerLayout decodes the version-specific part of a header, everything
// after the version field.
type headerLayout interface {
	decode(r *bufio.Reader, h *Header) error
}

type legacyHeader struct{}

func (legacyHeader) decode(r *bufio.Reader, h *Header) error {
	salt, err := readBlob(r, maxSaltLen, "salt")
	if err != nil {
		return err
	}
	iv, err := readBlob(r, maxSaltLen, "iv")
	if err != nil {
		return err
	}
	h.Salt = salt
	h.Iterations = crypto.LegacyIterations
	h.IV = iv
	return nil
}

type currentHeader struct{}

func (currentHeader) decode(r *bufio.Reader, h *Header) error {
	salt, err := readBlob(r, maxSaltLen, "salt")
	if err != nil {
		return err
	}
	iterations, err := readInt32(r)
	if err != nil {
		return fail(IoError, "reading iteration count: %w", err)
	}
	if iterations <= 0 {
		return fail(InvalidFile, "invalid iteration count %d", iterations)
	}
	iv, err := readBlob(r, maxSaltLen, "iv")
	if err != nil {
		return err
	}
	h.Salt = salt
	h.Iterations = int(iterations)
	h.IV = iv
	return nil
}

// readHeader parses the magic string, the version and the layout that
// version selects.
//
// Both layouts start with the 9 magic bytes. In the current layout a 0x00
// terminator and a non-zero version follow. In the legacy layout the version
// is 0, whose first byte doubles as the terminator position, and the
// following byte is the high byte of the salt length, which is always 0.
// Peeking five bytes therefore tells them apart.
func readHeader(r *bufio.Reader) (Header, error) {
	var h Header

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != Magic {
		return h, fail(InvalidFile, "missing magic string")
	}

	peek, err := r.Peek(5)
	if len(peek) < 4 {
		return h, fail(IoError, "reading version: %w", err)
	}

	var layout headerLayout
	if len(peek) == 5 && peek[0] == 0 && binary.BigEndian.Uint32(peek[1:5]) != 0 {
		h.Version = int32(binary.BigEndian.Uint32(peek[1:5]))
		layout = currentHeader{}
		_, _ = r.Discard(5)
	} else {
		h.Version = int32(binary.BigEndian.Uint32(peek[0:4]))
		layout = legacyHeader{}
		_, _ = r.Discard(4)
	}

	if h.Version < 0 {
		return h, fail(InvalidFile, "negative version %d", h.Version)
	}
	if h.Version > CurrentVersion {
		return h, fail(InvalidVersion, "version %d is newer than %d", h.Version, CurrentVersion)
	}

	if err := layout.decode(r, &h); err != nil {
		return h, err
	}
	if len(h.Salt) == 0 {
		return h, fail(InvalidFile, "empty salt")
	}
	if h.Iterations > crypto.MaxIterations {
		return h, fail(InvalidFile, "iteration count %d exceeds %d", h.Iterations, crypto.MaxIterations)
	}
	return h, nil
}

// appendHeader encodes h in the current layout.
func appendHeader(buf []byte, h Header) []byte {
	buf = append(buf, Magic...)
	buf = append(buf, 0)
	buf = binary.BigEndian.AppendUint32(buf, uint32(CurrentVersion))
	buf = appendBlob(buf, h.Salt)
	buf = binary.BigEndian.AppendUint32(buf, uint32(h.Iterations))
	buf = appendBlob(buf, h.IV)
	return buf
}

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func readBlob(r io.Reader, limit int, what string) ([]byte, error) {
	n, err := readInt32(r)
	if err != nil {
		return nil, fail(IoError, "reading %s length: %w", what, err)
	}
	if n < 0 || int(n) > limit {
		return nil, fail(IoError, "invalid %s length %d", what, n)
	}
	blob := make([]byte, n)
	if _, err := io.ReadFull(r, blob); err != nil {
		return nil, fail(IoError, "reading %s: %w", what, err)
	}
	return blob, nil
}

func appendBlob(buf, blob []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(blob)))
	return append(buf, blob...)
}
