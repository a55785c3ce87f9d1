package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortRead is returned when a read runs past the end of the buffer.
var ErrShortRead = errors.New("read past end of buffer")

// Reader is a read cursor over an immutable byte slice.
// Slices returned by ReadBytes alias the underlying buffer.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt creates a Reader positioned at pos.
func NewReaderAt(data []byte, pos int) (*Reader, error) {
	r := NewReader(data)
	if err := r.Seek(pos); err != nil {
		return nil, err
	}
	return r, nil
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Seek moves the cursor to an absolute position. pos == len is allowed.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return r.WrapError("seek", fmt.Errorf("position %d outside [0, %d]", pos, len(r.data)))
	}
	r.pos = pos
	return nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.WrapError("", fmt.Errorf("%w: want %d bytes, have %d", ErrShortRead, n, r.Len()))
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU32BE reads a big-endian uint32.
func (r *Reader) ReadU32BE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadS32LE reads a little-endian int32.
func (r *Reader) ReadS32LE() (int32, error) {
	v, err := r.ReadU32LE()
	return int32(v), err
}

// Uint32At reads a little-endian uint32 at off without a cursor.
func Uint32At(data []byte, off int) (uint32, bool) {
	if off < 0 || off > len(data)-4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[off:]), true
}

// ParseError represents an error during binary parsing with position information.
type ParseError struct {
	Err      error
	Field    string
	Position int
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("nso: %s at position %d: %v", e.Field, e.Position, e.Err)
	}
	return fmt.Sprintf("nso: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(field string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.Field == "" {
			pe.Field = field
		}
		return pe
	}
	return &ParseError{
		Position: r.pos,
		Field:    field,
		Err:      err,
	}
}
