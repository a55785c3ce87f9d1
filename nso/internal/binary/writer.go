package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for NSO encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) {
	for i := 0; i < n; i++ {
		w.buf.WriteByte(0)
	}
}

// PadTo writes zero bytes until Len() == n. It does nothing if Len() >= n.
func (w *Writer) PadTo(n int) {
	w.WriteZeros(n - w.buf.Len())
}

// WriteU32LE writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteU32BE writes a big-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32BE(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

// WriteS32LE writes a little-endian int32 (fixed 4 bytes).
func (w *Writer) WriteS32LE(v int32) {
	w.WriteU32LE(uint32(v))
}
