package nso

import (
	"math"

	"github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso/internal/binary"
)

// Encode writes the file back to container form. File offsets and
// decompressed sizes are recomputed from the segment data; memory addresses,
// aux fields, version and flags are kept.
func (f *File) Encode() ([]byte, error) {
	var payloads [segmentCount][]byte
	for i := range f.Segments {
		s := &f.Segments[i]
		if uint64(len(s.Data)) > math.MaxUint32 {
			return nil, errors.New(errors.PhaseEncode, errors.KindSizeLimit).
				Segment(s.Kind.String()).
				Detail("segment larger than 4 GiB").
				Build()
		}
		p, err := CompressSegment(s.Data)
		if err != nil {
			return nil, err
		}
		payloads[i] = p
	}

	w := binary.NewWriter()
	w.WriteU32BE(Magic)
	w.WriteU32LE(f.Header.Version)
	w.WriteU32LE(0)
	w.WriteU32LE(f.Header.Flags)

	off := uint64(HeaderSize)
	for i := range f.Segments {
		s := &f.Segments[i]
		if off > math.MaxUint32 {
			return nil, errors.New(errors.PhaseEncode, errors.KindSizeLimit).
				Segment(s.Kind.String()).
				Detail("file offset overflows 32 bits").
				Build()
		}
		w.WriteU32LE(uint32(off))
		w.WriteU32LE(s.Descriptor.MemoryAddress)
		w.WriteU32LE(uint32(len(s.Data)))
		w.WriteU32LE(s.Descriptor.Aux)
		off += uint64(len(payloads[i]))
	}
	w.PadTo(HeaderSize)

	for _, p := range payloads {
		w.WriteBytes(p)
	}
	return w.Bytes(), nil
}
