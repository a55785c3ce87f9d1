package nso

import (
	"github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso/internal/binary"
)

// ReadSegmentDescriptor reads one descriptor at the reader's position and
// advances it by SegmentHeaderSize. Values are not validated.
func ReadSegmentDescriptor(r *binary.Reader) (SegmentDescriptor, error) {
	var d SegmentDescriptor
	for _, field := range [...]*uint32{
		&d.FileOffset,
		&d.MemoryAddress,
		&d.DecompressedSize,
		&d.Aux,
	} {
		v, err := r.ReadU32LE()
		if err != nil {
			return SegmentDescriptor{}, r.WrapError("segment descriptor", err)
		}
		*field = v
	}
	return d, nil
}

// ReadSegmentDescriptors reads the code, rodata and data descriptors from the
// fixed header offset.
func ReadSegmentDescriptors(data []byte) ([segmentCount]SegmentDescriptor, error) {
	var descs [segmentCount]SegmentDescriptor
	if len(data) < HeaderSize {
		return descs, errors.TruncatedHeader(HeaderSize, len(data))
	}
	r, err := binary.NewReaderAt(data, SegmentHeaderOffset)
	if err != nil {
		return descs, errors.Wrap(errors.PhaseHeader, errors.KindTruncatedHeader, err, "seek to segment descriptors")
	}
	for i := range descs {
		d, err := ReadSegmentDescriptor(r)
		if err != nil {
			return descs, errors.New(errors.PhaseHeader, errors.KindTruncatedHeader).
				Segment(SegmentKind(i).String()).
				Offset(int64(r.Position())).
				Cause(err).
				Build()
		}
		descs[i] = d
	}
	return descs, nil
}

// span is a half-open byte range [start, end) of compressed payload.
type span struct {
	start int64
	end   int64
}

func (s span) len() int64 { return s.end - s.start }

// compressedSpans derives each segment's compressed range from the distance
// to the next descriptor's file offset. The data span runs to EOF.
func compressedSpans(descs [segmentCount]SegmentDescriptor, fileLen int) ([segmentCount]span, error) {
	var spans [segmentCount]span
	for i := range descs {
		s := span{start: int64(descs[i].FileOffset), end: int64(fileLen)}
		if i+1 < segmentCount {
			s.end = int64(descs[i+1].FileOffset)
		}
		spans[i] = s
	}
	for i, s := range spans {
		name := SegmentKind(i).String()
		if s.start < HeaderSize {
			return spans, errors.New(errors.PhaseHeader, errors.KindInvalidSegmentOrdering).
				Segment(name).
				Offset(s.start).
				Detail("payload overlaps the fixed header").
				Mismatch(">= 0x40", s.start).
				Build()
		}
		if s.len() <= 0 {
			return spans, errors.InvalidSegmentOrdering(name, s.start, s.end)
		}
	}
	return spans, nil
}
