package nso

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso/internal/binary"
)

// ParseOptions controls parsing behavior
type ParseOptions struct {
	// MaxSegmentSize caps each declared decompressed size. Zero means
	// DefaultMaxSegmentSize.
	MaxSegmentSize uint32
	// Concurrent decompresses the three segments in parallel. Results and
	// reported errors are identical to a sequential parse.
	Concurrent bool
}

// DefaultParseOptions returns the options used by Parse.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxSegmentSize: DefaultMaxSegmentSize}
}

func (o ParseOptions) segmentLimit(fileLen int) uint64 {
	limit := uint64(o.MaxSegmentSize)
	if limit == 0 {
		limit = DefaultMaxSegmentSize
	}
	if byFile := uint64(fileLen) * maxExpansion; byFile < limit {
		limit = byFile
	}
	return limit
}

// IsNSO reports whether data starts with the container magic.
// It never reads past the first four bytes.
func IsNSO(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	magic, err := binary.NewReader(data[:4]).ReadU32BE()
	return err == nil && magic == Magic
}

// Parse parses an NSO container held entirely in memory.
func Parse(data []byte) (*File, error) {
	return ParseWithOptions(data, DefaultParseOptions())
}

// ParseWithOptions parses an NSO container with explicit options.
// On error no partial File is returned.
func ParseWithOptions(data []byte, opts ParseOptions) (*File, error) {
	log := Logger()

	hdr, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	spans, err := compressedSpans(hdr.Segments, len(data))
	if err != nil {
		return nil, err
	}

	limit := opts.segmentLimit(len(data))
	for i, d := range hdr.Segments {
		if uint64(d.DecompressedSize) > limit {
			return nil, errors.SizeLimit(SegmentKind(i).String(), uint64(d.DecompressedSize), limit)
		}
	}

	for i, d := range hdr.Segments {
		log.Debug("segment descriptor",
			zap.Stringer("segment", SegmentKind(i)),
			zap.Uint32("file_offset", d.FileOffset),
			zap.Int64("compressed_size", spans[i].len()),
			zap.Uint32("address", d.MemoryAddress),
			zap.Uint32("size", d.DecompressedSize),
		)
	}

	decoded, err := decompressAll(data, hdr.Segments, spans, opts.Concurrent)
	if err != nil {
		return nil, err
	}

	f := &File{Header: hdr}
	for i := range f.Segments {
		f.Segments[i] = Segment{
			Data:       decoded[i],
			Descriptor: hdr.Segments[i],
			Kind:       SegmentKind(i),
		}
	}

	mod, err := ResolveModuleDescriptor(f.Text().Data)
	if err != nil {
		return nil, err
	}
	f.Module = mod

	log.Debug("module descriptor",
		zap.Uint32("magic_offset", mod.MagicOffset),
		zap.Uint64("dynamic", mod.DynamicOffset),
		zap.Uint64("bss_start", mod.BssStart),
		zap.Uint64("bss_size", mod.BssSize()),
		zap.Uint64("eh_frame_hdr_start", mod.EhFrameHdrStart),
		zap.Uint64("eh_frame_hdr_size", mod.EhFrameHdrSize()),
	)
	return f, nil
}

func parseHeader(data []byte) (Header, error) {
	if len(data) >= 4 && !IsNSO(data) {
		magic, _ := binary.NewReader(data).ReadU32BE()
		return Header{}, errors.UnsupportedFile(Magic, magic)
	}
	if len(data) < HeaderSize {
		return Header{}, errors.TruncatedHeader(HeaderSize, len(data))
	}

	hdr := Header{Magic: Magic}
	hdr.Version, _ = binary.Uint32At(data, versionOffset)
	hdr.Flags, _ = binary.Uint32At(data, flagsOffset)

	descs, err := ReadSegmentDescriptors(data)
	if err != nil {
		return Header{}, err
	}
	hdr.Segments = descs
	return hdr, nil
}

// decompressAll decodes every span. Errors are reported in segment order
// regardless of which decode finished first.
func decompressAll(data []byte, descs [segmentCount]SegmentDescriptor, spans [segmentCount]span, concurrent bool) ([segmentCount][]byte, error) {
	var (
		out  [segmentCount][]byte
		errs [segmentCount]error
	)
	decode := func(i int) error {
		s := spans[i]
		out[i], errs[i] = decompressSegment(SegmentKind(i).String(), data[s.start:s.end], descs[i].DecompressedSize)
		return errs[i]
	}

	if concurrent {
		var g errgroup.Group
		for i := range spans {
			i := i
			g.Go(func() error { return decode(i) })
		}
		if g.Wait() == nil {
			return out, nil
		}
	} else {
		for i := range spans {
			if decode(i) != nil {
				break
			}
		}
	}

	for _, err := range errs {
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
