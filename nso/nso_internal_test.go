package nso

import (
	"bytes"
	"testing"

	"github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso/internal/binary"
)

func countDecodes(t *testing.T) *int {
	t.Helper()
	calls := 0
	orig := uncompressBlock
	uncompressBlock = func(src, dst []byte) (int, error) {
		calls++
		return orig(src, dst)
	}
	t.Cleanup(func() { uncompressBlock = orig })
	return &calls
}

func headerWith(offsets [segmentCount]uint32, size uint32, total int) []byte {
	w := binary.NewWriter()
	w.WriteU32BE(Magic)
	w.PadTo(SegmentHeaderOffset)
	for _, off := range offsets {
		w.WriteU32LE(off)
		w.WriteU32LE(0)
		w.WriteU32LE(size)
		w.WriteU32LE(0)
	}
	w.PadTo(total)
	return w.Bytes()
}

func TestCompressedSpans(t *testing.T) {
	descs := [segmentCount]SegmentDescriptor{
		{FileOffset: 0x40},
		{FileOffset: 0x100},
		{FileOffset: 0x180},
	}
	spans, err := compressedSpans(descs, 0x200)
	if err != nil {
		t.Fatalf("compressedSpans: %v", err)
	}
	want := [segmentCount]span{{0x40, 0x100}, {0x100, 0x180}, {0x180, 0x200}}
	if spans != want {
		t.Errorf("spans = %v, want %v", spans, want)
	}
}

func TestCompressedSpansRejects(t *testing.T) {
	tests := []struct {
		name    string
		offsets [segmentCount]uint32
		fileLen int
		segment string
	}{
		{"equal offsets", [segmentCount]uint32{0x40, 0x40, 0x80}, 0x100, "code"},
		{"data before rodata", [segmentCount]uint32{0x40, 0x90, 0x80}, 0x100, "rodata"},
		{"data at eof", [segmentCount]uint32{0x40, 0x60, 0x100}, 0x100, "data"},
		{"data past eof", [segmentCount]uint32{0x40, 0x60, 0x200}, 0x100, "data"},
		{"code inside header", [segmentCount]uint32{0x20, 0x60, 0x80}, 0x100, "code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var descs [segmentCount]SegmentDescriptor
			for i, off := range tt.offsets {
				descs[i].FileOffset = off
			}
			_, err := compressedSpans(descs, tt.fileLen)
			if !errors.Is(err, errors.ErrInvalidSegmentOrdering) {
				t.Fatalf("got %v, want invalid segment ordering", err)
			}
			if e := err.(*errors.Error); e.Segment != tt.segment {
				t.Errorf("Segment = %q, want %q", e.Segment, tt.segment)
			}
		})
	}
}

func TestOrderingCheckedBeforeDecompression(t *testing.T) {
	calls := countDecodes(t)
	data := headerWith([segmentCount]uint32{0x40, 0x80, 0x60}, 0x10, 0xC0)

	_, err := Parse(data)
	if !errors.Is(err, errors.ErrInvalidSegmentOrdering) {
		t.Fatalf("got %v, want invalid segment ordering", err)
	}
	if *calls != 0 {
		t.Errorf("decoder ran %d times before ordering was rejected", *calls)
	}
}

func TestSizeLimitCheckedBeforeDecompression(t *testing.T) {
	calls := countDecodes(t)
	data := headerWith([segmentCount]uint32{0x40, 0x50, 0x60}, 0x10, 0x70)

	_, err := ParseWithOptions(data, ParseOptions{MaxSegmentSize: 0x8})
	if !errors.Is(err, errors.ErrSizeLimit) {
		t.Fatalf("got %v, want size limit", err)
	}
	if *calls != 0 {
		t.Errorf("decoder ran %d times before the size guard", *calls)
	}
}

func TestSegmentLimit(t *testing.T) {
	tests := []struct {
		opts    ParseOptions
		fileLen int
		want    uint64
	}{
		{ParseOptions{}, 0x100, 0x100 * maxExpansion},
		{ParseOptions{MaxSegmentSize: 0x10}, 0x100, 0x10},
		{ParseOptions{}, 1 << 30, DefaultMaxSegmentSize},
	}
	for _, tt := range tests {
		if got := tt.opts.segmentLimit(tt.fileLen); got != tt.want {
			t.Errorf("segmentLimit(%+v, %d) = %d, want %d", tt.opts, tt.fileLen, got, tt.want)
		}
	}
}

func TestFrameBlock(t *testing.T) {
	framed := FrameBlock([]byte{0xAA, 0xBB}, 0x01020304)
	want := []byte{0x04, 0x03, 0x02, 0x01, 0xAA, 0xBB}
	if !bytes.Equal(framed, want) {
		t.Errorf("FrameBlock = % x, want % x", framed, want)
	}
}

func TestUnframeBlockShortPrefix(t *testing.T) {
	if _, err := UnframeBlock([]byte{1, 2}); err == nil {
		t.Error("expected error for missing size prefix")
	}
}

func TestDecompressAllReportsFirstSegmentInOrder(t *testing.T) {
	good, err := CompressSegment(bytes.Repeat([]byte("abcd"), 16))
	if err != nil {
		t.Fatalf("CompressSegment: %v", err)
	}
	data := append([]byte{}, good...)
	codeEnd := len(data)
	data = append(data, 0xF0) // literal run promising more bytes than exist
	rodataEnd := len(data)
	data = append(data, 0xF0)

	descs := [segmentCount]SegmentDescriptor{{DecompressedSize: 64}, {DecompressedSize: 32}, {DecompressedSize: 32}}
	spans := [segmentCount]span{{0, int64(codeEnd)}, {int64(codeEnd), int64(rodataEnd)}, {int64(rodataEnd), int64(len(data))}}

	for _, concurrent := range []bool{false, true} {
		_, err := decompressAll(data, descs, spans, concurrent)
		if !errors.Is(err, errors.ErrDecompressionFailed) {
			t.Fatalf("concurrent=%v: got %v, want decompression failure", concurrent, err)
		}
		if e := err.(*errors.Error); e.Segment != "rodata" {
			t.Errorf("concurrent=%v: Segment = %q, want rodata", concurrent, e.Segment)
		}
	}
}
