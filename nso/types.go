package nso

import "fmt"

// SegmentKind identifies one of the three container segments.
type SegmentKind int

const (
	KindCode SegmentKind = iota
	KindReadOnlyData
	KindData
)

// segmentCount is the fixed number of segments in a container.
const segmentCount = 3

// String returns the short segment name used in errors and logs.
func (k SegmentKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindReadOnlyData:
		return "rodata"
	case KindData:
		return "data"
	default:
		return fmt.Sprintf("segment(%d)", int(k))
	}
}

// SectionName returns the conventional section name for the segment.
func (k SegmentKind) SectionName() string {
	switch k {
	case KindCode:
		return ".text"
	case KindReadOnlyData:
		return ".rodata"
	case KindData:
		return ".data"
	default:
		return ""
	}
}

// Class returns the host-facing region class for the segment.
func (k SegmentKind) Class() RegionClass {
	switch k {
	case KindCode:
		return ClassCode
	case KindReadOnlyData:
		return ClassConst
	default:
		return ClassData
	}
}

// SegmentDescriptor is one 16-byte segment record from the header.
type SegmentDescriptor struct {
	// FileOffset is where the compressed payload begins.
	FileOffset uint32
	// MemoryAddress is the load address relative to the module base.
	MemoryAddress uint32
	// DecompressedSize is the exact size of the decoded segment.
	DecompressedSize uint32
	// Aux holds the module name offset (code), the module name size
	// (rodata) or the BSS size (data). BSS bounds come from MOD0.
	Aux uint32
}

// Header is the fixed container header.
type Header struct {
	Magic    uint32
	Version  uint32
	Flags    uint32
	Segments [segmentCount]SegmentDescriptor
}

// Segment is a decompressed segment and the descriptor it came from.
type Segment struct {
	Data       []byte
	Descriptor SegmentDescriptor
	Kind       SegmentKind
}

// Name returns the section name of the segment.
func (s *Segment) Name() string {
	return s.Kind.SectionName()
}

// Address returns the segment's load address.
func (s *Segment) Address() uint64 {
	return uint64(s.Descriptor.MemoryAddress)
}

// ModuleDescriptor holds the resolved MOD0 record. All offsets are absolute
// offsets from the module base.
type ModuleDescriptor struct {
	MagicOffset     uint32
	DynamicOffset   uint64
	BssStart        uint64
	BssEnd          uint64
	EhFrameHdrStart uint64
	EhFrameHdrEnd   uint64
	ModuleOffset    uint64
}

// BssSize returns the size of the zero-filled region.
func (m ModuleDescriptor) BssSize() uint64 {
	return m.BssEnd - m.BssStart
}

// EhFrameHdrSize returns the size of the .eh_frame_hdr region.
func (m ModuleDescriptor) EhFrameHdrSize() uint64 {
	return m.EhFrameHdrEnd - m.EhFrameHdrStart
}

// File is a parsed NSO container.
type File struct {
	Header   Header
	Segments [segmentCount]Segment
	Module   ModuleDescriptor
}

// Segment returns the segment of the given kind.
func (f *File) Segment(k SegmentKind) *Segment {
	if k < 0 || int(k) >= segmentCount {
		return nil
	}
	return &f.Segments[k]
}

// Text returns the code segment.
func (f *File) Text() *Segment { return &f.Segments[KindCode] }

// Rodata returns the read-only data segment.
func (f *File) Rodata() *Segment { return &f.Segments[KindReadOnlyData] }

// Data returns the data segment.
func (f *File) Data() *Segment { return &f.Segments[KindData] }
