package nso

// NSO container magic number and fixed header layout.
const (
	// Magic is the container magic ("NSO0" read big-endian).
	Magic uint32 = 0x4E534F30

	// HeaderSize is the fixed header region: 0x10 bytes of preamble plus
	// three 0x10-byte segment descriptors.
	HeaderSize = 0x40

	// SegmentHeaderOffset is where the code segment descriptor starts.
	SegmentHeaderOffset = 0x10

	// SegmentHeaderSize is the size of one segment descriptor record.
	SegmentHeaderSize = 0x10
)

// Preamble field offsets.
const (
	versionOffset = 0x4
	flagsOffset   = 0xC
)

// MOD0 layout inside the decompressed code segment.
const (
	// ModuleMagic is the module descriptor tag.
	ModuleMagic = "MOD0"

	// ModuleDescriptorSize covers the tag and six relative offsets.
	ModuleDescriptorSize = 0x1C

	// modulePointerOffset holds the little-endian offset of the MOD0 record.
	// The word at offset 0 is reserved.
	modulePointerOffset = 0x4
)

// Allocation guards for attacker-controlled decompressed sizes.
const (
	// DefaultMaxSegmentSize caps a single segment's declared size.
	DefaultMaxSegmentSize = 1 << 30

	// maxExpansion bounds a declared size relative to the whole file.
	// An LZ4 block cannot expand past ~255x its compressed length.
	maxExpansion = 256
)

// Target description for hosts. The loader never configures a target itself.
const (
	ArchAArch64 = "aarch64"
	PointerSize = 8
)
