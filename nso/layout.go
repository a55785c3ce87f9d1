package nso

// RegionClass is the host-facing class of a memory region.
type RegionClass string

const (
	ClassCode  RegionClass = "CODE"
	ClassConst RegionClass = "CONST"
	ClassData  RegionClass = "DATA"
	ClassBSS   RegionClass = "BSS"
)

// Region names for the regions derived from MOD0.
const (
	BssName        = ".bss"
	EhFrameHdrName = ".eh_frame_hdr"
)

// Region describes one memory region a host should create.
// Addresses are relative to the module base.
type Region struct {
	// Data is the backing bytes. Nil for zero-filled and
	// metadata-only regions.
	Data    []byte
	Name    string
	Class   RegionClass
	Address uint64
	Size    uint64
	Kind    SegmentKind
	// ZeroFill marks a region with no backing bytes that must read as zero.
	ZeroFill bool
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Address + r.Size
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr uint64) bool {
	return r.Address <= addr && addr < r.End()
}

// Regions returns the three segments followed by .bss and .eh_frame_hdr.
// The derived regions are always present and may be empty.
func (f *File) Regions() []Region {
	regions := make([]Region, 0, segmentCount+2)
	for i := range f.Segments {
		s := &f.Segments[i]
		regions = append(regions, Region{
			Data:    s.Data,
			Name:    s.Name(),
			Class:   s.Kind.Class(),
			Address: s.Address(),
			Size:    uint64(len(s.Data)),
			Kind:    s.Kind,
		})
	}
	regions = append(regions,
		Region{
			Name:     BssName,
			Class:    ClassBSS,
			Address:  f.Module.BssStart,
			Size:     f.Module.BssSize(),
			Kind:     KindData,
			ZeroFill: true,
		},
		Region{
			Name:    EhFrameHdrName,
			Class:   ClassConst,
			Address: f.Module.EhFrameHdrStart,
			Size:    f.Module.EhFrameHdrSize(),
			Kind:    KindReadOnlyData,
		},
	)
	return regions
}

// RegionAt returns the first region in Regions order containing addr.
// Segments win over the derived regions they overlap.
func (f *File) RegionAt(addr uint64) (Region, bool) {
	for _, r := range f.Regions() {
		if r.Contains(addr) {
			return r, true
		}
	}
	return Region{}, false
}

// ImageSize returns the end of the highest region.
func (f *File) ImageSize() uint64 {
	var end uint64
	for _, r := range f.Regions() {
		if e := r.End(); e > end {
			end = e
		}
	}
	return end
}
