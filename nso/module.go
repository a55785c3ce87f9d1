package nso

import (
	"fmt"

	"github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso/internal/binary"
)

// ResolveModuleDescriptor locates the MOD0 record through the pointer at
// offset 4 of the code segment and resolves every relative field against
// the record's own offset.
func ResolveModuleDescriptor(code []byte) (ModuleDescriptor, error) {
	ptr, ok := binary.Uint32At(code, modulePointerOffset)
	if !ok {
		return ModuleDescriptor{}, errors.ModuleDescriptorNotFound(modulePointerOffset,
			fmt.Sprintf("code segment is %d bytes, too short for the MOD0 pointer", len(code)))
	}
	if uint64(ptr)+ModuleDescriptorSize > uint64(len(code)) {
		return ModuleDescriptor{}, errors.New(errors.PhaseModule, errors.KindModuleDescriptorNotFound).
			Segment(KindCode.String()).
			Offset(int64(ptr)).
			Detail("MOD0 record does not fit in the code segment").
			Mismatch(fmt.Sprintf("<= 0x%x", len(code)), fmt.Sprintf("0x%x", uint64(ptr)+ModuleDescriptorSize)).
			Build()
	}

	r, err := binary.NewReaderAt(code, int(ptr))
	if err != nil {
		return ModuleDescriptor{}, errors.Wrap(errors.PhaseModule, errors.KindModuleDescriptorNotFound, err, "seek to MOD0")
	}
	tag, err := r.ReadBytes(len(ModuleMagic))
	if err != nil {
		return ModuleDescriptor{}, errors.Wrap(errors.PhaseModule, errors.KindModuleDescriptorNotFound, err, "read MOD0 tag")
	}
	if string(tag) != ModuleMagic {
		return ModuleDescriptor{}, errors.New(errors.PhaseModule, errors.KindModuleDescriptorNotFound).
			Segment(KindCode.String()).
			Offset(int64(ptr)).
			Detail("module descriptor tag mismatch").
			Mismatch(fmt.Sprintf("%q", ModuleMagic), fmt.Sprintf("%q", tag)).
			Build()
	}

	m := ModuleDescriptor{MagicOffset: ptr}
	fields := [...]struct {
		name string
		dst  *uint64
	}{
		{"dynamic", &m.DynamicOffset},
		{"bss start", &m.BssStart},
		{"bss end", &m.BssEnd},
		{"eh_frame_hdr start", &m.EhFrameHdrStart},
		{"eh_frame_hdr end", &m.EhFrameHdrEnd},
		{"module object", &m.ModuleOffset},
	}
	for _, f := range fields {
		pos := r.Position()
		rel, err := r.ReadS32LE()
		if err != nil {
			return ModuleDescriptor{}, errors.Wrap(errors.PhaseModule, errors.KindModuleDescriptorNotFound, err, "read MOD0 "+f.name)
		}
		abs := int64(ptr) + int64(rel)
		if abs < 0 {
			return ModuleDescriptor{}, errors.InvalidModuleDescriptor(int64(pos),
				"%s offset 0x%x%+d resolves before the module base", f.name, ptr, rel)
		}
		*f.dst = uint64(abs)
	}

	if m.BssEnd < m.BssStart {
		return ModuleDescriptor{}, errors.InvalidModuleDescriptor(int64(ptr),
			"bss end 0x%x before start 0x%x", m.BssEnd, m.BssStart)
	}
	if m.EhFrameHdrEnd < m.EhFrameHdrStart {
		return ModuleDescriptor{}, errors.InvalidModuleDescriptor(int64(ptr),
			"eh_frame_hdr end 0x%x before start 0x%x", m.EhFrameHdrEnd, m.EhFrameHdrStart)
	}
	return m, nil
}
