// Package nso parses Nintendo Switch NSO executable containers.
//
// An NSO file is a 0x40-byte header followed by three LZ4 block-compressed
// segments (code, read-only data, data). The decompressed code segment
// carries a MOD0 module descriptor, located through a pointer at offset 4,
// whose relative offsets give the dynamic table, BSS and .eh_frame_hdr
// bounds.
//
// # Header Layout
//
//	0x00  magic "NSO0"
//	0x04  version
//	0x0C  flags
//	0x10  code descriptor    {file offset, address, size, module name offset}
//	0x20  rodata descriptor  {file offset, address, size, module name size}
//	0x30  data descriptor    {file offset, address, size, bss size}
//
// Each segment's compressed length is the distance to the next segment's
// file offset; the data segment runs to end of file. File offsets must be
// strictly increasing.
//
// # Parsing
//
//	data, _ := os.ReadFile("main")
//	if !nso.IsNSO(data) {
//	    log.Fatal("not an NSO")
//	}
//	f, err := nso.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range f.Regions() {
//	    fmt.Printf("%-14s %#x %#x\n", r.Name, r.Address, r.Size)
//	}
//
// Parsing is a pure function of the input buffer. Errors are *errors.Error
// values from the errors package and can be matched by kind:
//
//	if errors.Is(err, nsoerrors.ErrDecompressionFailed) { ... }
//
// # Encoding
//
// File.Encode writes a container that parses back to identical segment
// bytes, which is mostly useful for building fixtures.
package nso
