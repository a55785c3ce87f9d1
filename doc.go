// Package nsoloader loads Nintendo Switch NSO executables into a host
// address space.
//
// # Architecture Overview
//
//	nsoloader/          Host contract and Load
//	├── nso/            Container parsing, MOD0 resolution, region layout
//	├── errors/         Structured error types
//	└── cmd/nsoinfo/    Example host that prints or browses the layout
//
// # Quick Start
//
//	data, _ := os.ReadFile("main")
//	if _, ok := nsoloader.Accept(data); !ok {
//	    return
//	}
//	f, err := nsoloader.Load(host, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The host receives .text, .rodata and .data with their bytes, then a
// zero-filled .bss and the .eh_frame_hdr bounds. Configuring the target
// (64-bit little-endian AArch64) is left to the host; nso.ArchAArch64 and
// nso.PointerSize describe it.
//
// # Thread Safety
//
// Parsing is a pure function of its input. Separate loads share no state
// and may run concurrently.
package nsoloader
