package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wippyai/nso-loader/nso"
)

func testFile() *nso.File {
	f := &nso.File{
		Header: nso.Header{Magic: nso.Magic, Flags: 0x3F},
		Module: nso.ModuleDescriptor{
			MagicOffset:     0x10,
			DynamicOffset:   0x2040,
			BssStart:        0x2100,
			BssEnd:          0x2400,
			EhFrameHdrStart: 0x1080,
			EhFrameHdrEnd:   0x10A0,
		},
	}
	addrs := [...]uint32{0, 0x1000, 0x2000}
	for i := range f.Segments {
		f.Segments[i] = nso.Segment{
			Data:       make([]byte, 0x100),
			Descriptor: nso.SegmentDescriptor{MemoryAddress: addrs[i], DecompressedSize: 0x100},
			Kind:       nso.SegmentKind(i),
		}
	}
	return f
}

func TestPrintLayout(t *testing.T) {
	f := testFile()
	var buf bytes.Buffer
	printLayout(&buf, newStyles(false), "main", "NSO", f, f.Regions())
	out := buf.String()

	for _, want := range []string{
		"NSO main",
		"Flags: 0x3f",
		".text          0x00000000-0x00000100 CODE  256 bytes",
		".bss           0x00002100-0x00002400 BSS   768 bytes, zero-filled",
		".eh_frame_hdr  0x00001080-0x000010a0 CONST 32 bytes, no data",
		"MOD0 at 0x10:",
		"dynamic              0x00002040",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLookup(t *testing.T) {
	f := testFile()
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"hex", "0x1010", "0x1010 is .rodata+0x10 (CONST)", false},
		{"decimal", "16", "0x10 is .text+0x10 (CODE)", false},
		{"bss", " 0x2200 ", "0x2200 is .bss+0x100 (BSS)", false},
		{"unmapped", "0x3000", "", true},
		{"garbage", "text", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookup(f, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("lookup(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("lookup(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	regions := testFile().Regions()

	text := preview(regions[0])
	if lines := strings.Count(text, "\n"); lines != 16 {
		t.Errorf("text preview has %d lines, want 16", lines)
	}
	if got := preview(regions[3]); got != ".bss: 768 zero bytes" {
		t.Errorf("bss preview = %q", got)
	}
	if got := preview(regions[4]); !strings.Contains(got, "no backing bytes") {
		t.Errorf("eh_frame_hdr preview = %q", got)
	}
}
