package nsoloader_test

import (
	"encoding/binary"
	"errors"
	"testing"

	nsoloader "github.com/wippyai/nso-loader"
	nsoerrors "github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso"
)

func sample(t *testing.T) []byte {
	t.Helper()
	code := make([]byte, 0x80)
	binary.LittleEndian.PutUint32(code[4:], 0x8)
	copy(code[0x8:], nso.ModuleMagic)
	rel := []uint32{0x200, 0x300 - 0x8, 0x380 - 0x8, 0x210 - 0x8, 0x218 - 0x8, 0x300 - 0x8}
	for i, v := range rel {
		binary.LittleEndian.PutUint32(code[0xC+4*i:], v)
	}

	f := &nso.File{}
	f.Segments[nso.KindCode] = nso.Segment{Data: code, Kind: nso.KindCode}
	f.Segments[nso.KindReadOnlyData] = nso.Segment{Data: make([]byte, 0x40), Kind: nso.KindReadOnlyData, Descriptor: nso.SegmentDescriptor{MemoryAddress: 0x200}}
	f.Segments[nso.KindData] = nso.Segment{Data: []byte("data data data data"), Kind: nso.KindData, Descriptor: nso.SegmentDescriptor{MemoryAddress: 0x280}}
	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestLoadMapsRegionsInOrder(t *testing.T) {
	var names []string
	host := nsoloader.HostFunc(func(r nso.Region) error {
		names = append(names, r.Name)
		return nil
	})

	f, err := nsoloader.Load(host, sample(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{".text", ".rodata", ".data", ".bss", ".eh_frame_hdr"}
	if len(names) != len(want) {
		t.Fatalf("mapped %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("region %d = %s, want %s", i, names[i], want[i])
		}
	}
	if f.Module.BssSize() != 0x80 {
		t.Errorf("BssSize = 0x%x, want 0x80", f.Module.BssSize())
	}
}

func TestLoadStopsOnHostError(t *testing.T) {
	refused := errors.New("overlapping region")
	calls := 0
	host := nsoloader.HostFunc(func(r nso.Region) error {
		calls++
		if r.Name == ".data" {
			return refused
		}
		return nil
	})

	f, err := nsoloader.Load(host, sample(t))
	if f != nil {
		t.Error("file returned alongside error")
	}
	if !errors.Is(err, refused) {
		t.Errorf("got %v, want host error in chain", err)
	}
	var e *nsoerrors.Error
	if !errors.As(err, &e) || e.Phase != nsoerrors.PhaseLoad || e.Segment != ".data" {
		t.Errorf("got %#v, want load error for .data", err)
	}
	if calls != 3 {
		t.Errorf("host called %d times, want 3", calls)
	}
}

func TestLoadPropagatesParseError(t *testing.T) {
	host := nsoloader.HostFunc(func(nso.Region) error {
		t.Fatal("host called for an invalid file")
		return nil
	})
	_, err := nsoloader.Load(host, []byte("NSO0 short"))
	if !errors.Is(err, nsoerrors.ErrTruncatedHeader) {
		t.Errorf("got %v, want truncated header", err)
	}
}

func TestLoadNilHost(t *testing.T) {
	if _, err := nsoloader.Load(nil, sample(t)); nsoerrors.KindOf(err) != nsoerrors.KindInvalidInput {
		t.Errorf("got %v, want invalid input", err)
	}
}

func TestAccept(t *testing.T) {
	name, ok := nsoloader.Accept(sample(t))
	if !ok || name != nsoloader.FormatName {
		t.Errorf("Accept = %q, %v", name, ok)
	}
	if _, ok := nsoloader.Accept([]byte{0x7F, 'E', 'L', 'F'}); ok {
		t.Error("ELF accepted")
	}
}
