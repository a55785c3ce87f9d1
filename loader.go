package nsoloader

import (
	"github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso"
)

// Host creates memory regions in its own address-space model.
type Host interface {
	MapRegion(r nso.Region) error
}

// HostFunc adapts a function to Host.
type HostFunc func(r nso.Region) error

// MapRegion calls fn(r).
func (fn HostFunc) MapRegion(r nso.Region) error {
	return fn(r)
}

// Load parses data and hands every region to h in layout order.
// The first host error aborts the load.
func Load(h Host, data []byte) (*nso.File, error) {
	return LoadWithOptions(h, data, nso.DefaultParseOptions())
}

// LoadWithOptions is Load with explicit parse options.
func LoadWithOptions(h Host, data []byte, opts nso.ParseOptions) (*nso.File, error) {
	if h == nil {
		return nil, errors.InvalidInput(errors.PhaseLoad, "nil host")
	}
	f, err := nso.ParseWithOptions(data, opts)
	if err != nil {
		return nil, err
	}
	for _, r := range f.Regions() {
		if err := h.MapRegion(r); err != nil {
			return nil, errors.Load(r.Name, err)
		}
	}
	return f, nil
}

// Accept reports whether a host should offer to load data, and the format
// name to show when it does.
func Accept(data []byte) (string, bool) {
	if !nso.IsNSO(data) {
		return "", false
	}
	return FormatName, true
}

// FormatName is the display name of the container format.
const FormatName = "Nintendo Switch Binary (NSO)"
