package nso

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/wippyai/nso-loader/errors"
	"github.com/wippyai/nso-loader/nso/internal/binary"
)

// blockSizePrefix is the length of the synthesized size field.
const blockSizePrefix = 4

// uncompressBlock is swapped in tests to observe decoder calls.
var uncompressBlock = lz4.UncompressBlock

// FrameBlock prefixes a raw LZ4 block with its decompressed size as a
// little-endian uint32, the layout size-prefixed block decoders expect.
func FrameBlock(compressed []byte, size uint32) []byte {
	w := binary.NewWriter()
	w.WriteU32LE(size)
	w.WriteBytes(compressed)
	return w.Bytes()
}

// UnframeBlock decodes a size-prefixed LZ4 block. The result is exactly the
// prefixed size or an error.
func UnframeBlock(framed []byte) ([]byte, error) {
	r := binary.NewReader(framed)
	size, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("block size", err)
	}
	payload, err := r.ReadBytes(r.Len())
	if err != nil {
		return nil, r.WrapError("block payload", err)
	}
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	n, err := uncompressBlock(payload, out)
	if err != nil {
		return nil, err
	}
	if n != int(size) {
		return out[:n], fmt.Errorf("block decoded to %d of %d bytes", n, size)
	}
	return out, nil
}

// DecompressSegment decodes one segment payload to exactly size bytes.
func DecompressSegment(compressed []byte, size uint32) ([]byte, error) {
	return decompressSegment("", compressed, size)
}

func decompressSegment(name string, compressed []byte, size uint32) ([]byte, error) {
	out, err := UnframeBlock(FrameBlock(compressed, size))
	if err != nil {
		return nil, errors.DecompressionFailed(name, int(size), len(out), err)
	}
	return out, nil
}

// CompressSegment encodes raw as a single LZ4 block without a size prefix.
func CompressSegment(raw []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, dst, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidInput, err, "lz4 compress block")
	}
	return dst[:n], nil
}
