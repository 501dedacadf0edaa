package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-resources/common"
	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// IndexUsage is the usage of buffers created by NormalizeIndexBuffer.
const IndexUsage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst

// NormalizeIndexBuffer widens count little-endian uint16 indices from src to uint32 and
// uploads them into a new buffer. The source buffer is left untouched.
//
// Parameters:
//   - buffers: the buffer manager that allocates the widened buffer
//   - label: a debug label for the new buffer
//   - src: the 16-bit index data, at least count*2 bytes
//   - count: the number of indices
//
// Returns:
//   - model.IndexMapper: a 32-bit mapper over the new buffer with offset 0 and length count*4
//   - error: error if src is too short, count is zero, or the upload fails
func NormalizeIndexBuffer(buffers buffer.Manager, label string, src []byte, count uint32) (model.IndexMapper, error) {
	if count == 0 {
		return model.IndexMapper{}, fmt.Errorf("index buffer %q: %w: no indices", label, resource.ErrMalformed)
	}
	if uint64(len(src)) < uint64(count)*2 {
		return model.IndexMapper{}, fmt.Errorf("index buffer %q: %w: %d bytes for %d indices",
			label, resource.ErrMalformed, len(src), count)
	}

	wide := make([]uint32, count)
	for i := range wide {
		wide[i] = uint32(binary.LittleEndian.Uint16(src[i*2:]))
	}

	h, err := buffers.Create(label, common.SliceToBytes(wide), IndexUsage)
	if err != nil {
		return model.IndexMapper{}, err
	}
	return model.IndexMapper{
		Buffer: h,
		Offset: 0,
		Length: uint64(count) * 4,
		Count:  count,
	}, nil
}
