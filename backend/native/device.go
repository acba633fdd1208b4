package native

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	types "github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph"
)

// halDevice implements rendergraph.Device on top of gogpu/wgpu/hal.
//
// Thread safety: halDevice is safe for concurrent use. Resource maps are
// protected by a mutex; HAL calls happen outside the lock.
type halDevice struct {
	device hal.Device
	queue  hal.Queue

	nextID atomic.Uint64

	mu       sync.RWMutex
	textures map[rendergraph.Handle]hal.Texture
	buffers  map[rendergraph.Handle]hal.Buffer
}

func newHALDevice(device hal.Device, queue hal.Queue) *halDevice {
	d := &halDevice{
		device:   device,
		queue:    queue,
		textures: make(map[rendergraph.Handle]hal.Texture),
		buffers:  make(map[rendergraph.Handle]hal.Buffer),
	}
	// 0 is rendergraph.InvalidHandle.
	d.nextID.Store(1)
	return d
}

func (d *halDevice) newHandle() rendergraph.Handle {
	return rendergraph.Handle(d.nextID.Add(1) - 1)
}

// AllocateImage creates a GPU texture for an image slot.
func (d *halDevice) AllocateImage(info rendergraph.ImageAllocation) (rendergraph.Handle, error) {
	if info.Width == 0 || info.Height == 0 {
		return rendergraph.InvalidHandle, ErrInvalidDimensions
	}

	desc := &hal.TextureDescriptor{
		Label: info.Label,
		Size: hal.Extent3D{
			Width:              info.Width,
			Height:             info.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        convertTextureFormat(info.Format),
		Usage:         convertImageUsage(info.Usage),
	}

	texture, err := d.device.CreateTexture(desc)
	if err != nil {
		return rendergraph.InvalidHandle, fmt.Errorf("native: failed to create texture: %w", err)
	}

	h := d.newHandle()
	d.mu.Lock()
	d.textures[h] = texture
	d.mu.Unlock()
	return h, nil
}

// AllocateBuffer creates a GPU buffer for a buffer slot.
func (d *halDevice) AllocateBuffer(info rendergraph.BufferAllocation) (rendergraph.Handle, error) {
	desc := &hal.BufferDescriptor{
		Label: info.Label,
		Size:  info.Size,
		Usage: convertBufferUsage(info.Usage),
	}

	buffer, err := d.device.CreateBuffer(desc)
	if err != nil {
		return rendergraph.InvalidHandle, fmt.Errorf("native: failed to create buffer: %w", err)
	}

	h := d.newHandle()
	d.mu.Lock()
	d.buffers[h] = buffer
	d.mu.Unlock()
	return h, nil
}

// Free releases the allocation behind a handle.
func (d *halDevice) Free(h rendergraph.Handle) {
	if h == rendergraph.InvalidHandle {
		return
	}

	d.mu.Lock()
	texture, isTexture := d.textures[h]
	if isTexture {
		delete(d.textures, h)
	}
	buffer, isBuffer := d.buffers[h]
	if isBuffer {
		delete(d.buffers, h)
	}
	d.mu.Unlock()

	if isTexture {
		d.device.DestroyTexture(texture)
	}
	if isBuffer {
		d.device.DestroyBuffer(buffer)
	}
}

// Texture returns the HAL texture behind a handle, for passes recording
// their own commands.
func (d *halDevice) Texture(h rendergraph.Handle) (hal.Texture, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.textures[h]
	return t, ok
}

// Buffer returns the HAL buffer behind a handle.
func (d *halDevice) Buffer(h rendergraph.Handle) (hal.Buffer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.buffers[h]
	return b, ok
}

// === Type Conversion Helpers ===

// convertImageUsage converts rendergraph.ImageUsage to types.TextureUsage.
func convertImageUsage(usage rendergraph.ImageUsage) types.TextureUsage {
	var result types.TextureUsage

	if usage&rendergraph.ImageUsageSampled != 0 {
		result |= types.TextureUsageTextureBinding
	}
	if usage&rendergraph.ImageUsageStorage != 0 {
		result |= types.TextureUsageStorageBinding
	}
	if usage&rendergraph.ImageUsageColorAttachment != 0 {
		result |= types.TextureUsageRenderAttachment
	}
	if usage&rendergraph.ImageUsageDepthStencil != 0 {
		result |= types.TextureUsageRenderAttachment
	}
	if usage&rendergraph.ImageUsageCopySrc != 0 {
		result |= types.TextureUsageCopySrc
	}
	if usage&rendergraph.ImageUsageCopyDst != 0 {
		result |= types.TextureUsageCopyDst
	}
	if result == 0 {
		result = types.TextureUsageCopySrc | types.TextureUsageCopyDst
	}

	return result
}

// convertBufferUsage converts rendergraph.BufferUsage to types.BufferUsage.
func convertBufferUsage(usage rendergraph.BufferUsage) types.BufferUsage {
	var result types.BufferUsage

	if usage&rendergraph.BufferUsageStorage != 0 {
		result |= types.BufferUsageStorage
	}
	if usage&rendergraph.BufferUsageUniform != 0 {
		result |= types.BufferUsageUniform
	}
	if usage&rendergraph.BufferUsageCopySrc != 0 {
		result |= types.BufferUsageCopySrc
	}
	if usage&rendergraph.BufferUsageCopyDst != 0 {
		result |= types.BufferUsageCopyDst
	}
	if result == 0 {
		result = types.BufferUsageCopySrc | types.BufferUsageCopyDst
	}

	return result
}

// convertTextureFormat converts gputypes.TextureFormat to types.TextureFormat.
func convertTextureFormat(format gputypes.TextureFormat) types.TextureFormat {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatBGRA8Unorm:
		return types.TextureFormatBGRA8Unorm
	case gputypes.TextureFormatR8Unorm:
		return types.TextureFormatR8Unorm
	default:
		return types.TextureFormatRGBA8Unorm
	}
}
