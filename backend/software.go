package backend

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/rendergraph"
)

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() GraphBackend {
		return &SoftwareBackend{}
	})
}

// SoftwareBackend is the host-memory backend. Allocations are plain byte
// slices, so it needs no GPU and is always available. Passes running
// against it do their work on the CPU through SoftwareDevice accessors.
type SoftwareBackend struct {
	initialized bool
}

// NewSoftwareBackend creates a new software backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend.
func (b *SoftwareBackend) Init() error {
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *SoftwareBackend) Close() {
	b.initialized = false
}

// NewDevice creates a host-memory device.
func (b *SoftwareBackend) NewDevice() (rendergraph.Device, error) {
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	return NewSoftwareDevice(), nil
}

// SoftwareImage is a host-memory image allocation. Pixels holds the image
// rows tightly packed.
type SoftwareImage struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
	Pixels []byte
}

// SoftwareBuffer is a host-memory buffer allocation.
type SoftwareBuffer struct {
	Label string
	Data  []byte
}

// SoftwareDevice implements rendergraph.Device with host memory.
//
// Beyond the Device interface it exposes the backing storage of live
// allocations, which is what CPU passes and tests read and write.
// SoftwareDevice is safe for concurrent use.
type SoftwareDevice struct {
	mu      sync.RWMutex
	nextID  rendergraph.Handle
	images  map[rendergraph.Handle]*SoftwareImage
	buffers map[rendergraph.Handle]*SoftwareBuffer
	freed   int
}

// NewSoftwareDevice creates an empty host-memory device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{
		nextID:  1,
		images:  make(map[rendergraph.Handle]*SoftwareImage),
		buffers: make(map[rendergraph.Handle]*SoftwareBuffer),
	}
}

// AllocateImage creates a host-memory image.
func (d *SoftwareDevice) AllocateImage(info rendergraph.ImageAllocation) (rendergraph.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.nextID
	d.nextID++
	d.images[h] = &SoftwareImage{
		Label:  info.Label,
		Width:  info.Width,
		Height: info.Height,
		Format: info.Format,
		Pixels: make([]byte, uint64(info.Width)*uint64(info.Height)*bytesPerPixel(info.Format)),
	}
	return h, nil
}

// AllocateBuffer creates a host-memory buffer.
func (d *SoftwareDevice) AllocateBuffer(info rendergraph.BufferAllocation) (rendergraph.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.nextID
	d.nextID++
	d.buffers[h] = &SoftwareBuffer{
		Label: info.Label,
		Data:  make([]byte, info.Size),
	}
	return h, nil
}

// Free releases an allocation. Freeing an unknown or invalid handle is a
// no-op.
func (d *SoftwareDevice) Free(h rendergraph.Handle) {
	if h == rendergraph.InvalidHandle {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.images[h]; ok {
		delete(d.images, h)
		d.freed++
		return
	}
	if _, ok := d.buffers[h]; ok {
		delete(d.buffers, h)
		d.freed++
	}
}

// Image returns the live image behind a handle.
func (d *SoftwareDevice) Image(h rendergraph.Handle) (*SoftwareImage, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	img, ok := d.images[h]
	return img, ok
}

// Buffer returns the live buffer behind a handle.
func (d *SoftwareDevice) Buffer(h rendergraph.Handle) (*SoftwareBuffer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	buf, ok := d.buffers[h]
	return buf, ok
}

// LiveCount returns the number of live allocations.
func (d *SoftwareDevice) LiveCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.images) + len(d.buffers)
}

// FreedCount returns the number of allocations released so far.
func (d *SoftwareDevice) FreedCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.freed
}

// bytesPerPixel returns the packed pixel stride of a format. Formats the
// software backend does not model precisely fall back to 4 bytes.
func bytesPerPixel(format gputypes.TextureFormat) uint64 {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}
