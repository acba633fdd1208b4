package rendergraph

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Handle identifies one device allocation. Handles are opaque to the graph;
// only the Device that issued a handle can interpret it.
type Handle uint64

// InvalidHandle is the zero Handle. Devices never issue it.
const InvalidHandle Handle = 0

// DeviceHandle provides GPU device access from the host application.
//
// The host application (e.g., gogpu.App) implements the provider and passes
// it to the native backend, which drives allocations through the shared
// device instead of creating its own.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, giving the graph a
// local name for the interface while staying compatible with the gpucontext
// ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// ImageAllocation describes one image slot a plan asks a Device to back.
// Sizes are already resolved; a Device never sees context-relative extents.
type ImageAllocation struct {
	// Label is an optional debug label for the allocation.
	Label string

	// Width is the image width in pixels.
	Width uint32

	// Height is the image height in pixels.
	Height uint32

	// Format is the image pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the image will be used.
	Usage ImageUsage
}

// BufferAllocation describes one buffer slot a plan asks a Device to back.
type BufferAllocation struct {
	// Label is an optional debug label for the allocation.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage specifies how the buffer will be used.
	Usage BufferUsage
}

// Device backs compiled plans with physical resources. The executor drives
// it: slots are allocated lazily the first time a pass touches them and
// freed when the executor releases or replaces its plan.
//
// Implementations are selected through the backend registry; see the
// backend package.
type Device interface {
	// AllocateImage creates an image and returns its handle.
	AllocateImage(info ImageAllocation) (Handle, error)

	// AllocateBuffer creates a buffer and returns its handle.
	AllocateBuffer(info BufferAllocation) (Handle, error)

	// Free releases an allocation. Freeing InvalidHandle is a no-op.
	Free(h Handle)
}
