package backend

import (
	"errors"

	"github.com/gogpu/rendergraph"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the host-memory backend.
	BackendSoftware = "software"
	// BackendNative is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendNative = "native"
	// BackendRust is the name of the Rust GPU backend (go-webgpu/webgpu FFI).
	BackendRust = "rust"
)

// GraphBackend creates devices that back compiled render graph plans.
// It abstracts where the allocations live, allowing the same graph to run
// against host memory, the pure Go GPU stack, or an FFI GPU stack.
//
// Backends must be registered via Register() and are selected via Get()
// or Default().
type GraphBackend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Init initializes the backend. It must be called before NewDevice.
	Init() error

	// Close releases all backend resources. Devices created by the
	// backend must not be used after Close.
	Close()

	// NewDevice creates a device for executing compiled plans.
	NewDevice() (rendergraph.Device, error)
}
