package native

import (
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/backend"
)

// init registers the native backend on package import. The backend stays
// unavailable until a host device is attached.
func init() {
	backend.Register(backend.BackendNative, func() backend.GraphBackend {
		return &Backend{}
	})
}

// Backend is a GPU device backend driving allocations through gogpu/wgpu's
// HAL layer. It implements backend.GraphBackend.
type Backend struct {
	mu          sync.RWMutex
	device      hal.Device
	queue       hal.Queue
	initialized bool
}

// NewFromHAL creates a backend around an existing HAL device and queue.
func NewFromHAL(device hal.Device, queue hal.Queue) *Backend {
	return &Backend{device: device, queue: queue}
}

// NewFromProvider creates a backend from a host device provider.
//
// The provider must additionally implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue; gogpu.App does.
func NewFromProvider(provider rendergraph.DeviceHandle) (*Backend, error) {
	b := &Backend{}
	if err := b.SetDeviceProvider(provider); err != nil {
		return nil, err
	}
	return b, nil
}

// SetDeviceProvider attaches a shared GPU device from the host.
// The provider must expose HalDevice() any and HalQueue() any methods that
// return wgpu/hal types.
func (b *Backend) SetDeviceProvider(provider any) error {
	hp, ok := provider.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return ErrBadProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return ErrBadProvider
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return ErrBadProvider
	}

	b.mu.Lock()
	b.device = device
	b.queue = queue
	b.mu.Unlock()
	return nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendNative
}

// Init initializes the backend. A host device must have been attached.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil || b.queue == nil {
		return ErrNoDevice
	}
	b.initialized = true
	return nil
}

// Close releases the backend. The shared device belongs to the host and is
// not destroyed here.
func (b *Backend) Close() {
	b.mu.Lock()
	b.initialized = false
	b.mu.Unlock()
}

// NewDevice creates a rendergraph device allocating through the HAL layer.
func (b *Backend) NewDevice() (rendergraph.Device, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	return newHALDevice(b.device, b.queue), nil
}

// HalDevice returns the underlying HAL device, for pass Execute callbacks
// that record their own GPU commands.
func (b *Backend) HalDevice() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.device
}

// HalQueue returns the underlying HAL queue.
func (b *Backend) HalQueue() any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queue
}
