//go:build rust

package rust

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/backend"
)

// init registers the rust backend on package import.
func init() {
	backend.Register(backend.BackendRust, func() backend.GraphBackend {
		return &RustBackend{}
	})
}

// RustBackend is a GPU device backend using go-webgpu/webgpu.
//
// The backend manages the GPU bootstrap: instance, adapter, device, and
// queue via wgpu-native FFI bindings.
type RustBackend struct {
	mu sync.RWMutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	gpuInfo *GPUInfo

	initialized bool
}

// GPUInfo contains information about the selected GPU.
type GPUInfo struct {
	Vendor       string
	Architecture string
	Device       string
	Description  string
	BackendType  string
	AdapterType  string
	VendorID     uint32
	DeviceID     uint32
}

// NewRustBackend creates a new rust backend. It must be initialized with
// Init() before use.
func NewRustBackend() *RustBackend {
	return &RustBackend{}
}

// Name returns the backend identifier.
func (b *RustBackend) Name() string {
	return backend.BackendRust
}

// Init initializes the backend by creating GPU resources: the wgpu-native
// library is loaded, an instance created, an adapter requested, and the
// device and queue obtained from it.
func (b *RustBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	if err := wgpu.Init(); err != nil {
		return fmt.Errorf("%w: %w", ErrLibraryNotFound, err)
	}

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("rust: instance creation failed: %w", err)
	}
	b.instance = instance

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		b.releaseLocked()
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	b.adapter = adapter
	b.gpuInfo = b.getGPUInfo()
	b.logGPUInfo()

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		b.releaseLocked()
		return fmt.Errorf("rust: device creation failed: %w", err)
	}
	b.device = device

	queue := device.GetQueue()
	if queue == nil {
		b.releaseLocked()
		return fmt.Errorf("rust: queue retrieval failed")
	}
	b.queue = queue

	b.initialized = true
	rendergraph.Logger().Debug("rust: backend initialized")
	return nil
}

// Close releases all backend resources. The backend should not be used
// after Close is called.
func (b *RustBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	b.releaseLocked()
	b.gpuInfo = nil
	b.initialized = false
}

// releaseLocked frees GPU resources in reverse order of creation.
// Caller holds the lock.
func (b *RustBackend) releaseLocked() {
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// NewDevice creates a rendergraph device.
//
// Plan allocation through the FFI device is not implemented yet; see the
// native backend for a working GPU device.
func (b *RustBackend) NewDevice() (rendergraph.Device, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.initialized {
		return nil, ErrNotInitialized
	}
	return nil, ErrNotImplemented
}

// IsInitialized returns true if the backend has been initialized.
func (b *RustBackend) IsInitialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// GPUInfoData returns information about the selected GPU, or nil before
// initialization.
func (b *RustBackend) GPUInfoData() *GPUInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gpuInfo
}

// Device returns the GPU device, or nil before initialization.
func (b *RustBackend) Device() *wgpu.Device {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.device
}

// Queue returns the GPU queue, or nil before initialization.
func (b *RustBackend) Queue() *wgpu.Queue {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queue
}

// getGPUInfo retrieves information about the adapter.
func (b *RustBackend) getGPUInfo() *GPUInfo {
	if b.adapter == nil {
		return nil
	}
	info, err := b.adapter.GetInfo()
	if err != nil {
		return nil
	}
	return &GPUInfo{
		Vendor:       info.Vendor,
		Architecture: info.Architecture,
		Device:       info.Device,
		Description:  info.Description,
		BackendType:  backendTypeToString(info.BackendType),
		AdapterType:  adapterTypeToString(info.AdapterType),
		VendorID:     info.VendorID,
		DeviceID:     info.DeviceID,
	}
}

// logGPUInfo logs information about the selected GPU.
func (b *RustBackend) logGPUInfo() {
	if b.gpuInfo == nil {
		return
	}
	rendergraph.Logger().Debug("rust: GPU selected",
		"device", b.gpuInfo.Device,
		"description", b.gpuInfo.Description,
		"backend", b.gpuInfo.BackendType,
		"type", b.gpuInfo.AdapterType,
		"vendor", b.gpuInfo.Vendor)
}

// backendTypeToString converts wgpu backend type to string.
func backendTypeToString(bt wgpu.BackendType) string {
	switch bt {
	case wgpu.BackendTypeNull:
		return "Null"
	case wgpu.BackendTypeWebGPU:
		return "WebGPU"
	case wgpu.BackendTypeD3D11:
		return "D3D11"
	case wgpu.BackendTypeD3D12:
		return "D3D12"
	case wgpu.BackendTypeMetal:
		return "Metal"
	case wgpu.BackendTypeVulkan:
		return "Vulkan"
	case wgpu.BackendTypeOpenGL:
		return "OpenGL"
	case wgpu.BackendTypeOpenGLES:
		return "OpenGLES"
	default:
		return "Unknown"
	}
}

// adapterTypeToString converts wgpu adapter type to string.
func adapterTypeToString(at wgpu.AdapterType) string {
	switch at {
	case wgpu.AdapterTypeDiscreteGPU:
		return "DiscreteGPU"
	case wgpu.AdapterTypeIntegratedGPU:
		return "IntegratedGPU"
	case wgpu.AdapterTypeCPU:
		return "CPU"
	default:
		return "Unknown"
	}
}
