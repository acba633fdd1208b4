// Package rust provides a GPU device backend using go-webgpu/webgpu, the
// wgpu-native FFI bindings.
//
// The backend is only compiled when the "rust" build tag is set:
//
//	go build -tags rust
//
// Without the tag a stub registers so backend.Get(backend.BackendRust)
// returns nil gracefully and the registry falls through to the native or
// software backend.
//
// The backend currently bootstraps the GPU (instance, adapter, device,
// queue) and exposes them for pass Execute callbacks; plan allocations
// through the FFI device are not implemented yet.
package rust
