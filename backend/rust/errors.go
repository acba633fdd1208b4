//go:build rust

package rust

import "errors"

// Package errors for the rust backend.
var (
	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("rust: backend not initialized")

	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("rust: no GPU adapter available")

	// ErrLibraryNotFound is returned when the wgpu-native library is not found.
	ErrLibraryNotFound = errors.New("rust: wgpu-native library not found")

	// ErrNotImplemented is returned for operations not yet implemented.
	ErrNotImplemented = errors.New("rust: operation not implemented")
)
