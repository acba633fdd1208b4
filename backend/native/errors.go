// Package native provides a Pure Go GPU device backend using gogpu/wgpu.
//
// The backend does not create its own GPU device: the host application
// (typically a gogpu.App) owns the device and shares it, either directly
// via NewFromHAL or through the provider pattern via NewFromProvider.
package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoDevice is returned when the backend is used before a GPU
	// device has been attached.
	ErrNoDevice = errors.New("native: no GPU device attached")

	// ErrBadProvider is returned when a device provider does not expose
	// usable hal types.
	ErrBadProvider = errors.New("native: provider does not expose hal device and queue")

	// ErrInvalidDimensions is returned when an image extent is zero.
	ErrInvalidDimensions = errors.New("native: invalid image dimensions")
)
