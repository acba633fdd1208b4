// Package backend provides a pluggable device backend abstraction for the
// render graph.
//
// Backends create rendergraph.Device implementations. They are registered
// from init() functions and selected at runtime, so importing a backend
// package is enough to make it available:
//
//	import _ "github.com/gogpu/rendergraph/backend"           // software
//	import _ "github.com/gogpu/rendergraph/backend/native"    // gogpu/wgpu
//
// Use Default() to get the best available backend, or Get() to request a
// specific one by name:
//
//	b := backend.Default()
//	if err := b.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	device, err := b.NewDevice()
//
// The software backend is registered by this package itself and serves as
// the always-available fallback: allocations are plain host memory, which
// is enough for tests and for running graphs whose passes do their work on
// the CPU.
package backend
