package rendergraph

// ExecutionContext carries caller-supplied parameters that affect resource
// sizing during execution.
//
// The reference size is the only tunable knob: images declared with
// ContextRelativeSize resolve their dimensions against it. Graphs whose
// images are all absolutely sized compile to the same plan regardless of
// the context.
type ExecutionContext struct {
	// ReferenceWidth is the reference width in pixels, typically the width
	// of the presentation surface.
	ReferenceWidth uint32

	// ReferenceHeight is the reference height in pixels.
	ReferenceHeight uint32
}
