package rendergraph

import "fmt"

// PipelineKind discriminates graphics passes from compute passes.
// The compiler and executor schedule purely by resource edges; the kind is
// carried through to the recorder so backends can begin the right kind of
// encoder.
type PipelineKind uint8

const (
	// PipelineGraphics is a rasterization pass.
	PipelineGraphics PipelineKind = iota + 1

	// PipelineCompute is a compute dispatch pass.
	PipelineCompute
)

// String returns the string representation of PipelineKind.
func (k PipelineKind) String() string {
	switch k {
	case PipelineGraphics:
		return "Graphics"
	case PipelineCompute:
		return "Compute"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Pass is implemented by units of GPU work scheduled by the graph.
//
// Setup is called once per compilation and must declare every resource the
// pass touches through the PassBuilder. The declarations are the contract
// the compiler schedules by; a pass that touches resources it did not
// declare breaks ordering and aliasing soundness.
//
// Execute is called once per graph execution, in compiled order, with the
// resolved resource handles reachable through the recorder.
type Pass interface {
	Setup(store *Store, b *PassBuilder)
	Execute(store *Store, rec *PassRecorder) error
}

// noBinding marks a read without a binding slot.
const noBinding int16 = -1

// createDecl records a create declaration.
type createDecl struct {
	name   ResourceName
	kind   ResourceKind
	image  ImageCreateInfo
	buffer BufferCreateInfo
}

// readDecl records a read declaration. binding is noBinding when the read
// has no binding slot.
type readDecl struct {
	name    ResourceName
	binding int16
}

// writeDecl records a write declaration.
type writeDecl struct {
	name    ResourceName
	binding uint8
}

// moveDecl records a move declaration.
type moveDecl struct {
	from ResourceName
	to   ResourceName
}

// passDecl is the full recorded declaration of one pass.
type passDecl struct {
	name    string
	kind    PipelineKind
	impl    Pass
	enabled bool

	creates []createDecl
	reads   []readDecl
	writes  []writeDecl
	moves   []moveDecl

	// errs collects authoring mistakes found while recording; they are
	// surfaced by Compile.
	errs []*CompileError
}

// GraphBuilder accumulates passes and declared outputs for one graph.
//
// A GraphBuilder is mutable only until it is compiled; compilation never
// modifies it, so the same builder may be compiled repeatedly (and will hit
// the plan cache when its shape is unchanged).
//
// GraphBuilder is not safe for concurrent use.
type GraphBuilder struct {
	name    string
	passes  []*passDecl
	outputs []ResourceName
}

// NewGraphBuilder creates a builder for a graph named name.
// The name is used for logging and diagnostics only.
func NewGraphBuilder(name string) *GraphBuilder {
	return &GraphBuilder{name: name}
}

// Name returns the graph name.
func (g *GraphBuilder) Name() string {
	return g.name
}

// AddGraphicsPass adds a rasterization pass to the graph.
// Passes execute in dependency order; declaration order only breaks ties
// between mutually independent passes.
func (g *GraphBuilder) AddGraphicsPass(name string, p Pass) {
	g.passes = append(g.passes, &passDecl{name: name, kind: PipelineGraphics, impl: p})
}

// AddComputePass adds a compute pass to the graph.
func (g *GraphBuilder) AddComputePass(name string, p Pass) {
	g.passes = append(g.passes, &passDecl{name: name, kind: PipelineCompute, impl: p})
}

// AddOutput declares a resource name as a graph output.
// Outputs anchor culling: only passes that contribute (directly or
// transitively) to an output survive compilation. The resolved backing
// resources for outputs are returned from Executor.Run.
func (g *GraphBuilder) AddOutput(name ResourceName) {
	g.outputs = append(g.outputs, name)
}

// PassBuilder is the per-pass declaration surface handed to Pass.Setup.
// All methods record declarations; mistakes that are detectable locally
// (writes to unowned names, reads of the pass's own creations) are recorded
// too and reported by Compile with pass and resource context.
type PassBuilder struct {
	decl *passDecl

	// owned tracks names this pass created or moved-into, the only names
	// it may write.
	owned map[ResourceName]bool
}

func newPassBuilder(decl *passDecl) *PassBuilder {
	return &PassBuilder{decl: decl, owned: make(map[ResourceName]bool)}
}

// Enable marks the pass as participating in the graph. A pass whose Setup
// never calls Enable is dropped before dependency resolution, which lets
// pass authors skip work conditionally without restructuring the graph.
func (b *PassBuilder) Enable() {
	b.decl.enabled = true
}

// CreateImage declares a new image resource brought into scope by this pass.
// The pass may write the image; other passes may read it until it is moved
// or retired.
func (b *PassBuilder) CreateImage(name ResourceName, info ImageCreateInfo) {
	b.decl.creates = append(b.decl.creates, createDecl{name: name, kind: KindImage, image: info})
	b.owned[name] = true
}

// CreateBuffer declares a new buffer resource brought into scope by this pass.
func (b *PassBuilder) CreateBuffer(name ResourceName, info BufferCreateInfo) {
	b.decl.creates = append(b.decl.creates, createDecl{name: name, kind: KindBuffer, buffer: info})
	b.owned[name] = true
}

// CreateVirtual declares a dependency-only resource. Virtual resources have
// no backing storage; they order passes that communicate through state the
// graph does not track.
func (b *PassBuilder) CreateVirtual(name ResourceName) {
	b.decl.creates = append(b.decl.creates, createDecl{name: name, kind: KindVirtual})
	b.owned[name] = true
}

// Read declares a dependency on a resource without a binding slot.
//
// Reading a resource the pass itself created or moved-into is rejected:
// a pass reaches its own outputs through local state, not the graph.
func (b *PassBuilder) Read(name ResourceName) {
	b.read(name, noBinding)
}

// ReadAt declares a dependency on a resource bound at the given slot.
func (b *PassBuilder) ReadAt(name ResourceName, binding uint8) {
	b.read(name, int16(binding))
}

func (b *PassBuilder) read(name ResourceName, binding int16) {
	if b.owned[name] {
		b.decl.errs = append(b.decl.errs, &CompileError{
			Kind:     ErrUnknownResource,
			Pass:     b.decl.name,
			Resource: name,
		})
		return
	}
	b.decl.reads = append(b.decl.reads, readDecl{name: name, binding: binding})
}

// Write declares write access to a resource at the given binding slot.
// The pass must have created or moved-into the name earlier in this Setup;
// writing an unrelated name is rejected.
func (b *PassBuilder) Write(name ResourceName, binding uint8) {
	if !b.owned[name] {
		b.decl.errs = append(b.decl.errs, &CompileError{
			Kind:     ErrInvalidWrite,
			Pass:     b.decl.name,
			Resource: name,
		})
		return
	}
	b.decl.writes = append(b.decl.writes, writeDecl{name: name, binding: binding})
}

// Move closes the version behind from and defines a fresh, writable version
// under to. The destination may reuse the source name. A version can be
// moved at most once.
func (b *PassBuilder) Move(from, to ResourceName) {
	b.decl.moves = append(b.decl.moves, moveDecl{from: from, to: to})
	b.owned[to] = true
}
