package rendergraph

import "github.com/gogpu/gputypes"

// noSlot marks a resource with no physical backing (virtual resources and
// resources whose versions collapse into another origin's slot).
const noSlot int32 = -1

// plannedPass is one pass in compiled execution order.
type plannedPass struct {
	name string
	kind PipelineKind
	impl Pass

	creates []ResourceID
	reads   []resolvedRead
	writes  []resolvedWrite
	moves   []resolvedMove
}

// lifetime is the inclusive execution-order interval during which a physical
// slot must hold its contents.
type lifetime struct {
	def     int32
	lastUse int32
}

// slotInfo describes one physical slot of a compiled plan. Image sizes are
// resolved against the execution context at compile time, so a slot always
// has concrete dimensions.
type slotInfo struct {
	kind   ResourceKind
	format gputypes.TextureFormat
	width  uint32
	height uint32
	size   uint64
	iusage ImageUsage
	busage BufferUsage
}

// planOutput is one declared graph output after compilation.
type planOutput struct {
	name ResourceName
	id   ResourceID
	slot int32
}

// CompiledPlan is an immutable, executable schedule produced by a Compiler.
//
// Plans are shared: the compiler's cache hands the same plan to every
// compilation of an identically shaped graph, and an Executor never mutates
// one. All accessors are safe for concurrent use.
type CompiledPlan struct {
	graphName   string
	fingerprint uint64
	ctx         ExecutionContext

	passes []plannedPass
	infos  []resourceInfo

	// slotOf maps each origin resource to its physical slot, noSlot for
	// virtual resources. Non-origin versions are collapsed through
	// origin() before lookup.
	slotOf    []int32
	slots     []slotInfo
	lifetimes []lifetime

	outputs []planOutput
}

// Fingerprint returns the structural fingerprint the plan was cached under.
// Two builders with the same passes, declarations, and outputs produce the
// same fingerprint.
func (p *CompiledPlan) Fingerprint() uint64 {
	return p.fingerprint
}

// GraphName returns the name of the graph the plan was compiled from.
func (p *CompiledPlan) GraphName() string {
	return p.graphName
}

// PassCount returns the number of passes that survived culling.
func (p *CompiledPlan) PassCount() int {
	return len(p.passes)
}

// PassNames returns the surviving pass names in execution order.
func (p *CompiledPlan) PassNames() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.name
	}
	return names
}

// SlotCount returns the number of physical allocations the plan needs.
// It is at most the number of non-virtual resources and usually lower,
// since resources with disjoint lifetimes share slots.
func (p *CompiledPlan) SlotCount() int {
	return len(p.slots)
}

// OutputNames returns the declared output names in declaration order.
func (p *CompiledPlan) OutputNames() []ResourceName {
	names := make([]ResourceName, len(p.outputs))
	for i, out := range p.outputs {
		names[i] = out.name
	}
	return names
}

// ResourceLifetime reports when one materialized resource occupies its
// physical slot, in execution-order pass indices. External GPU layers use
// these boundaries to fence slot reuse before a new writer takes over.
type ResourceLifetime struct {
	// Name is the resource's name at creation.
	Name ResourceName

	// Slot is the physical slot index the resource occupies.
	Slot int

	// First and Last are the inclusive execution-order indices of the
	// first and last pass touching the resource (or any version moved
	// from it).
	First int
	Last  int
}

// Lifetimes returns the slot occupancy interval of every materialized
// resource. Resources sharing a slot never have overlapping intervals.
func (p *CompiledPlan) Lifetimes() []ResourceLifetime {
	var out []ResourceLifetime
	for id := range p.infos {
		rid := ResourceID(id)
		if origin(p.infos, rid) != rid {
			continue
		}
		slot := p.slotOf[rid]
		if slot < 0 || p.lifetimes[rid].def < 0 {
			continue
		}
		out = append(out, ResourceLifetime{
			Name:  p.infos[rid].name,
			Slot:  int(slot),
			First: int(p.lifetimes[rid].def),
			Last:  int(p.lifetimes[rid].lastUse),
		})
	}
	return out
}

// slotFor returns the physical slot backing a resource version, collapsing
// move chains to their origin.
func (p *CompiledPlan) slotFor(id ResourceID) int32 {
	return p.slotOf[origin(p.infos, id)]
}
