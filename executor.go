package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// OutputResource describes one graph output after a run: the backing
// allocation plus the resolved storage parameters, so callers can present
// or read the result without consulting the plan.
type OutputResource struct {
	Name   ResourceName
	Kind   ResourceKind
	Handle Handle

	// Width, Height, and Format are set for image outputs.
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat

	// Size is set for buffer outputs.
	Size uint64
}

// ExecutionResources holds the outputs of one Executor.Run. The handles it
// carries stay valid until the executor runs a differently shaped plan or
// is released.
type ExecutionResources struct {
	outputs []OutputResource
}

// Outputs returns every graph output in declaration order.
func (r *ExecutionResources) Outputs() []OutputResource {
	return r.outputs
}

// Output returns the named graph output.
func (r *ExecutionResources) Output(name ResourceName) (OutputResource, bool) {
	for _, out := range r.outputs {
		if out.Name == name {
			return out, true
		}
	}
	return OutputResource{}, false
}

// Executor runs compiled plans against a device.
//
// Slots are materialized lazily, the first time a pass asks for a handle,
// and retained across runs: re-running the same plan reuses every
// allocation, and only a plan with a different fingerprint or reference
// size forces the slots to be rebuilt.
//
// Executor is single-threaded; passes execute sequentially in plan order.
// It is not safe for concurrent use.
type Executor struct {
	device Device

	fingerprint uint64
	ctx         ExecutionContext
	handles     []Handle
}

// NewExecutor creates an executor that allocates through device.
func NewExecutor(device Device) *Executor {
	return &Executor{device: device}
}

// Run executes every pass of plan in compiled order and returns the graph
// outputs. The store is handed to each pass's Execute unchanged.
//
// A pass error aborts the run; already materialized slots stay allocated so
// a retry does not repay the allocations.
func (e *Executor) Run(plan *CompiledPlan, store *Store) (*ExecutionResources, error) {
	if e.device == nil {
		return nil, ErrNilDevice
	}
	if plan == nil {
		return nil, ErrNilPlan
	}
	if store == nil {
		store = NewStore()
	}
	e.bind(plan)

	for i := range plan.passes {
		pass := &plan.passes[i]
		rec := newPassRecorder(e, plan, pass)
		if err := pass.impl.Execute(store, rec); err != nil {
			return nil, fmt.Errorf("rendergraph: pass %q: %w", pass.name, err)
		}
	}

	res := &ExecutionResources{}
	for _, out := range plan.outputs {
		o := OutputResource{Name: out.name, Kind: plan.infos[out.id].kind}
		if out.slot >= 0 {
			h, err := e.materialize(plan, out.slot)
			if err != nil {
				return nil, err
			}
			o.Handle = h
			slot := plan.slots[out.slot]
			o.Width = slot.width
			o.Height = slot.height
			o.Format = slot.format
			o.Size = slot.size
		}
		res.outputs = append(res.outputs, o)
	}
	return res, nil
}

// Release frees every retained allocation. The executor can be reused
// afterwards.
func (e *Executor) Release() {
	for _, h := range e.handles {
		if h != InvalidHandle {
			e.device.Free(h)
		}
	}
	e.handles = nil
	e.fingerprint = 0
	e.ctx = ExecutionContext{}
}

// bind points the executor at plan, dropping retained slots when the plan's
// shape or reference size differs from the previous run.
func (e *Executor) bind(plan *CompiledPlan) {
	if e.handles != nil && e.fingerprint == plan.fingerprint && e.ctx == plan.ctx {
		return
	}
	if e.handles != nil {
		Logger().Debug("rendergraph: releasing retained slots",
			"fingerprint", e.fingerprint, "slots", len(e.handles))
		e.Release()
	}
	e.fingerprint = plan.fingerprint
	e.ctx = plan.ctx
	e.handles = make([]Handle, plan.SlotCount())
}

// materialize returns the allocation backing a slot, creating it on first
// use.
func (e *Executor) materialize(plan *CompiledPlan, slot int32) (Handle, error) {
	if h := e.handles[slot]; h != InvalidHandle {
		return h, nil
	}
	info := plan.slots[slot]
	label := fmt.Sprintf("%s/slot%d", plan.graphName, slot)

	var h Handle
	var err error
	switch info.kind {
	case KindImage:
		h, err = e.device.AllocateImage(ImageAllocation{
			Label:  label,
			Width:  info.width,
			Height: info.height,
			Format: info.format,
			Usage:  info.iusage,
		})
	case KindBuffer:
		h, err = e.device.AllocateBuffer(BufferAllocation{
			Label: label,
			Size:  info.size,
			Usage: info.busage,
		})
	}
	if err != nil {
		return InvalidHandle, fmt.Errorf("rendergraph: slot %d: %w", slot, err)
	}
	e.handles[slot] = h
	return h, nil
}

// PassRecorder is the execution-time view a pass gets of its resources.
// It resolves only the names the pass declared during Setup; the rest of
// the graph is not reachable through it.
type PassRecorder struct {
	exec *Executor
	plan *CompiledPlan
	pass *plannedPass

	names map[ResourceName]ResourceID
}

func newPassRecorder(e *Executor, plan *CompiledPlan, pass *plannedPass) *PassRecorder {
	names := make(map[ResourceName]ResourceID)
	claim := func(id ResourceID) {
		names[plan.infos[id].name] = id
	}
	for _, id := range pass.creates {
		claim(id)
	}
	for _, r := range pass.reads {
		claim(r.id)
	}
	for _, w := range pass.writes {
		claim(w.id)
	}
	for _, m := range pass.moves {
		claim(m.dst)
	}
	return &PassRecorder{exec: e, plan: plan, pass: pass, names: names}
}

// PassName returns the executing pass's name.
func (r *PassRecorder) PassName() string {
	return r.pass.name
}

// Kind returns the executing pass's pipeline kind.
func (r *PassRecorder) Kind() PipelineKind {
	return r.pass.kind
}

// Device returns the device the plan is running against, for issuing the
// pass's actual GPU work.
func (r *PassRecorder) Device() Device {
	return r.exec.device
}

// Handle resolves a declared resource name to its backing allocation,
// materializing the slot on first use. Virtual resources resolve to
// InvalidHandle. Names the pass did not declare fail with
// ErrUnknownResource.
func (r *PassRecorder) Handle(name ResourceName) (Handle, error) {
	id, ok := r.names[name]
	if !ok {
		return InvalidHandle, &CompileError{
			Kind:     ErrUnknownResource,
			Pass:     r.pass.name,
			Resource: name,
		}
	}
	slot := r.plan.slotFor(id)
	if slot < 0 {
		return InvalidHandle, nil
	}
	return r.exec.materialize(r.plan, slot)
}
