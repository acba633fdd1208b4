package rendergraph

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/gogpu/gputypes"
)

// compilePlan turns an assembled graph into an executable plan: surfaces
// authoring errors, rejects cycles, culls passes that cannot reach an
// output, orders the survivors, and assigns aliased physical slots.
func compilePlan(g *GraphBuilder, a *assembled, ctx ExecutionContext, fp uint64) (*CompiledPlan, error) {
	if len(a.errs) > 0 {
		return nil, a.errs[0]
	}
	if cycle := a.findCycle(); cycle != nil {
		return nil, &CompileError{Kind: ErrCyclicDependency, Cycle: cycle}
	}

	live := cull(a)
	order := schedule(a, live)

	plan := &CompiledPlan{
		graphName:   g.name,
		fingerprint: fp,
		ctx:         ctx,
		infos:       a.infos,
	}

	pos := make([]int32, len(a.passes))
	for i := range pos {
		pos[i] = -1
	}
	for i, pi := range order {
		pos[pi] = int32(i)
		plan.passes = append(plan.passes, plannedPass{
			name:    a.passes[pi].name,
			kind:    a.passes[pi].kind,
			impl:    a.passes[pi].impl,
			creates: a.creates[pi],
			reads:   a.reads[pi],
			writes:  a.writes[pi],
			moves:   a.moves[pi],
		})
	}

	plan.lifetimes = lifetimes(a, pos)

	isOutput := make(map[ResourceID]bool, len(a.outputs))
	for i, id := range a.outputs {
		isOutput[origin(a.infos, id)] = true
		plan.outputs = append(plan.outputs, planOutput{name: a.outputNames[i], id: id})
	}
	// Outputs must survive to the end of the plan and never share storage.
	for id := range isOutput {
		if plan.lifetimes[id].def >= 0 {
			plan.lifetimes[id].lastUse = int32(len(order)) - 1
		}
	}

	plan.slotOf, plan.slots = assignSlots(a, plan.lifetimes, isOutput, ctx)
	for i := range plan.outputs {
		plan.outputs[i].slot = plan.slotFor(plan.outputs[i].id)
	}
	return plan, nil
}

// cull marks the passes reachable backward from the graph outputs.
func cull(a *assembled) []bool {
	live := make([]bool, len(a.passes))
	var stack []PassID
	mark := func(p PassID) {
		if !live[p] {
			live[p] = true
			stack = append(stack, p)
		}
	}
	for _, id := range a.outputs {
		mark(a.infos[id].definedBy)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range a.deps[p] {
			mark(dep)
		}
	}
	return live
}

// schedule orders the live passes so every dependency precedes its
// dependent; ties between ready passes break toward the smaller declaration
// index, which keeps plans deterministic across compilations.
func schedule(a *assembled, live []bool) []PassID {
	remaining := make([]int, len(a.passes))
	for pi := range a.passes {
		if !live[pi] {
			remaining[pi] = -1
			continue
		}
		for _, dep := range a.deps[pi] {
			if live[dep] {
				remaining[pi]++
			}
		}
	}

	dependents := make([][]PassID, len(a.passes))
	for pi := range a.passes {
		if !live[pi] {
			continue
		}
		for _, dep := range a.deps[pi] {
			if live[dep] {
				dependents[dep] = append(dependents[dep], PassID(pi))
			}
		}
	}

	var order []PassID
	for {
		next := PassID(-1)
		for pi := range a.passes {
			if remaining[pi] == 0 {
				next = PassID(pi)
				break
			}
		}
		if next < 0 {
			return order
		}
		remaining[next] = -1
		order = append(order, next)
		for _, dep := range dependents[next] {
			remaining[dep]--
		}
	}
}

// lifetimes computes, per origin resource, the execution-order interval the
// backing storage must stay intact. Versions created by moves collapse into
// their origin: a move renames storage, it does not reallocate it.
func lifetimes(a *assembled, pos []int32) []lifetime {
	lt := make([]lifetime, len(a.infos))
	for i := range lt {
		lt[i] = lifetime{def: -1, lastUse: -1}
	}
	use := func(id ResourceID, at int32) {
		o := origin(a.infos, id)
		if lt[o].def < 0 || at < lt[o].def {
			lt[o].def = at
		}
		if at > lt[o].lastUse {
			lt[o].lastUse = at
		}
	}
	for pi := range a.passes {
		at := pos[pi]
		if at < 0 {
			continue
		}
		for _, id := range a.creates[pi] {
			use(id, at)
		}
		for _, r := range a.reads[pi] {
			use(r.id, at)
		}
		for _, w := range a.writes[pi] {
			use(w.id, at)
		}
		for _, m := range a.moves[pi] {
			use(m.dst, at)
		}
	}
	return lt
}

// storageKey is the compatibility class slots alias within. Two resources
// may share a physical slot only when their key is identical.
type storageKey struct {
	kind   ResourceKind
	format uint32
	width  uint32
	height uint32
	size   uint64
	iusage ImageUsage
	busage BufferUsage
}

// assignSlots greedily packs origin resources into physical slots: origins
// are visited in definition order and reuse the first compatible slot whose
// previous occupant's lifetime already ended. Virtual resources and graph
// outputs never share.
func assignSlots(a *assembled, lt []lifetime, isOutput map[ResourceID]bool, ctx ExecutionContext) ([]int32, []slotInfo) {
	slotOf := make([]int32, len(a.infos))
	for i := range slotOf {
		slotOf[i] = noSlot
	}

	type slotState struct {
		key     storageKey
		lastUse int32
		output  bool
	}
	var states []slotState
	var slots []slotInfo

	type cand struct {
		id  ResourceID
		key storageKey
	}
	var cands []cand
	for id := range a.infos {
		rid := ResourceID(id)
		if origin(a.infos, rid) != rid || lt[rid].def < 0 {
			continue
		}
		info := &a.infos[rid]
		if info.kind == KindVirtual {
			continue
		}
		key := storageKey{kind: info.kind}
		switch info.kind {
		case KindImage:
			w, h := info.image.Size.Resolve(ctx.ReferenceWidth, ctx.ReferenceHeight)
			key.format = uint32(info.image.Format)
			key.width = w
			key.height = h
			key.iusage = info.image.Usage
		case KindBuffer:
			key.size = info.buffer.Size
			key.busage = info.buffer.Usage
		}
		cands = append(cands, cand{id: rid, key: key})
	}

	// Resource IDs are assigned in declaration order, so iterating them in
	// order visits origins by definition position.
	for _, c := range cands {
		assigned := int32(-1)
		if !isOutput[c.id] {
			for si := range states {
				s := &states[si]
				if !s.output && s.key == c.key && s.lastUse < lt[c.id].def {
					assigned = int32(si)
					break
				}
			}
		}
		if assigned < 0 {
			assigned = int32(len(states))
			states = append(states, slotState{key: c.key})
			slots = append(slots, slotInfo{
				kind:   c.key.kind,
				format: gputypes.TextureFormat(c.key.format),
				width:  c.key.width,
				height: c.key.height,
				size:   c.key.size,
				iusage: c.key.iusage,
				busage: c.key.busage,
			})
		}
		states[assigned].lastUse = lt[c.id].lastUse
		states[assigned].output = states[assigned].output || isOutput[c.id]
		slotOf[c.id] = assigned
	}
	return slotOf, slots
}

// fingerprintOf hashes the structure of an assembled graph: pass names,
// kinds, every declaration, and the declared outputs. Image extents that
// depend on the execution context fold in the resolved reference size, so a
// window resize produces a distinct plan.
func fingerprintOf(g *GraphBuilder, a *assembled, ctx ExecutionContext) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	u32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		h.Write(buf[:4])
	}
	u64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	str := func(s string) {
		u32(uint32(len(s)))
		h.Write([]byte(s))
	}

	str(g.name)
	relative := false
	u32(uint32(len(a.passes)))
	for _, decl := range a.passes {
		str(decl.name)
		u32(uint32(decl.kind))
		u32(uint32(len(decl.creates)))
		for _, c := range decl.creates {
			str(string(c.name))
			u32(uint32(c.kind))
			switch c.kind {
			case KindImage:
				u32(uint32(c.image.Format))
				u32(uint32(c.image.Usage))
				u64(c.image.Size.hash())
				if c.image.Size.IsContextRelative() {
					relative = true
				}
			case KindBuffer:
				u64(c.buffer.Size)
				u32(uint32(c.buffer.Usage))
			}
		}
		u32(uint32(len(decl.reads)))
		for _, r := range decl.reads {
			str(string(r.name))
			u32(uint32(int32(r.binding)))
		}
		u32(uint32(len(decl.writes)))
		for _, w := range decl.writes {
			str(string(w.name))
			u32(uint32(w.binding))
		}
		u32(uint32(len(decl.moves)))
		for _, m := range decl.moves {
			str(string(m.from))
			str(string(m.to))
		}
	}
	u32(uint32(len(g.outputs)))
	for _, out := range g.outputs {
		str(string(out))
	}
	if relative {
		u32(ctx.ReferenceWidth)
		u32(ctx.ReferenceHeight)
	}
	return h.Sum64()
}
