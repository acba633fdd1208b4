package rendergraph

import "sort"

// resolvedRead is a read declaration after name resolution.
type resolvedRead struct {
	id      ResourceID
	binding int16
}

// resolvedWrite is a write declaration after name resolution.
type resolvedWrite struct {
	id      ResourceID
	binding uint8
}

// resolvedMove is a move declaration after name resolution.
type resolvedMove struct {
	src ResourceID
	dst ResourceID
}

// assembled is the fully resolved form of a builder: names interned to dense
// resource IDs, per-pass accesses resolved, and the pass dependency edges
// derived. Compilation proper (culling, ordering, aliasing) works on this.
type assembled struct {
	passes []*passDecl
	infos  []resourceInfo

	creates [][]ResourceID
	reads   [][]resolvedRead
	writes  [][]resolvedWrite
	moves   [][]resolvedMove

	// outputs holds the resolved final version for each declared output,
	// parallel to the builder's output list.
	outputs     []ResourceID
	outputNames []ResourceName

	// deps[p] lists the passes that must execute before pass p,
	// deduplicated and sorted by declaration index.
	deps [][]PassID

	errs []*CompileError
}

// assemble runs Setup on every pass, drops passes that never enabled
// themselves, and resolves all declared names to resource IDs.
//
// Resolution is global in two phases, so reads may reference resources a
// later-declared pass creates; the cycle check afterwards rejects graphs
// where such forward reads are unsatisfiable.
func assemble(g *GraphBuilder, store *Store) *assembled {
	a := &assembled{}

	for _, decl := range g.passes {
		decl.enabled = false
		decl.creates = decl.creates[:0]
		decl.reads = decl.reads[:0]
		decl.writes = decl.writes[:0]
		decl.moves = decl.moves[:0]
		decl.errs = decl.errs[:0]
		decl.impl.Setup(store, newPassBuilder(decl))
		if decl.enabled {
			a.passes = append(a.passes, decl)
		}
	}

	n := len(a.passes)
	a.creates = make([][]ResourceID, n)
	a.reads = make([][]resolvedRead, n)
	a.writes = make([][]resolvedWrite, n)
	a.moves = make([][]resolvedMove, n)
	a.deps = make([][]PassID, n)

	for _, decl := range a.passes {
		a.errs = append(a.errs, decl.errs...)
	}

	// Phase one: intern every created and moved-into version.
	//
	// open tracks the live version behind each name as declaration order
	// advances; versions keeps every version a name ever had, for forward
	// and output resolution.
	open := make(map[ResourceName]ResourceID)
	versions := make(map[ResourceName][]ResourceID)

	define := func(name ResourceName, kind ResourceKind, p PassID) ResourceID {
		id := ResourceID(len(a.infos))
		a.infos = append(a.infos, resourceInfo{
			name:      name,
			kind:      kind,
			definedBy: p,
			movedFrom: InvalidResource,
			movedTo:   InvalidResource,
		})
		open[name] = id
		versions[name] = append(versions[name], id)
		return id
	}

	for pi, decl := range a.passes {
		p := PassID(pi)
		for _, c := range decl.creates {
			if _, exists := open[c.name]; exists {
				a.errs = append(a.errs, &CompileError{
					Kind:     ErrResourceAlreadyExists,
					Pass:     decl.name,
					Resource: c.name,
				})
				continue
			}
			id := define(c.name, c.kind, p)
			a.infos[id].image = c.image
			a.infos[id].buffer = c.buffer
			a.creates[pi] = append(a.creates[pi], id)
		}
		for _, m := range decl.moves {
			src, ok := open[m.from]
			if !ok {
				kind := ErrUnknownResource
				if len(versions[m.from]) > 0 {
					kind = ErrResourceAlreadyMoved
				}
				a.errs = append(a.errs, &CompileError{
					Kind:     kind,
					Pass:     decl.name,
					Resource: m.from,
				})
				continue
			}
			// Close the source before checking the destination, so a
			// move may reuse its own source name.
			delete(open, m.from)
			if _, exists := open[m.to]; exists {
				open[m.from] = src
				a.errs = append(a.errs, &CompileError{
					Kind:     ErrResourceAlreadyExists,
					Pass:     decl.name,
					Resource: m.to,
				})
				continue
			}
			dst := define(m.to, a.infos[src].kind, p)
			a.infos[dst].image = a.infos[src].image
			a.infos[dst].buffer = a.infos[src].buffer
			a.infos[dst].movedFrom = src
			a.infos[src].movedTo = dst
			a.moves[pi] = append(a.moves[pi], resolvedMove{src: src, dst: dst})
		}
	}

	// Phase two: resolve reads and writes against the version history.
	// A read resolves to the newest version defined at or before the
	// reading pass; with none, it is a forward reference to the name's
	// first version.
	for pi, decl := range a.passes {
		p := PassID(pi)
		for _, r := range decl.reads {
			id, ok := resolveRead(versions[r.name], a.infos, p)
			if !ok {
				a.errs = append(a.errs, &CompileError{
					Kind:     ErrUnknownResource,
					Pass:     decl.name,
					Resource: r.name,
				})
				continue
			}
			a.reads[pi] = append(a.reads[pi], resolvedRead{id: id, binding: r.binding})
		}
		for _, w := range decl.writes {
			// PassBuilder guarantees the pass owns the name, so the
			// open version at this pass is the pass's own.
			vs := versions[w.name]
			for i := len(vs) - 1; i >= 0; i-- {
				if a.infos[vs[i]].definedBy == p {
					a.writes[pi] = append(a.writes[pi], resolvedWrite{id: vs[i], binding: w.binding})
					break
				}
			}
		}
	}

	// Outputs resolve to the final version of the name.
	for _, name := range g.outputs {
		vs := versions[name]
		if len(vs) == 0 {
			a.errs = append(a.errs, &CompileError{
				Kind:     ErrNoSuchOutput,
				Resource: name,
			})
			continue
		}
		a.outputs = append(a.outputs, vs[len(vs)-1])
		a.outputNames = append(a.outputNames, name)
	}

	a.buildDeps()
	return a
}

// resolveRead picks the version of a name visible to pass p: the newest
// version defined at or before p, else the name's first version.
func resolveRead(vs []ResourceID, infos []resourceInfo, p PassID) (ResourceID, bool) {
	if len(vs) == 0 {
		return InvalidResource, false
	}
	for i := len(vs) - 1; i >= 0; i-- {
		if infos[vs[i]].definedBy <= p {
			return vs[i], true
		}
	}
	return vs[0], true
}

// buildDeps derives the pass dependency lists.
//
// A pass depends on the definer of every resource it reads or moves, and a
// move additionally depends on every reader of its source: the moved-into
// version reuses the source's storage, so the mover must not run until the
// old contents are no longer needed.
func (a *assembled) buildDeps() {
	readers := make(map[ResourceID][]PassID)
	for pi := range a.passes {
		for _, r := range a.reads[pi] {
			readers[r.id] = append(readers[r.id], PassID(pi))
		}
	}

	depSet := make([]map[PassID]bool, len(a.passes))
	add := func(p PassID, dep PassID) {
		if dep == p {
			return
		}
		if depSet[p] == nil {
			depSet[p] = make(map[PassID]bool)
		}
		depSet[p][dep] = true
	}

	for pi := range a.passes {
		p := PassID(pi)
		for _, r := range a.reads[pi] {
			add(p, a.infos[r.id].definedBy)
		}
		for _, m := range a.moves[pi] {
			add(p, a.infos[m.src].definedBy)
			for _, reader := range readers[m.src] {
				add(p, reader)
			}
		}
	}

	for pi, set := range depSet {
		deps := make([]PassID, 0, len(set))
		for dep := range set {
			deps = append(deps, dep)
		}
		sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
		a.deps[pi] = deps
	}
}

// findCycle runs a three-color depth-first search over the dependency edges
// and returns the pass names of the first cycle found, or nil.
func (a *assembled) findCycle() []string {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // fully explored
	)
	color := make([]int, len(a.passes))
	var path []PassID
	var cycle []string

	var visit func(p PassID) bool
	visit = func(p PassID) bool {
		color[p] = gray
		path = append(path, p)
		for _, dep := range a.deps[p] {
			switch color[dep] {
			case gray:
				start := 0
				for i, q := range path {
					if q == dep {
						start = i
						break
					}
				}
				for _, q := range path[start:] {
					cycle = append(cycle, a.passes[q].name)
				}
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[p] = black
		return false
	}

	for pi := range a.passes {
		if color[pi] == white && visit(PassID(pi)) {
			return cycle
		}
	}
	return nil
}
