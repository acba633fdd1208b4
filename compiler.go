package rendergraph

import (
	"github.com/gogpu/rendergraph/cache"
)

// DefaultPlanCacheCapacity is the per-shard plan cache capacity used by
// NewCompiler.
const DefaultPlanCacheCapacity = 64

// Compiler turns graph builders into executable plans and caches the result
// by structural fingerprint. Compiling the same graph shape again returns
// the identical *CompiledPlan, so per-frame recompilation of a stable graph
// costs one setup walk and a cache hit.
//
// A Compiler is safe for concurrent use.
type Compiler struct {
	plans *cache.Sharded[uint64, *CompiledPlan]
}

// NewCompiler creates a compiler with the default plan cache capacity.
func NewCompiler() *Compiler {
	return NewCompilerWithCapacity(DefaultPlanCacheCapacity)
}

// NewCompilerWithCapacity creates a compiler whose plan cache holds up to
// capacity plans per shard.
func NewCompilerWithCapacity(capacity int) *Compiler {
	return &Compiler{
		plans: cache.NewSharded[uint64, *CompiledPlan](capacity, cache.Uint64Hasher),
	}
}

// Compile builds an executable plan for the graph.
//
// Every call re-runs each pass's Setup against store, so pass enablement
// and declarations may change between frames; only when the resulting
// structure matches a previously compiled one is the cached plan reused.
// ctx supplies the reference size that context-relative image extents
// resolve against; graphs that declare such images get distinct plans per
// reference size.
//
// Errors unwrap to the package sentinels (ErrUnknownResource,
// ErrCyclicDependency, ...) and carry pass and resource context.
func (c *Compiler) Compile(g *GraphBuilder, store *Store, ctx ExecutionContext) (*CompiledPlan, error) {
	if store == nil {
		store = NewStore()
	}
	a := assemble(g, store)
	if len(a.errs) > 0 {
		// Rejected declarations are absent from the fingerprinted decl
		// lists, so an erroneous graph can fingerprint like a clean one.
		// Errors must short-circuit before any cache lookup.
		return nil, a.errs[0]
	}
	fp := fingerprintOf(g, a, ctx)

	if plan, ok := c.plans.Get(fp); ok {
		Logger().Debug("rendergraph: plan cache hit",
			"graph", g.name, "fingerprint", fp)
		return plan, nil
	}

	plan, err := compilePlan(g, a, ctx, fp)
	if err != nil {
		return nil, err
	}
	c.plans.Set(fp, plan)
	Logger().Debug("rendergraph: compiled plan",
		"graph", g.name,
		"fingerprint", fp,
		"passes", plan.PassCount(),
		"slots", plan.SlotCount())
	return plan, nil
}

// InvalidatePlans drops every cached plan. Useful when pass implementations
// change behavior without changing declarations.
func (c *Compiler) InvalidatePlans() {
	c.plans.Clear()
}

// CacheStats returns plan cache counters.
func (c *Compiler) CacheStats() cache.Stats {
	return c.plans.Stats()
}
