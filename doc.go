// Package rendergraph compiles declarative descriptions of GPU passes and
// the named resources they touch into validated, ordered execution plans.
//
// A graph is described by passes. Each pass declares the resources it
// creates, reads, writes, and moves during its Setup phase. From those
// declarations the compiler resolves producer/consumer dependencies, culls
// passes that do not contribute to the requested outputs, orders the rest
// deterministically, computes resource lifetime intervals, and derives an
// aliasing plan that lets non-overlapping resources share backing storage.
//
// Compiled plans are cached by a structural fingerprint, so re-submitting a
// graph with the same shape across frames skips all analysis work.
//
// Basic usage:
//
//	b := rendergraph.NewGraphBuilder("tonemap")
//	b.AddGraphicsPass("scene", scenePass)
//	b.AddGraphicsPass("post", postPass)
//	b.AddOutput("Final")
//
//	compiler := rendergraph.NewCompiler()
//	plan, err := compiler.Compile(b, store, rendergraph.ExecutionContext{
//	    ReferenceWidth:  1920,
//	    ReferenceHeight: 1080,
//	})
//	if err != nil {
//	    // authoring error: unknown resource, cycle, missing output, ...
//	}
//
//	exec := rendergraph.NewExecutor(device)
//	res, err := exec.Run(plan, store)
//
// The package performs no GPU work itself. Backing resources are allocated
// through the Device interface (see backend/ for implementations) and all
// command recording happens inside pass Execute callbacks.
package rendergraph
