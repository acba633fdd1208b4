package rendergraph

import (
	"errors"
	"fmt"
	"strings"
)

// Authoring errors detected during graph compilation. They indicate a
// mistake in the pass declarations and are never recovered internally.
// Use errors.Is to classify a compile failure; the returned error is a
// *CompileError carrying pass and resource context.
var (
	// ErrUnknownResource is returned when a pass references a resource name
	// that no enabled pass created or moved-into.
	ErrUnknownResource = errors.New("rendergraph: unknown resource")

	// ErrResourceAlreadyExists is returned when a create collides with a
	// name that still has an open version.
	ErrResourceAlreadyExists = errors.New("rendergraph: resource already exists")

	// ErrResourceAlreadyMoved is returned when a version is moved more than
	// once.
	ErrResourceAlreadyMoved = errors.New("rendergraph: resource already moved")

	// ErrInvalidWrite is returned when a pass writes a name it did not
	// create or move-into in its own declaration.
	ErrInvalidWrite = errors.New("rendergraph: write to resource not owned by pass")

	// ErrCyclicDependency is returned when the pass dependency graph
	// contains a cycle.
	ErrCyclicDependency = errors.New("rendergraph: cyclic dependency")

	// ErrNoSuchOutput is returned when a declared graph output was never
	// created by any enabled pass.
	ErrNoSuchOutput = errors.New("rendergraph: no such output")
)

// Execution errors.
var (
	// ErrNilDevice is returned when an Executor is created without a device.
	ErrNilDevice = errors.New("rendergraph: device is nil")

	// ErrNilPlan is returned when Run is called with a nil plan.
	ErrNilPlan = errors.New("rendergraph: plan is nil")
)

// CompileError describes an authoring mistake found during compilation.
// It wraps one of the Err* sentinels and names the pass and resource
// involved so the graph author can locate the fault.
type CompileError struct {
	// Kind is the sentinel classifying the error (ErrUnknownResource, ...).
	Kind error

	// Pass is the name of the offending pass, if the error is tied to one.
	Pass string

	// Resource is the resource name involved, if any.
	Resource ResourceName

	// Cycle lists the pass names forming a dependency cycle. Only set when
	// Kind is ErrCyclicDependency.
	Cycle []string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if len(e.Cycle) > 0 {
		fmt.Fprintf(&b, ": passes [%s]", strings.Join(e.Cycle, ", "))
		return b.String()
	}
	if e.Pass != "" {
		fmt.Fprintf(&b, ": pass %q", e.Pass)
	}
	if e.Resource != "" {
		fmt.Fprintf(&b, ": resource %q", e.Resource)
	}
	return b.String()
}

// Unwrap returns the sentinel so errors.Is matches the error kind.
func (e *CompileError) Unwrap() error {
	return e.Kind
}
