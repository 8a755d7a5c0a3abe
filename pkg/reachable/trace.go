package reachable

import (
	"fmt"

	"github.com/panbanda/reachable/pkg/ast"
)

// Reason says why the traversal followed an edge.
type Reason uint8

const (
	// ReasonExport is an entry of an explicit export list.
	ReasonExport Reason = iota
	// ReasonImplicitExport is a child of a module without an export list.
	ReasonImplicitExport
	// ReasonForeignItem is a declaration of an implicitly exported foreign module.
	ReasonForeignItem
	// ReasonBodyRef is a path expression inside a walked body.
	ReasonBodyRef
	// ReasonMethodCall is a statically resolved method call inside a walked body.
	ReasonMethodCall
	// ReasonNestedItem is an item declared inside a walked body.
	ReasonNestedItem
	// ReasonType is a type expression reached from an item or another type.
	ReasonType
	// ReasonTypeRef is the definition a path type names.
	ReasonTypeRef
	// ReasonMethod is a method kept along with its impl or struct.
	ReasonMethod
	// ReasonDtor is a destructor kept along with its struct.
	ReasonDtor
	// ReasonParent is the impl or struct owning a referenced method.
	ReasonParent
	// ReasonRetention is an impl or destructor-bearing struct kept unconditionally.
	ReasonRetention
)

var reasonNames = [...]string{
	ReasonExport:         "export",
	ReasonImplicitExport: "implicit-export",
	ReasonForeignItem:    "foreign-item",
	ReasonBodyRef:        "body-ref",
	ReasonMethodCall:     "method-call",
	ReasonNestedItem:     "nested-item",
	ReasonType:           "type",
	ReasonTypeRef:        "type-ref",
	ReasonMethod:         "method",
	ReasonDtor:           "dtor",
	ReasonParent:         "parent",
	ReasonRetention:      "retention",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return fmt.Sprintf("Reason(%d)", r)
}

// Tracer observes every edge the traversal follows, whether or not the
// target was already marked. The crate root is ast.CrateNodeID.
// Implementations must be safe for concurrent use when parallelism is on.
type Tracer interface {
	Reach(from, to ast.NodeID, why Reason)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(from, to ast.NodeID, why Reason)

// Reach calls f.
func (f TracerFunc) Reach(from, to ast.NodeID, why Reason) { f(from, to, why) }

type nopTracer struct{}

func (nopTracer) Reach(ast.NodeID, ast.NodeID, Reason) {}
