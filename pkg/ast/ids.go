// Package ast defines the item tree consumed by the reachability pass.
//
// Every syntactic entity that the pass can mark (items, methods, destructors,
// variants, foreign items, type expressions) carries a NodeID that is unique
// within its compilation unit. Node kinds are closed sets: each category is an
// interface with an unexported marker method, so type switches over them can be
// kept exhaustive.
package ast

import "fmt"

// NodeID identifies a syntactic entity within one compilation unit.
type NodeID uint32

// CrateNodeID is the id of the crate root module. The root is never an item.
const CrateNodeID NodeID = 0

// CrateNum identifies a compilation unit.
type CrateNum uint32

// LocalCrate is the compilation unit being analyzed.
const LocalCrate CrateNum = 0

// DefID is a definition reference: the owning unit plus the node id within it.
type DefID struct {
	Crate CrateNum `json:"crate"`
	Node  NodeID   `json:"node"`
}

// LocalDefID returns a reference to a node of the local crate.
func LocalDefID(id NodeID) DefID {
	return DefID{Crate: LocalCrate, Node: id}
}

// IsLocal reports whether the definition belongs to the unit being analyzed.
func (d DefID) IsLocal() bool {
	return d.Crate == LocalCrate
}

func (d DefID) String() string {
	return fmt.Sprintf("%d:%d", d.Crate, d.Node)
}

// Span is a source location.
type Span struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// IsValid reports whether the span carries a line number.
func (s Span) IsValid() bool {
	return s.Line > 0
}

func (s Span) String() string {
	file := s.File
	if file == "" {
		file = "<unknown>"
	}
	if !s.IsValid() {
		return file
	}
	if s.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", file, s.Line, s.Col)
	}
	return fmt.Sprintf("%s:%d", file, s.Line)
}
