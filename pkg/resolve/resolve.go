// Package resolve holds the tables produced by earlier compiler passes and
// consumed by the reachability pass: name bindings, module export lists and
// method origins. It only defines their shapes and lookups; building them is
// the job of name resolution and type checking.
package resolve

import (
	"fmt"

	"github.com/panbanda/reachable/pkg/ast"
)

// DefKind classifies what a path resolved to.
type DefKind uint8

const (
	DefFn DefKind = iota
	DefStaticMethod
	DefSelf
	DefMod
	DefForeignMod
	DefConst
	DefLocal
	DefArg
	DefVariant
	DefTy
	DefPrimTy
	DefTyParam
	DefBinding
	DefUpvar
	DefStruct
	DefField
	DefTrait
)

var defKindNames = [...]string{
	DefFn:           "fn",
	DefStaticMethod: "static_method",
	DefSelf:         "self",
	DefMod:          "mod",
	DefForeignMod:   "foreign_mod",
	DefConst:        "const",
	DefLocal:        "local",
	DefArg:          "arg",
	DefVariant:      "variant",
	DefTy:           "ty",
	DefPrimTy:       "prim_ty",
	DefTyParam:      "ty_param",
	DefBinding:      "binding",
	DefUpvar:        "upvar",
	DefStruct:       "struct",
	DefField:        "field",
	DefTrait:        "trait",
}

func (k DefKind) String() string {
	if int(k) < len(defKindNames) {
		return defKindNames[k]
	}
	return fmt.Sprintf("DefKind(%d)", k)
}

// ParseDefKind is the inverse of DefKind.String.
func ParseDefKind(s string) (DefKind, error) {
	for k, name := range defKindNames {
		if name == s {
			return DefKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown definition kind %q", s)
}

// PrimTy names a built-in type.
type PrimTy string

// Def is a resolved definition.
type Def struct {
	Kind DefKind
	ID   ast.DefID
	Prim PrimTy
}

// DefID returns the referenced definition. Primitive types have none.
func (d Def) DefID() (ast.DefID, bool) {
	if d.Kind == DefPrimTy {
		return ast.DefID{}, false
	}
	return d.ID, true
}

// IsPrim reports whether d is a built-in type.
func (d Def) IsPrim() bool {
	return d.Kind == DefPrimTy
}

func (d Def) String() string {
	if d.IsPrim() {
		return fmt.Sprintf("%s(%s)", d.Kind, d.Prim)
	}
	return fmt.Sprintf("%s(%s)", d.Kind, d.ID)
}

// DefMap binds path expression and path type ids to definitions.
type DefMap map[ast.NodeID]Def

// Lookup returns the definition bound to id.
func (m DefMap) Lookup(id ast.NodeID) (Def, bool) {
	d, ok := m[id]
	return d, ok
}

// Export is one entry of a module's export list.
type Export struct {
	Name     string
	ID       ast.DefID
	Reexport bool
}

// ExportMap lists the exports of modules that declare them explicitly.
// A module without an entry exports implicitly; an entry with an empty list
// exports nothing.
type ExportMap map[ast.NodeID][]Export

// Exports returns the export list of mod and whether one was declared.
func (m ExportMap) Exports(mod ast.NodeID) ([]Export, bool) {
	list, ok := m[mod]
	return list, ok
}

// OriginKind classifies how a method call was resolved.
type OriginKind uint8

const (
	// OriginStatic is a call bound to a known method definition.
	OriginStatic OriginKind = iota
	// OriginParam is a call through a type parameter bound.
	OriginParam
	// OriginTrait is a call through a trait object.
	OriginTrait
	// OriginSelf is a call on self inside a trait.
	OriginSelf
)

var originNames = [...]string{
	OriginStatic: "static",
	OriginParam:  "param",
	OriginTrait:  "trait",
	OriginSelf:   "self",
}

func (k OriginKind) String() string {
	if int(k) < len(originNames) {
		return originNames[k]
	}
	return fmt.Sprintf("OriginKind(%d)", k)
}

// ParseOriginKind is the inverse of OriginKind.String.
func ParseOriginKind(s string) (OriginKind, error) {
	for k, name := range originNames {
		if name == s {
			return OriginKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown method origin %q", s)
}

// MethodOrigin records how a field expression resolved to a method.
type MethodOrigin struct {
	Kind OriginKind
	ID   ast.DefID
}

// Static returns the target of a statically bound call.
func (o MethodOrigin) Static() (ast.DefID, bool) {
	if o.Kind != OriginStatic {
		return ast.DefID{}, false
	}
	return o.ID, true
}

// MethodMap records method origins keyed by field expression id.
type MethodMap map[ast.NodeID]MethodOrigin

// Origin returns the method origin recorded for expr.
func (m MethodMap) Origin(expr ast.NodeID) (MethodOrigin, bool) {
	o, ok := m[expr]
	return o, ok
}
