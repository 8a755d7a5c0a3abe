package ast

// Ty is a type expression.
type Ty struct {
	ID   NodeID
	Span Span
	Kind TyKind
}

// NodeID returns the type node's id.
func (t *Ty) NodeID() NodeID { return t.ID }

// TyKind is implemented by every type expression shape.
type TyKind interface {
	isTyKind()
}

// Path is a possibly qualified name with type arguments.
type Path struct {
	Global   bool
	Segments []string
	Types    []*Ty
}

// PathTy is a named type. RefID is the id under which name resolution
// recorded the binding of the path.
type PathTy struct {
	Path  *Path
	RefID NodeID
}

// PtrTy is a raw pointer.
type PtrTy struct {
	Elem    *Ty
	Mutable bool
}

// RefTy is a borrowed reference.
type RefTy struct {
	Elem    *Ty
	Mutable bool
}

// BoxTy is an owned box.
type BoxTy struct {
	Elem *Ty
}

// SliceTy is a vector or slice.
type SliceTy struct {
	Elem *Ty
}

// ArrayTy is a fixed-length array.
type ArrayTy struct {
	Elem *Ty
	Len  uint64
}

// TupleTy is a tuple.
type TupleTy struct {
	Elems []*Ty
}

// FnTy is a function type.
type FnTy struct {
	Decl *FnDecl
}

// NilTy is the unit type.
type NilTy struct{}

// BotTy is the bottom type of diverging functions.
type BotTy struct{}

// InferTy is a placeholder left for inference.
type InferTy struct{}

func (*PathTy) isTyKind()  {}
func (*PtrTy) isTyKind()   {}
func (*RefTy) isTyKind()   {}
func (*BoxTy) isTyKind()   {}
func (*SliceTy) isTyKind() {}
func (*ArrayTy) isTyKind() {}
func (*TupleTy) isTyKind() {}
func (*FnTy) isTyKind()    {}
func (*NilTy) isTyKind()   {}
func (*BotTy) isTyKind()   {}
func (*InferTy) isTyKind() {}
