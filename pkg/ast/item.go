package ast

// Crate is a compilation unit: its name and root module.
type Crate struct {
	Name   string
	Module *Mod
	Span   Span
}

// Item is a named declaration.
type Item struct {
	ID    NodeID
	Name  string
	Attrs []Attribute
	Span  Span
	Kind  ItemKind
}

// NodeID returns the item's id.
func (it *Item) NodeID() NodeID { return it.ID }

// ItemKind is implemented by every item variant.
type ItemKind interface {
	isItemKind()
}

// Mod is a module; also used for the crate root.
type Mod struct {
	Items []*Item
}

// ForeignMod is a block of foreign declarations.
type ForeignMod struct {
	ABI   string
	Items []*ForeignItem
}

// Fn is a free function.
type Fn struct {
	Generics Generics
	Decl     *FnDecl
	Body     *Block
}

// Impl is a type or trait implementation. A nil Methods slice means the
// implementation carries no method list.
type Impl struct {
	Generics Generics
	Trait    *Path
	SelfTy   *Ty
	Methods  []*Method
}

// Struct is a record type, optionally with a destructor and methods.
type Struct struct {
	Generics Generics
	Fields   []*StructField
	Dtor     *Dtor
	Methods  []*Method
}

// TyAlias is a type alias.
type TyAlias struct {
	Generics Generics
	Ty       *Ty
}

// Enum is an enumeration.
type Enum struct {
	Generics Generics
	Variants []*Variant
}

// Trait is a trait declaration. Provided methods have a body.
type Trait struct {
	Generics Generics
	Methods  []*TraitMethod
}

// Const is a constant.
type Const struct {
	Ty   *Ty
	Expr *Expr
}

// MacroInvocation is an item-position macro call that was never expanded.
type MacroInvocation struct {
	Path   *Path
	Tokens string
}

func (*Mod) isItemKind()             {}
func (*ForeignMod) isItemKind()      {}
func (*Fn) isItemKind()              {}
func (*Impl) isItemKind()            {}
func (*Struct) isItemKind()          {}
func (*TyAlias) isItemKind()         {}
func (*Enum) isItemKind()            {}
func (*Trait) isItemKind()           {}
func (*Const) isItemKind()           {}
func (*MacroInvocation) isItemKind() {}

// KindName returns a short name for an item kind.
func KindName(k ItemKind) string {
	switch k.(type) {
	case *Mod:
		return "mod"
	case *ForeignMod:
		return "foreign mod"
	case *Fn:
		return "fn"
	case *Impl:
		return "impl"
	case *Struct:
		return "struct"
	case *TyAlias:
		return "type"
	case *Enum:
		return "enum"
	case *Trait:
		return "trait"
	case *Const:
		return "const"
	case *MacroInvocation:
		return "macro"
	default:
		return "unknown"
	}
}

// Generics holds an item's type parameters.
type Generics struct {
	TyParams []*TyParam
}

// Len returns the number of type parameters.
func (g Generics) Len() int { return len(g.TyParams) }

// TyParam is a type parameter with optional bounds.
type TyParam struct {
	Name   string
	Bounds []*Ty
}

// FnDecl is a function signature.
type FnDecl struct {
	Inputs []*Param
	Output *Ty
}

// Param is a function parameter.
type Param struct {
	ID   NodeID
	Name string
	Ty   *Ty
}

// Method is a method of an impl or struct.
type Method struct {
	ID       NodeID
	Name     string
	Attrs    []Attribute
	Generics Generics
	Decl     *FnDecl
	Body     *Block
	Span     Span
}

// NodeID returns the method's id.
func (m *Method) NodeID() NodeID { return m.ID }

// TraitMethod is a required (Body == nil) or provided trait method.
type TraitMethod struct {
	ID       NodeID
	Name     string
	Attrs    []Attribute
	Generics Generics
	Decl     *FnDecl
	Body     *Block
	Span     Span
}

// NodeID returns the trait method's id.
func (m *TraitMethod) NodeID() NodeID { return m.ID }

// Dtor is a struct destructor.
type Dtor struct {
	ID    NodeID
	Attrs []Attribute
	Body  *Block
	Span  Span
}

// NodeID returns the destructor's id.
func (d *Dtor) NodeID() NodeID { return d.ID }

// StructField is a named struct field.
type StructField struct {
	ID   NodeID
	Name string
	Ty   *Ty
}

// Variant is an enum variant.
type Variant struct {
	ID   NodeID
	Name string
	Args []*Ty
	Disr *Expr
	Span Span
}

// NodeID returns the variant's id.
func (v *Variant) NodeID() NodeID { return v.ID }

// ForeignItem is a declaration inside a foreign module.
type ForeignItem struct {
	ID    NodeID
	Name  string
	Attrs []Attribute
	Kind  ForeignItemKind
	Span  Span
}

// NodeID returns the foreign item's id.
func (f *ForeignItem) NodeID() NodeID { return f.ID }

// ForeignItemKind is implemented by foreign declaration variants.
type ForeignItemKind interface {
	isForeignItemKind()
}

// ForeignFn is a foreign function declaration.
type ForeignFn struct {
	Generics Generics
	Decl     *FnDecl
}

// ForeignStatic is a foreign static declaration.
type ForeignStatic struct {
	Ty      *Ty
	Mutable bool
}

func (*ForeignFn) isForeignItemKind()     {}
func (*ForeignStatic) isForeignItemKind() {}
