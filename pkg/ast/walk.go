package ast

// Node is a syntax node with an id. Inspect visits values of these types:
// *Item, *Method, *TraitMethod, *Dtor, *Variant, *ForeignItem, *StructField,
// *Param, *Block, *Stmt, *Expr, *Pat and *Ty.
type Node interface {
	NodeID() NodeID
}

// NodeID returns the field's id.
func (f *StructField) NodeID() NodeID { return f.ID }

// NodeID returns the parameter's id.
func (p *Param) NodeID() NodeID { return p.ID }

// Inspect traverses the tree rooted at n in depth-first order. It calls f for
// each node; if f returns false, the node's children are skipped.
func Inspect(n Node, f func(Node) bool) {
	in := inspector(f)
	switch n := n.(type) {
	case *Item:
		in.item(n)
	case *Method:
		in.method(n)
	case *TraitMethod:
		in.traitMethod(n)
	case *Dtor:
		in.dtor(n)
	case *Variant:
		in.variant(n)
	case *ForeignItem:
		in.foreignItem(n)
	case *StructField:
		in.field(n)
	case *Param:
		in.param(n)
	case *Block:
		in.block(n)
	case *Stmt:
		in.stmt(n)
	case *Expr:
		in.expr(n)
	case *Pat:
		in.pat(n)
	case *Ty:
		in.ty(n)
	}
}

// InspectCrate calls Inspect on every item of the crate root.
func InspectCrate(c *Crate, f func(Node) bool) {
	if c == nil || c.Module == nil {
		return
	}
	in := inspector(f)
	for _, it := range c.Module.Items {
		in.item(it)
	}
}

type inspector func(Node) bool

func (in inspector) item(it *Item) {
	if it == nil || !in(it) {
		return
	}
	switch k := it.Kind.(type) {
	case *Mod:
		for _, child := range k.Items {
			in.item(child)
		}
	case *ForeignMod:
		for _, fi := range k.Items {
			in.foreignItem(fi)
		}
	case *Fn:
		in.generics(k.Generics)
		in.fnDecl(k.Decl)
		in.block(k.Body)
	case *Impl:
		in.generics(k.Generics)
		in.path(k.Trait)
		in.ty(k.SelfTy)
		for _, m := range k.Methods {
			in.method(m)
		}
	case *Struct:
		in.generics(k.Generics)
		for _, f := range k.Fields {
			in.field(f)
		}
		in.dtor(k.Dtor)
		for _, m := range k.Methods {
			in.method(m)
		}
	case *TyAlias:
		in.generics(k.Generics)
		in.ty(k.Ty)
	case *Enum:
		in.generics(k.Generics)
		for _, v := range k.Variants {
			in.variant(v)
		}
	case *Trait:
		in.generics(k.Generics)
		for _, m := range k.Methods {
			in.traitMethod(m)
		}
	case *Const:
		in.ty(k.Ty)
		in.expr(k.Expr)
	case *MacroInvocation:
		in.path(k.Path)
	}
}

func (in inspector) generics(g Generics) {
	for _, tp := range g.TyParams {
		if tp == nil {
			continue
		}
		for _, b := range tp.Bounds {
			in.ty(b)
		}
	}
}

func (in inspector) fnDecl(d *FnDecl) {
	if d == nil {
		return
	}
	for _, p := range d.Inputs {
		in.param(p)
	}
	in.ty(d.Output)
}

func (in inspector) param(p *Param) {
	if p == nil || !in(p) {
		return
	}
	in.ty(p.Ty)
}

func (in inspector) field(f *StructField) {
	if f == nil || !in(f) {
		return
	}
	in.ty(f.Ty)
}

func (in inspector) method(m *Method) {
	if m == nil || !in(m) {
		return
	}
	in.generics(m.Generics)
	in.fnDecl(m.Decl)
	in.block(m.Body)
}

func (in inspector) traitMethod(m *TraitMethod) {
	if m == nil || !in(m) {
		return
	}
	in.generics(m.Generics)
	in.fnDecl(m.Decl)
	in.block(m.Body)
}

func (in inspector) dtor(d *Dtor) {
	if d == nil || !in(d) {
		return
	}
	in.block(d.Body)
}

func (in inspector) variant(v *Variant) {
	if v == nil || !in(v) {
		return
	}
	for _, t := range v.Args {
		in.ty(t)
	}
	in.expr(v.Disr)
}

func (in inspector) foreignItem(fi *ForeignItem) {
	if fi == nil || !in(fi) {
		return
	}
	switch k := fi.Kind.(type) {
	case *ForeignFn:
		in.generics(k.Generics)
		in.fnDecl(k.Decl)
	case *ForeignStatic:
		in.ty(k.Ty)
	}
}

func (in inspector) block(b *Block) {
	if b == nil || !in(b) {
		return
	}
	for _, s := range b.Stmts {
		in.stmt(s)
	}
	in.expr(b.Expr)
}

func (in inspector) stmt(s *Stmt) {
	if s == nil || !in(s) {
		return
	}
	switch k := s.Kind.(type) {
	case *LocalStmt:
		in.pat(k.Pat)
		in.ty(k.Ty)
		in.expr(k.Init)
	case *ItemStmt:
		in.item(k.Item)
	case *ExprStmt:
		in.expr(k.Expr)
	}
}

func (in inspector) exprs(es []*Expr) {
	for _, e := range es {
		in.expr(e)
	}
}

func (in inspector) expr(e *Expr) {
	if e == nil || !in(e) {
		return
	}
	switch k := e.Kind.(type) {
	case *PathExpr:
		in.path(k.Path)
	case *FieldExpr:
		in.expr(k.Receiver)
		for _, t := range k.Types {
			in.ty(t)
		}
	case *CallExpr:
		in.expr(k.Callee)
		in.exprs(k.Args)
	case *LitExpr, *BreakExpr, *ContinueExpr:
	case *UnaryExpr:
		in.expr(k.Operand)
	case *BinaryExpr:
		in.expr(k.Lhs)
		in.expr(k.Rhs)
	case *AssignExpr:
		in.expr(k.Lhs)
		in.expr(k.Rhs)
	case *CastExpr:
		in.expr(k.Expr)
		in.ty(k.Ty)
	case *IfExpr:
		in.expr(k.Cond)
		in.block(k.Then)
		in.expr(k.Else)
	case *WhileExpr:
		in.expr(k.Cond)
		in.block(k.Body)
	case *LoopExpr:
		in.block(k.Body)
	case *MatchExpr:
		in.expr(k.Scrutinee)
		for _, arm := range k.Arms {
			if arm == nil {
				continue
			}
			for _, p := range arm.Pats {
				in.pat(p)
			}
			in.expr(arm.Guard)
			in.block(arm.Body)
		}
	case *BlockExpr:
		in.block(k.Block)
	case *ClosureExpr:
		in.fnDecl(k.Decl)
		in.block(k.Body)
	case *TupleExpr:
		in.exprs(k.Elems)
	case *VecExpr:
		in.exprs(k.Elems)
	case *IndexExpr:
		in.expr(k.Base)
		in.expr(k.Index)
	case *StructExpr:
		in.path(k.Path)
		for _, fi := range k.Fields {
			if fi != nil {
				in.expr(fi.Expr)
			}
		}
		in.expr(k.Base)
	case *ReturnExpr:
		in.expr(k.Value)
	case *AddrOfExpr:
		in.expr(k.Expr)
	}
}

func (in inspector) pat(p *Pat) {
	if p == nil || !in(p) {
		return
	}
	switch k := p.Kind.(type) {
	case *WildPat:
	case *IdentPat:
		in.pat(k.Sub)
	case *LitPat:
		in.expr(k.Expr)
	case *RangePat:
		in.expr(k.Lo)
		in.expr(k.Hi)
	case *EnumPat:
		in.path(k.Path)
		for _, a := range k.Args {
			in.pat(a)
		}
	case *TuplePat:
		for _, el := range k.Elems {
			in.pat(el)
		}
	}
}

// path visits a path's type arguments; the path itself is not a node.
func (in inspector) path(p *Path) {
	if p == nil {
		return
	}
	for _, t := range p.Types {
		in.ty(t)
	}
}

func (in inspector) ty(t *Ty) {
	if t == nil || !in(t) {
		return
	}
	switch k := t.Kind.(type) {
	case *PathTy:
		in.path(k.Path)
	case *PtrTy:
		in.ty(k.Elem)
	case *RefTy:
		in.ty(k.Elem)
	case *BoxTy:
		in.ty(k.Elem)
	case *SliceTy:
		in.ty(k.Elem)
	case *ArrayTy:
		in.ty(k.Elem)
	case *TupleTy:
		for _, el := range k.Elems {
			in.ty(el)
		}
	case *FnTy:
		in.fnDecl(k.Decl)
	case *NilTy, *BotTy, *InferTy:
	}
}
