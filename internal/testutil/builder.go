// Package testutil provides helpers shared by tests: file fixtures and an
// item tree builder that numbers nodes and records the resolution tables.
package testutil

import (
	"fmt"
	"testing"

	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/resolve"
)

// SpanFile is the file name given to every span the builder creates. Each
// node's line equals its id.
const SpanFile = "test.rs"

// Builder assembles an item tree with fresh node ids and the tables that
// name resolution and type checking would have produced for it.
type Builder struct {
	next    ast.NodeID
	Defs    resolve.DefMap
	Exports resolve.ExportMap
	Methods resolve.MethodMap
}

// NewBuilder returns a builder whose first id is 1.
func NewBuilder() *Builder {
	return &Builder{
		next:    1,
		Defs:    resolve.DefMap{},
		Exports: resolve.ExportMap{},
		Methods: resolve.MethodMap{},
	}
}

// ID allocates a node id.
func (b *Builder) ID() ast.NodeID {
	id := b.next
	b.next++
	return id
}

func span(id ast.NodeID) ast.Span {
	return ast.Span{File: SpanFile, Line: int(id), Col: 1}
}

func attrs(names []string) []ast.Attribute {
	var out []ast.Attribute
	for _, n := range names {
		out = append(out, ast.ParseAttribute(n))
	}
	return out
}

func generics(n int) ast.Generics {
	var g ast.Generics
	for i := 0; i < n; i++ {
		g.TyParams = append(g.TyParams, &ast.TyParam{Name: fmt.Sprintf("T%d", i)})
	}
	return g
}

// Item wraps a kind in an item with a fresh id.
func (b *Builder) Item(name string, kind ast.ItemKind, attributes ...string) *ast.Item {
	id := b.ID()
	return &ast.Item{ID: id, Name: name, Attrs: attrs(attributes), Span: span(id), Kind: kind}
}

// Mod builds a module.
func (b *Builder) Mod(name string, items ...*ast.Item) *ast.Item {
	return b.Item(name, &ast.Mod{Items: items})
}

// Fn builds a free function with tyParams type parameters.
func (b *Builder) Fn(name string, tyParams int, body *ast.Block, attributes ...string) *ast.Item {
	return b.Item(name, &ast.Fn{Generics: generics(tyParams), Decl: &ast.FnDecl{}, Body: body}, attributes...)
}

// Method builds a method for an impl or struct.
func (b *Builder) Method(name string, tyParams int, body *ast.Block, attributes ...string) *ast.Method {
	id := b.ID()
	return &ast.Method{
		ID:       id,
		Name:     name,
		Attrs:    attrs(attributes),
		Generics: generics(tyParams),
		Decl:     &ast.FnDecl{},
		Body:     body,
		Span:     span(id),
	}
}

// Impl builds an inherent impl.
func (b *Builder) Impl(tyParams int, methods ...*ast.Method) *ast.Item {
	return b.Item("impl", &ast.Impl{Generics: generics(tyParams), Methods: methods})
}

// Dtor builds a destructor.
func (b *Builder) Dtor(body *ast.Block, attributes ...string) *ast.Dtor {
	id := b.ID()
	return &ast.Dtor{ID: id, Attrs: attrs(attributes), Body: body, Span: span(id)}
}

// Struct builds a struct with an optional destructor.
func (b *Builder) Struct(name string, tyParams int, dtor *ast.Dtor, methods ...*ast.Method) *ast.Item {
	return b.Item(name, &ast.Struct{Generics: generics(tyParams), Dtor: dtor, Methods: methods})
}

// Enum builds an enum with the named variants.
func (b *Builder) Enum(name string, variants ...string) *ast.Item {
	e := &ast.Enum{}
	for _, v := range variants {
		id := b.ID()
		e.Variants = append(e.Variants, &ast.Variant{ID: id, Name: v, Span: span(id)})
	}
	return b.Item(name, e)
}

// ForeignMod builds a foreign module declaring the named functions.
func (b *Builder) ForeignMod(names ...string) *ast.Item {
	fm := &ast.ForeignMod{ABI: "C"}
	for _, n := range names {
		id := b.ID()
		fm.Items = append(fm.Items, &ast.ForeignItem{ID: id, Name: n, Kind: &ast.ForeignFn{Decl: &ast.FnDecl{}}, Span: span(id)})
	}
	return b.Item("extern", fm)
}

// TyAlias builds a type alias.
func (b *Builder) TyAlias(name string, ty *ast.Ty) *ast.Item {
	return b.Item(name, &ast.TyAlias{Ty: ty})
}

// Const builds a constant.
func (b *Builder) Const(name string) *ast.Item {
	return b.Item(name, &ast.Const{Expr: b.Lit("0")})
}

// Trait builds a trait with one required method.
func (b *Builder) Trait(name string) *ast.Item {
	id := b.ID()
	return b.Item(name, &ast.Trait{Methods: []*ast.TraitMethod{{ID: id, Name: "required", Decl: &ast.FnDecl{}, Span: span(id)}}})
}

// Macro builds an unexpanded item macro.
func (b *Builder) Macro(name string) *ast.Item {
	return b.Item(name, &ast.MacroInvocation{Path: &ast.Path{Segments: []string{name}}})
}

// Block builds a block from statements.
func (b *Builder) Block(stmts ...*ast.Stmt) *ast.Block {
	id := b.ID()
	return &ast.Block{ID: id, Stmts: stmts, Span: span(id)}
}

// Body builds a block evaluating each expression as a statement.
func (b *Builder) Body(exprs ...*ast.Expr) *ast.Block {
	var stmts []*ast.Stmt
	for _, e := range exprs {
		stmts = append(stmts, b.ExprStmt(e))
	}
	return b.Block(stmts...)
}

// ExprStmt builds an expression statement.
func (b *Builder) ExprStmt(e *ast.Expr) *ast.Stmt {
	id := b.ID()
	return &ast.Stmt{ID: id, Span: span(id), Kind: &ast.ExprStmt{Expr: e, Semi: true}}
}

// ItemStmt builds an item declaration statement.
func (b *Builder) ItemStmt(it *ast.Item) *ast.Stmt {
	id := b.ID()
	return &ast.Stmt{ID: id, Span: span(id), Kind: &ast.ItemStmt{Item: it}}
}

// LetStmt builds `let x = init`.
func (b *Builder) LetStmt(name string, init *ast.Expr) *ast.Stmt {
	id, pid := b.ID(), b.ID()
	pat := &ast.Pat{ID: pid, Span: span(pid), Kind: &ast.IdentPat{Name: name}}
	return &ast.Stmt{ID: id, Span: span(id), Kind: &ast.LocalStmt{Pat: pat, Init: init}}
}

func (b *Builder) expr(kind ast.ExprKind) *ast.Expr {
	id := b.ID()
	return &ast.Expr{ID: id, Span: span(id), Kind: kind}
}

// Ref builds a path expression bound to a local definition.
func (b *Builder) Ref(target ast.NodeID) *ast.Expr {
	return b.RefDef(resolve.Def{Kind: resolve.DefFn, ID: ast.LocalDefID(target)})
}

// RefDef builds a path expression bound to def.
func (b *Builder) RefDef(def resolve.Def) *ast.Expr {
	name := fmt.Sprintf("ref%d", def.ID.Node)
	if def.IsPrim() {
		name = string(def.Prim)
	}
	e := b.expr(&ast.PathExpr{Path: &ast.Path{Segments: []string{name}}})
	b.Defs[e.ID] = def
	return e
}

// Unbound builds a path expression with no binding.
func (b *Builder) Unbound(segments ...string) *ast.Expr {
	return b.expr(&ast.PathExpr{Path: &ast.Path{Segments: segments}})
}

// Local builds a path expression bound to a local variable.
func (b *Builder) Local(name string) *ast.Expr {
	e := b.expr(&ast.PathExpr{Path: &ast.Path{Segments: []string{name}}})
	b.Defs[e.ID] = resolve.Def{Kind: resolve.DefLocal, ID: ast.LocalDefID(e.ID)}
	return e
}

// Lit builds an integer literal.
func (b *Builder) Lit(v string) *ast.Expr {
	return b.expr(&ast.LitExpr{Kind: ast.LitInt, Value: v})
}

// Call builds a call expression.
func (b *Builder) Call(callee *ast.Expr, args ...*ast.Expr) *ast.Expr {
	return b.expr(&ast.CallExpr{Callee: callee, Args: args})
}

// MethodCall builds `recv.name()` and records origin for the selection.
func (b *Builder) MethodCall(recv *ast.Expr, name string, origin resolve.MethodOrigin) *ast.Expr {
	sel := b.expr(&ast.FieldExpr{Receiver: recv, Field: name})
	b.Methods[sel.ID] = origin
	return b.Call(sel)
}

// Closure builds a closure with the given body.
func (b *Builder) Closure(body *ast.Block) *ast.Expr {
	return b.expr(&ast.ClosureExpr{Decl: &ast.FnDecl{}, Body: body})
}

// BlockExpr wraps a block as an expression.
func (b *Builder) BlockExpr(blk *ast.Block) *ast.Expr {
	return b.expr(&ast.BlockExpr{Block: blk})
}

// Cast builds `e as ty`.
func (b *Builder) Cast(e *ast.Expr, ty *ast.Ty) *ast.Expr {
	return b.expr(&ast.CastExpr{Expr: e, Ty: ty})
}

// Match builds a match with one arm per pattern, each with an empty body.
func (b *Builder) Match(scrutinee *ast.Expr, pats ...*ast.Pat) *ast.Expr {
	m := &ast.MatchExpr{Scrutinee: scrutinee}
	for _, p := range pats {
		m.Arms = append(m.Arms, &ast.Arm{Pats: []*ast.Pat{p}, Body: b.Block()})
	}
	return b.expr(m)
}

// LitPat builds a literal pattern.
func (b *Builder) LitPat(e *ast.Expr) *ast.Pat {
	id := b.ID()
	return &ast.Pat{ID: id, Span: span(id), Kind: &ast.LitPat{Expr: e}}
}

// EnumPat builds `path(args...)` without resolving the path.
func (b *Builder) EnumPat(name string, args ...*ast.Pat) *ast.Pat {
	id := b.ID()
	return &ast.Pat{ID: id, Span: span(id), Kind: &ast.EnumPat{Path: &ast.Path{Segments: []string{name}}, Args: args}}
}

// StructLit builds a struct literal naming a path that is not a value.
func (b *Builder) StructLit(name string, fields map[string]*ast.Expr) *ast.Expr {
	s := &ast.StructExpr{Path: &ast.Path{Segments: []string{name}}}
	for k, v := range fields {
		s.Fields = append(s.Fields, &ast.FieldInit{Name: k, Expr: v})
	}
	return b.expr(s)
}

func (b *Builder) ty(kind ast.TyKind) *ast.Ty {
	id := b.ID()
	return &ast.Ty{ID: id, Span: span(id), Kind: kind}
}

// PathTy builds a path type bound to a local type definition.
func (b *Builder) PathTy(target ast.NodeID, args ...*ast.Ty) *ast.Ty {
	t := b.ty(&ast.PathTy{Path: &ast.Path{Segments: []string{fmt.Sprintf("ty%d", target)}, Types: args}})
	pt := t.Kind.(*ast.PathTy)
	pt.RefID = t.ID
	b.Defs[t.ID] = resolve.Def{Kind: resolve.DefTy, ID: ast.LocalDefID(target)}
	return t
}

// ExternTy builds a path type bound to a definition of another crate.
func (b *Builder) ExternTy(crate ast.CrateNum, node ast.NodeID) *ast.Ty {
	t := b.ty(&ast.PathTy{Path: &ast.Path{Segments: []string{"extern"}}})
	t.Kind.(*ast.PathTy).RefID = t.ID
	b.Defs[t.ID] = resolve.Def{Kind: resolve.DefTy, ID: ast.DefID{Crate: crate, Node: node}}
	return t
}

// PrimTy builds a path type bound to a primitive.
func (b *Builder) PrimTy(name string, args ...*ast.Ty) *ast.Ty {
	t := b.ty(&ast.PathTy{Path: &ast.Path{Segments: []string{name}, Types: args}})
	t.Kind.(*ast.PathTy).RefID = t.ID
	b.Defs[t.ID] = resolve.Def{Kind: resolve.DefPrimTy, Prim: resolve.PrimTy(name)}
	return t
}

// UnboundTy builds a path type with no binding.
func (b *Builder) UnboundTy(name string, args ...*ast.Ty) *ast.Ty {
	t := b.ty(&ast.PathTy{Path: &ast.Path{Segments: []string{name}, Types: args}})
	t.Kind.(*ast.PathTy).RefID = t.ID
	return t
}

// PtrTy builds a raw pointer type.
func (b *Builder) PtrTy(elem *ast.Ty) *ast.Ty {
	return b.ty(&ast.PtrTy{Elem: elem})
}

// TupleTy builds a tuple type.
func (b *Builder) TupleTy(elems ...*ast.Ty) *ast.Ty {
	return b.ty(&ast.TupleTy{Elems: elems})
}

// FnTy builds a function type.
func (b *Builder) FnTy(output *ast.Ty, inputs ...*ast.Ty) *ast.Ty {
	decl := &ast.FnDecl{Output: output}
	for _, in := range inputs {
		decl.Inputs = append(decl.Inputs, &ast.Param{ID: b.ID(), Ty: in})
	}
	return b.ty(&ast.FnTy{Decl: decl})
}

// Export declares an explicit export list for mod, which may be empty.
func (b *Builder) Export(mod ast.NodeID, targets ...ast.NodeID) {
	list := []resolve.Export{}
	for _, t := range targets {
		list = append(list, resolve.Export{Name: fmt.Sprintf("e%d", t), ID: ast.LocalDefID(t)})
	}
	b.Exports[mod] = list
}

// ExportDef appends an arbitrary definition to mod's export list.
func (b *Builder) ExportDef(mod ast.NodeID, id ast.DefID) {
	b.Exports[mod] = append(b.Exports[mod], resolve.Export{Name: fmt.Sprintf("e%d", id.Node), ID: id, Reexport: !id.IsLocal()})
}

// Crate builds a crate whose root module holds items.
func (b *Builder) Crate(items ...*ast.Item) *ast.Crate {
	return &ast.Crate{Name: "test", Module: &ast.Mod{Items: items}, Span: ast.Span{File: SpanFile}}
}

// Map indexes c and fails the test on error.
func Map(t testing.TB, c *ast.Crate) *ast.Map {
	t.Helper()
	m, err := ast.MapCrate(c)
	if err != nil {
		t.Fatalf("MapCrate: %v", err)
	}
	return m
}
