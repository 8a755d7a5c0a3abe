package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/panbanda/reachable/pkg/ast"
	"github.com/panbanda/reachable/pkg/reachable"
	"github.com/panbanda/reachable/pkg/resolve"
)

// Unit is a document converted into the item tree and resolution tables.
type Unit struct {
	Name    string
	File    string
	Crate   *ast.Crate
	Map     *ast.Map
	Defs    resolve.DefMap
	Exports resolve.ExportMap
	Methods resolve.MethodMap
}

// Inputs returns the tables in the shape the reachability pass takes.
func (u *Unit) Inputs() reachable.Inputs {
	return reachable.Inputs{
		Items:   u.Map,
		Exports: u.Exports,
		Defs:    u.Defs,
		Methods: u.Methods,
	}
}

// Build converts doc. It fails on unknown kinds, malformed table keys, node
// id 0 anywhere but the crate root, and ids used twice.
func Build(doc *Document) (*Unit, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	b := &builder{file: doc.File, seen: make(map[ast.NodeID]string)}

	crate := &ast.Crate{
		Name:   doc.Name,
		Module: &ast.Mod{Items: b.items(doc.Items)},
		Span:   ast.Span{File: doc.File},
	}
	unit := &Unit{
		Name:    doc.Name,
		File:    doc.File,
		Crate:   crate,
		Exports: b.exports(doc.Exports),
		Defs:    b.defs(doc.Defs),
		Methods: b.methods(doc.Methods),
	}
	if b.err != nil {
		return nil, b.err
	}

	m, err := ast.MapCrate(crate)
	if err != nil {
		return nil, fmt.Errorf("index item tree: %w", err)
	}
	unit.Map = m
	return unit, nil
}

type builder struct {
	file string
	seen map[ast.NodeID]string
	err  error
}

func (b *builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// claim registers a required node id.
func (b *builder) claim(id uint32, what string) ast.NodeID {
	nid := ast.NodeID(id)
	if nid == ast.CrateNodeID {
		b.fail("%s: node id 0 is reserved for the crate root", what)
		return nid
	}
	if prev, dup := b.seen[nid]; dup {
		b.fail("duplicate node id %d (%s and %s)", id, prev, what)
		return nid
	}
	b.seen[nid] = what
	return nid
}

// optional registers an id that may be omitted.
func (b *builder) optional(id uint32, what string) ast.NodeID {
	if id == 0 {
		return 0
	}
	return b.claim(id, what)
}

func (b *builder) span(s *ast.Span) ast.Span {
	if s == nil {
		return ast.Span{File: b.file}
	}
	out := *s
	if out.File == "" {
		out.File = b.file
	}
	return out
}

func attrs(names []string) []ast.Attribute {
	if len(names) == 0 {
		return nil
	}
	out := make([]ast.Attribute, len(names))
	for i, n := range names {
		out[i] = ast.ParseAttribute(n)
	}
	return out
}

func generics(names []string) ast.Generics {
	var g ast.Generics
	for _, n := range names {
		g.TyParams = append(g.TyParams, &ast.TyParam{Name: n})
	}
	return g
}

func parsePath(s string) *ast.Path {
	p := &ast.Path{}
	if strings.HasPrefix(s, "::") {
		p.Global = true
		s = s[2:]
	}
	if s != "" {
		p.Segments = strings.Split(s, "::")
	}
	return p
}

func (b *builder) items(nodes []*ItemNode) []*ast.Item {
	out := make([]*ast.Item, 0, len(nodes))
	for _, n := range nodes {
		if it := b.item(n); it != nil {
			out = append(out, it)
		}
	}
	return out
}

func (b *builder) item(n *ItemNode) *ast.Item {
	if n == nil {
		b.fail("null item")
		return nil
	}
	what := fmt.Sprintf("%s %q", n.Kind, n.Name)
	it := &ast.Item{
		ID:    b.claim(n.ID, what),
		Name:  n.Name,
		Attrs: attrs(n.Attrs),
		Span:  b.span(n.Span),
	}
	g := generics(n.Generics)

	switch n.Kind {
	case "mod":
		it.Kind = &ast.Mod{Items: b.items(n.Items)}
	case "foreign_mod":
		fm := &ast.ForeignMod{ABI: n.ABI}
		for _, f := range n.Foreign {
			if fi := b.foreignItem(f); fi != nil {
				fm.Items = append(fm.Items, fi)
			}
		}
		it.Kind = fm
	case "fn":
		it.Kind = &ast.Fn{Generics: g, Decl: b.decl(n.Inputs, n.Output), Body: b.block(n.Body)}
	case "impl":
		impl := &ast.Impl{Generics: g, SelfTy: b.ty(n.Self), Methods: b.methodList(n.Methods)}
		if n.Trait != "" {
			impl.Trait = parsePath(n.Trait)
		}
		it.Kind = impl
	case "struct":
		s := &ast.Struct{Generics: g, Methods: b.methodList(n.Methods)}
		for _, f := range n.Fields {
			if f == nil {
				continue
			}
			s.Fields = append(s.Fields, &ast.StructField{
				ID:   b.optional(f.ID, "field "+f.Name),
				Name: f.Name,
				Ty:   b.ty(f.Ty),
			})
		}
		if d := n.Dtor; d != nil {
			s.Dtor = &ast.Dtor{
				ID:    b.claim(d.ID, "dtor of "+n.Name),
				Attrs: attrs(d.Attrs),
				Body:  b.block(d.Body),
				Span:  b.span(d.Span),
			}
		}
		it.Kind = s
	case "type":
		it.Kind = &ast.TyAlias{Generics: g, Ty: b.ty(n.Ty)}
	case "enum":
		e := &ast.Enum{Generics: g}
		for _, v := range n.Variants {
			if v == nil {
				continue
			}
			e.Variants = append(e.Variants, &ast.Variant{
				ID:   b.claim(v.ID, "variant "+v.Name),
				Name: v.Name,
				Args: b.tys(v.Args),
				Disr: b.expr(v.Disr),
				Span: b.span(v.Span),
			})
		}
		it.Kind = e
	case "trait":
		tr := &ast.Trait{Generics: g}
		for _, m := range n.Methods {
			if m == nil {
				continue
			}
			tr.Methods = append(tr.Methods, &ast.TraitMethod{
				ID:       b.claim(m.ID, "trait method "+m.Name),
				Name:     m.Name,
				Attrs:    attrs(m.Attrs),
				Generics: generics(m.Generics),
				Decl:     b.decl(m.Inputs, m.Output),
				Body:     b.block(m.Body),
				Span:     b.span(m.Span),
			})
		}
		it.Kind = tr
	case "const":
		it.Kind = &ast.Const{Ty: b.ty(n.Ty), Expr: b.expr(n.Expr)}
	case "macro":
		it.Kind = &ast.MacroInvocation{Path: parsePath(n.Path), Tokens: n.Tokens}
	default:
		b.fail("item %d: unknown item kind %q", n.ID, n.Kind)
		return nil
	}
	return it
}

func (b *builder) methodList(nodes []*MethodNode) []*ast.Method {
	if nodes == nil {
		return nil
	}
	out := make([]*ast.Method, 0, len(nodes))
	for _, m := range nodes {
		if m == nil {
			continue
		}
		out = append(out, &ast.Method{
			ID:       b.claim(m.ID, "method "+m.Name),
			Name:     m.Name,
			Attrs:    attrs(m.Attrs),
			Generics: generics(m.Generics),
			Decl:     b.decl(m.Inputs, m.Output),
			Body:     b.block(m.Body),
			Span:     b.span(m.Span),
		})
	}
	return out
}

func (b *builder) foreignItem(n *ForeignNode) *ast.ForeignItem {
	if n == nil {
		return nil
	}
	fi := &ast.ForeignItem{
		ID:    b.claim(n.ID, "foreign item "+n.Name),
		Name:  n.Name,
		Attrs: attrs(n.Attrs),
		Span:  b.span(n.Span),
	}
	switch n.Kind {
	case "fn":
		fi.Kind = &ast.ForeignFn{Generics: generics(n.Generics), Decl: b.decl(n.Inputs, n.Output)}
	case "static":
		fi.Kind = &ast.ForeignStatic{Ty: b.ty(n.Ty), Mutable: n.Mutable}
	default:
		b.fail("foreign item %d: unknown kind %q", n.ID, n.Kind)
	}
	return fi
}

func (b *builder) decl(inputs []*ParamNode, output *TyNode) *ast.FnDecl {
	d := &ast.FnDecl{Output: b.ty(output)}
	for _, p := range inputs {
		if p == nil {
			continue
		}
		d.Inputs = append(d.Inputs, &ast.Param{
			ID:   b.optional(p.ID, "param "+p.Name),
			Name: p.Name,
			Ty:   b.ty(p.Ty),
		})
	}
	return d
}

func (b *builder) tys(nodes []*TyNode) []*ast.Ty {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*ast.Ty, 0, len(nodes))
	for _, n := range nodes {
		if t := b.ty(n); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (b *builder) ty(n *TyNode) *ast.Ty {
	if n == nil {
		return nil
	}
	t := &ast.Ty{ID: b.claim(n.ID, "type "+n.Kind), Span: b.span(n.Span)}
	switch n.Kind {
	case "path":
		p := parsePath(n.Path)
		p.Types = b.tys(n.Types)
		ref := t.ID
		if n.Ref != nil {
			ref = ast.NodeID(*n.Ref)
		}
		t.Kind = &ast.PathTy{Path: p, RefID: ref}
	case "ptr":
		t.Kind = &ast.PtrTy{Elem: b.ty(n.Elem), Mutable: n.Mutable}
	case "ref":
		t.Kind = &ast.RefTy{Elem: b.ty(n.Elem), Mutable: n.Mutable}
	case "box":
		t.Kind = &ast.BoxTy{Elem: b.ty(n.Elem)}
	case "slice":
		t.Kind = &ast.SliceTy{Elem: b.ty(n.Elem)}
	case "array":
		t.Kind = &ast.ArrayTy{Elem: b.ty(n.Elem), Len: n.Len}
	case "tuple":
		t.Kind = &ast.TupleTy{Elems: b.tys(n.Elems)}
	case "fn":
		d := &ast.FnDecl{Output: b.ty(n.Output)}
		for _, in := range n.Inputs {
			d.Inputs = append(d.Inputs, &ast.Param{Ty: b.ty(in)})
		}
		t.Kind = &ast.FnTy{Decl: d}
	case "nil":
		t.Kind = &ast.NilTy{}
	case "bot":
		t.Kind = &ast.BotTy{}
	case "infer":
		t.Kind = &ast.InferTy{}
	default:
		b.fail("type %d: unknown type kind %q", n.ID, n.Kind)
	}
	return t
}

func (b *builder) block(n *BlockNode) *ast.Block {
	if n == nil {
		return nil
	}
	blk := &ast.Block{ID: b.optional(n.ID, "block"), Span: b.span(n.Span)}
	for _, s := range n.Stmts {
		if st := b.stmt(s); st != nil {
			blk.Stmts = append(blk.Stmts, st)
		}
	}
	blk.Expr = b.expr(n.Expr)
	return blk
}

func (b *builder) stmt(n *StmtNode) *ast.Stmt {
	if n == nil {
		return nil
	}
	s := &ast.Stmt{ID: b.optional(n.ID, "statement"), Span: b.span(n.Span)}
	switch n.Kind {
	case "let":
		s.Kind = &ast.LocalStmt{Pat: b.pat(n.Pat), Ty: b.ty(n.Ty), Init: b.expr(n.Init)}
	case "item":
		s.Kind = &ast.ItemStmt{Item: b.item(n.Item)}
	case "expr":
		s.Kind = &ast.ExprStmt{Expr: b.expr(n.Expr)}
	case "semi":
		s.Kind = &ast.ExprStmt{Expr: b.expr(n.Expr), Semi: true}
	default:
		b.fail("statement: unknown kind %q", n.Kind)
		return nil
	}
	return s
}

func (b *builder) exprs(nodes []*ExprNode) []*ast.Expr {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*ast.Expr, 0, len(nodes))
	for _, n := range nodes {
		if e := b.expr(n); e != nil {
			out = append(out, e)
		}
	}
	return out
}

var litKinds = map[string]ast.LitKind{
	"":      ast.LitInt,
	"int":   ast.LitInt,
	"float": ast.LitFloat,
	"str":   ast.LitStr,
	"bool":  ast.LitBool,
	"char":  ast.LitChar,
	"nil":   ast.LitNil,
}

func (b *builder) expr(n *ExprNode) *ast.Expr {
	if n == nil {
		return nil
	}
	e := &ast.Expr{ID: b.claim(n.ID, "expr "+n.Kind), Span: b.span(n.Span)}
	switch n.Kind {
	case "path":
		p := parsePath(n.Path)
		p.Types = b.tys(n.Types)
		e.Kind = &ast.PathExpr{Path: p}
	case "field":
		e.Kind = &ast.FieldExpr{Receiver: b.expr(n.Receiver), Field: n.Field, Types: b.tys(n.Types)}
	case "call":
		e.Kind = &ast.CallExpr{Callee: b.expr(n.Callee), Args: b.exprs(n.Args)}
	case "lit":
		lk, ok := litKinds[n.Lit]
		if !ok {
			b.fail("expr %d: unknown literal kind %q", n.ID, n.Lit)
		}
		e.Kind = &ast.LitExpr{Kind: lk, Value: n.Value}
	case "unary":
		e.Kind = &ast.UnaryExpr{Op: n.Op, Operand: b.expr(n.Operand)}
	case "binary":
		e.Kind = &ast.BinaryExpr{Op: n.Op, Lhs: b.expr(n.Lhs), Rhs: b.expr(n.Rhs)}
	case "assign":
		e.Kind = &ast.AssignExpr{Op: n.Op, Lhs: b.expr(n.Lhs), Rhs: b.expr(n.Rhs)}
	case "cast":
		e.Kind = &ast.CastExpr{Expr: b.expr(n.Expr), Ty: b.ty(n.Ty)}
	case "if":
		e.Kind = &ast.IfExpr{Cond: b.expr(n.Cond), Then: b.block(n.Then), Else: b.expr(n.Else)}
	case "while":
		e.Kind = &ast.WhileExpr{Cond: b.expr(n.Cond), Body: b.block(n.Body)}
	case "loop":
		e.Kind = &ast.LoopExpr{Body: b.block(n.Body)}
	case "match":
		m := &ast.MatchExpr{Scrutinee: b.expr(n.Scrutinee)}
		for _, a := range n.Arms {
			if a == nil {
				continue
			}
			arm := &ast.Arm{Guard: b.expr(a.Guard), Body: b.block(a.Body)}
			for _, p := range a.Pats {
				if pat := b.pat(p); pat != nil {
					arm.Pats = append(arm.Pats, pat)
				}
			}
			m.Arms = append(m.Arms, arm)
		}
		e.Kind = m
	case "block":
		e.Kind = &ast.BlockExpr{Block: b.block(n.Block)}
	case "closure":
		e.Kind = &ast.ClosureExpr{Decl: b.decl(n.Inputs, nil), Body: b.block(n.Body)}
	case "tuple":
		e.Kind = &ast.TupleExpr{Elems: b.exprs(n.Elems)}
	case "vec":
		e.Kind = &ast.VecExpr{Elems: b.exprs(n.Elems)}
	case "index":
		e.Kind = &ast.IndexExpr{Base: b.expr(n.Base), Index: b.expr(n.Index)}
	case "struct":
		s := &ast.StructExpr{Path: parsePath(n.Path), Base: b.expr(n.Base)}
		for _, f := range n.Fields {
			if f != nil {
				s.Fields = append(s.Fields, &ast.FieldInit{Name: f.Name, Expr: b.expr(f.Expr)})
			}
		}
		e.Kind = s
	case "return":
		e.Kind = &ast.ReturnExpr{Value: b.expr(n.Expr)}
	case "break":
		e.Kind = &ast.BreakExpr{}
	case "continue":
		e.Kind = &ast.ContinueExpr{}
	case "addr_of":
		e.Kind = &ast.AddrOfExpr{Mutable: n.Mutable, Expr: b.expr(n.Expr)}
	default:
		b.fail("expr %d: unknown expression kind %q", n.ID, n.Kind)
	}
	return e
}

func (b *builder) pats(nodes []*PatNode) []*ast.Pat {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*ast.Pat, 0, len(nodes))
	for _, n := range nodes {
		if p := b.pat(n); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (b *builder) pat(n *PatNode) *ast.Pat {
	if n == nil {
		return nil
	}
	p := &ast.Pat{ID: b.optional(n.ID, "pattern"), Span: b.span(n.Span)}
	switch n.Kind {
	case "wild":
		p.Kind = &ast.WildPat{}
	case "ident":
		p.Kind = &ast.IdentPat{Name: n.Name, Sub: b.pat(n.Sub)}
	case "lit":
		p.Kind = &ast.LitPat{Expr: b.expr(n.Expr)}
	case "range":
		p.Kind = &ast.RangePat{Lo: b.expr(n.Lo), Hi: b.expr(n.Hi)}
	case "enum":
		p.Kind = &ast.EnumPat{Path: parsePath(n.Path), Args: b.pats(n.Args)}
	case "tuple":
		p.Kind = &ast.TuplePat{Elems: b.pats(n.Elems)}
	default:
		b.fail("pattern: unknown kind %q", n.Kind)
		return nil
	}
	return p
}

func (b *builder) key(table, k string) (ast.NodeID, bool) {
	v, err := strconv.ParseUint(k, 10, 32)
	if err != nil {
		b.fail("%s: malformed node id key %q", table, k)
		return 0, false
	}
	return ast.NodeID(v), true
}

// sortedKeys keeps error reporting deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *builder) exports(m map[string][]ExportNode) resolve.ExportMap {
	out := make(resolve.ExportMap, len(m))
	for _, k := range sortedKeys(m) {
		mod, ok := b.key("exports", k)
		if !ok {
			continue
		}
		list := make([]resolve.Export, 0, len(m[k]))
		for _, e := range m[k] {
			list = append(list, resolve.Export{
				Name:     e.Name,
				ID:       ast.DefID{Crate: ast.CrateNum(e.Crate), Node: ast.NodeID(e.Node)},
				Reexport: e.Reexport,
			})
		}
		out[mod] = list
	}
	return out
}

func (b *builder) defs(m map[string]DefNode) resolve.DefMap {
	out := make(resolve.DefMap, len(m))
	for _, k := range sortedKeys(m) {
		id, ok := b.key("defs", k)
		if !ok {
			continue
		}
		d := m[k]
		kind, err := resolve.ParseDefKind(d.Kind)
		if err != nil {
			b.fail("defs[%s]: %v", k, err)
			continue
		}
		out[id] = resolve.Def{
			Kind: kind,
			ID:   ast.DefID{Crate: ast.CrateNum(d.Crate), Node: ast.NodeID(d.Node)},
			Prim: resolve.PrimTy(d.Prim),
		}
	}
	return out
}

func (b *builder) methods(m map[string]OriginNode) resolve.MethodMap {
	out := make(resolve.MethodMap, len(m))
	for _, k := range sortedKeys(m) {
		id, ok := b.key("methods", k)
		if !ok {
			continue
		}
		o := m[k]
		kind, err := resolve.ParseOriginKind(o.Origin)
		if err != nil {
			b.fail("methods[%s]: %v", k, err)
			continue
		}
		out[id] = resolve.MethodOrigin{
			Kind: kind,
			ID:   ast.DefID{Crate: ast.CrateNum(o.Crate), Node: ast.NodeID(o.Node)},
		}
	}
	return out
}
