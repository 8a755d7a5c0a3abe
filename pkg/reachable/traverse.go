package reachable

import (
	"context"
	"log/slog"

	"github.com/panbanda/reachable/pkg/ast"
)

// traversal is the state of one closure computation over a single set.
type traversal struct {
	crate  *ast.Crate
	in     Inputs
	set    *Set
	tracer Tracer
	logger *slog.Logger
	trace  bool
}

// mark records the edge and inserts to. It reports whether to was new.
func (t *traversal) mark(from, to ast.NodeID, why Reason) bool {
	t.tracer.Reach(from, to, why)
	if !t.set.Insert(to) {
		return false
	}
	if t.trace {
		t.logger.LogAttrs(context.Background(), LevelTrace, "mark",
			slog.Uint64("node", uint64(to)),
			slog.Uint64("from", uint64(from)),
			slog.String("reason", why.String()))
	}
	return true
}

// traverseRoot walks the crate root like a module without marking it.
func (t *traversal) traverseRoot() error {
	found, err := t.traverseExports(ast.CrateNodeID)
	if err != nil || found {
		return err
	}
	for _, it := range t.crate.Module.Items {
		if err := t.traverseItem(ast.CrateNodeID, it, ReasonImplicitExport); err != nil {
			return err
		}
	}
	return nil
}

// traverseExports walks the explicit export list of mod and reports whether
// one exists. An empty list exports nothing.
func (t *traversal) traverseExports(mod ast.NodeID) (bool, error) {
	exports, ok := t.in.Exports.Exports(mod)
	if !ok {
		return false, nil
	}
	for _, ex := range exports {
		if err := t.traverseDefID(mod, ex.ID, ReasonExport); err != nil {
			return true, err
		}
	}
	return true, nil
}

// traverseDefID follows a definition reference. References to other crates
// and to ids the item tree does not know are ignored.
func (t *traversal) traverseDefID(from ast.NodeID, did ast.DefID, why Reason) error {
	if !did.IsLocal() {
		return nil
	}
	entry, ok := t.in.Items.Find(did.Node)
	if !ok {
		return nil
	}
	switch e := entry.(type) {
	case *ast.ItemEntry:
		return t.traverseItem(from, e.Item, why)
	case *ast.MethodEntry:
		if e.Parent != nil {
			return t.traverseItem(from, e.Parent, ReasonParent)
		}
	case *ast.ForeignItemEntry:
		t.mark(from, e.Item.ID, why)
	case *ast.VariantEntry:
		t.mark(from, e.Variant.ID, why)
	case *ast.TraitMethodEntry, *ast.DtorEntry, *ast.ExprEntry, *ast.TyEntry:
	}
	return nil
}

// traverseItem marks it and, the first time, what it drags along.
func (t *traversal) traverseItem(from ast.NodeID, it *ast.Item, why Reason) error {
	if it == nil || !t.mark(from, it.ID, why) {
		return nil
	}

	switch k := it.Kind.(type) {
	case *ast.Mod:
		found, err := t.traverseExports(it.ID)
		if err != nil || found {
			return err
		}
		for _, child := range k.Items {
			if err := t.traverseItem(it.ID, child, ReasonImplicitExport); err != nil {
				return err
			}
		}

	case *ast.ForeignMod:
		found, err := t.traverseExports(it.ID)
		if err != nil || found {
			return err
		}
		for _, fi := range k.Items {
			if fi != nil {
				t.mark(it.ID, fi.ID, ReasonForeignItem)
			}
		}

	case *ast.Fn:
		if k.Generics.Len() > 0 || ast.HasInline(it.Attrs) {
			return t.walkBody(it.ID, k.Body)
		}

	case *ast.Impl:
		implGeneric := k.Generics.Len() > 0
		for _, m := range k.Methods {
			if m == nil {
				continue
			}
			if implGeneric || m.Generics.Len() > 0 || ast.HasInline(m.Attrs) {
				t.mark(it.ID, m.ID, ReasonMethod)
				if err := t.walkBody(m.ID, m.Body); err != nil {
					return err
				}
			}
		}

	case *ast.Struct:
		generic := k.Generics.Len() > 0
		if d := k.Dtor; d != nil {
			t.mark(it.ID, d.ID, ReasonDtor)
			if generic || ast.HasInline(d.Attrs) {
				if err := t.walkBody(d.ID, d.Body); err != nil {
					return err
				}
			}
		}
		for _, m := range k.Methods {
			if m == nil {
				continue
			}
			t.mark(it.ID, m.ID, ReasonMethod)
			if generic || ast.HasInline(m.Attrs) {
				if err := t.walkBody(m.ID, m.Body); err != nil {
					return err
				}
			}
		}

	case *ast.TyAlias:
		return t.traverseTy(it.ID, k.Ty, ReasonType)

	case *ast.Const, *ast.Enum, *ast.Trait:

	case *ast.MacroInvocation:
		return unexpandedMacro(it)

	default:
		return invalidInput("item %d has no kind", it.ID)
	}
	return nil
}
