package reachable

import "github.com/panbanda/reachable/pkg/ast"

// traverseTy marks a type expression and follows the definitions it names.
// Primitive types resolve to nothing; an unbound path type is skipped.
func (t *traversal) traverseTy(from ast.NodeID, ty *ast.Ty, why Reason) error {
	if ty == nil || !t.mark(from, ty.ID, why) {
		return nil
	}

	switch k := ty.Kind.(type) {
	case *ast.PathTy:
		if def, ok := t.in.Defs.Lookup(k.RefID); ok {
			if did, ok := def.DefID(); ok {
				if err := t.traverseDefID(ty.ID, did, ReasonTypeRef); err != nil {
					return err
				}
			}
		}
		if k.Path != nil {
			return t.traverseTys(ty.ID, k.Path.Types)
		}
	case *ast.PtrTy:
		return t.traverseTy(ty.ID, k.Elem, ReasonType)
	case *ast.RefTy:
		return t.traverseTy(ty.ID, k.Elem, ReasonType)
	case *ast.BoxTy:
		return t.traverseTy(ty.ID, k.Elem, ReasonType)
	case *ast.SliceTy:
		return t.traverseTy(ty.ID, k.Elem, ReasonType)
	case *ast.ArrayTy:
		return t.traverseTy(ty.ID, k.Elem, ReasonType)
	case *ast.TupleTy:
		return t.traverseTys(ty.ID, k.Elems)
	case *ast.FnTy:
		if k.Decl == nil {
			return nil
		}
		for _, p := range k.Decl.Inputs {
			if p == nil {
				continue
			}
			if err := t.traverseTy(ty.ID, p.Ty, ReasonType); err != nil {
				return err
			}
		}
		return t.traverseTy(ty.ID, k.Decl.Output, ReasonType)
	case *ast.NilTy, *ast.BotTy, *ast.InferTy:
	}
	return nil
}

func (t *traversal) traverseTys(from ast.NodeID, tys []*ast.Ty) error {
	for _, ty := range tys {
		if err := t.traverseTy(from, ty, ReasonType); err != nil {
			return err
		}
	}
	return nil
}
