package reachable

import "github.com/panbanda/reachable/pkg/ast"

// walkBody follows the references of a body whose code other crates may
// inline or instantiate. Path expressions must be bound. Types are not
// marked; items declared in the body are traversed as items and not entered.
func (t *traversal) walkBody(owner ast.NodeID, body *ast.Block) error {
	if body == nil {
		return nil
	}
	var err error
	ast.Inspect(body, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.Item:
			err = t.traverseItem(owner, n, ReasonNestedItem)
			return false
		case *ast.Ty:
			return false
		case *ast.Expr:
			err = t.visitExpr(owner, n)
			return err == nil
		}
		return true
	})
	return err
}

func (t *traversal) visitExpr(owner ast.NodeID, e *ast.Expr) error {
	switch e.Kind.(type) {
	case *ast.PathExpr:
		def, ok := t.in.Defs.Lookup(e.ID)
		if !ok {
			return unboundPath(e)
		}
		if did, ok := def.DefID(); ok {
			return t.traverseDefID(owner, did, ReasonBodyRef)
		}
	case *ast.FieldExpr:
		origin, ok := t.in.Methods.Origin(e.ID)
		if !ok {
			return nil
		}
		if did, ok := origin.Static(); ok {
			return t.traverseDefID(owner, did, ReasonMethodCall)
		}
	}
	return nil
}
