package reachable

import "github.com/panbanda/reachable/pkg/ast"

// retain traverses every impl and every struct with a destructor, wherever it
// is declared. Items declared as statements of function, method and
// destructor bodies count; items inside expressions do not.
func (t *traversal) retain() error {
	var keep []*ast.Item
	ast.InspectCrate(t.crate, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Expr, *ast.Ty:
			return false
		case *ast.Item:
			if retained(n) {
				keep = append(keep, n)
			}
		}
		return true
	})

	for _, it := range keep {
		if err := t.traverseItem(ast.CrateNodeID, it, ReasonRetention); err != nil {
			return err
		}
	}
	return nil
}

func retained(it *ast.Item) bool {
	switch k := it.Kind.(type) {
	case *ast.Impl:
		return true
	case *ast.Struct:
		return k.Dtor != nil
	}
	return false
}
