package ast

import "fmt"

// Entry is what the item tree knows about a node id.
type Entry interface {
	isEntry()
}

// ItemEntry is a top-level or nested item.
type ItemEntry struct {
	Item *Item
}

// MethodEntry is a method of an impl or struct. Parent is the owning item.
type MethodEntry struct {
	Method *Method
	Parent *Item
}

// TraitMethodEntry is a required or provided trait method.
type TraitMethodEntry struct {
	Method *TraitMethod
	Trait  *Item
}

// DtorEntry is a struct destructor.
type DtorEntry struct {
	Dtor   *Dtor
	Parent *Item
}

// ForeignItemEntry is a declaration inside a foreign module.
type ForeignItemEntry struct {
	Item   *ForeignItem
	Parent *Item
}

// VariantEntry is an enum variant.
type VariantEntry struct {
	Variant *Variant
	Enum    *Item
}

// ExprEntry is an expression.
type ExprEntry struct {
	Expr *Expr
}

// TyEntry is a type expression.
type TyEntry struct {
	Ty *Ty
}

func (*ItemEntry) isEntry()        {}
func (*MethodEntry) isEntry()      {}
func (*TraitMethodEntry) isEntry() {}
func (*DtorEntry) isEntry()        {}
func (*ForeignItemEntry) isEntry() {}
func (*VariantEntry) isEntry()     {}
func (*ExprEntry) isEntry()        {}
func (*TyEntry) isEntry()          {}

// Map indexes a crate by node id.
type Map struct {
	crate   *Crate
	entries map[NodeID]Entry
}

// MapCrate indexes every item, method, destructor, variant, foreign item,
// expression and type of c, including items declared inside bodies.
// A duplicated id is an error.
func MapCrate(c *Crate) (*Map, error) {
	m := &Map{crate: c, entries: make(map[NodeID]Entry)}
	if c == nil || c.Module == nil {
		return m, nil
	}

	var err error
	add := func(id NodeID, e Entry) bool {
		if id == CrateNodeID {
			err = fmt.Errorf("node id 0 is reserved for the crate root")
			return false
		}
		if _, dup := m.entries[id]; dup {
			err = fmt.Errorf("duplicate node id %d", id)
			return false
		}
		m.entries[id] = e
		return true
	}

	var visit func(Node) bool
	visit = func(n Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *Item:
			if !add(n.ID, &ItemEntry{Item: n}) {
				return false
			}
			switch k := n.Kind.(type) {
			case *Impl:
				for _, meth := range k.Methods {
					if meth != nil && !add(meth.ID, &MethodEntry{Method: meth, Parent: n}) {
						return false
					}
				}
			case *Struct:
				if k.Dtor != nil && !add(k.Dtor.ID, &DtorEntry{Dtor: k.Dtor, Parent: n}) {
					return false
				}
				for _, meth := range k.Methods {
					if meth != nil && !add(meth.ID, &MethodEntry{Method: meth, Parent: n}) {
						return false
					}
				}
			case *Trait:
				for _, meth := range k.Methods {
					if meth != nil && !add(meth.ID, &TraitMethodEntry{Method: meth, Trait: n}) {
						return false
					}
				}
			case *Enum:
				for _, v := range k.Variants {
					if v != nil && !add(v.ID, &VariantEntry{Variant: v, Enum: n}) {
						return false
					}
				}
			case *ForeignMod:
				for _, fi := range k.Items {
					if fi != nil && !add(fi.ID, &ForeignItemEntry{Item: fi, Parent: n}) {
						return false
					}
				}
			}
		case *Expr:
			return add(n.ID, &ExprEntry{Expr: n})
		case *Ty:
			return add(n.ID, &TyEntry{Ty: n})
		}
		return true
	}
	InspectCrate(c, visit)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Crate returns the indexed crate.
func (m *Map) Crate() *Crate { return m.crate }

// Len returns the number of indexed nodes.
func (m *Map) Len() int { return len(m.entries) }

// Find returns the entry for id.
func (m *Map) Find(id NodeID) (Entry, bool) {
	e, ok := m.entries[id]
	return e, ok
}

// Item returns the item with the given id, if id names an item.
func (m *Map) Item(id NodeID) (*Item, bool) {
	if ie, ok := m.entries[id].(*ItemEntry); ok {
		return ie.Item, true
	}
	return nil, false
}

// Description is a short human-readable label for a node.
type Description struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Span Span   `json:"span"`
}

// Describe labels id for reports. Unknown ids yield kind "unknown".
func (m *Map) Describe(id NodeID) Description {
	if id == CrateNodeID {
		name := "<crate>"
		var span Span
		if m.crate != nil {
			if m.crate.Name != "" {
				name = m.crate.Name
			}
			span = m.crate.Span
		}
		return Description{Kind: "crate", Name: name, Span: span}
	}
	e, ok := m.entries[id]
	if !ok {
		return Description{Kind: "unknown", Name: fmt.Sprintf("#%d", id)}
	}
	switch e := e.(type) {
	case *ItemEntry:
		return Description{Kind: KindName(e.Item.Kind), Name: e.Item.Name, Span: e.Item.Span}
	case *MethodEntry:
		return Description{Kind: "method", Name: qualify(e.Parent, e.Method.Name), Span: e.Method.Span}
	case *TraitMethodEntry:
		return Description{Kind: "trait method", Name: qualify(e.Trait, e.Method.Name), Span: e.Method.Span}
	case *DtorEntry:
		return Description{Kind: "dtor", Name: qualify(e.Parent, "drop"), Span: e.Dtor.Span}
	case *ForeignItemEntry:
		return Description{Kind: "foreign item", Name: e.Item.Name, Span: e.Item.Span}
	case *VariantEntry:
		return Description{Kind: "variant", Name: qualify(e.Enum, e.Variant.Name), Span: e.Variant.Span}
	case *ExprEntry:
		return Description{Kind: "expr", Name: ExprString(e.Expr), Span: e.Expr.Span}
	case *TyEntry:
		return Description{Kind: "type", Name: TyString(e.Ty), Span: e.Ty.Span}
	}
	return Description{Kind: "unknown", Name: fmt.Sprintf("#%d", id)}
}

func qualify(parent *Item, name string) string {
	if parent == nil || parent.Name == "" {
		return name
	}
	return parent.Name + "::" + name
}
