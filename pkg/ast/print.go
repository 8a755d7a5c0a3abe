package ast

import (
	"strconv"
	"strings"
)

// PathString renders a path with its type arguments, e.g. "std::vec<int>".
func PathString(p *Path) string {
	if p == nil {
		return "<nil>"
	}
	var b strings.Builder
	writePath(&b, p)
	return b.String()
}

// TyString renders a type expression.
func TyString(t *Ty) string {
	var b strings.Builder
	writeTy(&b, t)
	return b.String()
}

// ExprString renders an expression. Blocks are elided.
func ExprString(e *Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writePath(b *strings.Builder, p *Path) {
	if p.Global {
		b.WriteString("::")
	}
	b.WriteString(strings.Join(p.Segments, "::"))
	if len(p.Types) > 0 {
		b.WriteByte('<')
		for i, t := range p.Types {
			if i > 0 {
				b.WriteString(", ")
			}
			writeTy(b, t)
		}
		b.WriteByte('>')
	}
}

func writeDecl(b *strings.Builder, d *FnDecl) {
	b.WriteString("fn(")
	if d != nil {
		for i, p := range d.Inputs {
			if i > 0 {
				b.WriteString(", ")
			}
			if p == nil {
				b.WriteString("_")
				continue
			}
			writeTy(b, p.Ty)
		}
	}
	b.WriteByte(')')
	if d != nil && d.Output != nil {
		if _, unit := d.Output.Kind.(*NilTy); !unit {
			b.WriteString(" -> ")
			writeTy(b, d.Output)
		}
	}
}

func writeTy(b *strings.Builder, t *Ty) {
	if t == nil {
		b.WriteString("_")
		return
	}
	switch k := t.Kind.(type) {
	case *PathTy:
		if k.Path == nil {
			b.WriteString("<path>")
			return
		}
		writePath(b, k.Path)
	case *PtrTy:
		b.WriteString("*")
		if k.Mutable {
			b.WriteString("mut ")
		}
		writeTy(b, k.Elem)
	case *RefTy:
		b.WriteString("&")
		if k.Mutable {
			b.WriteString("mut ")
		}
		writeTy(b, k.Elem)
	case *BoxTy:
		b.WriteString("~")
		writeTy(b, k.Elem)
	case *SliceTy:
		b.WriteByte('[')
		writeTy(b, k.Elem)
		b.WriteByte(']')
	case *ArrayTy:
		b.WriteByte('[')
		writeTy(b, k.Elem)
		b.WriteString("; ")
		b.WriteString(strconv.FormatUint(k.Len, 10))
		b.WriteByte(']')
	case *TupleTy:
		b.WriteByte('(')
		for i, el := range k.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeTy(b, el)
		}
		b.WriteByte(')')
	case *FnTy:
		writeDecl(b, k.Decl)
	case *NilTy:
		b.WriteString("()")
	case *BotTy:
		b.WriteString("!")
	case *InferTy:
		b.WriteString("_")
	default:
		b.WriteString("<type>")
	}
}

func writeExprs(b *strings.Builder, es []*Expr) {
	for i, e := range es {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, e)
	}
}

func writeExpr(b *strings.Builder, e *Expr) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	switch k := e.Kind.(type) {
	case *PathExpr:
		if k.Path == nil {
			b.WriteString("<path>")
			return
		}
		writePath(b, k.Path)
	case *FieldExpr:
		writeExpr(b, k.Receiver)
		b.WriteByte('.')
		b.WriteString(k.Field)
	case *CallExpr:
		writeExpr(b, k.Callee)
		b.WriteByte('(')
		writeExprs(b, k.Args)
		b.WriteByte(')')
	case *LitExpr:
		switch k.Kind {
		case LitStr:
			b.WriteString(strconv.Quote(k.Value))
		case LitChar:
			b.WriteString("'" + k.Value + "'")
		case LitNil:
			b.WriteString("()")
		default:
			b.WriteString(k.Value)
		}
	case *UnaryExpr:
		b.WriteString(k.Op)
		writeExpr(b, k.Operand)
	case *BinaryExpr:
		writeExpr(b, k.Lhs)
		b.WriteString(" " + k.Op + " ")
		writeExpr(b, k.Rhs)
	case *AssignExpr:
		writeExpr(b, k.Lhs)
		b.WriteString(" " + k.Op + "= ")
		writeExpr(b, k.Rhs)
	case *CastExpr:
		writeExpr(b, k.Expr)
		b.WriteString(" as ")
		writeTy(b, k.Ty)
	case *IfExpr:
		b.WriteString("if ")
		writeExpr(b, k.Cond)
		b.WriteString(" { .. }")
		if k.Else != nil {
			b.WriteString(" else { .. }")
		}
	case *WhileExpr:
		b.WriteString("while ")
		writeExpr(b, k.Cond)
		b.WriteString(" { .. }")
	case *LoopExpr:
		b.WriteString("loop { .. }")
	case *MatchExpr:
		b.WriteString("match ")
		writeExpr(b, k.Scrutinee)
		b.WriteString(" { .. }")
	case *BlockExpr:
		b.WriteString("{ .. }")
	case *ClosureExpr:
		b.WriteString("|..| { .. }")
	case *TupleExpr:
		b.WriteByte('(')
		writeExprs(b, k.Elems)
		b.WriteByte(')')
	case *VecExpr:
		b.WriteByte('[')
		writeExprs(b, k.Elems)
		b.WriteByte(']')
	case *IndexExpr:
		writeExpr(b, k.Base)
		b.WriteByte('[')
		writeExpr(b, k.Index)
		b.WriteByte(']')
	case *StructExpr:
		if k.Path != nil {
			writePath(b, k.Path)
		}
		b.WriteString(" { .. }")
	case *ReturnExpr:
		b.WriteString("return")
		if k.Value != nil {
			b.WriteByte(' ')
			writeExpr(b, k.Value)
		}
	case *BreakExpr:
		b.WriteString("break")
	case *ContinueExpr:
		b.WriteString("loop")
	case *AddrOfExpr:
		b.WriteString("&")
		if k.Mutable {
			b.WriteString("mut ")
		}
		writeExpr(b, k.Expr)
	default:
		b.WriteString("<expr>")
	}
}
