package ast

// Block is a sequence of statements with an optional tail expression.
type Block struct {
	ID    NodeID
	Stmts []*Stmt
	Expr  *Expr
	Span  Span
}

// NodeID returns the block's id.
func (b *Block) NodeID() NodeID { return b.ID }

// Stmt is a statement.
type Stmt struct {
	ID   NodeID
	Span Span
	Kind StmtKind
}

// NodeID returns the statement's id.
func (s *Stmt) NodeID() NodeID { return s.ID }

// StmtKind is implemented by every statement variant.
type StmtKind interface {
	isStmtKind()
}

// LocalStmt is a `let` binding.
type LocalStmt struct {
	Pat  *Pat
	Ty   *Ty
	Init *Expr
}

// ItemStmt is an item declared inside a block.
type ItemStmt struct {
	Item *Item
}

// ExprStmt is an expression statement; Semi marks a trailing semicolon.
type ExprStmt struct {
	Expr *Expr
	Semi bool
}

func (*LocalStmt) isStmtKind() {}
func (*ItemStmt) isStmtKind()  {}
func (*ExprStmt) isStmtKind()  {}

// Expr is an expression.
type Expr struct {
	ID   NodeID
	Span Span
	Kind ExprKind
}

// NodeID returns the expression's id.
func (e *Expr) NodeID() NodeID { return e.ID }

// ExprKind is implemented by every expression variant.
type ExprKind interface {
	isExprKind()
}

// PathExpr names a value: a function, constant, variant, local or argument.
type PathExpr struct {
	Path *Path
}

// FieldExpr is a field access or a method selection; method calls are
// CallExpr values whose callee is a FieldExpr.
type FieldExpr struct {
	Receiver *Expr
	Field    string
	Types    []*Ty
}

// CallExpr is a call.
type CallExpr struct {
	Callee *Expr
	Args   []*Expr
}

// LitKind classifies literals.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitStr
	LitBool
	LitChar
	LitNil
)

// LitExpr is a literal.
type LitExpr struct {
	Kind  LitKind
	Value string
}

// UnaryExpr is a prefix operation.
type UnaryExpr struct {
	Op      string
	Operand *Expr
}

// BinaryExpr is an infix operation.
type BinaryExpr struct {
	Op  string
	Lhs *Expr
	Rhs *Expr
}

// AssignExpr is an assignment; Op is empty for plain `=`.
type AssignExpr struct {
	Op  string
	Lhs *Expr
	Rhs *Expr
}

// CastExpr is `expr as ty`.
type CastExpr struct {
	Expr *Expr
	Ty   *Ty
}

// IfExpr is a conditional; Else is nil, a BlockExpr or another IfExpr.
type IfExpr struct {
	Cond *Expr
	Then *Block
	Else *Expr
}

// WhileExpr is a while loop.
type WhileExpr struct {
	Cond *Expr
	Body *Block
}

// LoopExpr is an unconditional loop.
type LoopExpr struct {
	Body *Block
}

// MatchExpr is a match.
type MatchExpr struct {
	Scrutinee *Expr
	Arms      []*Arm
}

// Arm is a match arm.
type Arm struct {
	Pats  []*Pat
	Guard *Expr
	Body  *Block
}

// BlockExpr is a block in expression position.
type BlockExpr struct {
	Block *Block
}

// ClosureExpr is a closure.
type ClosureExpr struct {
	Decl *FnDecl
	Body *Block
}

// TupleExpr is a tuple constructor.
type TupleExpr struct {
	Elems []*Expr
}

// VecExpr is a vector literal.
type VecExpr struct {
	Elems []*Expr
}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	Base  *Expr
	Index *Expr
}

// FieldInit is one `name: expr` of a struct literal.
type FieldInit struct {
	Name string
	Expr *Expr
}

// StructExpr is a struct literal. Its path is not a value reference.
type StructExpr struct {
	Path   *Path
	Fields []*FieldInit
	Base   *Expr
}

// ReturnExpr is `return` with an optional value.
type ReturnExpr struct {
	Value *Expr
}

// BreakExpr is `break`.
type BreakExpr struct{}

// ContinueExpr is `loop`/`continue`.
type ContinueExpr struct{}

// AddrOfExpr is `&expr` or `&mut expr`.
type AddrOfExpr struct {
	Mutable bool
	Expr    *Expr
}

func (*PathExpr) isExprKind()     {}
func (*FieldExpr) isExprKind()    {}
func (*CallExpr) isExprKind()     {}
func (*LitExpr) isExprKind()      {}
func (*UnaryExpr) isExprKind()    {}
func (*BinaryExpr) isExprKind()   {}
func (*AssignExpr) isExprKind()   {}
func (*CastExpr) isExprKind()     {}
func (*IfExpr) isExprKind()       {}
func (*WhileExpr) isExprKind()    {}
func (*LoopExpr) isExprKind()     {}
func (*MatchExpr) isExprKind()    {}
func (*BlockExpr) isExprKind()    {}
func (*ClosureExpr) isExprKind()  {}
func (*TupleExpr) isExprKind()    {}
func (*VecExpr) isExprKind()      {}
func (*IndexExpr) isExprKind()    {}
func (*StructExpr) isExprKind()   {}
func (*ReturnExpr) isExprKind()   {}
func (*BreakExpr) isExprKind()    {}
func (*ContinueExpr) isExprKind() {}
func (*AddrOfExpr) isExprKind()   {}

// Pat is a pattern.
type Pat struct {
	ID   NodeID
	Span Span
	Kind PatKind
}

// NodeID returns the pattern's id.
func (p *Pat) NodeID() NodeID { return p.ID }

// PatKind is implemented by every pattern variant.
type PatKind interface {
	isPatKind()
}

// WildPat is `_`.
type WildPat struct{}

// IdentPat binds a name, optionally `name @ sub`.
type IdentPat struct {
	Name string
	Sub  *Pat
}

// LitPat matches a literal value.
type LitPat struct {
	Expr *Expr
}

// RangePat matches `lo .. hi`.
type RangePat struct {
	Lo *Expr
	Hi *Expr
}

// EnumPat matches a variant, `Path(args...)`.
type EnumPat struct {
	Path *Path
	Args []*Pat
}

// TuplePat matches a tuple.
type TuplePat struct {
	Elems []*Pat
}

func (*WildPat) isPatKind()  {}
func (*IdentPat) isPatKind() {}
func (*LitPat) isPatKind()   {}
func (*RangePat) isPatKind() {}
func (*EnumPat) isPatKind()  {}
func (*TuplePat) isPatKind() {}
