package ast

// Expr is a surface term expression.
type Expr interface {
	isExpr()
	String() string
}

// Var references a bound or pattern variable by name.
type Var struct {
	Name Symbol
}

// Lit wraps a literal constant.
type Lit struct {
	Value Literal
}

// Call applies a function or primitive to argument expressions.
type Call struct {
	Func Symbol
	Args []Expr
}

func (*Var) isExpr()  {}
func (*Lit) isExpr()  {}
func (*Call) isExpr() {}

// NewVar is a convenience constructor used heavily by the lowering passes.
func NewVar(name Symbol) *Var { return &Var{Name: name} }

// NewCall builds a call expression over already-built children.
func NewCall(fn Symbol, args ...Expr) *Call { return &Call{Func: fn, Args: args} }
