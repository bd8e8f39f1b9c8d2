package ast

// Fact is one condition in a rule body or check.
type Fact interface {
	isFact()
	String() string
}

// EqFact asserts that its expressions denote equal values. The parser only
// produces two-sided equalities; other arities are a programmer error.
type EqFact struct {
	Exprs []Expr
}

// ExprFact matches an expression that must be present in the database,
// without binding a visible name to it.
type ExprFact struct {
	Expr Expr
}

func (*EqFact) isFact()   {}
func (*ExprFact) isFact() {}
