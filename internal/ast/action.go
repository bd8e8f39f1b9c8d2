package ast

// Action is one effect in a rule head or at the top level of a program.
type Action interface {
	isAction()
	String() string
}

// LetAction binds a name to the value of an expression.
type LetAction struct {
	Name Symbol
	Expr Expr
}

// SetAction writes a function table entry: (set (f args...) value).
type SetAction struct {
	Func  Symbol
	Args  []Expr
	Value Expr
}

// DeleteAction removes a function table entry.
type DeleteAction struct {
	Func Symbol
	Args []Expr
}

// UnionAction merges the equivalence classes of two terms.
type UnionAction struct {
	Lhs Expr
	Rhs Expr
}

// PanicAction aborts execution with a message.
type PanicAction struct {
	Msg string
}

// ExprAction evaluates an expression for its side effects, creating the term
// if it is absent.
type ExprAction struct {
	Expr Expr
}

func (*LetAction) isAction()    {}
func (*SetAction) isAction()    {}
func (*DeleteAction) isAction() {}
func (*UnionAction) isAction()  {}
func (*PanicAction) isAction()  {}
func (*ExprAction) isAction()   {}
