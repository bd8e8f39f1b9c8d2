package ast

// The normalized forms mirror the flat forms at the program level. They are
// what the matching engine and the proof instrumenter consume: every rule is
// flat, every top-level action is flat, and each command carries the id of
// the typechecking context it was checked under.

// NormExpr is a call with variable arguments. Literals never appear here;
// they are bound by NormAssignLit / NormLetLit first.
type NormExpr struct {
	Func Symbol
	Args []Symbol
}

// NormFact is one atom of a normalized rule body.
type NormFact interface {
	isNormFact()
	ToFact() Fact
	String() string
}

type NormAssign struct {
	Var  Symbol
	Expr NormExpr
}

type NormAssignLit struct {
	Var Symbol
	Lit Literal
}

type NormConstrainEq struct {
	Lhs Symbol
	Rhs Symbol
}

func (*NormAssign) isNormFact()      {}
func (*NormAssignLit) isNormFact()   {}
func (*NormConstrainEq) isNormFact() {}

// NormAction is one atom of a normalized rule head or a normalized top-level
// action.
type NormAction interface {
	isNormAction()
	ToAction() Action
	String() string
}

type NormLet struct {
	Var  Symbol
	Expr NormExpr
}

type NormLetVar struct {
	Var Symbol
	Val Symbol
}

type NormLetLit struct {
	Var Symbol
	Lit Literal
}

type NormSet struct {
	Expr  NormExpr
	Value Symbol
}

type NormDelete struct {
	Expr NormExpr
}

type NormUnion struct {
	Lhs Symbol
	Rhs Symbol
}

type NormPanic struct {
	Msg string
}

func (*NormLet) isNormAction()    {}
func (*NormLetVar) isNormAction() {}
func (*NormLetLit) isNormAction() {}
func (*NormSet) isNormAction()    {}
func (*NormDelete) isNormAction() {}
func (*NormUnion) isNormAction()  {}
func (*NormPanic) isNormAction()  {}

// NormRule is a rule in normalized form.
type NormRule struct {
	Body []NormFact
	Head []NormAction
}

// NormRunConfig is RunConfig with normalized until-facts.
type NormRunConfig struct {
	Ruleset Symbol
	Limit   int
	Until   []NormFact
}

// NormCmd enumerates the normalized command forms.
type NormCmd interface {
	isNormCmd()
	String() string
}

type NormSort struct {
	Name    Symbol
	Presort Symbol
	Args    []Expr
}

type NormFunction struct {
	Decl FunctionDecl
}

type NormDeclare struct {
	Name Symbol
	Sort Symbol
}

type NormRuleCmd struct {
	Ruleset Symbol
	Name    Symbol
	Rule    NormRule
}

type NormActionCmd struct {
	Action NormAction
}

type NormRunCmd struct {
	Config NormRunConfig
}

type NormCheck struct {
	Facts []NormFact
}

type NormPush struct {
	N int
}

type NormPop struct {
	N int
}

type NormRulesetCmd struct {
	Name Symbol
}

type NormSetOption struct {
	Name  Symbol
	Value Expr
}

func (*NormSort) isNormCmd()       {}
func (*NormFunction) isNormCmd()   {}
func (*NormDeclare) isNormCmd()    {}
func (*NormRuleCmd) isNormCmd()    {}
func (*NormActionCmd) isNormCmd()  {}
func (*NormRunCmd) isNormCmd()     {}
func (*NormCheck) isNormCmd()      {}
func (*NormPush) isNormCmd()       {}
func (*NormPop) isNormCmd()        {}
func (*NormRulesetCmd) isNormCmd() {}
func (*NormSetOption) isNormCmd()  {}

// NormCommand tags a normalized command with the id of its typechecking
// context. Ids increase strictly in program order.
type NormCommand struct {
	ID  int
	Cmd NormCmd
}
