package ast

// Rule pairs a body of facts with a head of actions.
type Rule struct {
	Body []Fact
	Head []Action
	Name Symbol // optional user-supplied name; zero when anonymous
}

// Rewrite is sugar for a rule that unions a left-hand side with a right-hand
// side whenever the left-hand side (and the conditions) match.
type Rewrite struct {
	Lhs        Expr
	Rhs        Expr
	Conditions []Fact
}

// Variant is one constructor of a datatype declaration.
type Variant struct {
	Name  Symbol
	Types []Symbol
	Cost  *int64
}

// Schema gives the input and output sorts of a function.
type Schema struct {
	Input  []Symbol
	Output Symbol
}

// FunctionDecl declares a function table. A declaration without a merge
// expression is a plain table; with one it is a lattice-valued function whose
// merge expression may reference the variables old and new.
type FunctionDecl struct {
	Name        Symbol
	Schema      Schema
	Merge       Expr // nil for plain tables
	MergeAction []Action
	Default     Expr // nil when absent
	Cost        *int64
}

// RunConfig configures a (run ...) request.
type RunConfig struct {
	Ruleset Symbol
	Limit   int
	Until   []Fact // nil to run for the full limit
}

// Command is one top-level program form.
type Command interface {
	isCommand()
	String() string
}

// Datatype declares a sort together with constructor functions for each
// variant.
type Datatype struct {
	Name     Symbol
	Variants []Variant
}

// SortCmd declares a sort. Container sorts carry a presort name and its
// argument expressions, e.g. (sort MyMap (Map i64 i64)).
type SortCmd struct {
	Name    Symbol
	Presort Symbol // zero when this is a plain eq-sort
	Args    []Expr
}

// FunctionCmd declares a function table.
type FunctionCmd struct {
	Decl FunctionDecl
}

// RelationCmd is sugar for a unit-output function.
type RelationCmd struct {
	Name   Symbol
	Inputs []Symbol
}

// DeclareCmd introduces a named constant of the given sort.
type DeclareCmd struct {
	Name Symbol
	Sort Symbol
}

// RuleCmd attaches a surface rule to a ruleset.
type RuleCmd struct {
	Ruleset Symbol
	Rule    Rule
}

// FlatRuleCmd attaches an already-flattened rule to a ruleset. Produced by
// desugaring; never written by users.
type FlatRuleCmd struct {
	Ruleset Symbol
	Rule    FlatRule
	Name    Symbol
}

// RewriteCmd and BiRewriteCmd attach rewrites to a ruleset.
type RewriteCmd struct {
	Ruleset Symbol
	Rewrite Rewrite
}

type BiRewriteCmd struct {
	Ruleset Symbol
	Rewrite Rewrite
}

// IncludeCmd splices another program file in place.
type IncludeCmd struct {
	Path string
}

// RunCmd requests rule execution.
type RunCmd struct {
	Config RunConfig
}

// PushCmd and PopCmd scope database state.
type PushCmd struct {
	N int
}

type PopCmd struct {
	N int
}

// ActionCmd runs a single action at the top level.
type ActionCmd struct {
	Action Action
}

// CheckCmd asserts that facts hold in the current database.
type CheckCmd struct {
	Facts []Fact
}

// RulesetCmd registers a named ruleset.
type RulesetCmd struct {
	Name Symbol
}

// SetOptionCmd sets an engine option.
type SetOptionCmd struct {
	Name  Symbol
	Value Expr
}

func (*Datatype) isCommand()     {}
func (*SortCmd) isCommand()      {}
func (*FunctionCmd) isCommand()  {}
func (*RelationCmd) isCommand()  {}
func (*DeclareCmd) isCommand()   {}
func (*RuleCmd) isCommand()      {}
func (*FlatRuleCmd) isCommand()  {}
func (*RewriteCmd) isCommand()   {}
func (*BiRewriteCmd) isCommand() {}
func (*IncludeCmd) isCommand()   {}
func (*RunCmd) isCommand()       {}
func (*PushCmd) isCommand()      {}
func (*PopCmd) isCommand()       {}
func (*ActionCmd) isCommand()    {}
func (*CheckCmd) isCommand()     {}
func (*RulesetCmd) isCommand()   {}
func (*SetOptionCmd) isCommand() {}
