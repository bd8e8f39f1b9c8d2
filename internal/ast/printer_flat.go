package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Debug rendering for the flat and normalized forms. These are not surface
// syntax; diagnostics and tests read them, the parser never does.

func (e *SSALit) String() string { return e.Value.String() }

func (e *SSACall) String() string {
	return "(" + e.Func.String() + prefixedSymbols(e.Args) + ")"
}

func (f *SSAAssign) String() string {
	return fmt.Sprintf("(= %s %s)", f.Var, f.Expr)
}

func (f *SSAConstrainEq) String() string {
	return fmt.Sprintf("(= %s %s)", f.Lhs, f.Rhs)
}

func (a *SSALet) String() string {
	return fmt.Sprintf("(let %s %s)", a.Var, a.Expr)
}

func (a *SSALetVar) String() string {
	return fmt.Sprintf("(let %s %s)", a.Var, a.Val)
}

func (a *SSASet) String() string {
	return fmt.Sprintf("(set (%s%s) %s)", a.Func, prefixedSymbols(a.Args), a.Value)
}

func (a *SSADelete) String() string {
	return fmt.Sprintf("(delete (%s%s))", a.Func, prefixedSymbols(a.Args))
}

func (a *SSAUnion) String() string {
	return fmt.Sprintf("(union %s %s)", a.Lhs, a.Rhs)
}

func (a *SSAPanic) String() string {
	return fmt.Sprintf("(panic %s)", strconv.Quote(a.Msg))
}

func (r FlatRule) String() string {
	facts := make([]string, len(r.Body))
	for i, f := range r.Body {
		facts[i] = f.String()
	}
	actions := make([]string, len(r.Head))
	for i, a := range r.Head {
		actions[i] = a.String()
	}
	return fmt.Sprintf("(rule (%s) (%s))", strings.Join(facts, " "), strings.Join(actions, " "))
}

func (e NormExpr) String() string {
	return "(" + e.Func.String() + prefixedSymbols(e.Args) + ")"
}

func (f *NormAssign) String() string    { return f.ToFact().String() }
func (f *NormAssignLit) String() string { return f.ToFact().String() }
func (f *NormConstrainEq) String() string {
	return f.ToFact().String()
}

func (a *NormLet) String() string    { return a.ToAction().String() }
func (a *NormLetVar) String() string { return a.ToAction().String() }
func (a *NormLetLit) String() string { return a.ToAction().String() }
func (a *NormSet) String() string    { return a.ToAction().String() }
func (a *NormDelete) String() string { return a.ToAction().String() }
func (a *NormUnion) String() string  { return a.ToAction().String() }
func (a *NormPanic) String() string  { return a.ToAction().String() }

func (r NormRule) String() string {
	facts := make([]string, len(r.Body))
	for i, f := range r.Body {
		facts[i] = f.String()
	}
	actions := make([]string, len(r.Head))
	for i, a := range r.Head {
		actions[i] = a.String()
	}
	return fmt.Sprintf("(rule (%s) (%s))", strings.Join(facts, " "), strings.Join(actions, " "))
}

func (c *NormSort) String() string     { return (&SortCmd{Name: c.Name, Presort: c.Presort, Args: c.Args}).String() }
func (c *NormFunction) String() string { return (&FunctionCmd{Decl: c.Decl}).String() }
func (c *NormDeclare) String() string  { return (&DeclareCmd{Name: c.Name, Sort: c.Sort}).String() }

func (c *NormRuleCmd) String() string {
	return NormCommand{Cmd: c}.ToCommand().String()
}

func (c *NormActionCmd) String() string { return c.Action.String() }

func (c *NormRunCmd) String() string {
	return NormCommand{Cmd: c}.ToCommand().String()
}

func (c *NormCheck) String() string {
	return NormCommand{Cmd: c}.ToCommand().String()
}

func (c *NormPush) String() string       { return (&PushCmd{N: c.N}).String() }
func (c *NormPop) String() string        { return (&PopCmd{N: c.N}).String() }
func (c *NormRulesetCmd) String() string { return (&RulesetCmd{Name: c.Name}).String() }
func (c *NormSetOption) String() string {
	return (&SetOptionCmd{Name: c.Name, Value: c.Value}).String()
}

func prefixedSymbols(syms []Symbol) string {
	var b strings.Builder
	for _, s := range syms {
		b.WriteByte(' ')
		b.WriteString(s.String())
	}
	return b.String()
}
