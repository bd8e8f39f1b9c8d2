package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// S-expression rendering for every node. The output of PrintProgram reparses
// to a structurally identical program, which the compile pipeline relies on
// for its round-trip self check.

func (v *Var) String() string { return v.Name.String() }

func (l *Lit) String() string { return l.Value.String() }

func (c *Call) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(c.Func.String())
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (f *EqFact) String() string {
	parts := make([]string, len(f.Exprs))
	for i, e := range f.Exprs {
		parts[i] = e.String()
	}
	return "(= " + strings.Join(parts, " ") + ")"
}

func (f *ExprFact) String() string { return f.Expr.String() }

func (a *LetAction) String() string {
	return fmt.Sprintf("(let %s %s)", a.Name, a.Expr)
}

func (a *SetAction) String() string {
	return fmt.Sprintf("(set %s %s)", callString(a.Func, a.Args), a.Value)
}

func (a *DeleteAction) String() string {
	return fmt.Sprintf("(delete %s)", callString(a.Func, a.Args))
}

func (a *UnionAction) String() string {
	return fmt.Sprintf("(union %s %s)", a.Lhs, a.Rhs)
}

func (a *PanicAction) String() string {
	return fmt.Sprintf("(panic %s)", strconv.Quote(a.Msg))
}

func (a *ExprAction) String() string { return a.Expr.String() }

func callString(fn Symbol, args []Expr) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(fn.String())
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

func symbolList(syms []Symbol) string {
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

func (v Variant) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(v.Name.String())
	for _, t := range v.Types {
		b.WriteByte(' ')
		b.WriteString(t.String())
	}
	if v.Cost != nil {
		fmt.Fprintf(&b, " :cost %d", *v.Cost)
	}
	b.WriteByte(')')
	return b.String()
}

func (r Rule) String() string {
	facts := make([]string, len(r.Body))
	for i, f := range r.Body {
		facts[i] = f.String()
	}
	actions := make([]string, len(r.Head))
	for i, a := range r.Head {
		actions[i] = a.String()
	}
	s := fmt.Sprintf("(rule (%s) (%s)", strings.Join(facts, " "), strings.Join(actions, " "))
	if r.Name != 0 {
		s += fmt.Sprintf(" :name %s", strconv.Quote(r.Name.String()))
	}
	return s + ")"
}

func (c *Datatype) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(datatype %s", c.Name)
	for _, v := range c.Variants {
		b.WriteByte(' ')
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (c *SortCmd) String() string {
	if c.Presort == 0 {
		return fmt.Sprintf("(sort %s)", c.Name)
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("(sort %s (%s %s))", c.Name, c.Presort, strings.Join(args, " "))
}

func (c *FunctionCmd) String() string {
	d := c.Decl
	var b strings.Builder
	fmt.Fprintf(&b, "(function %s (%s) %s", d.Name, symbolList(d.Schema.Input), d.Schema.Output)
	if d.Merge != nil {
		fmt.Fprintf(&b, " :merge %s", d.Merge)
	}
	if len(d.MergeAction) > 0 {
		parts := make([]string, len(d.MergeAction))
		for i, a := range d.MergeAction {
			parts[i] = a.String()
		}
		fmt.Fprintf(&b, " :on-merge (%s)", strings.Join(parts, " "))
	}
	if d.Default != nil {
		fmt.Fprintf(&b, " :default %s", d.Default)
	}
	if d.Cost != nil {
		fmt.Fprintf(&b, " :cost %d", *d.Cost)
	}
	b.WriteByte(')')
	return b.String()
}

func (c *RelationCmd) String() string {
	return fmt.Sprintf("(relation %s (%s))", c.Name, symbolList(c.Inputs))
}

func (c *DeclareCmd) String() string {
	return fmt.Sprintf("(declare %s %s)", c.Name, c.Sort)
}

func (c *RuleCmd) String() string {
	if c.Ruleset == 0 {
		return c.Rule.String()
	}
	rule := c.Rule.String()
	return rule[:len(rule)-1] + fmt.Sprintf(" :ruleset %s)", c.Ruleset)
}

func (c *FlatRuleCmd) String() string {
	rc := &RuleCmd{Ruleset: c.Ruleset, Rule: c.Rule.ToRule()}
	rc.Rule.Name = c.Name
	return rc.String()
}

func (c *RewriteCmd) String() string {
	return rewriteString("rewrite", c.Ruleset, c.Rewrite)
}

func (c *BiRewriteCmd) String() string {
	return rewriteString("birewrite", c.Ruleset, c.Rewrite)
}

func rewriteString(keyword string, ruleset Symbol, rw Rewrite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s %s %s", keyword, rw.Lhs, rw.Rhs)
	if len(rw.Conditions) > 0 {
		parts := make([]string, len(rw.Conditions))
		for i, f := range rw.Conditions {
			parts[i] = f.String()
		}
		fmt.Fprintf(&b, " :when (%s)", strings.Join(parts, " "))
	}
	if ruleset != 0 {
		fmt.Fprintf(&b, " :ruleset %s", ruleset)
	}
	b.WriteByte(')')
	return b.String()
}

func (c *IncludeCmd) String() string {
	return fmt.Sprintf("(include %s)", strconv.Quote(c.Path))
}

func (c *RunCmd) String() string {
	var b strings.Builder
	b.WriteString("(run")
	if c.Config.Ruleset != 0 {
		fmt.Fprintf(&b, " %s", c.Config.Ruleset)
	}
	fmt.Fprintf(&b, " %d", c.Config.Limit)
	if len(c.Config.Until) > 0 {
		parts := make([]string, len(c.Config.Until))
		for i, f := range c.Config.Until {
			parts[i] = f.String()
		}
		fmt.Fprintf(&b, " :until (%s)", strings.Join(parts, " "))
	}
	b.WriteByte(')')
	return b.String()
}

func (c *PushCmd) String() string {
	if c.N == 1 {
		return "(push)"
	}
	return fmt.Sprintf("(push %d)", c.N)
}

func (c *PopCmd) String() string {
	if c.N == 1 {
		return "(pop)"
	}
	return fmt.Sprintf("(pop %d)", c.N)
}

func (c *ActionCmd) String() string { return c.Action.String() }

func (c *CheckCmd) String() string {
	parts := make([]string, len(c.Facts))
	for i, f := range c.Facts {
		parts[i] = f.String()
	}
	return fmt.Sprintf("(check %s)", strings.Join(parts, " "))
}

func (c *RulesetCmd) String() string {
	return fmt.Sprintf("(ruleset %s)", c.Name)
}

func (c *SetOptionCmd) String() string {
	return fmt.Sprintf("(set-option %s %s)", c.Name, c.Value)
}

// PrintProgram renders a whole program, one command per line.
func PrintProgram(commands []Command) string {
	var b strings.Builder
	for _, c := range commands {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
