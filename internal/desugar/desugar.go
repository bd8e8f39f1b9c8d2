package desugar

import (
	"os"

	"egglite/internal/ast"
	"egglite/internal/errors"
)

// ParseFunc parses program text; the desugarer calls it to inline includes.
type ParseFunc func(filename, src string) ([]ast.Command, error)


// Desugarer expands the high-level commands down to the minimal set the
// later passes handle. It owns the compilation-wide fresh-name generator the
// normalizer shares.
type Desugarer struct {
	parse ParseFunc
	Fresh *FreshGen
}

func NewDesugarer(parse ParseFunc) *Desugarer {
	return &Desugarer{parse: parse, Fresh: NewProgramFreshGen()}
}

// DesugarProgram expands each command, short-circuiting on the first error.
func (d *Desugarer) DesugarProgram(program []ast.Command) ([]ast.Command, error) {
	var out []ast.Command
	for _, cmd := range program {
		expanded, err := d.DesugarCommand(cmd)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// DesugarCommand expands one command. Commands that are already minimal pass
// through unchanged.
func (d *Desugarer) DesugarCommand(cmd ast.Command) ([]ast.Command, error) {
	switch cmd := cmd.(type) {
	case *ast.Datatype:
		return desugarDatatype(cmd), nil
	case *ast.RelationCmd:
		return desugarRelation(cmd), nil
	case *ast.RewriteCmd:
		return desugarRewrite(cmd.Ruleset, cmd.Rewrite), nil
	case *ast.BiRewriteCmd:
		return desugarBiRewrite(cmd.Ruleset, cmd.Rewrite), nil
	case *ast.RuleCmd:
		return []ast.Command{&ast.FlatRuleCmd{
			Ruleset: cmd.Ruleset,
			Rule:    FlattenRule(cmd.Rule),
			Name:    cmd.Rule.Name,
		}}, nil
	case *ast.IncludeCmd:
		return d.desugarInclude(cmd)
	default:
		return []ast.Command{cmd}, nil
	}
}

// desugarDatatype emits the sort followed by one constructor table per
// variant.
func desugarDatatype(cmd *ast.Datatype) []ast.Command {
	out := []ast.Command{&ast.SortCmd{Name: cmd.Name}}
	for _, variant := range cmd.Variants {
		out = append(out, &ast.FunctionCmd{Decl: ast.FunctionDecl{
			Name: variant.Name,
			Schema: ast.Schema{
				Input:  variant.Types,
				Output: cmd.Name,
			},
			Cost: variant.Cost,
		}})
	}
	return out
}

// desugarRelation emits a unit-valued function defaulting to unit, so a bare
// expression fact over it can match.
func desugarRelation(cmd *ast.RelationCmd) []ast.Command {
	return []ast.Command{&ast.FunctionCmd{Decl: ast.FunctionDecl{
		Name: cmd.Name,
		Schema: ast.Schema{
			Input:  cmd.Inputs,
			Output: ast.Intern("Unit"),
		},
		Default: &ast.Lit{Value: ast.UnitLit{}},
	}}}
}

// desugarRewrite builds the rule that matches the left-hand side into
// rewrite_var__ under the conditions and unions it with the right-hand side.
func desugarRewrite(ruleset ast.Symbol, rw ast.Rewrite) []ast.Command {
	// the name every rewrite binds its matched left-hand side to
	v := ast.Intern("rewrite_var__")
	body := []ast.Fact{&ast.EqFact{Exprs: []ast.Expr{ast.NewVar(v), rw.Lhs}}}
	body = append(body, rw.Conditions...)
	rule := ast.Rule{
		Body: body,
		Head: []ast.Action{&ast.UnionAction{Lhs: ast.NewVar(v), Rhs: rw.Rhs}},
	}
	return []ast.Command{&ast.FlatRuleCmd{Ruleset: ruleset, Rule: FlattenRule(rule)}}
}

func desugarBiRewrite(ruleset ast.Symbol, rw ast.Rewrite) []ast.Command {
	mirror := ast.Rewrite{Lhs: rw.Rhs, Rhs: rw.Lhs, Conditions: rw.Conditions}
	return append(desugarRewrite(ruleset, rw), desugarRewrite(ruleset, mirror)...)
}

func (d *Desugarer) desugarInclude(cmd *ast.IncludeCmd) ([]ast.Command, error) {
	src, err := os.ReadFile(cmd.Path)
	if err != nil {
		return nil, errors.IncludeRead(cmd.Path, err)
	}
	program, perr := d.parse(cmd.Path, string(src))
	if perr != nil {
		return nil, perr
	}
	return d.DesugarProgram(program)
}

// ToRules converts flat rules back to surface rules across a program, for
// printing and diagnostics.
func ToRules(program []ast.Command) []ast.Command {
	out := make([]ast.Command, len(program))
	for i, cmd := range program {
		if fr, ok := cmd.(*ast.FlatRuleCmd); ok {
			rule := fr.Rule.ToRule()
			rule.Name = fr.Name
			out[i] = &ast.RuleCmd{Ruleset: fr.Ruleset, Rule: rule}
			continue
		}
		out[i] = cmd
	}
	return out
}
