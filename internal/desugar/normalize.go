package desugar

import (
	"fmt"

	"egglite/internal/ast"
)

// Normalize converts a desugared program to normalized commands. Rules are
// already flat; top-level actions and check/until facts are flattened here
// with the compilation-wide generator. Each emitted command gets the next
// typechecking context id.
func (d *Desugarer) Normalize(program []ast.Command) []ast.NormCommand {
	var out []ast.NormCommand
	nextID := 0
	emit := func(cmd ast.NormCmd) {
		out = append(out, ast.NormCommand{ID: nextID, Cmd: cmd})
		nextID++
	}

	for _, cmd := range program {
		switch cmd := cmd.(type) {
		case *ast.SortCmd:
			emit(&ast.NormSort{Name: cmd.Name, Presort: cmd.Presort, Args: cmd.Args})
		case *ast.FunctionCmd:
			emit(&ast.NormFunction{Decl: cmd.Decl})
		case *ast.DeclareCmd:
			emit(&ast.NormDeclare{Name: cmd.Name, Sort: cmd.Sort})
		case *ast.FlatRuleCmd:
			emit(&ast.NormRuleCmd{
				Ruleset: cmd.Ruleset,
				Name:    cmd.Name,
				Rule: ast.NormRule{
					Body: ssaFactsToNorm(cmd.Rule.Body),
					Head: ssaActionsToNorm(cmd.Rule.Head),
				},
			})
		case *ast.ActionCmd:
			flat := flattenActions([]ast.Action{cmd.Action}, d.Fresh)
			for _, a := range ssaActionsToNorm(flat) {
				emit(&ast.NormActionCmd{Action: a})
			}
		case *ast.CheckCmd:
			emit(&ast.NormCheck{Facts: ssaFactsToNorm(flattenFacts(cmd.Facts, d.Fresh))})
		case *ast.RunCmd:
			emit(&ast.NormRunCmd{Config: ast.NormRunConfig{
				Ruleset: cmd.Config.Ruleset,
				Limit:   cmd.Config.Limit,
				Until:   ssaFactsToNorm(flattenFacts(cmd.Config.Until, d.Fresh)),
			}})
		case *ast.PushCmd:
			emit(&ast.NormPush{N: cmd.N})
		case *ast.PopCmd:
			emit(&ast.NormPop{N: cmd.N})
		case *ast.RulesetCmd:
			emit(&ast.NormRulesetCmd{Name: cmd.Name})
		case *ast.SetOptionCmd:
			emit(&ast.NormSetOption{Name: cmd.Name, Value: cmd.Value})
		default:
			panic(fmt.Sprintf("command %T survived desugaring", cmd))
		}
	}
	return out
}

func ssaFactsToNorm(facts []ast.SSAFact) []ast.NormFact {
	out := make([]ast.NormFact, len(facts))
	for i, f := range facts {
		switch f := f.(type) {
		case *ast.SSAAssign:
			switch e := f.Expr.(type) {
			case *ast.SSALit:
				out[i] = &ast.NormAssignLit{Var: f.Var, Lit: e.Value}
			case *ast.SSACall:
				out[i] = &ast.NormAssign{Var: f.Var, Expr: ast.NormExpr{Func: e.Func, Args: e.Args}}
			}
		case *ast.SSAConstrainEq:
			out[i] = &ast.NormConstrainEq{Lhs: f.Lhs, Rhs: f.Rhs}
		}
	}
	return out
}

func ssaActionsToNorm(actions []ast.SSAAction) []ast.NormAction {
	out := make([]ast.NormAction, len(actions))
	for i, a := range actions {
		switch a := a.(type) {
		case *ast.SSALet:
			switch e := a.Expr.(type) {
			case *ast.SSALit:
				out[i] = &ast.NormLetLit{Var: a.Var, Lit: e.Value}
			case *ast.SSACall:
				out[i] = &ast.NormLet{Var: a.Var, Expr: ast.NormExpr{Func: e.Func, Args: e.Args}}
			}
		case *ast.SSALetVar:
			out[i] = &ast.NormLetVar{Var: a.Var, Val: a.Val}
		case *ast.SSASet:
			out[i] = &ast.NormSet{Expr: ast.NormExpr{Func: a.Func, Args: a.Args}, Value: a.Value}
		case *ast.SSADelete:
			out[i] = &ast.NormDelete{Expr: ast.NormExpr{Func: a.Func, Args: a.Args}}
		case *ast.SSAUnion:
			out[i] = &ast.NormUnion{Lhs: a.Lhs, Rhs: a.Rhs}
		case *ast.SSAPanic:
			out[i] = &ast.NormPanic{Msg: a.Msg}
		}
	}
	return out
}
