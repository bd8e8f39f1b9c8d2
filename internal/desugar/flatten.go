package desugar

import (
	"fmt"

	"egglite/internal/ast"
)

// FlattenRule lowers a surface rule to single-assignment form. The head is
// flattened before the body, so generated names in the head come first; both
// share the rule-scoped generator. The counter starts above any generated
// name the rule already mentions, so rules that went through an earlier
// flattening (proof instrumentation re-enters here) never rebind a name.
func FlattenRule(rule ast.Rule) ast.FlatRule {
	gen := &FreshGen{prefix: "fvar", count: maxFreshIndex(rule)}
	head := flattenActions(rule.Head, gen)
	body := flattenFacts(rule.Body, gen)
	return ast.FlatRule{Body: body, Head: head}
}

func maxFreshIndex(rule ast.Rule) int {
	best := 0
	note := func(s ast.Symbol) {
		if n, ok := ast.FreshVarIndex(s); ok && n > best {
			best = n
		}
	}
	var walkExpr func(e ast.Expr)
	walkExpr = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Var:
			note(e.Name)
		case *ast.Call:
			for _, a := range e.Args {
				walkExpr(a)
			}
		}
	}
	for _, f := range rule.Body {
		switch f := f.(type) {
		case *ast.EqFact:
			for _, e := range f.Exprs {
				walkExpr(e)
			}
		case *ast.ExprFact:
			walkExpr(f.Expr)
		}
	}
	for _, a := range rule.Head {
		switch a := a.(type) {
		case *ast.LetAction:
			note(a.Name)
			walkExpr(a.Expr)
		case *ast.SetAction:
			for _, e := range a.Args {
				walkExpr(e)
			}
			walkExpr(a.Value)
		case *ast.DeleteAction:
			for _, e := range a.Args {
				walkExpr(e)
			}
		case *ast.UnionAction:
			walkExpr(a.Lhs)
			walkExpr(a.Rhs)
		case *ast.ExprAction:
			walkExpr(a.Expr)
		}
	}
	return best
}

type equality struct {
	lhs ast.Symbol
	rhs ast.Expr
}

// flattenFacts reduces facts to (variable, expression) equalities, then
// converts each to SSA. A bare expression fact matches without binding a
// visible name; a two-sided non-variable equality shares one generated name.
func flattenFacts(facts []ast.Fact, gen *FreshGen) []ast.SSAFact {
	var equalities []equality
	for _, fact := range facts {
		switch fact := fact.(type) {
		case *ast.EqFact:
			if len(fact.Exprs) != 2 {
				panic(fmt.Sprintf("equality fact with %d sides", len(fact.Exprs)))
			}
			lhs, rhs := fact.Exprs[0], fact.Exprs[1]
			if v, ok := lhs.(*ast.Var); ok {
				equalities = append(equalities, equality{lhs: v.Name, rhs: rhs})
			} else if v, ok := rhs.(*ast.Var); ok {
				equalities = append(equalities, equality{lhs: v.Name, rhs: lhs})
			} else {
				shared := gen.Next()
				equalities = append(equalities,
					equality{lhs: shared, rhs: lhs},
					equality{lhs: shared, rhs: rhs})
			}
		case *ast.ExprFact:
			equalities = append(equalities, equality{lhs: gen.Next(), rhs: fact.Expr})
		}
	}
	return flattenEqualities(equalities, gen)
}

func flattenEqualities(equalities []equality, gen *FreshGen) []ast.SSAFact {
	var res []ast.SSAFact
	varUsed := map[ast.Symbol]bool{}

	for _, eq := range equalities {
		var constraints []ast.SSAFact
		varJustUsed := map[ast.Symbol]bool{}
		result := exprToSSA(eq.rhs, gen, varUsed, varJustUsed, &res, &constraints)
		res = append(res, constraints...)

		// only the first equality for a name binds it; later results are
		// left untied
		if !varUsed[eq.lhs] {
			varUsed[eq.lhs] = true
			res = append(res, &ast.SSAConstrainEq{Lhs: eq.lhs, Rhs: result})
		}
	}
	return res
}

// exprToSSA walks an expression left to right, emitting an assignment per
// subterm and returning the variable naming the result. A repeated variable
// occurrence gets a generated stand-in constrained equal to the original;
// when the first occurrence happened inside the current equality the
// constraint is deferred until after it, so every use can be typed from a
// prior binding.
func exprToSSA(
	expr ast.Expr,
	gen *FreshGen,
	varUsed map[ast.Symbol]bool,
	varJustUsed map[ast.Symbol]bool,
	res *[]ast.SSAFact,
	constraints *[]ast.SSAFact,
) ast.Symbol {
	switch expr := expr.(type) {
	case *ast.Lit:
		fresh := gen.Next()
		*res = append(*res, &ast.SSAAssign{Var: fresh, Expr: &ast.SSALit{Value: expr.Value}})
		return fresh
	case *ast.Var:
		if !varUsed[expr.Name] {
			varUsed[expr.Name] = true
			varJustUsed[expr.Name] = true
			return expr.Name
		}
		fresh := gen.Next()
		if varJustUsed[expr.Name] {
			*constraints = append(*constraints, &ast.SSAConstrainEq{Lhs: fresh, Rhs: expr.Name})
		} else {
			*res = append(*res, &ast.SSAConstrainEq{Lhs: fresh, Rhs: expr.Name})
		}
		return fresh
	case *ast.Call:
		args := make([]ast.Symbol, len(expr.Args))
		for i, child := range expr.Args {
			args[i] = exprToSSA(child, gen, varUsed, varJustUsed, res, constraints)
		}
		fresh := gen.Next()
		*res = append(*res, &ast.SSAAssign{Var: fresh, Expr: &ast.SSACall{Func: expr.Func, Args: args}})
		return fresh
	}
	panic("unreachable expression")
}

func flattenActions(actions []ast.Action, gen *FreshGen) []ast.SSAAction {
	var res []ast.SSAAction

	addExpr := func(expr ast.Expr) ast.Symbol {
		fresh := gen.Next()
		exprToFlatActions(fresh, expr, gen, &res)
		return fresh
	}

	for _, action := range actions {
		switch action := action.(type) {
		case *ast.LetAction:
			added := addExpr(action.Expr)
			res = append(res, &ast.SSALetVar{Var: action.Name, Val: added})
		case *ast.SetAction:
			args := make([]ast.Symbol, len(action.Args))
			for i, arg := range action.Args {
				args[i] = addExpr(arg)
			}
			value := addExpr(action.Value)
			res = append(res, &ast.SSASet{Func: action.Func, Args: args, Value: value})
		case *ast.DeleteAction:
			args := make([]ast.Symbol, len(action.Args))
			for i, arg := range action.Args {
				args[i] = addExpr(arg)
			}
			res = append(res, &ast.SSADelete{Func: action.Func, Args: args})
		case *ast.UnionAction:
			lhs := addExpr(action.Lhs)
			rhs := addExpr(action.Rhs)
			res = append(res, &ast.SSAUnion{Lhs: lhs, Rhs: rhs})
		case *ast.PanicAction:
			res = append(res, &ast.SSAPanic{Msg: action.Msg})
		case *ast.ExprAction:
			addExpr(action.Expr)
		}
	}
	return res
}

// exprToFlatActions emits the actions computing expr into assign.
func exprToFlatActions(assign ast.Symbol, expr ast.Expr, gen *FreshGen, res *[]ast.SSAAction) {
	switch expr := expr.(type) {
	case *ast.Lit:
		*res = append(*res, &ast.SSALet{Var: assign, Expr: &ast.SSALit{Value: expr.Value}})
	case *ast.Var:
		*res = append(*res, &ast.SSALetVar{Var: assign, Val: expr.Name})
	case *ast.Call:
		args := make([]ast.Symbol, len(expr.Args))
		for i, child := range expr.Args {
			fresh := gen.Next()
			exprToFlatActions(fresh, child, gen, res)
			args[i] = fresh
		}
		*res = append(*res, &ast.SSALet{Var: assign, Expr: &ast.SSACall{Func: expr.Func, Args: args}})
	}
}
