package proofs

import (
	"fmt"

	"egglite/internal/ast"
)

// Top-level actions get Original__ provenance: the term exists because the
// program said so, not because a rule derived it.

// makeDeclareProof introduces the global AST constant for a declared name
// and binds its originality proof.
func (ps *proofState) makeDeclareProof(name ast.Symbol) []ast.Command {
	term := declaredTerm(name)
	proof := ps.getFresh()
	ps.globalVarAst[name] = term
	ps.globalVarProof[name] = proof
	return []ast.Command{
		&ast.DeclareCmd{Name: term, Sort: ast.Intern("Ast__")},
		&ast.ActionCmd{Action: &ast.LetAction{
			Name: proof,
			Expr: ast.NewCall(ast.Intern("Original__"), ast.NewVar(term)),
		}},
	}
}

// proofOriginalAction emits the mirror bookkeeping for one top-level action.
func (ps *proofState) proofOriginalAction(action ast.NormAction) ([]ast.Command, error) {
	switch action := action.(type) {
	case *ast.NormLet:
		return ps.makeRepCommand(action.Var, action.Expr)
	case *ast.NormLetVar:
		t, err := ps.globalAst(action.Val)
		if err != nil {
			return nil, err
		}
		ps.globalVarAst[action.Var] = t
		return nil, nil
	case *ast.NormLetLit:
		return ps.makeLitRepCommand(action.Var, action.Lit), nil
	case *ast.NormSet:
		scratch := ps.getFresh()
		cmds, err := ps.makeRepCommand(scratch, action.Expr)
		if err != nil {
			return nil, err
		}
		eq, err := ps.originalEquality(scratch, action.Value)
		if err != nil {
			return nil, err
		}
		return append(cmds, eq), nil
	case *ast.NormUnion:
		eq, err := ps.originalEquality(action.Lhs, action.Rhs)
		if err != nil {
			return nil, err
		}
		return []ast.Command{eq}, nil
	case *ast.NormDelete, *ast.NormPanic:
		return nil, nil
	}
	return nil, nil
}

// makeRepCommand constructs the AST mirror value for a top-level call and
// seeds its representative with an originality proof.
func (ps *proofState) makeRepCommand(lhs ast.Symbol, expr ast.NormExpr) ([]ast.Command, error) {
	ft, err := ps.typecheck(expr)
	if err != nil {
		return nil, err
	}
	astVar := ps.getFresh()
	termArgs := make([]ast.Expr, len(expr.Args))
	repArgs := make([]ast.Expr, len(expr.Args))
	for i, arg := range expr.Args {
		t, err := ps.globalAst(arg)
		if err != nil {
			return nil, err
		}
		termArgs[i] = ast.NewVar(t)
		repArgs[i] = ast.NewVar(arg)
	}
	ps.globalVarAst[lhs] = astVar

	return []ast.Command{
		&ast.ActionCmd{Action: &ast.LetAction{
			Name: astVar,
			Expr: &ast.Call{Func: astVersion(ft), Args: termArgs},
		}},
		&ast.ActionCmd{Action: &ast.SetAction{
			Func:  repVersion(ft),
			Args:  repArgs,
			Value: makeTrmPrfOriginal(astVar),
		}},
	}, nil
}

func (ps *proofState) makeLitRepCommand(lhs ast.Symbol, lit ast.Literal) []ast.Command {
	litName := ast.LiteralName(lit)
	astVar := ps.getFresh()
	ps.globalVarAst[lhs] = astVar
	return []ast.Command{
		&ast.ActionCmd{Action: &ast.LetAction{
			Name: astVar,
			Expr: ast.NewCall(astVersionPrim(litName), &ast.Lit{Value: lit}),
		}},
		&ast.ActionCmd{Action: &ast.SetAction{
			Func:  repVersionPrim(litName),
			Args:  []ast.Expr{&ast.Lit{Value: lit}},
			Value: makeTrmPrfOriginal(astVar),
		}},
	}
}

// originalEquality records an OriginalEq__ entry between the AST terms of
// two globally bound names.
func (ps *proofState) originalEquality(lhs, rhs ast.Symbol) (ast.Command, error) {
	t1, err := ps.globalAst(lhs)
	if err != nil {
		return nil, err
	}
	t2, err := ps.globalAst(rhs)
	if err != nil {
		return nil, err
	}
	return &ast.ActionCmd{Action: &ast.SetAction{
		Func: ast.Intern("EqGraph__"),
		Args: []ast.Expr{ast.NewVar(t1), ast.NewVar(t2)},
		Value: ast.NewCall(ast.Intern("OriginalEq__"),
			ast.NewVar(t1), ast.NewVar(t2)),
	}}, nil
}

func makeTrmPrfOriginal(astVar ast.Symbol) ast.Expr {
	return ast.NewCall(ast.Intern("MakeTrmPrf__"),
		ast.NewVar(astVar),
		ast.NewCall(ast.Intern("Original__"), ast.NewVar(astVar)))
}

func (ps *proofState) globalAst(name ast.Symbol) (ast.Symbol, error) {
	if t, ok := ps.globalVarAst[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("no mirror term recorded for global %s", name)
}
