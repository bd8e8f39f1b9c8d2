package proofs

import (
	"egglite/internal/ast"
	"egglite/internal/errors"
)

// instrumentRule rewrites one normalized rule into a surface rule that also
// derives its own proof: the body additionally matches representatives and
// child terms, and the head records a Rule__ proof plus per-action
// bookkeeping.
func (ps *proofState) instrumentRule(rule ast.NormRule, name string) (ast.Rule, error) {
	actions := append([]ast.NormAction{}, rule.Head...)

	info := newProofInfo()
	facts, err := ps.instrumentFacts(rule.Body, info, &actions)
	if err != nil {
		return ast.Rule{}, err
	}

	ruleProof := ps.addRuleProof(name, info, rule.Body, &actions)

	for _, action := range rule.Head {
		if err := ps.addActionProof(ruleProof, info, action, &actions); err != nil {
			return ast.Rule{}, err
		}
	}

	head := make([]ast.Action, len(actions))
	for i, a := range actions {
		head[i] = a.ToAction()
	}
	return ast.Rule{Name: ast.Intern(name), Body: facts, Head: head}, nil
}

// instrumentFacts builds the augmented fact list and the per-variable
// term/proof tables. It relies on the normalized body's shape: a variable is
// bound at most once outside of constraints.
func (ps *proofState) instrumentFacts(
	body []ast.NormFact,
	info *proofInfo,
	actions *[]ast.NormAction,
) ([]ast.Fact, error) {
	facts := make([]ast.Fact, len(body))
	for i, f := range body {
		facts[i] = f.ToFact()
	}

	for _, fact := range body {
		switch fact := fact.(type) {
		case *ast.NormAssignLit:
			litName := ast.LiteralName(fact.Lit)
			repTrm := ps.getFresh()
			repPrf := ps.getFresh()
			*actions = append(*actions,
				&ast.NormLet{Var: repTrm, Expr: ast.NormExpr{
					Func: astVersionPrim(litName),
					Args: []ast.Symbol{fact.Var},
				}},
				&ast.NormLet{Var: repPrf, Expr: ast.NormExpr{
					Func: ast.Intern("ComputePrim__"),
					Args: []ast.Symbol{repTrm},
				}},
			)
			info.varTerm[fact.Var] = repTrm
			info.varProof[fact.Var] = repPrf

		case *ast.NormAssign:
			if ps.env.IsPrimitive(fact.Expr.Func) {
				if err := ps.instrumentPrimAssign(fact, info, actions); err != nil {
					return nil, err
				}
				continue
			}
			ps.instrumentCallAssign(fact, info, &facts)

		case *ast.NormConstrainEq:
			lhsTerm, lhsKnown := ps.varTermOption(fact.Lhs, info)
			rhsTerm, rhsKnown := ps.varTermOption(fact.Rhs, info)
			switch {
			case rhsKnown && !lhsKnown:
				info.varTerm[fact.Lhs] = rhsTerm
			case lhsKnown && !rhsKnown:
				info.varTerm[fact.Rhs] = lhsTerm
			case !lhsKnown && !rhsKnown:
				return nil, errors.UnderConstrained(fact.Lhs.String(), fact.Rhs.String())
			}
		}
	}

	// a second pass fills term aliases that the first pass saw too early
	for _, fact := range body {
		if eq, ok := fact.(*ast.NormConstrainEq); ok {
			lhsTerm, lhsKnown := ps.varTermOption(eq.Lhs, info)
			rhsTerm, rhsKnown := ps.varTermOption(eq.Rhs, info)
			switch {
			case lhsKnown && !rhsKnown:
				info.varTerm[eq.Rhs] = lhsTerm
			case rhsKnown && !lhsKnown:
				info.varTerm[eq.Lhs] = rhsTerm
			case !lhsKnown && !rhsKnown:
				return nil, errors.UnderConstrained(eq.Lhs.String(), eq.Rhs.String())
			}
		}
	}

	return facts, nil
}

// instrumentPrimAssign mirrors a primitive computation: its children already
// carry terms, so the result term is built in the head and its proof is a
// ComputePrim__ over it.
func (ps *proofState) instrumentPrimAssign(
	fact *ast.NormAssign,
	info *proofInfo,
	actions *[]ast.NormAction,
) error {
	ft, err := ps.typecheck(fact.Expr)
	if err != nil {
		return err
	}
	termArgs := make([]ast.Symbol, len(fact.Expr.Args))
	for i, arg := range fact.Expr.Args {
		termArgs[i] = ps.varTerm(arg, info)
	}
	repTrm := ps.getFresh()
	repPrf := ps.getFresh()
	*actions = append(*actions,
		&ast.NormLet{Var: repTrm, Expr: ast.NormExpr{Func: astVersion(ft), Args: termArgs}},
		&ast.NormLet{Var: repPrf, Expr: ast.NormExpr{
			Func: ast.Intern("ComputePrim__"),
			Args: []ast.Symbol{repTrm},
		}},
	)
	info.varTerm[fact.Var] = repTrm
	info.varProof[fact.Var] = repPrf
	return nil
}

// instrumentCallAssign extends the body so the rule also matches the
// representative of the called function, unpacks its term and proof, and
// projects out each child's term.
func (ps *proofState) instrumentCallAssign(
	fact *ast.NormAssign,
	info *proofInfo,
	facts *[]ast.Fact,
) {
	ft, err := ps.typecheck(fact.Expr)
	if err != nil {
		// the program typechecked before instrumentation
		panic(err)
	}

	rep := ps.getFresh()
	repTrm := ps.getFresh()
	repPrf := ps.getFresh()

	argExprs := make([]ast.Expr, len(fact.Expr.Args))
	for i, arg := range fact.Expr.Args {
		argExprs[i] = ast.NewVar(arg)
	}
	*facts = append(*facts,
		&ast.EqFact{Exprs: []ast.Expr{
			ast.NewVar(rep),
			&ast.Call{Func: repVersion(ft), Args: argExprs},
		}},
		&ast.EqFact{Exprs: []ast.Expr{
			ast.NewVar(repTrm),
			ast.NewCall(ast.Intern("TrmOf__"), ast.NewVar(rep)),
		}},
		&ast.EqFact{Exprs: []ast.Expr{
			ast.NewVar(repPrf),
			ast.NewCall(ast.Intern("PrfOf__"), ast.NewVar(rep)),
		}},
	)

	info.varTerm[fact.Var] = repTrm
	info.varProof[fact.Var] = repPrf

	for i, child := range fact.Expr.Args {
		childTrm := ps.getFresh()
		constVar := ps.getFresh()
		*facts = append(*facts,
			&ast.EqFact{Exprs: []ast.Expr{
				ast.NewVar(constVar),
				&ast.Lit{Value: ast.IntLit{Value: int64(i)}},
			}},
			&ast.EqFact{Exprs: []ast.Expr{
				ast.NewVar(childTrm),
				ast.NewCall(ast.Intern("GetChild__"), ast.NewVar(repTrm), ast.NewVar(constVar)),
			}},
		)
		info.varTerm[child] = childTrm
	}
}

// addRuleProof folds the body into a single Rule__ proof: a premise list of
// every binding's proof plus a demanded equality per constraint.
func (ps *proofState) addRuleProof(
	name string,
	info *proofInfo,
	body []ast.NormFact,
	actions *[]ast.NormAction,
) ast.Symbol {
	current := ps.getFresh()
	*actions = append(*actions, &ast.NormLetVar{Var: current, Val: ast.Intern("Null__")})

	for _, fact := range body {
		switch fact := fact.(type) {
		case *ast.NormAssign:
			current = ps.consProof(fact.Var, current, info, actions)
		case *ast.NormAssignLit:
			current = ps.consProof(fact.Var, current, info, actions)
		case *ast.NormConstrainEq:
			demand := ps.getFresh()
			*actions = append(*actions, &ast.NormLet{Var: demand, Expr: ast.NormExpr{
				Func: ast.Intern("DemandEq__"),
				Args: []ast.Symbol{ps.varTerm(fact.Lhs, info), ps.varTerm(fact.Rhs, info)},
			}})
			next := ps.getFresh()
			*actions = append(*actions, &ast.NormLet{Var: next, Expr: ast.NormExpr{
				Func: ast.Intern("Cons__"),
				Args: []ast.Symbol{demand, current},
			}})
			current = next
		}
	}

	nameConst := ps.getFresh()
	*actions = append(*actions, &ast.NormLetLit{Var: nameConst, Lit: ast.StringLit{Value: name}})
	ruleProof := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: ruleProof, Expr: ast.NormExpr{
		Func: ast.Intern("Rule__"),
		Args: []ast.Symbol{current, nameConst},
	}})
	return ruleProof
}

func (ps *proofState) consProof(v, current ast.Symbol, info *proofInfo, actions *[]ast.NormAction) ast.Symbol {
	next := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: next, Expr: ast.NormExpr{
		Func: ast.Intern("Cons__"),
		Args: []ast.Symbol{ps.varProof(v, info), current},
	}})
	return next
}

// addActionProof appends the bookkeeping for one original head action.
func (ps *proofState) addActionProof(
	ruleProof ast.Symbol,
	info *proofInfo,
	action ast.NormAction,
	actions *[]ast.NormAction,
) error {
	switch action := action.(type) {
	case *ast.NormLetVar:
		info.varTerm[action.Var] = ps.varTerm(action.Val, info)
	case *ast.NormDelete, *ast.NormPanic:
		// no proof obligation
	case *ast.NormUnion:
		addEqGraphEquality(ps.varTerm(action.Lhs, info), ps.varTerm(action.Rhs, info), ruleProof, actions)
	case *ast.NormSet:
		newTerm, err := ps.makeExprRep(info, action.Expr, ruleProof, actions)
		if err != nil {
			return err
		}
		addEqGraphEquality(newTerm, ps.varTerm(action.Value, info), ruleProof, actions)
	case *ast.NormLet:
		newTerm, err := ps.makeExprRep(info, action.Expr, ruleProof, actions)
		if err != nil {
			return err
		}
		info.varTerm[action.Var] = newTerm
	case *ast.NormLetLit:
		ps.letLitProof(ruleProof, info, action, actions)
	}
	return nil
}

func (ps *proofState) letLitProof(
	ruleProof ast.Symbol,
	info *proofInfo,
	action *ast.NormLetLit,
	actions *[]ast.NormAction,
) {
	litName := ast.LiteralName(action.Lit)
	newTerm := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: newTerm, Expr: ast.NormExpr{
		Func: astVersionPrim(litName),
		Args: []ast.Symbol{action.Var},
	}})
	info.varTerm[action.Var] = newTerm

	ruleTrm := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: ruleTrm, Expr: ast.NormExpr{
		Func: ast.Intern("RuleTerm__"),
		Args: []ast.Symbol{ruleProof, newTerm},
	}})
	trmPrf := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: trmPrf, Expr: ast.NormExpr{
		Func: ast.Intern("MakeTrmPrf__"),
		Args: []ast.Symbol{newTerm, ruleTrm},
	}})
	*actions = append(*actions, &ast.NormSet{
		Expr:  ast.NormExpr{Func: repVersionPrim(litName), Args: []ast.Symbol{action.Var}},
		Value: trmPrf,
	})
}

// makeExprAst builds the AST mirror term for a head expression.
func (ps *proofState) makeExprAst(
	info *proofInfo,
	expr ast.NormExpr,
	actions *[]ast.NormAction,
) (ast.Symbol, error) {
	ft, err := ps.typecheck(expr)
	if err != nil {
		return 0, err
	}
	termArgs := make([]ast.Symbol, len(expr.Args))
	for i, arg := range expr.Args {
		termArgs[i] = ps.varTerm(arg, info)
	}
	newTerm := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: newTerm, Expr: ast.NormExpr{
		Func: astVersion(ft),
		Args: termArgs,
	}})
	return newTerm, nil
}

// makeExprRep builds the mirror term, wraps it in a rule-provenance proof,
// and writes the packed pair into the representative table.
func (ps *proofState) makeExprRep(
	info *proofInfo,
	expr ast.NormExpr,
	ruleProof ast.Symbol,
	actions *[]ast.NormAction,
) (ast.Symbol, error) {
	ft, err := ps.typecheck(expr)
	if err != nil {
		return 0, err
	}
	newTerm, err := ps.makeExprAst(info, expr, actions)
	if err != nil {
		return 0, err
	}

	ruleTrm := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: ruleTrm, Expr: ast.NormExpr{
		Func: ast.Intern("RuleTerm__"),
		Args: []ast.Symbol{ruleProof, newTerm},
	}})
	trmPrf := ps.getFresh()
	*actions = append(*actions, &ast.NormLet{Var: trmPrf, Expr: ast.NormExpr{
		Func: ast.Intern("MakeTrmPrf__"),
		Args: []ast.Symbol{newTerm, ruleTrm},
	}})
	*actions = append(*actions, &ast.NormSet{
		Expr:  ast.NormExpr{Func: repVersion(ft), Args: expr.Args},
		Value: trmPrf,
	})
	return newTerm, nil
}

// addEqGraphEquality records a proof of equality between two terms in both
// directions.
func addEqGraphEquality(t1, t2, proof ast.Symbol, actions *[]ast.NormAction) {
	*actions = append(*actions,
		&ast.NormSet{
			Expr:  ast.NormExpr{Func: ast.Intern("EqGraph__"), Args: []ast.Symbol{t1, t2}},
			Value: proof,
		},
		&ast.NormSet{
			Expr:  ast.NormExpr{Func: ast.Intern("EqGraph__"), Args: []ast.Symbol{t2, t1}},
			Value: proof,
		},
	)
}
