package ast

// Conversions back to the surface forms. The instrumenter leans on these to
// mix normalized commands with freshly built surface commands before the
// final desugaring pass.

// ToExpr rebuilds a surface call with variable arguments.
func (e NormExpr) ToExpr() Expr {
	args := make([]Expr, len(e.Args))
	for i, a := range e.Args {
		args[i] = NewVar(a)
	}
	return &Call{Func: e.Func, Args: args}
}

func (f *NormAssign) ToFact() Fact {
	return &EqFact{Exprs: []Expr{NewVar(f.Var), f.Expr.ToExpr()}}
}

func (f *NormAssignLit) ToFact() Fact {
	return &EqFact{Exprs: []Expr{NewVar(f.Var), &Lit{Value: f.Lit}}}
}

func (f *NormConstrainEq) ToFact() Fact {
	return &EqFact{Exprs: []Expr{NewVar(f.Lhs), NewVar(f.Rhs)}}
}

func (a *NormLet) ToAction() Action {
	return &LetAction{Name: a.Var, Expr: a.Expr.ToExpr()}
}

func (a *NormLetVar) ToAction() Action {
	return &LetAction{Name: a.Var, Expr: NewVar(a.Val)}
}

func (a *NormLetLit) ToAction() Action {
	return &LetAction{Name: a.Var, Expr: &Lit{Value: a.Lit}}
}

func (a *NormSet) ToAction() Action {
	args := make([]Expr, len(a.Expr.Args))
	for i, arg := range a.Expr.Args {
		args[i] = NewVar(arg)
	}
	return &SetAction{Func: a.Expr.Func, Args: args, Value: NewVar(a.Value)}
}

func (a *NormDelete) ToAction() Action {
	args := make([]Expr, len(a.Expr.Args))
	for i, arg := range a.Expr.Args {
		args[i] = NewVar(arg)
	}
	return &DeleteAction{Func: a.Expr.Func, Args: args}
}

func (a *NormUnion) ToAction() Action {
	return &UnionAction{Lhs: NewVar(a.Lhs), Rhs: NewVar(a.Rhs)}
}

func (a *NormPanic) ToAction() Action {
	return &PanicAction{Msg: a.Msg}
}

func normFactsToFacts(facts []NormFact) []Fact {
	res := make([]Fact, len(facts))
	for i, f := range facts {
		res[i] = f.ToFact()
	}
	return res
}

// ToCommand rebuilds the surface command for a normalized one.
func (nc NormCommand) ToCommand() Command {
	switch c := nc.Cmd.(type) {
	case *NormSort:
		return &SortCmd{Name: c.Name, Presort: c.Presort, Args: c.Args}
	case *NormFunction:
		return &FunctionCmd{Decl: c.Decl}
	case *NormDeclare:
		return &DeclareCmd{Name: c.Name, Sort: c.Sort}
	case *NormRuleCmd:
		rule := Rule{Name: c.Name, Body: normFactsToFacts(c.Rule.Body)}
		for _, a := range c.Rule.Head {
			rule.Head = append(rule.Head, a.ToAction())
		}
		return &RuleCmd{Ruleset: c.Ruleset, Rule: rule}
	case *NormActionCmd:
		return &ActionCmd{Action: c.Action.ToAction()}
	case *NormRunCmd:
		return &RunCmd{Config: RunConfig{
			Ruleset: c.Config.Ruleset,
			Limit:   c.Config.Limit,
			Until:   normFactsToFacts(c.Config.Until),
		}}
	case *NormCheck:
		return &CheckCmd{Facts: normFactsToFacts(c.Facts)}
	case *NormPush:
		return &PushCmd{N: c.N}
	case *NormPop:
		return &PopCmd{N: c.N}
	case *NormRulesetCmd:
		return &RulesetCmd{Name: c.Name}
	case *NormSetOption:
		return &SetOptionCmd{Name: c.Name, Value: c.Value}
	default:
		panic("unreachable norm command")
	}
}

// VisitExprs calls visit for every NormExpr occurring in the command, in
// program order. Used to discover the call shapes a program mentions.
func (nc NormCommand) VisitExprs(visit func(NormExpr)) {
	visitFact := func(f NormFact) {
		if a, ok := f.(*NormAssign); ok {
			visit(a.Expr)
		}
	}
	visitAction := func(a NormAction) {
		switch a := a.(type) {
		case *NormLet:
			visit(a.Expr)
		case *NormSet:
			visit(a.Expr)
		case *NormDelete:
			visit(a.Expr)
		}
	}

	switch c := nc.Cmd.(type) {
	case *NormRuleCmd:
		for _, f := range c.Rule.Body {
			visitFact(f)
		}
		for _, a := range c.Rule.Head {
			visitAction(a)
		}
	case *NormActionCmd:
		visitAction(c.Action)
	case *NormCheck:
		for _, f := range c.Facts {
			visitFact(f)
		}
	case *NormRunCmd:
		for _, f := range c.Config.Until {
			visitFact(f)
		}
	}
}
