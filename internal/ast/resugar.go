package ast

import (
	"regexp"
	"strconv"
)

var freshNamePattern = regexp.MustCompile(`^fvar([0-9]+)__$`)

// IsFreshVar reports whether a symbol was generated by the flattener's
// fresh-name generator.
func IsFreshVar(s Symbol) bool {
	return freshNamePattern.MatchString(s.String())
}

// FreshVarIndex extracts the counter value of a generated variable name.
func FreshVarIndex(s Symbol) (int, bool) {
	m := freshNamePattern.FindStringSubmatch(s.String())
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ToRule reconstructs a readable surface rule from a flat one by inlining
// generated variables. Re-flattening the result reproduces the receiver:
// the fresh-name generator walks the reconstructed rule in the same order it
// walked the original, so every generated name lands on the same subterm.
func (r FlatRule) ToRule() Rule {
	return Rule{
		Body: resugarBody(r.Body),
		Head: resugarHead(r.Head),
	}
}

func resugarBody(body []SSAFact) []Fact {
	assigned := map[Symbol]SSAExpr{}
	argUsed := map[Symbol]bool{}
	inConstraint := map[Symbol]bool{}
	for _, f := range body {
		switch f := f.(type) {
		case *SSAAssign:
			assigned[f.Var] = f.Expr
			if call, ok := f.Expr.(*SSACall); ok {
				for _, a := range call.Args {
					argUsed[a] = true
				}
			}
		case *SSAConstrainEq:
			inConstraint[f.Lhs] = true
			inConstraint[f.Rhs] = true
		}
	}

	// A generated, unassigned variable constrained against a user variable is
	// an alias introduced for a repeated occurrence; expand it back to the
	// user variable it mirrors.
	alias := map[Symbol]Symbol{}
	for _, f := range body {
		eq, ok := f.(*SSAConstrainEq)
		if !ok {
			continue
		}
		if IsFreshVar(eq.Lhs) && assigned[eq.Lhs] == nil && !IsFreshVar(eq.Rhs) {
			alias[eq.Lhs] = eq.Rhs
		}
	}

	var expand func(v Symbol) Expr
	expand = func(v Symbol) Expr {
		if target, ok := alias[v]; ok {
			return NewVar(target)
		}
		e, ok := assigned[v]
		if !ok || !IsFreshVar(v) {
			return NewVar(v)
		}
		switch e := e.(type) {
		case *SSALit:
			return &Lit{Value: e.Value}
		case *SSACall:
			args := make([]Expr, len(e.Args))
			for i, a := range e.Args {
				args[i] = expand(a)
			}
			return &Call{Func: e.Func, Args: args}
		}
		return NewVar(v)
	}

	// A root assignment no constraint mentions comes from an equality whose
	// binder was already taken when it was lowered. Pair each such root with
	// the binder of the constraint preceding it, so the equality can be
	// reassembled.
	attached := map[Symbol][]Symbol{}
	var lastBinder Symbol
	haveBinder := false
	for _, f := range body {
		switch f := f.(type) {
		case *SSAConstrainEq:
			if _, isAlias := alias[f.Lhs]; isAlias {
				continue
			}
			lastBinder = f.Lhs
			haveBinder = true
		case *SSAAssign:
			if haveBinder && IsFreshVar(f.Var) && !argUsed[f.Var] && !inConstraint[f.Var] {
				attached[lastBinder] = append(attached[lastBinder], f.Var)
			}
		}
	}

	var facts []Fact
	for _, f := range body {
		eq, ok := f.(*SSAConstrainEq)
		if !ok {
			continue
		}
		if _, isAlias := alias[eq.Lhs]; isAlias {
			continue
		}
		extra := attached[eq.Lhs]

		// a user-visible binder keeps one fact per constraint, in place
		if !IsFreshVar(eq.Lhs) || assigned[eq.Lhs] != nil {
			facts = append(facts, &EqFact{Exprs: []Expr{expand(eq.Lhs), expand(eq.Rhs)}})
			for _, d := range extra {
				facts = append(facts, &EqFact{Exprs: []Expr{expand(eq.Lhs), expand(d)}})
			}
			continue
		}

		// a generated binder with a paired untied root is a two-sided
		// equality; one without is a bare expression fact
		if len(extra) > 0 {
			facts = append(facts, &EqFact{Exprs: []Expr{expand(eq.Rhs), expand(extra[0])}})
			continue
		}
		facts = append(facts, &ExprFact{Expr: expand(eq.Rhs)})
	}
	return facts
}

func resugarHead(head []SSAAction) []Action {
	uses := map[Symbol]int{}
	for _, a := range head {
		switch a := a.(type) {
		case *SSALet:
			if call, ok := a.Expr.(*SSACall); ok {
				for _, arg := range call.Args {
					uses[arg]++
				}
			}
		case *SSALetVar:
			uses[a.Val]++
		case *SSASet:
			for _, arg := range a.Args {
				uses[arg]++
			}
			uses[a.Value]++
		case *SSADelete:
			for _, arg := range a.Args {
				uses[arg]++
			}
		case *SSAUnion:
			uses[a.Lhs]++
			uses[a.Rhs]++
		}
	}

	bound := map[Symbol]Expr{}
	expandSym := func(v Symbol) Expr {
		if e, ok := bound[v]; ok && IsFreshVar(v) {
			return e
		}
		return NewVar(v)
	}
	expandExpr := func(e SSAExpr) Expr {
		switch e := e.(type) {
		case *SSALit:
			return &Lit{Value: e.Value}
		case *SSACall:
			args := make([]Expr, len(e.Args))
			for i, a := range e.Args {
				args[i] = expandSym(a)
			}
			return &Call{Func: e.Func, Args: args}
		}
		panic("unreachable ssa expr")
	}

	var actions []Action
	for _, a := range head {
		switch a := a.(type) {
		case *SSALet:
			switch {
			case IsFreshVar(a.Var) && uses[a.Var] > 0:
				bound[a.Var] = expandExpr(a.Expr)
			case IsFreshVar(a.Var):
				// a generated root nothing consumes: a bare expression action
				actions = append(actions, &ExprAction{Expr: expandExpr(a.Expr)})
			default:
				actions = append(actions, &LetAction{Name: a.Var, Expr: expandExpr(a.Expr)})
			}
		case *SSALetVar:
			if IsFreshVar(a.Var) {
				bound[a.Var] = expandSym(a.Val)
				continue
			}
			actions = append(actions, &LetAction{Name: a.Var, Expr: expandSym(a.Val)})
		case *SSASet:
			args := make([]Expr, len(a.Args))
			for i, arg := range a.Args {
				args[i] = expandSym(arg)
			}
			actions = append(actions, &SetAction{Func: a.Func, Args: args, Value: expandSym(a.Value)})
		case *SSADelete:
			args := make([]Expr, len(a.Args))
			for i, arg := range a.Args {
				args[i] = expandSym(arg)
			}
			actions = append(actions, &DeleteAction{Func: a.Func, Args: args})
		case *SSAUnion:
			actions = append(actions, &UnionAction{Lhs: expandSym(a.Lhs), Rhs: expandSym(a.Rhs)})
		case *SSAPanic:
			actions = append(actions, &PanicAction{Msg: a.Msg})
		}
	}
	return actions
}
