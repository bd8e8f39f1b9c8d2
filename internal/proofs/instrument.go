package proofs

import (
	"github.com/tliron/commonlog"

	"egglite/internal/ast"
	"egglite/internal/desugar"
	"egglite/internal/sorts"
	"egglite/internal/types"
)

var log = commonlog.GetLogger("egglite.proofs")

// AddProofs rewrites a normalized, typechecked program into a surface
// program that additionally maintains AST mirrors, representative-with-proof
// tables, and the equality graph. The result goes back through desugaring
// and normalization before execution.
//
// Function declarations are forbidden after a push, so mirror declarations
// discovered later are buffered into a prelude that runs before the first
// push.
func AddProofs(program []ast.NormCommand, env *types.TypeEnv, fresh *desugar.FreshGen) ([]ast.Command, error) {
	res, err := Header()
	if err != nil {
		return nil, err
	}
	ps := newProofState(env, fresh)

	res = append(res, setupPrimitives()...)

	hasPushed := false
	var resBeforePush []ast.Command

	for _, command := range program {
		ps.currentCtx = command.ID

		// mirror functions for every call shape this command mentions
		var visitErr error
		command.VisitExprs(func(e ast.NormExpr) {
			if visitErr != nil {
				return
			}
			cmds, err := ps.setupMirrors(e)
			if err != nil {
				visitErr = err
				return
			}
			if hasPushed {
				resBeforePush = append(resBeforePush, cmds...)
			} else {
				res = append(res, cmds...)
			}
		})
		if visitErr != nil {
			return nil, visitErr
		}

		switch cmd := command.Cmd.(type) {
		case *ast.NormPush:
			if !hasPushed {
				hasPushed = true
				resBeforePush = res
				res = nil
			}
			res = append(res, command.ToCommand())
		case *ast.NormDeclare:
			res = append(res, ps.makeDeclareProof(cmd.Name)...)
			res = append(res, command.ToCommand())
		case *ast.NormRuleCmd:
			name := ps.ruleName(cmd.Ruleset, cmd.Name)
			log.Debugf("instrumenting rule %s", name)
			rule, err := ps.instrumentRule(cmd.Rule, name)
			if err != nil {
				return nil, err
			}
			res = append(res, &ast.RuleCmd{Ruleset: cmd.Ruleset, Rule: rule})
		case *ast.NormRunCmd:
			res = append(res, makeRunner(cmd.Config)...)
		case *ast.NormActionCmd:
			res = append(res, command.ToCommand())
			cmds, err := ps.proofOriginalAction(cmd.Action)
			if err != nil {
				return nil, err
			}
			res = append(res, cmds...)
		default:
			res = append(res, command.ToCommand())
		}
	}

	return append(resBeforePush, res...), nil
}

// setupPrimitives declares the AST and representative mirrors for every
// primitive sort: the injection of a raw value into the term world.
func setupPrimitives() []ast.Command {
	var commands []ast.Command
	for _, s := range sorts.Builtins() {
		commands = append(commands, &ast.FunctionCmd{Decl: ast.FunctionDecl{
			Name: astVersionPrim(s.Name()),
			Schema: ast.Schema{
				Input:  []ast.Symbol{s.Name()},
				Output: ast.Intern("Ast__"),
			},
		}})
	}
	for _, s := range sorts.Builtins() {
		commands = append(commands, &ast.FunctionCmd{Decl: ast.FunctionDecl{
			Name: repVersionPrim(s.Name()),
			Schema: ast.Schema{
				Input:  []ast.Symbol{s.Name()},
				Output: ast.Intern("TrmPrf__"),
			},
		}})
	}
	return commands
}

// setupMirrors emits, once per (function, input sorts) pair, the AST mirror
// table, the representative table with its congruence merge action, and the
// child-projection rule.
func (ps *proofState) setupMirrors(e ast.NormExpr) ([]ast.Command, error) {
	ft, err := ps.typecheck(e)
	if err != nil {
		return nil, err
	}
	astName := astVersion(ft)
	if ps.astFuncsCreated[astName] {
		return nil, nil
	}
	ps.astFuncsCreated[astName] = true
	return []ast.Command{
		&ast.FunctionCmd{Decl: makeAstFunction(ft)},
		&ast.FunctionCmd{Decl: makeRepFunction(ft)},
		makeGetChildRule(ft),
	}, nil
}

func makeAstFunction(ft types.FuncType) ast.FunctionDecl {
	in := make([]ast.Symbol, len(ft.Input))
	for i := range in {
		in[i] = ast.Intern("Ast__")
	}
	return ast.FunctionDecl{
		Name:   astVersion(ft),
		Schema: ast.Schema{Input: in, Output: ast.Intern("Ast__")},
	}
}

func makeRepFunction(ft types.FuncType) ast.FunctionDecl {
	in := make([]ast.Symbol, len(ft.Input))
	for i, s := range ft.Input {
		in[i] = s.Name()
	}
	return ast.FunctionDecl{
		Name:        repVersion(ft),
		Schema:      ast.Schema{Input: in, Output: ast.Intern("TrmPrf__")},
		Merge:       ast.NewVar(ast.Intern("old")),
		MergeAction: mergeAction(ft),
	}
}

// mergeAction synthesizes the congruence proof recorded when two
// representatives for the same arguments meet: both terms are unpacked,
// their children extracted pairwise, and a Congruence__ over the demanded
// child equalities is written into the equality graph in both directions.
func mergeAction(ft types.FuncType) []ast.Action {
	old := ast.NewVar(ast.Intern("old"))
	new_ := ast.NewVar(ast.Intern("new"))
	t1 := ast.Intern("t1__")
	t2 := ast.Intern("t2__")
	p1 := ast.Intern("p1__")

	congrPrf := ast.Expr(ast.NewVar(ast.Intern("Null__")))
	for i := len(ft.Input) - 1; i >= 0; i-- {
		congrPrf = ast.NewCall(ast.Intern("Cons__"),
			ast.NewCall(ast.Intern("DemandEq__"),
				ast.NewVar(mergeChild1(i)), ast.NewVar(mergeChild2(i))),
			congrPrf)
	}

	actions := []ast.Action{
		&ast.LetAction{Name: t1, Expr: ast.NewCall(ast.Intern("TrmOf__"), old)},
		&ast.LetAction{Name: t2, Expr: ast.NewCall(ast.Intern("TrmOf__"), new_)},
		&ast.LetAction{Name: p1, Expr: ast.NewCall(ast.Intern("PrfOf__"), old)},
	}
	for i := range ft.Input {
		actions = append(actions,
			&ast.LetAction{Name: mergeChild1(i), Expr: ast.NewCall(ast.Intern("GetChild__"),
				ast.NewVar(t1), &ast.Lit{Value: ast.IntLit{Value: int64(i)}})},
			&ast.LetAction{Name: mergeChild2(i), Expr: ast.NewCall(ast.Intern("GetChild__"),
				ast.NewVar(t2), &ast.Lit{Value: ast.IntLit{Value: int64(i)}})},
		)
	}
	congr := ast.Intern("congr_prf__")
	actions = append(actions,
		&ast.LetAction{Name: congr, Expr: ast.NewCall(ast.Intern("Congruence__"), ast.NewVar(p1), congrPrf)},
		&ast.SetAction{
			Func:  ast.Intern("EqGraph__"),
			Args:  []ast.Expr{ast.NewVar(t1), ast.NewVar(t2)},
			Value: ast.NewVar(congr),
		},
		&ast.SetAction{
			Func:  ast.Intern("EqGraph__"),
			Args:  []ast.Expr{ast.NewVar(t2), ast.NewVar(t1)},
			Value: ast.NewCall(ast.Intern("Flip__"), ast.NewVar(congr)),
		},
	)
	return actions
}

// makeGetChildRule projects each child of an observed AST mirror node into
// the GetChild__ table.
func makeGetChildRule(ft types.FuncType) ast.Command {
	astVar := ast.Intern("ast__")
	args := make([]ast.Expr, len(ft.Input))
	for i := range ft.Input {
		args[i] = ast.NewVar(getChildVar(i))
	}
	rule := ast.Rule{
		Body: []ast.Fact{&ast.EqFact{Exprs: []ast.Expr{
			ast.NewVar(astVar),
			&ast.Call{Func: astVersion(ft), Args: args},
		}}},
	}
	for i := range ft.Input {
		rule.Head = append(rule.Head, &ast.SetAction{
			Func:  ast.Intern("GetChild__"),
			Args:  []ast.Expr{ast.NewVar(astVar), &ast.Lit{Value: ast.IntLit{Value: int64(i)}}},
			Value: ast.NewVar(getChildVar(i)),
		})
	}
	return &ast.RuleCmd{Ruleset: ast.Intern("proofrules__"), Rule: rule}
}

// makeRunner interleaves the proof ruleset with the user ruleset so that
// every equality observable to user rules has an equality-graph entry by the
// end of the same iteration.
func makeRunner(cfg ast.NormRunConfig) []ast.Command {
	proofRun := func() ast.Command {
		return &ast.RunCmd{Config: ast.RunConfig{
			Ruleset: ast.Intern("proofrules__"),
			Limit:   100,
		}}
	}
	var res []ast.Command
	for i := 0; i < cfg.Limit; i++ {
		res = append(res, proofRun())
		res = append(res, &ast.RunCmd{Config: ast.RunConfig{
			Ruleset: cfg.Ruleset,
			Limit:   1,
			Until:   normFactsToSurface(cfg.Until),
		}})
	}
	return append(res, proofRun())
}

func normFactsToSurface(facts []ast.NormFact) []ast.Fact {
	if facts == nil {
		return nil
	}
	out := make([]ast.Fact, len(facts))
	for i, f := range facts {
		out[i] = f.ToFact()
	}
	return out
}
