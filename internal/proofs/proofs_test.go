package proofs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egglite/internal/ast"
	"egglite/internal/desugar"
	"egglite/internal/errors"
	"egglite/internal/parser"
	"egglite/internal/types"
)

// instrument runs a source program through the front half of the pipeline
// and returns the instrumented surface program.
func instrument(t *testing.T, src string) []ast.Command {
	t.Helper()
	program, err := parser.ParseProgram("test.egg", src)
	require.NoError(t, err)

	d := desugar.NewDesugarer(parser.ParseProgram)
	desugared, err := d.DesugarProgram(program)
	require.NoError(t, err)
	norm := d.Normalize(desugared)

	env := types.NewTypeEnv()
	require.NoError(t, env.TypecheckProgram(norm))

	out, err := AddProofs(norm, env, d.Fresh)
	require.NoError(t, err)
	return out
}

func findFunction(cmds []ast.Command, name string) (ast.FunctionDecl, bool) {
	for _, c := range cmds {
		if fn, ok := c.(*ast.FunctionCmd); ok && fn.Decl.Name.String() == name {
			return fn.Decl, true
		}
	}
	return ast.FunctionDecl{}, false
}

func TestHeaderParses(t *testing.T) {
	cmds, err := Header()
	require.NoError(t, err)
	require.NotEmpty(t, cmds)

	rs, ok := cmds[0].(*ast.RulesetCmd)
	require.True(t, ok, "the proof ruleset is declared first")
	assert.Equal(t, "proofrules__", rs.Name.String())

	eqGraph, ok := findFunction(cmds, "EqGraph__")
	require.True(t, ok)
	require.NotNil(t, eqGraph.Merge)
	assert.Equal(t, "old", eqGraph.Merge.(*ast.Var).Name.String())

	for _, name := range []string{
		"Cons__", "Original__", "OriginalEq__", "Rule__", "RuleTerm__",
		"ComputePrim__", "DemandEq__", "Congruence__", "Flip__",
		"MakeTrmPrf__", "TrmOf__", "PrfOf__", "GetChild__",
	} {
		_, ok := findFunction(cmds, name)
		assert.True(t, ok, "header declares %s", name)
	}

	declared := false
	for _, c := range cmds {
		if d, ok := c.(*ast.DeclareCmd); ok && d.Name.String() == "Null__" {
			declared = true
			assert.Equal(t, "PrfList__", d.Sort.String())
		}
	}
	assert.True(t, declared, "Null__ is a declared constant")
}

func TestHeaderTypechecks(t *testing.T) {
	cmds, err := Header()
	require.NoError(t, err)

	d := desugar.NewDesugarer(parser.ParseProgram)
	desugared, err := d.DesugarProgram(cmds)
	require.NoError(t, err)
	env := types.NewTypeEnv()
	assert.NoError(t, env.TypecheckProgram(d.Normalize(desugared)))
}

func TestSetupPrimitiveMirrors(t *testing.T) {
	out := instrument(t, `(sort V)`)
	for _, sortName := range []string{"i64", "f64", "String", "bool", "Unit"} {
		astFn, ok := findFunction(out, "Ast"+sortName+"__")
		require.True(t, ok)
		assert.Equal(t, []ast.Symbol{ast.Intern(sortName)}, astFn.Schema.Input)
		assert.Equal(t, "Ast__", astFn.Schema.Output.String())

		repFn, ok := findFunction(out, "Rep"+sortName+"__")
		require.True(t, ok)
		assert.Equal(t, "TrmPrf__", repFn.Schema.Output.String())
	}
}

func TestTopLevelSetGetsOriginalProof(t *testing.T) {
	out := instrument(t, `
		(function foo (i64) i64)
		(set (foo 1) 2)
		(check (= (foo 1) 2))
	`)

	astFn, ok := findFunction(out, "Astfoo_i64__")
	require.True(t, ok)
	assert.Equal(t, []ast.Symbol{ast.Intern("Ast__")}, astFn.Schema.Input)

	repFn, ok := findFunction(out, "Repfoo_i64__")
	require.True(t, ok)
	require.NotNil(t, repFn.Merge, "representatives keep the first proof")
	assert.Equal(t, "old", repFn.Merge.(*ast.Var).Name.String())
	assert.NotEmpty(t, repFn.MergeAction)

	// the set is mirrored by an Original__ representative
	foundRepSet := false
	for _, c := range out {
		a, ok := c.(*ast.ActionCmd)
		if !ok {
			continue
		}
		set, ok := a.Action.(*ast.SetAction)
		if !ok || set.Func.String() != "Repfoo_i64__" {
			continue
		}
		foundRepSet = true
		mk, ok := set.Value.(*ast.Call)
		require.True(t, ok)
		assert.Equal(t, "MakeTrmPrf__", mk.Func.String())
		orig, ok := mk.Args[1].(*ast.Call)
		require.True(t, ok)
		assert.Equal(t, "Original__", orig.Func.String())
	}
	assert.True(t, foundRepSet)

	// user-visible commands survive
	checks := 0
	for _, c := range out {
		if _, ok := c.(*ast.CheckCmd); ok {
			checks++
		}
	}
	assert.Equal(t, 1, checks)
}

func i64FuncType(t *testing.T, name string, arity int) types.FuncType {
	t.Helper()
	env := types.NewTypeEnv()
	i64Sort, ok := env.GetSort(ast.Intern("i64"))
	require.True(t, ok)
	ft := types.FuncType{Name: ast.Intern(name), Output: i64Sort}
	for i := 0; i < arity; i++ {
		ft.Input = append(ft.Input, i64Sort)
	}
	return ft
}

func TestMergeActionMatchesDocumentedText(t *testing.T) {
	// the structural construction must equal what parsing the documented
	// textual merge action produces
	expected, err := parser.ParseActions(`
		(let t1__ (TrmOf__ old))
		(let t2__ (TrmOf__ new))
		(let p1__ (PrfOf__ old))
		(let c1_0__ (GetChild__ t1__ 0))
		(let c2_0__ (GetChild__ t2__ 0))
		(let congr_prf__ (Congruence__ p1__ (Cons__ (DemandEq__ c1_0__ c2_0__) Null__)))
		(set (EqGraph__ t1__ t2__) congr_prf__)
		(set (EqGraph__ t2__ t1__) (Flip__ congr_prf__))
	`)
	require.NoError(t, err)

	got := mergeAction(i64FuncType(t, "foo", 1))
	assert.Equal(t, expected, got)
}

func TestMergeActionChildOrder(t *testing.T) {
	got := mergeAction(i64FuncType(t, "pair", 2))

	// the premise list is built right to left, so index 0 heads the list
	var congr *ast.LetAction
	for _, a := range got {
		if l, ok := a.(*ast.LetAction); ok && l.Name.String() == "congr_prf__" {
			congr = l
		}
	}
	require.NotNil(t, congr)
	cons := congr.Expr.(*ast.Call).Args[1].(*ast.Call)
	require.Equal(t, "Cons__", cons.Func.String())
	first := cons.Args[0].(*ast.Call)
	assert.Equal(t, "c1_0__", first.Args[0].(*ast.Var).Name.String())
	rest := cons.Args[1].(*ast.Call)
	second := rest.Args[0].(*ast.Call)
	assert.Equal(t, "c1_1__", second.Args[0].(*ast.Var).Name.String())
}

func TestGetChildRule(t *testing.T) {
	cmd := makeGetChildRule(i64FuncType(t, "pair", 2))
	rc, ok := cmd.(*ast.RuleCmd)
	require.True(t, ok)
	assert.Equal(t, "proofrules__", rc.Ruleset.String())
	require.Len(t, rc.Rule.Body, 1)
	require.Len(t, rc.Rule.Head, 2)

	for i, a := range rc.Rule.Head {
		set := a.(*ast.SetAction)
		assert.Equal(t, "GetChild__", set.Func.String())
		idx := set.Args[1].(*ast.Lit).Value.(ast.IntLit)
		assert.Equal(t, int64(i), idx.Value)
	}
}

func TestRuleInstrumentation(t *testing.T) {
	out := instrument(t, `
		(datatype Math (Num i64) (Add Math Math))
		(rule ((= e (Add x y))) ((union e (Add y x))))
		(run 1)
	`)

	var rule *ast.RuleCmd
	for _, c := range out {
		if rc, ok := c.(*ast.RuleCmd); ok && rc.Rule.Name == ast.Intern("rule_main_1") {
			rule = rc
		}
	}
	require.NotNil(t, rule, "the instrumented user rule carries a generated name")

	// the body additionally matches the representative and unpacks it
	var repFact, trmFact, prfFact, getChildFacts int
	for _, f := range rule.Rule.Body {
		eq, ok := f.(*ast.EqFact)
		if !ok {
			continue
		}
		if call, ok := eq.Exprs[1].(*ast.Call); ok {
			switch call.Func.String() {
			case "RepAdd_Math_Math__":
				repFact++
			case "TrmOf__":
				trmFact++
			case "PrfOf__":
				prfFact++
			case "GetChild__":
				getChildFacts++
			}
		}
	}
	assert.Equal(t, 1, repFact)
	assert.Equal(t, 1, trmFact)
	assert.Equal(t, 1, prfFact)
	assert.Equal(t, 2, getChildFacts, "one child projection per argument")

	// the union writes a symmetric pair into the equality graph, keyed by
	// the same rule proof
	var eqSets []*ast.SetAction
	var ruleProofLet *ast.LetAction
	for _, a := range rule.Rule.Head {
		switch a := a.(type) {
		case *ast.SetAction:
			if a.Func.String() == "EqGraph__" {
				eqSets = append(eqSets, a)
			}
		case *ast.LetAction:
			if call, ok := a.Expr.(*ast.Call); ok && call.Func.String() == "Rule__" {
				ruleProofLet = a
			}
		}
	}
	require.Len(t, eqSets, 2)
	require.NotNil(t, ruleProofLet, "the body folds into a Rule__ proof")

	a0 := eqSets[0].Args[0].(*ast.Var).Name
	a1 := eqSets[0].Args[1].(*ast.Var).Name
	assert.Equal(t, a1, eqSets[1].Args[0].(*ast.Var).Name)
	assert.Equal(t, a0, eqSets[1].Args[1].(*ast.Var).Name)
	assert.Equal(t, eqSets[0].Value.(*ast.Var).Name, eqSets[1].Value.(*ast.Var).Name)
	assert.Equal(t, ruleProofLet.Name, eqSets[0].Value.(*ast.Var).Name,
		"equality entries are keyed by the rule proof")

	// the freshly built right-hand side gets a representative
	foundRepSet := false
	for _, a := range rule.Rule.Head {
		if set, ok := a.(*ast.SetAction); ok && set.Func.String() == "RepAdd_Math_Math__" {
			foundRepSet = true
		}
	}
	assert.True(t, foundRepSet)
}

func TestRuleNamePreserved(t *testing.T) {
	out := instrument(t, `
		(datatype Math (Num i64))
		(rule ((= v (Num x))) ((union v v)) :name "reflexive")
	`)
	found := false
	for _, c := range out {
		if rc, ok := c.(*ast.RuleCmd); ok && rc.Rule.Name == ast.Intern("reflexive") {
			found = true
		}
	}
	assert.True(t, found, "user-supplied rule names flow into the proof term")
}

func TestUnderConstrainedBody(t *testing.T) {
	env := types.NewTypeEnv()
	ps := newProofState(env, desugar.NewProgramFreshGen())

	var actions []ast.NormAction
	_, err := ps.instrumentFacts([]ast.NormFact{
		&ast.NormConstrainEq{Lhs: ast.Intern("p"), Rhs: ast.Intern("q")},
	}, newProofInfo(), &actions)
	require.Error(t, err)

	ce, ok := err.(*errors.CompilerError)
	require.True(t, ok)
	assert.Equal(t, errors.InstrumentationError, ce.Kind)
	assert.Contains(t, ce.Message, "p")
	assert.Contains(t, ce.Message, "q")
}

func TestRunnerExpansion(t *testing.T) {
	cmds := makeRunner(ast.NormRunConfig{Ruleset: ast.Intern("opt"), Limit: 3})
	require.Len(t, cmds, 7, "limit proof/user pairs plus a final proof run")

	for i := 0; i < 3; i++ {
		proof := cmds[2*i].(*ast.RunCmd)
		assert.Equal(t, "proofrules__", proof.Config.Ruleset.String())
		assert.Equal(t, 100, proof.Config.Limit)

		user := cmds[2*i+1].(*ast.RunCmd)
		assert.Equal(t, "opt", user.Config.Ruleset.String())
		assert.Equal(t, 1, user.Config.Limit)
	}
	final := cmds[6].(*ast.RunCmd)
	assert.Equal(t, "proofrules__", final.Config.Ruleset.String())
}

func TestDeclareProof(t *testing.T) {
	out := instrument(t, `
		(sort V)
		(declare origin V)
	`)

	var declaredTermCmd *ast.DeclareCmd
	var originDecl *ast.DeclareCmd
	for _, c := range out {
		if d, ok := c.(*ast.DeclareCmd); ok {
			switch d.Name.String() {
			case "Astorigin___":
				declaredTermCmd = d
			case "origin":
				originDecl = d
			}
		}
	}
	require.NotNil(t, declaredTermCmd, "a global AST term is declared for the constant")
	assert.Equal(t, "Ast__", declaredTermCmd.Sort.String())
	require.NotNil(t, originDecl)

	foundOriginal := false
	for _, c := range out {
		a, ok := c.(*ast.ActionCmd)
		if !ok {
			continue
		}
		if let, ok := a.Action.(*ast.LetAction); ok {
			if call, ok := let.Expr.(*ast.Call); ok && call.Func.String() == "Original__" {
				if v, ok := call.Args[0].(*ast.Var); ok && v.Name.String() == "Astorigin___" {
					foundOriginal = true
				}
			}
		}
	}
	assert.True(t, foundOriginal)
}

func TestPushBuffersMirrorDeclarations(t *testing.T) {
	out := instrument(t, `
		(datatype Math (Num i64))
		(push)
		(let a (Num 1))
		(pop)
	`)

	mirrorIdx, pushIdx := -1, -1
	for i, c := range out {
		if fn, ok := c.(*ast.FunctionCmd); ok && fn.Decl.Name.String() == "AstNum_i64__" {
			mirrorIdx = i
		}
		if _, ok := c.(*ast.PushCmd); ok {
			pushIdx = i
		}
	}
	require.NotEqual(t, -1, mirrorIdx)
	require.NotEqual(t, -1, pushIdx)
	assert.Less(t, mirrorIdx, pushIdx,
		"mirror functions discovered after a push are hoisted before it")
}
