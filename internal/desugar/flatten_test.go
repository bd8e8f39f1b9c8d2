package desugar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egglite/internal/ast"
	"egglite/internal/parser"
)

func parseRule(t *testing.T, src string) ast.Rule {
	t.Helper()
	cmd := parseOne(t, src)
	rc, ok := cmd.(*ast.RuleCmd)
	require.True(t, ok)
	return rc.Rule
}

// assertSingleAssignment checks that no variable is bound by more than one
// assignment across a flat rule.
func assertSingleAssignment(t *testing.T, flat ast.FlatRule) {
	t.Helper()
	bound := map[ast.Symbol]int{}
	for _, f := range flat.Body {
		if a, ok := f.(*ast.SSAAssign); ok {
			bound[a.Var]++
		}
	}
	for _, a := range flat.Head {
		switch a := a.(type) {
		case *ast.SSALet:
			bound[a.Var]++
		case *ast.SSALetVar:
			bound[a.Var]++
		}
	}
	for v, n := range bound {
		assert.LessOrEqual(t, n, 1, "variable %s is bound %d times", v, n)
	}
}

func TestSharedVariableFlattening(t *testing.T) {
	// (rule ((= (f x) (g x))) ((union (f x) (g x)))): the two-sided equality
	// shares one generated binder, the repeated x in the body is matched
	// through a constrained stand-in, and the second side's result is left
	// untied because its binder was already taken
	flat := FlattenRule(parseRule(t, `(rule ((= (f x) (g x))) ((union (f x) (g x))))`))
	assertSingleAssignment(t, flat)

	require.Len(t, flat.Body, 4)

	fAssign, ok := flat.Body[0].(*ast.SSAAssign)
	require.True(t, ok)
	fCall := fAssign.Expr.(*ast.SSACall)
	assert.Equal(t, "f", fCall.Func.String())
	assert.Equal(t, "x", fCall.Args[0].String(), "f matches the user variable directly")

	bind, ok := flat.Body[1].(*ast.SSAConstrainEq)
	require.True(t, ok)
	assert.True(t, ast.IsFreshVar(bind.Lhs), "the shared binder is generated")
	assert.Equal(t, fAssign.Var, bind.Rhs, "the binder ties to the first side's result")

	standInEq, ok := flat.Body[2].(*ast.SSAConstrainEq)
	require.True(t, ok)
	assert.True(t, ast.IsFreshVar(standInEq.Lhs))
	assert.Equal(t, "x", standInEq.Rhs.String(), "the repeated x goes through a stand-in")

	gAssign, ok := flat.Body[3].(*ast.SSAAssign)
	require.True(t, ok)
	gCall := gAssign.Expr.(*ast.SSACall)
	assert.Equal(t, "g", gCall.Func.String())
	assert.Equal(t, standInEq.Lhs, gCall.Args[0])

	// the binder was consumed by the first side, so no constraint mentions
	// g's result
	for _, f := range flat.Body {
		if c, ok := f.(*ast.SSAConstrainEq); ok {
			assert.NotEqual(t, gAssign.Var, c.Lhs)
			assert.NotEqual(t, gAssign.Var, c.Rhs)
		}
	}
}

func TestRepeatedVariableInOneEquality(t *testing.T) {
	// the second x in (f x x) defers its constraint until after the
	// assignment, so the stand-in can be typed from the call
	flat := FlattenRule(parseRule(t, `(rule ((= y (f x x))) ())`))
	require.Len(t, flat.Body, 3)

	assign, ok := flat.Body[0].(*ast.SSAAssign)
	require.True(t, ok, "assignment comes first")
	call := assign.Expr.(*ast.SSACall)
	assert.Equal(t, "x", call.Args[0].String())
	assert.True(t, ast.IsFreshVar(call.Args[1]))

	deferred, ok := flat.Body[1].(*ast.SSAConstrainEq)
	require.True(t, ok)
	assert.Equal(t, call.Args[1], deferred.Lhs)
	assert.Equal(t, "x", deferred.Rhs.String())

	bind, ok := flat.Body[2].(*ast.SSAConstrainEq)
	require.True(t, ok)
	assert.Equal(t, "y", bind.Lhs.String())
	assert.Equal(t, assign.Var, bind.Rhs)
}

func TestRepeatedVariableAcrossEqualities(t *testing.T) {
	// a reuse in a later equality constrains immediately, before the call
	flat := FlattenRule(parseRule(t, `(rule ((= a (f x)) (= b (g x))) ())`))
	assertSingleAssignment(t, flat)

	// order: assign f, bind a, constrain stand-in, assign g, bind b
	require.Len(t, flat.Body, 5)
	_, ok := flat.Body[2].(*ast.SSAConstrainEq)
	assert.True(t, ok, "the stand-in constraint precedes g's assignment")
	_, ok = flat.Body[3].(*ast.SSAAssign)
	assert.True(t, ok)
}

func TestLiteralFact(t *testing.T) {
	flat := FlattenRule(parseRule(t, `(rule ((= v 1)) ())`))
	require.Len(t, flat.Body, 2)
	assign := flat.Body[0].(*ast.SSAAssign)
	lit, ok := assign.Expr.(*ast.SSALit)
	require.True(t, ok)
	assert.Equal(t, ast.IntLit{Value: 1}, lit.Value)
	eq := flat.Body[1].(*ast.SSAConstrainEq)
	assert.Equal(t, "v", eq.Lhs.String())
}

func TestBareExpressionFact(t *testing.T) {
	// a bare fact matches without binding a user-visible name
	flat := FlattenRule(parseRule(t, `(rule ((edge a b)) ())`))
	require.Len(t, flat.Body, 2)
	assign := flat.Body[0].(*ast.SSAAssign)
	assert.Equal(t, "edge", assign.Expr.(*ast.SSACall).Func.String())
	eq := flat.Body[1].(*ast.SSAConstrainEq)
	assert.True(t, ast.IsFreshVar(eq.Lhs))
}

func TestActionFlattening(t *testing.T) {
	rule := parseRule(t, `(rule () ((let w (Add (Num 1) x)) (set (foo w) 2) (delete (foo w)) (panic "stop")))`)
	flat := FlattenRule(rule)
	assert.Empty(t, flat.Body)

	// every nested subterm gets its own let
	var letCalls, letLits, letVars, sets, deletes, panics int
	for _, a := range flat.Head {
		switch a := a.(type) {
		case *ast.SSALet:
			switch a.Expr.(type) {
			case *ast.SSACall:
				letCalls++
			case *ast.SSALit:
				letLits++
			}
		case *ast.SSALetVar:
			letVars++
		case *ast.SSASet:
			sets++
		case *ast.SSADelete:
			deletes++
		case *ast.SSAPanic:
			panics++
		}
	}
	assert.Equal(t, 2, letCalls, "Add and Num each get a let")
	assert.Equal(t, 2, letLits, "the literal 1 and the set value 2")
	// x is renamed into the Add call, w is bound to the result, and the two
	// uses of w in set/delete go through stand-ins
	assert.Equal(t, 4, letVars)
	assert.Equal(t, 1, sets)
	assert.Equal(t, 1, deletes)
	assert.Equal(t, 1, panics)
	assertSingleAssignment(t, flat)
}

func TestFlattenIsDeterministic(t *testing.T) {
	rule := parseRule(t, `(rule ((= e (Add (Num 1) x))) ((union e (Add x (Num 1)))))`)
	assert.Equal(t, FlattenRule(rule), FlattenRule(rule))
}

func TestFlattenAvoidsExistingFreshNames(t *testing.T) {
	// a rule that already mentions generated names (it went through an
	// earlier flattening) never gets one of them rebound
	rule := parseRule(t, `(rule ((= fvar2__ (f x)) (= y fvar2__)) ((union y fvar2__)))`)
	flat := FlattenRule(rule)
	assertSingleAssignment(t, flat)
	for _, f := range flat.Body {
		if a, ok := f.(*ast.SSAAssign); ok {
			assert.NotEqual(t, ast.Intern("fvar2__"), a.Var,
				"fvar2__ is taken and must not be rebound by the generator")
		}
	}
}

func TestNormalizeProgram(t *testing.T) {
	cmds, err := parser.ParseProgram("test.egg", `
		(function foo (i64) i64)
		(set (foo 1) 2)
		(check (= (foo 1) 2))
	`)
	require.NoError(t, err)

	d := newTestDesugarer()
	desugared, err := d.DesugarProgram(cmds)
	require.NoError(t, err)
	norm := d.Normalize(desugared)

	// ids are strictly increasing in program order
	for i := 1; i < len(norm); i++ {
		assert.Greater(t, norm[i].ID, norm[i-1].ID)
	}

	// the set splits into literal bindings plus one set action
	var letLits, setActions, checks int
	for _, nc := range norm {
		switch c := nc.Cmd.(type) {
		case *ast.NormActionCmd:
			switch c.Action.(type) {
			case *ast.NormLetLit:
				letLits++
			case *ast.NormSet:
				setActions++
			}
		case *ast.NormCheck:
			checks++
			assert.NotEmpty(t, c.Facts)
		}
	}
	assert.Equal(t, 2, letLits)
	assert.Equal(t, 1, setActions)
	assert.Equal(t, 1, checks)
}
