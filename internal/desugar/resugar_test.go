package desugar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egglite/internal/ast"
)

// reflatten prints a resugared flat rule, reparses it, and flattens again.
func reflatten(t *testing.T, flat ast.FlatRule) ast.FlatRule {
	t.Helper()
	text := (&ast.RuleCmd{Rule: flat.ToRule()}).String()
	rule := parseRule(t, text)
	return FlattenRule(rule)
}

func TestResugarSimpleRule(t *testing.T) {
	rule := parseRule(t, `(rule ((= e (Add x y))) ((union e (Add y x))))`)
	flat := FlattenRule(rule)

	back := flat.ToRule()
	assert.Equal(t, "(rule ((= e (Add x y))) ((union e (Add y x))))",
		(&ast.RuleCmd{Rule: back}).String())
}

func TestRoundTripSharedVariable(t *testing.T) {
	flat := FlattenRule(parseRule(t, `(rule ((= (f x) (g x))) ((union (f x) (g x))))`))
	assert.Equal(t, flat, reflatten(t, flat))
}

func TestRoundTripNestedTerms(t *testing.T) {
	flat := FlattenRule(parseRule(t, `(rule ((= e (Add (Num 1) x))) ((union e x)))`))
	assert.Equal(t, flat, reflatten(t, flat))
}

func TestRoundTripRewrite(t *testing.T) {
	d := newTestDesugarer()
	out, err := d.DesugarCommand(parseOne(t, `(rewrite (Add a b) (Add b a))`))
	require.NoError(t, err)
	flat := out[0].(*ast.FlatRuleCmd).Rule
	assert.Equal(t, flat, reflatten(t, flat))
}

func TestRoundTripActions(t *testing.T) {
	flat := FlattenRule(parseRule(t,
		`(rule ((= v (foo k))) ((let w (Add v v)) (set (foo k) w) (delete (bar w)) (panic "x")))`))
	assert.Equal(t, flat, reflatten(t, flat))
}

func TestRoundTripBareFact(t *testing.T) {
	flat := FlattenRule(parseRule(t, `(rule ((edge a b) (edge b c)) ((edge a c)))`))
	assert.Equal(t, flat, reflatten(t, flat))
}
