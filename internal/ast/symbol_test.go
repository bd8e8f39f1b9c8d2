package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternReturnsSameSymbol(t *testing.T) {
	a := Intern("Add")
	b := Intern("Add")
	assert.Equal(t, a, b, "interning the same spelling twice should yield one symbol")
	assert.Equal(t, "Add", a.String())
}

func TestInternDistinguishesSpellings(t *testing.T) {
	assert.NotEqual(t, Intern("foo"), Intern("Foo"))
	assert.NotEqual(t, Intern("x"), Intern("x "))
}

func TestZeroSymbolIsEmpty(t *testing.T) {
	var s Symbol
	assert.Equal(t, "", s.String())
}

func TestLiteralNames(t *testing.T) {
	assert.Equal(t, "i64", LiteralName(IntLit{Value: 3}).String())
	assert.Equal(t, "f64", LiteralName(F64Lit{Value: 1.5}).String())
	assert.Equal(t, "String", LiteralName(StringLit{Value: "hi"}).String())
	assert.Equal(t, "bool", LiteralName(BoolLit{Value: true}).String())
	assert.Equal(t, "Unit", LiteralName(UnitLit{}).String())
}

func TestFreshVarIndex(t *testing.T) {
	n, ok := FreshVarIndex(Intern("fvar12__"))
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = FreshVarIndex(Intern("rewrite_var__"))
	assert.False(t, ok)
	_, ok = FreshVarIndex(Intern("pvar3__"))
	assert.False(t, ok, "program-level names are not rule fresh vars")
}
