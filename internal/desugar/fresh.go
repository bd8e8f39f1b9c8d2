package desugar

import (
	"fmt"

	"egglite/internal/ast"
)

// FreshGen produces generated variable names. Rule flattening uses a
// rule-scoped generator spelling fvar1__, fvar2__, ...; program-level passes
// (top-level action flattening, proof instrumentation) share one
// compilation-wide generator in a separate namespace so the two can never
// collide inside a rule.
type FreshGen struct {
	prefix string
	count  int
}

// NewFreshGen returns a rule-scoped generator.
func NewFreshGen() *FreshGen { return &FreshGen{prefix: "fvar"} }

// NewProgramFreshGen returns the compilation-wide generator.
func NewProgramFreshGen() *FreshGen { return &FreshGen{prefix: "pvar"} }

func (g *FreshGen) Next() ast.Symbol {
	g.count++
	return ast.Intern(fmt.Sprintf("%s%d__", g.prefix, g.count))
}
