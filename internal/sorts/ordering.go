package sorts

import (
	"egglite/internal/ast"
	"egglite/internal/unionfind"
)

// ordering-min and ordering-max compare raw value bits. They are defined on
// any two values of the same sort, which makes them usable as merge
// expressions for arbitrary lattice functions.

type termOrdering struct {
	name ast.Symbol
	max  bool
}

func NewTermOrderingMin() Primitive {
	return &termOrdering{name: ast.Intern("ordering-min")}
}

func NewTermOrderingMax() Primitive {
	return &termOrdering{name: ast.Intern("ordering-max"), max: true}
}

func (p *termOrdering) Name() ast.Symbol { return p.name }

func (p *termOrdering) Accept(args []Sort) Sort {
	if len(args) == 2 && args[0].Name() == args[1].Name() {
		return args[0]
	}
	return nil
}

func (p *termOrdering) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	a, b := values[0], values[1]
	if a.Less(b) != p.max {
		return a, true
	}
	return b, true
}
