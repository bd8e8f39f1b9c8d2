package sorts

import (
	"egglite/internal/ast"
	"egglite/internal/unionfind"
)

// Sort is the capability set every sort implements. Built-ins embed baseSort
// and override what they need; container sorts additionally enumerate and
// canonicalize the values they reference.
type Sort interface {
	Name() ast.Symbol
	IsEqSort() bool
	IsContainerSort() bool
	IsEqContainerSort() bool

	// InnerValues enumerates the (sort, value) pairs a stored value
	// references, so the engine can track e-class ids held inside containers.
	InnerValues(v Value) []SortValue

	// Canonicalize rewrites inner eq-sort values to their union-find roots
	// in place, reporting whether anything changed.
	Canonicalize(v *Value, uf *unionfind.UnionFind) bool

	// MakeExpr reconstructs a surface term for the value. Eq-sort children
	// are delegated to the extractor, which the engine supplies.
	MakeExpr(v Value, ex Extractor) ast.Expr

	// RegisterPrimitives contributes the sort's primitive operations.
	RegisterPrimitives(reg PrimitiveAdder)
}

// SortValue pairs an inner value with the sort interpreting it.
type SortValue struct {
	Sort  Sort
	Value Value
}

// Extractor reconstructs a term for a value; the extraction engine
// implements it.
type Extractor interface {
	Extract(s Sort, v Value) ast.Expr
}

// PrimitiveAdder receives primitive registrations; the type environment
// implements it.
type PrimitiveAdder interface {
	AddPrimitive(p Primitive)
}

// Primitive is a built-in operation resolved by name and argument sorts.
type Primitive interface {
	Name() ast.Symbol

	// Accept returns the output sort when the argument sorts fit, nil
	// otherwise. Overloads are resolved by trying each registered primitive.
	Accept(args []Sort) Sort

	// Apply evaluates the primitive. The second result is false when the
	// inputs violate the primitive's preconditions.
	Apply(values []Value, uf *unionfind.UnionFind) (Value, bool)
}

type baseSort struct {
	name ast.Symbol
}

func (s baseSort) Name() ast.Symbol          { return s.name }
func (baseSort) IsEqSort() bool              { return false }
func (baseSort) IsContainerSort() bool       { return false }
func (baseSort) IsEqContainerSort() bool     { return false }
func (baseSort) InnerValues(Value) []SortValue { return nil }

func (baseSort) Canonicalize(*Value, *unionfind.UnionFind) bool { return false }

func (baseSort) RegisterPrimitives(PrimitiveAdder) {}

// EqSort is a user-declared sort whose values are e-class ids.
type EqSort struct {
	baseSort
}

func NewEqSort(name ast.Symbol) *EqSort {
	return &EqSort{baseSort{name: name}}
}

func (*EqSort) IsEqSort() bool { return true }

func (s *EqSort) Canonicalize(v *Value, uf *unionfind.UnionFind) bool {
	root := uf.Find(v.Bits)
	if root == v.Bits {
		return false
	}
	v.Bits = root
	return true
}

func (s *EqSort) MakeExpr(v Value, ex Extractor) ast.Expr {
	return ex.Extract(s, v)
}
