package sorts

import (
	"math"

	"egglite/internal/ast"
)

// Value is a sort-tagged payload. The bits are interpreted by the owning
// sort: an e-class id for eq-sorts, an index into the sort's interning table
// for containers, raw bits for primitives.
type Value struct {
	Tag  ast.Symbol
	Bits uint64
}

// Less orders values lexicographically by tag then raw bits. The ordering
// primitives and the map container key on it.
func (v Value) Less(o Value) bool {
	if v.Tag != o.Tag {
		return v.Tag < o.Tag
	}
	return v.Bits < o.Bits
}

// Unit is the singleton value of the Unit sort.
func Unit() Value {
	return Value{Tag: ast.Intern("Unit")}
}

func IntValue(v int64) Value {
	return Value{Tag: ast.Intern("i64"), Bits: uint64(v)}
}

func (v Value) AsInt() int64 { return int64(v.Bits) }

func F64Value(v float64) Value {
	return Value{Tag: ast.Intern("f64"), Bits: math.Float64bits(v)}
}

func (v Value) AsF64() float64 { return math.Float64frombits(v.Bits) }

func BoolValue(v bool) Value {
	bits := uint64(0)
	if v {
		bits = 1
	}
	return Value{Tag: ast.Intern("bool"), Bits: bits}
}

func (v Value) AsBool() bool { return v.Bits != 0 }
