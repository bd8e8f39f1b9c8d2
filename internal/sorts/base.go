package sorts

import (
	"egglite/internal/ast"
	"egglite/internal/unionfind"
)

// The primitive sorts. String values intern through the process-wide symbol
// table, so their bits are symbol ids.

type I64Sort struct{ baseSort }

type F64Sort struct{ baseSort }

type StringSort struct{ baseSort }

type BoolSort struct{ baseSort }

type UnitSort struct{ baseSort }

func NewI64Sort() *I64Sort       { return &I64Sort{baseSort{name: ast.Intern("i64")}} }
func NewF64Sort() *F64Sort       { return &F64Sort{baseSort{name: ast.Intern("f64")}} }
func NewStringSort() *StringSort { return &StringSort{baseSort{name: ast.Intern("String")}} }
func NewBoolSort() *BoolSort     { return &BoolSort{baseSort{name: ast.Intern("bool")}} }
func NewUnitSort() *UnitSort     { return &UnitSort{baseSort{name: ast.Intern("Unit")}} }

// Builtins returns the primitive sorts every type environment starts with.
func Builtins() []Sort {
	return []Sort{NewI64Sort(), NewF64Sort(), NewStringSort(), NewBoolSort(), NewUnitSort()}
}

func StringValue(s string) Value {
	return Value{Tag: ast.Intern("String"), Bits: uint64(ast.Intern(s))}
}

func (v Value) AsString() string {
	return ast.Symbol(v.Bits).String()
}

func (s *I64Sort) MakeExpr(v Value, _ Extractor) ast.Expr {
	return &ast.Lit{Value: ast.IntLit{Value: v.AsInt()}}
}

func (s *F64Sort) MakeExpr(v Value, _ Extractor) ast.Expr {
	return &ast.Lit{Value: ast.F64Lit{Value: v.AsF64()}}
}

func (s *StringSort) MakeExpr(v Value, _ Extractor) ast.Expr {
	return &ast.Lit{Value: ast.StringLit{Value: v.AsString()}}
}

func (s *BoolSort) MakeExpr(v Value, _ Extractor) ast.Expr {
	return &ast.Lit{Value: ast.BoolLit{Value: v.AsBool()}}
}

func (s *UnitSort) MakeExpr(Value, Extractor) ast.Expr {
	return &ast.Lit{Value: ast.UnitLit{}}
}

func (s *I64Sort) RegisterPrimitives(reg PrimitiveAdder) {
	for _, op := range []string{"+", "-", "*", "min", "max"} {
		reg.AddPrimitive(&i64Binop{name: ast.Intern(op), op: op, sort: s})
	}
	reg.AddPrimitive(&i64Compare{name: ast.Intern("<"), op: "<", sort: s})
	reg.AddPrimitive(&i64Compare{name: ast.Intern(">"), op: ">", sort: s})
}

type i64Binop struct {
	name ast.Symbol
	op   string
	sort *I64Sort
}

func (p *i64Binop) Name() ast.Symbol { return p.name }

func (p *i64Binop) Accept(args []Sort) Sort {
	if len(args) == 2 && args[0].Name() == p.sort.Name() && args[1].Name() == p.sort.Name() {
		return p.sort
	}
	return nil
}

func (p *i64Binop) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	a, b := values[0].AsInt(), values[1].AsInt()
	var res int64
	switch p.op {
	case "+":
		res = a + b
	case "-":
		res = a - b
	case "*":
		res = a * b
	case "min":
		res = min(a, b)
	case "max":
		res = max(a, b)
	}
	return IntValue(res), true
}

// i64Compare matches only when the comparison holds, yielding unit.
type i64Compare struct {
	name ast.Symbol
	op   string
	sort *I64Sort
}

func (p *i64Compare) Name() ast.Symbol { return p.name }

func (p *i64Compare) Accept(args []Sort) Sort {
	if len(args) == 2 && args[0].Name() == p.sort.Name() && args[1].Name() == p.sort.Name() {
		return NewUnitSort()
	}
	return nil
}

func (p *i64Compare) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	a, b := values[0].AsInt(), values[1].AsInt()
	holds := a < b
	if p.op == ">" {
		holds = a > b
	}
	if !holds {
		return Value{}, false
	}
	return Unit(), true
}
