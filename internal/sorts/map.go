package sorts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"egglite/internal/ast"
	"egglite/internal/errors"
	"egglite/internal/unionfind"
)

type mapEntry struct {
	Key Value
	Val Value
}

// valueMap is an ordered association list keyed by Value. Ordering keeps the
// interning key canonical.
type valueMap []mapEntry

func (m valueMap) get(k Value) (Value, bool) {
	i := sort.Search(len(m), func(i int) bool { return !m[i].Key.Less(k) })
	if i < len(m) && m[i].Key == k {
		return m[i].Val, true
	}
	return Value{}, false
}

func (m valueMap) with(k, v Value) valueMap {
	i := sort.Search(len(m), func(i int) bool { return !m[i].Key.Less(k) })
	out := make(valueMap, 0, len(m)+1)
	out = append(out, m[:i]...)
	if i < len(m) && m[i].Key == k {
		out = append(out, mapEntry{Key: k, Val: v})
		out = append(out, m[i+1:]...)
	} else {
		out = append(out, mapEntry{Key: k, Val: v})
		out = append(out, m[i:]...)
	}
	return out
}

func (m valueMap) without(k Value) valueMap {
	i := sort.Search(len(m), func(i int) bool { return !m[i].Key.Less(k) })
	if i >= len(m) || m[i].Key != k {
		return m
	}
	out := make(valueMap, 0, len(m)-1)
	out = append(out, m[:i]...)
	out = append(out, m[i+1:]...)
	return out
}

func (m valueMap) internKey() string {
	var b strings.Builder
	for _, e := range m {
		fmt.Fprintf(&b, "%d:%d=%d:%d;", e.Key.Tag, e.Key.Bits, e.Val.Tag, e.Val.Bits)
	}
	return b.String()
}

// MapSort is a container sort over key/value inner sorts. Stored maps are
// interned in a table shared by every reference to the sort; the table is
// append-only within a run and guarded by a mutex because sort handles are
// shared. The lock is never held across union-find traffic.
type MapSort struct {
	baseSort
	key   Sort
	value Sort

	mu    sync.Mutex
	maps  []valueMap
	index map[string]int
}

// NewMapSort builds a map sort over the given inner sorts. Nesting an
// eq-container key or any container value is rejected: rebuild could not
// reach the inner ids.
func NewMapSort(name ast.Symbol, key, value Sort) (*MapSort, error) {
	if key.IsEqContainerSort() || value.IsContainerSort() {
		return nil, errors.ContainerNesting("maps nested with other eq-sort containers are not allowed")
	}
	return &MapSort{
		baseSort: baseSort{name: name},
		key:      key,
		value:    value,
		index:    map[string]int{},
	}, nil
}

func (s *MapSort) KeySort() Sort   { return s.key }
func (s *MapSort) ValueSort() Sort { return s.value }

func (s *MapSort) IsContainerSort() bool { return true }

func (s *MapSort) IsEqContainerSort() bool {
	return s.key.IsEqSort() || s.value.IsEqSort()
}

func (s *MapSort) store(m valueMap) Value {
	key := m.internKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[key]; ok {
		return Value{Tag: s.name, Bits: uint64(i)}
	}
	i := len(s.maps)
	s.maps = append(s.maps, m)
	s.index[key] = i
	return Value{Tag: s.name, Bits: uint64(i)}
}

func (s *MapSort) load(v Value) valueMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maps[v.Bits]
}

func (s *MapSort) InnerValues(v Value) []SortValue {
	m := s.load(v)
	out := make([]SortValue, 0, 2*len(m))
	for _, e := range m {
		out = append(out, SortValue{Sort: s.key, Value: e.Key})
		out = append(out, SortValue{Sort: s.value, Value: e.Val})
	}
	return out
}

// rebuild maps both keys and values through the union-find and re-interns
// the result, reporting whether any entry moved.
func (s *MapSort) rebuild(v Value, uf *unionfind.UnionFind) (Value, bool) {
	old := s.load(v)
	changed := false
	rebuilt := make(valueMap, 0, len(old))
	for _, e := range old {
		k, val := e.Key, e.Val
		changed = s.key.Canonicalize(&k, uf) || changed
		changed = s.value.Canonicalize(&val, uf) || changed
		rebuilt = rebuilt.with(k, val)
	}
	if !changed {
		return v, false
	}
	return s.store(rebuilt), true
}

func (s *MapSort) Canonicalize(v *Value, uf *unionfind.UnionFind) bool {
	nv, changed := s.rebuild(*v, uf)
	if changed {
		*v = nv
	}
	return changed
}

// MakeExpr folds map-insert right-to-left over the entries atop map-empty.
func (s *MapSort) MakeExpr(v Value, ex Extractor) ast.Expr {
	m := s.load(v)
	expr := ast.Expr(&ast.Call{Func: ast.Intern("map-empty")})
	for i := len(m) - 1; i >= 0; i-- {
		expr = &ast.Call{
			Func: ast.Intern("map-insert"),
			Args: []ast.Expr{expr, s.key.MakeExpr(m[i].Key, ex), s.value.MakeExpr(m[i].Val, ex)},
		}
	}
	return expr
}

func (s *MapSort) RegisterPrimitives(reg PrimitiveAdder) {
	reg.AddPrimitive(&mapRebuild{name: ast.Intern("rebuild"), m: s})
	reg.AddPrimitive(&mapCtor{name: ast.Intern("map-empty"), m: s})
	reg.AddPrimitive(&mapInsert{name: ast.Intern("map-insert"), m: s})
	reg.AddPrimitive(&mapGet{name: ast.Intern("map-get"), m: s})
	reg.AddPrimitive(&mapContains{name: ast.Intern("map-contains"), m: s, want: true})
	reg.AddPrimitive(&mapContains{name: ast.Intern("map-not-contains"), m: s, want: false})
	reg.AddPrimitive(&mapRemove{name: ast.Intern("map-remove"), m: s})
}

type mapRebuild struct {
	name ast.Symbol
	m    *MapSort
}

func (p *mapRebuild) Name() ast.Symbol { return p.name }

func (p *mapRebuild) Accept(args []Sort) Sort {
	if len(args) == 1 && args[0].Name() == p.m.name {
		return p.m
	}
	return nil
}

func (p *mapRebuild) Apply(values []Value, uf *unionfind.UnionFind) (Value, bool) {
	nv, _ := p.m.rebuild(values[0], uf)
	return nv, true
}

type mapCtor struct {
	name ast.Symbol
	m    *MapSort
}

func (p *mapCtor) Name() ast.Symbol { return p.name }

func (p *mapCtor) Accept(args []Sort) Sort {
	if len(args) == 0 {
		return p.m
	}
	return nil
}

func (p *mapCtor) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	return p.m.store(valueMap{}), true
}

type mapInsert struct {
	name ast.Symbol
	m    *MapSort
}

func (p *mapInsert) Name() ast.Symbol { return p.name }

func (p *mapInsert) Accept(args []Sort) Sort {
	if len(args) == 3 && args[0].Name() == p.m.name &&
		args[1].Name() == p.m.key.Name() && args[2].Name() == p.m.value.Name() {
		return p.m
	}
	return nil
}

func (p *mapInsert) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	m := p.m.load(values[0])
	return p.m.store(m.with(values[1], values[2])), true
}

type mapGet struct {
	name ast.Symbol
	m    *MapSort
}

func (p *mapGet) Name() ast.Symbol { return p.name }

func (p *mapGet) Accept(args []Sort) Sort {
	if len(args) == 2 && args[0].Name() == p.m.name && args[1].Name() == p.m.key.Name() {
		return p.m.value
	}
	return nil
}

func (p *mapGet) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	return p.m.load(values[0]).get(values[1])
}

// mapContains doubles as map-contains and map-not-contains; the primitive
// matches (yielding unit) only when presence equals want.
type mapContains struct {
	name ast.Symbol
	m    *MapSort
	want bool
}

func (p *mapContains) Name() ast.Symbol { return p.name }

func (p *mapContains) Accept(args []Sort) Sort {
	if len(args) == 2 && args[0].Name() == p.m.name && args[1].Name() == p.m.key.Name() {
		return NewUnitSort()
	}
	return nil
}

func (p *mapContains) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	_, present := p.m.load(values[0]).get(values[1])
	if present != p.want {
		return Value{}, false
	}
	return Unit(), true
}

type mapRemove struct {
	name ast.Symbol
	m    *MapSort
}

func (p *mapRemove) Name() ast.Symbol { return p.name }

func (p *mapRemove) Accept(args []Sort) Sort {
	if len(args) == 2 && args[0].Name() == p.m.name && args[1].Name() == p.m.key.Name() {
		return p.m
	}
	return nil
}

func (p *mapRemove) Apply(values []Value, _ *unionfind.UnionFind) (Value, bool) {
	return p.m.store(p.m.load(values[0]).without(values[1])), true
}
