package types

import (
	"egglite/internal/ast"
	"egglite/internal/errors"
	"egglite/internal/sorts"
)

// FuncType is the resolved signature of one call occurrence.
type FuncType struct {
	Name        ast.Symbol
	Input       []sorts.Sort
	Output      sorts.Sort
	IsPrimitive bool
	HasMerge    bool
}

// TypeEnv is the registry the typechecking pass fills and later passes query:
// declared sorts, function schemas, primitive overloads, global bindings, and
// the per-command variable environments recorded while checking rules.
type TypeEnv struct {
	sorts   map[ast.Symbol]sorts.Sort
	funcs   map[ast.Symbol]ast.FunctionDecl
	prims   map[ast.Symbol][]sorts.Primitive
	globals map[ast.Symbol]sorts.Sort

	// variable sorts per typechecking context, keyed by command id
	ctxVars map[int]map[ast.Symbol]sorts.Sort
}

// NewTypeEnv builds an environment with the built-in sorts and their
// primitives registered.
func NewTypeEnv() *TypeEnv {
	env := &TypeEnv{
		sorts:   map[ast.Symbol]sorts.Sort{},
		funcs:   map[ast.Symbol]ast.FunctionDecl{},
		prims:   map[ast.Symbol][]sorts.Primitive{},
		globals: map[ast.Symbol]sorts.Sort{},
		ctxVars: map[int]map[ast.Symbol]sorts.Sort{},
	}
	for _, s := range sorts.Builtins() {
		env.sorts[s.Name()] = s
		s.RegisterPrimitives(env)
	}
	env.AddPrimitive(sorts.NewTermOrderingMin())
	env.AddPrimitive(sorts.NewTermOrderingMax())
	return env
}

// AddPrimitive registers a primitive overload. Implements sorts.PrimitiveAdder.
func (env *TypeEnv) AddPrimitive(p sorts.Primitive) {
	env.prims[p.Name()] = append(env.prims[p.Name()], p)
}

// IsPrimitive reports whether name resolves to a primitive rather than a
// declared function.
func (env *TypeEnv) IsPrimitive(name ast.Symbol) bool {
	_, declared := env.funcs[name]
	if declared {
		return false
	}
	_, ok := env.prims[name]
	return ok
}

// GetSort looks up a declared sort.
func (env *TypeEnv) GetSort(name ast.Symbol) (sorts.Sort, bool) {
	s, ok := env.sorts[name]
	return s, ok
}

// Sorts returns every registered sort.
func (env *TypeEnv) Sorts() map[ast.Symbol]sorts.Sort { return env.sorts }

// FuncDecl looks up a declared function.
func (env *TypeEnv) FuncDecl(name ast.Symbol) (ast.FunctionDecl, bool) {
	d, ok := env.funcs[name]
	return d, ok
}

// GlobalSort returns the sort of a globally bound name.
func (env *TypeEnv) GlobalSort(name ast.Symbol) (sorts.Sort, bool) {
	s, ok := env.globals[name]
	return s, ok
}

func (env *TypeEnv) addSort(s sorts.Sort) error {
	if _, dup := env.sorts[s.Name()]; dup {
		return errors.DuplicateSort(s.Name().String())
	}
	env.sorts[s.Name()] = s
	s.RegisterPrimitives(env)
	return nil
}

func (env *TypeEnv) declareSort(cmd *ast.NormSort) error {
	if cmd.Presort == 0 {
		return env.addSort(sorts.NewEqSort(cmd.Name))
	}
	switch cmd.Presort.String() {
	case "Map":
		if len(cmd.Args) != 2 {
			return errors.ContainerNesting("Map takes a key sort and a value sort")
		}
		key, err := env.sortArg(cmd.Args[0])
		if err != nil {
			return err
		}
		value, err := env.sortArg(cmd.Args[1])
		if err != nil {
			return err
		}
		m, err := sorts.NewMapSort(cmd.Name, key, value)
		if err != nil {
			return err
		}
		return env.addSort(m)
	default:
		return errors.UndefinedSort(cmd.Presort.String())
	}
}

func (env *TypeEnv) sortArg(e ast.Expr) (sorts.Sort, error) {
	v, ok := e.(*ast.Var)
	if !ok {
		return nil, errors.ContainerNesting("presort arguments must be sort names")
	}
	s, ok := env.sorts[v.Name]
	if !ok {
		return nil, errors.UndefinedSort(v.Name.String())
	}
	return s, nil
}

func (env *TypeEnv) declareFunction(decl ast.FunctionDecl) error {
	if _, dup := env.funcs[decl.Name]; dup {
		return errors.DuplicateFunction(decl.Name.String())
	}
	for _, in := range decl.Schema.Input {
		if _, ok := env.sorts[in]; !ok {
			return errors.UndefinedSort(in.String())
		}
	}
	if _, ok := env.sorts[decl.Schema.Output]; !ok {
		return errors.UndefinedSort(decl.Schema.Output.String())
	}
	env.funcs[decl.Name] = decl
	return nil
}
