package types

import (
	"egglite/internal/ast"
	"egglite/internal/errors"
	"egglite/internal/sorts"
)

// TypecheckProgram checks a normalized program in order, registering
// declarations as it goes and recording per-command variable environments
// for later queries.
func (env *TypeEnv) TypecheckProgram(program []ast.NormCommand) error {
	for _, nc := range program {
		if err := env.typecheckCommand(nc); err != nil {
			return err
		}
	}
	return nil
}

func (env *TypeEnv) typecheckCommand(nc ast.NormCommand) error {
	switch c := nc.Cmd.(type) {
	case *ast.NormSort:
		return env.declareSort(c)
	case *ast.NormFunction:
		return env.declareFunction(c.Decl)
	case *ast.NormDeclare:
		s, ok := env.sorts[c.Sort]
		if !ok {
			return errors.UndefinedSort(c.Sort.String())
		}
		env.globals[c.Name] = s
		return nil
	case *ast.NormRuleCmd:
		vars := env.newScope()
		if err := env.checkFacts(c.Rule.Body, vars); err != nil {
			return err
		}
		if err := env.checkActions(c.Rule.Head, vars, false); err != nil {
			return err
		}
		env.ctxVars[nc.ID] = vars
		return nil
	case *ast.NormActionCmd:
		vars := env.newScope()
		if err := env.checkActions([]ast.NormAction{c.Action}, vars, true); err != nil {
			return err
		}
		env.ctxVars[nc.ID] = vars
		return nil
	case *ast.NormCheck:
		vars := env.newScope()
		if err := env.checkFacts(c.Facts, vars); err != nil {
			return err
		}
		env.ctxVars[nc.ID] = vars
		return nil
	case *ast.NormRunCmd:
		vars := env.newScope()
		if err := env.checkFacts(c.Config.Until, vars); err != nil {
			return err
		}
		env.ctxVars[nc.ID] = vars
		return nil
	default:
		return nil
	}
}

// newScope starts a variable environment seeded with the global bindings.
func (env *TypeEnv) newScope() map[ast.Symbol]sorts.Sort {
	vars := make(map[ast.Symbol]sorts.Sort, len(env.globals))
	for k, v := range env.globals {
		vars[k] = v
	}
	return vars
}

func (env *TypeEnv) checkFacts(facts []ast.NormFact, vars map[ast.Symbol]sorts.Sort) error {
	for _, f := range facts {
		switch f := f.(type) {
		case *ast.NormAssignLit:
			vars[f.Var] = env.literalSort(f.Lit)
		case *ast.NormAssign:
			out, err := env.resolveCall(f.Expr, vars, true)
			if err != nil {
				return err
			}
			vars[f.Var] = out
		case *ast.NormConstrainEq:
			ls, lok := vars[f.Lhs]
			rs, rok := vars[f.Rhs]
			switch {
			case lok && rok:
				if ls.Name() != rs.Name() {
					return errors.SortMismatch("equality constraint", ls.Name().String(), rs.Name().String())
				}
			case lok:
				vars[f.Rhs] = ls
			case rok:
				vars[f.Lhs] = rs
			default:
				return errors.UnboundVariable(f.Lhs.String())
			}
		}
	}
	return nil
}

func (env *TypeEnv) checkActions(actions []ast.NormAction, vars map[ast.Symbol]sorts.Sort, topLevel bool) error {
	for _, a := range actions {
		switch a := a.(type) {
		case *ast.NormLetLit:
			vars[a.Var] = env.literalSort(a.Lit)
			if topLevel {
				env.globals[a.Var] = vars[a.Var]
			}
		case *ast.NormLetVar:
			s, ok := vars[a.Val]
			if !ok {
				return errors.UnboundVariable(a.Val.String())
			}
			vars[a.Var] = s
			if topLevel {
				env.globals[a.Var] = s
			}
		case *ast.NormLet:
			out, err := env.resolveCall(a.Expr, vars, false)
			if err != nil {
				return err
			}
			vars[a.Var] = out
			if topLevel {
				env.globals[a.Var] = out
			}
		case *ast.NormSet:
			out, err := env.resolveCall(a.Expr, vars, false)
			if err != nil {
				return err
			}
			vs, ok := vars[a.Value]
			if !ok {
				return errors.UnboundVariable(a.Value.String())
			}
			if vs.Name() != out.Name() {
				return errors.SortMismatch("set value", out.Name().String(), vs.Name().String())
			}
		case *ast.NormDelete:
			if _, err := env.resolveCall(a.Expr, vars, false); err != nil {
				return err
			}
		case *ast.NormUnion:
			ls, lok := vars[a.Lhs]
			rs, rok := vars[a.Rhs]
			if !lok {
				return errors.UnboundVariable(a.Lhs.String())
			}
			if !rok {
				return errors.UnboundVariable(a.Rhs.String())
			}
			if ls.Name() != rs.Name() {
				return errors.SortMismatch("union", ls.Name().String(), rs.Name().String())
			}
		case *ast.NormPanic:
			// nothing to check
		}
	}
	return nil
}

// resolveCall types one call occurrence. In binding position (rule bodies)
// unknown variable arguments take the schema's input sorts; elsewhere every
// argument must already be bound.
func (env *TypeEnv) resolveCall(e ast.NormExpr, vars map[ast.Symbol]sorts.Sort, binding bool) (sorts.Sort, error) {
	if decl, ok := env.funcs[e.Func]; ok {
		if len(e.Args) != len(decl.Schema.Input) {
			return nil, errors.ArityMismatch(e.Func.String(), len(decl.Schema.Input), len(e.Args))
		}
		for i, arg := range e.Args {
			want := env.sorts[decl.Schema.Input[i]]
			got, bound := vars[arg]
			switch {
			case bound:
				if got.Name() != want.Name() {
					return nil, errors.SortMismatch("argument of "+e.Func.String(), want.Name().String(), got.Name().String())
				}
			case binding:
				vars[arg] = want
			default:
				return nil, errors.UnboundVariable(arg.String())
			}
		}
		return env.sorts[decl.Schema.Output], nil
	}

	overloads, ok := env.prims[e.Func]
	if !ok {
		return nil, errors.UndefinedFunction(e.Func.String())
	}
	argSorts := make([]sorts.Sort, len(e.Args))
	for i, arg := range e.Args {
		s, bound := vars[arg]
		if !bound {
			return nil, errors.UnboundVariable(arg.String())
		}
		argSorts[i] = s
	}
	for _, p := range overloads {
		if out := p.Accept(argSorts); out != nil {
			return out, nil
		}
	}
	return nil, errors.NoMatchingPrimitive(e.Func.String(), sortNames(argSorts))
}

func sortNames(ss []sorts.Sort) []string {
	names := make([]string, len(ss))
	for i, s := range ss {
		names[i] = s.Name().String()
	}
	return names
}

func (env *TypeEnv) literalSort(l ast.Literal) sorts.Sort {
	return env.sorts[ast.LiteralName(l)]
}

// TypecheckExpr resolves the signature of a call under the variable
// environment recorded for a command. Total on programs that typechecked.
func (env *TypeEnv) TypecheckExpr(ctx int, e ast.NormExpr) (FuncType, error) {
	if decl, ok := env.funcs[e.Func]; ok {
		in := make([]sorts.Sort, len(decl.Schema.Input))
		for i, name := range decl.Schema.Input {
			in[i] = env.sorts[name]
		}
		return FuncType{
			Name:     e.Func,
			Input:    in,
			Output:   env.sorts[decl.Schema.Output],
			HasMerge: decl.Merge != nil,
		}, nil
	}

	overloads, ok := env.prims[e.Func]
	if !ok {
		return FuncType{}, errors.UndefinedFunction(e.Func.String())
	}
	vars := env.ctxVars[ctx]
	argSorts := make([]sorts.Sort, len(e.Args))
	for i, arg := range e.Args {
		s, bound := vars[arg]
		if !bound {
			return FuncType{}, errors.UnboundVariable(arg.String())
		}
		argSorts[i] = s
	}
	for _, p := range overloads {
		if out := p.Accept(argSorts); out != nil {
			return FuncType{Name: e.Func, Input: argSorts, Output: out, IsPrimitive: true}, nil
		}
	}
	return FuncType{}, errors.NoMatchingPrimitive(e.Func.String(), sortNames(argSorts))
}
