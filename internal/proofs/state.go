package proofs

import (
	"fmt"

	"egglite/internal/ast"
	"egglite/internal/desugar"
	"egglite/internal/types"
)

// proofState threads the instrumenter's bookkeeping through one compilation:
// which mirror functions exist, which global names carry which AST terms,
// and the shared fresh-name generator.
type proofState struct {
	env   *types.TypeEnv
	fresh *desugar.FreshGen

	globalVarAst    map[ast.Symbol]ast.Symbol
	globalVarProof  map[ast.Symbol]ast.Symbol
	astFuncsCreated map[ast.Symbol]bool

	currentCtx  int
	ruleCounter int
}

func newProofState(env *types.TypeEnv, fresh *desugar.FreshGen) *proofState {
	return &proofState{
		env:             env,
		fresh:           fresh,
		globalVarAst:    map[ast.Symbol]ast.Symbol{},
		globalVarProof:  map[ast.Symbol]ast.Symbol{},
		astFuncsCreated: map[ast.Symbol]bool{},
	}
}

func (ps *proofState) getFresh() ast.Symbol { return ps.fresh.Next() }

func (ps *proofState) typecheck(e ast.NormExpr) (types.FuncType, error) {
	return ps.env.TypecheckExpr(ps.currentCtx, e)
}

// ruleName picks the proof-visible name for a rule: the user's when present,
// a compilation-scoped identifier otherwise.
func (ps *proofState) ruleName(ruleset, name ast.Symbol) string {
	if name != 0 {
		return name.String()
	}
	ps.ruleCounter++
	set := "main"
	if ruleset != 0 {
		set = ruleset.String()
	}
	return fmt.Sprintf("rule_%s_%d", set, ps.ruleCounter)
}

// proofInfo tracks, per rule, the AST term and proof variable recorded for
// each body-bound variable.
type proofInfo struct {
	varTerm  map[ast.Symbol]ast.Symbol
	varProof map[ast.Symbol]ast.Symbol
}

func newProofInfo() *proofInfo {
	return &proofInfo{
		varTerm:  map[ast.Symbol]ast.Symbol{},
		varProof: map[ast.Symbol]ast.Symbol{},
	}
}

func (ps *proofState) varTermOption(v ast.Symbol, info *proofInfo) (ast.Symbol, bool) {
	if t, ok := info.varTerm[v]; ok {
		return t, true
	}
	t, ok := ps.globalVarAst[v]
	return t, ok
}

func (ps *proofState) varTerm(v ast.Symbol, info *proofInfo) ast.Symbol {
	t, ok := ps.varTermOption(v, info)
	if !ok {
		panic(fmt.Sprintf("no representative term for variable %s", v))
	}
	return t
}

func (ps *proofState) varProof(v ast.Symbol, info *proofInfo) ast.Symbol {
	if p, ok := info.varProof[v]; ok {
		return p
	}
	if p, ok := ps.globalVarProof[v]; ok {
		return p
	}
	panic(fmt.Sprintf("no proof for variable %s", v))
}
