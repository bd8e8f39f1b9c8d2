package proofs

import (
	"fmt"
	"strings"

	"egglite/internal/ast"
	"egglite/internal/types"
)

// Reserved name construction. These spellings are a wire format: persisted
// instrumented programs interoperate only if they match bit-exactly.

// astVersionPrim names the AST mirror of a primitive sort's injection.
func astVersionPrim(name ast.Symbol) ast.Symbol {
	return ast.Intern(fmt.Sprintf("Ast%s__", name))
}

// repVersionPrim names the representative mirror of a primitive sort.
func repVersionPrim(name ast.Symbol) ast.Symbol {
	return ast.Intern(fmt.Sprintf("Rep%s__", name))
}

// astVersion names the AST mirror of a function at concrete input sorts.
func astVersion(ft types.FuncType) ast.Symbol {
	return ast.Intern(fmt.Sprintf("Ast%s_%s__", ft.Name, inputSortNames(ft)))
}

// repVersion names the representative mirror of a function.
func repVersion(ft types.FuncType) ast.Symbol {
	return ast.Intern(fmt.Sprintf("Rep%s_%s__", ft.Name, inputSortNames(ft)))
}

// declaredTerm names the global AST constant for a declared name, spelled
// with three trailing underscores. The AST mirror of a nullary function with
// the same name (astVersion with no input sorts) has the same spelling.
func declaredTerm(name ast.Symbol) ast.Symbol {
	return ast.Intern(fmt.Sprintf("Ast%s___", name))
}

func mergeChild1(i int) ast.Symbol { return ast.Intern(fmt.Sprintf("c1_%d__", i)) }
func mergeChild2(i int) ast.Symbol { return ast.Intern(fmt.Sprintf("c2_%d__", i)) }

func getChildVar(i int) ast.Symbol { return ast.Intern(fmt.Sprintf("c%d__", i)) }

func inputSortNames(ft types.FuncType) string {
	names := make([]string, len(ft.Input))
	for i, s := range ft.Input {
		names[i] = s.Name().String()
	}
	return strings.Join(names, "_")
}
