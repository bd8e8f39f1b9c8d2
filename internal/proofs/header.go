package proofs

import (
	_ "embed"

	"egglite/internal/ast"
	"egglite/internal/parser"
)

// The preamble ships with the binary; it is normative for anyone reading
// persisted instrumented programs.
//
//go:embed proofheader.egg
var proofHeaderSrc string

// Header parses the proof preamble.
func Header() ([]ast.Command, error) {
	return parser.ParseProgram("proofheader.egg", proofHeaderSrc)
}
