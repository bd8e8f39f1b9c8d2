// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"egglite/internal/ast"
	"egglite/internal/desugar"
	"egglite/internal/errors"
	"egglite/internal/pipeline"
)

func main() {
	withProofs := flag.Bool("proofs", false, "also compile with proof instrumentation")
	resugar := flag.Bool("resugar", false, "print the compiled program as surface rules")
	verbosity := flag.Int("v", 0, "log verbosity")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: egglite [flags] <file.egg>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	commonlog.Configure(*verbosity, nil)

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %v", path, err)
		os.Exit(1)
	}

	res, err := pipeline.Compile(path, string(source), pipeline.Options{})
	if err != nil {
		reportError(string(source), err)
		os.Exit(1)
	}

	// the same program must survive a print/reparse cycle
	if _, err := pipeline.RoundTrip(res); err != nil {
		color.Red("round-trip compile failed: %v", err)
		os.Exit(1)
	}

	if *withProofs {
		if res, err = pipeline.Compile(path, string(source), pipeline.Options{Proofs: true}); err != nil {
			reportError(string(source), err)
			os.Exit(1)
		}
	}

	if *resugar {
		fmt.Print(ast.PrintProgram(desugar.ToRules(res.Desugared)))
	}

	color.Green("✅ compiled %s (%d commands)", path, len(res.Norm))
}

// reportError prints a friendly caret-style message for located errors.
func reportError(src string, err error) {
	ce, ok := err.(*errors.CompilerError)
	if !ok || ce.Position.IsZero() {
		color.Red("❌ %v", err)
		return
	}

	lines := strings.Split(src, "\n")
	if ce.Position.Line <= 0 || ce.Position.Line > len(lines) {
		color.Red("❌ %v", err)
		return
	}

	line := lines[ce.Position.Line-1]
	caret := strings.Repeat(" ", ce.Position.Column-1) + "^"

	color.Red("❌ %s at line %d, column %d:", ce.Kind, ce.Position.Line, ce.Position.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", ce.Message)
}
