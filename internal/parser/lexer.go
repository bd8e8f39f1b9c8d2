package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// EggLexer tokenizes the s-expression surface syntax. Order matters: floats
// before ints, both before the catch-all symbol token.
var EggLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `;[^\n]*`},
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Float", Pattern: `-?[0-9]+\.[0-9]+([eE]-?[0-9]+)?`},
		{Name: "Int", Pattern: `-?[0-9]+`},
		{Name: "LParen", Pattern: `[(\[]`},
		{Name: "RParen", Pattern: `[)\]]`},
		{Name: "Keyword", Pattern: `:[a-zA-Z_][a-zA-Z0-9_-]*`},
		{Name: "Ident", Pattern: `[^()\[\] \t\r\n";:][^()\[\] \t\r\n";]*`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})

var symbols = EggLexer.Symbols()

func tokenKind(t lexer.Token) string {
	for name, typ := range symbols {
		if typ == t.Type {
			return name
		}
	}
	return "EOF"
}
