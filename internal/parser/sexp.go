package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"egglite/internal/errors"
)

// The reader stage turns the token stream into generic s-expressions; the
// command parser destructures those. Keeping the two apart makes the action
// parser trivially reusable on snippets.

type sexp interface {
	pos() errors.Position
}

type atom struct {
	kind     string // Int, Float, String, Ident, Keyword
	text     string
	position errors.Position
}

type list struct {
	items    []sexp
	position errors.Position
}

func (a *atom) pos() errors.Position { return a.position }
func (l *list) pos() errors.Position { return l.position }

func toPosition(p lexer.Position) errors.Position {
	return errors.Position{Filename: p.Filename, Line: p.Line, Column: p.Column}
}

type reader struct {
	tokens []lexer.Token
	cursor int
}

func newReader(filename, src string) (*reader, *errors.CompilerError) {
	lx, err := EggLexer.LexString(filename, src)
	if err != nil {
		return nil, errors.Syntax(errors.Position{Filename: filename}, "%v", err)
	}
	var tokens []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, errors.Syntax(toPosition(tok.Pos), "%v", err)
		}
		if tok.EOF() {
			break
		}
		switch tokenKind(tok) {
		case "Whitespace", "Comment":
			continue
		}
		tokens = append(tokens, tok)
	}
	return &reader{tokens: tokens}, nil
}

func (r *reader) done() bool { return r.cursor >= len(r.tokens) }

func (r *reader) next() (sexp, *errors.CompilerError) {
	if r.done() {
		last := errors.Position{}
		if len(r.tokens) > 0 {
			last = toPosition(r.tokens[len(r.tokens)-1].Pos)
		}
		return nil, errors.UnexpectedToken(last, "end of input", "an s-expression")
	}
	tok := r.tokens[r.cursor]
	r.cursor++
	switch tokenKind(tok) {
	case "LParen":
		l := &list{position: toPosition(tok.Pos)}
		for {
			if r.done() {
				return nil, errors.UnexpectedToken(toPosition(tok.Pos), "end of input", "')'")
			}
			if tokenKind(r.tokens[r.cursor]) == "RParen" {
				r.cursor++
				return l, nil
			}
			item, err := r.next()
			if err != nil {
				return nil, err
			}
			l.items = append(l.items, item)
		}
	case "RParen":
		return nil, errors.UnexpectedToken(toPosition(tok.Pos), "')'", "an s-expression")
	default:
		kind := tokenKind(tok)
		text := tok.Value
		if kind == "Keyword" {
			text = strings.TrimPrefix(text, ":")
		}
		return &atom{kind: kind, text: text, position: toPosition(tok.Pos)}, nil
	}
}

// readAll reads every top-level s-expression in the source.
func readAll(filename, src string) ([]sexp, *errors.CompilerError) {
	r, err := newReader(filename, src)
	if err != nil {
		return nil, err
	}
	var out []sexp
	for !r.done() {
		s, err := r.next()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
