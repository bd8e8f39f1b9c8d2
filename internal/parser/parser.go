package parser

import (
	"strconv"
	"strings"

	"egglite/internal/ast"
	"egglite/internal/errors"
)

// ParseProgram parses a whole program into surface commands.
func ParseProgram(filename, src string) ([]ast.Command, error) {
	sexps, rerr := readAll(filename, src)
	if rerr != nil {
		return nil, rerr
	}
	var commands []ast.Command
	for _, s := range sexps {
		cmd, err := parseCommand(s)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// ParseAction parses a single action snippet, e.g. "(set (f a) b)".
func ParseAction(src string) (ast.Action, error) {
	s, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return parseAction(s)
}

// ParseActions parses a sequence of actions. The proof instrumenter's merge
// actions are documented in this textual form; tests use this parser to pin
// the structural construction against it.
func ParseActions(src string) ([]ast.Action, error) {
	sexps, rerr := readAll("<actions>", src)
	if rerr != nil {
		return nil, rerr
	}
	var actions []ast.Action
	for _, s := range sexps {
		a, err := parseAction(s)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// ParseExpr parses a single expression snippet.
func ParseExpr(src string) (ast.Expr, error) {
	s, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return parseExpr(s)
}

// ParseFact parses a single fact snippet.
func ParseFact(src string) (ast.Fact, error) {
	s, err := readOne(src)
	if err != nil {
		return nil, err
	}
	return parseFact(s)
}

func readOne(src string) (sexp, error) {
	sexps, err := readAll("<snippet>", src)
	if err != nil {
		return nil, err
	}
	if len(sexps) != 1 {
		return nil, errors.Syntax(errors.Position{}, "expected exactly one s-expression, found %d", len(sexps))
	}
	return sexps[0], nil
}

func head(l *list) (string, bool) {
	if len(l.items) == 0 {
		return "", false
	}
	a, ok := l.items[0].(*atom)
	if !ok || a.kind != "Ident" {
		return "", false
	}
	return a.text, true
}

// splitOptions separates positional items from :keyword options. Every
// keyword consumes the single s-expression that follows it.
func splitOptions(items []sexp) ([]sexp, map[string]sexp, error) {
	var positional []sexp
	opts := map[string]sexp{}
	for i := 0; i < len(items); i++ {
		a, ok := items[i].(*atom)
		if ok && a.kind == "Keyword" {
			if i+1 >= len(items) {
				return nil, nil, errors.Syntax(a.position, "option :%s is missing a value", a.text)
			}
			opts[a.text] = items[i+1]
			i++
			continue
		}
		positional = append(positional, items[i])
	}
	return positional, opts, nil
}

func parseCommand(s sexp) (ast.Command, error) {
	l, ok := s.(*list)
	if !ok {
		// a bare expression at the top level is an action
		e, err := parseExpr(s)
		if err != nil {
			return nil, err
		}
		return &ast.ActionCmd{Action: &ast.ExprAction{Expr: e}}, nil
	}
	keyword, _ := head(l)
	switch keyword {
	case "datatype":
		return parseDatatype(l)
	case "sort":
		return parseSort(l)
	case "function":
		return parseFunction(l)
	case "relation":
		return parseRelation(l)
	case "declare":
		return parseDeclare(l)
	case "rule":
		return parseRule(l)
	case "rewrite":
		return parseRewrite(l, false)
	case "birewrite":
		return parseRewrite(l, true)
	case "include":
		return parseInclude(l)
	case "run":
		return parseRun(l)
	case "push", "pop":
		return parsePushPop(l, keyword)
	case "check":
		return parseCheck(l)
	case "ruleset":
		return parseRuleset(l)
	case "set-option":
		return parseSetOption(l)
	default:
		a, err := parseAction(s)
		if err != nil {
			return nil, err
		}
		return &ast.ActionCmd{Action: a}, nil
	}
}

func parseDatatype(l *list) (ast.Command, error) {
	if len(l.items) < 2 {
		return nil, errors.Syntax(l.position, "datatype needs a name")
	}
	name, err := parseIdent(l.items[1], "datatype name")
	if err != nil {
		return nil, err
	}
	cmd := &ast.Datatype{Name: name}
	for _, item := range l.items[2:] {
		vl, ok := item.(*list)
		if !ok || len(vl.items) == 0 {
			return nil, errors.Syntax(item.pos(), "datatype variant must be a list")
		}
		positional, opts, err := splitOptions(vl.items)
		if err != nil {
			return nil, err
		}
		vname, err := parseIdent(positional[0], "variant name")
		if err != nil {
			return nil, err
		}
		variant := ast.Variant{Name: vname}
		for _, t := range positional[1:] {
			sort, err := parseIdent(t, "variant argument sort")
			if err != nil {
				return nil, err
			}
			variant.Types = append(variant.Types, sort)
		}
		if costSexp, ok := opts["cost"]; ok {
			cost, err := parseInt(costSexp, "variant cost")
			if err != nil {
				return nil, err
			}
			variant.Cost = &cost
		}
		cmd.Variants = append(cmd.Variants, variant)
	}
	return cmd, nil
}

func parseSort(l *list) (ast.Command, error) {
	if len(l.items) < 2 {
		return nil, errors.Syntax(l.position, "sort needs a name")
	}
	name, err := parseIdent(l.items[1], "sort name")
	if err != nil {
		return nil, err
	}
	cmd := &ast.SortCmd{Name: name}
	if len(l.items) == 3 {
		pl, ok := l.items[2].(*list)
		if !ok || len(pl.items) == 0 {
			return nil, errors.Syntax(l.items[2].pos(), "presort application must be a list")
		}
		cmd.Presort, err = parseIdent(pl.items[0], "presort name")
		if err != nil {
			return nil, err
		}
		for _, a := range pl.items[1:] {
			e, err := parseExpr(a)
			if err != nil {
				return nil, err
			}
			cmd.Args = append(cmd.Args, e)
		}
	} else if len(l.items) > 3 {
		return nil, errors.Syntax(l.position, "sort takes a name and an optional presort application")
	}
	return cmd, nil
}

func parseFunction(l *list) (ast.Command, error) {
	positional, opts, err := splitOptions(l.items[1:])
	if err != nil {
		return nil, err
	}
	if len(positional) != 3 {
		return nil, errors.Syntax(l.position, "function needs a name, an input list, and an output sort")
	}
	name, err := parseIdent(positional[0], "function name")
	if err != nil {
		return nil, err
	}
	inputs, err := parseSymbolList(positional[1], "function input sorts")
	if err != nil {
		return nil, err
	}
	output, err := parseIdent(positional[2], "function output sort")
	if err != nil {
		return nil, err
	}
	decl := ast.FunctionDecl{
		Name:   name,
		Schema: ast.Schema{Input: inputs, Output: output},
	}
	if mergeSexp, ok := opts["merge"]; ok {
		decl.Merge, err = parseExpr(mergeSexp)
		if err != nil {
			return nil, err
		}
	}
	if maSexp, ok := opts["on-merge"]; ok {
		ml, ok := maSexp.(*list)
		if !ok {
			return nil, errors.Syntax(maSexp.pos(), ":on-merge takes a list of actions")
		}
		for _, item := range ml.items {
			a, err := parseAction(item)
			if err != nil {
				return nil, err
			}
			decl.MergeAction = append(decl.MergeAction, a)
		}
	}
	if defSexp, ok := opts["default"]; ok {
		decl.Default, err = parseExpr(defSexp)
		if err != nil {
			return nil, err
		}
	}
	if costSexp, ok := opts["cost"]; ok {
		cost, err := parseInt(costSexp, "function cost")
		if err != nil {
			return nil, err
		}
		decl.Cost = &cost
	}
	return &ast.FunctionCmd{Decl: decl}, nil
}

func parseRelation(l *list) (ast.Command, error) {
	if len(l.items) != 3 {
		return nil, errors.Syntax(l.position, "relation needs a name and an input list")
	}
	name, err := parseIdent(l.items[1], "relation name")
	if err != nil {
		return nil, err
	}
	inputs, err := parseSymbolList(l.items[2], "relation input sorts")
	if err != nil {
		return nil, err
	}
	return &ast.RelationCmd{Name: name, Inputs: inputs}, nil
}

func parseDeclare(l *list) (ast.Command, error) {
	if len(l.items) != 3 {
		return nil, errors.Syntax(l.position, "declare needs a name and a sort")
	}
	name, err := parseIdent(l.items[1], "declared name")
	if err != nil {
		return nil, err
	}
	sort, err := parseIdent(l.items[2], "declared sort")
	if err != nil {
		return nil, err
	}
	return &ast.DeclareCmd{Name: name, Sort: sort}, nil
}

func parseRule(l *list) (ast.Command, error) {
	positional, opts, err := splitOptions(l.items[1:])
	if err != nil {
		return nil, err
	}
	if len(positional) != 2 {
		return nil, errors.Syntax(l.position, "rule needs a body list and a head list")
	}
	bodyList, ok := positional[0].(*list)
	if !ok {
		return nil, errors.Syntax(positional[0].pos(), "rule body must be a list of facts")
	}
	headList, ok := positional[1].(*list)
	if !ok {
		return nil, errors.Syntax(positional[1].pos(), "rule head must be a list of actions")
	}
	var rule ast.Rule
	for _, item := range bodyList.items {
		f, err := parseFact(item)
		if err != nil {
			return nil, err
		}
		rule.Body = append(rule.Body, f)
	}
	for _, item := range headList.items {
		a, err := parseAction(item)
		if err != nil {
			return nil, err
		}
		rule.Head = append(rule.Head, a)
	}
	if nameSexp, ok := opts["name"]; ok {
		name, err := parseString(nameSexp, "rule name")
		if err != nil {
			return nil, err
		}
		rule.Name = ast.Intern(name)
	}
	cmd := &ast.RuleCmd{Rule: rule}
	if rsSexp, ok := opts["ruleset"]; ok {
		cmd.Ruleset, err = parseIdent(rsSexp, "ruleset name")
		if err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func parseRewrite(l *list, bidirectional bool) (ast.Command, error) {
	positional, opts, err := splitOptions(l.items[1:])
	if err != nil {
		return nil, err
	}
	if len(positional) != 2 {
		return nil, errors.Syntax(l.position, "rewrite needs a left-hand side and a right-hand side")
	}
	lhs, err := parseExpr(positional[0])
	if err != nil {
		return nil, err
	}
	rhs, err := parseExpr(positional[1])
	if err != nil {
		return nil, err
	}
	rw := ast.Rewrite{Lhs: lhs, Rhs: rhs}
	if whenSexp, ok := opts["when"]; ok {
		wl, ok := whenSexp.(*list)
		if !ok {
			return nil, errors.Syntax(whenSexp.pos(), ":when takes a list of facts")
		}
		for _, item := range wl.items {
			f, err := parseFact(item)
			if err != nil {
				return nil, err
			}
			rw.Conditions = append(rw.Conditions, f)
		}
	}
	var ruleset ast.Symbol
	if rsSexp, ok := opts["ruleset"]; ok {
		ruleset, err = parseIdent(rsSexp, "ruleset name")
		if err != nil {
			return nil, err
		}
	}
	if bidirectional {
		return &ast.BiRewriteCmd{Ruleset: ruleset, Rewrite: rw}, nil
	}
	return &ast.RewriteCmd{Ruleset: ruleset, Rewrite: rw}, nil
}

func parseInclude(l *list) (ast.Command, error) {
	if len(l.items) != 2 {
		return nil, errors.Syntax(l.position, "include needs a file path")
	}
	path, err := parseString(l.items[1], "include path")
	if err != nil {
		return nil, err
	}
	return &ast.IncludeCmd{Path: path}, nil
}

func parseRun(l *list) (ast.Command, error) {
	positional, opts, err := splitOptions(l.items[1:])
	if err != nil {
		return nil, err
	}
	cfg := ast.RunConfig{Limit: 1}
	switch len(positional) {
	case 1:
		limit, err := parseInt(positional[0], "run limit")
		if err != nil {
			return nil, err
		}
		cfg.Limit = int(limit)
	case 2:
		cfg.Ruleset, err = parseIdent(positional[0], "ruleset name")
		if err != nil {
			return nil, err
		}
		limit, err := parseInt(positional[1], "run limit")
		if err != nil {
			return nil, err
		}
		cfg.Limit = int(limit)
	default:
		return nil, errors.Syntax(l.position, "run takes a limit and an optional ruleset")
	}
	if untilSexp, ok := opts["until"]; ok {
		ul, ok := untilSexp.(*list)
		if !ok {
			return nil, errors.Syntax(untilSexp.pos(), ":until takes a list of facts")
		}
		for _, item := range ul.items {
			f, err := parseFact(item)
			if err != nil {
				return nil, err
			}
			cfg.Until = append(cfg.Until, f)
		}
	}
	return &ast.RunCmd{Config: cfg}, nil
}

func parsePushPop(l *list, keyword string) (ast.Command, error) {
	n := 1
	if len(l.items) == 2 {
		v, err := parseInt(l.items[1], keyword+" count")
		if err != nil {
			return nil, err
		}
		n = int(v)
	} else if len(l.items) > 2 {
		return nil, errors.Syntax(l.position, "%s takes an optional count", keyword)
	}
	if keyword == "push" {
		return &ast.PushCmd{N: n}, nil
	}
	return &ast.PopCmd{N: n}, nil
}

func parseCheck(l *list) (ast.Command, error) {
	cmd := &ast.CheckCmd{}
	for _, item := range l.items[1:] {
		f, err := parseFact(item)
		if err != nil {
			return nil, err
		}
		cmd.Facts = append(cmd.Facts, f)
	}
	return cmd, nil
}

func parseRuleset(l *list) (ast.Command, error) {
	if len(l.items) != 2 {
		return nil, errors.Syntax(l.position, "ruleset needs a name")
	}
	name, err := parseIdent(l.items[1], "ruleset name")
	if err != nil {
		return nil, err
	}
	return &ast.RulesetCmd{Name: name}, nil
}

func parseSetOption(l *list) (ast.Command, error) {
	if len(l.items) != 3 {
		return nil, errors.Syntax(l.position, "set-option needs a name and a value")
	}
	name, err := parseIdent(l.items[1], "option name")
	if err != nil {
		return nil, err
	}
	value, err := parseExpr(l.items[2])
	if err != nil {
		return nil, err
	}
	return &ast.SetOptionCmd{Name: name, Value: value}, nil
}

func parseFact(s sexp) (ast.Fact, error) {
	if l, ok := s.(*list); ok {
		if kw, _ := head(l); kw == "=" {
			if len(l.items) != 3 {
				return nil, errors.Syntax(l.position, "= takes exactly two expressions")
			}
			lhs, err := parseExpr(l.items[1])
			if err != nil {
				return nil, err
			}
			rhs, err := parseExpr(l.items[2])
			if err != nil {
				return nil, err
			}
			return &ast.EqFact{Exprs: []ast.Expr{lhs, rhs}}, nil
		}
	}
	e, err := parseExpr(s)
	if err != nil {
		return nil, err
	}
	return &ast.ExprFact{Expr: e}, nil
}

func parseAction(s sexp) (ast.Action, error) {
	l, ok := s.(*list)
	if !ok {
		e, err := parseExpr(s)
		if err != nil {
			return nil, err
		}
		return &ast.ExprAction{Expr: e}, nil
	}
	keyword, _ := head(l)
	switch keyword {
	case "let":
		if len(l.items) != 3 {
			return nil, errors.Syntax(l.position, "let needs a name and an expression")
		}
		name, err := parseIdent(l.items[1], "let name")
		if err != nil {
			return nil, err
		}
		e, err := parseExpr(l.items[2])
		if err != nil {
			return nil, err
		}
		return &ast.LetAction{Name: name, Expr: e}, nil
	case "set":
		if len(l.items) != 3 {
			return nil, errors.Syntax(l.position, "set needs a call and a value")
		}
		fn, args, err := parseCallShape(l.items[1])
		if err != nil {
			return nil, err
		}
		value, err := parseExpr(l.items[2])
		if err != nil {
			return nil, err
		}
		return &ast.SetAction{Func: fn, Args: args, Value: value}, nil
	case "delete":
		if len(l.items) != 2 {
			return nil, errors.Syntax(l.position, "delete needs a call")
		}
		fn, args, err := parseCallShape(l.items[1])
		if err != nil {
			return nil, err
		}
		return &ast.DeleteAction{Func: fn, Args: args}, nil
	case "union":
		if len(l.items) != 3 {
			return nil, errors.Syntax(l.position, "union needs two expressions")
		}
		lhs, err := parseExpr(l.items[1])
		if err != nil {
			return nil, err
		}
		rhs, err := parseExpr(l.items[2])
		if err != nil {
			return nil, err
		}
		return &ast.UnionAction{Lhs: lhs, Rhs: rhs}, nil
	case "panic":
		if len(l.items) != 2 {
			return nil, errors.Syntax(l.position, "panic needs a message")
		}
		msg, err := parseString(l.items[1], "panic message")
		if err != nil {
			return nil, err
		}
		return &ast.PanicAction{Msg: msg}, nil
	default:
		e, err := parseExpr(s)
		if err != nil {
			return nil, err
		}
		return &ast.ExprAction{Expr: e}, nil
	}
}

func parseCallShape(s sexp) (ast.Symbol, []ast.Expr, error) {
	l, ok := s.(*list)
	if !ok || len(l.items) == 0 {
		return 0, nil, errors.Syntax(s.pos(), "expected a call of the form (f args...)")
	}
	fn, err := parseIdent(l.items[0], "function name")
	if err != nil {
		return 0, nil, err
	}
	var args []ast.Expr
	for _, item := range l.items[1:] {
		e, err := parseExpr(item)
		if err != nil {
			return 0, nil, err
		}
		args = append(args, e)
	}
	return fn, args, nil
}

func parseExpr(s sexp) (ast.Expr, error) {
	switch s := s.(type) {
	case *atom:
		switch s.kind {
		case "Int":
			v, err := strconv.ParseInt(s.text, 10, 64)
			if err != nil {
				return nil, errors.Syntax(s.position, "invalid integer literal %q", s.text)
			}
			return &ast.Lit{Value: ast.IntLit{Value: v}}, nil
		case "Float":
			v, err := strconv.ParseFloat(s.text, 64)
			if err != nil {
				return nil, errors.Syntax(s.position, "invalid float literal %q", s.text)
			}
			return &ast.Lit{Value: ast.F64Lit{Value: v}}, nil
		case "String":
			v, err := strconv.Unquote(s.text)
			if err != nil {
				return nil, errors.Syntax(s.position, "invalid string literal %s", s.text)
			}
			return &ast.Lit{Value: ast.StringLit{Value: v}}, nil
		case "Ident":
			switch s.text {
			case "true":
				return &ast.Lit{Value: ast.BoolLit{Value: true}}, nil
			case "false":
				return &ast.Lit{Value: ast.BoolLit{Value: false}}, nil
			}
			return ast.NewVar(ast.Intern(s.text)), nil
		default:
			return nil, errors.UnexpectedToken(s.position, ":"+s.text, "an expression")
		}
	case *list:
		if len(s.items) == 0 {
			return &ast.Lit{Value: ast.UnitLit{}}, nil
		}
		fn, err := parseIdent(s.items[0], "call head")
		if err != nil {
			return nil, err
		}
		call := &ast.Call{Func: fn}
		for _, item := range s.items[1:] {
			e, err := parseExpr(item)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, e)
		}
		return call, nil
	}
	return nil, errors.Syntax(s.pos(), "expected an expression")
}

func parseIdent(s sexp, what string) (ast.Symbol, error) {
	a, ok := s.(*atom)
	if !ok || a.kind != "Ident" {
		return 0, errors.Syntax(s.pos(), "expected %s to be an identifier", what)
	}
	return ast.Intern(a.text), nil
}

func parseString(s sexp, what string) (string, error) {
	a, ok := s.(*atom)
	if !ok || a.kind != "String" {
		return "", errors.Syntax(s.pos(), "expected %s to be a string literal", what)
	}
	v, err := strconv.Unquote(a.text)
	if err != nil {
		return "", errors.Syntax(a.position, "invalid string literal %s", a.text)
	}
	return v, nil
}

func parseInt(s sexp, what string) (int64, error) {
	a, ok := s.(*atom)
	if !ok || a.kind != "Int" {
		return 0, errors.Syntax(s.pos(), "expected %s to be an integer", what)
	}
	v, err := strconv.ParseInt(a.text, 10, 64)
	if err != nil {
		return 0, errors.Syntax(a.position, "invalid integer %q", a.text)
	}
	return v, nil
}

func parseSymbolList(s sexp, what string) ([]ast.Symbol, error) {
	l, ok := s.(*list)
	if !ok {
		return nil, errors.Syntax(s.pos(), "expected %s to be a list", what)
	}
	var out []ast.Symbol
	for _, item := range l.items {
		sym, err := parseIdent(item, strings.TrimSuffix(what, "s"))
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}
