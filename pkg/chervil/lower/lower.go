// Package lower rewrites markup literals into element constructor calls.
//
// The rewrite is a pure function from AST to AST: it allocates fresh nodes,
// never mutates its input, and has no failure mode. By the time a program
// reaches this pass every markup literal is structurally valid, so each
// element becomes a call
//
//	element(tag, properties, children)
//
// where tag is a string literal for intrinsic tags like <div> and a variable
// reference for component tags like <Card> or <app.Card>, properties is a
// dictionary literal preserving attribute order, and children is an array
// literal. Fragments become element(null, {}, children). Everything the
// evaluator sees afterwards is ordinary host syntax.
package lower

import (
	"github.com/sambeau/chervil/pkg/chervil/ast"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// ConstructorName is the builtin every markup literal lowers to a call of.
const ConstructorName = "element"

// Lower returns a copy of program with every markup literal rewritten into an
// element constructor call.
func Lower(program *ast.Program) *ast.Program {
	lowered := &ast.Program{Statements: make([]ast.Statement, 0, len(program.Statements))}
	for _, stmt := range program.Statements {
		lowered.Statements = append(lowered.Statements, lowerStatement(stmt))
	}
	return lowered
}

// LowerExpression rewrites a single expression. Exposed for the REPL, which
// lowers expressions one at a time.
func LowerExpression(expr ast.Expression) ast.Expression {
	return lowerExpression(expr)
}

func lowerStatement(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return &ast.LetStatement{Token: s.Token, Name: s.Name, Value: lowerExpression(s.Value)}
	case *ast.AssignmentStatement:
		return &ast.AssignmentStatement{Token: s.Token, Name: s.Name, Value: lowerExpression(s.Value)}
	case *ast.ReturnStatement:
		return &ast.ReturnStatement{Token: s.Token, ReturnValue: lowerExpression(s.ReturnValue)}
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Token: s.Token, Expression: lowerExpression(s.Expression)}
	case *ast.BlockStatement:
		return lowerBlock(s)
	default:
		return stmt
	}
}

func lowerBlock(block *ast.BlockStatement) *ast.BlockStatement {
	if block == nil {
		return nil
	}
	lowered := &ast.BlockStatement{Token: block.Token, Statements: make([]ast.Statement, 0, len(block.Statements))}
	for _, stmt := range block.Statements {
		lowered.Statements = append(lowered.Statements, lowerStatement(stmt))
	}
	return lowered
}

func lowerExpression(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case *ast.MarkupElement:
		return lowerElement(e)
	case *ast.MarkupFragment:
		return lowerFragment(e)
	case *ast.GroupedExpression:
		return &ast.GroupedExpression{Token: e.Token, Inner: lowerExpression(e.Inner)}
	case *ast.PrefixExpression:
		return &ast.PrefixExpression{Token: e.Token, Operator: e.Operator, Right: lowerExpression(e.Right)}
	case *ast.InfixExpression:
		return &ast.InfixExpression{
			Token:    e.Token,
			Left:     lowerExpression(e.Left),
			Operator: e.Operator,
			Right:    lowerExpression(e.Right),
		}
	case *ast.IfExpression:
		return &ast.IfExpression{
			Token:       e.Token,
			Condition:   lowerExpression(e.Condition),
			Consequence: lowerBlock(e.Consequence),
			Alternative: lowerBlock(e.Alternative),
		}
	case *ast.FunctionLiteral:
		return &ast.FunctionLiteral{Token: e.Token, Params: e.Params, Body: lowerBlock(e.Body)}
	case *ast.CallExpression:
		return &ast.CallExpression{
			Token:     e.Token,
			Function:  lowerExpression(e.Function),
			Arguments: lowerExpressions(e.Arguments),
		}
	case *ast.ArrayLiteral:
		return &ast.ArrayLiteral{Token: e.Token, Elements: lowerExpressions(e.Elements)}
	case *ast.DictionaryLiteral:
		pairs := make(map[string]ast.Expression, len(e.Pairs))
		for key, value := range e.Pairs {
			pairs[key] = lowerExpression(value)
		}
		return &ast.DictionaryLiteral{Token: e.Token, Pairs: pairs, KeyOrder: e.KeyOrder}
	case *ast.ForExpression:
		return &ast.ForExpression{
			Token:    e.Token,
			Array:    lowerExpression(e.Array),
			Function: lowerExpression(e.Function),
			Variable: e.Variable,
			Body:     lowerExpression(e.Body),
		}
	case *ast.IndexExpression:
		return &ast.IndexExpression{Token: e.Token, Left: lowerExpression(e.Left), Index: lowerExpression(e.Index)}
	case *ast.DotExpression:
		return &ast.DotExpression{Token: e.Token, Left: lowerExpression(e.Left), Key: e.Key}
	case nil:
		return nil
	default:
		// Leaf nodes: identifiers, literals, null.
		return expr
	}
}

func lowerExpressions(exprs []ast.Expression) []ast.Expression {
	if exprs == nil {
		return nil
	}
	lowered := make([]ast.Expression, 0, len(exprs))
	for _, e := range exprs {
		lowered = append(lowered, lowerExpression(e))
	}
	return lowered
}

// lowerElement rewrites <tag a="v" b={e}>children</tag> into
// element(tag, {"a": "v", "b": e}, [children...]).
func lowerElement(el *ast.MarkupElement) ast.Expression {
	return &ast.CallExpression{
		Token:    el.Token,
		Function: constructorRef(el.Token),
		Arguments: []ast.Expression{
			lowerTag(el.Tag),
			lowerAttributes(el),
			lowerChildren(el.Token, el.Children),
		},
	}
}

// lowerFragment rewrites <>children</> into element(null, {}, [children...]).
// The null tag is the fragment marker the renderer keys on.
func lowerFragment(fr *ast.MarkupFragment) ast.Expression {
	return &ast.CallExpression{
		Token:    fr.Token,
		Function: constructorRef(fr.Token),
		Arguments: []ast.Expression{
			&ast.NullLiteral{Token: syntheticToken(lexer.NULL, "null", fr.Token)},
			&ast.DictionaryLiteral{
				Token:    syntheticToken(lexer.LBRACE, "{", fr.Token),
				Pairs:    map[string]ast.Expression{},
				KeyOrder: []string{},
			},
			lowerChildren(fr.Token, fr.Children),
		},
	}
}

// lowerTag produces the constructor's first argument. Intrinsic tags become
// string literals; component tags become references into the enclosing scope,
// with dotted paths like app.Card turned into member access.
func lowerTag(tag *ast.MarkupTag) ast.Expression {
	if !tag.IsComponent() {
		return &ast.StringLiteral{
			Token: syntheticToken(lexer.STRING, tag.Spelling(), tag.Token),
			Value: tag.Spelling(),
		}
	}

	var expr ast.Expression = &ast.Identifier{
		Token: syntheticToken(lexer.IDENT, tag.Parts[0], tag.Token),
		Value: tag.Parts[0],
	}
	for _, part := range tag.Parts[1:] {
		expr = &ast.DotExpression{
			Token: syntheticToken(lexer.DOT, ".", tag.Token),
			Left:  expr,
			Key:   part,
		}
	}
	return expr
}

func lowerAttributes(el *ast.MarkupElement) *ast.DictionaryLiteral {
	dict := &ast.DictionaryLiteral{
		Token:    syntheticToken(lexer.LBRACE, "{", el.Token),
		Pairs:    make(map[string]ast.Expression, len(el.Attributes)),
		KeyOrder: make([]string, 0, len(el.Attributes)),
	}
	for _, attr := range el.Attributes {
		dict.Pairs[attr.Name] = lowerExpression(attr.Value)
		dict.KeyOrder = append(dict.KeyOrder, attr.Name)
	}
	return dict
}

func lowerChildren(tok lexer.Token, children []ast.MarkupNode) *ast.ArrayLiteral {
	array := &ast.ArrayLiteral{
		Token:    syntheticToken(lexer.LBRACKET, "[", tok),
		Elements: make([]ast.Expression, 0, len(children)),
	}
	for _, child := range children {
		array.Elements = append(array.Elements, lowerChild(child))
	}
	return array
}

func lowerChild(child ast.MarkupNode) ast.Expression {
	switch c := child.(type) {
	case *ast.MarkupText:
		return c.Value
	case *ast.MarkupHole:
		return lowerExpression(c.Expr)
	case *ast.MarkupElement:
		return lowerElement(c)
	case *ast.MarkupFragment:
		return lowerFragment(c)
	default:
		return child
	}
}

func constructorRef(at lexer.Token) *ast.Identifier {
	return &ast.Identifier{
		Token: syntheticToken(lexer.IDENT, ConstructorName, at),
		Value: ConstructorName,
	}
}

// syntheticToken makes a token for a node the source never spelled, carrying
// the position of the markup that produced it.
func syntheticToken(t lexer.TokenType, literal string, at lexer.Token) lexer.Token {
	return lexer.Token{Type: t, Literal: literal, Line: at.Line, Column: at.Column, Mode: at.Mode}
}
