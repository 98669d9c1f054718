package parser

import (
	"strings"

	"github.com/sambeau/chervil/pkg/chervil/ast"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// Markup literal grammar. Elements, fragments, and expression holes are all
// ordinary expressions, so the markup parser and the host expression parser
// are mutually recursive: parseExpression reaches in through the TAG_OPEN and
// FRAG_OPEN prefix functions, and parseExpressionHole reaches back out.
//
// Every parse function follows the same convention as the host grammar:
// curToken sits on the construct's first token on entry and on its last token
// on exit.

// parseMarkupLiteral is the prefix parse function for TAG_OPEN.
func (p *Parser) parseMarkupLiteral() ast.Expression {
	el := p.parseElement()
	if el == nil {
		// Returning a nil *ast.MarkupElement directly would produce a
		// non-nil interface value.
		return nil
	}
	return el
}

// parseFragmentLiteral is the prefix parse function for FRAG_OPEN.
func (p *Parser) parseFragmentLiteral() ast.Expression {
	frag := p.parseFragment()
	if frag == nil {
		return nil
	}
	return frag
}

// parseElement parses <tag attr="v" attr={e}>children</tag> or a
// self-closing <tag/>. curToken is on TAG_OPEN.
func (p *Parser) parseElement() *ast.MarkupElement {
	element := &ast.MarkupElement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	element.Tag = &ast.MarkupTag{
		Token: p.curToken,
		Parts: strings.Split(p.curToken.Literal, "."),
	}

	if !p.parseMarkupAttributes(element) {
		return nil
	}

	// curToken is now TAG_SELF_CLOSE or TAG_CLOSE
	if p.curTokenIs(lexer.TAG_SELF_CLOSE) {
		element.SelfClosing = true
		return element
	}

	children, ok := p.parseMarkupChildren(element.Tag.Spelling())
	if !ok {
		return nil
	}
	element.Children = children

	// curToken is on TAG_END_OPEN, unless a bare </> closed the element. A
	// fragment close against a named open tag is a mismatch like any other.
	if p.curTokenIs(lexer.FRAG_CLOSE) {
		p.addStructuredError("PARSE-0005", p.curToken.Line, p.curToken.Column, map[string]any{
			"Open":  element.Tag.Spelling(),
			"Close": "",
		})
		return nil
	}

	endTok := p.curToken

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	if p.curToken.Literal != element.Tag.Spelling() {
		p.addStructuredError("PARSE-0005", endTok.Line, endTok.Column, map[string]any{
			"Open":  element.Tag.Spelling(),
			"Close": p.curToken.Literal,
		})
		return nil
	}

	if !p.expectPeek(lexer.TAG_CLOSE) {
		return nil
	}

	return element
}

// parseFragment parses <>children</>. curToken is on FRAG_OPEN.
func (p *Parser) parseFragment() *ast.MarkupFragment {
	fragment := &ast.MarkupFragment{Token: p.curToken}

	children, ok := p.parseMarkupChildren("")
	if !ok {
		return nil
	}
	fragment.Children = children

	// curToken is on FRAG_CLOSE. A named closing tag against an open
	// fragment is a mismatch like any other.
	if p.curTokenIs(lexer.TAG_END_OPEN) {
		endTok := p.curToken
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		p.addStructuredError("PARSE-0005", endTok.Line, endTok.Column, map[string]any{
			"Open":  "",
			"Close": p.curToken.Literal,
		})
		return nil
	}

	return fragment
}

// parseMarkupAttributes parses zero or more name="string" / name={expr}
// attributes, leaving curToken on the TAG_CLOSE or TAG_SELF_CLOSE that ends
// the opening tag. Returns false on error.
func (p *Parser) parseMarkupAttributes(element *ast.MarkupElement) bool {
	for {
		switch p.peekToken.Type {
		case lexer.TAG_CLOSE, lexer.TAG_SELF_CLOSE:
			p.nextToken()
			return true

		case lexer.IDENT:
			p.nextToken()
			attr := &ast.MarkupAttribute{Token: p.curToken, Name: p.curToken.Literal}

			if !p.expectPeek(lexer.ASSIGN) {
				return false
			}

			switch p.peekToken.Type {
			case lexer.STRING:
				p.nextToken()
				attr.Value = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}

			case lexer.LBRACE:
				p.nextToken()
				hole := p.parseExpressionHole()
				if hole == nil {
					return false
				}
				attr.Value = hole.Expr
				attr.Hole = true

			default:
				p.addStructuredError("PARSE-0007", p.peekToken.Line, p.peekToken.Column,
					map[string]any{"Attr": attr.Name})
				return false
			}

			element.Attributes = append(element.Attributes, attr)

		case lexer.EOF:
			p.addStructuredError("PARSE-0006", p.peekToken.Line, p.peekToken.Column,
				map[string]any{"Tag": element.Tag.Spelling()})
			return false

		default:
			p.addStructuredError("PARSE-0006", p.peekToken.Line, p.peekToken.Column,
				map[string]any{"Tag": element.Tag.Spelling()})
			return false
		}
	}
}

// parseMarkupChildren parses element content until the closing delimiter,
// leaving curToken on the TAG_END_OPEN or FRAG_CLOSE that ends it. openTag
// names the enclosing element for the unterminated-literal diagnostic
// (fragments use ""). Returns (children, false) on error.
func (p *Parser) parseMarkupChildren(openTag string) ([]ast.MarkupNode, bool) {
	children := []ast.MarkupNode{}

	for {
		switch p.peekToken.Type {
		case lexer.TAG_END_OPEN, lexer.FRAG_CLOSE:
			p.nextToken()
			return children, true

		case lexer.STRING:
			p.nextToken()
			children = append(children, &ast.MarkupText{
				Token: p.curToken,
				Value: &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal},
			})

		case lexer.LBRACE:
			p.nextToken()
			hole := p.parseExpressionHole()
			if hole == nil {
				return nil, false
			}
			children = append(children, hole)

		case lexer.TAG_OPEN:
			p.nextToken()
			child := p.parseElement()
			if child == nil {
				return nil, false
			}
			children = append(children, child)

		case lexer.FRAG_OPEN:
			p.nextToken()
			child := p.parseFragment()
			if child == nil {
				return nil, false
			}
			children = append(children, child)

		case lexer.ILLEGAL:
			if p.peekToken.Literal == "unterminated string" {
				p.addStructuredError("PARSE-0003", p.peekToken.Line, p.peekToken.Column, nil)
			} else {
				p.addStructuredError("PARSE-0008", p.peekToken.Line, p.peekToken.Column, nil)
			}
			return nil, false

		case lexer.EOF:
			p.addStructuredError("PARSE-0009", p.peekToken.Line, p.peekToken.Column,
				map[string]any{"Tag": openTag})
			return nil, false

		default:
			p.addStructuredError("PARSE-0008", p.peekToken.Line, p.peekToken.Column, nil)
			return nil, false
		}
	}
}

// parseExpressionHole parses {expr} inside element content or an attribute
// value. curToken is on LBRACE; on exit it is on the matching RBRACE, with
// the lexer already back in the surrounding markup mode.
func (p *Parser) parseExpressionHole() *ast.MarkupHole {
	hole := &ast.MarkupHole{Token: p.curToken}

	if p.peekTokenIs(lexer.RBRACE) {
		p.addStructuredError("PARSE-0002", p.peekToken.Line, p.peekToken.Column,
			map[string]any{"Token": "}"})
		return nil
	}

	p.nextToken()
	hole.Expr = p.parseExpression(LOWEST)
	if hole.Expr == nil {
		return nil
	}

	if p.peekTokenIs(lexer.EOF) {
		p.addStructuredError("PARSE-0010", p.peekToken.Line, p.peekToken.Column, nil)
		return nil
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}

	return hole
}
