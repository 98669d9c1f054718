package ast

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// MarkupNode is a node that can appear as markup content: an element, a
// fragment, a quoted text literal, or a brace-delimited expression hole.
// Markup nodes exist only between parsing and lowering; the lowering pass
// rewrites every one of them into ordinary call/dictionary/array expressions,
// so nothing downstream of the parser ever sees them.
type MarkupNode interface {
	Expression
	markupNode()
}

// MarkupTag is the tag reference of an element: either an intrinsic name
// (lowercase-leading, lowered to a string literal) or a component reference
// (capitalized-leading name or dotted path, lowered to an expression
// reference).
type MarkupTag struct {
	Token lexer.Token // the tag-name token
	Parts []string    // "div" -> ["div"], "app.Card" -> ["app", "Card"]
}

// Spelling returns the tag name exactly as written in the source.
func (mt *MarkupTag) Spelling() string {
	return strings.Join(mt.Parts, ".")
}

// IsComponent reports whether this tag lowers to an expression reference
// rather than a string literal. Dotted paths are always component
// references; single names are components when they start with an
// uppercase letter.
func (mt *MarkupTag) IsComponent() bool {
	if len(mt.Parts) > 1 {
		return true
	}
	r := []rune(mt.Parts[0])
	return len(r) > 0 && unicode.IsUpper(r[0])
}

// MarkupAttribute represents one attribute of an opening tag. The value is
// either a string literal (name="value") or an expression hole
// (name={expr}); the parser rejects anything else.
type MarkupAttribute struct {
	Token lexer.Token // the attribute-name token
	Name  string
	Value Expression
	Hole  bool // true if the value was written as {expr}
}

func (ma *MarkupAttribute) String() string {
	if ma.Hole {
		return ma.Name + "={" + ma.Value.String() + "}"
	}
	return ma.Name + "=" + ma.Value.String()
}

// MarkupElement represents an element like <div class="x">...</div> or a
// self-closing element like <img/>. The parser guarantees that a
// non-self-closing element's closing tag matched its opening spelling
// exactly; no such check is deferred to lowering.
type MarkupElement struct {
	Token       lexer.Token // the TAG_OPEN token
	Tag         *MarkupTag
	Attributes  []*MarkupAttribute
	Children    []MarkupNode
	SelfClosing bool
}

func (me *MarkupElement) expressionNode()      {}
func (me *MarkupElement) markupNode()          {}
func (me *MarkupElement) TokenLiteral() string { return me.Token.Literal }
func (me *MarkupElement) String() string {
	var out bytes.Buffer

	out.WriteString("<")
	out.WriteString(me.Tag.Spelling())
	for _, attr := range me.Attributes {
		out.WriteString(" ")
		out.WriteString(attr.String())
	}

	if me.SelfClosing {
		out.WriteString("/>")
		return out.String()
	}

	out.WriteString(">")
	for _, child := range me.Children {
		out.WriteString(child.String())
	}
	out.WriteString("</")
	out.WriteString(me.Tag.Spelling())
	out.WriteString(">")

	return out.String()
}

// MarkupFragment represents a fragment like <>...</>: children with no tag.
type MarkupFragment struct {
	Token    lexer.Token // the FRAG_OPEN token
	Children []MarkupNode
}

func (mf *MarkupFragment) expressionNode()      {}
func (mf *MarkupFragment) markupNode()          {}
func (mf *MarkupFragment) TokenLiteral() string { return mf.Token.Literal }
func (mf *MarkupFragment) String() string {
	var out bytes.Buffer

	out.WriteString("<>")
	for _, child := range mf.Children {
		out.WriteString(child.String())
	}
	out.WriteString("</>")

	return out.String()
}

// MarkupText represents quoted text content inside an element. The value is
// always a complete, validly-quoted string literal; the lexer's text mode
// accepts nothing else.
type MarkupText struct {
	Token lexer.Token // the STRING token
	Value *StringLiteral
}

func (mt *MarkupText) expressionNode()      {}
func (mt *MarkupText) markupNode()          {}
func (mt *MarkupText) TokenLiteral() string { return mt.Token.Literal }
func (mt *MarkupText) String() string       { return mt.Value.String() }

// MarkupHole represents a brace-delimited embedded expression inside markup
// content. By the time the markup parser resumes, Expr is always a fully
// reduced expression node, never a raw token stream.
type MarkupHole struct {
	Token lexer.Token // the '{' token
	Expr  Expression
}

func (mh *MarkupHole) expressionNode()      {}
func (mh *MarkupHole) markupNode()          {}
func (mh *MarkupHole) TokenLiteral() string { return mh.Token.Literal }
func (mh *MarkupHole) String() string       { return "{" + mh.Expr.String() + "}" }
