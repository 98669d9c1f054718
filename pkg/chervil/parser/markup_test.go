package parser

import (
	"strings"
	"testing"

	"github.com/sambeau/chervil/pkg/chervil/ast"
	cherrors "github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

func parseMarkup(t *testing.T, input string) *ast.MarkupElement {
	t.Helper()

	program := parseProgram(t, input)
	el, ok := firstExpression(t, program).(*ast.MarkupElement)
	if !ok {
		t.Fatalf("expression is %T, want *ast.MarkupElement", firstExpression(t, program))
	}
	return el
}

func TestEmptyElement(t *testing.T) {
	el := parseMarkup(t, `<div></div>`)

	if el.Tag.Spelling() != "div" {
		t.Errorf("tag: want %q, got %q", "div", el.Tag.Spelling())
	}
	if len(el.Attributes) != 0 {
		t.Errorf("attributes: want 0, got %d", len(el.Attributes))
	}
	if len(el.Children) != 0 {
		t.Errorf("children: want 0, got %d", len(el.Children))
	}
	if el.SelfClosing {
		t.Errorf("element should not be self-closing")
	}
}

func TestSelfClosingElement(t *testing.T) {
	el := parseMarkup(t, `<img />`)

	if el.Tag.Spelling() != "img" {
		t.Errorf("tag: want %q, got %q", "img", el.Tag.Spelling())
	}
	if !el.SelfClosing {
		t.Errorf("element should be self-closing")
	}
	if len(el.Children) != 0 {
		t.Errorf("children: want 0, got %d", len(el.Children))
	}
}

func TestElementAttributes(t *testing.T) {
	el := parseMarkup(t, `<a href="example.com" target={tab} rel="me"></a>`)

	if len(el.Attributes) != 3 {
		t.Fatalf("attributes: want 3, got %d", len(el.Attributes))
	}

	// Source order is preserved
	wantNames := []string{"href", "target", "rel"}
	for i, name := range wantNames {
		if el.Attributes[i].Name != name {
			t.Errorf("attribute[%d]: want %q, got %q", i, name, el.Attributes[i].Name)
		}
	}

	if el.Attributes[0].Hole {
		t.Errorf("href should be a string attribute")
	}
	str, ok := el.Attributes[0].Value.(*ast.StringLiteral)
	if !ok || str.Value != "example.com" {
		t.Errorf("href value: got %v", el.Attributes[0].Value)
	}

	if !el.Attributes[1].Hole {
		t.Errorf("target should be an expression hole")
	}
	if _, ok := el.Attributes[1].Value.(*ast.Identifier); !ok {
		t.Errorf("target value: want identifier, got %T", el.Attributes[1].Value)
	}
}

func TestTextAndHoleChildrenPreserveOrder(t *testing.T) {
	el := parseMarkup(t, `<p>"a"{x}"b"{y}</p>`)

	if len(el.Children) != 4 {
		t.Fatalf("children: want 4, got %d", len(el.Children))
	}

	if text, ok := el.Children[0].(*ast.MarkupText); !ok || text.Value.Value != "a" {
		t.Errorf("child 0: want text %q, got %v", "a", el.Children[0])
	}
	if _, ok := el.Children[1].(*ast.MarkupHole); !ok {
		t.Errorf("child 1: want hole, got %T", el.Children[1])
	}
	if text, ok := el.Children[2].(*ast.MarkupText); !ok || text.Value.Value != "b" {
		t.Errorf("child 2: want text %q, got %v", "b", el.Children[2])
	}
	if _, ok := el.Children[3].(*ast.MarkupHole); !ok {
		t.Errorf("child 3: want hole, got %T", el.Children[3])
	}
}

func TestNestedElements(t *testing.T) {
	el := parseMarkup(t, `<div><h1>"Title"</h1><p>"Body"</p></div>`)

	if len(el.Children) != 2 {
		t.Fatalf("children: want 2, got %d", len(el.Children))
	}

	h1, ok := el.Children[0].(*ast.MarkupElement)
	if !ok || h1.Tag.Spelling() != "h1" {
		t.Errorf("child 0: want h1 element, got %v", el.Children[0])
	}
	p, ok := el.Children[1].(*ast.MarkupElement)
	if !ok || p.Tag.Spelling() != "p" {
		t.Errorf("child 1: want p element, got %v", el.Children[1])
	}
}

func TestFragment(t *testing.T) {
	program := parseProgram(t, `<><p>"1st"</p><p>"2nd"</p></>`)

	frag, ok := firstExpression(t, program).(*ast.MarkupFragment)
	if !ok {
		t.Fatalf("expression is not *ast.MarkupFragment")
	}
	if len(frag.Children) != 2 {
		t.Fatalf("children: want 2, got %d", len(frag.Children))
	}
}

func TestComponentTags(t *testing.T) {
	tests := []struct {
		input       string
		spelling    string
		isComponent bool
	}{
		{`<div></div>`, "div", false},
		{`<my-widget/>`, "my-widget", false},
		{`<Card/>`, "Card", true},
		{`<app.Card/>`, "app.Card", true},
		{`<ui.forms.Input/>`, "ui.forms.Input", true},
	}

	for _, tt := range tests {
		el := parseMarkup(t, tt.input)
		if el.Tag.Spelling() != tt.spelling {
			t.Errorf("input %q: spelling want %q, got %q", tt.input, tt.spelling, el.Tag.Spelling())
		}
		if el.Tag.IsComponent() != tt.isComponent {
			t.Errorf("input %q: IsComponent want %t", tt.input, tt.isComponent)
		}
	}
}

// Markup and expression holes are mutually recursive; four levels deep must
// still parse with children in source order.
func TestDeeplyNestedHoles(t *testing.T) {
	input := `<div>{ <p>"a"{ <span>{ <b>"x"</b> }</span> }"z"</p> }</div>`

	el := parseMarkup(t, input)

	hole, ok := el.Children[0].(*ast.MarkupHole)
	if !ok {
		t.Fatalf("level 1: want hole, got %T", el.Children[0])
	}
	p, ok := hole.Expr.(*ast.MarkupElement)
	if !ok || p.Tag.Spelling() != "p" {
		t.Fatalf("level 2: want p element, got %v", hole.Expr)
	}
	if len(p.Children) != 3 {
		t.Fatalf("level 2 children: want 3, got %d", len(p.Children))
	}
	if text, ok := p.Children[0].(*ast.MarkupText); !ok || text.Value.Value != "a" {
		t.Errorf("level 2 child 0: want text %q", "a")
	}
	if text, ok := p.Children[2].(*ast.MarkupText); !ok || text.Value.Value != "z" {
		t.Errorf("level 2 child 2: want text %q", "z")
	}

	innerHole, ok := p.Children[1].(*ast.MarkupHole)
	if !ok {
		t.Fatalf("level 3: want hole, got %T", p.Children[1])
	}
	span, ok := innerHole.Expr.(*ast.MarkupElement)
	if !ok || span.Tag.Spelling() != "span" {
		t.Fatalf("level 3: want span element, got %v", innerHole.Expr)
	}
	deepHole, ok := span.Children[0].(*ast.MarkupHole)
	if !ok {
		t.Fatalf("level 4: want hole, got %T", span.Children[0])
	}
	b, ok := deepHole.Expr.(*ast.MarkupElement)
	if !ok || b.Tag.Spelling() != "b" {
		t.Fatalf("level 4: want b element, got %v", deepHole.Expr)
	}
}

func TestMarkupInsideHostExpressions(t *testing.T) {
	tests := []string{
		`let page = <div></div>;`,
		`f(<b/>, <i/>)`,
		`[<li>"a"</li>, <li>"b"</li>]`,
		`if loggedIn { <p>"hi"</p> } else { <p>"bye"</p> }`,
		`fn(x) { <span>{x}</span> }`,
	}

	for _, input := range tests {
		parseProgram(t, input)
	}
}

func expectMarkupError(t *testing.T, input, wantSubstring string) *Parser {
	t.Helper()

	l := lexer.New(input)
	p := New(l)
	p.ParseProgram()

	errs := p.StructuredErrors()
	if len(errs) == 0 {
		t.Fatalf("input %q: expected a parse error, got none", input)
	}
	if len(errs) != 1 {
		t.Fatalf("input %q: expected exactly 1 error, got %d: %v", input, len(errs), p.Errors())
	}
	if !strings.Contains(errs[0].Message, wantSubstring) {
		t.Fatalf("input %q: error %q does not contain %q", input, errs[0].Message, wantSubstring)
	}
	return p
}

func TestMismatchedTags(t *testing.T) {
	p := expectMarkupError(t, `<div></span>`, "mismatched tags")

	err := p.StructuredErrors()[0]
	if err.Code != "PARSE-0005" {
		t.Errorf("code: want PARSE-0005, got %s", err.Code)
	}
	// The error points at the closing tag, not the opening one
	if err.Line != 1 || err.Column != 6 {
		t.Errorf("position: want 1:6 (the </span> token), got %d:%d", err.Line, err.Column)
	}
	if !strings.Contains(err.Message, "div") || !strings.Contains(err.Message, "span") {
		t.Errorf("message should name both tags: %q", err.Message)
	}
}

func TestMismatchedNestedTags(t *testing.T) {
	// The inner close is the one that mismatches
	expectMarkupError(t, `<div><p>"a"</div></p>`, "mismatched tags")
}

func TestBareTextRejected(t *testing.T) {
	p := expectMarkupError(t, `<p>hello</p>`, "quoted string")
	if p.StructuredErrors()[0].Code != "PARSE-0008" {
		t.Errorf("code: want PARSE-0008, got %s", p.StructuredErrors()[0].Code)
	}
}

func TestInvalidAttributeValue(t *testing.T) {
	p := expectMarkupError(t, `<a href=example.com></a>`, "invalid attribute value")
	if p.StructuredErrors()[0].Code != "PARSE-0007" {
		t.Errorf("code: want PARSE-0007, got %s", p.StructuredErrors()[0].Code)
	}
}

func TestUnterminatedMarkup(t *testing.T) {
	tests := []struct {
		input    string
		wantCode string
	}{
		{`<div>"a"`, "PARSE-0009"},
		{`<div><p>"a"</p>`, "PARSE-0009"},
		{`<div`, "PARSE-0006"},
		{`<div class="x"`, "PARSE-0006"},
		{`<div>{1 + 2`, "PARSE-0010"},
	}

	for _, tt := range tests {
		l := lexer.New(tt.input)
		p := New(l)
		p.ParseProgram()

		errs := p.StructuredErrors()
		if len(errs) == 0 {
			t.Errorf("input %q: expected a parse error, got none", tt.input)
			continue
		}
		if errs[0].Code != tt.wantCode {
			t.Errorf("input %q: code want %s, got %s (%s)",
				tt.input, tt.wantCode, errs[0].Code, errs[0].Message)
		}
	}
}

func TestFragmentClosedWithNamedTag(t *testing.T) {
	expectMarkupError(t, `<>"a"</div>`, "mismatched tags")
}

func TestElementClosedWithFragmentClose(t *testing.T) {
	p := expectMarkupError(t, `<div></>`, "mismatched tags")

	err := p.StructuredErrors()[0]
	if err.Code != "PARSE-0005" {
		t.Errorf("code: want PARSE-0005, got %s (%s)", err.Code, err.Message)
	}
	if err.Line != 1 || err.Column != 6 {
		t.Errorf("position: want 1:6 (the </> token), got %d:%d", err.Line, err.Column)
	}
	if !strings.Contains(err.Message, "div") {
		t.Errorf("message should name the opening tag: %q", err.Message)
	}
}

func TestHostErrorPropagatesFromHole(t *testing.T) {
	// A host-expression syntax error inside a hole surfaces as an ordinary
	// parse error; nothing markup-specific wraps it.
	l := lexer.New(`<p>{1 +}</p>`)
	p := New(l)
	p.ParseProgram()

	errs := p.StructuredErrors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), p.Errors())
	}
	if errs[0].Class != cherrors.ClassParse {
		t.Errorf("class: want parse, got %s", errs[0].Class)
	}
}
