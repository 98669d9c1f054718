package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let pi = 3.14;

let add = fn(x, y) {
  x + y;
};

let result = add(five, pi);
!-/*5;
5 < 10 > 5;

if (5 <= 10) {
	return true;
} else {
	return false;
}

10 == 10;
10 != 9;
"foobar"
"foo bar"
[1, 2];
{name: "a"};
a.b;
x and y or not z;
"a" ++ "b";
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"},
		{IDENT, "five"},
		{ASSIGN, "="},
		{INT, "5"},
		{SEMICOLON, ";"},
		{LET, "let"},
		{IDENT, "pi"},
		{ASSIGN, "="},
		{FLOAT, "3.14"},
		{SEMICOLON, ";"},
		{LET, "let"},
		{IDENT, "add"},
		{ASSIGN, "="},
		{FUNCTION, "fn"},
		{LPAREN, "("},
		{IDENT, "x"},
		{COMMA, ","},
		{IDENT, "y"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{IDENT, "x"},
		{PLUS, "+"},
		{IDENT, "y"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{SEMICOLON, ";"},
		{LET, "let"},
		{IDENT, "result"},
		{ASSIGN, "="},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "five"},
		{COMMA, ","},
		{IDENT, "pi"},
		{RPAREN, ")"},
		{SEMICOLON, ";"},
		{BANG, "!"},
		{MINUS, "-"},
		{SLASH, "/"},
		{ASTERISK, "*"},
		{INT, "5"},
		{SEMICOLON, ";"},
		{INT, "5"},
		{LT, "<"},
		{INT, "10"},
		{GT, ">"},
		{INT, "5"},
		{SEMICOLON, ";"},
		{IF, "if"},
		{LPAREN, "("},
		{INT, "5"},
		{LTE, "<="},
		{INT, "10"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{TRUE, "true"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{ELSE, "else"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{FALSE, "false"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{INT, "10"},
		{EQ, "=="},
		{INT, "10"},
		{SEMICOLON, ";"},
		{INT, "10"},
		{NOT_EQ, "!="},
		{INT, "9"},
		{SEMICOLON, ";"},
		{STRING, "foobar"},
		{STRING, "foo bar"},
		{LBRACKET, "["},
		{INT, "1"},
		{COMMA, ","},
		{INT, "2"},
		{RBRACKET, "]"},
		{SEMICOLON, ";"},
		{LBRACE, "{"},
		{IDENT, "name"},
		{COLON, ":"},
		{STRING, "a"},
		{RBRACE, "}"},
		{SEMICOLON, ";"},
		{IDENT, "a"},
		{DOT, "."},
		{IDENT, "b"},
		{SEMICOLON, ";"},
		{IDENT, "x"},
		{AND, "and"},
		{IDENT, "y"},
		{OR, "or"},
		{BANG, "not"},
		{IDENT, "z"},
		{SEMICOLON, ";"},
		{STRING, "a"},
		{PLUSPLUS, "++"},
		{STRING, "b"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestMarkupTokens(t *testing.T) {
	input := `let page = <div class="box" id={name}>"hello"{user}</div>;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"},
		{IDENT, "page"},
		{ASSIGN, "="},
		{TAG_OPEN, "<"},
		{IDENT, "div"},
		{IDENT, "class"},
		{ASSIGN, "="},
		{STRING, "box"},
		{IDENT, "id"},
		{ASSIGN, "="},
		{LBRACE, "{"},
		{IDENT, "name"},
		{RBRACE, "}"},
		{TAG_CLOSE, ">"},
		{STRING, "hello"},
		{LBRACE, "{"},
		{IDENT, "user"},
		{RBRACE, "}"},
		{TAG_END_OPEN, "</"},
		{IDENT, "div"},
		{TAG_CLOSE, ">"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestSelfClosingAndFragmentTokens(t *testing.T) {
	input := `<><img src="a.jpg"/><app.Card/></>`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{FRAG_OPEN, "<>"},
		{TAG_OPEN, "<"},
		{IDENT, "img"},
		{IDENT, "src"},
		{ASSIGN, "="},
		{STRING, "a.jpg"},
		{TAG_SELF_CLOSE, "/>"},
		{TAG_OPEN, "<"},
		{IDENT, "app.Card"},
		{TAG_SELF_CLOSE, "/>"},
		{FRAG_CLOSE, "</>"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// '<' must stay the less-than operator after an operand and open a tag at an
// expression-start position.
func TestLessThanDisambiguation(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{`a < b`, []TokenType{IDENT, LT, IDENT, EOF}},
		{`1 < 2`, []TokenType{INT, LT, INT, EOF}},
		{`x <= y`, []TokenType{IDENT, LTE, IDENT, EOF}},
		{`let x = <b>"text"</b>`, []TokenType{LET, IDENT, ASSIGN, TAG_OPEN, IDENT, TAG_CLOSE, STRING, TAG_END_OPEN, IDENT, TAG_CLOSE, EOF}},
		{`f(<b/>)`, []TokenType{IDENT, LPAREN, TAG_OPEN, IDENT, TAG_SELF_CLOSE, RPAREN, EOF}},
		{`[<b/>, <i/>]`, []TokenType{LBRACKET, TAG_OPEN, IDENT, TAG_SELF_CLOSE, COMMA, TAG_OPEN, IDENT, TAG_SELF_CLOSE, RBRACKET, EOF}},
		{`(a) < b`, []TokenType{LPAREN, IDENT, RPAREN, LT, IDENT, EOF}},
		{`arr[0] < n`, []TokenType{IDENT, LBRACKET, INT, RBRACKET, LT, IDENT, EOF}},
	}

	for _, tt := range tests {
		l := New(tt.input)
		for i, expected := range tt.expected {
			tok := l.NextToken()
			if tok.Type != expected {
				t.Errorf("input %q token[%d]: expected=%q, got=%q (literal=%q)",
					tt.input, i, expected, tok.Type, tok.Literal)
				break
			}
		}
	}
}

func TestModeSwitching(t *testing.T) {
	l := New(`<div>"a"</div>`)

	if l.Mode() != CODE {
		t.Fatalf("initial mode: expected CODE, got %s", l.Mode())
	}

	l.NextToken() // <
	if l.Mode() != TAG {
		t.Fatalf("after '<': expected TAG, got %s", l.Mode())
	}

	l.NextToken() // div
	l.NextToken() // >
	if l.Mode() != TEXT {
		t.Fatalf("after '>': expected TEXT, got %s", l.Mode())
	}

	if tags := l.OpenTags(); len(tags) != 1 || tags[0] != "div" {
		t.Fatalf("open tags: expected [div], got %v", tags)
	}

	l.NextToken() // "a"
	l.NextToken() // </
	l.NextToken() // div
	l.NextToken() // >
	if l.Mode() != CODE {
		t.Fatalf("after closing tag: expected CODE, got %s", l.Mode())
	}
	if tags := l.OpenTags(); len(tags) != 0 {
		t.Fatalf("open tags after close: expected none, got %v", tags)
	}
}

// A '}' inside an expression hole must only end the hole at matched depth.
func TestHoleBraceDepth(t *testing.T) {
	input := `<div>{ {color: "red"} }</div>`

	tests := []TokenType{
		TAG_OPEN, IDENT, TAG_CLOSE,
		LBRACE, // hole opens
		LBRACE, // dictionary opens
		IDENT, COLON, STRING,
		RBRACE, // dictionary closes, still in the hole
		RBRACE, // hole closes
		TAG_END_OPEN, IDENT, TAG_CLOSE,
		EOF,
	}

	l := New(input)
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("token[%d]: expected=%q, got=%q (literal=%q)", i, expected, tok.Type, tok.Literal)
		}
	}
}

func TestBareTextIsIllegal(t *testing.T) {
	l := New(`<p>hello</p>`)

	l.NextToken() // <
	l.NextToken() // p
	l.NextToken() // >

	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("bare text: expected ILLEGAL, got %q (literal=%q)", tok.Type, tok.Literal)
	}
	if tok.Literal != "hello" {
		t.Fatalf("bare text literal: expected %q, got %q", "hello", tok.Literal)
	}
	if tok.Mode != TEXT {
		t.Fatalf("bare text mode: expected TEXT, got %s", tok.Mode)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL || tok.Literal != "unterminated string" {
		t.Fatalf("expected unterminated string ILLEGAL, got %q (literal=%q)", tok.Type, tok.Literal)
	}
}

func TestTokenPositions(t *testing.T) {
	input := "let x = 5\nlet y = 10"
	l := New(input)

	expected := []struct {
		line   int
		column int
	}{
		{1, 1},  // let
		{1, 5},  // x
		{1, 7},  // =
		{1, 9},  // 5
		{2, 1},  // let
		{2, 5},  // y
		{2, 7},  // =
		{2, 9},  // 10
	}

	for i, pos := range expected {
		tok := l.NextToken()
		if tok.Line != pos.line || tok.Column != pos.column {
			t.Errorf("token[%d] %q: expected %d:%d, got %d:%d",
				i, tok.Literal, pos.line, pos.column, tok.Line, tok.Column)
		}
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	l := New(`let héllo = "wörld"`)

	l.NextToken() // let
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "héllo" {
		t.Fatalf("unicode identifier: got %q (literal=%q)", tok.Type, tok.Literal)
	}
	l.NextToken() // =
	tok = l.NextToken()
	if tok.Type != STRING || tok.Literal != "wörld" {
		t.Fatalf("unicode string: got %q (literal=%q)", tok.Type, tok.Literal)
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\t\"c\""`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %q", tok.Type)
	}
	if tok.Literal != "a\nb\t\"c\"" {
		t.Fatalf("escapes: got %q", tok.Literal)
	}
}

func TestLineComments(t *testing.T) {
	l := New("// a comment\nlet x = 1 // trailing\n")

	tests := []TokenType{LET, IDENT, ASSIGN, INT, EOF}
	for i, expected := range tests {
		tok := l.NextToken()
		if tok.Type != expected {
			t.Fatalf("token[%d]: expected=%q, got=%q", i, expected, tok.Type)
		}
	}
}
