package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // add, foobar, x, y, ...
	INT    // 1343456
	FLOAT  // 3.14159
	STRING // "foobar"

	// Markup delimiters
	TAG_OPEN       // < (starts an opening tag)
	TAG_CLOSE      // > (ends an opening or closing tag)
	TAG_END_OPEN   // </ (starts a closing tag)
	TAG_SELF_CLOSE // />
	FRAG_OPEN      // <>
	FRAG_CLOSE     // </>

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	AND      // and
	OR       // or
	PLUSPLUS // ++

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	DOT       // .
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	FUNCTION // "fn"
	LET      // "let"
	FOR      // "for"
	IN       // "in"
	TRUE     // "true"
	FALSE    // "false"
	NULL     // "null"
	IF       // "if"
	ELSE     // "else"
	RETURN   // "return"
)

// Mode is the lexer's syntactic mode. The same character can tokenize
// differently depending on the active mode: '<' is the less-than operator in
// CODE mode but opens a tag at an expression-start position, '{' opens a
// dictionary in CODE mode but an expression hole in TEXT mode, and so on.
type Mode int

const (
	CODE Mode = iota // ordinary expression code
	TAG              // inside <...> tag punctuation, names, attributes
	TEXT             // element content between > and </
)

// String returns a string representation of the mode
func (m Mode) String() string {
	switch m {
	case CODE:
		return "CODE"
	case TAG:
		return "TAG"
	case TEXT:
		return "TEXT"
	}
	return "UNKNOWN"
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Mode    Mode // the mode that produced this token
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d, Mode: %s}",
		t.Type.String(), t.Literal, t.Line, t.Column, t.Mode.String())
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case TAG_OPEN:
		return "TAG_OPEN"
	case TAG_CLOSE:
		return "TAG_CLOSE"
	case TAG_END_OPEN:
		return "TAG_END_OPEN"
	case TAG_SELF_CLOSE:
		return "TAG_SELF_CLOSE"
	case FRAG_OPEN:
		return "FRAG_OPEN"
	case FRAG_CLOSE:
		return "FRAG_CLOSE"
	case ASSIGN:
		return "ASSIGN"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case BANG:
		return "BANG"
	case ASTERISK:
		return "ASTERISK"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LTE:
		return "LTE"
	case GTE:
		return "GTE"
	case EQ:
		return "EQ"
	case NOT_EQ:
		return "NOT_EQ"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case PLUSPLUS:
		return "PLUSPLUS"
	case COMMA:
		return "COMMA"
	case SEMICOLON:
		return "SEMICOLON"
	case COLON:
		return "COLON"
	case DOT:
		return "DOT"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case FUNCTION:
		return "FUNCTION"
	case LET:
		return "LET"
	case FOR:
		return "FOR"
	case IN:
		return "IN"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NULL:
		return "NULL"
	case IF:
		return "IF"
	case ELSE:
		return "ELSE"
	case RETURN:
		return "RETURN"
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"fn":     FUNCTION,
	"let":    LET,
	"for":    FOR,
	"in":     IN,
	"true":   TRUE,
	"false":  FALSE,
	"null":   NULL,
	"if":     IF,
	"else":   ELSE,
	"return": RETURN,
	"and":    AND,
	"or":     OR,
	"not":    BANG,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// modeFrame is one entry on the lexer's mode stack. A CODE frame tracks its
// own brace depth so that '}' inside an expression hole (dictionaries, blocks,
// function bodies) does not end the hole early; only the depth-matched '}'
// pops the frame. A TAG frame remembers whether it is lexing a closing tag.
type modeFrame struct {
	mode        Mode
	braceDepth  int
	closing     bool // TAG frame opened by '</'
	namePending bool // TAG frame has not yet seen its tag name
}

// Lexer represents the lexical analyzer. All mode state is instance-local:
// nested sub-parses and concurrent compilations each get their own Lexer with
// an independent mode stack and open-tag stack.
type Lexer struct {
	filename      string
	input         string
	position      int       // current position in input (points to current char)
	readPosition  int       // current reading position in input (after current char)
	ch            byte      // current char under examination (first byte)
	chRune        rune      // current character as a rune (for Unicode support)
	chSize        int       // byte size of current character (1 for ASCII, 1-4 for UTF-8)
	line          int       // current line number
	column        int       // current column number
	lastTokenType TokenType // last token type, for '<' expression-start detection
	modes         []modeFrame
	openTags      []string // names of unclosed tags, innermost last
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		filename: "<input>",
		input:    input,
		line:     1,
		column:   0,
		modes:    []modeFrame{{mode: CODE}},
	}
	l.readChar()
	return l
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := New(input)
	l.filename = filename
	return l
}

// Filename returns the name of the source being lexed.
func (l *Lexer) Filename() string { return l.filename }

// Mode returns the currently active lexing mode.
func (l *Lexer) Mode() Mode { return l.top().mode }

// OpenTags returns the names of the currently unclosed tags, innermost last.
// Fragments appear as empty strings. The authoritative open/close matching is
// structural, in the parser; this stack exists so the lexer can keep closing
// tags paired up and so diagnostics can name the innermost unclosed tag.
func (l *Lexer) OpenTags() []string {
	tags := make([]string, len(l.openTags))
	copy(tags, l.openTags)
	return tags
}

func (l *Lexer) top() *modeFrame {
	return &l.modes[len(l.modes)-1]
}

func (l *Lexer) pushMode(f modeFrame) {
	l.modes = append(l.modes, f)
}

func (l *Lexer) popMode() {
	if len(l.modes) > 1 {
		l.modes = l.modes[:len(l.modes)-1]
	}
}

// readChar reads the next character and advances position.
// Uses a hybrid approach: ASCII fast-path for single-byte characters,
// UTF-8 decoding for multi-byte characters (to support Unicode identifiers).
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL character represents EOF
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]

	// ASCII fast-path: single-byte characters (most common case)
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
		l.position = l.readPosition
		l.readPosition++

		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
		return
	}

	// Non-ASCII: decode the full UTF-8 rune
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = b
	l.chRune = r
	l.chSize = size
	l.position = l.readPosition
	l.readPosition += size

	l.column++
}

// appendCurrentChar appends the current character (all bytes for multi-byte
// UTF-8) to the given slice.
func (l *Lexer) appendCurrentChar(result []byte) []byte {
	if l.chSize == 1 {
		return append(result, l.ch)
	}
	return append(result, l.input[l.position:l.position+l.chSize]...)
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans and returns the next token. Dispatch is on the active mode;
// the mode transitions themselves happen here too, keyed on the tokens being
// emitted, so the token stream is deterministic for a given input regardless
// of how far ahead the parser has buffered.
func (l *Lexer) NextToken() Token {
	var tok Token
	switch l.top().mode {
	case TAG:
		tok = l.nextTagToken()
	case TEXT:
		tok = l.nextTextToken()
	default:
		tok = l.nextCodeToken()
	}
	l.lastTokenType = tok.Type
	return tok
}

// nextCodeToken tokenizes ordinary expression code.
func (l *Lexer) nextCodeToken() Token {
	var tok Token

	l.skipWhitespace()

	// Skip // comments
	for l.ch == '/' && l.peekChar() == '/' {
		l.skipLineComment()
		l.skipWhitespace()
	}

	tok.Mode = CODE

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: EQ, Literal: string(ch) + string(l.ch), Line: line, Column: col, Mode: CODE}
		} else {
			tok = l.newToken(ASSIGN)
		}
	case '+':
		if l.peekChar() == '+' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: PLUSPLUS, Literal: string(ch) + string(l.ch), Line: line, Column: col, Mode: CODE}
		} else {
			tok = l.newToken(PLUS)
		}
	case '-':
		tok = l.newToken(MINUS)
	case '!':
		if l.peekChar() == '=' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: NOT_EQ, Literal: string(ch) + string(l.ch), Line: line, Column: col, Mode: CODE}
		} else {
			tok = l.newToken(BANG)
		}
	case '*':
		tok = l.newToken(ASTERISK)
	case '/':
		tok = l.newToken(SLASH)
	case '%':
		tok = l.newToken(PERCENT)
	case '<':
		return l.lexLessThanOrMarkup()
	case '>':
		if l.peekChar() == '=' {
			ch := l.ch
			line := l.line
			col := l.column
			l.readChar()
			tok = Token{Type: GTE, Literal: string(ch) + string(l.ch), Line: line, Column: col, Mode: CODE}
		} else {
			tok = l.newToken(GT)
		}
	case '{':
		l.top().braceDepth++
		tok = l.newToken(LBRACE)
	case '}':
		if l.top().braceDepth > 0 {
			l.top().braceDepth--
		} else {
			// Depth-matched end of an expression hole: return to the
			// markup mode that opened it.
			l.popMode()
		}
		tok = l.newToken(RBRACE)
	case '(':
		tok = l.newToken(LPAREN)
	case ')':
		tok = l.newToken(RPAREN)
	case '[':
		tok = l.newToken(LBRACKET)
	case ']':
		tok = l.newToken(RBRACKET)
	case ',':
		tok = l.newToken(COMMA)
	case ';':
		tok = l.newToken(SEMICOLON)
	case ':':
		tok = l.newToken(COLON)
	case '.':
		tok = l.newToken(DOT)
	case '"':
		return l.lexString(CODE)
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: l.line, Column: l.column, Mode: CODE}
	default:
		if isLetter(l.ch) || isLetterRune(l.chRune) {
			line := l.line
			column := l.column
			literal := l.readIdentifier()
			return Token{Type: LookupIdent(literal), Literal: literal, Line: line, Column: column, Mode: CODE}
		}
		if isDigit(l.ch) {
			return l.lexNumber()
		}
		tok = l.newToken(ILLEGAL)
	}

	l.readChar()
	return tok
}

// lexLessThanOrMarkup resolves '<' in CODE mode. At an expression-start
// position a '<' immediately followed by a name character opens a tag and a
// '<' immediately followed by '>' opens a fragment; anywhere else it is the
// less-than operator. Expression-start is detected from the previous token
// type: after an operand (identifier, literal, closing bracket) '<' can only
// be an operator.
func (l *Lexer) lexLessThanOrMarkup() Token {
	line := l.line
	col := l.column

	if l.atExpressionStart() {
		next := l.peekChar()
		if next == '>' {
			l.readChar() // consume '<'
			l.readChar() // consume '>'
			l.pushMode(modeFrame{mode: TEXT})
			l.openTags = append(l.openTags, "")
			return Token{Type: FRAG_OPEN, Literal: "<>", Line: line, Column: col, Mode: CODE}
		}
		if isLetter(next) {
			l.readChar() // consume '<'
			l.pushMode(modeFrame{mode: TAG, namePending: true})
			return Token{Type: TAG_OPEN, Literal: "<", Line: line, Column: col, Mode: CODE}
		}
	}

	if l.peekChar() == '=' {
		l.readChar()
		l.readChar()
		return Token{Type: LTE, Literal: "<=", Line: line, Column: col, Mode: CODE}
	}

	l.readChar()
	return Token{Type: LT, Literal: "<", Line: line, Column: col, Mode: CODE}
}

// atExpressionStart reports whether the next token occupies a position where
// an expression can begin, i.e. the previous token cannot end an operand.
func (l *Lexer) atExpressionStart() bool {
	switch l.lastTokenType {
	case IDENT, INT, FLOAT, STRING, RPAREN, RBRACKET, RBRACE, TRUE, FALSE, NULL:
		return false
	}
	return true
}

// nextTagToken tokenizes inside tag punctuation: names, attributes, and the
// delimiters that end the tag.
func (l *Lexer) nextTagToken() Token {
	l.skipWhitespace()

	frame := l.top()

	switch {
	case l.ch == 0:
		return Token{Type: EOF, Literal: "", Line: l.line, Column: l.column, Mode: TAG}

	case isLetter(l.ch) || isLetterRune(l.chRune):
		line := l.line
		column := l.column
		name := l.readTagName()
		if frame.namePending {
			frame.namePending = false
			if frame.closing {
				// Pair the closing name with the innermost open tag. The
				// spelling check against the element is structural, in the
				// parser.
				if n := len(l.openTags); n > 0 {
					l.openTags = l.openTags[:n-1]
				}
			} else {
				l.openTags = append(l.openTags, name)
			}
		}
		return Token{Type: IDENT, Literal: name, Line: line, Column: column, Mode: TAG}

	case l.ch == '=':
		tok := l.newTokenMode(ASSIGN, TAG)
		l.readChar()
		return tok

	case l.ch == '"':
		return l.lexString(TAG)

	case l.ch == '{':
		// Attribute value hole: expression code until the matched '}'.
		tok := l.newTokenMode(LBRACE, TAG)
		l.readChar()
		l.pushMode(modeFrame{mode: CODE})
		return tok

	case l.ch == '>':
		tok := l.newTokenMode(TAG_CLOSE, TAG)
		l.readChar()
		closing := frame.closing
		l.popMode()
		if !closing {
			// End of an opening tag: element content follows.
			l.pushMode(modeFrame{mode: TEXT})
		}
		return tok

	case l.ch == '/' && l.peekChar() == '>':
		line := l.line
		col := l.column
		l.readChar()
		l.readChar()
		l.popMode()
		if n := len(l.openTags); n > 0 {
			l.openTags = l.openTags[:n-1]
		}
		return Token{Type: TAG_SELF_CLOSE, Literal: "/>", Line: line, Column: col, Mode: TAG}
	}

	tok := l.newTokenMode(ILLEGAL, TAG)
	l.readChar()
	return tok
}

// nextTextToken tokenizes element content: quoted strings, expression holes,
// nested tags, and closing tags. Bare text is not content; anything else is
// ILLEGAL (text must be a complete string literal).
func (l *Lexer) nextTextToken() Token {
	l.skipWhitespace()

	switch {
	case l.ch == 0:
		return Token{Type: EOF, Literal: "", Line: l.line, Column: l.column, Mode: TEXT}

	case l.ch == '"':
		return l.lexString(TEXT)

	case l.ch == '{':
		// Expression hole: code until the matched '}' returns here.
		tok := l.newTokenMode(LBRACE, TEXT)
		l.readChar()
		l.pushMode(modeFrame{mode: CODE})
		return tok

	case l.ch == '<':
		line := l.line
		col := l.column
		switch {
		case l.peekChar() == '/':
			l.readChar() // consume '<'
			l.readChar() // consume '/'
			if l.ch == '>' {
				l.readChar()
				l.popMode()
				if n := len(l.openTags); n > 0 {
					l.openTags = l.openTags[:n-1]
				}
				return Token{Type: FRAG_CLOSE, Literal: "</>", Line: line, Column: col, Mode: TEXT}
			}
			l.popMode()
			l.pushMode(modeFrame{mode: TAG, closing: true, namePending: true})
			return Token{Type: TAG_END_OPEN, Literal: "</", Line: line, Column: col, Mode: TEXT}

		case l.peekChar() == '>':
			l.readChar()
			l.readChar()
			l.pushMode(modeFrame{mode: TEXT})
			l.openTags = append(l.openTags, "")
			return Token{Type: FRAG_OPEN, Literal: "<>", Line: line, Column: col, Mode: TEXT}

		case isLetter(l.peekChar()):
			l.readChar()
			l.pushMode(modeFrame{mode: TAG, namePending: true})
			return Token{Type: TAG_OPEN, Literal: "<", Line: line, Column: col, Mode: TEXT}
		}

		tok := l.newTokenMode(ILLEGAL, TEXT)
		l.readChar()
		return tok
	}

	// Bare text: reject, but consume the run so the error is reported once
	// with the offending content.
	line := l.line
	column := l.column
	start := l.position
	for l.ch != 0 && l.ch != '<' && l.ch != '{' && l.ch != '"' && l.ch != '\n' {
		l.readChar()
	}
	return Token{Type: ILLEGAL, Literal: l.input[start:l.position], Line: line, Column: column, Mode: TEXT}
}

// lexString reads a double-quoted string literal, common to all three modes.
func (l *Lexer) lexString(mode Mode) Token {
	line := l.line
	column := l.column
	content, terminated := l.readString()
	if !terminated {
		return Token{Type: ILLEGAL, Literal: "unterminated string", Line: line, Column: column, Mode: mode}
	}
	l.readChar() // move past closing quote
	return Token{Type: STRING, Literal: content, Line: line, Column: column, Mode: mode}
}

func (l *Lexer) lexNumber() Token {
	line := l.line
	column := l.column
	literal := l.readNumber()
	tokType := INT
	for i := 0; i < len(literal); i++ {
		if literal[i] == '.' {
			tokType = FLOAT
			break
		}
	}
	return Token{Type: tokType, Literal: literal, Line: line, Column: column, Mode: CODE}
}

func (l *Lexer) newToken(tokenType TokenType) Token {
	return Token{Type: tokenType, Literal: string(l.ch), Line: l.line, Column: l.column, Mode: CODE}
}

func (l *Lexer) newTokenMode(tokenType TokenType, mode Mode) Token {
	return Token{Type: tokenType, Literal: string(l.ch), Line: l.line, Column: l.column, Mode: mode}
}

// readIdentifier reads an identifier in CODE mode.
func (l *Lexer) readIdentifier() string {
	var result []byte
	for isLetter(l.ch) || isDigit(l.ch) || isLetterRune(l.chRune) {
		result = l.appendCurrentChar(result)
		l.readChar()
	}
	return string(result)
}

// readTagName reads a tag or attribute name in TAG mode. Tag names allow '.'
// for dotted component paths (<app.Card/>) and '-' for custom-element style
// intrinsics (<my-widget/>).
func (l *Lexer) readTagName() string {
	var result []byte
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '.' || l.ch == '-' || isLetterRune(l.chRune) {
		result = l.appendCurrentChar(result)
		l.readChar()
	}
	return string(result)
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	// Check for decimal point
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume the '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position]
}

func (l *Lexer) readString() (string, bool) {
	var result []byte
	l.readChar() // skip opening quote

	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar() // consume backslash
			switch l.ch {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '\\':
				result = append(result, '\\')
			case '"':
				result = append(result, '"')
			default:
				// Unknown escape, keep as-is
				result = append(result, '\\')
				result = append(result, l.ch)
			}
		} else {
			result = l.appendCurrentChar(result)
		}
		l.readChar()
	}

	terminated := l.ch == '"'
	return string(result), terminated
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	// ASCII fast-path: handles a-z, A-Z, _
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isLetterRune(r rune) bool {
	return r >= utf8.RuneSelf && unicode.IsLetter(r)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
