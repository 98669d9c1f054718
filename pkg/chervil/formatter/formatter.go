// Package formatter pretty-prints HTML output for the -pp flag. The input is
// whatever a script rendered, which may be a fragment rather than a full
// document, so formatting works on the token stream instead of a parsed tree.
package formatter

import (
	"strings"

	"golang.org/x/net/html"
)

const indentStep = "    "

// voidElements never take closing tags and never change the indent level.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// preserveElements keep their text content byte-for-byte.
var preserveElements = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true,
}

// FormatHTML reindents HTML text, one element per line. Input that does not
// tokenize as HTML comes back unchanged.
func FormatHTML(input string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(input))

	var out strings.Builder
	depth := 0
	preserve := 0

	writeLine := func(text string) {
		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(strings.Repeat(indentStep, depth))
		out.WriteString(text)
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF ends the stream; any other error means the input was
			// not HTML after all.
			if tokenizer.Err().Error() != "EOF" {
				return input
			}
			return out.String()

		case html.StartTagToken:
			token := tokenizer.Token()
			writeLine(token.String())
			if preserveElements[token.Data] {
				preserve++
			}
			if !voidElements[token.Data] {
				depth++
			}

		case html.EndTagToken:
			token := tokenizer.Token()
			if depth > 0 {
				depth--
			}
			writeLine(token.String())
			if preserveElements[token.Data] && preserve > 0 {
				preserve--
			}

		case html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			writeLine(tokenizer.Token().String())

		case html.TextToken:
			text := string(tokenizer.Text())
			if preserve > 0 {
				out.WriteString(text)
				continue
			}
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				continue
			}
			for _, line := range strings.Split(trimmed, "\n") {
				writeLine(strings.TrimSpace(line))
			}
		}
	}
}
