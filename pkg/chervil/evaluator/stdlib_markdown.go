package evaluator

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownConverter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// markdownBuiltin converts markdown source to HTML.
// Usage: markdown("# Title") or markdown(<article>...</article>) where the
// element's rendered text is treated as markdown source.
func markdownBuiltin(args ...Object) Object {
	if len(args) != 1 {
		return newStructuredError("ARITY-0001",
			map[string]any{"Function": "markdown", "Got": len(args), "Want": 1})
	}

	var source string
	switch arg := args[0].(type) {
	case *String:
		source = arg.Value
	case *Element:
		rendered := renderElement(arg)
		if isError(rendered) {
			return rendered
		}
		source = rendered.(*String).Value
	default:
		return newStructuredError("TYPE-0002",
			map[string]any{"Function": "markdown", "Got": args[0].Type()})
	}

	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(source), &buf); err != nil {
		return newError("markdown conversion failed: %s", err)
	}

	return &String{Value: strings.TrimRight(buf.String(), "\n")}
}
