package formatter

import (
	"strings"
	"testing"
)

func TestFormatHTML(t *testing.T) {
	input := `<div><p>hello</p><p>world</p></div>`
	expected := "<div>\n" +
		"    <p>\n" +
		"        hello\n" +
		"    </p>\n" +
		"    <p>\n" +
		"        world\n" +
		"    </p>\n" +
		"</div>"

	if got := FormatHTML(input); got != expected {
		t.Errorf("want:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatVoidElements(t *testing.T) {
	input := `<div><br><img src="a.png"></div>`
	expected := "<div>\n" +
		"    <br>\n" +
		"    <img src=\"a.png\">\n" +
		"</div>"

	if got := FormatHTML(input); got != expected {
		t.Errorf("want:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatFragment(t *testing.T) {
	// Output need not be a full document
	input := `<li>a</li><li>b</li>`
	expected := "<li>\n    a\n</li>\n<li>\n    b\n</li>"

	if got := FormatHTML(input); got != expected {
		t.Errorf("want:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatCollapsesWhitespace(t *testing.T) {
	input := "<p>\n\n   spaced    \n</p>"
	expected := "<p>\n    spaced\n</p>"

	if got := FormatHTML(input); got != expected {
		t.Errorf("want:\n%s\ngot:\n%s", expected, got)
	}
}

func TestFormatPreservesPreContent(t *testing.T) {
	input := "<pre>  two\n   three</pre>"

	got := FormatHTML(input)
	if !strings.Contains(got, "  two\n   three") {
		t.Errorf("pre content was reflowed:\n%s", got)
	}
}

func TestFormatPlainText(t *testing.T) {
	if got := FormatHTML("just text"); got != "just text" {
		t.Errorf("want %q, got %q", "just text", got)
	}
}

func TestFormatEmptyInput(t *testing.T) {
	if got := FormatHTML(""); got != "" {
		t.Errorf("want empty output, got %q", got)
	}
}
