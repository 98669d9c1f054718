package evaluator

import (
	"strings"
	"testing"
)

func TestMarkdownBuiltin(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`markdown("hello")`, "<p>hello</p>"},
		{`markdown("# Title")`, "<h1>Title</h1>"},
		{`markdown("*em* and **strong**")`, "<p><em>em</em> and <strong>strong</strong></p>"},
	}

	for _, tt := range tests {
		testHTML(t, tt.input, tt.expected)
	}
}

func TestMarkdownTables(t *testing.T) {
	input := `markdown("| a | b |\n| - | - |\n| 1 | 2 |")`

	result, ok := testEval(t, input).(*String)
	if !ok {
		t.Fatalf("object is not *String")
	}
	if !strings.Contains(result.Value, "<table>") {
		t.Errorf("table markdown did not produce a <table>: %s", result.Value)
	}
}

func TestMarkdownErrors(t *testing.T) {
	testErrorCode(t, testEval(t, `markdown()`), "ARITY-0001")
	testErrorCode(t, testEval(t, `markdown(42)`), "TYPE-0002")
}
