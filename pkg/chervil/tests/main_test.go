package tests

import (
	"testing"

	"github.com/sambeau/chervil/pkg/chervil/evaluator"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/lower"
	"github.com/sambeau/chervil/pkg/chervil/parser"
)

// run takes a script through the whole pipeline: lex, parse, lower, evaluate.
func run(t *testing.T, source string) evaluator.Object {
	t.Helper()

	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	env := evaluator.NewEnvironment()
	result := evaluator.Eval(lower.Lower(program), env)
	if result == nil {
		t.Fatalf("Eval returned nil")
	}
	return result
}

func expectString(t *testing.T, obj evaluator.Object) *evaluator.String {
	t.Helper()

	str, ok := obj.(*evaluator.String)
	if !ok {
		t.Fatalf("expected String, got %T (%+v)", obj, obj)
	}
	return str
}

func expectError(t *testing.T, obj evaluator.Object) *evaluator.Error {
	t.Helper()

	err, ok := obj.(*evaluator.Error)
	if !ok {
		t.Fatalf("expected error object, got %T (%+v)", obj, obj)
	}
	return err
}
