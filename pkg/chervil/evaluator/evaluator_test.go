package evaluator

import (
	"testing"

	"github.com/sambeau/chervil/pkg/chervil/lexer"
	"github.com/sambeau/chervil/pkg/chervil/lower"
	"github.com/sambeau/chervil/pkg/chervil/parser"
)

func testEval(t *testing.T, input string) Object {
	t.Helper()

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse error in %q: %v", input, errs)
	}

	env := NewEnvironment()
	return Eval(lower.Lower(program), env)
}

func testIntegerObject(t *testing.T, obj Object, expected int64) {
	t.Helper()

	result, ok := obj.(*Integer)
	if !ok {
		t.Fatalf("object is %T (%+v), want *Integer", obj, obj)
	}
	if result.Value != expected {
		t.Errorf("value: want %d, got %d", expected, result.Value)
	}
}

func testStringObject(t *testing.T, obj Object, expected string) {
	t.Helper()

	result, ok := obj.(*String)
	if !ok {
		t.Fatalf("object is %T (%+v), want *String", obj, obj)
	}
	if result.Value != expected {
		t.Errorf("value: want %q, got %q", expected, result.Value)
	}
}

func testBooleanObject(t *testing.T, obj Object, expected bool) {
	t.Helper()

	result, ok := obj.(*Boolean)
	if !ok {
		t.Fatalf("object is %T (%+v), want *Boolean", obj, obj)
	}
	if result.Value != expected {
		t.Errorf("value: want %t, got %t", expected, result.Value)
	}
}

func testErrorCode(t *testing.T, obj Object, code string) {
	t.Helper()

	err, ok := obj.(*Error)
	if !ok {
		t.Fatalf("object is %T (%+v), want *Error", obj, obj)
	}
	if err.Code != code {
		t.Errorf("error code: want %s, got %s (%s)", code, err.Code, err.Message)
	}
}

func TestEvalIntegerExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"-5", -5},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"50 / 2 * 2 + 10", 60},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"10 % 3", 1},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestEvalFloatExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"2.5", 2.5},
		{"1.5 + 2.5", 4.0},
		{"10 / 4.0", 2.5},
		{"-0.5 * 2", -1.0},
	}

	for _, tt := range tests {
		result, ok := testEval(t, tt.input).(*Float)
		if !ok {
			t.Fatalf("input %q: object is not *Float", tt.input)
		}
		if result.Value != tt.expected {
			t.Errorf("input %q: want %g, got %g", tt.input, tt.expected, result.Value)
		}
	}
}

func TestEvalBooleanExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{`"a" == "a"`, true},
		{`"a" != "b"`, true},
		{"true and false", false},
		{"true or false", true},
		{"not true", false},
		{"!false", true},
		{"1 <= 1", true},
		{"2 >= 3", false},
	}

	for _, tt := range tests {
		testBooleanObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestStringConcatenation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"Hello" ++ ", " ++ "World!"`, "Hello, World!"},
		{`"n = " ++ 42`, "n = 42"},
	}

	for _, tt := range tests {
		testStringObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5; a;", 5},
		{"let a = 5 * 5; a;", 25},
		{"let a = 5; let b = a; b;", 5},
		{"let a = 5; let b = a; let c = a + b + 5; c;", 15},
		{"let a = 1; a = a + 1; a;", 2},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestIfElseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"if true { 10 }", int64(10)},
		{"if false { 10 }", nil},
		{"if 1 < 2 { 10 } else { 20 }", int64(10)},
		{"if 1 > 2 { 10 } else { 20 }", int64(20)},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		if expected, ok := tt.expected.(int64); ok {
			testIntegerObject(t, evaluated, expected)
		} else if _, ok := evaluated.(*Null); !ok {
			t.Errorf("input %q: want null, got %T (%+v)", tt.input, evaluated, evaluated)
		}
	}
}

func TestFunctionApplication(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let identity = fn(x) { x }; identity(5);", 5},
		{"let double = fn(x) { x * 2 }; double(5);", 10},
		{"let add = fn(x, y) { x + y }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y }; add(5 + 5, add(5, 5));", 20},
		{"fn(x) { x }(5)", 5},
		{"let f = fn(x) { return x * 2; 99 }; f(3);", 6},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestClosures(t *testing.T) {
	input := `
	let newAdder = fn(x) { fn(y) { x + y } };
	let addTwo = newAdder(2);
	addTwo(3);`

	testIntegerObject(t, testEval(t, input), 5)
}

func TestArrayLiterals(t *testing.T) {
	result, ok := testEval(t, "[1, 2 * 2, 3 + 3]").(*Array)
	if !ok {
		t.Fatalf("object is not *Array")
	}
	if len(result.Elements) != 3 {
		t.Fatalf("elements: want 3, got %d", len(result.Elements))
	}
	testIntegerObject(t, result.Elements[0], 1)
	testIntegerObject(t, result.Elements[1], 4)
	testIntegerObject(t, result.Elements[2], 6)
}

func TestArrayIndexExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"[1, 2, 3][0]", 1},
		{"[1, 2, 3][2]", 3},
		{"[1, 2, 3][-1]", 3},
		{"let a = [1, 2, 3]; a[1] + a[2];", 5},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	testErrorCode(t, testEval(t, "[1, 2, 3][3]"), "INDEX-0001")
}

func TestDictionaryLiterals(t *testing.T) {
	input := `{name: "Robin", "full name": "Robin Hood", age: 30}`

	result, ok := testEval(t, input).(*Dictionary)
	if !ok {
		t.Fatalf("object is not *Dictionary")
	}
	if len(result.Keys) != 3 {
		t.Fatalf("keys: want 3, got %d", len(result.Keys))
	}

	// Insertion order survives
	wantKeys := []string{"name", "full name", "age"}
	for i, key := range wantKeys {
		if result.Keys[i] != key {
			t.Errorf("key[%d]: want %q, got %q", i, key, result.Keys[i])
		}
	}

	testStringObject(t, result.Pairs["name"], "Robin")
	testIntegerObject(t, result.Pairs["age"], 30)
}

func TestDictionaryAccess(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`let d = {a: 1}; d.a`, int64(1)},
		{`let d = {a: 1}; d["a"]`, int64(1)},
		{`let d = {a: 1}; d.missing`, nil},
		{`let d = {user: {name: "Ada"}}; d.user.name`, "Ada"},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		switch expected := tt.expected.(type) {
		case int64:
			testIntegerObject(t, evaluated, expected)
		case string:
			testStringObject(t, evaluated, expected)
		default:
			if _, ok := evaluated.(*Null); !ok {
				t.Errorf("input %q: want null, got %T", tt.input, evaluated)
			}
		}
	}
}

func TestForExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected []int64
	}{
		{"for x in [1, 2, 3] { x * 10 }", []int64{10, 20, 30}},
		{"for i in range(3) { i }", []int64{0, 1, 2}},
		{"for([1, 2]) fn(x) { x + 1 }", []int64{2, 3}},
	}

	for _, tt := range tests {
		result, ok := testEval(t, tt.input).(*Array)
		if !ok {
			t.Fatalf("input %q: object is %T, want *Array", tt.input, testEval(t, tt.input))
		}
		if len(result.Elements) != len(tt.expected) {
			t.Fatalf("input %q: elements want %d, got %d",
				tt.input, len(tt.expected), len(result.Elements))
		}
		for i, want := range tt.expected {
			testIntegerObject(t, result.Elements[i], want)
		}
	}
}

func TestForSkipsNullResults(t *testing.T) {
	input := `for x in [1, 2, 3, 4] { if x % 2 == 0 { x } }`

	result, ok := testEval(t, input).(*Array)
	if !ok {
		t.Fatalf("object is not *Array")
	}
	if len(result.Elements) != 2 {
		t.Fatalf("elements: want 2, got %d", len(result.Elements))
	}
	testIntegerObject(t, result.Elements[0], 2)
	testIntegerObject(t, result.Elements[1], 4)
}

func TestForOverString(t *testing.T) {
	result, ok := testEval(t, `for c in "abc" { c }`).(*Array)
	if !ok {
		t.Fatalf("object is not *Array")
	}
	if len(result.Elements) != 3 {
		t.Fatalf("elements: want 3, got %d", len(result.Elements))
	}
	testStringObject(t, result.Elements[0], "a")
	testStringObject(t, result.Elements[2], "c")
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		input    string
		wantCode string
	}{
		{"5 + true", "OP-0001"},
		{"-true", "OP-0001"},
		{"foobar", "UNDEF-0001"},
		{"len(1)", "TYPE-0002"},
		{"len()", "ARITY-0001"},
		{`for x in 5 { x }`, "TYPE-0004"},
		{"5(1)", "TYPE-0003"},
	}

	for _, tt := range tests {
		testErrorCode(t, testEval(t, tt.input), tt.wantCode)
	}
}

func TestUndefinedIdentifierSuggestsNames(t *testing.T) {
	evaluated := testEval(t, "let counter = 1; countr")

	err, ok := evaluated.(*Error)
	if !ok {
		t.Fatalf("object is %T, want *Error", evaluated)
	}
	if len(err.Hints) == 0 {
		t.Fatalf("expected a hint, got none")
	}
}

func TestBuiltinFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`len("")`, int64(0)},
		{`len("four")`, int64(4)},
		{`len([1, 2, 3])`, int64(3)},
		{`first([1, 2, 3])`, int64(1)},
		{`last([1, 2, 3])`, int64(3)},
		{`len(rest([1, 2, 3]))`, int64(2)},
		{`len(push([1], 2))`, int64(2)},
		{`join(["a", "b"], "-")`, "a-b"},
		{`join(["a", "b"])`, "ab"},
		{`upper("abc")`, "ABC"},
		{`lower("ABC")`, "abc"},
		{`trim("  x  ")`, "x"},
		{`string(42)`, "42"},
		{`type([])`, "ARRAY"},
		{`len(range(5))`, int64(5)},
		{`first(range(2, 5))`, int64(2)},
		{`len(split("a,b,c", ","))`, int64(3)},
		{`len(keys({a: 1, b: 2}))`, int64(2)},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		switch expected := tt.expected.(type) {
		case int64:
			testIntegerObject(t, evaluated, expected)
		case string:
			testStringObject(t, evaluated, expected)
		}
	}
}

func TestPushDoesNotMutate(t *testing.T) {
	input := `let a = [1]; let b = push(a, 2); len(a)`
	testIntegerObject(t, testEval(t, input), 1)
}
