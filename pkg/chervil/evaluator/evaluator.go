package evaluator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sambeau/chervil/pkg/chervil/ast"
	cherrors "github.com/sambeau/chervil/pkg/chervil/errors"
	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	INTEGER_OBJ    = "INTEGER"
	FLOAT_OBJ      = "FLOAT"
	BOOLEAN_OBJ    = "BOOLEAN"
	STRING_OBJ     = "STRING"
	NULL_OBJ       = "NULL"
	RETURN_OBJ     = "RETURN_VALUE"
	ERROR_OBJ      = "ERROR"
	FUNCTION_OBJ   = "FUNCTION"
	BUILTIN_OBJ    = "BUILTIN"
	ARRAY_OBJ      = "ARRAY"
	DICTIONARY_OBJ = "DICTIONARY"
	ELEMENT_OBJ    = "ELEMENT"
)

// Object represents all values in our language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Float represents floating-point objects
type Float struct {
	Value float64
}

func (f *Float) Inspect() string  { return fmt.Sprintf("%g", f.Value) }
func (f *Float) Type() ObjectType { return FLOAT_OBJ }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents string objects
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// Null represents null/nil objects
type Null struct{}

func (n *Null) Inspect() string  { return "null" }
func (n *Null) Type() ObjectType { return NULL_OBJ }

// ReturnValue wraps other objects when returned
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass = cherrors.ErrorClass

// Error class constants
const (
	ClassParse     = cherrors.ClassParse
	ClassType      = cherrors.ClassType
	ClassArity     = cherrors.ClassArity
	ClassUndefined = cherrors.ClassUndefined
	ClassIndex     = cherrors.ClassIndex
	ClassFormat    = cherrors.ClassFormat
	ClassOperator  = cherrors.ClassOperator
)

// Error represents error objects with structured error information.
type Error struct {
	Message string
	Line    int
	Column  int
	Class   ErrorClass
	Code    string
	Hints   []string
	File    string
	Data    map[string]any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

// ToChervilError converts this Error to a ChervilError for structured error handling.
func (e *Error) ToChervilError() *cherrors.ChervilError {
	class := e.Class
	if class == "" {
		class = cherrors.ClassType
	}
	return &cherrors.ChervilError{
		Class:   class,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		File:    e.File,
		Data:    e.Data,
	}
}

// Function represents function objects
type Function struct {
	Params []*ast.Identifier
	Body   *ast.BlockStatement
	Env    *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := []string{}
	for _, p := range f.Params {
		params = append(params, p.String())
	}
	return fmt.Sprintf("fn(%s) {\n%s\n}", strings.Join(params, ", "), f.Body.String())
}

// BuiltinFunction represents a built-in function
type BuiltinFunction func(args ...Object) Object

// Builtin represents built-in function objects
type Builtin struct {
	Fn BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function" }

// Array represents array objects
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out strings.Builder
	elements := []string{}
	for _, e := range a.Elements {
		if e != nil {
			elements = append(elements, e.Inspect())
		} else {
			elements = append(elements, "nil")
		}
	}
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

// Dictionary represents dictionary objects. Values are evaluated eagerly and
// key order is preserved, so element properties render in source order.
type Dictionary struct {
	Pairs map[string]Object
	Keys  []string
}

func (d *Dictionary) Type() ObjectType { return DICTIONARY_OBJ }
func (d *Dictionary) Inspect() string {
	var out strings.Builder
	pairs := []string{}
	for _, key := range d.Keys {
		pairs = append(pairs, fmt.Sprintf("%s: %s", key, d.Pairs[key].Inspect()))
	}
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

// Set adds or replaces a key, keeping insertion order.
func (d *Dictionary) Set(key string, value Object) {
	if _, exists := d.Pairs[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Pairs[key] = value
}

// NewDictionary creates an empty ordered dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{Pairs: make(map[string]Object), Keys: []string{}}
}

// Element is the value every markup literal constructs: a tag, a property
// dictionary, and a children array. Tag is a String for intrinsic tags like
// "div", NULL for fragments, and a callable for components; the distinction
// is resolved at render time, not construction time.
type Element struct {
	Tag      Object
	Props    *Dictionary
	Children *Array
}

func (el *Element) Type() ObjectType { return ELEMENT_OBJ }
func (el *Element) Inspect() string {
	switch tag := el.Tag.(type) {
	case *String:
		return fmt.Sprintf("<%s>", tag.Value)
	case *Null:
		return "<>"
	default:
		return fmt.Sprintf("<%s>", tag.Inspect())
	}
}

// Logger interface for print()/log() output
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...interface{}) {
	l.Log(values...)
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Environment represents the environment for variable bindings
type Environment struct {
	store       map[string]Object
	outer       *Environment
	Filename    string
	LastToken   *lexer.Token
	letBindings map[string]bool
	Logger      Logger
}

// NewEnvironment creates a new environment
func NewEnvironment() *Environment {
	return &Environment{
		store:       make(map[string]Object),
		letBindings: make(map[string]bool),
		Logger:      DefaultLogger,
	}
}

// NewEnclosedEnvironment creates a new environment with outer reference
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	if outer != nil {
		env.Filename = outer.Filename
		env.LastToken = outer.LastToken
		env.Logger = outer.Logger
	}
	return env
}

// Get retrieves a value from the environment
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Set stores a value in the environment
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// SetLet stores a value in the environment and marks it as a let binding
func (e *Environment) SetLet(name string, val Object) Object {
	e.store[name] = val
	e.letBindings[name] = true
	return val
}

// Update stores a value in the scope where it's defined (current or outer).
// If the variable doesn't exist anywhere, it creates it in the current scope.
func (e *Environment) Update(name string, val Object) Object {
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		return val
	}
	if e.outer != nil {
		if _, ok := e.outer.Get(name); ok {
			return e.outer.Update(name, val)
		}
	}
	e.store[name] = val
	return val
}

// AllIdentifiers returns all identifiers available in this environment and
// its outer scopes, for fuzzy matching in error messages.
func (e *Environment) AllIdentifiers() []string {
	seen := make(map[string]bool)
	var result []string

	env := e
	for env != nil {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
		env = env.outer
	}

	for name := range getBuiltins() {
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	sort.Strings(result)
	return result
}

// Global constants
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// Eval evaluates an AST node in the given environment
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return evalProgram(node.Statements, env)

	case *ast.ExpressionStatement:
		return Eval(node.Expression, env)

	case *ast.BlockStatement:
		return evalBlockStatement(node, env)

	case *ast.LetStatement:
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		env.SetLet(node.Name.Value, val)
		// Declarations return NULL (excluded from block concatenation)
		return NULL

	case *ast.AssignmentStatement:
		val := Eval(node.Value, env)
		if isError(val) {
			return val
		}
		env.Update(node.Name.Value, val)
		return NULL

	case *ast.ReturnStatement:
		val := Eval(node.ReturnValue, env)
		if isError(val) {
			return val
		}
		return &ReturnValue{Value: val}

	// Expressions
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.FloatLiteral:
		return &Float{Value: node.Value}

	case *ast.StringLiteral:
		return &String{Value: node.Value}

	case *ast.Boolean:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NullLiteral:
		return NULL

	case *ast.GroupedExpression:
		return Eval(node.Inner, env)

	case *ast.PrefixExpression:
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalPrefixExpression(node.Operator, right, node.Token)

	case *ast.InfixExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return evalInfixExpression(node.Operator, left, right, node.Token)

	case *ast.IfExpression:
		return evalIfExpression(node, env)

	case *ast.ForExpression:
		return evalForExpression(node, env)

	case *ast.Identifier:
		return evalIdentifier(node, env)

	case *ast.FunctionLiteral:
		return &Function{Params: node.Params, Body: node.Body, Env: env}

	case *ast.CallExpression:
		fn := Eval(node.Function, env)
		if isError(fn) {
			return fn
		}
		args := evalExpressions(node.Arguments, env)
		if len(args) == 1 && isError(args[0]) {
			return args[0]
		}
		result := applyFunction(fn, args)
		if err, ok := result.(*Error); ok && err.Line == 0 {
			err.Line = node.Token.Line
			err.Column = node.Token.Column
		}
		return result

	case *ast.ArrayLiteral:
		elements := evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return &Array{Elements: elements}

	case *ast.DictionaryLiteral:
		return evalDictionaryLiteral(node, env)

	case *ast.IndexExpression:
		left := Eval(node.Left, env)
		if isError(left) {
			return left
		}
		index := Eval(node.Index, env)
		if isError(index) {
			return index
		}
		return evalIndexExpression(left, index, node.Token)

	case *ast.DotExpression:
		return evalDotExpression(node, env)
	}

	return newError("unknown node type: %T", node)
}

func evalProgram(stmts []ast.Statement, env *Environment) Object {
	var result Object = NULL

	for _, statement := range stmts {
		result = Eval(statement, env)

		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		}
	}

	return result
}

// evalBlockStatement collects the non-null results of a block. A block with
// one result yields it directly; a block with several yields an array, which
// is how a for body or an if arm produces multiple children.
func evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var results []Object

	for _, statement := range block.Statements {
		result := Eval(statement, env)

		if result != nil {
			rt := result.Type()
			if rt == RETURN_OBJ || rt == ERROR_OBJ {
				return result
			}
			if rt != NULL_OBJ {
				results = append(results, result)
			}
		}
	}

	switch len(results) {
	case 0:
		return NULL
	case 1:
		return results[0]
	default:
		return &Array{Elements: results}
	}
}

func evalExpressions(exps []ast.Expression, env *Environment) []Object {
	var result []Object

	for _, e := range exps {
		evaluated := Eval(e, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}

	return result
}

func evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}

	if builtin, ok := getBuiltins()[node.Value]; ok {
		return builtin
	}

	cerr := cherrors.NewUndefinedIdentifier(node.Value, env.AllIdentifiers())
	return &Error{
		Class:   cerr.Class,
		Code:    cerr.Code,
		Message: cerr.Message,
		Hints:   cerr.Hints,
		Line:    node.Token.Line,
		Column:  node.Token.Column,
		Data:    cerr.Data,
	}
}

func evalIfExpression(ie *ast.IfExpression, env *Environment) Object {
	condition := Eval(ie.Condition, env)
	if isError(condition) {
		return condition
	}

	if isTruthy(condition) {
		return Eval(ie.Consequence, NewEnclosedEnvironment(env))
	} else if ie.Alternative != nil {
		return Eval(ie.Alternative, NewEnclosedEnvironment(env))
	}
	return NULL
}

// evalForExpression maps a function over a sequence and collects the results.
// Both forms reduce to the same shape: the 'in' form's body was packaged as a
// function of the loop variable by the parser.
func evalForExpression(fe *ast.ForExpression, env *Environment) Object {
	seq := Eval(fe.Array, env)
	if isError(seq) {
		return seq
	}

	var fnExpr ast.Expression
	if fe.Body != nil {
		fnExpr = fe.Body
	} else {
		fnExpr = fe.Function
	}

	fn := Eval(fnExpr, env)
	if isError(fn) {
		return fn
	}

	var results []Object

	apply := func(item Object) Object {
		result := applyFunction(fn, []Object{item})
		if isError(result) {
			return result
		}
		if result.Type() != NULL_OBJ {
			results = append(results, result)
		}
		return nil
	}

	switch seq := seq.(type) {
	case *Array:
		for _, item := range seq.Elements {
			if err := apply(item); err != nil {
				return err
			}
		}
	case *String:
		for _, r := range seq.Value {
			if err := apply(&String{Value: string(r)}); err != nil {
				return err
			}
		}
	case *Dictionary:
		for _, key := range seq.Keys {
			if err := apply(&String{Value: key}); err != nil {
				return err
			}
		}
	default:
		return newStructuredErrorWithPos("TYPE-0004", fe.Token, map[string]any{"Got": seq.Type()})
	}

	return &Array{Elements: results}
}

func evalDictionaryLiteral(node *ast.DictionaryLiteral, env *Environment) Object {
	dict := NewDictionary()
	for _, key := range node.KeyOrder {
		value := Eval(node.Pairs[key], env)
		if isError(value) {
			return value
		}
		dict.Set(key, value)
	}
	return dict
}

func evalIndexExpression(left, index Object, tok lexer.Token) Object {
	switch {
	case left.Type() == ARRAY_OBJ && index.Type() == INTEGER_OBJ:
		return evalArrayIndexExpression(left.(*Array), index.(*Integer), tok)
	case left.Type() == STRING_OBJ && index.Type() == INTEGER_OBJ:
		return evalStringIndexExpression(left.(*String), index.(*Integer), tok)
	case left.Type() == DICTIONARY_OBJ && index.Type() == STRING_OBJ:
		return evalDictionaryIndexExpression(left.(*Dictionary), index.(*String))
	default:
		return newStructuredErrorWithPos("TYPE-0005", tok,
			map[string]any{"Left": left.Type(), "Right": index.Type()})
	}
}

func evalArrayIndexExpression(array *Array, index *Integer, tok lexer.Token) Object {
	idx := index.Value
	max := int64(len(array.Elements))

	// Negative indices count from the end
	if idx < 0 {
		idx = max + idx
	}
	if idx < 0 || idx >= max {
		return newStructuredErrorWithPos("INDEX-0001", tok,
			map[string]any{"Index": index.Value, "Length": max})
	}

	return array.Elements[idx]
}

func evalStringIndexExpression(str *String, index *Integer, tok lexer.Token) Object {
	runes := []rune(str.Value)
	idx := index.Value
	max := int64(len(runes))

	if idx < 0 {
		idx = max + idx
	}
	if idx < 0 || idx >= max {
		return newStructuredErrorWithPos("INDEX-0001", tok,
			map[string]any{"Index": index.Value, "Length": max})
	}

	return &String{Value: string(runes[idx])}
}

func evalDictionaryIndexExpression(dict *Dictionary, key *String) Object {
	if value, ok := dict.Pairs[key.Value]; ok {
		return value
	}
	// Missing keys yield null, so optional props are cheap to check
	return NULL
}

func evalDotExpression(node *ast.DotExpression, env *Environment) Object {
	left := Eval(node.Left, env)
	if isError(left) {
		return left
	}

	switch left := left.(type) {
	case *Dictionary:
		if value, ok := left.Pairs[node.Key]; ok {
			return value
		}
		return NULL
	case *Element:
		switch node.Key {
		case "tag":
			return left.Tag
		case "props":
			return left.Props
		case "children":
			return left.Children
		}
		return NULL
	default:
		return newStructuredErrorWithPos("TYPE-0005", node.Token,
			map[string]any{"Left": left.Type(), "Right": node.Key})
	}
}

func applyFunction(fn Object, args []Object) Object {
	switch fn := fn.(type) {
	case *Function:
		extendedEnv := extendFunctionEnv(fn, args)
		evaluated := Eval(fn.Body, extendedEnv)
		return unwrapReturnValue(evaluated)
	case *Builtin:
		return fn.Fn(args...)
	default:
		return newStructuredError("TYPE-0003", map[string]any{"Got": fn.Type()})
	}
}

func extendFunctionEnv(fn *Function, args []Object) *Environment {
	env := NewEnclosedEnvironment(fn.Env)

	for i, param := range fn.Params {
		if i < len(args) {
			env.Set(param.Value, args[i])
		} else {
			env.Set(param.Value, NULL)
		}
	}

	return env
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func isTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Null:
		return false
	case *Boolean:
		return obj.Value
	case *Integer:
		return obj.Value != 0
	case *Float:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	case *Array:
		return len(obj.Elements) > 0
	default:
		return true
	}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func newError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

// newStructuredError creates a structured error from the catalog.
func newStructuredError(code string, data map[string]any) *Error {
	cerr := cherrors.New(code, data)
	return &Error{
		Class:   cerr.Class,
		Code:    cerr.Code,
		Message: cerr.Message,
		Hints:   cerr.Hints,
		Data:    cerr.Data,
	}
}

// newStructuredErrorWithPos creates a structured error with position information.
func newStructuredErrorWithPos(code string, tok lexer.Token, data map[string]any) *Error {
	err := newStructuredError(code, data)
	err.Line = tok.Line
	err.Column = tok.Column
	return err
}
