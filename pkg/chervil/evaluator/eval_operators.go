package evaluator

import (
	"strings"

	"github.com/sambeau/chervil/pkg/chervil/lexer"
)

func evalPrefixExpression(operator string, right Object, tok lexer.Token) Object {
	switch operator {
	case "!", "not":
		return evalBangOperatorExpression(right)
	case "-":
		return evalMinusPrefixOperatorExpression(right, tok)
	default:
		return newStructuredErrorWithPos("OP-0001", tok,
			map[string]any{"LeftType": "", "Operator": operator, "RightType": right.Type()})
	}
}

func evalBangOperatorExpression(right Object) Object {
	return nativeBoolToBooleanObject(!isTruthy(right))
}

func evalMinusPrefixOperatorExpression(right Object, tok lexer.Token) Object {
	switch right := right.(type) {
	case *Integer:
		return &Integer{Value: -right.Value}
	case *Float:
		return &Float{Value: -right.Value}
	default:
		return newStructuredErrorWithPos("OP-0001", tok,
			map[string]any{"LeftType": "", "Operator": "-", "RightType": right.Type()})
	}
}

func evalInfixExpression(operator string, left, right Object, tok lexer.Token) Object {
	switch {
	case operator == "and":
		return nativeBoolToBooleanObject(isTruthy(left) && isTruthy(right))
	case operator == "or":
		return nativeBoolToBooleanObject(isTruthy(left) || isTruthy(right))
	case operator == "==":
		return evalEqualityExpression(left, right, false)
	case operator == "!=":
		return evalEqualityExpression(left, right, true)
	case left.Type() == INTEGER_OBJ && right.Type() == INTEGER_OBJ:
		return evalIntegerInfixExpression(operator, left.(*Integer), right.(*Integer), tok)
	case isNumber(left) && isNumber(right):
		return evalFloatInfixExpression(operator, toFloat(left), toFloat(right), tok)
	case left.Type() == STRING_OBJ && right.Type() == STRING_OBJ:
		return evalStringInfixExpression(operator, left.(*String), right.(*String), tok)
	case operator == "++":
		return evalConcatExpression(left, right, tok)
	default:
		return newStructuredErrorWithPos("OP-0001", tok,
			map[string]any{"LeftType": left.Type(), "Operator": operator, "RightType": right.Type()})
	}
}

func evalIntegerInfixExpression(operator string, left, right *Integer, tok lexer.Token) Object {
	switch operator {
	case "+":
		return &Integer{Value: left.Value + right.Value}
	case "-":
		return &Integer{Value: left.Value - right.Value}
	case "*":
		return &Integer{Value: left.Value * right.Value}
	case "/":
		if right.Value == 0 {
			return newStructuredErrorWithPos("OP-0002", tok, nil)
		}
		return &Integer{Value: left.Value / right.Value}
	case "%":
		if right.Value == 0 {
			return newStructuredErrorWithPos("OP-0002", tok, nil)
		}
		return &Integer{Value: left.Value % right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return newStructuredErrorWithPos("OP-0001", tok,
			map[string]any{"LeftType": INTEGER_OBJ, "Operator": operator, "RightType": INTEGER_OBJ})
	}
}

func evalFloatInfixExpression(operator string, left, right float64, tok lexer.Token) Object {
	switch operator {
	case "+":
		return &Float{Value: left + right}
	case "-":
		return &Float{Value: left - right}
	case "*":
		return &Float{Value: left * right}
	case "/":
		if right == 0 {
			return newStructuredErrorWithPos("OP-0002", tok, nil)
		}
		return &Float{Value: left / right}
	case "<":
		return nativeBoolToBooleanObject(left < right)
	case ">":
		return nativeBoolToBooleanObject(left > right)
	case "<=":
		return nativeBoolToBooleanObject(left <= right)
	case ">=":
		return nativeBoolToBooleanObject(left >= right)
	default:
		return newStructuredErrorWithPos("OP-0001", tok,
			map[string]any{"LeftType": FLOAT_OBJ, "Operator": operator, "RightType": FLOAT_OBJ})
	}
}

func evalStringInfixExpression(operator string, left, right *String, tok lexer.Token) Object {
	switch operator {
	case "+", "++":
		return &String{Value: left.Value + right.Value}
	case "<":
		return nativeBoolToBooleanObject(left.Value < right.Value)
	case ">":
		return nativeBoolToBooleanObject(left.Value > right.Value)
	case "<=":
		return nativeBoolToBooleanObject(left.Value <= right.Value)
	case ">=":
		return nativeBoolToBooleanObject(left.Value >= right.Value)
	default:
		return newStructuredErrorWithPos("OP-0001", tok,
			map[string]any{"LeftType": STRING_OBJ, "Operator": operator, "RightType": STRING_OBJ})
	}
}

// evalConcatExpression handles ++ across arrays and mixed string operands.
func evalConcatExpression(left, right Object, tok lexer.Token) Object {
	if l, ok := left.(*Array); ok {
		if r, ok := right.(*Array); ok {
			elements := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elements = append(elements, l.Elements...)
			elements = append(elements, r.Elements...)
			return &Array{Elements: elements}
		}
	}
	if left.Type() == STRING_OBJ || right.Type() == STRING_OBJ {
		return &String{Value: left.Inspect() + right.Inspect()}
	}
	return newStructuredErrorWithPos("OP-0001", tok,
		map[string]any{"LeftType": left.Type(), "Operator": "++", "RightType": right.Type()})
}

func evalEqualityExpression(left, right Object, negate bool) Object {
	equal := objectsEqual(left, right)
	if negate {
		return nativeBoolToBooleanObject(!equal)
	}
	return nativeBoolToBooleanObject(equal)
}

// objectsEqual compares by value. Numbers compare across Integer and Float;
// arrays and dictionaries compare element-wise.
func objectsEqual(left, right Object) bool {
	if isNumber(left) && isNumber(right) {
		return toFloat(left) == toFloat(right)
	}

	switch l := left.(type) {
	case *Boolean:
		r, ok := right.(*Boolean)
		return ok && l.Value == r.Value
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	case *Null:
		_, ok := right.(*Null)
		return ok
	case *Array:
		r, ok := right.(*Array)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !objectsEqual(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Dictionary:
		r, ok := right.(*Dictionary)
		if !ok || len(l.Pairs) != len(r.Pairs) {
			return false
		}
		for key, lv := range l.Pairs {
			rv, ok := r.Pairs[key]
			if !ok || !objectsEqual(lv, rv) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}

func isNumber(obj Object) bool {
	t := obj.Type()
	return t == INTEGER_OBJ || t == FLOAT_OBJ
}

func toFloat(obj Object) float64 {
	switch obj := obj.(type) {
	case *Integer:
		return float64(obj.Value)
	case *Float:
		return obj.Value
	}
	return 0
}

// stringifyForDisplay renders a value the way text output wants it: strings
// bare, everything else via Inspect.
func stringifyForDisplay(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.Value
	}
	if arr, ok := obj.(*Array); ok {
		parts := make([]string, 0, len(arr.Elements))
		for _, el := range arr.Elements {
			parts = append(parts, stringifyForDisplay(el))
		}
		return strings.Join(parts, ", ")
	}
	return obj.Inspect()
}
