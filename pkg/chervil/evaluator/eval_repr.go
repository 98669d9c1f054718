package evaluator

import (
	"strings"
)

// ObjectToPrintString renders an object the way script output wants it:
// strings bare, elements rendered to HTML, everything else via Inspect.
func ObjectToPrintString(obj Object) string {
	switch obj := obj.(type) {
	case *String:
		return obj.Value
	case *Element:
		rendered := renderElement(obj)
		if s, ok := rendered.(*String); ok {
			return s.Value
		}
		return rendered.Inspect()
	case *Array:
		parts := make([]string, 0, len(obj.Elements))
		for _, el := range obj.Elements {
			parts = append(parts, ObjectToPrintString(el))
		}
		return strings.Join(parts, "\n")
	case *Null:
		return ""
	default:
		return obj.Inspect()
	}
}

// ObjectToReprString renders an object as a source-level literal: strings
// quoted, collections in literal syntax, elements by their tag.
func ObjectToReprString(obj Object) string {
	switch obj := obj.(type) {
	case *String:
		return `"` + obj.Value + `"`
	case *Array:
		parts := make([]string, 0, len(obj.Elements))
		for _, el := range obj.Elements {
			parts = append(parts, ObjectToReprString(el))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Dictionary:
		parts := make([]string, 0, len(obj.Keys))
		for _, key := range obj.Keys {
			parts = append(parts, key+": "+ObjectToReprString(obj.Pairs[key]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return obj.Inspect()
	}
}

// UserVariables returns the variables bound in this environment, excluding
// anything inherited from outer scopes.
func (e *Environment) UserVariables() map[string]Object {
	vars := make(map[string]Object, len(e.store))
	for name, obj := range e.store {
		vars[name] = obj
	}
	return vars
}
