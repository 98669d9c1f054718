package evaluator

import (
	"strings"
)

func getBuiltins() map[string]*Builtin {
	return map[string]*Builtin{
		"element": {Fn: elementBuiltin},
		"html":    {Fn: htmlBuiltin},

		"markdown": {Fn: markdownBuiltin},

		"len": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "len", "Got": len(args), "Want": 1})
				}
				switch arg := args[0].(type) {
				case *String:
					return &Integer{Value: int64(len([]rune(arg.Value)))}
				case *Array:
					return &Integer{Value: int64(len(arg.Elements))}
				case *Dictionary:
					return &Integer{Value: int64(len(arg.Keys))}
				default:
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "len", "Got": args[0].Type()})
				}
			},
		},
		"range": {
			Fn: func(args ...Object) Object {
				if len(args) < 1 || len(args) > 2 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "range", "Got": len(args), "Want": "1 or 2"})
				}
				var start, stop int64
				switch len(args) {
				case 1:
					n, ok := args[0].(*Integer)
					if !ok {
						return newStructuredError("TYPE-0002",
							map[string]any{"Function": "range", "Got": args[0].Type()})
					}
					stop = n.Value
				case 2:
					from, ok1 := args[0].(*Integer)
					to, ok2 := args[1].(*Integer)
					if !ok1 || !ok2 {
						return newStructuredError("TYPE-0002",
							map[string]any{"Function": "range", "Got": args[0].Type()})
					}
					start, stop = from.Value, to.Value
				}
				elements := []Object{}
				for i := start; i < stop; i++ {
					elements = append(elements, &Integer{Value: i})
				}
				return &Array{Elements: elements}
			},
		},
		"first": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "first", "Got": len(args), "Want": 1})
				}
				arr, ok := args[0].(*Array)
				if !ok {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "first", "Got": args[0].Type()})
				}
				if len(arr.Elements) > 0 {
					return arr.Elements[0]
				}
				return NULL
			},
		},
		"last": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "last", "Got": len(args), "Want": 1})
				}
				arr, ok := args[0].(*Array)
				if !ok {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "last", "Got": args[0].Type()})
				}
				if len(arr.Elements) > 0 {
					return arr.Elements[len(arr.Elements)-1]
				}
				return NULL
			},
		},
		"rest": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "rest", "Got": len(args), "Want": 1})
				}
				arr, ok := args[0].(*Array)
				if !ok {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "rest", "Got": args[0].Type()})
				}
				if len(arr.Elements) > 0 {
					rest := make([]Object, len(arr.Elements)-1)
					copy(rest, arr.Elements[1:])
					return &Array{Elements: rest}
				}
				return NULL
			},
		},
		"push": {
			Fn: func(args ...Object) Object {
				if len(args) != 2 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "push", "Got": len(args), "Want": 2})
				}
				arr, ok := args[0].(*Array)
				if !ok {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "push", "Got": args[0].Type()})
				}
				elements := make([]Object, len(arr.Elements), len(arr.Elements)+1)
				copy(elements, arr.Elements)
				return &Array{Elements: append(elements, args[1])}
			},
		},
		"join": {
			Fn: func(args ...Object) Object {
				if len(args) < 1 || len(args) > 2 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "join", "Got": len(args), "Want": "1 or 2"})
				}
				arr, ok := args[0].(*Array)
				if !ok {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "join", "Got": args[0].Type()})
				}
				sep := ""
				if len(args) == 2 {
					s, ok := args[1].(*String)
					if !ok {
						return newStructuredError("TYPE-0002",
							map[string]any{"Function": "join", "Got": args[1].Type()})
					}
					sep = s.Value
				}
				parts := make([]string, 0, len(arr.Elements))
				for _, el := range arr.Elements {
					parts = append(parts, stringifyForDisplay(el))
				}
				return &String{Value: strings.Join(parts, sep)}
			},
		},
		"split": {
			Fn: func(args ...Object) Object {
				if len(args) != 2 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "split", "Got": len(args), "Want": 2})
				}
				str, ok1 := args[0].(*String)
				sep, ok2 := args[1].(*String)
				if !ok1 || !ok2 {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "split", "Got": args[0].Type()})
				}
				parts := strings.Split(str.Value, sep.Value)
				elements := make([]Object, 0, len(parts))
				for _, part := range parts {
					elements = append(elements, &String{Value: part})
				}
				return &Array{Elements: elements}
			},
		},
		"upper": {
			Fn: stringTransformBuiltin("upper", strings.ToUpper),
		},
		"lower": {
			Fn: stringTransformBuiltin("lower", strings.ToLower),
		},
		"trim": {
			Fn: stringTransformBuiltin("trim", strings.TrimSpace),
		},
		"keys": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "keys", "Got": len(args), "Want": 1})
				}
				dict, ok := args[0].(*Dictionary)
				if !ok {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "keys", "Got": args[0].Type()})
				}
				elements := make([]Object, 0, len(dict.Keys))
				for _, key := range dict.Keys {
					elements = append(elements, &String{Value: key})
				}
				return &Array{Elements: elements}
			},
		},
		"values": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "values", "Got": len(args), "Want": 1})
				}
				dict, ok := args[0].(*Dictionary)
				if !ok {
					return newStructuredError("TYPE-0002",
						map[string]any{"Function": "values", "Got": args[0].Type()})
				}
				elements := make([]Object, 0, len(dict.Keys))
				for _, key := range dict.Keys {
					elements = append(elements, dict.Pairs[key])
				}
				return &Array{Elements: elements}
			},
		},
		"string": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "string", "Got": len(args), "Want": 1})
				}
				return &String{Value: stringifyForDisplay(args[0])}
			},
		},
		"type": {
			Fn: func(args ...Object) Object {
				if len(args) != 1 {
					return newStructuredError("ARITY-0001",
						map[string]any{"Function": "type", "Got": len(args), "Want": 1})
				}
				return &String{Value: string(args[0].Type())}
			},
		},
		"print": {
			Fn: func(args ...Object) Object {
				values := make([]interface{}, 0, len(args))
				for _, arg := range args {
					values = append(values, stringifyForDisplay(arg))
				}
				DefaultLogger.LogLine(values...)
				return NULL
			},
		},
		"log": {
			Fn: func(args ...Object) Object {
				values := make([]interface{}, 0, len(args))
				for _, arg := range args {
					values = append(values, arg.Inspect())
				}
				DefaultLogger.LogLine(values...)
				return NULL
			},
		},
	}
}

func stringTransformBuiltin(name string, transform func(string) string) BuiltinFunction {
	return func(args ...Object) Object {
		if len(args) != 1 {
			return newStructuredError("ARITY-0001",
				map[string]any{"Function": name, "Got": len(args), "Want": 1})
		}
		str, ok := args[0].(*String)
		if !ok {
			return newStructuredError("TYPE-0002",
				map[string]any{"Function": name, "Got": args[0].Type()})
		}
		return &String{Value: transform(str.Value)}
	}
}
