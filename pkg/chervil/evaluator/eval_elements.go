package evaluator

import (
	"strings"
)

// The element constructor and the HTML renderer. Construction is dumb on
// purpose: element() just boxes its three arguments, and all tag-kind
// dispatch (intrinsic, fragment, component) happens when the element is
// rendered. That keeps elements inspectable values that can be stored,
// passed around, and transformed before anything touches a renderer.

// elementBuiltin implements element(tag, props, children).
func elementBuiltin(args ...Object) Object {
	if len(args) != 3 {
		return newStructuredError("ARITY-0001",
			map[string]any{"Function": "element", "Got": len(args), "Want": 3})
	}

	switch args[0].(type) {
	case *String, *Null, *Function, *Builtin, *Dictionary:
	default:
		return newStructuredError("TYPE-0001", map[string]any{
			"Function": "element", "Expected": "a tag string, null, or a component", "Got": args[0].Type(),
		})
	}

	props, ok := args[1].(*Dictionary)
	if !ok {
		return newStructuredError("TYPE-0001", map[string]any{
			"Function": "element", "Expected": "a properties dictionary", "Got": args[1].Type(),
		})
	}

	children, ok := args[2].(*Array)
	if !ok {
		return newStructuredError("TYPE-0001", map[string]any{
			"Function": "element", "Expected": "a children array", "Got": args[2].Type(),
		})
	}

	return &Element{Tag: args[0], Props: props, Children: children}
}

// htmlBuiltin renders a value to HTML text.
func htmlBuiltin(args ...Object) Object {
	if len(args) != 1 {
		return newStructuredError("ARITY-0001",
			map[string]any{"Function": "html", "Got": len(args), "Want": 1})
	}

	rendered := renderValue(args[0])
	if err, ok := rendered.(*Error); ok {
		return err
	}
	return rendered
}

// renderValue renders any object to a *String, or returns an *Error.
func renderValue(obj Object) Object {
	switch obj := obj.(type) {
	case *Element:
		return renderElement(obj)
	case *String:
		return obj
	case *Null:
		return &String{Value: ""}
	case *Array:
		return renderChildren(obj.Elements)
	default:
		return &String{Value: obj.Inspect()}
	}
}

func renderElement(el *Element) Object {
	switch tag := el.Tag.(type) {
	case *String:
		return renderIntrinsic(tag.Value, el)
	case *Null:
		return renderChildren(el.Children.Elements)
	default:
		return renderComponent(el)
	}
}

// renderIntrinsic produces the <tag props>...</tag> text for a plain HTML
// tag. Children render one per line, indented a level.
func renderIntrinsic(tag string, el *Element) Object {
	var out strings.Builder

	out.WriteString("<")
	out.WriteString(tag)
	for _, key := range el.Props.Keys {
		out.WriteString(" ")
		out.WriteString(key)
		out.WriteString(`="`)
		out.WriteString(stringifyProp(el.Props.Pairs[key]))
		out.WriteString(`"`)
	}
	out.WriteString(">\n")

	children := renderChildren(el.Children.Elements)
	if err, ok := children.(*Error); ok {
		return err
	}
	if body := children.(*String).Value; body != "" {
		out.WriteString(indent(body, 4))
	}

	out.WriteString("\n</")
	out.WriteString(tag)
	out.WriteString(">")

	return &String{Value: out.String()}
}

// renderComponent calls the component with its props, children included
// under the "children" key, and renders whatever comes back. A component is
// either a plain function or a dictionary with a render function member.
func renderComponent(el *Element) Object {
	props := NewDictionary()
	for _, key := range el.Props.Keys {
		props.Set(key, el.Props.Pairs[key])
	}
	props.Set("children", el.Children)

	var result Object
	switch tag := el.Tag.(type) {
	case *Function, *Builtin:
		result = applyFunction(tag, []Object{props})
	case *Dictionary:
		render, ok := tag.Pairs["render"]
		if !ok {
			return newStructuredError("TYPE-0006", map[string]any{"Got": tag.Type()})
		}
		if _, isFn := render.(*Function); !isFn {
			if _, isBuiltin := render.(*Builtin); !isBuiltin {
				return newStructuredError("TYPE-0007", map[string]any{"Got": render.Type()})
			}
		}
		result = applyFunction(render, []Object{props})
	default:
		return newStructuredError("TYPE-0006", map[string]any{"Got": el.Tag.Type()})
	}

	if isError(result) {
		return result
	}

	// A component may itself return a dictionary carrying a render member
	// (an instance), in which case rendering means invoking it.
	if instance, ok := result.(*Dictionary); ok {
		if render, ok := instance.Pairs["render"]; ok {
			result = applyFunction(render, nil)
			if isError(result) {
				return result
			}
		}
	}

	return renderValue(result)
}

// renderChildren flattens nested arrays, drops nulls, renders each child,
// and joins the lines.
func renderChildren(children []Object) Object {
	var lines []string

	var walk func(items []Object) Object
	walk = func(items []Object) Object {
		for _, child := range items {
			switch child := child.(type) {
			case *Array:
				if err := walk(child.Elements); err != nil {
					return err
				}
			case *Null:
				// Conditional children that came out empty
			default:
				rendered := renderValue(child)
				if err, ok := rendered.(*Error); ok {
					return err
				}
				lines = append(lines, rendered.(*String).Value)
			}
		}
		return nil
	}

	if err := walk(children); err != nil {
		return err
	}

	return &String{Value: strings.Join(lines, "\n")}
}

func stringifyProp(obj Object) string {
	return stringifyForDisplay(obj)
}

func indent(text string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}
