package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

func (i *Interpreter) evaluateStringConcat(node *ir.StringConcat, frame *runtime.Frame) (runtime.Value, error) {
	var b strings.Builder
	for _, argument := range node.Arguments {
		value, err := i.evaluateExpression(argument, frame)
		if err != nil {
			return nil, err
		}
		rendered, err := i.stringify(value)
		if err != nil {
			return nil, err
		}
		b.WriteString(rendered)
	}
	return runtime.NewPrimitive(b.String(), i.builtins.StringType), nil
}

// stringify renders a value the way the source language's toString would:
// scalars use decimal forms with floats always carrying a fractional part,
// composites dispatch through a user toString override when one exists, and
// native wrappers render through the host object.
func (i *Interpreter) stringify(value runtime.Value) (string, error) {
	switch val := value.(type) {
	case *runtime.Primitive:
		return stringifyScalar(val)
	case *runtime.Composite:
		return i.stringifyComposite(val)
	case *runtime.NativeWrapper:
		if s, ok := val.Obj.(fmt.Stringer); ok {
			return s.String(), nil
		}
		return fmt.Sprintf("%s@%p", val.Class.Name, val.Obj), nil
	case *runtime.Closure:
		return "Function" + strconv.Itoa(len(val.Function.Params)), nil
	case *runtime.Exception:
		return i.stringify(val.Wrapped)
	default:
		return "", environmentFaultf("cannot render %s value", value.Kind())
	}
}

func stringifyScalar(prim *runtime.Primitive) (string, error) {
	switch v := prim.Val.(type) {
	case nil:
		if prim.Type.IsUnit() {
			return "kotlin.Unit", nil
		}
		return "null", nil
	case bool:
		return strconv.FormatBool(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		if prim.Type.Class != nil && prim.Type.Class.Name == "Char" {
			return string(rune(v)), nil
		}
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32), nil
	case float64:
		return formatFloat(v, 64), nil
	case string:
		return v, nil
	default:
		elements, err := prim.ArrayElements()
		if err != nil {
			return "", environmentFaultf("cannot render %T value", prim.Val)
		}
		return fmt.Sprintf("[%d elements]", len(elements)), nil
	}
}

// formatFloat renders with the shortest round-trip form but keeps the ".0"
// suffix on integral values, matching the source language's convention.
func formatFloat(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	out := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out
}

// stringifyComposite prefers a user toString override; the defaults are the
// entry name for enums, "Class: message" for throwables, and an identity form
// otherwise.
func (i *Interpreter) stringifyComposite(instance *runtime.Composite) (string, error) {
	if fn := i.findToString(instance.Class); fn != nil {
		result, err := i.callFunction(fn, instance, nil, nil)
		if err != nil {
			return "", err
		}
		prim, ok := result.(*runtime.Primitive)
		if !ok {
			return "", environmentFaultf("%s.toString produced %s", instance.Class.Name, result.Kind())
		}
		s, ok := prim.Val.(string)
		if !ok {
			return "", environmentFaultf("%s.toString produced %T", instance.Class.Name, prim.Val)
		}
		return s, nil
	}
	if instance.Class.Kind == ir.ClassKindEnum {
		if prop := instance.Class.PropertyNamed("name"); prop != nil {
			if value, ok := instance.FindField(prop); ok {
				if prim, isPrim := value.(*runtime.Primitive); isPrim {
					if name, isString := prim.Val.(string); isString {
						return name, nil
					}
				}
			}
		}
	}
	if instance.Class.IsSubclassOf(i.builtins.Throwable) {
		return i.renderThrowableHeader(instance), nil
	}
	return fmt.Sprintf("%s@%p", instance.Class.Name, instance), nil
}

// findToString walks the class chain for a zero-parameter toString with a
// body; bodiless declarations (the implicit Any.toString) do not count as
// overrides.
func (i *Interpreter) findToString(class *ir.Class) *ir.Function {
	for cur := class; cur != nil; cur = cur.Super {
		for _, fn := range cur.Functions {
			if fn.Name == "toString" && len(fn.Params) == 0 && fn.Body != nil {
				return fn
			}
		}
	}
	return nil
}

func (i *Interpreter) renderThrowableHeader(instance *runtime.Composite) string {
	header := instance.Class.Name
	if value, ok := instance.FindField(i.builtins.ThrowableMessage); ok {
		if prim, isPrim := value.(*runtime.Primitive); isPrim {
			if message, isString := prim.Val.(string); isString {
				return header + ": " + message
			}
		}
	}
	return header
}
