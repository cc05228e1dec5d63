package interpreter

import (
	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

func (i *Interpreter) evaluateTypeOperator(node *ir.TypeOperator, frame *runtime.Frame) (runtime.Value, error) {
	value, err := i.evaluateExpression(node.Argument, frame)
	if err != nil {
		return nil, err
	}
	matches := i.typeMatches(value, node.Target)
	switch node.Operator {
	case ir.OperatorInstanceOf:
		return runtime.NewPrimitive(matches, i.builtins.BooleanType), nil
	case ir.OperatorNotInstanceOf:
		return runtime.NewPrimitive(!matches, i.builtins.BooleanType), nil
	case ir.OperatorCast:
		if matches {
			return value, nil
		}
		return nil, i.raiseException(i.builtins.ClassCastException,
			i.classNameOf(value)+" cannot be cast to "+node.Target.Name())
	case ir.OperatorSafeCast:
		if matches {
			return value, nil
		}
		return i.nullValue(node.Target), nil
	default:
		return nil, environmentFaultf("unsupported type operator %q", node.Operator)
	}
}

// typeMatches applies the runtime subtype check. Null matches only nullable
// targets; a value statically typed Nothing passes any cast, since Nothing is
// a subtype of every type and such a value can only exist along dead paths.
func (i *Interpreter) typeMatches(value runtime.Value, target ir.Type) bool {
	if prim, ok := value.(*runtime.Primitive); ok {
		if prim.IsNull() {
			return target.Nullable
		}
		if prim.Type.Class != nil && prim.Type.Class.IsSubclassOf(i.builtins.Nothing) {
			return true
		}
	}
	if exc, ok := value.(*runtime.Exception); ok {
		return i.typeMatches(exc.Wrapped, target)
	}
	if target.Class == nil || target.Class == i.builtins.Any {
		return true
	}
	if _, ok := value.(*runtime.Closure); ok {
		// Function types erase to their Function<N> class name at this level.
		return target.Class == i.builtins.Any
	}
	return runtime.ClassOf(i.builtins, value).IsSubclassOf(target.Class)
}

func (i *Interpreter) classNameOf(value runtime.Value) string {
	if prim, ok := value.(*runtime.Primitive); ok && prim.IsNull() {
		return "null"
	}
	return runtime.ClassOf(i.builtins, value).Name
}
