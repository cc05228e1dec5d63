package interpreter

import (
	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// evaluateExpression is the dispatcher: one evaluation rule per node kind,
// recursing into sub-expressions in source evaluation order. The step budget
// and yield hook run before every node.
func (i *Interpreter) evaluateExpression(node ir.Expression, frame *runtime.Frame) (runtime.Value, error) {
	if err := i.stack.Step(); err != nil {
		return nil, err
	}
	if i.config.Yield != nil {
		i.config.Yield()
	}
	switch n := node.(type) {
	case *ir.Const:
		return runtime.NewPrimitive(n.Value, n.Type), nil
	case *ir.GetValue:
		return frame.Get(n.Name)
	case *ir.SetValue:
		value, err := i.evaluateExpression(n.Value, frame)
		if err != nil {
			return nil, err
		}
		if err := frame.Assign(n.Name, value); err != nil {
			return nil, err
		}
		return i.unitValue(), nil
	case *ir.GetField:
		return i.evaluateGetField(n, frame)
	case *ir.SetField:
		return i.evaluateSetField(n, frame)
	case *ir.Call:
		return i.evaluateCall(n, frame)
	case *ir.ConstructorCall:
		return i.evaluateConstructorCall(n, frame)
	case *ir.GetObject:
		return i.objectValue(n.Class)
	case *ir.GetEnumEntry:
		return i.enumEntryValue(n.Entry)
	case *ir.Block:
		return i.evaluateBlock(n, frame)
	case *ir.When:
		return i.evaluateWhen(n, frame)
	case *ir.While:
		return i.evaluateWhile(n, frame)
	case *ir.DoWhile:
		return i.evaluateDoWhile(n, frame)
	case *ir.Break:
		return nil, breakSignal{label: n.Label}
	case *ir.Continue:
		return nil, continueSignal{label: n.Label}
	case *ir.Return:
		return i.evaluateReturn(n, frame)
	case *ir.Throw:
		return i.evaluateThrow(n, frame)
	case *ir.Try:
		return i.evaluateTry(n, frame)
	case *ir.TypeOperator:
		return i.evaluateTypeOperator(n, frame)
	case *ir.StringConcat:
		return i.evaluateStringConcat(n, frame)
	case *ir.Vararg:
		return i.evaluateVararg(n, frame)
	case *ir.FunctionExpression:
		return &runtime.Closure{Function: n.Function, Captured: frame.Snapshot()}, nil
	case *ir.FunctionReference:
		return &runtime.Closure{Function: n.Function, Captured: frame.Snapshot()}, nil
	default:
		return nil, environmentFaultf("unsupported node kind %s", node.ElementKind())
	}
}

// evaluateStatement evaluates one block statement; local variable declarations
// bind into the current frame, everything else is expression evaluation.
func (i *Interpreter) evaluateStatement(node ir.Statement, frame *runtime.Frame) (runtime.Value, error) {
	if variable, ok := node.(*ir.Variable); ok {
		var value runtime.Value = i.unitValue()
		if variable.Init != nil {
			var err error
			value, err = i.evaluateExpression(variable.Init, frame)
			if err != nil {
				return nil, err
			}
		}
		frame.Define(variable.Name, value)
		return i.unitValue(), nil
	}
	expr, ok := node.(ir.Expression)
	if !ok {
		return nil, environmentFaultf("unsupported statement kind %s", node.ElementKind())
	}
	return i.evaluateExpression(expr, frame)
}

func (i *Interpreter) evaluateGetField(node *ir.GetField, frame *runtime.Frame) (runtime.Value, error) {
	receiver, err := i.evaluateExpression(node.Receiver, frame)
	if err != nil {
		return nil, err
	}
	// A caught exception wrapper is transparent to member access.
	if exc, ok := receiver.(*runtime.Exception); ok {
		receiver = exc.Wrapped
	}
	switch recv := receiver.(type) {
	case *runtime.Composite:
		if value, ok := recv.FindField(node.Property); ok {
			return value, nil
		}
		// Inner-class members fall back to the enclosing instance chain.
		for enc := recv.Outer; enc != nil; enc = enc.Outer {
			if value, ok := enc.FindField(node.Property); ok {
				return value, nil
			}
		}
		return nil, environmentFaultf("field %s.%s not present on instance of %s",
			node.Property.Parent.Name, node.Property.Name, recv.Class.Name)
	case *runtime.Primitive:
		if recv.IsNull() {
			return nil, i.raiseException(i.builtins.NullPointerException, "field access on null receiver")
		}
		return nil, environmentFaultf("field access on %s value", recv.Type)
	default:
		return nil, environmentFaultf("field access on %s value", receiver.Kind())
	}
}

func (i *Interpreter) evaluateSetField(node *ir.SetField, frame *runtime.Frame) (runtime.Value, error) {
	receiver, err := i.evaluateExpression(node.Receiver, frame)
	if err != nil {
		return nil, err
	}
	value, err := i.evaluateExpression(node.Value, frame)
	if err != nil {
		return nil, err
	}
	if exc, ok := receiver.(*runtime.Exception); ok {
		receiver = exc.Wrapped
	}
	switch recv := receiver.(type) {
	case *runtime.Composite:
		if _, ok := recv.FindField(node.Property); !ok {
			for enc := recv.Outer; enc != nil; enc = enc.Outer {
				if _, ok := enc.FindField(node.Property); ok {
					enc.AssignField(node.Property, value)
					return i.unitValue(), nil
				}
			}
		}
		recv.AssignField(node.Property, value)
		return i.unitValue(), nil
	case *runtime.Primitive:
		if recv.IsNull() {
			return nil, i.raiseException(i.builtins.NullPointerException, "field store on null receiver")
		}
		return nil, environmentFaultf("field store on %s value", recv.Type)
	default:
		// NativeWrapper and Closure are immutable post-construction.
		return nil, environmentFaultf("field store on %s value", receiver.Kind())
	}
}

func (i *Interpreter) evaluateVararg(node *ir.Vararg, frame *runtime.Frame) (runtime.Value, error) {
	elements := make([]runtime.Value, 0, len(node.Elements))
	for _, element := range node.Elements {
		switch el := element.(type) {
		case *ir.Spread:
			value, err := i.evaluateExpression(el.Expression, frame)
			if err != nil {
				return nil, err
			}
			prim, ok := value.(*runtime.Primitive)
			if !ok {
				return nil, environmentFaultf("spread of %s value", value.Kind())
			}
			spread, err := prim.ArrayElements()
			if err != nil {
				return nil, environmentFaultf("spread of non-array value: %v", err)
			}
			elements = append(elements, spread...)
		case ir.Expression:
			value, err := i.evaluateExpression(el, frame)
			if err != nil {
				return nil, err
			}
			elements = append(elements, value)
		default:
			return nil, environmentFaultf("unsupported vararg element %s", element.ElementKind())
		}
	}
	array, err := runtime.NewArray(i.builtins, node.ElementType, elements)
	if err != nil {
		return nil, environmentFaultf("vararg packing: %v", err)
	}
	return array, nil
}
