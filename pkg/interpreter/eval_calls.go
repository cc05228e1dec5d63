package interpreter

import (
	"errors"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// evaluateCall evaluates the receiver, then the explicit arguments, resolves
// the declared target against the receiver's runtime class, and invokes it. A
// nil slot in the argument list selects the parameter's default expression,
// which is evaluated later inside the callee's frame.
func (i *Interpreter) evaluateCall(node *ir.Call, frame *runtime.Frame) (runtime.Value, error) {
	var receiver runtime.Value
	if node.Receiver != nil {
		var err error
		receiver, err = i.evaluateExpression(node.Receiver, frame)
		if err != nil {
			return nil, err
		}
		if exc, ok := receiver.(*runtime.Exception); ok {
			receiver = exc.Wrapped
		}
	}

	fn := node.Function
	argCount := len(fn.Params)
	if len(node.Args) > argCount {
		// Operator-table and closure-invoke stubs declare no parameters.
		argCount = len(node.Args)
	}
	args := make([]runtime.Value, argCount)
	for idx := range args {
		var expr ir.Expression
		if idx < len(node.Args) {
			expr = node.Args[idx]
		}
		if expr == nil {
			continue
		}
		value, err := i.evaluateExpression(expr, frame)
		if err != nil {
			return nil, err
		}
		args[idx] = value
	}

	if closure, ok := receiver.(*runtime.Closure); ok && (fn.Name == "invoke" || fn == closure.Function) {
		return i.invokeClosure(closure, args)
	}
	if receiver != nil {
		fn = i.resolveVirtual(fn, receiver)
	}
	return i.callFunction(fn, receiver, args, node.TypeArgs)
}

// resolveVirtual finds the implementation of the declared target on the
// receiver's runtime class, scanning the class chain most-derived-first. A
// candidate wins by declaring an override of the target, or failing that, by
// matching the target's name and parameter count; ties within one class go to
// declaration order.
func (i *Interpreter) resolveVirtual(declared *ir.Function, receiver runtime.Value) *ir.Function {
	if declared.Parent == nil {
		return declared
	}
	class := runtime.ClassOf(i.builtins, receiver)
	for cur := class; cur != nil; cur = cur.Super {
		for _, candidate := range cur.Functions {
			if candidate.OverridesOrIs(declared) {
				return candidate
			}
		}
	}
	for cur := class; cur != nil; cur = cur.Super {
		for _, candidate := range cur.Functions {
			if candidate.Name == declared.Name && len(candidate.Params) == len(declared.Params) {
				return candidate
			}
		}
	}
	return declared
}

// callFunction dispatches through the resolution ladder: enum intrinsics,
// substituted or declared IR body, the reflective native bridge, and finally
// the built-in operator table. Reaching the bottom without a match is an
// environment fault, not a program-level exception.
func (i *Interpreter) callFunction(fn *ir.Function, receiver runtime.Value, args []runtime.Value, typeArgs []ir.Type) (runtime.Value, error) {
	switch fn.Intrinsic {
	case "enumValues":
		return i.enumValues(fn.Parent)
	case "enumValueOf":
		return i.enumValueOf(fn.Parent, args)
	}

	body := fn.Body
	if substituted, ok := i.config.Bodies[fn.Signature()]; ok {
		body = substituted
	}
	if body != nil {
		return i.callBody(fn, body, receiver, args)
	}

	if fn.IsNative || (fn.Parent != nil && fn.Parent.IsNative) {
		return i.invokeNative(fn, receiver, args)
	}

	if result, ok, err := i.ops.invoke(i, fn.Name, receiver, args); ok {
		return result, err
	}

	return nil, environmentFaultf("no body, native host, or built-in for %s", fn.Signature())
}

// callBody runs an IR body in a fresh isolated frame: the receiver binds as
// "this", explicit arguments bind positionally, and omitted arguments evaluate
// their defaults inside the callee frame so a default can read the parameters
// bound before it.
func (i *Interpreter) callBody(fn *ir.Function, body *ir.Block, receiver runtime.Value, args []runtime.Value) (runtime.Value, error) {
	bindings := make(map[string]runtime.Value, len(args)+1)
	if receiver != nil {
		bindings["this"] = receiver
	}
	return i.withFrame(bindings, false, fn.QualifiedName(), func(frame *runtime.Frame) (runtime.Value, error) {
		for idx, param := range fn.Params {
			value := args[idx]
			if value == nil {
				if param.Default == nil {
					return nil, environmentFaultf("missing argument %q for %s", param.Name, fn.Signature())
				}
				var err error
				value, err = i.evaluateExpression(param.Default, frame)
				if err != nil {
					return nil, err
				}
			}
			frame.Define(param.Name, value)
		}
		result, err := i.evaluateExpression(body, frame)
		if err != nil {
			var ret returnSignal
			if errors.As(err, &ret) && (ret.target == nil || ret.target == fn || fn.OverridesOrIs(ret.target)) {
				return ret.value, nil
			}
			return nil, err
		}
		return result, nil
	})
}

// invokeClosure applies a captured lambda: the callee frame is isolated from
// the caller and seeded with the capture snapshot, so the body sees the
// creation-time bindings rather than the call-site ones.
func (i *Interpreter) invokeClosure(closure *runtime.Closure, args []runtime.Value) (runtime.Value, error) {
	fn := closure.Function
	bindings := make(map[string]runtime.Value, len(closure.Captured)+len(args))
	for name, value := range closure.Captured {
		bindings[name] = value
	}
	name := fn.QualifiedName()
	if name == "" {
		name = "<anonymous>"
	}
	return i.withFrame(bindings, false, name, func(frame *runtime.Frame) (runtime.Value, error) {
		for idx, param := range fn.Params {
			var value runtime.Value
			if idx < len(args) {
				value = args[idx]
			}
			if value == nil {
				if param.Default == nil {
					return nil, environmentFaultf("missing argument %q for %s", param.Name, fn.Signature())
				}
				var err error
				value, err = i.evaluateExpression(param.Default, frame)
				if err != nil {
					return nil, err
				}
			}
			frame.Define(param.Name, value)
		}
		if fn.Body == nil {
			return nil, environmentFaultf("closure target %s has no body", fn.Signature())
		}
		result, err := i.evaluateExpression(fn.Body, frame)
		if err != nil {
			var ret returnSignal
			if errors.As(err, &ret) && (ret.target == nil || ret.target == fn) {
				return ret.value, nil
			}
			return nil, err
		}
		return result, nil
	})
}

func (i *Interpreter) evaluateReturn(node *ir.Return, frame *runtime.Frame) (runtime.Value, error) {
	var value runtime.Value = i.unitValue()
	if node.Value != nil {
		var err error
		value, err = i.evaluateExpression(node.Value, frame)
		if err != nil {
			return nil, err
		}
	}
	return nil, returnSignal{target: node.Target, value: value}
}
