package interpreter

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// nativeRegistry is the allow-list of host-backed classes. Construction is
// hand-mapped per class; method invocation goes through reflection over the
// host object so new methods only need a declaration plus an exported Go
// method of the same name.
type nativeRegistry struct {
	builtins     *ir.Builtins
	constructors map[*ir.Class]func(i *Interpreter, args []runtime.Value) (any, error)
}

func newNativeRegistry(builtins *ir.Builtins) *nativeRegistry {
	r := &nativeRegistry{
		builtins:     builtins,
		constructors: make(map[*ir.Class]func(i *Interpreter, args []runtime.Value) (any, error)),
	}
	r.constructors[builtins.StringBuilder] = func(i *Interpreter, args []runtime.Value) (any, error) {
		return &hostStringBuilder{}, nil
	}
	r.constructors[builtins.Regex] = func(i *Interpreter, args []runtime.Value) (any, error) {
		if len(args) == 0 || args[0] == nil {
			return nil, environmentFaultf("Regex constructor requires a pattern argument")
		}
		pattern, err := i.marshalString(args[0])
		if err != nil {
			return nil, err
		}
		host, err := newHostRegex(pattern)
		if err != nil {
			return nil, i.raiseException(i.builtins.IllegalArgumentException, err.Error())
		}
		return host, nil
	}
	return r
}

// constructNative builds the host object behind a native class instantiation.
func (i *Interpreter) constructNative(ctor *ir.Constructor, args []runtime.Value) (runtime.Value, error) {
	construct, ok := i.natives.constructors[ctor.Parent]
	if !ok {
		return nil, environmentFaultf("class %s is not on the native allow-list", ctor.Parent.Name)
	}
	for idx, param := range ctor.Params {
		if args[idx] != nil {
			continue
		}
		if param.Default == nil {
			return nil, environmentFaultf("missing argument %q for %s", param.Name, ctor.QualifiedName())
		}
		value, err := i.evaluateExpression(param.Default, i.stack.Current())
		if err != nil {
			return nil, err
		}
		args[idx] = value
	}
	obj, err := construct(i, args)
	if err != nil {
		return nil, err
	}
	return &runtime.NativeWrapper{Class: ctor.Parent, Obj: obj}, nil
}

// invokeNative resolves the declared method on the host object by its exported
// name, with a first-argument-type suffix as the overload fallback, marshals
// the operands across the boundary, and converts host panics into
// program-level exceptions.
func (i *Interpreter) invokeNative(fn *ir.Function, receiver runtime.Value, args []runtime.Value) (result runtime.Value, err error) {
	wrapper, ok := receiver.(*runtime.NativeWrapper)
	if !ok {
		return nil, environmentFaultf("native method %s on %s receiver", fn.Signature(), kindOf(receiver))
	}

	host := reflect.ValueOf(wrapper.Obj)
	name := fn.Intrinsic
	if name == "" {
		name = fn.Name
	}
	method := host.MethodByName(exportName(name))
	if !method.IsValid() && len(args) > 0 && args[0] != nil {
		suffix := runtime.ClassOf(i.builtins, args[0]).Name
		method = host.MethodByName(exportName(name) + suffix)
	}
	if !method.IsValid() {
		return nil, environmentFaultf("host %T has no method for %s", wrapper.Obj, fn.Signature())
	}

	methodType := method.Type()
	if methodType.NumIn() != len(args) {
		return nil, environmentFaultf("host method %s takes %d arguments, call has %d",
			exportName(name), methodType.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for idx, arg := range args {
		marshalled, err := i.marshalArg(arg, methodType.In(idx))
		if err != nil {
			return nil, err
		}
		in[idx] = marshalled
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			result, err = nil, i.hostPanicToException(recovered)
		}
	}()
	out := method.Call(in)
	return i.unmarshalResult(fn, wrapper, out)
}

func kindOf(v runtime.Value) string {
	if v == nil {
		return "absent"
	}
	return v.Kind().String()
}

func exportName(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// marshalArg converts a runtime value into the host parameter's Go type.
// String parameters take the operand's rendered form, which matches the
// append-anything contract and is the identity for string operands.
func (i *Interpreter) marshalArg(value runtime.Value, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Value{}, environmentFaultf("missing native argument")
	}
	switch target.Kind() {
	case reflect.String:
		s, err := i.stringify(value)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s), nil
	case reflect.Bool:
		prim, ok := value.(*runtime.Primitive)
		if !ok {
			return reflect.Value{}, environmentFaultf("native argument is %s, want Boolean", value.Kind())
		}
		b, ok := prim.Val.(bool)
		if !ok {
			return reflect.Value{}, environmentFaultf("native argument holds %T, want bool", prim.Val)
		}
		return reflect.ValueOf(b), nil
	case reflect.Int32, reflect.Int64, reflect.Int:
		prim, ok := value.(*runtime.Primitive)
		if !ok {
			return reflect.Value{}, environmentFaultf("native argument is %s, want a number", value.Kind())
		}
		n, ok := scalarInt64(prim.Val)
		if !ok {
			return reflect.Value{}, environmentFaultf("native argument holds %T, want an integer", prim.Val)
		}
		return reflect.ValueOf(n).Convert(target), nil
	case reflect.Interface:
		if prim, ok := value.(*runtime.Primitive); ok {
			return reflect.ValueOf(prim.Val), nil
		}
		return reflect.ValueOf(value), nil
	default:
		return reflect.Value{}, environmentFaultf("unsupported native parameter type %s", target)
	}
}

func (i *Interpreter) marshalString(value runtime.Value) (string, error) {
	prim, ok := value.(*runtime.Primitive)
	if !ok {
		return "", environmentFaultf("argument is %s, want String", value.Kind())
	}
	s, ok := prim.Val.(string)
	if !ok {
		return "", environmentFaultf("argument holds %T, want string", prim.Val)
	}
	return s, nil
}

// unmarshalResult brings the host return value back into the value model. A
// pointer result identical to the receiver's host object keeps the receiver
// wrapper, preserving fluent-style identity.
func (i *Interpreter) unmarshalResult(fn *ir.Function, wrapper *runtime.NativeWrapper, out []reflect.Value) (runtime.Value, error) {
	if len(out) == 2 {
		if errVal, ok := out[1].Interface().(error); ok && errVal != nil {
			return nil, i.raiseException(i.builtins.IllegalArgumentException, errVal.Error())
		}
		out = out[:1]
	}
	if len(out) == 0 {
		return i.unitValue(), nil
	}
	switch result := out[0].Interface().(type) {
	case string:
		return runtime.NewPrimitive(result, i.builtins.StringType), nil
	case bool:
		return runtime.NewPrimitive(result, i.builtins.BooleanType), nil
	case int32:
		return runtime.NewPrimitive(result, i.builtins.IntType), nil
	case int64:
		return runtime.NewPrimitive(result, i.builtins.LongType), nil
	case int:
		return runtime.NewPrimitive(int32(result), i.builtins.IntType), nil
	default:
		if out[0].Kind() == reflect.Ptr {
			if out[0].Interface() == wrapper.Obj {
				return wrapper, nil
			}
			return &runtime.NativeWrapper{Class: wrapper.Class, Obj: out[0].Interface()}, nil
		}
		return nil, environmentFaultf("unsupported native result type %T from %s", result, fn.Signature())
	}
}

// hostPanicToException maps a recovered host panic onto the closest standard
// exception class so user catch clauses can intercept it.
func (i *Interpreter) hostPanicToException(recovered any) error {
	message := fmt.Sprint(recovered)
	class := i.builtins.RuntimeException
	switch {
	case strings.Contains(message, "index out of range"), strings.Contains(message, "slice bounds out of range"):
		class = i.builtins.IndexOutOfBoundsException
	case strings.Contains(message, "nil pointer"), strings.Contains(message, "invalid memory address"):
		class = i.builtins.NullPointerException
	}
	return i.raiseException(class, message)
}
