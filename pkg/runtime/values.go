package runtime

import (
	"fmt"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindPrimitive Kind = iota
	KindComposite
	KindNativeWrapper
	KindClosure
	KindException
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindComposite:
		return "composite"
	case KindNativeWrapper:
		return "native_wrapper"
	case KindClosure:
		return "closure"
	case KindException:
		return "exception"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. The variant set is
// closed; every dispatch site switches exhaustively over the five kinds.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Primitive
//-----------------------------------------------------------------------------

// Primitive wraps a host-native scalar (bool, rune, int8/int16/int32/int64,
// float32/float64, string, nil for null) or a homogeneous native array, plus
// its declared IR type.
type Primitive struct {
	Val  any
	Type ir.Type
}

func (v *Primitive) Kind() Kind { return KindPrimitive }

// NewPrimitive builds a primitive value.
func NewPrimitive(val any, typ ir.Type) *Primitive {
	return &Primitive{Val: val, Type: typ}
}

// IsNull reports whether the primitive is the null constant.
func (v *Primitive) IsNull() bool { return v.Val == nil && !v.Type.IsUnit() }

// NewArray packs element values into a primitive whose payload is the
// correctly-typed native array for the declared element type, falling back to
// a generic value slice for reference elements.
func NewArray(builtins *ir.Builtins, elemType ir.Type, elements []Value) (*Primitive, error) {
	arrayType := ir.ClassType(builtins.Array, elemType)
	if elemType.Nullable || elemType.Class == nil || !builtins.IsPrimitiveClass(elemType.Class) {
		payload := make([]Value, len(elements))
		copy(payload, elements)
		return NewPrimitive(payload, arrayType), nil
	}
	switch elemType.Class {
	case builtins.Boolean:
		return packArray[bool](elements, arrayType)
	case builtins.Char:
		return packArray[rune](elements, arrayType)
	case builtins.Byte:
		return packArray[int8](elements, arrayType)
	case builtins.Short:
		return packArray[int16](elements, arrayType)
	case builtins.Int:
		return packArray[int32](elements, arrayType)
	case builtins.Long:
		return packArray[int64](elements, arrayType)
	case builtins.Float:
		return packArray[float32](elements, arrayType)
	case builtins.Double:
		return packArray[float64](elements, arrayType)
	default:
		payload := make([]Value, len(elements))
		copy(payload, elements)
		return NewPrimitive(payload, arrayType), nil
	}
}

func packArray[T any](elements []Value, arrayType ir.Type) (*Primitive, error) {
	payload := make([]T, len(elements))
	for idx, element := range elements {
		prim, ok := element.(*Primitive)
		if !ok {
			return nil, fmt.Errorf("array element %d is %s, want primitive", idx, element.Kind())
		}
		scalar, ok := prim.Val.(T)
		if !ok {
			return nil, fmt.Errorf("array element %d holds %T, want %T", idx, prim.Val, scalar)
		}
		payload[idx] = scalar
	}
	return NewPrimitive(payload, arrayType), nil
}

// ArrayElements unpacks an array primitive back into element values,
// rewrapping native-array scalars with the array's element type.
func (v *Primitive) ArrayElements() ([]Value, error) {
	elemType := v.Type.ElementType()
	switch payload := v.Val.(type) {
	case []Value:
		return payload, nil
	case []bool:
		return unpackArray(payload, elemType), nil
	case []int8:
		return unpackArray(payload, elemType), nil
	case []int16:
		return unpackArray(payload, elemType), nil
	case []int32:
		return unpackArray(payload, elemType), nil
	case []int64:
		return unpackArray(payload, elemType), nil
	case []float32:
		return unpackArray(payload, elemType), nil
	case []float64:
		return unpackArray(payload, elemType), nil
	default:
		return nil, fmt.Errorf("value of type %s is not an array", v.Type)
	}
}

func unpackArray[T any](payload []T, elemType ir.Type) []Value {
	out := make([]Value, len(payload))
	for idx, scalar := range payload {
		out[idx] = NewPrimitive(scalar, elemType)
	}
	return out
}

//-----------------------------------------------------------------------------
// Composite
//-----------------------------------------------------------------------------

type fieldSlot struct {
	Property *ir.Property
	Value    Value
}

// Composite is an object instance: an insertion-ordered field table keyed by
// property symbol, the originating class, the superclass instance segment, and
// the enclosing instance for inner classes. Each instance exclusively owns its
// field table; the Super link models is-part-of and is set exactly once during
// construction.
type Composite struct {
	Class *ir.Class
	Super *Composite
	Outer *Composite

	fields []fieldSlot
	index  map[*ir.Property]int
}

func (v *Composite) Kind() Kind { return KindComposite }

// NewComposite builds an empty instance segment for the class.
func NewComposite(class *ir.Class) *Composite {
	return &Composite{Class: class, index: make(map[*ir.Property]int)}
}

// GetField reads a field slot from this segment only. Absence means "not found
// here, search further": callers walk the Super chain themselves.
func (v *Composite) GetField(property *ir.Property) (Value, bool) {
	if idx, ok := v.index[property]; ok {
		return v.fields[idx].Value, true
	}
	return nil, false
}

// SetField replaces an existing slot or appends a new one.
func (v *Composite) SetField(property *ir.Property, value Value) {
	if idx, ok := v.index[property]; ok {
		v.fields[idx].Value = value
		return
	}
	v.index[property] = len(v.fields)
	v.fields = append(v.fields, fieldSlot{Property: property, Value: value})
}

// FindField walks the superclass chain for the first segment holding the slot.
func (v *Composite) FindField(property *ir.Property) (Value, bool) {
	for seg := v; seg != nil; seg = seg.Super {
		if val, ok := seg.GetField(property); ok {
			return val, true
		}
	}
	return nil, false
}

// AssignField writes the slot in the segment that already holds it, or in the
// segment owned by the property's declaring class, or finally on v itself.
func (v *Composite) AssignField(property *ir.Property, value Value) {
	for seg := v; seg != nil; seg = seg.Super {
		if _, ok := seg.GetField(property); ok {
			seg.SetField(property, value)
			return
		}
	}
	if property.Parent != nil {
		for seg := v; seg != nil; seg = seg.Super {
			if seg.Class == property.Parent {
				seg.SetField(property, value)
				return
			}
		}
	}
	v.SetField(property, value)
}

// Properties returns the field symbols of this segment in insertion order.
func (v *Composite) Properties() []*ir.Property {
	out := make([]*ir.Property, len(v.fields))
	for idx, slot := range v.fields {
		out[idx] = slot.Property
	}
	return out
}

// LinkSuper attaches the superclass segment; construction links each layer
// exactly once, bottom-up.
func (v *Composite) LinkSuper(super *Composite) {
	v.Super = super
}

//-----------------------------------------------------------------------------
// NativeWrapper, Closure, Exception
//-----------------------------------------------------------------------------

// NativeWrapper holds an opaque host object obtained through the native
// bridge. Field access does not apply; only native-method invocation does.
type NativeWrapper struct {
	Class *ir.Class
	Obj   any
}

func (v *NativeWrapper) Kind() Kind { return KindNativeWrapper }

// Closure captures a function declaration plus the enclosing frame's bindings,
// copied by value at creation time.
type Closure struct {
	Function *ir.Function
	Captured map[string]Value
}

func (v *Closure) Kind() Kind { return KindClosure }

// Exception wraps a thrown value together with the call-stack trace captured
// at the throw site.
type Exception struct {
	Wrapped Value
	Trace   []string
}

func (v *Exception) Kind() Kind { return KindException }

//-----------------------------------------------------------------------------
// Shared helpers
//-----------------------------------------------------------------------------

// ClassOf resolves the runtime class of a value for cast checks and method
// resolution.
func ClassOf(builtins *ir.Builtins, v Value) *ir.Class {
	switch val := v.(type) {
	case *Primitive:
		if val.Type.Class != nil {
			return val.Type.Class
		}
		return builtins.Any
	case *Composite:
		return val.Class
	case *NativeWrapper:
		return val.Class
	case *Closure:
		return builtins.Any
	case *Exception:
		return ClassOf(builtins, val.Wrapped)
	default:
		return builtins.Any
	}
}

// Copy produces a deep-independent snapshot of the value: primitive array
// payloads and composite field tables are copied recursively. Native wrappers
// and closures are immutable post-construction and returned as-is.
func Copy(v Value) Value {
	switch val := v.(type) {
	case *Primitive:
		return &Primitive{Val: copyPayload(val.Val), Type: val.Type}
	case *Composite:
		return copyComposite(val)
	case *Exception:
		trace := make([]string, len(val.Trace))
		copy(trace, val.Trace)
		return &Exception{Wrapped: Copy(val.Wrapped), Trace: trace}
	default:
		return v
	}
}

func copyComposite(v *Composite) *Composite {
	if v == nil {
		return nil
	}
	out := NewComposite(v.Class)
	out.Outer = v.Outer
	out.Super = copyComposite(v.Super)
	for _, slot := range v.fields {
		out.SetField(slot.Property, Copy(slot.Value))
	}
	return out
}

func copyPayload(val any) any {
	switch payload := val.(type) {
	case []Value:
		out := make([]Value, len(payload))
		for idx, element := range payload {
			out[idx] = Copy(element)
		}
		return out
	case []bool:
		return append([]bool(nil), payload...)
	case []int8:
		return append([]int8(nil), payload...)
	case []int16:
		return append([]int16(nil), payload...)
	case []int32:
		return append([]int32(nil), payload...)
	case []int64:
		return append([]int64(nil), payload...)
	case []float32:
		return append([]float32(nil), payload...)
	case []float64:
		return append([]float64(nil), payload...)
	default:
		return val
	}
}
