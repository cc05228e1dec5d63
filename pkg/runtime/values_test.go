package runtime

import (
	"testing"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

func TestNewArrayPicksTypedPayload(t *testing.T) {
	b := ir.NewBuiltins()

	cases := []struct {
		name     string
		elemType ir.Type
		elements []Value
		wantVal  any
	}{
		{
			name:     "int elements",
			elemType: b.IntType,
			elements: []Value{NewPrimitive(int32(1), b.IntType), NewPrimitive(int32(2), b.IntType)},
			wantVal:  []int32{1, 2},
		},
		{
			name:     "double elements",
			elemType: b.DoubleType,
			elements: []Value{NewPrimitive(1.5, b.DoubleType)},
			wantVal:  []float64{1.5},
		},
		{
			name:     "bool elements",
			elemType: b.BooleanType,
			elements: []Value{NewPrimitive(true, b.BooleanType)},
			wantVal:  []bool{true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			arr, err := NewArray(b, tc.elemType, tc.elements)
			if err != nil {
				t.Fatalf("NewArray returned error: %v", err)
			}
			switch want := tc.wantVal.(type) {
			case []int32:
				got, ok := arr.Val.([]int32)
				if !ok || len(got) != len(want) {
					t.Fatalf("payload = %#v, want %#v", arr.Val, want)
				}
			case []float64:
				if _, ok := arr.Val.([]float64); !ok {
					t.Fatalf("payload = %#v, want []float64", arr.Val)
				}
			case []bool:
				if _, ok := arr.Val.([]bool); !ok {
					t.Fatalf("payload = %#v, want []bool", arr.Val)
				}
			}
		})
	}
}

func TestNewArrayNullableElementsFallBack(t *testing.T) {
	b := ir.NewBuiltins()
	arr, err := NewArray(b, b.IntType.AsNullable(), []Value{
		NewPrimitive(int32(1), b.IntType),
		NewPrimitive(nil, b.IntType.AsNullable()),
	})
	if err != nil {
		t.Fatalf("NewArray returned error: %v", err)
	}
	payload, ok := arr.Val.([]Value)
	if !ok {
		t.Fatalf("payload = %#v, want []Value", arr.Val)
	}
	if len(payload) != 2 {
		t.Fatalf("len = %d, want 2", len(payload))
	}
}

func TestArrayElementsRoundTrip(t *testing.T) {
	b := ir.NewBuiltins()
	arr, err := NewArray(b, b.IntType, []Value{
		NewPrimitive(int32(7), b.IntType),
		NewPrimitive(int32(9), b.IntType),
	})
	if err != nil {
		t.Fatalf("NewArray returned error: %v", err)
	}
	elements, err := arr.ArrayElements()
	if err != nil {
		t.Fatalf("ArrayElements returned error: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("len = %d, want 2", len(elements))
	}
	second, ok := elements[1].(*Primitive)
	if !ok || second.Val != int32(9) {
		t.Fatalf("elements[1] = %#v, want 9", elements[1])
	}
	if second.Type.Class != b.Int {
		t.Fatalf("element type = %s, want Int", second.Type)
	}
}

func TestCompositeFieldOrderAndChain(t *testing.T) {
	b := ir.NewBuiltins()
	base := ir.NewClass("Base", ir.ClassKindClass, b.Any)
	baseProp := ir.NewProperty(base, "tag", b.StringType, nil)
	derived := ir.NewClass("Derived", ir.ClassKindClass, base)
	first := ir.NewProperty(derived, "first", b.IntType, nil)
	second := ir.NewProperty(derived, "second", b.IntType, nil)

	super := NewComposite(base)
	super.SetField(baseProp, NewPrimitive("base", b.StringType))
	instance := NewComposite(derived)
	instance.LinkSuper(super)
	instance.SetField(first, NewPrimitive(int32(1), b.IntType))
	instance.SetField(second, NewPrimitive(int32(2), b.IntType))

	props := instance.Properties()
	if len(props) != 2 || props[0] != first || props[1] != second {
		t.Fatalf("insertion order broken: %v", props)
	}

	if _, ok := instance.GetField(baseProp); ok {
		t.Fatal("GetField must not search the super chain")
	}
	value, ok := instance.FindField(baseProp)
	if !ok {
		t.Fatal("FindField must search the super chain")
	}
	if prim := value.(*Primitive); prim.Val != "base" {
		t.Fatalf("FindField = %#v, want base", value)
	}

	instance.AssignField(baseProp, NewPrimitive("updated", b.StringType))
	got, _ := super.GetField(baseProp)
	if got.(*Primitive).Val != "updated" {
		t.Fatal("AssignField must write the owning segment")
	}
}

func TestCopyIsDeep(t *testing.T) {
	b := ir.NewBuiltins()
	class := ir.NewClass("Box", ir.ClassKindClass, b.Any)
	prop := ir.NewProperty(class, "items", ir.ClassType(b.Array, b.IntType), nil)

	arr, err := NewArray(b, b.IntType, []Value{NewPrimitive(int32(1), b.IntType)})
	if err != nil {
		t.Fatalf("NewArray returned error: %v", err)
	}
	original := NewComposite(class)
	original.SetField(prop, arr)

	copied := Copy(original).(*Composite)
	copiedField, _ := copied.GetField(prop)
	copiedArr := copiedField.(*Primitive)
	copiedArr.Val.([]int32)[0] = 99

	if arr.Val.([]int32)[0] != 1 {
		t.Fatal("mutating the copy must not affect the original payload")
	}
}

func TestClassOf(t *testing.T) {
	b := ir.NewBuiltins()
	if got := ClassOf(b, NewPrimitive(int32(1), b.IntType)); got != b.Int {
		t.Fatalf("ClassOf int = %s", got.Name)
	}
	class := ir.NewClass("Widget", ir.ClassKindClass, b.Any)
	if got := ClassOf(b, NewComposite(class)); got != class {
		t.Fatalf("ClassOf composite = %s", got.Name)
	}
	exc := &Exception{Wrapped: NewComposite(class)}
	if got := ClassOf(b, exc); got != class {
		t.Fatalf("ClassOf exception = %s", got.Name)
	}
}
