package interpreter

import (
	"testing"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

func TestConstructorBindsFieldsAndDefaults(t *testing.T) {
	m := newModule()
	b := m.Builtins

	rect := ir.NewClass("Rect", ir.ClassKindClass, b.Any)
	w := ir.NewProperty(rect, "w", b.IntType, nil)
	h := ir.NewProperty(rect, "h", b.IntType, nil)
	widthParam := ir.NewValueParameter("width", b.IntType)
	heightParam := ir.NewValueParameter("height", b.IntType)
	// The default sees the already-bound earlier parameter.
	heightParam.Default = ir.NewOpCall("times", ir.NewGetValue("width"), b.IntConst(2))
	ctor := ir.NewConstructor(rect, true, widthParam, heightParam)
	ctor.Body = ir.NewBlock(
		ir.NewSetField(ir.This(), w, ir.NewGetValue("width")),
		ir.NewSetField(ir.This(), h, ir.NewGetValue("height")),
	)
	m.AddClass(rect)

	program := ir.NewBlock(
		ir.NewVariable("r", ir.ClassType(rect), ir.NewConstructorCall(ctor, b.IntConst(3))),
		ir.NewOpCall("plus",
			ir.NewGetField(ir.NewGetValue("r"), w),
			ir.NewGetField(ir.NewGetValue("r"), h),
		),
	)
	if got := evalScalar(t, m, program); got != int32(9) {
		t.Fatalf("w+h = %v, want 9", got)
	}
}

func TestPropertyInitializersRunBeforeInitBlocks(t *testing.T) {
	m := newModule()
	b := m.Builtins

	acc := ir.NewClass("Acc", ir.ClassKindClass, b.Any)
	total := ir.NewProperty(acc, "total", b.IntType,
		ir.NewOpCall("times", ir.NewGetValue("seed"), b.IntConst(10)))
	ctor := ir.NewConstructor(acc, true, ir.NewValueParameter("seed", b.IntType))
	ir.NewAnonymousInitializer(acc, ir.NewBlock(
		ir.NewSetField(ir.This(), total,
			ir.NewOpCall("plus", ir.NewGetField(ir.This(), total), b.IntConst(1))),
	))
	m.AddClass(acc)

	program := ir.NewGetField(ir.NewConstructorCall(ctor, b.IntConst(3)), total)
	if got := evalScalar(t, m, program); got != int32(31) {
		t.Fatalf("total = %v, want 31", got)
	}
}

// declareShape builds a Base/Derived pair where Derived overrides describe and
// delegates its constructor to Base's.
func declareShape(m *ir.Module) (base, derived *ir.Class, baseDescribe *ir.Function, tag *ir.Property) {
	b := m.Builtins

	base = ir.NewClass("Base", ir.ClassKindClass, b.Any)
	tag = ir.NewProperty(base, "tag", b.StringType, nil)
	baseCtor := ir.NewConstructor(base, true, ir.NewValueParameter("tag", b.StringType))
	baseCtor.Body = ir.NewBlock(ir.NewSetField(ir.This(), tag, ir.NewGetValue("tag")))

	baseDescribe = ir.NewFunction("describe", b.StringType)
	base.AddFunction(baseDescribe)
	baseDescribe.Body = ir.NewBlock(ir.NewStringConcat(
		b.StringConst("base:"),
		ir.NewGetField(ir.This(), tag),
	))

	greet := ir.NewFunction("greet", b.StringType)
	base.AddFunction(greet)
	greet.Body = ir.NewBlock(ir.NewStringConcat(
		b.StringConst("hello "),
		ir.NewCall(baseDescribe, ir.This()),
	))

	derived = ir.NewClass("Derived", ir.ClassKindClass, base)
	derivedCtor := ir.NewConstructor(derived, true)
	derivedCtor.Delegate = ir.NewDelegatingConstructorCall(baseCtor, b.StringConst("d"))

	derivedDescribe := ir.NewFunction("describe", b.StringType)
	derived.AddFunction(derivedDescribe)
	derivedDescribe.Overridden = []*ir.Function{baseDescribe}
	derivedDescribe.Body = ir.NewBlock(b.StringConst("derived"))

	m.AddClass(base)
	m.AddClass(derived)
	return base, derived, baseDescribe, tag
}

func TestVirtualDispatchUsesRuntimeClass(t *testing.T) {
	m := newModule()
	_, derived, baseDescribe, _ := declareShape(m)

	// Calling through the Base declaration on a Derived instance must land on
	// the override.
	call := ir.NewCall(baseDescribe, ir.NewConstructorCall(derived.PrimaryConstructor()))
	if got := evalScalar(t, m, call); got != "derived" {
		t.Fatalf("describe = %v, want derived", got)
	}
}

func TestSuperDelegationFillsInheritedFields(t *testing.T) {
	m := newModule()
	_, derived, _, tag := declareShape(m)

	program := ir.NewGetField(ir.NewConstructorCall(derived.PrimaryConstructor()), tag)
	if got := evalScalar(t, m, program); got != "d" {
		t.Fatalf("tag = %v, want d", got)
	}
}

func TestThisCallsDispatchVirtually(t *testing.T) {
	m := newModule()
	base, derived, _, _ := declareShape(m)
	greet := base.FunctionNamed("greet")

	call := ir.NewCall(greet, ir.NewConstructorCall(derived.PrimaryConstructor()))
	if got := evalScalar(t, m, call); got != "hello derived" {
		t.Fatalf("greet = %v, want hello derived", got)
	}
}

func TestInheritedMethodReachesBaseBody(t *testing.T) {
	m := newModule()
	b := m.Builtins

	animal := ir.NewClass("Animal", ir.ClassKindClass, b.Any)
	ir.NewConstructor(animal, true)
	kind := ir.NewFunction("kind", b.StringType)
	animal.AddFunction(kind)
	kind.Body = ir.NewBlock(b.StringConst("animal"))

	cat := ir.NewClass("Cat", ir.ClassKindClass, animal)
	catCtor := ir.NewConstructor(cat, true)
	catCtor.Delegate = ir.NewDelegatingConstructorCall(animal.PrimaryConstructor())
	m.AddClass(animal)
	m.AddClass(cat)

	call := ir.NewCall(kind, ir.NewConstructorCall(catCtor))
	if got := evalScalar(t, m, call); got != "animal" {
		t.Fatalf("kind = %v, want animal", got)
	}
}

func TestObjectSingletonIdentity(t *testing.T) {
	m := newModule()
	b := m.Builtins

	counter := ir.NewClass("Counter", ir.ClassKindObject, b.Any)
	n := ir.NewProperty(counter, "n", b.IntType, b.IntConst(0))
	ir.NewConstructor(counter, true)
	m.AddClass(counter)

	program := ir.NewBlock(
		ir.NewSetField(ir.NewGetObject(counter), n, b.IntConst(5)),
		ir.NewOpCall("plus",
			ir.NewGetField(ir.NewGetObject(counter), n),
			ir.NewWhen(
				ir.NewBranch(
					ir.NewOpCall("equals", ir.NewGetObject(counter), ir.NewGetObject(counter)),
					b.IntConst(100),
				),
				b.Else(b.IntConst(0)),
			),
		),
	)
	// 5 from the mutated field, 100 from reference identity.
	if got := evalScalar(t, m, program); got != int32(105) {
		t.Fatalf("got %v, want 105", got)
	}
}

func declareColorEnum(m *ir.Module) (class *ir.Class, ctor *ir.Constructor) {
	b := m.Builtins
	class = ir.NewEnumClass(b, "Color")
	rgb := ir.NewProperty(class, "rgb", b.IntType, nil)
	ctor = ir.NewConstructor(class, true, ir.NewValueParameter("rgb", b.IntType))
	ctor.Body = ir.NewBlock(ir.NewSetField(ir.This(), rgb, ir.NewGetValue("rgb")))
	ir.NewEnumEntry(class, "RED", ir.NewConstructorCall(ctor, b.IntConst(0xFF0000)))
	ir.NewEnumEntry(class, "GREEN", ir.NewConstructorCall(ctor, b.IntConst(0x00FF00)))
	m.AddClass(class)
	return class, ctor
}

func TestEnumEntryFields(t *testing.T) {
	m := newModule()
	color, _ := declareColorEnum(m)
	green := color.EntryNamed("GREEN")

	session := New(m)
	value, err := session.EvaluateValue(ir.NewGetEnumEntry(green))
	if err != nil {
		t.Fatalf("EvaluateValue returned error: %v", err)
	}
	instance := value.(*runtime.Composite)

	name, _ := instance.FindField(color.PropertyNamed("name"))
	if name.(*runtime.Primitive).Val != "GREEN" {
		t.Fatalf("name = %#v", name)
	}
	ordinal, _ := instance.FindField(color.PropertyNamed("ordinal"))
	if ordinal.(*runtime.Primitive).Val != int32(1) {
		t.Fatalf("ordinal = %#v", ordinal)
	}
	rgb, _ := instance.FindField(color.PropertyNamed("rgb"))
	if rgb.(*runtime.Primitive).Val != int32(0x00FF00) {
		t.Fatalf("rgb = %#v", rgb)
	}

	again, err := session.EvaluateValue(ir.NewGetEnumEntry(green))
	if err != nil {
		t.Fatalf("EvaluateValue returned error: %v", err)
	}
	if again != value {
		t.Fatal("entries must be memoized per session")
	}
}

func TestEnumValuesIdentityStable(t *testing.T) {
	m := newModule()
	color, _ := declareColorEnum(m)
	values := color.FunctionNamed("values")

	session := New(m)
	first, err := session.EvaluateValue(ir.NewCall(values, nil))
	if err != nil {
		t.Fatalf("EvaluateValue returned error: %v", err)
	}
	second, err := session.EvaluateValue(ir.NewCall(values, nil))
	if err != nil {
		t.Fatalf("EvaluateValue returned error: %v", err)
	}
	if first != second {
		t.Fatal("values() must return the memoized array")
	}
	elements, err := first.(*runtime.Primitive).ArrayElements()
	if err != nil {
		t.Fatalf("ArrayElements returned error: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("len = %d, want 2", len(elements))
	}
}

func TestEnumValueOf(t *testing.T) {
	m := newModule()
	b := m.Builtins
	color, _ := declareColorEnum(m)
	valueOf := color.FunctionNamed("valueOf")

	program := ir.NewGetField(
		ir.NewCall(valueOf, nil, b.StringConst("RED")),
		color.PropertyNamed("ordinal"),
	)
	if got := evalScalar(t, m, program); got != int32(0) {
		t.Fatalf("ordinal = %v, want 0", got)
	}

	exc := evalRaises(t, m, ir.NewCall(valueOf, nil, b.StringConst("PINK")))
	wrapped := exc.Wrapped.(*runtime.Composite)
	if wrapped.Class != b.IllegalArgumentException {
		t.Fatalf("class = %s, want IllegalArgumentException", wrapped.Class.Name)
	}
	message, _ := wrapped.FindField(b.ThrowableMessage)
	if message.(*runtime.Primitive).Val != "No enum constant Color.PINK" {
		t.Fatalf("message = %#v", message)
	}
}

func TestTypeChecksAndCasts(t *testing.T) {
	m := newModule()
	b := m.Builtins
	_, derived, _, _ := declareShape(m)
	newDerived := func() ir.Expression {
		return ir.NewConstructorCall(derived.PrimaryConstructor())
	}

	cases := []struct {
		name string
		expr ir.Expression
		want any
	}{
		{
			name: "is on matching primitive",
			expr: ir.NewTypeOperator(ir.OperatorInstanceOf, b.IntConst(1), b.IntType),
			want: true,
		},
		{
			name: "is on mismatched primitive",
			expr: ir.NewTypeOperator(ir.OperatorInstanceOf, b.IntConst(1), b.StringType),
			want: false,
		},
		{
			name: "negated is",
			expr: ir.NewTypeOperator(ir.OperatorNotInstanceOf, b.IntConst(1), b.StringType),
			want: true,
		},
		{
			name: "null is nullable target",
			expr: ir.NewTypeOperator(ir.OperatorInstanceOf, b.NullConst(), b.StringType.AsNullable()),
			want: true,
		},
		{
			name: "null is non-null target",
			expr: ir.NewTypeOperator(ir.OperatorInstanceOf, b.NullConst(), b.StringType),
			want: false,
		},
		{
			name: "derived is base",
			expr: ir.NewTypeOperator(ir.OperatorInstanceOf, newDerived(), ir.ClassType(derived.Super)),
			want: true,
		},
		{
			name: "successful cast passes value through",
			expr: ir.NewTypeOperator(ir.OperatorCast, b.IntConst(7), b.IntType),
			want: int32(7),
		},
		{
			name: "safe cast miss yields null",
			expr: ir.NewTypeOperator(ir.OperatorSafeCast, b.IntConst(7), b.StringType),
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := evalScalar(t, m, tc.expr); got != tc.want {
				t.Fatalf("got %v (%T), want %v", got, got, tc.want)
			}
		})
	}

	t.Run("failed cast raises", func(t *testing.T) {
		exc := evalRaises(t, m, ir.NewTypeOperator(ir.OperatorCast, b.IntConst(7), b.StringType))
		wrapped := exc.Wrapped.(*runtime.Composite)
		if wrapped.Class != b.ClassCastException {
			t.Fatalf("class = %s, want ClassCastException", wrapped.Class.Name)
		}
		message, _ := wrapped.FindField(b.ThrowableMessage)
		if message.(*runtime.Primitive).Val != "Int cannot be cast to String" {
			t.Fatalf("message = %#v", message)
		}
	})
}

func TestVarargCollectsAndSpreads(t *testing.T) {
	m := newModule()
	b := m.Builtins

	inner := ir.NewVararg(b.IntType, b.IntConst(2), b.IntConst(3))
	outer := ir.NewVararg(b.IntType,
		b.IntConst(1),
		ir.NewSpread(inner),
		b.IntConst(4),
	)
	value := evalValue(t, m, outer)
	elements, err := value.(*runtime.Primitive).ArrayElements()
	if err != nil {
		t.Fatalf("ArrayElements returned error: %v", err)
	}
	if len(elements) != 4 {
		t.Fatalf("len = %d, want 4", len(elements))
	}
	for idx, want := range []int32{1, 2, 3, 4} {
		if got := elements[idx].(*runtime.Primitive).Val; got != want {
			t.Fatalf("elements[%d] = %v, want %d", idx, got, want)
		}
	}
}

func TestStringConcatUsesToStringOverride(t *testing.T) {
	m := newModule()
	b := m.Builtins

	point := ir.NewClass("Point", ir.ClassKindClass, b.Any)
	x := ir.NewProperty(point, "x", b.IntType, nil)
	y := ir.NewProperty(point, "y", b.IntType, nil)
	ctor := ir.NewConstructor(point, true,
		ir.NewValueParameter("x", b.IntType),
		ir.NewValueParameter("y", b.IntType))
	ctor.Body = ir.NewBlock(
		ir.NewSetField(ir.This(), x, ir.NewGetValue("x")),
		ir.NewSetField(ir.This(), y, ir.NewGetValue("y")),
	)
	toString := ir.NewFunction("toString", b.StringType)
	point.AddFunction(toString)
	toString.Body = ir.NewBlock(ir.NewStringConcat(
		b.StringConst("("),
		ir.NewGetField(ir.This(), x),
		b.StringConst(", "),
		ir.NewGetField(ir.This(), y),
		b.StringConst(")"),
	))
	m.AddClass(point)

	program := ir.NewStringConcat(
		b.StringConst("p="),
		ir.NewConstructorCall(ctor, b.IntConst(1), b.IntConst(2)),
	)
	if got := evalScalar(t, m, program); got != "p=(1, 2)" {
		t.Fatalf("got %v, want p=(1, 2)", got)
	}
}

func TestInnerClassReachesEnclosingFields(t *testing.T) {
	m := newModule()
	b := m.Builtins

	outer := ir.NewClass("Outer", ir.ClassKindClass, b.Any)
	tag := ir.NewProperty(outer, "tag", b.StringType, nil)
	outerCtor := ir.NewConstructor(outer, true, ir.NewValueParameter("tag", b.StringType))
	outerCtor.Body = ir.NewBlock(ir.NewSetField(ir.This(), tag, ir.NewGetValue("tag")))
	m.AddClass(outer)

	inner := ir.NewClass("Inner", ir.ClassKindClass, b.Any)
	innerCtor := ir.NewConstructor(inner, true)
	m.AddClass(inner)

	construct := ir.NewConstructorCall(innerCtor)
	construct.Outer = ir.NewGetValue("o")

	program := ir.NewBlock(
		ir.NewVariable("o", ir.ClassType(outer), ir.NewConstructorCall(outerCtor, b.StringConst("home"))),
		ir.NewVariable("i", ir.ClassType(inner), construct),
		// A field the inner segment does not hold resolves through the
		// enclosing instance, for reads and writes alike.
		ir.NewVariable("before", b.StringType, ir.NewGetField(ir.NewGetValue("i"), tag)),
		ir.NewSetField(ir.NewGetValue("i"), tag, b.StringConst("away")),
		ir.NewStringConcat(
			ir.NewGetValue("before"),
			b.StringConst("/"),
			ir.NewGetField(ir.NewGetValue("o"), tag),
		),
	)
	if got := evalScalar(t, m, program); got != "home/away" {
		t.Fatalf("got %v, want home/away", got)
	}
}

func TestHashCodeUsesRenderedForm(t *testing.T) {
	m := newModule()
	b := m.Builtins

	badge := ir.NewClass("Badge", ir.ClassKindClass, b.Any)
	ctor := ir.NewConstructor(badge, true)
	toString := ir.NewFunction("toString", b.StringType)
	badge.AddFunction(toString)
	toString.Body = ir.NewBlock(b.StringConst("badge#7"))
	m.AddClass(badge)

	var want int32
	for _, r := range "badge#7" {
		want = 31*want + r
	}
	got := evalScalar(t, m, ir.NewOpCall("hashCode", ir.NewConstructorCall(ctor)))
	if got != want {
		t.Fatalf("hashCode = %v, want %d", got, want)
	}
}

func TestFunctionDefaultSeesEarlierParameter(t *testing.T) {
	m := newModule()
	b := m.Builtins
	aParam := ir.NewValueParameter("a", b.IntType)
	bParam := ir.NewValueParameter("b", b.IntType)
	bParam.Default = ir.NewOpCall("plus", ir.NewGetValue("a"), b.IntConst(1))
	f := ir.NewFunction("mulNext", b.IntType, aParam, bParam)
	m.AddFunction(f)
	f.Body = ir.NewBlock(ir.NewOpCall("times", ir.NewGetValue("a"), ir.NewGetValue("b")))

	if got := evalScalar(t, m, ir.NewCall(f, nil, b.IntConst(4))); got != int32(20) {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestNullReceiverFieldAccessRaisesNPE(t *testing.T) {
	m := newModule()
	b := m.Builtins
	_, _, _, tag := declareShape(m)

	program := ir.NewGetField(b.NullConst(), tag)
	exc := evalRaises(t, m, program)
	wrapped := exc.Wrapped.(*runtime.Composite)
	if wrapped.Class != b.NullPointerException {
		t.Fatalf("class = %s, want NullPointerException", wrapped.Class.Name)
	}
}
