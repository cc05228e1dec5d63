package ir

// Builtins is the fixed class universe every module evaluates against: the
// "Any" root, the primitive classes, the throwable hierarchy, and the
// allow-listed natively-backed classes. One Builtins instance is shared by a
// module and every session evaluating it; it is immutable after construction.
type Builtins struct {
	Any     *Class
	Nothing *Class
	Unit    *Class

	Boolean *Class
	Char    *Class
	Byte    *Class
	Short   *Class
	Int     *Class
	Long    *Class
	Float   *Class
	Double  *Class
	String  *Class
	Array   *Class

	Throwable                 *Class
	Error                     *Class
	Exception                 *Class
	RuntimeException          *Class
	ClassCastException        *Class
	ArithmeticException       *Class
	IllegalArgumentException  *Class
	IndexOutOfBoundsException *Class
	NullPointerException      *Class
	AssertionError            *Class

	StringBuilder *Class
	Regex         *Class

	AnyType     Type
	AnyNType    Type
	NothingType Type
	UnitType    Type
	BooleanType Type
	CharType    Type
	ByteType    Type
	ShortType   Type
	IntType     Type
	LongType    Type
	FloatType   Type
	DoubleType  Type
	StringType  Type

	// ThrowableMessage is the message field symbol shared by the whole
	// throwable hierarchy.
	ThrowableMessage *Property
}

// NewBuiltins constructs the built-in class set. The throwable constructors
// carry ordinary IR bodies (field stores and super delegation), so user
// subclasses work through the same constructor protocol as everything else.
func NewBuiltins() *Builtins {
	b := &Builtins{}

	b.Any = NewClass("Any", ClassKindClass, nil)
	b.Nothing = NewClass("Nothing", ClassKindClass, b.Any)
	b.Unit = NewClass("Unit", ClassKindObject, b.Any)

	b.Boolean = NewClass("Boolean", ClassKindClass, b.Any)
	b.Char = NewClass("Char", ClassKindClass, b.Any)
	b.Byte = NewClass("Byte", ClassKindClass, b.Any)
	b.Short = NewClass("Short", ClassKindClass, b.Any)
	b.Int = NewClass("Int", ClassKindClass, b.Any)
	b.Long = NewClass("Long", ClassKindClass, b.Any)
	b.Float = NewClass("Float", ClassKindClass, b.Any)
	b.Double = NewClass("Double", ClassKindClass, b.Any)
	b.String = NewClass("String", ClassKindClass, b.Any)
	b.Array = NewClass("Array", ClassKindClass, b.Any)
	b.Array.TypeParams = []*TypeParameter{{elem: newElem(ElementTypeParameter), Name: "T"}}

	b.AnyType = ClassType(b.Any)
	b.AnyNType = ClassType(b.Any).AsNullable()
	b.NothingType = ClassType(b.Nothing)
	b.UnitType = ClassType(b.Unit)
	b.BooleanType = ClassType(b.Boolean)
	b.CharType = ClassType(b.Char)
	b.ByteType = ClassType(b.Byte)
	b.ShortType = ClassType(b.Short)
	b.IntType = ClassType(b.Int)
	b.LongType = ClassType(b.Long)
	b.FloatType = ClassType(b.Float)
	b.DoubleType = ClassType(b.Double)
	b.StringType = ClassType(b.String)

	b.Throwable = NewClass("Throwable", ClassKindClass, b.Any)
	stringN := b.StringType.AsNullable()
	b.ThrowableMessage = NewProperty(b.Throwable, "message", stringN, nil)

	throwableCtor := NewConstructor(b.Throwable, true, messageParam(stringN))
	throwableCtor.Body = NewBlock(
		NewSetField(NewGetValue("this"), b.ThrowableMessage, NewGetValue("message")),
	)

	b.Error = b.newThrowableSubclass("Error", b.Throwable, stringN)
	b.Exception = b.newThrowableSubclass("Exception", b.Throwable, stringN)
	b.RuntimeException = b.newThrowableSubclass("RuntimeException", b.Exception, stringN)
	b.ClassCastException = b.newThrowableSubclass("ClassCastException", b.RuntimeException, stringN)
	b.ArithmeticException = b.newThrowableSubclass("ArithmeticException", b.RuntimeException, stringN)
	b.IllegalArgumentException = b.newThrowableSubclass("IllegalArgumentException", b.RuntimeException, stringN)
	b.IndexOutOfBoundsException = b.newThrowableSubclass("IndexOutOfBoundsException", b.RuntimeException, stringN)
	b.NullPointerException = b.newThrowableSubclass("NullPointerException", b.RuntimeException, stringN)
	b.AssertionError = b.newThrowableSubclass("AssertionError", b.Error, stringN)

	b.StringBuilder = b.newNativeClass("StringBuilder")
	NewConstructor(b.StringBuilder, true).IsNative = true
	sbType := ClassType(b.StringBuilder)
	b.declareNative(b.StringBuilder, "append", sbType, NewValueParameter("value", b.AnyNType))
	b.declareNative(b.StringBuilder, "toString", b.StringType)
	b.declareNative(b.StringBuilder, "length", b.IntType)
	b.declareNative(b.StringBuilder, "reverse", sbType)

	b.Regex = b.newNativeClass("Regex")
	NewConstructor(b.Regex, true, NewValueParameter("pattern", b.StringType)).IsNative = true
	b.declareNative(b.Regex, "matches", b.BooleanType, NewValueParameter("input", b.StringType))
	b.declareNative(b.Regex, "replace", b.StringType,
		NewValueParameter("input", b.StringType),
		NewValueParameter("replacement", b.StringType))

	return b
}

func (b *Builtins) newThrowableSubclass(name string, super *Class, stringN Type) *Class {
	class := NewClass(name, ClassKindClass, super)
	superCtor := super.PrimaryConstructor()
	ctor := NewConstructor(class, true, messageParam(stringN))
	ctor.Delegate = NewDelegatingConstructorCall(superCtor, NewGetValue("message"))
	return class
}

// newNativeClass declares a host-backed class shell; callers declare the
// constructor themselves, since its parameter list is part of the allow-list
// contract.
func (b *Builtins) newNativeClass(name string) *Class {
	class := NewClass(name, ClassKindClass, b.Any)
	class.IsNative = true
	return class
}

func (b *Builtins) declareNative(class *Class, name string, ret Type, params ...*ValueParameter) *Function {
	fn := NewFunction(name, ret, params...)
	fn.Parent = class
	fn.IsNative = true
	class.Functions = append(class.Functions, fn)
	return fn
}

func messageParam(stringN Type) *ValueParameter {
	param := NewValueParameter("message", stringN)
	param.Default = NewConst(nil, stringN)
	return param
}

// IsPrimitiveClass reports whether the class is one of the scalar built-ins
// represented by Primitive values.
func (b *Builtins) IsPrimitiveClass(class *Class) bool {
	switch class {
	case b.Boolean, b.Char, b.Byte, b.Short, b.Int, b.Long, b.Float, b.Double, b.String, b.Unit, b.Nothing, b.Array:
		return true
	default:
		return false
	}
}

// ClassForName resolves a built-in class by simple name; used by the native
// bridge's exception-class matching and by fixture decoding.
func (b *Builtins) ClassForName(name string) *Class {
	switch name {
	case "Any":
		return b.Any
	case "Nothing":
		return b.Nothing
	case "Unit":
		return b.Unit
	case "Boolean":
		return b.Boolean
	case "Char":
		return b.Char
	case "Byte":
		return b.Byte
	case "Short":
		return b.Short
	case "Int":
		return b.Int
	case "Long":
		return b.Long
	case "Float":
		return b.Float
	case "Double":
		return b.Double
	case "String":
		return b.String
	case "Array":
		return b.Array
	case "Throwable":
		return b.Throwable
	case "Error":
		return b.Error
	case "Exception":
		return b.Exception
	case "RuntimeException":
		return b.RuntimeException
	case "ClassCastException":
		return b.ClassCastException
	case "ArithmeticException":
		return b.ArithmeticException
	case "IllegalArgumentException":
		return b.IllegalArgumentException
	case "IndexOutOfBoundsException":
		return b.IndexOutOfBoundsException
	case "NullPointerException":
		return b.NullPointerException
	case "AssertionError":
		return b.AssertionError
	case "StringBuilder":
		return b.StringBuilder
	case "Regex":
		return b.Regex
	default:
		return nil
	}
}
