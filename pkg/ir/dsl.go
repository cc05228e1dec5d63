package ir

// Constant helpers. Tests and fixtures build programs through these rather
// than spelling out NewConst with explicit types.

func (b *Builtins) BoolConst(v bool) *Const     { return NewConst(v, b.BooleanType) }
func (b *Builtins) CharConst(v rune) *Const     { return NewConst(v, b.CharType) }
func (b *Builtins) ByteConst(v int8) *Const     { return NewConst(v, b.ByteType) }
func (b *Builtins) ShortConst(v int16) *Const   { return NewConst(v, b.ShortType) }
func (b *Builtins) IntConst(v int32) *Const     { return NewConst(v, b.IntType) }
func (b *Builtins) LongConst(v int64) *Const    { return NewConst(v, b.LongType) }
func (b *Builtins) FloatConst(v float32) *Const { return NewConst(v, b.FloatType) }
func (b *Builtins) DoubleConst(v float64) *Const {
	return NewConst(v, b.DoubleType)
}
func (b *Builtins) StringConst(v string) *Const { return NewConst(v, b.StringType) }
func (b *Builtins) NullConst() *Const           { return NewConst(nil, b.AnyNType) }
func (b *Builtins) UnitConst() *Const           { return NewConst(nil, b.UnitType) }

// Else builds the catch-all branch of a When.
func (b *Builtins) Else(result Expression) *Branch {
	return NewBranch(b.BoolConst(true), result)
}

// NewOpCall builds a call that resolves purely through the built-in operator
// table: the function stub has no body, no parent, and no native binding.
func NewOpCall(name string, receiver Expression, args ...Expression) *Call {
	fn := &Function{elem: newElem(ElementFunction), Name: name}
	return NewCall(fn, receiver, args...)
}

// This reads the dispatch receiver binding of the current activation.
func This() *GetValue { return NewGetValue("this") }

// NewEnumClass declares an enum class with the implicit name/ordinal
// properties and the values/valueOf intrinsics.
func NewEnumClass(b *Builtins, name string) *Class {
	class := NewClass(name, ClassKindEnum, b.Any)
	NewProperty(class, "name", b.StringType, nil)
	NewProperty(class, "ordinal", b.IntType, nil)

	values := NewFunction("values", ClassType(b.Array, ClassType(class)))
	values.Parent = class
	values.Intrinsic = "enumValues"
	class.Functions = append(class.Functions, values)

	valueOf := NewFunction("valueOf", ClassType(class), NewValueParameter("value", b.StringType))
	valueOf.Parent = class
	valueOf.Intrinsic = "enumValueOf"
	class.Functions = append(class.Functions, valueOf)

	return class
}

// AddFunction declares a member function on the class.
func (c *Class) AddFunction(fn *Function) *Function {
	fn.Parent = c
	c.Functions = append(c.Functions, fn)
	return fn
}
