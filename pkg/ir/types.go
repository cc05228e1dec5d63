package ir

import "strings"

// Type is a use-site reference to a class, optionally nullable and carrying
// type arguments. The zero Type (nil Class) stands for an unresolved/implicit
// type and is treated as Any by consumers.
type Type struct {
	Class    *Class
	Nullable bool
	Args     []Type
}

// ClassType builds a plain non-nullable type for the given class.
func ClassType(class *Class, args ...Type) Type {
	return Type{Class: class, Args: args}
}

// AsNullable returns the nullable counterpart of the type.
func (t Type) AsNullable() Type {
	t.Nullable = true
	return t
}

// IsNothing reports whether the type is the bottom type.
func (t Type) IsNothing() bool {
	return t.Class != nil && t.Class.Name == "Nothing"
}

// IsUnit reports whether the type is Unit.
func (t Type) IsUnit() bool {
	return t.Class != nil && t.Class.Name == "Unit"
}

// Name returns the simple class name, or "Any" for the zero type.
func (t Type) Name() string {
	if t.Class == nil {
		return "Any"
	}
	return t.Class.Name
}

func (t Type) String() string {
	var b strings.Builder
	b.WriteString(t.Name())
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for idx, arg := range t.Args {
			if idx > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.String())
		}
		b.WriteByte('>')
	}
	if t.Nullable {
		b.WriteByte('?')
	}
	return b.String()
}

// ElementType returns the first type argument (the element type of Array<T>),
// or the zero type when absent.
func (t Type) ElementType() Type {
	if len(t.Args) > 0 {
		return t.Args[0]
	}
	return Type{}
}
