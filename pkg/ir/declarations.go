package ir

import "strings"

// Module is the enclosing declaration graph handed to the interpreter. It is
// read-only for the whole evaluation session.
type Module struct {
	elem

	Name      string
	Builtins  *Builtins
	Classes   []*Class
	Functions []*Function
}

// NewModule builds a module fragment over the given built-in class set.
func NewModule(name string, builtins *Builtins) *Module {
	if builtins == nil {
		builtins = NewBuiltins()
	}
	return &Module{elem: newElem(ElementModule), Name: name, Builtins: builtins}
}

// AddClass appends a class declaration to the module.
func (m *Module) AddClass(class *Class) *Class {
	m.Classes = append(m.Classes, class)
	return class
}

// AddFunction appends a top-level function declaration to the module.
func (m *Module) AddFunction(fn *Function) *Function {
	m.Functions = append(m.Functions, fn)
	return fn
}

// ClassKind distinguishes the declaration flavours sharing the Class shape.
type ClassKind string

const (
	ClassKindClass     ClassKind = "class"
	ClassKindInterface ClassKind = "interface"
	ClassKindObject    ClassKind = "object"
	ClassKindEnum      ClassKind = "enum"
)

// Class is a class/interface/object/enum declaration. Identity is pointer
// identity; the pointer is the declaration's symbol.
type Class struct {
	elem
	declarationMarker

	Name       string
	Kind       ClassKind
	Super      *Class
	Interfaces []*Class
	Outer      *Class
	IsInner    bool
	IsNative   bool

	TypeParams   []*TypeParameter
	Constructors []*Constructor
	Functions    []*Function
	Properties   []*Property
	Inits        []*AnonymousInitializer
	Entries      []*EnumEntry
}

// NewClass builds a class declaration chained under the given superclass.
func NewClass(name string, kind ClassKind, super *Class) *Class {
	return &Class{elem: newElem(ElementClass), Name: name, Kind: kind, Super: super}
}

// IsSubclassOf walks the superclass chain and implemented interfaces.
func (c *Class) IsSubclassOf(other *Class) bool {
	if other == nil {
		return true
	}
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
		for _, iface := range cur.Interfaces {
			if iface.IsSubclassOf(other) {
				return true
			}
		}
	}
	return false
}

// PrimaryConstructor returns the primary constructor, or the sole constructor
// when only one is declared.
func (c *Class) PrimaryConstructor() *Constructor {
	for _, ctor := range c.Constructors {
		if ctor.IsPrimary {
			return ctor
		}
	}
	if len(c.Constructors) == 1 {
		return c.Constructors[0]
	}
	return nil
}

// PropertyNamed finds a property declared directly on this class.
func (c *Class) PropertyNamed(name string) *Property {
	for _, prop := range c.Properties {
		if prop.Name == name {
			return prop
		}
	}
	return nil
}

// FunctionNamed finds a function declared directly on this class.
func (c *Class) FunctionNamed(name string) *Function {
	for _, fn := range c.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// EntryNamed finds an enum entry by constant name.
func (c *Class) EntryNamed(name string) *EnumEntry {
	for _, entry := range c.Entries {
		if entry.Name == name {
			return entry
		}
	}
	return nil
}

// Function is a function declaration. A nil Body means the function has no IR
// body: the interpreter resolves it through the body-substitution map, the
// native bridge, or the built-in operator table, in that order.
type Function struct {
	elem
	declarationMarker

	Name       string
	Parent     *Class
	Params     []*ValueParameter
	Return     Type
	Body       *Block
	IsNative   bool
	Intrinsic  string
	Overridden []*Function
	IsLocal    bool
}

// NewFunction builds a function declaration.
func NewFunction(name string, ret Type, params ...*ValueParameter) *Function {
	return &Function{elem: newElem(ElementFunction), Name: name, Return: ret, Params: params}
}

// QualifiedName renders "Class.name" for members and "name" for top-level
// functions; used in call-stack traces.
func (f *Function) QualifiedName() string {
	if f.Parent != nil {
		return f.Parent.Name + "." + f.Name
	}
	return f.Name
}

// Signature renders the stable identifier used by the body-substitution map:
// the qualified name followed by the declared parameter type names.
func (f *Function) Signature() string {
	var b strings.Builder
	b.WriteString(f.QualifiedName())
	b.WriteByte('(')
	for idx, param := range f.Params {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.Type.String())
	}
	b.WriteByte(')')
	return b.String()
}

// OverridesOrIs reports whether f is other or transitively overrides it.
func (f *Function) OverridesOrIs(other *Function) bool {
	if f == other {
		return true
	}
	for _, overridden := range f.Overridden {
		if overridden.OverridesOrIs(other) {
			return true
		}
	}
	return false
}

// Constructor builds one layer of a composite instance. Delegate points at the
// superclass (or sibling) constructor evaluated before this layer's
// initializers run.
type Constructor struct {
	elem
	declarationMarker

	Parent    *Class
	Params    []*ValueParameter
	Delegate  *DelegatingConstructorCall
	Body      *Block
	IsPrimary bool
	IsNative  bool
}

// NewConstructor builds a constructor declaration for the given class.
func NewConstructor(parent *Class, primary bool, params ...*ValueParameter) *Constructor {
	ctor := &Constructor{elem: newElem(ElementConstructor), Parent: parent, IsPrimary: primary, Params: params}
	parent.Constructors = append(parent.Constructors, ctor)
	return ctor
}

// QualifiedName renders "Class.<init>"; used in call-stack traces.
func (c *Constructor) QualifiedName() string {
	return c.Parent.Name + ".<init>"
}

// Property is a member property. The pointer is the field symbol keying the
// composite field tables.
type Property struct {
	elem
	declarationMarker

	Name        string
	Type        Type
	Initializer Expression
	Parent      *Class
	IsVar       bool
}

// NewProperty declares a property on the given class.
func NewProperty(parent *Class, name string, typ Type, init Expression) *Property {
	prop := &Property{elem: newElem(ElementProperty), Name: name, Type: typ, Initializer: init, Parent: parent}
	parent.Properties = append(parent.Properties, prop)
	return prop
}

// EnumEntry is one constant of an enum class.
type EnumEntry struct {
	elem
	declarationMarker

	Name    string
	Ordinal int
	Parent  *Class
	Call    *ConstructorCall
}

// NewEnumEntry appends an entry to an enum class, assigning the next ordinal.
func NewEnumEntry(parent *Class, name string, call *ConstructorCall) *EnumEntry {
	entry := &EnumEntry{
		elem:    newElem(ElementEnumEntry),
		Name:    name,
		Ordinal: len(parent.Entries),
		Parent:  parent,
		Call:    call,
	}
	parent.Entries = append(parent.Entries, entry)
	return entry
}

// AnonymousInitializer is an init-block run during construction of its layer.
type AnonymousInitializer struct {
	elem
	declarationMarker

	Body *Block
}

// NewAnonymousInitializer appends an init block to the class.
func NewAnonymousInitializer(parent *Class, body *Block) *AnonymousInitializer {
	init := &AnonymousInitializer{elem: newElem(ElementAnonymousInit), Body: body}
	parent.Inits = append(parent.Inits, init)
	return init
}

// ValueParameter is a declared function/constructor parameter.
type ValueParameter struct {
	elem
	declarationMarker

	Name     string
	Type     Type
	Default  Expression
	IsVararg bool
}

// NewValueParameter builds a parameter declaration.
func NewValueParameter(name string, typ Type) *ValueParameter {
	return &ValueParameter{elem: newElem(ElementValueParameter), Name: name, Type: typ}
}

// TypeParameter is a declared type parameter; Bound defaults to Any?.
type TypeParameter struct {
	elem
	declarationMarker

	Name  string
	Bound Type
}

// Variable is a local variable declaration statement.
type Variable struct {
	elem
	statementMarker

	Name  string
	Type  Type
	Init  Expression
	IsVar bool
}

// NewVariable builds a local variable declaration.
func NewVariable(name string, typ Type, init Expression) *Variable {
	return &Variable{elem: newElem(ElementVariable), Name: name, Type: typ, Init: init}
}
