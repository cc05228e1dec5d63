package ir

// Const wraps a host-native scalar constant (bool, rune, integer widths,
// float32/float64, string, or nil for null constants) plus its declared type.
type Const struct {
	elem
	expressionMarker
	statementMarker

	Value any
	Type  Type
}

// NewConst builds a constant expression.
func NewConst(value any, typ Type) *Const {
	return &Const{elem: newElem(ElementConst), Value: value, Type: typ}
}

// GetValue reads a variable or parameter binding from the current frame chain.
type GetValue struct {
	elem
	expressionMarker
	statementMarker

	Name string
}

func NewGetValue(name string) *GetValue {
	return &GetValue{elem: newElem(ElementGetValue), Name: name}
}

// SetValue writes an existing variable binding.
type SetValue struct {
	elem
	expressionMarker
	statementMarker

	Name  string
	Value Expression
}

func NewSetValue(name string, value Expression) *SetValue {
	return &SetValue{elem: newElem(ElementSetValue), Name: name, Value: value}
}

// GetField reads a property slot from a composite receiver.
type GetField struct {
	elem
	expressionMarker
	statementMarker

	Receiver Expression
	Property *Property
}

func NewGetField(receiver Expression, property *Property) *GetField {
	return &GetField{elem: newElem(ElementGetField), Receiver: receiver, Property: property}
}

// SetField writes a property slot on a composite receiver.
type SetField struct {
	elem
	expressionMarker
	statementMarker

	Receiver Expression
	Property *Property
	Value    Expression
}

func NewSetField(receiver Expression, property *Property, value Expression) *SetField {
	return &SetField{elem: newElem(ElementSetField), Receiver: receiver, Property: property, Value: value}
}

// Call invokes a function. Receiver is nil for top-level calls. A nil entry in
// Args selects the parameter's default expression.
type Call struct {
	elem
	expressionMarker
	statementMarker

	Function *Function
	Receiver Expression
	Args     []Expression
	TypeArgs []Type
}

func NewCall(fn *Function, receiver Expression, args ...Expression) *Call {
	return &Call{elem: newElem(ElementCall), Function: fn, Receiver: receiver, Args: args}
}

// ConstructorCall instantiates a class. Outer supplies the enclosing instance
// for inner classes.
type ConstructorCall struct {
	elem
	expressionMarker
	statementMarker

	Ctor     *Constructor
	Args     []Expression
	TypeArgs []Type
	Outer    Expression
}

func NewConstructorCall(ctor *Constructor, args ...Expression) *ConstructorCall {
	return &ConstructorCall{elem: newElem(ElementConstructorCall), Ctor: ctor, Args: args}
}

// DelegatingConstructorCall is the super/this delegation evaluated before a
// constructor's own layer is initialized.
type DelegatingConstructorCall struct {
	elem
	expressionMarker
	statementMarker

	Ctor *Constructor
	Args []Expression
}

func NewDelegatingConstructorCall(ctor *Constructor, args ...Expression) *DelegatingConstructorCall {
	return &DelegatingConstructorCall{elem: newElem(ElementDelegatingCall), Ctor: ctor, Args: args}
}

// GetObject resolves the per-session singleton instance of an object class.
type GetObject struct {
	elem
	expressionMarker
	statementMarker

	Class *Class
}

func NewGetObject(class *Class) *GetObject {
	return &GetObject{elem: newElem(ElementGetObject), Class: class}
}

// GetEnumEntry resolves the per-session instance of an enum constant.
type GetEnumEntry struct {
	elem
	expressionMarker
	statementMarker

	Entry *EnumEntry
}

func NewGetEnumEntry(entry *EnumEntry) *GetEnumEntry {
	return &GetEnumEntry{elem: newElem(ElementGetEnumEntry), Entry: entry}
}

// Block is a statement sequence evaluated in a sub-frame; its value is the
// value of the final expression statement, or Unit.
type Block struct {
	elem
	expressionMarker
	statementMarker

	Statements []Statement
}

func NewBlock(statements ...Statement) *Block {
	return &Block{elem: newElem(ElementBlock), Statements: statements}
}

// When is a multi-branch conditional; the first branch whose condition holds
// produces the value. An else branch uses a constant-true condition.
type When struct {
	elem
	expressionMarker
	statementMarker

	Branches []*Branch
}

func NewWhen(branches ...*Branch) *When {
	return &When{elem: newElem(ElementWhen), Branches: branches}
}

// Branch pairs a condition with its result expression.
type Branch struct {
	elem

	Condition Expression
	Result    Expression
}

func NewBranch(condition, result Expression) *Branch {
	return &Branch{elem: newElem(ElementBranch), Condition: condition, Result: result}
}

// While is a pre-test loop.
type While struct {
	elem
	expressionMarker
	statementMarker

	Label     string
	Condition Expression
	Body      Expression
}

func NewWhile(label string, condition, body Expression) *While {
	return &While{elem: newElem(ElementWhile), Label: label, Condition: condition, Body: body}
}

// DoWhile is a post-test loop: the body runs once before the first check.
type DoWhile struct {
	elem
	expressionMarker
	statementMarker

	Label     string
	Condition Expression
	Body      Expression
}

func NewDoWhile(label string, condition, body Expression) *DoWhile {
	return &DoWhile{elem: newElem(ElementDoWhile), Label: label, Condition: condition, Body: body}
}

// Break exits the innermost loop, or the labelled one.
type Break struct {
	elem
	expressionMarker
	statementMarker

	Label string
}

func NewBreak(label string) *Break {
	return &Break{elem: newElem(ElementBreak), Label: label}
}

// Continue restarts the innermost loop, or the labelled one.
type Continue struct {
	elem
	expressionMarker
	statementMarker

	Label string
}

func NewContinue(label string) *Continue {
	return &Continue{elem: newElem(ElementContinue), Label: label}
}

// Return exits the target function with the given value.
type Return struct {
	elem
	expressionMarker
	statementMarker

	Target *Function
	Value  Expression
}

func NewReturn(target *Function, value Expression) *Return {
	return &Return{elem: newElem(ElementReturn), Target: target, Value: value}
}

// Throw raises its operand as an exception.
type Throw struct {
	elem
	expressionMarker
	statementMarker

	Value Expression
}

func NewThrow(value Expression) *Throw {
	return &Throw{elem: newElem(ElementThrow), Value: value}
}

// Try evaluates Body, matches exceptions against Catches in order, and always
// runs Finally on every exit path.
type Try struct {
	elem
	expressionMarker
	statementMarker

	Body    Expression
	Catches []*Catch
	Finally Expression
}

func NewTry(body Expression, catches []*Catch, finally Expression) *Try {
	return &Try{elem: newElem(ElementTry), Body: body, Catches: catches, Finally: finally}
}

// Catch declares a handler for exceptions assignable to the parameter's type.
type Catch struct {
	elem

	Parameter *Variable
	Body      Expression
}

func NewCatch(parameter *Variable, body Expression) *Catch {
	return &Catch{elem: newElem(ElementCatch), Parameter: parameter, Body: body}
}

// TypeOperatorKind enumerates the cast/check flavours.
type TypeOperatorKind string

const (
	OperatorCast          TypeOperatorKind = "as"
	OperatorSafeCast      TypeOperatorKind = "as?"
	OperatorInstanceOf    TypeOperatorKind = "is"
	OperatorNotInstanceOf TypeOperatorKind = "!is"
)

// TypeOperator applies a runtime cast or type check against Target.
type TypeOperator struct {
	elem
	expressionMarker
	statementMarker

	Operator TypeOperatorKind
	Argument Expression
	Target   Type
}

func NewTypeOperator(op TypeOperatorKind, argument Expression, target Type) *TypeOperator {
	return &TypeOperator{elem: newElem(ElementTypeOperator), Operator: op, Argument: argument, Target: target}
}

// StringConcat joins the string renderings of its operands.
type StringConcat struct {
	elem
	expressionMarker
	statementMarker

	Arguments []Expression
}

func NewStringConcat(arguments ...Expression) *StringConcat {
	return &StringConcat{elem: newElem(ElementStringConcat), Arguments: arguments}
}

// Vararg packs its elements into a typed array value. Elements are plain
// expressions or Spread wrappers.
type Vararg struct {
	elem
	expressionMarker
	statementMarker

	ElementType Type
	Elements    []Element
}

func NewVararg(elementType Type, elements ...Element) *Vararg {
	return &Vararg{elem: newElem(ElementVararg), ElementType: elementType, Elements: elements}
}

// Spread splices an array argument into the surrounding vararg.
type Spread struct {
	elem

	Expression Expression
}

func NewSpread(expression Expression) *Spread {
	return &Spread{elem: newElem(ElementSpread), Expression: expression}
}

// FunctionExpression is a lambda literal; evaluating it captures the visible
// frame bindings by value into a closure.
type FunctionExpression struct {
	elem
	expressionMarker
	statementMarker

	Function *Function
}

func NewFunctionExpression(fn *Function) *FunctionExpression {
	fn.IsLocal = true
	return &FunctionExpression{elem: newElem(ElementFunctionExpr), Function: fn}
}

// FunctionReference is a reference to a named function (::f).
type FunctionReference struct {
	elem
	expressionMarker
	statementMarker

	Function *Function
}

func NewFunctionReference(fn *Function) *FunctionReference {
	return &FunctionReference{elem: newElem(ElementFunctionReference), Function: fn}
}

// ErrorExpression is the failure artifact produced for an evaluation that
// raised an uncaught program-level exception; Description carries the rendered
// class name, message, and stack trace.
type ErrorExpression struct {
	elem
	expressionMarker
	statementMarker

	Description string
}

func NewErrorExpression(description string) *ErrorExpression {
	return &ErrorExpression{elem: newElem(ElementErrorExpression), Description: description}
}
