package ir

// ElementKind identifies the syntactic/semantic category of an IR element.
type ElementKind string

const (
	ElementModule            ElementKind = "Module"
	ElementClass             ElementKind = "Class"
	ElementFunction          ElementKind = "Function"
	ElementConstructor       ElementKind = "Constructor"
	ElementProperty          ElementKind = "Property"
	ElementEnumEntry         ElementKind = "EnumEntry"
	ElementAnonymousInit     ElementKind = "AnonymousInitializer"
	ElementValueParameter    ElementKind = "ValueParameter"
	ElementTypeParameter     ElementKind = "TypeParameter"
	ElementVariable          ElementKind = "Variable"
	ElementConst             ElementKind = "Const"
	ElementGetValue          ElementKind = "GetValue"
	ElementSetValue          ElementKind = "SetValue"
	ElementGetField          ElementKind = "GetField"
	ElementSetField          ElementKind = "SetField"
	ElementCall              ElementKind = "Call"
	ElementConstructorCall   ElementKind = "ConstructorCall"
	ElementDelegatingCall    ElementKind = "DelegatingConstructorCall"
	ElementGetObject         ElementKind = "GetObject"
	ElementGetEnumEntry      ElementKind = "GetEnumEntry"
	ElementBlock             ElementKind = "Block"
	ElementWhen              ElementKind = "When"
	ElementBranch            ElementKind = "Branch"
	ElementWhile             ElementKind = "While"
	ElementDoWhile           ElementKind = "DoWhile"
	ElementBreak             ElementKind = "Break"
	ElementContinue          ElementKind = "Continue"
	ElementReturn            ElementKind = "Return"
	ElementThrow             ElementKind = "Throw"
	ElementTry               ElementKind = "Try"
	ElementCatch             ElementKind = "Catch"
	ElementTypeOperator      ElementKind = "TypeOperator"
	ElementStringConcat      ElementKind = "StringConcat"
	ElementVararg            ElementKind = "Vararg"
	ElementSpread            ElementKind = "Spread"
	ElementFunctionExpr      ElementKind = "FunctionExpression"
	ElementFunctionReference ElementKind = "FunctionReference"
	ElementErrorExpression   ElementKind = "ErrorExpression"
)

// Element is the shared behaviour for every node in the IR graph. The graph is
// immutable once built; the interpreter only reads it.
type Element interface {
	ElementKind() ElementKind
	isElement()
}

type elem struct {
	kind ElementKind
}

func newElem(kind ElementKind) elem { return elem{kind: kind} }

func (e elem) ElementKind() ElementKind { return e.kind }
func (elem) isElement()                 {}

// Marker interfaces.

type Expression interface {
	Element
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Element
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Declaration interface {
	Element
	declarationNode()
}

type declarationMarker struct{}

func (declarationMarker) declarationNode() {}
