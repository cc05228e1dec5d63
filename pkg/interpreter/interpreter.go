// Package interpreter evaluates a subset of the typed IR at compile time: it
// folds constant expressions, executes const-like initializers, and evaluates
// annotation arguments over an immutable declaration graph, without running a
// full virtual machine.
package interpreter

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

const (
	// DefaultMaxStackDepth bounds the number of active frames.
	DefaultMaxStackDepth = 10_000
	// DefaultMaxSteps bounds the number of IR nodes visited per session.
	DefaultMaxSteps = 500_000
)

// Config carries the per-session budgets and collaborators.
type Config struct {
	MaxStackDepth int
	MaxSteps      int
	// Yield, when set, is invoked once at the top of every dispatch step; it
	// exists for host-level scheduling fairness and carries no semantics.
	Yield func()
	// Bodies substitutes bodies for cross-module functions whose IR is not
	// locally present, keyed by ir.Function.Signature().
	Bodies map[string]*ir.Block
}

// Option mutates the session configuration.
type Option func(*Config)

// WithMaxStackDepth overrides the frame-depth budget.
func WithMaxStackDepth(depth int) Option {
	return func(c *Config) { c.MaxStackDepth = depth }
}

// WithMaxSteps overrides the step budget.
func WithMaxSteps(steps int) Option {
	return func(c *Config) { c.MaxSteps = steps }
}

// WithYield installs a cooperative yield hook.
func WithYield(yield func()) Option {
	return func(c *Config) { c.Yield = yield }
}

// WithBodies installs the body-substitution map.
func WithBodies(bodies map[string]*ir.Block) Option {
	return func(c *Config) { c.Bodies = bodies }
}

// Interpreter is one isolated evaluation session. It exclusively owns its call
// stack, memoization caches, and step counter; concurrent evaluations must use
// independent sessions.
type Interpreter struct {
	module    *ir.Module
	builtins  *ir.Builtins
	config    Config
	sessionID string

	stack   *runtime.CallStack
	ops     *operatorTable
	natives *nativeRegistry

	enumEntries map[*ir.EnumEntry]runtime.Value
	enumArrays  map[*ir.Class]runtime.Value
	singletons  map[*ir.Class]runtime.Value
}

// New builds a fresh session over the module's read-only declaration graph.
func New(module *ir.Module, opts ...Option) *Interpreter {
	config := Config{
		MaxStackDepth: DefaultMaxStackDepth,
		MaxSteps:      DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(&config)
	}
	builtins := module.Builtins
	return &Interpreter{
		module:      module,
		builtins:    builtins,
		config:      config,
		sessionID:   uuid.NewString(),
		stack:       runtime.NewCallStack(config.MaxStackDepth, config.MaxSteps),
		ops:         newOperatorTable(builtins),
		natives:     newNativeRegistry(builtins),
		enumEntries: make(map[*ir.EnumEntry]runtime.Value),
		enumArrays:  make(map[*ir.Class]runtime.Value),
		singletons:  make(map[*ir.Class]runtime.Value),
	}
}

// SessionID identifies this session in rendered failure artifacts.
func (i *Interpreter) SessionID() string { return i.sessionID }

// Steps reports the step-budget consumption so far.
func (i *Interpreter) Steps() int { return i.stack.Steps() }

// Evaluate runs the expression to completion and produces either a
// literal-equivalent constant expression or an error-expression carrying the
// rendered failure. Environment and resource-exhaustion faults are returned
// as Go errors and abort the session; they are never converted to a value.
func (i *Interpreter) Evaluate(expr ir.Expression) (ir.Expression, error) {
	value, err := i.EvaluateValue(expr)
	if err != nil {
		var raise raiseSignal
		if errors.As(err, &raise) {
			return ir.NewErrorExpression(i.renderException(raise.exception)), nil
		}
		return nil, err
	}
	return i.valueToConst(value)
}

// EvaluateValue runs the expression and returns the raw runtime value, with
// uncaught program-level exceptions reported as a raiseSignal error.
func (i *Interpreter) EvaluateValue(expr ir.Expression) (runtime.Value, error) {
	frame, err := i.stack.NewFrame(nil, false)
	if err != nil {
		return nil, err
	}
	defer i.stack.DropFrame()
	value, err := i.evaluateExpression(expr, frame)
	if err != nil {
		if isProgramRaise(err) || isFatal(err) {
			return nil, err
		}
		// Return/break/continue must have been consumed before the top.
		return nil, environmentFaultf("control-flow signal %q escaped evaluation", err.Error())
	}
	return value, nil
}

func isProgramRaise(err error) bool {
	var raise raiseSignal
	return errors.As(err, &raise)
}

// withFrame pushes a frame for the duration of fn, guaranteeing the pop on
// every exit path.
func (i *Interpreter) withFrame(bindings map[string]runtime.Value, subFrame bool, name string, fn func(*runtime.Frame) (runtime.Value, error)) (runtime.Value, error) {
	frame, err := i.stack.NewFrame(bindings, subFrame)
	if err != nil {
		return nil, err
	}
	if name != "" {
		i.stack.SetFrameName(name)
	}
	defer i.stack.DropFrame()
	return fn(frame)
}

func (i *Interpreter) unitValue() runtime.Value {
	return runtime.NewPrimitive(nil, i.builtins.UnitType)
}

func (i *Interpreter) nullValue(typ ir.Type) runtime.Value {
	return runtime.NewPrimitive(nil, typ.AsNullable())
}

// valueToConst converts the final value back into IR-literal form.
func (i *Interpreter) valueToConst(value runtime.Value) (ir.Expression, error) {
	prim, ok := value.(*runtime.Primitive)
	if !ok {
		return nil, environmentFaultf("evaluation result of kind %s is not a compile-time constant", value.Kind())
	}
	switch prim.Val.(type) {
	case nil, bool, int8, int16, int32, int64, float32, float64, string:
		return ir.NewConst(prim.Val, prim.Type), nil
	default:
		return nil, environmentFaultf("evaluation result %T is not a compile-time constant", prim.Val)
	}
}
