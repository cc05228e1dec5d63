package interpreter

import (
	"errors"
	"fmt"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// Control-flow signals travel through the evaluator's error return. Normal
// continuation is a nil error; every other outcome is one of the signal types
// below, propagated upward unchanged until the construct that owns the
// matching identity consumes it: loops catch break/continue, functions catch
// return, when-branch scans catch breakWhen, try/catch catches raise.

type returnSignal struct {
	target *ir.Function
	value  runtime.Value
}

func (s returnSignal) Error() string { return "return" }

type breakSignal struct {
	label string
}

func (s breakSignal) Error() string {
	if s.label != "" {
		return fmt.Sprintf("break@%s", s.label)
	}
	return "break"
}

type continueSignal struct {
	label string
}

func (s continueSignal) Error() string {
	if s.label != "" {
		return fmt.Sprintf("continue@%s", s.label)
	}
	return "continue"
}

type breakWhenSignal struct {
	value runtime.Value
}

func (s breakWhenSignal) Error() string { return "break-when" }

type raiseSignal struct {
	exception *runtime.Exception
}

func (s raiseSignal) Error() string { return "exception" }

// matchesLoop reports whether a break/continue label addresses the loop with
// the given label; an empty signal label addresses the innermost loop.
func matchesLoop(signalLabel, loopLabel string) bool {
	return signalLabel == "" || signalLabel == loopLabel
}

// EnvironmentFault is the non-recoverable internal interpreter failure:
// missing method resolution, missing body, unsupported node kind. It indicates
// an incomplete operator table, native allow-list, or IR lowering rather than
// a user-level error, and unwinds past all interpreter frames.
type EnvironmentFault struct {
	Reason string
}

func (e EnvironmentFault) Error() string { return "interpreter: " + e.Reason }

func environmentFaultf(format string, args ...any) error {
	return EnvironmentFault{Reason: fmt.Sprintf(format, args...)}
}

// isFatal reports whether the error aborts the whole session: resource
// exhaustion and environment faults are never interceptable, not even by a
// finally block.
func isFatal(err error) bool {
	var (
		envFault EnvironmentFault
		overflow runtime.StackOverflowError
		timeout  runtime.TimeoutError
		missing  runtime.UndefinedVariableError
	)
	return errors.As(err, &envFault) ||
		errors.As(err, &overflow) ||
		errors.As(err, &timeout) ||
		errors.As(err, &missing)
}
