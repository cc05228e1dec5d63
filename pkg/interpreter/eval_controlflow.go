package interpreter

import (
	"errors"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// evaluateBlock runs the statements in a sub-frame sharing the enclosing
// visibility; the block's value is the value of its final statement, or Unit
// for an empty block.
func (i *Interpreter) evaluateBlock(node *ir.Block, frame *runtime.Frame) (runtime.Value, error) {
	return i.withFrame(nil, true, "", func(inner *runtime.Frame) (runtime.Value, error) {
		result := i.unitValue()
		for _, statement := range node.Statements {
			value, err := i.evaluateStatement(statement, inner)
			if err != nil {
				return nil, err
			}
			result = value
		}
		return result, nil
	})
}

// evaluateWhen scans the branches in declaration order. A taken branch posts
// its result through a breakWhen signal so nested when-expressions stay
// independent; exhausting the branches yields Unit.
func (i *Interpreter) evaluateWhen(node *ir.When, frame *runtime.Frame) (runtime.Value, error) {
	for _, branch := range node.Branches {
		err := i.evaluateBranch(branch, frame)
		if err == nil {
			continue
		}
		var taken breakWhenSignal
		if errors.As(err, &taken) {
			return taken.value, nil
		}
		return nil, err
	}
	return i.unitValue(), nil
}

// evaluateBranch returns nil when the condition does not hold, and a breakWhen
// signal carrying the result when it does.
func (i *Interpreter) evaluateBranch(branch *ir.Branch, frame *runtime.Frame) error {
	condition, err := i.evaluateExpression(branch.Condition, frame)
	if err != nil {
		return err
	}
	holds, err := i.truthOf(condition)
	if err != nil {
		return err
	}
	if !holds {
		return nil
	}
	result, err := i.evaluateExpression(branch.Result, frame)
	if err != nil {
		return err
	}
	return breakWhenSignal{value: result}
}

func (i *Interpreter) truthOf(value runtime.Value) (bool, error) {
	prim, ok := value.(*runtime.Primitive)
	if !ok {
		return false, environmentFaultf("condition is %s, want Boolean", value.Kind())
	}
	truth, ok := prim.Val.(bool)
	if !ok {
		return false, environmentFaultf("condition holds %T, want bool", prim.Val)
	}
	return truth, nil
}

func (i *Interpreter) evaluateWhile(node *ir.While, frame *runtime.Frame) (runtime.Value, error) {
	for {
		condition, err := i.evaluateExpression(node.Condition, frame)
		if err != nil {
			return nil, err
		}
		holds, err := i.truthOf(condition)
		if err != nil {
			return nil, err
		}
		if !holds {
			return i.unitValue(), nil
		}
		stop, err := i.runLoopBody(node.Body, node.Label, frame)
		if err != nil {
			return nil, err
		}
		if stop {
			return i.unitValue(), nil
		}
	}
}

func (i *Interpreter) evaluateDoWhile(node *ir.DoWhile, frame *runtime.Frame) (runtime.Value, error) {
	for {
		stop, err := i.runLoopBody(node.Body, node.Label, frame)
		if err != nil {
			return nil, err
		}
		if stop {
			return i.unitValue(), nil
		}
		condition, err := i.evaluateExpression(node.Condition, frame)
		if err != nil {
			return nil, err
		}
		holds, err := i.truthOf(condition)
		if err != nil {
			return nil, err
		}
		if !holds {
			return i.unitValue(), nil
		}
	}
}

// runLoopBody executes one iteration, consuming break/continue signals that
// address this loop. Labelled signals aimed further out propagate unchanged.
func (i *Interpreter) runLoopBody(body ir.Expression, label string, frame *runtime.Frame) (stop bool, err error) {
	if body == nil {
		return false, nil
	}
	_, err = i.evaluateExpression(body, frame)
	if err == nil {
		return false, nil
	}
	var brk breakSignal
	if errors.As(err, &brk) && matchesLoop(brk.label, label) {
		return true, nil
	}
	var cont continueSignal
	if errors.As(err, &cont) && matchesLoop(cont.label, label) {
		return false, nil
	}
	return false, err
}

func (i *Interpreter) evaluateThrow(node *ir.Throw, frame *runtime.Frame) (runtime.Value, error) {
	value, err := i.evaluateExpression(node.Value, frame)
	if err != nil {
		return nil, err
	}
	// Rethrowing an exception that already carries a trace keeps the original
	// throw site's trace.
	if exc, ok := value.(*runtime.Exception); ok {
		return nil, raiseSignal{exception: exc}
	}
	return nil, raiseSignal{exception: &runtime.Exception{Wrapped: value, Trace: i.stack.Trace()}}
}

// evaluateTry runs the body, matches a raised exception against the catch
// clauses in order, and runs the finally block on every exit path except a
// fatal fault. A normal or caught result, and the value carried by a return
// passing through, are deep-copied before finally runs so the finally block
// cannot mutate them; an abnormal signal raised inside finally replaces the
// pending outcome.
func (i *Interpreter) evaluateTry(node *ir.Try, frame *runtime.Frame) (runtime.Value, error) {
	result, err := i.evaluateExpression(node.Body, frame)

	if err != nil {
		var raise raiseSignal
		if errors.As(err, &raise) {
			handled, caught, catchErr := i.runCatches(node.Catches, raise.exception, frame)
			if handled {
				result, err = caught, catchErr
			}
		}
	}

	if node.Finally != nil && !isFatal(err) {
		if err == nil && result != nil {
			result = runtime.Copy(result)
		}
		var ret returnSignal
		if errors.As(err, &ret) && ret.value != nil {
			err = returnSignal{target: ret.target, value: runtime.Copy(ret.value)}
		}
		if _, finallyErr := i.evaluateExpression(node.Finally, frame); finallyErr != nil {
			return nil, finallyErr
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// runCatches finds the first clause whose parameter type admits the exception
// value's runtime class and runs it with the exception bound in a sub-frame.
func (i *Interpreter) runCatches(catches []*ir.Catch, exception *runtime.Exception, frame *runtime.Frame) (handled bool, result runtime.Value, err error) {
	class := runtime.ClassOf(i.builtins, exception.Wrapped)
	for _, clause := range catches {
		target := clause.Parameter.Type.Class
		if target != nil && !class.IsSubclassOf(target) {
			continue
		}
		bindings := map[string]runtime.Value{clause.Parameter.Name: exception}
		result, err = i.withFrame(bindings, true, "", func(inner *runtime.Frame) (runtime.Value, error) {
			return i.evaluateExpression(clause.Body, inner)
		})
		return true, result, err
	}
	return false, nil, nil
}
