package interpreter

import (
	"strings"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// raiseException constructs an instance of the given throwable class through
// its own constructor protocol and returns it as a raise signal carrying the
// current stack trace. The standard throwable classes all take an optional
// message parameter.
func (i *Interpreter) raiseException(class *ir.Class, message string) error {
	ctor := class.PrimaryConstructor()
	if ctor == nil {
		return environmentFaultf("throwable class %s has no constructor", class.Name)
	}
	args := make([]runtime.Value, len(ctor.Params))
	if len(args) > 0 {
		args[0] = runtime.NewPrimitive(message, i.builtins.StringType.AsNullable())
	}
	instance := runtime.NewComposite(class)
	if err := i.runConstructor(ctor, instance, args); err != nil {
		return err
	}
	return raiseSignal{exception: &runtime.Exception{Wrapped: instance, Trace: i.stack.Trace()}}
}

// renderException produces the failure artifact text: the exception header
// followed by one "\tat" line per recorded activation.
func (i *Interpreter) renderException(exception *runtime.Exception) string {
	var b strings.Builder
	if instance, ok := exception.Wrapped.(*runtime.Composite); ok {
		b.WriteString(i.renderThrowableHeader(instance))
	} else if rendered, err := i.stringify(exception.Wrapped); err == nil {
		b.WriteString(rendered)
	} else {
		b.WriteString(i.classNameOf(exception.Wrapped))
	}
	for _, entry := range exception.Trace {
		b.WriteString("\n\tat ")
		b.WriteString(entry)
	}
	return b.String()
}
