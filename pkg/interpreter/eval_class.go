package interpreter

import (
	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// evaluateConstructorCall instantiates a class. Native classes route through
// the host bridge; everything else gets an empty composite whose segments are
// filled bottom-up by constructor delegation.
func (i *Interpreter) evaluateConstructorCall(node *ir.ConstructorCall, frame *runtime.Frame) (runtime.Value, error) {
	ctor := node.Ctor
	args, err := i.evaluateCtorArgs(ctor, node.Args, frame)
	if err != nil {
		return nil, err
	}
	if ctor.Parent.IsNative {
		return i.constructNative(ctor, args)
	}
	instance := runtime.NewComposite(ctor.Parent)
	if node.Outer != nil {
		outer, err := i.evaluateExpression(node.Outer, frame)
		if err != nil {
			return nil, err
		}
		composite, ok := outer.(*runtime.Composite)
		if !ok {
			return nil, environmentFaultf("enclosing instance for %s is %s, want composite", ctor.Parent.Name, outer.Kind())
		}
		instance.Outer = composite
	}
	if err := i.runConstructor(ctor, instance, args); err != nil {
		return nil, err
	}
	return instance, nil
}

func (i *Interpreter) evaluateCtorArgs(ctor *ir.Constructor, argExprs []ir.Expression, frame *runtime.Frame) ([]runtime.Value, error) {
	args := make([]runtime.Value, len(ctor.Params))
	for idx := range ctor.Params {
		var expr ir.Expression
		if idx < len(argExprs) {
			expr = argExprs[idx]
		}
		if expr == nil {
			continue
		}
		value, err := i.evaluateExpression(expr, frame)
		if err != nil {
			return nil, err
		}
		args[idx] = value
	}
	return args, nil
}

// runConstructor initializes one class layer of the instance: bind parameters
// in a fresh frame, run the delegation, then (for the primary constructor) the
// property initializers and init blocks in declaration order, then the body.
// Delegation to a same-class constructor reuses the instance; delegation to
// the superclass constructor builds and links the super segment first, so
// segments complete bottom-up.
func (i *Interpreter) runConstructor(ctor *ir.Constructor, instance *runtime.Composite, args []runtime.Value) error {
	bindings := map[string]runtime.Value{"this": instance}
	_, err := i.withFrame(bindings, false, ctor.QualifiedName(), func(frame *runtime.Frame) (runtime.Value, error) {
		for idx, param := range ctor.Params {
			value := args[idx]
			if value == nil {
				if param.Default == nil {
					return nil, environmentFaultf("missing argument %q for %s", param.Name, ctor.QualifiedName())
				}
				var err error
				value, err = i.evaluateExpression(param.Default, frame)
				if err != nil {
					return nil, err
				}
			}
			frame.Define(param.Name, value)
		}

		if ctor.Delegate != nil {
			delegateArgs, err := i.evaluateCtorArgs(ctor.Delegate.Ctor, ctor.Delegate.Args, frame)
			if err != nil {
				return nil, err
			}
			target := ctor.Delegate.Ctor
			if target.Parent == ctor.Parent {
				if err := i.runConstructor(target, instance, delegateArgs); err != nil {
					return nil, err
				}
			} else {
				super := runtime.NewComposite(target.Parent)
				super.Outer = instance.Outer
				if err := i.runConstructor(target, super, delegateArgs); err != nil {
					return nil, err
				}
				instance.LinkSuper(super)
			}
		}

		// Property initializers and init blocks belong to the primary
		// constructor's layer; a delegating secondary must not re-run them.
		if ctor.IsPrimary || ctor.Delegate == nil || ctor.Delegate.Ctor.Parent != ctor.Parent {
			if err := i.runInitializers(ctor.Parent, instance, frame); err != nil {
				return nil, err
			}
		}

		if ctor.Body != nil {
			if _, err := i.evaluateExpression(ctor.Body, frame); err != nil {
				return nil, err
			}
		}
		return i.unitValue(), nil
	})
	return err
}

func (i *Interpreter) runInitializers(class *ir.Class, instance *runtime.Composite, frame *runtime.Frame) error {
	for _, prop := range class.Properties {
		if prop.Initializer == nil {
			continue
		}
		value, err := i.evaluateExpression(prop.Initializer, frame)
		if err != nil {
			return err
		}
		instance.SetField(prop, value)
	}
	for _, init := range class.Inits {
		if _, err := i.evaluateExpression(init.Body, frame); err != nil {
			return err
		}
	}
	return nil
}

// objectValue resolves an object singleton, constructing it at most once per
// session.
func (i *Interpreter) objectValue(class *ir.Class) (runtime.Value, error) {
	if cached, ok := i.singletons[class]; ok {
		return cached, nil
	}
	ctor := class.PrimaryConstructor()
	if ctor == nil {
		return nil, environmentFaultf("object %s has no constructor", class.Name)
	}
	instance := runtime.NewComposite(class)
	// Publish before construction so self-references during init resolve to
	// the same instance instead of recursing.
	i.singletons[class] = instance
	if err := i.runConstructor(ctor, instance, make([]runtime.Value, len(ctor.Params))); err != nil {
		delete(i.singletons, class)
		return nil, err
	}
	return instance, nil
}

// enumEntryValue resolves an enum constant, constructing it at most once per
// session. The name and ordinal fields are stamped after the entry's
// constructor call completes.
func (i *Interpreter) enumEntryValue(entry *ir.EnumEntry) (runtime.Value, error) {
	if cached, ok := i.enumEntries[entry]; ok {
		return cached, nil
	}
	class := entry.Parent
	call := entry.Call
	if call == nil {
		ctor := class.PrimaryConstructor()
		if ctor == nil {
			return nil, environmentFaultf("enum %s has no constructor for entry %s", class.Name, entry.Name)
		}
		call = ir.NewConstructorCall(ctor)
	}
	value, err := i.evaluateConstructorCall(call, i.stack.Current())
	if err != nil {
		return nil, err
	}
	instance, ok := value.(*runtime.Composite)
	if !ok {
		return nil, environmentFaultf("enum entry %s.%s constructed a %s", class.Name, entry.Name, value.Kind())
	}
	if nameProp := class.PropertyNamed("name"); nameProp != nil {
		instance.SetField(nameProp, runtime.NewPrimitive(entry.Name, i.builtins.StringType))
	}
	if ordinalProp := class.PropertyNamed("ordinal"); ordinalProp != nil {
		instance.SetField(ordinalProp, runtime.NewPrimitive(int32(entry.Ordinal), i.builtins.IntType))
	}
	i.enumEntries[entry] = instance
	return instance, nil
}

// enumValues returns the ordinal-ordered array of entry instances, cached per
// session so repeated calls observe identical array and element identities.
func (i *Interpreter) enumValues(class *ir.Class) (runtime.Value, error) {
	if cached, ok := i.enumArrays[class]; ok {
		return cached, nil
	}
	elements := make([]runtime.Value, 0, len(class.Entries))
	for _, entry := range class.Entries {
		value, err := i.enumEntryValue(entry)
		if err != nil {
			return nil, err
		}
		elements = append(elements, value)
	}
	array, err := runtime.NewArray(i.builtins, ir.ClassType(class), elements)
	if err != nil {
		return nil, environmentFaultf("enum values packing for %s: %v", class.Name, err)
	}
	i.enumArrays[class] = array
	return array, nil
}

// enumValueOf resolves an entry by constant name; a miss raises
// IllegalArgumentException rather than faulting, matching the callable's
// program-level contract.
func (i *Interpreter) enumValueOf(class *ir.Class, args []runtime.Value) (runtime.Value, error) {
	if len(args) != 1 {
		return nil, environmentFaultf("%s.valueOf expects one argument", class.Name)
	}
	prim, ok := args[0].(*runtime.Primitive)
	if !ok {
		return nil, environmentFaultf("%s.valueOf argument is %s, want String", class.Name, args[0].Kind())
	}
	name, ok := prim.Val.(string)
	if !ok {
		return nil, environmentFaultf("%s.valueOf argument holds %T, want string", class.Name, prim.Val)
	}
	if entry := class.EntryNamed(name); entry != nil {
		return i.enumEntryValue(entry)
	}
	return nil, i.raiseException(i.builtins.IllegalArgumentException,
		"No enum constant "+class.Name+"."+name)
}
