package runtime

import (
	"errors"
	"testing"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

func TestFrameVisibilityChain(t *testing.T) {
	b := ir.NewBuiltins()
	stack := NewCallStack(10, 1000)

	outer, err := stack.NewFrame(map[string]Value{"x": NewPrimitive(int32(1), b.IntType)}, false)
	if err != nil {
		t.Fatalf("NewFrame returned error: %v", err)
	}
	inner, err := stack.NewFrame(nil, true)
	if err != nil {
		t.Fatalf("NewFrame returned error: %v", err)
	}

	if _, err := inner.Get("x"); err != nil {
		t.Fatalf("sub-frame must see caller bindings: %v", err)
	}

	inner.Define("x", NewPrimitive(int32(2), b.IntType))
	got, _ := inner.Get("x")
	if got.(*Primitive).Val != int32(2) {
		t.Fatal("inner definition must shadow the outer binding")
	}
	outerGot, _ := outer.Get("x")
	if outerGot.(*Primitive).Val != int32(1) {
		t.Fatal("shadowing must not overwrite the outer binding")
	}

	stack.DropFrame()
	isolated, err := stack.NewFrame(nil, false)
	if err != nil {
		t.Fatalf("NewFrame returned error: %v", err)
	}
	if _, err := isolated.Get("x"); err == nil {
		t.Fatal("isolated frame must not see caller bindings")
	}
	var missing UndefinedVariableError
	if _, err := isolated.Get("x"); !errors.As(err, &missing) || missing.Name != "x" {
		t.Fatalf("want UndefinedVariableError for x, got %v", err)
	}
}

func TestFrameAssignWritesOwningFrame(t *testing.T) {
	b := ir.NewBuiltins()
	stack := NewCallStack(10, 1000)
	outer, _ := stack.NewFrame(map[string]Value{"n": NewPrimitive(int32(1), b.IntType)}, false)
	inner, _ := stack.NewFrame(nil, true)

	if err := inner.Assign("n", NewPrimitive(int32(5), b.IntType)); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	got, _ := outer.Get("n")
	if got.(*Primitive).Val != int32(5) {
		t.Fatal("Assign must update the frame that owns the binding")
	}
	if err := inner.Assign("missing", NewPrimitive(int32(1), b.IntType)); err == nil {
		t.Fatal("Assign to an unbound name must fail")
	}
}

func TestFrameSnapshotShadowing(t *testing.T) {
	b := ir.NewBuiltins()
	stack := NewCallStack(10, 1000)
	stack.NewFrame(map[string]Value{
		"a": NewPrimitive(int32(1), b.IntType),
		"b": NewPrimitive(int32(2), b.IntType),
	}, false)
	inner, _ := stack.NewFrame(map[string]Value{"b": NewPrimitive(int32(20), b.IntType)}, true)

	snap := inner.Snapshot()
	if snap["a"].(*Primitive).Val != int32(1) {
		t.Fatal("snapshot must include outer bindings")
	}
	if snap["b"].(*Primitive).Val != int32(20) {
		t.Fatal("snapshot must prefer inner bindings")
	}
}

func TestCallStackDepthLimit(t *testing.T) {
	stack := NewCallStack(3, 1000)
	for i := 0; i < 3; i++ {
		if _, err := stack.NewFrame(nil, false); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	_, err := stack.NewFrame(nil, false)
	var overflow StackOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("want StackOverflowError, got %v", err)
	}
	if overflow.Depth != 3 {
		t.Fatalf("Depth = %d, want 3", overflow.Depth)
	}
}

func TestCallStackStepBudget(t *testing.T) {
	stack := NewCallStack(10, 5)
	for i := 0; i < 5; i++ {
		if err := stack.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	err := stack.Step()
	var timeout TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("want TimeoutError, got %v", err)
	}
	if stack.Steps() != 6 {
		t.Fatalf("Steps = %d, want 6", stack.Steps())
	}
}

func TestTraceCollapsesSubFrames(t *testing.T) {
	stack := NewCallStack(10, 1000)
	stack.NewFrame(nil, false)
	stack.SetFrameName("main")
	stack.NewFrame(nil, true) // block sub-frame inherits "main"
	stack.NewFrame(nil, false)
	stack.SetFrameName("Point.describe")

	trace := stack.Trace()
	if len(trace) != 2 || trace[0] != "Point.describe" || trace[1] != "main" {
		t.Fatalf("trace = %v", trace)
	}
}
