package runtime

import "fmt"

// Frame is a mutable binding scope for one function or block activation.
// Sub-frames chain to their caller's frame for lookup visibility; isolated
// activations have no parent and see only what was explicitly passed in.
type Frame struct {
	vals   map[string]Value
	parent *Frame
}

func newFrame(bindings map[string]Value, parent *Frame) *Frame {
	vals := make(map[string]Value, len(bindings))
	for name, value := range bindings {
		vals[name] = value
	}
	return &Frame{vals: vals, parent: parent}
}

// Define inserts or shadows a binding in this frame; duplicates are
// last-write-wins.
func (f *Frame) Define(name string, value Value) {
	f.vals[name] = value
}

// Get retrieves a binding, searching outward through the visibility chain.
func (f *Frame) Get(name string) (Value, error) {
	for cur := f; cur != nil; cur = cur.parent {
		if value, ok := cur.vals[name]; ok {
			return value, nil
		}
	}
	return nil, UndefinedVariableError{Name: name}
}

// Has reports whether the binding is visible from this frame.
func (f *Frame) Has(name string) bool {
	for cur := f; cur != nil; cur = cur.parent {
		if _, ok := cur.vals[name]; ok {
			return true
		}
	}
	return false
}

// Assign updates an existing binding in the first frame where it appears.
func (f *Frame) Assign(name string, value Value) error {
	for cur := f; cur != nil; cur = cur.parent {
		if _, ok := cur.vals[name]; ok {
			cur.vals[name] = value
			return nil
		}
	}
	return UndefinedVariableError{Name: name}
}

// Snapshot flattens the visible bindings into a fresh map; inner bindings
// shadow outer ones. Closures capture through this.
func (f *Frame) Snapshot() map[string]Value {
	out := make(map[string]Value)
	var visit func(*Frame)
	visit = func(cur *Frame) {
		if cur == nil {
			return
		}
		visit(cur.parent)
		for name, value := range cur.vals {
			out[name] = value
		}
	}
	visit(f)
	return out
}

type stackEntry struct {
	frame *Frame
	name  string
}

// CallStack is the ordered sequence of active frames, bounded by a maximum
// depth and a global step budget. Both limits are checked on every node the
// evaluator visits; exceeding either is fatal for the whole session.
type CallStack struct {
	entries  []stackEntry
	maxDepth int
	steps    int
	maxSteps int
}

// NewCallStack builds an empty stack with the given budgets.
func NewCallStack(maxDepth, maxSteps int) *CallStack {
	return &CallStack{maxDepth: maxDepth, maxSteps: maxSteps}
}

// NewFrame pushes a frame for a nested evaluation. subFrame shares lookup
// visibility with the caller's frame; otherwise the activation is isolated.
// Callers must guarantee DropFrame on every exit path.
func (s *CallStack) NewFrame(bindings map[string]Value, subFrame bool) (*Frame, error) {
	if len(s.entries) >= s.maxDepth {
		return nil, StackOverflowError{Depth: len(s.entries)}
	}
	var parent *Frame
	name := ""
	if subFrame && len(s.entries) > 0 {
		top := s.entries[len(s.entries)-1]
		parent = top.frame
		name = top.name
	}
	frame := newFrame(bindings, parent)
	s.entries = append(s.entries, stackEntry{frame: frame, name: name})
	return frame, nil
}

// DropFrame pops the current frame.
func (s *CallStack) DropFrame() {
	if len(s.entries) == 0 {
		return
	}
	s.entries = s.entries[:len(s.entries)-1]
}

// Current returns the active frame, or nil when the stack is empty.
func (s *CallStack) Current() *Frame {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[len(s.entries)-1].frame
}

// SetFrameName records the human-readable name of the current activation; the
// names are used solely for exception trace rendering.
func (s *CallStack) SetFrameName(name string) {
	if len(s.entries) == 0 {
		return
	}
	s.entries[len(s.entries)-1].name = name
}

// Depth returns the number of active frames.
func (s *CallStack) Depth() int { return len(s.entries) }

// Step advances the monotonically increasing step counter, failing once the
// instruction budget is exhausted.
func (s *CallStack) Step() error {
	s.steps++
	if s.steps > s.maxSteps {
		return TimeoutError{Steps: s.steps}
	}
	return nil
}

// Steps returns the number of steps consumed so far.
func (s *CallStack) Steps() int { return s.steps }

// Trace renders the active frame names innermost-first, collapsing adjacent
// sub-frames that share their function's name.
func (s *CallStack) Trace() []string {
	out := make([]string, 0, len(s.entries))
	prev := ""
	for idx := len(s.entries) - 1; idx >= 0; idx-- {
		name := s.entries[idx].name
		if name == "" || name == prev {
			continue
		}
		out = append(out, name)
		prev = name
	}
	return out
}

//-----------------------------------------------------------------------------
// Fatal fault errors
//-----------------------------------------------------------------------------

// UndefinedVariableError reports a lookup miss across the visible frame chain.
type UndefinedVariableError struct {
	Name string
}

func (e UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable '%s'", e.Name)
}

// StackOverflowError reports that the call stack hit its configured depth
// limit. It aborts the whole evaluation; no catch clause may intercept it.
type StackOverflowError struct {
	Depth int
}

func (e StackOverflowError) Error() string {
	return fmt.Sprintf("call stack exceeded maximum depth %d", e.Depth)
}

// TimeoutError reports that the evaluation consumed its whole step budget. It
// aborts the whole evaluation; no catch clause may intercept it.
type TimeoutError struct {
	Steps int
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("evaluation exceeded step budget after %d steps", e.Steps)
}
