package interpreter

import (
	"testing"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

func TestStringBuilderAppendChain(t *testing.T) {
	m := newModule()
	b := m.Builtins
	sb := b.StringBuilder
	appendFn := sb.FunctionNamed("append")

	// append returns the receiver, so calls chain on the same host object.
	chain := ir.NewCall(appendFn,
		ir.NewCall(appendFn,
			ir.NewCall(appendFn,
				ir.NewConstructorCall(sb.PrimaryConstructor()),
				b.StringConst("a")),
			b.IntConst(1)),
		b.NullConst())
	program := ir.NewCall(sb.FunctionNamed("toString"), chain)

	if got := evalScalar(t, m, program); got != "a1null" {
		t.Fatalf("got %v, want a1null", got)
	}
}

func TestStringBuilderFluentIdentity(t *testing.T) {
	m := newModule()
	b := m.Builtins
	sb := b.StringBuilder
	sbType := ir.ClassType(sb)

	program := ir.NewBlock(
		ir.NewVariable("sb", sbType, ir.NewConstructorCall(sb.PrimaryConstructor())),
		ir.NewVariable("out", sbType,
			ir.NewCall(sb.FunctionNamed("append"), ir.NewGetValue("sb"), b.StringConst("x"))),
		ir.NewOpCall("equals", ir.NewGetValue("sb"), ir.NewGetValue("out")),
	)
	if got := evalScalar(t, m, program); got != true {
		t.Fatal("append must return the same wrapper, not a copy")
	}
}

func TestStringBuilderLengthCountsRunes(t *testing.T) {
	m := newModule()
	b := m.Builtins
	sb := b.StringBuilder

	program := ir.NewCall(sb.FunctionNamed("length"),
		ir.NewCall(sb.FunctionNamed("append"),
			ir.NewConstructorCall(sb.PrimaryConstructor()),
			b.StringConst("日本語")))
	if got := evalScalar(t, m, program); got != int32(3) {
		t.Fatalf("length = %v, want 3", got)
	}
}

func TestStringBuilderReverse(t *testing.T) {
	m := newModule()
	b := m.Builtins
	sb := b.StringBuilder

	program := ir.NewCall(sb.FunctionNamed("toString"),
		ir.NewCall(sb.FunctionNamed("reverse"),
			ir.NewCall(sb.FunctionNamed("append"),
				ir.NewConstructorCall(sb.PrimaryConstructor()),
				b.StringConst("abc"))))
	if got := evalScalar(t, m, program); got != "cba" {
		t.Fatalf("got %v, want cba", got)
	}
}

func TestRegexMatchesWholeInput(t *testing.T) {
	m := newModule()
	b := m.Builtins
	regex := b.Regex
	matches := regex.FunctionNamed("matches")
	newRegex := func(pattern string) ir.Expression {
		return ir.NewConstructorCall(regex.PrimaryConstructor(), b.StringConst(pattern))
	}

	cases := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{name: "full match", pattern: "a+", input: "aaa", want: true},
		{name: "partial match does not count", pattern: "a+", input: "baa", want: false},
		{name: "alternation", pattern: "cat|dog", input: "dog", want: true},
		{name: "empty input against star", pattern: "x*", input: "", want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			program := ir.NewCall(matches, newRegex(tc.pattern), b.StringConst(tc.input))
			if got := evalScalar(t, m, program); got != tc.want {
				t.Fatalf("matches(%q, %q) = %v, want %v", tc.pattern, tc.input, got, tc.want)
			}
		})
	}
}

func TestRegexReplace(t *testing.T) {
	m := newModule()
	b := m.Builtins
	regex := b.Regex

	program := ir.NewCall(regex.FunctionNamed("replace"),
		ir.NewConstructorCall(regex.PrimaryConstructor(), b.StringConst("[0-9]+")),
		b.StringConst("a1b22c"),
		b.StringConst("#"))
	if got := evalScalar(t, m, program); got != "a#b#c" {
		t.Fatalf("got %v, want a#b#c", got)
	}
}

func TestRegexBadPatternRaisesCatchableError(t *testing.T) {
	m := newModule()
	b := m.Builtins

	construct := ir.NewConstructorCall(b.Regex.PrimaryConstructor(), b.StringConst("["))
	exc := evalRaises(t, m, construct)
	wrapped := exc.Wrapped.(*runtime.Composite)
	if wrapped.Class != b.IllegalArgumentException {
		t.Fatalf("class = %s, want IllegalArgumentException", wrapped.Class.Name)
	}

	// The same failure must be interceptable by an ordinary catch clause.
	caught := ir.NewTry(
		construct,
		[]*ir.Catch{
			ir.NewCatch(
				ir.NewVariable("e", ir.ClassType(b.IllegalArgumentException), nil),
				b.StringConst("caught"),
			),
		},
		nil,
	)
	if got := evalScalar(t, m, caught); got != "caught" {
		t.Fatalf("got %v, want caught", got)
	}
}

func TestNativeWrapperInStringConcat(t *testing.T) {
	m := newModule()
	b := m.Builtins
	sb := b.StringBuilder

	program := ir.NewStringConcat(
		b.StringConst("buf="),
		ir.NewCall(sb.FunctionNamed("append"),
			ir.NewConstructorCall(sb.PrimaryConstructor()),
			b.StringConst("hi")),
	)
	if got := evalScalar(t, m, program); got != "buf=hi" {
		t.Fatalf("got %v, want buf=hi", got)
	}
}
