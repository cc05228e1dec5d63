package interpreter

import (
	"math"
	"strconv"
	"strings"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
	"github.com/vaqtpanjara/kotlin/pkg/runtime"
)

// builtinFunc implements one built-in operator over already-evaluated
// operands; operand zero is the receiver.
type builtinFunc func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error)

// operatorTable maps bodiless primitive operations to host implementations.
// Entries are keyed by name plus the operand runtime class names, bucketed by
// arity; lookup degrades from the exact key to trailing-operand wildcards and
// finally to a fully wildcarded name.
type operatorTable struct {
	builtins *ir.Builtins
	unary    map[string]builtinFunc
	binary   map[string]builtinFunc
	ternary  map[string]builtinFunc
}

func opKey(name string, operands ...string) string {
	return name + "(" + strings.Join(operands, ", ") + ")"
}

// invoke tries the operator table for the named operation. The boolean result
// reports whether a table entry matched at all; only primitive operands are
// eligible except for the wildcarded equality and rendering entries.
func (t *operatorTable) invoke(i *Interpreter, name string, receiver runtime.Value, args []runtime.Value) (runtime.Value, bool, error) {
	operands := make([]runtime.Value, 0, len(args)+1)
	if receiver != nil {
		operands = append(operands, receiver)
	}
	operands = append(operands, args...)

	var bucket map[string]builtinFunc
	switch len(operands) {
	case 1:
		bucket = t.unary
	case 2:
		bucket = t.binary
	case 3:
		bucket = t.ternary
	default:
		return nil, false, nil
	}

	names := make([]string, len(operands))
	prims := make([]*runtime.Primitive, len(operands))
	for idx, operand := range operands {
		names[idx] = runtime.ClassOf(t.builtins, operand).Name
		if prim, ok := operand.(*runtime.Primitive); ok {
			prims[idx] = prim
		}
	}

	for _, cand := range candidateKeys(name, names) {
		fn, ok := bucket[cand.key]
		if !ok {
			continue
		}
		for idx, prim := range prims {
			// A typed position dereferences its operand, so a null primitive
			// never reaches one; only wildcarded positions accept null.
			if prim != nil && prim.IsNull() && idx < cand.wildcardFrom {
				return nil, true, i.raiseException(i.builtins.NullPointerException,
					"null operand in "+name)
			}
			if prim == nil {
				// Non-primitive operands only reach the wildcard entries,
				// which work on the rendered or identity form.
				prims[idx] = runtime.NewPrimitive(operands[idx], ir.ClassType(t.builtins.Any))
			}
		}
		result, err := fn(i, prims)
		return result, true, err
	}
	return nil, false, nil
}

// opCandidate pairs a lookup key with the index of its first wildcarded
// operand position.
type opCandidate struct {
	key          string
	wildcardFrom int
}

// candidateKeys orders the lookup keys from most to least specific: the exact
// operand types, then each suffix wildcarded, then the fully wildcarded form.
func candidateKeys(name string, operandNames []string) []opCandidate {
	keys := make([]opCandidate, 0, len(operandNames)+1)
	keys = append(keys, opCandidate{key: opKey(name, operandNames...), wildcardFrom: len(operandNames)})
	for cut := len(operandNames) - 1; cut >= 0; cut-- {
		masked := make([]string, len(operandNames))
		copy(masked, operandNames[:cut])
		for idx := cut; idx < len(operandNames); idx++ {
			masked[idx] = "*"
		}
		keys = append(keys, opCandidate{key: opKey(name, masked...), wildcardFrom: cut})
	}
	return keys
}

//-----------------------------------------------------------------------------
// Numeric promotion
//-----------------------------------------------------------------------------

const (
	rankInt = iota
	rankLong
	rankFloat
	rankDouble
)

func numericRank(typeName string) int {
	switch typeName {
	case "Long":
		return rankLong
	case "Float":
		return rankFloat
	case "Double":
		return rankDouble
	default:
		// Byte, Short, Int, Char all widen to Int arithmetic.
		return rankInt
	}
}

func scalarInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func scalarFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

var numericClassNames = []string{"Byte", "Short", "Int", "Long", "Float", "Double"}

//-----------------------------------------------------------------------------
// Table construction
//-----------------------------------------------------------------------------

func newOperatorTable(builtins *ir.Builtins) *operatorTable {
	t := &operatorTable{
		builtins: builtins,
		unary:    make(map[string]builtinFunc),
		binary:   make(map[string]builtinFunc),
		ternary:  make(map[string]builtinFunc),
	}
	t.registerNumeric()
	t.registerBoolean()
	t.registerChar()
	t.registerString()
	t.registerBitwise()
	t.registerConversions()
	t.registerWildcards()
	return t
}

func (t *operatorTable) registerNumeric() {
	arithmetic := []string{"plus", "minus", "times", "div", "rem"}
	comparisons := []string{"less", "lessOrEqual", "greater", "greaterOrEqual", "compareTo"}
	for _, a := range numericClassNames {
		for _, b := range numericClassNames {
			rank := numericRank(a)
			if r := numericRank(b); r > rank {
				rank = r
			}
			for _, op := range arithmetic {
				t.binary[opKey(op, a, b)] = numericArithmetic(op, rank)
			}
			for _, op := range comparisons {
				t.binary[opKey(op, a, b)] = numericComparison(op, rank)
			}
			t.binary[opKey("equals", a, b)] = numericEquals(rank)
		}
	}
	for _, a := range numericClassNames {
		rank := numericRank(a)
		t.unary[opKey("unaryMinus", a)] = numericNegate(rank)
		t.unary[opKey("unaryPlus", a)] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
			return args[0], nil
		}
	}
}

func numericArithmetic(op string, rank int) builtinFunc {
	return func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		if rank >= rankFloat {
			a, okA := scalarFloat64(args[0].Val)
			b, okB := scalarFloat64(args[1].Val)
			if !okA || !okB {
				return nil, environmentFaultf("%s over %T and %T", op, args[0].Val, args[1].Val)
			}
			var out float64
			switch op {
			case "plus":
				out = a + b
			case "minus":
				out = a - b
			case "times":
				out = a * b
			case "div":
				out = a / b
			case "rem":
				out = math.Mod(a, b)
			}
			if rank == rankFloat {
				return runtime.NewPrimitive(float32(out), i.builtins.FloatType), nil
			}
			return runtime.NewPrimitive(out, i.builtins.DoubleType), nil
		}
		a, okA := scalarInt64(args[0].Val)
		b, okB := scalarInt64(args[1].Val)
		if !okA || !okB {
			return nil, environmentFaultf("%s over %T and %T", op, args[0].Val, args[1].Val)
		}
		if (op == "div" || op == "rem") && b == 0 {
			return nil, i.raiseException(i.builtins.ArithmeticException, "/ by zero")
		}
		var out int64
		switch op {
		case "plus":
			out = a + b
		case "minus":
			out = a - b
		case "times":
			out = a * b
		case "div":
			out = a / b
		case "rem":
			out = a % b
		}
		if rank == rankLong {
			return runtime.NewPrimitive(out, i.builtins.LongType), nil
		}
		return runtime.NewPrimitive(int32(out), i.builtins.IntType), nil
	}
}

func numericComparison(op string, rank int) builtinFunc {
	return func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		var cmp int
		if rank >= rankFloat {
			a, okA := scalarFloat64(args[0].Val)
			b, okB := scalarFloat64(args[1].Val)
			if !okA || !okB {
				return nil, environmentFaultf("%s over %T and %T", op, args[0].Val, args[1].Val)
			}
			switch {
			case a < b:
				cmp = -1
			case a > b:
				cmp = 1
			}
		} else {
			a, okA := scalarInt64(args[0].Val)
			b, okB := scalarInt64(args[1].Val)
			if !okA || !okB {
				return nil, environmentFaultf("%s over %T and %T", op, args[0].Val, args[1].Val)
			}
			switch {
			case a < b:
				cmp = -1
			case a > b:
				cmp = 1
			}
		}
		switch op {
		case "less":
			return runtime.NewPrimitive(cmp < 0, i.builtins.BooleanType), nil
		case "lessOrEqual":
			return runtime.NewPrimitive(cmp <= 0, i.builtins.BooleanType), nil
		case "greater":
			return runtime.NewPrimitive(cmp > 0, i.builtins.BooleanType), nil
		case "greaterOrEqual":
			return runtime.NewPrimitive(cmp >= 0, i.builtins.BooleanType), nil
		default:
			return runtime.NewPrimitive(int32(cmp), i.builtins.IntType), nil
		}
	}
}

func numericEquals(rank int) builtinFunc {
	return func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		if rank >= rankFloat {
			a, okA := scalarFloat64(args[0].Val)
			b, okB := scalarFloat64(args[1].Val)
			return runtime.NewPrimitive(okA && okB && a == b, i.builtins.BooleanType), nil
		}
		a, okA := scalarInt64(args[0].Val)
		b, okB := scalarInt64(args[1].Val)
		return runtime.NewPrimitive(okA && okB && a == b, i.builtins.BooleanType), nil
	}
}

func numericNegate(rank int) builtinFunc {
	return func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		switch rank {
		case rankDouble:
			v, _ := scalarFloat64(args[0].Val)
			return runtime.NewPrimitive(-v, i.builtins.DoubleType), nil
		case rankFloat:
			v, _ := scalarFloat64(args[0].Val)
			return runtime.NewPrimitive(float32(-v), i.builtins.FloatType), nil
		case rankLong:
			v, _ := scalarInt64(args[0].Val)
			return runtime.NewPrimitive(-v, i.builtins.LongType), nil
		default:
			v, _ := scalarInt64(args[0].Val)
			return runtime.NewPrimitive(int32(-v), i.builtins.IntType), nil
		}
	}
}

func (t *operatorTable) registerBoolean() {
	t.binary[opKey("and", "Boolean", "Boolean")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		a, b := args[0].Val.(bool), args[1].Val.(bool)
		return runtime.NewPrimitive(a && b, i.builtins.BooleanType), nil
	}
	t.binary[opKey("or", "Boolean", "Boolean")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		a, b := args[0].Val.(bool), args[1].Val.(bool)
		return runtime.NewPrimitive(a || b, i.builtins.BooleanType), nil
	}
	t.binary[opKey("xor", "Boolean", "Boolean")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		a, b := args[0].Val.(bool), args[1].Val.(bool)
		return runtime.NewPrimitive(a != b, i.builtins.BooleanType), nil
	}
	t.binary[opKey("equals", "Boolean", "Boolean")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		return runtime.NewPrimitive(args[0].Val == args[1].Val, i.builtins.BooleanType), nil
	}
	t.unary[opKey("not", "Boolean")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		return runtime.NewPrimitive(!args[0].Val.(bool), i.builtins.BooleanType), nil
	}
}

func (t *operatorTable) registerChar() {
	t.binary[opKey("plus", "Char", "Int")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		c, _ := scalarInt64(args[0].Val)
		n, _ := scalarInt64(args[1].Val)
		return runtime.NewPrimitive(int32(c+n), i.builtins.CharType), nil
	}
	t.binary[opKey("minus", "Char", "Int")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		c, _ := scalarInt64(args[0].Val)
		n, _ := scalarInt64(args[1].Val)
		return runtime.NewPrimitive(int32(c-n), i.builtins.CharType), nil
	}
	t.binary[opKey("minus", "Char", "Char")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		a, _ := scalarInt64(args[0].Val)
		b, _ := scalarInt64(args[1].Val)
		return runtime.NewPrimitive(int32(a-b), i.builtins.IntType), nil
	}
	t.binary[opKey("compareTo", "Char", "Char")] = numericComparison("compareTo", rankInt)
	t.binary[opKey("less", "Char", "Char")] = numericComparison("less", rankInt)
	t.binary[opKey("lessOrEqual", "Char", "Char")] = numericComparison("lessOrEqual", rankInt)
	t.binary[opKey("greater", "Char", "Char")] = numericComparison("greater", rankInt)
	t.binary[opKey("greaterOrEqual", "Char", "Char")] = numericComparison("greaterOrEqual", rankInt)
	t.binary[opKey("equals", "Char", "Char")] = numericEquals(rankInt)
	t.unary[opKey("code", "Char")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		c, _ := scalarInt64(args[0].Val)
		return runtime.NewPrimitive(int32(c), i.builtins.IntType), nil
	}
}

func (t *operatorTable) registerString() {
	t.binary[opKey("plus", "String", "*")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		prefix := args[0].Val.(string)
		var suffix string
		var err error
		if wrapped, ok := args[1].Val.(runtime.Value); ok {
			suffix, err = i.stringify(wrapped)
		} else {
			suffix, err = stringifyScalar(args[1])
		}
		if err != nil {
			return nil, err
		}
		return runtime.NewPrimitive(prefix+suffix, i.builtins.StringType), nil
	}
	t.unary[opKey("length", "String")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		return runtime.NewPrimitive(int32(len([]rune(args[0].Val.(string)))), i.builtins.IntType), nil
	}
	t.binary[opKey("get", "String", "Int")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		runes := []rune(args[0].Val.(string))
		idx, _ := scalarInt64(args[1].Val)
		if idx < 0 || idx >= int64(len(runes)) {
			return nil, i.raiseException(i.builtins.IndexOutOfBoundsException,
				"index "+itoa(idx)+" out of bounds for length "+itoa(int64(len(runes))))
		}
		return runtime.NewPrimitive(runes[idx], i.builtins.CharType), nil
	}
	t.binary[opKey("substring", "String", "Int")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		runes := []rune(args[0].Val.(string))
		start, _ := scalarInt64(args[1].Val)
		if start < 0 || start > int64(len(runes)) {
			return nil, i.raiseException(i.builtins.IndexOutOfBoundsException,
				"begin "+itoa(start)+", length "+itoa(int64(len(runes))))
		}
		return runtime.NewPrimitive(string(runes[start:]), i.builtins.StringType), nil
	}
	t.ternary[opKey("substring", "String", "Int", "Int")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		runes := []rune(args[0].Val.(string))
		start, _ := scalarInt64(args[1].Val)
		end, _ := scalarInt64(args[2].Val)
		if start < 0 || end > int64(len(runes)) || start > end {
			return nil, i.raiseException(i.builtins.IndexOutOfBoundsException,
				"begin "+itoa(start)+", end "+itoa(end)+", length "+itoa(int64(len(runes))))
		}
		return runtime.NewPrimitive(string(runes[start:end]), i.builtins.StringType), nil
	}
	t.binary[opKey("compareTo", "String", "String")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		return runtime.NewPrimitive(int32(strings.Compare(args[0].Val.(string), args[1].Val.(string))), i.builtins.IntType), nil
	}
	t.binary[opKey("equals", "String", "String")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		return runtime.NewPrimitive(args[0].Val == args[1].Val, i.builtins.BooleanType), nil
	}
}

func (t *operatorTable) registerBitwise() {
	t.binary[opKey("and", "Int", "Int")] = intBitwise(func(a, b int64) int64 { return a & b })
	t.binary[opKey("or", "Int", "Int")] = intBitwise(func(a, b int64) int64 { return a | b })
	t.binary[opKey("xor", "Int", "Int")] = intBitwise(func(a, b int64) int64 { return a ^ b })
	t.binary[opKey("shl", "Int", "Int")] = intBitwise(func(a, b int64) int64 { return int64(int32(a) << (uint32(b) & 31)) })
	t.binary[opKey("shr", "Int", "Int")] = intBitwise(func(a, b int64) int64 { return int64(int32(a) >> (uint32(b) & 31)) })
	t.binary[opKey("ushr", "Int", "Int")] = intBitwise(func(a, b int64) int64 { return int64(int32(uint32(a) >> (uint32(b) & 31))) })
	t.unary[opKey("inv", "Int")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		v, _ := scalarInt64(args[0].Val)
		return runtime.NewPrimitive(int32(^v), i.builtins.IntType), nil
	}

	t.binary[opKey("and", "Long", "Long")] = longBitwise(func(a, b int64) int64 { return a & b })
	t.binary[opKey("or", "Long", "Long")] = longBitwise(func(a, b int64) int64 { return a | b })
	t.binary[opKey("xor", "Long", "Long")] = longBitwise(func(a, b int64) int64 { return a ^ b })
	t.binary[opKey("shl", "Long", "Int")] = longBitwise(func(a, b int64) int64 { return a << (uint64(b) & 63) })
	t.binary[opKey("shr", "Long", "Int")] = longBitwise(func(a, b int64) int64 { return a >> (uint64(b) & 63) })
	t.binary[opKey("ushr", "Long", "Int")] = longBitwise(func(a, b int64) int64 { return int64(uint64(a) >> (uint64(b) & 63)) })
	t.unary[opKey("inv", "Long")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		v, _ := scalarInt64(args[0].Val)
		return runtime.NewPrimitive(^v, i.builtins.LongType), nil
	}
}

func intBitwise(op func(a, b int64) int64) builtinFunc {
	return func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		a, _ := scalarInt64(args[0].Val)
		b, _ := scalarInt64(args[1].Val)
		return runtime.NewPrimitive(int32(op(a, b)), i.builtins.IntType), nil
	}
}

func longBitwise(op func(a, b int64) int64) builtinFunc {
	return func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		a, _ := scalarInt64(args[0].Val)
		b, _ := scalarInt64(args[1].Val)
		return runtime.NewPrimitive(op(a, b), i.builtins.LongType), nil
	}
}

func (t *operatorTable) registerConversions() {
	sources := append([]string{"Char"}, numericClassNames...)
	for _, src := range sources {
		t.unary[opKey("toByte", src)] = conversion(func(i *Interpreter, v float64) runtime.Value {
			return runtime.NewPrimitive(int8(int64(v)), i.builtins.ByteType)
		})
		t.unary[opKey("toShort", src)] = conversion(func(i *Interpreter, v float64) runtime.Value {
			return runtime.NewPrimitive(int16(int64(v)), i.builtins.ShortType)
		})
		t.unary[opKey("toInt", src)] = conversion(func(i *Interpreter, v float64) runtime.Value {
			return runtime.NewPrimitive(int32(int64(v)), i.builtins.IntType)
		})
		t.unary[opKey("toLong", src)] = conversion(func(i *Interpreter, v float64) runtime.Value {
			return runtime.NewPrimitive(int64(v), i.builtins.LongType)
		})
		t.unary[opKey("toFloat", src)] = conversion(func(i *Interpreter, v float64) runtime.Value {
			return runtime.NewPrimitive(float32(v), i.builtins.FloatType)
		})
		t.unary[opKey("toDouble", src)] = conversion(func(i *Interpreter, v float64) runtime.Value {
			return runtime.NewPrimitive(v, i.builtins.DoubleType)
		})
		t.unary[opKey("toChar", src)] = conversion(func(i *Interpreter, v float64) runtime.Value {
			return runtime.NewPrimitive(int32(int64(v)), i.builtins.CharType)
		})
	}
}

func conversion(convert func(i *Interpreter, v float64) runtime.Value) builtinFunc {
	return func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		v, ok := scalarFloat64(args[0].Val)
		if !ok {
			return nil, environmentFaultf("conversion over %T", args[0].Val)
		}
		return convert(i, v), nil
	}
}

func (t *operatorTable) registerWildcards() {
	t.unary[opKey("toString", "*")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		var rendered string
		var err error
		if wrapped, ok := args[0].Val.(runtime.Value); ok {
			rendered, err = i.stringify(wrapped)
		} else {
			rendered, err = stringifyScalar(args[0])
		}
		if err != nil {
			return nil, err
		}
		return runtime.NewPrimitive(rendered, i.builtins.StringType), nil
	}
	t.unary[opKey("hashCode", "*")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		var rendered string
		var err error
		if wrapped, ok := args[0].Val.(runtime.Value); ok {
			rendered, err = i.stringify(wrapped)
		} else {
			rendered, err = stringifyScalar(args[0])
		}
		if err != nil {
			return nil, err
		}
		var h int32
		for _, r := range rendered {
			h = 31*h + r
		}
		return runtime.NewPrimitive(h, i.builtins.IntType), nil
	}
	t.binary[opKey("equals", "*", "*")] = func(i *Interpreter, args []*runtime.Primitive) (runtime.Value, error) {
		a, b := args[0].Val, args[1].Val
		// Wrapped reference operands compare by identity; scalars by value.
		wa, aIsRef := a.(runtime.Value)
		wb, bIsRef := b.(runtime.Value)
		if aIsRef || bIsRef {
			return runtime.NewPrimitive(aIsRef && bIsRef && wa == wb, i.builtins.BooleanType), nil
		}
		return runtime.NewPrimitive(scalarEqual(a, b), i.builtins.BooleanType), nil
	}
}

func scalarEqual(a, b any) bool {
	switch a.(type) {
	case nil, bool, int8, int16, int32, int64, float32, float64, string:
		switch b.(type) {
		case nil, bool, int8, int16, int32, int64, float32, float64, string:
			return a == b
		}
	}
	return false
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
