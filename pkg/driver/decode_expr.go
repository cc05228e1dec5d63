package driver

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

// exprDecoder turns manifest YAML nodes into IR expressions. Plain scalars are
// constants with inferred types; mapping nodes pick their form by which
// discriminator key is present, mirroring how dependency specs are decoded.
type exprDecoder struct {
	builtins  *ir.Builtins
	functions map[string]*ir.Function
}

func (d *exprDecoder) decode(node *yaml.Node) (ir.Expression, error) {
	if node == nil || node.IsZero() {
		return nil, fmt.Errorf("empty expression")
	}
	if node.Kind == yaml.AliasNode {
		return d.decode(node.Alias)
	}
	switch node.Kind {
	case yaml.ScalarNode:
		return d.decodeScalar(node)
	case yaml.MappingNode:
		return d.decodeMapping(node)
	case yaml.SequenceNode:
		return d.decodeBlock(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}

func (d *exprDecoder) decodeScalar(node *yaml.Node) (ir.Expression, error) {
	switch node.Tag {
	case "!!null":
		return d.builtins.NullConst(), nil
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.BoolConst(v), nil
	case "!!int":
		var v int64
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return d.builtins.IntConst(int32(v)), nil
		}
		return d.builtins.LongConst(v), nil
	case "!!float":
		var v float64
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.DoubleConst(v), nil
	default:
		var v string
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.StringConst(v), nil
	}
}

func (d *exprDecoder) decodeBlock(node *yaml.Node) (ir.Expression, error) {
	statements := make([]ir.Statement, 0, len(node.Content))
	for _, child := range node.Content {
		stmt, err := d.decodeStatement(child)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return ir.NewBlock(statements...), nil
}

// decodeStatement admits local variable declarations on top of the expression
// forms; declarations only make sense directly inside a block.
func (d *exprDecoder) decodeStatement(node *yaml.Node) (ir.Statement, error) {
	if node.Kind == yaml.MappingNode {
		fields := make(map[string]*yaml.Node, len(node.Content)/2)
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			fields[node.Content[idx].Value] = node.Content[idx+1]
		}
		if fields["var"] != nil {
			init, err := d.required(fields, "init", node)
			if err != nil {
				return nil, err
			}
			return ir.NewVariable(fields["var"].Value, ir.Type{}, init), nil
		}
	}
	return d.decode(node)
}

func (d *exprDecoder) decodeMapping(node *yaml.Node) (ir.Expression, error) {
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		fields[node.Content[idx].Value] = node.Content[idx+1]
	}

	switch {
	case fields["get"] != nil:
		return ir.NewGetValue(fields["get"].Value), nil

	case fields["set"] != nil:
		value, err := d.required(fields, "to", node)
		if err != nil {
			return nil, err
		}
		return ir.NewSetValue(fields["set"].Value, value), nil

	case fields["var"] != nil:
		return nil, fmt.Errorf("line %d: var declarations are only valid inside a block", node.Line)

	case fields["const"] != nil:
		return d.decodeTypedConst(fields, node)

	case fields["op"] != nil:
		receiver, err := d.required(fields, "on", node)
		if err != nil {
			return nil, err
		}
		args, err := d.decodeArgs(fields["args"])
		if err != nil {
			return nil, err
		}
		return ir.NewOpCall(fields["op"].Value, receiver, args...), nil

	case fields["call"] != nil:
		fn, ok := d.functions[fields["call"].Value]
		if !ok {
			return nil, fmt.Errorf("line %d: call to undeclared function %q", node.Line, fields["call"].Value)
		}
		var receiver ir.Expression
		if on := fields["on"]; on != nil {
			var err error
			receiver, err = d.decode(on)
			if err != nil {
				return nil, err
			}
		}
		args, err := d.decodeArgs(fields["args"])
		if err != nil {
			return nil, err
		}
		return ir.NewCall(fn, receiver, args...), nil

	case fields["block"] != nil:
		return d.decodeBlock(fields["block"])

	case fields["if"] != nil:
		return d.decodeIf(fields, node)

	case fields["when"] != nil:
		return d.decodeWhen(fields, node)

	case fields["while"] != nil:
		body, err := d.required(fields, "do", node)
		if err != nil {
			return nil, err
		}
		condition, err := d.decode(fields["while"])
		if err != nil {
			return nil, err
		}
		return ir.NewWhile(d.label(fields), condition, body), nil

	case fields["dowhile"] != nil:
		body, err := d.required(fields, "do", node)
		if err != nil {
			return nil, err
		}
		condition, err := d.decode(fields["dowhile"])
		if err != nil {
			return nil, err
		}
		return ir.NewDoWhile(d.label(fields), condition, body), nil

	case fields["break"] != nil:
		return ir.NewBreak(fields["break"].Value), nil

	case fields["continue"] != nil:
		return ir.NewContinue(fields["continue"].Value), nil

	case fields["return"] != nil:
		value, err := d.decode(fields["return"])
		if err != nil {
			return nil, err
		}
		return ir.NewReturn(nil, value), nil

	case fields["concat"] != nil:
		args, err := d.decodeArgs(fields["concat"])
		if err != nil {
			return nil, err
		}
		return ir.NewStringConcat(args...), nil

	default:
		return nil, fmt.Errorf("line %d: mapping must specify get, set, var, const, op, call, block, if, when, while, dowhile, break, continue, return, or concat", node.Line)
	}
}

func (d *exprDecoder) decodeIf(fields map[string]*yaml.Node, node *yaml.Node) (ir.Expression, error) {
	condition, err := d.decode(fields["if"])
	if err != nil {
		return nil, err
	}
	then, err := d.required(fields, "then", node)
	if err != nil {
		return nil, err
	}
	branches := []*ir.Branch{ir.NewBranch(condition, then)}
	if elseNode := fields["else"]; elseNode != nil {
		elseExpr, err := d.decode(elseNode)
		if err != nil {
			return nil, err
		}
		branches = append(branches, d.builtins.Else(elseExpr))
	}
	return ir.NewWhen(branches...), nil
}

func (d *exprDecoder) decodeWhen(fields map[string]*yaml.Node, node *yaml.Node) (ir.Expression, error) {
	list := fields["when"]
	if list.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: when expects a branch list", list.Line)
	}
	var branches []*ir.Branch
	for _, branchNode := range list.Content {
		branchFields := make(map[string]*yaml.Node, len(branchNode.Content)/2)
		for idx := 0; idx+1 < len(branchNode.Content); idx += 2 {
			branchFields[branchNode.Content[idx].Value] = branchNode.Content[idx+1]
		}
		condition, err := d.required(branchFields, "cond", branchNode)
		if err != nil {
			return nil, err
		}
		result, err := d.required(branchFields, "result", branchNode)
		if err != nil {
			return nil, err
		}
		branches = append(branches, ir.NewBranch(condition, result))
	}
	if elseNode := fields["else"]; elseNode != nil {
		elseExpr, err := d.decode(elseNode)
		if err != nil {
			return nil, err
		}
		branches = append(branches, d.builtins.Else(elseExpr))
	}
	return ir.NewWhen(branches...), nil
}

func (d *exprDecoder) decodeTypedConst(fields map[string]*yaml.Node, node *yaml.Node) (ir.Expression, error) {
	typeName := "Int"
	if t := fields["type"]; t != nil {
		typeName = t.Value
	}
	raw := fields["const"]
	switch typeName {
	case "Byte":
		var v int8
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.ByteConst(v), nil
	case "Short":
		var v int16
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.ShortConst(v), nil
	case "Int":
		var v int32
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.IntConst(v), nil
	case "Long":
		var v int64
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.LongConst(v), nil
	case "Float":
		var v float32
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.FloatConst(v), nil
	case "Double":
		var v float64
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.DoubleConst(v), nil
	case "Char":
		var v string
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		runes := []rune(v)
		if len(runes) != 1 {
			return nil, fmt.Errorf("line %d: Char constant must be one character", raw.Line)
		}
		return d.builtins.CharConst(runes[0]), nil
	case "Boolean":
		var v bool
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.BoolConst(v), nil
	case "String":
		var v string
		if err := raw.Decode(&v); err != nil {
			return nil, err
		}
		return d.builtins.StringConst(v), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported constant type %q", node.Line, typeName)
	}
}

func (d *exprDecoder) decodeArgs(node *yaml.Node) ([]ir.Expression, error) {
	if node == nil || node.IsZero() {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		expr, err := d.decode(node)
		if err != nil {
			return nil, err
		}
		return []ir.Expression{expr}, nil
	}
	args := make([]ir.Expression, 0, len(node.Content))
	for _, child := range node.Content {
		expr, err := d.decode(child)
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
	}
	return args, nil
}

func (d *exprDecoder) required(fields map[string]*yaml.Node, key string, parent *yaml.Node) (ir.Expression, error) {
	child, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("line %d: missing %q", parent.Line, key)
	}
	return d.decode(child)
}

func (d *exprDecoder) label(fields map[string]*yaml.Node) string {
	if l := fields["label"]; l != nil {
		return l.Value
	}
	return ""
}

func (d *exprDecoder) typeFor(name string) (ir.Type, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Unit" {
		return d.builtins.UnitType, nil
	}
	nullable := strings.HasSuffix(name, "?")
	base := strings.TrimSuffix(name, "?")
	class := d.builtins.ClassForName(base)
	if class == nil {
		return ir.Type{}, fmt.Errorf("unknown type %q", name)
	}
	typ := ir.ClassType(class)
	if nullable {
		typ = typ.AsNullable()
	}
	return typ, nil
}
