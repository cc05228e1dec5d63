// Package driver loads evaluation manifests: YAML documents declaring helper
// functions, substituted bodies for functions whose IR is not locally present,
// and the entry expression to fold. Manifests come from disk or from a pinned
// git snapshot.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

// Manifest is one decoded evaluation manifest.
type Manifest struct {
	Name          string
	MaxSteps      int
	MaxStackDepth int

	Module *ir.Module
	Bodies map[string]*ir.Block
	Entry  ir.Expression
}

type manifestDisk struct {
	Name          string               `yaml:"name"`
	MaxSteps      int                  `yaml:"max_steps"`
	MaxStackDepth int                  `yaml:"max_stack_depth"`
	Functions     []functionDisk       `yaml:"functions"`
	Bodies        map[string]yaml.Node `yaml:"bodies"`
	Entry         yaml.Node            `yaml:"entry"`
}

type functionDisk struct {
	Name    string      `yaml:"name"`
	Params  []paramDisk `yaml:"params"`
	Returns string      `yaml:"returns"`
	Body    yaml.Node   `yaml:"body"`
}

type paramDisk struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Default yaml.Node `yaml:"default"`
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", abs, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a manifest document against a fresh built-in universe.
func ParseManifest(data []byte) (*Manifest, error) {
	return ParseManifestWith(data, ir.NewBuiltins())
}

// ParseManifestWith decodes against an existing built-in universe so the
// resulting IR shares class identity with a session already evaluating over
// it; substituted bodies merged across manifests need this.
func ParseManifestWith(data []byte, builtins *ir.Builtins) (*Manifest, error) {
	var disk manifestDisk
	if err := yaml.Unmarshal(data, &disk); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}

	var problems []string
	if strings.TrimSpace(disk.Name) == "" {
		problems = append(problems, "name must be provided")
	}
	if disk.Entry.IsZero() {
		problems = append(problems, "entry expression must be provided")
	}
	module := ir.NewModule(sanitizeSegment(disk.Name), builtins)
	dec := &exprDecoder{builtins: builtins, functions: make(map[string]*ir.Function)}

	// Declare every function before decoding any body so calls resolve
	// regardless of declaration order.
	declared := make([]*ir.Function, len(disk.Functions))
	for idx, fd := range disk.Functions {
		if strings.TrimSpace(fd.Name) == "" {
			problems = append(problems, fmt.Sprintf("functions[%d]: name must be provided", idx))
			continue
		}
		ret, err := dec.typeFor(fd.Returns)
		if err != nil {
			problems = append(problems, fmt.Sprintf("functions[%d]: %v", idx, err))
			continue
		}
		params := make([]*ir.ValueParameter, 0, len(fd.Params))
		for _, pd := range fd.Params {
			typ, err := dec.typeFor(pd.Type)
			if err != nil {
				problems = append(problems, fmt.Sprintf("functions[%d].%s: %v", idx, pd.Name, err))
				continue
			}
			params = append(params, ir.NewValueParameter(pd.Name, typ))
		}
		fn := ir.NewFunction(fd.Name, ret, params...)
		module.AddFunction(fn)
		dec.functions[fd.Name] = fn
		declared[idx] = fn
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("manifest: %s", strings.Join(problems, "; "))
	}

	for idx, fd := range disk.Functions {
		fn := declared[idx]
		if fn == nil {
			continue
		}
		for pidx, pd := range fd.Params {
			if pd.Default.IsZero() || pidx >= len(fn.Params) {
				continue
			}
			expr, err := dec.decode(&fd.Params[pidx].Default)
			if err != nil {
				return nil, fmt.Errorf("manifest: functions[%d].%s default: %w", idx, pd.Name, err)
			}
			fn.Params[pidx].Default = expr
		}
		if fd.Body.IsZero() {
			return nil, fmt.Errorf("manifest: functions[%d] %q: body must be provided", idx, fd.Name)
		}
		expr, err := dec.decode(&disk.Functions[idx].Body)
		if err != nil {
			return nil, fmt.Errorf("manifest: functions[%d] %q: %w", idx, fd.Name, err)
		}
		fn.Body = asBlock(expr)
	}

	bodies := make(map[string]*ir.Block, len(disk.Bodies))
	for signature, node := range disk.Bodies {
		node := node
		expr, err := dec.decode(&node)
		if err != nil {
			return nil, fmt.Errorf("manifest: bodies[%q]: %w", signature, err)
		}
		bodies[signature] = asBlock(expr)
	}

	entry, err := dec.decode(&disk.Entry)
	if err != nil {
		return nil, fmt.Errorf("manifest: entry: %w", err)
	}

	return &Manifest{
		Name:          sanitizeSegment(disk.Name),
		MaxSteps:      disk.MaxSteps,
		MaxStackDepth: disk.MaxStackDepth,
		Module:        module,
		Bodies:        bodies,
		Entry:         entry,
	}, nil
}

func asBlock(expr ir.Expression) *ir.Block {
	if block, ok := expr.(*ir.Block); ok {
		return block
	}
	stmt, ok := expr.(ir.Statement)
	if !ok {
		return ir.NewBlock()
	}
	return ir.NewBlock(stmt)
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		}
	}
	return b.String()
}
