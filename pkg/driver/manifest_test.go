package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

func TestParseManifestBasic(t *testing.T) {
	manifest, err := ParseManifest([]byte(strings.TrimSpace(`
name: demo-fold
max_steps: 1000
functions:
  - name: square
    params: [{name: n, type: Int}]
    returns: Int
    body: {op: times, on: {get: n}, args: [{get: n}]}
entry: {call: square, args: [7]}
`)))
	if err != nil {
		t.Fatalf("ParseManifest returned error: %v", err)
	}

	if got, want := manifest.Name, "demo_fold"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if manifest.MaxSteps != 1000 {
		t.Fatalf("MaxSteps = %d, want 1000", manifest.MaxSteps)
	}
	if len(manifest.Module.Functions) != 1 {
		t.Fatalf("module functions = %d, want 1", len(manifest.Module.Functions))
	}
	square := manifest.Module.Functions[0]
	if square.Name != "square" || len(square.Params) != 1 || square.Body == nil {
		t.Fatalf("square not declared as expected: %#v", square)
	}
	if square.Params[0].Type.Class != manifest.Module.Builtins.Int {
		t.Fatalf("param type = %s, want Int", square.Params[0].Type)
	}

	call, ok := manifest.Entry.(*ir.Call)
	if !ok {
		t.Fatalf("entry is %T, want *ir.Call", manifest.Entry)
	}
	if call.Function != square {
		t.Fatal("entry call does not reference the declared function")
	}
}

func TestParseManifestBodies(t *testing.T) {
	manifest, err := ParseManifest([]byte(strings.TrimSpace(`
name: ext
bodies:
  "Helper.triple(Int)":
    - {op: times, on: {get: n}, args: [3]}
entry: 1
`)))
	if err != nil {
		t.Fatalf("ParseManifest returned error: %v", err)
	}
	body, ok := manifest.Bodies["Helper.triple(Int)"]
	if !ok {
		t.Fatalf("bodies missing entry: %#v", manifest.Bodies)
	}
	if len(body.Statements) != 1 {
		t.Fatalf("body statements = %d, want 1", len(body.Statements))
	}
}

func TestParseManifestScalars(t *testing.T) {
	manifest, err := ParseManifest([]byte(strings.TrimSpace(`
name: scalars
entry:
  block:
    - true
    - 3.5
    - 9999999999
    - hello
    - null
`)))
	if err != nil {
		t.Fatalf("ParseManifest returned error: %v", err)
	}
	block, ok := manifest.Entry.(*ir.Block)
	if !ok {
		t.Fatalf("entry is %T, want *ir.Block", manifest.Entry)
	}
	b := manifest.Module.Builtins
	wantClasses := []*ir.Class{b.Boolean, b.Double, b.Long, b.String, b.Any}
	if len(block.Statements) != len(wantClasses) {
		t.Fatalf("statements = %d, want %d", len(block.Statements), len(wantClasses))
	}
	for idx, want := range wantClasses {
		konst, ok := block.Statements[idx].(*ir.Const)
		if !ok {
			t.Fatalf("statement %d is %T, want *ir.Const", idx, block.Statements[idx])
		}
		if konst.Type.Class != want {
			t.Fatalf("statement %d type = %s, want %s", idx, konst.Type, want.Name)
		}
	}
}

func TestParseManifestControlFlow(t *testing.T) {
	manifest, err := ParseManifest([]byte(strings.TrimSpace(`
name: loops
entry:
  block:
    - {var: acc, init: 0}
    - {var: i, init: 0}
    - while: {op: less, on: {get: i}, args: [5]}
      do:
        block:
          - {set: acc, to: {op: plus, on: {get: acc}, args: [{get: i}]}}
          - {set: i, to: {op: plus, on: {get: i}, args: [1]}}
    - {get: acc}
`)))
	if err != nil {
		t.Fatalf("ParseManifest returned error: %v", err)
	}
	block := manifest.Entry.(*ir.Block)
	if len(block.Statements) != 4 {
		t.Fatalf("statements = %d, want 4", len(block.Statements))
	}
	if _, ok := block.Statements[0].(*ir.Variable); !ok {
		t.Fatalf("statement 0 is %T, want *ir.Variable", block.Statements[0])
	}
	loop, ok := block.Statements[2].(*ir.While)
	if !ok {
		t.Fatalf("statement 2 is %T, want *ir.While", block.Statements[2])
	}
	if loop.Condition == nil || loop.Body == nil {
		t.Fatal("while loop missing condition or body")
	}
}

func TestParseManifestValidation(t *testing.T) {
	_, err := ParseManifest([]byte(strings.TrimSpace(`
name: ""
functions:
  - name: broken
    returns: Whatever
    body: 1
`)))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	msg := err.Error()
	for _, fragment := range []string{
		"name must be provided",
		"entry expression must be provided",
		`unknown type "Whatever"`,
	} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("validation error missing fragment %q: %s", fragment, msg)
		}
	}
}

func TestParseManifestUndeclaredCall(t *testing.T) {
	_, err := ParseManifest([]byte(strings.TrimSpace(`
name: demo
entry: {call: missing}
`)))
	if err == nil {
		t.Fatal("expected error for undeclared call, got nil")
	}
	if !strings.Contains(err.Error(), `undeclared function "missing"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadManifestFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fold.yml")
	contents := strings.TrimSpace(`
name: disk
entry: {op: plus, on: 2, args: [3]}
`) + "\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if _, ok := manifest.Entry.(*ir.Call); !ok {
		t.Fatalf("entry is %T, want *ir.Call", manifest.Entry)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshots.lock")

	lock := NewLockfile("demo-project", "constexpr 0.1.0")
	lock.Snapshots = append(lock.Snapshots, &LockedSnapshot{
		Name:      "stdlib-bodies",
		Version:   "v1.0.0@abc123",
		Source:    "git+https://example.com/bodies.git@abc123",
		Checksum:  "deadbeef",
		Manifests: []string{"math.yml", "collections.yml"},
	})
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile returned error: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile returned error: %v", err)
	}
	if loaded.Root != "demo_project" {
		t.Fatalf("Root = %q, want demo_project", loaded.Root)
	}
	snap := loaded.FindSnapshot("stdlib-bodies")
	if snap == nil {
		t.Fatalf("snapshot missing: %#v", loaded.Snapshots)
	}
	if snap.Checksum != "deadbeef" {
		t.Fatalf("Checksum = %q, want deadbeef", snap.Checksum)
	}
	if len(snap.Manifests) != 2 || snap.Manifests[0] != "collections.yml" {
		t.Fatalf("Manifests not sorted: %#v", snap.Manifests)
	}
}
