package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

// SnapshotSpec pins a remote manifest bundle: a git repository holding one or
// more manifest YAML files, fixed to a revision, tag, or branch.
type SnapshotSpec struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

// SnapshotFetcher materialises pinned bundles into a local cache directory,
// one checkout per resolved revision.
type SnapshotFetcher struct {
	cacheDir string
}

// NewSnapshotFetcher returns a fetcher rooted at cacheDir, or nil when no
// cache directory is configured.
func NewSnapshotFetcher(cacheDir string) *SnapshotFetcher {
	if cacheDir == "" {
		return nil
	}
	return &SnapshotFetcher{cacheDir: cacheDir}
}

// Fetch ensures the bundle checkout exists and returns its lock entry plus the
// checkout directory. An already-present checkout for an explicit revision is
// reused without touching the network.
func (f *SnapshotFetcher) Fetch(name string, spec *SnapshotSpec) (*LockedSnapshot, string, error) {
	if f == nil {
		return nil, "", fmt.Errorf("snapshot fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("snapshot %q: git URL required", name)
	}

	baseDir := filepath.Join(f.cacheDir, "snapshots", sanitizeSegment(name))
	version, commit, err := ensureCheckout(baseDir, url, spec)
	if err != nil {
		return nil, "", err
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", err
	}

	manifests, err := listManifestFiles(checkoutDir)
	if err != nil {
		return nil, "", err
	}

	return &LockedSnapshot{
		Name:      sanitizeSegment(name),
		Version:   version,
		Source:    fmt.Sprintf("git+%s@%s", url, commit),
		Checksum:  checksum,
		Manifests: manifests,
	}, checkoutDir, nil
}

// LoadSnapshotBodies decodes every manifest in the checkout and merges their
// substituted bodies; a signature appearing twice is an error rather than a
// silent override.
func LoadSnapshotBodies(checkoutDir string) (map[string]*ir.Block, error) {
	files, err := listManifestFiles(checkoutDir)
	if err != nil {
		return nil, err
	}
	builtins := ir.NewBuiltins()
	bodies := make(map[string]*ir.Block)
	sources := make(map[string]string)
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(checkoutDir, rel))
		if err != nil {
			return nil, fmt.Errorf("snapshot: read %s: %w", rel, err)
		}
		manifest, err := ParseManifestWith(data, builtins)
		if err != nil {
			return nil, err
		}
		for signature, body := range manifest.Bodies {
			if existing, ok := sources[signature]; ok {
				return nil, fmt.Errorf("snapshot: body %q defined in both %s and %s", signature, existing, rel)
			}
			sources[signature] = rel
			bodies[signature] = body
		}
	}
	return bodies, nil
}

func listManifestFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: traverse %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func ensureCheckout(baseDir, url string, spec *SnapshotSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := revisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if explicit := strings.TrimSpace(spec.Rev); explicit != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(explicit))
		if _, err := os.Stat(existing); err == nil {
			return explicit, explicit, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := pinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func revisionFromSpec(spec *SnapshotSpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("snapshots require rev, tag, or branch")
}

func pinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.Base(p)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	result := b.String()
	if result == "" {
		return "head"
	}
	return result
}
