package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile pins the manifest snapshots a project evaluates against, so
// repeated runs substitute identical bodies.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Snapshots []*LockedSnapshot
}

// LockedSnapshot captures one resolved bundle entry.
type LockedSnapshot struct {
	Name      string
	Version   string
	Source    string
	Checksum  string
	Manifests []string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Snapshots: []*LockedSnapshot{},
	}
}

// FindSnapshot returns the entry for the named bundle, or nil.
func (l *Lockfile) FindSnapshot(name string) *LockedSnapshot {
	name = sanitizeSegment(name)
	for _, snap := range l.Snapshots {
		if snap != nil && snap.Name == name {
			return snap
		}
	}
	return nil
}

// LoadLockfile parses a snapshots.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	lock.normalize()
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	data := lock.toDisk()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	sort.SliceStable(l.Snapshots, func(i, j int) bool {
		return l.Snapshots[i].Name < l.Snapshots[j].Name
	})
	for _, snap := range l.Snapshots {
		if snap == nil {
			continue
		}
		snap.Name = sanitizeSegment(snap.Name)
		snap.Version = strings.TrimSpace(snap.Version)
		snap.Source = strings.TrimSpace(snap.Source)
		snap.Checksum = strings.TrimSpace(snap.Checksum)
		sort.Strings(snap.Manifests)
	}
}

func (l *Lockfile) toDisk() lockfileDisk {
	snaps := make([]lockfileSnapshot, 0, len(l.Snapshots))
	for _, snap := range l.Snapshots {
		if snap == nil {
			continue
		}
		snaps = append(snaps, lockfileSnapshot{
			Name:      snap.Name,
			Version:   snap.Version,
			Source:    snap.Source,
			Checksum:  snap.Checksum,
			Manifests: snap.Manifests,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Snapshots: snaps,
	}
}

type lockfileDisk struct {
	Root      string             `yaml:"root"`
	Generated string             `yaml:"generated"`
	Tool      string             `yaml:"tool"`
	Snapshots []lockfileSnapshot `yaml:"snapshots"`
}

type lockfileSnapshot struct {
	Name      string   `yaml:"name"`
	Version   string   `yaml:"version"`
	Source    string   `yaml:"source"`
	Checksum  string   `yaml:"checksum"`
	Manifests []string `yaml:"manifests"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      sanitizeSegment(d.Root),
		Generated: strings.TrimSpace(d.Generated),
		Tool:      strings.TrimSpace(d.Tool),
		Snapshots: make([]*LockedSnapshot, 0, len(d.Snapshots)),
	}
	for _, snap := range d.Snapshots {
		lock.Snapshots = append(lock.Snapshots, &LockedSnapshot{
			Name:      sanitizeSegment(snap.Name),
			Version:   strings.TrimSpace(snap.Version),
			Source:    strings.TrimSpace(snap.Source),
			Checksum:  strings.TrimSpace(snap.Checksum),
			Manifests: snap.Manifests,
		})
	}
	lock.normalize()
	return lock
}
