package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaqtpanjara/kotlin/pkg/driver"
	"github.com/vaqtpanjara/kotlin/pkg/interpreter"
	"github.com/vaqtpanjara/kotlin/pkg/ir"
)

const version = "0.1.0"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "constexpr",
		Short:         "Fold IR expressions described by YAML manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEvalCommand())
	root.AddCommand(newFetchCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newEvalCommand() *cobra.Command {
	var (
		maxSteps  int
		maxDepth  int
		bodiesDir string
		showSteps bool
	)
	cmd := &cobra.Command{
		Use:   "eval <manifest>",
		Short: "Evaluate a manifest's entry expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := driver.LoadManifest(args[0])
			if err != nil {
				return err
			}

			bodies := manifest.Bodies
			if bodiesDir != "" {
				extra, err := driver.LoadSnapshotBodies(bodiesDir)
				if err != nil {
					return err
				}
				for signature, body := range extra {
					if _, ok := bodies[signature]; !ok {
						bodies[signature] = body
					}
				}
			}

			opts := []interpreter.Option{interpreter.WithBodies(bodies)}
			if steps := pickBudget(maxSteps, manifest.MaxSteps); steps > 0 {
				opts = append(opts, interpreter.WithMaxSteps(steps))
			}
			if depth := pickBudget(maxDepth, manifest.MaxStackDepth); depth > 0 {
				opts = append(opts, interpreter.WithMaxStackDepth(depth))
			}

			session := interpreter.New(manifest.Module, opts...)
			result, err := session.Evaluate(manifest.Entry)
			if err != nil {
				return fmt.Errorf("session %s: %w", session.SessionID(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResult(result))
			if showSteps {
				fmt.Fprintf(cmd.ErrOrStderr(), "steps: %d\n", session.Steps())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget override")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "call-stack depth budget override")
	cmd.Flags().StringVar(&bodiesDir, "bodies-dir", "", "directory of extra body manifests")
	cmd.Flags().BoolVar(&showSteps, "steps", false, "report consumed steps on stderr")
	return cmd
}

func newFetchCommand() *cobra.Command {
	var (
		cacheDir string
		gitURL   string
		rev      string
		tag      string
		branch   string
		lockPath string
	)
	cmd := &cobra.Command{
		Use:   "fetch <name>",
		Short: "Fetch a pinned body-manifest bundle into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := driver.NewSnapshotFetcher(cacheDir)
			spec := &driver.SnapshotSpec{Git: gitURL, Rev: rev, Tag: tag, Branch: branch}
			snap, checkoutDir, err := fetcher.Fetch(args[0], spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n  %s\n  %s\n", snap.Name, snap.Version, snap.Source, checkoutDir)

			if lockPath == "" {
				return nil
			}
			lock, err := driver.LoadLockfile(lockPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return err
				}
				lock = driver.NewLockfile(filepath.Base(filepath.Dir(lockPath)), "constexpr "+version)
			}
			replaced := false
			for idx, existing := range lock.Snapshots {
				if existing != nil && existing.Name == snap.Name {
					lock.Snapshots[idx] = snap
					replaced = true
					break
				}
			}
			if !replaced {
				lock.Snapshots = append(lock.Snapshots, snap)
			}
			return driver.WriteLockfile(lock, lockPath)
		},
	}
	cmd.Flags().StringVar(&cacheDir, "cache", defaultCacheDir(), "snapshot cache directory")
	cmd.Flags().StringVar(&gitURL, "git", "", "bundle repository URL")
	cmd.Flags().StringVar(&rev, "rev", "", "pin to a commit")
	cmd.Flags().StringVar(&tag, "tag", "", "pin to a tag")
	cmd.Flags().StringVar(&branch, "branch", "", "pin to a branch head")
	cmd.Flags().StringVar(&lockPath, "lock", "", "snapshots.lock to update")
	_ = cmd.MarkFlagRequired("git")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the constexpr version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "constexpr", version)
		},
	}
}

func pickBudget(flag, manifest int) int {
	if flag > 0 {
		return flag
	}
	return manifest
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "constexpr")
}

// renderResult prints a folded constant the way a literal would be written,
// and an error expression as its rendered failure text.
func renderResult(expr ir.Expression) string {
	switch node := expr.(type) {
	case *ir.Const:
		switch v := node.Value.(type) {
		case nil:
			if node.Type.IsUnit() {
				return "Unit"
			}
			return "null"
		case string:
			return fmt.Sprintf("%q", v)
		default:
			return fmt.Sprintf("%v", v)
		}
	case *ir.ErrorExpression:
		return node.Description
	default:
		return fmt.Sprintf("<%s>", expr.ElementKind())
	}
}
