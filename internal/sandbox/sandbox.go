package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jayErrors "github.com/jaycli/jay/internal/errors"
)

// Sandbox confines filesystem and process actions to a workspace root.
// It is built once from explicit configuration; decisions are computed per
// invocation and never cached, since the filesystem can change between calls.
type Sandbox struct {
	root           string
	maxTimeout     time.Duration
	maxOutputBytes int64
}

type Options struct {
	// Workspace is the confinement root. Required.
	Workspace string
	// MaxTimeout caps every RunProcess invocation regardless of the
	// caller-requested timeout.
	MaxTimeout time.Duration
	// MaxOutputBytes is the captured-output ceiling per stream.
	MaxOutputBytes int64
}

const (
	DefaultMaxTimeout     = 60 * time.Second
	DefaultMaxOutputBytes = 64 * 1024
)

func New(opts Options) (*Sandbox, error) {
	root := strings.TrimSpace(opts.Workspace)
	if root == "" {
		return nil, fmt.Errorf("sandbox: workspace root is required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("sandbox: resolve workspace root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("sandbox: workspace root not accessible: %w", err)
	}

	if opts.MaxTimeout <= 0 {
		opts.MaxTimeout = DefaultMaxTimeout
	}
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = DefaultMaxOutputBytes
	}

	return &Sandbox{
		root:           resolved,
		maxTimeout:     opts.MaxTimeout,
		maxOutputBytes: opts.MaxOutputBytes,
	}, nil
}

// Root returns the canonical workspace root.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve joins pathArg against the workspace root, canonicalizes it and
// fails when the canonical result is not a descendant of the root. Both
// ".."-escapes and symlink escapes are rejected. The target itself does not
// need to exist; the deepest existing ancestor is symlink-resolved so a
// not-yet-created file behind a symlinked directory cannot slip out.
func (s *Sandbox) Resolve(pathArg string) (string, error) {
	trimmed := strings.TrimSpace(pathArg)
	if trimmed == "" {
		return "", jayErrors.InvalidInput("path is empty")
	}

	candidate := trimmed
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(s.root, candidate)
	}
	candidate = filepath.Clean(candidate)

	resolved, err := resolveExistingAncestor(candidate)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", pathArg, err)
	}

	if !isDescendant(s.root, resolved) {
		return "", jayErrors.SandboxViolation(
			fmt.Sprintf("path %q escapes workspace root %q", pathArg, s.root))
	}
	return resolved, nil
}

// resolveExistingAncestor canonicalizes the longest existing prefix of path
// and re-joins the non-existent suffix onto it.
func resolveExistingAncestor(path string) (string, error) {
	existing := path
	var suffix []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		suffix = append([]string{filepath.Base(existing)}, suffix...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	if len(suffix) > 0 {
		resolved = filepath.Join(append([]string{resolved}, suffix...)...)
	}
	return resolved, nil
}

func isDescendant(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
