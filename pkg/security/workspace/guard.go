// Package workspace keeps file access by loaded pages inside the directory
// they were opened from. Frame sources such as "../../etc/passwd" resolve
// outside that directory and are refused.
package workspace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Guard resolves page-relative paths and checks they stay under its root
// or one of the extra directories allowed with Allow.
type Guard struct {
	root    string
	allowed []string
}

// NewGuard creates a guard rooted at dir, which must exist. Symlinks in dir
// are evaluated so later comparisons see the same prefix.
func NewGuard(dir string) (*Guard, error) {
	if dir == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	eval, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate workspace directory symlinks: %w", err)
	}
	return &Guard{root: eval}, nil
}

// Root returns the evaluated workspace directory.
func (g *Guard) Root() string {
	return g.root
}

// Allow adds a directory outside the root whose files may be read too.
func (g *Guard) Allow(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}
	eval, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fmt.Errorf("failed to evaluate directory symlinks: %w", err)
	}
	g.allowed = append(g.allowed, eval)
	return nil
}

// Resolve turns a slash-separated path relative to the root into an
// absolute file path, refusing anything that ends up outside.
func (g *Guard) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	p := filepath.FromSlash(rel)
	if !filepath.IsAbs(p) {
		p = filepath.Join(g.root, p)
	}
	p = filepath.Clean(p)

	// A missing file is reported by the caller's read, not here.
	if eval, err := filepath.EvalSymlinks(p); err == nil {
		p = eval
	}
	if !g.Contains(p) {
		return "", fmt.Errorf("path '%s' is outside workspace boundaries", rel)
	}
	return p, nil
}

// Contains reports whether an absolute path is the root, below it, or below
// an allowed directory.
func (g *Guard) Contains(abs string) bool {
	if within(abs, g.root) {
		return true
	}
	for _, dir := range g.allowed {
		if within(abs, dir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	sep := string(filepath.Separator)
	return path == dir || strings.HasPrefix(path+sep, dir+sep)
}
