package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuard(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{name: "existing directory", dir: tmpDir},
		{name: "current directory", dir: "."},
		{name: "empty", dir: "", wantErr: true},
		{name: "missing directory", dir: filepath.Join(tmpDir, "missing"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGuard(tt.dir)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(g.Root()))
		})
	}
}

func TestGuard_Resolve(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "frames"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "frames", "a.html"), []byte("<p>a</p>"), 0600))

	g, err := NewGuard(root)
	require.NoError(t, err)

	tests := []struct {
		name    string
		rel     string
		wantErr bool
	}{
		{name: "file below root", rel: "frames/a.html"},
		{name: "missing file below root", rel: "frames/b.html"},
		{name: "dot segments that stay inside", rel: "frames/../frames/a.html"},
		{name: "traversal", rel: "../outside.html", wantErr: true},
		{name: "deep traversal", rel: "frames/../../../etc/passwd", wantErr: true},
		{name: "absolute outside", rel: "/etc/passwd", wantErr: true},
		{name: "empty", rel: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := g.Resolve(tt.rel)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, g.Contains(p))
		})
	}
}

func TestGuard_ResolveRefusesSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.html"), []byte("x"), 0600))
	if err := os.Symlink(filepath.Join(outside, "secret.html"), filepath.Join(root, "link.html")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	g, err := NewGuard(root)
	require.NoError(t, err)

	_, err = g.Resolve("link.html")
	assert.Error(t, err)

	require.NoError(t, g.Allow(outside))
	_, err = g.Resolve("link.html")
	assert.NoError(t, err)
}

func TestGuard_ContainsIsNotAPrefixMatch(t *testing.T) {
	g := &Guard{root: filepath.FromSlash("/pages/site")}
	assert.True(t, g.Contains(filepath.FromSlash("/pages/site")))
	assert.True(t, g.Contains(filepath.FromSlash("/pages/site/a.html")))
	assert.False(t, g.Contains(filepath.FromSlash("/pages/site-other/a.html")))
}
