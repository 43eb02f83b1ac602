package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEngineFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadEngineFile(t *testing.T) {
	path := writeEngineFile(t, `
granularity: word
poll_interval: 500ms
skip_patterns: [nav, "x-*"]
predicates:
  - name: callout
    roles: [note]
`)

	f, err := LoadEngineFile(path)
	require.NoError(t, err)

	section := NewNavigationSection()
	require.NoError(t, section.SetData(map[string]interface{}{"verbose": false}))
	require.NoError(t, f.Apply(section))

	settings := section.Settings()
	assert.Equal(t, shifter.Word, settings.Granularity)
	assert.Equal(t, 500*time.Millisecond, settings.PollInterval)
	assert.False(t, settings.Verbose, "keys absent from the file keep their stored value")
	assert.Equal(t, []string{"nav", "x-*"}, section.Patterns())

	reg, err := f.Registry()
	require.NoError(t, err)
	assert.Contains(t, reg.Names(), "callout")
	assert.Contains(t, reg.Names(), "heading")

	doc, err := htmldom.ParseString(`<div role="note">Careful</div>`, htmldom.Options{})
	require.NoError(t, err)
	callout, err := reg.Lookup("callout")
	require.NoError(t, err)
	assert.True(t, callout(doc.Root().FirstChild()))
}

func TestLoadEngineFile_Errors(t *testing.T) {
	_, err := LoadEngineFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadEngineFile(writeEngineFile(t, "granularity: [unclosed"))
	assert.Error(t, err)

	f, err := LoadEngineFile(writeEngineFile(t, "history_size: 0"))
	require.NoError(t, err)
	assert.Error(t, f.Apply(NewNavigationSection()))

	f, err = LoadEngineFile(writeEngineFile(t, "predicates:\n  - name: heading\n    tags: [h1]\n"))
	require.NoError(t, err)
	_, err = f.Registry()
	assert.ErrorContains(t, err, "already registered")
}
