package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempLogDir points the package at a fresh directory with a fresh
// session for the duration of the test.
func useTempLogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	origDir, origErr := logDir, initErr
	origSession := sessionID
	origDebug := DebugEnabled()

	logDir, initErr = dir, nil
	initOnce = sync.Once{}
	sessionID, sessionIDOnce = "", sync.Once{}

	t.Cleanup(func() {
		logDir, initErr = origDir, origErr
		initOnce = sync.Once{}
		sessionID, sessionIDOnce = origSession, sync.Once{}
		SetDebug(origDebug)
	})
	return dir
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	data, err := os.ReadFile(l.LogPath())
	require.NoError(t, err)
	return string(data)
}

func TestNewLogger(t *testing.T) {
	dir := useTempLogDir(t)

	l, err := NewLogger("engine")
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, dir, filepath.Dir(l.LogPath()))
	assert.Equal(t, GetSessionID(), l.SessionID())
	assert.Equal(t, l.SessionID()+"-cursornav.log", filepath.Base(l.LogPath()))
	assert.Equal(t, l.file, l.Writer())
}

func TestLogger_Levels(t *testing.T) {
	useTempLogDir(t)
	SetDebug(true)

	l, err := NewLogger("frames")
	require.NoError(t, err)
	defer l.Close()

	l.Debugf("entering %d", 1)
	l.Infof("focused")
	l.Warnf("retrying")
	l.Errorf("gave up")
	l.Printf("plain")

	content := readLog(t, l)
	for _, want := range []string{
		"[frames] [DEBUG] entering 1",
		"[frames] [INFO] focused",
		"[frames] [WARN] retrying",
		"[frames] [ERROR] gave up",
		"[frames] [INFO] plain",
	} {
		assert.Contains(t, content, want)
	}
}

func TestLogger_DebugDisabled(t *testing.T) {
	useTempLogDir(t)
	SetDebug(false)

	l, err := NewLogger("reading")
	require.NoError(t, err)
	defer l.Close()

	l.Debugf("hidden")
	l.Infof("shown")

	content := readLog(t, l)
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "shown")
	assert.False(t, DebugEnabled())
}

func TestLogger_ComponentsShareFile(t *testing.T) {
	useTempLogDir(t)

	a, err := NewLogger("a")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewLogger("b")
	require.NoError(t, err)
	defer b.Close()

	require.Equal(t, a.LogPath(), b.LogPath())
	a.Infof("from a")
	b.Infof("from b")

	content := readLog(t, a)
	assert.Contains(t, content, "[a] [INFO] from a")
	assert.Contains(t, content, "[b] [INFO] from b")
	assert.Less(t, strings.Index(content, "from a"), strings.Index(content, "from b"))
}

func TestLogger_FallsBackToStderr(t *testing.T) {
	dir := useTempLogDir(t)
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	logDir = filepath.Join(blocker, "logs")

	l, err := NewLogger("fallback")
	require.Error(t, err)
	require.NotNil(t, l)
	assert.Empty(t, l.LogPath())
	assert.Equal(t, os.Stderr, l.Writer())

	l.Warnf("still works")
	assert.NoError(t, l.Close())
}

func TestGetLogDirectory(t *testing.T) {
	dir := useTempLogDir(t)

	got, err := GetLogDirectory()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestLogger_CloseTwice(t *testing.T) {
	useTempLogDir(t)

	l, err := NewLogger("close")
	require.NoError(t, err)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "Level(9)", Level(9).String())
}
