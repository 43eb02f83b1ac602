package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/entrhq/cursornav/pkg/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ navigation.PositionRecorder = (*PositionStore)(nil)

func TestPositionStore_PersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	nav := NewNavigationSection()
	positions := NewPositionStore(store, nav)

	positions.RecordPosition("https://example.test/", dom.Point{X: 3, Y: 40})
	positions.RecordPosition("", dom.Point{X: 1, Y: 1})
	positions.RecordGranularity(int(shifter.Word))
	assert.Equal(t, shifter.Word, nav.Settings().Granularity)

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	again := NewPositionStore(reloaded, nil)

	p, ok := again.Position("https://example.test/")
	require.True(t, ok)
	assert.Equal(t, dom.Point{X: 3, Y: 40}, p)
	_, ok = again.Position("")
	assert.False(t, ok)

	data, err := reloaded.GetSection(SectionIDNavigation)
	require.NoError(t, err)
	assert.Equal(t, "Word", data["granularity"])
}

func TestPositionStore_SavesOnDocumentChange(t *testing.T) {
	store := newMockStore()
	positions := NewPositionStore(store, nil)

	for y := 0; y < 5; y++ {
		positions.RecordPosition("first", dom.Point{X: 0, Y: y})
	}
	assert.Zero(t, store.saves)

	positions.RecordPosition("second", dom.Point{X: 1, Y: 1})
	assert.Equal(t, 1, store.saves)
	p, ok := positions.Position("first")
	require.True(t, ok)
	assert.Equal(t, dom.Point{X: 0, Y: 4}, p)

	positions.RecordPosition("second", dom.Point{X: 1, Y: 2})
	assert.Equal(t, 1, store.saves)
}

func TestPositionStore_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	positions := NewPositionStore(store, nil)

	require.NoError(t, positions.Flush())
	positions.RecordPosition("doc", dom.Point{X: 2, Y: 9})
	require.NoError(t, positions.Flush())

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	p, ok := NewPositionStore(reloaded, nil).Position("doc")
	require.True(t, ok)
	assert.Equal(t, dom.Point{X: 2, Y: 9}, p)
}

func TestPositionStore_FlushReportsFailure(t *testing.T) {
	store := newMockStore()
	positions := NewPositionStore(store, nil)

	require.NoError(t, positions.Flush())
	assert.Zero(t, store.saves)

	store.saveErr = errors.New("read-only")
	positions.RecordPosition("doc", dom.Point{X: 1, Y: 1})
	assert.Error(t, positions.Flush())

	store.saveErr = nil
	require.NoError(t, positions.Flush())
	require.NoError(t, positions.Flush())
	assert.Equal(t, 2, store.saves)
}

func TestPositionStore_FailuresAreSwallowed(t *testing.T) {
	store := newMockStore()
	store.saveErr = errors.New("read-only")
	positions := NewPositionStore(store, NewNavigationSection())

	assert.NotPanics(t, func() {
		positions.RecordPosition("doc", dom.Point{X: 1, Y: 2})
		positions.RecordGranularity(int(shifter.Line))
	})

	p, ok := positions.Position("doc")
	require.True(t, ok)
	assert.Equal(t, dom.Point{X: 1, Y: 2}, p)
}

func TestPositionStore_RecordsFromManager(t *testing.T) {
	store := newMockStore()
	nav := NewNavigationSection()
	positions := NewPositionStore(store, nav)

	doc, err := htmldom.ParseString(`<p>First line</p>`, htmldom.Options{Location: "page"})
	require.NoError(t, err)
	m := navigation.New(doc, eventloop.NewManual(),
		navigation.WithProvider(htmldom.NewDescriber(doc)),
		navigation.WithPositionRecorder(positions))

	m.SetGranularity(shifter.Line, true)
	require.True(t, m.Navigate())
	m.FinishNavCommand("", false, speech.Flush)

	assert.Equal(t, shifter.Line, nav.Settings().Granularity)
	_, ok := positions.Position("page")
	assert.True(t, ok)
}
