package config

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSection is a test implementation of the Section interface
type mockSection struct {
	id          string
	data        map[string]interface{}
	validateErr error
}

func (m *mockSection) ID() string                                { return m.id }
func (m *mockSection) Title() string                             { return "Title of " + m.id }
func (m *mockSection) Description() string                       { return "" }
func (m *mockSection) Data() map[string]interface{}              { return m.data }
func (m *mockSection) SetData(data map[string]interface{}) error { m.data = data; return nil }
func (m *mockSection) Validate() error                           { return m.validateErr }
func (m *mockSection) Reset()                                    { m.data = map[string]interface{}{} }

// mockStore is a test implementation of the Store interface
type mockStore struct {
	sections map[string]map[string]interface{}
	loadErr  error
	saveErr  error
	saves    int
}

func newMockStore() *mockStore {
	return &mockStore{sections: make(map[string]map[string]interface{})}
}

func (m *mockStore) Load() error { return m.loadErr }

func (m *mockStore) Save() error {
	m.saves++
	return m.saveErr
}

func (m *mockStore) GetSection(id string) (map[string]interface{}, error) {
	if data, ok := m.sections[id]; ok {
		return data, nil
	}
	return map[string]interface{}{}, nil
}

func (m *mockStore) SetSection(id string, data map[string]interface{}) error {
	m.sections[id] = data
	return nil
}

func (m *mockStore) GetAll() (map[string]map[string]interface{}, error) { return m.sections, nil }

func (m *mockStore) SetAll(data map[string]map[string]interface{}) error {
	m.sections = data
	return nil
}

func TestManager_RegisterSection(t *testing.T) {
	store := newMockStore()
	manager := NewManager(store)
	assert.Same(t, store, manager.Store())
	assert.Empty(t, manager.GetSections())

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, manager.RegisterSection(&mockSection{id: id}))
	}
	err := manager.RegisterSection(&mockSection{id: "a"})
	assert.ErrorContains(t, err, "already registered")

	var ids []string
	for _, s := range manager.GetSections() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids, "registration order")

	got, ok := manager.GetSection("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID())

	_, ok = manager.GetSection("missing")
	assert.False(t, ok)
	_, err = manager.MustSection("missing")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("applies stored data", func(t *testing.T) {
		store := newMockStore()
		store.sections["one"] = map[string]interface{}{"k": "v"}
		manager := NewManager(store)
		one, two := &mockSection{id: "one"}, &mockSection{id: "two"}
		require.NoError(t, manager.RegisterSection(one))
		require.NoError(t, manager.RegisterSection(two))

		require.NoError(t, manager.LoadAll())
		assert.Equal(t, "v", one.data["k"])
		assert.Empty(t, two.data)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := newMockStore()
		store.loadErr = errors.New("disk gone")
		manager := NewManager(store)
		assert.ErrorContains(t, manager.LoadAll(), "disk gone")
	})
}

func TestManager_SaveAll(t *testing.T) {
	t.Run("writes every section", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "one", data: map[string]interface{}{"a": 1}}))
		require.NoError(t, manager.RegisterSection(&mockSection{id: "two", data: map[string]interface{}{"b": 2}}))

		require.NoError(t, manager.SaveAll())
		assert.Equal(t, 1, store.sections["one"]["a"])
		assert.Equal(t, 2, store.sections["two"]["b"])
		assert.Equal(t, 1, store.saves)
	})

	t.Run("invalid section blocks the save", func(t *testing.T) {
		store := newMockStore()
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "good", data: map[string]interface{}{"a": 1}}))
		require.NoError(t, manager.RegisterSection(&mockSection{id: "bad", validateErr: errors.New("nope")}))

		assert.ErrorContains(t, manager.SaveAll(), "nope")
		assert.Empty(t, store.sections)
		assert.Zero(t, store.saves)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := newMockStore()
		store.saveErr = errors.New("read-only")
		manager := NewManager(store)
		require.NoError(t, manager.RegisterSection(&mockSection{id: "s"}))
		assert.ErrorContains(t, manager.SaveAll(), "read-only")
	})
}

func TestManager_ResetAll(t *testing.T) {
	manager := NewManager(newMockStore())
	s := &mockSection{id: "s", data: map[string]interface{}{"a": 1}}
	require.NoError(t, manager.RegisterSection(s))

	manager.ResetAll()
	assert.Empty(t, s.data)
}

func TestManager_ConcurrentRegistration(t *testing.T) {
	manager := NewManager(newMockStore())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = manager.RegisterSection(&mockSection{id: fmt.Sprintf("section%d", i)})
			manager.GetSections()
		}(i)
	}
	wg.Wait()

	assert.Len(t, manager.GetSections(), 10)
}
