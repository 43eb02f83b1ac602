package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/logging"
	"github.com/entrhq/cursornav/pkg/shifter"
)

// SectionIDPositions is the store section holding cursor positions.
const SectionIDPositions = "positions"

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("config")
	if err != nil {
		debugLog.Warnf("Failed to initialize config logger, using stderr fallback: %v", err)
	}
}

// PositionStore remembers the last cursor position per document and the
// last chosen granularity. Positions are held in the store's memory and only
// saved when the document changes or on Flush. Writes are best effort:
// failures are logged and never reach the navigation engine.
type PositionStore struct {
	store      Store
	navigation *NavigationSection
	mu         sync.Mutex
	last       string
	dirty      bool
}

// NewPositionStore persists positions in store. When nav is non-nil
// granularity changes are written through it as well.
func NewPositionStore(store Store, nav *NavigationSection) *PositionStore {
	return &PositionStore{store: store, navigation: nav}
}

// RecordPosition records p as the last position in location. The file is
// written only when location differs from the previous call's.
func (p *PositionStore) RecordPosition(location string, pt dom.Point) {
	if location == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.store.GetSection(SectionIDPositions)
	if err != nil {
		debugLog.Warnf("Failed to read positions: %v", err)
		return
	}
	data[location] = map[string]interface{}{"x": pt.X, "y": pt.Y}
	if err := p.store.SetSection(SectionIDPositions, data); err != nil {
		debugLog.Warnf("Failed to store position: %v", err)
		return
	}
	p.dirty = true
	changed := p.last != "" && p.last != location
	p.last = location
	if changed {
		p.save()
	}
}

// Flush writes any positions recorded since the last save.
func (p *PositionStore) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.dirty {
		return nil
	}
	if err := p.store.Save(); err != nil {
		return fmt.Errorf("failed to save positions: %w", err)
	}
	p.dirty = false
	return nil
}

// RecordGranularity saves g as the preferred granularity.
func (p *PositionStore) RecordGranularity(g int) {
	if p.navigation == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.navigation.SetGranularity(shifter.Granularity(g))
	if err := p.store.SetSection(SectionIDNavigation, p.navigation.Data()); err != nil {
		debugLog.Warnf("Failed to store granularity: %v", err)
		return
	}
	if err := p.store.Save(); err != nil {
		debugLog.Warnf("Failed to save granularity: %v", err)
		return
	}
	p.dirty = false
}

// Position returns the last recorded position in location.
func (p *PositionStore) Position(location string) (dom.Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := p.store.GetSection(SectionIDPositions)
	if err != nil {
		return dom.Point{}, false
	}
	raw, ok := data[location].(map[string]interface{})
	if !ok {
		return dom.Point{}, false
	}
	x, errX := toInt("x", raw["x"])
	y, errY := toInt("y", raw["y"])
	if errX != nil || errY != nil {
		return dom.Point{}, false
	}
	return dom.Point{X: x, Y: y}, true
}

func (p *PositionStore) save() {
	if err := p.store.Save(); err != nil {
		debugLog.Warnf("Failed to save positions: %v", err)
		return
	}
	p.dirty = false
}
