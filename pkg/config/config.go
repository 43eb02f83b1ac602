package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)
	if err := manager.RegisterSection(NewNavigationSection()); err != nil {
		return err
	}
	if err := manager.RegisterSection(NewUISection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetNavigation returns the navigation section from global config.
// Returns nil if config is not initialized.
func GetNavigation() *NavigationSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDNavigation)
	if !ok {
		return nil
	}

	nav, ok := section.(*NavigationSection)
	if !ok {
		return nil
	}

	return nav
}

// GetUI returns the UI section from global config.
// Returns nil if config is not initialized.
func GetUI() *UISection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDUI)
	if !ok {
		return nil
	}

	ui, ok := section.(*UISection)
	if !ok {
		return nil
	}

	return ui
}

// Positions returns a position store over the global config file, or nil
// if config is not initialized.
func Positions() *PositionStore {
	if !IsInitialized() {
		return nil
	}
	return NewPositionStore(Global().Store(), GetNavigation())
}
