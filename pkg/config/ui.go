package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	// Default values for UI settings
	defaultShowBraille   = true
	defaultSourceStyle   = "monokai"
	defaultStatusTimeout = 2 * time.Second
)

// UISection manages terminal interface settings.
type UISection struct {
	ShowBraille   bool          `json:"show_braille"`
	SourceStyle   string        `json:"source_style"`
	StatusTimeout time.Duration `json:"status_timeout"`
	mu            sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	return &UISection{
		ShowBraille:   defaultShowBraille,
		SourceStyle:   defaultSourceStyle,
		StatusTimeout: defaultStatusTimeout,
	}
}

// ID returns the section identifier.
func (s *UISection) ID() string {
	return SectionIDUI
}

// Title returns the section title.
func (s *UISection) Title() string {
	return "UI Settings"
}

// Description returns the section description.
func (s *UISection) Description() string {
	return "Configure the terminal interface: braille line, source view highlighting and status messages."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"show_braille":   s.ShowBraille,
		"source_style":   s.SourceStyle,
		"status_timeout": s.StatusTimeout.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "show_braille":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for show_braille: expected bool, got %T", value)
			}
			s.ShowBraille = enabled

		case "source_style":
			style, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for source_style: expected string, got %T", value)
			}
			s.SourceStyle = style

		case "status_timeout":
			d, err := toDuration(key, value)
			if err != nil {
				return err
			}
			s.StatusTimeout = d

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.SourceStyle == "" {
		return fmt.Errorf("source_style must not be empty")
	}
	if s.StatusTimeout < 100*time.Millisecond || s.StatusTimeout > 10*time.Second {
		return fmt.Errorf("status_timeout must be between 100ms and 10s, got %v", s.StatusTimeout)
	}

	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ShowBraille = defaultShowBraille
	s.SourceStyle = defaultSourceStyle
	s.StatusTimeout = defaultStatusTimeout
}

// Snapshot returns the current settings as (showBraille, sourceStyle,
// statusTimeout).
func (s *UISection) Snapshot() (bool, string, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ShowBraille, s.SourceStyle, s.StatusTimeout
}
