package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/gobwas/glob"
)

const (
	// SectionIDNavigation is the identifier for the navigation settings section
	SectionIDNavigation = "navigation"

	minHistorySize       = 1
	maxHistorySize       = 1000
	minPollInterval      = 100 * time.Millisecond
	maxPollInterval      = 10 * time.Second
	maxHandshakeAttempts = 20
)

// NavigationSection holds the user's navigation preferences.
type NavigationSection struct {
	Granularity       shifter.Granularity `json:"granularity"`
	FrameTraversal    bool                `json:"frame_traversal"`
	HistorySize       int                 `json:"history_size"`
	HandshakeAttempts int                 `json:"handshake_attempts"`
	PollInterval      time.Duration       `json:"poll_interval"`
	Verbose           bool                `json:"verbose"`
	SkipPatterns      []string            `json:"skip_patterns"`
	mu                sync.RWMutex
}

// NewNavigationSection creates a navigation section with default settings.
func NewNavigationSection() *NavigationSection {
	s := &NavigationSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *NavigationSection) ID() string {
	return SectionIDNavigation
}

// Title returns the section title.
func (s *NavigationSection) Title() string {
	return "Navigation"
}

// Description returns the section description.
func (s *NavigationSection) Description() string {
	return "Default granularity, frame traversal, history depth and continuous reading pace."
}

// Data returns the current configuration data.
func (s *NavigationSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"granularity":        s.Granularity.String(),
		"frame_traversal":    s.FrameTraversal,
		"history_size":       s.HistorySize,
		"handshake_attempts": s.HandshakeAttempts,
		"poll_interval":      s.PollInterval.String(),
		"verbose":            s.Verbose,
		"skip_patterns":      append([]string(nil), s.SkipPatterns...),
	}
}

// SetData updates the configuration from the provided data.
func (s *NavigationSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "granularity":
			name, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for granularity: expected string, got %T", value)
			}
			g, err := shifter.ParseGranularity(name)
			if err != nil {
				return err
			}
			s.Granularity = g

		case "frame_traversal":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for frame_traversal: expected bool, got %T", value)
			}
			s.FrameTraversal = enabled

		case "verbose":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for verbose: expected bool, got %T", value)
			}
			s.Verbose = enabled

		case "history_size":
			n, err := toInt(key, value)
			if err != nil {
				return err
			}
			s.HistorySize = n

		case "handshake_attempts":
			n, err := toInt(key, value)
			if err != nil {
				return err
			}
			s.HandshakeAttempts = n

		case "poll_interval":
			d, err := toDuration(key, value)
			if err != nil {
				return err
			}
			s.PollInterval = d

		case "skip_patterns":
			patterns, err := toStrings(key, value)
			if err != nil {
				return err
			}
			s.SkipPatterns = patterns

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *NavigationSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Granularity < shifter.Character || s.Granularity > shifter.Group {
		return fmt.Errorf("granularity out of range: %d", s.Granularity)
	}
	if s.HistorySize < minHistorySize || s.HistorySize > maxHistorySize {
		return fmt.Errorf("history_size must be between %d and %d, got %d", minHistorySize, maxHistorySize, s.HistorySize)
	}
	if s.HandshakeAttempts < 1 || s.HandshakeAttempts > maxHandshakeAttempts {
		return fmt.Errorf("handshake_attempts must be between 1 and %d, got %d", maxHandshakeAttempts, s.HandshakeAttempts)
	}
	if s.PollInterval < minPollInterval || s.PollInterval > maxPollInterval {
		return fmt.Errorf("poll_interval must be between %v and %v, got %v", minPollInterval, maxPollInterval, s.PollInterval)
	}
	for _, p := range s.SkipPatterns {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid skip pattern %q: %w", p, err)
		}
	}

	return nil
}

// Reset resets the section to default configuration.
func (s *NavigationSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := navigation.DefaultSettings()
	s.Granularity = d.Granularity
	s.FrameTraversal = d.FrameTraversal
	s.HistorySize = d.HistorySize
	s.HandshakeAttempts = d.HandshakeAttempts
	s.PollInterval = d.PollInterval
	s.Verbose = d.Verbose
	s.SkipPatterns = nil
}

// Settings returns the section as manager settings.
func (s *NavigationSection) Settings() navigation.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return navigation.Settings{
		Granularity:       s.Granularity,
		FrameTraversal:    s.FrameTraversal,
		HistorySize:       s.HistorySize,
		HandshakeAttempts: s.HandshakeAttempts,
		PollInterval:      s.PollInterval,
		Verbose:           s.Verbose,
	}
}

// Patterns returns the element patterns whose subtrees are skipped.
func (s *NavigationSection) Patterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.SkipPatterns...)
}

// SetGranularity records the last granularity the user chose.
func (s *NavigationSection) SetGranularity(g shifter.Granularity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Granularity = g
}

func toInt(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		// JSON numbers come as float64
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
	}
}

func toDuration(key string, value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	case time.Duration:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
}

func toStrings(key string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid entry in %s: expected string, got %T", key, item)
			}
			out = append(out, str)
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid value type for %s: expected list, got %T", key, value)
	}
}
