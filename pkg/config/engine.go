package config

import (
	"fmt"
	"os"

	"github.com/entrhq/cursornav/pkg/predicate"
	"gopkg.in/yaml.v3"
)

// EngineFile is the optional YAML file passed on the command line. It uses
// the navigation section keys and can add named predicates.
//
//	granularity: word
//	poll_interval: 500ms
//	skip_patterns: [nav, "x-*"]
//	predicates:
//	  - name: callout
//	    roles: [note, "doc-*"]
type EngineFile struct {
	Granularity       *string          `yaml:"granularity"`
	FrameTraversal    *bool            `yaml:"frame_traversal"`
	HistorySize       *int             `yaml:"history_size"`
	HandshakeAttempts *int             `yaml:"handshake_attempts"`
	PollInterval      *string          `yaml:"poll_interval"`
	Verbose           *bool            `yaml:"verbose"`
	SkipPatterns      []string         `yaml:"skip_patterns"`
	Predicates        []predicate.Spec `yaml:"predicates"`
}

// LoadEngineFile reads and decodes path.
func LoadEngineFile(path string) (*EngineFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine file: %w", err)
	}

	var f EngineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse engine file %s: %w", path, err)
	}
	return &f, nil
}

// Apply overlays the keys present in the file onto section, leaving the
// others as the store or defaults set them.
func (f *EngineFile) Apply(section *NavigationSection) error {
	data := make(map[string]interface{})
	if f.Granularity != nil {
		data["granularity"] = *f.Granularity
	}
	if f.FrameTraversal != nil {
		data["frame_traversal"] = *f.FrameTraversal
	}
	if f.HistorySize != nil {
		data["history_size"] = *f.HistorySize
	}
	if f.HandshakeAttempts != nil {
		data["handshake_attempts"] = *f.HandshakeAttempts
	}
	if f.PollInterval != nil {
		data["poll_interval"] = *f.PollInterval
	}
	if f.Verbose != nil {
		data["verbose"] = *f.Verbose
	}
	if f.SkipPatterns != nil {
		data["skip_patterns"] = f.SkipPatterns
	}

	if err := section.SetData(data); err != nil {
		return err
	}
	return section.Validate()
}

// Registry returns the built-in predicates plus the ones the file defines.
func (f *EngineFile) Registry() (*predicate.Registry, error) {
	reg := predicate.Default()
	if err := reg.RegisterSpecs(f.Predicates); err != nil {
		return nil, err
	}
	return reg, nil
}
