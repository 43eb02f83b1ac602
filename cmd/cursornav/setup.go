package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/cursornav/pkg/capture"
	appconfig "github.com/entrhq/cursornav/pkg/config"
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/predicate"
	"github.com/entrhq/cursornav/pkg/security/workspace"
	"github.com/entrhq/cursornav/pkg/shifter"
)

// setup is everything resolved before the engine starts.
type setup struct {
	doc       *htmldom.Document
	settings  navigation.Settings
	preds     *predicate.Registry
	recorder  navigation.PositionRecorder
	positions *appconfig.PositionStore
	ui        *appconfig.UISection
}

// prepare resolves settings (flags over the engine file over the saved
// config over defaults) and loads the page.
func prepare(ctx context.Context, c *Config) (*setup, error) {
	if err := appconfig.Initialize(c.ConfigPath); err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	nav := appconfig.GetNavigation()

	s := &setup{preds: predicate.Default(), ui: appconfig.GetUI()}
	if c.EngineFile != "" {
		f, err := appconfig.LoadEngineFile(c.EngineFile)
		if err != nil {
			return nil, err
		}
		if err := f.Apply(nav); err != nil {
			return nil, fmt.Errorf("engine file %s: %w", c.EngineFile, err)
		}
		if s.preds, err = f.Registry(); err != nil {
			return nil, fmt.Errorf("engine file %s: %w", c.EngineFile, err)
		}
	}

	s.settings = nav.Settings()
	if c.Granularity != "" {
		g, err := shifter.ParseGranularity(c.Granularity)
		if err != nil {
			return nil, err
		}
		s.settings.Granularity = g
	}
	if c.NoFrames {
		s.settings.FrameTraversal = false
	}
	if positions := appconfig.Positions(); positions != nil {
		s.recorder = positions
		s.positions = positions
	}

	doc, err := loadDocument(ctx, c, htmldom.Options{SkipPatterns: nav.Patterns()})
	if err != nil {
		return nil, err
	}
	s.doc = doc
	return s, nil
}

// flush saves positions recorded during the session.
func (s *setup) flush() {
	if s.positions == nil {
		return
	}
	if err := s.positions.Flush(); err != nil {
		debugLog.Warnf("Failed to save positions on exit: %v", err)
	}
}

// loadDocument reads the page named by c.Input.
func loadDocument(ctx context.Context, c *Config, opts htmldom.Options) (*htmldom.Document, error) {
	switch {
	case c.Input == "-":
		opts.Location = "stdin"
		return htmldom.Parse(os.Stdin, opts)

	case isURL(c.Input):
		browser, err := capture.Start(capture.Options{Headed: c.Headed})
		if err != nil {
			return nil, err
		}
		defer browser.Close()

		loadCtx, cancel := context.WithTimeout(ctx, c.Timeout)
		defer cancel()
		snap, err := browser.Page(loadCtx, c.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", c.Input, err)
		}
		return snap.Document(opts)

	default:
		path, err := filepath.Abs(c.Input)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		defer f.Close()

		guard, err := workspace.NewGuard(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		opts.Location = path
		opts.Frames = localFrames(guard)
		return htmldom.Parse(f, opts)
	}
}

// localFrames resolves frame sources to files next to a page file. Sources
// that leave the page's directory stay empty.
func localFrames(guard *workspace.Guard) htmldom.FrameResolver {
	return htmldom.FrameResolverFunc(func(src string) (string, bool) {
		if isURL(src) {
			return "", false
		}
		path, err := guard.Resolve(src)
		if err != nil {
			debugLog.Warnf("Frame %q not loaded: %v", src, err)
			return "", false
		}
		markup, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		return string(markup), true
	})
}
