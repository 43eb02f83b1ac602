// Package capture loads live pages in a headless browser and snapshots
// their markup, child frames included, for the HTML document model.
package capture

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("capture")
	if err != nil {
		debugLog.Warnf("Failed to initialize capture logger, using stderr fallback: %v", err)
	}
}

const (
	// DefaultTimeout bounds a page load when the context has no deadline.
	DefaultTimeout = 30 * time.Second

	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
)

// Options configures the browser.
type Options struct {
	// Headed shows the browser window.
	Headed bool

	// WaitUntil is "load", "domcontentloaded" or "networkidle".
	WaitUntil string

	Width, Height int
}

// Snapshot is the markup of one loaded page.
type Snapshot struct {
	URL   string
	Title string
	HTML  string

	// Frames maps the src attribute of each frame element, at any depth,
	// to the markup the frame had loaded.
	Frames map[string]string
}

// Resolver resolves the snapshot's frame src attributes for parsing.
func (s *Snapshot) Resolver() htmldom.MapResolver {
	return htmldom.MapResolver(s.Frames)
}

// Document parses the snapshot with its frames.
func (s *Snapshot) Document(opts htmldom.Options) (*htmldom.Document, error) {
	if opts.Location == "" {
		opts.Location = s.URL
	}
	opts.Frames = s.Resolver()
	return htmldom.Parse(strings.NewReader(s.HTML), opts)
}

// Browser owns a playwright driver and one page.
type Browser struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	opts    Options
}

// Start installs the driver if needed and launches Chromium.
func Start(opts Options) (*Browser, error) {
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = DefaultViewportWidth, DefaultViewportHeight
	}
	if opts.WaitUntil == "" {
		opts.WaitUntil = "load"
	}

	// Driver output would corrupt the TUI.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	headless := !opts.Headed
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: &headless})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.Width, Height: opts.Height},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Browser{pw: pw, browser: browser, page: page, opts: opts}, nil
}

// Page loads url and snapshots it. The context deadline, if any, bounds
// the load.
func (b *Browser) Page(ctx context.Context, url string) (*Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := float64(DefaultTimeout.Milliseconds())
	if deadline, ok := ctx.Deadline(); ok {
		timeout = float64(time.Until(deadline).Milliseconds())
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	waitUntil := playwright.WaitUntilState(b.opts.WaitUntil)
	if _, err := b.page.Goto(url, playwright.PageGotoOptions{WaitUntil: &waitUntil, Timeout: &timeout}); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	markup, err := b.page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	title, _ := b.page.Title()

	snap := &Snapshot{
		URL:    b.page.URL(),
		Title:  title,
		HTML:   Clean(markup),
		Frames: make(map[string]string),
	}
	main := b.page.MainFrame()
	for _, frame := range b.page.Frames() {
		if frame == main {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.addFrame(snap, frame)
	}
	debugLog.Infof("Captured %s with %d frames", snap.URL, len(snap.Frames))
	return snap, nil
}

// addFrame records a child frame under the src its element carries. Frames
// that cannot be read are left out and parse as empty.
func (b *Browser) addFrame(snap *Snapshot, frame playwright.Frame) {
	el, err := frame.FrameElement()
	if err != nil {
		debugLog.Debugf("Frame %s has no element: %v", frame.URL(), err)
		return
	}
	src, err := el.GetAttribute("src")
	if err != nil || src == "" {
		// srcdoc frames are already inline in the parent markup.
		return
	}
	markup, err := frame.Content()
	if err != nil {
		debugLog.Debugf("Failed to read frame %s: %v", frame.URL(), err)
		return
	}
	snap.Frames[src] = Clean(markup)
}

// Close shuts the browser and driver down.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if err := b.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
