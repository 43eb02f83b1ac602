// Package main provides cursornav, a terminal screen reader for HTML pages.
// It loads a page from a file or URL, child frames included, and lets the
// user move a reading cursor through it from the keyboard, or reads the
// whole page aloud to stdout in headless mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/cursornav/pkg/logging"
)

const version = "0.1.0"

// Config holds the application configuration
type Config struct {
	Input       string
	ConfigPath  string
	EngineFile  string
	Granularity string
	Headless    bool
	Headed      bool
	NoFrames    bool
	Timeout     time.Duration
	Debug       bool
	ShowVersion bool

	extraArgs int
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("cursornav v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if config.Debug {
		logging.SetDebug(true)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if runErr := run(ctx, config); runErr != nil {
		cancel()
		log.Fatalf("Application error: %v", runErr)
	}
	cancel()
}

// parseFlags parses command line flags and the page argument
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ConfigPath, "config", "", "Settings file (default: ~/.cursornav/config.json)")
	flag.StringVar(&config.EngineFile, "engine", "", "YAML engine file with setting overrides and custom predicates")
	flag.StringVar(&config.Granularity, "granularity", "", "Starting granularity: character, word, line, object or group")
	flag.BoolVar(&config.Headless, "headless", false, "Read the whole page to stdout and exit")
	flag.BoolVar(&config.Headed, "headed", false, "Show the browser window when loading a URL")
	flag.BoolVar(&config.NoFrames, "no-frames", false, "Do not move into child frames")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Page load timeout for URLs")
	flag.BoolVar(&config.Debug, "debug", false, "Write debug entries to the session log")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cursornav - a terminal screen reader for HTML pages\n\n")
		fmt.Fprintf(os.Stderr, "Usage: cursornav [options] <file|url|->\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cursornav page.html\n")
		fmt.Fprintf(os.Stderr, "  cursornav -granularity word https://example.com/\n")
		fmt.Fprintf(os.Stderr, "  curl -s https://example.com/ | cursornav -headless -\n")
	}

	flag.Parse()
	config.Input = flag.Arg(0)
	config.extraArgs = flag.NArg() - 1
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	if c.Input == "" {
		return fmt.Errorf("a page is required: pass a file, a URL, or - for stdin")
	}
	if c.extraArgs > 0 {
		return fmt.Errorf("only one page can be opened, got %d", c.extraArgs+1)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if c.Input != "-" && !isURL(c.Input) {
		info, err := os.Stat(c.Input)
		if err != nil {
			return fmt.Errorf("page file error: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("page path '%s' is a directory", c.Input)
		}
	}

	if c.EngineFile != "" {
		if _, err := os.Stat(c.EngineFile); err != nil {
			return fmt.Errorf("engine file error: %w", err)
		}
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// run executes the main application logic
func run(ctx context.Context, config *Config) error {
	setup, err := prepare(ctx, config)
	if err != nil {
		return err
	}
	defer setup.flush()

	if config.Headless {
		return runHeadless(ctx, setup, os.Stdout)
	}
	return runTUI(ctx, setup)
}
