// Package logging writes component-tagged log lines to one file per
// process run, so the output of the engine, its frames and the terminal
// interface can be read back in order after a session.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// EnvLogDir overrides the log directory (default ~/.cursornav/logs).
	EnvLogDir = "CURSORNAV_LOG_DIR"

	// EnvDebug enables Debugf output when set to a non-empty value.
	EnvDebug = "CURSORNAV_DEBUG"
)

// Level is the severity written in each entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Logger writes entries for one component. Every logger of a run appends to
// the same <session-id>-cursornav.log file; when that cannot be opened the
// logger writes to stderr instead.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error

	debugMu      sync.RWMutex
	debugEnabled = os.Getenv(EnvDebug) != ""
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory picks and creates the log directory once per process.
func initLogDirectory() error {
	initOnce.Do(func() {
		if logDir == "" {
			logDir = os.Getenv(EnvLogDir)
		}
		if logDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			logDir = filepath.Join(homeDir, ".cursornav", "logs")
		}
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for component. On error the returned logger
// is still usable and writes to stderr.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-cursornav.log", sessID))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return newFallbackLogger(component, fmt.Errorf("failed to open log file: %w", err)), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: Failed to initialize file logging: %v", err)

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    logger,
	}
}

// SetDebug toggles Debugf output for every logger in the process.
func SetDebug(enabled bool) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = enabled
}

// DebugEnabled reports whether Debugf writes anything.
func DebugEnabled() bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugEnabled
}

func (l *Logger) write(level Level, format string, v ...interface{}) {
	if level == LevelDebug && !DebugEnabled() {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[%s] [%s] [%s] %s", ts, l.component, level, fmt.Sprintf(format, v...))
}

// Printf logs at info level.
func (l *Logger) Printf(format string, v ...interface{}) { l.write(LevelInfo, format, v...) }

func (l *Logger) Debugf(format string, v ...interface{}) { l.write(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.write(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.write(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.write(LevelError, format, v...) }

// Writer returns the logger's destination.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

// SessionID returns the id shared by all loggers of this run.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the log file, or "" for a stderr logger.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the id of the current run.
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory logs are written to.
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
