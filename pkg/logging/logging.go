// Package logging configures the process-wide zerolog logger.
//
// Console output goes to stderr in zerolog's human format; the same events
// are appended as JSON lines to a log file in the branchtint state
// directory. Components take a named child logger from GetLogger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/branchtint/pkg/paths"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures Setup
type Options struct {
	// Verbosity is the -v count
	Verbosity int

	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer

	// LogFile is appended to as JSON lines. Empty disables file output.
	LogFile string
}

var (
	mu      sync.Mutex
	logFile *os.File
)

// Level maps a -v count to a level: warn, info, debug, then trace
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Setup replaces the global logger. If the log file cannot be opened the
// console logger is still installed and the error is returned.
func Setup(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(Level(opts.Verbosity))

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(console),
	}}

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	var fileErr error
	if opts.LogFile != "" {
		f, err := openLogFile(opts.LogFile)
		if err != nil {
			fileErr = err
		} else {
			logFile = f
			writers = append(writers, f)
		}
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if opts.Verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	return fileErr
}

// SetupLogger installs the CLI logger for a -v count, logging to stderr
// and to DefaultLogFile
func SetupLogger(verbosity int) {
	path := DefaultLogFile()
	if err := Setup(Options{Verbosity: verbosity, LogFile: path}); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to create log file, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("Logger initialized")
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// DefaultLogFile returns the log file location. BRANCHTINT_STATE_DIR wins
// over the XDG state home.
func DefaultLogFile() string {
	if dir := os.Getenv(paths.EnvStateDir); dir != "" {
		return filepath.Join(dir, "branchtint.log")
	}
	return filepath.Join(xdg.StateHome, "branchtint", "branchtint.log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
