package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"roomcompare/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled logging (info/warning/error) to rotated files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	files      []*lumberjack.Logger
	mu         sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(config *config.Config) *Logger {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	logger := &Logger{}

	infoFile := logger.rotatingFile(config, "info.log")
	warningFile := logger.rotatingFile(config, "warning.log")
	errorFile := logger.rotatingFile(config, "error.log")

	logger.setupLoggers(
		io.MultiWriter(os.Stdout, infoFile),
		io.MultiWriter(os.Stdout, warningFile),
		io.MultiWriter(os.Stderr, errorFile),
	)
	return logger
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	logger := &Logger{}
	logger.setupLoggers(io.Discard, io.Discard, io.Discard)
	return logger
}

// New builds a Logger writing every level to w.
func New(w io.Writer) *Logger {
	logger := &Logger{}
	logger.setupLoggers(w, w, w)
	return logger
}

func (l *Logger) rotatingFile(config *config.Config, name string) *lumberjack.Logger {
	file := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDirectory, name),
		MaxSize:    config.LogMaxSizeMB, // MB
		MaxBackups: config.LogMaxBackups,
		MaxAge:     28, // days
		Compress:   true,
	}
	l.files = append(l.files, file)
	return file
}

func (l *Logger) setupLoggers(info, warning, errw io.Writer) {
	l.infoLog = log.New(info, "INFO    ", log.Ldate|log.Ltime|log.Lshortfile)
	l.warningLog = log.New(warning, "WARNING ", log.Ldate|log.Ltime|log.Lshortfile)
	l.errorLog = log.New(errw, "ERROR   ", log.Ldate|log.Ltime|log.Lshortfile)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// Rotate archives the named log file (for example "info.log") and starts a new one.
func (l *Logger) Rotate(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, f := range l.files {
		if filepath.Base(f.Filename) == name {
			return f.Rotate()
		}
	}
	return fmt.Errorf("unknown log file %q", name)
}

// Close flushes and closes the rotated log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
