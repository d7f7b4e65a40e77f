package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Fields structured log fields
type Fields = logrus.Fields

// ParseLevel maps a config level name to a logrus level; unknown names
// fall back to info.
func ParseLevel(name string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Config logger configuration
type Config struct {
	LogDir     string // Log directory
	Level      string // debug, info, warn, error
	MaxDays    int    // Max days to keep logs
	ConsoleOut bool   // Mirror to stderr
	JSON       bool   // JSON formatter instead of text
}

// Logger is a logrus logger writing to a daily-rotated file
type Logger struct {
	*logrus.Logger
	file *dailyFile
}

var (
	defaultLogger *Logger
	once          sync.Once
	discard       = newDiscard()
)

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Init initializes the default logger
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		defaultLogger, err = NewLogger(cfg)
	})
	return err
}

// NewLogger creates a new logger instance
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 7
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := &dailyFile{dir: cfg.LogDir, maxDays: cfg.MaxDays}
	if err := file.rotateIfNeeded(); err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetLevel(ParseLevel(cfg.Level))
	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	if cfg.ConsoleOut {
		l.SetOutput(io.MultiWriter(file, os.Stderr))
	} else {
		l.SetOutput(file)
	}

	return &Logger{Logger: l, file: file}, nil
}

// Close closes the current log file
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// dailyFile is an io.Writer that switches to a new file each day and prunes
// files beyond maxDays
type dailyFile struct {
	mu          sync.Mutex
	dir         string
	maxDays     int
	currentFile *os.File
	currentDate string
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.rotateIfNeeded(); err != nil {
		return 0, err
	}
	return d.currentFile.Write(p)
}

// rotateIfNeeded must be called with mu held, except from NewLogger
func (d *dailyFile) rotateIfNeeded() error {
	today := time.Now().Format("2006-01-02")
	if d.currentDate == today && d.currentFile != nil {
		return nil
	}

	if d.currentFile != nil {
		d.currentFile.Close()
	}

	filename := filepath.Join(d.dir, fmt.Sprintf("steve-%s.log", today))
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	d.currentFile = f
	d.currentDate = today

	d.cleanOldLogs()
	return nil
}

// cleanOldLogs removes log files beyond maxDays, oldest first
func (d *dailyFile) cleanOldLogs() {
	files, err := filepath.Glob(filepath.Join(d.dir, "steve-*.log"))
	if err != nil || len(files) <= d.maxDays {
		return
	}

	sort.Strings(files)
	for i := 0; i < len(files)-d.maxDays; i++ {
		os.Remove(files[i])
	}
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.currentFile == nil {
		return nil
	}
	err := d.currentFile.Close()
	d.currentFile = nil
	d.currentDate = ""
	return err
}

// Package-level functions using the default logger

func base() *logrus.Logger {
	if defaultLogger != nil {
		return defaultLogger.Logger
	}
	return discard
}

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	base().Debugf(format, args...)
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	base().Infof(format, args...)
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	base().Warnf(format, args...)
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	base().Errorf(format, args...)
}

// WithFields returns an entry on the default logger
func WithFields(fields Fields) *logrus.Entry {
	return base().WithFields(fields)
}

// Entry returns a bare entry on the default logger, for components that
// take a logrus.FieldLogger
func Entry() *logrus.Entry {
	return logrus.NewEntry(base())
}

// Close closes the default logger
func Close() error {
	if defaultLogger != nil {
		return defaultLogger.Close()
	}
	return nil
}

// GetDefault returns the default logger
func GetDefault() *Logger {
	return defaultLogger
}
