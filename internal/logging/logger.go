// Package logging provides categorized structured logging for adaptive.
// Every subsystem logs through its own category so output can be filtered per
// component. Loggers are no-ops until Initialize is called.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and shutdown
	CategorySession Category = "session" // Session store accessors, stage flow
	CategoryTimer   Category = "timer"   // Countdown timer
	CategoryEditor  Category = "editor"  // Tab/file registry
	CategoryLayout  Category = "layout"  // Panel layout manager
	CategoryChat    Category = "chat"    // Client-side conversation
	CategoryRelay   Category = "relay"   // Relay HTTP server
	CategoryAPI     Category = "api"     // Upstream generative-language calls
	CategoryStore   Category = "store"   // Key-value backends
)

// Options configures the logging backend.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	OutputPath string          // empty means stderr
	Categories map[string]bool // per-category toggles; missing means enabled
}

// Logger writes to a single category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu         sync.RWMutex
	base       = zap.NewNop()
	categories map[string]bool
	loggers    = make(map[Category]*Logger)
)

// Initialize builds the zap backend from opts and resets cached loggers.
func Initialize(opts Options) error {
	var cfg zap.Config
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	if opts.OutputPath != "" {
		cfg.OutputPaths = []string{opts.OutputPath}
		cfg.ErrorOutputPaths = []string{opts.OutputPath}
	}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	Use(logger, opts.Categories)
	return nil
}

// Use installs an already-built zap logger. Tests use it with zaptest/observer.
func Use(logger *zap.Logger, enabled map[string]bool) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = zap.NewNop()
	}
	base = logger
	categories = enabled
	loggers = make(map[Category]*Logger)
}

// Base returns the underlying zap logger.
func Base() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = Base().Sync()
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()

	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Disabled categories get a no-op logger.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// WithContext returns a logger that attaches the given key-value context to
// every entry.
func (l *Logger) WithContext(ctx map[string]interface{}) *Logger {
	kv := make([]interface{}, 0, len(ctx)*2)
	for k, v := range ctx {
		kv = append(kv, k, v)
	}
	return &Logger{category: l.category, sugar: l.sugar.With(kv...)}
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootError logs error to the boot category
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Error(format, args...)
}

// Session logs to the session category
func Session(format string, args ...interface{}) {
	Get(CategorySession).Info(format, args...)
}

// SessionDebug logs debug to the session category
func SessionDebug(format string, args ...interface{}) {
	Get(CategorySession).Debug(format, args...)
}

// SessionWarn logs warning to the session category
func SessionWarn(format string, args ...interface{}) {
	Get(CategorySession).Warn(format, args...)
}

// Timer logs to the timer category
func Timer(format string, args ...interface{}) {
	Get(CategoryTimer).Info(format, args...)
}

// TimerDebug logs debug to the timer category
func TimerDebug(format string, args ...interface{}) {
	Get(CategoryTimer).Debug(format, args...)
}

// Editor logs to the editor category
func Editor(format string, args ...interface{}) {
	Get(CategoryEditor).Info(format, args...)
}

// EditorDebug logs debug to the editor category
func EditorDebug(format string, args ...interface{}) {
	Get(CategoryEditor).Debug(format, args...)
}

// EditorWarn logs warning to the editor category
func EditorWarn(format string, args ...interface{}) {
	Get(CategoryEditor).Warn(format, args...)
}

// Layout logs to the layout category
func Layout(format string, args ...interface{}) {
	Get(CategoryLayout).Info(format, args...)
}

// LayoutDebug logs debug to the layout category
func LayoutDebug(format string, args ...interface{}) {
	Get(CategoryLayout).Debug(format, args...)
}

// Chat logs to the chat category
func Chat(format string, args ...interface{}) {
	Get(CategoryChat).Info(format, args...)
}

// ChatDebug logs debug to the chat category
func ChatDebug(format string, args ...interface{}) {
	Get(CategoryChat).Debug(format, args...)
}

// ChatWarn logs warning to the chat category
func ChatWarn(format string, args ...interface{}) {
	Get(CategoryChat).Warn(format, args...)
}

// Relay logs to the relay category
func Relay(format string, args ...interface{}) {
	Get(CategoryRelay).Info(format, args...)
}

// RelayDebug logs debug to the relay category
func RelayDebug(format string, args ...interface{}) {
	Get(CategoryRelay).Debug(format, args...)
}

// RelayError logs error to the relay category
func RelayError(format string, args ...interface{}) {
	Get(CategoryRelay).Error(format, args...)
}

// API logs to the api category
func API(format string, args ...interface{}) {
	Get(CategoryAPI).Info(format, args...)
}

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debug(format, args...)
}

// APIError logs error to the api category
func APIError(format string, args ...interface{}) {
	Get(CategoryAPI).Error(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// StoreError logs error to the store category
func StoreError(format string, args ...interface{}) {
	Get(CategoryStore).Error(format, args...)
}

// =============================================================================
// TIMING
// =============================================================================

// OpTimer measures an operation and logs its duration on Stop.
type OpTimer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *OpTimer {
	return &OpTimer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *OpTimer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *OpTimer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
