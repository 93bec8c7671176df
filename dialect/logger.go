package dialect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of statements executed.
	TotalQueries atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of failed statements.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	if s.TotalQueries == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TotalQueries)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalDuration, s.AvgQueryDuration(), s.SlowQueries, s.Errors,
	)
}

// Logger is a GORM logger writing through log/slog and collecting
// statistics. Statements are logged at debug level, slow statements at warn
// level and failed statements at error level.
type Logger struct {
	log           *slog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	stats         *QueryStats
}

// LoggerOption configures the Logger.
type LoggerOption func(*Logger)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 200ms.
func WithSlowThreshold(d time.Duration) LoggerOption {
	return func(l *Logger) {
		l.slowThreshold = d
	}
}

// WithLevel sets the GORM log level. Default is gormlogger.Warn.
func WithLevel(level gormlogger.LogLevel) LoggerOption {
	return func(l *Logger) {
		l.level = level
	}
}

// NewLogger returns a Logger writing to log, or to slog.Default if nil.
func NewLogger(log *slog.Logger, opts ...LoggerOption) *Logger {
	if log == nil {
		log = slog.Default()
	}
	l := &Logger{
		log:           log.With("component", "gorm"),
		level:         gormlogger.Warn,
		slowThreshold: 200 * time.Millisecond,
		stats:         &QueryStats{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// QueryStats returns the statistics collected by the logger. They are shared
// by every logger derived through LogMode.
func (l *Logger) QueryStats() *QueryStats {
	return l.stats
}

// LogMode implements gormlogger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

// Info implements gormlogger.Interface.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Warn implements gormlogger.Interface.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Error implements gormlogger.Interface.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace implements gormlogger.Interface.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	duration := time.Since(begin)
	l.stats.TotalQueries.Add(1)
	l.stats.TotalDuration.Add(int64(duration))
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	if failed {
		l.stats.Errors.Add(1)
	}
	slow := l.slowThreshold > 0 && duration > l.slowThreshold
	if slow {
		l.stats.SlowQueries.Add(1)
	}
	if l.level <= gormlogger.Silent {
		return
	}
	switch {
	case failed && l.level >= gormlogger.Error:
		query, rows := fc()
		l.log.ErrorContext(ctx, "query failed", "duration", duration, "rows", rows, "query", query, "error", err)
	case slow && l.level >= gormlogger.Warn:
		query, rows := fc()
		l.log.WarnContext(ctx, "slow query detected", "duration", duration, "rows", rows, "query", query)
	case l.level >= gormlogger.Info:
		query, rows := fc()
		l.log.DebugContext(ctx, "query", "duration", duration, "rows", rows, "query", query)
	}
}

var _ gormlogger.Interface = (*Logger)(nil)
