package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	applogger "rag-api-explorer-be/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const logModule = "GORM"

// GormLogger sends gorm's statements and errors to the application logger.
type GormLogger struct {
	log           applogger.ILogger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(log applogger.ILogger, level logger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{log: log, level: level, slowThreshold: slowThreshold}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Info(logModule, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warn(logModule, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Error(logModule, fmt.Sprintf(msg, args...), nil)
	}
}

// Trace logs failed queries at error, slow ones at warn and the rest at
// debug when the level is info. Record-not-found is not a failure.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.log.Error(logModule, "Query failed", map[string]interface{}{
			"sql":     sql,
			"rows":    rows,
			"elapsed": elapsed.String(),
			"error":   err.Error(),
		})
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warn(logModule, "Slow query", map[string]interface{}{
			"sql":       sql,
			"rows":      rows,
			"elapsed":   elapsed.String(),
			"threshold": l.slowThreshold.String(),
		})
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debug(logModule, "Query", map[string]interface{}{
			"sql":     sql,
			"rows":    rows,
			"elapsed": elapsed.String(),
		})
	}
}
