package findfile

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the verbosity of logging.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) *zap.Logger {
	var config zap.Config

	switch level {
	case LogLevelError:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case LogLevelWarn:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case LogLevelDebug:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Middleware wraps a Visitor.
type Middleware func(next Visitor) Visitor

// Chain applies middlewares so that the first one runs outermost.
func Chain(visit Visitor, mws ...Middleware) Visitor {
	for i := len(mws) - 1; i >= 0; i-- {
		visit = mws[i](visit)
	}
	return visit
}

// LoggingMiddleware logs every reported entry at debug level and visitor
// failures at error level. ErrStop is not a failure.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next Visitor) Visitor {
		return func(e *Entry) error {
			if ce := logger.Check(zap.DebugLevel, "found entry"); ce != nil {
				ce.Write(
					zap.String("path", e.Path()),
					zap.Bool("dir", e.IsDir()),
					zap.Int64("size", e.Size()),
				)
			}
			err := next(e)
			if err != nil && err != ErrStop {
				logger.Error("visitor failed", zap.String("path", e.Path()), zap.Error(err))
			}
			return err
		}
	}
}

// Stats holds counters updated while a walk runs.
type Stats struct {
	Files       int64         // Files reported
	Folders     int64         // Folders reported
	Bytes       int64         // Total size of reported files
	ElapsedTime time.Duration // Time since the middleware was created
	AvgFileSize int64         // Average file size in bytes
}

// ProgressFn receives a Stats snapshot.
type ProgressFn func(stats Stats)

// StatsMiddleware counts reported entries into stats and, if progress is
// non-nil, calls it every interval reported entries.
func StatsMiddleware(stats *Stats, interval int64, progress ProgressFn) Middleware {
	start := time.Now()
	var seen atomic.Int64
	return func(next Visitor) Visitor {
		return func(e *Entry) error {
			if e.IsDir() {
				atomic.AddInt64(&stats.Folders, 1)
			} else {
				atomic.AddInt64(&stats.Files, 1)
				atomic.AddInt64(&stats.Bytes, e.Size())
			}
			if progress != nil && interval > 0 && seen.Add(1)%interval == 0 {
				progress(stats.snapshot(start))
			}
			return next(e)
		}
	}
}

func (s *Stats) snapshot(start time.Time) Stats {
	out := Stats{
		Files:       atomic.LoadInt64(&s.Files),
		Folders:     atomic.LoadInt64(&s.Folders),
		Bytes:       atomic.LoadInt64(&s.Bytes),
		ElapsedTime: time.Since(start),
	}
	if out.Files > 0 {
		out.AvgFileSize = out.Bytes / out.Files
	}
	return out
}
