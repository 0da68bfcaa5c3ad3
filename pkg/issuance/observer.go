package issuance

import (
	"time"

	"go.uber.org/zap"
)

// Level is the severity of a progress event.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// Event is a progress notification. Stage is empty for run-level events.
type Event struct {
	RunID   string
	Stage   Stage
	Message string
	Level   Level
	Time    time.Time
	Err     error
}

// Observer receives progress events. Notify is called synchronously on the
// run's goroutine and must not block.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// Observers fans an event out to several observers in order.
type Observers []Observer

func (o Observers) Notify(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Notify(e)
		}
	}
}

// LogObserver writes events to a zap logger.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates a LogObserver.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (l *LogObserver) Notify(e Event) {
	fields := []zap.Field{
		zap.String("run_id", e.RunID),
		zap.String("stage", string(e.Stage)),
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	switch e.Level {
	case LevelError:
		l.logger.Error(e.Message, fields...)
	case LevelWarn:
		l.logger.Warn(e.Message, fields...)
	default:
		l.logger.Info(e.Message, fields...)
	}
}
