package observability

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogObserver writes every event to a logger. Failures are logged at warn
// level, everything else at debug level.
type LogObserver struct {
	Logger *log.Logger
}

var _ Observer = (*LogObserver)(nil)

// NewLogObserver returns an observer writing to logger with the "events" prefix.
func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{Logger: logger.WithPrefix("events")}
}

func (o *LogObserver) Observe(_ context.Context, e Event) {
	kv := []any{"subject", e.Subject}
	if e.Count != 0 {
		kv = append(kv, countKey(e.Stage), e.Count)
	}
	if e.Duration > 0 {
		kv = append(kv, "took", e.Duration)
	}
	if e.Failed() {
		o.Logger.Warn(string(e.Stage)+" failed", append(kv, "err", e.Err)...)
		return
	}
	o.Logger.Debug(string(e.Stage), kv...)
}

func countKey(s Stage) string {
	switch s {
	case StageFetch, StageLayout:
		return "nodes"
	case StageCacheSet:
		return "bytes"
	case StageRequest:
		return "status"
	case StageRefresh:
		return "seq"
	case StageRender:
		return "artifacts"
	}
	return "count"
}
