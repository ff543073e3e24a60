// Package observability reports what the console is doing to pluggable
// observers.
//
// Libraries emit an [Event] at the end of every fetch, layout, render, cache
// access, backend request and shell mutation. Nothing is recorded until an
// [Observer] is registered, so the packages stay free of any metrics or
// tracing backend:
//
//	remove := observability.Register(observability.ObserverFunc(
//	    func(ctx context.Context, e observability.Event) {
//	        metrics.Observe(string(e.Stage), e.Duration)
//	    }))
//	defer remove()
//
// Timed operations use a [Span]:
//
//	span := observability.Start(observability.StageFetch, projectID)
//	p, err := fetch(ctx, projectID)
//	span.End(ctx, p.Count(), err)
//
// [LogObserver] writes events to a charmbracelet logger; the CLI registers it
// in verbose mode.
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names the operation an event belongs to.
type Stage string

const (
	StageFetch     Stage = "fetch"      // Subject: project id, Count: tree nodes
	StageLayout    Stage = "layout"     // Subject: project id, Count: positioned nodes
	StageRender    Stage = "render"     // Subject: formats, Count: artifacts
	StageCacheHit  Stage = "cache hit"  // Subject: key type
	StageCacheMiss Stage = "cache miss" // Subject: key type
	StageCacheSet  Stage = "cache set"  // Subject: key type, Count: bytes
	StageRequest   Stage = "request"    // Subject: "METHOD host/path", Count: HTTP status
	StageRefresh   Stage = "refresh"    // Subject: project id, Count: sequence number
	StageSubmit    Stage = "submit"     // Subject: dialog action, Count: 1
)

// Event describes one finished operation. The meaning of Subject and Count
// depends on the Stage.
type Event struct {
	Stage    Stage
	Subject  string
	Count    int
	Duration time.Duration
	Err      error
}

// Failed reports whether the operation returned an error.
func (e Event) Failed() bool { return e.Err != nil }

// Observer receives events. Observe is called synchronously on the emitting
// goroutine and must not block.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(ctx context.Context, e Event)

func (f ObserverFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }

// =============================================================================
// Registry
// =============================================================================

type registration struct {
	id int
	o  Observer
}

var (
	mu        sync.RWMutex
	observers []registration
	nextID    int
)

// Register adds o to the observers and returns a function removing it again.
func Register(o Observer) (remove func()) {
	if o == nil {
		return func() {}
	}
	mu.Lock()
	defer mu.Unlock()
	nextID++
	id := nextID
	observers = append(observers, registration{id: id, o: o})

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			for i, r := range observers {
				if r.id == id {
					observers = append(observers[:i:i], observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit delivers e to every registered observer.
func Emit(ctx context.Context, e Event) {
	mu.RLock()
	regs := observers
	mu.RUnlock()
	for _, r := range regs {
		r.o.Observe(ctx, e)
	}
}

// Reset removes all observers.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	observers = nil
}

// =============================================================================
// Spans
// =============================================================================

// Span measures a single operation from Start to End.
type Span struct {
	stage   Stage
	subject string
	start   time.Time
}

// Start begins timing an operation.
func Start(stage Stage, subject string) Span {
	return Span{stage: stage, subject: subject, start: time.Now()}
}

// End emits the event for the operation.
func (s Span) End(ctx context.Context, count int, err error) {
	Emit(ctx, Event{
		Stage:    s.stage,
		Subject:  s.subject,
		Count:    count,
		Duration: time.Since(s.start),
		Err:      err,
	})
}
