// Package telemetry records operational diagnostics that never surface
// to the user, such as discarded stale notifications.
package telemetry

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event is a single operational diagnostic record.
type Event struct {
	Timestamp time.Time
	Severity  Severity
	Component string
	Message   string
	Attrs     map[string]string
}

// Sink receives emitted events.
type Sink interface {
	Record(ctx context.Context, evt Event) error
}

// Emitter records operational telemetry events.
type Emitter struct {
	sink  Sink
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the sink is nil.
func (e *Emitter) Emit(ctx context.Context, evt Event) error {
	if e == nil || e.sink == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.sink.Record(ctx, evt)
}

// LogSink writes events to the standard logger.
type LogSink struct{}

// Record implements Sink.
func (LogSink) Record(_ context.Context, evt Event) error {
	attrs := make([]string, 0, len(evt.Attrs))
	for k, v := range evt.Attrs {
		attrs = append(attrs, k+"="+v)
	}
	sort.Strings(attrs)
	log.Printf("%s %s: %s %s", evt.Severity, evt.Component, evt.Message, strings.Join(attrs, " "))
	return nil
}
