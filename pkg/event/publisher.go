// Package event publishes mock invocation events to pluggable sinks.
// Publication is fire-and-forget: it never blocks request handling and
// sink failures never affect the HTTP response.
package event

import (
	"log/slog"
	"time"

	"github.com/virtmock/virtmock/pkg/virt"
)

// Invocation describes one serviced mock request.
type Invocation struct {
	// ServiceName and ServiceVersion identify the virtualized service.
	ServiceName    string
	ServiceVersion string

	// ResponseName is the name of the response that was served.
	ResponseName string

	// StatusCode is the HTTP status that was returned.
	StatusCode int

	// Timestamp is when request handling started.
	Timestamp time.Time

	// Duration is the elapsed wall-clock handling time.
	Duration time.Duration
}

// NewInvocation builds an Invocation for a serviced request.
func NewInvocation(service *virt.Service, response *virt.Response, status int, start time.Time) Invocation {
	return Invocation{
		ServiceName:    service.Name,
		ServiceVersion: service.Version,
		ResponseName:   response.Name,
		StatusCode:     status,
		Timestamp:      start,
		Duration:       time.Since(start),
	}
}

// Publisher accepts invocation events.
type Publisher interface {
	Publish(inv Invocation)
}

// Sink consumes invocation events delivered by a Publisher.
type Sink interface {
	Consume(inv Invocation)
}

// AsyncPublisher delivers events to its sinks on a background goroutine.
// When the buffer is full, events are dropped rather than blocking the
// request path.
type AsyncPublisher struct {
	events chan Invocation
	done   chan struct{}
	sinks  []Sink
	log    *slog.Logger
}

// NewAsyncPublisher creates a running AsyncPublisher with the given
// buffer size and sinks. Call Close to stop it and drain the buffer.
func NewAsyncPublisher(buffer int, log *slog.Logger, sinks ...Sink) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	if log == nil {
		log = slog.Default()
	}
	p := &AsyncPublisher{
		events: make(chan Invocation, buffer),
		done:   make(chan struct{}),
		sinks:  sinks,
		log:    log,
	}
	go p.run()
	return p
}

// Publish enqueues an event, dropping it when the buffer is full.
func (p *AsyncPublisher) Publish(inv Invocation) {
	select {
	case p.events <- inv:
	default:
		p.log.Warn("invocation event dropped, buffer full",
			"service", inv.ServiceName, "version", inv.ServiceVersion)
	}
}

// Close stops the publisher after draining already-queued events.
func (p *AsyncPublisher) Close() {
	close(p.events)
	<-p.done
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for inv := range p.events {
		for _, sink := range p.sinks {
			p.consume(sink, inv)
		}
	}
}

// consume shields the publisher loop from a panicking sink.
func (p *AsyncPublisher) consume(sink Sink, inv Invocation) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("invocation sink panicked", "panic", r)
		}
	}()
	sink.Consume(inv)
}

// LogSink records invocations on a structured logger.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink logging at Info level.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

// Consume implements Sink.
func (s *LogSink) Consume(inv Invocation) {
	s.log.Info("mock invocation",
		"service", inv.ServiceName,
		"version", inv.ServiceVersion,
		"response", inv.ResponseName,
		"status", inv.StatusCode,
		"duration_ms", inv.Duration.Milliseconds(),
	)
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(Invocation) {}
