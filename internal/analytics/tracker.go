// Package analytics records product events without ever getting in the way
// of a request. Track is fire-and-forget: events flow through a buffered
// channel to a background worker, and when the buffer is full or consent is
// off the event is dropped, never blocked on.
package analytics

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"bitcoin-pulse/internal/domain"
)

const (
	defaultBufferSize = 256
	sendTimeout       = 5 * time.Second
	closeTimeout      = 3 * time.Second
)

// Sink delivers a batch-of-one event somewhere. Implementations must be safe
// for use from a single worker goroutine.
type Sink interface {
	Send(ctx context.Context, event domain.AnalyticsEvent) error
}

// Tracker queues events for asynchronous delivery to a Sink.
type Tracker struct {
	sink    Sink
	consent atomic.Bool
	events  chan domain.AnalyticsEvent
	done    chan struct{}
	closed  atomic.Bool
	dropped atomic.Int64
	wg      sync.WaitGroup
	tracer  trace.Tracer
}

// NewTracker starts the delivery worker. A nil sink is allowed; events are
// consumed and discarded, which keeps callers identical in every build.
func NewTracker(sink Sink, consent bool) *Tracker {
	t := &Tracker{
		sink:   sink,
		events: make(chan domain.AnalyticsEvent, defaultBufferSize),
		done:   make(chan struct{}),
		tracer: otel.Tracer("analytics"),
	}
	t.consent.Store(consent)
	t.wg.Add(1)
	go t.worker()
	return t
}

// SetConsent toggles event recording at runtime.
func (t *Tracker) SetConsent(on bool) {
	t.consent.Store(on)
}

// Track enqueues an event. It never blocks and never returns an error: an
// unknown name, consent off, a closed tracker, or a full buffer all drop the
// event.
func (t *Tracker) Track(name string, params map[string]string) {
	if !domain.KnownEvents[name] || !t.consent.Load() || t.closed.Load() {
		return
	}
	ev := domain.AnalyticsEvent{Name: name, Params: params, At: time.Now().UTC()}
	select {
	case t.events <- ev:
	default:
		t.dropped.Add(1)
	}
}

// Dropped reports how many events were discarded due to a full buffer.
func (t *Tracker) Dropped() int64 {
	return t.dropped.Load()
}

// Close stops accepting events and waits for the queue to drain, up to
// closeTimeout. Safe to call more than once. The events channel is never
// closed; a Track racing Close at worst enqueues an event the worker drains
// on its way out, so the send can never panic.
func (t *Tracker) Close() {
	if t.closed.Swap(true) {
		return
	}
	close(t.done)
	finished := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(closeTimeout):
		log.Println("analytics: close timed out with events still queued")
	}
}

func (t *Tracker) worker() {
	defer t.wg.Done()
	for {
		select {
		case ev := <-t.events:
			t.deliver(ev)
		case <-t.done:
			// drain whatever is already buffered, then stop
			for {
				select {
				case ev := <-t.events:
					t.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracker) deliver(ev domain.AnalyticsEvent) {
	if t.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	ctx, span := t.tracer.Start(ctx, "deliverEvent")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("analytics: sink panicked delivering %s: %v", ev.Name, r)
		}
	}()
	if err := t.sink.Send(ctx, ev); err != nil {
		log.Printf("analytics: failed to deliver %s: %v", ev.Name, err)
	}
}
