package goAuthClient

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SessionEvent describes a committed session transition. Events are emitted
// after the transition, asynchronously, so a slow sink never stalls an
// operation.
type SessionEvent struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	EventType string        `json:"event_type"`
	Status    SessionStatus `json:"-"`
	UserID    string        `json:"user_id,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// Event types carried in SessionEvent.EventType.
const (
	EventRestore        = "session.restore"
	EventLogin          = "session.login"
	EventOAuthLogin     = "session.oauth_login"
	EventRegister       = "session.register"
	EventLogout         = "session.logout"
	EventTokenDemoted   = "session.token_demoted"
	EventProfileUpdated = "profile.updated"
	EventResetRequested = "reset.requested"
	EventResetConfirmed = "reset.confirmed"
)

// EventSink receives session events. Implementations must not assume any
// ordering beyond per-dispatcher FIFO and must tolerate emission after the
// triggering operation has already returned.
type EventSink interface {
	Emit(ctx context.Context, event SessionEvent)
}

// NoOpSink discards everything.
type NoOpSink struct{}

// Emit discards the event.
func (NoOpSink) Emit(context.Context, SessionEvent) {}

// ChannelSink buffers events on a channel for consumption by the host UI.
type ChannelSink struct {
	events chan SessionEvent
}

// NewChannelSink returns a sink buffering up to buffer events.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan SessionEvent, buffer)}
}

// Emit delivers the event or gives up when ctx is done.
func (s *ChannelSink) Emit(ctx context.Context, event SessionEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the receive side.
func (s *ChannelSink) Events() <-chan SessionEvent {
	return s.events
}

type eventDispatcher struct {
	cfg       EventsConfig
	sink      EventSink
	ch        chan SessionEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newEventDispatcher(cfg EventsConfig, sink EventSink) *eventDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &eventDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan SessionEvent, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *eventDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.sink.Emit(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (d *eventDispatcher) emit(ctx context.Context, event SessionEvent) {
	if d == nil {
		return
	}
	if d.closed.Load() {
		d.dropped.Add(1)
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
			d.dropped.Add(1)
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.done:
		d.dropped.Add(1)
	}
}

// close drains buffered events into the sink before returning.
func (d *eventDispatcher) close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()

		// An emit may have won the send race after the worker finished its
		// final drain; count anything left behind.
		for {
			select {
			case <-d.ch:
				d.dropped.Add(1)
			default:
				return
			}
		}
	})
}

func (d *eventDispatcher) droppedCount() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
