// Package chat keeps an open ticket's message thread current by polling the
// backend and merging only new entries, so the view appends instead of
// re-rendering. One Loop instance corresponds to one chat panel.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/events"
	"github.com/spec-kit/helpdesk-console/internal/observability"
)

// Fetcher supplies a ticket's full message thread. The api.Client satisfies
// this.
type Fetcher interface {
	TicketMessages(ctx context.Context, ticketID int64) ([]domain.Message, error)
}

// Renderer receives merge results. RenderAll replaces the whole view (first
// load for a ticket, including the empty state); Append adds only messages
// that were not rendered before. Scroll handling is the renderer's concern.
type Renderer interface {
	RenderAll(msgs []domain.Message)
	Append(msgs []domain.Message)
}

// Dependencies bundles collaborators for the loop.
type Dependencies struct {
	Fetcher    Fetcher
	Renderer   Renderer
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Dispatcher events.Dispatcher
	Interval   time.Duration
}

// Loop is the polling state machine: Idle (no ticket open) or Active(id).
// Open, Close and SetVisible are the three events that drive it,
// independent of any UI toolkit.
type Loop struct {
	fetcher    Fetcher
	renderer   Renderer
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	interval   time.Duration

	mu       sync.Mutex
	ticketID int64 // 0 while idle
	visible  bool
	cache    []domain.Message
	stop     context.CancelFunc
}

// NewLoop constructs an idle loop.
func NewLoop(deps Dependencies) *Loop {
	interval := deps.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		fetcher:    deps.Fetcher,
		renderer:   deps.Renderer,
		logger:     logger,
		metrics:    deps.Metrics,
		dispatcher: deps.Dispatcher,
		interval:   interval,
		visible:    true,
	}
}

// Open switches the loop to Active(id). Any previously open ticket's cache
// is discarded in full; messages never leak across tickets.
func (l *Loop) Open(id int64) {
	l.mu.Lock()
	l.ticketID = id
	l.cache = nil
	l.visible = true
	l.mu.Unlock()

	l.publish(events.Event{Type: events.EventTicketOpened, TicketID: id})
}

// Close returns the loop to Idle, drops the cache and stops any
// Start-driven ticker.
func (l *Loop) Close() {
	l.mu.Lock()
	id := l.ticketID
	l.ticketID = 0
	l.cache = nil
	stop := l.stop
	l.stop = nil
	l.mu.Unlock()

	if stop != nil {
		stop()
	}
	if id != 0 {
		l.publish(events.Event{Type: events.EventTicketClosed, TicketID: id})
	}
}

// SetVisible mirrors the tab visibility events: while hidden, ticks fetch
// nothing but the open ticket is kept so becoming visible resumes polling.
func (l *Loop) SetVisible(visible bool) {
	l.mu.Lock()
	l.visible = visible
	l.mu.Unlock()
}

// Current returns the open ticket id, 0 when idle.
func (l *Loop) Current() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticketID
}

// Snapshot returns a copy of the cached thread.
func (l *Loop) Snapshot() []domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Message, len(l.cache))
	copy(out, l.cache)
	return out
}

// Start runs the polling timer until ctx is cancelled. At most one timer is
// alive per loop: starting again cancels the previous one. Callers that
// drive ticks themselves (the TUI event loop) skip Start and call Tick.
func (l *Loop) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.stop != nil {
		l.stop()
	}
	l.stop = cancel
	l.mu.Unlock()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = l.Tick(ctx)
		}
	}
}

// Tick performs one poll: skipped while hidden or idle, otherwise fetch and
// merge. A failed fetch is logged and tolerated; the next tick retries with
// no backoff, which is acceptable for a low-stakes refresh.
func (l *Loop) Tick(ctx context.Context) error {
	l.mu.Lock()
	id := l.ticketID
	visible := l.visible
	l.mu.Unlock()

	if id == 0 || !visible {
		return nil
	}

	l.metrics.RecordFetch()
	msgs, err := l.fetcher.TicketMessages(ctx, id)
	if err != nil {
		l.metrics.RecordFetchFailure()
		l.logger.Warn("message poll failed", zap.Int64("ticket_id", id), zap.Error(err))
		return err
	}

	l.merge(id, msgs)
	return nil
}

// merge applies one fetch result against the cache. fetchedFor is the
// ticket the fetch was issued for; if the user switched tickets while the
// request was in flight the result is discarded wholesale.
func (l *Loop) merge(fetchedFor int64, fetched []domain.Message) {
	l.mu.Lock()

	if l.ticketID != fetchedFor {
		l.mu.Unlock()
		l.logger.Debug("discarding stale fetch", zap.Int64("fetched_for", fetchedFor))
		return
	}

	kept := make([]domain.Message, 0, len(fetched))
	for _, m := range fetched {
		if m.TicketID == fetchedFor {
			kept = append(kept, m)
		}
	}
	if dropped := len(fetched) - len(kept); dropped > 0 {
		l.metrics.RecordAnomalies(dropped)
		l.logger.Warn("dropped messages from another ticket",
			zap.Int64("ticket_id", fetchedFor),
			zap.Int("dropped", dropped))
	}

	firstLoad := len(l.cache) == 0
	var fresh []domain.Message
	if !firstLoad {
		highWater := l.cache[len(l.cache)-1].ID
		for _, m := range kept {
			if m.ID > highWater {
				fresh = append(fresh, m)
			}
		}
	}
	l.cache = kept
	l.mu.Unlock()

	switch {
	case firstLoad:
		if l.renderer != nil {
			l.renderer.RenderAll(kept)
		}
		if len(kept) > 0 {
			l.metrics.RecordAppended(len(kept))
			l.publish(events.Event{
				Type:     events.EventMessagesAppended,
				TicketID: fetchedFor,
				Payload:  events.MessagesAppendedPayload{Count: len(kept), FirstLoad: true},
			})
		}
	case len(fresh) > 0:
		if l.renderer != nil {
			l.renderer.Append(fresh)
		}
		l.metrics.RecordAppended(len(fresh))
		l.publish(events.Event{
			Type:     events.EventMessagesAppended,
			TicketID: fetchedFor,
			Payload:  events.MessagesAppendedPayload{Count: len(fresh)},
		})
	}
}

func (l *Loop) publish(event events.Event) {
	if l.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = l.dispatcher.Publish(context.Background(), event)
}
