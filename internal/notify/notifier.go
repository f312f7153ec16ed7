// Package notify is the console's toast layer: it listens on the client
// event dispatcher and prints short styled notices, the way the dashboard
// popped toasts for the same events.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/events"
)

var noticeStyle = lipgloss.NewStyle().Faint(true)

// Notifier handles emitting notices for client events.
type Notifier struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewNotifier creates the notifier. out may be nil to log only.
func NewNotifier(dispatcher events.Dispatcher, logger *zap.Logger, out io.Writer) *Notifier {
	return &Notifier{dispatcher: dispatcher, logger: logger, out: out}
}

// RegisterHandlers subscribes to events.
func (n *Notifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventMessagesAppended, n.handleMessagesAppended)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketClaimed, n.handleTicketClaimed)
}

func (n *Notifier) handleMessagesAppended(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MessagesAppendedPayload)
	if !ok || payload.FirstLoad {
		return nil
	}
	n.logger.Debug("MessagesAppended",
		zap.Int64("ticket_id", event.TicketID),
		zap.Int("count", payload.Count))
	if payload.Count == 1 {
		n.notice(fmt.Sprintf("ticket #%d: 1 mensaje nuevo", event.TicketID))
	} else {
		n.notice(fmt.Sprintf("ticket #%d: %d mensajes nuevos", event.TicketID, payload.Count))
	}
	return nil
}

func (n *Notifier) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketStatusChanged",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("old", payload.OldStatus.String()),
		zap.String("new", payload.NewStatus.String()))
	n.notice(fmt.Sprintf("ticket #%d: %s", event.TicketID, payload.NewStatus))
	return nil
}

func (n *Notifier) handleTicketClaimed(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketClaimed", zap.Int64("ticket_id", event.TicketID))
	n.notice(fmt.Sprintf("ticket #%d tomado", event.TicketID))
	return nil
}

func (n *Notifier) notice(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.out == nil {
		return
	}
	fmt.Fprintln(n.out, noticeStyle.Render("• "+text))
}
