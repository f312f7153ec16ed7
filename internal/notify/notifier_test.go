package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/events"
)

func publish(t *testing.T, d events.Dispatcher, eventType events.EventType, payload any) {
	t.Helper()
	err := d.Publish(context.Background(), events.Event{
		ID:        "test",
		Type:      eventType,
		TicketID:  7,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestNewMessagesProduceANotice(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var buf bytes.Buffer
	NewNotifier(dispatcher, zap.NewNop(), &buf).RegisterHandlers()

	publish(t, dispatcher, events.EventMessagesAppended, events.MessagesAppendedPayload{Count: 3})

	got := buf.String()
	if !strings.Contains(got, "ticket #7") || !strings.Contains(got, "3 mensajes nuevos") {
		t.Errorf("notice = %q", got)
	}
}

func TestSingleMessageUsesSingular(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var buf bytes.Buffer
	NewNotifier(dispatcher, zap.NewNop(), &buf).RegisterHandlers()

	publish(t, dispatcher, events.EventMessagesAppended, events.MessagesAppendedPayload{Count: 1})

	if got := buf.String(); !strings.Contains(got, "1 mensaje nuevo") {
		t.Errorf("notice = %q", got)
	}
}

func TestFirstLoadIsSilent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var buf bytes.Buffer
	NewNotifier(dispatcher, zap.NewNop(), &buf).RegisterHandlers()

	publish(t, dispatcher, events.EventMessagesAppended, events.MessagesAppendedPayload{Count: 10, FirstLoad: true})

	if buf.Len() != 0 {
		t.Errorf("notice on first load: %q", buf.String())
	}
}

func TestStatusChangeNotice(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var buf bytes.Buffer
	NewNotifier(dispatcher, zap.NewNop(), &buf).RegisterHandlers()

	publish(t, dispatcher, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		OldStatus: domain.StatusInProgress,
		NewStatus: domain.StatusResolved,
	})

	if got := buf.String(); !strings.Contains(got, "Resuelto") {
		t.Errorf("notice = %q", got)
	}
}

func TestNilWriterOnlyLogs(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotifier(dispatcher, zap.NewNop(), nil).RegisterHandlers()

	// Must not panic with no output writer attached.
	publish(t, dispatcher, events.EventMessagesAppended, events.MessagesAppendedPayload{Count: 2})
	publish(t, dispatcher, events.EventTicketClaimed, events.TicketClaimedPayload{OperatorID: 4})
}
