package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/pkg/util"
)

type messageListEnvelope struct {
	apiStatus
	Data []domain.Message `json:"data"`
}

// TicketMessages fetches the full message thread of a ticket, ordered by
// ascending message id. This is the fetch the sync loop polls.
func (c *Client) TicketMessages(ctx context.Context, ticketID int64) ([]domain.Message, error) {
	var env messageListEnvelope
	path := fmt.Sprintf("/tickets/%d/mensajes", ticketID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not load messages")
	}
	return env.Data, nil
}

// SendMessageInput is the payload of POST /mensajes.
type SendMessageInput struct {
	TicketID  int64  `json:"id_ticket"`
	Content   string `json:"contenido"`
	ChannelID int    `json:"id_canal"`
	Internal  bool   `json:"es_interno"`
}

type sendMessageEnvelope struct {
	apiStatus
	Data *domain.Message `json:"data"`
}

// SendMessage posts a chat message. The policy gates the affordance
// client-side; the server re-checks and may still reject.
func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return nil, util.NewValidationError("message content is empty", nil)
	}
	if input.ChannelID == 0 {
		input.ChannelID = 2 // chat channel
	}

	var env sendMessageEnvelope
	if err := c.doJSON(ctx, http.MethodPost, "/mensajes", nil, input, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "message rejected")
	}
	return env.Data, nil
}
