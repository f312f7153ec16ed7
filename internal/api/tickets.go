package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/helpdesk-console/internal/domain"
)

// TicketFilter narrows ticket listings. Zero values are omitted from the
// query string.
type TicketFilter struct {
	Status   domain.StatusID
	Priority domain.PriorityID
	Search   string
	Limit    int
	Offset   int
}

type ticketListEnvelope struct {
	apiStatus
	Tickets []domain.Ticket `json:"tickets"`
	Data    []domain.Ticket `json:"data"`
	Total   int             `json:"total"`
}

// ListTickets fetches a page of tickets plus the total count. Some backend
// endpoints answer with a tickets field, others with data; both are
// accepted, as the dashboard did.
func (c *Client) ListTickets(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	query := url.Values{}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	query.Set("offset", strconv.Itoa(filter.Offset))
	if filter.Status != 0 {
		query.Set("id_estado", strconv.Itoa(int(filter.Status)))
	}
	if filter.Priority != 0 {
		query.Set("id_prioridad", strconv.Itoa(int(filter.Priority)))
	}
	if filter.Search != "" {
		query.Set("q", filter.Search)
	}

	var env ticketListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/tickets", query, nil, &env); err != nil {
		return nil, 0, err
	}
	if !env.Success {
		return nil, 0, envelopeError(env.apiStatus, "could not list tickets")
	}
	tickets := env.Tickets
	if tickets == nil {
		tickets = env.Data
	}
	total := env.Total
	if total == 0 {
		total = len(tickets)
	}
	return tickets, total, nil
}

type ticketEnvelope struct {
	apiStatus
	Data   *domain.Ticket `json:"data"`
	Ticket *domain.Ticket `json:"ticket"`
}

// GetTicket fetches one ticket snapshot.
func (c *Client) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	var env ticketEnvelope
	path := fmt.Sprintf("/tickets/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not load ticket")
	}
	ticket := env.Data
	if ticket == nil {
		ticket = env.Ticket
	}
	if ticket == nil {
		return nil, envelopeError(env.apiStatus, "ticket missing from response")
	}
	return ticket, nil
}

// ChangeStatus submits a status change. The server validates the
// transition; the client policy only decides what to offer.
func (c *Client) ChangeStatus(ctx context.Context, ticketID int64, status domain.StatusID) error {
	var env apiStatus
	path := fmt.Sprintf("/tickets/%d/estado", ticketID)
	body := map[string]int{"id_estado": int(status)}
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, body, &env); err != nil {
		return err
	}
	if !env.Success {
		return envelopeError(env, "status change rejected")
	}
	return nil
}

// ChangePriority submits a priority change.
func (c *Client) ChangePriority(ctx context.Context, ticketID int64, priority domain.PriorityID) error {
	var env apiStatus
	path := fmt.Sprintf("/tickets/%d/prioridad", ticketID)
	body := map[string]int{"id_prioridad": int(priority)}
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, body, &env); err != nil {
		return err
	}
	if !env.Success {
		return envelopeError(env, "priority change rejected")
	}
	return nil
}

// AssignOperator assigns the ticket to an operator ("take ticket" uses the
// caller's own id). Assignment is atomic server-side.
func (c *Client) AssignOperator(ctx context.Context, ticketID, operatorID int64) error {
	var env apiStatus
	path := fmt.Sprintf("/tickets/%d/asignar", ticketID)
	body := map[string]int64{"id_operador": operatorID}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &env); err != nil {
		return err
	}
	if !env.Success {
		return envelopeError(env, "assignment rejected")
	}
	return nil
}

type statsEnvelope struct {
	apiStatus
	Stats struct {
		KPIs  *domain.TicketStats `json:"kpis"`
		Total int                 `json:"total_tickets"`
	} `json:"estadisticas"`
}

// Stats fetches the server-side KPI aggregate.
func (c *Client) Stats(ctx context.Context) (*domain.TicketStats, error) {
	var env statsEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/tickets/estadisticas", nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not load statistics")
	}
	stats := env.Stats.KPIs
	if stats == nil {
		stats = &domain.TicketStats{}
	}
	if stats.TotalTickets == 0 {
		stats.TotalTickets = env.Stats.Total
	}
	return stats, nil
}
