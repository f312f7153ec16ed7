package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spec-kit/helpdesk-console/internal/domain"
)

type departmentListEnvelope struct {
	apiStatus
	Data []domain.Department `json:"data"`
}

// Departments lists the department catalog.
func (c *Client) Departments(ctx context.Context) ([]domain.Department, error) {
	var env departmentListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/departamentos", nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not list departments")
	}
	return env.Data, nil
}

type catalogEnvelope struct {
	apiStatus
	Data []domain.CatalogEntry `json:"data"`
}

// Statuses lists the estado catalog.
func (c *Client) Statuses(ctx context.Context) ([]domain.CatalogEntry, error) {
	return c.catalog(ctx, "/catalogos/estados")
}

// Priorities lists the prioridad catalog.
func (c *Client) Priorities(ctx context.Context) ([]domain.CatalogEntry, error) {
	return c.catalog(ctx, "/catalogos/prioridades")
}

func (c *Client) catalog(ctx context.Context, path string) ([]domain.CatalogEntry, error) {
	var env catalogEnvelope
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not load catalog")
	}
	return env.Data, nil
}

type notificationListEnvelope struct {
	apiStatus
	Data []domain.Notification `json:"data"`
}

// Notifications lists the operator's notifications.
func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	var env notificationListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/notificaciones", nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not list notifications")
	}
	return env.Data, nil
}

type notificationSummaryEnvelope struct {
	apiStatus
	Data domain.NotificationSummary `json:"data"`
}

// NotificationSummary fetches the unread-count badge.
func (c *Client) NotificationSummary(ctx context.Context) (*domain.NotificationSummary, error) {
	var env notificationSummaryEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/notificaciones/resumen", nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not load notification summary")
	}
	return &env.Data, nil
}

type operatorListEnvelope struct {
	apiStatus
	Data []domain.Operator `json:"data"`
}

// Operators lists the operator directory, used to resolve assignees.
func (c *Client) Operators(ctx context.Context) ([]domain.Operator, error) {
	var env operatorListEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/operadores", nil, nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeError(env.apiStatus, "could not list operators")
	}
	return env.Data, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	var env apiStatus
	path := fmt.Sprintf("/notificaciones/%d/leer", id)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, &env); err != nil {
		return err
	}
	if !env.Success {
		return envelopeError(env, "could not mark notification read")
	}
	return nil
}
