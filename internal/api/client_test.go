package api

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/config"
	"github.com/spec-kit/helpdesk-console/pkg/util"
)

// startBackend serves a fiber app on a loopback port for the duration of
// the test and returns its base URL.
func startBackend(t *testing.T, setup func(*fiber.App)) string {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	setup(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})
	return "http://" + ln.Addr().String()
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(config.APIConfig{BaseURL: baseURL, RequestTimeoutSeconds: 5}, zap.NewNop())
}

// fakeTokens is a scriptable TokenSource.
type fakeTokens struct {
	token      string
	refreshed  int
	refreshErr error
}

func (f *fakeTokens) AccessToken() string { return f.token }

func (f *fakeTokens) Refresh(ctx context.Context) error {
	f.refreshed++
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.token = "fresh-token"
	return nil
}

func TestListTickets(t *testing.T) {
	var gotQuery map[string]string
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/tickets", func(c *fiber.Ctx) error {
			gotQuery = map[string]string{
				"limit":     c.Query("limit"),
				"offset":    c.Query("offset"),
				"id_estado": c.Query("id_estado"),
			}
			return c.JSON(fiber.Map{
				"success": true,
				"tickets": []fiber.Map{
					{"id_ticket": 1, "titulo": "uno", "id_estado": 1},
					{"id_ticket": 2, "titulo": "dos", "id_estado": 2},
				},
				"total": 7,
			})
		})
	})

	client := newTestClient(t, base)
	client.SetTokenSource(&fakeTokens{token: "abc"})

	tickets, total, err := client.ListTickets(context.Background(), TicketFilter{Status: 1, Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(tickets) != 2 || total != 7 {
		t.Errorf("got %d tickets total %d, want 2 tickets total 7", len(tickets), total)
	}
	if tickets[0].ID != 1 || tickets[1].Title != "dos" {
		t.Errorf("decoded tickets = %+v", tickets)
	}
	if gotQuery["limit"] != "10" || gotQuery["offset"] != "20" || gotQuery["id_estado"] != "1" {
		t.Errorf("query = %v", gotQuery)
	}
}

func TestListTicketsDataFieldFallback(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/tickets", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    []fiber.Map{{"id_ticket": 5}},
			})
		})
	})

	client := newTestClient(t, base)
	tickets, total, err := client.ListTickets(context.Background(), TicketFilter{})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != 5 {
		t.Errorf("tickets = %+v", tickets)
	}
	if total != 1 {
		t.Errorf("total = %d, want the page length 1", total)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/tickets/99", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "ticket no encontrado",
			})
		})
	})

	client := newTestClient(t, base)
	_, err := client.GetTicket(context.Background(), 99)
	if err == nil {
		t.Fatal("GetTicket() error = nil, want failure")
	}
	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("error type = %T, want *util.DomainError", err)
	}
	if domainErr.Code != "API_ERROR" || domainErr.HTTPStatus != fiber.StatusNotFound {
		t.Errorf("error = %+v", domainErr)
	}
	if domainErr.Message != "ticket no encontrado" {
		t.Errorf("message = %q", domainErr.Message)
	}
}

func TestExpiredTokenRefreshesAndRetries(t *testing.T) {
	requests := 0
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/tickets/3", func(c *fiber.Ctx) error {
			requests++
			if c.Get(fiber.HeaderAuthorization) != "Bearer fresh-token" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"error":   "token expired",
				})
			}
			return c.JSON(fiber.Map{
				"success": true,
				"data":    fiber.Map{"id_ticket": 3, "titulo": "tres"},
			})
		})
	})

	tokens := &fakeTokens{token: "stale-token"}
	client := newTestClient(t, base)
	client.SetTokenSource(tokens)

	ticket, err := client.GetTicket(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetTicket: %v", err)
	}
	if ticket.ID != 3 {
		t.Errorf("ticket = %+v", ticket)
	}
	if tokens.refreshed != 1 {
		t.Errorf("refreshes = %d, want 1", tokens.refreshed)
	}
	if requests != 2 {
		t.Errorf("backend requests = %d, want 2", requests)
	}
}

func TestFailedRefreshSurfacesUnauthorized(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/tickets/3", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false})
		})
	})

	tokens := &fakeTokens{token: "stale", refreshErr: errors.New("refresh rejected")}
	client := newTestClient(t, base)
	client.SetTokenSource(tokens)

	_, err := client.GetTicket(context.Background(), 3)
	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Fatalf("error = %v, want UNAUTHORIZED", err)
	}
	if tokens.refreshed != 1 {
		t.Errorf("refreshes = %d, want 1", tokens.refreshed)
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")
	_, err := client.SendMessage(context.Background(), SendMessageInput{TicketID: 1, Content: "   "})
	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("error = %v, want VALIDATION_FAILED", err)
	}
}

func TestSendMessageDefaultsChatChannel(t *testing.T) {
	var got SendMessageInput
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/mensajes", func(c *fiber.Ctx) error {
			if err := c.BodyParser(&got); err != nil {
				return err
			}
			return c.JSON(fiber.Map{
				"success": true,
				"data":    fiber.Map{"id_msg": 12, "id_ticket": got.TicketID, "contenido": got.Content},
			})
		})
	})

	client := newTestClient(t, base)
	msg, err := client.SendMessage(context.Background(), SendMessageInput{TicketID: 9, Content: "  hola  "})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID != 12 {
		t.Errorf("message = %+v", msg)
	}
	if got.ChannelID != 2 {
		t.Errorf("channel = %d, want the chat channel 2", got.ChannelID)
	}
	if got.Content != "hola" {
		t.Errorf("content = %q, want trimmed %q", got.Content, "hola")
	}
}

func TestLogin(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/auth/login", func(c *fiber.Ctx) error {
			var body map[string]string
			if err := c.BodyParser(&body); err != nil {
				return err
			}
			if body["email"] != "ana@example.com" || body["password"] != "secreto" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"success": false,
					"error":   "credenciales inválidas",
				})
			}
			return c.JSON(fiber.Map{
				"success":       true,
				"access_token":  "acc",
				"refresh_token": "ref",
				"operador":      fiber.Map{"id_operador": 42, "nombre": "Ana", "rol": "supervisor"},
			})
		})
	})

	client := newTestClient(t, base)
	result, err := client.Login(context.Background(), "ana@example.com", "secreto")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken != "acc" || result.RefreshToken != "ref" || result.Operator.ID != 42 {
		t.Errorf("result = %+v", result)
	}

	_, err = client.Login(context.Background(), "ana@example.com", "wrong")
	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) || domainErr.HTTPStatus != fiber.StatusUnauthorized {
		t.Errorf("bad login error = %v", err)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/catalogos/estados", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"success": true,
				"data": []fiber.Map{
					{"id": 1, "nombre": "Nuevo"},
					{"id": 4, "nombre": "Cerrado"},
				},
			})
		})
		app.Get("/catalogos/prioridades", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    []fiber.Map{{"id": 1, "nombre": "Urgente"}},
			})
		})
		app.Get("/departamentos", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    []fiber.Map{{"id_depto": 3, "nombre": "Soporte"}},
			})
		})
	})

	client := newTestClient(t, base)
	ctx := context.Background()

	statuses, err := client.Statuses(ctx)
	if err != nil || len(statuses) != 2 || statuses[1].Name != "Cerrado" {
		t.Errorf("Statuses() = %v, %v", statuses, err)
	}
	priorities, err := client.Priorities(ctx)
	if err != nil || len(priorities) != 1 || priorities[0].ID != 1 {
		t.Errorf("Priorities() = %v, %v", priorities, err)
	}
	departments, err := client.Departments(ctx)
	if err != nil || len(departments) != 1 || departments[0].ID != 3 {
		t.Errorf("Departments() = %v, %v", departments, err)
	}
}

func TestRefreshAccessTokenUsesRefreshTokenAsBearer(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/auth/refresh", func(c *fiber.Ctx) error {
			if c.Get(fiber.HeaderAuthorization) != "Bearer my-refresh" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false})
			}
			return c.JSON(fiber.Map{"success": true, "access_token": "renewed"})
		})
	})

	client := newTestClient(t, base)
	token, err := client.RefreshAccessToken(context.Background(), "my-refresh")
	if err != nil {
		t.Fatalf("RefreshAccessToken: %v", err)
	}
	if token != "renewed" {
		t.Errorf("token = %q, want %q", token, "renewed")
	}
}
