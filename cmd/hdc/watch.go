package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-console/internal/api"
	"github.com/spec-kit/helpdesk-console/internal/chat"
	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/policy"
)

// pollTickMsg fires on the poll interval; each one schedules the next.
type pollTickMsg struct{}

// pollResultMsg is sent when one poll finishes. Merge output is picked up
// from the capture renderer, not carried in the message.
type pollResultMsg struct{ err error }

// sentMsg is sent when a reply submission finishes.
type sentMsg struct{ err error }

// captureRenderer buffers merge results produced inside poll commands so
// the model can apply them on its own goroutine.
type captureRenderer struct {
	mu       sync.Mutex
	replaced bool
	all      []domain.Message
	fresh    []domain.Message
}

func (r *captureRenderer) RenderAll(msgs []domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaced = true
	r.all = msgs
	r.fresh = nil
}

func (r *captureRenderer) Append(msgs []domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fresh = append(r.fresh, msgs...)
}

func (r *captureRenderer) drain() (replaced bool, all, fresh []domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced, all, fresh = r.replaced, r.all, r.fresh
	r.replaced = false
	r.all = nil
	r.fresh = nil
	return replaced, all, fresh
}

// watchModel is the live chat panel for one ticket.
type watchModel struct {
	app     *app
	actor   domain.Actor
	ticket  *domain.Ticket
	loop    *chat.Loop
	capture *captureRenderer
	ctx     context.Context

	vp     viewport.Model
	input  textinput.Model
	lines  []string
	ready  bool
	status string

	canReply bool
	sending  bool
}

func newWatchModel(ctx context.Context, a *app, actor domain.Actor, ticket *domain.Ticket) *watchModel {
	capture := &captureRenderer{}
	loop := chat.NewLoop(chat.Dependencies{
		Fetcher:    a.client,
		Renderer:   capture,
		Logger:     a.logger,
		Metrics:    a.metrics,
		Dispatcher: a.dispatcher,
		Interval:   a.cfg.Poll.PollInterval(),
	})
	loop.Open(ticket.ID)

	decision := policy.CanReply(ticket, actor)
	input := textinput.New()
	input.Placeholder = policy.ReplyPlaceholder(decision)
	input.CharLimit = 2000
	if decision.Allowed {
		input.Focus()
	}

	return &watchModel{
		app:      a,
		actor:    actor,
		ticket:   ticket,
		loop:     loop,
		capture:  capture,
		ctx:      ctx,
		input:    input,
		canReply: decision.Allowed,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.pollCmd(), m.scheduleTick())
}

// pollCmd runs one poll off the UI goroutine. The loop's own mutex and the
// capture renderer make this safe to run concurrently with Update.
func (m *watchModel) pollCmd() tea.Cmd {
	return func() tea.Msg {
		return pollResultMsg{err: m.loop.Tick(m.ctx)}
	}
}

func (m *watchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.app.cfg.Poll.PollInterval(), func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

func (m *watchModel) sendCmd(content string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.client.SendMessage(m.ctx, api.SendMessageInput{
			TicketID: m.ticket.ID,
			Content:  content,
		})
		return sentMsg{err: err}
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 3
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
			m.refreshContent(true)
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.Width = msg.Width - 4
		return m, nil

	case tea.FocusMsg:
		m.loop.SetVisible(true)
		return m, nil

	case tea.BlurMsg:
		m.loop.SetVisible(false)
		return m, nil

	case pollTickMsg:
		return m, tea.Batch(m.pollCmd(), m.scheduleTick())

	case pollResultMsg:
		if msg.err != nil {
			m.status = "sin conexión, reintentando..."
			return m, nil
		}
		m.status = ""
		m.applyMerge()
		return m, nil

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = ""
		// Pull the echo of our own message without waiting an interval.
		return m, m.pollCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.loop.Close()
			return m, tea.Quit
		case "enter":
			content := strings.TrimSpace(m.input.Value())
			if !m.canReply || m.sending || content == "" {
				return m, nil
			}
			m.sending = true
			m.input.SetValue("")
			return m, m.sendCmd(content)
		case "pgup":
			m.vp.LineUp(m.vp.Height)
			return m, nil
		case "pgdown":
			m.vp.LineDown(m.vp.Height)
			return m, nil
		case "up", "ctrl+p":
			m.vp.LineUp(1)
			return m, nil
		case "down", "ctrl+n":
			m.vp.LineDown(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyMerge drains the capture renderer into the viewport. Auto-scroll
// follows the bottom only while the view is already pinned there, so
// reading history is never yanked away by new messages.
func (m *watchModel) applyMerge() {
	replaced, all, fresh := m.capture.drain()
	if !replaced && len(fresh) == 0 {
		return
	}

	if replaced {
		m.lines = m.lines[:0]
		for i := range all {
			m.lines = append(m.lines, formatMessageLine(&all[i], m.actor.OperatorID, 0))
		}
		m.refreshContent(true)
		return
	}

	pinned := m.vp.AtBottom()
	for i := range fresh {
		m.lines = append(m.lines, formatMessageLine(&fresh[i], m.actor.OperatorID, 0))
	}
	m.refreshContent(pinned)
}

func (m *watchModel) refreshContent(gotoBottom bool) {
	if !m.ready {
		return
	}
	if len(m.lines) == 0 {
		m.vp.SetContent(styleFaint.Render("Sin mensajes todavía."))
	} else {
		m.vp.SetContent(strings.Join(m.lines, "\n"))
	}
	if gotoBottom {
		m.vp.GotoBottom()
	}
}

func (m *watchModel) View() string {
	if !m.ready {
		return "cargando..."
	}

	header := styleHeader.Render(fmt.Sprintf("#%d %s", m.ticket.ID, m.ticket.Title)) +
		"  " + statusBadge(m.ticket.Status) + "  " + priorityBadge(m.ticket.Priority)

	var footer string
	if m.canReply {
		footer = m.input.View()
	} else {
		footer = styleFaint.Render(m.input.Placeholder)
	}
	hint := styleFaint.Render("enter enviar · ↑/↓ desplazar · esc salir")
	if m.status != "" {
		hint = styleFaint.Render(m.status)
	}

	return header + "\n\n" + m.vp.View() + "\n" + footer + "\n" + hint
}

func newWatchCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Open a ticket's live chat panel",
		Long:  "watch opens a full-screen chat view that polls for new messages, pausing while the terminal loses focus.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			actor, err := a.requireActor(ctx)
			if err != nil {
				return err
			}
			ticket, err := a.client.GetTicket(ctx, id)
			if err != nil {
				return err
			}

			model := newWatchModel(ctx, a, actor, ticket)
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
			_, err = program.Run()
			return err
		},
	}
	return cmd
}
