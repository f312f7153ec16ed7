package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/helpdesk-console/internal/domain"
)

var (
	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleFaint    = lipgloss.NewStyle().Faint(true)
	styleNew      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleResolved = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleClosed   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleUrgent   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleHigh     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleOwn      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func statusBadge(s domain.StatusID) string {
	label := s.String()
	switch s {
	case domain.StatusNew, domain.StatusUnanswered:
		return styleNew.Render(label)
	case domain.StatusInProgress, domain.StatusPending:
		return styleProgress.Render(label)
	case domain.StatusResolved:
		return styleResolved.Render(label)
	case domain.StatusClosed:
		return styleClosed.Render(label)
	default:
		return label
	}
}

func priorityBadge(p domain.PriorityID) string {
	label := p.String()
	switch p {
	case domain.PriorityUrgent:
		return styleUrgent.Render(label)
	case domain.PriorityHigh:
		return styleHigh.Render(label)
	default:
		return styleFaint.Render(label)
	}
}

// timeAgo renders a compact relative time, the dashboard's card format.
func timeAgo(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "<1 min"
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%dd", int(diff.Hours()/24))
	default:
		return t.Format("02/01/2006")
	}
}

// truncate shortens text to maxLen runes with an ellipsis.
func truncate(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return strings.TrimSpace(string(runes[:maxLen-1])) + "…"
}

// ticketRequester returns the display name of whoever raised the ticket.
func ticketRequester(t *domain.Ticket) string {
	if t.SenderName != "" {
		return t.SenderName
	}
	if t.Requester != nil && t.Requester.Name != "" {
		return t.Requester.Name
	}
	return "Usuario desconocido"
}

// ownerLabel mirrors the dashboard's assignment column.
func ownerLabel(t *domain.Ticket) string {
	if t.Unassigned() {
		return styleFaint.Render("Sin asignar")
	}
	if t.OwnerName == "" {
		return fmt.Sprintf("operador %d", *t.OwnerOperatorID)
	}
	return t.OwnerName
}

func formatMessageLine(m *domain.Message, selfID int64, width int) string {
	ts := styleFaint.Render(m.SentAt.Format("15:04"))
	sender := m.SenderName
	if sender == "" {
		if m.SenderType == domain.SenderOperator {
			sender = "Operador"
		} else {
			sender = "Usuario Externo"
		}
	}
	if m.FromOperator(selfID) {
		sender = styleOwn.Render("Tú (" + sender + ")")
	} else if m.SenderType == domain.SenderExternalUser {
		sender = sender + " " + styleFaint.Render("(Usuario Externo)")
	}

	content := m.Content
	if width > 0 {
		content = truncate(content, width)
	}
	line := fmt.Sprintf("%s %s: %s", ts, sender, content)
	if len(m.Attachments) > 0 {
		line += styleFaint.Render(fmt.Sprintf(" [%d adjunto(s)]", len(m.Attachments)))
	}
	return line
}
