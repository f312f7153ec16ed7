// Package kpi computes the dashboard's headline numbers client-side from a
// scoped ticket list, matching the widget math of the original dashboard.
// The richer aggregate comes from the server's estadisticas endpoint.
package kpi

import (
	"time"

	"github.com/spec-kit/helpdesk-console/internal/domain"
)

// Summary is the headline KPI row of the dashboard.
type Summary struct {
	Open     int
	NewToday int
	Mine     int
	Total    int
}

// FromTickets derives the summary from a ticket page. total is the
// backend's full count for the scope, which may exceed the page length.
func FromTickets(tickets []domain.Ticket, total int, actor domain.Actor, now time.Time) Summary {
	s := Summary{Total: total}
	if s.Total < len(tickets) {
		s.Total = len(tickets)
	}

	year, month, day := now.Date()
	for i := range tickets {
		t := &tickets[i]
		if t.Status.IsOpen() {
			s.Open++
		}
		cy, cm, cd := t.CreatedAt.In(now.Location()).Date()
		if cy == year && cm == month && cd == day {
			s.NewToday++
		}
		if isMine(t, actor) {
			s.Mine++
		}
	}
	return s
}

// isMine counts tickets the actor raised or currently owns.
func isMine(t *domain.Ticket, actor domain.Actor) bool {
	if actor.OperatorID == 0 {
		return false
	}
	if t.SenderOperatorID != nil && *t.SenderOperatorID == actor.OperatorID {
		return true
	}
	return t.OwnerOperatorID != nil && *t.OwnerOperatorID == actor.OperatorID
}
