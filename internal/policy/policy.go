// Package policy mirrors the server-side ticket authorization rules so the
// client can toggle UI affordances before the backend rejects an action. The
// backend remains the enforcement point; every decision here is advisory.
//
// All functions are pure. Missing or malformed identifiers fail closed: the
// most restrictive outcome wins and nothing panics.
package policy

import (
	"github.com/spec-kit/helpdesk-console/internal/domain"
)

// ReplyRestriction explains why replying is blocked.
type ReplyRestriction string

const (
	RestrictionNone           ReplyRestriction = ""
	RestrictionClosed         ReplyRestriction = "CLOSED"
	RestrictionUnclaimed      ReplyRestriction = "UNCLAIMED"
	RestrictionNotResponsible ReplyRestriction = "NOT_RESPONSIBLE"
)

// ReplyDecision is the outcome of CanReply.
type ReplyDecision struct {
	Allowed bool
	Reason  ReplyRestriction
}

// CanReply decides whether the actor may send a chat message on the ticket.
//
// Admins may reply to any ticket that is not closed. The original dashboard
// carried two contradictory admin rules across its code paths; the
// backend-aligned one (unconditional admin override except on closed
// tickets) is the one implemented here.
func CanReply(ticket *domain.Ticket, actor domain.Actor) ReplyDecision {
	if ticket == nil {
		return ReplyDecision{Reason: RestrictionNotResponsible}
	}
	if ticket.Status.IsClosed() {
		return ReplyDecision{Reason: RestrictionClosed}
	}
	if actor.Role == domain.RoleAdmin {
		return ReplyDecision{Allowed: true}
	}
	if ticket.Unassigned() {
		if isSender(ticket, actor) {
			return ReplyDecision{Allowed: true}
		}
		return ReplyDecision{Reason: RestrictionUnclaimed}
	}
	if isOwner(ticket, actor) || isSender(ticket, actor) {
		return ReplyDecision{Allowed: true}
	}
	return ReplyDecision{Reason: RestrictionNotResponsible}
}

// ReplyPlaceholder returns the chat input copy for a reply decision. These
// are the placeholder strings of the original dashboard.
func ReplyPlaceholder(d ReplyDecision) string {
	switch d.Reason {
	case RestrictionClosed:
		return "Ticket cerrado: no se puede responder."
	case RestrictionUnclaimed:
		return "Debes tomar el ticket para responder..."
	case RestrictionNotResponsible:
		return "Solo el responsable o el emisor del ticket pueden responder."
	default:
		return "Escribe un mensaje..."
	}
}

// Transition is one status change the UI may offer for a ticket.
type Transition struct {
	Target domain.StatusID
	Label  string
}

var (
	transitionPending    = Transition{Target: domain.StatusPending, Label: "Pendiente"}
	transitionInProgress = Transition{Target: domain.StatusInProgress, Label: "En proceso"}
	transitionResolve    = Transition{Target: domain.StatusResolved, Label: "Resolver"}
	transitionClose      = Transition{Target: domain.StatusClosed, Label: "Cerrar"}
	transitionReopen     = Transition{Target: domain.StatusInProgress, Label: "Reabrir"}
)

// StatusTransitions returns the status changes offered to the actor for the
// ticket. An empty slice means the action controls stay disabled.
func StatusTransitions(ticket *domain.Ticket, actor domain.Actor) []Transition {
	if ticket == nil {
		return nil
	}
	if actor.Role == domain.RoleAdmin {
		return []Transition{transitionPending, transitionInProgress, transitionResolve, transitionClose}
	}

	owner := isOwner(ticket, actor)
	sender := isSender(ticket, actor)
	closed := ticket.Status.IsClosed()

	switch {
	case owner && sender:
		out := []Transition{transitionResolve}
		if closed {
			out = append(out, transitionReopen)
		} else {
			out = append(out, transitionClose)
		}
		return out
	case owner:
		return []Transition{transitionResolve}
	case sender:
		if closed {
			return []Transition{transitionReopen}
		}
		return []Transition{transitionClose}
	default:
		return nil
	}
}

// VisibleTo decides whether the ticket belongs in the actor's role-scoped
// list: admins see everything, supervisors their departments, agents only
// tickets they raised or own.
func VisibleTo(ticket *domain.Ticket, actor domain.Actor) bool {
	if ticket == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSupervisor:
		dept, ok := ticket.ScopeDepartment()
		return ok && actor.InDepartment(dept)
	default:
		return isSender(ticket, actor) || isOwner(ticket, actor)
	}
}

// CanClaim decides "take ticket" eligibility: the ticket is unassigned, the
// actor did not raise it, and it sits in one of the actor's departments.
func CanClaim(ticket *domain.Ticket, actor domain.Actor) bool {
	if ticket == nil || !ticket.Unassigned() || isSender(ticket, actor) {
		return false
	}
	dept, ok := ticket.ScopeDepartment()
	return ok && actor.InDepartment(dept)
}

func isOwner(ticket *domain.Ticket, actor domain.Actor) bool {
	return actor.OperatorID != 0 &&
		ticket.OwnerOperatorID != nil && *ticket.OwnerOperatorID == actor.OperatorID
}

func isSender(ticket *domain.Ticket, actor domain.Actor) bool {
	return actor.OperatorID != 0 &&
		ticket.SenderOperatorID != nil && *ticket.SenderOperatorID == actor.OperatorID
}
