package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-console/internal/api"
	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/events"
	"github.com/spec-kit/helpdesk-console/internal/policy"
)

func newReplyCmd(configPath *string) *cobra.Command {
	var (
		message  string
		internal bool
	)

	cmd := &cobra.Command{
		Use:   "reply <id> [message...]",
		Short: "Send a chat message on a ticket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := message
			if content == "" {
				content = strings.Join(args[1:], " ")
			}
			if strings.TrimSpace(content) == "" {
				return errors.New("empty message, pass text as arguments or with -m")
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
			ticket, err := resolveTicket(cmd, a, args[0])
			if err != nil {
				return err
			}

			decision := policy.CanReply(ticket, actor)
			if !decision.Allowed {
				return fmt.Errorf("%s", policy.ReplyPlaceholder(decision))
			}

			msg, err := a.client.SendMessage(ctx, api.SendMessageInput{
				TicketID: ticket.ID,
				Content:  content,
				Internal: internal,
			})
			if err != nil {
				return err
			}
			if msg != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Mensaje #%d enviado al ticket #%d.\n", msg.ID, ticket.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Mensaje enviado al ticket #%d.\n", ticket.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "message text")
	cmd.Flags().BoolVar(&internal, "internal", false, "mark the message as an internal note")
	return cmd
}

func newStatusCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <id> <estado>",
		Short: "Change a ticket's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, ok := domain.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
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
			ticket, err := resolveTicket(cmd, a, args[0])
			if err != nil {
				return err
			}

			if !transitionOffered(policy.StatusTransitions(ticket, actor), target) {
				return fmt.Errorf("no puedes cambiar el ticket #%d a %s", ticket.ID, target)
			}
			if err := a.client.ChangeStatus(ctx, ticket.ID, target); err != nil {
				return err
			}

			publish(ctx, a, events.EventTicketStatusChanged, ticket.ID, events.TicketStatusChangedPayload{
				OldStatus: ticket.Status,
				NewStatus: target,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Ticket #%d: %s → %s\n", ticket.ID, ticket.Status, target)
			return nil
		},
	}
	return cmd
}

func newPriorityCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priority <id> <prioridad>",
		Short: "Change a ticket's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := domain.ParsePriority(args[1])

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if _, err := a.requireActor(ctx); err != nil {
				return err
			}
			ticket, err := resolveTicket(cmd, a, args[0])
			if err != nil {
				return err
			}

			if err := a.client.ChangePriority(ctx, ticket.ID, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ticket #%d: prioridad %s\n", ticket.ID, target)
			return nil
		},
	}
	return cmd
}

func newClaimCmd(configPath *string) *cobra.Command {
	var assignee string

	cmd := &cobra.Command{
		Use:   "claim <id>",
		Short: "Take an unassigned ticket, or assign it to someone as admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			ticket, err := resolveTicket(cmd, a, args[0])
			if err != nil {
				return err
			}

			targetID := actor.OperatorID
			if assignee != "" {
				if actor.Role == domain.RoleAgent {
					return errors.New("solo un administrador o supervisor puede asignar a otros")
				}
				targetID, err = resolveOperator(ctx, a, assignee)
				if err != nil {
					return err
				}
			} else if !policy.CanClaim(ticket, actor) {
				if !ticket.Unassigned() {
					return fmt.Errorf("el ticket #%d ya tiene responsable", ticket.ID)
				}
				return fmt.Errorf("el ticket #%d no está en tus departamentos", ticket.ID)
			}

			if err := a.client.AssignOperator(ctx, ticket.ID, targetID); err != nil {
				return err
			}

			publish(ctx, a, events.EventTicketClaimed, ticket.ID, events.TicketClaimedPayload{
				OperatorID: targetID,
			})
			if targetID == actor.OperatorID {
				fmt.Fprintf(cmd.OutOrStdout(), "Ticket #%d tomado.\n", ticket.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Ticket #%d asignado al operador %d.\n", ticket.ID, targetID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "to", "", "assign to another operator by email or name")
	return cmd
}

// resolveOperator matches an email or name against the operator directory.
func resolveOperator(ctx context.Context, a *app, query string) (int64, error) {
	operators, err := a.client.Operators(ctx)
	if err != nil {
		return 0, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	var matches []domain.Operator
	for _, op := range operators {
		if strings.ToLower(op.Email) == needle || strings.ToLower(op.Name) == needle {
			return op.ID, nil
		}
		if strings.Contains(strings.ToLower(op.Name), needle) {
			matches = append(matches, op)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].ID, nil
	case 0:
		return 0, fmt.Errorf("no hay operador que coincida con %q", query)
	default:
		names := make([]string, len(matches))
		for i, op := range matches {
			names[i] = op.Name
		}
		return 0, fmt.Errorf("%q es ambiguo: %s", query, strings.Join(names, ", "))
	}
}

func transitionOffered(transitions []policy.Transition, target domain.StatusID) bool {
	for _, tr := range transitions {
		if tr.Target == target {
			return true
		}
	}
	return false
}

func publish(ctx context.Context, a *app, eventType events.EventType, ticketID int64, payload interface{}) {
	_ = a.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
