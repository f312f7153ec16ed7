package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/policy"
)

func newTicketCmd(configPath *string) *cobra.Command {
	var withMessages bool

	cmd := &cobra.Command{
		Use:   "ticket <id>",
		Short: "Show one ticket with the actions available to you",
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

			out := cmd.OutOrStdout()
			now := time.Now()

			fmt.Fprintf(out, "%s\n", styleHeader.Render(fmt.Sprintf("#%d %s", ticket.ID, ticket.Title)))
			fmt.Fprintf(out, "Estado:     %s\n", statusBadge(ticket.Status))
			fmt.Fprintf(out, "Prioridad:  %s\n", priorityBadge(ticket.Priority))
			fmt.Fprintf(out, "Solicitante: %s\n", ticketRequester(ticket))
			fmt.Fprintf(out, "Asignado a: %s\n", ownerLabel(ticket))
			fmt.Fprintf(out, "Creado:     %s (%s)\n", ticket.CreatedAt.Format("02/01/2006 15:04"), timeAgo(ticket.CreatedAt, now))
			if ticket.Description != "" {
				fmt.Fprintf(out, "\n%s\n", ticket.Description)
			}

			fmt.Fprintln(out)
			decision := policy.CanReply(ticket, actor)
			if decision.Allowed {
				fmt.Fprintln(out, "Responder:  sí (hdc reply "+args[0]+" \"...\")")
			} else {
				fmt.Fprintf(out, "Responder:  no · %s\n", policy.ReplyPlaceholder(decision))
			}

			transitions := policy.StatusTransitions(ticket, actor)
			if len(transitions) == 0 {
				fmt.Fprintln(out, "Cambios de estado: ninguno disponible")
			} else {
				fmt.Fprint(out, "Cambios de estado:")
				for _, tr := range transitions {
					fmt.Fprintf(out, " [%s]", tr.Label)
				}
				fmt.Fprintln(out)
			}
			if policy.CanClaim(ticket, actor) {
				fmt.Fprintln(out, "Puedes tomar este ticket: hdc claim "+args[0])
			}

			if withMessages {
				messages := ticket.Messages
				if len(messages) == 0 {
					messages, err = a.client.TicketMessages(ctx, ticket.ID)
					if err != nil {
						return err
					}
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, styleHeader.Render("Conversación"))
				if len(messages) == 0 {
					fmt.Fprintln(out, styleFaint.Render("Sin mensajes todavía."))
				}
				for i := range messages {
					fmt.Fprintln(out, formatMessageLine(&messages[i], actor.OperatorID, 0))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withMessages, "messages", "m", false, "include the chat thread")
	return cmd
}

func parseTicketID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ticket id %q", arg)
	}
	return id, nil
}

// resolveTicket loads a ticket by its raw CLI argument, shared by the
// action commands.
func resolveTicket(cmd *cobra.Command, a *app, arg string) (*domain.Ticket, error) {
	id, err := parseTicketID(arg)
	if err != nil {
		return nil, err
	}
	return a.client.GetTicket(cmd.Context(), id)
}
