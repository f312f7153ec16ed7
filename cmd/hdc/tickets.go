package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-console/internal/api"
	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/kpi"
	"github.com/spec-kit/helpdesk-console/internal/policy"
)

func newTicketsCmd(configPath *string) *cobra.Command {
	var (
		statusName   string
		priorityName string
		search       string
		limit        int
		offset       int
		showAll      bool
	)

	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List tickets visible to you",
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

			filter := api.TicketFilter{Search: search, Limit: limit, Offset: offset}
			if filter.Limit <= 0 {
				filter.Limit = a.cfg.UI.PageSize
			}
			if statusName != "" {
				status, ok := domain.ParseStatus(statusName)
				if !ok {
					return fmt.Errorf("unknown status %q", statusName)
				}
				filter.Status = status
			}
			if priorityName != "" {
				filter.Priority = domain.ParsePriority(priorityName)
			}

			tickets, total, err := a.client.ListTickets(ctx, filter)
			if err != nil {
				return err
			}

			// The backend already scopes listings by role; filtering again
			// here keeps the console honest against older backends that
			// returned the full table.
			visible := tickets[:0:0]
			for i := range tickets {
				if showAll || policy.VisibleTo(&tickets[i], actor) {
					visible = append(visible, tickets[i])
				}
			}

			out := cmd.OutOrStdout()
			if len(visible) == 0 {
				fmt.Fprintln(out, "No hay tickets para mostrar.")
				return nil
			}

			// Plain text inside the tabwriter: ANSI escapes would break
			// the column widths.
			now := time.Now()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tESTADO\tPRIORIDAD\tASIGNADO\tACTUALIZADO\tASUNTO")
			for i := range visible {
				t := &visible[i]
				updated := t.CreatedAt
				if t.LastActivityAt != nil {
					updated = *t.LastActivityAt
				}
				owner := "Sin asignar"
				if !t.Unassigned() {
					owner = t.OwnerName
					if owner == "" {
						owner = fmt.Sprintf("operador %d", *t.OwnerOperatorID)
					}
				}
				fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\t%s\n",
					t.ID,
					t.Status.String(),
					t.Priority.String(),
					owner,
					timeAgo(updated, now),
					truncate(t.Title, 48),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			summary := kpi.FromTickets(visible, total, actor, now)
			fmt.Fprintln(out)
			fmt.Fprintln(out, styleFaint.Render(fmt.Sprintf(
				"abiertos: %d · nuevos hoy: %d · míos: %d · total: %d",
				summary.Open, summary.NewToday, summary.Mine, summary.Total)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusName, "status", "s", "", "filter by status (nuevo, en proceso, resuelto, cerrado, pendiente, sin responder)")
	cmd.Flags().StringVarP(&priorityName, "priority", "p", "", "filter by priority (urgente, alta, media, baja)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "free-text search")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	cmd.Flags().BoolVar(&showAll, "all", false, "skip client-side role scoping")
	return cmd
}
