package main

import (
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the helpdesk KPI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if _, err := a.requireActor(ctx); err != nil {
				return err
			}

			stats, err := a.client.Stats(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleHeader.Render("Estadísticas"))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Tickets abiertos\t%d\n", stats.OpenTickets)
			fmt.Fprintf(w, "Nuevos hoy\t%d\n", stats.NewToday)
			fmt.Fprintf(w, "Mis tickets\t%d\n", stats.MyTickets)
			fmt.Fprintf(w, "Resueltos hoy\t%d\n", stats.ResolvedToday)
			fmt.Fprintf(w, "Total\t%d\n", stats.TotalTickets)
			if stats.SatisfactionPct != nil {
				fmt.Fprintf(w, "Satisfacción\t%.1f%%\n", *stats.SatisfactionPct)
			}
			if stats.ResolutionHours != nil {
				fmt.Fprintf(w, "Tiempo de resolución\t%.1fh\n", *stats.ResolutionHours)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(stats.ByStatus) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, styleHeader.Render("Por estado"))
				printBreakdown(cmd, stats.ByStatus)
			}
			if len(stats.ByPriority) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, styleHeader.Render("Por prioridad"))
				printBreakdown(cmd, stats.ByPriority)
			}
			return nil
		},
	}
	return cmd
}

// printBreakdown renders a name/count map in descending count order.
func printBreakdown(cmd *cobra.Command, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, strconv.Itoa(counts[name]))
	}
	_ = w.Flush()
}

func newNotificationsCmd(configPath *string) *cobra.Command {
	var markRead int64

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications, optionally marking one read",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if _, err := a.requireActor(ctx); err != nil {
				return err
			}

			if markRead > 0 {
				if err := a.client.MarkNotificationRead(ctx, markRead); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Notificación #%d marcada como leída.\n", markRead)
				return nil
			}

			notifications, err := a.client.Notifications(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(notifications) == 0 {
				fmt.Fprintln(out, "Sin notificaciones.")
				return nil
			}

			now := time.Now()
			unread := 0
			for i := range notifications {
				n := &notifications[i]
				marker := " "
				if !n.Read {
					marker = "*"
					unread++
				}
				line := fmt.Sprintf("%s #%d [ticket #%d] %s", marker, n.ID, n.TicketID, n.Title)
				if n.Body != "" {
					line += " · " + truncate(n.Body, 60)
				}
				line += " · " + timeAgo(n.CreatedAt, now)
				if n.Read {
					line = styleFaint.Render(line)
				}
				fmt.Fprintln(out, line)
			}
			// Prefer the server's badge numbers; the local count only
			// covers the fetched page.
			total := len(notifications)
			if summary, err := a.client.NotificationSummary(ctx); err == nil {
				unread = summary.Unread
				if summary.Total > 0 {
					total = summary.Total
				}
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%d sin leer de %d.\n", unread, total)
			return nil
		},
	}

	cmd.Flags().Int64Var(&markRead, "read", 0, "mark the given notification id as read")
	return cmd
}
