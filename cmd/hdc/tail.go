package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-console/internal/chat"
	"github.com/spec-kit/helpdesk-console/internal/domain"
	"github.com/spec-kit/helpdesk-console/internal/notify"
	"github.com/spec-kit/helpdesk-console/internal/policy"
)

// writerRenderer streams merge results line by line, tail -f style.
type writerRenderer struct {
	mu        sync.Mutex
	out       io.Writer
	selfID    int64
	saidEmpty bool
}

func (r *writerRenderer) RenderAll(msgs []domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(msgs) == 0 {
		// An empty thread stays in first-load mode, so RenderAll repeats
		// every tick until a message arrives. Say it once.
		if !r.saidEmpty {
			r.saidEmpty = true
			fmt.Fprintln(r.out, styleFaint.Render("Sin mensajes todavía."))
		}
		return
	}
	for i := range msgs {
		fmt.Fprintln(r.out, formatMessageLine(&msgs[i], r.selfID, 0))
	}
}

func (r *writerRenderer) Append(msgs []domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range msgs {
		fmt.Fprintln(r.out, formatMessageLine(&msgs[i], r.selfID, 0))
	}
}

func newTailCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail <id>",
		Short: "Follow a ticket's chat in the terminal",
		Long:  "tail polls the ticket's thread and prints new messages as they arrive. Interrupt with Ctrl-C.",
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			actor, err := a.requireActor(ctx)
			if err != nil {
				return err
			}
			ticket, err := a.client.GetTicket(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", styleHeader.Render(fmt.Sprintf("#%d %s · %s", ticket.ID, ticket.Title, ticket.Status)))
			if decision := policy.CanReply(ticket, actor); !decision.Allowed {
				fmt.Fprintln(out, styleFaint.Render(policy.ReplyPlaceholder(decision)))
			}

			notifier := notify.NewNotifier(a.dispatcher, a.logger, cmd.ErrOrStderr())
			notifier.RegisterHandlers()

			loop := chat.NewLoop(chat.Dependencies{
				Fetcher:    a.client,
				Renderer:   &writerRenderer{out: out, selfID: actor.OperatorID},
				Logger:     a.logger,
				Metrics:    a.metrics,
				Dispatcher: a.dispatcher,
				Interval:   a.cfg.Poll.PollInterval(),
			})
			loop.Open(id)

			// Render the thread immediately instead of waiting one interval.
			// A failed first poll is no different from a failed later one:
			// keep following and let the next tick retry.
			if err := loop.Tick(ctx); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleFaint.Render("Sin conexión, reintentando..."))
			}
			loop.Start(ctx)
			loop.Close()

			snap := a.metrics.Snapshot()
			a.logger.Info("tail finished",
				zap.Int64("ticket_id", id),
				zap.Int64("fetches", snap.Fetches),
				zap.Int64("fetch_failures", snap.FetchFailures),
				zap.Int64("appended", snap.Appended),
				zap.Int64("anomalies", snap.Anomalies))
			return nil
		},
	}
	return cmd
}
