package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "hdc",
		Short: "Helpdesk operator console",
		Long:  "hdc is a terminal client for the helpdesk backend: ticket lists, live chat, status changes and KPIs from the command line.",
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "hdc.yaml", "path to config file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLoginCmd(&configPath))
	cmd.AddCommand(newLogoutCmd(&configPath))
	cmd.AddCommand(newMeCmd(&configPath))
	cmd.AddCommand(newTicketsCmd(&configPath))
	cmd.AddCommand(newTicketCmd(&configPath))
	cmd.AddCommand(newWatchCmd(&configPath))
	cmd.AddCommand(newTailCmd(&configPath))
	cmd.AddCommand(newReplyCmd(&configPath))
	cmd.AddCommand(newStatusCmd(&configPath))
	cmd.AddCommand(newPriorityCmd(&configPath))
	cmd.AddCommand(newClaimCmd(&configPath))
	cmd.AddCommand(newStatsCmd(&configPath))
	cmd.AddCommand(newNotificationsCmd(&configPath))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hdc %s (commit: %s)\n", Version, Commit)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
