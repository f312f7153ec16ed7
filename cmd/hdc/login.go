package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(configPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the helpdesk backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if email == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Email: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(line)
			}

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			op, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s> (%s)\n", op.Name, op.Email, op.ActorView().Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "operator email")
	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	// Non-interactive stdin (pipes, tests).
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newMeCmd(configPath *string) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in operator profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.requireActor(cmd.Context()); err != nil {
				return err
			}
			op, err := a.session.Operator()
			if err != nil {
				return err
			}
			if refresh {
				op, err = a.session.RefreshProfile(cmd.Context())
				if err != nil {
					return err
				}
			}

			actor := op.ActorView()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", op.Name, op.Email)
			fmt.Fprintf(out, "Role: %s\n", actor.Role)
			if len(op.Departments) > 0 {
				names := make([]string, 0, len(op.Departments))
				for _, d := range op.Departments {
					names = append(names, d.Name)
				}
				fmt.Fprintf(out, "Departments: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-fetch the profile from the backend")
	return cmd
}
