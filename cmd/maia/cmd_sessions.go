package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage archived conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List archived conversations, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		infos, err := a.archive.ListSessions(cmd.Context(), query)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(out, "No hay conversaciones archivadas.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFECHA\tMODO\tMENSAJES\tTÍTULO")
		for _, s := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				s.ID, s.Date.Local().Format("2006-01-02 15:04"), s.AgentMode.Label(), s.MessageCount, s.Title)
		}
		return tw.Flush()
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print an archived conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.archive.GetSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n%s · %s\n\n", s.Title, s.Date.Local().Format("2006-01-02 15:04"), s.AgentMode.Label())
		for _, m := range s.Messages {
			fmt.Fprintf(out, "[%s] %s\n\n", strings.ToUpper(string(m.Role)), m.Text)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an archived conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.archive.DeleteSession(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Conversación %s eliminada.\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
}
