package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Browse the knowledge base",
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders and documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		for _, f := range a.kb.List() {
			lock := ""
			if f.Protected {
				lock = " 🔒"
			}
			fmt.Fprintf(out, "%s%s\n", f.Name, lock)
			if len(f.Documents) == 0 {
				fmt.Fprintln(out, "  (vacío)")
			}
			for _, d := range f.Documents {
				fmt.Fprintf(out, "  %-24s %s\n", d.ID, d.Name)
			}
		}
		return nil
	},
}

var kbSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Full-text search over the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		hits, err := a.kb.Search(strings.Join(args, " "), cfg.Knowledge.SearchLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintln(out, "Sin resultados.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPUNTAJE\tNOMBRE")
		for _, h := range hits {
			fmt.Fprintf(tw, "%s\t%.3f\t%s\n", h.ID, h.Score, h.Name)
		}
		return tw.Flush()
	},
}

var kbShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.kb.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc.Content)
		return nil
	},
}

func init() {
	kbCmd.AddCommand(kbListCmd, kbSearchCmd, kbShowCmd)
}
