package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"maia/cmd/maia/ui"
	"maia/internal/types"
	"maia/internal/usage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the threat model indicators",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		writeStatus(out, ui.DefaultStyles(), a.domain.Snapshot(), cfg.HasAPIKey())
		writeUsage(out, a.usage.Stats())
		return nil
	},
}

func writeStatus(w io.Writer, styles ui.Styles, snap types.Snapshot, hasKey bool) {
	sum := snap.Summarize()

	fmt.Fprintln(w, styles.Title.Render("MAIA - Panel de control"))
	fmt.Fprintf(w, "  Activos:          %d\n", sum.TotalAssets)
	fmt.Fprintf(w, "  Adversarios:      %d\n", sum.TotalAdversaries)
	fmt.Fprintf(w, "  Amenazas activas: %d\n", sum.ActiveThreats)
	fmt.Fprintf(w, "  Riesgo medio:     %d\n", sum.AverageRisk)

	key := styles.Success.Render("detectada")
	if !hasKey {
		key = styles.Error.Render("no detectada")
	}
	fmt.Fprintf(w, "  Clave de acceso:  %s\n", key)

	if len(snap.Threats) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Bold.Render("Amenazas"))
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "  NOMBRE\tACTIVO\tRIESGO\tNIVEL\tESTADO\tMITIGACIONES")
	for _, t := range snap.Threats {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\t%s\t%d\n",
			t.Name, t.RelatedAsset, t.RiskScore, styles.Risk(t.RiskLevel), t.Status, len(t.Mitigations))
	}
	tw.Flush()
}

func writeUsage(w io.Writer, stats usage.AggregatedStats) {
	if stats.Total.Rounds == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Consumo de tokens: %d (entrada %d, salida %d) en %d consultas\n",
		stats.Total.Total, stats.Total.Input, stats.Total.Output, stats.Total.Rounds)
	for _, mode := range types.AgentModes {
		if c, ok := stats.ByMode[string(mode)]; ok {
			fmt.Fprintf(w, "  %-12s %d\n", mode.Label(), c.Total)
		}
	}
}
