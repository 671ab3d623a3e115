package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/report"
)

var trendsCmd = &cobra.Command{
	Use:   "trends [run-id]",
	Short: "Break a run down by state and specialty",
	Long:  "Aggregates a stored run's results by provider state and specialty, with per-group average score, critical ratio, and risk level. Without a run id the latest run is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var doc *model.RunDocument
		if len(args) == 1 {
			doc, err = st.GetRun(cmd.Context(), args[0])
		} else {
			doc, err = st.LatestRun(cmd.Context())
		}
		if err != nil {
			return eris.Wrap(err, "trends")
		}

		trends := report.BuildTrends(doc)

		fmt.Fprintf(os.Stdout, "Run %s — trends\n\nBy state:\n", doc.RunID)
		formatTrendGroups(os.Stdout, trends.ByState)
		fmt.Fprintln(os.Stdout, "\nBy specialty:")
		formatTrendGroups(os.Stdout, trends.BySpecialty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}

// formatTrendGroups writes a tabular trend breakdown to out.
func formatTrendGroups(out io.Writer, groups []report.TrendGroup) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GROUP\tPROVIDERS\tAVG_SCORE\tCRITICAL\tRISK")
	for _, g := range groups {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.2f\t%d (%.0f%%)\t%s\n",
			g.Key, g.Providers, g.AverageScore,
			g.CriticalCount, g.CriticalRatio*100, g.RiskLevel)
	}
	_ = w.Flush()
}
