package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect validation run history",
	Long:  "Commands for listing, viewing, summarizing, and deleting stored validation runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		since, _ := cmd.Flags().GetDuration("since")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.RunFilter{Limit: limit}
		if since > 0 {
			filter.Since = time.Now().Add(-since)
		}

		runs, err := st.ListRuns(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the full run document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		doc, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over stored runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		since, _ := cmd.Flags().GetDuration("since")
		filter := store.RunFilter{}
		if since > 0 {
			filter.Since = time.Now().Add(-since)
		}

		runs, err := st.ListRuns(cmd.Context(), filter)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(os.Stdout, computeRunStats(runs))
		return nil
	},
}

// -- runs delete --

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
			return eris.Wrap(err, "runs delete")
		}
		fmt.Fprintf(os.Stdout, "Deleted run %s\n", args[0])
		return nil
	},
}

func init() {
	runsListCmd.Flags().Duration("since", 0, "only list runs started within this window (e.g. 24h, 168h)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsStatsCmd.Flags().Duration("since", 0, "time window for stats (e.g. 24h, 72h; 0 = all)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregate statistics computed from a set of run summaries.
type runStats struct {
	Total         int
	TotalRecords  int
	TotalReview   int
	AvgScore      float64
	AvgDurSecs    float64
	OldestStarted time.Time
	NewestStarted time.Time
}

// computeRunStats computes aggregate statistics from run summaries.
func computeRunStats(runs []model.RunSummary) runStats {
	var s runStats
	s.Total = len(runs)

	var scoreSum float64
	var durSum int64
	for _, r := range runs {
		s.TotalRecords += r.TotalRecords
		s.TotalReview += r.ReviewQueue
		scoreSum += r.AverageScore
		durSum += r.DurationMS

		if s.OldestStarted.IsZero() || r.StartedAt.Before(s.OldestStarted) {
			s.OldestStarted = r.StartedAt
		}
		if r.StartedAt.After(s.NewestStarted) {
			s.NewestStarted = r.StartedAt
		}
	}

	if s.Total > 0 {
		s.AvgScore = scoreSum / float64(s.Total)
		s.AvgDurSecs = float64(durSum) / float64(s.Total) / 1000
	}
	return s
}

// formatRunsList writes a tabular list of run summaries to out.
func formatRunsList(out io.Writer, runs []model.RunSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTARTED\tRECORDS\tAVG_SCORE\tREVIEW\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-------\t-------\t---------\t------\t--------")

	for _, r := range runs {
		dur := (time.Duration(r.DurationMS) * time.Millisecond).Round(time.Millisecond).String()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%d\t%s\n",
			truncateID(r.RunID),
			r.StartedAt.Format("2006-01-02 15:04"),
			r.TotalRecords,
			r.AverageScore,
			r.ReviewQueue,
			dur,
		)
	}
	_ = w.Flush()
}

// formatRunStats writes aggregate run statistics to out.
func formatRunStats(out io.Writer, s runStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Records processed:\t%d\n", s.TotalRecords)
	_, _ = fmt.Fprintf(w, "Records queued for review:\t%d\n", s.TotalReview)
	_, _ = fmt.Fprintf(w, "Average quality score:\t%.2f\n", s.AvgScore)
	_, _ = fmt.Fprintf(w, "Average run duration:\t%.2fs\n", s.AvgDurSecs)
	if !s.OldestStarted.IsZero() {
		_, _ = fmt.Fprintf(w, "Oldest run:\t%s\n", s.OldestStarted.Format(time.RFC3339))
		_, _ = fmt.Fprintf(w, "Newest run:\t%s\n", s.NewestStarted.Format(time.RFC3339))
	}
	_ = w.Flush()
}

// truncateID shortens a uuid for table display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
