package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:   "notify [run-id]",
	Short: "Draft outreach notifications for a run's review queue",
	Long:  "Builds one outreach draft per record needing review, ordered by outreach score, with per-priority templates, channels, and response deadlines. Without a run id the latest run is used.",
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
			return eris.Wrap(err, "notify")
		}

		drafts := notify.Build(doc)
		if len(drafts) == 0 {
			fmt.Fprintln(os.Stdout, "Review queue is empty; nothing to send.")
			return nil
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := writeDrafts(out, drafts); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Wrote %d drafts to %s\n", len(drafts), out)
			return nil
		}

		formatDrafts(os.Stdout, drafts)

		summary := notify.Summarize(drafts)
		fmt.Fprintf(os.Stdout, "\n%d drafts", summary.TotalDrafts)
		for _, p := range []model.Priority{
			model.PriorityCritical, model.PriorityHigh,
			model.PriorityMedium, model.PriorityLow,
		} {
			if n := summary.ByPriority[p]; n > 0 {
				fmt.Fprintf(os.Stdout, "  %s=%d", p, n)
			}
		}
		fmt.Fprintln(os.Stdout)
		return nil
	},
}

func init() {
	notifyCmd.Flags().String("out", "", "write drafts as JSON to this path instead of printing")

	rootCmd.AddCommand(notifyCmd)
}

// writeDrafts saves outreach drafts as indented JSON.
func writeDrafts(path string, drafts []notify.Draft) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "notify: create output file")
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(drafts); err != nil {
		return eris.Wrap(err, "notify: encode drafts")
	}
	return nil
}

// formatDrafts writes a tabular draft listing to out.
func formatDrafts(out io.Writer, drafts []notify.Draft) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "POS\tRECORD\tPROVIDER\tPRIORITY\tSCORE\tCHANNEL\tDEADLINE")
	for _, d := range drafts {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%s\t%s\n",
			d.QueuePosition, d.RecordID, d.ProviderName, d.Priority,
			d.OutreachScore, d.Channel, d.ResponseDeadline.Format("2006-01-02"))
	}
	_ = w.Flush()
}
