package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/provdir/internal/dedupe"
	"github.com/sells-group/provdir/internal/records"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <input-file>",
	Short: "Find likely duplicate provider records",
	Long:  "Scores every record pair on weighted field similarity and reports likely duplicates. With --apply, auto-merge-eligible pairs are merged and the deduplicated batch is written out.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batch, err := records.ReadFile(args[0])
		if err != nil {
			return err
		}

		pairs := dedupe.Find(batch)
		if len(pairs) == 0 {
			fmt.Fprintln(os.Stdout, "No duplicate pairs found.")
			return nil
		}

		formatPairs(os.Stdout, pairs)

		apply, _ := cmd.Flags().GetBool("apply")
		if !apply {
			return nil
		}

		out, _ := cmd.Flags().GetString("out")
		merged, removed := dedupe.Apply(batch, pairs)
		if err := records.WriteFile(out, merged); err != nil {
			return err
		}
		zap.L().Info("dedupe applied",
			zap.Int("pairs", len(pairs)),
			zap.Int("merged", removed),
			zap.String("path", out),
		)
		fmt.Fprintf(os.Stdout, "\nMerged %d records; wrote %d to %s\n",
			removed, len(merged), out)
		return nil
	},
}

func init() {
	dedupeCmd.Flags().Bool("apply", false, "merge auto-merge-eligible pairs and write the result")
	dedupeCmd.Flags().String("out", "deduped.json", "output path for the merged batch (.json or .csv)")

	rootCmd.AddCommand(dedupeCmd)
}

// formatPairs writes a tabular duplicate-pair listing to out.
func formatPairs(out io.Writer, pairs []dedupe.Pair) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LEFT\tRIGHT\tSIMILARITY\tCONFIDENCE\tMATCHES\tACTION")
	for _, p := range pairs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			p.LeftID, p.RightID, p.Similarity, p.Confidence,
			strings.Join(p.MatchingFields, ","), p.Action)
	}
	_ = w.Flush()
}
