package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/provdir/internal/export"
	"github.com/sells-group/provdir/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export a stored run as CSV or XLSX",
	Long:  "Writes a stored run's per-record results to a CSV file or a multi-sheet XLSX workbook, dispatching on the output extension. Without a run id the latest run is exported.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

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
			return eris.Wrap(err, "export")
		}

		switch ext := strings.ToLower(filepath.Ext(out)); ext {
		case ".csv":
			err = export.WriteCSV(out, doc)
		case ".xlsx":
			err = export.WriteWorkbook(out, doc)
		default:
			return eris.Errorf("export: unsupported output format %q", ext)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Exported run %s (%d results) to %s\n",
			doc.RunID, len(doc.Results), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "results.csv", "output path (.csv or .xlsx)")

	rootCmd.AddCommand(exportCmd)
}
