package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/provdir/internal/model"
)

// WriteCSV writes one row per validation result.
func WriteCSV(path string, doc *model.RunDocument) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, res := range doc.Results {
		if err := w.Write(resultRow(doc, res)); err != nil {
			return eris.Wrapf(err, "export: write row %s", res.RecordID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "export: flush %s", path)
	}
	return f.Close()
}
