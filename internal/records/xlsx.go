package records

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/provdir/internal/model"
)

// readXLSX loads the first sheet of a workbook. Row one is the header and
// maps columns the same way the CSV reader does.
func readXLSX(path string) ([]model.RawRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("records: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	index := headerIndex(rowToStrings(sheet.Rows[0]))
	raws := make([]model.RawRecord, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if allEmpty(cells) {
			continue
		}
		raws = append(raws, rowToRaw(cells, index))
	}
	return raws, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
