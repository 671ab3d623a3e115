package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/provdir/internal/model"
)

// Workbook sheet names.
const (
	SheetSummary = "Summary"
	SheetResults = "Provider Results"
	SheetIssues  = "Issues"
)

// WriteWorkbook writes a three-sheet XLSX workbook: run summary, the
// per-result table, and the issue frequency table.
func WriteWorkbook(path string, doc *model.RunDocument) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(SheetSummary)
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	appendRow(summary, []string{"metric", "value"})
	for _, row := range summaryRows(doc) {
		appendRow(summary, row)
	}

	results, err := f.AddSheet(SheetResults)
	if err != nil {
		return eris.Wrap(err, "export: add results sheet")
	}
	appendRow(results, resultColumns)
	for _, res := range doc.Results {
		appendRow(results, resultRow(doc, res))
	}

	issues, err := f.AddSheet(SheetIssues)
	if err != nil {
		return eris.Wrap(err, "export: add issues sheet")
	}
	appendRow(issues, []string{"issue_code", "severity", "count"})
	for _, ic := range doc.Report.IssueFrequency {
		appendRow(issues, []string{
			string(ic.IssueCode),
			string(model.SeverityOf(ic.IssueCode)),
			strconv.Itoa(ic.Count),
		})
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func appendRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
