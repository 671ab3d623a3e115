// Package export renders run documents as CSV files and XLSX workbooks for
// hand-off to directory operations teams.
package export

import (
	"strconv"
	"strings"

	"github.com/sells-group/provdir/internal/model"
)

// resultColumns is the header of the per-result table, shared by the CSV
// file and the workbook's results sheet.
var resultColumns = []string{
	"record_id", "name", "npi", "specialty", "quality_score", "confidence",
	"status", "priority", "issues", "recommended_action", "enriched_fields",
}

// statusOrder fixes the row order of the summary's status counts.
var statusOrder = []model.Status{
	model.StatusExcellent, model.StatusGood, model.StatusFair,
	model.StatusPoor, model.StatusCritical,
}

func resultRow(doc *model.RunDocument, res model.ValidationResult) []string {
	var name, npi, specialty string
	if rec := doc.RecordByID(res.RecordID); rec != nil {
		name, npi, specialty = rec.Name, rec.NPI, rec.Specialty
	}

	issues := make([]string, 0, len(res.Findings))
	for _, f := range res.Findings {
		issues = append(issues, string(f.IssueCode))
	}

	return []string{
		res.RecordID,
		name,
		npi,
		specialty,
		strconv.Itoa(res.QualityScore),
		strconv.FormatFloat(res.Confidence, 'f', 2, 64),
		string(res.Status),
		string(res.Priority),
		strings.Join(issues, ";"),
		res.RecommendedAction,
		strings.Join(res.EnrichedFields, ";"),
	}
}

func summaryRows(doc *model.RunDocument) [][]string {
	rows := [][]string{
		{"run_id", doc.RunID},
		{"started_at", doc.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"as_of", doc.AsOf.Format("2006-01-02")},
		{"duration_ms", strconv.FormatInt(doc.DurationMS, 10)},
		{"total_records", strconv.Itoa(doc.Report.TotalRecords)},
		{"average_quality_score", strconv.FormatFloat(doc.Report.AverageQualityScore, 'f', 2, 64)},
		{"throughput_per_sec", strconv.FormatFloat(doc.Report.Throughput, 'f', 2, 64)},
		{"review_queue_size", strconv.Itoa(len(doc.Report.ReviewQueue))},
	}
	for _, status := range statusOrder {
		rows = append(rows, []string{
			"status_" + string(status),
			strconv.Itoa(doc.Report.StatusDistribution[status]),
		})
	}
	return rows
}
