package report

import (
	"github.com/sells-group/provdir/internal/model"
)

// topIssueLimit caps the dashboard's issue table.
const topIssueLimit = 5

// HistogramBucket is one score band of the dashboard histogram.
type HistogramBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// Dashboard is the aggregate view served to the dashboard UI.
type Dashboard struct {
	RunID               string               `json:"run_id"`
	TotalRecords        int                  `json:"total_records"`
	AverageQualityScore float64              `json:"average_quality_score"`
	StatusDistribution  map[model.Status]int `json:"status_distribution"`
	ScoreHistogram      []HistogramBucket    `json:"score_histogram"`
	TopIssues           []model.IssueCount   `json:"top_issues"`
	ReviewQueueSize     int                  `json:"review_queue_size"`
}

// histogramBands mirrors the status thresholds so the chart lines up with
// the tier boundaries.
var histogramBands = []struct {
	label    string
	min, max int
}{
	{"90-100", 90, 100},
	{"75-89", 75, 89},
	{"60-74", 60, 74},
	{"40-59", 40, 59},
	{"0-39", 0, 39},
}

// BuildDashboard derives the dashboard payload from a stored run.
func BuildDashboard(doc *model.RunDocument) Dashboard {
	d := Dashboard{
		RunID:               doc.RunID,
		TotalRecords:        doc.Report.TotalRecords,
		AverageQualityScore: doc.Report.AverageQualityScore,
		StatusDistribution:  doc.Report.StatusDistribution,
		ScoreHistogram:      make([]HistogramBucket, len(histogramBands)),
		ReviewQueueSize:     len(doc.Report.ReviewQueue),
	}

	for i, band := range histogramBands {
		d.ScoreHistogram[i] = HistogramBucket{Label: band.label, Min: band.min, Max: band.max}
	}
	for _, r := range doc.Results {
		for i, band := range histogramBands {
			if r.QualityScore >= band.min && r.QualityScore <= band.max {
				d.ScoreHistogram[i].Count++
				break
			}
		}
	}

	d.TopIssues = doc.Report.IssueFrequency
	if len(d.TopIssues) > topIssueLimit {
		d.TopIssues = d.TopIssues[:topIssueLimit]
	}
	return d
}
