package model

import "time"

// Status is the quality tier assigned to a validated record.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusFair      Status = "fair"
	StatusPoor      Status = "poor"
	StatusCritical  Status = "critical"
)

// Priority ranks how urgently a record needs manual review.
type Priority string

const (
	PriorityNone     Priority = "none"
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// priorityRanks orders priorities for review-queue sorting.
var priorityRanks = map[Priority]int{
	PriorityNone:     0,
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// PriorityRank returns the sort rank of a priority; higher is more urgent.
func PriorityRank(p Priority) int {
	return priorityRanks[p]
}

// ValidationResult is one record's pipeline output. Created once per record
// per run and never mutated; a re-run supersedes it.
type ValidationResult struct {
	RecordID          string    `json:"record_id"`
	Findings          []Finding `json:"findings"`
	QualityScore      int       `json:"quality_score"`
	Confidence        float64   `json:"confidence"`
	Status            Status    `json:"status"`
	Priority          Priority  `json:"priority"`
	RecommendedAction string    `json:"recommended_action"`
	EnrichedFields    []string  `json:"enriched_fields,omitempty"`
}

// RunDocument is the persisted artifact of one pipeline run: the input
// batch, every per-record result in input order, and the batch report.
type RunDocument struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
	AsOf        time.Time          `json:"as_of"`
	DurationMS  int64              `json:"duration_ms"`
	Records     []ProviderRecord   `json:"records"`
	Results     []ValidationResult `json:"results"`
	Report      BatchReport        `json:"report"`
}

// ResultByID returns the result for a record id, or nil.
func (d *RunDocument) ResultByID(id string) *ValidationResult {
	for i := range d.Results {
		if d.Results[i].RecordID == id {
			return &d.Results[i]
		}
	}
	return nil
}

// RecordByID returns the record for an id, or nil.
func (d *RunDocument) RecordByID(id string) *ProviderRecord {
	for i := range d.Records {
		if d.Records[i].ID == id {
			return &d.Records[i]
		}
	}
	return nil
}

// RunSummary is the condensed listing form of a stored run.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	TotalRecords int       `json:"total_records"`
	AverageScore float64   `json:"average_quality_score"`
	ReviewQueue  int       `json:"review_queue_size"`
	DurationMS   int64     `json:"duration_ms"`
}

// Summary condenses a run document for listings.
func (d *RunDocument) Summary() RunSummary {
	return RunSummary{
		RunID:        d.RunID,
		StartedAt:    d.StartedAt,
		TotalRecords: d.Report.TotalRecords,
		AverageScore: d.Report.AverageQualityScore,
		ReviewQueue:  len(d.Report.ReviewQueue),
		DurationMS:   d.DurationMS,
	}
}
