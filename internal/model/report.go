package model

// IssueCount is one entry of a report's issue frequency table.
type IssueCount struct {
	IssueCode IssueCode `json:"issue_code"`
	Count     int       `json:"count"`
}

// BatchReport aggregates one pipeline run. Read-only after creation.
// IssueFrequency is ordered by count descending, then code ascending, so
// the serialized form is stable. ReviewQueue is ordered by priority rank
// descending, quality score ascending, record id ascending.
type BatchReport struct {
	TotalRecords        int            `json:"total_records"`
	StatusDistribution  map[Status]int `json:"status_distribution"`
	IssueFrequency      []IssueCount   `json:"issue_frequency"`
	AverageQualityScore float64        `json:"average_quality_score"`
	Throughput          float64        `json:"throughput"`
	ReviewQueue         []string       `json:"review_queue"`
}
