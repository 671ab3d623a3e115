// Package report aggregates per-record validation results into batch
// reports, dashboard payloads, and trend summaries. Everything here is a
// pure function of its inputs.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/provdir/internal/model"
)

// Build aggregates one run's results into a batch report. The review queue
// carries every record whose priority is not none, ordered by priority rank
// descending, then quality score ascending, then record id ascending; the
// order is total, so rebuilding from the same results is a no-op.
func Build(results []model.ValidationResult, elapsed time.Duration) model.BatchReport {
	rep := model.BatchReport{
		TotalRecords:       len(results),
		StatusDistribution: make(map[model.Status]int),
		IssueFrequency:     []model.IssueCount{},
		ReviewQueue:        []string{},
	}
	if len(results) == 0 {
		return rep
	}

	issues := make(map[model.IssueCode]int)
	scoreSum := 0
	queue := make([]model.ValidationResult, 0, len(results))
	for _, r := range results {
		rep.StatusDistribution[r.Status]++
		scoreSum += r.QualityScore
		for _, f := range r.Findings {
			issues[f.IssueCode]++
		}
		if r.Priority != model.PriorityNone {
			queue = append(queue, r)
		}
	}

	sort.Slice(queue, func(i, j int) bool {
		ri, rj := model.PriorityRank(queue[i].Priority), model.PriorityRank(queue[j].Priority)
		if ri != rj {
			return ri > rj
		}
		if queue[i].QualityScore != queue[j].QualityScore {
			return queue[i].QualityScore < queue[j].QualityScore
		}
		return queue[i].RecordID < queue[j].RecordID
	})
	for _, r := range queue {
		rep.ReviewQueue = append(rep.ReviewQueue, r.RecordID)
	}

	rep.IssueFrequency = sortIssueCounts(issues)
	rep.AverageQualityScore = round2(float64(scoreSum) / float64(len(results)))
	if secs := elapsed.Seconds(); secs > 0 {
		rep.Throughput = round2(float64(len(results)) / secs)
	}
	return rep
}

// sortIssueCounts flattens a frequency map into a stable ordering: count
// descending, then code ascending.
func sortIssueCounts(issues map[model.IssueCode]int) []model.IssueCount {
	counts := make([]model.IssueCount, 0, len(issues))
	for code, n := range issues {
		counts = append(counts, model.IssueCount{IssueCode: code, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].IssueCode < counts[j].IssueCode
	})
	return counts
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
