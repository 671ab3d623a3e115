// Package triage maps a record's quality score and findings to a status
// tier, a manual-review priority, and a recommended action.
package triage

import (
	"github.com/sells-group/provdir/internal/model"
)

// Status thresholds. A single critical finding forces critical status
// regardless of score: one identity mismatch must trigger review even when
// every other field is pristine.
const (
	ExcellentMin = 90
	GoodMin      = 75
	FairMin      = 60
	PoorMin      = 40
)

// Triager assigns status, priority, and remediation text.
type Triager struct {
	actions *Actions
}

// New builds a Triager. A nil actions argument uses the embedded templates.
func New(actions *Actions) *Triager {
	if actions == nil {
		actions = DefaultActions()
	}
	return &Triager{actions: actions}
}

// Triage derives the full triage verdict for one scored record.
func (t *Triager) Triage(score int, findings []model.Finding) (model.Status, model.Priority, string) {
	status := StatusFor(score, findings)
	return status, PriorityFor(status, findings), t.actions.For(findings)
}

// StatusFor maps a quality score and finding set to a status tier.
func StatusFor(score int, findings []model.Finding) model.Status {
	if model.HasCritical(findings) || score < PoorMin {
		return model.StatusCritical
	}
	switch {
	case score >= ExcellentMin:
		return model.StatusExcellent
	case score >= GoodMin:
		return model.StatusGood
	case score >= FairMin:
		return model.StatusFair
	default:
		return model.StatusPoor
	}
}

// PriorityFor maps a status tier to a review priority. Good records only
// enter the queue when something was actually found.
func PriorityFor(status model.Status, findings []model.Finding) model.Priority {
	switch status {
	case model.StatusCritical:
		return model.PriorityCritical
	case model.StatusPoor:
		return model.PriorityHigh
	case model.StatusFair:
		return model.PriorityMedium
	case model.StatusGood:
		if len(findings) > 0 {
			return model.PriorityLow
		}
		return model.PriorityNone
	default:
		return model.PriorityNone
	}
}
