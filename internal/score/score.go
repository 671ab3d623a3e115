// Package score turns a record's findings into its quality score and
// confidence. Both functions are pure; identical findings always produce
// identical output.
package score

import "github.com/sells-group/provdir/internal/model"

// Severity penalties subtracted from a starting score of 100. These values
// are the published contract for downstream consumers; they are not
// configuration.
const (
	Start           = 100
	PenaltyCritical = 25
	PenaltyWarning  = 10
	PenaltyInfo     = 2
)

// Confidence decays per finding and never drops below the floor.
const (
	ConfidenceFloor = 0.3
	ConfidenceStep  = 0.05
)

// Quality computes the 0-100 quality score for a finding set.
func Quality(findings []model.Finding) int {
	s := Start
	for _, f := range findings {
		switch f.Severity {
		case model.SeverityCritical:
			s -= PenaltyCritical
		case model.SeverityWarning:
			s -= PenaltyWarning
		case model.SeverityInfo:
			s -= PenaltyInfo
		}
	}

	if s < 0 {
		return 0
	}
	if s > Start {
		return Start
	}
	return s
}

// Confidence computes data trust in [ConfidenceFloor, 1.0] from the number
// of findings.
func Confidence(findings []model.Finding) float64 {
	c := 1.0 - ConfidenceStep*float64(len(findings))
	if c < ConfidenceFloor {
		return ConfidenceFloor
	}
	return c
}
