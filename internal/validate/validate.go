package validate

import (
	"time"

	"github.com/sells-group/provdir/internal/model"
)

// StaleAfter is how long a record may go unverified before it is stale.
// A record verified exactly this long ago is not yet stale.
const StaleAfter = 180 * 24 * time.Hour

// Validator runs the per-field checks against provider records.
type Validator struct {
	placeholderPhones map[string]struct{}
	outdatedMarkers   []string
}

// New builds a Validator from heuristic tables. A nil rules argument uses
// the embedded defaults.
func New(rules *Heuristics) *Validator {
	if rules == nil {
		rules = DefaultHeuristics()
	}

	phones := make(map[string]struct{}, len(rules.PlaceholderPhones))
	for _, p := range rules.PlaceholderPhones {
		phones[normalizePhone(p)] = struct{}{}
	}

	markers := make([]string, 0, len(rules.OutdatedAddressMarkers))
	for _, m := range rules.OutdatedAddressMarkers {
		markers = append(markers, normalizeAddress(m))
	}

	return &Validator{placeholderPhones: phones, outdatedMarkers: markers}
}

// All runs every check against a record. ref is the registry entry for the
// record's NPI and may be nil; asOf anchors the staleness window.
func (v *Validator) All(rec model.ProviderRecord, ref *model.PartialRecord, asOf time.Time) []model.Finding {
	var findings []model.Finding
	findings = append(findings, v.Phone(rec)...)
	findings = append(findings, v.Address(rec, ref)...)
	findings = append(findings, v.License(rec)...)
	findings = append(findings, v.Identity(rec, ref)...)
	findings = append(findings, v.Staleness(rec, asOf)...)
	return findings
}

// Refresh re-runs the checks whose inputs enrichment can change: address
// and staleness.
func (v *Validator) Refresh(rec model.ProviderRecord, ref *model.PartialRecord, asOf time.Time) []model.Finding {
	var findings []model.Finding
	findings = append(findings, v.Address(rec, ref)...)
	findings = append(findings, v.Staleness(rec, asOf)...)
	return findings
}

// RefreshFields are the finding fields replaced by a Refresh pass.
var RefreshFields = map[string]struct{}{
	"address":          {},
	"last_verified_at": {},
}

// License checks the license status enum.
func (v *Validator) License(rec model.ProviderRecord) []model.Finding {
	switch rec.LicenseStatus {
	case model.LicenseExpired:
		return []model.Finding{model.NewFinding("license_status", model.IssueLicenseExpired)}
	case model.LicenseUnknown:
		return []model.Finding{model.NewFinding("license_status", model.IssueLicenseUnknown)}
	default:
		return nil
	}
}

// Staleness checks last_verified_at against the staleness window.
func (v *Validator) Staleness(rec model.ProviderRecord, asOf time.Time) []model.Finding {
	if rec.LastVerifiedAt == nil || asOf.Sub(*rec.LastVerifiedAt) > StaleAfter {
		return []model.Finding{model.NewFinding("last_verified_at", model.IssueStaleData)}
	}
	return nil
}
