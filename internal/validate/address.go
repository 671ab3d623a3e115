package validate

import (
	"strings"

	"github.com/sells-group/provdir/internal/model"
)

// streetAbbreviations folds common spelled-out street words so the registry
// cross-check does not trip on formatting differences alone.
var streetAbbreviations = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"boulevard": "blvd",
	"drive":     "dr",
	"road":      "rd",
	"lane":      "ln",
	"suite":     "ste",
	"court":     "ct",
	"place":     "pl",
}

// Address checks structural completeness, known stale markers, and the
// registry cross-reference. ref may be nil.
func (v *Validator) Address(rec model.ProviderRecord, ref *model.PartialRecord) []model.Finding {
	addr := strings.TrimSpace(rec.Address)
	if addr == "" {
		return []model.Finding{model.NewFinding("address", model.IssueIncompleteAddress)}
	}

	var findings []model.Finding
	if incompleteAddress(addr) {
		findings = append(findings, model.NewFinding("address", model.IssueIncompleteAddress))
	}
	if v.outdatedAddress(addr, ref) {
		findings = append(findings, model.NewFinding("address", model.IssueOutdatedAddress))
	}
	return findings
}

// incompleteAddress requires a numbered street part and at least one
// locality part after it.
func incompleteAddress(addr string) bool {
	parts := strings.Split(addr, ",")
	street := strings.TrimSpace(parts[0])
	if street == "" || !startsWithDigit(street) {
		return true
	}

	for _, p := range parts[1:] {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

func (v *Validator) outdatedAddress(addr string, ref *model.PartialRecord) bool {
	normalized := normalizeAddress(addr)
	for _, marker := range v.outdatedMarkers {
		if marker != "" && strings.Contains(normalized, marker) {
			return true
		}
	}

	if ref != nil && ref.Address != "" && normalizeAddress(ref.Address) != normalized {
		return true
	}
	return false
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// normalizeAddress lowercases, strips punctuation, folds street
// abbreviations, and collapses whitespace.
func normalizeAddress(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	for i, f := range fields {
		if abbr, ok := streetAbbreviations[f]; ok {
			fields[i] = abbr
		}
	}
	return strings.Join(fields, " ")
}
