// Package dedupe flags likely duplicate provider entries with weighted
// field similarity and proposes merges.
package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/provdir/internal/model"
)

// Field weights sum to 1.0. NPI dominates because it is externally unique.
const (
	weightNPI       = 0.30
	weightName      = 0.25
	weightPhone     = 0.15
	weightAddress   = 0.15
	weightLicense   = 0.10
	weightSpecialty = 0.05
)

// Similarity thresholds. Pairs at or above DuplicateThreshold are flagged;
// ReviewThreshold marks merge candidates for manual review; AutoMerge marks
// pairs safe to merge without one.
const (
	DuplicateThreshold = 0.75
	ReviewThreshold    = 0.85
	AutoMergeThreshold = 0.95
)

// Confidence labels attached to flagged pairs.
const (
	ConfidenceVeryHigh = "very_high"
	ConfidenceHigh     = "high"
	ConfidenceMedium   = "medium"
)

// Pair is one flagged duplicate: two record ids plus the evidence.
type Pair struct {
	PairID         string   `json:"pair_id"`
	LeftID         string   `json:"left_id"`
	RightID        string   `json:"right_id"`
	Similarity     float64  `json:"similarity"`
	MatchingFields []string `json:"matching_fields"`
	Confidence     string   `json:"confidence"`
	AutoMerge      bool     `json:"auto_merge_eligible"`
	Action         string   `json:"recommended_action"`
}

// Find compares every record pair and returns those at or above
// DuplicateThreshold, ordered by similarity descending then pair id.
func Find(records []model.ProviderRecord) []Pair {
	var pairs []Pair
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			sim := Similarity(records[i], records[j])
			if sim < DuplicateThreshold {
				continue
			}
			pairs = append(pairs, Pair{
				PairID:         fmt.Sprintf("dup-%04d-%04d", i, j),
				LeftID:         records[i].ID,
				RightID:        records[j].ID,
				Similarity:     sim,
				MatchingFields: matchingFields(records[i], records[j]),
				Confidence:     confidenceLabel(sim),
				AutoMerge:      sim >= AutoMergeThreshold,
				Action:         recommendedAction(sim),
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		return pairs[i].PairID < pairs[j].PairID
	})
	return pairs
}

// Similarity scores two records in [0, 1]. Exact-match fields (npi, phone,
// license) only contribute when both sides carry a value; fuzzy fields
// (name, address) always count, so sparse records cannot masquerade as
// perfect matches.
func Similarity(a, b model.ProviderRecord) float64 {
	var total float64

	npiA, npiB := strings.TrimSpace(a.NPI), strings.TrimSpace(b.NPI)
	if npiA != "" && npiB != "" && npiA == npiB {
		total += weightNPI
	}

	total += tokenSimilarity(a.Name, b.Name) * weightName

	phoneA, phoneB := digitsOnly(a.Phone), digitsOnly(b.Phone)
	if phoneA != "" && phoneB != "" && phoneA == phoneB {
		total += weightPhone
	}

	total += tokenSimilarity(normalizeAddress(a.Address), normalizeAddress(b.Address)) * weightAddress

	licA := strings.ToUpper(strings.TrimSpace(a.LicenseNumber))
	licB := strings.ToUpper(strings.TrimSpace(b.LicenseNumber))
	if licA != "" && licB != "" && licA == licB {
		total += weightLicense
	}

	total += specialtyScore(a.Specialty, b.Specialty) * weightSpecialty

	return total
}

// tokenSimilarity is the Jaccard index over lowercased whitespace tokens.
func tokenSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	if strings.EqualFold(s1, s2) {
		return 1
	}

	t1 := tokenSet(s1)
	t2 := tokenSet(s2)
	if len(t1) == 0 || len(t2) == 0 {
		return 0
	}

	var intersection int
	for tok := range t1 {
		if _, ok := t2[tok]; ok {
			intersection++
		}
	}
	union := len(t1) + len(t2) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

// relatedSpecialties groups names that describe the same practice area.
var relatedSpecialties = [][]string{
	{"internal medicine", "family medicine", "primary care"},
	{"cardiology", "cardiovascular", "heart"},
	{"orthopedic", "orthopedics", "orthopedic surgery"},
	{"psychiatry", "psychology", "mental health"},
	{"pediatrics", "pediatric", "child health"},
}

// specialtyScore is 1 for an exact match, 0.5 for related specialties,
// else 0.
func specialtyScore(s1, s2 string) float64 {
	s1 = strings.ToLower(strings.TrimSpace(s1))
	s2 = strings.ToLower(strings.TrimSpace(s2))
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 1
	}
	for _, group := range relatedSpecialties {
		if containsAny(s1, group) && containsAny(s2, group) {
			return 0.5
		}
	}
	return 0
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// digitsOnly keeps the last ten digits of a phone number, dropping a
// leading country code of 1.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// streetAbbreviations folds the spelled-out words that most often differ
// between data feeds.
var streetAbbreviations = []struct{ spelled, abbr string }{
	{"street", "st"},
	{"avenue", "ave"},
	{"boulevard", "blvd"},
	{"drive", "dr"},
}

func normalizeAddress(s string) string {
	s = strings.ToLower(s)
	for _, sub := range streetAbbreviations {
		s = strings.ReplaceAll(s, sub.spelled, sub.abbr)
	}
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), " ")
}

func matchingFields(a, b model.ProviderRecord) []string {
	var fields []string
	if a.NPI != "" && a.NPI == b.NPI {
		fields = append(fields, "npi")
	}
	if a.Name != "" && strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name)) {
		fields = append(fields, "name")
	}
	if pa := digitsOnly(a.Phone); pa != "" && pa == digitsOnly(b.Phone) {
		fields = append(fields, "phone")
	}
	if aa := normalizeAddress(a.Address); aa != "" && aa == normalizeAddress(b.Address) {
		fields = append(fields, "address")
	}
	if a.LicenseNumber != "" && strings.EqualFold(a.LicenseNumber, b.LicenseNumber) {
		fields = append(fields, "license_number")
	}
	if a.Specialty != "" && strings.EqualFold(a.Specialty, b.Specialty) {
		fields = append(fields, "specialty")
	}
	return fields
}

func confidenceLabel(sim float64) string {
	switch {
	case sim >= AutoMergeThreshold:
		return ConfidenceVeryHigh
	case sim >= ReviewThreshold:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}

func recommendedAction(sim float64) string {
	switch {
	case sim >= AutoMergeThreshold:
		return "Auto-merge recommended"
	case sim >= ReviewThreshold:
		return "Manual review and merge"
	default:
		return "Review for potential merge"
	}
}
