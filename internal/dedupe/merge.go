package dedupe

import "github.com/sells-group/provdir/internal/model"

// Merge combines a duplicate pair into one record. The more complete side
// becomes the primary (left wins ties) and its empty fields are filled from
// the other record.
func Merge(a, b model.ProviderRecord) model.ProviderRecord {
	primary, other := a, b
	if completeness(b) > completeness(a) {
		primary, other = b, a
	}

	if primary.NPI == "" {
		primary.NPI = other.NPI
	}
	if primary.Name == "" {
		primary.Name = other.Name
	}
	if primary.Phone == "" {
		primary.Phone = other.Phone
	}
	if primary.Address == "" {
		primary.Address = other.Address
	}
	if primary.Specialty == "" {
		primary.Specialty = other.Specialty
	}
	if primary.LicenseNumber == "" {
		primary.LicenseNumber = other.LicenseNumber
	}
	if primary.LicenseStatus == model.LicenseUnknown {
		primary.LicenseStatus = other.LicenseStatus
	}
	if len(primary.Affiliations) == 0 {
		primary.Affiliations = append([]string(nil), other.Affiliations...)
	}
	if primary.LastVerifiedAt == nil {
		primary.LastVerifiedAt = other.LastVerifiedAt
	}
	return primary
}

// Apply merges every auto-merge-eligible pair into the batch and returns
// the deduplicated records along with the number of merges performed. Each
// record participates in at most one merge per pass; pairs are consumed in
// Find order, so higher-similarity matches win contested records.
func Apply(records []model.ProviderRecord, pairs []Pair) ([]model.ProviderRecord, int) {
	byID := make(map[string]int, len(records))
	for i, rec := range records {
		byID[rec.ID] = i
	}

	merged := append([]model.ProviderRecord{}, records...)
	consumed := make(map[string]bool)
	drop := make(map[int]bool)
	var applied int

	for _, pair := range pairs {
		if !pair.AutoMerge || consumed[pair.LeftID] || consumed[pair.RightID] {
			continue
		}
		li, lok := byID[pair.LeftID]
		ri, rok := byID[pair.RightID]
		if !lok || !rok {
			continue
		}

		combined := Merge(merged[li], merged[ri])
		keep, discard := li, ri
		if combined.ID == merged[ri].ID {
			keep, discard = ri, li
		}
		merged[keep] = combined
		drop[discard] = true
		consumed[pair.LeftID] = true
		consumed[pair.RightID] = true
		applied++
	}

	if applied == 0 {
		return merged, 0
	}
	out := merged[:0]
	for i, rec := range merged {
		if !drop[i] {
			out = append(out, rec)
		}
	}
	return out, applied
}

// completeness counts the populated fields a merge decision weighs.
func completeness(rec model.ProviderRecord) int {
	var n int
	for _, s := range []string{rec.NPI, rec.Name, rec.Phone, rec.Address, rec.Specialty, rec.LicenseNumber} {
		if s != "" {
			n++
		}
	}
	if rec.LicenseStatus != model.LicenseUnknown {
		n++
	}
	if len(rec.Affiliations) > 0 {
		n++
	}
	if rec.LastVerifiedAt != nil {
		n++
	}
	return n
}
