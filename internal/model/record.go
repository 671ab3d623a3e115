package model

import (
	"strings"
	"time"
)

// LicenseStatus represents the verification state of a provider's license.
type LicenseStatus string

const (
	LicenseActive  LicenseStatus = "active"
	LicenseExpired LicenseStatus = "expired"
	LicenseUnknown LicenseStatus = "unknown"
)

// ParseLicenseStatus maps s onto a known license status. The boolean is
// false when s is non-empty but not a recognized value.
func ParseLicenseStatus(s string) (LicenseStatus, bool) {
	switch LicenseStatus(strings.ToLower(strings.TrimSpace(s))) {
	case LicenseActive:
		return LicenseActive, true
	case LicenseExpired:
		return LicenseExpired, true
	case LicenseUnknown, "":
		return LicenseUnknown, true
	default:
		return LicenseUnknown, false
	}
}

// Source describes where a record's current field values came from.
type Source string

const (
	SourceSelfReported Source = "self_reported"
	SourceEnriched     Source = "enriched"
)

// ParseSource maps s onto a known source. Empty defaults to self_reported.
func ParseSource(s string) (Source, bool) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceSelfReported, "":
		return SourceSelfReported, true
	case SourceEnriched:
		return SourceEnriched, true
	default:
		return SourceSelfReported, false
	}
}

// ProviderRecord is one practitioner entry in a directory batch.
type ProviderRecord struct {
	ID             string        `json:"id"`
	NPI            string        `json:"npi,omitempty"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone,omitempty"`
	Address        string        `json:"address,omitempty"`
	Specialty      string        `json:"specialty,omitempty"`
	LicenseNumber  string        `json:"license_number,omitempty"`
	LicenseStatus  LicenseStatus `json:"license_status"`
	Affiliations   []string      `json:"affiliations,omitempty"`
	LastVerifiedAt *time.Time    `json:"last_verified_at,omitempty"`
	Source         Source        `json:"source"`

	// ParseFindings carries boundary-decode problems into the pipeline so
	// they land on the record's validation result. Never serialized.
	ParseFindings []Finding `json:"-"`
}

// PartialRecord is a registry entry used for enrichment and cross-checks.
type PartialRecord struct {
	NPI            string     `json:"npi"`
	Name           string     `json:"name,omitempty"`
	Address        string     `json:"address,omitempty"`
	Affiliations   []string   `json:"affiliations,omitempty"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
}

// RawRecord is the untyped wire form of a provider record. All fields are
// strings so malformed input can be inspected and reported instead of
// failing the decode.
type RawRecord struct {
	ID             string   `json:"id"`
	NPI            string   `json:"npi,omitempty"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone,omitempty"`
	Address        string   `json:"address,omitempty"`
	Specialty      string   `json:"specialty,omitempty"`
	LicenseNumber  string   `json:"license_number,omitempty"`
	LicenseStatus  string   `json:"license_status,omitempty"`
	Affiliations   []string `json:"affiliations,omitempty"`
	LastVerifiedAt string   `json:"last_verified_at,omitempty"`
	Source         string   `json:"source,omitempty"`
}

// timestampLayouts are accepted on input; output is always RFC 3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseRecord converts a raw wire record into a typed ProviderRecord.
// Malformed values are normalized (NPI cleared, license status coerced to
// unknown, timestamp dropped) and reported as field_unparseable findings
// rather than aborting the record. The returned findings are also attached
// to the record's ParseFindings.
func ParseRecord(raw RawRecord) (ProviderRecord, []Finding) {
	var findings []Finding

	rec := ProviderRecord{
		ID:            strings.TrimSpace(raw.ID),
		NPI:           strings.TrimSpace(raw.NPI),
		Name:          strings.TrimSpace(raw.Name),
		Phone:         strings.TrimSpace(raw.Phone),
		Address:       strings.TrimSpace(raw.Address),
		Specialty:     strings.TrimSpace(raw.Specialty),
		LicenseNumber: strings.TrimSpace(raw.LicenseNumber),
		Affiliations:  raw.Affiliations,
	}

	if rec.ID == "" {
		findings = append(findings, NewFinding("id", IssueFieldUnparseable))
	}

	if rec.NPI != "" && !ValidNPI(rec.NPI) {
		findings = append(findings, NewFinding("npi", IssueFieldUnparseable))
		rec.NPI = ""
	}

	status, ok := ParseLicenseStatus(raw.LicenseStatus)
	if !ok {
		findings = append(findings, NewFinding("license_status", IssueFieldUnparseable))
	}
	rec.LicenseStatus = status

	if ts := strings.TrimSpace(raw.LastVerifiedAt); ts != "" {
		parsed, parseOK := parseTimestamp(ts)
		if parseOK {
			rec.LastVerifiedAt = &parsed
		} else {
			findings = append(findings, NewFinding("last_verified_at", IssueFieldUnparseable))
		}
	}

	source, ok := ParseSource(raw.Source)
	if !ok {
		findings = append(findings, NewFinding("source", IssueFieldUnparseable))
	}
	rec.Source = source

	rec.ParseFindings = findings
	return rec, findings
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ValidNPI reports whether s is exactly ten numeric characters.
func ValidNPI(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
