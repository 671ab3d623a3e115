package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLicenseStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  LicenseStatus
		valid bool
	}{
		{"active", LicenseActive, true},
		{"EXPIRED", LicenseExpired, true},
		{" unknown ", LicenseUnknown, true},
		{"", LicenseUnknown, true},
		{"suspended", LicenseUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLicenseStatus(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestParseRecord_WellFormed(t *testing.T) {
	raw := RawRecord{
		ID:             "rec-001",
		NPI:            "1234567893",
		Name:           "Dr. Sarah Chen",
		Phone:          "(512) 555-0142",
		Address:        "401 Congress Ave, Austin, TX 78701",
		Specialty:      "Cardiology",
		LicenseNumber:  "TX-44821",
		LicenseStatus:  "active",
		Affiliations:   []string{"Austin Heart Center"},
		LastVerifiedAt: "2026-07-01T00:00:00Z",
	}

	rec, findings := ParseRecord(raw)
	require.Empty(t, findings)

	assert.Equal(t, "rec-001", rec.ID)
	assert.Equal(t, "1234567893", rec.NPI)
	assert.Equal(t, LicenseActive, rec.LicenseStatus)
	assert.Equal(t, SourceSelfReported, rec.Source)
	require.NotNil(t, rec.LastVerifiedAt)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), *rec.LastVerifiedAt)
}

func TestParseRecord_MalformedFields(t *testing.T) {
	tests := []struct {
		name      string
		raw       RawRecord
		wantField string
	}{
		{
			name:      "short npi cleared",
			raw:       RawRecord{ID: "r1", Name: "A", NPI: "12345"},
			wantField: "npi",
		},
		{
			name:      "alpha npi cleared",
			raw:       RawRecord{ID: "r1", Name: "A", NPI: "12345ABCDE"},
			wantField: "npi",
		},
		{
			name:      "bad license status coerced to unknown",
			raw:       RawRecord{ID: "r1", Name: "A", LicenseStatus: "revoked"},
			wantField: "license_status",
		},
		{
			name:      "garbage timestamp dropped",
			raw:       RawRecord{ID: "r1", Name: "A", LastVerifiedAt: "last tuesday"},
			wantField: "last_verified_at",
		},
		{
			name:      "bad source coerced to self_reported",
			raw:       RawRecord{ID: "r1", Name: "A", Source: "scraped"},
			wantField: "source",
		},
		{
			name:      "missing id",
			raw:       RawRecord{Name: "A"},
			wantField: "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, findings := ParseRecord(tt.raw)
			require.Len(t, findings, 1)
			assert.Equal(t, tt.wantField, findings[0].Field)
			assert.Equal(t, IssueFieldUnparseable, findings[0].IssueCode)
			assert.Equal(t, SeverityWarning, findings[0].Severity)
			assert.Equal(t, findings, rec.ParseFindings)

			// Normalization happened.
			switch tt.wantField {
			case "npi":
				assert.Empty(t, rec.NPI)
			case "license_status":
				assert.Equal(t, LicenseUnknown, rec.LicenseStatus)
			case "last_verified_at":
				assert.Nil(t, rec.LastVerifiedAt)
			case "source":
				assert.Equal(t, SourceSelfReported, rec.Source)
			}
		})
	}
}

func TestParseRecord_AcceptsDateOnlyTimestamp(t *testing.T) {
	rec, findings := ParseRecord(RawRecord{ID: "r1", Name: "A", LastVerifiedAt: "2026-03-15"})
	require.Empty(t, findings)
	require.NotNil(t, rec.LastVerifiedAt)
	assert.Equal(t, 2026, rec.LastVerifiedAt.Year())
}

func TestValidNPI(t *testing.T) {
	assert.True(t, ValidNPI("1234567890"))
	assert.False(t, ValidNPI("123456789"))
	assert.False(t, ValidNPI("12345678901"))
	assert.False(t, ValidNPI("12345abcde"))
	assert.False(t, ValidNPI(""))
}

func TestProviderRecord_JSONFieldNames(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := ProviderRecord{
		ID:             "rec-9",
		NPI:            "1999999998",
		Name:           "Dr. Lee",
		Phone:          "555-201-3344",
		Address:        "1 Main St, Boise, ID 83702",
		Specialty:      "Dermatology",
		LicenseNumber:  "ID-100",
		LicenseStatus:  LicenseActive,
		Affiliations:   []string{"St. Luke's"},
		LastVerifiedAt: &ts,
		Source:         SourceSelfReported,
		ParseFindings:  []Finding{NewFinding("npi", IssueFieldUnparseable)},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{
		"id", "npi", "name", "phone", "address", "specialty",
		"license_number", "license_status", "affiliations",
		"last_verified_at", "source",
	} {
		assert.Contains(t, m, key)
	}
	// Parse findings never leak into the wire form.
	assert.NotContains(t, string(data), "ParseFindings")
}
