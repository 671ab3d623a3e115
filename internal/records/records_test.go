package records

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/provdir/internal/model"
)

const batchJSON = `{
  "records": [
    {
      "id": "p-001",
      "npi": "1093817465",
      "name": "Jane Smith",
      "phone": "(512) 555-0142",
      "address": "400 Congress Ave, Austin, TX 78701",
      "specialty": "Cardiology",
      "license_number": "TX-44521",
      "license_status": "active",
      "affiliations": ["Austin Heart"],
      "last_verified_at": "2026-07-01T00:00:00Z",
      "source": "self_reported"
    },
    {
      "id": "p-002",
      "name": "Sam Reed",
      "license_status": "bogus"
    }
  ]
}`

func TestReadFileJSONEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(batchJSON), 0o644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "p-001", first.ID)
	assert.Equal(t, "1093817465", first.NPI)
	assert.Equal(t, model.LicenseActive, first.LicenseStatus)
	assert.Equal(t, model.SourceSelfReported, first.Source)
	require.NotNil(t, first.LastVerifiedAt)
	assert.Empty(t, first.ParseFindings)

	// The bogus license status is coerced to unknown and reported.
	second := records[1]
	assert.Equal(t, model.LicenseUnknown, second.LicenseStatus)
	require.Len(t, second.ParseFindings, 1)
	assert.Equal(t, model.IssueFieldUnparseable, second.ParseFindings[0].IssueCode)
	assert.Equal(t, "license_status", second.ParseFindings[0].Field)
}

func TestReadFileJSONBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	body := `[{"id": "p-001", "name": "Jane Smith", "license_status": "active"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p-001", records[0].ID)
}

func TestReadFileRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	body := `[{"id": "p-001", "name": "A"}, {"id": "p-001", "name": "B"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate record id")
}

func TestReadFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	body := "id,name,npi,phone,license_status,affiliations,last_verified_at\n" +
		"p-001,Jane Smith,1093817465,(512) 555-0142,active,Austin Heart;Seton Medical,2026-07-01\n" +
		"p-002,Sam Reed,,,expired,,\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, []string{"Austin Heart", "Seton Medical"}, first.Affiliations)
	require.NotNil(t, first.LastVerifiedAt)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), first.LastVerifiedAt.UTC())

	second := records[1]
	assert.Equal(t, model.LicenseExpired, second.LicenseStatus)
	assert.Nil(t, second.Affiliations)
	assert.Nil(t, second.LastVerifiedAt)
}

func TestReadFileCSVHeaderMapping(t *testing.T) {
	// Columns reordered, extra column ignored, headers with mixed case.
	path := filepath.Join(t.TempDir(), "batch.csv")
	body := "Name,ignored,ID,License Status\n" +
		"Jane Smith,x,p-001,active\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p-001", records[0].ID)
	assert.Equal(t, "Jane Smith", records[0].Name)
	assert.Equal(t, model.LicenseActive, records[0].LicenseStatus)
}

func TestReadFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Providers")
	require.NoError(t, err)
	for _, row := range [][]string{
		{"id", "name", "license_status", "phone"},
		{"p-001", "Jane Smith", "active", "(512) 555-0142"},
		{"p-002", "Sam Reed", "unknown", ""},
		{"", "", "", ""},
	} {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	require.NoError(t, f.Save(path))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "p-001", records[0].ID)
	assert.Equal(t, model.LicenseUnknown, records[1].LicenseStatus)
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	_, err := ReadFile("batch.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input format")
}

func TestWriteFileRoundTrip(t *testing.T) {
	verified := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	records := []model.ProviderRecord{
		{
			ID:             "p-001",
			NPI:            "1093817465",
			Name:           "Jane Smith",
			Phone:          "(512) 555-0142",
			Address:        "400 Congress Ave, Austin, TX 78701",
			Specialty:      "Cardiology",
			LicenseNumber:  "TX-44521",
			LicenseStatus:  model.LicenseActive,
			Affiliations:   []string{"Austin Heart"},
			LastVerifiedAt: &verified,
			Source:         model.SourceSelfReported,
		},
		{ID: "p-002", Name: "Sam Reed", LicenseStatus: model.LicenseUnknown, Source: model.SourceSelfReported},
	}

	for _, ext := range []string{".json", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			require.NoError(t, WriteFile(path, records))

			got, err := ReadFile(path)
			require.NoError(t, err)
			require.Len(t, got, 2)

			assert.Equal(t, records[0].ID, got[0].ID)
			assert.Equal(t, records[0].NPI, got[0].NPI)
			assert.Equal(t, records[0].Affiliations, got[0].Affiliations)
			assert.Equal(t, records[0].LicenseStatus, got[0].LicenseStatus)
			require.NotNil(t, got[0].LastVerifiedAt)
			assert.True(t, got[0].LastVerifiedAt.Equal(verified))
			assert.Empty(t, got[0].ParseFindings)
			assert.Empty(t, got[1].ParseFindings)
		})
	}
}
