package records

import (
	"encoding/csv"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/provdir/internal/model"
)

// csvColumns is the canonical column order for CSV output. Input files may
// order columns freely; unknown headers are ignored.
var csvColumns = []string{
	"id", "npi", "name", "phone", "address", "specialty",
	"license_number", "license_status", "affiliations",
	"last_verified_at", "source",
}

// affiliationSeparator joins the affiliations list into one CSV cell.
const affiliationSeparator = ";"

func readCSV(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow ragged rows

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "records: parse %s", path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := headerIndex(rows[0])
	raws := make([]model.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raws = append(raws, rowToRaw(row, index))
	}
	return raws, nil
}

// headerIndex maps normalized header names to column positions.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		name = strings.ReplaceAll(name, " ", "_")
		index[name] = i
	}
	return index
}

func rowToRaw(row []string, index map[string]int) model.RawRecord {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	raw := model.RawRecord{
		ID:             field("id"),
		NPI:            field("npi"),
		Name:           field("name"),
		Phone:          field("phone"),
		Address:        field("address"),
		Specialty:      field("specialty"),
		LicenseNumber:  field("license_number"),
		LicenseStatus:  field("license_status"),
		LastVerifiedAt: field("last_verified_at"),
		Source:         field("source"),
	}
	if affs := field("affiliations"); affs != "" {
		raw.Affiliations = splitAffiliations(affs)
	}
	return raw
}

func splitAffiliations(s string) []string {
	parts := strings.Split(s, affiliationSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeCSV(path string, records []model.ProviderRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "records: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return eris.Wrap(err, "records: write header")
	}
	for _, rec := range records {
		verified := ""
		if rec.LastVerifiedAt != nil {
			verified = rec.LastVerifiedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			rec.ID, rec.NPI, rec.Name, rec.Phone, rec.Address, rec.Specialty,
			rec.LicenseNumber, string(rec.LicenseStatus),
			strings.Join(rec.Affiliations, affiliationSeparator),
			verified, string(rec.Source),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "records: write row %s", rec.ID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "records: flush %s", path)
	}
	return f.Close()
}
