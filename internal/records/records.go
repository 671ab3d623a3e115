// Package records loads provider batches from JSON, CSV, and XLSX files
// and writes them back out. Malformed field values never fail a load; they
// surface as parse findings on the affected record.
package records

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/provdir/internal/model"
)

// ReadFile loads a provider batch, dispatching on the file extension.
// Duplicate non-empty record ids violate the batch invariant and fail the
// load outright.
func ReadFile(path string) ([]model.ProviderRecord, error) {
	var (
		raws []model.RawRecord
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		raws, err = readJSON(path)
	case ".csv":
		raws, err = readCSV(path)
	case ".xlsx":
		raws, err = readXLSX(path)
	default:
		return nil, eris.Errorf("records: unsupported input format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	records, err := Convert(raws)
	if err != nil {
		return nil, eris.Wrapf(err, "records: load %s", path)
	}
	return records, nil
}

// Convert parses raw wire records into typed provider records. Duplicate
// non-empty record ids violate the batch invariant and fail the conversion.
func Convert(raws []model.RawRecord) ([]model.ProviderRecord, error) {
	records := make([]model.ProviderRecord, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		rec, _ := model.ParseRecord(raw)
		if rec.ID != "" {
			if _, dup := seen[rec.ID]; dup {
				return nil, eris.Errorf("records: duplicate record id %q", rec.ID)
			}
			seen[rec.ID] = struct{}{}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteFile saves a provider batch as JSON or CSV, dispatching on the file
// extension.
func WriteFile(path string, records []model.ProviderRecord) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return writeJSON(path, records)
	case ".csv":
		return writeCSV(path, records)
	default:
		return eris.Errorf("records: unsupported output format %q", ext)
	}
}
