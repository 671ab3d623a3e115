package records

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/provdir/internal/model"
)

// jsonEnvelope is the wrapped batch form; a bare array is also accepted.
type jsonEnvelope struct {
	Records []model.RawRecord `json:"records"`
}

func readJSON(path string) ([]model.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "records: read %s", path)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []model.RawRecord
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, eris.Wrapf(err, "records: parse %s", path)
		}
		return raws, nil
	}

	var env jsonEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, eris.Wrapf(err, "records: parse %s", path)
	}
	return env.Records, nil
}

func writeJSON(path string, records []model.ProviderRecord) error {
	env := struct {
		Records []model.ProviderRecord `json:"records"`
	}{Records: records}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return eris.Wrap(err, "records: marshal batch")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "records: write %s", path)
	}
	return nil
}
