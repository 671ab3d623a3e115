package registry

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/provdir/internal/model"
)

// LoadFile reads a JSON snapshot (an array of partial records) into a
// Static lookup. Entries with invalid NPIs are skipped with a warning so a
// partially dirty snapshot still loads.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read snapshot")
	}

	var entries []model.PartialRecord
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal snapshot")
	}

	valid := entries[:0]
	for _, e := range entries {
		if !model.ValidNPI(e.NPI) {
			zap.L().Warn("registry: skipping entry with invalid npi",
				zap.String("npi", e.NPI),
				zap.String("name", e.Name),
			)
			continue
		}
		valid = append(valid, e)
	}

	return NewStatic(valid), nil
}
