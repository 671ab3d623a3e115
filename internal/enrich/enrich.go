// Package enrich fills missing optional fields of provider records from an
// injected registry lookup. Enriched values carry a lower trust weight than
// self-reported data, marked by the record's source field.
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/registry"
)

// Enricher resolves registry entries and fills record gaps from them.
type Enricher struct {
	reg registry.Lookup
}

// New builds an Enricher on a registry lookup. reg may be nil, in which
// case every resolve is a miss.
func New(reg registry.Lookup) *Enricher {
	return &Enricher{reg: reg}
}

// Resolve fetches the registry entry for an NPI. A missing entry and a
// backend failure both degrade to nil: absence is a data fact the
// downstream validators surface, never a fatal condition.
func (e *Enricher) Resolve(ctx context.Context, npi string) *model.PartialRecord {
	if e.reg == nil || npi == "" {
		return nil
	}

	entry, err := e.reg.Lookup(ctx, npi)
	if err != nil {
		zap.L().Warn("enrich: registry lookup failed, treating as miss",
			zap.String("npi", npi),
			zap.Error(err),
		)
		return nil
	}
	return entry
}

// Eligible reports whether a record has optional fields enrichment can fill.
func Eligible(rec model.ProviderRecord) bool {
	return len(rec.Affiliations) == 0 || rec.LastVerifiedAt == nil
}

// Fill returns a copy of rec with genuinely empty optional fields filled
// from entry, and the names of the fields it filled. Populated
// self-reported fields are never overwritten. When anything was filled the
// copy's source becomes enriched.
func Fill(rec model.ProviderRecord, entry *model.PartialRecord) (model.ProviderRecord, []string) {
	if entry == nil {
		return rec, nil
	}

	var filled []string
	if len(rec.Affiliations) == 0 && len(entry.Affiliations) > 0 {
		rec.Affiliations = append([]string(nil), entry.Affiliations...)
		filled = append(filled, "affiliations")
	}
	if rec.LastVerifiedAt == nil && entry.LastVerifiedAt != nil {
		ts := *entry.LastVerifiedAt
		rec.LastVerifiedAt = &ts
		filled = append(filled, "last_verified_at")
	}

	if len(filled) > 0 {
		rec.Source = model.SourceEnriched
	}
	return rec, filled
}
