// Package registry provides the NPI lookup the enrichment step depends on.
// The interface is deliberately narrow: a real deployment swaps the backing
// store (state boards, the national registry) without touching pipeline
// logic. An entry that does not exist is not an error; lookups return
// (nil, nil) so callers degrade instead of failing.
package registry

import (
	"context"

	"github.com/sells-group/provdir/internal/model"
)

// Lookup resolves an NPI to its registry entry. Implementations must be
// safe for concurrent readers; a pipeline run never writes.
type Lookup interface {
	Lookup(ctx context.Context, npi string) (*model.PartialRecord, error)
}

// Static is an in-memory Lookup backed by a fixed map.
type Static struct {
	entries map[string]model.PartialRecord
}

// NewStatic builds a Static lookup from entries keyed by NPI. Entries with
// an invalid NPI are dropped.
func NewStatic(entries []model.PartialRecord) *Static {
	m := make(map[string]model.PartialRecord, len(entries))
	for _, e := range entries {
		if model.ValidNPI(e.NPI) {
			m[e.NPI] = e
		}
	}
	return &Static{entries: m}
}

// Lookup returns the entry for npi, or (nil, nil) when absent.
func (s *Static) Lookup(_ context.Context, npi string) (*model.PartialRecord, error) {
	if e, ok := s.entries[npi]; ok {
		cp := e
		return &cp, nil
	}
	return nil, nil
}

// Len reports the number of loaded entries.
func (s *Static) Len() int { return len(s.entries) }
