package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/registry"
)

type failingLookup struct{}

func (failingLookup) Lookup(context.Context, string) (*model.PartialRecord, error) {
	return nil, eris.New("backend unavailable")
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestResolve(t *testing.T) {
	verified := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	reg := registry.NewStatic([]model.PartialRecord{
		{NPI: "1234567893", Name: "Sarah Chen", LastVerifiedAt: &verified},
	})

	t.Run("hit", func(t *testing.T) {
		e := New(reg)
		entry := e.Resolve(context.Background(), "1234567893")
		require.NotNil(t, entry)
		assert.Equal(t, "Sarah Chen", entry.Name)
	})

	t.Run("miss is nil", func(t *testing.T) {
		e := New(reg)
		assert.Nil(t, e.Resolve(context.Background(), "1000000004"))
	})

	t.Run("empty npi is nil", func(t *testing.T) {
		e := New(reg)
		assert.Nil(t, e.Resolve(context.Background(), ""))
	})

	t.Run("nil registry is nil", func(t *testing.T) {
		e := New(nil)
		assert.Nil(t, e.Resolve(context.Background(), "1234567893"))
	})

	t.Run("backend failure degrades to miss", func(t *testing.T) {
		e := New(failingLookup{})
		assert.Nil(t, e.Resolve(context.Background(), "1234567893"))
	})
}

func TestEligible(t *testing.T) {
	now := time.Now()
	full := model.ProviderRecord{
		Affiliations:   []string{"Clinic"},
		LastVerifiedAt: ptrTime(now),
	}
	assert.False(t, Eligible(full))

	assert.True(t, Eligible(model.ProviderRecord{LastVerifiedAt: ptrTime(now)}))
	assert.True(t, Eligible(model.ProviderRecord{Affiliations: []string{"Clinic"}}))
	assert.True(t, Eligible(model.ProviderRecord{}))
}

func TestFill(t *testing.T) {
	verified := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	entry := &model.PartialRecord{
		NPI:            "1234567893",
		Name:           "Sarah Chen",
		Address:        "500 Lamar Blvd, Austin, TX 78703",
		Affiliations:   []string{"Austin Heart Center"},
		LastVerifiedAt: &verified,
	}

	t.Run("fills both empty optional fields", func(t *testing.T) {
		rec := model.ProviderRecord{ID: "r1", Source: model.SourceSelfReported}
		got, filled := Fill(rec, entry)

		assert.Equal(t, []string{"affiliations", "last_verified_at"}, filled)
		assert.Equal(t, []string{"Austin Heart Center"}, got.Affiliations)
		require.NotNil(t, got.LastVerifiedAt)
		assert.Equal(t, verified, *got.LastVerifiedAt)
		assert.Equal(t, model.SourceEnriched, got.Source)
	})

	t.Run("never overwrites populated fields", func(t *testing.T) {
		own := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
		rec := model.ProviderRecord{
			ID:             "r1",
			Affiliations:   []string{"Private Practice"},
			LastVerifiedAt: &own,
			Source:         model.SourceSelfReported,
		}

		got, filled := Fill(rec, entry)
		assert.Empty(t, filled)
		assert.Equal(t, []string{"Private Practice"}, got.Affiliations)
		assert.Equal(t, own, *got.LastVerifiedAt)
		assert.Equal(t, model.SourceSelfReported, got.Source)
	})

	t.Run("fills only the missing field", func(t *testing.T) {
		rec := model.ProviderRecord{
			ID:           "r1",
			Affiliations: []string{"Private Practice"},
			Source:       model.SourceSelfReported,
		}

		got, filled := Fill(rec, entry)
		assert.Equal(t, []string{"last_verified_at"}, filled)
		assert.Equal(t, []string{"Private Practice"}, got.Affiliations)
		assert.Equal(t, model.SourceEnriched, got.Source)
	})

	t.Run("nil entry leaves record untouched", func(t *testing.T) {
		rec := model.ProviderRecord{ID: "r1", Source: model.SourceSelfReported}
		got, filled := Fill(rec, nil)
		assert.Empty(t, filled)
		assert.Equal(t, rec, got)
	})

	t.Run("identity fields are never touched", func(t *testing.T) {
		rec := model.ProviderRecord{
			ID:     "r1",
			Name:   "Different Name",
			Phone:  "512-555-0100",
			Source: model.SourceSelfReported,
		}
		got, _ := Fill(rec, entry)
		assert.Equal(t, "Different Name", got.Name)
		assert.Equal(t, "512-555-0100", got.Phone)
		assert.Empty(t, got.Address)
	})
}
