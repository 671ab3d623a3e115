package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/provdir/internal/model"
)

func testEntries() []model.PartialRecord {
	ts := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return []model.PartialRecord{
		{
			NPI:            "1234567893",
			Name:           "Sarah Chen",
			Address:        "401 Congress Ave, Austin, TX 78701",
			Affiliations:   []string{"Austin Heart Center"},
			LastVerifiedAt: &ts,
		},
		{
			NPI:  "1987654324",
			Name: "Michael Torres",
		},
		{
			NPI:  "bad-npi",
			Name: "Should Be Dropped",
		},
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic(testEntries())
	assert.Equal(t, 2, s.Len())

	t.Run("hit", func(t *testing.T) {
		e, err := s.Lookup(context.Background(), "1234567893")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, "Sarah Chen", e.Name)
	})

	t.Run("miss is nil not error", func(t *testing.T) {
		e, err := s.Lookup(context.Background(), "1000000004")
		require.NoError(t, err)
		assert.Nil(t, e)
	})

	t.Run("returned entry is a copy", func(t *testing.T) {
		e, err := s.Lookup(context.Background(), "1987654324")
		require.NoError(t, err)
		e.Name = "mutated"

		again, err := s.Lookup(context.Background(), "1987654324")
		require.NoError(t, err)
		assert.Equal(t, "Michael Torres", again.Name)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "npi.json")
	data, err := json.Marshal(testEntries())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
		_, err := LoadFile(bad)
		assert.Error(t, err)
	})
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "registry.db")

	s, err := NewSQLite(dsn)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	require.NoError(t, s.Migrate(ctx))

	n, err := s.Import(ctx, testEntries())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("hit round-trips all fields", func(t *testing.T) {
		e, err := s.Lookup(ctx, "1234567893")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, "Sarah Chen", e.Name)
		assert.Equal(t, []string{"Austin Heart Center"}, e.Affiliations)
		require.NotNil(t, e.LastVerifiedAt)
		assert.Equal(t, 2026, e.LastVerifiedAt.Year())
	})

	t.Run("miss is nil not error", func(t *testing.T) {
		e, err := s.Lookup(ctx, "1000000004")
		require.NoError(t, err)
		assert.Nil(t, e)
	})

	t.Run("import upserts", func(t *testing.T) {
		n, err := s.Import(ctx, []model.PartialRecord{{NPI: "1987654324", Name: "Michael A. Torres"}})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		e, err := s.Lookup(ctx, "1987654324")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, "Michael A. Torres", e.Name)
	})
}

func TestLimited(t *testing.T) {
	inner := NewStatic(testEntries())
	limited := NewLimited(inner, 100)

	e, err := limited.Lookup(context.Background(), "1234567893")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Sarah Chen", e.Name)

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		slow := NewLimited(inner, 0.001)
		// Exhaust the single burst token.
		_, err := slow.Lookup(context.Background(), "1234567893")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = slow.Lookup(ctx, "1234567893")
		assert.Error(t, err)
	})
}
