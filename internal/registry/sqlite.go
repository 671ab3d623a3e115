package registry

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/provdir/internal/model"
)

// SQLite is a Lookup backed by a local SQLite snapshot, for registries too
// large to hold in memory.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite registry at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "registry: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "registry: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS npi_entries (
	npi              TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	affiliations     TEXT NOT NULL DEFAULT '[]',
	last_verified_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_npi_entries_name ON npi_entries(name);
`

// Migrate creates the snapshot schema.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "registry: migrate")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Lookup returns the entry for npi, or (nil, nil) when absent.
func (s *SQLite) Lookup(ctx context.Context, npi string) (*model.PartialRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT npi, name, address, affiliations, last_verified_at FROM npi_entries WHERE npi = ?`,
		npi,
	)

	var e model.PartialRecord
	var affiliationsJSON string
	var verifiedAt sql.NullTime
	err := row.Scan(&e.NPI, &e.Name, &e.Address, &affiliationsJSON, &verifiedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "registry: scan entry")
	}

	if err := json.Unmarshal([]byte(affiliationsJSON), &e.Affiliations); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal affiliations")
	}
	if verifiedAt.Valid {
		ts := verifiedAt.Time.UTC()
		e.LastVerifiedAt = &ts
	}
	return &e, nil
}

// Import upserts snapshot entries, replacing existing rows for the same
// NPI. Entries with invalid NPIs are skipped. Returns the number imported.
func (s *SQLite) Import(ctx context.Context, entries []model.PartialRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "registry: begin import")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO npi_entries (npi, name, address, affiliations, last_verified_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(npi) DO UPDATE SET
		   name = excluded.name,
		   address = excluded.address,
		   affiliations = excluded.affiliations,
		   last_verified_at = excluded.last_verified_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "registry: prepare import")
	}
	defer stmt.Close() //nolint:errcheck

	var imported int
	for _, e := range entries {
		if !model.ValidNPI(e.NPI) {
			continue
		}

		affiliationsJSON, err := json.Marshal(e.Affiliations)
		if err != nil {
			return imported, eris.Wrapf(err, "registry: marshal affiliations for %s", e.NPI)
		}

		var verifiedAt any
		if e.LastVerifiedAt != nil {
			verifiedAt = e.LastVerifiedAt.UTC()
		}

		if _, err := stmt.ExecContext(ctx, e.NPI, e.Name, e.Address, string(affiliationsJSON), verifiedAt); err != nil {
			return imported, eris.Wrapf(err, "registry: insert %s", e.NPI)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return imported, eris.Wrap(err, "registry: commit import")
	}
	return imported, nil
}
