package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/provdir/internal/model"
)

// FSStore implements Store on a directory of <run_id>.json files.
type FSStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFS opens a flat-file store rooted at dir, creating it if needed.
func NewFS(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "store: create data dir %s", dir)
	}
	return &FSStore{dir: dir}, nil
}

// SaveRun writes the document atomically: a temp file in the same directory
// is renamed over the destination, so readers never see a partial run.
func (s *FSStore) SaveRun(_ context.Context, doc *model.RunDocument) error {
	if !validRunID(doc.RunID) {
		return eris.Errorf("store: invalid run id %q", doc.RunID)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "store: marshal run %s", doc.RunID)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, doc.RunID+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "store: create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "store: write run %s", doc.RunID)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "store: close temp file for run %s", doc.RunID)
	}
	if err := os.Rename(tmp.Name(), s.path(doc.RunID)); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "store: commit run %s", doc.RunID)
	}
	return nil
}

// GetRun loads one run document. Missing runs yield ErrNotFound.
func (s *FSStore) GetRun(_ context.Context, runID string) (*model.RunDocument, error) {
	if !validRunID(runID) {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readRun(s.path(runID))
}

// LatestRun loads the most recently started run. An empty store yields
// ErrNotFound.
func (s *FSStore) LatestRun(ctx context.Context) (*model.RunDocument, error) {
	summaries, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, ErrNotFound
	}
	return s.GetRun(ctx, summaries[0].RunID)
}

// ListRuns returns run summaries ordered by start time descending, ties
// broken by run id. Files that fail to parse are skipped, not fatal.
func (s *FSStore) ListRuns(_ context.Context, filter RunFilter) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read data dir %s", s.dir)
	}

	summaries := make([]model.RunSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		doc, err := s.readRun(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			zap.L().Warn("store: skipping unreadable run file",
				zap.String("file", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		if !filter.Since.IsZero() && doc.StartedAt.Before(filter.Since) {
			continue
		}
		summaries = append(summaries, doc.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].StartedAt.Equal(summaries[j].StartedAt) {
			return summaries[i].StartedAt.After(summaries[j].StartedAt)
		}
		return summaries[i].RunID < summaries[j].RunID
	})
	if filter.Limit > 0 && len(summaries) > filter.Limit {
		summaries = summaries[:filter.Limit]
	}
	return summaries, nil
}

// DeleteRun removes one stored run. Missing runs yield ErrNotFound.
func (s *FSStore) DeleteRun(_ context.Context, runID string) error {
	if !validRunID(runID) {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(runID)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return eris.Wrapf(err, "store: delete run %s", runID)
	}
	return nil
}

// Close satisfies Store; a directory needs no teardown.
func (s *FSStore) Close() error { return nil }

func (s *FSStore) path(runID string) string {
	return filepath.Join(s.dir, runID+".json")
}

func (s *FSStore) readRun(path string) (*model.RunDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "store: read %s", path)
	}

	var doc model.RunDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "store: parse %s", path)
	}
	return &doc, nil
}

// validRunID keeps run ids safe to use as file names.
func validRunID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
