package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/notify"
	"github.com/sells-group/provdir/internal/records"
	"github.com/sells-group/provdir/internal/report"
	"github.com/sells-group/provdir/internal/store"
)

// validateRequest is the POST /api/validate body. Save defaults to true.
type validateRequest struct {
	Records []model.RawRecord `json:"records"`
	AsOf    string            `json:"as_of"`
	Save    *bool             `json:"save"`
}

// providerView joins a record with its validation result.
type providerView struct {
	Record model.ProviderRecord    `json:"record"`
	Result *model.ValidationResult `json:"result,omitempty"`
}

// queueEntry is one review-queue row with the fields a reviewer needs.
type queueEntry struct {
	RecordID          string         `json:"record_id"`
	Name              string         `json:"name"`
	QualityScore      int            `json:"quality_score"`
	Status            model.Status   `json:"status"`
	Priority          model.Priority `json:"priority"`
	RecommendedAction string         `json:"recommended_action"`
}

// storeStats aggregates every stored run.
type storeStats struct {
	TotalRuns           int     `json:"total_runs"`
	TotalRecords        int     `json:"total_records"`
	AverageQualityScore float64 `json:"average_quality_score"`
	ReviewQueueSize     int     `json:"review_queue_size"`
	AverageDurationMS   float64 `json:"average_duration_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recs, err := records.Convert(req.Records)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	asOf := time.Now().UTC()
	if req.AsOf != "" {
		parsed, err := parseTime(req.AsOf)
		if err != nil {
			respondError(w, http.StatusBadRequest, "as_of must be RFC 3339 or YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	doc, err := s.pipeline.Run(r.Context(), recs, asOf)
	if err != nil {
		zap.L().Error("api: validate run failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "validation run failed")
		return
	}

	if req.Save == nil || *req.Save {
		if err := s.store.SaveRun(r.Context(), doc); err != nil {
			zap.L().Error("api: save run failed", zap.String("run_id", doc.RunID), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "run completed but could not be saved")
			return
		}
	}

	respond(w, http.StatusOK, doc)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("since"); v != "" {
		ts, err := parseTime(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "since must be RFC 3339 or YYYY-MM-DD")
			return
		}
		filter.Since = ts
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	respond(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "run not found")
			return
		}
		zap.L().Error("api: get run", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load run")
		return
	}
	respond(w, http.StatusOK, doc)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	doc := s.runFor(w, r)
	if doc == nil {
		return
	}
	respond(w, http.StatusOK, report.BuildDashboard(doc))
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	doc := s.runFor(w, r)
	if doc == nil {
		return
	}

	status := r.URL.Query().Get("status")
	priority := r.URL.Query().Get("priority")

	views := make([]providerView, 0, len(doc.Records))
	for i := range doc.Records {
		rec := doc.Records[i]
		res := doc.ResultByID(rec.ID)
		if status != "" && (res == nil || string(res.Status) != status) {
			continue
		}
		if priority != "" && (res == nil || string(res.Priority) != priority) {
			continue
		}
		views = append(views, providerView{Record: rec, Result: res})
	}
	respond(w, http.StatusOK, views)
}

func (s *Server) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	doc := s.runFor(w, r)
	if doc == nil {
		return
	}

	id := chi.URLParam(r, "recordID")
	rec := doc.RecordByID(id)
	if rec == nil {
		respondError(w, http.StatusNotFound, "provider not found")
		return
	}
	respond(w, http.StatusOK, providerView{Record: *rec, Result: doc.ResultByID(id)})
}

func (s *Server) handleOutreach(w http.ResponseWriter, r *http.Request) {
	doc := s.runFor(w, r)
	if doc == nil {
		return
	}

	id := chi.URLParam(r, "recordID")
	if doc.RecordByID(id) == nil {
		respondError(w, http.StatusNotFound, "provider not found")
		return
	}
	for _, draft := range notify.Build(doc) {
		if draft.RecordID == id {
			respond(w, http.StatusOK, draft)
			return
		}
	}
	respondError(w, http.StatusNotFound, "provider has no outreach draft")
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	doc := s.runFor(w, r)
	if doc == nil {
		return
	}

	entries := make([]queueEntry, 0, len(doc.Report.ReviewQueue))
	for _, id := range doc.Report.ReviewQueue {
		res := doc.ResultByID(id)
		if res == nil {
			continue
		}
		entry := queueEntry{
			RecordID:          id,
			QualityScore:      res.QualityScore,
			Status:            res.Status,
			Priority:          res.Priority,
			RecommendedAction: res.RecommendedAction,
		}
		if rec := doc.RecordByID(id); rec != nil {
			entry.Name = rec.Name
		}
		entries = append(entries, entry)
	}
	respond(w, http.StatusOK, entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), store.RunFilter{})
	if err != nil {
		zap.L().Error("api: stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	respond(w, http.StatusOK, computeStoreStats(runs))
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	doc := s.runFor(w, r)
	if doc == nil {
		return
	}
	respond(w, http.StatusOK, report.BuildTrends(doc))
}

// runFor loads the run named by the "run" query parameter, or the newest
// stored run when the parameter is absent, translating absence into a 404.
// A nil return means the response has already been written.
func (s *Server) runFor(w http.ResponseWriter, r *http.Request) *model.RunDocument {
	if runID := r.URL.Query().Get("run"); runID != "" {
		doc, err := s.store.GetRun(r.Context(), runID)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				respondError(w, http.StatusNotFound, "run not found")
				return nil
			}
			zap.L().Error("api: load run", zap.String("run_id", runID), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "could not load run")
			return nil
		}
		return doc
	}

	doc, err := s.store.LatestRun(r.Context())
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "no runs stored")
			return nil
		}
		zap.L().Error("api: load latest run", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load latest run")
		return nil
	}
	return doc
}

func computeStoreStats(runs []model.RunSummary) storeStats {
	stats := storeStats{TotalRuns: len(runs)}

	var weightedScore float64
	var totalDuration int64
	for _, run := range runs {
		stats.TotalRecords += run.TotalRecords
		stats.ReviewQueueSize += run.ReviewQueue
		weightedScore += run.AverageScore * float64(run.TotalRecords)
		totalDuration += run.DurationMS
	}
	if stats.TotalRecords > 0 {
		stats.AverageQualityScore = math.Round(weightedScore/float64(stats.TotalRecords)*100) / 100
	}
	if len(runs) > 0 {
		stats.AverageDurationMS = math.Round(float64(totalDuration)/float64(len(runs))*100) / 100
	}
	return stats
}

func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "api: parse time %q", s)
	}
	return ts.UTC(), nil
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}
