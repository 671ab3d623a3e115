// Package pipeline orchestrates batch validation of provider directory
// records: per-field checks, registry enrichment, a re-check of the fields
// enrichment touched, scoring, and triage.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/provdir/internal/enrich"
	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/registry"
	"github.com/sells-group/provdir/internal/report"
	"github.com/sells-group/provdir/internal/score"
	"github.com/sells-group/provdir/internal/triage"
	"github.com/sells-group/provdir/internal/validate"
)

// DefaultWorkers bounds record fan-out when the caller does not choose.
const DefaultWorkers = 4

// Pipeline validates provider batches. Safe for concurrent use once built.
type Pipeline struct {
	validator *validate.Validator
	enricher  *enrich.Enricher
	triager   *triage.Triager
	workers   int
	now       func() time.Time
	newRunID  func() string
}

// Option adjusts how a Pipeline is built.
type Option func(*Pipeline)

// WithWorkers sets the record fan-out width. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithHeuristics swaps in custom validator heuristic tables.
func WithHeuristics(h *validate.Heuristics) Option {
	return func(p *Pipeline) { p.validator = validate.New(h) }
}

// WithActions swaps in custom remediation templates.
func WithActions(a *triage.Actions) Option {
	return func(p *Pipeline) { p.triager = triage.New(a) }
}

// WithClock overrides the wall clock used for run timing.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID overrides run id generation.
func WithRunID(gen func() string) Option {
	return func(p *Pipeline) { p.newRunID = gen }
}

// New creates a Pipeline. reg may be nil, which disables enrichment and
// registry cross-checks.
func New(reg registry.Lookup, opts ...Option) *Pipeline {
	p := &Pipeline{
		validator: validate.New(nil),
		enricher:  enrich.New(reg),
		triager:   triage.New(nil),
		workers:   DefaultWorkers,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run validates every record in the batch against the asOf reference time.
// Results come back in input order regardless of worker interleaving, and a
// failure on one record never aborts the rest. An empty batch yields an
// empty run document, not an error.
func (p *Pipeline) Run(ctx context.Context, records []model.ProviderRecord, asOf time.Time) (*model.RunDocument, error) {
	asOf = asOf.UTC()
	started := p.now().UTC()

	log := zap.L().With(zap.Int("records", len(records)))
	log.Info("pipeline: starting batch validation", zap.Time("as_of", asOf))

	doc := &model.RunDocument{
		RunID:     p.newRunID(),
		StartedAt: started,
		AsOf:      asOf,
		Records:   append([]model.ProviderRecord{}, records...),
		Results:   make([]model.ValidationResult, len(records)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var enriched, failed atomic.Int64
	for i := range doc.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := p.processRecord(gctx, &doc.Records[i], asOf)
			if len(res.EnrichedFields) > 0 {
				enriched.Add(1)
			}
			if hasProcessingError(res.Findings) {
				failed.Add(1)
			}
			doc.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: batch run")
	}

	completed := p.now().UTC()
	elapsed := completed.Sub(started)
	doc.CompletedAt = completed
	doc.DurationMS = elapsed.Milliseconds()
	doc.Report = report.Build(doc.Results, elapsed)

	log.Info("pipeline: batch complete",
		zap.String("run_id", doc.RunID),
		zap.Float64("average_score", doc.Report.AverageQualityScore),
		zap.Int("review_queue", len(doc.Report.ReviewQueue)),
		zap.Int64("enriched", enriched.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Int64("duration_ms", doc.DurationMS),
	)
	return doc, nil
}

// processRecord runs the full per-record flow. A panic in any stage is
// converted into a processing_error result so one bad record cannot take
// down the batch. Enrichment writes back into rec so the stored batch
// carries the filled fields.
func (p *Pipeline) processRecord(ctx context.Context, rec *model.ProviderRecord, asOf time.Time) (result model.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("pipeline: record processing panicked",
				zap.String("record_id", rec.ID),
				zap.Any("panic", r),
			)
			result = p.errorResult(rec.ID)
		}
	}()

	entry := p.enricher.Resolve(ctx, rec.NPI)

	findings := append([]model.Finding{}, rec.ParseFindings...)
	findings = append(findings, p.validator.All(*rec, entry, asOf)...)

	var enrichedFields []string
	if entry != nil && enrich.Eligible(*rec) {
		filled, names := enrich.Fill(*rec, entry)
		if len(names) > 0 {
			*rec = filled
			enrichedFields = names
			findings = spliceRefresh(findings, p.validator.Refresh(filled, entry, asOf))
		}
	}
	if findings == nil {
		findings = []model.Finding{}
	}

	quality := score.Quality(findings)
	status, priority, action := p.triager.Triage(quality, findings)

	return model.ValidationResult{
		RecordID:          rec.ID,
		Findings:          findings,
		QualityScore:      quality,
		Confidence:        score.Confidence(findings),
		Status:            status,
		Priority:          priority,
		RecommendedAction: action,
		EnrichedFields:    enrichedFields,
	}
}

// spliceRefresh replaces the findings owned by the re-run validators with
// the refreshed set. Parse findings on those same fields survive: a
// malformed input value stays malformed no matter what enrichment filled.
func spliceRefresh(findings, refreshed []model.Finding) []model.Finding {
	out := make([]model.Finding, 0, len(findings)+len(refreshed))
	for _, f := range findings {
		if _, ok := validate.RefreshFields[f.Field]; ok && f.IssueCode != model.IssueFieldUnparseable {
			continue
		}
		out = append(out, f)
	}
	return append(out, refreshed...)
}

// errorResult is the synthetic result for a record whose processing failed.
func (p *Pipeline) errorResult(recordID string) model.ValidationResult {
	findings := []model.Finding{model.NewFinding("record", model.IssueProcessingError)}
	status, priority, action := p.triager.Triage(0, findings)
	return model.ValidationResult{
		RecordID:          recordID,
		Findings:          findings,
		QualityScore:      0,
		Confidence:        score.ConfidenceFloor,
		Status:            status,
		Priority:          priority,
		RecommendedAction: action,
	}
}

func hasProcessingError(findings []model.Finding) bool {
	for _, f := range findings {
		if f.IssueCode == model.IssueProcessingError {
			return true
		}
	}
	return false
}
