// Package recommender ties the vector space, the rank adjuster and the top-N
// selector into an engine that fits a corpus once and scores any number of
// resumes against the published snapshot.
package recommender

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-matcher/internal/corpus"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/ranking"
	"github.com/spigell/job-matcher/internal/utils"
	"github.com/spigell/job-matcher/internal/vectorspace"
)

const queryPreviewLimit = 80

// ErrNotFitted is returned by scoring calls before the first successful Fit.
var ErrNotFitted = errors.New("engine is not fitted")

// Snapshot is an immutable fitted corpus. Scoring against a snapshot never
// observes a later Fit.
type Snapshot struct {
	Corpus   *corpus.Corpus
	Model    *vectorspace.Model
	FittedAt time.Time
}

// Version identifies the snapshot; it increases with every fit.
func (s *Snapshot) Version() uint64 {
	if s == nil || s.Model == nil {
		return 0
	}
	return s.Model.Version()
}

// Engine is UNFITTED until Fit publishes a snapshot, FITTED afterwards.
// It is safe for concurrent use.
type Engine struct {
	cfg     Config
	steps   []ranking.Adjuster
	roles   []string
	log     *zap.Logger
	metrics *metrics.Metrics

	fitMu   sync.Mutex
	current atomic.Pointer[Snapshot]
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the collectors the engine reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New validates cfg and returns an unfitted engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := ranking.DefaultSteps()
	if err := ranking.Validate(cfg.rankingConfig(), steps); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	roles := ranking.NormalizeRoles(cfg.PriorityRoles)
	switch {
	case cfg.BoostFactor == 0:
		ranking.DisableByName(steps, ranking.PriorityBoostStep, "boost factor is zero")
	case len(roles) == 0:
		ranking.DisableByName(steps, ranking.PriorityBoostStep, "no priority roles configured")
	}

	e := &Engine{
		cfg:   cfg,
		steps: steps,
		roles: roles,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	return e, nil
}

// Config returns the validated engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Steps reports the rank adjustment steps and their settings.
func (e *Engine) Steps() []ranking.Status {
	return ranking.Describe(e.steps)
}

// Snapshot returns the published snapshot, or nil while the engine is unfitted.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Fit builds a new snapshot from c and publishes it once complete. Scoring
// calls already running keep the snapshot they started with. A nil corpus is
// fitted as an empty one.
func (e *Engine) Fit(c *corpus.Corpus) (*Snapshot, error) {
	if c == nil {
		c = &corpus.Corpus{}
	}

	e.fitMu.Lock()
	defer e.fitMu.Unlock()

	started := time.Now()
	model, err := vectorspace.Fit(c.Documents(), vectorspace.Options{MaxFeatures: e.cfg.MaxFeatures})
	if err != nil {
		e.metrics.ObserveFitError()
		return nil, fmt.Errorf("fitting corpus %q: %w", c.Source, err)
	}

	snap := &Snapshot{Corpus: c, Model: model, FittedAt: time.Now()}
	e.current.Store(snap)

	took := time.Since(started)
	e.metrics.ObserveFit(c.Len(), model.VocabularySize(), model.Version(), took)
	logger.WithCommonFields(e.log, c.Source, model.Version()).Info("corpus fitted",
		zap.Int("postings", c.Len()),
		zap.Int("vocabulary", model.VocabularySize()),
		zap.Duration("took", took),
	)

	return snap, nil
}

// Recommend scores p against the published snapshot. topN 0 uses the
// configured single-resume default.
func (e *Engine) Recommend(p *profile.Profile, topN int) (*Recommendations, error) {
	snap := e.Snapshot()
	if snap == nil {
		return nil, ErrNotFitted
	}
	return e.RecommendWith(snap, p, topN)
}

// RecommendWith scores p against an explicit snapshot.
func (e *Engine) RecommendWith(snap *Snapshot, p *profile.Profile, topN int) (*Recommendations, error) {
	if snap == nil || snap.Model == nil || snap.Corpus == nil {
		return nil, ErrNotFitted
	}
	n, err := e.resolveTopN(topN, e.cfg.TopN)
	if err != nil {
		return nil, err
	}
	return e.recommend(snap, p, n), nil
}

// Batch scores every profile against one snapshot, concurrently. Results are
// in input order. topN 0 uses the configured batch default.
func (e *Engine) Batch(ctx context.Context, profiles []*profile.Profile, topN int) ([]*Recommendations, error) {
	snap := e.Snapshot()
	if snap == nil {
		return nil, ErrNotFitted
	}
	n, err := e.resolveTopN(topN, e.cfg.BatchTopN)
	if err != nil {
		return nil, err
	}

	workers := e.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Recommendations, len(profiles))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range profiles {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = e.recommend(snap, p, n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch scoring: %w", err)
	}
	return results, nil
}

func (e *Engine) resolveTopN(requested, fallback int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("%w: top_n must not be negative, got %d", ErrInvalidConfig, requested)
	case requested == 0:
		return fallback, nil
	default:
		return requested, nil
	}
}

func (e *Engine) recommend(snap *Snapshot, p *profile.Profile, topN int) *Recommendations {
	started := time.Now()
	log := logger.WithCommonFields(e.log, snap.Corpus.Source, snap.Version())

	res := &Recommendations{
		ModelVersion: snap.Version(),
		TopN:         topN,
		Items:        []Recommendation{},
	}
	defer func() {
		e.metrics.ObserveRecommendation(string(res.Outcome), time.Since(started))
	}()

	query, err := profile.Synthesize(p)
	if err != nil {
		log.Debug("empty profile")
		res.Outcome = OutcomeEmptyProfile
		return res
	}

	q := snap.Model.Transform(query)
	if q.IsZero() {
		log.Debug("query has no vocabulary terms", zap.String("query", utils.TruncateForLog(query, queryPreviewLimit)))
		res.Outcome = OutcomeNoMatch
		return res
	}

	titles := snap.Corpus.Titles()
	raw := snap.Model.Similarities(q)
	adjusted := ranking.Run(ranking.Deps{Logger: log}, e.steps, raw, titles)

	res.Outcome = OutcomeMatched
	for rank, idx := range ranking.Select(adjusted, topN) {
		posting := snap.Corpus.Items[idx]
		res.Items = append(res.Items, Recommendation{
			Rank:     rank + 1,
			Posting:  posting,
			Link:     posting.Link,
			Score:    adjusted[idx],
			RawScore: raw[idx],
			Boosted:  e.boosted(posting.Title),
		})
	}

	log.Debug("profile scored",
		zap.String("query", utils.TruncateForLog(query, queryPreviewLimit)),
		zap.Int("results", len(res.Items)),
	)
	return res
}

func (e *Engine) boosted(title string) bool {
	return e.cfg.BoostFactor > 0 && ranking.HasPriorityRole(title, e.roles)
}
