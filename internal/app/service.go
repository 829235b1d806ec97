// Package service wires the team encoding table, the feature builder and the
// value predictor into the operations exposed by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/okian/playervalue/internal/domain/encoding"
	"github.com/okian/playervalue/internal/domain/features"
	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/scoring"
	"github.com/okian/playervalue/internal/domain/types"
	"github.com/okian/playervalue/internal/domain/valuation"
	"github.com/okian/playervalue/pkg/logger"
	"github.com/okian/playervalue/pkg/metrics"
)

// featureLister is implemented by models that declare the names they were
// trained on.
type featureLister interface {
	Features() []string
}

// Service holds the immutable resources loaded at startup. After Start the
// table and predictor are only read, so Estimate is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	table     *encoding.Table
	predictor *valuation.Predictor

	// Configuration
	batchConcurrency int
	maxBatchSize     int

	// State
	started   atomic.Bool
	estimates atomic.Int64
	failures  atomic.Int64
	batches   atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTable sets the team encoding table.
func WithTable(t *encoding.Table) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithPredictor sets the value predictor.
func WithPredictor(p *valuation.Predictor) Option {
	return func(s *Service) {
		s.predictor = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchConcurrency bounds how many batch items are estimated at once.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithMaxBatchSize sets the largest accepted batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// New constructs a Service. Table and predictor must be supplied before Start.
func New(opts ...Option) *Service {
	s := &Service{
		batchConcurrency: runtime.NumCPU(),
		maxBatchSize:     100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start checks that the loaded resources agree with the feature builder. A
// model trained under another contract or on another feature set fails with
// types.ErrResourceLoad.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.Load() {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.table == nil || s.table.Len() == 0 {
		return fmt.Errorf("%w: team encoding table not loaded", types.ErrResourceLoad)
	}
	if s.predictor == nil || s.predictor.Model() == nil {
		return fmt.Errorf("%w: model not loaded", types.ErrResourceLoad)
	}

	model := s.predictor.Model()
	if cr, ok := model.(valuation.ContractReporter); ok {
		if got := cr.Contract(); !got.Equal(features.BuilderContract) {
			return fmt.Errorf("%w: model contract %s does not match builder contract %s",
				types.ErrResourceLoad, got, features.BuilderContract)
		}
	}
	modelFeatures := features.Count
	if fl, ok := model.(featureLister); ok {
		if err := sameNames(fl.Features(), features.Names()); err != nil {
			return fmt.Errorf("%w: %w", types.ErrResourceLoad, err)
		}
		modelFeatures = len(fl.Features())
	}

	metrics.UpdateTeamTableSize(s.table.Len())
	metrics.UpdateModelFeatures(modelFeatures)

	s.started.Store(true)
	s.logger.Info(ctx, "estimation service started",
		logger.Int("teams", s.table.Len()),
		logger.Int("modelFeatures", modelFeatures),
		logger.String("contract", features.BuilderContract.String()),
		logger.Int("batchConcurrency", s.batchConcurrency),
		logger.Int("maxBatchSize", s.maxBatchSize),
	)
	return nil
}

// Stop marks the service as stopped. Loaded resources are kept.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return
	}
	s.started.Store(false)
	s.logger.Info(context.Background(), "estimation service stopped")
}

func sameNames(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: model has %d features, builder produces %d",
			features.ErrFeatureMismatch, len(got), len(want))
	}
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	for i := range g {
		if g[i] != w[i] {
			return fmt.Errorf("%w: model feature %q not produced by builder",
				features.ErrFeatureMismatch, g[i])
		}
	}
	return nil
}

// Estimate builds the feature vector for raw and predicts its market value.
func (s *Service) Estimate(ctx context.Context, raw *player.RawPlayerInput) (types.Estimate, error) {
	if !s.started.Load() {
		return types.Estimate{}, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return types.Estimate{}, err
	}

	start := time.Now()
	requestID := uuid.NewString()

	est, err := s.estimate(raw)
	took := time.Since(start)
	latencyMs := float64(took.Microseconds()) / 1000
	if err != nil {
		code := Code(err)
		s.failures.Add(1)
		metrics.RecordPredictionError(code, latencyMs)
		s.logger.Warn(ctx, "estimate failed",
			logger.String("request_id", requestID),
			logger.String("code", code),
			logger.Duration("took", took),
			logger.Error(err),
		)
		return types.Estimate{}, err
	}

	est.RequestID = requestID
	s.estimates.Add(1)
	metrics.RecordPrediction(est.Position, est.ValueMillions, latencyMs)
	s.logger.Debug(ctx, "estimate served",
		logger.String("request_id", requestID),
		logger.String("position", est.Position),
		logger.String("team", est.Team),
		logger.Bool("on_loan", raw.OnLoan),
		logger.Float64("value_millions", est.ValueMillions),
		logger.Duration("took", took),
	)
	return est, nil
}

func (s *Service) estimate(raw *player.RawPlayerInput) (types.Estimate, error) {
	if raw == nil {
		return types.Estimate{}, fmt.Errorf("%w: empty input", player.ErrInvalidInput)
	}
	if err := raw.Validate(); err != nil {
		return types.Estimate{}, err
	}
	v, err := features.Build(raw, s.table)
	if err != nil {
		return types.Estimate{}, err
	}
	res, err := s.predictor.Predict(v)
	if err != nil {
		return types.Estimate{}, err
	}
	return types.Estimate{
		Position:      string(raw.Position),
		Team:          raw.Team,
		PositionScore: scoring.PositionScore(raw.Skills),
		Raw:           res.Raw,
		ValueMillions: res.Value,
		Display:       res.String(),
	}, nil
}

// EstimateBatch estimates every input on a bounded goroutine pool. The result
// has one item per input, in input order; a failing item carries its error
// and does not affect the others.
func (s *Service) EstimateBatch(ctx context.Context, raws []*player.RawPlayerInput) ([]types.BatchItem, error) {
	if !s.started.Load() {
		return nil, ErrNotStarted
	}
	if len(raws) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items, limit is %d", ErrBatchTooLarge, len(raws), s.maxBatchSize)
	}

	s.batches.Add(1)
	metrics.RecordBatchSize(len(raws))

	items := make([]types.BatchItem, len(raws))
	p := pool.New().WithMaxGoroutines(s.batchConcurrency)
	for idx, raw := range raws {
		p.Go(func() {
			item := types.BatchItem{Index: idx}
			est, err := s.Estimate(ctx, raw)
			if err != nil {
				item.Error = &types.Problem{Code: Code(err), Message: err.Error()}
			} else {
				item.Estimate = &est
			}
			items[idx] = item
		})
	}
	p.Wait()

	return items, nil
}

// MaxBatchSize returns the largest batch EstimateBatch accepts.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// Teams returns the known team names, sorted.
func (s *Service) Teams() []string {
	if s.table == nil {
		return nil
	}
	return s.table.Teams()
}

// Positions returns every position category with its skill keys.
func (s *Service) Positions() []types.PositionInfo {
	out := make([]types.PositionInfo, 0, len(player.Positions))
	for _, p := range player.Positions {
		out = append(out, types.PositionInfo{Name: string(p), Skills: player.SkillNames(p)})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"started":          s.started.Load(),
		"batchConcurrency": s.batchConcurrency,
		"maxBatchSize":     s.maxBatchSize,
		"estimates":        s.estimates.Load(),
		"failures":         s.failures.Load(),
		"batches":          s.batches.Load(),
		"contract":         features.BuilderContract.String(),
	}
	if s.table != nil {
		stats["teams"] = s.table.Len()
	}
	return stats
}
