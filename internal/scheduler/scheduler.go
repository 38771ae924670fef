// Package scheduler drives enrichment runs: it computes the pending
// set from the checkpoint, partitions it into batches, and serializes
// rate-limited generator calls with per-batch retries. A batch counts
// as done only after its records are appended to the checkpoint, so an
// aborted run resumes exactly where it stopped.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexikit/wordforge/internal/checkpoint"
	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/generator"
	"github.com/lexikit/wordforge/internal/model"
	"github.com/lexikit/wordforge/internal/validate"
)

const defaultBatchSize = 20

// Config tunes one run.
type Config struct {
	// BatchSize overrides the level's batch size when positive.
	BatchSize int
	// RequestsPerMinute caps generator calls. Zero or negative disables
	// the limiter.
	RequestsPerMinute int
	// MaxRetries is the number of attempts per batch before the run
	// aborts.
	MaxRetries int
	// RetryDelay is the base backoff; attempt n waits n*RetryDelay.
	RetryDelay time.Duration
}

// Result summarizes a finished or aborted run.
type Result struct {
	Pending        int
	BatchesDone    int
	BatchesTotal   int
	GeneratorCalls int
	Appended       int
	Requeued       int
}

// Scheduler owns the limiter and generator handle for a single run.
type Scheduler struct {
	gen       generator.Generator
	store     *checkpoint.Store
	validator *validate.Validator
	limiter   *rate.Limiter
	cfg       Config
	runID     string
}

// New creates a scheduler for one run. MaxRetries below one is raised
// to one attempt.
func New(gen generator.Generator, store *checkpoint.Store, validator *validate.Validator, cfg Config) *Scheduler {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &Scheduler{
		gen:       gen,
		store:     store,
		validator: validator,
		limiter:   rate.NewLimiter(limit, 1),
		cfg:       cfg,
		runID:     uuid.NewString(),
	}
}

// RunID identifies this run; appended records carry it as provenance.
func (s *Scheduler) RunID() string { return s.runID }

// Pending returns the items that have no checkpoint entry, in source
// order.
func Pending(items []model.Item, done map[string]model.Record) []model.Item {
	var pending []model.Item
	for _, it := range items {
		if _, ok := done[it.ID()]; !ok {
			pending = append(pending, it)
		}
	}
	return pending
}

// Partition chunks items sequentially; the last chunk may be smaller.
func Partition(items []model.Item, size int) [][]model.Item {
	if size <= 0 {
		size = defaultBatchSize
	}
	var batches [][]model.Item
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

// Run enriches every pending item for the level. It aborts on the first
// batch that exhausts its retries, leaving all previously appended
// batches intact. Items dropped under the requeue policy get one extra
// pass at the end of the run.
func (s *Scheduler) Run(ctx context.Context, level domain.Level, items []model.Item) (Result, error) {
	var res Result

	done, err := s.store.Load()
	if err != nil {
		return res, err
	}

	pending := Pending(items, done)
	res.Pending = len(pending)
	if len(pending) == 0 {
		zap.L().Info("nothing pending", zap.String("level", level.Key))
		return res, nil
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = level.BatchSize
	}
	batches := Partition(pending, batchSize)
	res.BatchesTotal = len(batches)

	zap.L().Info("run started",
		zap.String("level", level.Key),
		zap.String("run_id", s.runID),
		zap.Int("pending", len(pending)),
		zap.Int("batches", len(batches)))

	var requeued []model.Item
	for i, batch := range batches {
		dropped, err := s.processBatch(ctx, level, batch, &res)
		if err != nil {
			zap.L().Error("run aborted",
				zap.String("level", level.Key),
				zap.Int("last_completed_batch", i),
				zap.Int("batches_total", len(batches)),
				zap.Error(err))
			return res, eris.Wrapf(err, "scheduler: batch %d/%d", i+1, len(batches))
		}
		requeued = append(requeued, dropped...)
	}

	// One extra pass for requeued items. A second drop leaves them
	// pending for a later run.
	if len(requeued) > 0 {
		res.Requeued = len(requeued)
		zap.L().Info("requeue pass", zap.Int("items", len(requeued)))
		for i, batch := range Partition(requeued, batchSize) {
			if _, err := s.processBatch(ctx, level, batch, &res); err != nil {
				return res, eris.Wrapf(err, "scheduler: requeue batch %d", i+1)
			}
		}
	}

	zap.L().Info("run complete",
		zap.String("level", level.Key),
		zap.Int("batches", res.BatchesDone),
		zap.Int("generator_calls", res.GeneratorCalls),
		zap.Int("appended", res.Appended))
	return res, nil
}

// processBatch generates with retries, validates, and appends. It
// returns the items whose records were dropped under PolicyRequeue.
func (s *Scheduler) processBatch(ctx context.Context, level domain.Level, batch []model.Item, res *Result) ([]model.Item, error) {
	records, err := s.generateWithRetry(ctx, level, batch, res)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Item, len(batch))
	for _, it := range batch {
		byID[it.ID()] = it
	}

	var accepted []model.Record
	var requeue []model.Item
	for _, rec := range records {
		issues := s.validator.Check(rec)
		for _, issue := range issues {
			zap.L().Warn("validation issue",
				zap.String("level", level.Key),
				zap.String("id", rec.PrimaryID()),
				zap.String("issue", issue))
		}
		if s.validator.Accepts(issues) {
			accepted = append(accepted, stamp(rec, s.runID))
			continue
		}
		if s.validator.Policy() == validate.PolicyRequeue {
			if it, ok := byID[rec.PrimaryID()]; ok {
				requeue = append(requeue, it)
			}
		}
	}

	if err := s.store.Append(accepted); err != nil {
		return nil, err
	}
	res.BatchesDone++
	res.Appended += len(accepted)
	return requeue, nil
}

func (s *Scheduler) generateWithRetry(ctx context.Context, level domain.Level, batch []model.Item, res *Result) ([]model.Record, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "scheduler: rate limit wait")
		}
		res.GeneratorCalls++

		records, err := s.gen.Generate(ctx, level, batch)
		if err == nil {
			return records, nil
		}
		lastErr = err
		zap.L().Warn("batch attempt failed",
			zap.String("level", level.Key),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", s.cfg.MaxRetries),
			zap.Error(err))

		if attempt < s.cfg.MaxRetries {
			select {
			case <-time.After(s.cfg.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "scheduler: backoff interrupted")
			}
		}
	}
	return nil, eris.Wrapf(lastErr, "scheduler: %d attempts exhausted", s.cfg.MaxRetries)
}

func stamp(rec model.Record, runID string) model.Record {
	switch r := rec.(type) {
	case model.LexicalRecord:
		r.Provenance = runID
		return r
	case model.KanjiRecord:
		r.Provenance = runID
		return r
	}
	return rec
}
