package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lexikit/wordforge/internal/checkpoint"
	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/generator"
	"github.com/lexikit/wordforge/internal/model"
	"github.com/lexikit/wordforge/internal/output"
	"github.com/lexikit/wordforge/internal/scheduler"
	"github.com/lexikit/wordforge/internal/source"
	"github.com/lexikit/wordforge/internal/store"
	"github.com/lexikit/wordforge/internal/validate"
	"github.com/lexikit/wordforge/pkg/gemini"
)

var generateCmd = &cobra.Command{
	Use:   "generate [level...]",
	Short: "Generate enriched wordlist artifacts",
	Long: "Loads the source dataset for each level, enriches pending items in " +
		"rate-limited batches, and writes the merged artifact. Progress is " +
		"checkpointed per batch; an interrupted run resumes where it stopped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		all, _ := cmd.Flags().GetBool("all")
		levels, err := resolveLevels(args, all)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		opts, err := generateOptions(cmd)
		if err != nil {
			return err
		}

		for _, level := range levels {
			if err := generateLevel(ctx, st, level, opts); err != nil {
				return eris.Wrapf(err, "generate %s", level.Key)
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("all", false, "generate every level in the catalog")
	generateCmd.Flags().Bool("no-api", false, "skip enrichment; rebuild artifacts from existing checkpoints")
	generateCmd.Flags().Bool("fresh", false, "discard the checkpoint and re-enrich everything")
	generateCmd.Flags().Int("sample", 0, "limit to the first N source items (smoke testing)")
	generateCmd.Flags().Int("batch-size", 0, "override the level's batch size")
	rootCmd.AddCommand(generateCmd)
}

type generateOpts struct {
	noAPI     bool
	fresh     bool
	sample    int
	batchSize int
}

func generateOptions(cmd *cobra.Command) (generateOpts, error) {
	var opts generateOpts
	var err error
	if opts.noAPI, err = cmd.Flags().GetBool("no-api"); err != nil {
		return opts, err
	}
	if opts.fresh, err = cmd.Flags().GetBool("fresh"); err != nil {
		return opts, err
	}
	if opts.sample, err = cmd.Flags().GetInt("sample"); err != nil {
		return opts, err
	}
	if opts.batchSize, err = cmd.Flags().GetInt("batch-size"); err != nil {
		return opts, err
	}
	return opts, nil
}

// resolveLevels maps positional args (or --all) to catalog levels.
func resolveLevels(args []string, all bool) ([]domain.Level, error) {
	if all {
		return domain.Catalog()
	}
	if len(args) == 0 {
		return nil, eris.Errorf("no levels given; pass level keys (e.g. %s) or --all", exampleKeys())
	}
	levels := make([]domain.Level, 0, len(args))
	for _, key := range args {
		level, err := domain.Find(key)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func exampleKeys() string {
	keys := domain.Keys()
	if len(keys) > 3 {
		keys = keys[:3]
	}
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}

func generateLevel(ctx context.Context, st store.Store, level domain.Level, opts generateOpts) error {
	items, err := source.NewDir(cfg.Source.Dir).Load(level)
	if err != nil {
		return err
	}
	if opts.sample > 0 && len(items) > opts.sample {
		items = items[:opts.sample]
	}
	zap.L().Info("level loaded",
		zap.String("level", level.Key),
		zap.Int("items", len(items)))

	ckPath := filepath.Join(cfg.Checkpoint.Dir, level.Checkpoint)
	if err := os.MkdirAll(filepath.Dir(ckPath), 0o755); err != nil {
		return eris.Wrap(err, "create checkpoint dir")
	}
	ck := checkpoint.New(ckPath, level.Domain)

	// The log is single-writer. Take the lock before touching it, in
	// particular before --fresh discards it: removing the log while
	// another run holds the lock would destroy its progress.
	if !opts.noAPI || opts.fresh {
		lock, err := checkpoint.Acquire(ckPath)
		if err != nil {
			return err
		}
		defer lock.Release() //nolint:errcheck
	}
	if opts.fresh {
		if err := os.Remove(ckPath); err != nil && !os.IsNotExist(err) {
			return eris.Wrap(err, "remove checkpoint")
		}
		zap.L().Info("checkpoint discarded", zap.String("path", ckPath))
	}

	if opts.noAPI {
		runID := uuid.NewString()
		if _, err := st.CreateRun(ctx, runID, level.Key, level.Domain); err != nil {
			return err
		}
		return buildArtifact(ctx, st, level, items, ck, runID, scheduler.Result{})
	}

	gen, err := newGenerator()
	if err != nil {
		return err
	}
	validator := validate.New(validate.SchemaFor(level.Exam), validate.Policy(cfg.Validator.Policy))

	batchSize := opts.batchSize
	if batchSize <= 0 {
		batchSize = cfg.Scheduler.BatchSize
	}
	sched := scheduler.New(gen, ck, validator, scheduler.Config{
		BatchSize:         batchSize,
		RequestsPerMinute: cfg.Scheduler.RequestsPerMinute,
		MaxRetries:        cfg.Scheduler.MaxRetries,
		RetryDelay:        time.Duration(cfg.Scheduler.RetryDelaySecs) * time.Second,
	})

	if _, err := st.CreateRun(ctx, sched.RunID(), level.Key, level.Domain); err != nil {
		return err
	}

	result, runErr := sched.Run(ctx, level, items)
	if runErr != nil {
		stats := model.RunStats{
			BatchesDone:    result.BatchesDone,
			GeneratorCalls: result.GeneratorCalls,
		}
		if err := st.FinishRun(ctx, sched.RunID(), model.RunStatusAborted, &stats); err != nil {
			zap.L().Warn("record aborted run", zap.Error(err))
		}
		return runErr
	}

	return buildArtifact(ctx, st, level, items, ck, sched.RunID(), result)
}

// buildArtifact merges the checkpoint onto the source items, writes the
// artifact, and records the run outcome.
func buildArtifact(ctx context.Context, st store.Store, level domain.Level, items []model.Item, ck *checkpoint.Store, runID string, result scheduler.Result) error {
	done, err := ck.Load()
	if err != nil {
		return err
	}

	builder := output.New(level)
	list := builder.Build(items, done)

	outPath := filepath.Join(cfg.Output.Dir, level.Output)
	if err := output.WriteFile(outPath, list); err != nil {
		return err
	}

	stats := output.Stats(list.Words)
	stats.BatchesDone = result.BatchesDone
	stats.GeneratorCalls = result.GeneratorCalls

	if err := st.FinishRun(ctx, runID, model.RunStatusComplete, &stats); err != nil {
		return err
	}

	fmt.Printf("%s: %d words -> %s (%d/%d translated, %d with examples)\n",
		level.Key, stats.TotalWords, outPath, stats.WithTranslation, stats.TotalWords, stats.WithExamples)
	return nil
}

func newGenerator() (generator.Generator, error) {
	var opts []gemini.Option
	if cfg.Gemini.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.Gemini.BaseURL))
	}
	if cfg.Gemini.Model != "" {
		opts = append(opts, gemini.WithModel(cfg.Gemini.Model))
	}
	gen, err := generator.NewGemini(cfg.Gemini.Key, opts...)
	if eris.Is(err, generator.ErrNoCredentials) {
		return nil, eris.Wrap(err, "set WORDFORGE_GEMINI_KEY, or pass --no-api to rebuild from checkpoints")
	}
	return gen, err
}
