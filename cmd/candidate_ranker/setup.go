package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/anonymize"
	"github.com/jonathan/candidate-ranker/internal/cache"
	"github.com/jonathan/candidate-ranker/internal/config"
	"github.com/jonathan/candidate-ranker/internal/db"
	"github.com/jonathan/candidate-ranker/internal/observability"
	"github.com/jonathan/candidate-ranker/internal/pipeline"
	"github.com/jonathan/candidate-ranker/internal/ranking"
	"github.com/jonathan/candidate-ranker/internal/schemas"
	"github.com/jonathan/candidate-ranker/internal/source"
	"github.com/jonathan/candidate-ranker/internal/types"
)

// errNoSource is returned when neither a flag nor the config names a candidate source.
var errNoSource = errors.New("no candidate source: pass --candidates or set candidates_file, source_url or database_url")

// openSource picks the candidate source: an explicit file first, then the configured file,
// parsing service URL or database. The returned func releases it.
func openSource(ctx context.Context, cfg config.Config, file string) (source.Source, func(), error) {
	noop := func() {}

	if file == "" {
		file = cfg.CandidatesFile
	}

	switch {
	case file != "":
		return source.NewFileSource(file), noop, nil
	case cfg.SourceURL != "":
		opts := source.DefaultHTTPOptions()
		opts.RequestsPerSecond = cfg.SourceRPS
		opts.Logger = logger
		src, err := source.NewHTTPSource(cfg.SourceURL, opts)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db.NewSource(database, db.DefaultListLimit), database.Close, nil
	}

	return nil, noop, errNoSource
}

// loadRecords lists every record from the selected source.
// File sources are checked against the candidate schema first; mismatches only warn.
func loadRecords(cmd *cobra.Command, file string) ([]types.CandidateRecord, error) {
	src, release, err := openSource(cmd.Context(), appConfig, file)
	if err != nil {
		return nil, err
	}
	defer release()

	if fs, ok := src.(*source.FileSource); ok {
		warnSchema(cmd, fs.Path())
	}

	records, err := src.List(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	return records, nil
}

// warnSchema validates a candidate file when the schema can be found. It never fails the command.
func warnSchema(cmd *cobra.Command, path string) {
	if schemas.ResolveSchemaPath(schemas.CandidateRecordsSchema) == "" {
		return
	}
	if err := schemas.ValidateCandidateFile(path); err != nil {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintSchemaWarning(path, err)
	}
}

// newLabeler returns the keyed labeler when a key is configured, else sequential codes.
func newLabeler(key string) (anonymize.Labeler, error) {
	if key == "" {
		return anonymize.Sequential{}, nil
	}
	return anonymize.NewKeyed([]byte(key))
}

// newEngine builds the query engine from config. jitterMode overrides the configured mode when set.
// The returned func closes the enrichment cache, if any.
func newEngine(ctx context.Context, cfg config.Config, jitterMode string) (*pipeline.Engine, func(), error) {
	if jitterMode == "" {
		jitterMode = cfg.Jitter
	}
	jitter, err := ranking.ParseJitter(jitterMode, cfg.JitterSeed)
	if err != nil {
		return nil, nil, err
	}
	labeler, err := newLabeler(cfg.AnonymizationKey)
	if err != nil {
		return nil, nil, err
	}

	opts := pipeline.Options{
		Scorer:  ranking.NewScorer(jitter),
		Labeler: labeler,
		Logger:  logger,
		Workers: cfg.Workers,
	}

	closer := func() {}
	if cfg.RedisAddr != "" {
		store := cache.NewRedis(ctx, redisOptions(cfg))
		opts.Store = store
		closer = func() { _ = store.Close() }
	}

	return pipeline.NewEngine(opts), closer, nil
}

// redisOptions layers the config over the cache package's environment defaults.
func redisOptions(cfg config.Config) cache.Options {
	opts := cache.OptionsFromEnv()
	if cfg.RedisAddr != "" {
		opts.Addr = cfg.RedisAddr
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisTTLSeconds > 0 {
		opts.TTL = time.Duration(cfg.RedisTTLSeconds) * time.Second
	}
	opts.Logger = logger
	return opts
}

// writeJSON writes v as indented JSON to path, or to out when path is empty.
func writeJSON(out io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := out.Write(data)
		return err
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

// ensureDir creates the parent directory of path when needed.
func ensureDir(path string) error {
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	return nil
}
