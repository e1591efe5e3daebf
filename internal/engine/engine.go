// Package engine runs batch content generation over a bounded worker pool.
// Generation fans out per scenario file; artifact writes are funneled through
// a single collector so the output writer needs no locking.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/threatsmith/povforge-cli/api/schemas"
	"github.com/threatsmith/povforge-cli/internal/generator"
	"github.com/threatsmith/povforge-cli/internal/reporting"
	"github.com/threatsmith/povforge-cli/internal/scenario"
)

// Job is one unit of batch work: every requested artifact kind for one
// scenario against one schema.
type Job struct {
	SchemaKey string
	File      scenario.File
	Kinds     []schemas.ArtifactKind
}

// Result carries the artifacts of one completed job.
type Result struct {
	Job       Job
	Artifacts []schemas.GeneratedArtifact
}

// BuildJobs pairs every scenario file with the schema key and requested
// artifact kinds. An empty kinds slice means all kinds.
func BuildJobs(key string, files []scenario.File, kinds []schemas.ArtifactKind) []Job {
	if len(kinds) == 0 {
		kinds = schemas.AllArtifactKinds
	}
	jobs := make([]Job, 0, len(files))
	for _, file := range files {
		jobs = append(jobs, Job{SchemaKey: key, File: file, Kinds: kinds})
	}
	return jobs
}

// Engine executes generation jobs concurrently up to a configured limit.
type Engine struct {
	generator   *generator.Generator
	writer      reporting.Writer
	logger      *zap.Logger
	concurrency int
}

// New creates an Engine. Concurrency values below one are raised to one, and
// a nil logger is replaced with a no-op logger.
func New(gen *generator.Generator, writer reporting.Writer, logger *zap.Logger, concurrency int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		generator:   gen,
		writer:      writer,
		logger:      logger.Named("engine"),
		concurrency: concurrency,
	}
}

// Run generates and writes artifacts for every job. The first generation or
// write failure cancels the remaining jobs and is returned after in-flight
// workers drain.
func (e *Engine) Run(ctx context.Context, jobs []Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	results := make(chan Result, e.concurrency)

	e.logger.Info("Starting batch generation",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", e.concurrency),
	)

	// Producer: submit jobs until done or the group context is cancelled.
	// g.Go blocks once the limit is reached, so submission is self-pacing.
	go func() {
		for _, job := range jobs {
			if groupCtx.Err() != nil {
				break
			}
			currentJob := job
			g.Go(func() error {
				return e.runJob(groupCtx, currentJob, results)
			})
		}
		g.Wait()
		close(results)
	}()

	var writeErr error
	for result := range results {
		if writeErr != nil {
			continue // drain so workers can finish
		}
		for _, artifact := range result.Artifacts {
			if err := e.writer.Write(artifact); err != nil {
				writeErr = fmt.Errorf("writing artifacts for %s: %w", result.Job.File.Path, err)
				cancel()
				break
			}
		}
		if writeErr == nil {
			e.logger.Info("Generated artifacts",
				zap.String("scenario", result.Job.File.Scenario.Name),
				zap.String("schema", result.Job.SchemaKey),
				zap.Int("artifacts", len(result.Artifacts)),
			)
		}
	}

	err := g.Wait()
	if writeErr != nil {
		// The write failure triggered the cancellation, so it is the root
		// cause even when workers report a context error.
		return writeErr
	}
	return err
}

func (e *Engine) runJob(ctx context.Context, job Job, results chan<- Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	artifacts := make([]schemas.GeneratedArtifact, 0, len(job.Kinds))
	for _, kind := range job.Kinds {
		artifact, err := e.generator.Generate(job.SchemaKey, job.File.Scenario, kind)
		if err != nil {
			return fmt.Errorf("generating %s for %s: %w", kind, job.File.Path, err)
		}
		artifacts = append(artifacts, artifact)
	}

	select {
	case results <- Result{Job: job, Artifacts: artifacts}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
