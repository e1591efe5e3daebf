package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/threatsmith/povforge-cli/api/schemas"
	"github.com/threatsmith/povforge-cli/internal/engine"
	"github.com/threatsmith/povforge-cli/internal/generator"
	"github.com/threatsmith/povforge-cli/internal/registry"
	"github.com/threatsmith/povforge-cli/internal/scenario"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memWriter collects written artifacts in memory.
type memWriter struct {
	mu        sync.Mutex
	artifacts []schemas.GeneratedArtifact
	closed    bool
}

func (w *memWriter) Write(artifact schemas.GeneratedArtifact) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.artifacts = append(w.artifacts, artifact)
	return nil
}

func (w *memWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.artifacts)
}

// failingWriter fails every write.
type failingWriter struct{}

func (failingWriter) Write(schemas.GeneratedArtifact) error { return errors.New("disk full") }
func (failingWriter) Close() error                          { return nil }

func scenarioFiles(n int) []scenario.File {
	files := make([]scenario.File, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, scenario.File{
			Path: fmt.Sprintf("scenario_%02d.yaml", i),
			Scenario: schemas.ThreatScenario{
				Name:       fmt.Sprintf("Dropper Variant %02d", i),
				Category:   schemas.CategoryEndpoint,
				Severity:   schemas.SeverityHigh,
				Indicators: []string{"process injection"},
			},
		})
	}
	return files
}

func newTestEngine(t *testing.T, writer *memWriter, concurrency int) *engine.Engine {
	t.Helper()
	gen := generator.New(registry.NewWithBuiltins(), zaptest.NewLogger(t), generator.Options{})
	return engine.New(gen, writer, zaptest.NewLogger(t), concurrency)
}

func TestBuildJobs(t *testing.T) {
	files := scenarioFiles(2)

	jobs := engine.BuildJobs(registry.KeyWindowsDefender, files, nil)
	require.Len(t, jobs, 2)
	assert.Equal(t, schemas.AllArtifactKinds, jobs[0].Kinds)
	assert.Equal(t, registry.KeyWindowsDefender, jobs[0].SchemaKey)

	jobs = engine.BuildJobs(registry.KeyWindowsDefender, files, []schemas.ArtifactKind{schemas.ArtifactRule})
	assert.Equal(t, []schemas.ArtifactKind{schemas.ArtifactRule}, jobs[1].Kinds)
}

func TestEngine_Run(t *testing.T) {
	writer := &memWriter{}
	eng := newTestEngine(t, writer, 3)

	jobs := engine.BuildJobs(registry.KeyWindowsDefender, scenarioFiles(5), nil)
	require.NoError(t, eng.Run(context.Background(), jobs))

	// 5 scenarios x 4 artifact kinds, every title unique.
	require.Equal(t, 20, writer.count())
	titles := make(map[string]bool)
	for _, artifact := range writer.artifacts {
		assert.False(t, titles[artifact.Title], "duplicate title %s", artifact.Title)
		titles[artifact.Title] = true
	}
}

func TestEngine_RunSingleKind(t *testing.T) {
	writer := &memWriter{}
	eng := newTestEngine(t, writer, 2)

	jobs := engine.BuildJobs(registry.KeyCrowdStrike, scenarioFiles(3), []schemas.ArtifactKind{schemas.ArtifactPlaybook})
	require.NoError(t, eng.Run(context.Background(), jobs))

	require.Equal(t, 3, writer.count())
	for _, artifact := range writer.artifacts {
		assert.Equal(t, schemas.ArtifactPlaybook, artifact.Kind)
	}
}

func TestEngine_RunNoJobs(t *testing.T) {
	writer := &memWriter{}
	eng := newTestEngine(t, writer, 2)

	require.NoError(t, eng.Run(context.Background(), nil))
	assert.Zero(t, writer.count())
}

func TestEngine_UnknownSchemaKeyFailsRun(t *testing.T) {
	writer := &memWriter{}
	eng := newTestEngine(t, writer, 2)

	jobs := engine.BuildJobs("no_such_schema", scenarioFiles(3), nil)
	err := eng.Run(context.Background(), jobs)
	require.Error(t, err)

	var notFound *registry.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEngine_WriteFailureAborts(t *testing.T) {
	gen := generator.New(registry.NewWithBuiltins(), zaptest.NewLogger(t), generator.Options{})
	eng := engine.New(gen, failingWriter{}, zaptest.NewLogger(t), 2)

	jobs := engine.BuildJobs(registry.KeyWindowsDefender, scenarioFiles(4), nil)
	err := eng.Run(context.Background(), jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing artifacts for")
	assert.Contains(t, err.Error(), "disk full")
}

func TestEngine_CancelledContext(t *testing.T) {
	writer := &memWriter{}
	eng := newTestEngine(t, writer, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Run(ctx, engine.BuildJobs(registry.KeyWindowsDefender, scenarioFiles(2), nil))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, writer.count())
}
