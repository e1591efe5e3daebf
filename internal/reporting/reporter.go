// Package reporting persists generated artifacts either as files in an
// output directory or as an annotated stream on standard output.
package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// Writer persists generated artifacts to an output destination.
type Writer interface {
	// Write persists a single artifact.
	Write(artifact schemas.GeneratedArtifact) error
	// Close finalizes the output and releases any underlying resources.
	Close() error
}

// Extension returns the filename extension matching an artifact kind's
// serialization format.
func Extension(kind schemas.ArtifactKind) string {
	if kind == schemas.ArtifactPlaybook {
		return "yaml"
	}
	return "json"
}

// New creates a Writer for the configured output directory. An empty
// directory or the literal "stdout" streams artifacts to standard output
// instead of creating files.
func New(outputDir string, logger *zap.Logger) (Writer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if outputDir == "" || outputDir == "stdout" {
		return NewStream(os.Stdout), nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	return &dirWriter{dir: outputDir, logger: logger.Named("reporting")}, nil
}

// dirWriter writes each artifact to <dir>/<title>.<ext>, overwriting any
// existing file of the same name.
type dirWriter struct {
	dir     string
	logger  *zap.Logger
	written int
}

func (w *dirWriter) Write(artifact schemas.GeneratedArtifact) error {
	name := fmt.Sprintf("%s.%s", artifact.Title, Extension(artifact.Kind))
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(artifact.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}

	w.logger.Info("Wrote artifact",
		zap.String("kind", string(artifact.Kind)),
		zap.String("path", path),
	)
	for _, key := range sortedSummaryKeys(artifact.Summary) {
		w.logger.Debug("Artifact summary",
			zap.String("check", key),
			zap.String("result", artifact.Summary[key]),
		)
	}

	w.written++
	return nil
}

func (w *dirWriter) Close() error {
	w.logger.Info("Artifact output complete",
		zap.Int("artifacts", w.written),
		zap.String("directory", w.dir),
	)
	return nil
}

// NewStream creates a Writer that streams each artifact to out, framed by a
// banner line and followed by its summary acknowledgements. Close does not
// close out.
func NewStream(out io.Writer) Writer {
	return &streamWriter{out: out}
}

type streamWriter struct {
	out io.Writer
}

func (s *streamWriter) Write(artifact schemas.GeneratedArtifact) error {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s: %s ===\n", artifact.Kind, artifact.Title)
	b.WriteString(artifact.Content)
	if !strings.HasSuffix(artifact.Content, "\n") {
		b.WriteByte('\n')
	}
	for _, key := range sortedSummaryKeys(artifact.Summary) {
		b.WriteString(artifact.Summary[key])
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(s.out, b.String()); err != nil {
		return fmt.Errorf("failed to stream artifact %s: %w", artifact.Title, err)
	}
	return nil
}

func (s *streamWriter) Close() error {
	return nil
}

// sortedSummaryKeys orders summary entries for stable output.
func sortedSummaryKeys(summary map[string]string) []string {
	keys := make([]string, 0, len(summary))
	for key := range summary {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
