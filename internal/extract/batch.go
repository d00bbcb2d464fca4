package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/openie-runner/pkg/types"
)

// resultSuffix names the per-source result files in an output directory.
const resultSuffix = "-triples.yaml"

// BatchSummary holds counts from a per-file extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of input files processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any input failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// SourceID derives the result identifier for an input file: its base name
// without extension.
func SourceID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ResultPath returns where ExtractFiles writes the result for an input.
func ResultPath(outDir, input string) string {
	return filepath.Join(outDir, SourceID(input)+resultSuffix)
}

// ExtractFiles runs the engine once per input file and writes each result to
// outDir/<source>-triples.yaml. Inputs older than their existing result are
// skipped. A failing input is reported on w and counted; it does not stop
// the batch. Graph rendering is not done in batch mode.
//
// Up to cfg.Engine.Jobs inputs are extracted at once. More than one job
// needs a temporary workspace per run, so a fixed workspace is rejected.
func ExtractFiles(ctx context.Context, cfg types.RunnerConfig, req types.Request, outDir string, w io.Writer, opts ...Option) (BatchSummary, error) {
	jobs := cfg.Engine.Jobs
	if jobs < 1 {
		jobs = 1
	}
	if jobs > 1 && cfg.Workspace.Dir != "" {
		return BatchSummary{}, fmt.Errorf("%d jobs cannot share the fixed workspace %s", jobs, cfg.Workspace.Dir)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	inputs := req.InputFiles
	if len(inputs) == 0 {
		inputs = []string{DefaultInputFile}
	}

	b := &batch{cfg: cfg, req: req, outDir: outDir, w: w, opts: opts}
	sem := semaphore.NewWeighted(int64(jobs))
	var wg sync.WaitGroup
	var ctxErr error
	for _, input := range inputs {
		if err := sem.Acquire(ctx, 1); err != nil {
			ctxErr = err
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			b.extractOne(ctx, input)
		}()
	}
	wg.Wait()

	summary := b.summary
	if ctxErr != nil {
		return summary, ctxErr
	}

	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		summary.Extracted, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// batch is the state shared by the workers of one ExtractFiles call.
type batch struct {
	cfg    types.RunnerConfig
	req    types.Request
	outDir string
	opts   []Option

	mu      sync.Mutex
	w       io.Writer
	summary BatchSummary
}

func (b *batch) report(count *int, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.w, format, args...)
	if count != nil {
		*count++
	}
}

func (b *batch) extractOne(ctx context.Context, input string) {
	source := SourceID(input)
	outPath := ResultPath(b.outDir, input)

	changed, err := hasChanged(input, outPath)
	if err != nil {
		b.report(&b.summary.Failed, "failed  %s: %v\n", source, err)
		return
	}
	if !changed {
		b.report(&b.summary.Skipped, "skipped %s\n", source)
		return
	}

	b.report(nil, "extracting %s\n", source)

	one := b.req
	one.InputFiles = []string{input}
	one.RenderGraph = false
	records, err := Extract(ctx, b.cfg, one, b.opts...)
	if err != nil {
		b.report(&b.summary.Failed, "failed  %s: %v\n", source, err)
		return
	}

	result := &types.ExtractionResult{
		Source:      source,
		Files:       one.InputFiles,
		Records:     records,
		ExtractedAt: time.Now().UTC(),
	}
	if err := writeResult(outPath, result); err != nil {
		b.report(&b.summary.Failed, "failed  %s: write error: %v\n", source, err)
		return
	}

	b.report(&b.summary.Extracted, "extracted %s (%d triples)\n", source, len(records))
}

// hasChanged reports whether the input is newer than its result file.
// Returns true if the result does not exist or the input is more recent.
func hasChanged(inputPath, outPath string) (bool, error) {
	inInfo, err := os.Stat(inputPath)
	if err != nil {
		return false, fmt.Errorf("stat input %s: %w", inputPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return inInfo.ModTime().After(outInfo.ModTime()), nil
}

// writeResult marshals the ExtractionResult to a YAML file.
func writeResult(path string, result *types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResult loads a result written by ExtractFiles.
func ReadResult(path string) (*types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &result, nil
}
