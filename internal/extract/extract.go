// Package extract runs the extraction engine end to end: it stages the
// engine output in a workspace, parses it into records, and optionally
// renders the records as a graph.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/openie-runner/internal/engine"
	"github.com/pdiddy/openie-runner/internal/graphviz"
	"github.com/pdiddy/openie-runner/internal/ollie"
	"github.com/pdiddy/openie-runner/internal/process"
	"github.com/pdiddy/openie-runner/internal/workspace"
	"github.com/pdiddy/openie-runner/pkg/types"
)

// DefaultInputFile is used when a request names no input files.
const DefaultInputFile = "samples.txt"

// ErrEngineFailed wraps a failed or non-zero-exit engine run.
var ErrEngineFailed = errors.New("extraction engine failed")

// engineRunner is the part of *engine.Engine the runner uses.
type engineRunner interface {
	Command(files []string, stdout io.Writer) process.Command
	Run(ctx context.Context, files []string, outPath string, verbose io.Writer) error
}

// graphRenderer is the part of *graphviz.Renderer the runner uses.
type graphRenderer interface {
	Command(dotPath, imgPath string) process.Command
	Render(ctx context.Context, records []types.Record, dotPath, imgPath string, w io.Writer) error
	Format() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithOutput sets where console output goes. stdout receives the streamed
// engine output and graph messages; log receives diagnostics.
func WithOutput(stdout, log io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.log = log
	}
}

func withEngine(e engineRunner) Option { return func(r *Runner) { r.engine = e } }

func withRenderer(g graphRenderer) Option { return func(r *Runner) { r.renderer = g } }

// Runner performs one extraction run. Create it with NewRunner and release
// it with Close.
type Runner struct {
	req      types.Request
	files    []string
	engine   engineRunner
	renderer graphRenderer
	ws       *workspace.Workspace
	stdout   io.Writer
	log      io.Writer
	keep     bool
}

// NewRunner configures a run. An empty input list falls back to
// DefaultInputFile; relative inputs are resolved so the engine, running in
// its own directory, reads the same files (see engine.InputPaths). The
// inputs are not checked for existence: the engine reports unreadable files
// itself. The workspace is opened here.
func NewRunner(cfg types.RunnerConfig, req types.Request, opts ...Option) (*Runner, error) {
	cfg.Engine = engine.WithDefaults(cfg.Engine)

	if len(req.InputFiles) == 0 {
		req.InputFiles = []string{DefaultInputFile}
	}
	req.InputFiles = append([]string(nil), req.InputFiles...)

	files, err := engine.InputPaths(cfg.Engine, req.InputFiles)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		req:    req,
		files:  files,
		stdout: os.Stdout,
		log:    os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = engine.New(cfg.Engine)
	}
	if r.renderer == nil {
		r.renderer = graphviz.NewRenderer(cfg.Graph)
	}

	ws, err := workspace.Open(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	r.ws = ws
	return r, nil
}

// Request returns the request the runner was configured with.
func (r *Runner) Request() types.Request { return r.req }

// Files returns the input paths as handed to the engine.
func (r *Runner) Files() []string { return r.files }

// Workspace returns the runner's workspace.
func (r *Runner) Workspace() *workspace.Workspace { return r.ws }

// Run invokes the engine, parses its output, and renders the graph when
// requested. The engine output file is removed once read. A rendering
// failure is returned together with the parsed records.
func (r *Runner) Run(ctx context.Context) ([]types.Record, error) {
	outPath := r.ws.OutputPath()

	var verbose io.Writer
	if r.req.Verbose {
		verbose = r.stdout
		fmt.Fprintf(r.log, "Executing command = %s\n", r.engine.Command(r.files, nil))
	}

	if err := r.engine.Run(ctx, r.files, outPath, verbose); err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: %w", ErrEngineFailed, err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading engine output: %w", err)
	}
	if err := os.Remove(outPath); err != nil {
		return nil, fmt.Errorf("removing engine output: %w", err)
	}

	records, err := ollie.Parse(string(data), ollie.Options{TrimFields: r.req.TrimFields})
	if err != nil {
		return nil, fmt.Errorf("parsing engine output: %w", err)
	}

	if r.req.RenderGraph {
		dotPath := r.ws.DotPath()
		imgPath := r.ws.ImagePath(r.renderer.Format())
		if r.req.Verbose {
			fmt.Fprintf(r.log, "Executing command = %s\n", r.renderer.Command(dotPath, imgPath))
		}
		r.keep = true
		if err := r.renderer.Render(ctx, records, dotPath, imgPath, r.stdout); err != nil {
			return records, err
		}
	}

	return records, nil
}

// Close releases the workspace. Graph files, once written, are kept.
func (r *Runner) Close() error {
	return r.ws.Close(r.keep)
}

// Extract is NewRunner, Run and Close in one call.
func Extract(ctx context.Context, cfg types.RunnerConfig, req types.Request, opts ...Option) ([]types.Record, error) {
	r, err := NewRunner(cfg, req, opts...)
	if err != nil {
		return nil, err
	}
	records, runErr := r.Run(ctx)
	if err := r.Close(); err != nil && runErr == nil {
		return records, err
	}
	return records, runErr
}
