// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine invokes the external OpenIE extraction engine. The engine
// is a Java program distributed as jars; it reads the input files and
// prints one relation per line to stdout, which is redirected to a file.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/openie-runner/internal/process"
	"github.com/pdiddy/openie-runner/pkg/types"
)

// Defaults for EngineConfig fields left empty.
const (
	DefaultDir         = "stanford-openie"
	DefaultJava        = "java"
	DefaultHeap        = "4g"
	DefaultMainClass   = "edu.stanford.nlp.naturalli.OpenIE"
	DefaultFormat      = "ollie"
	DefaultInputPrefix = ".."
)

// DefaultJars is the engine classpath relative to the engine directory.
var DefaultJars = []string{"stanford-openie.jar", "stanford-openie-models.jar", "lib/*"}

// WithDefaults returns cfg with empty fields filled in.
func WithDefaults(cfg types.EngineConfig) types.EngineConfig {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.Java == "" {
		cfg.Java = DefaultJava
	}
	if cfg.Heap == "" {
		cfg.Heap = DefaultHeap
	}
	if len(cfg.Jars) == 0 {
		cfg.Jars = append([]string(nil), DefaultJars...)
	}
	if cfg.MainClass == "" {
		cfg.MainClass = DefaultMainClass
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	if cfg.InputPrefix == "" {
		cfg.InputPrefix = DefaultInputPrefix
	}
	return cfg
}

// ResolveInputs maps input paths to the form the engine sees from its own
// directory: absolute paths are kept, relative paths are joined to prefix.
func ResolveInputs(files []string, prefix string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		if filepath.IsAbs(f) {
			out[i] = f
			continue
		}
		out[i] = filepath.Join(prefix, f)
	}
	return out
}

// InputPaths resolves files for the engine described by cfg (defaults
// applied). The default ".." prefix leads back to the working directory only
// when the engine directory is a direct child of it; for any other engine
// directory relative inputs are made absolute instead. A prefix other than
// the default is always honored.
func InputPaths(cfg types.EngineConfig, files []string) ([]string, error) {
	cfg = WithDefaults(cfg)
	if cfg.InputPrefix != DefaultInputPrefix || filepath.Clean(filepath.Join(cfg.Dir, DefaultInputPrefix)) == "." {
		return ResolveInputs(files, cfg.InputPrefix), nil
	}

	out := make([]string, len(files))
	for i, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving input %s: %w", f, err)
		}
		out[i] = abs
	}
	return out, nil
}

// Engine runs the extraction engine with a fixed configuration.
type Engine struct {
	cfg  types.EngineConfig
	exec process.Executor
}

// New creates an Engine. Empty configuration fields take their defaults.
func New(cfg types.EngineConfig) *Engine {
	return newEngine(cfg, process.OS)
}

func newEngine(cfg types.EngineConfig, exec process.Executor) *Engine {
	return &Engine{cfg: WithDefaults(cfg), exec: exec}
}

// Config returns the effective configuration.
func (e *Engine) Config() types.EngineConfig { return e.cfg }

// Command builds the engine invocation for files, which must already be
// resolved with InputPaths. stdout is where the engine output goes.
func (e *Engine) Command(files []string, stdout io.Writer) process.Command {
	classpath := strings.Join(e.cfg.Jars, string(os.PathListSeparator))

	args := make([]string, 0, len(files)+6)
	args = append(args, "-mx"+e.cfg.Heap, "-cp", classpath, e.cfg.MainClass)
	args = append(args, files...)
	args = append(args, "-format", e.cfg.Format)

	return process.Command{
		Name:   e.cfg.Java,
		Args:   args,
		Dir:    e.cfg.Dir,
		Stdout: stdout,
	}
}

// Run executes the engine over files and writes its stdout to outPath,
// creating or truncating it. When verbose is non-nil the output is also
// copied to it line by line as the engine produces it. Run returns once
// the engine has exited; a non-zero exit is reported as *process.ExitError.
func (e *Engine) Run(ctx context.Context, files []string, outPath string, verbose io.Writer) error {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating engine output file: %w", err)
	}

	var stdout io.Writer = f
	var lw *process.LineWriter
	if verbose != nil {
		lw = &process.LineWriter{W: verbose}
		stdout = io.MultiWriter(f, lw)
	}

	runErr := e.exec.Run(ctx, e.Command(files, stdout))
	if lw != nil {
		lw.Flush()
	}
	if err := f.Close(); err != nil && runErr == nil {
		return fmt.Errorf("closing engine output file: %w", err)
	}
	return runErr
}

// Check reports whether the engine can be run: the JVM must be on PATH and
// every non-wildcard classpath entry must exist under the engine directory.
func (e *Engine) Check() error {
	var errs []error
	if _, err := e.exec.LookPath(e.cfg.Java); err != nil {
		errs = append(errs, fmt.Errorf("%s not found: %w", e.cfg.Java, err))
	}
	info, err := os.Stat(e.cfg.Dir)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("engine directory %s: %w", e.cfg.Dir, err))
	case !info.IsDir():
		errs = append(errs, fmt.Errorf("engine directory %s is not a directory", e.cfg.Dir))
	default:
		for _, jar := range e.cfg.Jars {
			if strings.HasSuffix(jar, "*") {
				continue
			}
			p := jar
			if !filepath.IsAbs(p) {
				p = filepath.Join(e.cfg.Dir, jar)
			}
			if _, err := os.Stat(p); err != nil {
				errs = append(errs, fmt.Errorf("engine jar %s: %w", p, err))
			}
		}
	}
	return errors.Join(errs...)
}
