// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphviz renders extraction records as a directed graph. Each
// record becomes one edge from subject to object labeled with the
// relation. Layout is delegated to the Graphviz dot binary.
package graphviz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/openie-runner/internal/process"
	"github.com/pdiddy/openie-runner/pkg/types"
)

const (
	DefaultDot    = "dot"
	DefaultFormat = "png"
)

// ErrRenderFailed wraps any failure to produce the image.
var ErrRenderFailed = errors.New("graph rendering failed")

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// Describe returns the DOT description of records, one edge statement per
// record in order. No records yields a graph with no statements.
func Describe(records []types.Record) string {
	var b strings.Builder
	b.WriteString("digraph {\n")
	for _, r := range records {
		fmt.Fprintf(&b, "  \"%s\" -> \"%s\" [ label=\"%s\" ];\n",
			escaper.Replace(r.Subject), escaper.Replace(r.Object), escaper.Replace(r.Relation))
	}
	b.WriteString("}\n")
	return b.String()
}

// Renderer writes DOT descriptions and lays them out with the dot binary.
type Renderer struct {
	cfg  types.GraphConfig
	exec process.Executor
}

// NewRenderer creates a Renderer. Empty configuration fields take their
// defaults.
func NewRenderer(cfg types.GraphConfig) *Renderer {
	return newRenderer(cfg, process.OS)
}

func newRenderer(cfg types.GraphConfig, exec process.Executor) *Renderer {
	if cfg.Dot == "" {
		cfg.Dot = DefaultDot
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	return &Renderer{cfg: cfg, exec: exec}
}

// Format returns the image format, which is also the image file extension.
func (r *Renderer) Format() string { return r.cfg.Format }

// Command builds the dot invocation that lays out dotPath into imgPath.
func (r *Renderer) Command(dotPath, imgPath string) process.Command {
	return process.Command{
		Name: r.cfg.Dot,
		Args: []string{"-T" + r.cfg.Format, dotPath, "-o", imgPath},
	}
}

// Render writes the description of records to dotPath, runs dot to produce
// imgPath, and reports both paths on w. The description file is kept even
// when dot fails.
func (r *Renderer) Render(ctx context.Context, records []types.Record, dotPath, imgPath string, w io.Writer) error {
	if err := os.WriteFile(dotPath, []byte(Describe(records)), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrRenderFailed, dotPath, err)
	}
	if err := r.exec.Run(ctx, r.Command(dotPath, imgPath)); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	fmt.Fprintf(w, "Wrote graph to %s and %s\n", dotPath, imgPath)
	return nil
}

// Check reports whether the dot binary is on PATH.
func (r *Renderer) Check() error {
	if _, err := r.exec.LookPath(r.cfg.Dot); err != nil {
		return fmt.Errorf("%s not found: %w", r.cfg.Dot, err)
	}
	return nil
}
