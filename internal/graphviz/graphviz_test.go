// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphviz

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/openie-runner/internal/process"
	"github.com/pdiddy/openie-runner/pkg/types"
)

type fakeExecutor struct {
	bins  map[string]bool
	err   error
	calls []process.Command
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeExecutor) Run(ctx context.Context, c process.Command) error {
	f.calls = append(f.calls, c)
	return f.err
}

var obama = []types.Record{
	{Subject: "Barack Obama", Relation: "was", Object: "born"},
	{Subject: "Barack Obama", Relation: "was born in", Object: "Hawaii"},
}

func TestDescribe(t *testing.T) {
	want := "digraph {\n" +
		"  \"Barack Obama\" -> \"born\" [ label=\"was\" ];\n" +
		"  \"Barack Obama\" -> \"Hawaii\" [ label=\"was born in\" ];\n" +
		"}\n"
	assert.Equal(t, want, Describe(obama))
}

func TestDescribe_Empty(t *testing.T) {
	desc := Describe(nil)
	assert.Equal(t, "digraph {\n}\n", desc)

	edges, err := ParseEdges(desc)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestDescribe_RoundTrip(t *testing.T) {
	records := []types.Record{
		{Subject: "Barack Obama", Relation: " was", Object: " born"},
		{Subject: `the "Big" Apple`, Relation: `is called`, Object: `C:\city`},
		{Subject: "a", Relation: "line\nbreak", Object: "b"},
		{Subject: "", Relation: "", Object: ""},
		{Subject: "Barack Obama", Relation: "was born in", Object: "Hawaii"},
	}

	edges, err := ParseEdges(Describe(records))
	require.NoError(t, err)
	require.Len(t, edges, len(records))
	for i, r := range records {
		assert.Equal(t, Edge{From: r.Subject, To: r.Object, Label: r.Relation}, edges[i], "edge %d", i)
	}
}

func TestParseEdges_Invalid(t *testing.T) {
	tests := []struct {
		name string
		desc string
	}{
		{name: "not a digraph", desc: "graph { }"},
		{name: "missing closing brace", desc: "digraph {"},
		{name: "unquoted node", desc: `digraph { a -> "b" [ label="r" ]; }`},
		{name: "missing arrow", desc: `digraph { "a" "b" [ label="r" ]; }`},
		{name: "missing label", desc: `digraph { "a" -> "b"; }`},
		{name: "unterminated label", desc: `digraph { "a" -> "b" [ label="r ]; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEdges(tt.desc)
			assert.Error(t, err)
		})
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	dotPath := filepath.Join(dir, "out.dot")
	imgPath := filepath.Join(dir, "out.png")
	exec := &fakeExecutor{}
	r := newRenderer(types.GraphConfig{}, exec)

	var log bytes.Buffer
	require.NoError(t, r.Render(context.Background(), obama, dotPath, imgPath, &log))

	data, err := os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.Equal(t, Describe(obama), string(data))

	require.Len(t, exec.calls, 1)
	assert.Equal(t, "dot", exec.calls[0].Name)
	assert.Equal(t, []string{"-Tpng", dotPath, "-o", imgPath}, exec.calls[0].Args)
	assert.Equal(t, "Wrote graph to "+dotPath+" and "+imgPath+"\n", log.String())
}

func TestRender_CustomFormat(t *testing.T) {
	exec := &fakeExecutor{}
	r := newRenderer(types.GraphConfig{Dot: "/usr/local/bin/dot", Format: "svg"}, exec)
	assert.Equal(t, "svg", r.Format())

	cmd := r.Command("g.dot", "g.svg")
	assert.Equal(t, "/usr/local/bin/dot", cmd.Name)
	assert.Equal(t, []string{"-Tsvg", "g.dot", "-o", "g.svg"}, cmd.Args)
}

func TestRender_DotFails(t *testing.T) {
	dir := t.TempDir()
	dotPath := filepath.Join(dir, "out.dot")
	exitErr := &process.ExitError{Name: "dot", Code: 1, Stderr: "syntax error"}
	r := newRenderer(types.GraphConfig{}, &fakeExecutor{err: exitErr})

	var log bytes.Buffer
	err := r.Render(context.Background(), obama, dotPath, filepath.Join(dir, "out.png"), &log)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailed)
	assert.ErrorIs(t, err, exitErr)
	assert.Empty(t, log.String(), "success message must not be printed on failure")

	_, statErr := os.Stat(dotPath)
	assert.NoError(t, statErr, "description file is kept")
}

func TestRender_UnwritableDescription(t *testing.T) {
	exec := &fakeExecutor{}
	r := newRenderer(types.GraphConfig{}, exec)
	missing := filepath.Join(t.TempDir(), "nope")

	err := r.Render(context.Background(), obama, filepath.Join(missing, "out.dot"), filepath.Join(missing, "out.png"), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrRenderFailed)
	assert.Empty(t, exec.calls, "dot must not run without a description")
}

func TestCheck(t *testing.T) {
	assert.NoError(t, newRenderer(types.GraphConfig{}, &fakeExecutor{bins: map[string]bool{"dot": true}}).Check())
	assert.Error(t, newRenderer(types.GraphConfig{}, &fakeExecutor{}).Check())
}
