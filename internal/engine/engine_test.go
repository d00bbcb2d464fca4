// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/openie-runner/internal/process"
	"github.com/pdiddy/openie-runner/pkg/types"
)

// fakeExecutor records the last command and writes canned output.
type fakeExecutor struct {
	bins   map[string]bool
	output string
	err    error
	last   process.Command
	ctx    context.Context
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeExecutor) Run(ctx context.Context, c process.Command) error {
	f.last = c
	f.ctx = ctx
	if c.Stdout != nil && f.output != "" {
		if _, err := io.WriteString(c.Stdout, f.output); err != nil {
			return err
		}
	}
	return f.err
}

func TestResolveInputs(t *testing.T) {
	tests := []struct {
		name   string
		files  []string
		prefix string
		want   []string
	}{
		{
			name:   "relative paths get the prefix",
			files:  []string{"text.txt", "data/text2.txt"},
			prefix: "..",
			want:   []string{"../text.txt", "../data/text2.txt"},
		},
		{
			name:   "absolute paths are kept",
			files:  []string{"/tmp/a.txt", "b.txt"},
			prefix: "/srv/project",
			want:   []string{"/tmp/a.txt", "/srv/project/b.txt"},
		},
		{
			name:  "empty list",
			files: []string{},
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveInputs(tt.files, tt.prefix))
		})
	}
}

func TestInputPaths(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name  string
		cfg   types.EngineConfig
		files []string
		want  []string
	}{
		{
			name:  "default engine dir uses the prefix",
			files: []string{"text.txt", "/tmp/a.txt"},
			want:  []string{"../text.txt", "/tmp/a.txt"},
		},
		{
			name:  "engine dir one level down uses the prefix",
			cfg:   types.EngineConfig{Dir: "./openie-4.2"},
			files: []string{"text.txt"},
			want:  []string{"../text.txt"},
		},
		{
			name:  "absolute engine dir makes inputs absolute",
			cfg:   types.EngineConfig{Dir: "/opt/openie"},
			files: []string{"text.txt", "/tmp/a.txt"},
			want:  []string{filepath.Join(wd, "text.txt"), "/tmp/a.txt"},
		},
		{
			name:  "nested engine dir makes inputs absolute",
			cfg:   types.EngineConfig{Dir: "vendor/openie"},
			files: []string{"data/text.txt"},
			want:  []string{filepath.Join(wd, "data", "text.txt")},
		},
		{
			name:  "explicit prefix is honored",
			cfg:   types.EngineConfig{Dir: "/opt/openie", InputPrefix: "/srv/corpus"},
			files: []string{"text.txt"},
			want:  []string{"/srv/corpus/text.txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InputPaths(tt.cfg, tt.files)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_TwoInputFiles(t *testing.T) {
	e := newEngine(types.EngineConfig{}, &fakeExecutor{})
	files := ResolveInputs([]string{"text.txt", "text2.txt"}, DefaultInputPrefix)

	cmd := e.Command(files, nil)

	assert.Equal(t, "java", cmd.Name)
	assert.Equal(t, "stanford-openie", cmd.Dir)
	sep := string(os.PathListSeparator)
	assert.Equal(t, []string{
		"-mx4g",
		"-cp", "stanford-openie.jar" + sep + "stanford-openie-models.jar" + sep + "lib/*",
		"edu.stanford.nlp.naturalli.OpenIE",
		"../text.txt", "../text2.txt",
		"-format", "ollie",
	}, cmd.Args)
}

func TestCommand_CustomConfig(t *testing.T) {
	e := newEngine(types.EngineConfig{
		Dir:       "/opt/openie",
		Java:      "/usr/lib/jvm/bin/java",
		Heap:      "2g",
		Jars:      []string{"openie.jar"},
		MainClass: "x.Main",
		Format:    "default",
	}, &fakeExecutor{})

	cmd := e.Command([]string{"/data/in.txt"}, nil)
	assert.Equal(t, "/usr/lib/jvm/bin/java", cmd.Name)
	assert.Equal(t, "/opt/openie", cmd.Dir)
	assert.Equal(t, []string{"-mx2g", "-cp", "openie.jar", "x.Main", "/data/in.txt", "-format", "default"}, cmd.Args)
}

func TestRun(t *testing.T) {
	const output = "1.000: (Barack Obama; was; born)\n1.000: (Barack Obama; was born in; Hawaii)\n"

	tests := []struct {
		name    string
		verbose bool
		err     error
	}{
		{name: "quiet run writes output file"},
		{name: "verbose run streams output", verbose: true},
		{name: "engine failure is returned", err: &process.ExitError{Name: "java", Code: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{output: output, err: tt.err}
			e := newEngine(types.EngineConfig{}, exec)
			outPath := filepath.Join(t.TempDir(), "out.txt")

			var console bytes.Buffer
			var verbose io.Writer
			if tt.verbose {
				verbose = &console
			}
			err := e.Run(context.Background(), []string{"../text.txt"}, outPath, verbose)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}

			data, readErr := os.ReadFile(outPath)
			require.NoError(t, readErr)
			assert.Equal(t, output, string(data))

			if tt.verbose {
				assert.Equal(t, output, console.String())
			} else {
				assert.Empty(t, console.String())
			}
		})
	}
}

func TestRun_SilentEngineLeavesEmptyOutput(t *testing.T) {
	e := newEngine(types.EngineConfig{}, &fakeExecutor{})
	out := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, e.Run(context.Background(), []string{"../a.txt"}, out, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err, "output file exists even when the engine prints nothing")
	assert.Empty(t, data)
}

func TestRun_Timeout(t *testing.T) {
	exec := &fakeExecutor{}
	e := newEngine(types.EngineConfig{Timeout: time.Minute}, exec)

	require.NoError(t, e.Run(context.Background(), nil, filepath.Join(t.TempDir(), "out.txt"), nil))
	_, ok := exec.ctx.Deadline()
	assert.True(t, ok, "engine context should carry a deadline")
}

func TestRun_UnwritableOutput(t *testing.T) {
	e := newEngine(types.EngineConfig{}, &fakeExecutor{})
	err := e.Run(context.Background(), nil, filepath.Join(t.TempDir(), "missing", "out.txt"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating engine output file")
}

func TestCheck(t *testing.T) {
	setupEngineDir := func(t *testing.T, jars ...string) string {
		t.Helper()
		dir := t.TempDir()
		for _, j := range jars {
			require.NoError(t, os.WriteFile(filepath.Join(dir, j), []byte("jar"), 0o644))
		}
		return dir
	}

	tests := []struct {
		name    string
		bins    map[string]bool
		jars    []string
		noDir   bool
		wantErr []string
	}{
		{
			name: "java and jars present",
			bins: map[string]bool{"java": true},
			jars: []string{"stanford-openie.jar", "stanford-openie-models.jar"},
		},
		{
			name:    "java missing",
			jars:    []string{"stanford-openie.jar", "stanford-openie-models.jar"},
			wantErr: []string{"java not found"},
		},
		{
			name:    "models jar missing",
			bins:    map[string]bool{"java": true},
			jars:    []string{"stanford-openie.jar"},
			wantErr: []string{"stanford-openie-models.jar"},
		},
		{
			name:    "engine directory missing",
			noDir:   true,
			wantErr: []string{"java not found", "engine directory"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupEngineDir(t, tt.jars...)
			if tt.noDir {
				dir = filepath.Join(dir, "absent")
			}
			e := newEngine(types.EngineConfig{Dir: dir}, &fakeExecutor{bins: tt.bins})

			err := e.Check()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.True(t, strings.Contains(err.Error(), want), "error %q should mention %q", err, want)
			}
		})
	}
}
