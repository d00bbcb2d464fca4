// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace manages the directory where a run stages the engine's
// raw output and writes graph files.
//
// By default every run gets its own freshly created directory, so runs
// never share files. A fixed directory may be configured instead; it is
// then held under an exclusive lock for the life of the Workspace so a
// second run fails fast rather than overwriting the first one's output.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/pdiddy/openie-runner/pkg/types"
)

const (
	outputFile = "out.txt"
	dotFile    = "out.dot"
	imageBase  = "out"
	lockFile   = ".openie.lock"
	tempPrefix = "openie-"
)

// ErrLocked is returned when a fixed workspace is in use by another run.
var ErrLocked = errors.New("workspace is in use by another run")

// Workspace is an open staging directory.
type Workspace struct {
	dir       string
	temporary bool
	lock      *flock.Flock
}

// Open prepares the workspace described by cfg. An empty cfg.Dir creates a
// new unique directory under the system temp dir; otherwise cfg.Dir and any
// missing parents are created and locked.
func Open(cfg types.WorkspaceConfig) (*Workspace, error) {
	if cfg.Dir == "" {
		dir, err := os.MkdirTemp("", tempPrefix)
		if err != nil {
			return nil, fmt.Errorf("creating workspace: %w", err)
		}
		return &Workspace{dir: dir, temporary: true}, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", cfg.Dir, err)
	}

	lock := flock.New(filepath.Join(cfg.Dir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		lock.Close()
		return nil, fmt.Errorf("locking workspace %s: %w", cfg.Dir, err)
	}
	if !locked {
		lock.Close()
		return nil, fmt.Errorf("%s: %w", cfg.Dir, ErrLocked)
	}
	return &Workspace{dir: cfg.Dir, lock: lock}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Temporary reports whether the directory was created for this run.
func (w *Workspace) Temporary() bool { return w.temporary }

// OutputPath is where the engine's stdout is staged.
func (w *Workspace) OutputPath() string { return filepath.Join(w.dir, outputFile) }

// DotPath is where the graph description is written.
func (w *Workspace) DotPath() string { return filepath.Join(w.dir, dotFile) }

// ImagePath is where the rendered graph is written for the given format.
func (w *Workspace) ImagePath(format string) string {
	return filepath.Join(w.dir, imageBase+"."+format)
}

// Close releases the workspace. A temporary directory is removed unless
// keep is set, which is how rendered graph files are left for the user.
// A fixed directory is never removed, only unlocked. Its lock file stays:
// unlinking it would let a waiting run and a new one lock different files.
func (w *Workspace) Close(keep bool) error {
	var errs []error
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("unlocking workspace: %w", err))
		}
	}
	if w.temporary && !keep {
		if err := os.RemoveAll(w.dir); err != nil {
			errs = append(errs, fmt.Errorf("removing workspace: %w", err))
		}
	}
	return errors.Join(errs...)
}
