// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package process runs external programs from an explicit argument list.
// Nothing is passed through a shell: arguments reach the program verbatim,
// so input paths never need quoting or escaping.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// stderrLimit caps how much of a program's stderr is kept for error messages.
const stderrLimit = 8 << 10

// Command is a fully resolved invocation of an external program.
type Command struct {
	// Name is the program to run, looked up on PATH when it has no separator.
	Name string

	// Args are the program arguments, excluding Name.
	Args []string

	// Dir is the working directory. Empty means the caller's directory.
	Dir string

	// Stdout receives the program's standard output. Nil discards it.
	Stdout io.Writer
}

// String renders the command for display. The result is not meant to be
// fed back to a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	s := strings.Join(parts, " ")
	if c.Dir != "" {
		s = fmt.Sprintf("(in %s) %s", c.Dir, s)
	}
	return s
}

// Executor abstracts program execution so callers can be tested without
// the real binaries installed.
type Executor interface {
	// LookPath resolves a program name the way exec.LookPath does.
	LookPath(file string) (string, error)

	// Run executes c and blocks until it exits. A non-zero exit status is
	// reported as *ExitError.
	Run(ctx context.Context, c Command) error
}

// ExitError reports a program that ran but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// OS is the production executor backed by os/exec.
var OS Executor = osExecutor{}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	stderr := &limitedBuffer{max: stderrLimit}
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("running %s: %w", c.Name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: c.Name, Code: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return fmt.Errorf("running %s: %w", c.Name, err)
}

// limitedBuffer keeps the last max bytes written to it.
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if over := b.buf.Len() - b.max; over > 0 {
		b.buf.Next(over)
	}
	return n, nil
}

func (b *limitedBuffer) String() string { return b.buf.String() }

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
