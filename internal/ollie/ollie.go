// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ollie parses extraction engine output in the "ollie" line format:
//
//	<score>: (<subject>; <relation>; <object>)
//
// One relation per line. The leading confidence score is not kept.
package ollie

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/openie-runner/pkg/types"
)

// fieldCount is the number of ;-separated parts inside the parentheses.
const fieldCount = 3

// ErrMalformedLine is matched by every *ParseError.
var ErrMalformedLine = errors.New("malformed ollie line")

// ParseError reports a line that does not follow the ollie format.
type ParseError struct {
	// Line is the 1-based line number in the parsed text.
	Line int
	// Text is the offending line.
	Text string
	// Reason says what was wrong with it.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *ParseError) Is(target error) bool { return target == ErrMalformedLine }

// Options controls field handling.
type Options struct {
	// TrimFields strips surrounding whitespace from each field. When false,
	// fields keep the spacing the engine printed, e.g. " was" for
	// "(Barack Obama; was; born)".
	TrimFields bool
}

// Parse splits engine output into records, one per non-empty line, in
// order. A trailing carriage return on a line is ignored. The first
// malformed line stops parsing and is returned as *ParseError.
func Parse(text string, opts Options) ([]types.Record, error) {
	records := []types.Record{}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		rec, err := parseLine(line, opts)
		if err != nil {
			err.Line = i + 1
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseLine parses a single line of engine output.
func ParseLine(line string, opts Options) (types.Record, error) {
	rec, err := parseLine(line, opts)
	if err != nil {
		err.Line = 1
		return types.Record{}, err
	}
	return rec, nil
}

func parseLine(line string, opts Options) (types.Record, *ParseError) {
	start := strings.IndexByte(line, '(')
	if start < 0 {
		return types.Record{}, &ParseError{Text: line, Reason: `missing "("`}
	}
	end := strings.IndexByte(line[start+1:], ')')
	if end < 0 {
		return types.Record{}, &ParseError{Text: line, Reason: `missing ")"`}
	}

	fields := strings.Split(line[start+1:start+1+end], ";")
	if len(fields) != fieldCount {
		return types.Record{}, &ParseError{
			Text:   line,
			Reason: fmt.Sprintf("want %d fields, got %d", fieldCount, len(fields)),
		}
	}
	if opts.TrimFields {
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
	}
	return types.Record{Subject: fields[0], Relation: fields[1], Object: fields[2]}, nil
}
