// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"time"
)

// Request is one extraction run as asked for on the command line. It is
// built once at startup and not modified afterwards.
type Request struct {
	// InputFiles lists the text files handed to the engine in one batch.
	InputFiles []string `json:"input_files" yaml:"input_files"`

	// Verbose streams the engine's stdout to the console while it runs.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// RenderGraph renders the records to an image after extraction.
	RenderGraph bool `json:"render_graph" yaml:"render_graph"`

	// TrimFields strips surrounding whitespace from parsed fields. Off by
	// default, which keeps fields exactly as the engine printed them.
	TrimFields bool `json:"trim_fields" yaml:"trim_fields"`
}

// Record is one subject-relation-object triple parsed from a line of
// engine output.
type Record struct {
	Subject  string `json:"subject" yaml:"subject"`
	Relation string `json:"relation" yaml:"relation"`
	Object   string `json:"object" yaml:"object"`
}

// Fields returns the record as an ordered (subject, relation, object) tuple.
func (r Record) Fields() []string {
	return []string{r.Subject, r.Relation, r.Object}
}

// Tuples converts records to ordered 3-tuples, the shape printed on stdout.
func Tuples(records []Record) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		out[i] = r.Fields()
	}
	return out
}

// MarshalTuples renders records as a JSON array of 3-element arrays.
func MarshalTuples(records []Record) ([]byte, error) {
	return json.Marshal(Tuples(records))
}

// ExtractionResult holds the records extracted from one source file and is
// what batch mode writes to <source>-triples.yaml.
type ExtractionResult struct {
	// Source is a stable identifier derived from the input file name.
	Source string `json:"source" yaml:"source"`

	// Files lists the input paths handed to the engine.
	Files []string `json:"files" yaml:"files"`

	// Records holds the parsed triples in engine output order.
	Records []Record `json:"records" yaml:"records"`

	// ExtractedAt is when the engine run finished.
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
