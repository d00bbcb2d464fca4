// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EngineConfig describes where the extraction engine lives and how it is
// invoked.
type EngineConfig struct {
	// Dir is the engine installation directory. The engine runs with Dir as
	// its working directory, so jar paths are relative to it.
	Dir string `json:"dir" yaml:"dir"`

	// Java is the JVM binary (default "java").
	Java string `json:"java" yaml:"java"`

	// Heap is the maximum heap size passed as -mx<Heap> (default "4g").
	Heap string `json:"heap" yaml:"heap"`

	// Jars is the classpath, joined with the OS list separator. Entries may
	// use the JVM's "dir/*" wildcard form.
	Jars []string `json:"jars" yaml:"jars"`

	// MainClass is the engine entry point.
	MainClass string `json:"main_class" yaml:"main_class"`

	// Format is the engine output format flag (default "ollie").
	Format string `json:"format" yaml:"format"`

	// InputPrefix is joined to relative input paths before they are handed
	// to the engine (default "..", the project directory as seen from Dir).
	InputPrefix string `json:"input_prefix" yaml:"input_prefix"`

	// Timeout bounds a single engine run. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Jobs bounds how many engine processes per-file extraction runs at
	// once (default 1). Each process claims a full JVM heap.
	Jobs int `json:"jobs" yaml:"jobs"`
}

// GraphConfig holds settings for rendering records through Graphviz.
type GraphConfig struct {
	// Dot is the graph-layout binary (default "dot").
	Dot string `json:"dot" yaml:"dot"`

	// Format is the output image format passed as -T<Format> (default "png").
	Format string `json:"format" yaml:"format"`
}

// WorkspaceConfig selects the directory used to stage engine output and
// graph files.
type WorkspaceConfig struct {
	// Dir is a fixed workspace directory. When empty, every run gets a
	// fresh, uniquely named directory under the system temp dir.
	Dir string `json:"dir" yaml:"dir"`
}

// StoreConfig holds settings for the triple store.
type StoreConfig struct {
	// Dir is the base directory for stored triples (contains extracted/, index/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// RunnerConfig groups the settings one extraction run depends on.
type RunnerConfig struct {
	Engine    EngineConfig    `json:"engine" yaml:"engine"`
	Graph     GraphConfig     `json:"graph" yaml:"graph"`
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace"`
}

// Config is the full configuration file layout.
type Config struct {
	RunnerConfig `yaml:",inline"`
	Store        StoreConfig `json:"store" yaml:"store"`
}
