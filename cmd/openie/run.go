// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/openie-runner/internal/extract"
	"github.com/pdiddy/openie-runner/internal/store"
	"github.com/pdiddy/openie-runner/pkg/types"
)

func runExtract(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}

	cfg := loadConfig()
	req := requestFromFlags(cmd, args)

	outDir, _ := cmd.Flags().GetString("out-dir")
	if save, _ := cmd.Flags().GetBool("save"); save && outDir == "" {
		outDir = store.ExtractedDir(cfg.Store)
	}
	if outDir != "" {
		if req.RenderGraph {
			return fmt.Errorf("--graphviz cannot be combined with per-file extraction; use \"openie graph render\" on a result")
		}
		summary, err := extract.ExtractFiles(cmd.Context(), cfg.RunnerConfig, req, outDir, os.Stderr)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d file(s) failed extraction", summary.Failed)
		}
		return nil
	}

	records, err := extract.Extract(cmd.Context(), cfg.RunnerConfig, req)
	if records == nil && err != nil {
		return err
	}
	if printErr := printRecords(os.Stdout, records, format); printErr != nil {
		return printErr
	}
	return err
}

func requestFromFlags(cmd *cobra.Command, args []string) types.Request {
	files, _ := cmd.Flags().GetStringArray("file")
	inputFiles, _ := cmd.Flags().GetStringArray("input_file")
	verbose, _ := cmd.Flags().GetBool("verbose")
	graph, _ := cmd.Flags().GetBool("graphviz")
	trim, _ := cmd.Flags().GetBool("trim")

	var all []string
	all = append(all, files...)
	all = append(all, inputFiles...)
	all = append(all, args...)

	return types.Request{
		InputFiles:  all,
		Verbose:     verbose,
		RenderGraph: graph,
		TrimFields:  trim,
	}
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml", "tsv":
		return nil
	}
	return fmt.Errorf("unsupported format %q: use json, yaml or tsv", format)
}

// printRecords writes records to w. json prints the ordered 3-tuples, one
// array per record; yaml prints named fields; tsv prints one record per line.
func printRecords(w io.Writer, records []types.Record, format string) error {
	switch format {
	case "json", "":
		data, err := types.MarshalTuples(records)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		if records == nil {
			records = []types.Record{}
		}
		data, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "tsv":
		for _, r := range records {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Subject, r.Relation, r.Object); err != nil {
				return err
			}
		}
		return nil
	}
	return checkFormat(format)
}

func init() {
	addExtractFlags(rootCmd)
	bindFlag("workspace.dir", rootCmd.Flags(), "workspace")
	bindFlag("engine.jobs", rootCmd.Flags(), "jobs")
}

func addExtractFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayP("file", "f", nil, "an input file to parse (repeatable)")
	flags.StringArrayP("input_file", "i", nil, "an input file to parse (alias for --file)")
	flags.BoolP("verbose", "v", false, "run in verbose mode: show the engine command and stream its output")
	flags.BoolP("graphviz", "g", false, "render the triples as a graph image with Graphviz dot")
	flags.Bool("trim", false, "trim surrounding whitespace from parsed fields")
	flags.String("format", "json", "result format on stdout: json, yaml or tsv")
	flags.String("workspace", "", "fixed workspace directory (default: a fresh temp directory per run)")
	flags.String("out-dir", "", "extract each file separately and write <name>-triples.yaml here")
	flags.Bool("save", false, "like --out-dir with the store's extracted/ directory")
	flags.Int("jobs", 1, "engine processes to run at once in per-file extraction")
}
