// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/openie-runner/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Index saved triples and query them (ingest, query, export)",
	Long: `Store manages a local SQLite index of triples saved by --save or
--out-dir. Use subcommands to ingest results, query them, or export.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest saved extraction results into the store",
	Long: `Ingest reads <name>-triples.yaml files from <store-dir>/extracted/,
indexes them in SQLite with full-text search, and writes an export
file. Unchanged results are skipped on subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d result(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the store with full-text search and field filters",
	RunE:  runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --subject, --relation, --object, or --source")
	}

	s, err := store.NewStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Query(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(os.Stdout, results, jsonOutput)
}

func formatQueryOutput(w io.Writer, results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		if results == nil {
			results = []store.QueryResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-25s  %-20s  %-25s  %s\n", "Rank", "Subject", "Relation", "Object", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-25s  %-20s  %-25s  %s\n",
			i+1, truncate(r.Subject, 25), truncate(r.Relation, 20), truncate(r.Object, 25), r.Source)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to YAML, JSON or a Graphviz description",
	Long: `Export writes the whole store (or a filtered subset) to
<store-dir>/index/export.yaml, export.json or export.dot. Supports the
same filter flags as query for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(loadConfig().Store)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = s.ExportJSON(cmd.Context(), opts)
	case "dot":
		path, err = s.ExportDOT(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json or dot", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	subject, _ := cmd.Flags().GetString("subject")
	relation, _ := cmd.Flags().GetString("relation")
	object, _ := cmd.Flags().GetString("object")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		Subject:    subject,
		Relation:   relation,
		Object:     object,
		Source:     source,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search query")
	cmd.Flags().String("subject", "", "filter by exact subject")
	cmd.Flags().String("relation", "", "filter by exact relation")
	cmd.Flags().String("object", "", "filter by exact object")
	cmd.Flags().String("source", "", "filter by source ID")
	cmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("store-dir", "", "base directory for the store (contains extracted/, index/)")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results")
	bindFlag("store.dir", storeCmd.PersistentFlags(), "store-dir")
	bindFlag("store.max_results", storeCmd.PersistentFlags(), "max-results")

	addFilterFlags(storeQueryCmd)
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml, json or dot")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
