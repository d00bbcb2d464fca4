// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/openie-runner/internal/extract"
	"github.com/pdiddy/openie-runner/internal/graphviz"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render or inspect triple graphs",
}

var graphRenderCmd = &cobra.Command{
	Use:   "render <result.yaml>",
	Short: "Render a saved extraction result as a graph image",
	Long: `Render reads a <name>-triples.yaml result written by --out-dir or
--save and lays it out with Graphviz dot. The description and the image
are written next to the result unless --out-dir is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraphRender,
}

func runGraphRender(cmd *cobra.Command, args []string) error {
	result, err := extract.ReadResult(args[0])
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = filepath.Dir(args[0])
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	r := graphviz.NewRenderer(loadConfig().Graph)
	base := filepath.Join(outDir, result.Source)
	return r.Render(cmd.Context(), result.Records, base+".dot", base+"."+r.Format(), os.Stdout)
}

var graphInspectCmd = &cobra.Command{
	Use:   "inspect <graph.dot>",
	Short: "List the edges of a graph description written by openie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return inspectGraph(os.Stdout, string(data))
	},
}

func inspectGraph(w io.Writer, desc string) error {
	edges, err := graphviz.ParseEdges(desc)
	if err != nil {
		return fmt.Errorf("reading graph description: %w", err)
	}
	fmt.Fprintf(w, "%-30s  %-25s  %s\n", "Subject", "Relation", "Object")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, e := range edges {
		fmt.Fprintf(w, "%-30s  %-25s  %s\n", e.From, e.Label, e.To)
	}
	fmt.Fprintf(w, "\n%d edges\n", len(edges))
	return nil
}

func init() {
	graphRenderCmd.Flags().String("out-dir", "", "directory for the .dot and image files (default: next to the result)")

	graphCmd.AddCommand(graphRenderCmd)
	graphCmd.AddCommand(graphInspectCmd)

	rootCmd.AddCommand(graphCmd)
}
