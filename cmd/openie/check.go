// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/openie-runner/internal/engine"
	"github.com/pdiddy/openie-runner/internal/graphviz"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the extraction engine and Graphviz are installed",
	Long: `Check verifies that java is on PATH and the engine jars exist in the
engine directory, and reports whether the Graphviz dot binary is
available. A missing engine is an error; a missing dot only disables
--graphviz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return runCheck(os.Stdout, engine.New(cfg.Engine), graphviz.NewRenderer(cfg.Graph))
	},
}

type checker interface {
	Check() error
}

func runCheck(w io.Writer, eng, dot checker) error {
	engineErr := eng.Check()
	if engineErr != nil {
		fmt.Fprintf(w, "engine:   FAIL %v\n", engineErr)
	} else {
		fmt.Fprintln(w, "engine:   ok")
	}

	if err := dot.Check(); err != nil {
		fmt.Fprintf(w, "graphviz: unavailable (%v)\n", err)
	} else {
		fmt.Fprintln(w, "graphviz: ok")
	}

	if engineErr != nil {
		return fmt.Errorf("extraction engine is not usable")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
