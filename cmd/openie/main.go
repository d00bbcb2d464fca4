// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the openie CLI: a wrapper that runs
// the Stanford OpenIE engine over text files and prints the extracted
// subject-relation-object triples.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs one extraction; subcommands cover the tooling around it.
var rootCmd = &cobra.Command{
	Use:   "openie [flags] [files...]",
	Short: "Run the OpenIE extraction engine and parse its triples",
	Long: `openie invokes the Stanford OpenIE engine on one or more text files,
parses the "ollie" formatted output into (subject, relation, object)
triples and prints them. With --graphviz the triples are also rendered
as a directed graph image through Graphviz dot.

Input files come from -f/--file, -i/--input_file or positional arguments.
Each -f value is one path, taken as is. A file named like a subcommand
(check, graph, store, version) must be given with -f. With none,
samples.txt is used. Relative paths are resolved from the
engine's parent directory (engine.input_prefix).

With --out-dir or --save each input file is extracted on its own and the
result written as YAML, ready for "openie store ingest".`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./openie.yaml or ~/.config/openie/openie.yaml)")
	rootCmd.PersistentFlags().String("engine-dir", "", "engine installation directory (default: stanford-openie)")
	bindFlag("engine.dir", rootCmd.PersistentFlags(), "engine-dir")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("openie")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "openie"))
		}
	}

	viper.SetEnvPrefix("OPENIE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
