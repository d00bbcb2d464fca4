// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/openie-runner/internal/engine"
	"github.com/pdiddy/openie-runner/internal/graphviz"
	"github.com/pdiddy/openie-runner/pkg/types"
)

func init() {
	viper.SetDefault("engine.dir", engine.DefaultDir)
	viper.SetDefault("engine.java", engine.DefaultJava)
	viper.SetDefault("engine.heap", engine.DefaultHeap)
	viper.SetDefault("engine.jars", engine.DefaultJars)
	viper.SetDefault("engine.main_class", engine.DefaultMainClass)
	viper.SetDefault("engine.format", engine.DefaultFormat)
	viper.SetDefault("engine.input_prefix", engine.DefaultInputPrefix)
	viper.SetDefault("engine.timeout", "0s")
	viper.SetDefault("engine.jobs", 1)
	viper.SetDefault("graph.dot", graphviz.DefaultDot)
	viper.SetDefault("graph.format", graphviz.DefaultFormat)
	viper.SetDefault("workspace.dir", "")
	viper.SetDefault("store.dir", "triples")
	viper.SetDefault("store.max_results", 20)
}

// bindFlag ties a config key to a flag so the flag wins when it is set.
func bindFlag(key string, flags *pflag.FlagSet, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(err)
	}
}

// loadConfig reads the effective configuration from flags, environment,
// config file and defaults, in that order of precedence.
func loadConfig() types.Config {
	return types.Config{
		RunnerConfig: types.RunnerConfig{
			Engine: types.EngineConfig{
				Dir:         viper.GetString("engine.dir"),
				Java:        viper.GetString("engine.java"),
				Heap:        viper.GetString("engine.heap"),
				Jars:        viper.GetStringSlice("engine.jars"),
				MainClass:   viper.GetString("engine.main_class"),
				Format:      viper.GetString("engine.format"),
				InputPrefix: viper.GetString("engine.input_prefix"),
				Timeout:     viper.GetDuration("engine.timeout"),
				Jobs:        viper.GetInt("engine.jobs"),
			},
			Graph: types.GraphConfig{
				Dot:    viper.GetString("graph.dot"),
				Format: viper.GetString("graph.format"),
			},
			Workspace: types.WorkspaceConfig{
				Dir: viper.GetString("workspace.dir"),
			},
		},
		Store: types.StoreConfig{
			Dir:        viper.GetString("store.dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
	}
}
