/*
Copyright 2025 The Workforce Planner Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/people-analytics/workforce-planner/internal/config"
)

type rootOptions struct {
	configPath    string
	inputPath     string
	fallbackInput string
	metricsPath   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "planner",
		Short:        "Workforce capacity planning from business drivers to action plans",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "planner configuration file (YAML)")
	flags.StringVarP(&opts.inputPath, "input", "i", "", "plan input file (YAML or JSON)")
	flags.StringVar(&opts.fallbackInput, "fallback-input", "", "plan input file used when --input cannot be loaded")
	flags.StringVar(&opts.metricsPath, "metrics-file", "", "write stage metrics in Prometheus text format to this file")
	config.AddFlags(flags)
	_ = rootCmd.MarkPersistentFlagRequired("input")

	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(validateCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	return rootCmd
}
