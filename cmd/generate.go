package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

var generateConcurrency int

var generateCmd = &cobra.Command{
	Use:   "generate [urls...]",
	Short: "Run the full analysis workflow for a batch of URLs",
	Long:  "Fetches and analyzes each URL, matches services, and generates outreach and inbound drafts for every discovered contact. Results print as JSON; nothing is sent.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		urls := make([]string, 0, len(args))
		for _, arg := range args {
			urls = append(urls, model.NormalizeURL(arg))
		}

		items := env.Pipeline.Generate(cmd.Context(), urls, generateConcurrency)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	},
}

func init() {
	generateCmd.Flags().IntVar(&generateConcurrency, "concurrency", 0, "max URLs processed in parallel (default 3)")
	rootCmd.AddCommand(generateCmd)
}
