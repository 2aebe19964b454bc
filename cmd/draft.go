package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/serp-hawk/outreach-cli/internal/pipeline"
)

var (
	draftCompany string
	draftURL     string
	draftEmail   string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft an outreach email for a prospect without sending",
	Long:  "Runs the eligibility gate and full analysis for one prospect and prints the reviewable draft as JSON. Nothing is persisted or sent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.DraftLead(cmd.Context(), pipeline.DraftLeadRequest{
			CompanyName:  draftCompany,
			WebsiteURL:   draftURL,
			PrimaryEmail: draftEmail,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	draftCmd.Flags().StringVar(&draftCompany, "company", "", "prospect company name")
	draftCmd.Flags().StringVar(&draftURL, "url", "", "prospect website URL")
	draftCmd.Flags().StringVar(&draftEmail, "email", "", "recipient email address")
	_ = draftCmd.MarkFlagRequired("company")
	_ = draftCmd.MarkFlagRequired("url")
	_ = draftCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(draftCmd)
}
