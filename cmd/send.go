package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/serp-hawk/outreach-cli/internal/pipeline"
)

var (
	sendDraftFile string
	sendManual    bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an approved draft",
	Long:  "Reads a draft JSON file (as produced by the draft command), re-checks eligibility, delivers the email, and records the send.",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(sendDraftFile)
		if err != nil {
			return eris.Wrapf(err, "read draft file %s", sendDraftFile)
		}

		var draft struct {
			Subject             string `json:"subject"`
			Body                string `json:"body"`
			PrimaryEmail        string `json:"primary_email"`
			CompanyName         string `json:"company_name"`
			WebsiteURL          string `json:"website_url"`
			RecommendedServices string `json:"recommended_services"`
		}
		if err := json.Unmarshal(raw, &draft); err != nil {
			return eris.Wrap(err, "parse draft file")
		}

		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Pipeline.SendLead(cmd.Context(), pipeline.SendLeadRequest{
			CompanyName:         draft.CompanyName,
			WebsiteURL:          draft.WebsiteURL,
			PrimaryEmail:        draft.PrimaryEmail,
			Subject:             draft.Subject,
			Body:                draft.Body,
			RecommendedServices: draft.RecommendedServices,
			Manual:              sendManual,
		})
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendDraftFile, "draft", "", "path to draft JSON file")
	sendCmd.Flags().BoolVar(&sendManual, "manual", false, "log the outreach without delivering")
	_ = sendCmd.MarkFlagRequired("draft")
	rootCmd.AddCommand(sendCmd)
}
