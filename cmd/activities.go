package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var activitiesLimit int

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List recent outreach activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		activities, err := st.ListActivities(cmd.Context(), activitiesLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(activities)
	},
}

func init() {
	activitiesCmd.Flags().IntVar(&activitiesLimit, "limit", 10, "max activities to list")
	rootCmd.AddCommand(activitiesCmd)
}
