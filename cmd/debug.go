package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDebugCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "debug",
		Short:  "Development helpers",
		Hidden: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List every username the service knows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			usernames, err := app.apiClient().ListUsernames(cmd.Context())
			if err != nil {
				return err
			}

			for _, username := range usernames {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), username); err != nil {
					return err
				}
			}
			return nil
		},
	})

	return cmd
}
