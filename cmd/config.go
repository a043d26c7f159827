package cmd

import (
	"fmt"

	tomlrepo "github.com/bnema/serverctl/internal/adapters/repo/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(newConfigShowCmd(app), newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.settings
			out := cmd.OutOrStdout()

			lines := []struct {
				key   string
				value string
			}{
				{tomlrepo.KeyServiceRoot, s.ServiceRoot},
				{tomlrepo.KeyStorageBackend, string(s.StorageBackend)},
				{tomlrepo.KeySessionKey, s.SessionKey},
				{tomlrepo.KeyLogLevel, s.LogLevel},
				{tomlrepo.KeyFetchTimeout, s.FetchTimeout.String()},
			}

			if _, err := fmt.Fprintf(out, "# %s\n", app.settingsRepo.Path()); err != nil {
				return err
			}
			for _, line := range lines {
				if _, err := fmt.Fprintf(out, "%s = %s\n", line.key, line.value); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func newConfigSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Store a setting in the settings file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: tomlrepo.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.settingsRepo.Set(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("set %s: %w", args[0], err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return err
		},
	}
}
