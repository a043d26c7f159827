package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

type globalOptions struct {
	logLevel  string
	ephemeral bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	app := &app{opts: opts}

	rootCmd := &cobra.Command{
		Use:           "srvctl",
		Short:         "serverctl (srvctl): sign in and list your hosted servers",
		Long:          "srvctl keeps one signed-in session across runs and lists the servers visible to that session, refetching whenever the session changes.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides settings)")
	rootCmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep the session in memory only for this run")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newServersCmd(app),
		newSessionCmd(app),
		newConfigCmd(app),
		newDebugCmd(app),
	)
	closeAfterRun(rootCmd, app)

	return rootCmd
}

// closeAfterRun releases the app after every command, including failed ones,
// which persistent post-run hooks skip.
func closeAfterRun(parent *cobra.Command, app *app) {
	for _, child := range parent.Commands() {
		if run := child.RunE; run != nil {
			child.RunE = func(cmd *cobra.Command, args []string) error {
				return errors.Join(run(cmd, args), app.close())
			}
		}
		closeAfterRun(child, app)
	}
}
