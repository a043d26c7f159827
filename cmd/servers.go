package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	serversview "github.com/bnema/serverctl/internal/adapters/render/servers"
	"github.com/bnema/serverctl/internal/domain"
	"github.com/spf13/cobra"
)

type serversOutput struct {
	User    *userOutput              `json:"user"`
	Servers domain.ServerCollection  `json:"servers"`
	Owners  map[domain.UserID]string `json:"owners,omitempty"`
}

type userOutput struct {
	Username string        `json:"username"`
	ID       domain.UserID `json:"id"`
}

func newServersCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "servers",
		Short: "List the servers visible to the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.Service()
			if err != nil {
				return err
			}

			var servers domain.ServerCollection
			if asJSON {
				servers, err = svc.WaitForServers(cmd.Context())
			} else {
				servers, err = app.awaitServers(cmd.Context(), cmd.ErrOrStderr(), "Fetching servers...", svc.WaitForServers)
			}

			var fetchErr error
			switch {
			case err == nil, errors.Is(err, domain.ErrNotSignedIn):
			case errors.Is(err, domain.ErrFetchFailed):
				fetchErr = err
			default:
				return err
			}

			session := svc.Session().Value()
			owners := svc.OwnerNames(cmd.Context(), servers)

			if asJSON {
				if err := writeServersJSON(cmd, session, servers, owners); err != nil {
					return err
				}
				return fetchErr
			}

			rendered, err := app.serversRender(serversview.Listing{
				Session: session,
				Servers: servers,
				Owners:  owners,
			}, serversview.RenderOptions{
				Now:         app.now(),
				RefreshedAt: svc.LastRefreshedAt(),
			})
			if err != nil {
				return fmt.Errorf("render servers: %w", err)
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
				return err
			}
			return fetchErr
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of the styled view")

	return cmd
}

func writeServersJSON(cmd *cobra.Command, session *domain.Session, servers domain.ServerCollection, owners map[domain.UserID]string) error {
	output := serversOutput{Servers: servers, Owners: owners}
	if session != nil {
		output.User = &userOutput{Username: session.Username, ID: session.ID}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
