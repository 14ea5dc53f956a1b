package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/ytagent/internal/server"
)

// newServeCmd creates the serve subcommand.
func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the OAuth callback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				scope := a.settings.Scope

				a.logger.Info().
					Str("credential_source", string(a.authority.Source())).
					Str("scope", scope.String()).
					Msg("Credential authority ready")

				srv := server.NewServer(addr, server.Deps{
					Authority:   a.authority,
					Engagement:  a.client,
					Recommender: a.pipeline,
					Scope:       scope,
					Logger:      a.logger,
				})
				return srv.Run(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
