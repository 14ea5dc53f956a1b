package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the config subcommand. Secrets are never printed.
func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				cfg := a.cfg
				pairs := [][2]string{
					{"Config directory", cfg.ConfigDir},
					{"Token store", cfg.Storage.Driver + " (" + a.storeLocation() + ")"},
					{"Scope", cfg.Client.Scope},
					{"Redirect URL", cfg.Client.RedirectURL},
					{"API URL", cfg.API.BaseURL},
					{"Request timeout", cfg.API.Timeout},
					{"Rate limit", strconv.Itoa(cfg.API.RateLimit) + "/s"},
					{"Search workers", strconv.Itoa(cfg.Recommend.Workers)},
					{"Credential source", string(a.authority.Source())},
				}
				if rec, err := a.authority.CurrentCredential(); err == nil {
					pairs = append(pairs,
						[2]string{"Renewable", strconv.FormatBool(rec.Renewable())},
						[2]string{"Access token expires", a.formatter.FormatExpiry(rec.Expiry, time.Now())},
					)
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatKeyValues(pairs))
				return nil
			})
		},
	}
}
