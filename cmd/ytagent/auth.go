package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/ytagent/pkg/browser"
	"github.com/gauthierbraillon/ytagent/pkg/oauth"
)

// newAuthCmd creates the auth subcommand.
func newAuthCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize ytagent with your YouTube account",
		Long: "Authorize ytagent through the Google consent screen. Run 'ytagent serve' first so the " +
			"callback can be received, or paste the code from the callback into 'ytagent auth exchange'.",
	}

	cmd.AddCommand(newAuthLoginCmd(opts))
	cmd.AddCommand(newAuthExchangeCmd(opts))
	return cmd
}

// newAuthLoginCmd opens the server's login route in the browser.
func newAuthLoginCmd(opts *rootOptions) *cobra.Command {
	var scopeName string
	var noForce, noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open the consent screen in your browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if scopeName == "" {
				scopeName = cfg.Client.Scope
			}
			scope, err := oauth.ParseScope(scopeName)
			if err != nil {
				return err
			}

			target, err := loginURL(cfg.Client.RedirectURL, scope, !noForce)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if noBrowser {
				fmt.Fprintf(out, "Visit this URL to authorize ytagent:\n%s\n", target)
				return nil
			}
			fmt.Fprintf(out, "Opening browser for authorization...\n")
			if err := browser.Open(target); err != nil {
				fmt.Fprintf(out, "Could not open browser. Please visit:\n%s\n", target)
			}
			fmt.Fprintf(out, "Make sure 'ytagent serve' is running to receive the callback.\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeName, "scope", "", "Scope to request: readonly or full (default from config)")
	cmd.Flags().BoolVar(&noForce, "no-force", false, "Do not force the consent screen (no refresh token will be issued to returning users)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the URL instead of opening a browser")
	return cmd
}

// loginURL derives the /auth/login route from the callback URL, which is
// served by the same process.
func loginURL(redirectURL string, scope oauth.Scope, force bool) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid redirect URL %q", redirectURL)
	}
	u.Path = "/auth/login"
	q := url.Values{}
	q.Set("scope", scope.String())
	if !force {
		q.Set("force", "false")
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// newAuthExchangeCmd completes authorization from the terminal.
func newAuthExchangeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <code>",
		Short: "Exchange an authorization code for a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				grant, err := a.authority.CompleteAuthorization(ctx, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Authorization successful.\n")
				if grant.RefreshTokenIssued {
					fmt.Fprintf(out, "Refresh token: %s\n", grant.Record.RefreshToken)
				}
				if grant.Persisted {
					fmt.Fprintf(out, "Credential saved to: %s\n", a.storeLocation())
				}
				fmt.Fprintf(out, "%s\n", grant.Notice())
				return nil
			})
		},
	}
}
