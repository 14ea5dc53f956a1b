// Package main provides the ytagent CLI entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

// newRootCmd creates the root command for ytagent CLI.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	info, _ := debug.ReadBuildInfo()

	rootCmd := &cobra.Command{
		Use:   "ytagent",
		Short: "Search, like, comment and subscribe on YouTube with a managed OAuth credential",
		Long: "ytagent authorizes one YouTube account through OAuth2, keeps its credential fresh, " +
			"and drives search, liked videos, recommendations, likes, comments and subscriptions " +
			"from the terminal or over HTTP.",
		Version:      resolveVersion(version, info),
		SilenceUsage: true,
	}

	rootCmd.SetVersionTemplate("ytagent version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a TOML config file (default <config dir>/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newAuthCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newLikedCmd(opts))
	rootCmd.AddCommand(newRecommendCmd(opts))
	rootCmd.AddCommand(newLikeCmd(opts))
	rootCmd.AddCommand(newCommentCmd(opts))
	rootCmd.AddCommand(newSubscribeCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}
