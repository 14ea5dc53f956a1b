package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/ytagent/internal/recommend"
	"github.com/gauthierbraillon/ytagent/internal/youtube"
)

// newSearchCmd creates the search subcommand.
func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search YouTube videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				videos, err := a.client.Search(ctx, query, limit)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatVideos(videos))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "max", "n", youtube.DefaultSearchResults, "Maximum number of results")
	return cmd
}

// newLikedCmd creates the liked subcommand.
func newLikedCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "liked",
		Short: "List your liked videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				videos, err := a.client.Liked(ctx, limit)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatVideos(videos))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "max", "n", youtube.DefaultLikedResults, "Maximum number of results")
	return cmd
}

// newRecommendCmd creates the recommend subcommand.
func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend videos based on your liked videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				videos := a.pipeline.Recommend(ctx, limit)
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatVideos(videos))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "max", "n", recommend.DefaultMaxResults, "Maximum number of results")
	return cmd
}

// newLikeCmd creates the like subcommand.
func newLikeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "like <video id or URL>",
		Short: "Like a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				videoID, err := a.client.Like(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatAction("Liked video", videoID))
				return nil
			})
		},
	}
}

// newCommentCmd creates the comment subcommand.
func newCommentCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <video id or URL> <text>",
		Short: "Post a comment on a video",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				commentID, err := a.client.Comment(ctx, args[0], text)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatAction("Posted comment", commentID))
				return nil
			})
		},
	}
}

// newSubscribeCmd creates the subscribe subcommand.
func newSubscribeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <video id or URL>",
		Short: "Subscribe to the channel that published a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				channelID, err := a.client.Subscribe(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatAction("Subscribed to channel", channelID))
				return nil
			})
		},
	}
}
