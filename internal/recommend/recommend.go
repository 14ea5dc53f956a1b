package recommend

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/ytagent/internal/failure"
	"github.com/gauthierbraillon/ytagent/internal/logging"
	"github.com/gauthierbraillon/ytagent/internal/youtube"
)

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds how many seed searches run at once.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// Pipeline produces recommendations from liked videos.
type Pipeline struct {
	source  Engagement
	workers int
	logger  *logging.Logger
}

// New creates a Pipeline reading from source.
func New(source Engagement, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:  source,
		workers: DefaultWorkers,
		logger:  logging.NewSilent(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Recommend returns at most maxResults videos found by searching for seeds
// taken from the user's liked videos. It never fails: when the liked videos
// cannot be listed the result is empty, and a failed seed search contributes
// nothing.
func (p *Pipeline) Recommend(ctx context.Context, maxResults int) []youtube.VideoSummary {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	start := time.Now()
	liked, err := p.source.Liked(ctx, LikedSampleSize)
	if err != nil {
		p.logger.Warn().
			Str("kind", string(failure.KindOf(err))).
			Str("error", failure.Message(err)).
			Msg("Liked videos unavailable, no recommendations")
		return []youtube.VideoSummary{}
	}

	batches := p.searchSeeds(ctx, liked)
	merged := Merge(batches, maxResults)

	p.logger.Info().
		Int("liked", len(liked)).
		Int("results", len(merged)).
		Dur("duration", time.Since(start)).
		Msg("Recommendations built")

	return merged
}

// searchSeeds runs one search per liked video. Results keep the order of the
// liked videos regardless of completion order.
func (p *Pipeline) searchSeeds(ctx context.Context, liked []youtube.VideoSummary) [][]youtube.VideoSummary {
	batches := make([][]youtube.VideoSummary, len(liked))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, video := range liked {
		seed := Seed(video.Title)
		g.Go(func() error {
			results, err := p.source.Search(ctx, seed, ResultsPerSeed)
			if err != nil {
				p.logger.Debug().
					Str("seed", seed).
					Str("kind", string(failure.KindOf(err))).
					Msg("Seed search failed")
				return nil
			}
			batches[i] = results
			return nil
		})
	}
	_ = g.Wait()

	return batches
}

// Merge concatenates batches in order, keeps the first occurrence of each
// video id and truncates to limit.
func Merge(batches [][]youtube.VideoSummary, limit int) []youtube.VideoSummary {
	merged := []youtube.VideoSummary{}
	if limit <= 0 {
		return merged
	}
	seen := make(map[string]struct{})
	for _, batch := range batches {
		for _, video := range batch {
			if len(merged) == limit {
				return merged
			}
			if _, dup := seen[video.VideoID]; dup {
				continue
			}
			seen[video.VideoID] = struct{}{}
			merged = append(merged, video)
		}
	}
	return merged
}
