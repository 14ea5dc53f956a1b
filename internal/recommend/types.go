// Package recommend turns recent positive engagement into new candidate videos.
//
// This package enables ytagent to:
// - Derive search seeds from the titles of liked videos
// - Fan out one bounded, concurrent search per seed
// - Merge the results with a stable, first-occurrence deduplication
package recommend

import (
	"context"
	"strings"

	"github.com/gauthierbraillon/ytagent/internal/youtube"
)

const (
	// LikedSampleSize is how many liked videos seed one pass.
	LikedSampleSize = 10
	// SeedTokens is how many leading title tokens form a seed.
	SeedTokens = 4
	// ResultsPerSeed is the search width per seed.
	ResultsPerSeed = 3
	// DefaultMaxResults caps the merged list when the caller gives no limit.
	DefaultMaxResults = 10
	// DefaultWorkers bounds concurrent seed searches.
	DefaultWorkers = 3
)

// Engagement is the part of the engagement client the pipeline reads from.
// *youtube.Client implements it.
type Engagement interface {
	Liked(ctx context.Context, maxResults int) ([]youtube.VideoSummary, error)
	Search(ctx context.Context, query string, maxResults int) ([]youtube.VideoSummary, error)
}

// Seed returns the first SeedTokens whitespace-delimited tokens of title
// joined by single spaces. An empty title gives an empty seed.
func Seed(title string) string {
	tokens := strings.Fields(title)
	if len(tokens) > SeedTokens {
		tokens = tokens[:SeedTokens]
	}
	return strings.Join(tokens, " ")
}
