// Package youtube provides the engagement client for the YouTube Data API v3.
//
// This package enables ytagent to:
// - Search videos and list the user's liked videos
// - Like, comment on and subscribe from a video reference
// - Resolve raw ids and share/watch URLs to video ids
package youtube

import "fmt"

// VideoSummary is the identity and display data of a video. VideoID is the
// deduplication key.
type VideoSummary struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
}

// URL returns the watch URL of the video.
func (v VideoSummary) URL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", v.VideoID)
}
