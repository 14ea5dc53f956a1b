package youtube

import (
	"regexp"
	"strings"

	"github.com/gauthierbraillon/ytagent/internal/failure"
)

// VideoIDLength is the length of a raw YouTube video id.
const VideoIDLength = 11

// Patterns are tried in order; the first match wins.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})(?:[&?#]|$)`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})(?:[&?#]|$)`),
}

var rawVideoID = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// ExtractVideoID resolves a watch URL, a youtu.be share URL or a raw id to
// the video id.
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	for _, p := range videoURLPatterns {
		if m := p.FindStringSubmatch(ref); m != nil {
			return m[1], nil
		}
	}
	if len(ref) == VideoIDLength && rawVideoID.MatchString(ref) {
		return ref, nil
	}
	return "", failure.Newf(failure.InvalidVideoReference, "%q is not a YouTube video id or URL", ref)
}
