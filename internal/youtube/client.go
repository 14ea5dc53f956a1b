package youtube

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/gauthierbraillon/ytagent/internal/failure"
	"github.com/gauthierbraillon/ytagent/internal/logging"
	"github.com/gauthierbraillon/ytagent/pkg/oauth"
)

const (
	defaultBaseURL = "https://youtube.googleapis.com/"

	DefaultTimeout       = 15 * time.Second
	DefaultRateLimit     = 5 // requests per second
	DefaultSearchResults = 6
	DefaultLikedResults  = 10
)

// CredentialSource supplies a valid credential before each call.
// *oauth.Authority implements it.
type CredentialSource interface {
	CurrentCredential() (oauth.Record, error)
	EnsureFresh(ctx context.Context, rec oauth.Record) (oauth.Record, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets the client whose transport carries API requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.transport = httpClient.Transport
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/") + "/"
	}
}

// WithTimeout bounds each remote call.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit sets the outbound request rate.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is the engagement client. Every operation asks the credential
// source for a fresh credential first, and every failure it returns is a
// *failure.Error.
type Client struct {
	credentials CredentialSource
	baseURL     string
	transport   http.RoundTripper
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *logging.Logger
}

// NewClient creates a new YouTube API client backed by credentials.
func NewClient(credentials CredentialSource, opts ...ClientOption) *Client {
	c := &Client{
		credentials: credentials,
		baseURL:     defaultBaseURL,
		timeout:     DefaultTimeout,
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:      logging.NewSilent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search returns up to maxResults videos matching query. An empty query is
// passed through unchanged.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]VideoSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultSearchResults
	}

	var videos []VideoSummary
	err := c.call(ctx, "search", func(ctx context.Context, svc *yt.Service) error {
		resp, err := svc.Search.List([]string{"snippet"}).
			Q(query).
			Type("video").
			MaxResults(int64(maxResults)).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		videos = make([]VideoSummary, 0, len(resp.Items))
		for _, item := range resp.Items {
			if item.Id == nil || item.Id.VideoId == "" {
				continue
			}
			v := VideoSummary{VideoID: item.Id.VideoId}
			if item.Snippet != nil {
				v.Title = item.Snippet.Title
				v.ChannelTitle = item.Snippet.ChannelTitle
			}
			videos = append(videos, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// Liked returns up to maxResults videos the authenticated user rated "like".
func (c *Client) Liked(ctx context.Context, maxResults int) ([]VideoSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultLikedResults
	}

	var videos []VideoSummary
	err := c.call(ctx, "list liked videos", func(ctx context.Context, svc *yt.Service) error {
		resp, err := svc.Videos.List([]string{"snippet"}).
			MyRating("like").
			MaxResults(int64(maxResults)).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		videos = make([]VideoSummary, 0, len(resp.Items))
		for _, item := range resp.Items {
			videos = append(videos, videoSummary(item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

// ChannelForVideo returns the channel that published videoID, or "" when the
// lookup finds no video.
func (c *Client) ChannelForVideo(ctx context.Context, videoID string) (string, error) {
	var channelID string
	err := c.call(ctx, "video lookup", func(ctx context.Context, svc *yt.Service) error {
		resp, err := svc.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
		if err != nil {
			return err
		}
		if len(resp.Items) > 0 && resp.Items[0].Snippet != nil {
			channelID = resp.Items[0].Snippet.ChannelId
		}
		return nil
	})
	return channelID, err
}

// Like rates the referenced video "like" and returns its id.
func (c *Client) Like(ctx context.Context, ref string) (string, error) {
	videoID, err := ExtractVideoID(ref)
	if err != nil {
		return "", err
	}

	err = c.call(ctx, "rate video", func(ctx context.Context, svc *yt.Service) error {
		return svc.Videos.Rate(videoID, "like").Context(ctx).Do()
	})
	return videoID, err
}

// Comment posts a top-level comment on the referenced video and returns the
// new comment thread id.
func (c *Client) Comment(ctx context.Context, ref, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", failure.New(failure.InvalidArgument, "comment text cannot be empty")
	}
	videoID, err := ExtractVideoID(ref)
	if err != nil {
		return "", err
	}

	var threadID string
	err = c.call(ctx, "insert comment", func(ctx context.Context, svc *yt.Service) error {
		thread := &yt.CommentThread{
			Snippet: &yt.CommentThreadSnippet{
				VideoId: videoID,
				TopLevelComment: &yt.Comment{
					Snippet: &yt.CommentSnippet{TextOriginal: text},
				},
			},
		}
		created, err := svc.CommentThreads.Insert([]string{"snippet"}, thread).Context(ctx).Do()
		if err != nil {
			return err
		}
		threadID = created.Id
		return nil
	})
	return threadID, err
}

// Subscribe subscribes the user to the channel of the referenced video and
// returns the channel id. The channel is resolved first; when it cannot be,
// no subscription call is made.
func (c *Client) Subscribe(ctx context.Context, ref string) (string, error) {
	videoID, err := ExtractVideoID(ref)
	if err != nil {
		return "", err
	}

	channelID, err := c.ChannelForVideo(ctx, videoID)
	if err != nil {
		return "", err
	}
	if channelID == "" {
		return "", failure.Newf(failure.ChannelNotResolved, "unable to find a channel for video %s", videoID)
	}

	err = c.call(ctx, "insert subscription", func(ctx context.Context, svc *yt.Service) error {
		sub := &yt.Subscription{
			Snippet: &yt.SubscriptionSnippet{
				ResourceId: &yt.ResourceId{
					Kind:      "youtube#channel",
					ChannelId: channelID,
				},
			},
		}
		_, err := svc.Subscriptions.Insert([]string{"snippet"}, sub).Context(ctx).Do()
		return err
	})
	return channelID, err
}

// call runs fn with a freshly authenticated service under the rate limiter
// and the per-call timeout.
func (c *Client) call(ctx context.Context, op string, fn func(ctx context.Context, svc *yt.Service) error) error {
	svc, err := c.service(ctx)
	if err != nil {
		c.logger.Warn().Str("op", op).Str("kind", string(failure.KindOf(err))).Msg("No usable credential")
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(callCtx); err != nil {
		return failure.Wrap(failure.UnexpectedError, err, op+": rate limit wait aborted")
	}

	start := time.Now()
	if err := fn(callCtx, svc); err != nil {
		fe := classify(op, err)
		c.logger.Warn().
			Str("op", op).
			Str("kind", string(fe.Kind)).
			Int("status", fe.Status).
			Dur("duration", time.Since(start)).
			Msg("YouTube API call failed")
		return fe
	}

	c.logger.Debug().Str("op", op).Dur("duration", time.Since(start)).Msg("YouTube API call")
	return nil
}

func (c *Client) service(ctx context.Context) (*yt.Service, error) {
	rec, err := c.credentials.CurrentCredential()
	if err != nil {
		return nil, asFailure(err)
	}
	rec, err = c.credentials.EnsureFresh(ctx, rec)
	if err != nil {
		return nil, asFailure(err)
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(rec.Token()),
			Base:   c.transport,
		},
		Timeout: c.timeout,
	}
	svc, err := yt.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(c.baseURL))
	if err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "failed to create YouTube service")
	}
	return svc, nil
}

// asFailure keeps typed credential failures unchanged.
func asFailure(err error) error {
	if _, ok := failure.As(err); ok {
		return err
	}
	return failure.Wrap(failure.UnexpectedError, err, "credential lookup failed")
}

func videoSummary(v *yt.Video) VideoSummary {
	s := VideoSummary{VideoID: v.Id}
	if v.Snippet != nil {
		s.Title = v.Snippet.Title
		s.ChannelTitle = v.Snippet.ChannelTitle
	}
	return s
}
