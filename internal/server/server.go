// Package server exposes the credential authority, the engagement client and
// the recommendation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gauthierbraillon/ytagent/internal/logging"
	"github.com/gauthierbraillon/ytagent/internal/youtube"
	"github.com/gauthierbraillon/ytagent/pkg/oauth"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Authorizer drives the authorization-code handshake. *oauth.Authority
// implements it.
type Authorizer interface {
	AuthorizationURL(scope oauth.Scope, state string, forceConsent bool) string
	CompleteAuthorization(ctx context.Context, code string) (oauth.Grant, error)
}

// Engagement is the read/write API surface. *youtube.Client implements it.
type Engagement interface {
	Search(ctx context.Context, query string, maxResults int) ([]youtube.VideoSummary, error)
	Liked(ctx context.Context, maxResults int) ([]youtube.VideoSummary, error)
	Like(ctx context.Context, ref string) (string, error)
	Comment(ctx context.Context, ref, text string) (string, error)
	Subscribe(ctx context.Context, ref string) (string, error)
}

// Recommender builds recommendations. *recommend.Pipeline implements it.
type Recommender interface {
	Recommend(ctx context.Context, maxResults int) []youtube.VideoSummary
}

// Deps are the collaborators served over HTTP.
type Deps struct {
	Authority   Authorizer
	Engagement  Engagement
	Recommender Recommender
	// Scope is requested by /auth/login when the query does not name one.
	Scope  oauth.Scope
	Logger *logging.Logger
}

// Server wraps the HTTP server and its collaborators.
type Server struct {
	authority   Authorizer
	engagement  Engagement
	recommender Recommender
	scope       oauth.Scope
	logger      *logging.Logger
	server      *http.Server
}

// NewServer creates the HTTP server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewSilent()
	}
	s := &Server{
		authority:   deps.Authority,
		engagement:  deps.Engagement,
		recommender: deps.Recommender,
		scope:       deps.Scope,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      applyMiddleware(mux, logger),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
