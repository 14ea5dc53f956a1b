package oauth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/gauthierbraillon/ytagent/internal/failure"
	"github.com/gauthierbraillon/ytagent/internal/logging"
)

const (
	// DefaultTimeout bounds every call to the token endpoint.
	DefaultTimeout = 15 * time.Second

	// defaultAccessTokenLifetime is used when the token endpoint omits
	// expires_in. Google access tokens live one hour.
	defaultAccessTokenLifetime = time.Hour
)

// Source names where the live credential came from.
type Source string

const (
	SourceNone          Source = "none"
	SourceConfiguration Source = "configuration"
	SourceSnapshot      Source = "snapshot"
	SourceAuthorization Source = "authorization"
)

// Authority owns the single live credential of the process. It is safe for
// concurrent use; renewal of a given refresh token is never issued twice at
// the same time.
type Authority struct {
	identity   ClientIdentity
	configured string
	store      Store
	httpClient *http.Client
	timeout    time.Duration
	logger     *logging.Logger
	now        func() time.Time

	mu       sync.RWMutex
	current  *Record
	source   Source
	renewals singleflight.Group
}

// AuthorityOption configures the Authority.
type AuthorityOption func(*Authority)

// WithStore sets the snapshot store read at construction and written after
// a successful authorization.
func WithStore(store Store) AuthorityOption {
	return func(a *Authority) { a.store = store }
}

// WithRefreshToken supplies a trusted long-lived refresh token from
// configuration. It takes precedence over any snapshot.
func WithRefreshToken(refreshToken string) AuthorityOption {
	return func(a *Authority) { a.configured = strings.TrimSpace(refreshToken) }
}

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(client *http.Client) AuthorityOption {
	return func(a *Authority) { a.httpClient = client }
}

// WithTimeout bounds each token endpoint call.
func WithTimeout(timeout time.Duration) AuthorityOption {
	return func(a *Authority) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) AuthorityOption {
	return func(a *Authority) { a.logger = logger }
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) AuthorityOption {
	return func(a *Authority) { a.now = now }
}

// NewAuthority builds the authority and resolves the initial credential:
// a configured refresh token if present, otherwise the stored snapshot.
func NewAuthority(ctx context.Context, identity ClientIdentity, opts ...AuthorityOption) (*Authority, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	a := &Authority{
		identity:   identity,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		timeout:    DefaultTimeout,
		logger:     logging.NewSilent(),
		now:        time.Now,
		source:     SourceNone,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.loadInitial(ctx)
	return a, nil
}

func (a *Authority) loadInitial(ctx context.Context) {
	if a.configured != "" {
		a.current = &Record{RefreshToken: a.configured}
		a.source = SourceConfiguration
		a.logger.Info().Str("source", string(a.source)).Msg("Using configured refresh token")
		return
	}
	if a.store == nil {
		return
	}

	rec, err := a.store.Load(ctx)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		a.logger.Debug().Msg("No credential snapshot found")
		return
	case err != nil:
		a.logger.Warn().Err(err).Msg("Ignoring unreadable credential snapshot")
		return
	}

	a.current = &rec
	a.source = SourceSnapshot
	a.logger.Info().
		Str("source", string(a.source)).
		Bool("renewable", rec.Renewable()).
		Msg("Loaded credential snapshot")
}

// Source reports where the live credential came from.
func (a *Authority) Source() Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source
}

// AuthorizationURL builds the consent URL for scope. Offline access is always
// requested. The provider only issues a refresh token from a consent screen:
// without forceConsent a user who already granted access may be redirected
// straight back, and the resulting code yields no refresh token. That is
// provider behaviour, not an error.
func (a *Authority) AuthorizationURL(scope Scope, state string, forceConsent bool) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	}
	if forceConsent {
		opts = append(opts, oauth2.ApprovalForce)
	}
	return a.identity.config(scope).AuthCodeURL(state, opts...)
}

// Grant is the outcome of an authorization-code exchange. The refresh token
// inside Record is surfaced here once; it is never logged.
type Grant struct {
	Record             Record
	RefreshTokenIssued bool
	Persisted          bool
}

// Renewable reports whether the granted credential can be renewed after the
// access token expires.
func (g Grant) Renewable() bool {
	return g.Record.Renewable()
}

// Notice is the operator-facing explanation of the grant.
func (g Grant) Notice() string {
	if g.RefreshTokenIssued {
		return "Set YTAGENT_REFRESH_TOKEN to this refresh token for stateless deployments. It is shown only once."
	}
	return "No refresh token was returned. The provider only issues one on the first consent for this client. " +
		"The access token works until it expires, after which renewal is impossible. " +
		"Authorize again with forced consent (the default for /auth/login) to obtain a refresh token."
}

// CompleteAuthorization exchanges a one-time authorization code for tokens.
// A grant carrying a refresh token is written to the snapshot store.
func (a *Authority) CompleteAuthorization(ctx context.Context, code string) (Grant, error) {
	if strings.TrimSpace(code) == "" {
		return Grant{}, failure.New(failure.AuthExchangeFailed, "missing authorization code")
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	callCtx = context.WithValue(callCtx, oauth2.HTTPClient, a.httpClient)

	tok, err := a.identity.config(ScopeReadOnly).Exchange(callCtx, code)
	if err != nil {
		a.logger.Warn().Str("reason", retrieveReason(err)).Msg("Authorization code exchange failed")
		return Grant{}, failure.Wrap(failure.AuthExchangeFailed, err,
			"authorization code is invalid, expired or already used: "+retrieveReason(err))
	}

	rec := a.stamp(recordFromToken(tok, ""))
	grant := Grant{Record: rec, RefreshTokenIssued: rec.RefreshToken != ""}

	if grant.RefreshTokenIssued && a.store != nil {
		if err := a.store.Save(ctx, rec); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to persist credential snapshot")
		} else {
			grant.Persisted = true
		}
	}

	a.mu.Lock()
	if a.configured != "" {
		a.logger.Warn().Msg("Authorization completed but the configured refresh token stays active")
	} else {
		a.current = &rec
		a.source = SourceAuthorization
	}
	a.mu.Unlock()

	a.logger.Info().
		Bool("refresh_token_issued", grant.RefreshTokenIssued).
		Bool("persisted", grant.Persisted).
		Time("expiry", rec.Expiry).
		Msg("Authorization completed")

	return grant, nil
}

// CurrentCredential returns the live credential. Calling it twice without a
// renewal in between returns the same record.
func (a *Authority) CurrentCredential() (Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return Record{}, failure.New(failure.NoCredentialAvailable,
			"no YouTube authorization found: visit /auth/login or run 'ytagent auth login'")
	}
	return *a.current, nil
}

// EnsureFresh returns rec unchanged while its access token is valid, and
// otherwise renews it with the refresh token. Concurrent renewals of the same
// refresh token share one token endpoint call.
func (a *Authority) EnsureFresh(ctx context.Context, rec Record) (Record, error) {
	if rec.FreshAt(a.now()) {
		return rec, nil
	}
	if !rec.Renewable() {
		return Record{}, failure.New(failure.RenewalFailed,
			"access token expired and no refresh token is available: authorize again")
	}
	if live, ok := a.freshLive(rec.RefreshToken); ok {
		return live, nil
	}

	v, err, _ := a.renewals.Do(rec.RefreshToken, func() (any, error) {
		if live, ok := a.freshLive(rec.RefreshToken); ok {
			return live, nil
		}
		// Waiters share this call, so it must outlive the first caller's cancellation.
		return a.refresh(context.WithoutCancel(ctx), rec)
	})
	if err != nil {
		return Record{}, err
	}
	return v.(Record), nil
}

func (a *Authority) freshLive(refreshToken string) (Record, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil || a.current.RefreshToken != refreshToken || !a.current.FreshAt(a.now()) {
		return Record{}, false
	}
	return *a.current, true
}

func (a *Authority) refresh(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	start := time.Now()
	src := a.identity.config(ScopeReadOnly).TokenSource(ctx, &oauth2.Token{RefreshToken: rec.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		if refreshRejected(err) {
			a.logger.Warn().Str("reason", retrieveReason(err)).Msg("Token refresh rejected")
			return Record{}, failure.Wrap(failure.RenewalFailed, err,
				"refresh token was rejected, authorize again: "+retrieveReason(err))
		}
		a.logger.Warn().Str("reason", retrieveReason(err)).Msg("Token refresh request failed")
		return Record{}, failure.Wrap(failure.UnexpectedError, err,
			"token refresh request failed: "+retrieveReason(err))
	}

	renewed := a.stamp(recordFromToken(tok, rec.RefreshToken))

	a.mu.Lock()
	if a.current != nil && a.current.RefreshToken == rec.RefreshToken {
		a.current = &renewed
	}
	a.mu.Unlock()

	a.logger.Info().
		Dur("duration", time.Since(start)).
		Time("expiry", renewed.Expiry).
		Bool("refresh_token_rotated", renewed.RefreshToken != rec.RefreshToken).
		Msg("Access token renewed")

	return renewed, nil
}

func (a *Authority) stamp(rec Record) Record {
	if rec.AccessToken != "" && rec.Expiry.IsZero() {
		rec.Expiry = a.now().Add(defaultAccessTokenLifetime)
	}
	return rec
}

// refreshRejected reports whether the token endpoint refused the refresh
// token itself. Server errors and transport failures are not rejections.
func refreshRejected(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	switch re.ErrorCode {
	case "invalid_grant", "unauthorized_client", "invalid_client":
		return true
	}
	return re.Response != nil && re.Response.StatusCode >= 400 && re.Response.StatusCode < 500
}

// retrieveReason extracts the provider's diagnostic without echoing secrets.
func retrieveReason(err error) string {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err.Error()
	}
	switch {
	case re.ErrorDescription != "":
		return re.ErrorDescription
	case re.ErrorCode != "":
		return re.ErrorCode
	case re.Response != nil:
		return http.StatusText(re.Response.StatusCode)
	default:
		return "token endpoint error"
	}
}
