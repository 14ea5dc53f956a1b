package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gauthierbraillon/ytagent/internal/failure"
	"github.com/gauthierbraillon/ytagent/pkg/oauth"
)

const (
	stateCookie       = "ytagent_oauth_state"
	stateCookieMaxAge = 10 * 60
)

// CallbackResponse is the body of a completed authorization. RefreshToken is
// present only when the provider issued one.
type CallbackResponse struct {
	Message      string `json:"message"`
	RefreshToken string `json:"refresh_token,omitempty"` // #nosec G117 - shown once to the operator
	Instruction  string `json:"instruction,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Renewable    bool   `json:"renewable"`
	Persisted    bool   `json:"persisted"`
}

// handleAuthLogin handles GET /auth/login?scope=readonly|full&force=true|false.
// It redirects to the consent screen with a fresh state bound to a cookie.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	scope := s.scope
	if raw := r.URL.Query().Get("scope"); raw != "" {
		parsed, err := oauth.ParseScope(raw)
		if err != nil {
			WriteFailure(w, failure.Wrap(failure.InvalidArgument, err, err.Error()))
			return
		}
		scope = parsed
	}
	force, err := boolParam(r, "force", true)
	if err != nil {
		WriteFailure(w, err)
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info().
		Str("scope", scope.String()).
		Bool("force_consent", force).
		Msg("Redirecting to consent screen")

	http.Redirect(w, r, s.authority.AuthorizationURL(scope, state, force), http.StatusFound)
}

// handleAuthCallback handles GET /auth/callback?code=...&state=...
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		WriteFailure(w, failure.Newf(failure.AuthExchangeFailed, "authorization was not granted: %s", providerErr))
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || !validState(cookie.Value, q.Get("state")) {
		s.logger.Warn().Msg("Authorization callback with missing or mismatched state")
		WriteFailure(w, failure.New(failure.AuthExchangeFailed,
			"authorization state is missing or does not match: start again at /auth/login"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true})

	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		WriteFailure(w, failure.New(failure.AuthExchangeFailed, "Missing OAuth authorization code"))
		return
	}

	grant, err := s.authority.CompleteAuthorization(r.Context(), code)
	if err != nil {
		WriteFailure(w, err)
		return
	}

	resp := CallbackResponse{
		Renewable: grant.Renewable(),
		Persisted: grant.Persisted,
	}
	if grant.RefreshTokenIssued {
		resp.Message = "Authorization successful"
		resp.RefreshToken = grant.Record.RefreshToken
		resp.Instruction = grant.Notice()
	} else {
		resp.Message = "Authorization successful, but no refresh token was returned"
		resp.Reason = grant.Notice()
	}
	WriteJSON(w, http.StatusOK, resp)
}

func validState(expected, got string) bool {
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
