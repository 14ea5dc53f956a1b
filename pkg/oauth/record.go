package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// expiryDelta treats access tokens as expired slightly early so a request
// does not leave with a token that dies in flight.
const expiryDelta = 10 * time.Second

// Record is the live credential: an optional access token with its expiry and
// an optional long-lived refresh token.
type Record struct {
	AccessToken  string    `json:"access_token,omitempty"`  // #nosec G117 - JSON field for OAuth token, not an exposed secret
	RefreshToken string    `json:"refresh_token,omitempty"` // #nosec G117 - JSON field for OAuth token, not an exposed secret
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// FreshAt reports whether the access token is present and unexpired at now.
// A token without an expiry is not considered fresh.
func (r Record) FreshAt(now time.Time) bool {
	if r.AccessToken == "" || r.Expiry.IsZero() {
		return false
	}
	return now.Add(expiryDelta).Before(r.Expiry)
}

// Renewable reports whether a refresh token is available.
func (r Record) Renewable() bool {
	return r.RefreshToken != ""
}

// UsableAt reports whether the record can authenticate a call at now, either
// directly or after renewal.
func (r Record) UsableAt(now time.Time) bool {
	return r.Renewable() || r.FreshAt(now)
}

// Token converts the record for use with an oauth2 transport.
func (r Record) Token() *oauth2.Token {
	tokenType := r.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    tokenType,
		Expiry:       r.Expiry,
	}
}

// recordFromToken keeps fallbackRefresh when the provider did not issue a
// new refresh token.
func recordFromToken(tok *oauth2.Token, fallbackRefresh string) Record {
	rec := Record{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if rec.RefreshToken == "" {
		rec.RefreshToken = fallbackRefresh
	}
	return rec
}
