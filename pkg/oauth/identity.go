// Package oauth implements the credential authority for the YouTube Data API:
// the authorization-code handshake, the credential snapshot, and access-token
// renewal.
package oauth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultRedirectURL is the callback served by `ytagent serve`.
const DefaultRedirectURL = "http://localhost:8080/auth/callback"

// ClientIdentity identifies this application to the provider. It is loaded
// once at startup and never changes afterwards.
type ClientIdentity struct {
	ClientID     string
	ClientSecret string // #nosec G117 - OAuth client config, not an exposed secret
	AuthURL      string
	TokenURL     string
	RedirectURL  string
}

// YouTubeIdentity returns an identity using Google's OAuth endpoints.
func YouTubeIdentity(clientID, clientSecret, redirectURL string) ClientIdentity {
	return ClientIdentity{ // #nosec G101 -- OAuth URLs are public API endpoints, not hardcoded credentials
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      google.Endpoint.AuthURL,
		TokenURL:     google.Endpoint.TokenURL,
		RedirectURL:  redirectURL,
	}
}

// IdentityFromJSON parses a client-secret document downloaded from the Google
// console ({"web": {...}} or {"installed": {...}}). A non-empty redirectURL
// replaces the first redirect URI listed in the document.
func IdentityFromJSON(data []byte, redirectURL string) (ClientIdentity, error) {
	conf, err := google.ConfigFromJSON(data)
	if err != nil {
		return ClientIdentity{}, fmt.Errorf("failed to parse client secret JSON: %w", err)
	}
	id := ClientIdentity{
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		AuthURL:      conf.Endpoint.AuthURL,
		TokenURL:     conf.Endpoint.TokenURL,
		RedirectURL:  conf.RedirectURL,
	}
	if redirectURL != "" {
		id.RedirectURL = redirectURL
	}
	return id, nil
}

// Validate reports whether the identity can drive the authorization flow.
func (c ClientIdentity) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if c.TokenURL == "" {
		missing = append(missing, "token URL")
	}
	if c.AuthURL == "" {
		missing = append(missing, "authorization URL")
	}
	if c.RedirectURL == "" {
		missing = append(missing, "redirect URL")
	}
	if len(missing) > 0 {
		return errors.New("incomplete client identity: missing " + strings.Join(missing, ", "))
	}
	return nil
}

func (c ClientIdentity) config(scope Scope) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       scope.URLs(),
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Scope is the capability requested during authorization. It is fixed when
// the authorization URL is built; widening it requires authorizing again.
type Scope int

const (
	// ScopeReadOnly allows search and listing liked videos.
	ScopeReadOnly Scope = iota
	// ScopeFullAccess additionally allows rating, commenting and subscribing.
	ScopeFullAccess
)

const (
	youtubeScope         = "https://www.googleapis.com/auth/youtube"
	youtubeForceSSLScope = "https://www.googleapis.com/auth/youtube.force-ssl"
	youtubeReadOnlyScope = "https://www.googleapis.com/auth/youtube.readonly"
)

// URLs returns the provider scope strings for s.
func (s Scope) URLs() []string {
	if s == ScopeFullAccess {
		return []string{youtubeScope, youtubeForceSSLScope, youtubeReadOnlyScope}
	}
	return []string{youtubeReadOnlyScope}
}

func (s Scope) String() string {
	if s == ScopeFullAccess {
		return "full"
	}
	return "readonly"
}

// ParseScope accepts "readonly" or "full".
func ParseScope(v string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "readonly", "read-only", "read":
		return ScopeReadOnly, nil
	case "full", "", "readwrite", "read-write":
		return ScopeFullAccess, nil
	default:
		return ScopeReadOnly, fmt.Errorf("unknown scope %q: must be 'readonly' or 'full'", v)
	}
}
