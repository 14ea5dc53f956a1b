// Package main tests document the expected behavior of the ytagent CLI.
//
// These are BLACK BOX tests - they run the root command in-process and check
// stdout/stderr output.
//
// External dependencies mocked:
// - OAuth token endpoint via YTAGENT_TOKEN_URL
// - YouTube Data API via YTAGENT_API_URL
// - Credential snapshot via YTAGENT_CONFIG_DIR
//
// Test requirements (this file serves as documentation):
// - CLI has root command with version info
// - A missing OAuth client is reported before any call
// - "auth exchange" stores the credential and shows the refresh token once
// - Engagement commands renew the credential and print results
// - "recommend" degrades to an empty list without a credential
// - "config" never prints secrets
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeGoogle serves the token endpoint and the YouTube Data API.
type fakeGoogle struct {
	server        *httptest.Server
	refreshHits   atomic.Int32
	exchangeHits  atomic.Int32
	apiHits       atomic.Int32
	lastAuthorize atomic.Value
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{}
	mux := http.NewServeMux()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "authorization_code":
			f.exchangeHits.Add(1)
			if r.PostForm.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Malformed auth code."}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"exchanged-at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt-from-exchange"}`))
		case "refresh_token":
			f.refreshHits.Add(1)
			if r.PostForm.Get("refresh_token") == "revoked" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"renewed-at","token_type":"Bearer","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	mux.HandleFunc("/youtube/v3/", func(w http.ResponseWriter, r *http.Request) {
		f.apiHits.Add(1)
		f.lastAuthorize.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/youtube/v3/search":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": map[string]any{"videoId": "dQw4w9WgXcQ"}, "snippet": map[string]any{"title": "Learning Go Generics", "channelTitle": "Go Channel"}},
				},
			})
		case "/youtube/v3/videos":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "aaaaaaaaaaa", "snippet": map[string]any{"title": "Liked Video Title", "channelTitle": "Liked Channel", "channelId": "UC1"}},
				},
			})
		case "/youtube/v3/videos/rate":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// testEnv isolates the CLI from the developer's environment.
func testEnv(t *testing.T, f *fakeGoogle) (configDir string) {
	t.Helper()
	for _, key := range []string{
		"YTAGENT_CLIENT_SECRET_JSON", "YTAGENT_REDIRECT_URL", "YTAGENT_AUTH_URL", "YTAGENT_SCOPE",
		"YTAGENT_REFRESH_TOKEN", "YTAGENT_TOKEN_STORE", "YTAGENT_REQUEST_TIMEOUT", "YTAGENT_RATE_LIMIT",
		"YTAGENT_SEARCH_WORKERS", "YTAGENT_HTTP_ADDR", "YTAGENT_LOG_LEVEL", "YTAGENT_TOKEN_URL", "YTAGENT_API_URL",
	} {
		t.Setenv(key, "")
	}
	configDir = t.TempDir()
	t.Setenv("YTAGENT_CONFIG_DIR", configDir)
	t.Setenv("YTAGENT_CLIENT_ID", "test-client-id")
	t.Setenv("YTAGENT_CLIENT_SECRET", "test-client-secret")
	t.Setenv("YTAGENT_LOG_FORMAT", "json")
	if f != nil {
		t.Setenv("YTAGENT_TOKEN_URL", f.server.URL+"/token")
		t.Setenv("YTAGENT_API_URL", f.server.URL)
	}
	return configDir
}

// runCLI executes the root command with the given arguments.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	cmd := newRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		exitCode = 1
	}
	return outBuf.String(), errBuf.String(), exitCode
}

// TestRootCommand_Help verifies help output shows available commands.
func TestRootCommand_Help(t *testing.T) {
	stdout, _, _ := runCLI(t, "--help")
	output := strings.ToLower(stdout)

	expects := []string{"ytagent", "usage", "auth", "search", "liked", "recommend", "like", "comment", "subscribe", "serve"}
	for _, want := range expects {
		if !strings.Contains(output, want) {
			t.Errorf("help should contain %q, got:\n%s", want, stdout)
		}
	}
}

// TestRootCommand_Version verifies version output.
func TestRootCommand_Version(t *testing.T) {
	stdout, _, _ := runCLI(t, "--version")

	if !strings.HasPrefix(stdout, "ytagent version ") {
		t.Errorf("version should show ytagent and version, got:\n%s", stdout)
	}
}

// TestSearch_RequiresClientIdentity verifies the fatal startup precondition.
func TestSearch_RequiresClientIdentity(t *testing.T) {
	testEnv(t, nil)
	t.Setenv("YTAGENT_CLIENT_ID", "")

	_, stderr, exitCode := runCLI(t, "search", "golang")

	if exitCode == 0 {
		t.Error("should fail without an OAuth client")
	}
	if !strings.Contains(stderr, "YTAGENT_CLIENT_ID") {
		t.Errorf("error should name the missing setting, got:\n%s", stderr)
	}
}

// TestSearch_RenewsConfiguredRefreshToken verifies the configured refresh
// token is exchanged for an access token before the first call.
func TestSearch_RenewsConfiguredRefreshToken(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)
	t.Setenv("YTAGENT_REFRESH_TOKEN", "configured-rt")

	stdout, stderr, exitCode := runCLI(t, "search", "go", "generics", "--max", "3")

	if exitCode != 0 {
		t.Fatalf("search should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "Learning Go Generics") {
		t.Errorf("output should contain the search result, got:\n%s", stdout)
	}
	if f.refreshHits.Load() != 1 {
		t.Errorf("expected one renewal, got %d", f.refreshHits.Load())
	}
	if got := f.lastAuthorize.Load(); got != "Bearer renewed-at" {
		t.Errorf("API should receive the renewed token, got %v", got)
	}
	if strings.Contains(stderr, "configured-rt") || strings.Contains(stderr, "renewed-at") {
		t.Errorf("logs must not contain tokens:\n%s", stderr)
	}
}

// TestSearch_WithoutCredential verifies the user is told to authorize.
func TestSearch_WithoutCredential(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)

	_, stderr, exitCode := runCLI(t, "search", "golang")

	if exitCode == 0 {
		t.Error("search should fail without a credential")
	}
	if !strings.Contains(stderr, "auth login") {
		t.Errorf("error should explain how to authorize, got:\n%s", stderr)
	}
	if f.apiHits.Load() != 0 {
		t.Errorf("no API call should be made, got %d", f.apiHits.Load())
	}
}

// TestSearch_RevokedRefreshToken verifies a rejected renewal asks for re-authorization.
func TestSearch_RevokedRefreshToken(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)
	t.Setenv("YTAGENT_REFRESH_TOKEN", "revoked")

	_, stderr, exitCode := runCLI(t, "liked")

	if exitCode == 0 {
		t.Error("liked should fail with a revoked refresh token")
	}
	if !strings.Contains(stderr, "renewal_failed") {
		t.Errorf("error should report the renewal failure, got:\n%s", stderr)
	}
}

// TestRecommend_EmptyWithoutCredential verifies recommendations degrade gracefully.
func TestRecommend_EmptyWithoutCredential(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)

	stdout, stderr, exitCode := runCLI(t, "recommend")

	if exitCode != 0 {
		t.Fatalf("recommend should not fail, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "No videos to display.") {
		t.Errorf("user should see an empty list, got:\n%s", stdout)
	}
}

// TestRecommend_FromLikedVideos verifies seeds from liked titles drive searches.
func TestRecommend_FromLikedVideos(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)
	t.Setenv("YTAGENT_REFRESH_TOKEN", "configured-rt")

	stdout, stderr, exitCode := runCLI(t, "recommend", "--max", "5")

	if exitCode != 0 {
		t.Fatalf("recommend should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "Learning Go Generics") {
		t.Errorf("user should see a recommendation, got:\n%s", stdout)
	}
}

// TestLike_InvalidReference verifies the video reference is validated.
func TestLike_InvalidReference(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)
	t.Setenv("YTAGENT_REFRESH_TOKEN", "configured-rt")

	_, stderr, exitCode := runCLI(t, "like", "not a url")

	if exitCode == 0 {
		t.Error("like should fail for an invalid reference")
	}
	if !strings.Contains(stderr, "invalid_video_reference") {
		t.Errorf("error should name the invalid reference, got:\n%s", stderr)
	}
}

// TestLike_AcceptsShareURL verifies a youtu.be URL is resolved.
func TestLike_AcceptsShareURL(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)
	t.Setenv("YTAGENT_REFRESH_TOKEN", "configured-rt")

	stdout, stderr, exitCode := runCLI(t, "like", "https://youtu.be/dQw4w9WgXcQ")

	if exitCode != 0 {
		t.Fatalf("like should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "dQw4w9WgXcQ") {
		t.Errorf("output should show the liked video id, got:\n%s", stdout)
	}
}

// TestAuthExchange_PersistsSnapshot verifies the grant is stored and reused.
func TestAuthExchange_PersistsSnapshot(t *testing.T) {
	f := newFakeGoogle(t)
	configDir := testEnv(t, f)

	stdout, stderr, exitCode := runCLI(t, "auth", "exchange", "good-code")

	if exitCode != 0 {
		t.Fatalf("exchange should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "rt-from-exchange") {
		t.Errorf("user should see the refresh token once, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "YTAGENT_REFRESH_TOKEN") {
		t.Errorf("user should be told how to reuse the refresh token, got:\n%s", stdout)
	}
	if strings.Contains(stderr, "rt-from-exchange") {
		t.Errorf("refresh token must not be logged:\n%s", stderr)
	}
	if _, err := os.Stat(filepath.Join(configDir, "youtube_token.json")); err != nil {
		t.Fatalf("snapshot should be written: %v", err)
	}

	stdout, stderr, exitCode = runCLI(t, "liked")

	if exitCode != 0 {
		t.Fatalf("liked should use the stored credential, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "Liked Video Title") {
		t.Errorf("output should list liked videos, got:\n%s", stdout)
	}
	if f.refreshHits.Load() != 0 {
		t.Errorf("a fresh stored access token should not be renewed, got %d renewals", f.refreshHits.Load())
	}
	if got := f.lastAuthorize.Load(); got != "Bearer exchanged-at" {
		t.Errorf("API should receive the stored token, got %v", got)
	}
}

// TestAuthExchange_SQLiteStore verifies the sqlite driver stores the snapshot.
func TestAuthExchange_SQLiteStore(t *testing.T) {
	f := newFakeGoogle(t)
	configDir := testEnv(t, f)
	t.Setenv("YTAGENT_TOKEN_STORE", "sqlite")

	if _, stderr, exitCode := runCLI(t, "auth", "exchange", "good-code"); exitCode != 0 {
		t.Fatalf("exchange should succeed, stderr:\n%s", stderr)
	}
	if _, err := os.Stat(filepath.Join(configDir, "credentials.db")); err != nil {
		t.Fatalf("sqlite database should be created: %v", err)
	}

	stdout, stderr, exitCode := runCLI(t, "config")
	if exitCode != 0 {
		t.Fatalf("config should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "snapshot") {
		t.Errorf("credential source should be the snapshot, got:\n%s", stdout)
	}
}

// TestAuthExchange_InvalidCode verifies a bad code is reported.
func TestAuthExchange_InvalidCode(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)

	_, stderr, exitCode := runCLI(t, "auth", "exchange", "bad-code")

	if exitCode == 0 {
		t.Error("exchange should fail for an invalid code")
	}
	if !strings.Contains(stderr, "auth_exchange_failed") {
		t.Errorf("error should report the failed exchange, got:\n%s", stderr)
	}
}

// TestAuthLogin_PrintsLoginURL verifies the URL targets the serve process.
func TestAuthLogin_PrintsLoginURL(t *testing.T) {
	testEnv(t, nil)

	stdout, stderr, exitCode := runCLI(t, "auth", "login", "--no-browser", "--scope", "readonly", "--no-force")

	if exitCode != 0 {
		t.Fatalf("auth login should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "http://localhost:8080/auth/login?force=false&scope=readonly") {
		t.Errorf("user should see the login URL, got:\n%s", stdout)
	}
}

// TestAuthLogin_RejectsUnknownScope verifies scope validation.
func TestAuthLogin_RejectsUnknownScope(t *testing.T) {
	testEnv(t, nil)

	_, stderr, exitCode := runCLI(t, "auth", "login", "--no-browser", "--scope", "admin")

	if exitCode == 0 {
		t.Error("should fail with an unknown scope")
	}
	if !strings.Contains(stderr, "unknown scope") {
		t.Errorf("error should mention the scope, got:\n%s", stderr)
	}
}

// TestConfigCommand_HidesSecrets verifies config output.
func TestConfigCommand_HidesSecrets(t *testing.T) {
	f := newFakeGoogle(t)
	configDir := testEnv(t, f)
	t.Setenv("YTAGENT_REFRESH_TOKEN", "configured-rt")

	stdout, stderr, exitCode := runCLI(t, "config")

	if exitCode != 0 {
		t.Fatalf("config should succeed, stderr:\n%s", stderr)
	}
	for _, want := range []string{configDir, "configuration", "file"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config output should contain %q, got:\n%s", want, stdout)
		}
	}
	for _, secret := range []string{"test-client-secret", "configured-rt"} {
		if strings.Contains(stdout, secret) {
			t.Errorf("config output must not contain %q", secret)
		}
	}
}

// TestConfigCommand_UnreadableClientJSON verifies a client secret file that
// cannot be read stops startup with its error.
func TestConfigCommand_UnreadableClientJSON(t *testing.T) {
	testEnv(t, nil)
	t.Setenv("YTAGENT_CLIENT_ID", "")
	t.Setenv("YTAGENT_CLIENT_SECRET", "")
	t.Setenv("YTAGENT_CLIENT_SECRET_JSON", filepath.Join(t.TempDir(), "missing.json"))

	_, stderr, exitCode := runCLI(t, "config")

	if exitCode == 0 {
		t.Error("config should fail when the client secret file is missing")
	}
	if !strings.Contains(stderr, "failed to read client secret JSON") {
		t.Errorf("error should name the unreadable client file, got:\n%s", stderr)
	}
}

// TestSearch_ClientJSONFile verifies the identity read from a client secret
// file drives renewal.
func TestSearch_ClientJSONFile(t *testing.T) {
	f := newFakeGoogle(t)
	testEnv(t, f)
	path := filepath.Join(t.TempDir(), "client_secret.json")
	doc := `{"installed":{"client_id":"file-id","client_secret":"file-secret",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",` +
		`"redirect_uris":["http://localhost:8080/auth/callback"]}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("YTAGENT_CLIENT_ID", "")
	t.Setenv("YTAGENT_CLIENT_SECRET", "")
	t.Setenv("YTAGENT_CLIENT_SECRET_JSON", path)
	t.Setenv("YTAGENT_REFRESH_TOKEN", "configured-rt")

	stdout, stderr, exitCode := runCLI(t, "search", "golang")

	if exitCode != 0 {
		t.Fatalf("search should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "Learning Go Generics") {
		t.Errorf("output should contain the search result, got:\n%s", stdout)
	}
	if f.refreshHits.Load() != 1 {
		t.Errorf("expected one renewal through the overridden token URL, got %d", f.refreshHits.Load())
	}
}
