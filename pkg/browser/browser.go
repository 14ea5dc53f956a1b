// Package browser opens the consent screen in the user's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Open opens the specified URL in the default browser.
// It validates the URL before passing it to the system browser to prevent command injection.
func Open(urlString string) error {
	cmd, err := command(runtime.GOOS, urlString)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// command builds the launcher for goos without starting it.
func command(goos, urlString string) (*exec.Cmd, error) {
	// Validate URL to prevent command injection (fixes G204/CWE-78)
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Whitelist allowed schemes to prevent malicious URLs
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: missing host in %q", urlString)
	}

	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", parsedURL.String()), nil // #nosec G204 -- URL validated above
	case "darwin":
		return exec.Command("open", parsedURL.String()), nil // #nosec G204 -- URL validated above
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", parsedURL.String()), nil // #nosec G204 -- URL validated above
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
