package youtube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/gauthierbraillon/ytagent/internal/failure"
)

// classify converts a failure from the API call into the failure taxonomy.
func classify(op string, err error) *failure.Error {
	if fe, ok := failure.As(err); ok {
		return fe
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = statusMessage(apiErr.Code)
		}
		fe := failure.Wrap(failure.RemoteAPIError, err, "YouTube API: "+msg)
		fe.Status = apiErr.Code
		return fe
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return failure.Wrap(failure.UnexpectedError, err, fmt.Sprintf("%s timed out", op))
	}
	return failure.Wrap(failure.UnexpectedError, err, fmt.Sprintf("%s failed: %v", op, err))
}

// statusMessage is used when the provider returns no diagnostic text.
func statusMessage(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return "authentication failed - please authorize again at /auth/login"
	case http.StatusForbidden:
		return "access denied - check the granted OAuth scope"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusTooManyRequests:
		return "rate limit or quota exceeded - please try again later"
	case http.StatusServiceUnavailable:
		return "temporarily unavailable - please try again in a few minutes"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return "server error - please try again later"
	default:
		return fmt.Sprintf("request failed (status %d)", statusCode)
	}
}
