package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gauthierbraillon/ytagent/internal/failure"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the error body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse is the body of a successful like, comment or subscribe.
type MessageResponse struct {
	Message   string `json:"message"`
	VideoID   string `json:"videoId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteFailure renders err with the status derived from its kind.
func WriteFailure(w http.ResponseWriter, err error) {
	kind := failure.KindOf(err)
	WriteJSON(w, StatusFor(kind), ErrorResponse{Error: failure.Message(err), Code: string(kind)})
}

// StatusFor maps a failure kind to an HTTP status.
func StatusFor(kind failure.Kind) int {
	switch kind {
	case failure.NoCredentialAvailable, failure.RenewalFailed:
		return http.StatusUnauthorized
	case failure.AuthExchangeFailed, failure.InvalidVideoReference, failure.InvalidArgument:
		return http.StatusBadRequest
	case failure.ChannelNotResolved:
		return http.StatusNotFound
	case failure.RemoteAPIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteFailure(w, failure.New(failure.InvalidArgument, "Request body is required"))
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteFailure(w, failure.Wrap(failure.InvalidArgument, err, "Invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// intParam parses a positive integer query parameter, returning def when it
// is absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, failure.Newf(failure.InvalidArgument, "%s must be a positive integer", name)
	}
	return n, nil
}

// boolParam parses a boolean query parameter, returning def when it is absent.
func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, failure.Wrap(failure.InvalidArgument, err, name+" must be true or false")
	}
	return b, nil
}
