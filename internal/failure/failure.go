// Package failure defines the error taxonomy shared by the credential
// authority, the engagement client and the HTTP layer.
//
// Every operation that talks to the video platform returns either a value or
// a *Error. Callers switch on Kind instead of inspecting error strings.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// NoCredentialAvailable means nobody has authorized the application yet.
	// A human must complete the authorization flow.
	NoCredentialAvailable Kind = "no_credential_available"
	// AuthExchangeFailed means the authorization code was invalid, expired
	// or already used.
	AuthExchangeFailed Kind = "auth_exchange_failed"
	// RenewalFailed means the refresh token is missing or was rejected.
	// Re-authorization is required.
	RenewalFailed Kind = "renewal_failed"
	// InvalidVideoReference means a video id or URL could not be parsed.
	InvalidVideoReference Kind = "invalid_video_reference"
	// ChannelNotResolved means the channel lookup for a video returned nothing.
	ChannelNotResolved Kind = "channel_not_resolved"
	// InvalidArgument means the caller supplied unusable input.
	InvalidArgument Kind = "invalid_argument"
	// RemoteAPIError is a structured failure reported by the provider.
	RemoteAPIError Kind = "remote_api_error"
	// UnexpectedError covers network, decoding and unclassified failures.
	UnexpectedError Kind = "unexpected_error"
)

// Terminal reports whether the failure needs human action (authorizing the
// application again) before a retry can succeed.
func (k Kind) Terminal() bool {
	return k == NoCredentialAvailable || k == RenewalFailed
}

// Error is the typed failure value returned across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	// Status is the remote HTTP status for RemoteAPIError, zero otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind when the target carries no message,
// which lets the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrNoCredentialAvailable = &Error{Kind: NoCredentialAvailable}
	ErrAuthExchangeFailed    = &Error{Kind: AuthExchangeFailed}
	ErrRenewalFailed         = &Error{Kind: RenewalFailed}
	ErrInvalidVideoReference = &Error{Kind: InvalidVideoReference}
	ErrChannelNotResolved    = &Error{Kind: ChannelNotResolved}
	ErrInvalidArgument       = &Error{Kind: InvalidArgument}
	ErrRemoteAPI             = &Error{Kind: RemoteAPIError}
	ErrUnexpected            = &Error{Kind: UnexpectedError}
)

// New returns a failure of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of the given kind around err.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf classifies err. Foreign errors are UnexpectedError; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return UnexpectedError
}

// Message returns the human-readable message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if fe, ok := As(err); ok && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}
