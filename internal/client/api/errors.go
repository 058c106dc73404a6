package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrorKind classifies a failed backend call by what is known about it.
type ErrorKind int

const (
	// KindBackendMessage means the backend answered with an error body
	// carrying a human-readable message.
	KindBackendMessage ErrorKind = iota
	// KindStatusOnly means the backend answered non-2xx without a
	// usable message.
	KindStatusOnly
	// KindNoResponse means no response was received at all.
	KindNoResponse
	// KindTimeout means the request hit the client-side deadline.
	KindTimeout
)

// Error is a classified backend call failure. The wizard turns it into
// a user-facing message; the raw cause never reaches the user.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBackendMessage:
		return fmt.Sprintf("backend error: %s", e.Message)
	case KindStatusOnly:
		return fmt.Sprintf("backend status %d", e.StatusCode)
	case KindTimeout:
		return "request timed out"
	default:
		return "no response from backend"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Reason renders the kind-specific part of a user-facing message,
// suitable after a "Submission failed: " style prefix.
func (e *Error) Reason() string {
	switch e.Kind {
	case KindBackendMessage:
		return e.Message
	case KindStatusOnly:
		return fmt.Sprintf("Server responded with status %d.", e.StatusCode)
	case KindTimeout:
		return "The request timed out. Please check your connection and try again."
	default:
		return "No response received from server."
	}
}

// classifyTransport maps a transport-level failure (no HTTP response)
// to a timeout or no-response Error.
func classifyTransport(err error) *Error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNoResponse, Err: err}
}

// classifyResponse maps a non-2xx response to a backend-message or
// status-only Error. Error bodies are expected as {"message": "..."}.
func classifyResponse(resp *http.Response) *Error {
	apiErr := &Error{Kind: KindStatusOnly, StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Kind = KindBackendMessage
		apiErr.Message = payload.Message
	}
	return apiErr
}
