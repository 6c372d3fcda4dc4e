package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotAuthenticated is returned when a remote call is made without an
// active identity.
var ErrNotAuthenticated = errors.New("remote: not authenticated")

// APIError is a non-2xx response from the backend.
type APIError struct {
	// StatusCode is the HTTP status.
	StatusCode int

	// Message is the backend's error message, when one was decoded.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote: request failed with status %d: %s", e.StatusCode, e.Message)
}

// newAPIError builds an APIError from a response, best-effort decoding a
// JSON {"error": "..."} body.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error
	}

	return apiErr
}
