package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/sentineliq/internal/common"
)

var errUnexpectedStatus = errors.New("unexpected status")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (status %d): %s", e.err, e.Status, e.Message)
	}
	return fmt.Sprintf("%v (status %d)", e.err, e.Status)
}

func (e *APIError) Unwrap() error { return e.err }

// mapStatus turns an HTTP status and the server's message into an error that
// unwraps to one of the common sentinels.
func mapStatus(status int, message string) error {
	var err error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		err = common.ErrAuthRequired
	case status == http.StatusNotFound:
		err = common.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		err = common.ErrValidation
	case status >= 500:
		err = common.ErrUnavailable
	default:
		err = errUnexpectedStatus
	}
	return &APIError{Status: status, Message: message, err: err}
}

// readMessage extracts {"message": "..."} from an error body, falling back to
// the raw text for non-JSON bodies.
func readMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(b) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	return strings.TrimSpace(string(b))
}

// UserMessage returns the server-provided message of err, or fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
