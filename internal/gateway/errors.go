package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized means the backend rejected the bearer credential on a
	// protected call. Callers clear the session and redirect to login instead
	// of showing an error banner.
	ErrUnauthorized = errors.New("credential rejected by backend")

	// ErrMalformedResponse means the backend answered 2xx with a body this
	// client cannot use. Surfaced to users as a generic "invalid response".
	ErrMalformedResponse = errors.New("invalid response from server")
)

// ValidationError carries field-scoped messages from client-side validation.
// It never reaches the network: all violated constraints are collected and
// returned together so a form can highlight every invalid field at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// ServerError is a non-success status reported by the backend, with the
// human-readable message extracted from its JSON body when present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// serverError reads a non-2xx response body and extracts a displayable
// message, synthesizing one from the status code when the body has none.
func serverError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	msg := fmt.Sprintf("server error (%d)", resp.StatusCode)
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			msg = payload.Message
		}
	}
	return &ServerError{Status: resp.StatusCode, Message: msg}
}
