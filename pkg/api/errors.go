package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse marks a 2xx reply whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// HTTPError is a non-2xx reply from the remote service.
type HTTPError struct {
	StatusCode int
	// Detail is the service's machine-provided detail, if any.
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("remote returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote returned status %d: %s", e.StatusCode, e.Detail)
}

// TransportError means no usable response was obtained: the request could
// not be sent, the connection failed, or the body was unreadable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Diagnostic is the best short description of the failure for end users.
func (e *TransportError) Diagnostic() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Err.Error()
}

// parseDetail extracts "detail" from an error body. String details are used
// verbatim; structured ones (validation errors) are returned as compact JSON.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(envelope.Detail) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, envelope.Detail); err != nil {
		return ""
	}
	return buf.String()
}
