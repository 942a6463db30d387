package dispatch

import (
	"fmt"
	"strings"
)

// Method is the transport verb used for a request.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
	MethodPut  Method = "PUT"
)

// ParseMethod normalizes and validates a method string.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost, MethodPut:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q (expected GET, POST or PUT)", s)
	}
}

func (m Method) valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut:
		return true
	}
	return false
}

// requiresPayload reports whether the verb must carry a request body.
func (m Method) requiresPayload() bool {
	return m == MethodPost || m == MethodPut
}

// Request describes a single dispatch attempt.
//
// Payload must be JSON-serializable; it is required for POST/PUT and ignored
// for GET. SkipAuth suppresses the Authorization header (the zero value keeps
// auth enabled, matching the common case). Headers are optional extras merged
// into the standard header set; they cannot override the standard headers.
type Request struct {
	Method   Method
	URL      string
	Payload  any
	Headers  map[string]string
	SkipAuth bool
}

// mustValidRequest enforces caller preconditions. Violations are programmer
// errors, not runtime conditions, so they panic rather than surface as a
// failed Response.
func mustValidRequest(req Request) {
	if !req.Method.valid() {
		panic(fmt.Sprintf("dispatch: unsupported method %q", string(req.Method)))
	}
	if strings.TrimSpace(req.URL) == "" {
		panic("dispatch: request URL must not be empty")
	}
	if req.Method.requiresPayload() && req.Payload == nil {
		panic(fmt.Sprintf("dispatch: %s request requires a payload", req.Method))
	}
}
