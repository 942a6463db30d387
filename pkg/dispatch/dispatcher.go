package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/orbitel-hq/restbridge/pkg/httpclient"
)

const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerAuth        = "Authorization"
	contentTypeJSON   = "application/json"

	defaultTimeout = 15 * time.Second
)

// Dispatcher performs HTTP requests and normalizes their outcomes into
// two-variant Responses. A Dispatcher is a plain injectable value owned by the
// caller; its fields are read-only after construction, so it is safe for
// concurrent use.
type Dispatcher struct {
	client   httpclient.Client
	tokens   TokenSource
	probe    Probe
	recorder Recorder
	log      Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTokenSource sets the bearer token source for authenticated requests.
// Without one, Authorization headers are omitted and a warning is logged.
func WithTokenSource(ts TokenSource) Option {
	return func(d *Dispatcher) { d.tokens = ts }
}

// WithProbe enables a pre-flight reachability probe. A failing probe aborts
// the dispatch with a failed Response.
func WithProbe(p Probe) Option {
	return func(d *Dispatcher) { d.probe = p }
}

// WithRecorder wires a journal recorder receiving every dispatch attempt.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// NewDispatcher builds a Dispatcher over the given transport. A nil client
// falls back to a resty transport with a default timeout.
func NewDispatcher(client httpclient.Client, opts ...Option) *Dispatcher {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout)
	}
	d := &Dispatcher{client: client}
	for _, opt := range opts {
		opt(d)
	}
	d.log = ensureLogger(d.log)
	return d
}

// Perform executes one request and returns its normalized Response. One
// attempt per call; all transport and decode failures collapse to a failed
// Response carrying FallbackErrorMessage. Cancellation and timeouts are
// delegated to the transport via ctx.
func (d *Dispatcher) Perform(ctx context.Context, req Request) Response {
	mustValidRequest(req)

	if d.probe != nil {
		if err := d.probe.Check(ctx); err != nil {
			d.log.WarnObj("network unreachable, aborting dispatch", "error", err.Error())
			return d.finish(req, 0, NewFailedResponse(nil, FallbackErrorMessage))
		}
	}

	headers := d.buildHeaders(ctx, req)

	d.log.DebugObj("dispatching request", "request", map[string]any{
		"method":  req.Method,
		"url":     req.URL,
		"headers": redactHeaders(headers),
		"payload": req.Payload,
	})

	resp, err := d.send(ctx, req, headers)
	if err != nil {
		d.log.WarnObj("transport failure", "error", err.Error())
		return d.finish(req, 0, NewFailedResponse(nil, FallbackErrorMessage))
	}

	body := resp.Body()
	code := resp.StatusCode()
	d.log.DebugObj("response received", "response", map[string]any{
		"status": code,
		"body":   bodySnippet(body),
	})

	return d.finish(req, code, normalize(code, body))
}

// send selects the transport verb for the request. GET never carries a body.
func (d *Dispatcher) send(ctx context.Context, req Request, headers map[string]string) (httpclient.Response, error) {
	switch req.Method {
	case MethodPost:
		return d.client.Post(ctx, req.URL, headers, req.Payload)
	case MethodPut:
		return d.client.Put(ctx, req.URL, headers, req.Payload)
	default:
		return d.client.Get(ctx, req.URL, headers)
	}
}

// buildHeaders constructs the per-call header set. Headers are never cached
// across calls.
func (d *Dispatcher) buildHeaders(ctx context.Context, req Request) map[string]string {
	headers := map[string]string{
		headerContentType: contentTypeJSON,
		headerAccept:      contentTypeJSON,
	}
	for k, v := range req.Headers {
		if _, fixed := headers[k]; fixed || k == headerAuth {
			continue
		}
		headers[k] = v
	}
	if req.SkipAuth {
		return headers
	}
	if d.tokens == nil {
		d.log.WarnObj("authorization requested but no token source configured", "url", req.URL)
		return headers
	}
	tok, err := d.tokens.Token(ctx)
	if err != nil {
		d.log.WarnObj("token source failed, sending without authorization", "error", err.Error())
		return headers
	}
	if tok == "" {
		d.log.WarnObj("token source returned empty token, sending without authorization", "url", req.URL)
		return headers
	}
	headers[headerAuth] = "Bearer " + tok
	return headers
}

// normalize maps a raw HTTP outcome to a Response.
func normalize(code int, body []byte) Response {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return NewFailedResponse(nil, FallbackErrorMessage)
	}

	if code == http.StatusOK || code == http.StatusCreated {
		return NewSuccessResponse(data)
	}

	errMsg := FallbackErrorMessage
	if obj, ok := data.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			errMsg = msg
		}
	}
	return NewFailedResponse(data, errMsg)
}

// finish records the attempt when a recorder is wired and returns the Response.
func (d *Dispatcher) finish(req Request, code int, resp Response) Response {
	if d.recorder != nil {
		attempt := Attempt{
			Method:     req.Method,
			URL:        req.URL,
			StatusCode: code,
			Status:     resp.Status,
			Err:        resp.Err,
			At:         time.Now().UTC(),
		}
		if err := d.recorder.Record(attempt); err != nil {
			d.log.WarnObj("journal record failed", "error", err.Error())
		}
	}
	return resp
}

// bodySnippet truncates a response body for diagnostic logging.
func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// redactHeaders copies the header set with credentials masked for logging.
func redactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if k == headerAuth {
			v = "Bearer ***"
		}
		out[k] = v
	}
	return out
}
