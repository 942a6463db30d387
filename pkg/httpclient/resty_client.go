package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	c := resty.New()
	c.SetTimeout(timeout)
	return &RestyClient{client: c}
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
// GET requests never carry a body.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return r.execute(ctx, resty.MethodGet, url, headers, nil)
}

// Post performs an HTTP POST request, JSON-serializing body when non-nil.
func (r *RestyClient) Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	return r.execute(ctx, resty.MethodPost, url, headers, body)
}

// Put performs an HTTP PUT request, JSON-serializing body when non-nil.
func (r *RestyClient) Put(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	return r.execute(ctx, resty.MethodPut, url, headers, body)
}

func (r *RestyClient) execute(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
