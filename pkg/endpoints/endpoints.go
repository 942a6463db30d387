package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/orbitel-hq/restbridge/pkg/dispatch"

	"gopkg.in/yaml.v3"
)

// registryFile represents the structure of the endpoints configuration file.
type registryFile struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
}

// Endpoint is a named request definition declared in config files.
type Endpoint struct {
	ID      string            `json:"id" yaml:"id"`
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Auth    *bool             `json:"auth" yaml:"auth"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
	Payload any               `json:"payload" yaml:"payload"`
}

// AuthValue returns the auth flag defaulting to true.
func (e Endpoint) AuthValue() bool {
	if e.Auth == nil {
		return true
	}
	return *e.Auth
}

// EnabledValue returns the enabled flag defaulting to true.
func (e Endpoint) EnabledValue() bool {
	if e.Enabled == nil {
		return true
	}
	return *e.Enabled
}

// Request materializes the dispatch request for this endpoint.
func (e Endpoint) Request() dispatch.Request {
	return dispatch.Request{
		Method:   dispatch.Method(e.Method),
		URL:      e.URL,
		Payload:  e.Payload,
		Headers:  e.Headers,
		SkipAuth: !e.AuthValue(),
	}
}

// Registry materializes endpoint definitions loaded from config files.
type Registry struct {
	mu        sync.RWMutex
	endpoints []Endpoint
	idx       map[string]Endpoint
}

// LoadRegistry loads the endpoint registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("endpoints file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoints file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Endpoints) == 0 {
		return nil, errors.New("endpoints file contains no endpoints entries")
	}

	reg := &Registry{
		endpoints: make([]Endpoint, len(fileReg.Endpoints)),
		idx:       make(map[string]Endpoint, len(fileReg.Endpoints)),
	}

	for i := range fileReg.Endpoints {
		ep := sanitizeEndpoint(fileReg.Endpoints[i])
		if err := validateEndpoint(ep); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		if _, exists := reg.idx[ep.ID]; exists {
			return nil, fmt.Errorf("duplicate endpoint id %q", ep.ID)
		}
		reg.endpoints[i] = ep
		reg.idx[ep.ID] = ep
	}

	return reg, nil
}

// parseRegistry attempts to decode the endpoints file content.
func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registryFile
		if err := d.fn(data, &reg); err != nil {
			lastErr = fmt.Errorf("decode %s endpoints: %w", d.name, err)
			continue
		}
		return reg, nil
	}

	if lastErr != nil {
		return registryFile{}, lastErr
	}
	return registryFile{}, errors.New("endpoints file format not recognized (expected YAML or JSON)")
}

// sanitizeEndpoint trims and normalizes the endpoint fields.
func sanitizeEndpoint(ep Endpoint) Endpoint {
	ep.ID = strings.TrimSpace(ep.ID)
	ep.URL = strings.TrimSpace(ep.URL)
	ep.Method = strings.ToUpper(strings.TrimSpace(ep.Method))
	if ep.Method == "" {
		ep.Method = string(dispatch.MethodGet)
	}
	ep.Headers = sanitizeHeaders(ep.Headers)
	return ep
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateEndpoint checks that required fields are present.
func validateEndpoint(ep Endpoint) error {
	if ep.ID == "" {
		return errors.New("id is required")
	}
	if ep.URL == "" {
		return fmt.Errorf("url is required for endpoint %q", ep.ID)
	}
	method, err := dispatch.ParseMethod(ep.Method)
	if err != nil {
		return fmt.Errorf("endpoint %q: %w", ep.ID, err)
	}
	if (method == dispatch.MethodPost || method == dispatch.MethodPut) && ep.Payload == nil {
		return fmt.Errorf("payload is required for %s endpoint %q", method, ep.ID)
	}
	return nil
}

// ByID returns the endpoint definition by id.
func (r *Registry) ByID(id string) (Endpoint, bool) {
	if r == nil {
		return Endpoint{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Endpoint{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.idx[id]
	return ep, ok
}

// All returns all configured endpoints.
func (r *Registry) All() []Endpoint {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

// Enabled returns endpoints that are enabled.
func (r *Registry) Enabled() []Endpoint {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Endpoint, 0, len(all))
	for _, ep := range all {
		if ep.EnabledValue() {
			out = append(out, ep)
		}
	}
	return out
}
