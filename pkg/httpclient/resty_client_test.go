package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("X-Probe"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, `short and stout`)
	}))
	defer srv.Close()

	c := NewRestyClient(2 * time.Second)
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"X-Probe": "1"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
	if string(resp.Body()) != "short and stout" {
		t.Fatalf("unexpected body: %q", resp.Body())
	}
}

func TestRestyClientPostSerializesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var got map[string]any
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if got["name"] != "a" {
			t.Errorf("unexpected body: %#v", got)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewRestyClient(2 * time.Second)
	resp, err := c.Post(context.Background(), srv.URL, map[string]string{"Content-Type": "application/json"}, map[string]string{"name": "a"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
}

func TestRestyClientPutWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("expected empty body, got %q", body)
		}
	}))
	defer srv.Close()

	c := NewRestyClient(2 * time.Second)
	if _, err := c.Put(context.Background(), srv.URL, nil, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
}
