package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orbitel-hq/restbridge/internal/config"
	"github.com/orbitel-hq/restbridge/pkg/dispatch"
)

func TestRunnerInvokeNamedEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected Authorization: %q", got)
		}
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	file := filepath.Join(dir, "endpoints.yaml")
	content := "endpoints:\n  - id: ping\n    url: " + srv.URL + "\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write endpoints file: %v", err)
	}

	cfg := &config.Config{
		EndpointsFile:          file,
		HTTPTimeout:            2 * time.Second,
		APIToken:               "tok",
		JournalType:            "bbolt",
		JournalPath:            filepath.Join(dir, "journal.db"),
		JournalTTL:             time.Hour,
		JournalCleanupInterval: time.Hour,
	}

	runner, err := NewRunner(cfg, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	resp, err := runner.Invoke(context.Background(), "ping")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Status != dispatch.StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s (err=%q)", resp.Status, resp.Err)
	}

	entries, err := runner.Recent(5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(entries))
	}
	if entries[0].Outcome != string(dispatch.StatusSuccess) || entries[0].StatusCode != http.StatusOK {
		t.Fatalf("unexpected journal entry: %+v", entries[0])
	}

	if _, err := runner.Invoke(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown endpoint")
	}
}

func TestRunnerWithoutEndpointsFile(t *testing.T) {
	cfg := &config.Config{
		HTTPTimeout: 2 * time.Second,
		JournalType: "none",
	}

	runner, err := NewRunner(cfg, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	if _, err := runner.Invoke(context.Background(), "anything"); err == nil {
		t.Fatalf("expected error without endpoints registry")
	}
}
