// Package journal provides a local persistent record of dispatch attempts.
package journal

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one recorded dispatch attempt.
type Entry struct {
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Store persists dispatch attempts.
type Store interface {
	Close() error
	Record(e Entry) error
	Recent(n int) ([]Entry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured journal backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                { return nil }
func (noopStore) Record(Entry) error          { return nil }
func (noopStore) Recent(int) ([]Entry, error) { return nil, nil }
