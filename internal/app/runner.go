package app

import (
	"context"
	"fmt"
	"os"

	"github.com/orbitel-hq/restbridge/internal/config"
	"github.com/orbitel-hq/restbridge/internal/journal"
	"github.com/orbitel-hq/restbridge/internal/logger"
	"github.com/orbitel-hq/restbridge/pkg/dispatch"
	"github.com/orbitel-hq/restbridge/pkg/endpoints"
	"github.com/orbitel-hq/restbridge/pkg/httpclient"
)

// Runner wires together config, the endpoint registry, the request journal
// and the dispatcher.
type Runner struct {
	cfg        *config.Config
	registry   *endpoints.Registry
	store      journal.Store
	dispatcher *dispatch.Dispatcher
	log        logger.Logger
}

// NewRunner builds the dispatch runtime from config. The endpoints file is
// optional: ad-hoc requests work without one, named invocations do not.
func NewRunner(cfg *config.Config, log logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	var registry *endpoints.Registry
	if cfg.EndpointsFile != "" {
		if _, err := os.Stat(cfg.EndpointsFile); err == nil {
			registry, err = endpoints.LoadRegistry(cfg.EndpointsFile)
			if err != nil {
				return nil, fmt.Errorf("load endpoints registry: %w", err)
			}
			log.InfoObj("endpoints registry loaded", "endpoints", registry.All())
		}
	}

	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, journal.Options{
		EntryTTL:        cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	opts := []dispatch.Option{
		dispatch.WithLogger(log),
		dispatch.WithRecorder(dispatch.RecorderFunc(func(a dispatch.Attempt) error {
			return store.Record(journal.Entry{
				Method:     string(a.Method),
				URL:        a.URL,
				StatusCode: a.StatusCode,
				Outcome:    string(a.Status),
				Error:      a.Err,
				RecordedAt: a.At,
			})
		})),
	}
	if cfg.APIToken != "" {
		opts = append(opts, dispatch.WithTokenSource(dispatch.StaticToken(cfg.APIToken)))
	}
	if cfg.ProbeEnabled {
		opts = append(opts, dispatch.WithProbe(dispatch.NewDNSProbe(cfg.ProbeHost)))
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)

	return &Runner{
		cfg:        cfg,
		registry:   registry,
		store:      store,
		dispatcher: dispatch.NewDispatcher(client, opts...),
		log:        log,
	}, nil
}

// Invoke performs the named endpoint's request.
func (r *Runner) Invoke(ctx context.Context, endpointID string) (dispatch.Response, error) {
	if r.registry == nil {
		return dispatch.Response{}, fmt.Errorf("no endpoints registry loaded (endpoints_file %q)", r.cfg.EndpointsFile)
	}
	ep, ok := r.registry.ByID(endpointID)
	if !ok {
		return dispatch.Response{}, fmt.Errorf("unknown endpoint %q", endpointID)
	}
	if !ep.EnabledValue() {
		return dispatch.Response{}, fmt.Errorf("endpoint %q is disabled", endpointID)
	}
	return r.dispatcher.Perform(ctx, ep.Request()), nil
}

// Perform executes an ad-hoc request.
func (r *Runner) Perform(ctx context.Context, req dispatch.Request) dispatch.Response {
	return r.dispatcher.Perform(ctx, req)
}

// Recent returns the latest journal entries, newest first.
func (r *Runner) Recent(n int) ([]journal.Entry, error) {
	return r.store.Recent(n)
}

// Close releases the journal.
func (r *Runner) Close() error {
	return r.store.Close()
}
