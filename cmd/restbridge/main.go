package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/orbitel-hq/restbridge/internal/app"
	"github.com/orbitel-hq/restbridge/internal/config"
	"github.com/orbitel-hq/restbridge/internal/logger"
	"github.com/orbitel-hq/restbridge/pkg/dispatch"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "restbridge: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	var (
		endpointID = flag.String("endpoint", "", "named endpoint id from the endpoints file")
		method     = flag.String("method", "GET", "HTTP method for ad-hoc requests (GET, POST, PUT)")
		url        = flag.String("url", "", "target URL for ad-hoc requests")
		data       = flag.String("data", "", "JSON payload for POST/PUT ad-hoc requests")
		noAuth     = flag.Bool("no-auth", false, "omit the Authorization header")
		history    = flag.Int("history", 0, "print the N most recent journal entries and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return 1, fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg); err != nil {
		return 1, fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(cfg, logger.Std{})
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return 1, err
	}
	defer runner.Close()

	if *history > 0 {
		entries, err := runner.Recent(*history)
		if err != nil {
			return 1, fmt.Errorf("read journal: %w", err)
		}
		return 0, printJSON(entries)
	}

	var resp dispatch.Response
	switch {
	case *endpointID != "":
		resp, err = runner.Invoke(ctx, *endpointID)
		if err != nil {
			return 1, err
		}
	default:
		req, err := buildAdhocRequest(*method, *url, *data, *noAuth)
		if err != nil {
			return 1, err
		}
		resp = runner.Perform(ctx, req)
	}

	if err := printJSON(resp); err != nil {
		return 1, err
	}
	if resp.Status != dispatch.StatusSuccess {
		return 1, nil
	}
	return 0, nil
}

// buildAdhocRequest validates CLI flags into a dispatch request so that bad
// input surfaces as a usage error, not a dispatcher panic.
func buildAdhocRequest(method, url, data string, noAuth bool) (dispatch.Request, error) {
	if strings.TrimSpace(url) == "" {
		return dispatch.Request{}, fmt.Errorf("either -endpoint or -url is required")
	}

	m, err := dispatch.ParseMethod(method)
	if err != nil {
		return dispatch.Request{}, err
	}

	var payload any
	if strings.TrimSpace(data) != "" {
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return dispatch.Request{}, fmt.Errorf("parse -data: %w", err)
		}
	}
	if (m == dispatch.MethodPost || m == dispatch.MethodPut) && payload == nil {
		return dispatch.Request{}, fmt.Errorf("-data is required for %s requests", m)
	}

	return dispatch.Request{Method: m, URL: url, Payload: payload, SkipAuth: noAuth}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
