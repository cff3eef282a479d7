// Package executor runs catalogue searches against the remote OData API.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohammed-shakir/eodata-query/internal/core/model"
	"github.com/mohammed-shakir/eodata-query/internal/core/observability"
	"github.com/mohammed-shakir/eodata-query/internal/core/odata"
)

const maxBodyBytes = 32 << 20

type Interface interface {
	Search(ctx context.Context, filter string, top int) (Page, error)
}

// Page is the single page of products returned for a filter.
type Page struct {
	Products  []model.Product
	Truncated bool
}

type Executor struct {
	logger      *slog.Logger
	client      *http.Client
	productsURL *url.URL
	startNow    func() time.Time // for tests
}

var _ Interface = (*Executor)(nil)

func New(logger *slog.Logger, client *http.Client, productsURL string) (*Executor, error) {
	u, err := url.Parse(productsURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalogue url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalogue url %q must be absolute", productsURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{
		logger:      logger,
		client:      client,
		productsURL: u,
		startNow:    time.Now,
	}, nil
}

// Search issues one GET; there is no retry and no pagination.
func (e *Executor) Search(ctx context.Context, filter string, top int) (Page, error) {
	u := *e.productsURL
	u.RawQuery = odata.BuildSearchParams(filter, top).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := e.startNow()
	resp, err := e.client.Do(req)
	dur := time.Since(start)
	observability.ObserveUpstreamLatency("catalogue", dur.Seconds())
	if err != nil {
		e.logger.Debug("catalogue request failed", "err", err, "duration", dur.String())
		return Page{}, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	e.logger.Debug("catalogue search done",
		"status", resp.StatusCode,
		"duration", dur.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return Page{}, &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(b),
			Body:       strings.TrimSpace(string(b)),
		}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}

	var pr productsResponse
	if err := json.Unmarshal(b, &pr); err != nil {
		return Page{}, &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode response: %v", err),
		}
	}

	products := make([]model.Product, 0, len(pr.Value))
	for _, p := range pr.Value {
		products = append(products, p.toModel())
	}
	return Page{Products: products, Truncated: pr.NextLink != ""}, nil
}
