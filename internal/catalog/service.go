// Package catalog ties filter construction, the catalogue search and result
// rendering into one stateless query operation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mohammed-shakir/eodata-query/internal/core/executor"
	"github.com/mohammed-shakir/eodata-query/internal/core/format"
	"github.com/mohammed-shakir/eodata-query/internal/core/model"
	"github.com/mohammed-shakir/eodata-query/internal/core/observability"
	"github.com/mohammed-shakir/eodata-query/internal/core/odata"
)

type Result struct {
	QueryID   string
	Filter    string
	Mode      format.Mode
	Count     int
	Truncated bool
	Text      string
	Summary   format.Summary
	Products  []model.Product
}

type Service struct {
	logger   *slog.Logger
	exec     executor.Interface
	pageSize int
}

func New(logger *slog.Logger, exec executor.Interface, pageSize int) *Service {
	return &Service{logger: logger, exec: exec, pageSize: odata.ClampTop(pageSize)}
}

// Preview validates q and returns the filter that Run would send.
func (s *Service) Preview(q model.QueryRequest) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	return odata.BuildRequestFilter(q), nil
}

func (s *Service) Run(ctx context.Context, q model.QueryRequest, mode format.Mode) (Result, error) {
	pt := q.Type.String()

	filter, err := s.Preview(q)
	if err != nil {
		observability.IncQuery(pt, "invalid_input")
		return Result{}, err
	}
	if _, err := format.ParseMode(string(mode)); err != nil {
		observability.IncQuery(pt, "invalid_input")
		return Result{}, err
	}

	top := s.pageSize
	if q.Limit > 0 && q.Limit < top {
		top = q.Limit
	}

	id := odata.Fingerprint(filter)
	s.logger.DebugContext(ctx, "catalogue query",
		"query_id", id,
		"product_type", pt,
		"bbox", q.BBox.String(),
		"top", top)

	page, err := s.exec.Search(ctx, filter, top)
	if err != nil {
		observability.IncQuery(pt, outcome(err))
		return Result{}, fmt.Errorf("query %s: %w", id, err)
	}

	text, err := format.Render(mode, page.Products)
	if err != nil {
		return Result{}, err
	}

	if len(page.Products) == 0 {
		observability.IncQuery(pt, "empty")
	} else {
		observability.IncQuery(pt, "ok")
	}
	observability.ObserveProducts(pt, len(page.Products))

	s.logger.InfoContext(ctx, "catalogue query done",
		"query_id", id,
		"product_type", pt,
		"count", len(page.Products),
		"truncated", page.Truncated)

	return Result{
		QueryID:   id,
		Filter:    filter,
		Mode:      mode,
		Count:     len(page.Products),
		Truncated: page.Truncated,
		Text:      text,
		Summary:   format.Summarize(page.Products),
		Products:  page.Products,
	}, nil
}

func outcome(err error) string {
	var re *executor.RemoteError
	var ne *executor.NetworkError
	switch {
	case errors.As(err, &re):
		return "remote_error"
	case errors.As(err, &ne):
		return "network_error"
	default:
		return "error"
	}
}
