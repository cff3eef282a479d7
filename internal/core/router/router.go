// Package router holds the HTTP handlers of the query service.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mohammed-shakir/eodata-query/internal/catalog"
	"github.com/mohammed-shakir/eodata-query/internal/core/executor"
	"github.com/mohammed-shakir/eodata-query/internal/core/format"
	"github.com/mohammed-shakir/eodata-query/internal/core/model"
	"github.com/mohammed-shakir/eodata-query/internal/core/observability"
	"github.com/mohammed-shakir/eodata-query/internal/export"
)

// QueryService runs validated catalogue queries.
type QueryService interface {
	Preview(q model.QueryRequest) (string, error)
	Run(ctx context.Context, q model.QueryRequest, mode format.Mode) (catalog.Result, error)
}

var _ QueryService = (*catalog.Service)(nil)

type Handlers struct {
	logger *slog.Logger
	svc    QueryService
	sink   export.Sink // nil when export is disabled
}

func New(logger *slog.Logger, svc QueryService, sink export.Sink) *Handlers {
	return &Handlers{logger: logger, svc: svc, sink: sink}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument records request count and latency under a fixed route label.
func Instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

type productTypeJSON struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Collection   string `json:"collection"`
	ProductType  string `json:"product_type"`
	Instrument   string `json:"instrument"`
	Description  string `json:"description"`
	RequiresTile bool   `json:"requires_tile"`
}

func (h *Handlers) ProductTypes(w http.ResponseWriter, _ *http.Request) {
	out := make([]productTypeJSON, 0, len(model.ProductTypes()))
	for _, pt := range model.ProductTypes() {
		s := pt.Spec()
		out = append(out, productTypeJSON{
			Key:          s.Key,
			Name:         s.DisplayName,
			Collection:   s.Collection,
			ProductType:  s.ProductType,
			Instrument:   s.Instrument,
			Description:  s.Description,
			RequiresTile: s.RequiresTile,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Filter(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parse(w, r)
	if !ok {
		return
	}
	f, err := h.svc.Preview(q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(f))
}

type queryResponse struct {
	QueryID     string         `json:"query_id"`
	ProductType string         `json:"product_type"`
	Filter      string         `json:"filter"`
	Mode        format.Mode    `json:"mode"`
	Count       int            `json:"count"`
	Truncated   bool           `json:"truncated"`
	Summary     format.Summary `json:"summary"`
	Text        string         `json:"text"`
}

func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	q, mode, ok := h.parseWithMode(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Run(r.Context(), q, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{
		QueryID:     res.QueryID,
		ProductType: q.Type.String(),
		Filter:      res.Filter,
		Mode:        res.Mode,
		Count:       res.Count,
		Truncated:   res.Truncated,
		Summary:     res.Summary,
		Text:        res.Text,
	})
}

func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	q, mode, ok := h.parseWithMode(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Run(r.Context(), q, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	name := format.FileName(q.Type.Spec().DisplayName, mode)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("X-Result-Count", strconv.Itoa(res.Count))
	w.Header().Set("X-Query-ID", res.QueryID)
	_, _ = w.Write([]byte(res.Text))
}

type exportResponse struct {
	QueryID  string `json:"query_id"`
	Count    int    `json:"count"`
	Location string `json:"location"`
}

func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		http.Error(w, export.ErrDisabled.Error(), http.StatusNotImplemented)
		return
	}
	q, mode, ok := h.parseWithMode(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Run(r.Context(), q, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	key := export.Key(res.QueryID, format.FileName(q.Type.Spec().DisplayName, mode))
	loc, err := h.sink.Put(r.Context(), key, res.Text)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", "err", err)
		http.Error(w, "export failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, exportResponse{
		QueryID:  res.QueryID,
		Count:    res.Count,
		Location: loc.String(),
	})
}

func (h *Handlers) parse(w http.ResponseWriter, r *http.Request) (model.QueryRequest, bool) {
	q, warn, err := ParseQueryRequest(r)
	if warn != "" {
		h.logger.WarnContext(r.Context(), warn)
	}
	if err != nil {
		h.writeError(w, r, err)
		return model.QueryRequest{}, false
	}
	return q, true
}

func (h *Handlers) parseWithMode(w http.ResponseWriter, r *http.Request) (model.QueryRequest, format.Mode, bool) {
	q, ok := h.parse(w, r)
	if !ok {
		return model.QueryRequest{}, "", false
	}
	mode, err := ParseMode(r)
	if err != nil {
		h.writeError(w, r, err)
		return model.QueryRequest{}, "", false
	}
	return q, mode, true
}

// StatusFor maps a query failure to the HTTP status returned to the caller.
func StatusFor(err error) int {
	var re *executor.RemoteError
	var ne *executor.NetworkError
	switch {
	case isInvalid(err):
		return http.StatusBadRequest
	case errors.As(err, &ne):
		if ne.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &re):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "query failed",
			"err", err,
			"status", code)
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
