package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammed-shakir/eodata-query/internal/catalog"
	"github.com/mohammed-shakir/eodata-query/internal/core/executor"
	"github.com/mohammed-shakir/eodata-query/internal/core/format"
	"github.com/mohammed-shakir/eodata-query/internal/core/model"
	"github.com/mohammed-shakir/eodata-query/internal/export"
)

type fakeService struct {
	lastQ    model.QueryRequest
	lastMode format.Mode
	res      catalog.Result
	err      error
}

func (f *fakeService) Preview(q model.QueryRequest) (string, error) {
	f.lastQ = q
	return "Collection/Name eq 'SENTINEL-2'", f.err
}

func (f *fakeService) Run(_ context.Context, q model.QueryRequest, mode format.Mode) (catalog.Result, error) {
	f.lastQ, f.lastMode = q, mode
	if f.err != nil {
		return catalog.Result{}, f.err
	}
	r := f.res
	r.Mode = mode
	return r, nil
}

type fakeSink struct {
	key, text string
	err       error
}

func (f *fakeSink) Put(_ context.Context, key, text string) (export.Location, error) {
	f.key, f.text = key, text
	if f.err != nil {
		return export.Location{}, f.err
	}
	return export.Location{Bucket: "listings", Key: key}, nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func serve(h http.HandlerFunc, method string, params map[string]string) *httptest.ResponseRecorder {
	req := newReq(params)
	req.Method = method
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestQuery_ReturnsJSON(t *testing.T) {
	svc := &fakeService{res: catalog.Result{QueryID: "abc", Filter: "f", Count: 1, Text: "/eodata/a"}}
	h := New(discard(), svc, nil)

	p := baseParams()
	p["mode"] = "detailed"
	rr := serve(h.Query, http.MethodGet, p)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var got queryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.QueryID != "abc" || got.Count != 1 || got.Mode != format.Detailed || got.ProductType != "sentinel2_l2a" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if svc.lastQ.BBox.West != 11 || svc.lastMode != format.Detailed {
		t.Fatalf("service did not receive parsed request: %+v", svc.lastQ)
	}
}

func TestQuery_InvalidInputIs400(t *testing.T) {
	svc := &fakeService{}
	p := baseParams()
	p["bbox"] = "12,46,11,47"
	rr := serve(New(discard(), svc, nil).Query, http.MethodGet, p)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rr.Code)
	}
}

func TestQuery_UnknownModeIs400(t *testing.T) {
	p := baseParams()
	p["mode"] = "csv"
	rr := serve(New(discard(), &fakeService{}, nil).Query, http.MethodGet, p)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", rr.Code)
	}
}

func TestQuery_RemoteErrorSurfacedVerbatim(t *testing.T) {
	svc := &fakeService{err: &executor.RemoteError{StatusCode: 503, Message: "service unavailable"}}
	rr := serve(New(discard(), svc, nil).Query, http.MethodGet, baseParams())
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d want 502", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "catalogue status 503: service unavailable") {
		t.Fatalf("body=%q", rr.Body.String())
	}
}

func TestDownload_AttachmentHeaders(t *testing.T) {
	svc := &fakeService{res: catalog.Result{QueryID: "abc", Count: 2, Text: "/eodata/a\n/eodata/b"}}
	rr := serve(New(discard(), svc, nil).Download, http.MethodGet, baseParams())

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Sentinel-2_L2A_eodata_paths.txt"` {
		t.Fatalf("Content-Disposition=%q", got)
	}
	if got := rr.Header().Get("X-Result-Count"); got != "2" {
		t.Fatalf("X-Result-Count=%q", got)
	}
	if rr.Body.String() != "/eodata/a\n/eodata/b" {
		t.Fatalf("body=%q", rr.Body.String())
	}
}

func TestFilter_Preview(t *testing.T) {
	rr := serve(New(discard(), &fakeService{}, nil).Filter, http.MethodGet, baseParams())
	if rr.Code != http.StatusOK || rr.Body.String() != "Collection/Name eq 'SENTINEL-2'" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestProductTypes_ListsAll(t *testing.T) {
	rr := serve(New(discard(), &fakeService{}, nil).ProductTypes, http.MethodGet, nil)
	var got []productTypeJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(model.ProductTypes()) || got[0].Key != "sentinel2_l2a" || !got[0].RequiresTile {
		t.Fatalf("unexpected product types: %+v", got)
	}
}

func TestExport_DisabledIs501(t *testing.T) {
	rr := serve(New(discard(), &fakeService{}, nil).Export, http.MethodPost, baseParams())
	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status=%d want 501", rr.Code)
	}
}

func TestExport_WritesThroughSink(t *testing.T) {
	sink := &fakeSink{}
	svc := &fakeService{res: catalog.Result{QueryID: "abc", Count: 1, Text: "/eodata/a"}}
	rr := serve(New(discard(), svc, sink).Export, http.MethodPost, baseParams())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if sink.key != "abc/Sentinel-2_L2A_eodata_paths.txt" || sink.text != "/eodata/a" {
		t.Fatalf("unexpected sink write: %+v", sink)
	}
	if !strings.Contains(rr.Body.String(), "s3://listings/abc/") {
		t.Fatalf("body=%q", rr.Body.String())
	}
}

func TestExport_SinkFailureIs502(t *testing.T) {
	sink := &fakeSink{err: errors.New("denied")}
	svc := &fakeService{res: catalog.Result{QueryID: "abc"}}
	rr := serve(New(discard(), svc, sink).Export, http.MethodPost, baseParams())
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status=%d want 502", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{model.ErrInvalidInput, http.StatusBadRequest},
		{&executor.RemoteError{StatusCode: 500}, http.StatusBadGateway},
		{&executor.NetworkError{Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{&executor.NetworkError{Err: errors.New("connection refused")}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusFor(c.err); got != c.want {
			t.Fatalf("StatusFor(%v)=%d want %d", c.err, got, c.want)
		}
	}
}
