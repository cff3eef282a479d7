package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/eodata-query/internal/core/format"
	"github.com/mohammed-shakir/eodata-query/internal/core/model"
)

// ParseQueryRequest reads and validates the query parameters shared by every
// catalogue route. All errors wrap model.ErrInvalidInput.
func ParseQueryRequest(r *http.Request) (model.QueryRequest, string, error) {
	return ParseQueryValues(r.URL.Query())
}

// ParseQueryValues is ParseQueryRequest over already decoded values; the
// command line client feeds its flags through here.
func ParseQueryValues(qv url.Values) (model.QueryRequest, string, error) {
	var warn string

	rawType := strings.TrimSpace(qv.Get("type"))
	if rawType == "" {
		return model.QueryRequest{}, "", invalid("missing required parameter: type")
	}
	pt, err := model.ParseProductType(rawType)
	if err != nil {
		return model.QueryRequest{}, "", err
	}

	rawBBox := strings.TrimSpace(qv.Get("bbox"))
	rawGeom := strings.TrimSpace(qv.Get("geometry"))

	// geometry wins over bbox
	if rawBBox != "" && rawGeom != "" {
		warn = "both bbox and geometry supplied; preferring geometry"
		rawBBox = ""
	}

	var bbox model.BBox
	switch {
	case rawGeom != "":
		bbox, err = parseGeometry(rawGeom)
		if err != nil {
			return model.QueryRequest{}, warn, fmt.Errorf("invalid geometry: %w", err)
		}
	case rawBBox != "":
		bbox, err = parseBBOX(rawBBox)
		if err != nil {
			return model.QueryRequest{}, warn, fmt.Errorf("invalid bbox: %w", err)
		}
	default:
		return model.QueryRequest{}, warn, invalid("missing required parameter: bbox or geometry")
	}

	start, err := model.ParseDate(qv.Get("start"))
	if err != nil {
		return model.QueryRequest{}, warn, fmt.Errorf("start: %w", err)
	}
	end, err := model.ParseDate(qv.Get("end"))
	if err != nil {
		return model.QueryRequest{}, warn, fmt.Errorf("end: %w", err)
	}

	tile := strings.ToUpper(strings.TrimSpace(qv.Get("tile")))
	if tile != "" && !pt.Spec().RequiresTile {
		warn = joinWarn(warn, fmt.Sprintf("tile ignored for %s", pt))
		tile = ""
	}

	limit := 0
	if raw := strings.TrimSpace(qv.Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return model.QueryRequest{}, warn, invalid("limit must be a positive integer")
		}
	}

	q := model.QueryRequest{
		Type:  pt,
		BBox:  bbox,
		Dates: model.NewDateRange(start, end),
		Tile:  tile,
		Limit: limit,
	}
	if err := q.Validate(); err != nil {
		return model.QueryRequest{}, warn, err
	}
	return q, warn, nil
}

func ParseMode(r *http.Request) (format.Mode, error) {
	return format.ParseMode(r.URL.Query().Get("mode"))
}

// accepts "west,south,east,north" with an optional trailing EPSG:4326
func parseBBOX(bboxParam string) (model.BBox, error) {
	parts := strings.Split(bboxParam, ",")
	if len(parts) == 5 {
		srid := strings.ToUpper(strings.TrimSpace(parts[4]))
		if srid != "EPSG:4326" {
			return model.BBox{}, invalid(fmt.Sprintf("only EPSG:4326 is supported (got %q)", srid))
		}
		parts = parts[:4]
	}
	if len(parts) != 4 {
		return model.BBox{}, invalid("expected 4 comma-separated values: west,south,east,north")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.BBox{}, invalid(fmt.Sprintf("value %d: %v", i+1, err))
		}
		v[i] = f
	}
	bb := model.BBox{West: v[0], South: v[1], East: v[2], North: v[3]}
	if err := bb.Validate(); err != nil {
		return model.BBox{}, err
	}
	return bb, nil
}

// parseGeometry reduces a GeoJSON Polygon or MultiPolygon to its bounds.
func parseGeometry(raw string) (model.BBox, error) {
	g, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return model.BBox{}, invalid(fmt.Sprintf("parse geojson: %v", err))
	}
	geom := g.Geometry()
	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return model.BBox{}, invalid(fmt.Sprintf("unsupported GeoJSON type %q (must be Polygon or MultiPolygon)", g.Type))
	}
	bb := model.BBoxFromBound(geom.Bound())
	if err := bb.Validate(); err != nil {
		return model.BBox{}, err
	}
	return bb, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidInput, msg)
}

func joinWarn(a, b string) string {
	return strings.TrimPrefix(strings.Join([]string{a, b}, "; "), "; ")
}

func isInvalid(err error) bool {
	return errors.Is(err, model.ErrInvalidInput)
}
