// Package odata builds catalogue filter expressions and query parameters.
package odata

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/mohammed-shakir/eodata-query/internal/core/model"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// BuildFilter joins the collection, name, spatial and temporal clauses (and the
// tile clause when tile is set) with "and". Input is not validated: an inverted
// box yields a well-formed filter that matches nothing.
func BuildFilter(spec model.ProductTypeSpec, bbox model.BBox, dates model.DateRange, tile string) string {
	clauses := []string{
		CollectionClause(spec.Collection),
		NameClause(spec.NamePattern),
		SpatialClause(bbox),
		TemporalClause(dates),
	}
	if tile = strings.TrimSpace(tile); tile != "" {
		clauses = append(clauses, NameClause(tile))
	}
	return strings.Join(clauses, " and ")
}

// BuildRequestFilter is BuildFilter over a QueryRequest.
func BuildRequestFilter(q model.QueryRequest) string {
	return BuildFilter(q.Type.Spec(), q.BBox, q.Dates, q.Tile)
}

func CollectionClause(collection string) string {
	return fmt.Sprintf("Collection/Name eq %s", quote(collection))
}

func NameClause(substr string) string {
	return fmt.Sprintf("contains(Name,%s)", quote(substr))
}

func SpatialClause(bbox model.BBox) string {
	return fmt.Sprintf("OData.CSC.Intersects(area=geography'SRID=4326;%s')", PolygonWKT(bbox))
}

// PolygonWKT closes the box into a five point ring starting at (west, south).
func PolygonWKT(bbox model.BBox) string {
	ring := bbox.Bound().ToRing()
	return wkt.MarshalString(orb.Polygon{ring})
}

func TemporalClause(dates model.DateRange) string {
	return fmt.Sprintf("ContentDate/Start ge %s and ContentDate/Start lt %s",
		dates.LowerBound().Format(timestampLayout),
		dates.UpperBound().Format(timestampLayout))
}

// OData string literal; embedded quotes are doubled
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Fingerprint identifies a filter in logs and file names.
func Fingerprint(filter string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(filter))
}
