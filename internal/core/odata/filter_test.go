package odata

import (
	"strings"
	"testing"
	"time"

	"github.com/mohammed-shakir/eodata-query/internal/core/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestBuildFilter_RoundTripScenario(t *testing.T) {
	bb := model.BBox{West: 11.0, South: 46.0, East: 12.0, North: 47.0}
	dr := model.NewDateRange(mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))

	got := BuildFilter(model.Sentinel2L2A.Spec(), bb, dr, "")

	want := "Collection/Name eq 'SENTINEL-2'" +
		" and contains(Name,'MSIL2A')" +
		" and OData.CSC.Intersects(area=geography'SRID=4326;POLYGON((11 46,12 46,12 47,11 47,11 46))')" +
		" and ContentDate/Start ge 2024-06-01T00:00:00Z and ContentDate/Start lt 2024-07-01T00:00:00Z"
	if got != want {
		t.Fatalf("filter mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildFilter_OneOfEachClause(t *testing.T) {
	dr := model.NewDateRange(mustDate(t, "2024-01-01"), mustDate(t, "2024-01-01"))
	boxes := []model.BBox{
		{West: -180, South: -90, East: 180, North: 90},
		{West: 11.46309533, South: 46.28795898, East: 11.75355181, North: 46.40587491},
		{West: 12, South: 47, East: 11, North: 46}, // inverted, not rejected here
	}
	for _, pt := range model.ProductTypes() {
		for _, bb := range boxes {
			f := BuildFilter(pt.Spec(), bb, dr, "")
			if n := strings.Count(f, "Collection/Name eq "); n != 1 {
				t.Fatalf("%s: collection clauses=%d", pt, n)
			}
			if n := strings.Count(f, "contains(Name,"); n != 1 {
				t.Fatalf("%s: name clauses=%d", pt, n)
			}
			if n := strings.Count(f, "OData.CSC.Intersects("); n != 1 {
				t.Fatalf("%s: spatial clauses=%d", pt, n)
			}
			if n := strings.Count(f, "ContentDate/Start ge "); n != 1 {
				t.Fatalf("%s: temporal clauses=%d", pt, n)
			}
			if strings.Count(f, "(") != strings.Count(f, ")") {
				t.Fatalf("unbalanced parentheses: %s", f)
			}
			if strings.Count(f, "'")%2 != 0 {
				t.Fatalf("unbalanced quotes: %s", f)
			}
		}
	}
}

func TestBuildFilter_Idempotent(t *testing.T) {
	bb := model.BBox{West: 11.5, South: 46.25, East: 11.75, North: 46.5}
	dr := model.NewDateRange(mustDate(t, "2017-09-01"), mustDate(t, "2020-09-30"))
	a := BuildFilter(model.Sentinel1GRD.Spec(), bb, dr, "")
	b := BuildFilter(model.Sentinel1GRD.Spec(), bb, dr, "")
	if a != b {
		t.Fatalf("not idempotent:\n%s\n%s", a, b)
	}
	if Fingerprint(a) != Fingerprint(b) || len(Fingerprint(a)) != 16 {
		t.Fatalf("unexpected fingerprint %q", Fingerprint(a))
	}
}

func TestBuildFilter_TileClauseAppended(t *testing.T) {
	bb := model.BBox{West: 11, South: 46, East: 12, North: 47}
	dr := model.NewDateRange(mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))

	f := BuildFilter(model.Sentinel2L2A.Spec(), bb, dr, "T32TPS")
	if !strings.HasSuffix(f, " and contains(Name,'T32TPS')") {
		t.Fatalf("tile clause must be the trailing clause; got %s", f)
	}
	if strings.Count(f, "contains(Name,") != 2 {
		t.Fatalf("expected name and tile clauses; got %s", f)
	}

	if f := BuildFilter(model.Sentinel2L2A.Spec(), bb, dr, "   "); strings.Contains(f, "T32") || strings.Count(f, "contains(Name,") != 1 {
		t.Fatalf("blank tile must not add a clause; got %s", f)
	}
}

func TestTemporalClause_UpperBoundIsNextMidnight(t *testing.T) {
	cases := map[string]string{
		"2024-02-29": "2024-03-01T00:00:00Z",
		"2023-12-31": "2024-01-01T00:00:00Z",
		"2024-04-30": "2024-05-01T00:00:00Z",
	}
	for end, want := range cases {
		dr := model.NewDateRange(mustDate(t, "2023-01-01"), mustDate(t, end))
		c := TemporalClause(dr)
		if !strings.HasSuffix(c, "ContentDate/Start lt "+want) {
			t.Fatalf("end=%s: got %s want upper bound %s", end, c, want)
		}
		if !strings.HasPrefix(c, "ContentDate/Start ge 2023-01-01T00:00:00Z") {
			t.Fatalf("unexpected lower bound: %s", c)
		}
	}
}

func TestPolygonWKT_ClosedRing(t *testing.T) {
	got := PolygonWKT(model.BBox{West: -180, South: -90, East: 180, North: 90})
	want := "POLYGON((-180 -90,180 -90,180 90,-180 90,-180 -90))"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestQuote_EscapesSingleQuotes(t *testing.T) {
	if got := NameClause("O'Brien"); got != "contains(Name,'O''Brien')" {
		t.Fatalf("got %q", got)
	}
}
