// Package model defines core domain types shared across the service.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

var ErrInvalidInput = errors.New("invalid input")

const DateLayout = "2006-01-02"

type BBox struct {
	West, South float64
	East, North float64
}

func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.West, b.South, b.East, b.North)
}

func (b BBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// BBoxFromBound is the inverse of Bound.
func BBoxFromBound(bd orb.Bound) BBox {
	return BBox{West: bd.Min.X(), South: bd.Min.Y(), East: bd.Max.X(), North: bd.Max.Y()}
}

func (b BBox) Validate() error {
	if !(b.West >= -180 && b.West <= 180 && b.East >= -180 && b.East <= 180) {
		return fmt.Errorf("%w: longitude must be in [-180,180]", ErrInvalidInput)
	}
	if !(b.South >= -90 && b.South <= 90 && b.North >= -90 && b.North <= 90) {
		return fmt.Errorf("%w: latitude must be in [-90,90]", ErrInvalidInput)
	}
	if b.East <= b.West || b.North <= b.South {
		return fmt.Errorf("%w: bbox must satisfy west<east and south<north", ErrInvalidInput)
	}
	return nil
}

// DateRange holds two calendar dates; both ends are inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return d, nil
}

// NewDateRange truncates both ends to midnight UTC.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: midnightUTC(start), End: midnightUTC(end)}
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if midnightUTC(r.End).Before(midnightUTC(r.Start)) {
		return fmt.Errorf("%w: start date %s is after end date %s",
			ErrInvalidInput, r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return nil
}

// UpperBound is the exclusive end: midnight UTC of the day after End.
func (r DateRange) UpperBound() time.Time {
	return midnightUTC(r.End).AddDate(0, 0, 1)
}

func (r DateRange) LowerBound() time.Time {
	return midnightUTC(r.Start)
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// QueryRequest is the immutable input of one catalogue query.
type QueryRequest struct {
	Type  ProductType
	BBox  BBox
	Dates DateRange
	Tile  string
	Limit int
}

func (q QueryRequest) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("%w: unknown product type %d", ErrInvalidInput, int(q.Type))
	}
	if err := q.BBox.Validate(); err != nil {
		return err
	}
	if err := q.Dates.Validate(); err != nil {
		return err
	}
	if q.Tile != "" && !isTileID(q.Tile) {
		return fmt.Errorf("%w: tile %q is not an MGRS tile id", ErrInvalidInput, q.Tile)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	return nil
}

// accepts "T32TPS" and "32TPS"
func isTileID(s string) bool {
	s = strings.TrimPrefix(s, "T")
	if len(s) != 5 {
		return false
	}
	for i, r := range s {
		switch {
		case i < 2 && r >= '0' && r <= '9':
		case i >= 2 && r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}

// Product is one catalogue entry as returned by the remote API.
type Product struct {
	ID            string
	Name          string
	ContentLength int64
	SensingStart  time.Time
	StoragePath   string
	Online        bool
}
