// Package format renders catalogue results as downloadable text listings.
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/eodata-query/internal/core/model"
)

// Mode selects an output representation.
type Mode string

const (
	Paths    Mode = "paths"
	Detailed Mode = "detailed"
)

const NoResultsMessage = "No products found matching the query."

const bytesPerMB = 1024 * 1024

// Renderer turns a non-empty product list into text.
type Renderer func(products []model.Product) string

type registration struct {
	render Renderer
	suffix string
}

var reg = map[Mode]registration{}

// Register installs a renderer; suffix names downloaded files.
func Register(m Mode, suffix string, r Renderer) {
	reg[m] = registration{render: r, suffix: suffix}
}

func init() {
	Register(Paths, "eodata_paths", renderPaths)
	Register(Detailed, "detailed", renderDetailed)
}

// Modes lists registered modes in name order.
func Modes() []Mode {
	out := make([]Mode, 0, len(reg))
	for m := range reg {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return Paths, nil
	}
	if _, ok := reg[m]; !ok {
		return "", fmt.Errorf("%w: unknown output mode %q", model.ErrInvalidInput, s)
	}
	return m, nil
}

// Render keeps input order. An empty list yields NoResultsMessage in every mode.
func Render(m Mode, products []model.Product) (string, error) {
	r, ok := reg[m]
	if !ok {
		return "", fmt.Errorf("%w: unknown output mode %q", model.ErrInvalidInput, string(m))
	}
	if len(products) == 0 {
		return NoResultsMessage, nil
	}
	return r.render(products), nil
}

// products without a storage path are skipped
func renderPaths(products []model.Product) string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		if p.StoragePath == "" {
			continue
		}
		lines = append(lines, p.StoragePath)
	}
	if len(lines) == 0 {
		return NoResultsMessage
	}
	return strings.Join(lines, "\n")
}

func renderDetailed(products []model.Product) string {
	var b strings.Builder
	for i, p := range products {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "   Date: %s\n", SensingTime(p))
		fmt.Fprintf(&b, "   Size: %s\n", SizeMB(p.ContentLength))
		fmt.Fprintf(&b, "   Path: %s\n", orNA(p.StoragePath))
	}
	return b.String()
}

// SizeMB formats bytes as mebibytes with two decimals. Rounding is strconv's
// correctly rounded conversion, so exact ties go to the even digit.
func SizeMB(n int64) string {
	return strconv.FormatFloat(float64(n)/bytesPerMB, 'f', 2, 64) + " MB"
}

func SensingTime(p model.Product) string {
	if p.SensingStart.IsZero() {
		return "N/A"
	}
	return p.SensingStart.UTC().Format("2006-01-02 15:04:05")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// FileName builds the download name, e.g. "Sentinel-2_L2A_eodata_paths.txt".
func FileName(displayName string, m Mode) string {
	base := strings.ReplaceAll(strings.TrimSpace(displayName), " ", "_")
	if base == "" {
		base = "products"
	}
	suffix := string(m)
	if r, ok := reg[m]; ok {
		suffix = r.suffix
	}
	return base + "_" + suffix + ".txt"
}
