package odata

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultTop = 100
	MaxTop     = 100
)

func ProductsEndpoint(catalogBase string) string {
	return strings.TrimRight(catalogBase, "/") + "/Products"
}

// BuildSearchParams caps top at MaxTop; zero or negative means DefaultTop.
func BuildSearchParams(filter string, top int) url.Values {
	params := url.Values{}
	params.Set("$filter", filter)
	params.Set("$top", strconv.Itoa(ClampTop(top)))
	params.Set("$orderby", "ContentDate/Start asc")
	params.Set("$expand", "Attributes")
	params.Set("$format", "json")
	return params
}

func ClampTop(top int) int {
	switch {
	case top <= 0:
		return DefaultTop
	case top > MaxTop:
		return MaxTop
	default:
		return top
	}
}
