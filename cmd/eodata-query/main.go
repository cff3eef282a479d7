// Command eodata-query runs a single catalogue query from the command line and
// prints (or writes) the rendered listing.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/eodata-query/internal/catalog"
	"github.com/mohammed-shakir/eodata-query/internal/core/config"
	"github.com/mohammed-shakir/eodata-query/internal/core/executor"
	"github.com/mohammed-shakir/eodata-query/internal/core/format"
	"github.com/mohammed-shakir/eodata-query/internal/core/httpclient"
	"github.com/mohammed-shakir/eodata-query/internal/core/model"
	"github.com/mohammed-shakir/eodata-query/internal/core/odata"
	"github.com/mohammed-shakir/eodata-query/internal/core/router"
	"github.com/mohammed-shakir/eodata-query/internal/logger"
)

type options struct {
	values   url.Values
	mode     string
	out      string
	dryRun   bool
	listOnly bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("eodata-query", flag.ContinueOnError)
	fs.SetOutput(stderr)

	typ := fs.String("type", "", "product type key (see -list)")
	bbox := fs.String("bbox", "", "west,south,east,north in EPSG:4326")
	geometry := fs.String("geometry", "", "GeoJSON geometry; its bounds replace -bbox")
	start := fs.String("start", "", "start date, YYYY-MM-DD")
	end := fs.String("end", "", "end date, YYYY-MM-DD (inclusive)")
	tile := fs.String("tile", "", "MGRS tile, tiled product types only")
	limit := fs.Int("limit", 0, "max products (capped at 100)")
	mode := fs.String("mode", string(format.Paths), "paths or detailed")
	out := fs.String("out", "", "write the listing to this file; '-' uses the download file name")
	dry := fs.Bool("filter-only", false, "print the OData filter and exit")
	list := fs.Bool("list", false, "list product types and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	v := url.Values{}
	set := func(k, s string) {
		if s = strings.TrimSpace(s); s != "" {
			v.Set(k, s)
		}
	}
	set("type", *typ)
	set("bbox", *bbox)
	set("geometry", *geometry)
	set("start", *start)
	set("end", *end)
	set("tile", *tile)
	if *limit > 0 {
		v.Set("limit", strconv.Itoa(*limit))
	}
	return options{values: v, mode: *mode, out: *out, dryRun: *dry, listOnly: *list}, nil
}

func listTypes(w io.Writer) {
	for _, pt := range model.ProductTypes() {
		s := pt.Spec()
		tile := ""
		if s.RequiresTile {
			tile = " (tile)"
		}
		fmt.Fprintf(w, "%-24s %s, %s%s\n", s.Key, s.DisplayName, s.Collection, tile)
	}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if opts.listOnly {
		listTypes(stdout)
		return 0
	}

	_ = config.LoadEnvFiles(".")
	cfg := config.FromEnv()
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   true,
		Component: "eodata-query",
	}, stderr)
	appLog := logger.NewSlog(&zl)

	q, warn, err := router.ParseQueryValues(opts.values)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	if warn != "" {
		fmt.Fprintln(stderr, "warning:", warn)
	}
	mode, err := format.ParseMode(opts.mode)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	exec, err := executor.New(appLog, httpclient.NewOutbound(cfg.CatalogTimeout), odata.ProductsEndpoint(cfg.CatalogURL))
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	svc := catalog.New(appLog, exec, cfg.PageSize)

	if opts.dryRun {
		filter, err := svc.Preview(q)
		if err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 2
		}
		fmt.Fprintln(stdout, filter)
		return 0
	}

	res, err := svc.Run(ctx, q, mode)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if res.Truncated {
		fmt.Fprintf(stderr, "warning: more than %d products matched; listing is truncated\n", res.Count)
	}

	if opts.out == "" {
		fmt.Fprintln(stdout, res.Text)
		return 0
	}
	path := opts.out
	if path == "-" {
		path = format.FileName(q.Type.Spec().DisplayName, mode)
	}
	if err := os.WriteFile(path, []byte(res.Text), 0o644); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	fmt.Fprintf(stderr, "wrote %d products to %s\n", res.Count, path)
	return 0
}
