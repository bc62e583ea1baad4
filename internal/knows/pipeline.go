// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knows resolves Knowunity page URLs to their PDF documents and
// downloads them into a local directory.
//
// Two strategies are supported. StrategyAPI extracts the know's UUID from
// the URL, asks the provider API for the document's title and content
// parts, and names files positionally after the title. StrategyScrape
// fetches the page itself, collects the embedded content links, and
// names files after the link, skipping files already on disk so re-runs
// are cheap.
package knows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/fileutil"

	"github.com/pdiddy/knowloader/pkg/types"
)

// Strategy selects how a source URL is turned into download items.
type Strategy int

const (
	StrategyAPI Strategy = iota
	StrategyScrape
)

func (s Strategy) String() string {
	switch s {
	case StrategyAPI:
		return "api"
	case StrategyScrape:
		return "scrape"
	default:
		return "unknown"
	}
}

// ParseStrategy maps "api" or "scrape" to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "api", "":
		return StrategyAPI, nil
	case "scrape":
		return StrategyScrape, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q (want api or scrape)", name)
	}
}

// Request is one download invocation.
type Request struct {
	SourceURL string
	OutputDir string
	Strategy  Strategy
}

// Outcome describes what a run did. It is returned even when Run fails
// after the batch started, so callers can report the shortfall.
type Outcome struct {
	Strategy   Strategy
	Identifier string
	Title      string
	Batch      types.BatchResult

	// Requested is the number of items the batch was asked to process.
	Requested int
}

// Pipeline wires the resolver, the metadata fetcher, the page scraper,
// and the batch downloader for one provider.
type Pipeline struct {
	resolver    *Resolver
	fetcher     *MetadataFetcher
	scraper     *PageScraper
	downloader  *BatchDownloader
	contentBase string
}

// NewPipeline builds all components from cfg, sharing client.
func NewPipeline(client *http.Client, cfg types.HTTPConfig, provider types.ProviderConfig) (*Pipeline, error) {
	resolver, err := NewResolver(provider)
	if err != nil {
		return nil, err
	}
	scraper, err := NewPageScraper(client, cfg, provider)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		resolver:    resolver,
		fetcher:     NewMetadataFetcher(client, cfg, provider),
		scraper:     scraper,
		downloader:  NewBatchDownloader(client, cfg),
		contentBase: provider.ContentBase,
	}, nil
}

// Run checks the request, resolves the source URL with the requested
// strategy, and downloads every item. It returns ErrPrecondition,
// ErrInvalidReference, or ErrMetadataUnavailable before any file is
// written, and a *BatchIncompleteError when some items failed.
func (p *Pipeline) Run(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{Strategy: req.Strategy}

	if strings.TrimSpace(req.SourceURL) == "" {
		return out, fmt.Errorf("%w: no URL given", ErrPrecondition)
	}
	if req.OutputDir == "" {
		return out, fmt.Errorf("%w: no output directory given", ErrPrecondition)
	}
	if !fileutil.IsDir(req.OutputDir) {
		return out, fmt.Errorf("%w: output directory %s does not exist", ErrPrecondition, req.OutputDir)
	}

	var (
		items []Item
		err   error
	)
	switch req.Strategy {
	case StrategyAPI:
		items, err = p.apiItems(ctx, req.SourceURL, &out)
	case StrategyScrape:
		items, err = p.scrapeItems(ctx, req.SourceURL)
	default:
		err = fmt.Errorf("%w: unknown strategy %v", ErrPrecondition, req.Strategy)
	}
	if err != nil {
		return out, err
	}
	out.Requested = len(items)

	log.FromContext(ctx).WithPrefix("pipeline").Debug("starting batch",
		"strategy", req.Strategy, "items", len(items), "dir", req.OutputDir)

	batch, err := p.downloader.DownloadAll(ctx, items, req.OutputDir)
	out.Batch = batch
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return out, err
	}
	if missing := out.Requested - batch.Succeeded(); missing > 0 {
		incomplete := &BatchIncompleteError{Failed: missing, Total: out.Requested}
		if err != nil {
			return out, fmt.Errorf("%w: %w", incomplete, err)
		}
		return out, incomplete
	}
	return out, nil
}

func (p *Pipeline) apiItems(ctx context.Context, source string, out *Outcome) ([]Item, error) {
	id, ok := p.resolver.Resolve(source)
	if !ok {
		return nil, fmt.Errorf("%w: no identifier in %q", ErrInvalidReference, source)
	}
	out.Identifier = id

	know, err := p.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	title := know.Title
	if strings.TrimSpace(title) == "" {
		title = id
	}
	out.Title = title

	names := PositionalNames(title, len(know.Contents))
	items := make([]Item, len(know.Contents))
	for i, part := range know.Contents {
		items[i] = Item{URL: part.ContentURL, Name: names[i]}
	}
	return items, nil
}

func (p *Pipeline) scrapeItems(ctx context.Context, source string) ([]Item, error) {
	if !p.resolver.ValidPage(source) {
		return nil, fmt.Errorf("%w: %q is not a know page", ErrInvalidReference, source)
	}
	captures, err := p.scraper.Captures(ctx, source)
	if err != nil {
		return nil, err
	}
	logger := log.FromContext(ctx).WithPrefix("pipeline")
	links := DeriveLinks(p.contentBase, captures)
	items := make([]Item, len(links))
	firstURL := make(map[string]string, len(links))
	for i, link := range links {
		name := NameFromURL(link)
		if prev, dup := firstURL[name]; dup {
			// The later link will be skipped as already present.
			logger.Debug("links share a file name", "name", name, "first", prev, "url", link)
		} else {
			firstURL[name] = link
		}
		items[i] = Item{URL: link, Name: name, SkipExisting: true}
	}
	return items, nil
}
