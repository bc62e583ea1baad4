// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knows

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/knowloader/internal/httputil"
	"github.com/pdiddy/knowloader/pkg/types"
)

// maxPageSize caps how much page markup is scanned when scraping.
const maxPageSize int64 = 16 << 20

// DeriveLinks turns raw content-link captures into fully qualified PDF
// URLs of the form contentBase + capture + ".pdf". Duplicates collapse to
// their first occurrence and order is otherwise preserved.
func DeriveLinks(contentBase string, captures []string) []string {
	links := make([]string, 0, len(captures))
	seen := make(map[string]struct{}, len(captures))
	for _, c := range captures {
		link := contentBase + c + ".pdf"
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links
}

// PageScraper fetches a provider page and finds the content links
// embedded in its markup.
type PageScraper struct {
	client  *http.Client
	cfg     types.HTTPConfig
	pattern *regexp.Regexp
	maxPage int64
}

// NewPageScraper compiles the content-link pattern of provider.
func NewPageScraper(client *http.Client, cfg types.HTTPConfig, provider types.ProviderConfig) (*PageScraper, error) {
	re, err := regexp.Compile(provider.ContentLinkPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling content link pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("content link pattern %q has no capture group", provider.ContentLinkPattern)
	}
	return &PageScraper{client: client, cfg: cfg, pattern: re, maxPage: maxPageSize}, nil
}

// Captures fetches pageURL and returns the first submatch of every
// content link in document order, duplicates included. Any failure to
// obtain the page wraps ErrMetadataUnavailable.
func (s *PageScraper) Captures(ctx context.Context, pageURL string) ([]string, error) {
	logger := log.FromContext(ctx).WithPrefix("scrape")

	resp, err := httputil.Get(ctx, s.client, pageURL, s.cfg.UserAgent, "text/html")
	if err != nil {
		logger.Debug("page request failed", "url", pageURL, "err", err)
		return nil, fmt.Errorf("%w: fetching page: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxPage+1))
	if err != nil {
		logger.Debug("reading page failed", "url", pageURL, "err", err)
		return nil, fmt.Errorf("%w: reading page: %v", ErrMetadataUnavailable, err)
	}
	if int64(len(body)) > s.maxPage {
		logger.Warn("page exceeds size limit, links past it are ignored", "url", pageURL, "limit", s.maxPage)
		body = body[:s.maxPage]
	}

	matches := s.pattern.FindAllStringSubmatch(string(body), -1)
	captures := make([]string, 0, len(matches))
	for _, m := range matches {
		captures = append(captures, m[1])
	}
	logger.Debug("scraped page", "url", pageURL, "links", len(captures))
	return captures, nil
}
