// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/knowloader/internal/httputil"
	"github.com/pdiddy/knowloader/pkg/types"
)

// Knowunity API JSON structures. Pointers distinguish a missing field
// from an empty one.
type knowResponse struct {
	Title    *string           `json:"title"`
	Contents *[]knowContentRef `json:"contents"`
}

type knowContentRef struct {
	ContentURL string `json:"contentUrl"`
	PageCount  int    `json:"pageCount"`
}

// MetadataFetcher resolves identifiers to Know documents through the
// provider API.
type MetadataFetcher struct {
	client  *http.Client
	cfg     types.HTTPConfig
	apiBase string
}

// NewMetadataFetcher returns a fetcher that queries provider.APIBase.
func NewMetadataFetcher(client *http.Client, cfg types.HTTPConfig, provider types.ProviderConfig) *MetadataFetcher {
	return &MetadataFetcher{client: client, cfg: cfg, apiBase: provider.APIBase}
}

// Fetch issues one GET to the API for id and decodes the document.
// Transport errors, non-2xx statuses, and malformed bodies all wrap
// ErrMetadataUnavailable. There are no retries.
func (f *MetadataFetcher) Fetch(ctx context.Context, id string) (*types.Know, error) {
	logger := log.FromContext(ctx).WithPrefix("metadata")
	apiURL := f.apiBase + id

	resp, err := httputil.Get(ctx, f.client, apiURL, f.cfg.UserAgent, "application/json")
	if err != nil {
		logger.Debug("API request failed", "url", apiURL, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	var kr knowResponse
	if err := json.NewDecoder(resp.Body).Decode(&kr); err != nil {
		logger.Debug("decoding API response failed", "url", apiURL, "err", err)
		return nil, fmt.Errorf("%w: parsing response: %v", ErrMetadataUnavailable, err)
	}

	know, err := kr.toKnow()
	if err != nil {
		logger.Debug("API response rejected", "url", apiURL, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}

	logger.Debug("fetched know", "id", id, "title", know.Title, "parts", len(know.Contents))
	return know, nil
}

func (kr knowResponse) toKnow() (*types.Know, error) {
	if kr.Title == nil {
		return nil, fmt.Errorf("response has no title")
	}
	if kr.Contents == nil {
		return nil, fmt.Errorf("response has no contents")
	}
	know := &types.Know{
		Title:    *kr.Title,
		Contents: make([]types.ContentPart, 0, len(*kr.Contents)),
	}
	for i, c := range *kr.Contents {
		if c.ContentURL == "" {
			return nil, fmt.Errorf("content %d has no contentUrl", i+1)
		}
		know.Contents = append(know.Contents, types.ContentPart{
			ContentURL: c.ContentURL,
			PageCount:  c.PageCount,
		})
	}
	return know, nil
}
