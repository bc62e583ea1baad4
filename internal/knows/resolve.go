// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knows

import (
	"fmt"
	"regexp"

	"github.com/pdiddy/knowloader/pkg/types"
)

// Resolver extracts content identifiers from source URLs and checks page
// URLs against the provider's page pattern. It holds only compiled
// patterns and is safe for concurrent use.
type Resolver struct {
	identifier *regexp.Regexp
	page       *regexp.Regexp
}

// NewResolver compiles the identifier and page patterns of cfg.
func NewResolver(cfg types.ProviderConfig) (*Resolver, error) {
	id, err := regexp.Compile(cfg.IdentifierPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling identifier pattern: %w", err)
	}
	page, err := regexp.Compile(cfg.PagePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling page pattern: %w", err)
	}
	return &Resolver{identifier: id, page: page}, nil
}

// Resolve returns the first identifier found anywhere in source, verbatim.
// ok is false when source contains none.
func (r *Resolver) Resolve(source string) (id string, ok bool) {
	loc := r.identifier.FindStringIndex(source)
	if loc == nil {
		return "", false
	}
	return source[loc[0]:loc[1]], true
}

// ValidPage reports whether source is a provider page URL that may be
// scraped for content links.
func (r *Resolver) ValidPage(source string) bool {
	return r.page.MatchString(source)
}
