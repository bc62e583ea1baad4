package types

import "time"

// HTTPConfig holds shared HTTP settings used by every component that makes
// network requests.
type HTTPConfig struct {
	// Timeout bounds each outbound request, including reading the body.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "knowloader/0.2").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds the hosts and patterns that describe the content
// provider. Components receive it at construction so tests can point them
// at httptest servers.
type ProviderConfig struct {
	// APIBase is the metadata endpoint prefix; the identifier is appended.
	APIBase string `json:"api_base" yaml:"api_base"`

	// ContentBase is the prefix of derived PDF links; "<capture>.pdf" is appended.
	ContentBase string `json:"content_base" yaml:"content_base"`

	// IdentifierPattern matches a content identifier anywhere in a source URL.
	IdentifierPattern string `json:"identifier_pattern" yaml:"identifier_pattern"`

	// PagePattern must match a source URL before the page is scraped.
	PagePattern string `json:"page_pattern" yaml:"page_pattern"`

	// ContentLinkPattern finds embedded content links in page markup.
	// Its first submatch is the capture passed to DeriveLinks.
	ContentLinkPattern string `json:"content_link_pattern" yaml:"content_link_pattern"`
}

// DefaultProviderConfig returns the Knowunity endpoints and patterns.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		APIBase:            "https://apiedge-eu-central-1.knowunity.com/knows/",
		ContentBase:        "https://content-eu-central-1.knowunity.com/CONTENT/",
		IdentifierPattern:  `(?i)[0-9a-f]{8}-(?:[0-9a-f]{4}-){3}[0-9a-f]{12}`,
		PagePattern:        `^https://knowunity\.de/knows/.*`,
		ContentLinkPattern: `https://content-eu-central-1\.knowunity\.com/CONTENT/([A-Za-z0-9_]+)(?:_COMPRESSED)?\.pdf`,
	}
}

// DownloadConfig groups the settings for one download run.
type DownloadConfig struct {
	HTTPConfig     `yaml:",inline"`
	ProviderConfig `yaml:",inline"`

	// OutputDir is the directory PDFs are written to. It must exist.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}
