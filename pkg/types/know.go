// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Know is the metadata document the provider API returns for one
// identifier: a title and the ordered content parts that make it up.
type Know struct {
	// Title names the document; downloaded files are named after it.
	Title string `json:"title" yaml:"title"`

	// Contents lists the parts in provider order. The order determines
	// the positional suffix of each downloaded file.
	Contents []ContentPart `json:"contents" yaml:"contents"`
}

// ContentPart is one downloadable PDF of a Know.
type ContentPart struct {
	// ContentURL is the direct PDF location.
	ContentURL string `json:"contentUrl" yaml:"content_url"`

	// PageCount is informational only.
	PageCount int `json:"pageCount" yaml:"page_count"`
}

// ItemResult is the outcome of one batch item. Exactly one of the
// following holds: Err is set (failed), Skipped is set (file already
// present), or the file was written at Path.
type ItemResult struct {
	URL     string
	Name    string
	Path    string
	Bytes   int64
	Skipped bool
	Err     error
}

// Failed reports whether the item could not be fetched or written.
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// BatchResult holds the outcome of a batch download.
type BatchResult struct {
	Items      []ItemResult
	Downloaded int
	Skipped    int
	Failed     int
}

// Add records one item outcome and updates the counters.
func (r *BatchResult) Add(item ItemResult) {
	r.Items = append(r.Items, item)
	switch {
	case item.Failed():
		r.Failed++
	case item.Skipped:
		r.Skipped++
	default:
		r.Downloaded++
	}
}

// Total returns the number of items processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// Succeeded returns the number of items present on disk after the run.
// Skipped items count: they were already there.
func (r BatchResult) Succeeded() int {
	return r.Downloaded + r.Skipped
}

// HasFailures reports whether any item failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Bytes returns the number of bytes written during the run.
func (r BatchResult) Bytes() int64 {
	var n int64
	for _, item := range r.Items {
		n += item.Bytes
	}
	return n
}
