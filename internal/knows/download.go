// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knows

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/fileutil"

	"github.com/pdiddy/knowloader/internal/httputil"
	"github.com/pdiddy/knowloader/pkg/types"
)

// Item is one file to download.
type Item struct {
	// URL is the PDF location.
	URL string

	// Name is the destination file name inside the output directory.
	Name string

	// SkipExisting makes the downloader leave an existing destination
	// untouched and count the item as skipped without any request.
	SkipExisting bool
}

// BatchDownloader fetches items one at a time into a directory.
type BatchDownloader struct {
	client *http.Client
	cfg    types.HTTPConfig
}

// NewBatchDownloader returns a downloader using client for every request.
func NewBatchDownloader(client *http.Client, cfg types.HTTPConfig) *BatchDownloader {
	return &BatchDownloader{client: client, cfg: cfg}
}

// DownloadAll processes items in order. A failing item is recorded and the
// loop continues. The returned error is non-nil only when outputDir is not
// a directory (ErrPrecondition, before any request) or when ctx is done;
// cancellation is observed between items, never inside one.
func (d *BatchDownloader) DownloadAll(ctx context.Context, items []Item, outputDir string) (types.BatchResult, error) {
	var result types.BatchResult
	if !fileutil.IsDir(outputDir) {
		return result, fmt.Errorf("%w: output directory %s does not exist", ErrPrecondition, outputDir)
	}

	logger := log.FromContext(ctx).WithPrefix("download")
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res := d.downloadItem(ctx, item, outputDir)
		if res.Err != nil {
			logger.Debug("item failed", "name", res.Name, "url", res.URL, "err", res.Err)
		}
		result.Add(res)
	}
	return result, nil
}

func (d *BatchDownloader) downloadItem(ctx context.Context, item Item, outputDir string) types.ItemResult {
	res := types.ItemResult{
		URL:  item.URL,
		Name: item.Name,
		Path: filepath.Join(outputDir, item.Name),
	}

	if item.SkipExisting && fileutil.IsExist(res.Path) {
		res.Skipped = true
		return res
	}

	n, err := d.downloadFile(ctx, item.URL, res.Path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Bytes = n
	return res
}

// downloadFile streams url into a temporary file next to destPath and
// renames it into place on success, so a failed item never leaves a
// partial file behind.
func (d *BatchDownloader) downloadFile(ctx context.Context, url, destPath string) (int64, error) {
	resp, err := httputil.Get(ctx, d.client, url, d.cfg.UserAgent, "application/pdf")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".knowloader-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

// PositionalNames returns the file names for a Know with n parts: the
// bare title for a single part, otherwise the title suffixed with the
// 1-based part index.
func PositionalNames(title string, n int) []string {
	stem := sanitizeName(title)
	if n == 1 {
		return []string{stem + ".pdf"}
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d.pdf", stem, i+1)
	}
	return names
}

// NameFromURL derives a file name from the last path segment of rawURL:
// the ".pdf" extension is dropped, everything from the first underscore
// on is cut, and ".pdf" is appended.
func NameFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	base := path.Base(p)
	if base == "/" || base == "." {
		base = ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if i := strings.Index(base, "_"); i >= 0 {
		base = base[:i]
	}
	return sanitizeName(base) + ".pdf"
}

var nameReplacer = strings.NewReplacer("/", "-", "\\", "-", "\x00", "")

// sanitizeName keeps a name inside the output directory.
func sanitizeName(name string) string {
	name = strings.TrimSpace(nameReplacer.Replace(name))
	switch name {
	case "", ".", "..":
		return "download"
	}
	return name
}
