// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knows

import (
	"errors"
	"fmt"
)

// Fatal conditions returned by Pipeline.Run. Per-item failures are not
// errors; they are recorded in types.BatchResult.
var (
	// ErrPrecondition means a required input is missing or the output
	// directory does not exist. Nothing ran.
	ErrPrecondition = errors.New("precondition failed")

	// ErrInvalidReference means the source URL does not have the shape the
	// chosen strategy needs. No request was made.
	ErrInvalidReference = errors.New("invalid source URL")

	// ErrMetadataUnavailable means the list of content parts could not be
	// obtained, so there was nothing to download.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrBatchIncomplete means fewer files are on disk than were requested.
	ErrBatchIncomplete = errors.New("batch incomplete")
)

// BatchIncompleteError carries the shortfall of a batch that did not
// fully succeed. It matches ErrBatchIncomplete with errors.Is.
type BatchIncompleteError struct {
	Failed int
	Total  int
}

func (e *BatchIncompleteError) Error() string {
	return fmt.Sprintf("%d of %d files failed", e.Failed, e.Total)
}

func (e *BatchIncompleteError) Is(target error) bool {
	return target == ErrBatchIncomplete
}
