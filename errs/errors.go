// Package errs defines the sentinel errors returned by the ngb container
// parser. Stream-level scanning never returns errors for corruption (it
// degrades to empty or partial results); these sentinels cover the cases
// where continuing would be meaningless.
package errs

import "errors"

var (
	// ErrInvalidContainer indicates the file is not a readable ZIP archive.
	ErrInvalidContainer = errors.New("invalid NGB container archive")

	// ErrMetadataStreamMissing indicates the container has no metadata
	// stream entry.
	ErrMetadataStreamMissing = errors.New("metadata stream not found in container")

	// ErrDataStreamMissing indicates the container has none of the known
	// measurement data stream entries.
	ErrDataStreamMissing = errors.New("data stream not found in container")

	// ErrEmptyStream indicates a required stream produced zero tables.
	ErrEmptyStream = errors.New("stream produced no tables")
)
