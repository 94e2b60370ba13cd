package oxonium

import "errors"

var (
	// ErrNotBuilt is returned when an operation requires a built index.
	ErrNotBuilt = errors.New("index not built")

	// ErrNotSimplified is returned when an operation requires a simplified
	// index, e.g. snapshotting.
	ErrNotSimplified = errors.New("index not simplified")

	// ErrInvalidSnapshot is returned when snapshot data is malformed or has
	// an unsupported format version.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrUnknownCodec is returned when a snapshot references a codec this
	// build does not provide.
	ErrUnknownCodec = errors.New("unknown snapshot codec")

	// ErrUnknownCompression is returned when a snapshot references an
	// unsupported compression scheme.
	ErrUnknownCompression = errors.New("unknown snapshot compression")
)
