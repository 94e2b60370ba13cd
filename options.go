package oxonium

import (
	"log/slog"

	"github.com/glycokit/oxonium/codec"
)

// Compression names a snapshot compression scheme. The name is recorded in
// the snapshot header so loads never depend on configuration.
type Compression string

const (
	CompressionZstd Compression = "zstd"
	CompressionNone Compression = "none"
)

type options struct {
	codec       codec.Codec
	compression Compression
	logger      *Logger
	metrics     MetricsCollector
}

// Option configures an Index.
type Option func(*options)

// WithCodec configures the codec used to encode snapshot sections.
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the compression scheme for newly saved
// snapshots. Existing snapshots record their own scheme and are unaffected.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger configures structured logging for index operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:       codec.Default,
		compression: CompressionZstd,
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
