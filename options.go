package fieldsort

import (
	"log/slog"

	"github.com/hupe1980/fieldsort/codec"
	"github.com/hupe1980/fieldsort/internal/compress"
)

// Compression selects the block compression of field snapshots.
type Compression = compress.Type

const (
	// CompressionNone stores snapshots uncompressed.
	CompressionNone = compress.None
	// CompressionLZ4 favors load speed.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD favors snapshot size.
	CompressionZSTD = compress.ZSTD
)

type options struct {
	codec            codec.Codec
	compression      Compression
	metricsCollector MetricsCollector
	logger           *Logger

	// Catalog snapshot limits.
	snapshotConcurrency int64
	snapshotIOLimit     int64
	snapshotMemoryLimit int64
}

// Option configures New and NewCatalog.
type Option func(*options)

// WithCodec configures the codec used to encode snapshot payloads.
// Loading always uses the codec recorded in the snapshot.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures snapshot block compression.
//
// Example:
//
//	price := fieldsort.New[float64]("price", fieldsort.WithCompression(fieldsort.CompressionZSTD))
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures metrics collection for operations.
// Pass nil to disable metrics (uses NoopMetricsCollector).
//
// Example with BasicMetricsCollector:
//
//	metrics := &fieldsort.BasicMetricsCollector{}
//	title := fieldsort.New[string]("title", fieldsort.WithMetricsCollector(metrics))
//	// ... use title ...
//	stats := metrics.GetStats()
//	fmt.Printf("Sorts: %d, Avg latency: %dns\n", stats.SortCount, stats.SortAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := fieldsort.NewJSONLogger(slog.LevelInfo)
//	title := fieldsort.New[string]("title", fieldsort.WithLogger(logger))
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

// WithSnapshotConcurrency bounds how many fields a Catalog saves or loads
// in parallel. Defaults to 4.
func WithSnapshotConcurrency(n int) Option {
	return func(o *options) {
		o.snapshotConcurrency = int64(n)
	}
}

// WithSnapshotIOLimit rate-limits Catalog snapshot IO in bytes per second.
// Zero means unlimited.
func WithSnapshotIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.snapshotIOLimit = bytesPerSec
	}
}

// WithSnapshotMemoryLimit bounds the snapshot bytes a Catalog holds in
// memory at once while loading. Zero means unlimited.
func WithSnapshotMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.snapshotMemoryLimit = bytes
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:               codec.Default,
		compression:         CompressionLZ4,
		metricsCollector:    NoopMetricsCollector{},
		logger:              NoopLogger(),
		snapshotConcurrency: 4,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
