package granularity

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Config controls how a Writer decides when a granule (one mark's worth of
// rows) is finished.
type Config struct {
	// IndexGranularity is the target row count per granule.
	IndexGranularity int
	// IndexGranularityBytes is the target compressed byte count per
	// granule; 0 disables adaptive granularity (constant rows-per-mark
	// only).
	IndexGranularityBytes int
	// MinIndexGranularityBytes is a minimum granule byte size carried in
	// the config. Writer.ShouldFinishGranule does not consult it: a granule
	// closes on the row or byte threshold alone, however small it is.
	MinIndexGranularityBytes int
}

// DefaultConfig matches the defaults used throughout the pack's domain
// stack: 8192 rows, 10MB adaptive byte target, 1024-byte floor.
func DefaultConfig() Config {
	return Config{
		IndexGranularity:         8192,
		IndexGranularityBytes:    10 * 1024 * 1024,
		MinIndexGranularityBytes: 1024,
	}
}

// UseAdaptiveGranularity reports whether this config selects adaptive
// (variable-rows) granularity.
func (c Config) UseAdaptiveGranularity() bool { return c.IndexGranularityBytes > 0 }

// CreateGranularity returns the Granularity implementation this config
// selects, freshly seeded with zero marks.
func (c Config) CreateGranularity() Granularity {
	if c.UseAdaptiveGranularity() {
		return NewAdaptive()
	}
	return NewConstant(c.IndexGranularity, 0)
}

// byteCounter is an io.Writer that only counts bytes written to it; it
// backs the zstd encoder so Writer can measure compressed granule size
// without owning the real columnar output stream.
type byteCounter struct {
	n int64
}

func (c *byteCounter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// Writer (GranuleWriter) drives the row/byte thresholds that decide when
// the current granule is finished, and records the resulting mark into its
// Granularity. In adaptive mode, TrackBytes runs raw bytes through a zstd
// encoder to measure the compressed size a real columnar writer would
// produce for this granule; the core does not own compression itself, only
// the measurement that feeds ShouldFinishGranule.
type Writer struct {
	config      Config
	granularity Granularity
	counter     *byteCounter
	enc         *zstd.Encoder
}

// NewWriter returns a Writer driven by config.
func NewWriter(config Config) (*Writer, error) {
	w := &Writer{
		config:      config,
		granularity: config.CreateGranularity(),
	}
	if config.UseAdaptiveGranularity() {
		w.counter = &byteCounter{}
		enc, err := zstd.NewWriter(w.counter)
		if err != nil {
			return nil, errors.Wrap(err, "granularity: creating zstd encoder")
		}
		w.enc = enc
	}
	return w, nil
}

// TrackBytes feeds raw granule data through the byte counter (compressed,
// in adaptive mode) so ShouldFinishGranule can see an up-to-date count. A
// no-op in constant-granularity mode.
func (w *Writer) TrackBytes(raw []byte) error {
	if w.enc == nil {
		return nil
	}
	if _, err := w.enc.Write(raw); err != nil {
		return errors.Wrap(err, "granularity: tracking granule bytes")
	}
	// The encoder buffers input until a full block; flush so the counter
	// reflects everything tracked so far.
	if err := w.enc.Flush(); err != nil {
		return errors.Wrap(err, "granularity: tracking granule bytes")
	}
	return nil
}

// BytesWrittenInGranule returns the current granule's measured byte count
// (0 in constant-granularity mode).
func (w *Writer) BytesWrittenInGranule() int64 {
	if w.counter == nil {
		return 0
	}
	return w.counter.n
}

// ShouldFinishGranule reports whether the current granule should close,
// given how many rows have been written to it so far.
func (w *Writer) ShouldFinishGranule(rowsWrittenInGranule int) bool {
	if w.config.UseAdaptiveGranularity() {
		return w.BytesWrittenInGranule() >= int64(w.config.IndexGranularityBytes) ||
			rowsWrittenInGranule >= w.config.IndexGranularity
	}
	return rowsWrittenInGranule >= w.config.IndexGranularity
}

// FinishGranule records a mark of rowsInGranule rows and resets the byte
// counter for the next granule.
func (w *Writer) FinishGranule(rowsInGranule int) error {
	w.granularity.AddMark(rowsInGranule)
	if w.enc == nil {
		return nil
	}
	w.counter.n = 0
	w.enc.Reset(w.counter)
	return nil
}

// Granularity returns the granularity accumulated so far.
func (w *Writer) Granularity() Granularity { return w.granularity }

// Close releases the writer's zstd encoder, if any.
func (w *Writer) Close() error {
	if w.enc == nil {
		return nil
	}
	return w.enc.Close()
}
