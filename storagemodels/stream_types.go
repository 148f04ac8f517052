package storagemodels

import (
	"time"
)

// ScanEvent is a single event of a scan. A closed channel is the end event;
// an event with Err set is terminal and the producer closes the channel right after it.
type ScanEvent struct {
	Record Record     // The record, nil on an error event
	Err    error      // Terminal error, if any
	Meta   StreamMeta // Metadata about this record
}

// StreamMeta contains metadata about a streamed record
type StreamMeta struct {
	Index      int64     // Record index in stream (0-based)
	PageNumber int       // Backend page number (1-based)
	Timestamp  time.Time // When the record was retrieved
}

// StreamOptions configures streaming behavior
type StreamOptions struct {
	BufferSize      int                  // Channel buffer size (default: 100)
	MaxRetries      int                  // Retry attempts for transient page errors (default: 3)
	RetryBackoff    time.Duration        // Backoff between retries (default: 1s)
	PageSize        int32                // Records per backend page (default: 100)
	ProgressHandler func(StreamProgress) // Optional progress callback
}

// StreamProgress tracks streaming progress
type StreamProgress struct {
	ItemsProcessed int64     // Total records delivered
	PagesProcessed int       // Total pages fetched
	StartTime      time.Time // When streaming started
	CurrentRate    float64   // Records per second
	Done           bool      // Set on the final report
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize:   100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		PageSize:     100,
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) StreamOption {
	return func(opts *StreamOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) StreamOption {
	return func(opts *StreamOptions) {
		opts.RetryBackoff = backoff
	}
}

// WithPageSize sets the backend page size
func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// ProgressTracker counts delivered records and pages for a scan producer and
// forwards snapshots to the configured handler.
type ProgressTracker struct {
	handler func(StreamProgress)
	items   int64
	pages   int
	start   time.Time
}

// NewProgressTracker starts tracking. A nil handler makes Report a no-op.
func NewProgressTracker(handler func(StreamProgress)) *ProgressTracker {
	return &ProgressTracker{handler: handler, start: time.Now()}
}

// Page records a fetched page and returns its 1-based number.
func (p *ProgressTracker) Page() int {
	p.pages++
	return p.pages
}

// Item returns the metadata for the next delivered record.
func (p *ProgressTracker) Item() StreamMeta {
	meta := StreamMeta{Index: p.items, PageNumber: p.pages, Timestamp: time.Now()}
	p.items++
	return meta
}

// Meta returns metadata for a terminal error event.
func (p *ProgressTracker) Meta() StreamMeta {
	return StreamMeta{Index: p.items, PageNumber: p.pages, Timestamp: time.Now()}
}

// Report calls the handler with the current totals.
func (p *ProgressTracker) Report(done bool) {
	if p.handler == nil {
		return
	}
	progress := StreamProgress{
		ItemsProcessed: p.items,
		PagesProcessed: p.pages,
		StartTime:      p.start,
		Done:           done,
	}
	if elapsed := time.Since(p.start).Seconds(); elapsed > 0 {
		progress.CurrentRate = float64(p.items) / elapsed
	}
	p.handler(progress)
}
