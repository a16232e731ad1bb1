package domain

import "time"

// KBDocument is a raw knowledge-base document as persisted. The engine
// works on segmented bundles; stores keep the original text so a KB can
// be reloaded and re-segmented after a restart or a tuning change.
type KBDocument struct {
	// ID is the unique identifier for the stored document.
	ID string

	// Name is the display name, usually the source file name.
	Name string

	// Hash is the content hash of Text. Reloading identical text
	// produces the same hash, which keys index caching.
	Hash string

	// Text is the full raw document text before segmentation.
	Text string

	// UpdatedAt is the caller-supplied freshness marker. It is
	// treated as opaque and echoed into bundles unchanged.
	UpdatedAt string

	// StoredAt is when the document was written to the store.
	StoredAt time.Time
}
