package domain

// DefaultKBName is used when a knowledge base is loaded without a name.
const DefaultKBName = "KB cargada"

// Bundle is the result of loading one knowledge-base text.
// It is replaced wholesale when a new document is uploaded and is
// never partially mutated.
type Bundle struct {
	// KBName is the display name, typically the uploaded filename.
	KBName string

	// KBHash is the SHA-256 hash of the normalised text. It uniquely
	// determines the chunks and the index built over them, so reloading
	// identical text yields the same logical bundle.
	KBHash string

	// KBUpdatedAt is an opaque caller-supplied timestamp, echoed back
	// unchanged for staleness checks. The engine never interprets it.
	KBUpdatedAt string

	// Chunks is the ordered segmentation output.
	Chunks []Chunk

	// ChunksTotal mirrors len(Chunks) for callers serialising the bundle.
	ChunksTotal int
}

// Empty returns true if the bundle holds no chunks, meaning the loaded
// text was empty or whitespace-only ("no knowledge base").
func (b *Bundle) Empty() bool {
	return b == nil || len(b.Chunks) == 0
}
