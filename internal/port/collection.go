package port

import "context"

// Entry is a stored collection entry. The text collection keeps one entry per
// product (Document set, no metadata); the image collection keeps one entry
// per indexed image (no document, metadata carrying the product ID), so
// several entries may point at the same product.
type Entry struct {
	ID        string
	Document  string
	Embedding []float32
	Metadata  map[string]string
}

// Match is a single ranked candidate from a nearest-neighbor query.
type Match struct {
	ID       string
	Score    float64 // cosine similarity, higher is closer
	Metadata map[string]string
}

// Collection is a named set of vector index entries supporting point lookup
// by ID and nearest-neighbor query by vector. Implementations must be safe
// for concurrent use; one collection handle is shared across all requests.
type Collection interface {
	// Get point-looks-up entries by ID. Missing IDs are simply absent from
	// the result; a miss is not an error.
	Get(ctx context.Context, ids []string) ([]Entry, error)

	// Query runs a nearest-neighbor search for every query vector and
	// returns one ranked candidate list per vector (cosine, best first),
	// each at most k long.
	Query(ctx context.Context, vectors [][]float32, k int) ([][]Match, error)

	// Upsert inserts or replaces entries keyed by ID. Last write wins.
	Upsert(ctx context.Context, entries []Entry) error

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)
}
