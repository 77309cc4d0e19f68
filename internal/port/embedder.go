package port

import (
	"context"

	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
)

// TextEmbedder generates vector embeddings for text.
type TextEmbedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// ImageEmbedder generates a vector embedding for a normalized image tensor.
type ImageEmbedder interface {
	// EmbedImage generates an embedding for one image.
	EmbedImage(ctx context.Context, tensor domain.ImageTensor) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
