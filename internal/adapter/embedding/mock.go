package embedding

import (
	"context"

	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
)

// MockEmbedder produces deterministic pseudo-embeddings without a model
// server. Useful for local development and smoke tests.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = make([]float32, e.dimension)
		for j, r := range texts[i] {
			embeddings[i][j%e.dimension] += float32(r%97) / 97.0
		}
	}
	return embeddings, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}

// MockImageEmbedder is the image-side counterpart of MockEmbedder.
type MockImageEmbedder struct {
	dimension int
}

func NewMockImageEmbedder(dimension int) *MockImageEmbedder {
	return &MockImageEmbedder{dimension: dimension}
}

func (e *MockImageEmbedder) EmbedImage(ctx context.Context, tensor domain.ImageTensor) ([]float32, error) {
	out := make([]float32, e.dimension)
	for i, v := range tensor.Pixels {
		out[i%e.dimension] += v
	}
	return out, nil
}

func (e *MockImageEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockImageEmbedder) ModelName() string {
	return "mock"
}
