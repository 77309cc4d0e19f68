package usecase

import (
	"context"
	"fmt"

	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/imaging"
	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
	"github.com/trungkien2003ntk/BookRetrieval/internal/port"
)

// SearchService answers the two related-product queries by composing the
// embedding providers with the vector collections. It holds no mutable
// state; one instance serves all requests concurrently.
type SearchService struct {
	textEmbedder    port.TextEmbedder
	imageEmbedder   port.ImageEmbedder
	pipeline        *imaging.Pipeline
	textCollection  port.Collection
	imageCollection port.Collection

	textLimit  int
	imageLimit int
}

// NewSearchService creates a new search service. textLimit and imageLimit
// bound the candidate count when the caller passes limit <= 0.
func NewSearchService(
	textEmbedder port.TextEmbedder,
	imageEmbedder port.ImageEmbedder,
	pipeline *imaging.Pipeline,
	textCollection port.Collection,
	imageCollection port.Collection,
	textLimit int,
	imageLimit int,
) *SearchService {
	if textLimit <= 0 {
		textLimit = 100
	}
	if imageLimit <= 0 {
		imageLimit = 100
	}
	return &SearchService{
		textEmbedder:    textEmbedder,
		imageEmbedder:   imageEmbedder,
		pipeline:        pipeline,
		textCollection:  textCollection,
		imageCollection: imageCollection,
		textLimit:       textLimit,
		imageLimit:      imageLimit,
	}
}

// HasProduct reports whether the text collection holds a description for the
// product. The HTTP layer uses it to turn an unknown ID into a 404 before
// running the search.
func (s *SearchService) HasProduct(ctx context.Context, productID string) (bool, error) {
	records, err := s.textCollection.Get(ctx, []string{productID})
	if err != nil {
		return false, fmt.Errorf("lookup product %q: %w", productID, err)
	}
	return len(records) > 0 && records[0].Document != "", nil
}

// SearchByID returns products related to the given product, best match
// first. An ID with no stored description yields an empty list and no error;
// the caller decides whether that means "not found".
//
// The stored description is re-embedded at query time rather than reusing
// the stored vector. This costs one embedding call per search but keeps the
// query vector consistent with the live model even when stored vectors were
// produced by an older model snapshot. Do not "optimize" this into a stored
// vector lookup; it changes result semantics.
func (s *SearchService) SearchByID(ctx context.Context, productID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.textLimit
	}

	records, err := s.textCollection.Get(ctx, []string{productID})
	if err != nil {
		return nil, fmt.Errorf("lookup product %q: %w", productID, err)
	}
	if len(records) == 0 || records[0].Document == "" {
		return []string{}, nil
	}

	embeddings, err := s.textEmbedder.Embed(ctx, []string{records[0].Document})
	if err != nil {
		return nil, fmt.Errorf("embed description of %q: %w", productID, err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embed description of %q: embedder returned no vectors", productID)
	}

	ranked, err := s.textCollection.Query(ctx, [][]float32{embeddings[0]}, limit)
	if err != nil {
		return nil, fmt.Errorf("query text collection: %w", err)
	}

	// One query vector in, so the batch response flattens to its single
	// ranked list. The text collection keeps one entry per product, so the
	// list carries no duplicate IDs; unlike the image path there is no
	// per-product collapsing to do here.
	ids := []string{}
	for _, list := range ranked {
		for _, m := range list {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// SearchByImage returns products related to a base64-encoded image, best
// match first. The image collection holds one entry per indexed image, so a
// product with several images can appear several times in the raw ranked
// candidates; the result collapses those to the first (closest) occurrence,
// preserving rank order.
func (s *SearchService) SearchByImage(ctx context.Context, encodedImage string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.imageLimit
	}

	tensor, err := s.pipeline.FromBase64(encodedImage)
	if err != nil {
		return nil, err
	}

	vector, err := s.imageEmbedder.EmbedImage(ctx, tensor)
	if err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}

	ranked, err := s.imageCollection.Query(ctx, [][]float32{vector}, limit)
	if err != nil {
		return nil, fmt.Errorf("query image collection: %w", err)
	}
	if len(ranked) == 0 {
		return []string{}, nil
	}

	return dedupeByProduct(ranked[0]), nil
}

// dedupeByProduct extracts product IDs from ranked candidates, keeping only
// the first occurrence of each so output position reflects the closest match
// per product. Candidates without a product ID in metadata are skipped.
func dedupeByProduct(matches []port.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	ids := []string{}
	for _, m := range matches {
		pid := m.Metadata[domain.MetaProductID]
		if pid == "" {
			continue
		}
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		ids = append(ids, pid)
	}
	return ids
}
