package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/imaging"
	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
	"github.com/trungkien2003ntk/BookRetrieval/internal/port"
)

// CatalogEntry is one product from a catalog file.
type CatalogEntry struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty"`
}

// IngestResult summarizes an ingestion run.
type IngestResult struct {
	Products int
	Images   int
	Errors   []string
}

// IngestService loads product descriptions and images into the vector
// collections. Search never writes; this is the only writer.
type IngestService struct {
	textEmbedder    port.TextEmbedder
	imageEmbedder   port.ImageEmbedder
	pipeline        *imaging.Pipeline
	textCollection  port.Collection
	imageCollection port.Collection
	batchSize       int
}

// NewIngestService creates a new ingest service. batchSize bounds how many
// descriptions are embedded and upserted per round trip.
func NewIngestService(
	textEmbedder port.TextEmbedder,
	imageEmbedder port.ImageEmbedder,
	pipeline *imaging.Pipeline,
	textCollection port.Collection,
	imageCollection port.Collection,
	batchSize int,
) *IngestService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IngestService{
		textEmbedder:    textEmbedder,
		imageEmbedder:   imageEmbedder,
		pipeline:        pipeline,
		textCollection:  textCollection,
		imageCollection: imageCollection,
		batchSize:       batchSize,
	}
}

// IngestProducts embeds and upserts catalog descriptions into the text
// collection. Entries with an empty ID or description are reported in the
// result and skipped. progress, if non-nil, is called after every batch.
func (s *IngestService) IngestProducts(ctx context.Context, entries []CatalogEntry, progress func(done, total int)) (*IngestResult, error) {
	result := &IngestResult{}

	valid := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" || e.Description == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("skipping entry %q: missing id or description", e.ID))
			continue
		}
		valid = append(valid, e)
	}

	for start := 0; start < len(valid); start += s.batchSize {
		end := start + s.batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		texts := make([]string, len(batch))
		for i, e := range batch {
			texts[i] = e.Description
		}

		embeddings, err := s.textEmbedder.Embed(ctx, texts)
		if err != nil {
			return result, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(embeddings) != len(batch) {
			return result, fmt.Errorf("embed batch at %d: got %d vectors for %d texts", start, len(embeddings), len(batch))
		}

		records := make([]port.Entry, len(batch))
		for i, e := range batch {
			records[i] = port.Entry{
				ID:        e.ID,
				Document:  e.Description,
				Embedding: embeddings[i],
			}
		}
		if err := s.textCollection.Upsert(ctx, records); err != nil {
			return result, fmt.Errorf("upsert batch at %d: %w", start, err)
		}

		result.Products += len(batch)
		if progress != nil {
			progress(result.Products, len(valid))
		}
	}

	return result, nil
}

// IngestImage normalizes, embeds, and upserts one product image. Every image
// gets its own entry keyed by a fresh UUID; the owning product is recorded
// in metadata, so one product may map to many image entries.
func (s *IngestService) IngestImage(ctx context.Context, productID string, r io.Reader) error {
	if productID == "" {
		return fmt.Errorf("product ID is required")
	}

	tensor, err := s.pipeline.FromReader(r)
	if err != nil {
		return err
	}

	vector, err := s.imageEmbedder.EmbedImage(ctx, tensor)
	if err != nil {
		return fmt.Errorf("embed image for %q: %w", productID, err)
	}

	entry := port.Entry{
		ID:        uuid.NewString(),
		Embedding: vector,
		Metadata:  map[string]string{domain.MetaProductID: productID},
	}
	if err := s.imageCollection.Upsert(ctx, []port.Entry{entry}); err != nil {
		return fmt.Errorf("upsert image for %q: %w", productID, err)
	}
	return nil
}
