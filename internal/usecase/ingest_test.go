package usecase

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/imaging"
	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
	"github.com/trungkien2003ntk/BookRetrieval/internal/port"
)

// capturingCollection records upserted entries.
type capturingCollection struct {
	fakeCollection
	upserted []port.Entry
}

func (c *capturingCollection) Upsert(ctx context.Context, entries []port.Entry) error {
	c.upserted = append(c.upserted, entries...)
	return nil
}

func newTestIngest(text, img *capturingCollection, batchSize int) *IngestService {
	return NewIngestService(
		&fakeTextEmbedder{vector: []float32{1, 0}},
		&fakeImageEmbedder{vector: []float32{0, 1}},
		imaging.NewPipeline(),
		text,
		img,
		batchSize,
	)
}

func TestIngestProducts(t *testing.T) {
	text := &capturingCollection{}
	svc := newTestIngest(text, &capturingCollection{}, 2)

	entries := []CatalogEntry{
		{ID: "P1", Description: "red cotton t-shirt"},
		{ID: "P2", Description: "blue denim jacket"},
		{ID: "P3", Description: "green wool scarf"},
	}

	var progressCalls int
	result, err := svc.IngestProducts(context.Background(), entries, func(done, total int) {
		progressCalls++
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Products != 3 {
		t.Errorf("expected 3 products ingested, got %d", result.Products)
	}
	if len(text.upserted) != 3 {
		t.Fatalf("expected 3 upserted entries, got %d", len(text.upserted))
	}
	if text.upserted[0].ID != "P1" || text.upserted[0].Document != "red cotton t-shirt" {
		t.Errorf("unexpected first entry: %+v", text.upserted[0])
	}
	if len(text.upserted[0].Embedding) == 0 {
		t.Error("expected embedding on upserted entry")
	}
	if progressCalls != 2 {
		t.Errorf("expected 2 progress calls for batch size 2, got %d", progressCalls)
	}
}

func TestIngestProductsSkipsInvalid(t *testing.T) {
	text := &capturingCollection{}
	svc := newTestIngest(text, &capturingCollection{}, 10)

	entries := []CatalogEntry{
		{ID: "P1", Description: "red cotton t-shirt"},
		{ID: "", Description: "orphaned description"},
		{ID: "P3", Description: ""},
	}

	result, err := svc.IngestProducts(context.Background(), entries, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Products != 1 {
		t.Errorf("expected 1 product ingested, got %d", result.Products)
	}
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 skip reports, got %v", result.Errors)
	}
}

func TestIngestImage(t *testing.T) {
	img := &capturingCollection{}
	svc := newTestIngest(&capturingCollection{}, img, 10)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatal(err)
	}

	if err := svc.IngestImage(context.Background(), "P1", &buf); err != nil {
		t.Fatal(err)
	}

	if len(img.upserted) != 1 {
		t.Fatalf("expected 1 upserted entry, got %d", len(img.upserted))
	}
	entry := img.upserted[0]
	if entry.ID == "" || entry.ID == "P1" {
		t.Errorf("expected a generated entry ID distinct from the product ID, got %q", entry.ID)
	}
	if entry.Metadata[domain.MetaProductID] != "P1" {
		t.Errorf("expected product_id metadata P1, got %q", entry.Metadata[domain.MetaProductID])
	}
}

func TestIngestImageBadBytes(t *testing.T) {
	svc := newTestIngest(&capturingCollection{}, &capturingCollection{}, 10)

	err := svc.IngestImage(context.Background(), "P1", bytes.NewReader([]byte("not an image")))
	if err == nil {
		t.Fatal("expected decode error")
	}
}
