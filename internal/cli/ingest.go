package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/imaging"
	"github.com/trungkien2003ntk/BookRetrieval/internal/usecase"
)

var ingestImagesDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest [catalog.jsonl]",
	Short: "Load a product catalog into the vector index",
	Long: `Ingest reads a product catalog (one JSON object per line) and upserts
descriptions into the text collection and images into the image collection.

Each line looks like:
  {"id": "P1", "description": "red cotton t-shirt", "images": ["images/p1/*.jpg"]}

Image paths may be glob patterns (doublestar syntax), resolved relative to
--images-dir (default: the catalog file's directory).`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestImagesDir, "images-dir", "", "base directory for image path patterns")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	catalogPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}

	entries, err := readCatalog(catalogPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("catalog %s contains no entries", catalogPath)
	}

	imagesDir := ingestImagesDir
	if imagesDir == "" {
		imagesDir = filepath.Dir(catalogPath)
	}

	textEmb, err := buildTextEmbedder(cfg)
	if err != nil {
		return err
	}
	imageEmb, err := buildImageEmbedder(cfg)
	if err != nil {
		return err
	}

	ix, textCol, imageCol, err := openCollections(cfg, GetRootDir(), textEmb, imageEmb)
	if err != nil {
		return err
	}
	defer ix.Close()

	ingest := usecase.NewIngestService(
		textEmb,
		imageEmb,
		imaging.NewPipeline(),
		textCol,
		imageCol,
		cfg.TextEmbedding.BatchSize,
	)

	fmt.Printf("Ingesting %d products from %s...\n", len(entries), catalogPath)

	bar := newBar(len(entries), "Descriptions")
	result, err := ingest.IngestProducts(ctx, entries, func(done, total int) {
		bar.Set(done)
	})
	bar.Finish()
	if err != nil {
		return fmt.Errorf("catalog ingestion failed: %w", err)
	}

	imageFiles, err := resolveImages(entries, imagesDir)
	if err != nil {
		return err
	}

	if len(imageFiles) > 0 {
		bar = newBar(len(imageFiles), "Images")
		for _, img := range imageFiles {
			if err := ingestOneImage(ctx, ingest, img.productID, img.path); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", img.path, err))
			} else {
				result.Images++
			}
			bar.Add(1)
		}
		bar.Finish()
	}

	fmt.Printf("\nDone: %d products, %d images indexed\n", result.Products, result.Images)
	if len(result.Errors) > 0 {
		fmt.Printf("%d entries skipped:\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}

	return nil
}

type imageFile struct {
	productID string
	path      string
}

// readCatalog parses a JSONL catalog file.
func readCatalog(path string) ([]usecase.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	var entries []usecase.CatalogEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry usecase.CatalogEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return entries, nil
}

// resolveImages expands each entry's image patterns into concrete files.
func resolveImages(entries []usecase.CatalogEntry, baseDir string) ([]imageFile, error) {
	var files []imageFile
	for _, entry := range entries {
		for _, pattern := range entry.Images {
			full := pattern
			if !filepath.IsAbs(full) {
				full = filepath.Join(baseDir, pattern)
			}
			matches, err := doublestar.FilepathGlob(full)
			if err != nil {
				return nil, fmt.Errorf("bad image pattern %q for %s: %w", pattern, entry.ID, err)
			}
			for _, m := range matches {
				files = append(files, imageFile{productID: entry.ID, path: m})
			}
		}
	}
	return files, nil
}

func ingestOneImage(ctx context.Context, ingest *usecase.IngestService, productID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ingest.IngestImage(ctx, productID, f)
}

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
