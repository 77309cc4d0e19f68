package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/imaging"
	"github.com/trungkien2003ntk/BookRetrieval/internal/usecase"
)

var (
	relatedLimit int
	relatedJSON  bool
)

var relatedCmd = &cobra.Command{
	Use:   "related <product-id>",
	Short: "Find related products for a product ID",
	Long: `Search the local index for products related to the given product ID.

Examples:
  bookretrieval related P1
  bookretrieval related P1 --limit 10 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func init() {
	rootCmd.AddCommand(relatedCmd)
	relatedCmd.Flags().IntVarP(&relatedLimit, "limit", "k", 0, "number of results (default from config)")
	relatedCmd.Flags().BoolVar(&relatedJSON, "json", false, "output as JSON")
}

func runRelated(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	productID := args[0]

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

	search := usecase.NewSearchService(
		textEmb,
		imageEmb,
		imaging.NewPipeline(),
		textCol,
		imageCol,
		cfg.Search.TextResults,
		cfg.Search.ImageResults,
	)

	ctx := cmd.Context()

	exists, err := search.HasProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("product %q not found in index. Run 'bookretrieval ingest' first", productID)
	}

	ids, err := search.SearchByID(ctx, productID, relatedLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if relatedJSON {
		output, _ := json.MarshalIndent(ids, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(ids) == 0 {
		fmt.Println("No related products found.")
		return nil
	}
	fmt.Printf("Found %d related products for %s:\n", len(ids), productID)
	for i, id := range ids {
		fmt.Printf("%3d. %s\n", i+1, id)
	}

	return nil
}
