package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/imaging"
	"github.com/trungkien2003ntk/BookRetrieval/internal/server"
	"github.com/trungkien2003ntk/BookRetrieval/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the product retrieval HTTP API",
	Long: `Start the HTTP server exposing the two search endpoints:

  POST /product/{product_id}/related   related products for a product ID
  POST /product/related-by-image       related products for a base64 image

The embedding providers and the vector index are constructed once here and
shared across all requests.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

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

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	srv := server.New(cfg.Server, search, textCol, imageCol, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving on %s (text model: %s, image model: %s)\n", cfg.Server.Addr, textEmb.ModelName(), imageEmb.ModelName())
	return srv.Run(ctx)
}
