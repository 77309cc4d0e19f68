package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trungkien2003ntk/BookRetrieval/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "bookretrieval",
	Short: "Multimodal product retrieval - find related products by ID or image",
	Long: `BookRetrieval serves a product-search API backed by vector embeddings.
A product ID or a base64-encoded image is embedded and matched against a
persisted vector index to return ranked lists of related product IDs.

Example usage:
  bookretrieval ingest catalog.jsonl   # Build the index from a catalog file
  bookretrieval related P1             # Query related products from the CLI
  bookretrieval serve                  # Start the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bookretrieval.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "data directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
