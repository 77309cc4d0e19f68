package cli

import (
	"fmt"

	"github.com/trungkien2003ntk/BookRetrieval/config"
	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/embedding"
	"github.com/trungkien2003ntk/BookRetrieval/internal/adapter/store"
	"github.com/trungkien2003ntk/BookRetrieval/internal/port"
)

func buildTextEmbedder(cfg *config.Config) (port.TextEmbedder, error) {
	tc := cfg.TextEmbedding
	switch tc.Provider {
	case "openai":
		if tc.BaseURL != "" {
			return embedding.NewOpenAICompatibleEmbedder(tc.APIKeyEnv, tc.Model, tc.BaseURL)
		}
		return embedding.NewOpenAIEmbedder(tc.APIKeyEnv, tc.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(tc.Model, tc.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(tc.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown text embedding provider: %s", tc.Provider)
	}
}

func buildImageEmbedder(cfg *config.Config) (port.ImageEmbedder, error) {
	ic := cfg.ImageEmbedding
	switch ic.Provider {
	case "inference":
		return embedding.NewInferenceEmbedder(ic.BaseURL, ic.Model, ic.Dimension), nil
	case "mock":
		return embedding.NewMockImageEmbedder(ic.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown image embedding provider: %s", ic.Provider)
	}
}

// openCollections opens the index database and both collections, sized to
// the providers' vector dimensions.
func openCollections(cfg *config.Config, dir string, textEmb port.TextEmbedder, imageEmb port.ImageEmbedder) (*store.BoltIndex, *store.BoltCollection, *store.BoltCollection, error) {
	ix, err := store.NewBoltIndex(cfg.IndexPath(dir))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open index store: %w", err)
	}

	textCol, err := ix.Collection(cfg.Storage.TextCollection, textEmb.Dimension())
	if err != nil {
		ix.Close()
		return nil, nil, nil, err
	}
	imageCol, err := ix.Collection(cfg.Storage.ImageCollection, imageEmb.Dimension())
	if err != nil {
		ix.Close()
		return nil, nil, nil, err
	}

	return ix, textCol, imageCol, nil
}
