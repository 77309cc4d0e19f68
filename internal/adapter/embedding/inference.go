package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
)

// InferenceEmbedder generates image embeddings through a JSON inference
// endpoint serving a vision model (e.g. a DINOv2 deployment). It sends the
// already-normalized pixel tensor and receives the embedding vector; the
// model server does no preprocessing of its own.
type InferenceEmbedder struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

type inferenceRequest struct {
	Model  string    `json:"model,omitempty"`
	Shape  []int     `json:"shape"`
	Pixels []float32 `json:"pixels"`
}

type inferenceResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

func NewInferenceEmbedder(baseURL, model string, dimension int) *InferenceEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:9090"
	}
	return &InferenceEmbedder{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (e *InferenceEmbedder) EmbedImage(ctx context.Context, tensor domain.ImageTensor) ([]float32, error) {
	if len(tensor.Pixels) != tensor.Len() {
		return nil, fmt.Errorf("tensor shape mismatch: expected %d pixel values, got %d", tensor.Len(), len(tensor.Pixels))
	}

	reqBody := inferenceRequest{
		Model:  e.model,
		Shape:  []int{tensor.Channels, tensor.Height, tensor.Width},
		Pixels: tensor.Pixels,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference server returned status %d: %s", resp.StatusCode, string(body))
	}

	var infResp inferenceResponse
	if err := json.Unmarshal(body, &infResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if infResp.Error != "" {
		return nil, fmt.Errorf("inference error: %s", infResp.Error)
	}
	if len(infResp.Embedding) == 0 {
		return nil, fmt.Errorf("inference server returned empty embedding")
	}

	return infResp.Embedding, nil
}

func (e *InferenceEmbedder) Dimension() int {
	return e.dimension
}

func (e *InferenceEmbedder) ModelName() string {
	if e.model == "" {
		return "inference"
	}
	return e.model
}
