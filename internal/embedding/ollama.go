package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"campusbot/pkg/config"

	"go.uber.org/zap"
)

// OllamaEmbedder implements Embedder using the Ollama /api/embeddings
// endpoint.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

func NewOllamaEmbedder(cfg *config.OllamaConfig, logger *zap.Logger) *OllamaEmbedder {
	return &OllamaEmbedder{
		baseURL: cfg.BaseURL,
		model:   cfg.EmbeddingModel,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("Embedding request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("model", e.model),
		)
		return nil, fmt.Errorf("embedding request failed with status %d", resp.StatusCode)
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	return Normalize(embedResp.Embedding), nil
}
