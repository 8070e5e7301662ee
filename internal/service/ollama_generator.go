package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"campusbot/internal/models"
	"campusbot/pkg/config"

	"go.uber.org/zap"
)

// OllamaGenerator implements Generator on the Ollama /api/chat endpoint.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

func NewOllamaGenerator(cfg *config.OllamaConfig, logger *zap.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		baseURL: cfg.BaseURL,
		model:   cfg.ChatModel,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
}

func (g *OllamaGenerator) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	messages := []ollamaChatMessage{
		{Role: "system", Content: BuildSystemPrompt(req.SystemHint, req.GroundingContext)},
	}
	for _, turn := range req.History {
		messages = append(messages, ollamaChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, ollamaChatMessage{Role: string(models.RoleUser), Content: req.Message})

	body, err := json.Marshal(ollamaChatRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Error("Chat request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("model", g.model),
		)
		return "", fmt.Errorf("chat request failed with status %d", resp.StatusCode)
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if chatResp.Message.Content == "" {
		return "", fmt.Errorf("empty message in chat response")
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}
