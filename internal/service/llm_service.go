package service

import (
	"context"
	"fmt"
	"strings"

	"campusbot/internal/models"
	"campusbot/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GenerateRequest carries everything the downstream generator needs for
// one reply. GroundingContext is retrieved reference material: it is
// presented inside the system prompt, never as a prior assistant turn, so
// the generator does not mistake retrieved text for something it already
// said.
type GenerateRequest struct {
	SystemHint       string
	GroundingContext string
	History          []models.Turn
	Message          string
}

// Generator is the opaque text-generation capability. Implementations are
// interchangeable; failures mean "no grounded reply available" and must
// never crash a request.
type Generator interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// BuildSystemPrompt assembles the assistant persona, the per-request hint,
// and the grounding context block.
func BuildSystemPrompt(hint, groundingContext string) string {
	var b strings.Builder
	b.WriteString("You are a Campus Store assistant for California Baptist University.\n\n")

	if hint != "" {
		b.WriteString(hint)
		b.WriteString("\n\n")
	}

	if groundingContext != "" {
		b.WriteString("=== OFFICIAL INSTRUCTIONS (FOLLOW EXACTLY) ===\n")
		b.WriteString(groundingContext)
		b.WriteString("\n=== END OFFICIAL INSTRUCTIONS ===\n\n")
		b.WriteString(
			"You MUST follow the step-by-step instructions above exactly as written. " +
				"Do NOT add steps, change steps, or provide alternative instructions. " +
				"Do NOT suggest accessing materials from publisher websites unless the instructions say so. " +
				"Do NOT mention platforms or publishers that are not listed in the instructions above.\n\n")
	}

	b.WriteString(
		"If relevant information is provided in the context above, use it to answer accurately.\n" +
			"If required information is missing (such as a course code), ask the user for it.\n" +
			"If no context is provided, respond helpfully and ask clarifying questions.\n" +
			"Do NOT invent policies, dates, or procedures.\n" +
			"Use recent conversation history for continuity, but prioritize the current user message and official instructions.\n")
	return b.String()
}

// GigaChatGenerator implements Generator on the GigaChat API.
type GigaChatGenerator struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatGenerator(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatGenerator, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.Temperature = 0.3

	return &GigaChatGenerator{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *GigaChatGenerator) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleSystem, Content: BuildSystemPrompt(req.SystemHint, req.GroundingContext)},
	}
	for _, turn := range req.History {
		role := gigago.RoleUser
		if turn.Role == models.RoleAssistant {
			role = gigago.RoleAssistant
		}
		messages = append(messages, gigago.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, gigago.Message{Role: gigago.RoleUser, Content: req.Message})

	resp, err := g.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in generation response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *GigaChatGenerator) Close() {
	g.client.Close()
}
