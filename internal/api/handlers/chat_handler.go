package handlers

import (
	"strings"
	"time"

	"campusbot/internal/dto"
	"campusbot/internal/repository/memory"
	"campusbot/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	sessions    *memory.SessionStore
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, sessions *memory.SessionStore, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Chat godoc
// @Summary Send a chat message
// @Description Routes a free-text question to the knowledge base and returns a grounded reply
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat request"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	start := time.Now()

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message must not be empty",
		})
	}

	result, err := h.chatService.HandleMessage(c.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("Chat request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	var articleLink *string
	if result.ArticleLink != "" {
		articleLink = &result.ArticleLink
	}

	return c.JSON(dto.ChatResponse{
		SessionID:       result.SessionID,
		Reply:           result.Reply,
		Source:          result.SourceID,
		ArticleLink:     articleLink,
		Confidence:      result.Confidence,
		AwaitingSlot:    result.AwaitingSlot,
		RetrievalTimeMs: result.RetrievalMs,
		LLMTimeMs:       result.GenerationMs,
		TotalTimeMs:     float64(time.Since(start).Microseconds()) / 1000,
	})
}

// SessionStats godoc
// @Summary Active session statistics
// @Description Lists active sessions with history length and pending-slot state
// @Tags sessions
// @Produce json
// @Success 200 {object} dto.SessionStatsResponse
// @Router /sessions/stats [get]
func (h *ChatHandler) SessionStats(c *fiber.Ctx) error {
	count, summaries := h.sessions.Stats()

	resp := dto.SessionStatsResponse{
		ActiveSessions: count,
		Sessions:       make([]dto.SessionSummary, 0, len(summaries)),
	}
	for _, s := range summaries {
		resp.Sessions = append(resp.Sessions, dto.SessionSummary{
			ID:            s.ID,
			HistoryLength: s.HistoryLength,
			AwaitingSlot:  s.AwaitingSlot,
			LastActivity:  s.LastActivity.Format(time.RFC3339),
			AgeMinutes:    s.AgeMinutes,
		})
	}

	return c.JSON(resp)
}

// ClearSession godoc
// @Summary Clear a session
// @Description Removes one session immediately (useful for testing)
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [delete]
func (h *ChatHandler) ClearSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if !h.sessions.Delete(id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Session cleared",
	})
}
