package handlers

import (
	"errors"

	"github.com/Mithun-AM/Exam-allocation-system/internal/dto"
	"github.com/Mithun-AM/Exam-allocation-system/internal/models"
	"github.com/Mithun-AM/Exam-allocation-system/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatbotHandler struct {
	chatbot *service.ChatbotService
	logger  *zap.Logger
}

func NewChatbotHandler(chatbot *service.ChatbotService, logger *zap.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		chatbot: chatbot,
		logger:  logger,
	}
}

// queryFromLocals builds the caller identity from whatever the auth
// middleware stored. Anonymous requests carry no locals at all.
func queryFromLocals(c *fiber.Ctx, text string) service.Query {
	q := service.Query{
		Text: text,
		Role: models.RoleAnonymous,
	}

	role, _ := c.Locals("role").(string)
	if role == "" {
		return q
	}
	q.Role = models.ParseRole(role)

	if name, ok := c.Locals("userName").(string); ok {
		q.ActingUserName = name
	}
	if email, ok := c.Locals("email").(string); ok {
		q.ActingEmail = email
	}

	// Allocations reference the faculty table, so a faculty caller acts
	// under their faculty record ID, not their login ID.
	if facultyID, ok := c.Locals("facultyID").(string); ok && facultyID != "" {
		if parsed, err := uuid.Parse(facultyID); err == nil {
			q.ActingUserID = &parsed
		}
	}
	return q
}

// Query godoc
// @Summary Ask the exam scheduling assistant
// @Description Answer a natural-language question about exams, rooms, faculty duties and student seating
// @Tags chatbot
// @Accept json
// @Produce json
// @Param request body dto.ChatQueryRequest true "Query request"
// @Success 200 {object} dto.ChatAnswerResponse
// @Failure 400 {object} dto.ChatAnswerResponse
// @Router /chatbot/query [post]
func (h *ChatbotHandler) Query(c *fiber.Ctx) error {
	var req dto.ChatQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ChatAnswerResponse{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	answer, err := h.chatbot.Ask(c.Context(), queryFromLocals(c, req.Query), req.SessionID)
	if err != nil {
		return h.chatError(c, err)
	}

	return c.JSON(dto.ChatAnswerResponse{Success: true, Answer: answer})
}

// Admin godoc
// @Summary Ask via semantic search
// @Description Answer a question using embedding-based retrieval over the vector cache
// @Tags chatbot
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChatQueryRequest true "Query request"
// @Success 200 {object} dto.ChatAnswerResponse
// @Failure 400 {object} dto.ChatAnswerResponse
// @Failure 503 {object} dto.ChatAnswerResponse
// @Router /chatbot/admin [post]
func (h *ChatbotHandler) Admin(c *fiber.Ctx) error {
	var req dto.ChatQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ChatAnswerResponse{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	answer, debug, err := h.chatbot.AskAdmin(c.Context(), queryFromLocals(c, req.Query), req.SessionID)
	if err != nil {
		return h.chatError(c, err)
	}

	resp := dto.ChatAnswerResponse{Success: true, Answer: answer}
	if debug != nil {
		resp.Debug = &dto.SemanticDebug{
			Matches:       debug.Matches,
			TopSimilarity: debug.TopSimilarity,
			Generation:    debug.Generation,
		}
	}
	return c.JSON(resp)
}

// CacheData godoc
// @Summary Rebuild the semantic index
// @Description Drop and re-derive the vector cache from the current database contents
// @Tags chatbot
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CacheRebuildResponse
// @Failure 409 {object} dto.CacheRebuildResponse
// @Failure 503 {object} dto.CacheRebuildResponse
// @Router /chatbot/cache-data [post]
func (h *ChatbotHandler) CacheData(c *fiber.Ctx) error {
	report, err := h.chatbot.CacheData(c.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRebuildInProgress):
			return c.Status(fiber.StatusConflict).JSON(dto.CacheRebuildResponse{
				Success: false,
				Error:   "A rebuild is already in progress",
			})
		case errors.Is(err, service.ErrIndexNotReady):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.CacheRebuildResponse{
				Success: false,
				Error:   "Vector cache is not initialized",
			})
		default:
			h.logger.Error("Cache rebuild failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.CacheRebuildResponse{
				Success: false,
				Error:   "Cache rebuild failed",
			})
		}
	}

	return c.JSON(dto.CacheRebuildResponse{
		Success:    true,
		Indexed:    report.Indexed,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
		Generation: report.Generation,
	})
}

func (h *ChatbotHandler) chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ChatAnswerResponse{
			Success: false,
			Error:   "Query text is required",
		})
	case errors.Is(err, service.ErrEmbeddingUnavailable), errors.Is(err, service.ErrIndexNotReady):
		h.logger.Warn("Chatbot dependency unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ChatAnswerResponse{
			Success: false,
			Error:   "The assistant is temporarily unavailable",
		})
	default:
		h.logger.Error("Chatbot query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ChatAnswerResponse{
			Success: false,
			Error:   "Failed to process query",
		})
	}
}
